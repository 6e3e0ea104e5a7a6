package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName: 默认配置文件名。
const FileName = "sim_settings.yaml"

// 环境变量前缀与特殊键。
const (
	EnvPrefix     = "SIMBLASTER_"
	EnvConfigFile = EnvPrefix + "CONFIG_FILE"
	EnvConfigYAML = EnvPrefix + "CONFIG_YAML"
)

// Defaults 返回带有安全默认值的 Config 雏形（无通道）。
func Defaults() Config {
	return Config{
		OutputPath: ".",
		MCGenData:  "mcgen",
		GeantData:  "geant",
		LogData:    "log",
		Qsub: Qsub{
			Bin:        "qsub",
			Mail:       "a",
			MailDomain: "kph.uni-mainz.de",
			Queue:      "dflt",
			Walltime:   "12:00:00",
		},
		Generator: Generator{
			Name: "Ant-pluto",
			Emin: 1420,
			Emax: 1580,
		},
		Gun:         Gun{ThetaMin: 0, ThetaMax: 180},
		DecayLevel:  1,
		Concurrency: 1,
		Logging:     Logging{Level: "info", Dir: "logs"},
	}
}

// Load 在 base 之上解析 YAML（文件路径或原始字节，raw 优先），严格拒绝未知字段。
// 文件中未出现的键保留 base 的取值。
func Load(base Config, path string, raw []byte) (Config, error) {
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return base, err
		}
		defer f.Close()
		r = f
	default:
		return base, errors.New("no config source provided")
	}
	cfg := base
	// 通道列表整体替换，不与默认值拼接
	cfg.Channels = nil
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			// 空文件：等同于全部使用 base
			return base, nil
		}
		return base, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Find 按顺序查找配置文件：显式路径、$SIMBLASTER_CONFIG_FILE、./sim_settings.yaml、~/sim_settings.yaml。
// 显式路径或环境变量指定的文件不存在时报错；默认位置均不存在时返回空串。
func Find(explicit string, getenv func(string) string) (string, error) {
	for _, p := range []string{explicit, getenv(EnvConfigFile)} {
		if p = strings.TrimSpace(p); p == "" {
			continue
		}
		p = ExpandHome(p)
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("config: %w", err)
		}
		return p, nil
	}
	candidates := []string{FileName}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, FileName))
	}
	for _, p := range candidates {
		if st, err := os.Stat(p); err == nil && st.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", nil
}

// ExpandHome 展开开头的 "~/"。
func ExpandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// Overlay 返回一个“全部未设置”的覆盖层；DecayLevel=-1 表示未覆盖。
func Overlay() Config { return Config{DecayLevel: -1} }

// Merge 按优先级合并（后者覆盖前者）。
// 仅标量/字符串为替换；零值视为未设置。DecayLevel 的 0 有语义（全部层），以 -1 表示未覆盖。
func Merge(base, over Config) Config {
	out := base
	setStr(&out.OutputPath, over.OutputPath)
	setStr(&out.MCGenData, over.MCGenData)
	setStr(&out.GeantData, over.GeantData)
	setStr(&out.LogData, over.LogData)
	setStr(&out.A2GeantPath, over.A2GeantPath)

	setStr(&out.Qsub.Bin, over.Qsub.Bin)
	setStr(&out.Qsub.Mail, over.Qsub.Mail)
	setStr(&out.Qsub.MailDomain, over.Qsub.MailDomain)
	setStr(&out.Qsub.Queue, over.Qsub.Queue)
	setStr(&out.Qsub.Walltime, over.Qsub.Walltime)
	if over.Qsub.Priority != 0 {
		out.Qsub.Priority = over.Qsub.Priority
	}
	if over.Qsub.PerMinute != 0 {
		out.Qsub.PerMinute = over.Qsub.PerMinute
	}
	if over.Qsub.Burst != 0 {
		out.Qsub.Burst = over.Qsub.Burst
	}

	setStr(&out.Generator.Name, over.Generator.Name)
	setStr(&out.Generator.Path, over.Generator.Path)
	setStr(&out.Generator.AddFlags, over.Generator.AddFlags)
	if over.Generator.Emin != 0 {
		out.Generator.Emin = over.Generator.Emin
	}
	if over.Generator.Emax != 0 {
		out.Generator.Emax = over.Generator.Emax
	}

	setStr(&out.Cocktail.Setup, over.Cocktail.Setup)
	if over.Cocktail.Binning != 0 {
		out.Cocktail.Binning = over.Cocktail.Binning
	}
	if over.Gun.ThetaMin != 0 {
		out.Gun.ThetaMin = over.Gun.ThetaMin
	}
	if over.Gun.ThetaMax != 0 {
		out.Gun.ThetaMax = over.Gun.ThetaMax
	}
	if over.Gun.Opening != 0 {
		out.Gun.Opening = over.Gun.Opening
	}

	setStr(&out.GeantFlags, over.GeantFlags)
	if over.DecayLevel >= 0 {
		out.DecayLevel = over.DecayLevel
	}
	if over.Concurrency != 0 {
		out.Concurrency = over.Concurrency
	}
	setStr(&out.Logging.Level, over.Logging.Level)
	setStr(&out.Logging.Dir, over.Logging.Dir)
	setStr(&out.MetricsFile, over.MetricsFile)

	if len(over.Channels) > 0 {
		out.Channels = append([]ChannelEntry(nil), over.Channels...)
	}
	return out
}

func setStr(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// EnvOverlay 从环境变量构建覆盖层（前缀 SIMBLASTER_，键为配置路径的大写下划线形式）。
// 未识别的键忽略；数值解析失败返回错误。
func EnvOverlay(environ []string) (Config, error) {
	over := Overlay()
	for _, kv := range environ {
		if !strings.HasPrefix(kv, EnvPrefix) {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len(EnvPrefix) {
			continue
		}
		key := strings.TrimPrefix(kv[:eq], EnvPrefix)
		val := strings.TrimSpace(kv[eq+1:])
		if val == "" {
			continue
		}
		var err error
		switch key {
		case "OUTPUT_PATH":
			over.OutputPath = val
		case "MCGEN_DATA":
			over.MCGenData = val
		case "GEANT_DATA":
			over.GeantData = val
		case "LOG_DATA":
			over.LogData = val
		case "A2_GEANT_PATH":
			over.A2GeantPath = val
		case "QSUB_BIN":
			over.Qsub.Bin = val
		case "QSUB_MAIL":
			over.Qsub.Mail = val
		case "QSUB_MAIL_DOMAIN":
			over.Qsub.MailDomain = val
		case "QSUB_QUEUE":
			over.Qsub.Queue = val
		case "QSUB_WALLTIME":
			over.Qsub.Walltime = val
		case "QSUB_PRIORITY":
			over.Qsub.Priority, err = strconv.Atoi(val)
		case "QSUB_PER_MINUTE":
			over.Qsub.PerMinute, err = strconv.Atoi(val)
		case "QSUB_BURST":
			over.Qsub.Burst, err = strconv.Atoi(val)
		case "GENERATOR_NAME":
			over.Generator.Name = val
		case "GENERATOR_PATH":
			over.Generator.Path = val
		case "GENERATOR_EMIN":
			over.Generator.Emin, err = strconv.ParseFloat(val, 64)
		case "GENERATOR_EMAX":
			over.Generator.Emax, err = strconv.ParseFloat(val, 64)
		case "GENERATOR_ADD_FLAGS":
			over.Generator.AddFlags = val
		case "GEANT_FLAGS":
			over.GeantFlags = val
		case "DECAY_LEVEL":
			over.DecayLevel, err = strconv.Atoi(val)
		case "CONCURRENCY":
			over.Concurrency, err = strconv.Atoi(val)
		case "LOGGING_LEVEL":
			over.Logging.Level = val
		case "LOGGING_DIR":
			over.Logging.Dir = val
		case "METRICS_FILE":
			over.MetricsFile = val
		default:
			// CONFIG_FILE/CONFIG_YAML 由调用方处理；其他键忽略
		}
		if err != nil {
			return Overlay(), fmt.Errorf("config: env %s%s=%q: %w", EnvPrefix, key, val, err)
		}
	}
	return over, nil
}

// WalltimeHours 把小时数渲染为 qsub 的 HH:MM:SS。
func WalltimeHours(h int) string { return fmt.Sprintf("%02d:00:00", h) }
