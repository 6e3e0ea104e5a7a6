package config

// Config: 运行期只读配置（一次解析，运行期不变）。
// YAML 使用 snake_case；未知字段在解析期失败。
type Config struct {
	// OutputPath: 输出根目录；下列数据目录为其相对路径（也可为绝对路径）。
	OutputPath  string `yaml:"output_path" validate:"required"`
	MCGenData   string `yaml:"mcgen_data" validate:"required"`
	GeantData   string `yaml:"geant_data" validate:"required"`
	LogData     string `yaml:"log_data" validate:"required"`
	A2GeantPath string `yaml:"a2_geant_path"`

	Qsub      Qsub      `yaml:"qsub"`
	Generator Generator `yaml:"generator"`
	Cocktail  Cocktail  `yaml:"cocktail"`
	Gun       Gun       `yaml:"gun"`

	// GeantFlags: 原样附加到 runGeant.sh 命令行。
	GeantFlags string `yaml:"geant_flags"`
	// DecayLevel: 衰变标识保留的中间态层数（0 = 全部）。
	DecayLevel  int     `yaml:"decay_level" validate:"min=0"`
	Concurrency int     `yaml:"concurrency" validate:"min=1,max=64"`
	Logging     Logging `yaml:"logging"`
	// MetricsFile: 非空时在退出前写出 Prometheus 文本格式指标。
	MetricsFile string `yaml:"metrics_file"`

	Channels []ChannelEntry `yaml:"channels" validate:"dive"`
}

// Qsub: 批处理提交参数。
type Qsub struct {
	Bin string `yaml:"bin" validate:"required"`
	// Mail: 邮件时机 a(abort) b(begin) e(end) 的组合，或 n（不发送）。
	Mail       string `yaml:"mail" validate:"required,mailopts"`
	MailDomain string `yaml:"mail_domain" validate:"required,hostname_rfc1123"`
	Queue      string `yaml:"queue" validate:"required"`
	// Walltime: HH:MM:SS
	Walltime string `yaml:"walltime" validate:"required,walltime"`
	Priority int    `yaml:"priority" validate:"min=-1024,max=1023"`
	// PerMinute: 每分钟最多提交的作业数；0 不限速。
	PerMinute int `yaml:"per_minute" validate:"gte=0"`
	// Burst: 允许的突发提交数；0 取 per_minute。
	Burst int `yaml:"burst" validate:"gte=0"`
}

// Generator: MC 生成器公共参数。
type Generator struct {
	// Name: Pluto 反应式通道使用的生成器可执行文件名。
	Name string `yaml:"name" validate:"required"`
	// Path: 生成器与 Ant-addTID 所在目录；空则使用 $PATH。
	Path     string  `yaml:"path"`
	Emin     float64 `yaml:"emin" validate:"gte=0"`
	Emax     float64 `yaml:"emax" validate:"gtfield=Emin"`
	AddFlags string  `yaml:"add_flags"`
}

// Cocktail: Ant-cocktail 参数；setup 与 binning 只能设置其一。
type Cocktail struct {
	Setup   string `yaml:"setup"`
	Binning int    `yaml:"binning" validate:"min=0"`
}

// Gun: Ant-mcgun 参数（角度单位：度）。
type Gun struct {
	ThetaMin float64 `yaml:"theta_min" validate:"gte=0,lte=180"`
	ThetaMax float64 `yaml:"theta_max" validate:"gte=0,lte=180,gtfield=ThetaMin"`
	Opening  float64 `yaml:"opening" validate:"gte=0,lte=180"`
}

// Logging: 日志等级与目录（文件名与轮转策略固定）。
type Logging struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Dir   string `yaml:"dir"`
}
