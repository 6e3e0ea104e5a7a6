package config

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// DefaultTemplateConfig 返回可直接编辑使用的配置模板：默认值 + 各类通道示例。
// 示例中仅 Pluto 通道处于启用状态，其余以 files=0 跳过。
func DefaultTemplateConfig() Config {
	cfg := Defaults()
	cfg.Cocktail.Setup = "Setup_2014_07_EPT_Prod"
	cfg.Channels = []ChannelEntry{
		{Notation: "p pi0 [g g]", Files: 10, Events: 100000},
		{Notation: "p eta' [g rho0 [g pi0 [g g]]]", Files: 0, Events: 100000},
		{Notation: "Cocktail", Files: 0, Events: 10000},
		{Notation: "Gun: g g", Files: 0, Events: 10000},
	}
	return cfg
}

// templateComments: 顶层与嵌套键的说明（键路径以 '.' 连接）。
var templateComments = map[string]string{
	"output_path":         "输出根目录；以下数据目录为其相对路径（也可为绝对路径）",
	"mcgen_data":          "MC 生成器输出目录",
	"geant_data":          "Geant4 模拟输出目录",
	"log_data":            "作业日志目录",
	"a2_geant_path":       "A2 Geant 安装目录（包含 A2、runGeant.sh 与 macros/）；空则使用 $PATH",
	"qsub":                "批处理提交参数",
	"qsub.mail":           "邮件：a(中止) b(开始) e(结束) 的组合，n 为不发送",
	"qsub.walltime":       "HH:MM:SS",
	"qsub.per_minute":     "每分钟最多提交的作业数，0 为不限速",
	"generator":           "MC 生成器；Pluto 反应式通道使用 name，Cocktail/Gun 通道分别使用 Ant-cocktail/Ant-mcgun",
	"generator.path":      "生成器与 Ant-addTID 所在目录；空则使用 $PATH",
	"generator.emin":      "光子束能量下限（MeV）",
	"generator.emax":      "光子束能量上限（MeV）",
	"generator.add_flags": "原样附加到生成器命令行，例如 --flatEbeam",
	"cocktail":            "Ant-cocktail：setup 与 binning 只能设置其一",
	"gun":                 "Ant-mcgun：极角范围与粒子间张角（度）；opening 为 0 表示不限制",
	"geant_flags":         "原样附加到 runGeant.sh，例如 's~^(/A2/det/setTargetLength).*~$1 5 cm~'",
	"decay_level":         "文件名中保留的中间态层数；0 为全部",
	"concurrency":         "并行提交的 worker 数",
	"logging":             "日志等级 debug|info|warn|error 与目录",
	"metrics_file":        "非空时在结束前写出 Prometheus 文本格式指标",
	"channels": "待模拟通道：Pluto 反应式需包含反冲质子；\"Cocktail\"；或 \"Gun: <粒子列表>\"。\n" +
		"files 或 events 为 0 的通道被跳过。单行旧格式同样可用：'\"p pi0 [g g]\" 10 100000'",
}

// Template 渲染带注释的 YAML 模板。
func Template(cfg Config) ([]byte, error) {
	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return nil, err
	}
	annotate(&doc, "")
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func annotate(n *yaml.Node, prefix string) {
	if n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if prefix != "" {
			key = prefix + "." + key
		}
		if c, ok := templateComments[key]; ok {
			n.Content[i].HeadComment = c
		}
		annotate(n.Content[i+1], key)
	}
}
