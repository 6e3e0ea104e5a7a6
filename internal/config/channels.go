package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"simblaster/pkg/contract"
)

// ChannelEntry: channels 列表的一项。支持两种写法：
//
//	channels:
//	  - notation: "p pi0 [g g]"
//	    files: 10
//	    events: 100000
//	  - '"p pi0 [g g]" 10 100000'
//
// 第二种为单行旧格式：末尾两个整数为文件数与每文件事件数，其余为表达式（引号可选）。
type ChannelEntry struct {
	Notation string `yaml:"notation" validate:"required"`
	Files    int    `yaml:"files" validate:"min=0"`
	Events   int    `yaml:"events" validate:"min=0"`
}

// UnmarshalYAML 接受映射或单行字符串；映射中的未知键报错。
func (c *ChannelEntry) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		e, err := ParseChannelLine(n.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		*c = e
		return nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			switch k := n.Content[i].Value; k {
			case "notation", "files", "events":
			default:
				return fmt.Errorf("line %d: channel field %q not found: %w", n.Content[i].Line, k, contract.ErrChannelInvalid)
			}
		}
		type plain ChannelEntry
		var p plain
		if err := n.Decode(&p); err != nil {
			return fmt.Errorf("line %d: %w: %w", n.Line, contract.ErrChannelInvalid, err)
		}
		*c = ChannelEntry(p)
		return nil
	default:
		return fmt.Errorf("line %d: channel must be a mapping or a string: %w", n.Line, contract.ErrChannelInvalid)
	}
}

// ParseChannelLine 解析单行旧格式，行首的 ';' 会被忽略。
func ParseChannelLine(line string) (ChannelEntry, error) {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), ";"))
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return ChannelEntry{}, fmt.Errorf("channel %q: want <notation> <files> <events>: %w", line, contract.ErrChannelInvalid)
	}
	files, err1 := strconv.Atoi(fields[len(fields)-2])
	events, err2 := strconv.Atoi(fields[len(fields)-1])
	if err1 != nil || err2 != nil || files < 0 || events < 0 {
		return ChannelEntry{}, fmt.Errorf("channel %q: files and events must be non-negative integers: %w", line, contract.ErrChannelInvalid)
	}
	notation := strings.Join(fields[:len(fields)-2], " ")
	notation = strings.TrimSpace(strings.Trim(notation, `"'`))
	if notation == "" {
		return ChannelEntry{}, fmt.Errorf("channel %q: empty notation: %w", line, contract.ErrChannelInvalid)
	}
	return ChannelEntry{Notation: notation, Files: files, Events: events}, nil
}

// ChannelList 转换为领域类型；files 或 events 为 0 的通道被跳过并在 skipped 中返回其表达式。
func (c Config) ChannelList() (chs []contract.Channel, skipped []string) {
	for _, e := range c.Channels {
		if e.Files == 0 || e.Events == 0 {
			skipped = append(skipped, e.Notation)
			continue
		}
		chs = append(chs, contract.Channel{Notation: strings.TrimSpace(e.Notation), Files: e.Files, Events: e.Events})
	}
	return chs, skipped
}
