package contract

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// 文件名前缀：生成器输出、Geant 输出与作业日志。
const (
	PrefixMCGen = "pluto"
	PrefixGeant = "g4sim"
	PrefixLog   = "sim"
)

// FileName 返回 "<prefix>_<tag>_%04d.<ext>"。
func FileName(prefix, tag string, n int, ext string) string {
	return fmt.Sprintf("%s_%s_%04d.%s", prefix, tag, n, ext)
}

var fileNameRE = regexp.MustCompile(`^([^_]+)_(\S+)_(\d+)\.([A-Za-z0-9]+)$`)

// ParseFileName 为 FileName 的逆：拆出前缀、标识、编号与扩展名。
// 标识本身可以包含 '_'；编号取最后一段数字。
func ParseFileName(name string) (prefix, tag string, n int, ext string, ok bool) {
	m := fileNameRE.FindStringSubmatch(name)
	if m == nil {
		return "", "", 0, "", false
	}
	n, err := strconv.Atoi(m[3])
	if err != nil {
		return "", "", 0, "", false
	}
	return m[1], m[2], n, m[4], true
}

// NormalizeArtifactID 规范化工件路径，统一为跨平台稳定的 ArtifactID。
// 规则：
// - 使用正斜杠分隔符
// - 清理多余分隔符与路径片段（.、..）
// - 保留相对/绝对语义，不做隐式绝对化
func NormalizeArtifactID(p string) ArtifactID {
	return ArtifactID(path.Clean(strings.ReplaceAll(p, `\`, "/")))
}
