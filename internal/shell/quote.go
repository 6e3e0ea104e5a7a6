// Package shell 把参数向量渲染为 POSIX sh 可直接执行的命令行。
package shell

import "strings"

// Quote 在需要时以单引号包裹 s；内部的单引号按 POSIX 惯例拆开转义。
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, needsQuote) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("@%+=:,./_-", r)
}

// Join 逐个引用后以空格连接。
func Join(argv []string) string {
	parts := make([]string, len(argv))
	for i, a := range argv {
		parts[i] = Quote(a)
	}
	return strings.Join(parts, " ")
}

// Script 以 "; " 串联多条命令，任一失败不影响后续（与批处理作业的惯例一致）。
func Script(cmds ...string) string {
	out := cmds[:0:0]
	for _, c := range cmds {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return strings.Join(out, "; ")
}
