package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"simblaster/pkg/contract"
)

// UnitPrefix 以 k/M/G 缩写较大的计数：10000 -> "10k"，1500 -> "1.5k"。
func UnitPrefix(n int) string {
	units := []struct {
		v int
		s string
	}{{1_000_000_000, "G"}, {1_000_000, "M"}, {1_000, "k"}}
	for _, u := range units {
		if n < u.v {
			continue
		}
		if n%u.v == 0 {
			return strconv.Itoa(n/u.v) + u.s
		}
		return strconv.FormatFloat(float64(n)/float64(u.v), 'f', -1, 64) + u.s
	}
	return strconv.Itoa(n)
}

// 按顺序逐条替换；etap 先还原为 eta'，随后 eta 再替换为 η。
var channelSymbols = [][2]string{
	{"dilepton", "γ*"},
	{"dimuon", "γ*"},
	{"pi", "π"},
	{"etap", "eta'"},
	{"eta", "η"},
	{"mu", "µ"},
	{"omega", "ω"},
	{"rho", "ρ"},
	{"g", "γ"},
	{"0", "⁰"},
	{"+", "⁺"},
	{"-", "⁻"},
}

// FormatChannel 把衰变标识渲染为终端展示形式。
// short=true 时仅显示初态与末态，否则各层以 " --> " 连接。
func FormatChannel(tag string, short bool) string {
	s := tag
	for _, r := range channelSymbols {
		s = strings.ReplaceAll(s, r[0], r[1])
	}
	if !short {
		return strings.ReplaceAll(s, "_", " --> ")
	}
	parts := strings.Split(s, "_")
	return fmt.Sprintf("  %-4s -->  %s", parts[0], parts[len(parts)-1])
}

// SummaryLine 返回终端总览中的一行。
func SummaryLine(cp ChannelPlan) string {
	ch := cp.Channel
	return fmt.Sprintf("%-20s %4d files per %4s events (total %4s events)",
		FormatChannel(cp.Tag, true), ch.Files, UnitPrefix(ch.Events), UnitPrefix(ch.Files*ch.Events))
}

// SubmitLogName 返回提交日志的工件名 submit_YYYY-MM-DD_HH.MM.log。
func SubmitLogName(ts time.Time) contract.ArtifactID {
	return contract.ArtifactID("submit_" + ts.Format("2006-01-02_15.04") + ".log")
}

// SubmitLog 渲染提交日志：总览、提交命令模板与每个已提交作业的脚本。
func SubmitLog(sched *Schedule, done []contract.Job, sub contract.Submitter, ts time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Submitting %d jobs on %s\n\n", sched.Files(), ts.Format("2006-01-02 15:04:05"))
	for _, cp := range sched.Channels {
		ch := cp.Channel
		fmt.Fprintf(&b, "  %-30s %4d files per %4s events (total %4s events)\n",
			strings.ReplaceAll(cp.Tag, "_", " --> "), ch.Files, UnitPrefix(ch.Events), UnitPrefix(ch.Files*ch.Events))
	}
	fmt.Fprintf(&b, " Total %s events in %d files\n\n", UnitPrefix(sched.Events()), sched.Files())
	if len(done) != sched.Files() {
		fmt.Fprintf(&b, " Submitted %d of %d jobs\n\n", len(done), sched.Files())
	}
	example := contract.Job{Number: 42, LogFile: `"logfile"`}
	fmt.Fprintf(&b, "\nUsed qsub command: %s\n\n", strings.Join(sub.Argv(example), " "))
	for _, job := range done {
		b.WriteString(job.Script)
		b.WriteByte('\n')
	}
	return b.String()
}
