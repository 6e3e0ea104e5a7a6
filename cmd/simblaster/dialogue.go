package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"simblaster/pkg/contract"
	"simblaster/pkg/decay"
)

var (
	yesAnswers = map[string]bool{"y": true, "Y": true, "j": true, "J": true, "yes": true, "Yes": true}
	noAnswers  = map[string]bool{"n": true, "N": true, "no": true, "No": true}
)

// dialogue: 配置中没有通道时从标准输入逐条录入。
// 输入结束（EOF）视为否定回答，已录入的通道保留。
type dialogue struct {
	in  *bufio.Scanner
	out io.Writer
}

func newDialogue(in io.Reader, out io.Writer) *dialogue {
	return &dialogue{in: bufio.NewScanner(in), out: out}
}

// readLine 打印提示并读取一行；ok=false 表示输入已结束。
func (d *dialogue) readLine(prompt string) (string, bool) {
	fprintf(d.out, "%s", prompt)
	if !d.in.Scan() {
		fprintf(d.out, "\n")
		return "", false
	}
	return strings.TrimSpace(d.in.Text()), true
}

// confirm 读取 y/n，无效回答重新询问。
func (d *dialogue) confirm(prompt string) bool {
	line, ok := d.readLine(prompt)
	for ok {
		switch {
		case yesAnswers[line]:
			return true
		case noAnswers[line]:
			return false
		}
		line, ok = d.readLine("You've entered an invalid response! Please try again: ")
	}
	return false
}

// digit 读取正整数，最多尝试 retries 次；失败返回 0。
func (d *dialogue) digit(prompt string, retries int) int {
	for i := 1; ; i++ {
		line, ok := d.readLine(prompt + " ")
		if !ok {
			return 0
		}
		if n, err := strconv.Atoi(line); err == nil && n > 0 {
			return n
		}
		if i >= retries {
			fprintf(d.out, "Invalid input, this channel will be skipped\n")
			return 0
		}
		fprintf(d.out, "Your input wasn't a positive number, please try again:\n")
	}
}

// channels 录入通道：反应式前自动补上反冲质子 "p "；表达式或数量无效的通道被跳过。
func (d *dialogue) channels() []contract.Channel {
	var chs []contract.Channel
	if !d.confirm("\nDo you want to enter channels which should be simulated? [y/n]: ") {
		return nil
	}
	fprintf(d.out, "Please enter a channel which should be simulated:\n"+
		"Note: The syntax has to be exactly the Pluto syntax for the reaction,\n"+
		"      e.g. \"pi0 [g g]\" for the decay of a pi0 into two photons.\n"+
		"      The recoil proton is taken into account, type only the desired reaction\n")
	for first := true; first || d.confirm("Do you want to enter another channel? [y/n]: "); first = false {
		reaction, ok := d.readLine(contract.RecoilPrefix)
		if !ok {
			break
		}
		notation := contract.RecoilPrefix + reaction
		if _, err := decay.DecayString(reaction, decay.DefaultLevel); err != nil || reaction == "" {
			fprintf(d.out, "Invalid reaction %q, this channel will be skipped\n", reaction)
			continue
		}
		files := d.digit("How many files should be generated for this channel?", 3)
		if files == 0 {
			continue
		}
		events := d.digit("How many events should be generated per file?", 4)
		if events == 0 {
			continue
		}
		chs = append(chs, contract.Channel{Notation: notation, Files: files, Events: events})
	}
	fprintf(d.out, "You've entered %s for the simulation process\n", plural(len(chs), "channel"))
	return chs
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
