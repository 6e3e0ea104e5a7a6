package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"os/user"
	"syscall"

	"github.com/spf13/cobra"

	"simblaster/internal/diag"
	"simblaster/internal/pipeline"
)

// 测试替换点。
var (
	pipelineSubmit = pipeline.Submit
	lookPath       = exec.LookPath
)

// 退出码：0 成功；1 运行期失败；3 配置或通道表达式错误。
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(stdin, stdout, stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	if !errors.Is(err, context.Canceled) {
		fprintf(stderr, "错误: %v\n", err)
	}
	return exitCode(err)
}

func exitCode(err error) int {
	switch diag.Classify(err) {
	case diag.CodeConfig, diag.CodeSyntax:
		return exitConfig
	default:
		return exitRuntime
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "simblaster",
		Short: "Submit Pluto/Geant4 simulation jobs for the configured decay channels",
		Long: "simblaster reads sim_settings.yaml, names every channel after its decay\n" +
			"(for example p eta' [g rho0 [g pi0 [g g]]] -> etap_grho0_4g), continues the\n" +
			"file numbering of existing output and submits one batch job per file.",
		Example:       "simblaster --config sim_settings.yaml --dry-run\nsimblaster decay \"p omega [pi0 [g g] g]\"",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSubmit(cmd.Context(), o, cmd.InOrStdin(), stdout, stderr)
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetGlobalNormalizationFunc(wordSepNormalize)
	pf := root.PersistentFlags()
	pf.StringVarP(&o.config, "config", "c", "", "配置文件（YAML）；缺省依次查找 $SIMBLASTER_CONFIG_FILE、./sim_settings.yaml、~/sim_settings.yaml")
	pf.StringVarP(&o.output, "output", "o", "", "输出根目录（覆盖配置）")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "debug 级别日志")
	addSubmitFlags(root, o)

	submit := &cobra.Command{
		Use:   "submit",
		Short: "Plan and submit the simulation jobs (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSubmit(cmd.Context(), o, cmd.InOrStdin(), stdout, stderr)
		},
	}
	addSubmitFlags(submit, o)

	root.AddCommand(submit, newListCmd(o, stdout), newInitConfigCmd(stdout), newDecayCmd(stdout))
	return root
}

func fprintf(w io.Writer, format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

// currentUser 返回邮件通知用的用户名。
func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if s := os.Getenv("USER"); s != "" {
		return s
	}
	return "nobody"
}
