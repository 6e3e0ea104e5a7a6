package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"simblaster/internal/config"
	"simblaster/internal/preflight"
	"simblaster/pkg/contract"
	"simblaster/pkg/registry"
	wfs "simblaster/plugins/writer/filesystem"
)

func newInitConfigCmd(stdout io.Writer) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init-config [dir]",
		Short: "Write a commented sim_settings.yaml template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = config.ExpandHome(args[0])
			}
			if err := preflight.CheckDir(dir, force); err != nil {
				return err
			}
			raw, err := config.Template(config.DefaultTemplateConfig())
			if err != nil {
				return err
			}
			// 不带 --force 时不覆盖已存在的文件
			w, err := registry.Writer["fs"](wfs.Options{OutputDir: dir, NoClobber: !force})
			if err != nil {
				return err
			}
			path := filepath.Join(dir, config.FileName)
			if err := w.Write(cmd.Context(), contract.ArtifactID(config.FileName), bytes.NewReader(raw)); err != nil {
				if errors.Is(err, os.ErrExist) {
					return fmt.Errorf("%s already exists (use --force to overwrite): %w", path, contract.ErrInvalidInput)
				}
				return err
			}
			fprintf(stdout, "已写出配置模板 %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "创建缺失目录并覆盖已有文件")
	return cmd
}
