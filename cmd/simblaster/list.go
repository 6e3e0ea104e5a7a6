package main

import (
	"io"

	"github.com/spf13/cobra"

	"simblaster/internal/config"
	"simblaster/internal/pipeline"
	"simblaster/pkg/contract"
	"simblaster/pkg/registry"
	sfs "simblaster/plugins/scanner/filesystem"
)

func newListCmd(o *options, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the number of simulated files per channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(o)
			if err != nil {
				return err
			}
			dirs, err := config.ResolveDirs(cfg)
			if err != nil {
				return err
			}
			sc, err := registry.Scanner["fs"](sfs.Options{MCGenDir: dirs.MCGen, GeantDir: dirs.Geant})
			if err != nil {
				return err
			}
			inv, err := sc.Inventory(cmd.Context())
			if err != nil {
				return err
			}
			fprintf(stdout, "Amount of simulated files per channel:\n")
			for _, tc := range inv {
				if tc.Seqs.Max() == 0 {
					continue
				}
				fprintf(stdout, " %-20s -- %4d files", pipeline.FormatChannel(tc.Tag, true), tc.Seqs.Max())
				if !tc.Seqs.Consistent() {
					fprintf(stdout, "  (%s %d, %s %d)", contract.PrefixMCGen, tc.Seqs.MCGen, contract.PrefixGeant, tc.Seqs.Geant)
				}
				fprintf(stdout, "\n")
			}
			return nil
		},
	}
}
