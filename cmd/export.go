package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/importer-intel/internal/export"
	"github.com/sells-group/importer-intel/internal/research"
)

var exportCmd = &cobra.Command{
	Use:   "export <importer>",
	Short: "Fetch an importer profile and write it as CSV, JSON, XLSX or HTML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		format, err := export.ParseFormat(name)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, "detail")
		if err != nil {
			return err
		}
		defer env.Close()
		defer env.logSpend()

		rec, err := env.Research.FetchDetail(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, research.UserMessage(err))
		}
		if rec.Name == "" {
			rec.Name = args[0]
		}

		if out == "" {
			out = export.Filename(rec.Name, format)
		}
		f, err := os.Create(out)
		if err != nil {
			return eris.Wrap(err, "export: create file")
		}
		defer f.Close() //nolint:errcheck

		if err := export.Write(f, rec, format); err != nil {
			return err
		}
		zap.L().Info("export written", zap.String("path", out), zap.String("format", string(format)))
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "csv", "output format: csv, json, xlsx or html")
	exportCmd.Flags().String("out", "", "output path (default <importer>_intel.<format>)")
	rootCmd.AddCommand(exportCmd)
}
