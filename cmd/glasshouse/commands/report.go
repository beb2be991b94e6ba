package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/glasshouse/pkg/config"
	"github.com/marmos91/glasshouse/pkg/report"
	"github.com/marmos91/glasshouse/pkg/store"
)

var (
	reportFormat string
	reportOutput string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a forensic report from recorded honeypot activity",
}

var reportIPCmd = &cobra.Command{
	Use:   "ip <address>",
	Short: "Report every authentication attempt recorded against an IP address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(func(ctx context.Context, gen *report.Generator, format report.Format) (string, error) {
			return gen.GenerateIPReport(ctx, args[0], format)
		})
	},
}

var reportPasswordCmd = &cobra.Command{
	Use:   "password <value>",
	Short: "Report every authentication attempt recorded offering a password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(func(ctx context.Context, gen *report.Generator, format report.Format) (string, error) {
			return gen.GeneratePasswordReport(ctx, args[0], format)
		})
	},
}

func init() {
	reportCmd.PersistentFlags().StringVar(&reportFormat, "format", "text", "Report format: text, markdown, html")
	reportCmd.PersistentFlags().StringVar(&reportOutput, "output", "", "Write the report to this file instead of stdout")
	reportCmd.AddCommand(reportIPCmd, reportPasswordCmd)
}

func runReport(generate func(context.Context, *report.Generator, report.Format) (string, error)) error {
	format, err := report.ParseFormat(reportFormat)
	if err != nil {
		return err
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	db, err := store.Open(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	gen := report.NewGenerator(db)
	text, err := generate(context.Background(), gen, format)
	if err != nil {
		return err
	}

	if reportOutput == "" {
		fmt.Print(text)
		return nil
	}
	return os.WriteFile(reportOutput, []byte(text), 0644)
}
