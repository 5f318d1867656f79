package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"ecomdash/internal/analysis"
	"ecomdash/internal/config"
	"ecomdash/internal/dataset"
	"ecomdash/internal/exporter"
	"ecomdash/internal/infrastructure"
	"ecomdash/internal/services"
)

type reportOptions struct {
	configFile string
	sections   []string
	xlsxPath   string
	csvDir     string
	logLevel   string
	noColor    bool
}

func newRootCmd() *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the e-commerce dashboard in the terminal",
		Long: "report loads the seven e-commerce tables, runs the selected analyses " +
			"and prints each one as a table, followed by the conclusion. " +
			"Sections that cannot be computed are reported as warnings.",
		Example: "  report --section payment-methods --section top-sellers-by-revenue\n" +
			"  report --xlsx dashboard.xlsx --csv-dir out/",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (default: config.yaml or configs/config.yaml)")
	flags.StringSliceVarP(&opts.sections, "section", "s", nil,
		"analyses to run, repeatable or comma separated (default: all)\n"+strings.Join(analysis.CatalogNames(), ", "))
	flags.StringVar(&opts.xlsxPath, "xlsx", "", "also write an XLSX workbook to this path")
	flags.StringVar(&opts.csvDir, "csv-dir", "", "also write one CSV per section into this directory")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable coloured output")

	return cmd
}

func runReport(ctx context.Context, opts *reportOptions, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.noColor {
		color.NoColor = true
	}

	sel, err := analysis.ParseSelection(opts.sections)
	if err != nil {
		return err
	}

	var cfg *config.Config
	if opts.configFile != "" {
		cfg, err = config.LoadFrom(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg.Logging.Level = opts.logLevel
	logger := infrastructure.NewLogger(cfg.Logging, errOut)

	loader, err := dataset.NewLoaderFromConfig(cfg.Datasets, dataset.WithLogger(logger))
	if err != nil {
		return err
	}
	svc, err := services.NewDashboardService(loader, analysis.NewPipeline(analysis.WithLogger(logger)), logger)
	if err != nil {
		return err
	}

	if cfg.Datasets.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Datasets.FetchTimeout)
		defer cancel()
	}

	dashboard, err := svc.Dashboard(ctx, sel)
	if err != nil {
		return fmt.Errorf("failed to load datasets: %w", err)
	}

	sheets := exporter.TabulateAll(dashboard.Sections)
	printDashboard(out, sheets, dashboard)

	if opts.xlsxPath != "" {
		if err := exporter.WriteWorkbookFile(opts.xlsxPath, sheets, dashboard.Conclusion); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", color.GreenString("Wrote"), opts.xlsxPath)
	}
	if opts.csvDir != "" {
		paths, err := exporter.WriteCSVDir(opts.csvDir, sheets, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %d CSV files to %s\n", color.GreenString("Wrote"), len(paths), opts.csvDir)
	}

	if failed := dashboard.Failed(); len(failed) > 0 {
		logger.Warn("Some sections could not be computed", slog.Int("failed", len(failed)))
	}
	return nil
}

var heading = color.New(color.FgCyan, color.Bold)

func printDashboard(out io.Writer, sheets []exporter.Sheet, dashboard *services.Dashboard) {
	for i, sheet := range sheets {
		heading.Fprintf(out, "%s\n", sheet.Title)
		if sheet.Failed {
			fmt.Fprintf(out, "%s %s\n\n", color.YellowString("warning:"), dashboard.Sections[i].Error)
			continue
		}
		printTable(out, sheet)
		fmt.Fprintln(out)
	}

	heading.Fprintln(out, "Conclusion")
	for _, line := range dashboard.Conclusion {
		fmt.Fprintf(out, "  - %s\n", line)
	}
}

func printTable(out io.Writer, sheet exporter.Sheet) {
	records := sheet.Records()

	table := tablewriter.NewWriter(out)
	table.SetHeader(records[0])
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(records[1:])
	table.Render()
}
