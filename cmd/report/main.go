// Command report computes the dashboard for one selection without starting
// the server and writes it as JSON, an XLSX workbook, CSV tables or PNG
// charts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/acspacelit/indicadores/internal/charts"
	"github.com/acspacelit/indicadores/internal/config"
	"github.com/acspacelit/indicadores/internal/dataprocessing"
	"github.com/acspacelit/indicadores/internal/exporter"
	"github.com/acspacelit/indicadores/internal/services"
	"github.com/acspacelit/indicadores/internal/source"
	"github.com/acspacelit/indicadores/internal/validation"
)

// Output formats
const (
	outputJSON = "json"
	outputXLSX = "xlsx"
	outputCSV  = "csv"
	outputPNG  = "png"
)

type options struct {
	url         string
	file        string
	spreadsheet string
	format      string
	sheet       string

	from      int
	to        int
	station   string
	countries string

	output string
	out    string
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(ctx, opts, os.Stdout, logger); err != nil {
		logger.Error("Report failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.StringVar(&opts.url, "url", "", "stations table URL (defaults to the configured source)")
	fs.StringVar(&opts.file, "file", "", "local stations table (.csv or .xlsx)")
	fs.StringVar(&opts.spreadsheet, "spreadsheet", "", "Google Sheets spreadsheet id")
	fs.StringVar(&opts.format, "format", "", "table format: auto, csv or xlsx")
	fs.StringVar(&opts.sheet, "sheet", "", "worksheet to read from an xlsx table")
	fs.IntVar(&opts.from, "from", 0, "first year of the range (defaults to the earliest year)")
	fs.IntVar(&opts.to, "to", 0, "last year of the range (defaults to the latest year)")
	fs.StringVar(&opts.station, "station", "", "station to report (defaults to the first station)")
	fs.StringVar(&opts.countries, "country", "", "comma separated countries, or Todos")
	fs.StringVar(&opts.output, "output", outputJSON, "output: json, xlsx, csv or png")
	fs.StringVar(&opts.out, "out", "", "output file (json, xlsx) or directory (csv, png)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch opts.output {
	case outputJSON, outputXLSX, outputCSV, outputPNG:
	default:
		err := fmt.Errorf("unknown output %q", opts.output)
		fmt.Fprintln(fs.Output(), err)
		return opts, err
	}
	return opts, nil
}

// sourceConfig overlays the command line source flags on the loaded
// configuration.
func (o options) sourceConfig(cfg config.SourceConfig) config.SourceConfig {
	if o.url != "" {
		cfg.URL = o.url
		cfg.File = ""
		cfg.SpreadsheetID = ""
	}
	if o.file != "" {
		cfg.File = o.file
		cfg.SpreadsheetID = ""
	}
	if o.spreadsheet != "" {
		cfg.SpreadsheetID = o.spreadsheet
	}
	if o.format != "" {
		cfg.Format = o.format
	}
	if o.sheet != "" {
		cfg.Sheet = o.sheet
	}
	return cfg
}

func (o options) query() services.ReportQuery {
	var q services.ReportQuery
	if o.from != 0 {
		q.From = &o.from
	}
	if o.to != 0 {
		q.To = &o.to
	}
	q.Station = o.station
	if o.countries != "" {
		q.Countries = strings.Split(o.countries, ",")
	}
	return q
}

func run(ctx context.Context, opts options, stdout io.Writer, logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	validator := validation.NewFileValidator(logger)
	if opts.file != "" {
		if err := validator.ValidateTableFile(opts.file); err != nil {
			return err
		}
	}
	if err := validateOutput(validator, opts); err != nil {
		return err
	}

	src, err := source.New(ctx, opts.sourceConfig(cfg.Source), logger)
	if err != nil {
		return err
	}

	logger.Info("Fetching stations table", slog.String("source", src.Name()))
	dataset, err := src.Fetch(ctx)
	if err != nil {
		return err
	}
	if warnings := dataset.Stats.ParseWarnings(); warnings > 0 {
		logger.Warn("Numeric cells could not be parsed", slog.Int("cells", warnings))
	}

	sel := services.ResolveSelection(opts.query(), dataprocessing.Options(dataset.Records))
	report, err := dataprocessing.ComputeReport(dataset.Records, sel)
	if err != nil {
		return err
	}
	logger.Info("Report computed",
		slog.Int("records", len(dataset.Records)),
		slog.Int("selected", report.RecordCount))

	switch opts.output {
	case outputXLSX:
		path := defaultString(opts.out, "indicadores.xlsx")
		if err := exporter.SaveWorkbook(path, report); err != nil {
			return err
		}
		logger.Info("Workbook written", slog.String("path", path))

	case outputCSV:
		paths, err := exporter.WriteCSVFiles(defaultString(opts.out, "."), exporter.Tables(report))
		if err != nil {
			return err
		}
		logger.Info("CSV tables written", slog.Any("paths", paths))

	case outputPNG:
		dir := defaultString(opts.out, ".")
		for _, name := range charts.Names {
			img, err := charts.PNG(name, report)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, name+".png")
			if err := os.WriteFile(path, img, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			logger.Info("Chart written", slog.String("path", path))
		}

	default:
		w := stdout
		if opts.out != "" {
			f, err := os.Create(opts.out)
			if err != nil {
				return fmt.Errorf("failed to create file: %w", err)
			}
			defer f.Close()
			w = f
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return nil
}

// validateOutput checks the output target before the table is fetched
func validateOutput(v *validation.FileValidator, opts options) error {
	switch opts.output {
	case outputXLSX:
		return v.ValidateOutputFile(defaultString(opts.out, "indicadores.xlsx"))
	case outputCSV, outputPNG:
		return v.ValidateOutputDirectory(defaultString(opts.out, "."))
	}
	if opts.out != "" {
		return v.ValidateOutputFile(opts.out)
	}
	return nil
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
