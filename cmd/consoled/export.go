package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"hotel-console-backend/config"
	"hotel-console-backend/internal/db"
	"hotel-console-backend/internal/logfilter"
	"hotel-console-backend/internal/logger"
	"hotel-console-backend/internal/model"
	"hotel-console-backend/internal/parse"
	"hotel-console-backend/internal/store"
	"hotel-console-backend/internal/syncer"
	"hotel-console-backend/internal/upstream"
)

type exportOptions struct {
	status      string
	vehicleType string
	dateFrom    string
	dateTo      string
	search      string
	tab         string
	format      string
	output      string
	refresh     bool
}

// query maps the flags onto the same parameters the log endpoint accepts.
func (o exportOptions) query() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("status", o.status)
	set("vehicleType", o.vehicleType)
	set("dateFrom", o.dateFrom)
	set("dateTo", o.dateTo)
	set("search", o.search)
	set("tab", o.tab)
	return q
}

func newExportCmd() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the vehicle log to a CSV or PDF file",
		Long: "Applies the log filters to the stored vehicle activity snapshot and writes the result. " +
			"With --refresh the snapshot is first synced using the configured service token.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger.Init(cfg.Logging)
			defer logger.Sync()
			return runExport(cmd, cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.status, "status", "", "all, parked or exited")
	cmd.Flags().StringVar(&opts.vehicleType, "type", "", "all, car, bike, van or bus")
	cmd.Flags().StringVar(&opts.dateFrom, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.dateTo, "to", "", "last day, YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.search, "search", "", "vehicle number, guest name or room")
	cmd.Flags().StringVar(&opts.tab, "tab", "", "all, parked or exited")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "csv", "csv or pdf")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, '-' for stdout (default parking-log-<date>.<format>)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "sync the snapshot from upstream before exporting")
	return cmd
}

func runExport(cmd *cobra.Command, cfg *config.Config, opts exportOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	format := logfilter.Format(strings.ToLower(opts.format))
	if !format.Valid() {
		return fmt.Errorf("unsupported export format %q", opts.format)
	}
	engine := logfilter.NewEngine(cfg.Console.Location, logfilter.WithCurrency(cfg.Console.Currency))
	spec, err := parse.ParseFilterSpec(opts.query(), engine.Location())
	if err != nil {
		return err
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	appStore := store.NewGormStore(gormDB)

	if opts.refresh {
		syncSvc := syncer.NewService(cfg.Sync, cfg.Upstream.ServiceToken, upstream.New(cfg.Upstream), appStore, nil)
		if _, err := syncSvc.Refresh(ctx, "", syncer.TriggerManual); err != nil {
			return fmt.Errorf("refresh before export: %w", err)
		}
	}

	records, err := appStore.ListActivities(ctx)
	if err != nil {
		return err
	}
	shown := engine.Apply(records, spec)

	var buf bytes.Buffer
	if err := writeExport(&buf, engine, format, shown); err != nil {
		return err
	}

	if opts.output == "-" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	path := opts.output
	if path == "" {
		path = engine.ExportFilename(engine.Now(), format)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	abs, _ := filepath.Abs(path)
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d of %d records to %s\n", len(shown), len(records), abs)
	return nil
}

func writeExport(w io.Writer, engine *logfilter.Engine, format logfilter.Format, records []model.VehicleActivity) error {
	var (
		warnings []logfilter.Warning
		err      error
	)
	switch format {
	case logfilter.FormatPDF:
		warnings, err = engine.ExportPDF(w, records, logfilter.Aggregate(records))
	default:
		warnings, err = engine.ExportCSV(w, records)
	}
	for _, warn := range warnings {
		logger.Get(context.Background()).Warnw("vehicle log data warning", "record_id", warn.RecordID, "kind", string(warn.Kind), "detail", warn.Detail)
	}
	return err
}
