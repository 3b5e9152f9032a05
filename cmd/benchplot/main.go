// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Benchplot draws the figures of the floating-point precision
// experiments from their benchmark logs.
//
// Usage:
//
//	benchplot [flags] [figure ...]
//
// Benchplot reads the logs named by a figure configuration, averages
// repeated measurements, normalizes them and renders each figure to the
// requested outputs. With no figure names it renders every figure of
// the configuration. Without -config it uses the built-in
// configuration, which reproduces the charts of every experiment.
//
// Logs are read relative to -dir, which may also be a Google Cloud
// Storage prefix such as gs://bucket/logs.
//
// A figure whose log is missing or unusable is reported and skipped;
// benchplot then exits with status 1 after rendering the others.
//
// With -watch, benchplot keeps running after the first rendering and
// renders again whenever a log in -dir or the -config file changes.
// With -schedule, it renders again on a cron schedule, which suits logs
// in Cloud Storage. Either mode runs until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/fpbench/benchcsv"
	"golang.org/x/fpbench/benchplot"
	"golang.org/x/fpbench/benchseries"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"
)

var exit = os.Exit // replaced during testing

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "benchplot: %v\n", err)
		}
		exit(1)
	}
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core).Named("benchplot")
}

// environment holds the defaults benchplot reads from BENCHPLOT_*
// variables. Flags override them.
type environment struct {
	Dir       string `envconfig:"DIR"`
	Config    string `envconfig:"CONFIG"`
	Anonymous bool   `envconfig:"ANONYMOUS"`
	Schedule  string `envconfig:"SCHEDULE"`
}

func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	var env environment
	if err := envconfig.Process("BENCHPLOT", &env); err != nil {
		return err
	}

	fs := flag.NewFlagSet("benchplot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: benchplot [flags] [figure ...]\n")
		fmt.Fprintf(stderr, "flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nBENCHPLOT_DIR, BENCHPLOT_CONFIG, BENCHPLOT_ANONYMOUS and BENCHPLOT_SCHEDULE\nset the defaults of -dir, -config, -anonymous and -schedule.\n")
	}
	var (
		flagConfig    = fs.String("config", env.Config, "read figure definitions from `file` instead of the built-in ones")
		flagDir       = fs.String("dir", env.Dir, "read logs relative to `dir`, a directory or gs://bucket/prefix")
		flagPNG       = fs.String("png", "", "write png charts into `dir`")
		flagSVG       = fs.String("svg", "", "write svg charts into `dir`")
		flagPDF       = fs.String("pdf", "", "write pdf charts into `dir`")
		flagCSV       = fs.Bool("csv", false, "write the spreadsheet view of each figure to standard output")
		flagXLSX      = fs.String("xlsx", "", "write the spreadsheet view of each figure to a workbook `file`")
		flagRaw       = fs.Bool("raw", false, "add unnormalized values to CSV and workbook output")
		flagTable     = fs.Bool("table", false, "print the averaged groups of each figure to standard output")
		flagList      = fs.Bool("list", false, "list the figures of the configuration and exit")
		flagAnonymous = fs.Bool("anonymous", env.Anonymous, "read gs:// logs without credentials")
		flagWatch     = fs.Bool("watch", false, "render again whenever a log in -dir or the -config file changes")
		flagSchedule  = fs.String("schedule", env.Schedule, "render again on the cron `schedule`, such as \"@every 10m\"")
		flagVerbose   = fs.Bool("v", false, "log debugging detail")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := newLogger(stderr, *flagVerbose)
	defer log.Sync()
	sugar := log.Sugar()

	cfg := benchplot.Default()
	if *flagConfig != "" {
		var err error
		if cfg, err = benchplot.Load(*flagConfig); err != nil {
			return err
		}
	}
	sugar.Debugw("loaded configuration", "file", *flagConfig, "figures", len(cfg.Figures))

	if *flagList {
		tw := tabwriter.NewWriter(stdout, 0, 8, 2, ' ', 0)
		for _, f := range cfg.Figures {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Name, f.Experiment, f.Axis.Title)
		}
		return tw.Flush()
	}
	if *flagWatch && strings.Contains(*flagDir, "://") {
		return fmt.Errorf("-watch needs a local -dir, not %s; use -schedule", *flagDir)
	}
	for _, name := range fs.Args() {
		if cfg.Figure(name) == nil {
			return fmt.Errorf("no figure %s", name)
		}
	}

	mux := &benchcsv.MuxOpener{Default: benchcsv.FileOpener{}, Schemes: map[string]benchcsv.Opener{}}
	if needsGCS(*flagDir, cfg) {
		var opts []option.ClientOption
		if *flagAnonymous {
			opts = append(opts, option.WithoutAuthentication())
		}
		gcs, err := benchcsv.NewGCSOpener(ctx, opts...)
		if err != nil {
			return err
		}
		defer gcs.Close()
		mux.Schemes["gs"] = gcs
	}

	if *flagPNG == "" && *flagSVG == "" && *flagPDF == "" && !*flagCSV && *flagXLSX == "" && !*flagTable {
		sugar.Warn("no output requested; use -png, -svg, -pdf, -csv, -xlsx or -table")
	}

	// render runs the pipeline once, with fresh sinks and a fresh
	// cache of logs.
	var mu sync.Mutex
	render := func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()

		var sinks benchseries.MultiSink
		if *flagPNG != "" || *flagSVG != "" || *flagPDF != "" {
			sinks = append(sinks, &benchseries.Charter{PNGDir: *flagPNG, SVGDir: *flagSVG, PDFDir: *flagPDF})
		}
		if *flagCSV {
			sinks = append(sinks, &benchseries.CSVSink{W: stdout, Raw: *flagRaw})
		}
		var xlsx *benchseries.XLSXSink
		if *flagXLSX != "" {
			xlsx = benchseries.NewXLSXSink(*flagXLSX)
			xlsx.Raw = *flagRaw
			sinks = append(sinks, xlsx)
		}

		p := &benchplot.Pipeline{
			Opener: mux,
			Dir:    *flagDir,
			Sink:   sinks,
			Warn:   sugar.Warnf,
		}
		if *flagTable {
			p.Table = stdout
		}
		n, err := p.Run(ctx, cfg, fs.Args()...)
		if xlsx != nil {
			if xlsx.Empty() {
				sugar.Warnw("no figures rendered, workbook not written", "file", *flagXLSX)
			}
			if cerr := xlsx.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
		sugar.Infow("rendered figures", "count", n)
		return err
	}

	err := render(ctx)
	if !*flagWatch && *flagSchedule == "" {
		return err
	}
	if err != nil {
		sugar.Errorw("render failed", "error", err)
	}

	again := func(ctx context.Context) {
		if err := render(ctx); err != nil && ctx.Err() == nil {
			sugar.Errorw("render failed", "error", err)
		}
	}
	g, ctx := errgroup.WithContext(ctx)
	if *flagWatch {
		g.Go(func() error {
			return watch(ctx, sugar, *flagDir, *flagConfig, again)
		})
	}
	if *flagSchedule != "" {
		g.Go(func() error {
			return schedule(ctx, sugar, *flagSchedule, again)
		})
	}
	return g.Wait()
}

// needsGCS reports whether any log of cfg is read from Cloud Storage.
func needsGCS(dir string, cfg *benchplot.Config) bool {
	if strings.HasPrefix(dir, "gs://") {
		return true
	}
	for _, f := range cfg.Figures {
		if strings.HasPrefix(f.Input, "gs://") {
			return true
		}
	}
	return false
}
