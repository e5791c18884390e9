package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/couchcryptid/volcano-data-kit/gvp"
	"github.com/couchcryptid/volcano-data-kit/internal/cli"
	"github.com/couchcryptid/volcano-data-kit/internal/observability"
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	command, args := os.Args[1], os.Args[2:]
	if command == "help" || command == "-h" || command == "--help" {
		usage(os.Stdout)
		return
	}

	cfg, err := cli.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command {
	case "fetch":
		err = runFetch(ctx, cfg, logger, args)
	case "info":
		err = runInfo(cfg, logger, args)
	case "clear":
		err = runClear(cfg, logger, args)
	case "export":
		err = runExport(ctx, cfg, logger, args)
	default:
		fmt.Fprintf(os.Stderr, "votw: unknown command %q\n\n", command)
		usage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func runFetch(ctx context.Context, cfg *cli.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	force := fs.Bool("force", false, "refetch even when a cached copy exists")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: votw fetch [-force] <dataset>|all")
		fs.PrintDefaults()
	}
	fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	datasets, err := resolveDatasets(fs.Arg(0))
	if err != nil {
		return err
	}

	d, err := newDownloader(cfg, logger)
	if err != nil {
		return err
	}
	for _, dataset := range datasets {
		path, err := d.Download(ctx, dataset, *force)
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\n", dataset, path)
	}
	return nil
}

func runInfo(cfg *cli.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: votw info [dataset]")
	}
	fs.Parse(args)
	if fs.NArg() > 1 {
		fs.Usage()
		os.Exit(2)
	}

	var datasets []gvp.Dataset
	if fs.NArg() == 1 {
		var err error
		if datasets, err = resolveDatasets(fs.Arg(0)); err != nil {
			return err
		}
	}

	d, err := newDownloader(cfg, logger)
	if err != nil {
		return err
	}
	statuses, err := d.CacheInfo(datasets...)
	if err != nil {
		return err
	}
	for _, status := range statuses {
		if !status.Cached {
			fmt.Printf("%s\tnot cached\n", status.Dataset)
			continue
		}
		fmt.Printf("%s\t%d bytes\t%s\t%s\n",
			status.Dataset, status.FileSize,
			status.DownloadTime.Format(time.RFC3339), status.FilePath)
	}
	return nil
}

func runClear(cfg *cli.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: votw clear [dataset]")
	}
	fs.Parse(args)
	if fs.NArg() > 1 {
		fs.Usage()
		os.Exit(2)
	}

	var datasets []gvp.Dataset
	if fs.NArg() == 1 {
		var err error
		if datasets, err = resolveDatasets(fs.Arg(0)); err != nil {
			return err
		}
	}

	d, err := newDownloader(cfg, logger)
	if err != nil {
		return err
	}
	if err := d.ClearCache(datasets...); err != nil {
		return err
	}
	if len(datasets) == 0 {
		datasets = gvp.Datasets()
	}
	for _, dataset := range datasets {
		fmt.Printf("cleared %s\n", dataset)
	}
	return nil
}

func runExport(ctx context.Context, cfg *cli.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "csv", "output format: csv or geojson")
	output := fs.String("o", "", "output path (defaults to a path inside the cache directory)")
	force := fs.Bool("force", false, "refetch before exporting")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: votw export [-format csv|geojson] [-o path] [-force] <dataset>")
		fs.PrintDefaults()
	}
	fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	dataset := gvp.Dataset(fs.Arg(0))
	if !dataset.Valid() {
		return &gvp.InvalidDatasetError{Dataset: dataset}
	}

	d, err := newDownloader(cfg, logger)
	if err != nil {
		return err
	}

	var path string
	switch *format {
	case "csv":
		path, err = d.ExportCSV(ctx, dataset, *output, *force)
	case "geojson":
		path, err = d.ExportGeoJSON(ctx, dataset, *output, *force)
	default:
		fmt.Fprintf(os.Stderr, "votw: unknown format %q\n", *format)
		fs.Usage()
		os.Exit(2)
	}
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func newDownloader(cfg *cli.Config, logger *slog.Logger) (*gvp.Downloader, error) {
	return gvp.NewDownloader(
		gvp.WithCacheDir(cfg.CacheDir),
		gvp.WithBaseURL(cfg.BaseURL),
		gvp.WithTimeout(cfg.Timeout),
		gvp.WithLogger(logger),
	)
}

// resolveDatasets expands "all" into every known dataset and validates a
// single dataset name otherwise.
func resolveDatasets(arg string) ([]gvp.Dataset, error) {
	if arg == "all" {
		return gvp.Datasets(), nil
	}
	dataset := gvp.Dataset(arg)
	if !dataset.Valid() {
		return nil, &gvp.InvalidDatasetError{Dataset: dataset}
	}
	return []gvp.Dataset{dataset}, nil
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: votw <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  fetch   download datasets into the local cache")
	fmt.Fprintln(w, "  info    show cache status for datasets")
	fmt.Fprintln(w, "  clear   remove cached dataset files")
	fmt.Fprintln(w, "  export  write a dataset as CSV or GeoJSON")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Datasets: %s, or all\n", datasetList())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run \"votw <command> -h\" for command flags.")
}

func datasetList() string {
	names := make([]string, 0, len(gvp.Datasets()))
	for _, dataset := range gvp.Datasets() {
		names = append(names, string(dataset))
	}
	return strings.Join(names, ", ")
}
