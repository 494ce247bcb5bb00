// Command slipstate inspects simulator transition logs and writes
// point-source files for the events in them.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arloliu/slipstate/catalog"
	"github.com/arloliu/slipstate/endian"
	"github.com/arloliu/slipstate/translog"
)

var version = "dev"

type rootOptions struct {
	verbose          bool
	catalogPath      string
	byteOrder        string
	patchCount       int
	zeroBased        bool
	indexSize        int
	windowSize       int
	maxEventDuration float64
	indexCache       string

	logger zerolog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "slipstate",
		Short:         "Inspect simulator transition logs and build point-source files",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.logger = newLogger(cmd, opts.verbose)
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVarP(&opts.catalogPath, "catalog", "c", "", "YAML catalog with patch geometry and events")
	flags.StringVar(&opts.byteOrder, "byte-order", "auto", "byte order of the log: auto, little or big")
	flags.IntVar(&opts.patchCount, "patch-count", 0, "number of patches, defaults to the catalog patch count")
	flags.BoolVar(&opts.zeroBased, "zero-based", false, "patch ids in the log start at 0")
	flags.IntVar(&opts.indexSize, "index-size", translog.DefaultIndexSize, "number of time index markers")
	flags.IntVar(&opts.windowSize, "window-size", 0, "read window size in records, 0 picks one from the index")
	flags.Float64Var(&opts.maxEventDuration, "max-event-duration", translog.DefaultMaxEventDuration, "event scan ceiling in seconds")
	flags.StringVar(&opts.indexCache, "index-cache", "", "time index cache file")

	cmd.AddCommand(
		newInfoCmd(opts),
		newDumpCmd(opts),
		newRangeCmd(opts),
		newEventCmd(opts),
		newSRFCmd(opts),
	)

	return cmd
}

func newLogger(cmd *cobra.Command, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = cmd.ErrOrStderr()
		w.TimeFormat = time.TimeOnly
	})).Level(level).With().Timestamp().Logger()
}

func (o *rootOptions) loadCatalog() (*catalog.Catalog, error) {
	if o.catalogPath == "" {
		return nil, nil
	}

	return catalog.LoadFile(o.catalogPath)
}

func (o *rootOptions) openLog(path string, cat *catalog.Catalog) (*translog.Log, error) {
	logOpts := []translog.Option{
		translog.WithLogger(o.logger),
		translog.WithIndexSize(o.indexSize),
		translog.WithMaxEventDuration(o.maxEventDuration),
	}

	patchCount := o.patchCount
	if patchCount == 0 && cat != nil {
		patchCount = cat.Geometry.ElementCount()
	}
	if patchCount > 0 {
		logOpts = append(logOpts, translog.WithPatchCount(patchCount))
	}

	if o.byteOrder != "auto" {
		engine, err := endian.Parse(o.byteOrder)
		if err != nil {
			return nil, err
		}
		logOpts = append(logOpts, translog.WithByteOrder(engine))
	}
	if o.zeroBased {
		logOpts = append(logOpts, translog.WithZeroBasedPatchIDs())
	}
	if o.windowSize > 0 {
		logOpts = append(logOpts, translog.WithWindowSize(o.windowSize))
	}
	if o.indexCache != "" {
		logOpts = append(logOpts, translog.WithIndexCache(o.indexCache))
	}

	return translog.Open(path, logOpts...)
}
