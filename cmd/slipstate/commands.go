package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arloliu/slipstate"
	"github.com/arloliu/slipstate/catalog"
	"github.com/arloliu/slipstate/endian"
	"github.com/arloliu/slipstate/record"
	"github.com/arloliu/slipstate/slip"
	"github.com/arloliu/slipstate/srf"
	"github.com/arloliu/slipstate/translog"
)

func newInfoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info <log>",
		Short: "Show the layout and time span of a transition log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}

			log, err := opts.openLog(args[0], cat)
			if err != nil {
				return err
			}
			defer log.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "records:      %d\n", log.Count())
			fmt.Fprintf(out, "size:         %d bytes\n", log.Size())
			host := "swapped"
			if endian.IsNative(log.ByteOrder()) {
				host = "native"
			}
			fmt.Fprintf(out, "byte order:   %s (%s)\n", endian.Name(log.ByteOrder()), host)
			fmt.Fprintf(out, "index:        %d markers, %d records apart\n", log.Index().Len(), log.Index().BucketWidth())
			fmt.Fprintf(out, "window:       %d records\n", log.WindowSize())

			if log.Count() == 0 {
				return nil
			}

			first, err := log.FirstTime()
			if err != nil {
				return err
			}
			last, err := log.LastTime()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "time span:    %.6f .. %.6f\n", first, last)

			return nil
		},
	}
}

func newDumpCmd(opts *rootOptions) *cobra.Command {
	var start, limit int64

	cmd := &cobra.Command{
		Use:   "dump <log>",
		Short: "Print records by position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}

			log, err := opts.openLog(args[0], cat)
			if err != nil {
				return err
			}
			defer log.Close()

			end := log.Count()
			if limit > 0 {
				end = min(end, start+limit)
			}

			out := cmd.OutOrStdout()
			for i := start; i < end; i++ {
				tr, err := log.Transition(i)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d\t%s\n", i, tr)
			}

			return nil
		},
	}

	cmd.Flags().Int64Var(&start, "start", 0, "index of the first record")
	cmd.Flags().Int64Var(&limit, "limit", 20, "number of records to print, 0 for all")

	return cmd
}

func newRangeCmd(opts *rootOptions) *cobra.Command {
	var countOnly bool

	cmd := &cobra.Command{
		Use:   "range <log> <t0> <t1>",
		Short: "Print the transitions with t0 <= time <= t1",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t0, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid t0: %w", err)
			}
			t1, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid t1: %w", err)
			}

			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}

			log, err := opts.openLog(args[0], cat)
			if err != nil {
				return err
			}
			defer log.Close()

			out := cmd.OutOrStdout()
			n := 0
			for tr, err := range log.Range(t0, t1) {
				if err != nil {
					return err
				}
				n++
				if !countOnly {
					fmt.Fprintln(out, tr)
				}
			}

			stats := log.Stats()
			opts.logger.Debug().
				Int("transitions", n).
				Int64("batch_reads", stats.BatchReads).
				Int64("backward_reads", stats.BackwardReads).
				Msg("range query done")

			if countOnly {
				fmt.Fprintln(out, n)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&countOnly, "count", false, "print only the number of transitions")

	return cmd
}

type eventFlags struct {
	id       int
	velocity float64
}

func (f *eventFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.id, "event", "e", 0, "event id in the catalog")
	cmd.Flags().Float64Var(&f.velocity, "velocity", 0, "slip velocity in m/s, defaults to the catalog value")
	_ = cmd.MarkFlagRequired("event")
}

// extract opens the log and builds the slip-time function of the selected event.
func (f *eventFlags) extract(opts *rootOptions, path string) (*catalog.Catalog, *catalog.EventPatchSet, *slip.Func, *translog.Log, error) {
	cat, err := opts.loadCatalog()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if cat == nil {
		return nil, nil, nil, nil, errors.New("--catalog is required")
	}

	ev, ok := cat.Event(f.id)
	if !ok {
		return nil, nil, nil, nil, fmt.Errorf("event %d is not in the catalog", f.id)
	}

	velocity := f.velocity
	if velocity == 0 {
		velocity = ev.SlipVelocity
	}

	log, err := opts.openLog(path, cat)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	fn, err := slipstate.ExtractEvent(log, ev, velocity)
	if err != nil {
		_ = log.Close()
		return nil, nil, nil, nil, fmt.Errorf("event %d: %w", f.id, err)
	}

	return cat, ev, fn, log, nil
}

func newEventCmd(opts *rootOptions) *cobra.Command {
	var (
		sel       eventFlags
		threshold float64
	)

	cmd := &cobra.Command{
		Use:   "event <log>",
		Short: "Assemble an event and print its slip intervals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ev, fn, log, err := sel.extract(opts, args[0])
			if err != nil {
				return err
			}
			defer log.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "event %d: %.6f .. %.6f, %d patches\n", ev.ID, fn.StartTime(), fn.EndTime(), len(fn.PatchIDs()))
			for _, id := range fn.PatchIDs() {
				writeIntervals(out, id, fn.Intervals(id))
				if total, ok := fn.TotalSlip(id); ok {
					fmt.Fprintf(out, "  total slip %.6f m\n", total)
				}
			}

			expected := ev.ExpectedSlip()
			if len(expected) == 0 {
				return nil
			}

			report, err := fn.ValidateTotalSlip(expected, threshold)
			fmt.Fprintf(out, "slip check: %d patches, diff min %.3f%% max %.3f%% mean %.3f%%, worst patch %d\n",
				report.Patches, report.MinPct, report.MaxPct, report.MeanPct, report.Worst)

			var mismatch *slip.MismatchError
			if errors.As(err, &mismatch) {
				opts.logger.Warn().
					Int32("patch", mismatch.PatchID).
					Float64("expected", mismatch.Expected).
					Float64("actual", mismatch.Actual).
					Float64("pct_diff", mismatch.PctDiff).
					Msg("total slip differs from catalog")

				return nil
			}

			return err
		},
	}

	sel.register(cmd)
	cmd.Flags().Float64Var(&threshold, "threshold", 1, "allowed total slip difference in percent")

	return cmd
}

func writeIntervals(w io.Writer, id int32, intervals []record.Interval) {
	fmt.Fprintf(w, "patch %d\n", id)
	for _, iv := range intervals {
		fmt.Fprintf(w, "  %.6f .. %.6f %s\n", iv.Start, iv.End, iv.State)
	}
}

func newSRFCmd(opts *rootOptions) *cobra.Command {
	var (
		sel     eventFlags
		dt      float64
		mode    string
		ver     string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "srf <log>",
		Short: "Write the point sources of an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := srf.ParseMode(mode)
			if err != nil {
				return err
			}
			v, err := srf.ParseVersion(ver)
			if err != nil {
				return err
			}

			cat, _, fn, log, err := sel.extract(opts, args[0])
			if err != nil {
				return err
			}
			defer log.Close()

			points, err := slipstate.BuildSRF(fn, cat.Geometry, dt, m)
			if err != nil {
				return err
			}

			if outPath == "" || outPath == "-" {
				return srf.Write(cmd.OutOrStdout(), v, points)
			}

			if err := srf.WriteFile(outPath, v, points); err != nil {
				return err
			}
			opts.logger.Info().
				Str("path", outPath).
				Int("points", len(points)).
				Str("mode", m.String()).
				Msg("wrote point sources")

			return nil
		},
	}

	sel.register(cmd)
	cmd.Flags().Float64Var(&dt, "dt", 0.05, "velocity sample spacing in seconds")
	cmd.Flags().StringVar(&mode, "mode", srf.ModeAdjustedVelocity.String(), "velocity derivation mode")
	cmd.Flags().StringVar(&ver, "srf-version", srf.V2.String(), "point-source format version, 1.0 or 2.0")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file, compressed by extension (.zst, .s2, .lz4); stdout when empty")

	return cmd
}
