package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/cmd/heapctl/logger"
	"github.com/joshuapare/heapkit/internal/trace"
)

var replayCheck bool

func init() {
	cmd := newReplayCmd()
	cmd.Flags().BoolVar(&replayCheck, "check", false, "Run the heap checker after every op (implicit allocator only)")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace>...",
		Short: "Replay traces and report utilization and throughput",
		Long: `The replay command runs each trace against a fresh heap, validates every
block the allocator hands out, and prints one row per trace.

Example:
  heapctl replay traces/*.rep
  heapctl replay --strategy best --realloc inplace traces/realloc-bal.rep
  heapctl replay --allocator bump --json short1.rep`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), args)
		},
	}
	return cmd
}

// replayReport is one row of replay output.
type replayReport struct {
	trace.Result
	Allocator  string  `json:"allocator"`
	Throughput float64 `json:"kops_per_sec"`
	Error      string  `json:"error,omitempty"`
}

func runReplay(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := configFromFlags()
	if err != nil {
		return err
	}
	if replayCheck && cfg.Bump {
		return fmt.Errorf("--check requires the implicit allocator")
	}

	h, err := openHeap(cfg)
	if err != nil {
		return err
	}
	defer h.close()

	reports := make([]replayReport, 0, len(args))
	failed := 0
	for _, path := range args {
		rep, _ := replayOne(ctx, h, path, replayCheck)
		if rep.Error != "" {
			failed++
		}
		reports = append(reports, rep)
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	if jsonOut {
		if err := printJSON(reports); err != nil {
			return err
		}
	} else {
		printReplayTable(cfg.label(), reports)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d traces failed", failed, len(reports))
	}
	return nil
}

// replayOne parses and replays a single trace. Failures are recorded in the
// row as well as returned so callers can keep going with the next trace.
func replayOne(ctx context.Context, h *heap, path string, check bool) (replayReport, error) {
	rep := replayReport{Allocator: h.cfg.label()}
	rep.Name = path
	fail := func(err error) (replayReport, error) {
		rep.Error = err.Error()
		return rep, err
	}

	printVerbose("Replaying %s\n", path)
	tr, err := trace.ParseFile(path)
	if err != nil {
		return fail(err)
	}
	rep.Name = tr.Name

	if err := h.start(); err != nil {
		return fail(fmt.Errorf("init: %w", err))
	}
	opts := &trace.Options{Logger: logger.L}
	if check {
		opts.Check = trace.VerifyRegion(h.region)
	}

	res, err := trace.Replay(ctx, tr, h.a, opts)
	if err != nil {
		var ce *trace.CheckError
		if errors.As(err, &ce) {
			rep.Ops = ce.Index
		}
		return fail(err)
	}
	rep.Result = *res
	if secs := res.Elapsed.Seconds(); secs > 0 {
		rep.Throughput = float64(res.Ops) / secs / 1000
	}
	if err := h.flush(ctx); err != nil {
		return fail(err)
	}
	return rep, nil
}

func printReplayTable(label string, reports []replayReport) {
	printInfo("\nAllocator: %s\n", label)
	printInfo("%s\n", strings.Repeat("=", 78))
	printInfo("%-24s %4s %10s %12s %12s %7s %10s\n", "TRACE", "OK", "OPS", "PEAK", "HEAP", "UTIL", "KOPS/S")

	var (
		okCount int
		utilSum float64
		opsSum  int
		elapsed time.Duration
	)
	for _, r := range reports {
		if r.Error != "" {
			printInfo("%-24s %4s  %s\n", r.Name, "no", r.Error)
			continue
		}
		okCount++
		utilSum += r.Utilization
		opsSum += r.Ops
		elapsed += r.Elapsed
		printInfo("%-24s %4s %10s %12s %12s %7s %10.0f\n",
			r.Name, "yes",
			formatNumber(int64(r.Ops)),
			formatNumber(int64(r.PeakPayload)),
			formatNumber(int64(r.HeapSize)),
			formatPercent(r.Utilization),
			r.Throughput)
	}

	printInfo("%s\n", strings.Repeat("-", 78))
	if okCount == 0 {
		printInfo("No trace completed.\n")
		return
	}
	kops := 0.0
	if elapsed > 0 {
		kops = float64(opsSum) / elapsed.Seconds() / 1000
	}
	printInfo("%-24s %4d %10s %12s %12s %7s %10.0f\n",
		"Total", okCount, formatNumber(int64(opsSum)), "", "",
		formatPercent(utilSum/float64(okCount)), kops)
}
