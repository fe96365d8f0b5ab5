package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/arena/alloc"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <trace>",
		Short: "Replay a trace and show allocator counters and the final heap shape",
		Long: `The stats command replays a trace against the implicit allocator and prints
its call counters (fast and slow paths, splits, coalesces, growth) together
with a walk of the final heap.

Example:
  heapctl stats binary-bal.rep
  heapctl stats --strategy best binary-bal.rep --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), args)
		},
	}
}

type statsOutput struct {
	Trace     string          `json:"trace"`
	Allocator string          `json:"allocator"`
	Calls     alloc.Stats     `json:"calls"`
	Heap      alloc.HeapStats `json:"heap"`
}

func runStats(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := configFromFlags()
	if err != nil {
		return err
	}
	if cfg.Bump {
		return fmt.Errorf("stats requires the implicit allocator")
	}

	h, err := openHeap(cfg)
	if err != nil {
		return err
	}
	defer h.close()

	rep, err := replayOne(ctx, h, args[0], false)
	if err != nil {
		return err
	}

	out := statsOutput{
		Trace:     rep.Name,
		Allocator: rep.Allocator,
		Calls:     h.impl.Stats(),
		Heap:      h.impl.HeapStats(),
	}
	if jsonOut {
		return printJSON(out)
	}

	c, hs := out.Calls, out.Heap
	printInfo("\nAllocator Statistics: %s (%s)\n\n", out.Trace, out.Allocator)

	printInfo("Calls:\n")
	printInfo("  malloc:  %s (%s fit, %s grew the heap)\n",
		formatNumber(int64(c.AllocCalls)), formatNumber(int64(c.AllocFastPath)), formatNumber(int64(c.AllocSlowPath)))
	printInfo("  free:    %s\n", formatNumber(int64(c.FreeCalls)))
	printInfo("  realloc: %s (%s in place)\n", formatNumber(int64(c.ReallocCalls)), formatNumber(int64(c.ReallocInPlace)))
	printInfo("  splits:  %s\n", formatNumber(int64(c.SplitCount)))
	printInfo("  coalesce: %s forward, %s backward\n", formatNumber(int64(c.CoalesceForward)), formatNumber(int64(c.CoalesceBackward)))
	printInfo("  blocks scanned: %s\n", formatNumber(int64(c.BlocksScanned)))
	printInfo("  heap growth: %s calls, %s\n\n", formatNumber(int64(c.GrowCalls)), formatBytes(c.GrowBytes))

	printInfo("Final Heap:\n")
	printInfo("  size:   %s\n", formatBytes(int64(hs.HeapSize)))
	printInfo("  blocks: %s (%s allocated, %s free)\n",
		formatNumber(int64(hs.Blocks)), formatNumber(int64(hs.AllocatedBlocks)), formatNumber(int64(hs.FreeBlocks)))
	printInfo("  free bytes:    %s (largest block %s)\n", formatBytes(int64(hs.FreeBytes)), formatBytes(int64(hs.LargestFree)))
	printInfo("  utilization:   %s\n", formatPercent(hs.Utilization()))
	printInfo("  fragmentation: %s\n", formatPercent(hs.Fragmentation()))
	printInfo("  peak payload:  %s\n", formatBytes(int64(rep.PeakPayload)))
	return nil
}
