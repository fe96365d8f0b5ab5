package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/arena/verify"
)

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <trace>",
		Short: "Replay a trace with the heap checker after every op",
		Long: `The check command replays a trace against the implicit allocator and walks
the whole heap after every op, stopping at the first broken invariant.

Example:
  heapctl check short1.rep
  heapctl check --strategy next --realloc inplace realloc2-bal.rep`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), args)
		},
	}
}

type checkResult struct {
	Trace     string `json:"trace"`
	Allocator string `json:"allocator"`
	Ops       int    `json:"ops"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	Invariant string `json:"invariant,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

func runCheck(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := configFromFlags()
	if err != nil {
		return err
	}
	if cfg.Bump {
		return fmt.Errorf("check requires the implicit allocator")
	}

	h, err := openHeap(cfg)
	if err != nil {
		return err
	}
	defer h.close()

	rep, replayErr := replayOne(ctx, h, args[0], true)
	res := checkResult{
		Trace:     rep.Name,
		Allocator: rep.Allocator,
		Ops:       rep.Ops,
		OK:        rep.Error == "",
		Error:     rep.Error,
	}

	// Surface the violated invariant when the heap checker tripped.
	var ve *verify.ValidationError
	if errors.As(replayErr, &ve) {
		res.Invariant, res.Offset = ve.Type, ve.Offset
	}

	if jsonOut {
		if err := printJSON(res); err != nil {
			return err
		}
	} else if res.OK {
		printInfo("%s: %s ops, heap invariants held after every op (%s)\n",
			res.Trace, formatNumber(int64(res.Ops)), res.Allocator)
		if impl := h.impl; impl != nil {
			hs := impl.HeapStats()
			printVerbose("  final heap: %s in %d blocks, %d free\n",
				formatBytes(int64(hs.HeapSize)), hs.Blocks, hs.FreeBlocks)
		}
	} else {
		printInfo("%s: FAILED\n  %s\n", res.Trace, res.Error)
		if res.Invariant != "" {
			printInfo("  invariant: %s at offset %d\n", res.Invariant, res.Offset)
		}
	}

	if !res.OK {
		return fmt.Errorf("check failed: %s", res.Trace)
	}
	return nil
}
