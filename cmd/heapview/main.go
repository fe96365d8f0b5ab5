package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/arena/alloc"
	"github.com/joshuapare/heapkit/cmd/heapview/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cliArgs is the parsed command line.
type cliArgs struct {
	debug   bool
	help    bool
	version bool
	heap    string // saved heap file instead of a trace
	trace   string
	opts    Options
}

func parseArgs(args []string) (cliArgs, error) {
	c := cliArgs{opts: Options{Limit: arena.DefaultLimit}}

	// value returns the argument of a --flag=value or --flag value pair.
	value := func(i *int, arg, name string) (string, error) {
		if v, ok := strings.CutPrefix(arg, name+"="); ok {
			return v, nil
		}
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%s needs a value", name)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, _, _ := strings.Cut(arg, "=")
		var (
			v   string
			err error
		)
		switch name {
		case "--debug", "-d":
			c.debug = true
		case "--help", "-h":
			c.help = true
		case "--version", "-v":
			c.version = true
		case "--strategy":
			if v, err = value(&i, arg, name); err == nil {
				c.opts.Strategy, err = alloc.ParseStrategy(v)
			}
		case "--realloc":
			if v, err = value(&i, arg, name); err == nil {
				c.opts.Realloc, err = alloc.ParseReallocPolicy(v)
			}
		case "--chunk":
			if v, err = value(&i, arg, name); err == nil {
				c.opts.ChunkSize, err = strconv.Atoi(v)
			}
		case "--limit":
			if v, err = value(&i, arg, name); err == nil {
				c.opts.Limit, err = strconv.Atoi(v)
			}
		case "--heap":
			c.heap, err = value(&i, arg, name)
		default:
			if strings.HasPrefix(arg, "-") {
				return c, fmt.Errorf("unknown option %q", arg)
			}
			if c.trace != "" {
				return c, fmt.Errorf("unexpected argument %q", arg)
			}
			c.trace = arg
		}
		if err != nil {
			return c, err
		}
	}
	if !c.help && !c.version && c.trace == "" && c.heap == "" {
		return c, fmt.Errorf("missing trace file")
	}
	return c, nil
}

func main() {
	c, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		printUsage()
		os.Exit(1)
	}
	if c.help {
		printHelp()
		os.Exit(0)
	}
	if c.version {
		fmt.Printf("heapview %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built: %s\n", date)
		os.Exit(0)
	}

	// Initialize logger (must be before any logging calls)
	logPath, err := logger.Init(logger.Options{
		Enabled: c.debug,
		Level:   slog.LevelDebug,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logging: %v\n", err)
	} else if logPath != "" {
		fmt.Fprintf(os.Stderr, "Logging to %s\n", logPath)
	}

	var m Model
	if c.heap != "" {
		m = NewHeapModel(c.heap)
	} else {
		m = NewModel(c.trace, c.opts)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		logger.L.Error("TUI error", "error", err)
		_ = logger.Close()
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}

	if model, ok := finalModel.(Model); ok {
		if err := model.Close(); err != nil {
			logger.L.Warn("error closing heap", "error", err)
		}
	}
	logger.L.Info("heapview exited normally")
	_ = logger.Close()
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: heapview [options] <trace-file>\n")
	fmt.Fprintf(os.Stderr, "       heapview --heap <heap-file>\n")
	fmt.Fprintf(os.Stderr, "Try 'heapview --help' for more information.\n")
}

func printHelp() {
	fmt.Println("heapview - step through an allocation trace and watch the heap")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  heapview [options] <trace-file>")
	fmt.Println("  heapview --heap <heap-file>")
	fmt.Println()
	fmt.Println("  Navigation:")
	fmt.Println("    n/→         Next op")
	fmt.Println("    p/←         Previous op (replays from the start)")
	fmt.Println("    g / G       Before the first op / after the last op")
	fmt.Println("    ↑/k, ↓/j    Scroll the block list")
	fmt.Println("    y           Copy the block list to the clipboard")
	fmt.Println("    ?           Show help")
	fmt.Println("    q           Quit")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  --strategy S   first, next or best (default first)")
	fmt.Println("  --realloc P    copy or inplace (default copy)")
	fmt.Println("  --chunk N      heap growth increment in bytes (default 4096)")
	fmt.Println("  --limit N      maximum heap size in bytes (default 20 MiB)")
	fmt.Println("  --heap FILE    inspect a heap saved by 'heapctl replay --file'")
	fmt.Println("  -d, --debug    Enable debug logging to ~/.heapview/logs/")
	fmt.Println("  -h, --help     Show this help message")
	fmt.Println("  -v, --version  Show version information")
	fmt.Println()
	fmt.Println("For non-interactive replays, use the 'heapctl' command instead.")
}
