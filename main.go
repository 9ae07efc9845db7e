package main

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pthm-cable/antfield/config"
	"github.com/pthm-cable/antfield/game"
	"github.com/pthm-cable/antfield/renderer"
	"github.com/pthm-cable/antfield/telemetry"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run executes the CLI and returns the process exit status.
func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("antfield", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// CLI flags
	configPath := fs.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := fs.String("output-dir", "", "Directory for frame files (overrides output.dir)")
	writeStats := fs.Bool("stats", false, "Write field_stats.csv, perf.csv and config.yaml to the output directory")
	logStats := fs.Bool("log-stats", false, "Output field and perf stats via slog")
	view := fs.Bool("view", false, "Show the field in a live window")
	ascii := fs.Bool("ascii", false, "Print the final field as ASCII art")

	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return 1
	}
	ticks, err := strconv.Atoi(fs.Arg(0))
	if err != nil || ticks < 0 {
		return 1
	}

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.New(slog.NewTextHandler(stdout, nil)).Error("failed to load config", "error", err)
		return 1
	}
	cfg := config.Cfg()

	slog.SetDefault(newLogger(cfg.Logging, cfg.Derived.LogLevel, stdout))

	dir := cfg.Output.Dir
	if *outputDir != "" {
		dir = *outputDir
		cfg.Output.Dir = dir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Error("failed to create output directory", "dir", dir, "error", err)
		return 1
	}

	sim, err := game.NewSimulation(cfg)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		return 1
	}

	var om *telemetry.OutputManager
	if *writeStats {
		om, err = telemetry.NewOutputManager(dir)
		if err != nil {
			slog.Error("failed to create output manager", "error", err)
			return 1
		}
		defer om.Close()
		if err := om.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config", "error", err)
		}
	}

	var perf *telemetry.PerfCollector
	if *writeStats || *logStats {
		perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	}

	opts := game.Options{
		Timestep:      cfg.Simulation.Timestep,
		StepsPerFrame: cfg.Screen.StepsPerFrame,
		LogStats:      *logStats,
		Perf:          perf,
		Output:        om,
	}
	if *writeStats || *logStats {
		opts.StatsEvery = cfg.Telemetry.StatsEvery
	}
	if *view {
		v := renderer.NewViewer(cfg.Screen.Width, cfg.Screen.Height, cfg.Screen.TargetFPS, cfg.Derived.Side)
		defer v.Close()
		opts.Viewer = v
	}

	pool := game.NewFramePool(game.FileWriter{
		Dir:    dir,
		Prefix: cfg.Output.Prefix,
		Digits: cfg.Output.Digits,
	}, cfg.Output.Workers, cfg.Output.QueueSize)

	slog.Debug("starting simulation",
		"ticks", ticks,
		"side", cfg.Derived.Side,
		"resolution", cfg.Field.Resolution,
		"timestep", cfg.Simulation.Timestep,
		"workers", pool.Workers(),
	)

	sum := game.NewRunner(sim, pool, opts).Run(ticks)

	slog.Debug("simulation finished",
		"ticks", sum.Ticks,
		"frames_written", sum.FramesWritten,
		"frames_failed", sum.FramesFailed,
		"stopped", sum.Stopped,
	)

	if *ascii {
		if err := renderer.WriteASCII(stdout, sim.Field().Side(), sim.Values()); err != nil {
			slog.Error("failed to print field", "error", err)
			return 1
		}
	}

	if sum.FramesFailed > 0 {
		return 1
	}
	return 0
}

// newLogger builds the slog logger selected by the logging config.
func newLogger(lc config.LoggingConfig, level slog.Level, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(lc.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
