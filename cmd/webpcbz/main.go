package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"webpcbz/internal/config"
	"webpcbz/internal/convert"
	"webpcbz/internal/resolver"
	"webpcbz/internal/watch"
	"webpcbz/logger"
)

var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	console := logger.NewConsole(logger.DefaultOptions())

	settings, watchMode, text, err := parseConfig(console)
	if err != nil {
		os.Stderr.WriteString("Configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		console.Warn("Interrupted, cancelling...")
		cancel()
	}()

	if watchMode != "" {
		if err := runWatch(ctx, settings, watchMode, console); err != nil {
			console.Error("Watch error: %v", err)
			os.Exit(1)
		}
		return
	}

	if err := runBatch(ctx, settings, text, console); err != nil {
		console.Error("Processing error: %v", err)
		os.Exit(1)
	}
}

// parseConfig loads persisted settings, overlays flags on top and returns
// the batch input text (or a directory for watch mode).
func parseConfig(console *logger.Console) (*config.Settings, string, string, error) {
	defaults := config.DefaultSettings()

	configPath := flag.String("config", config.DefaultPath(), "Path to settings file")
	quality := flag.Int("quality", defaults.Quality, "WebP quality (0-100, higher is better)")
	lossless := flag.Bool("lossless", defaults.Lossless, "Use lossless WebP compression")
	effort := flag.Int("effort", defaults.Effort, "WebP encoding effort (1-6, higher is slower and smaller)")
	maxSize := flag.Int("max-size", 0, "Cap the longest image side in pixels (0 disables resizing)")
	workers := flag.Int("workers", defaults.Workers, "Number of concurrent workers")
	outDir := flag.String("out", "", "Output directory (default: next to each input)")
	saveAsCBZ := flag.Bool("cbz", defaults.SaveAsCBZ, "Package converted folders as .cbz")
	recursive := flag.Bool("recursive", defaults.Recursive, "Include images in subdirectories of input folders")
	watchDir := flag.String("watch", "", "Watch a directory and convert images as they appear")
	saveConfig := flag.Bool("save-config", false, "Persist the effective settings for future runs")
	showVersion := flag.Bool("version", false, "Show version information")

	flag.Parse()

	if *showVersion {
		console.Log("webpcbz %s (built %s, commit %s)", Version, BuildDate, GitCommit)
		os.Exit(0)
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		return nil, "", "", fmt.Errorf("loading settings: %w", err)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "quality":
			settings.Quality = *quality
		case "lossless":
			settings.Lossless = *lossless
		case "effort":
			settings.Effort = *effort
		case "workers":
			settings.Workers = *workers
		case "out":
			settings.OutputDir = *outDir
		case "cbz":
			settings.SaveAsCBZ = *saveAsCBZ
		case "recursive":
			settings.Recursive = *recursive
		case "max-size":
			settings.ResizeEnabled = *maxSize > 0
			settings.MaxSize = *maxSize
		}
	})

	if err := settings.ToOptions().Validate(); err != nil {
		return nil, "", "", err
	}

	if *saveConfig {
		if err := settings.Save(*configPath); err != nil {
			console.Warn("Could not save settings: %v", err)
		}
	}

	if *watchDir != "" {
		info, err := os.Stat(*watchDir)
		if err != nil {
			return nil, "", "", err
		}
		if !info.IsDir() {
			return nil, "", "", fmt.Errorf("watch target is not a directory: %s", *watchDir)
		}
		return settings, *watchDir, "", nil
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage(console)
		return nil, "", "", fmt.Errorf("no input paths specified")
	}

	// A single "-" reads a pasted block of paths, one per line, from stdin.
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return settings, "", string(data), nil
	}

	return settings, "", strings.Join(args, "\n"), nil
}

func printUsage(console *logger.Console) {
	console.Info("Usage: webpcbz [options] <image, folder or .cbz path>...")
	console.Info("       webpcbz [options] -    (read paths from stdin, one per line)")
	console.Info("       webpcbz -watch <dir>   (convert images as they appear)")
	console.Info("Options:")
	flag.VisitAll(func(f *flag.Flag) {
		console.Log("  -%-12s %s", f.Name, f.Usage)
	})
}

func runBatch(ctx context.Context, settings *config.Settings, text string, console *logger.Console) error {
	items := resolver.Parse(text)
	if len(items) == 0 {
		return fmt.Errorf("no input paths specified")
	}

	pipeline, err := convert.NewPipeline(settings.ToPipelineConfig(), func(ev convert.Event) {
		switch ev.Level {
		case convert.LevelError:
			console.Error("%s", ev.Message)
		case convert.LevelWarning:
			console.Warn("%s", ev.Message)
		case convert.LevelSuccess:
			console.Success("%s", ev.Message)
		}
	})
	if err != nil {
		return err
	}

	spinner := console.StartSpinner("Scanning inputs")
	total := pipeline.CountImages(items)
	spinner.Stop(true, fmt.Sprintf("Found %d images in %d inputs (quality: %d, effort: %d)",
		total, len(items), settings.Quality, settings.Effort))

	bar := console.NewProgressBar(total, "Converting")
	barDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-barDone:
				return
			case <-ticker.C:
				done, _ := pipeline.Progress()
				bar.Set(done)
			}
		}
	}()

	timer := console.StartTimer("Batch")
	results := pipeline.Run(ctx, items)
	close(barDone)
	bar.Complete()
	timer.End()

	return printSummary(pipeline, results, console)
}

func printSummary(pipeline *convert.Pipeline, results []convert.Result, console *logger.Console) error {
	successes, failures := 0, 0
	for _, r := range results {
		if r.OK() {
			successes++
		} else {
			failures++
		}
	}

	original, converted := pipeline.Totals()
	table := console.NewTable("Metric", "Value")
	table.AddRow("Successful operations", fmt.Sprintf("%d", successes))
	table.AddRow("Failed operations", fmt.Sprintf("%d", failures))
	table.AddRow("Original size", fmt.Sprintf("%.2f MB", float64(original)/1024/1024))
	table.AddRow("Converted size", fmt.Sprintf("%.2f MB", float64(converted)/1024/1024))
	if original > 0 {
		table.AddRow("Compression ratio", fmt.Sprintf("%.1f%%", float64(converted)/float64(original)*100))
	}
	console.Info("Conversion summary:")
	table.Print()

	if successes == 0 && failures > 0 {
		return fmt.Errorf("all %d operations failed", failures)
	}
	return nil
}

func runWatch(ctx context.Context, settings *config.Settings, dir string, console *logger.Console) error {
	pipeline, err := convert.NewPipeline(settings.ToPipelineConfig(), func(ev convert.Event) {
		switch ev.Level {
		case convert.LevelError:
			console.Error("%s", ev.Message)
		case convert.LevelWarning:
			console.Warn("%s", ev.Message)
		default:
			console.Success("%s", ev.Message)
		}
	})
	if err != nil {
		return err
	}

	watcher, err := watch.New(dir, func(path string) {
		pipeline.Run(ctx, []resolver.Item{{Path: path, Kind: resolver.KindImage}})
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	console.Info("Watching %s for new images (ctrl-c to stop)", dir)
	<-ctx.Done()
	return nil
}
