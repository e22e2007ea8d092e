package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/openmac/achrome"
)

// CLI configuration
type Config struct {
	Action    string
	URL       string
	WindowID  int
	TabID     int
	Filter    string
	Script    string
	File      string
	Incognito bool
	Timeout   time.Duration
	Verbose   bool
	JSON      bool
}

const usageText = `Usage: achrome <action> [flags]

Actions:
  windows    List Chrome windows
  tabs       List Chrome tabs
  open       Open a URL (-url, optionally -window, -incognito)
  js         Run JavaScript in a tab (-js, -window, -tab or -filter)
  snapshot   Print a page structure snapshot (-window, -tab or -filter)
  run        Execute a YAML pipeline file (-file)
`

func main() {
	config := parseFlags()
	if config.Action == "" {
		color.Red("Error: action is required")
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(1)
	}

	logger := setupLogger(config.Verbose, config.JSON)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	chrome := achrome.NewChrome(achrome.WithLogger(logger))
	if err := run(ctx, chrome, config, logger); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, chrome *achrome.Chrome, config Config, logger *slog.Logger) error {
	switch config.Action {
	case "windows":
		manager, err := chrome.Windows(ctx)
		if err != nil {
			return err
		}
		if config.Filter != "" {
			if manager, err = manager.FilterExpr(ctx, config.Filter); err != nil {
				return err
			}
		}
		fmt.Print(achrome.FormatWindows(manager.All()))
		return nil

	case "tabs":
		manager, err := chrome.Tabs(ctx)
		if err != nil {
			return err
		}
		if config.Filter != "" {
			if manager, err = manager.FilterExpr(ctx, config.Filter); err != nil {
				return err
			}
		}
		fmt.Print(achrome.FormatTabs(manager.All()))
		return nil

	case "open":
		if config.URL == "" {
			return fmt.Errorf("open requires -url")
		}
		tab, err := chrome.OpenURL(ctx, config.URL, achrome.OpenOptions{
			WindowID:  config.WindowID,
			Incognito: config.Incognito,
		})
		if err != nil {
			return err
		}
		fmt.Print(achrome.FormatTabs([]achrome.Tab{tab}))
		return nil

	case "js":
		if config.Script == "" {
			return fmt.Errorf("js requires -js")
		}
		return achrome.RunPipeline(ctx, chrome, &achrome.Pipeline{
			Name: "js",
			Actions: []achrome.PipelineAction{{
				Action:     achrome.ActionJavaScript,
				JavaScript: config.Script,
				WindowID:   config.WindowID,
				TabID:      config.TabID,
				Filter:     config.Filter,
			}},
		}, logger)

	case "snapshot":
		return achrome.RunPipeline(ctx, chrome, &achrome.Pipeline{
			Name: "snapshot",
			Actions: []achrome.PipelineAction{{
				Action:   achrome.ActionSnapshot,
				WindowID: config.WindowID,
				TabID:    config.TabID,
				Filter:   config.Filter,
			}},
		}, logger)

	case "run":
		if config.File == "" {
			return fmt.Errorf("run requires -file")
		}
		color.Blue("Loading pipeline from: %s", config.File)
		pipeline, err := achrome.LoadPipeline(config.File)
		if err != nil {
			return err
		}
		color.Cyan("Pipeline: %s", pipeline.Name)
		if pipeline.Description != "" {
			color.White("Description: %s", pipeline.Description)
		}
		started := time.Now()
		if err := achrome.RunPipeline(ctx, chrome, pipeline, logger); err != nil {
			return err
		}
		color.Green("Pipeline completed in %v", time.Since(started))
		return nil
	}
	return fmt.Errorf("unknown action %q", config.Action)
}

func parseFlags() Config {
	config := Config{}
	flag.StringVar(&config.URL, "url", "", "URL to open")
	flag.IntVar(&config.WindowID, "window", 0, "Target window id")
	flag.IntVar(&config.TabID, "tab", 0, "Target tab id")
	flag.StringVar(&config.Filter, "filter", "", "Filter expression, e.g. 'strings.contains(tab[\"url\"], \"github\")'")
	flag.StringVar(&config.Script, "js", "", "JavaScript source to execute")
	flag.StringVar(&config.File, "file", "", "Pipeline YAML file")
	flag.BoolVar(&config.Incognito, "incognito", false, "Open in a new incognito window")
	flag.DurationVar(&config.Timeout, "timeout", 60*time.Second, "Overall timeout")
	flag.BoolVar(&config.Verbose, "verbose", false, "Enable debug logging")
	flag.BoolVar(&config.JSON, "json-logs", false, "Log in JSON format")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usageText)
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}
	flag.Parse()
	config.Action = flag.Arg(0)
	return config
}

func setupLogger(verbose, jsonLogs bool) *slog.Logger {
	if jsonLogs {
		return achrome.NewJSONLogger()
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return achrome.NewLoggerWithLevel(level)
}
