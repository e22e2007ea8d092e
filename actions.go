package achrome

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Pipeline action names accepted in pipeline files.
const (
	ActionWindows     = "windows"
	ActionTabs        = "tabs"
	ActionOpen        = "open"
	ActionJavaScript  = "js"
	ActionSnapshot    = "snapshot"
	ActionCloseTab    = "close_tab"
	ActionReloadTab   = "reload_tab"
	ActionActivateTab = "activate_tab"
	ActionNewWindow   = "new_window"
	ActionCloseWindow = "close_window"
)

var knownActions = map[string]bool{
	ActionWindows:     true,
	ActionTabs:        true,
	ActionOpen:        true,
	ActionJavaScript:  true,
	ActionSnapshot:    true,
	ActionCloseTab:    true,
	ActionReloadTab:   true,
	ActionActivateTab: true,
	ActionNewWindow:   true,
	ActionCloseWindow: true,
}

// Pipeline is a YAML-defined sequence of browser actions.
type Pipeline struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	Actions     []PipelineAction `yaml:"actions"`
}

// PipelineAction is one step of a pipeline. Which fields apply depends on
// the action; Validate enforces the required ones.
type PipelineAction struct {
	Action     string `yaml:"action"`
	URL        string `yaml:"url,omitempty"`
	WindowID   int    `yaml:"window_id,omitempty"`
	TabID      int    `yaml:"tab_id,omitempty"`
	Filter     string `yaml:"filter,omitempty"`
	JavaScript string `yaml:"javascript,omitempty"`
	Mode       string `yaml:"mode,omitempty"`
	NewWindow  bool   `yaml:"new_window,omitempty"`
	Incognito  bool   `yaml:"incognito,omitempty"`
}

// LoadPipeline reads and validates a pipeline file.
func LoadPipeline(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline file: %w", err)
	}
	return ParsePipeline(data)
}

// ParsePipeline parses and validates pipeline YAML.
func ParsePipeline(data []byte) (*Pipeline, error) {
	var pipeline Pipeline
	if err := yaml.Unmarshal(data, &pipeline); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline YAML: %w", err)
	}
	if err := pipeline.Validate(); err != nil {
		return nil, err
	}
	return &pipeline, nil
}

// Validate checks action names and their required fields.
func (p *Pipeline) Validate() error {
	if len(p.Actions) == 0 {
		return fmt.Errorf("pipeline %q has no actions", p.Name)
	}
	for i, action := range p.Actions {
		if !knownActions[action.Action] {
			return fmt.Errorf("action %d: unknown action %q", i+1, action.Action)
		}
		switch action.Action {
		case ActionOpen:
			if action.URL == "" {
				return fmt.Errorf("action %d: %q requires a url", i+1, action.Action)
			}
		case ActionJavaScript:
			if action.JavaScript == "" {
				return fmt.Errorf("action %d: %q requires javascript", i+1, action.Action)
			}
		case ActionCloseWindow:
			if action.WindowID == 0 {
				return fmt.Errorf("action %d: %q requires a window_id", i+1, action.Action)
			}
		}
	}
	return nil
}

// RunPipeline executes a pipeline against Chrome, writing listing output to
// stdout and progress to the logger.
func RunPipeline(ctx context.Context, chrome *Chrome, pipeline *Pipeline, logger *slog.Logger) error {
	for i, action := range pipeline.Actions {
		logger.Info("running action", "index", i+1, "action", action.Action)
		if err := runAction(ctx, chrome, action); err != nil {
			return fmt.Errorf("action %d (%s): %w", i+1, action.Action, err)
		}
	}
	return nil
}

func runAction(ctx context.Context, chrome *Chrome, action PipelineAction) error {
	switch action.Action {
	case ActionWindows:
		manager, err := chrome.Windows(ctx)
		if err != nil {
			return err
		}
		if manager, err = applyFilter(ctx, manager, action.Filter); err != nil {
			return err
		}
		fmt.Print(FormatWindows(manager.All()))
		return nil

	case ActionTabs:
		manager, err := chrome.Tabs(ctx)
		if err != nil {
			return err
		}
		if manager, err = applyFilter(ctx, manager, action.Filter); err != nil {
			return err
		}
		fmt.Print(FormatTabs(manager.All()))
		return nil

	case ActionOpen:
		tab, err := chrome.OpenURL(ctx, action.URL, OpenOptions{
			WindowID:  action.WindowID,
			NewWindow: action.NewWindow,
			Incognito: action.Incognito,
		})
		if err != nil {
			return err
		}
		fmt.Print(FormatTabs([]Tab{tab}))
		return nil

	case ActionJavaScript:
		tab, err := resolveTab(ctx, chrome, action)
		if err != nil {
			return err
		}
		result, err := chrome.ExecuteJavaScript(ctx, tab.WindowID, tab.ID, action.JavaScript)
		if err != nil {
			return err
		}
		fmt.Println(result)
		return nil

	case ActionSnapshot:
		tab, err := resolveTab(ctx, chrome, action)
		if err != nil {
			return err
		}
		source, err := chrome.TabSource(ctx, tab.WindowID, tab.ID)
		if err != nil {
			return err
		}
		fmt.Println(source.Snapshot)
		return nil

	case ActionCloseTab:
		tab, err := resolveTab(ctx, chrome, action)
		if err != nil {
			return err
		}
		return chrome.CloseTab(ctx, tab.WindowID, tab.ID)

	case ActionReloadTab:
		tab, err := resolveTab(ctx, chrome, action)
		if err != nil {
			return err
		}
		return chrome.ReloadTab(ctx, tab.WindowID, tab.ID)

	case ActionActivateTab:
		tab, err := resolveTab(ctx, chrome, action)
		if err != nil {
			return err
		}
		return chrome.ActivateTab(ctx, tab.WindowID, tab.ID)

	case ActionNewWindow:
		mode := action.Mode
		if mode == "" {
			mode = WindowModeNormal
		}
		window, err := chrome.CreateWindow(ctx, mode)
		if err != nil {
			return err
		}
		fmt.Print(FormatWindows([]Window{window}))
		return nil

	case ActionCloseWindow:
		return chrome.CloseWindow(ctx, action.WindowID)
	}
	return fmt.Errorf("unknown action %q", action.Action)
}

// resolveTab picks the tab a step operates on: an explicit window/tab id
// pair, a filter expression expected to match exactly one tab, or the
// active tab of the first window.
func resolveTab(ctx context.Context, chrome *Chrome, action PipelineAction) (Tab, error) {
	if action.TabID != 0 && action.WindowID != 0 {
		return Tab{ID: action.TabID, WindowID: action.WindowID}, nil
	}

	tabs, err := chrome.Tabs(ctx)
	if err != nil {
		return Tab{}, err
	}
	if action.Filter != "" {
		filtered, err := tabs.FilterExpr(ctx, action.Filter)
		if err != nil {
			return Tab{}, err
		}
		switch filtered.Count() {
		case 1:
			return filtered.All()[0], nil
		case 0:
			return Tab{}, NewAutomationError(ErrorTypeNotFound,
				"filter %q matched no tabs", action.Filter)
		default:
			return Tab{}, NewAutomationError(ErrorTypeMultipleObjects,
				"filter %q matched %d tabs, expected 1", action.Filter, filtered.Count())
		}
	}

	active, err := tabs.Filter(Criteria{"active": true})
	if err != nil {
		return Tab{}, err
	}
	if active.Count() > 0 {
		return active.All()[0], nil
	}
	return tabs.First()
}

func applyFilter[T filterable](ctx context.Context, manager *Manager[T], expression string) (*Manager[T], error) {
	if expression == "" {
		return manager, nil
	}
	return manager.FilterExpr(ctx, expression)
}
