package achrome

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openmac/achrome/applescript"
	"github.com/openmac/achrome/script"
)

// ChromeBundleID is the bundle identifier used for scripting-dictionary
// commands addressed with "tell application id".
const ChromeBundleID = "com.google.Chrome"

// Chrome drives Google Chrome over AppleScript. All state lives in Chrome
// itself; the returned managers are point-in-time snapshots.
type Chrome struct {
	runner   applescript.Runner
	commands *applescript.CommandRunner
	engine   *script.RisorScriptingEngine
	logger   *slog.Logger
	bundleID string
}

// ChromeOption configures a Chrome instance.
type ChromeOption func(*Chrome)

// WithRunner overrides the script runner, used in tests and for callers
// that manage their own Executor.
func WithRunner(runner applescript.Runner) ChromeOption {
	return func(c *Chrome) { c.runner = runner }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ChromeOption {
	return func(c *Chrome) { c.logger = logger }
}

// WithBundleID overrides the application bundle id, e.g. for Chrome Canary
// or Chromium builds that share Chrome's scripting dictionary.
func WithBundleID(bundleID string) ChromeOption {
	return func(c *Chrome) { c.bundleID = bundleID }
}

// NewChrome returns a Chrome facade. By default scripts run through
// /usr/bin/osascript with retries for recoverable Apple event failures.
func NewChrome(opts ...ChromeOption) *Chrome {
	c := &Chrome{
		engine:   script.NewRisorScriptingEngine(script.DefaultGlobals()),
		logger:   slog.Default(),
		bundleID: ChromeBundleID,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.runner == nil {
		c.runner = applescript.NewExecutor(
			applescript.WithLogger(c.logger),
			applescript.WithMaxRetries(2),
		)
	}
	c.commands = applescript.NewCommandRunner(c.runner)
	return c
}

// Windows lists all windows and returns them wrapped in a manager.
func (c *Chrome) Windows(ctx context.Context) (*Manager[Window], error) {
	output, err := c.run(ctx, buildListWindowsScript())
	if err != nil {
		return nil, err
	}
	windows, err := windowsFromOutput(output)
	if err != nil {
		return nil, wrapAutomationError(ErrorTypeDecodeFailed, err)
	}
	return NewWindowManager(windows, c.engine), nil
}

// WindowTabs lists the tabs of one window.
func (c *Chrome) WindowTabs(ctx context.Context, window Window) ([]Tab, error) {
	output, err := c.run(ctx, buildListTabsScript(window.ID))
	if err != nil {
		return nil, err
	}
	if isNotFoundOutput(output) {
		return nil, NewAutomationError(ErrorTypeNotFound,
			"cannot list tabs of window id=%d: not found", window.ID)
	}
	tabs, err := tabsFromOutput(output, window)
	if err != nil {
		return nil, wrapAutomationError(ErrorTypeDecodeFailed, err)
	}
	return tabs, nil
}

// Tabs lists the tabs of every window and returns them wrapped in a
// manager, in window order.
func (c *Chrome) Tabs(ctx context.Context) (*Manager[Tab], error) {
	windows, err := c.Windows(ctx)
	if err != nil {
		return nil, err
	}
	var tabs []Tab
	for _, window := range windows.All() {
		windowTabs, err := c.WindowTabs(ctx, window)
		if err != nil {
			// The window can close between the two listings.
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		tabs = append(tabs, windowTabs...)
	}
	return NewTabManager(tabs, c.engine), nil
}

// Activate brings Chrome to the foreground.
func (c *Chrome) Activate(ctx context.Context) error {
	_, err := c.commands.Run(ctx, applescript.Command{
		Spec: applescript.CommandSpec{Name: "activate", BundleID: c.bundleID},
	})
	if err != nil {
		return wrapAutomationError(ErrorTypeScriptFailed, err)
	}
	return nil
}

// Version returns Chrome's version string.
func (c *Chrome) Version(ctx context.Context) (string, error) {
	output, err := c.commands.Run(ctx, applescript.Command{
		Spec: applescript.CommandSpec{Name: "get version", BundleID: c.bundleID},
	})
	if err != nil {
		return "", wrapAutomationError(ErrorTypeScriptFailed, err)
	}
	version, err := applescript.LoadsAs(output, applescript.StringType)
	if err != nil {
		return "", wrapAutomationError(ErrorTypeDecodeFailed, err)
	}
	return version.(string), nil
}

// CreateWindow opens a new window in the given mode and returns it.
func (c *Chrome) CreateWindow(ctx context.Context, mode string) (Window, error) {
	if mode != WindowModeNormal && mode != WindowModeIncognito {
		return Window{}, NewAutomationError(ErrorTypeInvalidFilter,
			"invalid window mode %q", mode)
	}
	output, err := c.run(ctx, buildCreateWindowScript(mode))
	if err != nil {
		return Window{}, err
	}
	decoded, err := applescript.LoadsAs(output, applescript.IntType)
	if err != nil {
		return Window{}, wrapAutomationError(ErrorTypeDecodeFailed, err)
	}
	windowID := int(decoded.(int64))

	windows, err := c.Windows(ctx)
	if err != nil {
		return Window{}, err
	}
	return windows.Get(Criteria{"id": windowID})
}

// OpenOptions controls where OpenURL places the new tab.
type OpenOptions struct {
	// WindowID targets an existing window; zero means the first window.
	WindowID int
	// NewWindow opens the URL in a fresh window.
	NewWindow bool
	// Incognito implies NewWindow with an incognito window.
	Incognito bool
}

// OpenURL opens a URL in a new tab and returns that tab.
func (c *Chrome) OpenURL(ctx context.Context, url string, opts OpenOptions) (Tab, error) {
	quoted, err := applescript.Dumps(url)
	if err != nil {
		return Tab{}, wrapAutomationError(ErrorTypeScriptFailed, err)
	}

	var window Window
	if opts.NewWindow || opts.Incognito {
		mode := WindowModeNormal
		if opts.Incognito {
			mode = WindowModeIncognito
		}
		if window, err = c.CreateWindow(ctx, mode); err != nil {
			return Tab{}, err
		}
		err = c.runVoidWindowCommand(ctx, "open url in", window.ID,
			"set URL of active tab of targetWindow to "+quoted)
	} else {
		if window, err = c.targetWindow(ctx, opts.WindowID); err != nil {
			return Tab{}, err
		}
		err = c.runVoidWindowCommand(ctx, "open url in", window.ID,
			"make new tab at end of tabs of targetWindow with properties {URL:"+quoted+"}")
	}
	if err != nil {
		return Tab{}, err
	}

	// Re-list so the returned tab carries its real id. The new tab is the
	// window's active tab.
	windows, err := c.Windows(ctx)
	if err != nil {
		return Tab{}, err
	}
	window, err = windows.Get(Criteria{"id": window.ID})
	if err != nil {
		return Tab{}, err
	}
	tabs, err := c.WindowTabs(ctx, window)
	if err != nil {
		return Tab{}, err
	}
	for _, tab := range tabs {
		if tab.Active {
			return tab, nil
		}
	}
	if len(tabs) > 0 {
		return tabs[len(tabs)-1], nil
	}
	return Tab{}, NewAutomationError(ErrorTypeNotFound,
		"window id=%d has no tabs after opening %s", window.ID, url)
}

// CloseTab closes one tab.
func (c *Chrome) CloseTab(ctx context.Context, windowID, tabID int) error {
	return c.runVoidTabCommand(ctx, "close", windowID, tabID, "close t")
}

// ReloadTab reloads one tab.
func (c *Chrome) ReloadTab(ctx context.Context, windowID, tabID int) error {
	return c.runVoidTabCommand(ctx, "reload", windowID, tabID, "reload t")
}

// GoBack navigates one tab back in its history.
func (c *Chrome) GoBack(ctx context.Context, windowID, tabID int) error {
	return c.runVoidTabCommand(ctx, "go back", windowID, tabID, "go back t")
}

// GoForward navigates one tab forward in its history.
func (c *Chrome) GoForward(ctx context.Context, windowID, tabID int) error {
	return c.runVoidTabCommand(ctx, "go forward", windowID, tabID, "go forward t")
}

// ActivateTab selects one tab and brings its window to the front.
func (c *Chrome) ActivateTab(ctx context.Context, windowID, tabID int) error {
	return c.runVoidTabCommand(ctx, "activate", windowID, tabID,
		"set active tab index of targetWindow to tabIndex\nactivate")
}

// CloseWindow closes one window.
func (c *Chrome) CloseWindow(ctx context.Context, windowID int) error {
	return c.runVoidWindowCommand(ctx, "close", windowID, "close targetWindow")
}

// ActivateWindow raises one window and brings Chrome to the front.
func (c *Chrome) ActivateWindow(ctx context.Context, windowID int) error {
	return c.runVoidWindowCommand(ctx, "activate", windowID,
		"set index of targetWindow to 1\nactivate")
}

// SetWindowBounds moves and resizes one window.
func (c *Chrome) SetWindowBounds(ctx context.Context, windowID int, bounds applescript.Rectangle) error {
	rendered, err := applescript.Dumps(bounds)
	if err != nil {
		return wrapAutomationError(ErrorTypeScriptFailed, err)
	}
	return c.runVoidWindowCommand(ctx, "set bounds of", windowID,
		"set bounds of targetWindow to "+rendered)
}

// SetWindowMinimized minimizes or restores one window.
func (c *Chrome) SetWindowMinimized(ctx context.Context, windowID int, minimized bool) error {
	return c.runVoidWindowCommand(ctx, "set minimized of", windowID,
		fmt.Sprintf("set minimized of targetWindow to %t", minimized))
}

// SetWindowZoomed zooms or unzooms one window.
func (c *Chrome) SetWindowZoomed(ctx context.Context, windowID int, zoomed bool) error {
	return c.runVoidWindowCommand(ctx, "set zoomed of", windowID,
		fmt.Sprintf("set zoomed of targetWindow to %t", zoomed))
}

// ExecuteJavaScript runs JavaScript in one tab and returns the result
// coerced to text. Requires "Allow JavaScript from Apple Events" enabled in
// Chrome's View > Developer menu.
func (c *Chrome) ExecuteJavaScript(ctx context.Context, windowID, tabID int, source string) (string, error) {
	output, err := c.run(ctx, buildExecuteJavaScriptScript(windowID, tabID, source))
	if err != nil {
		return "", err
	}
	if isNotFoundOutput(output) {
		return "", NewAutomationError(ErrorTypeNotFound,
			"cannot execute JavaScript in tab id=%d of window id=%d: not found", tabID, windowID)
	}
	result, err := applescript.LoadsAs(output, applescript.StringType)
	if err != nil {
		return "", wrapAutomationError(ErrorTypeDecodeFailed, err)
	}
	return result.(string), nil
}

// TabSource captures the tab's rendered HTML and its snapshot outline.
func (c *Chrome) TabSource(ctx context.Context, windowID, tabID int) (*Source, error) {
	html, err := c.ExecuteJavaScript(ctx, windowID, tabID,
		"document.documentElement.outerHTML")
	if err != nil {
		return nil, err
	}
	source, err := ParseSource(html)
	if err != nil {
		return nil, wrapAutomationError(ErrorTypeDecodeFailed, err)
	}
	return source, nil
}

func (c *Chrome) targetWindow(ctx context.Context, windowID int) (Window, error) {
	windows, err := c.Windows(ctx)
	if err != nil {
		return Window{}, err
	}
	if windowID != 0 {
		return windows.Get(Criteria{"id": windowID})
	}
	return windows.First()
}

func (c *Chrome) run(ctx context.Context, scriptSource string) (string, error) {
	output, err := c.runner.Execute(ctx, scriptSource)
	if err != nil {
		return "", wrapAutomationError(ErrorTypeScriptFailed, err)
	}
	return output, nil
}

func (c *Chrome) runVoidWindowCommand(ctx context.Context, action string, windowID int, body string) error {
	output, err := c.run(ctx, buildVoidWindowCommandScript(windowID, body))
	if err != nil {
		return err
	}
	if isNotFoundOutput(output) {
		return NewAutomationError(ErrorTypeNotFound,
			"cannot %s window id=%d: not found", action, windowID)
	}
	return nil
}

func (c *Chrome) runVoidTabCommand(ctx context.Context, action string, windowID, tabID int, body string) error {
	output, err := c.run(ctx, buildVoidTabCommandScript(windowID, tabID, body))
	if err != nil {
		return err
	}
	if isNotFoundOutput(output) {
		return NewAutomationError(ErrorTypeNotFound,
			"cannot %s tab id=%d of window id=%d: not found", action, tabID, windowID)
	}
	return nil
}
