package achrome

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmac/achrome/applescript"
)

// stubRunner answers scripts by substring match, in place of osascript.
type stubRunner struct {
	responses []stubResponse
	executed  []string
}

type stubResponse struct {
	match  string
	output string
	err    error
}

func (r *stubRunner) Execute(_ context.Context, script string) (string, error) {
	r.executed = append(r.executed, script)
	for _, response := range r.responses {
		if strings.Contains(script, response.match) {
			return response.output, response.err
		}
	}
	return "", fmt.Errorf("no stubbed response for script:\n%s", script)
}

func newStubChrome(responses ...stubResponse) (*Chrome, *stubRunner) {
	runner := &stubRunner{responses: responses}
	return NewChrome(WithRunner(runner)), runner
}

func TestChromeWindows(t *testing.T) {
	chrome, _ := newStubChrome(
		stubResponse{match: "set end of windowRecords", output: windowListingFixture},
	)
	manager, err := chrome.Windows(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, manager.Count())
	assert.Equal(t, 101, manager.All()[0].ID)
	assert.Equal(t, WindowModeIncognito, manager.All()[1].Mode)
}

func TestChromeWindowsDecodeFailure(t *testing.T) {
	chrome, _ := newStubChrome(
		stubResponse{match: "set end of windowRecords", output: `{{id:"oops"}}`},
	)
	_, err := chrome.Windows(context.Background())
	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrorTypeDecodeFailed))
	var decodeErr *applescript.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestChromeWindowsScriptFailure(t *testing.T) {
	scriptErr := errors.New("execution error: Chrome got an error (-600)")
	chrome, _ := newStubChrome(
		stubResponse{match: "set end of windowRecords", err: scriptErr},
	)
	_, err := chrome.Windows(context.Background())
	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrorTypeScriptFailed))
	assert.ErrorIs(t, err, scriptErr)
}

func TestChromeTabs(t *testing.T) {
	chrome, _ := newStubChrome(
		stubResponse{
			match:  "set end of windowRecords",
			output: `{{id:101, title:"W", index:1, mode:"normal", activeTabIndex:1}}`,
		},
		stubResponse{
			match:  "set end of tabRecords",
			output: `{{id:7, title:"Example", URL:"https://example.com", loading:false}, {id:8, title:"Other", URL:"https://other.example", loading:false}}`,
		},
	)
	manager, err := chrome.Tabs(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, manager.Count())
	assert.Equal(t, 101, manager.All()[0].WindowID)
	assert.True(t, manager.All()[0].Active)
	assert.False(t, manager.All()[1].Active)
}

func TestChromeWindowTabsNotFound(t *testing.T) {
	chrome, _ := newStubChrome(
		stubResponse{match: "set end of tabRecords", output: `"` + notFoundSentinel + `"`},
	)
	_, err := chrome.WindowTabs(context.Background(), Window{ID: 44})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "window id=44")
}

func TestChromeCloseTab(t *testing.T) {
	chrome, runner := newStubChrome(
		stubResponse{match: "close t", output: `"ok"`},
	)
	require.NoError(t, chrome.CloseTab(context.Background(), 101, 7))
	require.Len(t, runner.executed, 1)
	assert.Contains(t, runner.executed[0], "set targetTabId to 7")
}

func TestChromeCloseTabNotFound(t *testing.T) {
	chrome, _ := newStubChrome(
		stubResponse{match: "close t", output: notFoundSentinel},
	)
	err := chrome.CloseTab(context.Background(), 101, 7)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "tab id=7 of window id=101")
}

func TestChromeSetWindowBounds(t *testing.T) {
	chrome, runner := newStubChrome(
		stubResponse{match: "set bounds of targetWindow", output: `"ok"`},
	)
	bounds := applescript.Rectangle{Left: 0, Top: 25, Right: 1280, Bottom: 800}
	require.NoError(t, chrome.SetWindowBounds(context.Background(), 101, bounds))
	assert.Contains(t, runner.executed[0], "set bounds of targetWindow to {0, 25, 1280, 800}")
}

func TestChromeExecuteJavaScript(t *testing.T) {
	chrome, _ := newStubChrome(
		stubResponse{match: "initWithBase64EncodedString", output: `"Page Title"`},
	)
	result, err := chrome.ExecuteJavaScript(context.Background(), 101, 7, "document.title")
	require.NoError(t, err)
	assert.Equal(t, "Page Title", result)
}

func TestChromeExecuteJavaScriptNotFound(t *testing.T) {
	chrome, _ := newStubChrome(
		stubResponse{match: "initWithBase64EncodedString", output: `"` + notFoundSentinel + `"`},
	)
	_, err := chrome.ExecuteJavaScript(context.Background(), 101, 7, "document.title")
	assert.True(t, IsNotFound(err))
}

func TestChromeTabSource(t *testing.T) {
	chrome, _ := newStubChrome(
		stubResponse{
			match:  "initWithBase64EncodedString",
			output: `"<html><body><h1>Hi " & quote & " there</h1></body></html>"`,
		},
	)
	source, err := chrome.TabSource(context.Background(), 101, 7)
	require.NoError(t, err)
	assert.Equal(t, `<html><body><h1>Hi " there</h1></body></html>`, source.HTML)
	assert.Contains(t, source.Snapshot, "h1")
}

func TestChromeVersion(t *testing.T) {
	chrome, runner := newStubChrome(
		stubResponse{match: "get version", output: `"126.0.6478.127"`},
	)
	version, err := chrome.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "126.0.6478.127", version)
	assert.Contains(t, runner.executed[0], `tell application id "com.google.Chrome"`)
}

func TestChromeActivate(t *testing.T) {
	chrome, runner := newStubChrome(
		stubResponse{match: "activate", output: ""},
	)
	require.NoError(t, chrome.Activate(context.Background()))
	assert.Contains(t, runner.executed[0], "    activate")
}

func TestChromeCreateWindow(t *testing.T) {
	chrome, _ := newStubChrome(
		stubResponse{match: "make new window", output: "205"},
		stubResponse{
			match:  "set end of windowRecords",
			output: `{{id:205, title:"", index:1, mode:"incognito", activeTabIndex:1}}`,
		},
	)
	window, err := chrome.CreateWindow(context.Background(), WindowModeIncognito)
	require.NoError(t, err)
	assert.Equal(t, 205, window.ID)
	assert.Equal(t, WindowModeIncognito, window.Mode)
}

func TestChromeCreateWindowRejectsUnknownMode(t *testing.T) {
	chrome, runner := newStubChrome()
	_, err := chrome.CreateWindow(context.Background(), "stealth")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid window mode "stealth"`)
	assert.Empty(t, runner.executed)
}

func TestChromeOpenURLInExistingWindow(t *testing.T) {
	chrome, runner := newStubChrome(
		stubResponse{
			match:  "set end of windowRecords",
			output: `{{id:101, title:"W", index:1, mode:"normal", activeTabIndex:2}}`,
		},
		stubResponse{match: "make new tab", output: `"ok"`},
		stubResponse{
			match:  "set end of tabRecords",
			output: `{{id:7, title:"Old", URL:"https://old.example", loading:false}, {id:9, title:"", URL:"https://example.com", loading:true}}`,
		},
	)
	tab, err := chrome.OpenURL(context.Background(), "https://example.com", OpenOptions{})
	require.NoError(t, err)
	assert.Equal(t, 9, tab.ID)
	assert.True(t, tab.Active)

	var opened string
	for _, script := range runner.executed {
		if strings.Contains(script, "make new tab") {
			opened = script
		}
	}
	assert.Contains(t, opened,
		`make new tab at end of tabs of targetWindow with properties {URL:"https://example.com"}`)
}
