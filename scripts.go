package achrome

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	// chromeApplication is the application name used in tell blocks for
	// generated window and tab scripts.
	chromeApplication = "Google Chrome"

	// notFoundSentinel is returned by lookup scripts when the targeted
	// window or tab no longer exists.
	notFoundSentinel = "__ACHROME_NOT_FOUND__"

	findScriptPlaceholder  = "__ACHROME_FIND_SCRIPT__"
	commandBodyPlaceholder = "__ACHROME_COMMAND_BODY__"
)

func indentLines(text string, spaces int) string {
	prefix := strings.Repeat(" ", spaces)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// isNotFoundOutput reports whether interpreter output is the lookup
// sentinel. osascript -s s renders the returned string with quotes.
func isNotFoundOutput(output string) bool {
	trimmed := strings.TrimSpace(output)
	return trimmed == notFoundSentinel || trimmed == `"`+notFoundSentinel+`"`
}

// buildFindWindowScript locates a window by id, leaving it bound to
// targetWindow. The script returns the sentinel when no window matches.
func buildFindWindowScript(windowID int) string {
	return strings.TrimSpace(fmt.Sprintf(`
set targetWindowId to %d
set targetWindow to missing value

repeat with w in windows
    if ((id of w) as integer) is targetWindowId then
        set targetWindow to w
        exit repeat
    end if
end repeat

if targetWindow is missing value then
    return "%s"
end if
`, windowID, notFoundSentinel))
}

// buildFindWindowAndTabIndexScript locates a window by id and a tab by id
// within it, leaving targetWindow and tabIndex bound. Tabs are addressed by
// index because Chrome's dictionary has no tab-by-id accessor.
func buildFindWindowAndTabIndexScript(windowID, tabID int) string {
	return strings.TrimSpace(fmt.Sprintf(`
set targetWindowId to %d
set targetTabId to %d
set targetWindow to missing value
set tabIndex to 0

repeat with w in windows
    if ((id of w) as integer) is targetWindowId then
        set targetWindow to w
        exit repeat
    end if
end repeat

if targetWindow is missing value then
    return "%s"
end if

set tabCount to count of tabs of targetWindow
repeat with candidateIndex from 1 to tabCount
    set t to tab candidateIndex of targetWindow
    if ((id of t) as integer) is targetTabId then
        set tabIndex to candidateIndex
        exit repeat
    end if
end repeat

if tabIndex is 0 then
    return "%s"
end if
`, windowID, tabID, notFoundSentinel, notFoundSentinel))
}

// buildVoidWindowCommandScript wraps a command body targeting targetWindow
// in the window lookup. The script returns "ok" on success.
func buildVoidWindowCommandScript(windowID int, commandBody string) string {
	script := strings.TrimSpace(`
use AppleScript version "2.8"
use scripting additions

tell application "` + chromeApplication + `"
` + findScriptPlaceholder + `
` + commandBodyPlaceholder + `
    return "ok"
end tell
`)
	script = strings.ReplaceAll(script, findScriptPlaceholder,
		indentLines(buildFindWindowScript(windowID), 4))
	return strings.ReplaceAll(script, commandBodyPlaceholder,
		indentLines(strings.TrimSpace(commandBody), 4))
}

// buildVoidTabCommandScript wraps a command body targeting t, the resolved
// tab, in the window and tab lookup. The script returns "ok" on success.
func buildVoidTabCommandScript(windowID, tabID int, commandBody string) string {
	script := strings.TrimSpace(`
use AppleScript version "2.8"
use scripting additions

tell application "` + chromeApplication + `"
` + findScriptPlaceholder + `
    set t to tab tabIndex of targetWindow
` + commandBodyPlaceholder + `
    return "ok"
end tell
`)
	script = strings.ReplaceAll(script, findScriptPlaceholder,
		indentLines(buildFindWindowAndTabIndexScript(windowID, tabID), 4))
	return strings.ReplaceAll(script, commandBodyPlaceholder,
		indentLines(strings.TrimSpace(commandBody), 4))
}

// buildExecuteJavaScriptScript runs JavaScript in the resolved tab. The
// source is smuggled through base64 and decoded with Foundation so that
// arbitrary quoting survives the AppleScript string literal.
func buildExecuteJavaScriptScript(windowID, tabID int, javascript string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(javascript))
	script := strings.TrimSpace(`
use AppleScript version "2.8"
use framework "Foundation"
use scripting additions

tell application "` + chromeApplication + `"
` + findScriptPlaceholder + `
    set t to tab tabIndex of targetWindow
    set jsBase64 to "` + encoded + `"
    set jsData to current application's NSData's alloc()'s ¬
        initWithBase64EncodedString:jsBase64 options:0
    if jsData is missing value then
        set jsText to ""
    else
        set jsText to (current application's NSString's alloc()'s ¬
            initWithData:jsData encoding:(current application's NSUTF8StringEncoding)) as text
    end if

    set resultValue to execute t javascript jsText
    try
        return resultValue as text
    on error
        return ""
    end try
end tell
`)
	return strings.ReplaceAll(script, findScriptPlaceholder,
		indentLines(buildFindWindowAndTabIndexScript(windowID, tabID), 4))
}

// buildListWindowsScript collects every window's properties into records
// with single-token labels. Chrome's own property records print multi-word
// keys ("active tab index") that are not valid literal record keys, so the
// script rebuilds each record instead of returning "properties of w". With
// osascript -s s the result prints as a list literal that Loads parses.
func buildListWindowsScript() string {
	return strings.TrimSpace(`
tell application "` + chromeApplication + `"
    set windowRecords to {}
    repeat with w in windows
        set end of windowRecords to {id:(id of w), title:(title of w), index:(index of w), mode:(mode of w), minimized:(minimized of w), visible:(visible of w), zoomed:(zoomed of w), activeTabIndex:(active tab index of w), givenName:(given name of w), bounds:(bounds of w)}
    end repeat
    return windowRecords
end tell
`)
}

// buildListTabsScript collects the properties of every tab in one window,
// rebuilt into records with single-token labels.
func buildListTabsScript(windowID int) string {
	script := strings.TrimSpace(`
tell application "` + chromeApplication + `"
` + findScriptPlaceholder + `
    set tabRecords to {}
    repeat with t in tabs of targetWindow
        set end of tabRecords to {id:(id of t), title:(title of t), URL:(URL of t), loading:(loading of t)}
    end repeat
    return tabRecords
end tell
`)
	return strings.ReplaceAll(script, findScriptPlaceholder,
		indentLines(buildFindWindowScript(windowID), 4))
}

// buildCreateWindowScript makes a new window and returns its id.
func buildCreateWindowScript(mode string) string {
	create := "set targetWindow to make new window"
	if mode == WindowModeIncognito {
		create = `set targetWindow to make new window with properties {mode:"incognito"}`
	}
	return strings.TrimSpace(`
use AppleScript version "2.8"
use scripting additions

tell application "` + chromeApplication + `"
    ` + create + `
    return (id of targetWindow) as integer
end tell
`)
}
