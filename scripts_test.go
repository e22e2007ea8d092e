package achrome

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindWindowScriptEmbedsSentinel(t *testing.T) {
	script := buildFindWindowScript(42)
	assert.Contains(t, script, "set targetWindowId to 42")
	assert.Contains(t, script, `return "`+notFoundSentinel+`"`)
}

func TestFindWindowAndTabIndexScript(t *testing.T) {
	script := buildFindWindowAndTabIndexScript(42, 7)
	assert.Contains(t, script, "set targetWindowId to 42")
	assert.Contains(t, script, "set targetTabId to 7")
	assert.Contains(t, script, "repeat with candidateIndex from 1 to tabCount")
	// Sentinel for both the missing window and the missing tab.
	assert.Equal(t, 2, strings.Count(script, notFoundSentinel))
}

func TestVoidWindowCommandScriptLayout(t *testing.T) {
	script := buildVoidWindowCommandScript(3, "close targetWindow")
	assert.True(t, strings.HasPrefix(script, `use AppleScript version "2.8"`))
	assert.Contains(t, script, `tell application "Google Chrome"`)
	assert.Contains(t, script, "    set targetWindowId to 3")
	assert.Contains(t, script, "    close targetWindow")
	assert.Contains(t, script, `    return "ok"`)
	assert.True(t, strings.HasSuffix(script, "end tell"))
}

func TestVoidTabCommandScriptResolvesTab(t *testing.T) {
	script := buildVoidTabCommandScript(3, 9, "reload t")
	assert.Contains(t, script, "    set t to tab tabIndex of targetWindow")
	assert.Contains(t, script, "    reload t")
}

func TestExecuteJavaScriptScriptEncodesSource(t *testing.T) {
	javascript := `document.querySelector("a[href='/x']").click()`
	script := buildExecuteJavaScriptScript(1, 2, javascript)
	encoded := base64.StdEncoding.EncodeToString([]byte(javascript))
	assert.Contains(t, script, `set jsBase64 to "`+encoded+`"`)
	assert.Contains(t, script, "initWithBase64EncodedString:jsBase64")
	// The raw source never appears in the script, whatever it quotes.
	assert.NotContains(t, script, javascript)
}

func TestListScriptsUseSingleTokenLabels(t *testing.T) {
	windows := buildListWindowsScript()
	assert.Contains(t, windows, "activeTabIndex:(active tab index of w)")
	assert.Contains(t, windows, "givenName:(given name of w)")
	assert.NotContains(t, windows, "properties of w")

	tabs := buildListTabsScript(5)
	assert.Contains(t, tabs, "URL:(URL of t)")
	assert.Contains(t, tabs, "set targetWindowId to 5")
}

func TestCreateWindowScriptModes(t *testing.T) {
	normal := buildCreateWindowScript(WindowModeNormal)
	assert.Contains(t, normal, "set targetWindow to make new window")
	assert.NotContains(t, normal, "incognito")

	incognito := buildCreateWindowScript(WindowModeIncognito)
	assert.Contains(t, incognito, `with properties {mode:"incognito"}`)
	assert.Contains(t, incognito, "return (id of targetWindow) as integer")
}

func TestIsNotFoundOutput(t *testing.T) {
	assert.True(t, isNotFoundOutput(notFoundSentinel))
	assert.True(t, isNotFoundOutput(`"`+notFoundSentinel+`"`))
	assert.True(t, isNotFoundOutput("  \""+notFoundSentinel+"\"\n"))
	assert.False(t, isNotFoundOutput(`"ok"`))
	assert.False(t, isNotFoundOutput(""))
}

func TestIndentLinesSkipsEmptyLines(t *testing.T) {
	assert.Equal(t, "    a\n\n    b", indentLines("a\n\nb", 4))
}
