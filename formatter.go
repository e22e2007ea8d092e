package achrome

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// FormatWindows renders windows as terminal listing lines.
func FormatWindows(windows []Window) string {
	if len(windows) == 0 {
		return color.YellowString("no windows") + "\n"
	}
	var builder strings.Builder
	for _, window := range windows {
		title := window.Title
		if title == "" {
			title = window.GivenName
		}
		builder.WriteString(fmt.Sprintf("%s %s %s\n",
			color.CyanString("[%d]", window.ID),
			title,
			color.WhiteString("(%s, index %d, active tab %d)",
				window.Mode, window.Index, window.ActiveTabIndex),
		))
	}
	return builder.String()
}

// FormatTabs renders tabs as terminal listing lines. The active tab of each
// window is marked with an asterisk.
func FormatTabs(tabs []Tab) string {
	if len(tabs) == 0 {
		return color.YellowString("no tabs") + "\n"
	}
	var builder strings.Builder
	for _, tab := range tabs {
		marker := " "
		if tab.Active {
			marker = color.GreenString("*")
		}
		loading := ""
		if tab.Loading {
			loading = color.YellowString(" (loading)")
		}
		builder.WriteString(fmt.Sprintf("%s %s %s %s%s\n",
			marker,
			color.CyanString("[%d:%d]", tab.WindowID, tab.ID),
			tab.Title,
			color.BlueString(tab.URL),
			loading,
		))
	}
	return builder.String()
}
