package achrome

import (
	"github.com/openmac/achrome/applescript"
)

// Tab is a snapshot of one Chrome tab's scriptable properties, annotated
// with the id of the window it belongs to.
type Tab struct {
	ID       int    `json:"id" yaml:"id"`
	WindowID int    `json:"window_id" yaml:"window_id"`
	Title    string `json:"title" yaml:"title"`
	URL      string `json:"url" yaml:"url"`
	Loading  bool   `json:"loading" yaml:"loading"`
	Active   bool   `json:"active" yaml:"active"`
}

// tabSchema matches the property record Chrome returns for a tab. The URL
// key is uppercase on the wire.
var tabSchema = applescript.StructOf(
	applescript.Field{Name: "id", Schema: applescript.IntType},
	applescript.Field{Name: "title", Schema: applescript.StringType, Optional: true},
	applescript.Field{Name: "url", Alias: "URL", Schema: applescript.StringType},
	applescript.Field{Name: "loading", Schema: applescript.BoolType, Optional: true},
)

func tabFromRecord(record *applescript.Record) (Tab, error) {
	tab := Tab{}
	var err error
	if tab.ID, err = recordInt(record, "id"); err != nil {
		return Tab{}, err
	}
	if tab.URL, err = recordString(record, "url"); err != nil {
		return Tab{}, err
	}
	tab.Title, _ = recordString(record, "title")
	tab.Loading, _ = recordBool(record, "loading")
	return tab, nil
}

// tabsFromOutput decodes the output of a list-tabs script for one window.
// Tab order follows window order; the tab at the window's active tab index
// is marked active.
func tabsFromOutput(output string, window Window) ([]Tab, error) {
	decoded, err := applescript.LoadsAs(output, applescript.ListOf(tabSchema))
	if err != nil {
		return nil, err
	}
	records := decoded.([]any)
	tabs := make([]Tab, 0, len(records))
	for i, item := range records {
		tab, err := tabFromRecord(item.(*applescript.Record))
		if err != nil {
			return nil, err
		}
		tab.WindowID = window.ID
		tab.Active = i+1 == window.ActiveTabIndex
		tabs = append(tabs, tab)
	}
	return tabs, nil
}

// fields exposes the tab to criteria matching and filter expressions.
func (t Tab) fields() map[string]any {
	return map[string]any{
		"id":        t.ID,
		"window_id": t.WindowID,
		"title":     t.Title,
		"url":       t.URL,
		"loading":   t.Loading,
		"active":    t.Active,
	}
}
