package achrome

import (
	"fmt"

	"github.com/openmac/achrome/applescript"
)

// Window modes reported by Chrome's scripting dictionary.
const (
	WindowModeNormal    = "normal"
	WindowModeIncognito = "incognito"
)

// Window is a snapshot of one Chrome window's scriptable properties.
type Window struct {
	ID             int                   `json:"id" yaml:"id"`
	GivenName      string                `json:"given_name,omitempty" yaml:"given_name,omitempty"`
	Title          string                `json:"title" yaml:"title"`
	Index          int                   `json:"index" yaml:"index"`
	Mode           string                `json:"mode" yaml:"mode"`
	Minimized      bool                  `json:"minimized" yaml:"minimized"`
	Visible        bool                  `json:"visible" yaml:"visible"`
	Zoomed         bool                  `json:"zoomed" yaml:"zoomed"`
	ActiveTabIndex int                   `json:"active_tab_index" yaml:"active_tab_index"`
	Bounds         applescript.Rectangle `json:"bounds" yaml:"bounds"`
}

// windowSchema matches the record built by the list-windows script. The
// script uses camelCase labels where Chrome's property names are multi-word;
// those are bound through aliases. osascript may print user-defined labels
// piped (|givenName|), which parses to the same key.
var windowSchema = applescript.StructOf(
	applescript.Field{Name: "id", Schema: applescript.IntType},
	applescript.Field{Name: "given_name", Alias: "givenName", Schema: applescript.StringType, Optional: true},
	applescript.Field{Name: "title", Schema: applescript.StringType, Optional: true},
	applescript.Field{Name: "index", Schema: applescript.IntType},
	applescript.Field{Name: "mode", Schema: applescript.StringType},
	applescript.Field{Name: "minimized", Schema: applescript.BoolType, Optional: true},
	applescript.Field{Name: "visible", Schema: applescript.BoolType, Optional: true},
	applescript.Field{Name: "zoomed", Schema: applescript.BoolType, Optional: true},
	applescript.Field{Name: "active_tab_index", Alias: "activeTabIndex", Schema: applescript.IntType, Optional: true},
	applescript.Field{Name: "bounds", Schema: applescript.RectangleType, Optional: true},
)

func windowFromRecord(record *applescript.Record) (Window, error) {
	window := Window{}
	var err error
	if window.ID, err = recordInt(record, "id"); err != nil {
		return Window{}, err
	}
	if window.Index, err = recordInt(record, "index"); err != nil {
		return Window{}, err
	}
	window.GivenName, _ = recordString(record, "given_name")
	window.Title, _ = recordString(record, "title")
	if window.Mode, err = recordString(record, "mode"); err != nil {
		return Window{}, err
	}
	window.Minimized, _ = recordBool(record, "minimized")
	window.Visible, _ = recordBool(record, "visible")
	window.Zoomed, _ = recordBool(record, "zoomed")
	window.ActiveTabIndex, _ = recordInt(record, "active_tab_index")
	if bounds, ok := record.Get("bounds"); ok {
		rectangle, ok := bounds.(applescript.Rectangle)
		if !ok {
			return Window{}, fmt.Errorf("window bounds: unexpected type %T", bounds)
		}
		window.Bounds = rectangle
	}
	return window, nil
}

// windowsFromOutput decodes the output of the list-windows script.
func windowsFromOutput(output string) ([]Window, error) {
	decoded, err := applescript.LoadsAs(output, applescript.ListOf(windowSchema))
	if err != nil {
		return nil, err
	}
	records := decoded.([]any)
	windows := make([]Window, 0, len(records))
	for _, item := range records {
		window, err := windowFromRecord(item.(*applescript.Record))
		if err != nil {
			return nil, err
		}
		windows = append(windows, window)
	}
	return windows, nil
}

// fields exposes the window to criteria matching and filter expressions.
func (w Window) fields() map[string]any {
	return map[string]any{
		"id":               w.ID,
		"given_name":       w.GivenName,
		"title":            w.Title,
		"index":            w.Index,
		"mode":             w.Mode,
		"minimized":        w.Minimized,
		"visible":          w.Visible,
		"zoomed":           w.Zoomed,
		"active_tab_index": w.ActiveTabIndex,
		"bounds": map[string]any{
			"left":   w.Bounds.Left,
			"top":    w.Bounds.Top,
			"right":  w.Bounds.Right,
			"bottom": w.Bounds.Bottom,
		},
	}
}

func recordInt(record *applescript.Record, key string) (int, error) {
	value, ok := record.Get(key)
	if !ok {
		return 0, fmt.Errorf("record is missing key %q", key)
	}
	number, ok := value.(int64)
	if !ok {
		return 0, fmt.Errorf("record key %q: unexpected type %T", key, value)
	}
	return int(number), nil
}

func recordString(record *applescript.Record, key string) (string, error) {
	value, ok := record.Get(key)
	if !ok {
		return "", fmt.Errorf("record is missing key %q", key)
	}
	text, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("record key %q: unexpected type %T", key, value)
	}
	return text, nil
}

func recordBool(record *applescript.Record, key string) (bool, error) {
	value, ok := record.Get(key)
	if !ok {
		return false, fmt.Errorf("record is missing key %q", key)
	}
	flag, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("record key %q: unexpected type %T", key, value)
	}
	return flag, nil
}
