package achrome

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Source is a captured page: the raw HTML plus a compact outline of its
// visible structure, suitable for logs and terminal output.
type Source struct {
	HTML     string `json:"html" yaml:"html"`
	Snapshot string `json:"snapshot" yaml:"snapshot"`
}

// snapshotAttributes are the attributes worth keeping in the outline.
var snapshotAttributes = map[string]bool{
	"id":         true,
	"class":      true,
	"href":       true,
	"src":        true,
	"alt":        true,
	"aria-label": true,
}

// skippedElements carry no visible structure.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// ParseSource parses HTML and builds the snapshot outline: one line per
// element with its notable attributes, text content inlined, scripts and
// styles and comments dropped.
func ParseSource(rawHTML string) (*Source, error) {
	document, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	var builder strings.Builder
	writeSnapshotNode(&builder, document, 0)
	return &Source{
		HTML:     rawHTML,
		Snapshot: strings.TrimRight(builder.String(), "\n"),
	}, nil
}

func writeSnapshotNode(builder *strings.Builder, node *html.Node, depth int) {
	switch node.Type {
	case html.CommentNode:
		return
	case html.TextNode:
		text := strings.Join(strings.Fields(node.Data), " ")
		if text != "" {
			writeSnapshotLine(builder, depth, text)
		}
		return
	case html.ElementNode:
		if skippedElements[node.Data] {
			return
		}
		writeSnapshotLine(builder, depth, elementLabel(node))
		depth++
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		writeSnapshotNode(builder, child, depth)
	}
}

func writeSnapshotLine(builder *strings.Builder, depth int, line string) {
	builder.WriteString(strings.Repeat("  ", depth))
	builder.WriteString(line)
	builder.WriteString("\n")
}

func elementLabel(node *html.Node) string {
	label := node.Data
	for _, attr := range node.Attr {
		if snapshotAttributes[attr.Key] && attr.Val != "" {
			label += fmt.Sprintf(" %s=%q", attr.Key, attr.Val)
		}
	}
	return label
}
