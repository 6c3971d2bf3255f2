// Package auditview renders opaque audit-log detail blobs into a tree of
// typed display nodes. The blob's shape varies by the action that produced
// it, so the renderer is permissive: known field names get typed nodes,
// old_values/new_values pairs become a side-by-side diff, and everything
// else falls back to generic key/value rendering. Lossy by design.
package auditview

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind discriminates the node union.
type Kind string

const (
	KindText     Kind = "text"
	KindCurrency Kind = "currency"
	KindBool     Kind = "bool"
	KindDate     Kind = "date"
	KindList     Kind = "list"
	KindObject   Kind = "object"
	KindDiff     Kind = "diff"
)

// Node is one rendered detail field. Exactly one of Text, Items, Fields or
// Diff is populated, per Kind.
type Node struct {
	Kind  Kind   `json:"kind"`
	Label string `json:"label,omitempty"`
	Text  string `json:"text,omitempty"`

	Items  []Node      `json:"items,omitempty"`
	Fields []Node      `json:"fields,omitempty"`
	Diff   []DiffField `json:"diff,omitempty"`
}

// DiffField is one row of an old/new comparison. Changed compares string
// representations, so "100" vs 100 counts as unchanged.
type DiffField struct {
	Name    string `json:"name"`
	Old     string `json:"old"`
	New     string `json:"new"`
	Changed bool   `json:"changed"`
}

const currencySymbol = "₪"

// currencyFields are detail keys rendered with a currency prefix.
var currencyFields = map[string]bool{
	"amount":     true,
	"price":      true,
	"total":      true,
	"balance":    true,
	"budget":     true,
	"income":     true,
	"expense":    true,
	"vat_amount": true,
}

// Render parses a details blob and returns display nodes in stable key
// order. A nil or empty blob renders to no nodes. Non-object blobs (a bare
// array or scalar) render as a single unlabeled node.
func Render(details json.RawMessage) ([]Node, error) {
	if len(details) == 0 {
		return nil, nil
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(details, &top); err != nil {
		var v any
		if err2 := json.Unmarshal(details, &v); err2 != nil {
			return nil, fmt.Errorf("auditview: malformed details: %w", err)
		}
		return []Node{valueNode("", v)}, nil
	}

	var nodes []Node
	if diff, ok := diffNode(top); ok {
		nodes = append(nodes, diff)
		delete(top, "old_values")
		delete(top, "new_values")
	}

	keys := make([]string, 0, len(top))
	for k := range top {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		var v any
		if err := json.Unmarshal(top[k], &v); err != nil {
			nodes = append(nodes, Node{Kind: KindText, Label: k, Text: string(top[k])})
			continue
		}
		nodes = append(nodes, fieldNode(k, v))
	}
	return nodes, nil
}

// diffNode builds the side-by-side comparison when both old_values and
// new_values are present and are objects.
func diffNode(top map[string]json.RawMessage) (Node, bool) {
	oldRaw, okOld := top["old_values"]
	newRaw, okNew := top["new_values"]
	if !okOld || !okNew {
		return Node{}, false
	}
	var oldVals, newVals map[string]any
	if json.Unmarshal(oldRaw, &oldVals) != nil || json.Unmarshal(newRaw, &newVals) != nil {
		return Node{}, false
	}

	names := make(map[string]bool, len(oldVals)+len(newVals))
	for k := range oldVals {
		names[k] = true
	}
	for k := range newVals {
		names[k] = true
	}
	ordered := make([]string, 0, len(names))
	for k := range names {
		ordered = append(ordered, k)
	}
	sort.Strings(ordered)

	rows := make([]DiffField, 0, len(ordered))
	for _, name := range ordered {
		oldStr := stringify(oldVals[name])
		newStr := stringify(newVals[name])
		rows = append(rows, DiffField{
			Name:    name,
			Old:     oldStr,
			New:     newStr,
			Changed: oldStr != newStr,
		})
	}
	return Node{Kind: KindDiff, Label: "changes", Diff: rows}, true
}

// fieldNode renders one named field, applying the typed rules before the
// generic fallback.
func fieldNode(label string, v any) Node {
	switch val := v.(type) {
	case bool:
		return Node{Kind: KindBool, Label: label, Text: yesNo(val)}
	case string:
		if t, ok := parseISODate(val); ok {
			return Node{Kind: KindDate, Label: label, Text: t.Format("02 Jan 2006")}
		}
		if currencyFields[label] {
			return Node{Kind: KindCurrency, Label: label, Text: currencySymbol + val}
		}
		return Node{Kind: KindText, Label: label, Text: val}
	case float64:
		if currencyFields[label] {
			return Node{Kind: KindCurrency, Label: label, Text: currencySymbol + formatNumber(val)}
		}
		return Node{Kind: KindText, Label: label, Text: formatNumber(val)}
	default:
		return valueNodeLabeled(label, v)
	}
}

// valueNodeLabeled handles the generic fallback for composite values.
func valueNodeLabeled(label string, v any) Node {
	n := valueNode(label, v)
	n.Label = label
	return n
}

func valueNode(label string, v any) Node {
	switch val := v.(type) {
	case nil:
		return Node{Kind: KindText, Label: label, Text: ""}
	case []any:
		items := make([]Node, 0, len(val))
		for _, item := range val {
			items = append(items, valueNode("", item))
		}
		return Node{Kind: KindList, Label: label, Items: items}
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]Node, 0, len(keys))
		for _, k := range keys {
			fields = append(fields, fieldNode(k, val[k]))
		}
		return Node{Kind: KindObject, Label: label, Fields: fields}
	case bool:
		return Node{Kind: KindBool, Label: label, Text: yesNo(val)}
	case float64:
		return Node{Kind: KindText, Label: label, Text: formatNumber(val)}
	case string:
		return Node{Kind: KindText, Label: label, Text: val}
	default:
		return Node{Kind: KindText, Label: label, Text: fmt.Sprint(val)}
	}
}

// parseISODate accepts strings starting with an ISO calendar date, with or
// without a time part.
func parseISODate(s string) (time.Time, bool) {
	if len(s) < 10 {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
		// Only a real date prefix counts; "2026-99-99..." must not.
		if s == s[:10] || s[10] == 'T' || s[10] == ' ' {
			return t, true
		}
	}
	return time.Time{}, false
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// stringify produces the comparison form used by diff rows.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return formatNumber(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

// Summary flattens nodes into "label: text" lines for logs and the smoke
// tool. Composite nodes are summarized by child count.
func Summary(nodes []Node) string {
	var b strings.Builder
	for i, n := range nodes {
		if i > 0 {
			b.WriteString("; ")
		}
		switch n.Kind {
		case KindList:
			fmt.Fprintf(&b, "%s: %d items", n.Label, len(n.Items))
		case KindObject:
			fmt.Fprintf(&b, "%s: %d fields", n.Label, len(n.Fields))
		case KindDiff:
			changed := 0
			for _, row := range n.Diff {
				if row.Changed {
					changed++
				}
			}
			fmt.Fprintf(&b, "%s: %d changed", n.Label, changed)
		default:
			if n.Label != "" {
				fmt.Fprintf(&b, "%s: %s", n.Label, n.Text)
			} else {
				b.WriteString(n.Text)
			}
		}
	}
	return b.String()
}
