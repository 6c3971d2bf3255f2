package auditview

import (
	"encoding/json"
	"testing"
)

func findNode(t *testing.T, nodes []Node, label string) Node {
	t.Helper()
	for _, n := range nodes {
		if n.Label == label {
			return n
		}
	}
	t.Fatalf("no node labeled %q in %+v", label, nodes)
	return Node{}
}

func TestRenderDiffMarksChangedFields(t *testing.T) {
	t.Parallel()

	details := json.RawMessage(`{
		"old_values": {"amount": "100", "name": "Tower"},
		"new_values": {"amount": "150", "name": "Tower"}
	}`)
	nodes, err := Render(details)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	diff := findNode(t, nodes, "changes")
	if diff.Kind != KindDiff {
		t.Fatalf("kind = %v, want diff", diff.Kind)
	}
	if len(diff.Diff) != 2 {
		t.Fatalf("expected 2 diff rows, got %d", len(diff.Diff))
	}
	amount := diff.Diff[0]
	if amount.Name != "amount" || !amount.Changed {
		t.Fatalf("amount row must be marked changed: %+v", amount)
	}
	if amount.Old != "100" || amount.New != "150" {
		t.Fatalf("amount row values = %q/%q", amount.Old, amount.New)
	}
	if name := diff.Diff[1]; name.Changed {
		t.Fatalf("unchanged field marked changed: %+v", name)
	}
}

func TestRenderDiffComparesStringRepresentations(t *testing.T) {
	t.Parallel()

	// "100" vs 100 are the same once stringified.
	details := json.RawMessage(`{
		"old_values": {"amount": "100"},
		"new_values": {"amount": 100}
	}`)
	nodes, err := Render(details)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	diff := findNode(t, nodes, "changes")
	if diff.Diff[0].Changed {
		t.Fatalf("string vs number with equal text must not be changed: %+v", diff.Diff[0])
	}
}

func TestRenderDiffCoversFieldsOnOneSideOnly(t *testing.T) {
	t.Parallel()

	details := json.RawMessage(`{
		"old_values": {"city": "Haifa"},
		"new_values": {"budget": 9000}
	}`)
	nodes, err := Render(details)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	diff := findNode(t, nodes, "changes")
	if len(diff.Diff) != 2 {
		t.Fatalf("expected union of field names, got %+v", diff.Diff)
	}
	for _, row := range diff.Diff {
		if !row.Changed {
			t.Fatalf("one-sided field must count as changed: %+v", row)
		}
	}
}

func TestRenderTypedFields(t *testing.T) {
	t.Parallel()

	details := json.RawMessage(`{
		"amount": 1250.5,
		"is_active": true,
		"created": "2026-08-01T10:30:00Z",
		"note": "paid in full"
	}`)
	nodes, err := Render(details)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	amount := findNode(t, nodes, "amount")
	if amount.Kind != KindCurrency || amount.Text != "₪1250.5" {
		t.Fatalf("amount = %+v", amount)
	}
	active := findNode(t, nodes, "is_active")
	if active.Kind != KindBool || active.Text != "yes" {
		t.Fatalf("is_active = %+v", active)
	}
	created := findNode(t, nodes, "created")
	if created.Kind != KindDate || created.Text != "01 Aug 2026" {
		t.Fatalf("created = %+v", created)
	}
	note := findNode(t, nodes, "note")
	if note.Kind != KindText || note.Text != "paid in full" {
		t.Fatalf("note = %+v", note)
	}
}

func TestRenderGenericFallback(t *testing.T) {
	t.Parallel()

	details := json.RawMessage(`{
		"tags": ["urgent", {"source": "import"}],
		"meta": {"retries": 3, "ok": false}
	}`)
	nodes, err := Render(details)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	tags := findNode(t, nodes, "tags")
	if tags.Kind != KindList || len(tags.Items) != 2 {
		t.Fatalf("tags = %+v", tags)
	}
	if tags.Items[0].Text != "urgent" {
		t.Fatalf("first item = %+v", tags.Items[0])
	}
	if tags.Items[1].Kind != KindObject {
		t.Fatalf("nested object in list must expand: %+v", tags.Items[1])
	}

	meta := findNode(t, nodes, "meta")
	if meta.Kind != KindObject || len(meta.Fields) != 2 {
		t.Fatalf("meta = %+v", meta)
	}
	ok := findNode(t, meta.Fields, "ok")
	if ok.Kind != KindBool || ok.Text != "no" {
		t.Fatalf("nested bool = %+v", ok)
	}
}

func TestRenderEmptyAndMalformed(t *testing.T) {
	t.Parallel()

	nodes, err := Render(nil)
	if err != nil || nodes != nil {
		t.Fatalf("nil blob: nodes=%v err=%v", nodes, err)
	}
	if _, err := Render(json.RawMessage(`{"broken":`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	// A bare scalar still renders.
	nodes, err = Render(json.RawMessage(`"plain note"`))
	if err != nil || len(nodes) != 1 || nodes[0].Text != "plain note" {
		t.Fatalf("scalar blob: nodes=%+v err=%v", nodes, err)
	}
}

func TestRenderDateOnlyPrefix(t *testing.T) {
	t.Parallel()

	nodes, err := Render(json.RawMessage(`{"due": "2026-03-15"}`))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	due := findNode(t, nodes, "due")
	if due.Kind != KindDate || due.Text != "15 Mar 2026" {
		t.Fatalf("due = %+v", due)
	}

	// Free text that merely starts with digits stays text.
	nodes, err = Render(json.RawMessage(`{"ref": "2026-03-15-invoice"}`))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	ref := findNode(t, nodes, "ref")
	if ref.Kind != KindText {
		t.Fatalf("ref = %+v", ref)
	}
}

func TestSummary(t *testing.T) {
	t.Parallel()

	nodes, err := Render(json.RawMessage(`{
		"old_values": {"amount": "100"},
		"new_values": {"amount": "150"},
		"note": "adjusted"
	}`))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	got := Summary(nodes)
	want := "changes: 1 changed; note: adjusted"
	if got != want {
		t.Fatalf("Summary = %q, want %q", got, want)
	}
}
