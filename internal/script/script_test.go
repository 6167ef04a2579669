package script

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatFillsEverySlot(t *testing.T) {
	got, err := Format("Hi #@NAME#@, re #@ISSUE#@/#@GOALS#@", map[string]string{
		SlotName:  "Ana",
		SlotIssue: "billing",
		SlotGoals: "upsell",
	})
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	if got != "Hi Ana, re billing/upsell" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestFormatReplacesRepeatedSlots(t *testing.T) {
	got, err := Format("#@NAME#@ and #@NAME#@ again", map[string]string{SlotName: "Bob"})
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	if got != "Bob and Bob again" {
		t.Fatalf("expected every occurrence replaced, got %q", got)
	}
}

func TestFormatLeavesPlainTextAlone(t *testing.T) {
	tmpl := "no slots here, not even #@lowercase#@"
	got, err := Format(tmpl, nil)
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	if got != tmpl {
		t.Fatalf("expected template unchanged, got %q", got)
	}
}

func TestFormatReportsMissingSlots(t *testing.T) {
	_, err := Format("#@GOALS#@ #@NAME#@ #@ISSUE#@", map[string]string{SlotName: "Ana"})
	if !errors.Is(err, ErrMissingSlot) {
		t.Fatalf("expected ErrMissingSlot, got %v", err)
	}
	if !strings.Contains(err.Error(), "GOALS, ISSUE") {
		t.Fatalf("expected sorted missing slot names, got %q", err.Error())
	}
}

func TestFormatEmptyValueIsNotMissing(t *testing.T) {
	got, err := Format("[#@ISSUE#@]", map[string]string{SlotIssue: ""})
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	if got != "[]" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestDefaultTemplatesRender(t *testing.T) {
	rendered, err := Default().Render("Bob", "site down", "grow sales")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	for _, out := range []string{rendered.Task, rendered.FirstSentence} {
		if strings.Contains(out, slotMarker) {
			t.Fatalf("rendered script still has a slot marker: %q", out)
		}
	}
	if !strings.Contains(rendered.FirstSentence, "Bob") {
		t.Fatalf("expected greeting to name the lead, got %q", rendered.FirstSentence)
	}
	if !strings.Contains(rendered.Task, "site down") || !strings.Contains(rendered.Task, "grow sales") {
		t.Fatalf("expected task to mention issue and goals")
	}
}

func TestRenderNamesTheBrokenTemplate(t *testing.T) {
	tmpl := Templates{Task: "#@NAME#@", FirstSentence: "#@UNKNOWN#@"}
	_, err := tmpl.Render("Ana", "x", "y")
	if !errors.Is(err, ErrMissingSlot) {
		t.Fatalf("expected ErrMissingSlot, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "first sentence template") {
		t.Fatalf("unexpected error %q", err.Error())
	}
}

func TestDefaultPersonaIsACopy(t *testing.T) {
	p := DefaultPersona()
	if len(p.Rules) == 0 || len(p.Core) == 0 {
		t.Fatal("expected a populated persona")
	}
	p.Rules[0] = "changed"
	if DefaultPersona().Rules[0] == "changed" {
		t.Fatal("DefaultPersona shares its slices between callers")
	}
}
