// Package script holds the outbound call script: the task and greeting
// templates, the agent personality lists and the voice the provider speaks with.
package script

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Slot names used by the call templates
const (
	SlotName   = "NAME"
	SlotIssue  = "ISSUE"
	SlotGoals  = "GOALS"
	slotMarker = "#@"
)

// ErrMissingSlot is returned when a template names a slot no value was given for
var ErrMissingSlot = errors.New("missing template slot")

var slotPattern = regexp.MustCompile(`#@([A-Z_]+)#@`)

// Placeholder renders the marker text for a slot name, e.g. #@NAME#@
func Placeholder(slot string) string {
	return slotMarker + slot + slotMarker
}

// Format replaces every #@SLOT#@ in tmpl with slots[SLOT]. All missing slot
// names are reported in one error wrapping ErrMissingSlot.
func Format(tmpl string, slots map[string]string) (string, error) {
	missing := map[string]struct{}{}
	out := slotPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(m, slotMarker), slotMarker)
		value, ok := slots[name]
		if !ok {
			missing[name] = struct{}{}
			return m
		}
		return value
	})
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for name := range missing {
			names = append(names, name)
		}
		sort.Strings(names)
		return "", fmt.Errorf("%w: %s", ErrMissingSlot, strings.Join(names, ", "))
	}
	return out, nil
}

// Rendered is a call script ready to be stored on a meeting
type Rendered struct {
	Task          string
	FirstSentence string
}

// Templates pairs a task template with a greeting template
type Templates struct {
	Task          string
	FirstSentence string
}

// Default returns the built-in call templates
func Default() Templates {
	return Templates{Task: TaskTemplate, FirstSentence: FirstSentenceTemplate}
}

// Render fills both templates for a lead
func (t Templates) Render(name, issue, goals string) (Rendered, error) {
	slots := map[string]string{
		SlotName:  name,
		SlotIssue: issue,
		SlotGoals: goals,
	}
	task, err := Format(t.Task, slots)
	if err != nil {
		return Rendered{}, fmt.Errorf("task template: %w", err)
	}
	first, err := Format(t.FirstSentence, slots)
	if err != nil {
		return Rendered{}, fmt.Errorf("first sentence template: %w", err)
	}
	return Rendered{Task: task, FirstSentence: first}, nil
}
