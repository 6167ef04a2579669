package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func mustContext(t *testing.T, raw string) Context {
	t.Helper()
	var c Context
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal %s: %v", raw, err)
	}
	return c
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestMergeContext(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		incoming string
		want     string
	}{
		{
			name:     "variables are unioned",
			existing: `{"variables":{"a":1}}`,
			incoming: `{"variables":{"b":2}}`,
			want:     `{"variables":{"a":1,"b":2}}`,
		},
		{
			name:     "incoming variable wins",
			existing: `{"variables":{"a":1,"user_name":"old"}}`,
			incoming: `{"variables":{"user_name":"new"}}`,
			want:     `{"variables":{"a":1,"user_name":"new"}}`,
		},
		{
			name:     "other nested objects are replaced",
			existing: `{"answers":{"q1":"yes"},"step":1}`,
			incoming: `{"answers":{"q2":"no"}}`,
			want:     `{"answers":{"q2":"no"},"step":1}`,
		},
		{
			name:     "variables replaced when one side is not an object",
			existing: `{"variables":{"a":1}}`,
			incoming: `{"variables":"reset"}`,
			want:     `{"variables":"reset"}`,
		},
		{
			name:     "empty incoming keeps existing",
			existing: `{"x":[1,2],"variables":{"a":true}}`,
			incoming: `{}`,
			want:     `{"variables":{"a":true},"x":[1,2]}`,
		},
		{
			name:     "empty existing takes incoming",
			existing: `{}`,
			incoming: `{"variables":{"a":null}}`,
			want:     `{"variables":{"a":null}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := mustContext(t, tt.existing)
			incoming := mustContext(t, tt.incoming)
			got := mustJSON(t, MergeContext(existing, incoming))
			if got != tt.want {
				t.Fatalf("MergeContext = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMergeContextLeavesInputsAlone(t *testing.T) {
	existing := mustContext(t, `{"variables":{"a":1}}`)
	incoming := mustContext(t, `{"variables":{"b":2}}`)
	_ = MergeContext(existing, incoming)

	if got := mustJSON(t, existing); got != `{"variables":{"a":1}}` {
		t.Fatalf("existing modified: %s", got)
	}
	if got := mustJSON(t, incoming); got != `{"variables":{"b":2}}` {
		t.Fatalf("incoming modified: %s", got)
	}
}

func TestMergeContextNil(t *testing.T) {
	merged := MergeContext(nil, nil)
	if merged == nil || len(merged) != 0 {
		t.Fatalf("expected empty non-nil context, got %#v", merged)
	}
}

func TestContextRejectsNonObject(t *testing.T) {
	for _, raw := range []string{`[1]`, `"text"`, `3`, `true`} {
		var c Context
		err := json.Unmarshal([]byte(raw), &c)
		if !errors.Is(err, ErrContextNotObject) {
			t.Fatalf("%s: expected ErrContextNotObject, got %v", raw, err)
		}
	}
}

func TestContextNullIsEmpty(t *testing.T) {
	var report ProgressReport
	if err := json.Unmarshal([]byte(`{"call_id":"c1","context":null}`), &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(report.Context) != 0 {
		t.Fatalf("expected empty context, got %#v", report.Context)
	}
}

func TestContextScan(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"nil", nil, `{}`},
		{"empty text", "", `{}`},
		{"text", `{"variables":{"user_name":"Ana"}}`, `{"variables":{"user_name":"Ana"}}`},
		{"bytes", []byte(`{"n":12345678901234567890}`), `{"n":12345678901234567890}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Context
			if err := c.Scan(tt.value); err != nil {
				t.Fatalf("Scan returned error: %v", err)
			}
			if got := mustJSON(t, c); got != tt.want {
				t.Fatalf("Scan = %s, want %s", got, tt.want)
			}
		})
	}

	var c Context
	if err := c.Scan(42); err == nil {
		t.Fatal("expected error scanning an int")
	}
}

func TestContextValue(t *testing.T) {
	v, err := Context(nil).Value()
	if err != nil || v != "{}" {
		t.Fatalf("nil context Value = %v, %v", v, err)
	}

	c := Context{"b": Int(2), "a": String("x")}
	v, err = c.Value()
	if err != nil {
		t.Fatalf("Value returned error: %v", err)
	}
	if v != `{"a":"x","b":2}` {
		t.Fatalf("unexpected stored text %v", v)
	}
}

func TestVariableString(t *testing.T) {
	c := mustContext(t, `{"variables":{"user_name":"Ana","age":30}}`)
	if name, ok := c.VariableString("user_name"); !ok || name != "Ana" {
		t.Fatalf("VariableString(user_name) = %q, %v", name, ok)
	}
	if _, ok := c.VariableString("age"); ok {
		t.Fatal("expected non-string variable to be rejected")
	}
	if _, ok := (Context{}).VariableString("user_name"); ok {
		t.Fatal("expected missing variables to be rejected")
	}
}
