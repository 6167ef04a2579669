package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// VariablesKey is the context member merged one level deeper than the rest
const VariablesKey = "variables"

// ErrContextNotObject is returned when a progress context is not a JSON object
var ErrContextNotObject = errors.New("context must be a JSON object")

// Context is the state bag an in-call agent reports alongside its current step.
// It is stored as JSON text in the user_progress.context column.
type Context map[string]Value

// Value implements driver.Valuer
func (c Context) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner. NULL and empty text scan to an empty context.
func (c *Context) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*c = Context{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for Context: %T", value)
	}
	if len(data) == 0 {
		*c = Context{}
		return nil
	}
	return c.UnmarshalJSON(data)
}

// MarshalJSON writes the context as an object with sorted keys
func (c Context) MarshalJSON() ([]byte, error) {
	return Object(c).MarshalJSON()
}

// UnmarshalJSON rejects anything but an object. JSON null yields an empty context.
func (c *Context) UnmarshalJSON(data []byte) error {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	switch v.Kind() {
	case KindNull:
		*c = Context{}
		return nil
	case KindObject:
		fields, _ := v.Fields()
		*c = Context(fields)
		return nil
	default:
		return fmt.Errorf("%w, got %s", ErrContextNotObject, v.Kind())
	}
}

// MergeContext combines a stored context with an incoming report. Top-level
// keys are a shallow union where incoming wins. When both sides carry an
// object under "variables" those objects are unioned the same way. Every
// other nested value is replaced wholesale. Neither input is modified.
func MergeContext(existing, incoming Context) Context {
	merged := make(Context, len(existing)+len(incoming))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range incoming {
		merged[k] = v
	}

	oldVars, okOld := existing[VariablesKey].Fields()
	newVars, okNew := incoming[VariablesKey].Fields()
	if okOld && okNew {
		vars := make(map[string]Value, len(oldVars)+len(newVars))
		for k, v := range oldVars {
			vars[k] = v
		}
		for k, v := range newVars {
			vars[k] = v
		}
		merged[VariablesKey] = Object(vars)
	}
	return merged
}

// VariableString returns variables.<key> when it is a string
func (c Context) VariableString(key string) (string, bool) {
	field, ok := c[VariablesKey].Get(key)
	if !ok {
		return "", false
	}
	return field.Str()
}
