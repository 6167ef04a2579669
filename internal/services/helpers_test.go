package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeDispatcher struct {
	mu       sync.Mutex
	scripted []ScriptedCall
	handoffs []HandoffCall
	failFor  map[string]error
	next     int
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{failFor: map[string]error{}}
}

func (d *fakeDispatcher) DispatchScripted(ctx context.Context, call ScriptedCall) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scripted = append(d.scripted, call)
	if err := d.failFor[call.Phone]; err != nil {
		return "", err
	}
	d.next++
	return fmt.Sprintf("call-%d", d.next), nil
}

func (d *fakeDispatcher) DispatchHandoff(ctx context.Context, call HandoffCall) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handoffs = append(d.handoffs, call)
	if err := d.failFor[call.Phone]; err != nil {
		return "", err
	}
	d.next++
	return fmt.Sprintf("voice-%d", d.next), nil
}

func (d *fakeDispatcher) scriptedCalls() []ScriptedCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]ScriptedCall(nil), d.scripted...)
}

func brisbane(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Australia/Brisbane")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// 10:30 in Brisbane
var fixedNow = time.Date(2025, 3, 1, 0, 30, 15, 0, time.UTC)
