package services

import (
	"context"
	"encoding/json"

	"leadcaller/internal/models"
	"leadcaller/internal/store"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

// PayloadEncoder is implemented by dispatchers that can show the exact request
// body they send to the provider. CallClient implements it.
type PayloadEncoder interface {
	ScriptedPayload(call ScriptedCall) ([]byte, error)
	HandoffPayload(call HandoffCall) ([]byte, error)
}

// attemptRecorder writes the call audit log. A failed write is logged and
// never fails the call it describes.
type attemptRecorder struct {
	attempts store.CallAttemptStore
	log      zerolog.Logger
}

func (r attemptRecorder) record(ctx context.Context, attempt models.CallAttempt, payload []byte, callID string, dispatchErr error) {
	if json.Valid(payload) {
		attempt.Payload = datatypes.JSON(payload)
	}
	attempt.CallID = callID
	attempt.Success = dispatchErr == nil
	if dispatchErr != nil {
		attempt.Error = dispatchErr.Error()
	}

	if err := r.attempts.RecordCallAttempt(context.WithoutCancel(ctx), &attempt); err != nil {
		r.log.Warn().Err(err).
			Str("kind", attempt.Kind).
			Str("phone", attempt.Phone).
			Msg("failed to record call attempt")
	}
}

// scriptedAuditBody returns the provider body for call, or the call itself as
// JSON when the dispatcher cannot encode provider bodies.
func scriptedAuditBody(dispatcher CallDispatcher, call ScriptedCall) []byte {
	if enc, ok := dispatcher.(PayloadEncoder); ok {
		if body, err := enc.ScriptedPayload(call); err == nil {
			return body
		}
	}
	body, _ := json.Marshal(call)
	return body
}

func handoffAuditBody(dispatcher CallDispatcher, call HandoffCall) []byte {
	if enc, ok := dispatcher.(PayloadEncoder); ok {
		if body, err := enc.HandoffPayload(call); err == nil {
			return body
		}
	}
	body, _ := json.Marshal(call)
	return body
}
