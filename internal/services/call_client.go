package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"leadcaller/internal/config"
	"leadcaller/internal/script"
)

// ErrDispatch wraps every failure to place a call with the provider
var ErrDispatch = errors.New("call dispatch failed")

// ScriptedCall is an outbound call driven by a stored task script
type ScriptedCall struct {
	Phone         string `json:"phone"`
	Task          string `json:"task"`
	FirstSentence string `json:"first_sentence"`
	UserName      string `json:"user_name"`
}

// HandoffCall passes a caller to a pathway-driven voice agent
type HandoffCall struct {
	Phone     string `json:"phone"`
	PathwayID string `json:"pathway_id"`
	AgentName string `json:"agent_name"`
	Voice     string `json:"voice"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// CallDispatcher places calls with the outbound calling provider and returns
// the provider's call id.
type CallDispatcher interface {
	DispatchScripted(ctx context.Context, call ScriptedCall) (string, error)
	DispatchHandoff(ctx context.Context, call HandoffCall) (string, error)
}

var _ PayloadEncoder = (*CallClient)(nil)

// CallClient talks to the Bland calls API
type CallClient struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	persona    script.Persona
}

// NewCallClient builds a client from configuration. A nil httpClient uses
// http.DefaultClient.
func NewCallClient(cfg config.Bland, httpClient *http.Client) *CallClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &CallClient{
		httpClient: httpClient,
		apiURL:     cfg.APIURL,
		apiKey:     cfg.APIKey,
		persona:    script.DefaultPersona(),
	}
}

type personality struct {
	Core  []string `json:"core"`
	Style []string `json:"style"`
}

type conversationStyle struct {
	Communication  []string `json:"communication"`
	ProblemSolving []string `json:"problem_solving"`
}

type scriptedParameters struct {
	UserName          string            `json:"user_name"`
	FirstSentence     string            `json:"first_sentence"`
	ConversationStyle conversationStyle `json:"conversation_style"`
	Rules             []string          `json:"rules"`
}

type scriptedPayload struct {
	PhoneNumber   string             `json:"phone_number"`
	Task          string             `json:"task"`
	Voice         string             `json:"voice"`
	Personality   personality        `json:"personality"`
	Parameters    scriptedParameters `json:"parameters"`
	ReduceLatency bool               `json:"reduce_latency"`
	IVRMode       bool               `json:"ivr_mode"`
}

type handoffRequestData struct {
	UserPhoneNumber string `json:"user_phone_number"`
	UserEmail       string `json:"user_email"`
	AgentName       string `json:"agent_name"`
	UserName        string `json:"user_name"`
}

type handoffParameters struct {
	ConversationStyle conversationStyle `json:"conversation_style"`
	Rules             []string          `json:"rules"`
}

type handoffPayload struct {
	PhoneNumber     string             `json:"phone_number"`
	RequestData     handoffRequestData `json:"request_data"`
	BackgroundTrack string             `json:"background_track"`
	PathwayID       string             `json:"pathway_id"`
	Voice           string             `json:"voice"`
	Personality     personality        `json:"personality"`
	Parameters      handoffParameters  `json:"parameters"`
	ReduceLatency   bool               `json:"reduce_latency"`
	IVRMode         bool               `json:"ivr_mode"`
}

type callResponse struct {
	Status  string `json:"status"`
	CallID  string `json:"call_id"`
	Message string `json:"message"`
}

// ScriptedPayload builds the request body for a scripted call
func (c *CallClient) ScriptedPayload(call ScriptedCall) ([]byte, error) {
	return json.Marshal(scriptedPayload{
		PhoneNumber: call.Phone,
		Task:        call.Task,
		Voice:       script.Voice,
		Personality: c.personality(),
		Parameters: scriptedParameters{
			UserName:          call.UserName,
			FirstSentence:     call.FirstSentence,
			ConversationStyle: c.conversationStyle(),
			Rules:             c.persona.Rules,
		},
		ReduceLatency: true,
		IVRMode:       true,
	})
}

// HandoffPayload builds the request body for an agent handoff call
func (c *CallClient) HandoffPayload(call HandoffCall) ([]byte, error) {
	return json.Marshal(handoffPayload{
		PhoneNumber: call.Phone,
		RequestData: handoffRequestData{
			UserPhoneNumber: call.Phone,
			UserEmail:       call.UserEmail,
			AgentName:       call.AgentName,
			UserName:        call.UserName,
		},
		BackgroundTrack: script.BackgroundTrack,
		PathwayID:       call.PathwayID,
		Voice:           call.Voice,
		Personality:     c.personality(),
		Parameters: handoffParameters{
			ConversationStyle: c.conversationStyle(),
			Rules:             c.persona.Rules,
		},
		ReduceLatency: true,
		IVRMode:       false,
	})
}

// DispatchScripted implements CallDispatcher
func (c *CallClient) DispatchScripted(ctx context.Context, call ScriptedCall) (string, error) {
	body, err := c.ScriptedPayload(call)
	if err != nil {
		return "", fmt.Errorf("%w: encode payload: %v", ErrDispatch, err)
	}
	return c.post(ctx, body)
}

// DispatchHandoff implements CallDispatcher
func (c *CallClient) DispatchHandoff(ctx context.Context, call HandoffCall) (string, error) {
	body, err := c.HandoffPayload(call)
	if err != nil {
		return "", fmt.Errorf("%w: encode payload: %v", ErrDispatch, err)
	}
	return c.post(ctx, body)
}

func (c *CallClient) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDispatch, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDispatch, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrDispatch, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: provider returned %d: %s", ErrDispatch, resp.StatusCode, bytes.TrimSpace(raw))
	}

	var out callResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrDispatch, err)
	}
	if out.CallID == "" {
		return "", fmt.Errorf("%w: response has no call_id (status %q: %s)", ErrDispatch, out.Status, out.Message)
	}
	return out.CallID, nil
}

func (c *CallClient) personality() personality {
	return personality{Core: c.persona.Core, Style: c.persona.Style}
}

func (c *CallClient) conversationStyle() conversationStyle {
	return conversationStyle{
		Communication:  c.persona.Communication,
		ProblemSolving: c.persona.ProblemSolving,
	}
}
