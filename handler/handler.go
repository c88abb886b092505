// Package handler adapts SIP media application lifecycle invocations to
// the conversation engine and always answers with a well-formed action
// envelope.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"voicetest-engine/internal/domain"
	"voicetest-engine/internal/event"
	"voicetest-engine/internal/usecase"
)

const schemaVersion = "1.0"

// Response is the fixed envelope returned to the media platform for every
// invocation.
type Response struct {
	SchemaVersion         string            `json:"SchemaVersion"`
	Actions               []domain.Action   `json:"Actions"`
	TransactionAttributes map[string]string `json:"TransactionAttributes,omitempty"`
}

// conversationEngine is the engine surface the handler depends on.
type conversationEngine interface {
	HandleEvent(ctx context.Context, ev event.CallEvent) usecase.Result
}

// Handler is the Lambda entrypoint for call lifecycle events.
type Handler struct {
	engine conversationEngine
	log    *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(engine conversationEngine, log *slog.Logger) (*Handler, error) {
	if engine == nil {
		return nil, errors.New("handler: engine must not be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{engine: engine, log: log}, nil
}

// Handle processes one lifecycle event. It never returns an error: a fault
// escaping this boundary would tear down the live call instead of letting
// it end cleanly, so every path resolves to a valid envelope.
func (h *Handler) Handle(ctx context.Context, raw json.RawMessage) (Response, error) {
	ev := event.Normalize(raw)
	h.log.Info("handling call event",
		"event_type", string(ev.Type),
		"transaction_id", ev.TransactionID,
		"conversation_id", ev.ConversationID,
	)

	res := h.engine.HandleEvent(ctx, ev)

	actions := res.Actions
	if actions == nil {
		actions = []domain.Action{}
	}
	return Response{
		SchemaVersion:         schemaVersion,
		Actions:               actions,
		TransactionAttributes: res.Attributes,
	}, nil
}
