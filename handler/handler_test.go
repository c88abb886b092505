package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"voicetest-engine/internal/domain"
	"voicetest-engine/internal/event"
	"voicetest-engine/internal/usecase"
)

type stubEngine struct {
	out usecase.Result
	ev  event.CallEvent
}

func (s *stubEngine) HandleEvent(_ context.Context, ev event.CallEvent) usecase.Result {
	s.ev = ev
	return s.out
}

func mustNewHandler(t *testing.T, eng *stubEngine) *Handler {
	t.Helper()
	h, err := NewHandler(eng, slog.Default())
	require.NoError(t, err)
	return h
}

func TestNewHandler_ValidatesDependency(t *testing.T) {
	_, err := NewHandler(nil, nil)
	require.Error(t, err)
}

func TestHandle_HappyPath(t *testing.T) {
	eng := &stubEngine{out: usecase.Result{
		Actions: []domain.Action{{
			Type:       domain.ActionTypeSpeak,
			Parameters: domain.ActionParameters{Text: "Hello"},
		}},
		Attributes: map[string]string{"conversation_id": "conv-1"},
	}}
	h := mustNewHandler(t, eng)

	raw := json.RawMessage(`{
		"InvocationEventType": "CALL_ANSWERED",
		"CallDetails": {
			"TransactionId": "tx-1",
			"Participants": [{"CallId": "leg-1"}],
			"TransactionAttributes": {"conversation_id": "conv-1"}
		}
	}`)
	resp, err := h.Handle(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, "1.0", resp.SchemaVersion)
	require.Len(t, resp.Actions, 1)
	require.Equal(t, "conv-1", resp.TransactionAttributes["conversation_id"])

	// The normalized event reached the engine.
	require.Equal(t, event.CallAnswered, eng.ev.Type)
	require.Equal(t, "conv-1", eng.ev.ConversationID)
	require.Equal(t, "leg-1", eng.ev.CallLegID)
}

func TestHandle_MalformedPayloadStillAnswers(t *testing.T) {
	eng := &stubEngine{out: usecase.Result{Attributes: map[string]string{}}}
	h := mustNewHandler(t, eng)

	resp, err := h.Handle(context.Background(), json.RawMessage(`not-json`))
	require.NoError(t, err)
	require.Equal(t, "1.0", resp.SchemaVersion)
	require.NotNil(t, resp.Actions)
	require.Empty(t, resp.Actions)
}

func TestHandle_NilActionsSerializeAsEmptyArray(t *testing.T) {
	eng := &stubEngine{out: usecase.Result{}}
	h := mustNewHandler(t, eng)

	resp, err := h.Handle(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	require.Contains(t, string(body), `"Actions":[]`)
}
