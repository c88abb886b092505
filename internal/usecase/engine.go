// Package usecase contains the conversation state machine that turns
// lifecycle events into call-control actions, advancing the persisted
// script cursor as it goes.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"voicetest-engine/internal/domain"
	"voicetest-engine/internal/event"
	"voicetest-engine/internal/repository"
)

// StateStore is the persistence surface the engine needs.
type StateStore interface {
	Get(ctx context.Context, conversationID string) (domain.ConversationState, error)
	AdvanceState(ctx context.Context, conversationID string, expectedIndex, newIndex int, newStatus domain.Status) error
}

// ParamGetter fetches a single configuration parameter by name.
type ParamGetter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// Result is the payload handed to the response builder: the actions for
// this invocation and the attribute bag to echo back to the platform.
type Result struct {
	Actions    []domain.Action
	Attributes map[string]string
}

// Engine drives a seeded conversation script across independent lifecycle
// event invocations. All progress lives in the state store and in the
// attribute bag echoed by the platform; apart from cached voice
// configuration the engine holds no state between invocations.
//
// HandleEvent never fails. An unhandled fault at this layer would abort
// the live call, so every error branch degrades to an empty action list.
type Engine struct {
	store       StateStore
	params      ParamGetter
	paramPrefix string
	log         *slog.Logger

	voiceMu     sync.Mutex
	voiceLoaded bool
	voice       VoiceConfig
}

// NewEngine creates an Engine. paramPrefix may be empty, in which case the
// built-in voice defaults are used without consulting the parameter store.
func NewEngine(store StateStore, params ParamGetter, paramPrefix string, log *slog.Logger) (*Engine, error) {
	if store == nil {
		return nil, errors.New("usecase: state store must not be nil")
	}
	if params == nil {
		return nil, errors.New("usecase: param getter must not be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		store:       store,
		params:      params,
		paramPrefix: strings.TrimRight(strings.TrimSpace(paramPrefix), "/"),
		log:         log,
	}, nil
}

// HandleEvent dispatches one lifecycle event against the persisted
// conversation state and returns the next actions for the call.
func (e *Engine) HandleEvent(ctx context.Context, ev event.CallEvent) Result {
	attrs := ev.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	res := Result{Actions: []domain.Action{}, Attributes: attrs}

	if ev.ConversationID == "" {
		if text := attrs[event.AttrTTSText]; text != "" {
			if acts := LegacySingleTurn(ev, text, e.voiceConfig(ctx)); len(acts) > 0 {
				res.Actions = acts
			}
			return res
		}
		e.log.Info("event carries no conversation id or legacy text",
			"event_type", string(ev.Type), "reason", "unresolvable_context")
		return res
	}

	state, err := e.store.Get(ctx, ev.ConversationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			e.log.Warn("conversation state missing",
				"conversation_id", ev.ConversationID, "reason", "state_not_found")
		} else {
			e.log.Error("state read failed",
				"conversation_id", ev.ConversationID, "reason", "store_unavailable", "err", err)
		}
		return res
	}

	switch {
	case ev.Type.IsCallProgress():
		// The resolved id is already folded into the attribute bag; nothing
		// else to do until the call is answered.
		return res

	case ev.Type == event.CallUpdateRequested:
		if ev.UpdateArgs["action"] == "hangup" {
			e.log.Info("manual hangup requested", "conversation_id", ev.ConversationID)
			res.Actions = []domain.Action{hangupAction()}
		}
		return res

	case ev.Type == event.CallAnswered:
		return e.handleAnswered(ctx, ev, state, res)

	case ev.Type == event.ActionSuccessful:
		return e.handleActionSucceeded(ctx, ev, state, res)

	case ev.Type == event.ActionFailed:
		return e.handleActionFailed(ctx, ev, state, res)

	case ev.Type == event.Hangup:
		return e.handleHangup(ctx, ev, state, res)
	}

	e.log.Info("ignoring unhandled event type",
		"event_type", string(ev.Type), "conversation_id", ev.ConversationID)
	return res
}

func (e *Engine) handleAnswered(ctx context.Context, ev event.CallEvent, state domain.ConversationState, res Result) Result {
	if !state.Status.CanTransition(domain.StatusInProgress) {
		e.log.Info("call answered for a conversation that already started, ignoring",
			"conversation_id", ev.ConversationID, "status", string(state.Status))
		return res
	}

	// Attributes seeded alongside the script ride into the bag with a pre_
	// prefix so external checks can observe them on the call leg.
	for k, v := range state.PreSetAttributes {
		res.Attributes["pre_"+k] = v
	}

	if len(state.Script) == 0 {
		e.persist(ctx, ev.ConversationID, state.CurrentStepIndex, state.CurrentStepIndex, domain.StatusCompleted)
		return res
	}

	e.log.Info("starting conversation script",
		"conversation_id", ev.ConversationID, "step", state.CurrentStepIndex)
	if acts := compileAt(state.Script, state.CurrentStepIndex, ev.CallLegID, e.voiceConfig(ctx), e.log); len(acts) > 0 {
		res.Actions = acts
	}
	e.persist(ctx, ev.ConversationID, state.CurrentStepIndex, state.CurrentStepIndex, domain.StatusInProgress)
	return res
}

func (e *Engine) handleActionSucceeded(ctx context.Context, ev event.CallEvent, state domain.ConversationState, res Result) Result {
	if state.Status != domain.StatusInProgress {
		e.log.Info("action result for a conversation not in progress, ignoring",
			"conversation_id", ev.ConversationID, "status", string(state.Status))
		return res
	}

	next := state.CurrentStepIndex + 1
	if next < len(state.Script) {
		// Advance before emitting: losing the compare-and-swap means another
		// invocation already handled this step, and re-emitting it would
		// play it twice.
		if !e.persist(ctx, ev.ConversationID, state.CurrentStepIndex, next, domain.StatusInProgress) {
			return res
		}
		if acts := compileAt(state.Script, next, ev.CallLegID, e.voiceConfig(ctx), e.log); len(acts) > 0 {
			res.Actions = acts
		}
		return res
	}

	// End of script. No hangup here: the call stays up briefly so external
	// checks can read queue metrics and trace records before the leg drops.
	e.log.Info("end of script reached", "conversation_id", ev.ConversationID)
	e.persist(ctx, ev.ConversationID, state.CurrentStepIndex, next, domain.StatusCompleted)
	return res
}

func (e *Engine) handleActionFailed(ctx context.Context, ev event.CallEvent, state domain.ConversationState, res Result) Result {
	e.log.Warn("platform reported a failed action",
		"conversation_id", ev.ConversationID,
		"step", state.CurrentStepIndex,
		"action_type", ev.ActionType,
		"error_message", ev.ActionError,
		"reason", "upstream_action_failure")
	if state.Status.CanTransition(domain.StatusFailed) {
		e.persist(ctx, ev.ConversationID, state.CurrentStepIndex, state.CurrentStepIndex, domain.StatusFailed)
	}
	// Hang up so a failed script does not leave a zombie call leg.
	res.Actions = []domain.Action{hangupAction()}
	return res
}

func (e *Engine) handleHangup(ctx context.Context, ev event.CallEvent, state domain.ConversationState, res Result) Result {
	if state.Status != domain.StatusCompleted {
		e.persist(ctx, ev.ConversationID, state.CurrentStepIndex, state.CurrentStepIndex, domain.StatusCompleted)
	}
	return res
}

// persist writes the new cursor and status, reporting whether this
// invocation won the compare-and-swap. A lost swap means a duplicate or
// concurrent delivery already advanced the record; write failures are
// logged and swallowed so the envelope still goes back to the platform.
func (e *Engine) persist(ctx context.Context, conversationID string, expected, next int, status domain.Status) bool {
	err := e.store.AdvanceState(ctx, conversationID, expected, next, status)
	switch {
	case err == nil:
		return true
	case errors.Is(err, repository.ErrConflict):
		e.log.Info("cursor already advanced by a concurrent invocation",
			"conversation_id", conversationID, "reason", "advance_conflict")
	default:
		e.log.Error("state write failed",
			"conversation_id", conversationID, "reason", "store_unavailable", "err", err)
	}
	return false
}
