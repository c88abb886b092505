// Package event parses raw SIP media application lifecycle payloads into
// typed call events. Parsing never fails: every missing or unexpected field
// reads as absent so a malformed payload can still be answered with a
// harmless envelope.
package event

import "encoding/json"

// Type is the lifecycle event discriminator as delivered on the wire.
type Type string

const (
	NewInboundCall      Type = "NEW_INBOUND_CALL"
	NewOutboundCall     Type = "NEW_OUTBOUND_CALL"
	Ringing             Type = "RINGING"
	CallAnswered        Type = "CALL_ANSWERED"
	ActionSuccessful    Type = "ACTION_SUCCESSFUL"
	ActionFailed        Type = "ACTION_FAILED"
	Hangup              Type = "HANGUP"
	CallUpdateRequested Type = "CALL_UPDATE_REQUESTED"
)

// IsCallProgress reports whether t is one of the ringing-family events that
// precede the call being answered.
func (t Type) IsCallProgress() bool {
	return t == NewInboundCall || t == NewOutboundCall || t == Ringing
}

// Attribute bag keys with wire-level meaning.
const (
	AttrConversationID = "conversation_id"
	AttrTTSText        = "tts_text"
)

// CallEvent is the normalized form of one inbound lifecycle event.
type CallEvent struct {
	Type           Type
	TransactionID  string
	CallLegID      string
	ConversationID string
	Attributes     map[string]string
	ActionType     string
	ActionError    string
	UpdateArgs     map[string]string
}

// Wire shapes. Every field is optional.
type inboundEvent struct {
	InvocationEventType string      `json:"InvocationEventType"`
	CallDetails         callDetails `json:"CallDetails"`
	ActionData          actionData  `json:"ActionData"`
}

type callDetails struct {
	TransactionID         string         `json:"TransactionId"`
	Participants          []participant  `json:"Participants"`
	TransactionAttributes map[string]any `json:"TransactionAttributes"`
	Arguments             map[string]any `json:"Arguments"`
	Parameters            map[string]any `json:"Parameters"`
}

type participant struct {
	CallID string `json:"CallId"`
}

type actionData struct {
	Type         string           `json:"Type"`
	Parameters   actionParameters `json:"Parameters"`
	ErrorMessage string           `json:"ErrorMessage"`
}

type actionParameters struct {
	Arguments map[string]any `json:"Arguments"`
	TTSText   string         `json:"tts_text"`
}

// Normalize parses a raw lifecycle payload into a CallEvent.
//
// The conversation id is resolved from, in order: the transaction attribute
// bag, the action parameters' arguments, the call-detail arguments, and the
// legacy call-detail parameters. A resolved id is written back into the
// returned attribute map so it keeps travelling with the call leg even if
// the platform stops echoing the original location.
func Normalize(raw json.RawMessage) CallEvent {
	var in inboundEvent
	_ = json.Unmarshal(raw, &in)

	ev := CallEvent{
		Type:          Type(in.InvocationEventType),
		TransactionID: in.CallDetails.TransactionID,
		Attributes:    stringMap(in.CallDetails.TransactionAttributes),
		ActionType:    in.ActionData.Type,
		ActionError:   in.ActionData.ErrorMessage,
		UpdateArgs:    stringMap(in.ActionData.Parameters.Arguments),
	}
	if len(in.CallDetails.Participants) > 0 {
		ev.CallLegID = in.CallDetails.Participants[0].CallID
	}

	ev.ConversationID = ev.Attributes[AttrConversationID]
	if ev.ConversationID == "" {
		for _, args := range []map[string]any{
			in.ActionData.Parameters.Arguments,
			in.CallDetails.Arguments,
			in.CallDetails.Parameters,
		} {
			if id, ok := args[AttrConversationID].(string); ok && id != "" {
				ev.ConversationID = id
				break
			}
		}
		if ev.ConversationID != "" {
			ev.Attributes[AttrConversationID] = ev.ConversationID
		}
	}

	// Outbound calls placed by the legacy single-turn tooling deliver the
	// text to speak in the initial action parameters; fold it into the bag
	// the same way the id is folded.
	if ev.Type == NewOutboundCall && ev.Attributes[AttrTTSText] == "" && in.ActionData.Parameters.TTSText != "" {
		ev.Attributes[AttrTTSText] = in.ActionData.Parameters.TTSText
	}

	return ev
}

// stringMap keeps only the string-valued entries of m. The platform echoes
// transaction attributes as strings; anything else is dropped.
func stringMap(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
