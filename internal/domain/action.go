package domain

// Action type tags as expected by the media platform.
const (
	ActionTypeSpeak      = "Speak"
	ActionTypeSendDigits = "SendDigits"
	ActionTypeHangup     = "Hangup"
)

// Text types for Speak actions.
const (
	TextTypePlain = "text"
	TextTypeSSML  = "ssml"
)

// Action is one platform call-control instruction emitted in the response
// envelope.
type Action struct {
	Type       string           `json:"Type"`
	Parameters ActionParameters `json:"Parameters"`
}

// ActionParameters covers the union of parameters across action types;
// unset fields are omitted on the wire.
type ActionParameters struct {
	Text                       string `json:"Text,omitempty"`
	Engine                     string `json:"Engine,omitempty"`
	VoiceID                    string `json:"VoiceId,omitempty"`
	CallID                     string `json:"CallId,omitempty"`
	TextType                   string `json:"TextType,omitempty"`
	Digits                     string `json:"Digits,omitempty"`
	ToneDurationInMilliseconds int    `json:"ToneDurationInMilliseconds,omitempty"`
	SipResponseCode            string `json:"SipResponseCode,omitempty"`
	ParticipantTag             string `json:"ParticipantTag,omitempty"`
}
