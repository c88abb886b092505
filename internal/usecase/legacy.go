package usecase

import (
	"voicetest-engine/internal/domain"
	"voicetest-engine/internal/event"
)

// LegacySingleTurn handles calls placed before scripted conversations
// existed, where the attribute bag carries only a text to speak: the call
// being answered speaks it, the speak completing hangs up. No persisted
// state is read or written.
func LegacySingleTurn(ev event.CallEvent, text string, voice VoiceConfig) []domain.Action {
	switch ev.Type {
	case event.CallAnswered:
		return []domain.Action{speakAction(text, domain.TextTypePlain, ev.CallLegID, voice)}
	case event.ActionSuccessful:
		return []domain.Action{hangupAction()}
	}
	return nil
}
