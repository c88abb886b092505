package usecase

import (
	"fmt"
	"log/slog"

	"voicetest-engine/internal/domain"
)

// Platform ceilings for a single action. The media layer rejects SSML
// breaks somewhere past 9 s, and a SendDigits tone tops out at 60 s.
const (
	maxSSMLBreakMS = 9000

	// MaxToneDurationMS is the longest silent tone one action can carry.
	// Seeders must split waits longer than this into multiple wait steps.
	MaxToneDurationMS = 60000
)

const dtmfToneMS = 250

const (
	sipResponseCodeOK = "0"
	participantLegA   = "LEG-A"
)

// compileAt compiles the script step at index. An out-of-range index is a
// normal end-of-script condition and compiles to nothing.
func compileAt(script domain.Script, index int, callLegID string, voice VoiceConfig, log *slog.Logger) []domain.Action {
	if index < 0 || index >= len(script) {
		return nil
	}
	return compileStep(script[index], callLegID, voice, log)
}

// compileStep turns one scripted instruction into platform actions.
func compileStep(step domain.Step, callLegID string, voice VoiceConfig, log *slog.Logger) []domain.Action {
	switch step.Type {
	case domain.StepSpeak:
		return []domain.Action{speakAction(step.Text, domain.TextTypePlain, callLegID, voice)}

	case domain.StepWait:
		return compileWait(step.DurationMS, callLegID, voice, log)

	case domain.StepDtmf:
		return []domain.Action{{
			Type: domain.ActionTypeSendDigits,
			Parameters: domain.ActionParameters{
				CallID:                     callLegID,
				Digits:                     step.Digits,
				ToneDurationInMilliseconds: dtmfToneMS,
			},
		}}

	case domain.StepHangup:
		return []domain.Action{hangupAction()}
	}

	if log != nil {
		log.Warn("skipping unrecognized script step", "step_type", string(step.Type))
	}
	return nil
}

// compileWait renders a pause. Short pauses ride on an SSML break inside a
// Speak action; anything longer becomes a silent DTMF tone, clamped to the
// platform's 60 s tone ceiling.
func compileWait(durationMS int, callLegID string, voice VoiceConfig, log *slog.Logger) []domain.Action {
	if durationMS <= maxSSMLBreakMS {
		ssml := fmt.Sprintf("<speak><break time='%dms'/></speak>", durationMS)
		return []domain.Action{speakAction(ssml, domain.TextTypeSSML, callLegID, voice)}
	}

	tone := durationMS
	if tone > MaxToneDurationMS {
		tone = MaxToneDurationMS
		if log != nil {
			log.Warn("wait exceeds the tone duration ceiling, clamping",
				"requested_ms", durationMS, "clamped_ms", MaxToneDurationMS)
		}
	}
	return []domain.Action{{
		Type: domain.ActionTypeSendDigits,
		Parameters: domain.ActionParameters{
			CallID:                     callLegID,
			Digits:                     "0",
			ToneDurationInMilliseconds: tone,
		},
	}}
}

func speakAction(text, textType, callLegID string, voice VoiceConfig) domain.Action {
	return domain.Action{
		Type: domain.ActionTypeSpeak,
		Parameters: domain.ActionParameters{
			Text:     text,
			Engine:   voice.Engine,
			VoiceID:  voice.VoiceID,
			CallID:   callLegID,
			TextType: textType,
		},
	}
}

func hangupAction() domain.Action {
	return domain.Action{
		Type: domain.ActionTypeHangup,
		Parameters: domain.ActionParameters{
			SipResponseCode: sipResponseCodeOK,
			ParticipantTag:  participantLegA,
		},
	}
}
