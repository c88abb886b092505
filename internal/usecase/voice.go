package usecase

import (
	"context"
	"errors"

	"voicetest-engine/internal/integrations/paramstore"
)

// Built-in voice defaults, used when no parameter overrides them.
const (
	defaultVoiceEngine = "neural"
	defaultVoiceID     = "Joanna"
)

// VoiceConfig selects the TTS voice for Speak actions.
type VoiceConfig struct {
	Engine  string
	VoiceID string
}

// voiceConfig returns the cached voice configuration, loading it from the
// parameter store on first use. Any load failure falls back to the
// defaults: a live call must not be dropped over missing configuration.
func (e *Engine) voiceConfig(ctx context.Context) VoiceConfig {
	e.voiceMu.Lock()
	defer e.voiceMu.Unlock()
	if e.voiceLoaded {
		return e.voice
	}

	v := VoiceConfig{Engine: defaultVoiceEngine, VoiceID: defaultVoiceID}
	if e.paramPrefix != "" {
		if s := e.loadParam(ctx, e.paramPrefix+"/voice_engine"); s != "" {
			v.Engine = s
		}
		if s := e.loadParam(ctx, e.paramPrefix+"/voice_id"); s != "" {
			v.VoiceID = s
		}
	}
	e.voice = v
	e.voiceLoaded = true
	return v
}

func (e *Engine) loadParam(ctx context.Context, name string) string {
	s, err := e.params.GetParameter(ctx, name)
	if err != nil {
		if !errors.Is(err, paramstore.ErrNotFound) {
			e.log.Warn("voice parameter unavailable, using default", "name", name, "err", err)
		}
		return ""
	}
	return s
}
