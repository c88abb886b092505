package usecase

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type countingParams struct {
	fakeParams
	calls atomic.Int32
}

func (c *countingParams) GetParameter(ctx context.Context, name string) (string, error) {
	c.calls.Add(1)
	return c.fakeParams.GetParameter(ctx, name)
}

func TestVoiceConfig_DefaultsWithoutPrefix(t *testing.T) {
	e, err := NewEngine(&fakeStore{}, &fakeParams{}, "", slog.Default())
	require.NoError(t, err)

	v := e.voiceConfig(context.Background())
	require.Equal(t, "neural", v.Engine)
	require.Equal(t, "Joanna", v.VoiceID)
}

func TestVoiceConfig_OverridesFromParameters(t *testing.T) {
	params := &fakeParams{values: map[string]string{
		"/voicetest/voice_engine": "standard",
		"/voicetest/voice_id":     "Matthew",
	}}
	e, err := NewEngine(&fakeStore{}, params, "/voicetest/", slog.Default())
	require.NoError(t, err)

	v := e.voiceConfig(context.Background())
	require.Equal(t, "standard", v.Engine)
	require.Equal(t, "Matthew", v.VoiceID)
}

func TestVoiceConfig_MissingParametersFallBack(t *testing.T) {
	params := &fakeParams{values: map[string]string{
		"/voicetest/voice_id": "Matthew",
	}}
	e, err := NewEngine(&fakeStore{}, params, "/voicetest", slog.Default())
	require.NoError(t, err)

	v := e.voiceConfig(context.Background())
	require.Equal(t, "neural", v.Engine)
	require.Equal(t, "Matthew", v.VoiceID)
}

func TestVoiceConfig_LoadsOnce(t *testing.T) {
	params := &countingParams{fakeParams: fakeParams{values: map[string]string{
		"/voicetest/voice_engine": "standard",
		"/voicetest/voice_id":     "Matthew",
	}}}
	e, err := NewEngine(&fakeStore{}, params, "/voicetest", slog.Default())
	require.NoError(t, err)

	e.voiceConfig(context.Background())
	e.voiceConfig(context.Background())
	require.Equal(t, int32(2), params.calls.Load())
}
