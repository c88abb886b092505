package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeScript_HappyPath(t *testing.T) {
	raw := `[{"type":"speak","text":"Hello"},{"type":"wait","duration_ms":2000},{"type":"dtmf","digits":"12"},{"type":"hangup"}]`
	script, err := DecodeScript(raw)
	require.NoError(t, err)
	require.Len(t, script, 4)
	require.Equal(t, Step{Type: StepSpeak, Text: "Hello"}, script[0])
	require.Equal(t, Step{Type: StepWait, DurationMS: 2000}, script[1])
	require.Equal(t, Step{Type: StepDtmf, Digits: "12"}, script[2])
	require.Equal(t, Step{Type: StepHangup}, script[3])
}

func TestDecodeScript_LegacyActionTag(t *testing.T) {
	script, err := DecodeScript(`[{"action":"speak","text":"Hi"}]`)
	require.NoError(t, err)
	require.Len(t, script, 1)
	require.Equal(t, StepSpeak, script[0].Type)
	require.Equal(t, "Hi", script[0].Text)
}

func TestDecodeScript_WaitDefaultsDuration(t *testing.T) {
	script, err := DecodeScript(`[{"type":"wait"}]`)
	require.NoError(t, err)
	require.Equal(t, 1000, script[0].DurationMS)
}

func TestDecodeScript_UnknownStepBecomesNoop(t *testing.T) {
	script, err := DecodeScript(`[{"type":"transfer","target":"queue"},{"type":"speak","text":"ok"}]`)
	require.NoError(t, err)
	require.Len(t, script, 2)
	require.Equal(t, Step{}, script[0])
	require.Equal(t, StepSpeak, script[1].Type)
}

func TestDecodeScript_MalformedEntryBecomesNoop(t *testing.T) {
	script, err := DecodeScript(`[{"type":42},{"type":"speak","text":"ok"}]`)
	require.NoError(t, err)
	require.Len(t, script, 2)
	require.Equal(t, Step{}, script[0])
}

func TestDecodeScript_Empty(t *testing.T) {
	for _, raw := range []string{"", "  ", "[]"} {
		script, err := DecodeScript(raw)
		require.NoError(t, err)
		require.Empty(t, script)
	}
}

func TestDecodeScript_InvalidJSON(t *testing.T) {
	_, err := DecodeScript(`not-json`)
	require.Error(t, err)
}

func TestStep_MarshalRoundTrip(t *testing.T) {
	in := Script{
		{Type: StepSpeak, Text: "Hello"},
		{Type: StepWait, DurationMS: 1500},
		{Type: StepDtmf, Digits: "9"},
		{Type: StepHangup},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	out, err := DecodeScript(string(data))
	require.NoError(t, err)
	require.Equal(t, in, out)
}
