package twilio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSayHangup(t *testing.T) {
	response := &Response{Verbs: []any{
		Say{Voice: Voice, Text: "Goodbye."},
		Hangup{},
	}}

	out, err := response.Render()
	require.NoError(t, err)

	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, `<Say voice="Polly.Matthew-Neural">Goodbye.</Say>`)
	assert.Contains(t, out, "<Hangup></Hangup>")
}

func TestRenderSpokenPrompt(t *testing.T) {
	response := &Response{Verbs: []any{
		SpokenPrompt("How can I help?", "/conversation", 5),
	}}

	out, err := response.Render()
	require.NoError(t, err)

	assert.Contains(t, out, `input="speech dtmf"`)
	assert.Contains(t, out, `action="/conversation"`)
	assert.Contains(t, out, `method="POST"`)
	assert.Contains(t, out, `timeout="5"`)
	assert.Contains(t, out, `speechTimeout="auto"`)
	assert.Contains(t, out, `bargeIn="true"`)
	assert.Contains(t, out, ">How can I help?</Say>")
}

func TestRenderPauseAndRedirect(t *testing.T) {
	response := &Response{Verbs: []any{
		Pause{Length: 1},
		Redirect{URL: "https://example.com/conversation"},
	}}

	out, err := response.Render()
	require.NoError(t, err)

	assert.Contains(t, out, `<Pause length="1"></Pause>`)
	assert.Contains(t, out, "<Redirect>https://example.com/conversation</Redirect>")
}

func TestRenderEscapesSpeech(t *testing.T) {
	response := &Response{Verbs: []any{
		Say{Voice: Voice, Text: "Fish & chips <today>"},
	}}

	out, err := response.Render()
	require.NoError(t, err)

	assert.Contains(t, out, "Fish &amp; chips &lt;today&gt;")
}
