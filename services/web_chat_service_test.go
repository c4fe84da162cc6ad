package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanchan-g12/sam-assistant/engine"
	"github.com/kanchan-g12/sam-assistant/metrics"
	"github.com/kanchan-g12/sam-assistant/session"
)

type fakeProcessor struct {
	result  engine.Result
	calls   int
	channel session.Channel
	id      string
	input   string
}

func (p *fakeProcessor) ProcessTurn(ctx context.Context, ch session.Channel, id, inputText string) engine.Result {
	p.calls++
	p.channel = ch
	p.id = id
	p.input = inputText
	return p.result
}

func postChat(t *testing.T, svc *WebChatService, body string) (*httptest.ResponseRecorder, chatResponse) {
	t.Helper()

	req := httptest.NewRequest("POST", "/chat", bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	svc.Chat(rec, req)

	var resp chatResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestChatHappyPath(t *testing.T) {
	processor := &fakeProcessor{result: engine.Result{ReplyText: "Happy to help."}}
	svc := NewWebChatService(processor, metrics.NewRecorder(), "https://calendly.com/example")

	rec, resp := postChat(t, svc, `{"message": "hi there", "sessionId": "web-1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Happy to help.", resp.Response)
	assert.False(t, resp.SuggestedAppointment)
	assert.Equal(t, "web-1", resp.SessionID)

	assert.Equal(t, session.ChannelWeb, processor.channel)
	assert.Equal(t, "web-1", processor.id)
	assert.Equal(t, "hi there", processor.input)
}

func TestChatGeneratesSessionID(t *testing.T) {
	processor := &fakeProcessor{result: engine.Result{ReplyText: "Hello!"}}
	svc := NewWebChatService(processor, metrics.NewRecorder(), "")

	_, resp := postChat(t, svc, `{"message": "hi"}`)

	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, resp.SessionID, processor.id, "generated id must reach the processor")
}

func TestChatAppendsSchedulingLinkWhenSuggested(t *testing.T) {
	processor := &fakeProcessor{result: engine.Result{
		ReplyText:            "Let's set up a call.",
		AppointmentSuggested: true,
	}}
	svc := NewWebChatService(processor, metrics.NewRecorder(), "https://calendly.com/example")

	_, resp := postChat(t, svc, `{"message": "book me in", "sessionId": "web-1"}`)

	assert.True(t, resp.SuggestedAppointment)
	assert.Contains(t, resp.Response, `<a href="https://calendly.com/example" target="_blank">schedule a meeting here</a>`)
}

func TestChatNoLinkWithoutSuggestion(t *testing.T) {
	processor := &fakeProcessor{result: engine.Result{ReplyText: "Tell me more."}}
	svc := NewWebChatService(processor, metrics.NewRecorder(), "https://calendly.com/example")

	_, resp := postChat(t, svc, `{"message": "what do you do", "sessionId": "web-1"}`)

	assert.NotContains(t, resp.Response, "calendly.com")
}

func TestChatEmptyMessageBecomesGreeting(t *testing.T) {
	processor := &fakeProcessor{result: engine.Result{ReplyText: "Hi!"}}
	svc := NewWebChatService(processor, metrics.NewRecorder(), "")

	rec, _ := postChat(t, svc, `{"sessionId": "web-1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello", processor.input)
}

func TestChatRejectsMalformedBody(t *testing.T) {
	processor := &fakeProcessor{}
	svc := NewWebChatService(processor, metrics.NewRecorder(), "")

	rec, _ := postChat(t, svc, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, processor.calls)
}
