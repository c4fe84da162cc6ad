package services

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"

	"github.com/kanchan-g12/sam-assistant/callflow"
	"github.com/kanchan-g12/sam-assistant/metrics"
	"github.com/kanchan-g12/sam-assistant/twilio"
)

const (
	defaultGreeting = "Hello, this is Sam, I hope you're doing well. " +
		"I am calling to check if you are looking for an automated AI agent for your business."
	defaultGoodbye = "Thank you for your time. If you'd like to schedule an appointment later, " +
		"you can visit our website. Have a great day!"
	defaultVoicemail = "Hello, this is Sam calling on behalf of Kanchan Ghosh. " +
		"Sorry we missed you. Please call back when you have a moment. Have a great day!"
	retryPrompt = "I didn't quite catch that. Could you say that again?"

	greetingGatherTimeout     = 3
	conversationGatherTimeout = 5
)

// CallPlacer starts an outbound call and returns its SID.
type CallPlacer interface {
	PlaceCall(ctx context.Context, to, twimlURL string) (string, error)
}

// VoiceCallConfig wires the voice adapter. Greeting, Goodbye and Voicemail
// fall back to stock lines when empty.
type VoiceCallConfig struct {
	Placer   CallPlacer
	Flow     *callflow.Flow
	Recorder *metrics.Recorder

	// PublicURL is the externally reachable base for webhook callbacks,
	// without a trailing slash.
	PublicURL string

	Greeting  string
	Goodbye   string
	Voicemail string
}

// VoiceCallService adapts the call flow to Twilio voice webhooks: it places
// outbound calls and renders TwiML for each conversational step.
type VoiceCallService struct {
	config VoiceCallConfig
}

func NewVoiceCallService(config VoiceCallConfig) *VoiceCallService {
	if config.Greeting == "" {
		config.Greeting = defaultGreeting
	}
	if config.Goodbye == "" {
		config.Goodbye = defaultGoodbye
	}
	if config.Voicemail == "" {
		config.Voicemail = defaultVoicemail
	}
	return &VoiceCallService{config: config}
}

// StartCall handles POST /call: places an outbound call that will fetch its
// instructions from the /twiml webhook.
func (s *VoiceCallService) StartCall(w http.ResponseWriter, r *http.Request) {
	var req startCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PhoneNumber == "" {
		writeJSONError(w, http.StatusBadRequest, "No phone number provided")
		return
	}

	callSID, err := s.config.Placer.PlaceCall(r.Context(), req.PhoneNumber, s.config.PublicURL+"/twiml")
	if err != nil {
		logger.Error("failed to place outbound call",
			zap.String("to", req.PhoneNumber),
			zap.Error(err))
		writeJSONError(w, http.StatusBadGateway, "Failed to place call")
		return
	}

	s.config.Flow.Begin(callSID)
	logger.Info("outbound call placed",
		zap.String("call_sid", callSID),
		zap.String("to", req.PhoneNumber))

	writeJSON(w, http.StatusOK, startCallResponse{Success: true, CallSID: callSID})
}

// Twiml handles POST /twiml, the call's entry webhook. Machine-detection
// results arrive in the AnsweredBy form field; a voicemail pickup gets a short
// recorded-style message instead of the interactive greeting.
func (s *VoiceCallService) Twiml(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	if r.PostForm.Get("AnsweredBy") == "machine_start" {
		s.writeTwiML(w, &twilio.Response{Verbs: []any{
			twilio.Say{Voice: twilio.Voice, Text: s.config.Voicemail},
			twilio.Hangup{},
		}})
		return
	}

	s.writeTwiML(w, &twilio.Response{Verbs: []any{
		twilio.Pause{Length: 1},
		twilio.SpokenPrompt(s.config.Greeting, s.config.PublicURL+"/conversation", greetingGatherTimeout),
		twilio.Redirect{URL: s.config.PublicURL + "/conversation"},
	}})
}

// Conversation handles POST /conversation: one listen/respond cycle. Silent
// gathers fall through the Redirect after the Gather and arrive here with no
// input, which the flow answers with a retry or a hangup.
func (s *VoiceCallService) Conversation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	callSID := r.PostForm.Get("CallSid")
	transcript := r.PostForm.Get("SpeechResult")
	digits := r.PostForm.Get("Digits")

	action := s.config.Flow.OnInput(r.Context(), callSID, transcript, digits)

	conversationURL := s.config.PublicURL + "/conversation"
	var response *twilio.Response
	switch action.Kind {
	case callflow.ActionSpeak:
		response = &twilio.Response{Verbs: []any{
			twilio.SpokenPrompt(action.Speech, conversationURL, conversationGatherTimeout),
			twilio.Redirect{URL: conversationURL},
		}}
	case callflow.ActionRetry:
		response = &twilio.Response{Verbs: []any{
			twilio.SpokenPrompt(retryPrompt, conversationURL, conversationGatherTimeout),
			twilio.Redirect{URL: conversationURL},
		}}
	default:
		response = &twilio.Response{Verbs: []any{
			twilio.Say{Voice: twilio.Voice, Text: s.config.Goodbye},
			twilio.Hangup{},
		}}
	}

	s.writeTwiML(w, response)
	s.config.Recorder.Observe("conversation_request", time.Since(start))
}

func (s *VoiceCallService) writeTwiML(w http.ResponseWriter, response *twilio.Response) {
	body, err := response.Render()
	if err != nil {
		logger.Error("failed to render TwiML", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml")
	if _, err := w.Write([]byte(body)); err != nil {
		logger.Error("failed to write TwiML response", zap.Error(err))
	}
}

type startCallRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type startCallResponse struct {
	Success bool   `json:"success"`
	CallSID string `json:"call_sid"`
}
