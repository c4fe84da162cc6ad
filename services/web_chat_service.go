package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kanchan-g12/sam-assistant/callflow"
	"github.com/kanchan-g12/sam-assistant/metrics"
	"github.com/kanchan-g12/sam-assistant/session"
)

// WebChatService adapts the turn processor to a browser chat widget. Replies
// are HTML fragments; when an appointment is suggested the scheduling link is
// appended so the widget renders a clickable anchor.
type WebChatService struct {
	processor    callflow.TurnProcessor
	recorder     *metrics.Recorder
	calendlyLink string
}

func NewWebChatService(processor callflow.TurnProcessor, recorder *metrics.Recorder, calendlyLink string) *WebChatService {
	return &WebChatService{
		processor:    processor,
		recorder:     recorder,
		calendlyLink: calendlyLink,
	}
}

// Chat handles POST /chat. A missing sessionId starts a new conversation; the
// generated id is echoed back so the widget can reuse it.
func (s *WebChatService) Chat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	message := req.Message
	if message == "" {
		message = "Hello"
	}

	result := s.processor.ProcessTurn(r.Context(), session.ChannelWeb, sessionID, message)

	response := result.ReplyText
	if result.AppointmentSuggested && s.calendlyLink != "" {
		response += fmt.Sprintf(
			`<br><br>You can <a href="%s" target="_blank">schedule a meeting here</a>.`,
			s.calendlyLink)
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:             response,
		SuggestedAppointment: result.AppointmentSuggested,
		SessionID:            sessionID,
	})

	s.recorder.Observe("chat_request", time.Since(start))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type chatResponse struct {
	Response             string `json:"response"`
	SuggestedAppointment bool   `json:"suggested_appointment"`
	SessionID            string `json:"sessionId"`
}
