package engine

import (
	"context"
	"errors"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"

	"github.com/kanchan-g12/sam-assistant/llm"
	"github.com/kanchan-g12/sam-assistant/metrics"
	"github.com/kanchan-g12/sam-assistant/session"
)

const (
	DefaultCompletionTimeout = 30 * time.Second
	DefaultMaxTokens         = 200
	DefaultTemperature       = 0.7
)

// Apology replies returned when the completion collaborator fails. Failures
// are never sticky: the conversation continues on the next turn.
const (
	apologyTransient = "I apologize, but I'm having trouble processing your request. Could you please try again?"
	apologyConfig    = "I apologize, but I'm experiencing technical difficulties. Could you please try again later?"
	apologyBusy      = "I'm sorry, I'm handling a lot of conversations right now. Could you give me a moment and try again?"
)

// Result is the channel-agnostic outcome of one processed turn.
type Result struct {
	ReplyText            string
	AppointmentSuggested bool
}

// ProcessorConfig wires the turn processor's collaborators.
type ProcessorConfig struct {
	Completion llm.CompletionClient
	Store      *session.Store
	Recorder   *metrics.Recorder

	SystemPrompt string
	Timeout      time.Duration
	MaxTokens    int
	Temperature  float64
}

// Processor turns one channel input into one assistant utterance: it builds
// the generation request from the session's bounded history, invokes the
// completion collaborator under a deadline, strips the appointment marker,
// and records the completed turn.
type Processor struct {
	config ProcessorConfig
}

func NewProcessor(config ProcessorConfig) *Processor {
	if config.Timeout <= 0 {
		config.Timeout = DefaultCompletionTimeout
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	if config.Temperature <= 0 {
		config.Temperature = DefaultTemperature
	}
	return &Processor{config: config}
}

// ProcessTurn processes one input for a conversation, creating the session on
// first contact. inputText may be empty; channel adapters supply their own
// fallback placeholder before calling. Completion failures yield an apology
// reply, leave the session untouched, and never surface as errors.
func (p *Processor) ProcessTurn(ctx context.Context, ch session.Channel, id, inputText string) Result {
	start := time.Now()

	history := p.config.Store.Turns(ch, id)
	messages := make([]llm.Message, 0, len(history)*2+1)
	for _, turn := range history {
		messages = append(messages,
			llm.Message{Role: "user", Content: turn.UserText},
			llm.Message{Role: "assistant", Content: turn.AssistantText})
	}
	messages = append(messages, llm.Message{Role: "user", Content: inputText})

	callCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	callStart := time.Now()
	raw, err := p.config.Completion.Complete(callCtx, messages,
		llm.WithSystemPrompt(p.config.SystemPrompt),
		llm.WithMaxTokens(p.config.MaxTokens),
		llm.WithTemperature(p.config.Temperature))
	p.config.Recorder.Observe("completion", time.Since(callStart))

	if err != nil {
		failure, apology := classifyFailure(err)
		logger.Error("completion call failed",
			zap.String("conversation", id),
			zap.String("channel", string(ch)),
			zap.String("failure", failure),
			zap.Error(err))
		return Result{ReplyText: apology}
	}

	reply, suggested := ExtractAppointmentSignal(raw)

	p.config.Store.Append(ch, id, session.Turn{
		UserText:      inputText,
		AssistantText: reply,
		CreatedAt:     time.Now(),
	})
	p.config.Recorder.Observe("turn_total", time.Since(start))

	return Result{ReplyText: reply, AppointmentSuggested: suggested}
}

// classifyFailure maps a completion error onto a log label and the apology
// variant shown to the user.
func classifyFailure(err error) (string, string) {
	switch {
	case errors.Is(err, llm.ErrAuthentication):
		return "auth", apologyConfig
	case errors.Is(err, llm.ErrRateLimited):
		return "rate_limited", apologyBusy
	case errors.Is(err, llm.ErrTimeout):
		return "timeout", apologyTransient
	case errors.Is(err, llm.ErrMalformed):
		return "malformed", apologyTransient
	default:
		return "unknown", apologyTransient
	}
}
