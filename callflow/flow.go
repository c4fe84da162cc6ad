package callflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"go.uber.org/zap"

	"github.com/kanchan-g12/sam-assistant/engine"
	"github.com/kanchan-g12/sam-assistant/session"
)

// TurnProcessor is the slice of the engine the call flow needs.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, ch session.Channel, id, inputText string) engine.Result
}

// SMSSender delivers a text message best-effort; failures are logged and
// never fail the call.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// CallDirectory resolves the phone number a call was placed to.
type CallDirectory interface {
	CalledNumber(ctx context.Context, callSID string) (string, error)
}

// ActionKind tells the voice adapter what to render next.
type ActionKind int

const (
	// ActionSpeak: speak the reply, then listen again.
	ActionSpeak ActionKind = iota
	// ActionRetry: one re-prompt after a silent gather timeout.
	ActionRetry
	// ActionHangup: say goodbye and terminate the call.
	ActionHangup
)

type Action struct {
	Kind                 ActionKind
	Speech               string
	AppointmentSuggested bool
}

// exitKeywords end the call when found anywhere in a transcript,
// case-insensitively.
var exitKeywords = []string{"goodbye", "bye", "hang up", "end call"}

const exitDigit = "9"

// ShouldEnd reports whether the caller asked to end the call, via digit or
// exit keyword. Termination bypasses the turn processor entirely.
func ShouldEnd(transcript, digits string) bool {
	if digits == exitDigit {
		return true
	}
	lowered := strings.ToLower(transcript)
	for _, keyword := range exitKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// InputText normalizes the channel input before it reaches the turn
// processor: digit presses get a spoken label, a fully silent turn becomes a
// default greeting prompt.
func InputText(transcript, digits string) string {
	if transcript != "" {
		return transcript
	}
	if digits != "" {
		return fmt.Sprintf("Button %s pressed", digits)
	}
	return "Hello"
}

// FlowConfig wires the call flow's collaborators. SMS, Directory and Store
// are optional; without them appointment texts and archival are skipped.
type FlowConfig struct {
	Processor TurnProcessor
	SMS       SMSSender
	Directory CallDirectory
	Store     *session.Store

	// BookingSMSBody is the message texted to the caller when an
	// appointment is suggested.
	BookingSMSBody string
}

// Flow drives the per-call state machine atop the turn processor.
type Flow struct {
	config  FlowConfig
	machine *Machine

	mu     sync.Mutex
	states map[string]State
}

func NewFlow(config FlowConfig) *Flow {
	return &Flow{
		config:  config,
		machine: NewMachine(),
		states:  make(map[string]State),
	}
}

// Begin registers a call in the greeting state. Safe to call more than once.
func (f *Flow) Begin(callSID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.states[callSID]; !exists {
		f.states[callSID] = StateGreeting
	}
}

// CurrentState returns the call's state; unknown calls are treated as fresh
// listening sessions rather than failing.
func (f *Flow) CurrentState(callSID string) State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if state, exists := f.states[callSID]; exists {
		return state
	}
	return StateListening
}

// OnInput advances the call through one listen/process/respond cycle and
// returns the action the adapter should render.
func (f *Flow) OnInput(ctx context.Context, callSID, transcript, digits string) Action {
	state := f.CurrentState(callSID)
	if state == StateGreeting {
		state = f.advance(callSID, state, StateListening)
	}
	if state == StateEnding {
		return Action{Kind: ActionHangup}
	}

	if ShouldEnd(transcript, digits) {
		f.End(callSID, "caller ended the call")
		return Action{Kind: ActionHangup}
	}

	if transcript == "" && digits == "" {
		if state == StateFallback {
			f.End(callSID, "caller went silent")
			return Action{Kind: ActionHangup}
		}
		f.advance(callSID, state, StateFallback)
		return Action{Kind: ActionRetry}
	}

	state = f.advance(callSID, state, StateProcessing)

	result := f.config.Processor.ProcessTurn(ctx, session.ChannelVoice, callSID, InputText(transcript, digits))
	reply := result.ReplyText

	if result.AppointmentSuggested && f.dispatchBookingSMS(ctx, callSID) {
		reply += " I've sent you an SMS with the booking link."
	}

	state = f.advance(callSID, state, StateResponding)
	f.advance(callSID, state, StateListening)

	return Action{
		Kind:                 ActionSpeak,
		Speech:               SpeechText(reply),
		AppointmentSuggested: result.AppointmentSuggested,
	}
}

// End moves a call to the terminal state and archives its session with a
// short summary for the retention window.
func (f *Flow) End(callSID, summary string) {
	f.mu.Lock()
	delete(f.states, callSID)
	f.mu.Unlock()

	if f.config.Store != nil {
		f.config.Store.Archive(session.ChannelVoice, callSID, summary, time.Now())
	}
}

// advance applies a validated transition and records the new state. Invalid
// transitions are defensive territory: log and keep the current state.
func (f *Flow) advance(callSID string, from, to State) State {
	next, err := f.machine.Transition(from, to)
	if err != nil {
		logger.Error("call state transition rejected",
			zap.String("call_sid", callSID),
			zap.Error(err))
		return from
	}

	f.mu.Lock()
	f.states[callSID] = next
	f.mu.Unlock()
	return next
}

// dispatchBookingSMS resolves the caller's number and sends the booking link
// in the background. Reports whether the dispatch was accepted; delivery
// failures are logged, never surfaced to the call.
func (f *Flow) dispatchBookingSMS(ctx context.Context, callSID string) bool {
	if f.config.SMS == nil || f.config.Directory == nil {
		return false
	}

	to, err := f.config.Directory.CalledNumber(ctx, callSID)
	if err != nil {
		logger.Error("failed to resolve call destination for SMS",
			zap.String("call_sid", callSID),
			zap.Error(err))
		return false
	}

	sendCtx := context.WithoutCancel(ctx)
	result := async.Go(func() (bool, error) {
		return true, f.config.SMS.SendSMS(sendCtx, to, f.config.BookingSMSBody)
	})
	go func() {
		if _, err := async.Await(result); err != nil {
			logger.Error("booking SMS delivery failed",
				zap.String("to", to),
				zap.Error(err))
			return
		}
		logger.Info("booking SMS sent", zap.String("to", to))
	}()

	return true
}
