package callflow

import "fmt"

// State is one phase of a voice call's lifecycle.
type State string

const (
	// StateGreeting: the initial outbound prompt, played once per call.
	StateGreeting State = "greeting"
	// StateListening: awaiting a transcript or digit input.
	StateListening State = "listening"
	// StateProcessing: the turn processor is producing a reply.
	StateProcessing State = "processing"
	// StateResponding: speaking the reply before listening again.
	StateResponding State = "responding"
	// StateFallback: one retry prompt after a silent gather timeout.
	StateFallback State = "fallback"
	// StateEnding: terminal; no further transitions.
	StateEnding State = "ending"
)

// Machine validates call state transitions.
type Machine struct {
	transitions map[State][]State
}

func NewMachine() *Machine {
	return &Machine{
		transitions: map[State][]State{
			StateGreeting:   {StateListening, StateEnding},
			StateListening:  {StateProcessing, StateFallback, StateEnding},
			StateProcessing: {StateResponding, StateEnding},
			StateResponding: {StateListening, StateEnding},
			StateFallback:   {StateProcessing, StateEnding},
			StateEnding:     {}, // Terminal state
		},
	}
}

// Transition returns the new state if moving from current to next is valid.
func (m *Machine) Transition(current, next State) (State, error) {
	if !m.CanTransition(current, next) {
		return current, fmt.Errorf("invalid transition from %s to %s", current, next)
	}
	return next, nil
}

// CanTransition checks if a transition from one state to another is valid.
func (m *Machine) CanTransition(from, to State) bool {
	for _, state := range m.transitions[from] {
		if state == to {
			return true
		}
	}
	return false
}

// IsTerminal checks if a state has no outgoing transitions.
func (m *Machine) IsTerminal(state State) bool {
	validStates, exists := m.transitions[state]
	return exists && len(validStates) == 0
}
