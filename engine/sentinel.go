package engine

import "strings"

// appointmentMarker is the in-band token the completion model embeds when a
// booking should be offered. It is a text convention with the prompt; nothing
// outside this file may depend on the literal.
const appointmentMarker = "[Appointment Suggested]"

// ExtractAppointmentSignal strips the appointment marker from a raw
// completion and reports whether it was present. The marker never reaches
// user-facing text.
func ExtractAppointmentSignal(raw string) (string, bool) {
	if !strings.Contains(raw, appointmentMarker) {
		return strings.TrimSpace(raw), false
	}
	return strings.TrimSpace(strings.ReplaceAll(raw, appointmentMarker, "")), true
}
