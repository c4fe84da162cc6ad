package twilio

import (
	"encoding/xml"
	"fmt"
)

// Voice is the Polly neural voice used for all spoken responses.
const Voice = "Polly.Matthew-Neural"

// Response is the root TwiML document. Verbs execute in order.
type Response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

// Say speaks text to the caller.
type Say struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

// Gather collects speech or keypad input, running its nested verbs while
// listening. Control posts to Action when input arrives; if the caller stays
// silent past the timeouts, control falls through to the verbs after Gather.
type Gather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr,omitempty"`
	Action        string   `xml:"action,attr,omitempty"`
	Method        string   `xml:"method,attr,omitempty"`
	Timeout       int      `xml:"timeout,attr,omitempty"`
	SpeechTimeout string   `xml:"speechTimeout,attr,omitempty"`
	BargeIn       bool     `xml:"bargeIn,attr,omitempty"`
	Verbs         []any
}

// Pause waits silently for the given number of seconds.
type Pause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr"`
}

// Redirect transfers control to another webhook URL.
type Redirect struct {
	XMLName xml.Name `xml:"Redirect"`
	URL     string   `xml:",chardata"`
}

// Hangup ends the call.
type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// SpokenPrompt builds a Gather that speaks text and listens for a reply via
// speech or keypad, posting the result to action.
func SpokenPrompt(text, action string, timeout int) Gather {
	return Gather{
		Input:         "speech dtmf",
		Action:        action,
		Method:        "POST",
		Timeout:       timeout,
		SpeechTimeout: "auto",
		BargeIn:       true,
		Verbs: []any{
			Say{Voice: Voice, Text: text},
		},
	}
}

// Render serializes the response as a TwiML document.
func (r *Response) Render() (string, error) {
	body, err := xml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("error rendering TwiML: %w", err)
	}
	return xml.Header + string(body), nil
}
