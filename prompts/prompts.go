package prompts

import (
	"bytes"
	"embed"
	"text/template"
)

//go:embed templates/*
var templatesFS embed.FS

// PromptData carries the identity details rendered into the assistant's
// system instruction.
type PromptData struct {
	AssistantName string
	OwnerName     string
	CalendlyLink  string
	WebsiteLink   string
}

// RenderAssistantPrompt renders the persona and behavioral guidelines for the
// appointment-setting assistant using embedded Go templates.
func RenderAssistantPrompt(data PromptData) (string, error) {
	templateContent, err := templatesFS.ReadFile("templates/assistant_system.md")
	if err != nil {
		return "", err
	}

	tmpl, err := template.New("assistant_system").Parse(string(templateContent))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
