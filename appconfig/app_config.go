package appconfig

import (
	"github.com/SaiNageswarS/go-api-boot/config"
)

type AppConfig struct {
	config.BootConfig `ini:",extends"`

	HTTPPort string `env:"HTTP-PORT" ini:"http_port"`
	// PublicURL is the externally reachable base URL Twilio uses for
	// webhook callbacks (no trailing slash).
	PublicURL string `env:"PUBLIC-URL" ini:"public_url"`

	AzureOpenAIEndpoint   string `env:"AZURE-OPENAI-ENDPOINT" ini:"azure_openai_endpoint"`
	AzureOpenAIAPIVersion string `env:"AZURE-OPENAI-API-VERSION" ini:"azure_openai_api_version"`
	AzureOpenAIDeployment string `env:"AZURE-OPENAI-DEPLOYMENT" ini:"azure_openai_deployment"`
	// OllamaModel selects a local Ollama model when no Azure endpoint is
	// configured. Useful for keyless development.
	OllamaModel string `env:"OLLAMA-MODEL" ini:"ollama_model"`

	TwilioPhoneNumber string `env:"TWILIO-PHONE-NUMBER" ini:"twilio_phone_number"`

	AssistantName string `ini:"assistant_name"`
	OwnerName     string `ini:"owner_name"`
	CalendlyLink  string `ini:"calendly_link"`
	WebsiteLink   string `ini:"website_link"`
}
