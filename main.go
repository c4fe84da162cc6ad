package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/SaiNageswarS/go-api-boot/config"
	"github.com/SaiNageswarS/go-api-boot/dotenv"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kanchan-g12/sam-assistant/appconfig"
	"github.com/kanchan-g12/sam-assistant/callflow"
	"github.com/kanchan-g12/sam-assistant/engine"
	"github.com/kanchan-g12/sam-assistant/llm"
	"github.com/kanchan-g12/sam-assistant/metrics"
	"github.com/kanchan-g12/sam-assistant/prompts"
	"github.com/kanchan-g12/sam-assistant/services"
	"github.com/kanchan-g12/sam-assistant/session"
	"github.com/kanchan-g12/sam-assistant/twilio"
)

func main() {
	dotenv.LoadEnv()

	cfg := &appconfig.AppConfig{}
	if err := config.LoadConfig("config.ini", cfg); err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	systemPrompt, err := prompts.RenderAssistantPrompt(prompts.PromptData{
		AssistantName: cfg.AssistantName,
		OwnerName:     cfg.OwnerName,
		CalendlyLink:  cfg.CalendlyLink,
		WebsiteLink:   cfg.WebsiteLink,
	})
	if err != nil {
		logger.Fatal("Failed to render system prompt", zap.Error(err))
	}

	completion := buildCompletionClient(cfg)

	twilioClient, err := twilio.NewClient(cfg.TwilioPhoneNumber)
	if err != nil {
		logger.Fatal("Failed to create Twilio client", zap.Error(err))
	}

	store := session.NewStore()
	recorder := metrics.NewRecorder()

	processor := engine.NewProcessor(engine.ProcessorConfig{
		Completion:   completion,
		Store:        store,
		Recorder:     recorder,
		SystemPrompt: systemPrompt,
	})

	flow := callflow.NewFlow(callflow.FlowConfig{
		Processor:      processor,
		SMS:            twilioClient,
		Directory:      twilioClient,
		Store:          store,
		BookingSMSBody: "Hi! You can book a convenient time here: " + cfg.CalendlyLink,
	})

	webChat := services.NewWebChatService(processor, recorder, cfg.CalendlyLink)
	voice := services.NewVoiceCallService(services.VoiceCallConfig{
		Placer:    twilioClient,
		Flow:      flow,
		Recorder:  recorder,
		PublicURL: cfg.PublicURL,
	})

	addr := ":" + cfg.HTTPPort
	httpServer := services.NewServer(addr, webChat, voice)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return httpServer.Run(ctx) })
	eg.Go(func() error {
		session.NewSweeper(store).Run(ctx)
		return nil
	})
	eg.Go(func() error {
		metrics.NewReporter(recorder).Run(ctx)
		return nil
	})

	logger.Info("assistant started",
		zap.String("addr", addr),
		zap.String("model", completion.GetModel()))

	if err := eg.Wait(); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}

// buildCompletionClient prefers Azure OpenAI when an endpoint is configured
// and falls back to a local Ollama model for keyless development.
func buildCompletionClient(cfg *appconfig.AppConfig) llm.CompletionClient {
	if cfg.AzureOpenAIEndpoint != "" {
		client, err := llm.NewAzureOpenAIClient(
			cfg.AzureOpenAIEndpoint,
			cfg.AzureOpenAIDeployment,
			cfg.AzureOpenAIAPIVersion)
		if err != nil {
			logger.Fatal("Failed to create Azure OpenAI client", zap.Error(err))
		}
		return client
	}

	client, err := llm.NewOllamaClient(cfg.OllamaModel)
	if err != nil {
		logger.Fatal("Failed to create Ollama client", zap.Error(err))
	}
	return client
}
