package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownGrace = 10 * time.Second

// Server hosts the channel adapters on one HTTP listener.
type Server struct {
	httpServer *http.Server
}

func NewServer(addr string, webChat *WebChatService, voice *VoiceCallService) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", webChat.Chat)
	mux.HandleFunc("POST /call", voice.StartCall)
	mux.HandleFunc("POST /twiml", voice.Twiml)
	mux.HandleFunc("POST /conversation", voice.Conversation)

	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		logger.Info("shutting down HTTP server")
		return s.httpServer.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
