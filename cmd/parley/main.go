package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/parleyvoice/parley/internal/config"
	"github.com/parleyvoice/parley/internal/events"
	"github.com/parleyvoice/parley/internal/logging"
	"github.com/parleyvoice/parley/internal/transport"
	"github.com/parleyvoice/parley/pkg/eot"
	"github.com/parleyvoice/parley/pkg/plugin/openai"
	"github.com/parleyvoice/parley/pkg/responder"
	"github.com/parleyvoice/parley/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Parley - real-time conversational turn-taking service",
	Long: `parley hosts the turn-taking controller of a real-time voice
assistant: it accepts VAD-delimited audio segments over a websocket,
decides per segment whether the user's turn is complete, and dispatches
finalized turns to reply generation and speech synthesis.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersionInfo())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the turn-taking websocket server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Probe the end-of-turn oracle's liveness endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		client := eot.NewClient(cfg.EOTAPIEndpoint, cfg.EOTThreshold, eot.WithTimeout(2*time.Second))

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		if err := client.Health(ctx); err != nil {
			return fmt.Errorf("oracle unhealthy: %w", err)
		}
		fmt.Println("oracle healthy")
		return nil
	},
}

func serve() error {
	log := logging.Named("main")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	if cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for serve")
	}

	// Turn-completion oracle.
	oracleOpts := []eot.Option{eot.WithTimeout(cfg.EOTTimeout)}
	if !cfg.EOTEnabled {
		log.Infow("EOT detection disabled, every segment dispatches immediately")
		oracleOpts = append(oracleOpts, eot.Disabled())
	}
	oracle := eot.NewClient(cfg.EOTAPIEndpoint, cfg.EOTThreshold, oracleOpts...)

	// Speech and language providers.
	transcriber, err := openai.NewWhisperTranscriber(openai.WhisperConfig{APIKey: cfg.OpenAIAPIKey})
	if err != nil {
		return fmt.Errorf("transcriber: %w", err)
	}
	gpt, err := openai.NewGPT(openai.GPTConfig{APIKey: cfg.OpenAIAPIKey, Model: cfg.LLMModel})
	if err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	speech, err := openai.NewSpeech(openai.SpeechConfig{APIKey: cfg.OpenAIAPIKey, Voice: cfg.TTSVoice})
	if err != nil {
		return fmt.Errorf("tts: %w", err)
	}

	pipeline, err := responder.NewPipeline(responder.PipelineConfig{
		LLM:          gpt,
		TTS:          speech,
		Voice:        cfg.TTSVoice,
		SystemPrompt: cfg.SystemPrompt,
	})
	if err != nil {
		return fmt.Errorf("responder: %w", err)
	}

	publisher := events.New(events.Config{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTurnTopic})
	defer publisher.Close()

	server, err := transport.NewServer(transport.Config{
		Oracle:       oracle,
		Transcriber:  transcriber,
		Responder:    events.WrapResponder(pipeline, publisher),
		ForceAfter:   cfg.EOTForceAfter,
		PollInterval: cfg.PollInterval,
	})
	if err != nil {
		return fmt.Errorf("transport: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/v1/stream", server)

	obsMux := http.NewServeMux()
	obsMux.Handle("/metrics", promhttp.Handler())
	obsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ok"}`)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	obsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: obsMux}

	go func() {
		log.Infow("websocket server listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		log.Infow("metrics server listening", "addr", cfg.MetricsAddr)
		if err := obsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Infow("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = obsSrv.Shutdown(shutdownCtx)
	return nil
}

func main() {
	rootCmd.AddCommand(versionCmd, serveCmd, healthcheckCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
