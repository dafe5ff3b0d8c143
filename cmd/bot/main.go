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

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	router "github.com/dkeye/mediabot/internal/adapters/http"
	"github.com/dkeye/mediabot/internal/adapters/rtc"
	"github.com/dkeye/mediabot/internal/adapters/sink"
	sig "github.com/dkeye/mediabot/internal/adapters/signal"
	"github.com/dkeye/mediabot/internal/app/media"
	"github.com/dkeye/mediabot/internal/config"
	"github.com/dkeye/mediabot/internal/observability/metrics"
	transport "github.com/dkeye/mediabot/internal/transport/http"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := run(ctx); err != nil {
		log.Error().Err(err).Msg("bot stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("Bot exited gracefully")
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Mode == "release" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mediaMetrics, err := metrics.NewMediaMetrics(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	out, err := sink.New(cfg.Recording, log.Logger)
	if err != nil {
		return err
	}

	session, err := rtc.NewSession(rtc.SessionConfig{
		VideoSockets: cfg.Media.VideoSockets,
		ScreenShare:  cfg.Media.ScreenShare,
		FrameRate:    cfg.Media.DefaultFrameRate,
		ICEServers:   cfg.WebRTC.ICEServers,
	}, uuid.NewString(), log.Logger)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	handler, err := media.NewHandler(session, out, log.Logger,
		media.WithMaxFrameBytes(cfg.Media.MaxFrameBytes),
		media.WithMetrics(mediaMetrics),
	)
	if err != nil {
		session.Close()
		return err
	}

	sessionDone := make(chan struct{})
	session.OnClosed(func() { close(sessionDone) })
	signalCtl := sig.NewSignalWSController(session, cfg.ReadLimit, cfg.PingPeriod)
	if err := session.Start(ctx); err != nil {
		return err
	}

	r := router.SetupRouter(ctx, cfg, router.Deps{
		Signal:   signalCtl,
		Control:  &transport.ControlHandlers{Media: handler, Outstanding: session.Outstanding},
		Gatherer: reg,
	})
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("Media bot started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-sessionDone:
			log.Info().Msg("Session closed")
		}

		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}

		handler.Dispose()
		session.Close()

		if cfg.Recording.FlushOnExit {
			if _, err := handler.Flush(shutdownCtx); err != nil {
				return err
			}
		}
		return nil
	})
	return g.Wait()
}
