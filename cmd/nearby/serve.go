package main

import (
	"context"
	"errors"
	"log"
	"music-nearby/internal/api"
	"music-nearby/internal/platform/obs"
	"music-nearby/internal/services"
	"music-nearby/internal/session"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func serveCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Poll location and serve the nearby API until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.port, "port", "", "HTTP listen port (PORT)")
	return cmd
}

func serve(cmd *cobra.Command, f *flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs.InitMetrics()

	client, engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	history, conn, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	pub, closePub, err := openPublisher(cfg)
	if err != nil {
		return err
	}
	defer closePub()

	engine.OnTransition(recordTransitions(history, pub))

	router := api.NewRouter(api.Deps{
		Verdicts: engine,
		Songs:    services.NewSongBrowser(client),
		History:  history,
		Profile:  session.NewProfile(),
	})

	// WriteTimeout stays zero so the verdict stream can stay open.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if err := engine.Start(ctx, cfg.Cadence, nil); err != nil {
		return err
	}
	defer engine.Stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening addr=:%s", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	engine.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
