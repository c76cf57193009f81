package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/timetrack-auth/auth"
	"github.com/jrsteele09/timetrack-auth/internal/config"
	"github.com/jrsteele09/timetrack-auth/internal/observability"
	"github.com/jrsteele09/timetrack-auth/server"
	"github.com/jrsteele09/timetrack-auth/token"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("error running server")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	if err := observability.SetupLogging(c.GetLogLevel(), c.IsDev()); err != nil {
		return err
	}
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := openCredentialStore(ctx, c)
	cancel()
	if err != nil {
		return err
	}
	defer store.Close()

	signer, err := token.NewHMACSigner(c.GetSigningSecret())
	if err != nil {
		return err
	}
	tokens := token.New(signer, token.WithTTL(c.GetTokenTTL()), token.WithIssuer(c.GetIssuer()))

	authService, err := auth.NewService(store.repo, tokens)
	if err != nil {
		return err
	}

	handler, err := server.New(c, authService, store.checks...)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()

	if err := waitForStopSignal(serveErr, store.reload); err != nil {
		return err
	}
	return shutdown(httpServer)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

// waitForStopSignal blocks until SIGINT or SIGTERM. SIGHUP reloads the
// credential file and keeps serving.
func waitForStopSignal(serveErr <-chan error, reload func()) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(stop)

	for {
		select {
		case err := <-serveErr:
			return err
		case sig := <-stop:
			if sig == syscall.SIGHUP {
				reload()
				continue
			}
			log.Info().Str("signal", sig.String()).Msg("shutting down")
			return nil
		}
	}
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
