// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farmlink/internal/platform/di"
)

func main() {
	ctx := context.Background()

	infra, err := di.NewInfra(ctx)
	if err != nil {
		log.Fatalf("[boot] infra init failed: %v", err)
	}

	container := di.NewContainer(ctx, infra)

	port := infra.Config.Port
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           container.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		sig := <-c
		log.Printf("[boot] received signal: %v; shutting down...", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[boot] server shutdown error: %v", err)
		}

		log.Printf("[boot] closing infra resources...")
		if err := infra.Close(); err != nil {
			log.Printf("[boot] infra close error: %v", err)
		}

		close(idleConnsClosed)
	}()

	log.Printf("[boot] listening on :%s", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("[boot] server error: %v", err)
	}

	<-idleConnsClosed
	log.Printf("[boot] bye")
}
