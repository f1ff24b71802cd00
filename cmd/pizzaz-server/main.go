// Command pizzaz-server serves the pizza widget catalog over the MCP
// stateless HTTP transport.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joeshaw/envdecode"

	"github.com/ryan-timothy-albert/openai-apps-sdk-examples/mcp"
	"github.com/ryan-timothy-albert/openai-apps-sdk-examples/mcpservice"
	"github.com/ryan-timothy-albert/openai-apps-sdk-examples/statelesshttp"
	"github.com/ryan-timothy-albert/openai-apps-sdk-examples/widget"
)

const serverVersion = "0.1.0"

type config struct {
	Port     int    `env:"PORT,default=3000"`
	LogLevel string `env:"LOG_LEVEL,default=info"`
}

func main() {
	var cfg config
	if err := envdecode.Decode(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "config: invalid LOG_LEVEL %q\n", cfg.LogLevel)
		os.Exit(1)
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	svc := mcpservice.New(
		widget.Pizzaz(),
		mcpservice.WithServerInfo(mcp.ImplementationInfo{
			Name:    "pizzaz",
			Version: serverVersion,
			Title:   "Pizzaz",
		}),
		mcpservice.WithLogger(log),
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: statelesshttp.New(svc, statelesshttp.WithLogger(log)),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("http.shutdown.fail", slog.String("err", err.Error()))
		}
	}()

	log.Info("http.listen", slog.Int("port", cfg.Port), slog.String("endpoint", statelesshttp.DefaultEndpoint))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http.serve.fail", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
