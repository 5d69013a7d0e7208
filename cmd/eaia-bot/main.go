package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/Seyyyeddd/executive-ai-assistant/internal/config"
	"github.com/Seyyyeddd/executive-ai-assistant/internal/conversation"
	"github.com/Seyyyeddd/executive-ai-assistant/internal/debug"
	"github.com/Seyyyeddd/executive-ai-assistant/internal/eventbus"
	"github.com/Seyyyeddd/executive-ai-assistant/internal/interrupt"
	"github.com/Seyyyeddd/executive-ai-assistant/internal/langgraph"
	"github.com/Seyyyeddd/executive-ai-assistant/internal/poller"
	"github.com/Seyyyeddd/executive-ai-assistant/internal/resume"
	"github.com/Seyyyeddd/executive-ai-assistant/internal/state"
	"github.com/Seyyyeddd/executive-ai-assistant/internal/state/repositoryimpl"
	"github.com/Seyyyeddd/executive-ai-assistant/internal/telegram"
	"github.com/Seyyyeddd/executive-ai-assistant/pkg/clog"
	"github.com/Seyyyeddd/executive-ai-assistant/pkg/storage"
)

var (
	app = kingpin.New("eaia-bot", "Telegram operator console for the Executive AI Assistant")

	runCmd = app.Command("run", "Run the bot and the interrupt poller").Default()

	healthCmd = app.Command("health", "Check connectivity to the workflow API and exit")
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}
	setupLogger(env)

	switch command {
	case healthCmd.FullCommand():
		if err := runHealth(env); err != nil {
			slog.Error("health check failed", "error", err)
			os.Exit(1)
		}
		fmt.Println("ok")
	case runCmd.FullCommand():
		if err := run(env); err != nil {
			slog.Error("bot exited with error", "error", err)
			os.Exit(1)
		}
	}
}

func setupLogger(env *config.Env) {
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))
}

func runHealth(env *config.Env) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return langgraph.NewClient(env.URL, env.APIKey).Health(ctx)
}

func run(env *config.Env) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// Setup storage
	var store storage.Storage
	var err error
	switch env.StorageEnv.Type {
	case "s3":
		store, err = storage.NewS3Storage(ctx, env.StorageEnv.S3Bucket, env.StorageEnv.S3Prefix, env.StorageEnv.S3Region)
		if err != nil {
			return fmt.Errorf("failed to create S3 storage: %w", err)
		}
	default:
		store, err = storage.NewLocalStorage(env.StorageEnv.BaseDir)
		if err != nil {
			return fmt.Errorf("failed to create local storage: %w", err)
		}
	}

	// Setup tracked state
	repo := repositoryimpl.NewYAMLRepository(store)
	manager, err := state.NewManager(ctx, repo)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	// Setup workflow API client
	client := langgraph.NewClient(env.URL, env.APIKey)
	if err := client.Health(ctx); err != nil {
		slog.Warn("workflow API is not reachable yet", "url", env.URL, "error", err)
	}

	bus := eventbus.New()
	extractor := interrupt.NewExtractor(client)
	submitter := resume.NewSubmitter(client)
	machine := conversation.NewMachine(manager, submitter)

	// The poller and the bot reference each other: the bot delivers what the
	// poller finds, and /check triggers a cycle on demand.
	p := poller.New(client, extractor, manager, nil, bus, env.PollInterval, env.SearchLimit)
	bot, err := telegram.NewBot(env.Token, env.AdminUserID, machine, p)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}
	p.SetNotifier(bot)

	debugServer := debug.NewServer(manager, client, env.DebugHost, env.DebugPort)
	go func() {
		if err := debugServer.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
			slog.Error("debug server error", "error", err)
			cancel()
		}
	}()

	p.Start(ctx)
	err = bot.Run(ctx)

	slog.Info("shutting down")
	p.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if sderr := debugServer.Shutdown(shutdownCtx); sderr != nil {
		slog.Error("debug server shutdown error", "error", sderr)
	}

	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
