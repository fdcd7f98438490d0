// Command stockctl is the text front end of the inventory client. It keeps a session
// against the inventory API, shows the record snapshot and its statistics, and edits
// records through a draft. With -watch it refreshes on a cron schedule instead.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamadbah2/meuestoque/internal/config"
	"github.com/mamadbah2/meuestoque/internal/domain/models"
	"github.com/mamadbah2/meuestoque/internal/repository/mongodb"
	"github.com/mamadbah2/meuestoque/internal/repository/tokenfile"
	"github.com/mamadbah2/meuestoque/internal/scheduler"
	commandsvc "github.com/mamadbah2/meuestoque/internal/service/commands"
	"github.com/mamadbah2/meuestoque/internal/service/editing"
	"github.com/mamadbah2/meuestoque/internal/service/records"
	"github.com/mamadbah2/meuestoque/internal/service/session"
	"github.com/mamadbah2/meuestoque/internal/service/status"
	"github.com/mamadbah2/meuestoque/pkg/clients/inventory"
	"github.com/mamadbah2/meuestoque/pkg/logger"
)

const prompt = "estoque> "

func main() {
	envFile := flag.String("env", "", "optional .env file")
	oneShot := flag.String("c", "", "run a single command and exit")
	watch := flag.Bool("watch", false, "refresh on WATCH_CRON_SCHEDULE and serve metrics")
	profile := flag.String("profile", "default", "token profile when TOKEN_STORE=mongodb")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var baseLogger *zap.Logger
	if *watch {
		baseLogger = logger.Must(logger.New(cfg.Log.Level))
	} else {
		baseLogger = logger.Must(logger.NewConsole(cfg.Log.Level))
	}
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tokens, closeTokens, err := openTokenStore(ctx, cfg, *profile)
	if err != nil {
		baseLogger.Fatal("failed to init token store", zap.Error(err))
	}
	defer closeTokens()

	registry := prometheus.NewRegistry()
	metrics, err := inventory.NewMetrics("stockctl", registry)
	if err != nil {
		baseLogger.Fatal("failed to register metrics", zap.Error(err))
	}

	clientOpts := []inventory.Option{
		inventory.WithMetrics(metrics),
		inventory.WithLogger(logger.Named(baseLogger, "client.inventory")),
	}

	board := status.NewBoard()
	sessionMgr := session.NewManager(inventory.NewAuthClient(cfg.Inventory, clientOpts...), tokens, logger.Named(baseLogger, "svc.session"))
	gateway := inventory.NewClient(cfg.Inventory, sessionMgr, clientOpts...)
	store := records.NewStore(gateway, sessionMgr, board, logger.Named(baseLogger, "svc.records"))
	editor := editing.NewSession(store, board, logger.Named(baseLogger, "svc.editing"))
	defer store.Close()
	defer editor.Close()

	sessionMgr.OnLogout(func(reason string) {
		store.Clear()
		board.Post(models.Notice{Level: models.NoticeInfo, Operation: "logout", Message: reason})
	})

	if err := sessionMgr.Restore(ctx); err != nil {
		baseLogger.Warn("could not restore previous session", zap.Error(err))
	}

	if *watch {
		runWatch(ctx, cfg, store, registry, baseLogger)
		return
	}

	dispatcher := commandsvc.NewService(sessionMgr, store, editor, board, logger.Named(baseLogger, "svc.commands"))

	if *oneShot != "" {
		if !execute(ctx, dispatcher, *oneShot) {
			os.Exit(1)
		}
		return
	}

	if sessionMgr.Session().Authenticated() {
		if err := store.Refresh(ctx); err != nil {
			fmt.Println("warning:", models.AsErrorReport(err).Message)
		}
	}
	runREPL(ctx, dispatcher)
}

func openTokenStore(ctx context.Context, cfg *config.Config, profile string) (session.TokenStore, func(), error) {
	switch cfg.Session.TokenStore {
	case config.TokenStoreMongoDB:
		repo, err := mongodb.NewTokenRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, profile)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := repo.Close(closeCtx); err != nil {
				zap.L().Error("failed to close mongodb connection", zap.Error(err))
			}
		}, nil
	default:
		return tokenfile.New(cfg.Session.TokenFile), func() {}, nil
	}
}

func runREPL(ctx context.Context, dispatcher commandsvc.Dispatcher) {
	fmt.Println("Type help for the list of commands, exit to quit.")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print(prompt)
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case line, ok := <-lines:
			if !ok {
				fmt.Println()
				return
			}
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if trimmed == "exit" || trimmed == "quit" {
				return
			}
			execute(ctx, dispatcher, trimmed)
		}
	}
}

// execute runs one line and prints its outcome. It reports whether the command succeeded.
func execute(ctx context.Context, dispatcher commandsvc.Dispatcher, line string) bool {
	reply, err := dispatcher.Handle(ctx, models.ParseCommand(line))
	if err != nil {
		fmt.Println(describeError(err))
		return false
	}
	fmt.Println(reply)
	return true
}

func describeError(err error) string {
	switch {
	case errors.Is(err, commandsvc.ErrUnsupportedCommand):
		return "Unknown command. Type help."
	case errors.Is(err, commandsvc.ErrInvalidArguments):
		return "Missing or invalid arguments. Type help."
	case errors.Is(err, editing.ErrSubmitInFlight), errors.Is(err, editing.ErrNotEditing):
		return err.Error()
	}

	report := models.AsErrorReport(err)
	switch report.Kind {
	case models.ErrorNetworkUnavailable:
		return "warning: " + report.Message
	case models.ErrorUnauthorized:
		return "not authorized: " + report.Message
	default:
		return "error: " + report.Message
	}
}

func runWatch(ctx context.Context, cfg *config.Config, store *records.Store, registry *prometheus.Registry, baseLogger *zap.Logger) {
	sched := scheduler.NewScheduler(cfg.Watch, store, logger.Named(baseLogger, "scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	if err := store.Refresh(ctx); err != nil {
		baseLogger.Warn("initial refresh failed", zap.Error(err))
	}

	var srv *http.Server
	if cfg.Watch.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		srv = &http.Server{
			Addr:              cfg.Watch.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			baseLogger.Info("metrics server starting", zap.String("addr", cfg.Watch.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				baseLogger.Error("metrics server crashed", zap.Error(err))
			}
		}()
	}

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			baseLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
