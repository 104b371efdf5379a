package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/awnumar/memguard"

	boltadapter "github.com/ericfisherdev/secm/internal/adapter/driven/bolt"
	fileadapter "github.com/ericfisherdev/secm/internal/adapter/driven/file"
	keyringadapter "github.com/ericfisherdev/secm/internal/adapter/driven/keyring"
	sqliteadapter "github.com/ericfisherdev/secm/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/secm/internal/adapter/driving/cli"
	"github.com/ericfisherdev/secm/internal/application"
	"github.com/ericfisherdev/secm/internal/config"
	"github.com/ericfisherdev/secm/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (defaults, config file, SECM_ env).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	slog.Debug("config loaded", "backend", cfg.Backend, "path", cfg.StoragePath())

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Make sure a master key exists; nothing works without the vault.
	defer memguard.Purge()
	keys := keyringadapter.NewProvider(cfg.KeyringService, cfg.KeyringAccount, logger)
	if err := keys.EnsureKey(); err != nil {
		return err
	}

	// 4. Open the configured storage backend.
	storage, err := openStorage(ctx, cfg, keys, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := storage.Close(); closeErr != nil {
			slog.Error("error closing storage", "error", closeErr)
		}
	}()

	// 5. Load secrets into the service.
	svc, err := application.NewSecretService(ctx, storage, logger)
	if err != nil {
		return err
	}

	// 6. Dispatch the command.
	root := cli.NewRootCommand(svc, cli.TerminalPrompt(os.Stdin, os.Stderr))
	return root.ExecuteContext(ctx)
}

func openStorage(ctx context.Context, cfg *config.Config, keys driven.KeyProvider, logger *slog.Logger) (driven.SecretStorage, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return sqliteadapter.OpenSecretRepo(ctx, cfg.DBPath)
	case config.BackendBolt:
		return boltadapter.Open(cfg.BoltPath)
	default:
		return fileadapter.NewStorage(cfg.SecretFile, keys, logger)
	}
}
