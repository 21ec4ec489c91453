// Command paybridge pushes payroll records to the ERP and exports salary payment files.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/paybridge/internal/adapters/driven/bankfile"
	"github.com/custodia-labs/paybridge/internal/adapters/driven/cache"
	"github.com/custodia-labs/paybridge/internal/adapters/driven/config/file"
	"github.com/custodia-labs/paybridge/internal/adapters/driven/erp"
	"github.com/custodia-labs/paybridge/internal/adapters/driven/events"
	"github.com/custodia-labs/paybridge/internal/adapters/driven/oauth"
	"github.com/custodia-labs/paybridge/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/paybridge/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/paybridge/internal/adapters/driving/cli"
	"github.com/custodia-labs/paybridge/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/paybridge/internal/core/ports/driven"
	"github.com/custodia-labs/paybridge/internal/core/services"
	"github.com/custodia-labs/paybridge/internal/logger"
)

var version = "dev"

func main() {
	// A .env file is optional; its variables override config.toml like any other env var.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: loading .env: %v\n", err)
		os.Exit(1)
	}

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}

// bootstrap wires the adapters and core services for one command run.
func bootstrap(_ context.Context, opts cli.Options) (*cli.Services, error) {
	configDir, dataDir := "", ""
	if opts.DataDir != "" {
		configDir = opts.DataDir
		dataDir = filepath.Join(opts.DataDir, "data")
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}

	st, err := openStores(opts.Memory, dataDir)
	if err != nil {
		return nil, err
	}
	closers := []func() error{st.close}
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	states := st.states
	if settings.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: settings.RedisAddr})
		closers = append(closers, rdb.Close)
		states = cache.NewRedisStateStore(rdb)
		logger.Debug("Pending states in Redis at %s", settings.RedisAddr)
	}

	var publisher driven.EventPublisher = events.LogPublisher{}
	if settings.AMQPURL != "" {
		amqpPublisher := events.NewAMQPPublisher(settings.AMQPURL)
		closers = append(closers, amqpPublisher.Close)
		publisher = amqpPublisher
	}

	tokenClient := oauth.NewClient(settings.ERP)
	vault := services.NewTokenVault(st.credentials, tokenClient)
	authFlow := services.NewAuthorizationFlow(settingsService, states, tokenClient, vault)
	batchSync := services.NewBatchSyncEngine(
		st.records, erp.NewClient(settings.ERP), vault, settingsService, publisher)
	salaryService := services.NewSalaryService(st.records)
	bankFileService := services.NewBankFileService(salaryService, bankfile.NewEncoder(), settingsService)

	server, err := httpapi.NewServer(&httpapi.Ports{
		Auth:     authFlow,
		Batch:    batchSync,
		Salary:   salaryService,
		BankFile: bankFileService,
		Settings: settingsService,
	}, settings.SessionSecret, logger.Slog())
	if err != nil {
		_ = closeAll()
		return nil, err
	}

	return &cli.Services{
		Settings: settingsService,
		Auth:     authFlow,
		Batch:    batchSync,
		Salary:   salaryService,
		BankFile: bankFileService,
		Org:      services.NewOrgService(st.procedures),
		Serve: &cli.ServeConfig{
			Addr:      settings.HTTPAddr,
			Handler:   server.Handler(),
			Scheduler: services.NewScheduler(settings.Push, batchSync),
			Watch:     configStore.Watch,
			OnConfigChange: func() {
				logger.Info("Settings reloaded; ERP endpoints, schedule and stores apply after a restart")
			},
		},
		Close: closeAll,
	}, nil
}

type stores struct {
	records     driven.RecordStore
	procedures  driven.ProcedureCaller
	credentials driven.CredentialStore
	states      driven.PendingStateStore
	close       func() error
}

func openStores(inMemory bool, dataDir string) (*stores, error) {
	if inMemory {
		logger.Warn("Using in-memory stores; records and credentials are lost on exit")
		records := memory.NewRecordStore()
		return &stores{
			records:     records,
			procedures:  records,
			credentials: memory.NewCredentialStore(),
			states:      memory.NewStateStore(),
			close:       func() error { return nil },
		}, nil
	}

	db, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("Using database %s", db.Path())
	return &stores{
		records:     db.RecordStore(),
		procedures:  db.ProcedureCaller(),
		credentials: db.CredentialStore(),
		states:      db.StateStore(),
		close:       db.Close,
	}, nil
}
