package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/janus-access/server/internal/config"
	"github.com/janus-access/server/internal/db"
	"github.com/janus-access/server/internal/httpapi"
	"github.com/janus-access/server/internal/janus/model"
	"github.com/janus-access/server/internal/janus/reader"
	"github.com/janus-access/server/internal/janus/service"
	"github.com/janus-access/server/internal/janus/store/sqlite"
	"github.com/janus-access/server/internal/janus/types"
)

// UID presented by the mock reader in dev mode. Seeded with a matching
// card so a fresh checkout grants out of the box.
const devMockUID = "04A1B2C3D4E5F6"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := log.New(os.Stdout, "janus-server ", log.LstdFlags|log.LUTC)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	if cfg.Env == "dev" {
		seed := db.SeedDevOptions{
			DefaultZoneID:  cfg.DefaultZoneID,
			DeviceID:       cfg.DeviceID,
			KnownDeviceIDs: cfg.KnownDevices,
		}
		if cfg.MockReader {
			seed.CardUIDHash = model.HashUID(model.NormalizeUID(devMockUID))
		}
		if err := db.SeedDev(ctx, conn, seed); err != nil {
			logger.Fatalf("seed dev data: %v", err)
		}
	}

	writer := db.NewWriter(conn)
	defer writer.Close()

	// Stores
	tapStore := sqlite.NewTapStore(conn, writer)
	auditStore := sqlite.NewAuditStore(conn, writer)
	directoryStore := sqlite.NewDirectoryStore(conn)
	deviceStore := sqlite.NewDeviceStore(conn, writer)

	// Services
	registry := service.NewDeviceRegistry(deviceStore, logger)
	decisionSvc := service.NewDecisionService(tapStore, registry, service.DecisionConfig{
		UTCOffset: time.Duration(cfg.UTCOffsetMinutes) * time.Minute,
	})
	auditSvc := service.NewAuditService(auditStore)

	pruner := service.NewAuditPruner(auditStore, service.PrunerConfig{
		RetentionDays: cfg.LogRetentionDays,
		IntervalHours: cfg.PruneIntervalHours,
	}, logger)
	pruner.Start(ctx)
	defer pruner.Stop()

	// Reader loop
	if cfg.MockReader {
		source := reader.NewMockSource()
		source.Default = devMockUID
		onTap := func(ctx context.Context, uid string) {
			result, err := decisionSvc.ProcessTap(ctx, types.TapRequest{
				UID:      uid,
				ZoneID:   cfg.DefaultZoneID,
				DeviceID: cfg.DeviceID,
			})
			if err != nil {
				logger.Printf("reader tap error: %v", err)
				return
			}
			logger.Printf("reader tap: status=%s reason=%q", result.Status, result.Reason)
		}
		listener := reader.NewListener(source, onTap, reader.ListenerConfig{
			PollInterval: time.Duration(cfg.PollIntervalMS) * time.Millisecond,
			ReadTimeout:  time.Duration(cfg.ReadTimeoutMS) * time.Millisecond,
			Debounce:     time.Duration(cfg.DebounceMS) * time.Millisecond,
		}, logger)
		go listener.Run(ctx)
	}

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:    logger,
		Addr:      cfg.HTTPAddr,
		Decisions: decisionSvc,
		Audit:     auditSvc,
		Directory: directoryStore,
	})

	go func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.Start(); err != nil {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
