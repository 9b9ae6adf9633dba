package main

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cqle/dba-virtual/backend/internal/config"
	"github.com/cqle/dba-virtual/backend/internal/service/chat"
)

func TestOpenStoreMemory(t *testing.T) {
	store, name, db, err := openStore(config.DatabaseConfig{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("openStore() error: %v", err)
	}
	if db != nil {
		t.Fatal("memory store must not open a database")
	}
	if name != config.DriverMemory {
		t.Fatalf("unexpected store name %q", name)
	}
	if _, ok := store.(*chat.MemoryStore); !ok {
		t.Fatalf("expected *chat.MemoryStore, got %T", store)
	}
}

func TestOpenStoreSQLite(t *testing.T) {
	cfg := config.DatabaseConfig{
		Driver:      config.DriverSQLite,
		DSN:         filepath.Join(t.TempDir(), "dba.db"),
		AutoMigrate: true,
	}
	store, name, db, err := openStore(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("openStore() error: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	if name != config.DriverSQLite {
		t.Fatalf("unexpected store name %q", name)
	}

	ctx := context.Background()
	id, err := store.EnsureSession(ctx, "", "u", "SELECT lento")
	if err != nil {
		t.Fatalf("EnsureSession() error: %v", err)
	}
	if err := store.AppendTurn(ctx, id, "user", "SELECT lento"); err != nil {
		t.Fatalf("AppendTurn() error: %v", err)
	}
}

func TestRunServerStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: addr, Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- runServer(ctx, srv) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runServer() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runServer did not stop")
	}
}
