package database

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestUnopenedStoresReportNotConnected(t *testing.T) {
	var nilPG *Postgres
	if err := nilPG.Ping(t.Context()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("nil postgres: expected ErrNotConnected, got %v", err)
	}
	if err := (&Postgres{}).Ping(t.Context()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("empty postgres: expected ErrNotConnected, got %v", err)
	}
	(&Postgres{}).Close()

	if err := (&Redis{}).Ping(t.Context()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("empty redis: expected ErrNotConnected, got %v", err)
	}
	if err := (&Redis{}).Close(); err != nil {
		t.Errorf("closing an unopened redis: %v", err)
	}
}

func TestConnectRejectsMalformedURLs(t *testing.T) {
	ctx := context.Background()

	if _, err := NewPostgres(ctx, "postgres://%zz"); err == nil || !strings.Contains(err.Error(), "parse database url") {
		t.Errorf("expected parse error, got %v", err)
	}
	if _, err := NewRedis(ctx, "http://localhost:6379"); err == nil || !strings.Contains(err.Error(), "parse redis url") {
		t.Errorf("expected parse error, got %v", err)
	}
}
