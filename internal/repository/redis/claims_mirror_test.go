package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/domain"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/repository"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestClaimsMirrorRepository_PutAndGet(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewClaimsMirrorRepository(client, "access:claims")

	ctx := context.Background()
	updatedAt := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	primary := "centre-a"

	snapshot := domain.ClaimsSnapshot{
		UserID:          "user-1",
		Role:            "admin",
		Permissions:     []domain.PermissionID{domain.PermViewStaff, domain.PermManageStaff},
		CentreIDs:       []string{"centre-a"},
		PrimaryCentreID: &primary,
		LastUpdated:     updatedAt,
	}

	if err := repo.Put(ctx, snapshot); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if !server.Exists("access:claims:user-1") {
		t.Fatalf("expected snapshot key to exist")
	}

	got, err := repo.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Role != "admin" {
		t.Fatalf("unexpected role: %s", got.Role)
	}
	if got.PrimaryCentreID == nil || *got.PrimaryCentreID != "centre-a" {
		t.Fatalf("unexpected primary centre: %v", got.PrimaryCentreID)
	}
	if len(got.Permissions) != 2 || got.Permissions[0] != domain.PermViewStaff {
		t.Fatalf("unexpected permissions: %v", got.Permissions)
	}
	if !got.LastUpdated.Equal(updatedAt) {
		t.Fatalf("expected lastUpdated %v, got %v", updatedAt, got.LastUpdated)
	}
}

func TestClaimsMirrorRepository_PutOverwrites(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewClaimsMirrorRepository(client, "access:claims")

	ctx := context.Background()

	first := domain.ClaimsSnapshot{
		UserID:      "user-2",
		Role:        "staff",
		Permissions: []domain.PermissionID{domain.PermViewClients},
	}
	second := domain.ClaimsSnapshot{
		UserID:      "user-2",
		Role:        "admin",
		Permissions: []domain.PermissionID{domain.PermissionWildcard},
	}

	if err := repo.Put(ctx, first); err != nil {
		t.Fatalf("first Put returned error: %v", err)
	}
	if err := repo.Put(ctx, second); err != nil {
		t.Fatalf("second Put returned error: %v", err)
	}

	got, err := repo.Get(ctx, "user-2")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Role != "admin" {
		t.Fatalf("expected overwritten role admin, got %s", got.Role)
	}
	if len(got.Permissions) != 1 || got.Permissions[0] != domain.PermissionWildcard {
		t.Fatalf("unexpected permissions: %v", got.Permissions)
	}
}

func TestClaimsMirrorRepository_GetMiss(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewClaimsMirrorRepository(client, "access:claims")

	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
