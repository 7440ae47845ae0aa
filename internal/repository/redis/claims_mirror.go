package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	red "github.com/redis/go-redis/v9"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/domain"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/repository"
)

// ClaimsMirrorRepository stores the last pushed claims payload per user as a
// JSON document. Snapshots have no TTL: the mirror reflects the most recent
// push until the next one overwrites it.
type ClaimsMirrorRepository struct {
	client    *red.Client
	keyPrefix string
}

// NewClaimsMirrorRepository constructs a Redis-backed claims mirror.
func NewClaimsMirrorRepository(client *red.Client, keyPrefix string) *ClaimsMirrorRepository {
	if keyPrefix == "" {
		keyPrefix = "access:claims"
	}
	return &ClaimsMirrorRepository{client: client, keyPrefix: keyPrefix}
}

func (r *ClaimsMirrorRepository) key(userID string) string {
	return fmt.Sprintf("%s:%s", r.keyPrefix, userID)
}

// Put overwrites the snapshot for the user.
func (r *ClaimsMirrorRepository) Put(ctx context.Context, snapshot domain.ClaimsSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal claims snapshot: %w", err)
	}

	if err := r.client.Set(ctx, r.key(snapshot.UserID), payload, 0).Err(); err != nil {
		return fmt.Errorf("store claims snapshot: %w", err)
	}

	return nil
}

// Get retrieves the snapshot for the user.
func (r *ClaimsMirrorRepository) Get(ctx context.Context, userID string) (*domain.ClaimsSnapshot, error) {
	payload, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("load claims snapshot: %w", err)
	}

	var snapshot domain.ClaimsSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal claims snapshot: %w", err)
	}

	return &snapshot, nil
}
