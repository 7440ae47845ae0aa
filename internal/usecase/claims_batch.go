package usecase

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// SyncReport aggregates the outcome of a full claims synchronization pass.
// Success+Failed always equals the number of users enumerated.
type SyncReport struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// SyncAll drives SyncUser across every user record in fixed-size chunks.
// Users within a chunk are synced concurrently and each outcome is collected
// independently; one user's failure never cancels its siblings. Chunks run
// sequentially with a pause in between to stay inside the identity
// provider's rate limits, with no pause after the final chunk. Only a
// failure to enumerate users is returned as an error.
func (s *ClaimsService) SyncAll(ctx context.Context) (SyncReport, error) {
	ids, err := s.users.ListIDs(ctx)
	if err != nil {
		return SyncReport{}, fmt.Errorf("list user ids: %w", err)
	}

	var report SyncReport
	for start := 0; start < len(ids); start += s.chunkSize {
		end := min(start+s.chunkSize, len(ids))
		chunk := ids[start:end]

		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		for _, id := range chunk {
			wg.Add(1)
			go func(userID string) {
				defer wg.Done()
				err := s.SyncUser(ctx, userID)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					report.Failed++
					s.logger.Warn("claims sync failed for user",
						zap.String("user_id", userID),
						zap.Error(err),
					)
					return
				}
				report.Success++
			}(id)
		}
		wg.Wait()

		if end < len(ids) && s.chunkDelay > 0 {
			s.sleep(s.chunkDelay)
		}
	}

	s.logger.Info("claims sync pass complete",
		zap.Int("total", len(ids)),
		zap.Int("success", report.Success),
		zap.Int("failed", report.Failed),
	)

	return report, nil
}
