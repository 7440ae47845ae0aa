package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/domain"
)

func seedUsers(count int) *userRepoStub {
	users := newUserRepoStub()
	for i := 0; i < count; i++ {
		id := fmt.Sprintf("user-%02d", i)
		users.users[id] = domain.UserRecord{ID: id, Role: domain.RoleStaff, IsActive: true}
	}
	return users
}

func TestSyncAllCountsAlwaysSumToTotal(t *testing.T) {
	roles := newRoleRepoStub(domain.Role{
		ID:          "role-staff",
		Name:        domain.RoleStaff,
		Permissions: []domain.PermissionID{domain.PermViewOwnAppointments},
	})
	users := seedUsers(25)

	svc, provider, _, _ := newClaimsFixture(t, users, roles)
	svc.sleep = func(time.Duration) {}

	// Fail a scattered handful of users.
	provider.claimsErrByID = map[string]error{
		"user-03": errors.New("rate limited"),
		"user-11": errors.New("rate limited"),
		"user-24": errors.New("rate limited"),
	}

	report, err := svc.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll returned error: %v", err)
	}
	if report.Success+report.Failed != 25 {
		t.Fatalf("success+failed must equal total: %+v", report)
	}
	if report.Failed != 3 {
		t.Fatalf("expected 3 failures, got %+v", report)
	}
}

func TestSyncAllChunkingAndDelay(t *testing.T) {
	roles := newRoleRepoStub(domain.Role{ID: "role-staff", Name: domain.RoleStaff})
	users := seedUsers(25)

	provider := newIdentityStub()
	mirror := newMirrorStub()
	svc := NewClaimsService(users, roles, mirror, provider, nil, zaptest.NewLogger(t)).
		WithBatchTuning(10, 50*time.Millisecond)

	var pauses []time.Duration
	svc.sleep = func(d time.Duration) { pauses = append(pauses, d) }

	report, err := svc.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll returned error: %v", err)
	}
	if report.Success != 25 {
		t.Fatalf("expected 25 successes, got %+v", report)
	}

	// 25 users at chunk size 10 gives chunks of 10, 10 and 5 with a pause
	// after the first two chunks only.
	if len(pauses) != 2 {
		t.Fatalf("expected 2 inter-chunk pauses, got %d", len(pauses))
	}
	for _, pause := range pauses {
		if pause != 50*time.Millisecond {
			t.Fatalf("unexpected pause duration %v", pause)
		}
	}
}

func TestSyncAllNoDelayForSingleChunk(t *testing.T) {
	roles := newRoleRepoStub(domain.Role{ID: "role-staff", Name: domain.RoleStaff})
	users := seedUsers(7)

	svc, _, _, _ := newClaimsFixture(t, users, roles)

	slept := 0
	svc.sleep = func(time.Duration) { slept++ }

	if _, err := svc.SyncAll(context.Background()); err != nil {
		t.Fatalf("SyncAll returned error: %v", err)
	}
	if slept != 0 {
		t.Fatalf("no pause expected when everything fits one chunk")
	}
}

func TestSyncAllEnumerationFailure(t *testing.T) {
	users := newUserRepoStub()
	users.listIDsErr = errors.New("store unavailable")

	svc, _, _, _ := newClaimsFixture(t, users, newRoleRepoStub())

	if _, err := svc.SyncAll(context.Background()); err == nil {
		t.Fatalf("expected enumeration failure to propagate")
	}
}

func TestSyncAllEmptyStore(t *testing.T) {
	svc, _, _, _ := newClaimsFixture(t, newUserRepoStub(), newRoleRepoStub())

	report, err := svc.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll returned error: %v", err)
	}
	if report.Success != 0 || report.Failed != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}
