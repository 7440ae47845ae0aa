package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/domain"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/port"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/repository"
)

// Shared stub collaborators for usecase tests.

type roleRepoStub struct {
	mu                sync.Mutex
	roles             map[string]domain.Role
	rolesByName       map[string]domain.Role
	createErr         error
	updateErr         error
	deleteErr         error
	clearDefaultCalls int
	updates           []domain.Role
}

func newRoleRepoStub(roles ...domain.Role) *roleRepoStub {
	stub := &roleRepoStub{
		roles:       make(map[string]domain.Role),
		rolesByName: make(map[string]domain.Role),
	}
	for _, role := range roles {
		stub.roles[role.ID] = role
		stub.rolesByName[role.Name] = role
	}
	return stub
}

func (m *roleRepoStub) Create(_ context.Context, role domain.Role) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[role.ID] = role
	m.rolesByName[role.Name] = role
	return nil
}

func (m *roleRepoStub) GetByID(_ context.Context, id string) (*domain.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if role, ok := m.roles[id]; ok {
		return &role, nil
	}
	return nil, repository.ErrNotFound
}

func (m *roleRepoStub) GetByName(_ context.Context, name string) (*domain.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if role, ok := m.rolesByName[name]; ok {
		return &role, nil
	}
	return nil, repository.ErrNotFound
}

func (m *roleRepoStub) List(_ context.Context) ([]domain.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	roles := make([]domain.Role, 0, len(m.roles))
	for _, role := range m.roles {
		roles = append(roles, role)
	}
	return roles, nil
}

func (m *roleRepoStub) Update(_ context.Context, role domain.Role) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	old, exists := m.roles[role.ID]
	if !exists {
		return repository.ErrNotFound
	}
	delete(m.rolesByName, old.Name)
	m.roles[role.ID] = role
	m.rolesByName[role.Name] = role
	m.updates = append(m.updates, role)
	return nil
}

func (m *roleRepoStub) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	role, exists := m.roles[id]
	if !exists {
		return repository.ErrNotFound
	}
	delete(m.roles, id)
	delete(m.rolesByName, role.Name)
	return nil
}

func (m *roleRepoStub) ClearDefault(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearDefaultCalls++
	for id, role := range m.roles {
		if role.IsDefault {
			role.IsDefault = false
			m.roles[id] = role
			m.rolesByName[role.Name] = role
		}
	}
	return nil
}

type stateCall struct {
	userID      string
	state       domain.PromotionState
	adminUserID *string
}

type userRepoStub struct {
	mu                sync.Mutex
	users             map[string]domain.UserRecord
	listIDsErr        error
	createErr         error
	markPromotedErr   error
	setStateErr       error
	appendNoteErr     error
	createCalls       int
	updateCalls       int
	markPromotedCalls int
	stateCalls        []stateCall
	notes             []string
}

func newUserRepoStub(users ...domain.UserRecord) *userRepoStub {
	stub := &userRepoStub{users: make(map[string]domain.UserRecord)}
	for _, user := range users {
		stub.users[user.ID] = user
	}
	return stub
}

func (m *userRepoStub) Create(_ context.Context, user domain.UserRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.users[user.ID]; exists {
		return repository.ErrDuplicate
	}
	m.users[user.ID] = user
	return nil
}

func (m *userRepoStub) GetByID(_ context.Context, id string) (*domain.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[id]; ok {
		return &user, nil
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoStub) ListIDs(_ context.Context) ([]string, error) {
	if m.listIDsErr != nil {
		return nil, m.listIDsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *userRepoStub) ListByRole(_ context.Context, role string) ([]domain.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var members []domain.UserRecord
	for _, user := range m.users {
		if user.Role == role {
			members = append(members, user)
		}
	}
	return members, nil
}

func (m *userRepoStub) Update(_ context.Context, user domain.UserRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if _, exists := m.users[user.ID]; !exists {
		return repository.ErrNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *userRepoStub) SetPromotionState(_ context.Context, id string, state domain.PromotionState, adminUserID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateCalls = append(m.stateCalls, stateCall{userID: id, state: state, adminUserID: adminUserID})
	if m.setStateErr != nil {
		return m.setStateErr
	}
	user, exists := m.users[id]
	if !exists {
		return repository.ErrNotFound
	}
	user.PromotionState = state
	user.AdminUserID = adminUserID
	m.users[id] = user
	return nil
}

func (m *userRepoStub) MarkPromoted(_ context.Context, id, adminUserID, promotedBy string, promotedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markPromotedCalls++
	if m.markPromotedErr != nil {
		return m.markPromotedErr
	}
	user, exists := m.users[id]
	if !exists {
		return repository.ErrNotFound
	}
	user.HasAdminAccount = true
	user.AdminUserID = &adminUserID
	user.PromotionState = domain.PromotionStateCompleted
	user.PromotedAt = &promotedAt
	user.PromotedBy = &promotedBy
	m.users[id] = user
	return nil
}

func (m *userRepoStub) AppendNote(_ context.Context, _ string, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendNoteErr != nil {
		return m.appendNoteErr
	}
	m.notes = append(m.notes, note)
	return nil
}

type identityStub struct {
	mu             sync.Mutex
	nextID         string
	createErr      error
	createCalls    int
	verifyErr      error
	verifyCalls    int
	resetErr       error
	resetCalls     int
	claimsErrByID  map[string]error
	claims         map[string]domain.Claims
	setClaimsCalls int
}

func newIdentityStub() *identityStub {
	return &identityStub{
		nextID: "idp-001",
		claims: make(map[string]domain.Claims),
	}
}

func (m *identityStub) CreateCredential(_ context.Context, _, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return "", m.createErr
	}
	return m.nextID, nil
}

func (m *identityStub) SendVerificationEmail(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifyCalls++
	return m.verifyErr
}

func (m *identityStub) SendPasswordResetEmail(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetCalls++
	return m.resetErr
}

func (m *identityStub) SetExternalClaims(_ context.Context, externalID string, claims domain.Claims) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setClaimsCalls++
	if err := m.claimsErrByID[externalID]; err != nil {
		return err
	}
	m.claims[externalID] = claims
	return nil
}

type mirrorStub struct {
	mu        sync.Mutex
	putErr    error
	putCalls  int
	snapshots map[string]domain.ClaimsSnapshot
}

func newMirrorStub() *mirrorStub {
	return &mirrorStub{snapshots: make(map[string]domain.ClaimsSnapshot)}
}

func (m *mirrorStub) Put(_ context.Context, snapshot domain.ClaimsSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if m.putErr != nil {
		return m.putErr
	}
	m.snapshots[snapshot.UserID] = snapshot
	return nil
}

func (m *mirrorStub) Get(_ context.Context, userID string) (*domain.ClaimsSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if snapshot, ok := m.snapshots[userID]; ok {
		return &snapshot, nil
	}
	return nil, repository.ErrNotFound
}

type publisherStub struct {
	mu            sync.Mutex
	claimsSynced  []domain.ClaimsSyncedEvent
	staffPromoted []domain.StaffPromotedEvent
	roleChanged   []domain.RoleChangedEvent
}

func (m *publisherStub) PublishClaimsSynced(_ context.Context, event domain.ClaimsSyncedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claimsSynced = append(m.claimsSynced, event)
	return nil
}

func (m *publisherStub) PublishStaffPromoted(_ context.Context, event domain.StaffPromotedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staffPromoted = append(m.staffPromoted, event)
	return nil
}

func (m *publisherStub) PublishRoleChanged(_ context.Context, event domain.RoleChangedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roleChanged = append(m.roleChanged, event)
	return nil
}

var (
	_ port.RoleRepository   = (*roleRepoStub)(nil)
	_ port.UserRepository   = (*userRepoStub)(nil)
	_ port.IdentityProvider = (*identityStub)(nil)
	_ port.ClaimsMirror     = (*mirrorStub)(nil)
	_ port.EventPublisher   = (*publisherStub)(nil)
)
