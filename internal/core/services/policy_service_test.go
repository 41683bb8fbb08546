package services

import (
	"context"
	"testing"

	"insureadmin/internal/adapters/persistence/models"
	"insureadmin/internal/config"
	"insureadmin/internal/core/domain"
	"insureadmin/internal/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeAgentClientRepo serves a fixed client set per agent
type fakeAgentClientRepo struct {
	clients map[string][]string
}

func (f *fakeAgentClientRepo) ClientIDs(_ context.Context, agentID string) ([]string, error) {
	return f.clients[agentID], nil
}
func (f *fakeAgentClientRepo) Assign(_ context.Context, agentID, clientID string) error {
	f.clients[agentID] = append(f.clients[agentID], clientID)
	return nil
}
func (f *fakeAgentClientRepo) Unassign(_ context.Context, _, _ string) error { return nil }

// fakeEnrollmentRepo records which list methods were called
type fakeEnrollmentRepo struct {
	rows []*models.UserPolicy

	listAllCalls       int
	listByUserCalls    int
	listByUserIDsCalls int
	lastUserIDs        []string
}

func (f *fakeEnrollmentRepo) Create(_ context.Context, e *models.UserPolicy) error {
	e.ID = uint(len(f.rows) + 1)
	f.rows = append(f.rows, e)
	return nil
}

func (f *fakeEnrollmentRepo) GetByID(_ context.Context, id uint) (*models.UserPolicy, error) {
	for _, row := range f.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEnrollmentRepo) Update(_ context.Context, _ *models.UserPolicy) error { return nil }
func (f *fakeEnrollmentRepo) Delete(_ context.Context, id uint) error {
	kept := f.rows[:0]
	for _, row := range f.rows {
		if row.ID != id {
			kept = append(kept, row)
		}
	}
	f.rows = kept
	return nil
}

func (f *fakeEnrollmentRepo) ListAll(_ context.Context, offset, limit int) ([]*models.UserPolicy, int64, error) {
	f.listAllCalls++
	return pageOf(f.rows, offset, limit), int64(len(f.rows)), nil
}

func (f *fakeEnrollmentRepo) ListByUser(_ context.Context, userID string, offset, limit int) ([]*models.UserPolicy, int64, error) {
	f.listByUserCalls++
	var matched []*models.UserPolicy
	for _, row := range f.rows {
		if row.UserID == userID {
			matched = append(matched, row)
		}
	}
	return pageOf(matched, offset, limit), int64(len(matched)), nil
}

func (f *fakeEnrollmentRepo) ListByUserIDs(_ context.Context, userIDs []string, offset, limit int) ([]*models.UserPolicy, int64, error) {
	f.listByUserIDsCalls++
	f.lastUserIDs = userIDs
	var matched []*models.UserPolicy
	for _, row := range f.rows {
		for _, id := range userIDs {
			if row.UserID == id {
				matched = append(matched, row)
				break
			}
		}
	}
	return pageOf(matched, offset, limit), int64(len(matched)), nil
}

func (f *fakeEnrollmentRepo) LapseExpired(_ context.Context) (int64, error) { return 0, nil }

func pageOf(rows []*models.UserPolicy, offset, limit int) []*models.UserPolicy {
	if offset >= len(rows) {
		return []*models.UserPolicy{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

// fakePolicyRepo holds a fixed catalog
type fakePolicyRepo struct {
	policies []*models.Policy
}

func (f *fakePolicyRepo) Create(_ context.Context, p *models.Policy) error {
	p.ID = uint(len(f.policies) + 1)
	f.policies = append(f.policies, p)
	return nil
}
func (f *fakePolicyRepo) GetByID(_ context.Context, id uint) (*models.Policy, error) {
	for _, p := range f.policies {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakePolicyRepo) List(_ context.Context) ([]*models.Policy, error) { return f.policies, nil }
func (f *fakePolicyRepo) Update(_ context.Context, _ *models.Policy) error { return nil }
func (f *fakePolicyRepo) Delete(_ context.Context, _ uint) error           { return nil }

func newTestPolicyService(enrollments *fakeEnrollmentRepo, agents *fakeAgentClientRepo, catalog *fakePolicyRepo) *PolicyService {
	notifier := NewNotificationService(&config.Config{})
	return NewPolicyService(catalog, enrollments, agents, notifier)
}

func TestListEnrollmentsAdminSeesEverything(t *testing.T) {
	enrollments := &fakeEnrollmentRepo{rows: []*models.UserPolicy{
		{ID: 1, UserID: "u1", PolicyID: 1, Status: "active"},
		{ID: 2, UserID: "u2", PolicyID: 1, Status: "lapsed"},
		{ID: 3, UserID: "u3", PolicyID: 2, Status: "active"},
	}}
	svc := newTestPolicyService(enrollments, &fakeAgentClientRepo{clients: map[string][]string{}}, &fakePolicyRepo{})

	page, err := svc.ListEnrollments(context.Background(), Caller{UserID: "admin", Role: domain.RoleAdministrator}, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Meta.Total)
	assert.Equal(t, 1, enrollments.listAllCalls)
}

func TestListEnrollmentsAgentScopedToClients(t *testing.T) {
	enrollments := &fakeEnrollmentRepo{rows: []*models.UserPolicy{
		{ID: 1, UserID: "client-1", PolicyID: 1, Status: "active"},
		{ID: 2, UserID: "client-2", PolicyID: 1, Status: "active"},
		{ID: 3, UserID: "stranger", PolicyID: 2, Status: "active"},
	}}
	agents := &fakeAgentClientRepo{clients: map[string][]string{
		"agent-1": {"client-1", "client-2"},
	}}
	svc := newTestPolicyService(enrollments, agents, &fakePolicyRepo{})

	page, err := svc.ListEnrollments(context.Background(), Caller{UserID: "agent-1", Role: domain.RoleAgent}, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Meta.Total)
	assert.Equal(t, []string{"client-1", "client-2"}, enrollments.lastUserIDs)

	// No row for a user outside the client set
	rows := page.Data.([]*models.EnrollmentResponse)
	for _, row := range rows {
		assert.NotEqual(t, "stranger", row.UserID)
	}
}

func TestListEnrollmentsAgentWithoutClientsShortCircuits(t *testing.T) {
	enrollments := &fakeEnrollmentRepo{rows: []*models.UserPolicy{
		{ID: 1, UserID: "u1", PolicyID: 1, Status: "active"},
	}}
	agents := &fakeAgentClientRepo{clients: map[string][]string{}}
	svc := newTestPolicyService(enrollments, agents, &fakePolicyRepo{})

	page, err := svc.ListEnrollments(context.Background(), Caller{UserID: "agent-1", Role: domain.RoleAgent}, pagination.New(1, 10))
	require.NoError(t, err)

	assert.Equal(t, int64(0), page.Meta.Total)
	assert.Empty(t, page.Data)

	// The enrollment table must not be touched at all
	assert.Equal(t, 0, enrollments.listByUserIDsCalls)
	assert.Equal(t, 0, enrollments.listAllCalls)
	assert.Equal(t, 0, enrollments.listByUserCalls)
}

func TestListEnrollmentsPolicyHolderSeesOnlySelf(t *testing.T) {
	enrollments := &fakeEnrollmentRepo{rows: []*models.UserPolicy{
		{ID: 1, UserID: "me", PolicyID: 1, Status: "active"},
		{ID: 2, UserID: "someone-else", PolicyID: 1, Status: "active"},
	}}
	svc := newTestPolicyService(enrollments, &fakeAgentClientRepo{clients: map[string][]string{}}, &fakePolicyRepo{})

	page, err := svc.ListEnrollments(context.Background(), Caller{UserID: "me", Role: domain.RolePolicyHolder}, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Meta.Total)
	assert.Equal(t, 1, enrollments.listByUserCalls)
}

func TestListEnrollmentsUnknownRoleRejected(t *testing.T) {
	svc := newTestPolicyService(&fakeEnrollmentRepo{}, &fakeAgentClientRepo{clients: map[string][]string{}}, &fakePolicyRepo{})

	_, err := svc.ListEnrollments(context.Background(), Caller{UserID: "x", Role: domain.Role("superuser")}, pagination.New(1, 10))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateEnrollmentPolicyHolderCannotEnrollOthers(t *testing.T) {
	catalog := &fakePolicyRepo{policies: []*models.Policy{{ID: 1, Name: "Term Life", Type: "life"}}}
	svc := newTestPolicyService(&fakeEnrollmentRepo{}, &fakeAgentClientRepo{clients: map[string][]string{}}, catalog)

	_, err := svc.CreateEnrollment(context.Background(),
		Caller{UserID: "me", Role: domain.RolePolicyHolder},
		&EnrollmentInput{UserID: "someone-else", PolicyID: 1})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateEnrollmentDefaultsToActive(t *testing.T) {
	catalog := &fakePolicyRepo{policies: []*models.Policy{{ID: 1, Name: "Term Life", Type: "life"}}}
	enrollments := &fakeEnrollmentRepo{}
	svc := newTestPolicyService(enrollments, &fakeAgentClientRepo{clients: map[string][]string{}}, catalog)

	created, err := svc.CreateEnrollment(context.Background(),
		Caller{UserID: "me", Role: domain.RolePolicyHolder},
		&EnrollmentInput{UserID: "me", PolicyID: 1})
	require.NoError(t, err)
	assert.Equal(t, "active", created.Status)
}

func TestCreateEnrollmentRejectsUnknownStatus(t *testing.T) {
	catalog := &fakePolicyRepo{policies: []*models.Policy{{ID: 1, Name: "Term Life", Type: "life"}}}
	svc := newTestPolicyService(&fakeEnrollmentRepo{}, &fakeAgentClientRepo{clients: map[string][]string{}}, catalog)

	_, err := svc.CreateEnrollment(context.Background(),
		Caller{UserID: "me", Role: domain.RolePolicyHolder},
		&EnrollmentInput{UserID: "me", PolicyID: 1, Status: "pending"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateEnrollmentAgentLimitedToClients(t *testing.T) {
	enrollments := &fakeEnrollmentRepo{rows: []*models.UserPolicy{
		{ID: 1, UserID: "client-1", PolicyID: 1, Status: "active"},
		{ID: 2, UserID: "stranger", PolicyID: 1, Status: "active"},
	}}
	agents := &fakeAgentClientRepo{clients: map[string][]string{"agent-1": {"client-1"}}}
	svc := newTestPolicyService(enrollments, agents, &fakePolicyRepo{})
	agent := Caller{UserID: "agent-1", Role: domain.RoleAgent}

	updated, err := svc.UpdateEnrollment(context.Background(), agent, 1, &UpdateEnrollmentInput{Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", updated.Status)

	_, err = svc.UpdateEnrollment(context.Background(), agent, 2, &UpdateEnrollmentInput{Status: "cancelled"})
	assert.ErrorIs(t, err, ErrForbidden)
}
