package services

import (
	"context"
	"testing"

	"insureadmin/internal/adapters/persistence/models"
	"insureadmin/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserServiceFixture() (*UserService, *fakeUserRepo) {
	agentRole := &models.Role{ID: 2, Name: "agent"}
	holderRole := &models.Role{ID: 3, Name: "policy_holder"}

	users := newFakeUserRepo(
		&models.User{ID: "agent-1", Name: "Dana", Email: "dana@example.com", RoleID: 2, Role: agentRole},
		&models.User{ID: "agent-2", Name: "Femi", Email: "femi@example.com", RoleID: 2, Role: agentRole},
		&models.User{ID: "client-1", Name: "Ada", Email: "ada@example.com", RoleID: 3, Role: holderRole},
		&models.User{ID: "client-2", Name: "Bayo", Email: "bayo@example.com", RoleID: 3, Role: holderRole},
	)
	roles := &fakeRoleRepo{roles: []*models.Role{
		{ID: 1, Name: "administrator"},
		agentRole,
		holderRole,
	}}
	agentClients := &fakeAgentClientRepo{clients: map[string][]string{
		"agent-1": {"client-1"},
		"agent-2": {"client-2"},
	}}
	return NewUserService(users, roles, agentClients), users
}

func TestClientsOfAgentScopedToOwnBook(t *testing.T) {
	svc, _ := newUserServiceFixture()

	// An agent can read their own book
	clients, err := svc.ClientsOfAgent(context.Background(),
		Caller{UserID: "agent-1", Role: domain.RoleAgent}, "agent-1")
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "client-1", clients[0].ID)

	// But not another agent's
	_, err = svc.ClientsOfAgent(context.Background(),
		Caller{UserID: "agent-1", Role: domain.RoleAgent}, "agent-2")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestClientsOfAgentAdminReadsAnyBook(t *testing.T) {
	svc, _ := newUserServiceFixture()

	clients, err := svc.ClientsOfAgent(context.Background(),
		Caller{UserID: "admin-1", Role: domain.RoleAdministrator}, "agent-2")
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "client-2", clients[0].ID)
}

func TestClientsOfAgentRejectsPolicyHolder(t *testing.T) {
	svc, _ := newUserServiceFixture()

	_, err := svc.ClientsOfAgent(context.Background(),
		Caller{UserID: "client-1", Role: domain.RolePolicyHolder}, "agent-1")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUsersByRole(t *testing.T) {
	svc, _ := newUserServiceFixture()

	agents, err := svc.UsersByRole(context.Background(), "agent")
	require.NoError(t, err)
	require.Len(t, agents, 2)
	for _, u := range agents {
		assert.Equal(t, "agent", u.RoleName)
	}

	holders, err := svc.UsersByRole(context.Background(), "policy_holder")
	require.NoError(t, err)
	assert.Len(t, holders, 2)
}

func TestUsersByRoleUnknownRole(t *testing.T) {
	svc, _ := newUserServiceFixture()

	_, err := svc.UsersByRole(context.Background(), "superuser")
	assert.ErrorIs(t, err, ErrRoleNotFound)
}
