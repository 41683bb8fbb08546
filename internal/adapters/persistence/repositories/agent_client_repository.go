package repositories

import (
	"context"

	"insureadmin/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// agentClientRepository implements AgentClientRepository interface
type agentClientRepository struct {
	db *gorm.DB
}

// NewAgentClientRepository creates a new agent client repository
func NewAgentClientRepository(db *gorm.DB) AgentClientRepository {
	return &agentClientRepository{db: db}
}

// ClientIDs returns the ids of every client assigned to the agent.
// An agent with no assignments gets an empty slice, not an error.
func (r *agentClientRepository) ClientIDs(ctx context.Context, agentID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.AgentClient{}).
		Where("agent_id = ?", agentID).
		Pluck("client_id", &ids).Error
	return ids, err
}

// Assign assigns a client to an agent
func (r *agentClientRepository) Assign(ctx context.Context, agentID, clientID string) error {
	return r.db.WithContext(ctx).Create(&models.AgentClient{
		AgentID:  agentID,
		ClientID: clientID,
	}).Error
}

// Unassign removes a client from an agent
func (r *agentClientRepository) Unassign(ctx context.Context, agentID, clientID string) error {
	return r.db.WithContext(ctx).
		Where("agent_id = ? AND client_id = ?", agentID, clientID).
		Delete(&models.AgentClient{}).Error
}
