package agentregistry

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/relaycortex/agentcore/pkg/task"
)

// TaskRepository is the abstract persistence contract for tasks (spec §6).
// Saving a duplicate id is an error; list_by_tenant and list_by_skill
// must filter by tenant.
type TaskRepository interface {
	Save(ctx context.Context, t *task.Task) error
	Get(ctx context.Context, id uuid.UUID) (*task.Task, error)
	Update(ctx context.Context, t *task.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByAgent(ctx context.Context, agentID string) ([]*task.Task, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*task.Task, error)
	ListBySkill(ctx context.Context, tenantID, skillName string) ([]*task.Task, error)
}

// AgentCard describes a registered agent's dispatch-relevant metadata —
// what OrchestrationManager.DelegateToAgents passes around as
// target_cards (spec §4.6.2).
type AgentCard struct {
	AgentID      string
	TenantID     string
	Description  string
	Capabilities []string
}

// AgentRepository is the abstract persistence contract for agent cards
// (spec §6).
type AgentRepository interface {
	Save(ctx context.Context, a AgentCard) error
	Get(ctx context.Context, agentID string) (AgentCard, error)
	Delete(ctx context.Context, agentID string) error
	ListAll(ctx context.Context) ([]AgentCard, error)
	ListByTenant(ctx context.Context, tenantID string) ([]AgentCard, error)
}

// Conversation is a thread of messages tied to a tenant/user, carrying
// orchestration state (e.g. an active HandoffSession) in StateMetadata.
type Conversation struct {
	ID            uuid.UUID
	TenantID      string
	UserID        string
	StateMetadata map[string]any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ConversationMessage is one stored message within a conversation.
type ConversationMessage struct {
	ID        uuid.UUID
	Role      string
	Parts     []task.MessagePart
	CreatedAt time.Time
}

// ConversationRepository is the abstract persistence contract for
// conversations (spec §6). AddMessage must update the conversation's
// updated_at in the same transaction as the message insert; Update must
// apply a state_metadata change atomically.
type ConversationRepository interface {
	Create(ctx context.Context, tenantID, userID string) (*Conversation, error)
	Get(ctx context.Context, id uuid.UUID, tenantID string) (*Conversation, error)
	List(ctx context.Context, tenantID string, userID string, offset, limit int) ([]*Conversation, error)
	Update(ctx context.Context, id uuid.UUID, tenantID string, mutate func(stateMetadata map[string]any) error) error
	AddMessage(ctx context.Context, conversationID uuid.UUID, tenantID string, msg ConversationMessage) error
	GetMessages(ctx context.Context, conversationID uuid.UUID, tenantID string) ([]ConversationMessage, error)
	GetRecentMessages(ctx context.Context, conversationID uuid.UUID, tenantID string, limit int) ([]ConversationMessage, error)
}

// OAuthCredential is one stored, encrypted provider credential.
type OAuthCredential struct {
	ID                    uuid.UUID
	Integration           string
	UserID                string
	TenantID              string
	EncryptedAccessToken  string
	EncryptedRefreshToken string
	ExpiresAt             time.Time
	WorkspaceName         string
}

// OAuthState is one pending authorization-code flow.
type OAuthState struct {
	State       string
	Integration string
	UserID      string
	TenantID    string
	Session     string
	ExpiresAt   time.Time
}

// OAuthRepository is the abstract persistence contract for OAuth
// credentials and pending-state entries (spec §6), with an expiry index
// CleanupExpiredStates relies on.
type OAuthRepository interface {
	SaveCredential(ctx context.Context, c OAuthCredential) error
	GetCredential(ctx context.Context, id uuid.UUID) (OAuthCredential, error)
	UpdateCredential(ctx context.Context, c OAuthCredential) error
	DeleteCredential(ctx context.Context, id uuid.UUID) error

	SaveState(ctx context.Context, s OAuthState) error
	GetState(ctx context.Context, state string) (OAuthState, error)
	DeleteState(ctx context.Context, state string) error
	DeleteExpiredStates(ctx context.Context, now time.Time) (int, error)
}
