package agentregistry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/relaycortex/agentcore/pkg/agenterr"
	"github.com/relaycortex/agentcore/pkg/task"
)

// InMemoryTaskRepository is the reference TaskRepository implementation
// used by tests and simple deployments. It also satisfies
// task.Repository's narrower Save/Get contract, so a single instance can
// back both task.Manager and the richer §6 surface.
type InMemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*task.Task
}

func NewInMemoryTaskRepository() *InMemoryTaskRepository {
	return &InMemoryTaskRepository{tasks: make(map[uuid.UUID]*task.Task)}
}

func (r *InMemoryTaskRepository) Save(_ context.Context, t *task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tasks[t.ID]; exists {
		return agenterr.IntegrityErrorf("task %s already exists", t.ID)
	}
	r.tasks[t.ID] = t
	return nil
}

func (r *InMemoryTaskRepository) Get(_ context.Context, id uuid.UUID) (*task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, agenterr.TaskNotFound(id.String())
	}
	return t, nil
}

func (r *InMemoryTaskRepository) Update(_ context.Context, t *task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[t.ID]; !ok {
		return agenterr.TaskNotFound(t.ID.String())
	}
	r.tasks[t.ID] = t
	return nil
}

func (r *InMemoryTaskRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
	return nil
}

func (r *InMemoryTaskRepository) ListByAgent(_ context.Context, agentID string) ([]*task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*task.Task
	for _, t := range r.tasks {
		if t.AgentID == agentID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *InMemoryTaskRepository) ListByTenant(_ context.Context, tenantID string) ([]*task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*task.Task
	for _, t := range r.tasks {
		if t.TenantID == tenantID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *InMemoryTaskRepository) ListBySkill(_ context.Context, tenantID, skillName string) ([]*task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*task.Task
	for _, t := range r.tasks {
		if t.TenantID == tenantID && t.SkillName == skillName {
			out = append(out, t)
		}
	}
	return out, nil
}

// InMemoryAgentRepository is the reference AgentRepository implementation.
type InMemoryAgentRepository struct {
	mu     sync.RWMutex
	agents map[string]AgentCard
}

func NewInMemoryAgentRepository() *InMemoryAgentRepository {
	return &InMemoryAgentRepository{agents: make(map[string]AgentCard)}
}

func (r *InMemoryAgentRepository) Save(_ context.Context, a AgentCard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[a.AgentID] = a
	return nil
}

func (r *InMemoryAgentRepository) Get(_ context.Context, agentID string) (AgentCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[agentID]
	if !ok {
		return AgentCard{}, agenterr.AgentNotFound(agentID)
	}
	return a, nil
}

func (r *InMemoryAgentRepository) Delete(_ context.Context, agentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.agents, agentID)
	return nil
}

func (r *InMemoryAgentRepository) ListAll(_ context.Context) ([]AgentCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]AgentCard, 0, len(r.agents))
	ids := make([]string, 0, len(r.agents))
	for id := range r.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		out = append(out, r.agents[id])
	}
	return out, nil
}

func (r *InMemoryAgentRepository) ListByTenant(ctx context.Context, tenantID string) ([]AgentCard, error) {
	all, _ := r.ListAll(ctx)
	var out []AgentCard
	for _, a := range all {
		if a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	return out, nil
}

// InMemoryConversationRepository is the reference ConversationRepository
// implementation.
type InMemoryConversationRepository struct {
	mu            sync.Mutex
	conversations map[uuid.UUID]*Conversation
	messages      map[uuid.UUID][]ConversationMessage
}

func NewInMemoryConversationRepository() *InMemoryConversationRepository {
	return &InMemoryConversationRepository{
		conversations: make(map[uuid.UUID]*Conversation),
		messages:      make(map[uuid.UUID][]ConversationMessage),
	}
}

func (r *InMemoryConversationRepository) Create(_ context.Context, tenantID, userID string) (*Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	c := &Conversation{
		ID: uuid.New(), TenantID: tenantID, UserID: userID,
		StateMetadata: map[string]any{}, CreatedAt: now, UpdatedAt: now,
	}
	r.conversations[c.ID] = c
	return c, nil
}

func (r *InMemoryConversationRepository) Get(_ context.Context, id uuid.UUID, tenantID string) (*Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[id]
	if !ok || c.TenantID != tenantID {
		return nil, agenterr.ThreadNotFound(id.String())
	}
	return c, nil
}

func (r *InMemoryConversationRepository) List(_ context.Context, tenantID, userID string, offset, limit int) ([]*Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*Conversation
	for _, c := range r.conversations {
		if c.TenantID != tenantID {
			continue
		}
		if userID != "" && c.UserID != userID {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.Before(matched[j].CreatedAt) })
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *InMemoryConversationRepository) Update(_ context.Context, id uuid.UUID, tenantID string, mutate func(map[string]any) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[id]
	if !ok || c.TenantID != tenantID {
		return agenterr.ThreadNotFound(id.String())
	}
	if err := mutate(c.StateMetadata); err != nil {
		return err
	}
	c.UpdatedAt = time.Now()
	return nil
}

func (r *InMemoryConversationRepository) AddMessage(_ context.Context, conversationID uuid.UUID, tenantID string, msg ConversationMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[conversationID]
	if !ok || c.TenantID != tenantID {
		return agenterr.ThreadNotFound(conversationID.String())
	}
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	r.messages[conversationID] = append(r.messages[conversationID], msg)
	c.UpdatedAt = time.Now()
	return nil
}

func (r *InMemoryConversationRepository) GetMessages(_ context.Context, conversationID uuid.UUID, tenantID string) ([]ConversationMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[conversationID]
	if !ok || c.TenantID != tenantID {
		return nil, agenterr.ThreadNotFound(conversationID.String())
	}
	return r.messages[conversationID], nil
}

func (r *InMemoryConversationRepository) GetRecentMessages(ctx context.Context, conversationID uuid.UUID, tenantID string, limit int) ([]ConversationMessage, error) {
	all, err := r.GetMessages(ctx, conversationID, tenantID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit >= len(all) {
		return all, nil
	}
	return all[len(all)-limit:], nil
}

// InMemoryOAuthRepository is the reference OAuthRepository implementation.
type InMemoryOAuthRepository struct {
	mu          sync.Mutex
	credentials map[uuid.UUID]OAuthCredential
	states      map[string]OAuthState
}

func NewInMemoryOAuthRepository() *InMemoryOAuthRepository {
	return &InMemoryOAuthRepository{
		credentials: make(map[uuid.UUID]OAuthCredential),
		states:      make(map[string]OAuthState),
	}
}

func (r *InMemoryOAuthRepository) SaveCredential(_ context.Context, c OAuthCredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.credentials[c.ID] = c
	return nil
}

func (r *InMemoryOAuthRepository) GetCredential(_ context.Context, id uuid.UUID) (OAuthCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.credentials[id]
	if !ok {
		return OAuthCredential{}, agenterr.CredentialNotFound(id.String())
	}
	return c, nil
}

func (r *InMemoryOAuthRepository) UpdateCredential(_ context.Context, c OAuthCredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.credentials[c.ID]; !ok {
		return agenterr.CredentialNotFound(c.ID.String())
	}
	r.credentials[c.ID] = c
	return nil
}

func (r *InMemoryOAuthRepository) DeleteCredential(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.credentials, id)
	return nil
}

func (r *InMemoryOAuthRepository) SaveState(_ context.Context, s OAuthState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[s.State] = s
	return nil
}

func (r *InMemoryOAuthRepository) GetState(_ context.Context, state string) (OAuthState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.states[state]
	if !ok {
		return OAuthState{}, agenterr.OAuthStateError("state not found")
	}
	return s, nil
}

func (r *InMemoryOAuthRepository) DeleteState(_ context.Context, state string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, state)
	return nil
}

func (r *InMemoryOAuthRepository) DeleteExpiredStates(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for k, s := range r.states {
		if s.ExpiresAt.Before(now) {
			delete(r.states, k)
			count++
		}
	}
	return count, nil
}
