package orchestration

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/relaycortex/agentcore/pkg/agentregistry"
)

const handoffMetadataKey = "handoff_session"

// conversationHandoffStore adapts an agentregistry.ConversationRepository
// into the narrow ConversationStore HandoffManager needs, keying the
// session off the thread's conversation id and round-tripping it through
// the conversation's state_metadata as plain JSON (the metadata map is
// typed map[string]any, so a struct value round-trips through an
// unmarshal-friendly representation rather than being stored directly).
type conversationHandoffStore struct {
	repo agentregistry.ConversationRepository
}

// NewConversationHandoffStore builds a ConversationStore backed by a
// conversation repository, persisting handoff sessions in the
// conversation's state_metadata (spec §4.6.1).
func NewConversationHandoffStore(repo agentregistry.ConversationRepository) ConversationStore {
	return &conversationHandoffStore{repo: repo}
}

func (s *conversationHandoffStore) LoadHandoff(ctx context.Context, threadID uuid.UUID, tenantID string) (*HandoffSession, error) {
	conv, err := s.repo.Get(ctx, threadID, tenantID)
	if err != nil {
		return nil, err
	}
	raw, ok := conv.StateMetadata[handoffMetadataKey]
	if !ok || raw == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var session HandoffSession
	if err := json.Unmarshal(encoded, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *conversationHandoffStore) SaveHandoff(ctx context.Context, threadID uuid.UUID, tenantID string, session *HandoffSession) error {
	return s.repo.Update(ctx, threadID, tenantID, func(meta map[string]any) error {
		var asMap map[string]any
		encoded, err := json.Marshal(session)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(encoded, &asMap); err != nil {
			return err
		}
		meta[handoffMetadataKey] = asMap
		return nil
	})
}
