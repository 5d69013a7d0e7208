package repositoryimpl

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Seyyyeddd/executive-ai-assistant/internal/state"
	"github.com/Seyyyeddd/executive-ai-assistant/pkg/cerr"
	"github.com/Seyyyeddd/executive-ai-assistant/pkg/storage"
)

const statePath = "state/interrupts.yaml"

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func (r *YAMLRepository) Load(ctx context.Context) (*state.State, error) {
	exists, err := r.storage.Exists(ctx, statePath)
	if err != nil {
		return nil, cerr.WrapStorageReadError("interrupt state", err)
	}
	if !exists {
		return state.NewState(), nil
	}
	data, err := r.storage.Read(ctx, statePath)
	if err != nil {
		return nil, cerr.WrapStorageReadError("interrupt state", err)
	}
	var s state.State
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal interrupt state: %w", err))
	}
	if s.Interrupts == nil {
		s.Interrupts = map[string]*state.StoredInterrupt{}
	}
	if s.Version == 0 {
		s.Version = state.CurrentVersion
	}
	return &s, nil
}

func (r *YAMLRepository) Save(ctx context.Context, s *state.State) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal interrupt state: %w", err))
	}
	if err := r.storage.Write(ctx, statePath, data); err != nil {
		return cerr.WrapStorageWriteError("interrupt state", err)
	}
	return nil
}
