package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/solthron/assist-api/internal/repository"
)

// StorageHandler exposes the scoped KV store. The extension mirrors its
// chrome.storage areas here; token-shaped writes are promoted by the auth
// bridge watching the well-known keys.
type StorageHandler struct {
	kv repository.KVRepository
}

// NewStorageHandler creates a new storage handler.
func NewStorageHandler(kv repository.KVRepository) *StorageHandler {
	return &StorageHandler{kv: kv}
}

func parseScope(raw string) (repository.Scope, error) {
	switch repository.Scope(raw) {
	case repository.ScopeLocal:
		return repository.ScopeLocal, nil
	case repository.ScopeSync:
		return repository.ScopeSync, nil
	}
	return "", huma.Error422UnprocessableEntity("scope must be local or sync")
}

// GetValueInput identifies a stored value.
type GetValueInput struct {
	Scope string `path:"scope" enum:"local,sync"`
	Key   string `path:"key"`
}

// GetValueOutput wraps a stored value.
type GetValueOutput struct {
	Body struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
}

// GetValue returns a stored value.
func (h *StorageHandler) GetValue(ctx context.Context, input *GetValueInput) (*GetValueOutput, error) {
	scope, err := parseScope(input.Scope)
	if err != nil {
		return nil, err
	}

	value, ok, err := h.kv.Get(ctx, scope, input.Key)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to read value")
	}
	if !ok {
		return nil, huma.Error404NotFound("key not found")
	}

	out := &GetValueOutput{}
	out.Body.Key = input.Key
	out.Body.Value = value
	return out, nil
}

// SetValueInput carries a value write.
type SetValueInput struct {
	Scope string `path:"scope" enum:"local,sync"`
	Key   string `path:"key"`
	Body  struct {
		Value string `json:"value"`
	}
}

// SetValue stores a value. Writes to the well-known token keys fire the
// auth bridge watcher synchronously.
func (h *StorageHandler) SetValue(ctx context.Context, input *SetValueInput) (*struct{}, error) {
	scope, err := parseScope(input.Scope)
	if err != nil {
		return nil, err
	}
	if err := h.kv.Set(ctx, scope, input.Key, input.Body.Value); err != nil {
		return nil, huma.Error500InternalServerError("failed to store value")
	}
	return &struct{}{}, nil
}

// DeleteValueInput identifies a value to delete.
type DeleteValueInput struct {
	Scope string `path:"scope" enum:"local,sync"`
	Key   string `path:"key"`
}

// DeleteValue removes a stored value. Deleting an absent key succeeds.
func (h *StorageHandler) DeleteValue(ctx context.Context, input *DeleteValueInput) (*struct{}, error) {
	scope, err := parseScope(input.Scope)
	if err != nil {
		return nil, err
	}
	if err := h.kv.Delete(ctx, scope, input.Key); err != nil {
		return nil, huma.Error500InternalServerError("failed to delete value")
	}
	return &struct{}{}, nil
}

// ListKeysInput identifies a scope.
type ListKeysInput struct {
	Scope string `path:"scope" enum:"local,sync"`
}

// ListKeysOutput wraps the key listing.
type ListKeysOutput struct {
	Body struct {
		Keys []string `json:"keys"`
	}
}

// ListKeys returns all keys in a scope.
func (h *StorageHandler) ListKeys(ctx context.Context, input *ListKeysInput) (*ListKeysOutput, error) {
	scope, err := parseScope(input.Scope)
	if err != nil {
		return nil, err
	}
	keys, err := h.kv.Keys(ctx, scope)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list keys")
	}
	out := &ListKeysOutput{}
	out.Body.Keys = keys
	return out, nil
}
