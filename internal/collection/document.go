package collection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/vbonduro/fieldsales/internal/kvstore"
	"github.com/vbonduro/fieldsales/internal/remote"
)

// Document is the single-object counterpart of Store, for endpoints such as
// the sales summary that return one JSON object instead of a list.
type Document[T any] struct {
	name   string
	path   string
	api    API
	tokens TokenSource
	kv     kvstore.Store
	logger *slog.Logger
}

type DocResult[T any] struct {
	// Value is nil when the fetch failed and nothing was cached.
	Value  *T
	Source Source
}

func NewDocument[T any](name, path string, api API, tokens TokenSource, kv kvstore.Store, logger *slog.Logger) *Document[T] {
	return &Document[T]{
		name:   name,
		path:   path,
		api:    api,
		tokens: tokens,
		kv:     kv,
		logger: logger.With("collection", name),
	}
}

func (d *Document[T]) Name() string {
	return d.name
}

// Refresh follows the same rules as Store.Refresh: cache on success, serve
// the cache on any failure, never return an error.
func (d *Document[T]) Refresh(ctx context.Context) DocResult[T] {
	value, raw, err := d.fetch(ctx)
	if err == nil {
		if cerr := d.kv.Set(context.WithoutCancel(ctx), d.name, raw); cerr != nil {
			d.logger.Warn("failed to write cache", "error", cerr)
		}
		return DocResult[T]{Value: value, Source: Fresh}
	}

	d.logger.Warn("refresh failed, serving cache", "error", err)
	var cached T
	ok, cerr := kvstore.GetJSON(context.WithoutCancel(ctx), d.kv, d.name, &cached)
	if cerr != nil {
		d.logger.Warn("ignoring unreadable cache", "error", cerr)
		return DocResult[T]{Source: Cached}
	}
	if !ok {
		return DocResult[T]{Source: Cached}
	}
	return DocResult[T]{Value: &cached, Source: Cached}
}

func (d *Document[T]) Clear(ctx context.Context) error {
	if err := d.kv.Remove(ctx, d.name); err != nil {
		return fmt.Errorf("failed to clear %s: %w", d.name, err)
	}
	return nil
}

func (d *Document[T]) fetch(ctx context.Context) (*T, json.RawMessage, error) {
	token, err := d.tokens.Token(ctx)
	if err != nil {
		d.logger.Warn("no token available", "error", err)
	}

	raw, err := d.api.Get(ctx, d.path, token)
	if err != nil {
		return nil, nil, err
	}

	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, nil, fmt.Errorf("%w: expected a JSON object", remote.ErrMalformedResponse)
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", remote.ErrMalformedResponse, err)
	}
	return &value, raw, nil
}
