// Package collection keeps a named remote collection in sync with a local
// cache: lists are fetched fresh when the network allows and served from the
// last good snapshot when it does not; new records are posted to the server
// and prepended locally as soon as the server echoes them back.
package collection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vbonduro/fieldsales/internal/form"
	"github.com/vbonduro/fieldsales/internal/kvstore"
	"github.com/vbonduro/fieldsales/internal/remote"
)

type Source string

const (
	Fresh  Source = "fresh"
	Cached Source = "cached"
)

// ErrBusy is returned when a Create is already in flight on the same store.
var ErrBusy = errors.New("a submission is already in progress")

type Result[T any] struct {
	Items  []T
	Source Source
}

// API is the subset of remote.Client that Store requires.
type API interface {
	Get(ctx context.Context, path, token string) (json.RawMessage, error)
	Post(ctx context.Context, path, token string, body []byte, contentType string) (json.RawMessage, error)
}

// TokenSource supplies the bearer token for each call. "" means anonymous.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Spec describes one remote collection.
type Spec struct {
	// Name is the cache key.
	Name string
	// Path is the list/create endpoint, e.g. /api/purchases/.
	Path    string
	Schema  form.Schema
	Encoder form.Encoder
	// MaxCached bounds the list kept after an optimistic prepend. 0 means unbounded.
	MaxCached int
}

type Store[T any] struct {
	spec   Spec
	api    API
	tokens TokenSource
	kv     kvstore.Store
	now    func() time.Time
	logger *slog.Logger

	mu     sync.Mutex
	raw    []json.RawMessage
	items  []T
	source Source
	loaded bool
	stale  bool
	// unsaved holds created records the cache failed to take. They are kept
	// ahead of the cache when serving it, until a fresh list replaces both.
	unsavedRaw   []json.RawMessage
	unsavedItems []T

	busy atomic.Bool
}

func New[T any](spec Spec, api API, tokens TokenSource, kv kvstore.Store, logger *slog.Logger) *Store[T] {
	return &Store[T]{
		spec:   spec,
		api:    api,
		tokens: tokens,
		kv:     kv,
		now:    time.Now,
		logger: logger.With("collection", spec.Name),
		source: Cached,
	}
}

func (s *Store[T]) Name() string {
	return s.spec.Name
}

// Refresh fetches the collection. A good response replaces the cache
// wholesale; any failure serves the cached snapshot (or an empty list)
// without touching the cache. Refresh never fails.
func (s *Store[T]) Refresh(ctx context.Context) Result[T] {
	raw, items, err := s.fetch(ctx)
	if err == nil {
		if cerr := s.kv.Set(context.WithoutCancel(ctx), s.spec.Name, raw); cerr != nil {
			s.logger.Warn("failed to write cache", "error", cerr)
		}
		elems, _ := splitArray(raw)
		s.replace(elems, items, Fresh)
		s.logger.Debug("refresh complete", "source", Fresh, "count", len(items))
		return s.snapshot()
	}

	s.logger.Warn("refresh failed, serving cache", "error", err)
	elems, items := s.readCache(context.WithoutCancel(ctx))
	s.replace(elems, items, Cached)
	return s.snapshot()
}

// Reconcile refreshes only when a Create has happened since the last
// successful refresh. refreshed reports whether a fetch was attempted.
func (s *Store[T]) Reconcile(ctx context.Context) (res Result[T], refreshed bool) {
	s.mu.Lock()
	stale := s.stale
	s.mu.Unlock()

	if !stale {
		return s.Snapshot(ctx), false
	}
	return s.Refresh(ctx), true
}

// Snapshot returns the in-memory list, loading it from the cache the first
// time, without any network call.
func (s *Store[T]) Snapshot(ctx context.Context) Result[T] {
	s.ensureLoaded(ctx)
	return s.snapshot()
}

// Create validates payload locally, posts it, and prepends the record the
// server returns to the in-memory list and the cache.
func (s *Store[T]) Create(ctx context.Context, payload *form.Payload) (T, error) {
	var zero T
	if !s.busy.CompareAndSwap(false, true) {
		return zero, ErrBusy
	}
	defer s.busy.Store(false)

	if err := s.spec.Schema.Validate(payload); err != nil {
		return zero, err
	}

	p := payload.Clone()
	if f := s.spec.Schema.TimestampField; f != "" {
		p.Set(f, form.FormatTimestamp(s.now()))
	}

	body, contentType, err := s.spec.Encoder.Encode(ctx, s.spec.Schema, p)
	if err != nil {
		return zero, fmt.Errorf("failed to encode %s: %w", s.spec.Name, err)
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.logger.Warn("no token available", "error", err)
	}

	raw, err := s.api.Post(ctx, s.spec.Path, token, body, contentType)
	if err != nil {
		s.logger.Error("create failed", "error", err)
		return zero, err
	}

	var created T
	if err := json.Unmarshal(raw, &created); err != nil {
		s.markStale()
		return zero, fmt.Errorf("%w: %s create: %v", remote.ErrMalformedResponse, s.spec.Name, err)
	}

	s.ensureLoaded(ctx)
	s.mu.Lock()
	s.raw = append([]json.RawMessage{raw}, s.raw...)
	s.items = append([]T{created}, s.items...)
	if n := s.spec.MaxCached; n > 0 && len(s.raw) > n {
		s.raw = s.raw[:n]
		s.items = s.items[:n]
	}
	s.stale = true
	cache, err := json.Marshal(s.raw)
	s.mu.Unlock()

	if err == nil {
		err = s.kv.Set(context.WithoutCancel(ctx), s.spec.Name, cache)
	}
	s.mu.Lock()
	if err != nil {
		s.logger.Warn("failed to write cache", "error", err)
		s.unsavedRaw = append([]json.RawMessage{raw}, s.unsavedRaw...)
		s.unsavedItems = append([]T{created}, s.unsavedItems...)
	} else {
		s.unsavedRaw, s.unsavedItems = nil, nil
	}
	s.mu.Unlock()

	s.logger.Info("record created")
	return created, nil
}

// Invalidate marks the store stale so the next Reconcile refetches it. Used
// when a write elsewhere changes this collection on the server.
func (s *Store[T]) Invalidate() {
	s.markStale()
}

// Clear drops the cached snapshot and the in-memory list.
func (s *Store[T]) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, s.spec.Name); err != nil {
		return fmt.Errorf("failed to clear %s: %w", s.spec.Name, err)
	}
	s.mu.Lock()
	s.raw, s.items, s.source, s.loaded, s.stale = nil, nil, Cached, false, false
	s.unsavedRaw, s.unsavedItems = nil, nil
	s.mu.Unlock()
	return nil
}

func (s *Store[T]) fetch(ctx context.Context) (json.RawMessage, []T, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.logger.Warn("no token available", "error", err)
	}

	raw, err := s.api.Get(ctx, s.spec.Path, token)
	if err != nil {
		return nil, nil, err
	}
	items, err := decode[T](raw)
	if err != nil {
		return nil, nil, err
	}
	return raw, items, nil
}

func (s *Store[T]) readCache(ctx context.Context) ([]json.RawMessage, []T) {
	data, ok, err := s.kv.Get(ctx, s.spec.Name)
	if err != nil {
		s.logger.Warn("failed to read cache", "error", err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}

	elems, err := splitArray(data)
	if err != nil {
		s.logger.Warn("ignoring unreadable cache", "error", err)
		return nil, nil
	}
	items, err := decode[T](data)
	if err != nil {
		s.logger.Warn("ignoring unreadable cache", "error", err)
		return nil, nil
	}
	return elems, items
}

func (s *Store[T]) ensureLoaded(ctx context.Context) {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if loaded {
		return
	}

	elems, items := s.readCache(context.WithoutCancel(ctx))
	s.mu.Lock()
	if !s.loaded {
		s.raw, s.items, s.loaded = elems, items, true
	}
	s.mu.Unlock()
}

func (s *Store[T]) replace(elems []json.RawMessage, items []T, src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if src == Fresh {
		s.stale = false
		s.unsavedRaw, s.unsavedItems = nil, nil
	} else if len(s.unsavedRaw) > 0 {
		elems = append(append([]json.RawMessage{}, s.unsavedRaw...), elems...)
		items = append(append([]T{}, s.unsavedItems...), items...)
	}
	s.raw, s.items, s.source, s.loaded = elems, items, src, true
}

func (s *Store[T]) markStale() {
	s.mu.Lock()
	s.stale = true
	s.mu.Unlock()
}

func (s *Store[T]) snapshot() Result[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]T, len(s.items))
	copy(items, s.items)
	return Result[T]{Items: items, Source: s.source}
}

// splitArray checks that data is a JSON array and returns its elements.
func splitArray(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", remote.ErrMalformedResponse)
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", remote.ErrMalformedResponse, err)
	}
	return elems, nil
}

func decode[T any](data []byte) ([]T, error) {
	if _, err := splitArray(data); err != nil {
		return nil, err
	}
	items := []T{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", remote.ErrMalformedResponse, err)
	}
	return items, nil
}
