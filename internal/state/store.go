// Package state provides a typed state container: pure reducers apply
// actions, and an injected Persister saves every accepted state.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"duka/internal/ports"
)

// Reducer computes the next state. It must not modify s.
type Reducer[S, A any] func(s S, action A) (S, error)

// Persister loads and saves the whole state.
type Persister[S any] interface {
	// Load returns found=false when nothing has been saved yet.
	Load(ctx context.Context) (s S, found bool, err error)
	Save(ctx context.Context, s S) error
}

// Store holds one state value. Dispatch is serialized; reads get a copy.
type Store[S, A any] struct {
	mu      sync.RWMutex
	state   S
	reduce  Reducer[S, A]
	persist Persister[S]
	clone   func(S) S
}

// Options configure Open.
type Options[S, A any] struct {
	Reducer   Reducer[S, A]
	Persister Persister[S]
	// Seed builds the initial state when the persister has none. The seed is
	// saved right away so later opens see the same data.
	Seed func() S
	// Clone deep-copies a state. Required when S holds slices or maps.
	Clone func(S) S
}

// Open loads the persisted state or seeds a fresh one.
func Open[S, A any](ctx context.Context, opts Options[S, A]) (*Store[S, A], error) {
	if opts.Reducer == nil {
		return nil, fmt.Errorf("state: reducer is required")
	}
	if opts.Clone == nil {
		opts.Clone = func(s S) S { return s }
	}
	st := &Store[S, A]{reduce: opts.Reducer, persist: opts.Persister, clone: opts.Clone}

	if st.persist == nil {
		if opts.Seed != nil {
			st.state = opts.Seed()
		}
		return st, nil
	}

	loaded, found, err := st.persist.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("state: load: %w", err)
	}
	if found {
		st.state = loaded
		return st, nil
	}
	if opts.Seed != nil {
		st.state = opts.Seed()
		if err := st.persist.Save(ctx, st.state); err != nil {
			return nil, fmt.Errorf("state: save seed: %w", err)
		}
	}
	return st, nil
}

// State returns a copy of the current state.
func (st *Store[S, A]) State() S {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.clone(st.state)
}

// Dispatch applies action and returns copies of the state before and after.
// The new state replaces the old one only once it has been persisted.
func (st *Store[S, A]) Dispatch(ctx context.Context, action A) (before, after S, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	next, err := st.reduce(st.clone(st.state), action)
	if err != nil {
		return before, after, err
	}
	if st.persist != nil {
		if err := st.persist.Save(ctx, next); err != nil {
			return before, after, fmt.Errorf("state: save: %w", err)
		}
	}
	before = st.clone(st.state)
	st.state = next
	return before, st.clone(next), nil
}

// KVPersister stores the state as JSON under a single key.
type KVPersister[S any] struct {
	kv  ports.KVStore
	key string
}

// NewKVPersister returns a persister writing to key in kv.
func NewKVPersister[S any](kv ports.KVStore, key string) *KVPersister[S] {
	return &KVPersister[S]{kv: kv, key: key}
}

func (p *KVPersister[S]) Load(ctx context.Context) (S, bool, error) {
	var s S
	raw, found, err := p.kv.Get(ctx, p.key)
	if err != nil || !found {
		return s, false, err
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return s, false, fmt.Errorf("decode %s: %w", p.key, err)
	}
	return s, true, nil
}

func (p *KVPersister[S]) Save(ctx context.Context, s S) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode %s: %w", p.key, err)
	}
	return p.kv.Set(ctx, p.key, raw)
}
