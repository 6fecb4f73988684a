// Package mocks provides mock implementations for testing.
//
// This package should ONLY be imported in test files (_test.go).
package mocks

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/maksimkurb/apimanctl/src/internal/remote"
)

// MockCapability is a mock implementation of remote.Capability.
//
// It allows tests to provide custom behavior for each method through function
// fields. If a function field is nil, Exists reports false and the other
// methods succeed. Safe for concurrent use.
type MockCapability struct {
	// ExistsFunc is called by Exists if not nil
	ExistsFunc func(ctx context.Context, key remote.Key) (bool, error)

	// CreateFunc is called by Create if not nil
	CreateFunc func(ctx context.Context, desired remote.Entity) error

	// UpdateFunc is called by Update if not nil
	UpdateFunc func(ctx context.Context, key remote.Key, desired remote.Entity) error

	mu sync.Mutex

	// Track calls for verification in tests
	ExistsCalls int
	CreateCalls int
	UpdateCalls int
}

// Exists probes for the entity.
func (m *MockCapability) Exists(ctx context.Context, key remote.Key) (bool, error) {
	m.mu.Lock()
	m.ExistsCalls++
	m.mu.Unlock()
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, key)
	}
	return false, nil
}

// Create creates the entity.
func (m *MockCapability) Create(ctx context.Context, desired remote.Entity) error {
	m.mu.Lock()
	m.CreateCalls++
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, desired)
	}
	return nil
}

// Update updates the entity.
func (m *MockCapability) Update(ctx context.Context, key remote.Key, desired remote.Entity) error {
	m.mu.Lock()
	m.UpdateCalls++
	m.mu.Unlock()
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, desired)
	}
	return nil
}

// NewMockCapabilities returns one fresh MockCapability per entity type.
func NewMockCapabilities() (remote.Capabilities, map[remote.EntityType]*MockCapability) {
	caps := make(remote.Capabilities, len(remote.AllTypes))
	mocks := make(map[remote.EntityType]*MockCapability, len(remote.AllTypes))
	for _, t := range remote.AllTypes {
		m := &MockCapability{}
		caps[t] = m
		mocks[t] = m
	}
	return caps, mocks
}

// Op names a capability primitive.
type Op string

const (
	OpExists Op = "exists"
	OpCreate Op = "create"
	OpUpdate Op = "update"
)

// Call is one recorded capability invocation.
type Call struct {
	Op   Op
	Type remote.EntityType
	Key  string
}

// MemoryRemote is an in-memory management server.
//
// Create on an existing entity fails with 409 and Update on a missing one
// with 404, like the real server. Failures can be injected per entity and
// operation with Fail.
type MemoryRemote struct {
	mu       sync.Mutex
	entities map[remote.EntityType]map[string]remote.Entity
	failures map[string]error
	calls    []Call
}

// NewMemoryRemote creates an empty in-memory server.
func NewMemoryRemote() *MemoryRemote {
	return &MemoryRemote{
		entities: make(map[remote.EntityType]map[string]remote.Entity),
		failures: make(map[string]error),
	}
}

// Seed stores entities as if they had been created earlier.
func (r *MemoryRemote) Seed(entities ...remote.Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entities {
		r.store(e)
	}
}

// Fail makes op on the entity identified by key return err.
func (r *MemoryRemote) Fail(t remote.EntityType, key string, op Op, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[failureKey(t, key, op)] = err
}

// Get returns the stored entity.
func (r *MemoryRemote) Get(t remote.EntityType, key string) (remote.Entity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entities[t][key]
	return e, ok
}

// Count returns the number of stored entities of type t.
func (r *MemoryRemote) Count(t remote.EntityType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entities[t])
}

// Calls returns every recorded invocation in order.
func (r *MemoryRemote) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CountCalls counts recorded invocations of op, across all types when t is empty.
func (r *MemoryRemote) CountCalls(t remote.EntityType, op Op) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op && (t == "" || c.Type == t) {
			n++
		}
	}
	return n
}

// Capabilities returns a capability per entity type backed by r.
func (r *MemoryRemote) Capabilities() remote.Capabilities {
	caps := make(remote.Capabilities, len(remote.AllTypes))
	for _, t := range remote.AllTypes {
		caps[t] = &memoryCapability{remote: r, entityType: t}
	}
	return caps
}

func (r *MemoryRemote) store(e remote.Entity) {
	byKey, ok := r.entities[e.Type()]
	if !ok {
		byKey = make(map[string]remote.Entity)
		r.entities[e.Type()] = byKey
	}
	byKey[e.Key().String()] = e
}

// record must be called with mu held.
func (r *MemoryRemote) record(op Op, t remote.EntityType, key string) error {
	r.calls = append(r.calls, Call{Op: op, Type: t, Key: key})
	return r.failures[failureKey(t, key, op)]
}

func failureKey(t remote.EntityType, key string, op Op) string {
	return fmt.Sprintf("%s|%s|%s", t, key, op)
}

type memoryCapability struct {
	remote     *MemoryRemote
	entityType remote.EntityType
}

func (c *memoryCapability) Exists(ctx context.Context, key remote.Key) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r := c.remote
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(OpExists, c.entityType, key.String()); err != nil {
		return false, err
	}
	_, ok := r.entities[c.entityType][key.String()]
	return ok, nil
}

func (c *memoryCapability) Create(ctx context.Context, desired remote.Entity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r := c.remote
	key := desired.Key().String()
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(OpCreate, c.entityType, key); err != nil {
		return err
	}
	if _, ok := r.entities[c.entityType][key]; ok {
		return &remote.RemoteError{Op: "create " + string(c.entityType), StatusCode: http.StatusConflict, Message: key + " already exists"}
	}
	r.store(desired)
	return nil
}

func (c *memoryCapability) Update(ctx context.Context, key remote.Key, desired remote.Entity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r := c.remote
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(OpUpdate, c.entityType, key.String()); err != nil {
		return err
	}
	if _, ok := r.entities[c.entityType][key.String()]; !ok {
		return &remote.RemoteError{Op: "update " + string(c.entityType), StatusCode: http.StatusNotFound, Message: key.String() + " not found"}
	}
	r.store(desired)
	return nil
}
