package mocks

import (
	"context"
	"errors"
	"testing"

	"github.com/maksimkurb/apimanctl/src/internal/remote"
)

func TestMockCapability_DefaultBehavior(t *testing.T) {
	mock := &MockCapability{}
	ctx := context.Background()

	exists, err := mock.Exists(ctx, remote.Key{Name: "gw1"})
	if err != nil || exists {
		t.Errorf("Expected (false, nil), got (%v, %v)", exists, err)
	}
	if err := mock.Create(ctx, &remote.Gateway{Name: "gw1"}); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if err := mock.Update(ctx, remote.Key{Name: "gw1"}, &remote.Gateway{Name: "gw1"}); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if mock.ExistsCalls != 1 || mock.CreateCalls != 1 || mock.UpdateCalls != 1 {
		t.Errorf("Expected one call each, got %d/%d/%d", mock.ExistsCalls, mock.CreateCalls, mock.UpdateCalls)
	}
}

func TestMockCapability_CustomBehavior(t *testing.T) {
	expectedErr := errors.New("test error")
	mock := &MockCapability{
		CreateFunc: func(ctx context.Context, desired remote.Entity) error {
			return expectedErr
		},
	}

	if err := mock.Create(context.Background(), &remote.Org{Name: "acme"}); err != expectedErr {
		t.Errorf("Expected custom error, got: %v", err)
	}
}

func TestMemoryRemote(t *testing.T) {
	r := NewMemoryRemote()
	caps := r.Capabilities()
	ctx := context.Background()
	org := &remote.Org{Name: "acme"}

	if exists, _ := caps[remote.TypeOrg].Exists(ctx, org.Key()); exists {
		t.Fatal("Expected empty remote")
	}
	if err := caps[remote.TypeOrg].Create(ctx, org); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	var conflict *remote.RemoteError
	if err := caps[remote.TypeOrg].Create(ctx, org); !errors.As(err, &conflict) || conflict.StatusCode != 409 {
		t.Fatalf("Expected conflict on second create, got %v", err)
	}
	if err := caps[remote.TypeOrg].Update(ctx, org.Key(), &remote.Org{Name: "acme", Description: "new"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	stored, _ := r.Get(remote.TypeOrg, "acme")
	if stored.(*remote.Org).Description != "new" {
		t.Errorf("Expected updated description, got %+v", stored)
	}

	err := caps[remote.TypeApi].Update(ctx, remote.Key{Org: "acme", Api: "missing"}, &remote.Api{Org: "acme", Name: "missing"})
	if !remote.IsNotFound(err) {
		t.Errorf("Expected 404 on update of missing entity, got %v", err)
	}

	injected := errors.New("boom")
	r.Fail(remote.TypeGateway, "gw1", OpExists, injected)
	if _, err := caps[remote.TypeGateway].Exists(ctx, remote.Key{Name: "gw1"}); err != injected {
		t.Errorf("Expected injected failure, got %v", err)
	}

	if got := r.CountCalls(remote.TypeOrg, OpCreate); got != 2 {
		t.Errorf("Expected 2 org creates recorded, got %d", got)
	}
	if got := len(r.Calls()); got != 6 {
		t.Errorf("Expected 6 calls recorded, got %d", got)
	}
}
