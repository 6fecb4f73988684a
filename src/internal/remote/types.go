package remote

import (
	"context"
	"fmt"
	"strings"
)

// EntityType tags a kind of remote entity.
type EntityType string

const (
	TypeGateway     EntityType = "gateway"
	TypePlugin      EntityType = "plugin"
	TypeOrg         EntityType = "org"
	TypeApi         EntityType = "api"
	TypeApiVersion  EntityType = "api_version"
	TypePolicy      EntityType = "policy"
	TypePublication EntityType = "publication"
)

// AllTypes lists every entity type in processing order.
var AllTypes = []EntityType{
	TypeGateway,
	TypePlugin,
	TypeOrg,
	TypeApi,
	TypeApiVersion,
	TypePolicy,
	TypePublication,
}

// Key is the natural key of a remote entity. Only the fields relevant to the
// entity type are set: gateways and plugins use Name, policies use the full
// version path plus Name (definition id) and a 1-based Ordinal among policies
// of the same definition in that version.
type Key struct {
	Org     string
	Api     string
	Version string
	Name    string
	Ordinal int
}

func (k Key) String() string {
	var parts []string
	for _, p := range []string{k.Org, k.Api, k.Version, k.Name} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	s := strings.Join(parts, "/")
	if k.Ordinal > 0 {
		s = fmt.Sprintf("%s#%d", s, k.Ordinal)
	}
	return s
}

// Entity is the desired state of one remote object.
type Entity interface {
	Type() EntityType
	Key() Key
}

// Capability performs the upsert primitives for one entity type.
type Capability interface {
	// Exists reports whether the entity identified by key is present.
	Exists(ctx context.Context, key Key) (bool, error)
	// Create creates the entity with its full desired state.
	Create(ctx context.Context, desired Entity) error
	// Update replaces the state of an existing entity.
	Update(ctx context.Context, key Key, desired Entity) error
}

// Capabilities maps each entity type to the capability serving it.
type Capabilities map[EntityType]Capability

// Missing returns the types from AllTypes without a capability.
func (c Capabilities) Missing() []EntityType {
	var missing []EntityType
	for _, t := range AllTypes {
		if c[t] == nil {
			missing = append(missing, t)
		}
	}
	return missing
}
