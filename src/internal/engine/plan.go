package engine

import (
	"github.com/maksimkurb/apimanctl/src/internal/declaration"
	"github.com/maksimkurb/apimanctl/src/internal/remote"
)

// node is one planned upsert.
type node struct {
	index  int
	entity remote.Entity
	// confirmOnly nodes are probed and never written.
	confirmOnly bool
	// deps must be Applied before this node is attempted.
	deps []*node
	// after must be final before this node starts, whatever their outcome.
	after []*node
	done  chan struct{}
}

// plan holds the nodes of one run in processing order. Every dependency of a
// node precedes it.
type plan struct {
	nodes []*node
}

func (p *plan) add(entity remote.Entity, deps ...*node) *node {
	n := &node{
		index:  len(p.nodes),
		entity: entity,
		deps:   deps,
		done:   make(chan struct{}),
	}
	p.nodes = append(p.nodes, n)
	return n
}

// buildPlan converts the declaration into upsert nodes, level by level.
func buildPlan(d *declaration.Declaration) *plan {
	p := &plan{}
	if d == nil {
		return p
	}

	// 1. Gateways and plugins are independent of everything else
	gateways := make(map[string]*node)
	for _, gw := range d.Gateways() {
		n := p.add(gatewayEntity(gw))
		n.confirmOnly = bool(gw.Existing)
		gateways[gw.Name] = n
	}
	for _, pl := range d.Plugins() {
		p.add(pluginEntity(pl))
	}

	if d.Org == nil {
		return p
	}

	// 2. Organization
	org := p.add(&remote.Org{Name: d.Org.Name, Description: d.Org.Description})

	// 3. APIs
	apis := make([]*node, len(d.Org.Apis))
	for i, api := range d.Org.Apis {
		apis[i] = p.add(&remote.Api{Org: d.Org.Name, Name: api.Name, Description: api.Description}, org)
	}

	// 4. Versions depend on their API and their gateway
	type versionRef struct {
		node    *node
		version *declaration.ApiVersion
		api     *declaration.Api
	}
	var versions []versionRef
	for i, api := range d.Org.Apis {
		for _, v := range api.Versions {
			deps := []*node{apis[i]}
			if gw, ok := gateways[v.Gateway]; ok {
				deps = append(deps, gw)
			}
			n := p.add(versionEntity(d.Org.Name, api, v), deps...)
			versions = append(versions, versionRef{node: n, version: v, api: api})
		}
	}

	// 5. Policies keep their chain order inside a version
	policies := make(map[*node][]*node)
	for _, ref := range versions {
		ordinals := make(map[string]int)
		var previous *node
		for _, pol := range ref.version.Policies {
			ordinals[pol.Type]++
			n := p.add(&remote.Policy{
				Org:          d.Org.Name,
				Api:          ref.api.Name,
				Version:      string(ref.version.Version),
				DefinitionID: pol.Type,
				Ordinal:      ordinals[pol.Type],
				Config:       pol.Config,
			}, ref.node)
			if previous != nil {
				n.after = []*node{previous}
			}
			previous = n
			policies[ref.node] = append(policies[ref.node], n)
		}
	}

	// 6. Publication waits for the version and all of its policies
	for _, ref := range versions {
		if !ref.version.Published {
			continue
		}
		deps := append([]*node{ref.node}, policies[ref.node]...)
		p.add(&remote.Publication{Org: d.Org.Name, Api: ref.api.Name, Version: string(ref.version.Version)}, deps...)
	}

	return p
}

func gatewayEntity(gw *declaration.Gateway) *remote.Gateway {
	e := &remote.Gateway{
		Name:        gw.Name,
		Description: gw.Description,
		GatewayType: gw.Type,
	}
	if gw.Config != nil {
		e.Endpoint = gw.Config.Endpoint
		e.Username = gw.Config.Username
		e.Password = gw.Config.Password
	}
	return e
}

func pluginEntity(pl *declaration.Plugin) *remote.Plugin {
	return &remote.Plugin{
		GroupID:    pl.GroupID,
		ArtifactID: pl.ArtifactID,
		Version:    string(pl.Version),
		Classifier: pl.Classifier,
		PluginType: pl.Type,
	}
}

func versionEntity(org string, api *declaration.Api, v *declaration.ApiVersion) *remote.ApiVersion {
	e := &remote.ApiVersion{
		Org:     org,
		Api:     api.Name,
		Version: string(v.Version),
		Gateway: v.Gateway,
	}
	if v.Endpoint != nil {
		e.EndpointURL = v.Endpoint.URL
		e.EndpointType = v.Endpoint.Type
		e.Public = bool(v.Endpoint.Public)
		if len(v.Endpoint.Properties) > 0 {
			e.EndpointProperties = make(map[string]string, len(v.Endpoint.Properties))
			for k, val := range v.Endpoint.Properties {
				e.EndpointProperties[k] = string(val)
			}
		}
	}
	return e
}
