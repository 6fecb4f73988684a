package apiman

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/maksimkurb/apimanctl/src/internal/log"
	"github.com/maksimkurb/apimanctl/src/internal/remote"
)

func unexpectedEntity(want remote.EntityType, got remote.Entity) error {
	return fmt.Errorf("expected %s entity, got %T", want, got)
}

type gateways struct{ c *Client }

func (g *gateways) Exists(ctx context.Context, key remote.Key) (bool, error) {
	return g.c.exists(ctx, g.c.layout.gateway(key.Name))
}

func (g *gateways) Create(ctx context.Context, desired remote.Entity) error {
	gw, ok := desired.(*remote.Gateway)
	if !ok {
		return unexpectedEntity(remote.TypeGateway, desired)
	}
	bean, err := newGatewayBean(gw)
	if err != nil {
		return err
	}
	bean.Name = gw.Name
	return g.c.do(ctx, http.MethodPost, g.c.layout.gateways(), bean, nil)
}

func (g *gateways) Update(ctx context.Context, key remote.Key, desired remote.Entity) error {
	gw, ok := desired.(*remote.Gateway)
	if !ok {
		return unexpectedEntity(remote.TypeGateway, desired)
	}
	bean, err := newGatewayBean(gw)
	if err != nil {
		return err
	}
	return g.c.do(ctx, http.MethodPut, g.c.layout.gateway(key.Name), bean, nil)
}

func newGatewayBean(gw *remote.Gateway) (*gatewayBean, error) {
	cfg, err := json.Marshal(gatewayConfiguration{
		Endpoint: gw.Endpoint,
		Username: gw.Username,
		Password: gw.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode gateway configuration: %w", err)
	}
	return &gatewayBean{
		Description:   gw.Description,
		Type:          gw.GatewayType,
		Configuration: string(cfg),
	}, nil
}

const defaultPluginType = "war"

// plugins are immutable once installed, so Update does nothing.
type plugins struct{ c *Client }

func (p *plugins) Exists(ctx context.Context, key remote.Key) (bool, error) {
	installed, err := fetchAndDeserialize[[]pluginBean](ctx, p.c, p.c.layout.plugins())
	if err != nil {
		return false, err
	}
	for _, bean := range installed {
		if bean.Type == "" {
			bean.Type = defaultPluginType
		}
		coords := (&remote.Plugin{
			GroupID:    bean.GroupID,
			ArtifactID: bean.ArtifactID,
			Version:    bean.Version,
			Classifier: bean.Classifier,
			PluginType: bean.Type,
		}).Coordinates()
		if coords == key.Name {
			return true, nil
		}
	}
	return false, nil
}

func (p *plugins) Create(ctx context.Context, desired remote.Entity) error {
	pl, ok := desired.(*remote.Plugin)
	if !ok {
		return unexpectedEntity(remote.TypePlugin, desired)
	}
	return p.c.do(ctx, http.MethodPost, p.c.layout.plugins(), pluginBean{
		GroupID:    pl.GroupID,
		ArtifactID: pl.ArtifactID,
		Version:    pl.Version,
		Classifier: pl.Classifier,
		Type:       pl.PluginType,
	}, nil)
}

func (p *plugins) Update(ctx context.Context, key remote.Key, desired remote.Entity) error {
	return nil
}

type orgs struct{ c *Client }

func (o *orgs) Exists(ctx context.Context, key remote.Key) (bool, error) {
	return o.c.exists(ctx, o.c.layout.org(key.Org))
}

func (o *orgs) Create(ctx context.Context, desired remote.Entity) error {
	org, ok := desired.(*remote.Org)
	if !ok {
		return unexpectedEntity(remote.TypeOrg, desired)
	}
	return o.c.do(ctx, http.MethodPost, o.c.layout.orgs(), orgBean{Name: org.Name, Description: org.Description}, nil)
}

func (o *orgs) Update(ctx context.Context, key remote.Key, desired remote.Entity) error {
	org, ok := desired.(*remote.Org)
	if !ok {
		return unexpectedEntity(remote.TypeOrg, desired)
	}
	return o.c.do(ctx, http.MethodPut, o.c.layout.org(key.Org), orgBean{Description: org.Description}, nil)
}

type apis struct{ c *Client }

func (a *apis) Exists(ctx context.Context, key remote.Key) (bool, error) {
	return a.c.exists(ctx, a.c.layout.api(key.Org, key.Api))
}

func (a *apis) Create(ctx context.Context, desired remote.Entity) error {
	api, ok := desired.(*remote.Api)
	if !ok {
		return unexpectedEntity(remote.TypeApi, desired)
	}
	return a.c.do(ctx, http.MethodPost, a.c.layout.apisOf(api.Org), apiBean{Name: api.Name, Description: api.Description}, nil)
}

func (a *apis) Update(ctx context.Context, key remote.Key, desired remote.Entity) error {
	api, ok := desired.(*remote.Api)
	if !ok {
		return unexpectedEntity(remote.TypeApi, desired)
	}
	return a.c.do(ctx, http.MethodPut, a.c.layout.api(key.Org, key.Api), apiBean{Description: api.Description}, nil)
}

// versions are created empty and then configured with a PUT. The server
// rejects configuration changes once a version is published, so Update leaves
// published versions as they are.
type versions struct{ c *Client }

func (v *versions) Exists(ctx context.Context, key remote.Key) (bool, error) {
	return v.c.exists(ctx, v.c.layout.version(key.Org, key.Api, key.Version))
}

func (v *versions) Create(ctx context.Context, desired remote.Entity) error {
	ver, ok := desired.(*remote.ApiVersion)
	if !ok {
		return unexpectedEntity(remote.TypeApiVersion, desired)
	}
	if err := v.c.do(ctx, http.MethodPost, v.c.layout.versions(ver.Org, ver.Api), versionBean{Version: ver.Version}, nil); err != nil {
		return err
	}
	return v.configure(ctx, ver.Key(), ver)
}

func (v *versions) Update(ctx context.Context, key remote.Key, desired remote.Entity) error {
	ver, ok := desired.(*remote.ApiVersion)
	if !ok {
		return unexpectedEntity(remote.TypeApiVersion, desired)
	}
	published, err := v.c.isPublished(ctx, key.Org, key.Api, key.Version)
	if err != nil {
		return err
	}
	if published {
		log.Infof("Version %s/%s/%s is published, leaving its configuration unchanged", key.Org, key.Api, key.Version)
		return nil
	}
	return v.configure(ctx, key, ver)
}

func (v *versions) configure(ctx context.Context, key remote.Key, ver *remote.ApiVersion) error {
	body := map[string]any{
		"endpoint":              ver.EndpointURL,
		"endpointType":          ver.EndpointType,
		v.c.layout.publicField: ver.Public,
		"gateways":              []gatewayRef{{GatewayID: ver.Gateway}},
	}
	if len(ver.EndpointProperties) > 0 {
		body["endpointProperties"] = ver.EndpointProperties
	}
	return v.c.do(ctx, http.MethodPut, v.c.layout.version(key.Org, key.Api, key.Version), body, nil)
}

// isPublished reports whether the version is published. Only a positive
// answer is cached.
func (c *Client) isPublished(ctx context.Context, org, api, version string) (bool, error) {
	cacheKey := org + "/" + api + "/" + version
	if c.cache.IsPublished(cacheKey) {
		return true, nil
	}
	bean, err := fetchAndDeserialize[versionBean](ctx, c, c.layout.version(org, api, version))
	if err != nil {
		return false, err
	}
	if bean.Status != statusPublished {
		return false, nil
	}
	c.cache.SetPublished(cacheKey)
	return true, nil
}

// policies are matched by definition id and ordinal among policies of the
// same definition. Policies of a published version are never reconfigured.
type policies struct{ c *Client }

func (p *policies) find(ctx context.Context, key remote.Key) (int64, bool, error) {
	list, err := fetchAndDeserialize[[]policySummary](ctx, p.c, p.c.layout.policies(key.Org, key.Api, key.Version))
	if err != nil {
		return 0, false, err
	}
	seen := 0
	for _, s := range list {
		if s.PolicyDefinitionID != key.Name {
			continue
		}
		seen++
		if seen == key.Ordinal {
			p.c.cache.SetPolicyID(key.String(), s.ID)
			return s.ID, true, nil
		}
	}
	return 0, false, nil
}

func (p *policies) Exists(ctx context.Context, key remote.Key) (bool, error) {
	_, found, err := p.find(ctx, key)
	return found, err
}

func (p *policies) Create(ctx context.Context, desired remote.Entity) error {
	pol, ok := desired.(*remote.Policy)
	if !ok {
		return unexpectedEntity(remote.TypePolicy, desired)
	}
	cfg, err := encodePolicyConfig(pol)
	if err != nil {
		return err
	}

	var created policySummary
	bean := newPolicyBean{DefinitionID: pol.DefinitionID, Configuration: cfg}
	if err := p.c.do(ctx, http.MethodPost, p.c.layout.policies(pol.Org, pol.Api, pol.Version), bean, &created); err != nil {
		return err
	}
	if created.ID != 0 {
		p.c.cache.SetPolicyID(pol.Key().String(), created.ID)
	}
	return nil
}

func (p *policies) Update(ctx context.Context, key remote.Key, desired remote.Entity) error {
	pol, ok := desired.(*remote.Policy)
	if !ok {
		return unexpectedEntity(remote.TypePolicy, desired)
	}
	cfg, err := encodePolicyConfig(pol)
	if err != nil {
		return err
	}
	published, err := p.c.isPublished(ctx, key.Org, key.Api, key.Version)
	if err != nil {
		return err
	}
	if published {
		log.Infof("Version %s/%s/%s is published, leaving policy %s unchanged", key.Org, key.Api, key.Version, key)
		return nil
	}

	id, ok := p.c.cache.GetPolicyID(key.String())
	if !ok {
		var found bool
		if id, found, err = p.find(ctx, key); err != nil {
			return err
		}
		if !found {
			return &remote.RemoteError{
				Op:         http.MethodPut + " " + p.c.layout.policies(key.Org, key.Api, key.Version),
				StatusCode: http.StatusNotFound,
				Message:    fmt.Sprintf("policy %s not found", key),
			}
		}
	}
	return p.c.do(ctx, http.MethodPut, p.c.layout.policy(key.Org, key.Api, key.Version, id), updatePolicyBean{Configuration: cfg}, nil)
}

func encodePolicyConfig(pol *remote.Policy) (string, error) {
	if pol.Config == nil {
		return "{}", nil
	}
	data, err := json.Marshal(pol.Config)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s configuration: %w", pol.DefinitionID, err)
	}
	return string(data), nil
}

// publications exist when the version status is Published. Publishing is
// one-way, so Update does nothing.
type publications struct{ c *Client }

func (p *publications) Exists(ctx context.Context, key remote.Key) (bool, error) {
	return p.c.isPublished(ctx, key.Org, key.Api, key.Version)
}

func (p *publications) Create(ctx context.Context, desired remote.Entity) error {
	pub, ok := desired.(*remote.Publication)
	if !ok {
		return unexpectedEntity(remote.TypePublication, desired)
	}
	return p.c.do(ctx, http.MethodPost, p.c.layout.actions(), actionBean{
		Type:           p.c.layout.publishAction,
		OrganizationID: pub.Org,
		EntityID:       pub.Api,
		EntityVersion:  pub.Version,
	}, nil)
}

func (p *publications) Update(ctx context.Context, key remote.Key, desired remote.Entity) error {
	return nil
}
