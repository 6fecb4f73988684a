package remote

type Gateway struct {
	Name        string
	Description string
	GatewayType string
	Endpoint    string
	Username    string
	Password    string
}

func (g *Gateway) Type() EntityType { return TypeGateway }
func (g *Gateway) Key() Key         { return Key{Name: g.Name} }

type Plugin struct {
	GroupID    string
	ArtifactID string
	Version    string
	Classifier string
	PluginType string
}

func (p *Plugin) Type() EntityType { return TypePlugin }
func (p *Plugin) Key() Key         { return Key{Name: p.Coordinates()} }

// Coordinates returns groupId:artifactId[:type[:classifier]]:version.
func (p *Plugin) Coordinates() string {
	s := p.GroupID + ":" + p.ArtifactID
	if p.PluginType != "" || p.Classifier != "" {
		s += ":" + p.PluginType
	}
	if p.Classifier != "" {
		s += ":" + p.Classifier
	}
	return s + ":" + p.Version
}

type Org struct {
	Name        string
	Description string
}

func (o *Org) Type() EntityType { return TypeOrg }
func (o *Org) Key() Key         { return Key{Org: o.Name} }

type Api struct {
	Org         string
	Name        string
	Description string
}

func (a *Api) Type() EntityType { return TypeApi }
func (a *Api) Key() Key         { return Key{Org: a.Org, Api: a.Name} }

type ApiVersion struct {
	Org                string
	Api                string
	Version            string
	Gateway            string
	EndpointURL        string
	EndpointType       string
	Public             bool
	EndpointProperties map[string]string
}

func (v *ApiVersion) Type() EntityType { return TypeApiVersion }
func (v *ApiVersion) Key() Key         { return Key{Org: v.Org, Api: v.Api, Version: v.Version} }

type Policy struct {
	Org          string
	Api          string
	Version      string
	DefinitionID string
	// Ordinal is 1-based among policies with the same DefinitionID.
	Ordinal int
	Config  map[string]any
}

func (p *Policy) Type() EntityType { return TypePolicy }
func (p *Policy) Key() Key {
	return Key{Org: p.Org, Api: p.Api, Version: p.Version, Name: p.DefinitionID, Ordinal: p.Ordinal}
}

// Publication makes an API version available on its gateway.
type Publication struct {
	Org     string
	Api     string
	Version string
}

func (p *Publication) Type() EntityType { return TypePublication }
func (p *Publication) Key() Key         { return Key{Org: p.Org, Api: p.Api, Version: p.Version} }
