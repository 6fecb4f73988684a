package declaration

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultGatewayType  = "REST"
	DefaultEndpointType = "rest"
	DefaultPluginType   = "war"
)

// Declaration is the root of a loaded document. It is built once by Load and
// must be treated as read-only afterwards.
type Declaration struct {
	System *System `json:"system,omitempty" yaml:"system,omitempty"`
	Org    *Org    `json:"org,omitempty" yaml:"org,omitempty"`

	checksum string
}

type System struct {
	// Gateways are applied first; their relative order is irrelevant.
	Gateways []*Gateway `json:"gateways,omitempty" yaml:"gateways,omitempty"`
	// Plugins are identified by their coordinates.
	Plugins []*Plugin `json:"plugins,omitempty" yaml:"plugins,omitempty"`
}

type Gateway struct {
	Name        string `json:"name" yaml:"name" validate:"required"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Type is the gateway flavour, only REST is supported.
	Type string `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,oneof=REST"`
	// Existing marks a gateway that is referenced but never created or updated.
	Existing Bool           `json:"existing,omitempty" yaml:"existing,omitempty"`
	Config   *GatewayConfig `json:"config,omitempty" yaml:"config,omitempty" validate:"required_if=Existing false"`
}

type GatewayConfig struct {
	Endpoint string `json:"endpoint" yaml:"endpoint" validate:"required,url"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
}

type Plugin struct {
	GroupID    string `json:"groupId" yaml:"groupId" validate:"required"`
	ArtifactID string `json:"artifactId" yaml:"artifactId" validate:"required"`
	Version    Text   `json:"version" yaml:"version" validate:"required"`
	Classifier string `json:"classifier,omitempty" yaml:"classifier,omitempty"`
	Type       string `json:"type,omitempty" yaml:"type,omitempty"`
}

// Coordinates returns groupId:artifactId[:type[:classifier]]:version.
func (p *Plugin) Coordinates() string {
	parts := []string{p.GroupID, p.ArtifactID}
	if p.Type != "" || p.Classifier != "" {
		parts = append(parts, p.Type)
	}
	if p.Classifier != "" {
		parts = append(parts, p.Classifier)
	}
	parts = append(parts, string(p.Version))
	return strings.Join(parts, ":")
}

type Org struct {
	Name        string `json:"name" yaml:"name" validate:"required"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Apis        []*Api `json:"apis,omitempty" yaml:"apis,omitempty"`
}

type Api struct {
	Name        string        `json:"name" yaml:"name" validate:"required"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Versions    []*ApiVersion `json:"versions,omitempty" yaml:"versions,omitempty"`
}

type ApiVersion struct {
	Version Text `json:"version" yaml:"version" validate:"required"`
	// Gateway names a gateway from system.gateways.
	Gateway   string    `json:"gateway" yaml:"gateway" validate:"required"`
	Published Bool      `json:"published,omitempty" yaml:"published,omitempty"`
	Endpoint  *Endpoint `json:"endpoint" yaml:"endpoint" validate:"required"`
	Policies  []*Policy `json:"policies,omitempty" yaml:"policies,omitempty"`
}

type Endpoint struct {
	URL        string          `json:"url" yaml:"url" validate:"required,url"`
	Type       string          `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,oneof=rest soap"`
	Public     Bool            `json:"public,omitempty" yaml:"public,omitempty"`
	Properties map[string]Text `json:"properties,omitempty" yaml:"properties,omitempty"`
}

type Policy struct {
	Type string `json:"type" yaml:"type" validate:"required"`
	// Config is passed to the management API verbatim.
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// Checksum returns the MD5 of the canonical JSON form computed at load time.
func (d *Declaration) Checksum() string {
	return d.checksum
}

// Gateways returns the declared gateways, nil-safe.
func (d *Declaration) Gateways() []*Gateway {
	if d.System == nil {
		return nil
	}
	return d.System.Gateways
}

// Plugins returns the declared plugins, nil-safe.
func (d *Declaration) Plugins() []*Plugin {
	if d.System == nil {
		return nil
	}
	return d.System.Plugins
}

// FindGateway looks a gateway up by name.
func (d *Declaration) FindGateway(name string) *Gateway {
	for _, gw := range d.Gateways() {
		if gw.Name == name {
			return gw
		}
	}
	return nil
}

// Text is a string that also accepts numeric and boolean literals, keeping
// their literal spelling (version: 1.0 stays "1.0").
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null":
		*t = ""
	case strings.HasPrefix(s, `"`):
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*t = Text(v)
	case strings.HasPrefix(s, "{") || strings.HasPrefix(s, "["):
		return fmt.Errorf("expected a scalar value, got %s", s)
	default:
		*t = Text(s)
	}
	return nil
}

func (t Text) String() string {
	return string(t)
}

// Bool accepts true/false literals as well as strings such as "true", which
// lets placeholders feed boolean fields.
type Bool bool

func (b *Bool) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*b = false
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*b = false
			return nil
		}
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid boolean %q", s)
	}
	*b = Bool(v)
	return nil
}
