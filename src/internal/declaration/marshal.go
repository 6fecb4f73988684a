package declaration

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/maksimkurb/apimanctl/src/internal/placeholder"
	"gopkg.in/yaml.v3"
)

// Marshal serializes d in the given format. Literal "${" sequences are
// written as "$${" so that loading the output yields an equal Declaration.
func Marshal(d *Declaration, format Format) ([]byte, error) {
	out := escapeDeclaration(d)

	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func escapeDeclaration(d *Declaration) *Declaration {
	esc := placeholder.Escape
	out := &Declaration{}

	if d.System != nil {
		out.System = &System{}
		for _, gw := range d.System.Gateways {
			c := *gw
			c.Name, c.Description, c.Type = esc(gw.Name), esc(gw.Description), esc(gw.Type)
			if gw.Config != nil {
				cfg := *gw.Config
				cfg.Endpoint, cfg.Username, cfg.Password = esc(cfg.Endpoint), esc(cfg.Username), esc(cfg.Password)
				c.Config = &cfg
			}
			out.System.Gateways = append(out.System.Gateways, &c)
		}
		for _, p := range d.System.Plugins {
			out.System.Plugins = append(out.System.Plugins, &Plugin{
				GroupID:    esc(p.GroupID),
				ArtifactID: esc(p.ArtifactID),
				Version:    Text(esc(string(p.Version))),
				Classifier: esc(p.Classifier),
				Type:       esc(p.Type),
			})
		}
	}

	if d.Org == nil {
		return out
	}
	out.Org = &Org{Name: esc(d.Org.Name), Description: esc(d.Org.Description)}
	for _, api := range d.Org.Apis {
		a := &Api{Name: esc(api.Name), Description: esc(api.Description)}
		for _, v := range api.Versions {
			nv := &ApiVersion{
				Version:   Text(esc(string(v.Version))),
				Gateway:   esc(v.Gateway),
				Published: v.Published,
			}
			if v.Endpoint != nil {
				ep := &Endpoint{URL: esc(v.Endpoint.URL), Type: esc(v.Endpoint.Type), Public: v.Endpoint.Public}
				if v.Endpoint.Properties != nil {
					ep.Properties = make(map[string]Text, len(v.Endpoint.Properties))
					for k, val := range v.Endpoint.Properties {
						ep.Properties[k] = Text(esc(string(val)))
					}
				}
				nv.Endpoint = ep
			}
			for _, p := range v.Policies {
				np := &Policy{Type: esc(p.Type)}
				if p.Config != nil {
					np.Config, _ = escapeValue(p.Config).(map[string]any)
				}
				nv.Policies = append(nv.Policies, np)
			}
			a.Versions = append(a.Versions, nv)
		}
		out.Org.Apis = append(out.Org.Apis, a)
	}
	return out
}

func escapeValue(v any) any {
	switch t := v.(type) {
	case string:
		return placeholder.Escape(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = escapeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = escapeValue(val)
		}
		return out
	default:
		return v
	}
}
