package declaration

import (
	"fmt"
	"strings"
)

// fragmentPool holds the named entries of one shared section.
type fragmentPool struct {
	section  string
	entries  map[string]any
	resolved map[string]map[string]any
}

func newFragmentPool(section string, raw any) (*fragmentPool, error) {
	p := &fragmentPool{section: section, resolved: make(map[string]map[string]any)}
	if raw == nil {
		return p, nil
	}
	entries, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("must be a mapping of name to %s entry", strings.TrimSuffix(section, "s"))
	}
	p.entries = entries
	return p, nil
}

// resolve returns the fully expanded entry. The result is cached and must be
// copied before it is modified.
func (p *fragmentPool) resolve(name string, chain []string) (map[string]any, error) {
	for i, seen := range chain {
		if seen == name {
			cycle := append(append([]string{}, chain[i:]...), name)
			return nil, fmt.Errorf("reference cycle in shared.%s: %s", p.section, strings.Join(cycle, " -> "))
		}
	}
	if m, ok := p.resolved[name]; ok {
		return m, nil
	}

	raw, ok := p.entries[name]
	if !ok {
		return nil, fmt.Errorf("unknown reference %q: no such entry in shared.%s", name, p.section)
	}
	entry, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("shared.%s.%s must be a mapping", p.section, name)
	}

	var out map[string]any
	if ref, has := entry[refKey]; has {
		refName, ok := ref.(string)
		if !ok {
			return nil, fmt.Errorf("shared.%s.%s: %s must be a string", p.section, name, refKey)
		}
		next := append(chain[:len(chain):len(chain)], name)
		base, err := p.resolve(refName, next)
		if err != nil {
			return nil, err
		}
		out = deepMerge(deepCopy(base).(map[string]any), withoutRef(entry))
	} else {
		out = deepCopy(entry).(map[string]any)
	}
	p.resolved[name] = out
	return out, nil
}

// expandSite replaces a $ref site by a private copy of the referenced entry
// with the site's own keys merged on top. ok is false when site has no $ref.
func (p *fragmentPool) expandSite(site map[string]any) (expanded map[string]any, ok bool, err error) {
	ref, has := site[refKey]
	if !has {
		return site, false, nil
	}
	name, isString := ref.(string)
	if !isString {
		return withoutRef(site), true, fmt.Errorf("%s must be a string", refKey)
	}
	base, err := p.resolve(name, nil)
	if err != nil {
		return withoutRef(site), true, err
	}
	return deepMerge(deepCopy(base).(map[string]any), withoutRef(site)), true, nil
}

func withoutRef(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k != refKey {
			out[k] = v
		}
	}
	return out
}

// expandShared removes the shared section from tree and inlines every
// reference to it. Broken references are returned as problems, together with
// the paths whose further validation would only repeat them.
func expandShared(tree map[string]any) (ValidationErrors, []string) {
	var (
		problems   ValidationErrors
		suppressed []string
	)

	raw := tree[sharedKey]
	delete(tree, sharedKey)

	shared := map[string]any{}
	if raw != nil {
		m, ok := raw.(map[string]any)
		if !ok {
			problems = append(problems, ValidationError{FieldPath: sharedKey, Message: "must be a mapping"})
		} else {
			shared = m
		}
	}
	for _, k := range sortedKeys(shared) {
		if k != "policies" && k != "endpoints" {
			problems = append(problems, ValidationError{
				FieldPath: childPath(sharedKey, k),
				Message:   "unknown shared section (supported: policies, endpoints)",
			})
		}
	}

	policies, err := newFragmentPool("policies", shared["policies"])
	if err != nil {
		problems = append(problems, ValidationError{FieldPath: "shared.policies", Message: err.Error()})
		policies, _ = newFragmentPool("policies", nil)
	}
	endpoints, err := newFragmentPool("endpoints", shared["endpoints"])
	if err != nil {
		problems = append(problems, ValidationError{FieldPath: "shared.endpoints", Message: err.Error()})
		endpoints, _ = newFragmentPool("endpoints", nil)
	}

	org, _ := tree["org"].(map[string]any)
	apis, _ := org["apis"].([]any)
	for i, rawAPI := range apis {
		api, _ := rawAPI.(map[string]any)
		versions, _ := api["versions"].([]any)
		apiName, _ := api["name"].(string)

		for j, rawVersion := range versions {
			version, ok := rawVersion.(map[string]any)
			if !ok {
				continue
			}
			versionPath := indexPath(indexPath("org.apis", i)+".versions", j)
			itemName := apiName
			if label, ok := version["version"]; ok {
				itemName = fmt.Sprintf("%s/%s", apiName, scalarText(label))
			}

			if site, ok := version["endpoint"].(map[string]any); ok {
				path := versionPath + ".endpoint"
				expanded, isRef, err := endpoints.expandSite(site)
				if isRef {
					version["endpoint"] = expanded
				}
				if err != nil {
					problems = append(problems, ValidationError{ItemName: itemName, FieldPath: path, Message: err.Error()})
					suppressed = append(suppressed, path)
				}
			}

			sites, _ := version["policies"].([]any)
			for k, rawSite := range sites {
				site, ok := rawSite.(map[string]any)
				if !ok {
					continue
				}
				path := indexPath(versionPath+".policies", k)
				expanded, isRef, err := policies.expandSite(site)
				if isRef {
					sites[k] = expanded
				}
				if err != nil {
					problems = append(problems, ValidationError{ItemName: itemName, FieldPath: path, Message: err.Error()})
					suppressed = append(suppressed, path)
				}
			}
		}
	}

	return problems, suppressed
}
