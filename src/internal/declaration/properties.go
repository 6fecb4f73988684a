package declaration

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/maksimkurb/apimanctl/src/internal/placeholder"
)

const (
	propertiesKey = "properties"
	sharedKey     = "shared"
	refKey        = "$ref"

	// DocumentPropertiesSource names the document's own properties section.
	DocumentPropertiesSource = "document"
)

// documentProperties flattens the properties section into key/value pairs.
// Nested mappings become dotted keys (gw: {endpoint: x} -> gw.endpoint=x).
func documentProperties(tree map[string]any) (map[string]string, error) {
	raw, ok := tree[propertiesKey]
	if !ok || raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a mapping", propertiesKey)
	}
	out := make(map[string]string)
	if err := flattenProperties(m, "", out); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenProperties(m map[string]any, prefix string, out map[string]string) error {
	for _, k := range sortedKeys(m) {
		key := childPath(prefix, k)
		switch v := m[k].(type) {
		case map[string]any:
			if err := flattenProperties(v, key, out); err != nil {
				return err
			}
		case []any:
			return fmt.Errorf("%s.%s: lists are not supported as property values", propertiesKey, key)
		default:
			out[key] = scalarText(v)
		}
	}
	return nil
}

func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// resolvePlaceholders rewrites every string leaf of tree in place, skipping the
// properties section. Keys are visited in sorted order so the first reported
// failure is stable.
func resolvePlaceholders(tree map[string]any, r *placeholder.Resolver) error {
	for _, k := range sortedKeys(tree) {
		if k == propertiesKey {
			continue
		}
		v, err := resolveNode(tree[k], k, r)
		if err != nil {
			return err
		}
		tree[k] = v
	}
	return nil
}

func resolveNode(node any, path string, r *placeholder.Resolver) (any, error) {
	switch v := node.(type) {
	case string:
		return r.Resolve(v, path)
	case map[string]any:
		for _, k := range sortedKeys(v) {
			resolved, err := resolveNode(v[k], childPath(path, k), r)
			if err != nil {
				return nil, err
			}
			v[k] = resolved
		}
		return v, nil
	case []any:
		for i := range v {
			resolved, err := resolveNode(v[i], indexPath(path, i), r)
			if err != nil {
				return nil, err
			}
			v[i] = resolved
		}
		return v, nil
	default:
		return node, nil
	}
}
