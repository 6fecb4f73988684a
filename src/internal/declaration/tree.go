package declaration

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// maxTreeNodes bounds alias expansion so a small YAML file cannot explode.
const maxTreeNodes = 1_000_000

// A tree is the generic form of a document: map[string]any, []any, string,
// json.Number, bool or nil.

func parseTree(data []byte, format Format) (map[string]any, error) {
	var (
		root any
		err  error
	)
	switch format {
	case FormatJSON:
		root, err = parseJSONTree(data)
	case FormatYAML:
		root, err = parseYAMLTree(data)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, errors.New("document is empty")
	}
	m, ok := root.(map[string]any)
	if !ok {
		return nil, errors.New("document root must be a mapping")
	}
	return m, nil
}

func parseJSONTree(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := decodeJSONValue(dec, data)
	if err != nil {
		return nil, describeJSONError(data, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		line, col := position(data, dec.InputOffset())
		return nil, fmt.Errorf("line %d, column %d: unexpected data after the top-level value", line, col)
	}
	return root, nil
}

// decodeJSONValue reads one value token by token so repeated object keys can
// be rejected instead of silently keeping the last one.
func decodeJSONValue(dec *json.Decoder, data []byte) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, unexpectedEOF(err)
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		m := make(map[string]any)
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", keyTok)
			}
			if _, dup := m[key]; dup {
				line, col := position(data, dec.InputOffset())
				return nil, fmt.Errorf("line %d, column %d: duplicate key %q", line, col, key)
			}
			v, err := decodeJSONValue(dec, data)
			if err != nil {
				return nil, err
			}
			m[key] = v
		}
		if _, err := dec.Token(); err != nil {
			return nil, unexpectedEOF(err)
		}
		return m, nil
	case '[':
		list := []any{}
		for dec.More() {
			v, err := decodeJSONValue(dec, data)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, unexpectedEOF(err)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unexpected %q", delim)
	}
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func describeJSONError(data []byte, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := position(data, syntaxErr.Offset)
		return fmt.Errorf("line %d, column %d: %w", line, col, err)
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		line, col := position(data, int64(len(data)))
		return fmt.Errorf("line %d, column %d: unexpected end of input", line, col)
	}
	return err
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col := 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func parseYAMLTree(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return nil, nil
	}
	c := &yamlConverter{}
	return c.convert(&doc)
}

type yamlConverter struct {
	nodes int
}

func (c *yamlConverter) convert(n *yaml.Node) (any, error) {
	c.nodes++
	if c.nodes > maxTreeNodes {
		return nil, errors.New("document too large after alias expansion")
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.convert(n.Content[0])
	case yaml.AliasNode:
		// every alias becomes an independent copy
		return c.convert(n.Alias)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := c.convert(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		return c.convertMapping(n)
	case yaml.ScalarNode:
		return convertScalar(n)
	default:
		return nil, fmt.Errorf("line %d, column %d: unsupported YAML node", n.Line, n.Column)
	}
}

func (c *yamlConverter) convertMapping(n *yaml.Node) (map[string]any, error) {
	out := make(map[string]any, len(n.Content)/2)
	var merges []map[string]any

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d, column %d: mapping keys must be scalars", k.Line, k.Column)
		}

		if k.ShortTag() == "!!merge" {
			merged, err := c.mergeSources(v)
			if err != nil {
				return nil, err
			}
			merges = append(merges, merged...)
			continue
		}

		if _, dup := out[k.Value]; dup {
			return nil, fmt.Errorf("line %d, column %d: duplicate key %q", k.Line, k.Column, k.Value)
		}
		value, err := c.convert(v)
		if err != nil {
			return nil, err
		}
		out[k.Value] = value
	}

	// explicit keys win over merged ones, earlier merge sources win over later
	for _, m := range merges {
		for k, v := range m {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	return out, nil
}

func (c *yamlConverter) mergeSources(v *yaml.Node) ([]map[string]any, error) {
	target := v
	if target.Kind == yaml.AliasNode {
		target = target.Alias
	}
	var nodes []*yaml.Node
	switch target.Kind {
	case yaml.MappingNode:
		nodes = []*yaml.Node{target}
	case yaml.SequenceNode:
		nodes = target.Content
	default:
		return nil, fmt.Errorf("line %d, column %d: merge value must be a mapping", v.Line, v.Column)
	}

	out := make([]map[string]any, 0, len(nodes))
	for _, node := range nodes {
		converted, err := c.convert(node)
		if err != nil {
			return nil, err
		}
		m, ok := converted.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("line %d, column %d: merge value must be a mapping", node.Line, node.Column)
		}
		out = append(out, m)
	}
	return out, nil
}

func convertScalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int", "!!float":
		// keep the literal spelling when it is already a JSON number
		if isJSONNumber(n.Value) {
			return json.Number(n.Value), nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		switch num := v.(type) {
		case int:
			return json.Number(strconv.Itoa(num)), nil
		case int64:
			return json.Number(strconv.FormatInt(num, 10)), nil
		case uint64:
			return json.Number(strconv.FormatUint(num, 10)), nil
		case float64:
			if math.IsInf(num, 0) || math.IsNaN(num) {
				return nil, fmt.Errorf("line %d, column %d: %s is not representable", n.Line, n.Column, n.Value)
			}
			return json.Number(strconv.FormatFloat(num, 'g', -1, 64)), nil
		default:
			return n.Value, nil
		}
	default:
		return n.Value, nil
	}
}

func isJSONNumber(s string) bool {
	if s == "" {
		return false
	}
	if c := s[0]; c != '-' && (c < '0' || c > '9') {
		return false
	}
	var n json.Number
	return json.Unmarshal([]byte(s), &n) == nil
}

// sortedKeys returns m's keys in lexical order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func childPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func indexPath(parent string, i int) string {
	return fmt.Sprintf("%s[%d]", parent, i)
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}

// deepMerge copies src over dst. Nested mappings merge, everything else replaces.
func deepMerge(dst, src map[string]any) map[string]any {
	for k, v := range src {
		if srcMap, ok := v.(map[string]any); ok {
			if dstMap, ok := dst[k].(map[string]any); ok {
				dst[k] = deepMerge(dstMap, srcMap)
				continue
			}
		}
		dst[k] = deepCopy(v)
	}
	return dst
}
