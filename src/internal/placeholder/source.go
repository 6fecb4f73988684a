package placeholder

import (
	"os"
	"strings"
)

// Source is a named set of placeholder values.
type Source interface {
	Name() string
	Lookup(key string) (string, bool)
}

// Sources is an ordered list of property sources consulted first-match.
type Sources []Source

// Lookup returns the value of key from the first source defining it,
// together with that source's name.
func (s Sources) Lookup(key string) (value string, source string, ok bool) {
	for _, src := range s {
		if src == nil {
			continue
		}
		if v, found := src.Lookup(key); found {
			return v, src.Name(), true
		}
	}
	return "", "", false
}

// With returns a copy of s with extra appended at the lowest precedence.
func (s Sources) With(extra ...Source) Sources {
	out := make(Sources, 0, len(s)+len(extra))
	out = append(out, s...)
	return append(out, extra...)
}

// MapSource serves values from a fixed map.
type MapSource struct {
	name   string
	values map[string]string
}

// NewMapSource creates a source named name over a copy of values.
func NewMapSource(name string, values map[string]string) *MapSource {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &MapSource{name: name, values: copied}
}

func (m *MapSource) Name() string {
	return m.name
}

func (m *MapSource) Lookup(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// EnvSource serves values from the process environment.
//
// A key is looked up verbatim first, then in its environment form:
// upper-cased with '.' and '-' replaced by '_' (gw.endpoint -> GW_ENDPOINT).
type EnvSource struct {
	// LookupFunc defaults to os.LookupEnv.
	LookupFunc func(string) (string, bool)
}

// NewEnvSource creates a source backed by os.LookupEnv.
func NewEnvSource() *EnvSource {
	return &EnvSource{LookupFunc: os.LookupEnv}
}

func (e *EnvSource) Name() string {
	return "environment"
}

func (e *EnvSource) Lookup(key string) (string, bool) {
	lookup := e.LookupFunc
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(key); ok {
		return v, true
	}
	envKey := EnvKey(key)
	if envKey == key {
		return "", false
	}
	return lookup(envKey)
}

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// EnvKey converts a placeholder key into its environment variable form.
func EnvKey(key string) string {
	return strings.ToUpper(envKeyReplacer.Replace(key))
}
