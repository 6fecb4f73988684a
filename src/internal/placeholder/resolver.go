package placeholder

import (
	"fmt"
	"io"
	"strings"

	"github.com/valyala/fasttemplate"
)

const (
	startTag  = "${"
	endTag    = "}"
	escapeTag = "$${"
)

// UnresolvedPlaceholderError is returned when a token has no source and no default.
type UnresolvedPlaceholderError struct {
	Token string // key as written, without default
	Path  string // document path of the enclosing string leaf
	Cause error
}

func (e *UnresolvedPlaceholderError) Error() string {
	where := ""
	if e.Path != "" {
		where = " at " + e.Path
	}
	if e.Cause != nil {
		return fmt.Sprintf("unresolved placeholder ${%s}%s: %v", e.Token, where, e.Cause)
	}
	return fmt.Sprintf("unresolved placeholder ${%s}%s", e.Token, where)
}

func (e *UnresolvedPlaceholderError) Unwrap() error {
	return e.Cause
}

// Resolver replaces ${key} and ${key:default} tokens using an ordered source list.
type Resolver struct {
	sources Sources
}

// NewResolver creates a resolver consulting sources in order.
func NewResolver(sources Sources) *Resolver {
	return &Resolver{sources: sources}
}

// Sources returns the resolver's source list.
func (r *Resolver) Sources() Sources {
	return r.sources
}

// Resolve substitutes every token in text. path names the enclosing document
// location and is only used for error reporting.
func (r *Resolver) Resolve(text, path string) (string, error) {
	if !strings.Contains(text, startTag) {
		return text, nil
	}

	parts := strings.Split(text, escapeTag)
	for i, part := range parts {
		resolved, err := r.resolvePart(part, path)
		if err != nil {
			return "", err
		}
		parts[i] = resolved
	}
	return strings.Join(parts, startTag), nil
}

func (r *Resolver) resolvePart(text, path string) (string, error) {
	if !strings.Contains(text, startTag) {
		return text, nil
	}
	if token, ok := unterminated(text); ok {
		return "", &UnresolvedPlaceholderError{Token: token, Path: path, Cause: fmt.Errorf("missing closing %q", endTag)}
	}

	var unresolved *UnresolvedPlaceholderError
	out, err := fasttemplate.ExecuteFuncStringWithErr(text, startTag, endTag, func(w io.Writer, tag string) (int, error) {
		key, def, hasDefault := strings.Cut(tag, ":")
		key = strings.TrimSpace(key)
		if v, _, ok := r.sources.Lookup(key); ok {
			return w.Write([]byte(v))
		}
		if hasDefault {
			return w.Write([]byte(def))
		}
		unresolved = &UnresolvedPlaceholderError{Token: key, Path: path}
		return 0, unresolved
	})
	if err != nil {
		if unresolved != nil {
			return "", unresolved
		}
		return "", &UnresolvedPlaceholderError{Path: path, Cause: err}
	}
	return out, nil
}

// unterminated reports the first token opened by startTag that has no endTag
// after it. fasttemplate copies such a token through verbatim.
func unterminated(text string) (string, bool) {
	for rest := text; ; {
		i := strings.Index(rest, startTag)
		if i < 0 {
			return "", false
		}
		rest = rest[i+len(startTag):]
		j := strings.Index(rest, endTag)
		if j < 0 {
			return rest, true
		}
		rest = rest[j+len(endTag):]
	}
}

// Escape makes s survive a later Resolve unchanged.
func Escape(s string) string {
	return strings.ReplaceAll(s, startTag, escapeTag)
}
