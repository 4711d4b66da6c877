package router

import (
	"fmt"
	"strings"
)

// SegmentKind identifies how a pattern segment matches a path segment.
type SegmentKind int

const (
	// SegmentLiteral matches its text exactly.
	SegmentLiteral SegmentKind = iota
	// SegmentParam binds one path segment to a name, written {name}.
	SegmentParam
	// SegmentWildcard captures all remaining segments, written *.
	SegmentWildcard
)

// Segment is one compiled element of a route pattern.
// Text holds the literal text or the parameter name.
type Segment struct {
	Kind SegmentKind
	Text string
}

// Pattern is a compiled route template.
type Pattern struct {
	path     string
	segments []Segment
	params   []string
}

// CompilePattern parses a route template such as /users/{id}/files/*.
// A missing leading slash is added and empty segments are ignored.
// The returned error wraps ErrInvalidPattern.
func CompilePattern(path string) (*Pattern, error) {
	p := &Pattern{}
	seen := make(map[string]bool)

	parts := strings.Split(path, "/")
	for i, part := range parts {
		if part == "" {
			continue
		}

		switch {
		case part == "*":
			if hasMoreSegments(parts[i+1:]) {
				return nil, fmt.Errorf("%w %q: wildcard must be the last segment", ErrInvalidPattern, path)
			}
			p.segments = append(p.segments, Segment{Kind: SegmentWildcard})

		case strings.Contains(part, "*"):
			return nil, fmt.Errorf("%w %q: wildcard must be a whole segment", ErrInvalidPattern, path)

		case strings.HasPrefix(part, "{"):
			if !strings.HasSuffix(part, "}") {
				return nil, fmt.Errorf("%w %q: unterminated parameter %q", ErrInvalidPattern, path, part)
			}
			name := part[1 : len(part)-1]
			if name == "" || strings.ContainsAny(name, "{}") {
				return nil, fmt.Errorf("%w %q: bad parameter name %q", ErrInvalidPattern, path, part)
			}
			if seen[name] {
				return nil, fmt.Errorf("%w %q: duplicate parameter %q", ErrInvalidPattern, path, name)
			}
			seen[name] = true
			p.segments = append(p.segments, Segment{Kind: SegmentParam, Text: name})
			p.params = append(p.params, name)

		case strings.ContainsAny(part, "{}"):
			return nil, fmt.Errorf("%w %q: braces must enclose a whole segment", ErrInvalidPattern, path)

		default:
			p.segments = append(p.segments, Segment{Kind: SegmentLiteral, Text: part})
		}
	}

	p.path = p.render()
	return p, nil
}

// Path returns the normalized template, e.g. /users/{id}.
func (p *Pattern) Path() string {
	return p.path
}

// Segments returns the compiled segments in order.
func (p *Pattern) Segments() []Segment {
	return p.segments
}

// ParamNames returns the parameter names in declaration order.
func (p *Pattern) ParamNames() []string {
	return p.params
}

// HasWildcard reports whether the pattern ends in a wildcard.
func (p *Pattern) HasWildcard() bool {
	n := len(p.segments)
	return n > 0 && p.segments[n-1].Kind == SegmentWildcard
}

func (p *Pattern) render() string {
	if len(p.segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range p.segments {
		b.WriteByte('/')
		switch s.Kind {
		case SegmentParam:
			b.WriteString("{" + s.Text + "}")
		case SegmentWildcard:
			b.WriteByte('*')
		default:
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

func hasMoreSegments(parts []string) bool {
	for _, part := range parts {
		if part != "" {
			return true
		}
	}
	return false
}
