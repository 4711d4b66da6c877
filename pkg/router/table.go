package router

import (
	"fmt"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// HandlerEntry is what a pattern resolves to for one verb.
type HandlerEntry struct {
	Handler WrapHandler // Wrapped handler built at registration
	Path    string      // Full registered path
	Queue   string      // Offload queue name, empty for inline execution
	params  []string
}

// RouteInfo describes one registered (verb, path) pair.
type RouteInfo struct {
	Verb Verb
	Path string
}

// MatchResult is the outcome of a RouteTable lookup.
type MatchResult struct {
	Status    Status
	Entry     *HandlerEntry
	Params    httprouter.Params // Bound parameters in declaration order
	MatchPath string            // Remainder captured by a wildcard
	Allowed   []Verb            // Verbs registered on the path, set for StatusMethodNotAllowed
}

// node is one position in the trie. Children are indices into the table's
// node slice; 0 means no child since the root can never be a child.
type node struct {
	literals map[string]int
	param    int
	wildcard int
	handlers map[Verb]*HandlerEntry
	verbs    []Verb
}

type routeRecord struct {
	verb  Verb
	entry *HandlerEntry
}

// RouteTable is a segment trie mapping route patterns to handler entries.
// It is built during registration and is safe for concurrent lookups once
// registration has finished.
type RouteTable struct {
	nodes   []node
	records []routeRecord
}

// NewRouteTable creates an empty table holding only the root node.
func NewRouteTable() *RouteTable {
	return &RouteTable{nodes: make([]node, 1, 16)}
}

// Insert registers entry for verb at the pattern's position. If the verb is
// already registered there, the existing entry is kept and an error wrapping
// ErrDuplicateVerb is returned.
func (t *RouteTable) Insert(p *Pattern, verb Verb, entry HandlerEntry) error {
	cur := 0
	for _, seg := range p.Segments() {
		switch seg.Kind {
		case SegmentLiteral:
			next, ok := t.nodes[cur].literals[seg.Text]
			if !ok {
				next = t.newNode()
				if t.nodes[cur].literals == nil {
					t.nodes[cur].literals = make(map[string]int)
				}
				t.nodes[cur].literals[seg.Text] = next
			}
			cur = next
		case SegmentParam:
			if t.nodes[cur].param == 0 {
				next := t.newNode()
				t.nodes[cur].param = next
			}
			cur = t.nodes[cur].param
		case SegmentWildcard:
			if t.nodes[cur].wildcard == 0 {
				next := t.newNode()
				t.nodes[cur].wildcard = next
			}
			cur = t.nodes[cur].wildcard
		}
	}

	n := &t.nodes[cur]
	if _, ok := n.handlers[verb]; ok {
		return fmt.Errorf("%w: %s %s", ErrDuplicateVerb, verb, p.Path())
	}
	if n.handlers == nil {
		n.handlers = make(map[Verb]*HandlerEntry)
	}

	e := entry
	if e.Path == "" {
		e.Path = p.Path()
	}
	e.params = p.ParamNames()
	n.handlers[verb] = &e
	n.verbs = append(n.verbs, verb)
	t.records = append(t.records, routeRecord{verb: verb, entry: &e})

	return nil
}

// Find resolves path and verb. One trailing slash is ignored, except for the
// root path. At each level a literal child is preferred over the parameter
// child, which is preferred over the wildcard child. A wildcard also matches
// zero remaining segments when its parent has no handlers of its own.
func (t *RouteTable) Find(path string, verb Verb) MatchResult {
	cur, values, matchPath, ok := t.descend(path)
	if !ok {
		return MatchResult{Status: StatusRouteNotFound}
	}

	n := &t.nodes[cur]
	entry, found := n.handlers[verb]
	if !found {
		entry, found = n.handlers[VerbAny]
	}
	if !found {
		allowed := make([]Verb, len(n.verbs))
		copy(allowed, n.verbs)
		return MatchResult{Status: StatusMethodNotAllowed, Allowed: allowed}
	}

	var params httprouter.Params
	if len(entry.params) > 0 {
		params = make(httprouter.Params, len(entry.params))
		for i, name := range entry.params {
			params[i] = httprouter.Param{Key: name, Value: values[i]}
		}
	}

	return MatchResult{
		Status:    StatusOK,
		Entry:     entry,
		Params:    params,
		MatchPath: matchPath,
	}
}

// Allowed returns the verbs registered on the node path resolves to.
func (t *RouteTable) Allowed(path string) []Verb {
	cur, _, _, ok := t.descend(path)
	if !ok {
		return nil
	}
	allowed := make([]Verb, len(t.nodes[cur].verbs))
	copy(allowed, t.nodes[cur].verbs)
	return allowed
}

// AllRoutes returns every registered (verb, path) pair in insertion order.
func (t *RouteTable) AllRoutes() []RouteInfo {
	routes := make([]RouteInfo, len(t.records))
	for i, rec := range t.records {
		routes[i] = RouteInfo{Verb: rec.verb, Path: rec.entry.Path}
	}
	return routes
}

// descend walks the trie and returns the terminal node index with handlers,
// the parameter values in order, and the wildcard remainder.
func (t *RouteTable) descend(path string) (int, []string, string, bool) {
	var values []string
	matchPath := ""
	wildcard := false
	cur := 0

	segments := splitPath(normalizePath(path))
	for i, seg := range segments {
		n := &t.nodes[cur]
		if next, ok := n.literals[seg]; ok {
			cur = next
			continue
		}
		if n.param != 0 && seg != "" {
			values = append(values, seg)
			cur = n.param
			continue
		}
		if n.wildcard != 0 {
			matchPath = strings.Join(segments[i:], "/")
			cur = n.wildcard
			wildcard = true
			break
		}
		return 0, nil, "", false
	}

	if !wildcard && len(t.nodes[cur].handlers) == 0 && t.nodes[cur].wildcard != 0 {
		cur = t.nodes[cur].wildcard
	}
	if len(t.nodes[cur].handlers) == 0 {
		return 0, nil, "", false
	}
	return cur, values, matchPath, true
}

func (t *RouteTable) newNode() int {
	t.nodes = append(t.nodes, node{})
	return len(t.nodes) - 1
}

// normalizePath ensures a leading slash and strips one trailing slash,
// leaving the root path untouched.
func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if path[0] != '/' {
		path = "/" + path
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}

func splitPath(path string) []string {
	if path == "/" {
		return nil
	}
	return strings.Split(path[1:], "/")
}
