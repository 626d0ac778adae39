package schema

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aretw0/plotline/pkg/domain"
)

// Result is a normalized flow plus the repairs applied to it.
type Result struct {
	Flow     domain.Flow
	Warnings []Warning
}

// DroppedEdges returns the warnings that removed an edge.
func (r Result) DroppedEdges() []Warning {
	var out []Warning
	for _, w := range r.Warnings {
		if w.Code == WarnEdgeDropped {
			out = append(out, w)
		}
	}
	return out
}

type options struct {
	strictEdges       bool
	allowUnpositioned bool
}

// Option configures normalization.
type Option func(*options)

// WithStrictEdges rejects the flow instead of dropping an invalid edge.
func WithStrictEdges() Option {
	return func(o *options) { o.strictEdges = true }
}

// WithStrict toggles strict edge handling from configuration.
func WithStrict(strict bool) Option {
	return func(o *options) { o.strictEdges = strict }
}

// AllowMissingPositions accepts nodes without a position.
// Only meaningful for NormalizeFlow, where the caller fills positions later.
func AllowMissingPositions() Option {
	return func(o *options) { o.allowUnpositioned = true }
}

// Normalize converts a candidate JSON document into a well-formed Flow.
func Normalize(candidate string, opts ...Option) (Result, error) {
	var doc any
	if err := json.Unmarshal([]byte(candidate), &doc); err != nil {
		return Result{}, &domain.ValidationError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	top, ok := doc.(map[string]any)
	if !ok {
		return Result{}, &domain.ValidationError{Reason: "top level must be a JSON object"}
	}

	rawNodes, err := requireArray(top, "nodes")
	if err != nil {
		return Result{}, err
	}
	rawEdges, err := requireArray(top, "edges")
	if err != nil {
		return Result{}, err
	}

	n := newNormalizer(opts)

	nodes := make([]domain.Node, 0, len(rawNodes))
	for i, raw := range rawNodes {
		node, err := n.decodeNode(fmt.Sprintf("nodes[%d]", i), raw)
		if err != nil {
			return Result{}, err
		}
		nodes = append(nodes, node)
	}

	cands := make([]edgeCandidate, 0, len(rawEdges))
	for i, raw := range rawEdges {
		cand, err := n.decodeEdge(fmt.Sprintf("edges[%d]", i), raw)
		if err != nil {
			return Result{}, err
		}
		if cand != nil {
			cands = append(cands, *cand)
		}
	}

	return n.finish(nodes, cands)
}

// NormalizeFlow applies the Normalize policy to an already-typed flow.
// The input is not modified.
func NormalizeFlow(flow domain.Flow, opts ...Option) (Result, error) {
	n := newNormalizer(opts)
	in := flow.Clone()

	for i, node := range in.Nodes {
		path := fmt.Sprintf("nodes[%d]", i)
		if node.ID == "" {
			return Result{}, &domain.ValidationError{Path: path, Reason: "missing id"}
		}
		if node.Position == nil && !n.opts.allowUnpositioned {
			return Result{}, &domain.ValidationError{Path: path, Reason: "missing position"}
		}
		if p := node.Position; p != nil {
			if err := checkCoordinates(path, p.X, p.Y); err != nil {
				return Result{}, err
			}
		}
	}

	cands := make([]edgeCandidate, 0, len(in.Edges))
	for i, e := range in.Edges {
		cands = append(cands, edgeCandidate{edge: e, path: fmt.Sprintf("edges[%d]", i)})
	}
	return n.finish(in.Nodes, cands)
}

type normalizer struct {
	opts     options
	warnings []Warning
}

type edgeCandidate struct {
	edge domain.Edge
	path string
}

func newNormalizer(opts []Option) *normalizer {
	n := &normalizer{}
	for _, opt := range opts {
		opt(&n.opts)
	}
	return n
}

func (n *normalizer) warn(code WarningCode, path, reason string) {
	n.warnings = append(n.warnings, Warning{Code: code, Path: path, Reason: reason})
}

// dropEdge records a dropped edge, or fails in strict mode.
func (n *normalizer) dropEdge(path, edgeID, reason string) error {
	if n.opts.strictEdges {
		return &domain.ValidationError{Path: path, Reason: reason}
	}
	n.warnings = append(n.warnings, Warning{Code: WarnEdgeDropped, Path: path, Reason: reason, EdgeID: edgeID})
	return nil
}

func (n *normalizer) decodeNode(path string, raw any) (domain.Node, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return domain.Node{}, &domain.ValidationError{Path: path, Reason: "node must be an object"}
	}

	id, ok := idString(obj["id"])
	if !ok {
		return domain.Node{}, &domain.ValidationError{Path: path, Reason: "missing id"}
	}

	rawPos, present := obj["position"]
	if !present || rawPos == nil {
		return domain.Node{}, &domain.ValidationError{Path: path, Reason: "missing position"}
	}
	posObj, ok := rawPos.(map[string]any)
	if !ok {
		return domain.Node{}, &domain.ValidationError{Path: path + ".position", Reason: "position must be an object"}
	}
	x, errX := coordinate(path+".position.x", posObj["x"])
	if errX != nil {
		return domain.Node{}, errX
	}
	y, errY := coordinate(path+".position.y", posObj["y"])
	if errY != nil {
		return domain.Node{}, errY
	}

	node := domain.Node{ID: id, Position: &domain.Position{X: x, Y: y}}

	switch t := obj["type"].(type) {
	case nil:
	case string:
		node.Type = t
	default:
		n.warn(WarnFieldIgnored, path+".type", fmt.Sprintf("type must be a string, got %T", t))
	}

	switch l := obj["label"].(type) {
	case nil:
	case string:
		node.Label = l
	default:
		n.warn(WarnFieldIgnored, path+".label", fmt.Sprintf("label must be a string, got %T", l))
	}

	switch d := obj["data"].(type) {
	case nil:
	case map[string]any:
		node.Data = d
	default:
		n.warn(WarnDataReplaced, path+".data", fmt.Sprintf("data must be an object, got %T", d))
		node.Data = map[string]any{}
	}

	return node, nil
}

// decodeEdge returns nil (and no error) when the edge was dropped.
func (n *normalizer) decodeEdge(path string, raw any) (*edgeCandidate, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, n.dropEdge(path, "", "edge must be an object")
	}

	var e domain.Edge
	if id, ok := idString(obj["id"]); ok {
		e.ID = id
	}
	e.Source, _ = idString(obj["source"])
	e.Target, _ = idString(obj["target"])

	switch l := obj["label"].(type) {
	case nil:
	case string:
		e.Label = l
	default:
		n.warn(WarnFieldIgnored, path+".label", fmt.Sprintf("label must be a string, got %T", l))
	}
	if t, ok := obj["type"].(string); ok {
		e.Type = t
	}
	if a, ok := obj["animated"].(bool); ok {
		e.Animated = a
	}

	return &edgeCandidate{edge: e, path: path}, nil
}

// finish applies the shared node and edge policy.
func (n *normalizer) finish(nodes []domain.Node, cands []edgeCandidate) (Result, error) {
	known := make(map[string]struct{}, len(nodes))
	for i := range nodes {
		node := &nodes[i]
		path := fmt.Sprintf("nodes[%d]", i)
		if _, dup := known[node.ID]; dup {
			return Result{}, &domain.ValidationError{Path: path, Reason: fmt.Sprintf("duplicate node id %q", node.ID)}
		}
		known[node.ID] = struct{}{}

		if node.Type == "" {
			node.Type = domain.NodeTypeDefault
		}
		if node.Data == nil {
			node.Data = map[string]any{}
		}
		if _, exists := node.Data["label"]; !exists && node.Label != "" {
			node.Data["label"] = node.Label
		}
		for _, fe := range Validate(PayloadSchema(node.Type), node.Data) {
			n.warn(WarnPayloadMismatch, path+".data."+fe.Key, fe.Reason)
		}
	}

	// Explicit ids are reserved first so synthesized ids never collide with a later edge.
	reserved := make(map[string]struct{}, len(cands))
	for _, c := range cands {
		if c.edge.ID != "" {
			reserved[c.edge.ID] = struct{}{}
		}
	}

	edges := make([]domain.Edge, 0, len(cands))
	seen := make(map[string]struct{}, len(cands))
	next := 1
	for _, c := range cands {
		e := c.edge
		switch {
		case e.Source == "" || e.Target == "":
			if err := n.dropEdge(c.path, e.ID, "edge is missing source or target"); err != nil {
				return Result{}, err
			}
			continue
		case !has(known, e.Source):
			if err := n.dropEdge(c.path, e.ID, fmt.Sprintf("source %q does not exist", e.Source)); err != nil {
				return Result{}, err
			}
			continue
		case !has(known, e.Target):
			if err := n.dropEdge(c.path, e.ID, fmt.Sprintf("target %q does not exist", e.Target)); err != nil {
				return Result{}, err
			}
			continue
		}

		if e.ID == "" {
			for {
				candidate := "edge_" + strconv.Itoa(next)
				next++
				if !has(reserved, candidate) {
					e.ID = candidate
					reserved[candidate] = struct{}{}
					break
				}
			}
		} else if has(seen, e.ID) {
			if err := n.dropEdge(c.path, e.ID, fmt.Sprintf("duplicate edge id %q", e.ID)); err != nil {
				return Result{}, err
			}
			continue
		}
		seen[e.ID] = struct{}{}

		if e.Type == "" {
			e.Type = domain.EdgeTypeDefault
		}
		edges = append(edges, e)
	}

	return Result{
		Flow:     domain.Flow{Nodes: nodes, Edges: edges},
		Warnings: n.warnings,
	}, nil
}

func requireArray(top map[string]any, key string) ([]any, error) {
	raw, ok := top[key]
	if !ok {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("missing %q array", key)}
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, &domain.ValidationError{Path: key, Reason: fmt.Sprintf("%q must be an array, got %T", key, raw)}
	}
	return arr, nil
}

func coordinate(path string, v any) (float64, error) {
	if err := FiniteNumber().Validate(v); err != nil {
		return 0, &domain.ValidationError{Path: path, Reason: err.Error()}
	}
	f, _ := toFloat(v)
	return f, nil
}

func checkCoordinates(path string, x, y float64) error {
	if _, err := coordinate(path+".position.x", x); err != nil {
		return err
	}
	_, err := coordinate(path+".position.y", y)
	return err
}

// idString accepts strings and integral numbers; models sometimes emit numeric ids.
func idString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

func has(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
