package graph

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	errs "github.com/taloscope/taloscope/pkg/errors"
	"github.com/taloscope/taloscope/pkg/resource"
)

// BuildOption configures [Build].
type BuildOption func(*buildOptions)

type buildOptions struct {
	footprint  Size
	logger     *log.Logger
	specOwners bool
}

// WithFootprint sets the size given to every node.
func WithFootprint(s Size) BuildOption {
	return func(o *buildOptions) { o.footprint = s }
}

// WithLogger sets the logger for build diagnostics.
func WithLogger(l *log.Logger) BuildOption {
	return func(o *buildOptions) { o.logger = l }
}

// WithSpecOwners lets a machine without owner references be owned by the
// worker or control plane named in its spec ([resource.Resource.SpecOwner]).
func WithSpecOwners() BuildOption {
	return func(o *buildOptions) { o.specOwners = true }
}

// source identifies the resource that produced a node.
type source struct {
	kind resource.Kind
	pos  int
}

type builder struct {
	opts   buildOptions
	g      *Graph
	index  map[string]int
	origin map[string]source
	edges  map[string]struct{}
	errs   []error
}

// Build converts resource collections into a graph.
//
// One node is emitted per resource, with id equal to metadata.name and a label
// of the form "<KubeKind>: <name>". Edges are derived in this order: clusters,
// control planes, workers, machines, and within each resource references
// before ownership:
//
//   - Reference (dependent → dependency): cluster → controlPlaneRef,
//     cluster → workerRef, worker → controlPlaneRef
//   - Ownership (owner → owned): the owner chosen by [resource.Resource.Owner]
//     for control planes, workers and machines, or by the machine's spec
//     references under [WithSpecOwners]
//
// Edge ids are "e-<src>-<tgt>" for references and "e-<src>-<tgt>-owner" for
// ownership; a repeated id is dropped. Edges whose endpoints are not in the
// graph are dropped silently.
//
// A resource without a name is rejected with an INVALID_RESOURCE error. All
// rejections are joined into the returned error, and the graph of valid
// resources is returned alongside it. When two resources share a name, the
// later one replaces the earlier node in place and only its edges are
// emitted.
func Build(c resource.Collections, opts ...BuildOption) (*Graph, error) {
	b := &builder{
		opts:   buildOptions{footprint: DefaultFootprint},
		g:      &Graph{Nodes: []Node{}, Edges: []Edge{}},
		index:  make(map[string]int, c.Len()),
		origin: make(map[string]source, c.Len()),
		edges:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(&b.opts)
	}
	if b.opts.logger == nil {
		b.opts.logger = log.Default()
	}

	for _, k := range resource.Kinds {
		for i, r := range c.Of(k) {
			b.addNode(k, i, r)
		}
	}

	for _, k := range resource.Kinds {
		for i, r := range c.Of(k) {
			if !b.survived(k, i, r) {
				continue
			}
			for _, ref := range r.References() {
				b.addEdge(r.Name(), ref, Reference)
			}
			if parents := k.ParentKinds(); parents != nil {
				owner, ok := r.Owner(parents...)
				if !ok && b.opts.specOwners {
					owner, ok = r.SpecOwner()
				}
				if ok {
					b.addEdge(owner.Name, r.Name(), Ownership)
				}
			}
		}
	}

	return b.g, errors.Join(b.errs...)
}

func (b *builder) addNode(k resource.Kind, pos int, r resource.Resource) {
	name := r.Name()
	if err := errs.ValidateResourceName(k.KubeKind(), name); err != nil {
		b.errs = append(b.errs, fmt.Errorf("%s[%d]: %w", k.KubeKind(), pos, err))
		return
	}
	for _, w := range errs.NameWarnings(name) {
		b.opts.logger.Debug("resource name is not a DNS-1123 subdomain", "kind", k.KubeKind(), "name", name, "reason", w)
	}

	n := Node{
		ID:      name,
		Kind:    k,
		Label:   fmt.Sprintf("%s: %s", k.KubeKind(), name),
		Size:    b.opts.footprint,
		Payload: r.Raw,
	}

	if i, dup := b.index[name]; dup {
		prev := b.g.Nodes[i]
		b.opts.logger.Warn("duplicate resource name, later resource wins",
			"name", name, "replaced", prev.Kind.KubeKind(), "by", k.KubeKind())
		b.g.Nodes[i] = n
	} else {
		b.index[name] = len(b.g.Nodes)
		b.g.Nodes = append(b.g.Nodes, n)
	}
	b.origin[name] = source{kind: k, pos: pos}
}

func (b *builder) survived(k resource.Kind, pos int, r resource.Resource) bool {
	src, ok := b.origin[r.Name()]
	return ok && src.kind == k && src.pos == pos
}

func (b *builder) addEdge(from, to string, rel Relation) {
	id := EdgeID(from, to, rel)
	if _, ok := b.index[from]; !ok {
		b.opts.logger.Debug("dropping dangling edge", "edge", id, "missing", from)
		return
	}
	if _, ok := b.index[to]; !ok {
		b.opts.logger.Debug("dropping dangling edge", "edge", id, "missing", to)
		return
	}
	if _, dup := b.edges[id]; dup {
		return
	}
	b.edges[id] = struct{}{}
	b.g.Edges = append(b.g.Edges, Edge{ID: id, Source: from, Target: to, Relation: rel})
}

// EdgeID derives the id of an edge from its endpoints and relation.
func EdgeID(from, to string, rel Relation) string {
	if rel == Ownership {
		return fmt.Sprintf("e-%s-%s-owner", from, to)
	}
	return fmt.Sprintf("e-%s-%s", from, to)
}
