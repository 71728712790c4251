// Package resource models the Talos cluster-management resources the console
// draws: clusters, control-plane groups, worker groups and machines.
//
// Each [Resource] is a tagged union. [Kind] selects which of the typed spec
// fields is populated, and only the fields the graph needs are parsed. The
// full document is kept verbatim in [Resource.Raw] so presentation layers can
// show it unchanged.
package resource

import (
	"encoding/json"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Kind identifies one of the four resource collections.
type Kind string

const (
	KindCluster      Kind = "Cluster"
	KindControlPlane Kind = "ControlPlane"
	KindWorker       Kind = "Worker"
	KindMachine      Kind = "Machine"
)

// Kubernetes kind strings as they appear in apiVersion/kind headers and in
// owner references.
const (
	KubeKindCluster      = "TalosCluster"
	KubeKindControlPlane = "TalosControlPlane"
	KubeKindWorker       = "TalosWorker"
	KubeKindMachine      = "TalosMachine"
)

// Kinds lists every kind in collection order.
var Kinds = []Kind{KindCluster, KindControlPlane, KindWorker, KindMachine}

// KubeKind returns the Kubernetes kind string for k, or "" if k is unknown.
func (k Kind) KubeKind() string {
	switch k {
	case KindCluster:
		return KubeKindCluster
	case KindControlPlane:
		return KubeKindControlPlane
	case KindWorker:
		return KubeKindWorker
	case KindMachine:
		return KubeKindMachine
	}
	return ""
}

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool { return k.KubeKind() != "" }

// ParentKinds returns the owner kinds expected for a resource of kind k, in
// order of preference. Clusters have no parent.
func (k Kind) ParentKinds() []string {
	switch k {
	case KindControlPlane, KindWorker:
		return []string{KubeKindCluster}
	case KindMachine:
		return []string{KubeKindWorker, KubeKindControlPlane}
	}
	return nil
}

// KindFromKube maps a Kubernetes kind string back to a Kind.
func KindFromKube(kube string) (Kind, bool) {
	for _, k := range Kinds {
		if k.KubeKind() == kube {
			return k, true
		}
	}
	return "", false
}

// ClusterSpec holds the cluster fields the graph reads.
type ClusterSpec struct {
	ControlPlaneRef *corev1.LocalObjectReference `json:"controlPlaneRef,omitempty"`
	WorkerRef       *corev1.LocalObjectReference `json:"workerRef,omitempty"`
}

// WorkerSpec holds the worker group fields the graph reads.
type WorkerSpec struct {
	ControlPlaneRef *corev1.LocalObjectReference `json:"controlPlaneRef,omitempty"`
}

// MachineSpec holds the machine fields the graph reads.
type MachineSpec struct {
	ControlPlaneRef *corev1.ObjectReference `json:"controlPlaneRef,omitempty"`
	WorkerRef       *corev1.ObjectReference `json:"workerRef,omitempty"`
}

// Resource is one decoded resource document.
type Resource struct {
	Kind Kind
	Meta metav1.ObjectMeta

	// Exactly one of these is set for clusters, workers and machines.
	// Control planes carry no references the graph reads.
	Cluster *ClusterSpec
	Worker  *WorkerSpec
	Machine *MachineSpec

	// Raw is the original document, retained as opaque payload.
	Raw json.RawMessage
}

// Name returns metadata.name.
func (r Resource) Name() string { return r.Meta.Name }

// References returns the names this resource points at through its spec
// reference fields, in emission order. Empty names are skipped.
func (r Resource) References() []string {
	var refs []string
	add := func(name string) {
		if name != "" {
			refs = append(refs, name)
		}
	}
	switch r.Kind {
	case KindCluster:
		if r.Cluster != nil {
			if r.Cluster.ControlPlaneRef != nil {
				add(r.Cluster.ControlPlaneRef.Name)
			}
			if r.Cluster.WorkerRef != nil {
				add(r.Cluster.WorkerRef.Name)
			}
		}
	case KindWorker:
		if r.Worker != nil && r.Worker.ControlPlaneRef != nil {
			add(r.Worker.ControlPlaneRef.Name)
		}
	}
	return refs
}

// Owner selects the owner descriptor for graph purposes. The first owner
// reference whose kind is in expected wins; otherwise the first owner
// reference is used. Only metadata.ownerReferences are consulted.
func (r Resource) Owner(expected ...string) (Owner, bool) {
	owners := r.Meta.OwnerReferences
	for _, want := range expected {
		for _, o := range owners {
			if o.Kind == want && o.Name != "" {
				return Owner{Kind: o.Kind, Name: o.Name}, true
			}
		}
	}
	if len(owners) > 0 {
		if owners[0].Name == "" {
			return Owner{}, false
		}
		return Owner{Kind: owners[0].Kind, Name: owners[0].Name}, true
	}
	return Owner{}, false
}

// SpecOwner derives an owner for a machine from spec.workerRef, then
// spec.controlPlaneRef. Other kinds have none.
func (r Resource) SpecOwner() (Owner, bool) {
	if r.Kind != KindMachine || r.Machine == nil {
		return Owner{}, false
	}
	if ref := r.Machine.WorkerRef; ref != nil && ref.Name != "" {
		return Owner{Kind: KubeKindWorker, Name: ref.Name}, true
	}
	if ref := r.Machine.ControlPlaneRef; ref != nil && ref.Name != "" {
		return Owner{Kind: KubeKindControlPlane, Name: ref.Name}, true
	}
	return Owner{}, false
}

// Owner is the parent chosen by [Resource.Owner].
type Owner struct {
	Kind string
	Name string
}

// Collections groups resources by kind, preserving input order.
type Collections struct {
	Clusters      []Resource
	ControlPlanes []Resource
	Workers       []Resource
	Machines      []Resource
}

// Len returns the total number of resources.
func (c Collections) Len() int {
	return len(c.Clusters) + len(c.ControlPlanes) + len(c.Workers) + len(c.Machines)
}

// Of returns the collection holding kind k.
func (c Collections) Of(k Kind) []Resource {
	switch k {
	case KindCluster:
		return c.Clusters
	case KindControlPlane:
		return c.ControlPlanes
	case KindWorker:
		return c.Workers
	case KindMachine:
		return c.Machines
	}
	return nil
}

// Add appends r to the collection matching its kind.
func (c *Collections) Add(r Resource) {
	switch r.Kind {
	case KindCluster:
		c.Clusters = append(c.Clusters, r)
	case KindControlPlane:
		c.ControlPlanes = append(c.ControlPlanes, r)
	case KindWorker:
		c.Workers = append(c.Workers, r)
	case KindMachine:
		c.Machines = append(c.Machines, r)
	}
}
