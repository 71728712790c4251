package resource

import (
	"encoding/json"
	"reflect"
	"testing"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	errs "github.com/taloscope/taloscope/pkg/errors"
)

const envelopeJSON = `{
  "talosClusters": [
    {"apiVersion": "talos.example.com/v1alpha1", "kind": "TalosCluster",
     "metadata": {"name": "c1"},
     "spec": {"controlPlaneRef": {"name": "cp1"}, "workerRef": {"name": "wk1"}, "clusterName": "prod"}}
  ],
  "talosControlPlanes": [
    {"metadata": {"name": "cp1", "ownerReferences": [{"apiVersion": "v1", "kind": "TalosCluster", "name": "c1", "uid": "1"}]},
     "spec": {"replicas": 3}}
  ],
  "talosWorkers": [
    {"metadata": {"name": "wk1"}, "spec": {"controlPlaneRef": {"name": "cp1"}}}
  ],
  "talosMachines": [
    {"metadata": {"name": "m1", "ownerReferences": [{"apiVersion": "v1", "kind": "TalosWorker", "name": "wk1", "uid": "2"}]}}
  ]
}`

func TestDecodeEnvelope(t *testing.T) {
	c, err := Decode([]byte(envelopeJSON))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if c.Len() != 4 {
		t.Fatalf("Len = %d, want 4", c.Len())
	}

	cl := c.Clusters[0]
	if cl.Kind != KindCluster || cl.Name() != "c1" {
		t.Errorf("cluster = %s/%s, want Cluster/c1", cl.Kind, cl.Name())
	}
	if got := cl.References(); len(got) != 2 || got[0] != "cp1" || got[1] != "wk1" {
		t.Errorf("cluster refs = %v, want [cp1 wk1]", got)
	}

	var payload map[string]any
	if err := json.Unmarshal(cl.Raw, &payload); err != nil {
		t.Fatalf("raw payload: %v", err)
	}
	if spec := payload["spec"].(map[string]any); spec["clusterName"] != "prod" {
		t.Errorf("raw payload lost unparsed field: %v", spec)
	}

	if got := c.Workers[0].References(); len(got) != 1 || got[0] != "cp1" {
		t.Errorf("worker refs = %v, want [cp1]", got)
	}
	if len(c.ControlPlanes[0].References()) != 0 {
		t.Error("control plane should carry no references")
	}
	if o, ok := c.Machines[0].Owner(KindMachine.ParentKinds()...); !ok || o.Name != "wk1" {
		t.Errorf("machine owner = %+v, %v; want wk1", o, ok)
	}
}

func TestDecodeYAMLStream(t *testing.T) {
	input := `apiVersion: talos.example.com/v1alpha1
kind: TalosControlPlane
metadata:
  name: cp1
---
kind: TalosWorker
metadata:
  name: wk1
spec:
  controlPlaneRef:
    name: cp1
---
kind: ConfigMap
metadata:
  name: ignored
`
	c, err := Decode([]byte(input))
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if !errs.Is(err, errs.ErrCodeInvalidResource) {
		t.Errorf("unsupported kind should be reported as INVALID_RESOURCE, got %v", err)
	}
	if c.Workers[0].Worker.ControlPlaneRef.Name != "cp1" {
		t.Errorf("worker ref = %q, want cp1", c.Workers[0].Worker.ControlPlaneRef.Name)
	}
}

func TestDecodeInlineSeparators(t *testing.T) {
	tests := []struct {
		name  string
		input string
		names []string
	}{
		{
			name: "flow documents on separator lines",
			input: "--- {apiVersion: v1, kind: TalosCluster, metadata: {name: c1}}\n" +
				"--- {apiVersion: v1, kind: TalosWorker, metadata: {name: w1}}\n",
			names: []string{"c1", "w1"},
		},
		{
			name: "mixed with block documents",
			input: "kind: TalosControlPlane\nmetadata:\n  name: cp1\n" +
				"--- {kind: TalosMachine, metadata: {name: m1}}\n" +
				"--- # trailing comment\nkind: TalosWorker\nmetadata:\n  name: w1\n",
			names: []string{"cp1", "w1", "m1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Decode([]byte(tt.input))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			var got []string
			for _, k := range Kinds {
				for _, r := range c.Of(k) {
					got = append(got, r.Name())
				}
			}
			if !reflect.DeepEqual(got, tt.names) {
				t.Errorf("names = %v, want %v", got, tt.names)
			}
		})
	}
}

func TestDecodeList(t *testing.T) {
	input := `{"kind": "List", "items": [
	  {"kind": "TalosMachine", "metadata": {"name": "m1"}, "spec": {"workerRef": {"kind": "TalosWorker", "name": "wk1"}}}
	]}`
	c, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(c.Machines) != 1 || c.Machines[0].Machine.WorkerRef.Name != "wk1" {
		t.Fatalf("machines = %+v", c.Machines)
	}
	if o, ok := c.Machines[0].Owner(KindMachine.ParentKinds()...); ok {
		t.Errorf("Owner() read spec.workerRef: %+v", o)
	}
	o, ok := c.Machines[0].SpecOwner()
	if !ok || o.Name != "wk1" || o.Kind != KubeKindWorker {
		t.Errorf("SpecOwner() = %+v, %v; want wk1", o, ok)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errs.Code
		keep  int
	}{
		{"empty", "", errs.ErrCodeInvalidInput, 0},
		{"not an object", "[1, 2]", errs.ErrCodeInvalidFormat, 0},
		{"bad spec", `{"talosWorkers": [{"metadata": {"name": "w"}, "spec": {"controlPlaneRef": "cp1"}}, {"metadata": {"name": "ok"}}]}`, errs.ErrCodeInvalidResource, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Decode([]byte(tt.input))
			if !errs.Is(err, tt.code) {
				t.Fatalf("error = %v, want code %s", err, tt.code)
			}
			if c.Len() != tt.keep {
				t.Errorf("Len = %d, want %d", c.Len(), tt.keep)
			}
		})
	}
}

func TestOwner(t *testing.T) {
	owners := func(refs ...metav1.OwnerReference) metav1.ObjectMeta {
		return metav1.ObjectMeta{Name: "x", OwnerReferences: refs}
	}
	tests := []struct {
		name     string
		res      Resource
		wantName string
		wantOK   bool
	}{
		{
			name:   "no owners",
			res:    Resource{Kind: KindWorker, Meta: owners()},
			wantOK: false,
		},
		{
			name:     "matching kind preferred over first",
			res:      Resource{Kind: KindMachine, Meta: owners(metav1.OwnerReference{Kind: "MachineSet", Name: "ms"}, metav1.OwnerReference{Kind: KubeKindWorker, Name: "wk1"})},
			wantName: "wk1",
			wantOK:   true,
		},
		{
			name:     "first parent kind wins",
			res:      Resource{Kind: KindMachine, Meta: owners(metav1.OwnerReference{Kind: KubeKindControlPlane, Name: "cp1"}, metav1.OwnerReference{Kind: KubeKindWorker, Name: "wk1"})},
			wantName: "wk1",
			wantOK:   true,
		},
		{
			name:     "fallback to first",
			res:      Resource{Kind: KindControlPlane, Meta: owners(metav1.OwnerReference{Kind: "Other", Name: "o1"})},
			wantName: "o1",
			wantOK:   true,
		},
		{
			name:   "machine without owners or refs",
			res:    Resource{Kind: KindMachine, Meta: owners(), Machine: &MachineSpec{}},
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, ok := tt.res.Owner(tt.res.Kind.ParentKinds()...)
			if ok != tt.wantOK || o.Name != tt.wantName {
				t.Errorf("Owner() = %+v, %v; want %q, %v", o, ok, tt.wantName, tt.wantOK)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	c, err := Decode([]byte(envelopeJSON))
	if err != nil {
		t.Fatal(err)
	}
	data, err := Encode(c)
	if err != nil {
		t.Fatal(err)
	}
	again, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	data2, err := Encode(again)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(data2) {
		t.Errorf("Encode is not stable:\n%s\n%s", data, data2)
	}
}

func TestKindMapping(t *testing.T) {
	for _, k := range Kinds {
		back, ok := KindFromKube(k.KubeKind())
		if !ok || back != k {
			t.Errorf("KindFromKube(%s) = %s, %v", k.KubeKind(), back, ok)
		}
	}
	if Kind("Pod").Valid() {
		t.Error("Pod should not be a valid kind")
	}
}
