package resource

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/yaml"

	errs "github.com/taloscope/taloscope/pkg/errors"
)

// envelope is the shape returned by the resource backend: one array per kind.
type envelope struct {
	TalosClusters      []json.RawMessage `json:"talosClusters"`
	TalosControlPlanes []json.RawMessage `json:"talosControlPlanes"`
	TalosWorkers       []json.RawMessage `json:"talosWorkers"`
	TalosMachines      []json.RawMessage `json:"talosMachines"`
}

func (e *envelope) lists() [4]*[]json.RawMessage {
	return [4]*[]json.RawMessage{&e.TalosClusters, &e.TalosControlPlanes, &e.TalosWorkers, &e.TalosMachines}
}

// header is the part of any document needed to route it.
type header struct {
	Kind  string            `json:"kind"`
	Items []json.RawMessage `json:"items"`
}

// document is the part of a resource document the graph parses.
type document struct {
	Metadata json.RawMessage `json:"metadata"`
	Spec     json.RawMessage `json:"spec"`
}

// Decode parses resource collections from JSON or YAML.
//
// Three input shapes are accepted:
//   - the backend envelope with talosClusters, talosControlPlanes,
//     talosWorkers and talosMachines arrays
//   - a Kubernetes List whose items carry a Talos kind
//   - a multi-document YAML stream of individual Talos resources
//
// Resources that fail to parse are skipped and reported as INVALID_RESOURCE
// errors joined into the returned error; the remaining resources are still
// returned.
func Decode(data []byte) (Collections, error) {
	var c Collections
	var problems []error

	docs, err := splitDocuments(data)
	if err != nil {
		return c, errs.Wrap(errs.ErrCodeInvalidFormat, err, "split YAML stream")
	}
	if len(docs) == 0 {
		return c, errs.New(errs.ErrCodeInvalidInput, "no resource documents found")
	}

	for i, doc := range docs {
		js, err := yaml.YAMLToJSON(doc)
		if err != nil {
			return Collections{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "document %d", i)
		}
		if err := decodeDocument(js, &c, &problems); err != nil {
			return Collections{}, err
		}
	}
	return c, errors.Join(problems...)
}

func decodeDocument(js []byte, c *Collections, problems *[]error) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(js, &probe); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "expected an object")
	}

	if isEnvelope(probe) {
		var env envelope
		if err := json.Unmarshal(js, &env); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode resource envelope")
		}
		for i, list := range env.lists() {
			kind := Kinds[i]
			for j, raw := range *list {
				r, err := Parse(kind, raw)
				if err != nil {
					*problems = append(*problems, fmt.Errorf("%s[%d]: %w", kind.KubeKind(), j, err))
					continue
				}
				c.Add(r)
			}
		}
		return nil
	}

	var h header
	if err := json.Unmarshal(js, &h); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode document header")
	}
	if h.Kind == "List" || strings.HasSuffix(h.Kind, "List") && h.Items != nil {
		for i, item := range h.Items {
			if err := decodeDocument(item, c, problems); err != nil {
				*problems = append(*problems, fmt.Errorf("items[%d]: %w", i, err))
			}
		}
		return nil
	}

	kind, ok := KindFromKube(h.Kind)
	if !ok {
		*problems = append(*problems, errs.New(errs.ErrCodeInvalidResource, "unsupported kind %q", h.Kind))
		return nil
	}
	r, err := Parse(kind, js)
	if err != nil {
		*problems = append(*problems, err)
		return nil
	}
	c.Add(r)
	return nil
}

func isEnvelope(probe map[string]json.RawMessage) bool {
	for _, key := range []string{"talosClusters", "talosControlPlanes", "talosWorkers", "talosMachines"} {
		if _, ok := probe[key]; ok {
			return true
		}
	}
	return false
}

// Parse decodes a single resource document of the given kind. Only metadata
// and the reference fields of spec are interpreted; raw is kept verbatim.
func Parse(kind Kind, raw json.RawMessage) (Resource, error) {
	if !kind.Valid() {
		return Resource{}, errs.New(errs.ErrCodeInvalidResource, "unknown kind %q", kind)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Resource{}, errs.Wrap(errs.ErrCodeInvalidResource, err, "decode %s", kind.KubeKind())
	}

	r := Resource{Kind: kind, Raw: append(json.RawMessage(nil), raw...)}
	if isSet(doc.Metadata) {
		if err := json.Unmarshal(doc.Metadata, &r.Meta); err != nil {
			return Resource{}, errs.Wrap(errs.ErrCodeInvalidResource, err, "decode %s metadata", kind.KubeKind())
		}
	}

	var target any
	switch kind {
	case KindCluster:
		r.Cluster = &ClusterSpec{}
		target = r.Cluster
	case KindWorker:
		r.Worker = &WorkerSpec{}
		target = r.Worker
	case KindMachine:
		r.Machine = &MachineSpec{}
		target = r.Machine
	}
	if target != nil && isSet(doc.Spec) {
		if err := json.Unmarshal(doc.Spec, target); err != nil {
			return Resource{}, errs.Wrap(errs.ErrCodeInvalidResource, err, "decode %s %q spec", kind.KubeKind(), r.Meta.Name)
		}
	}
	return r, nil
}

func isSet(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// ReadFile decodes resource collections from a JSON or YAML file.
func ReadFile(path string) (Collections, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Collections{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "resources file %s", path)
		}
		return Collections{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(data)
}

// Encode writes c in the backend envelope shape using each resource's raw
// document. The output is stable for a given input order, which makes it
// suitable as a cache key source.
func Encode(c Collections) ([]byte, error) {
	var env envelope
	for i, list := range env.lists() {
		src := c.Of(Kinds[i])
		*list = make([]json.RawMessage, 0, len(src))
		for _, r := range src {
			raw := r.Raw
			if len(raw) == 0 {
				var err error
				if raw, err = synthesize(r); err != nil {
					return nil, err
				}
			}
			*list = append(*list, raw)
		}
	}
	return json.Marshal(env)
}

// synthesize builds a document for a resource constructed in code rather
// than decoded.
func synthesize(r Resource) (json.RawMessage, error) {
	doc := map[string]any{
		"kind":     r.Kind.KubeKind(),
		"metadata": r.Meta,
	}
	switch {
	case r.Cluster != nil:
		doc["spec"] = r.Cluster
	case r.Worker != nil:
		doc["spec"] = r.Worker
	case r.Machine != nil:
		doc["spec"] = r.Machine
	}
	return json.Marshal(doc)
}

// splitDocuments splits a YAML stream into documents. JSON input comes back
// as a single document. A separator may carry the start of its document on
// the same line ("--- {kind: TalosCluster, ...}").
func splitDocuments(data []byte) ([][]byte, error) {
	r := utilyaml.NewYAMLReader(bufio.NewReader(bytes.NewReader(inlineSeparators(data))))
	var docs [][]byte
	for {
		doc, err := r.Read()
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, err
		}
		if len(bytes.TrimSpace(doc)) > 0 {
			docs = append(docs, doc)
		}
	}
}

// inlineSeparators moves content that follows a "--- " marker onto its own
// line, which is the only separator form the YAML reader accepts.
func inlineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte("--- ")) {
		return data
	}
	var out bytes.Buffer
	for _, line := range bytes.SplitAfter(data, []byte("\n")) {
		if rest, ok := bytes.CutPrefix(line, []byte("--- ")); ok && len(bytes.TrimSpace(rest)) > 0 {
			out.WriteString("---\n")
			line = rest
		}
		out.Write(line)
	}
	return out.Bytes()
}
