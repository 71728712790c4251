// Package graph defines the resource graph handed between the builder, the
// layout engine and presentation surfaces, and builds it from resources.
//
// # Core Types
//
//   - [Node]: one resource, with kind, label, footprint, position and the raw
//     resource document as payload
//   - [Edge]: a directed [Reference] or [Ownership] relationship
//   - [Graph]: ordered node and edge lists
//
// # Building
//
// [Build] turns [resource.Collections] into a graph. Reference edges point
// from the dependent to its dependency; ownership edges point from the owner
// to the owned resource:
//
//	c, _ := resource.ReadFile("resources.yaml")
//	g, err := graph.Build(c)
//	if err != nil {
//	    // INVALID_RESOURCE errors for unnamed resources; g is still usable
//	}
//
// # Serialization
//
// Graphs use a node-link JSON format:
//
//	{
//	  "nodes": [{"id": "c1", "kind": "Cluster", "label": "TalosCluster: c1",
//	             "position": {"x": 0, "y": 0}, "size": {"width": 250, "height": 100}}],
//	  "edges": [{"id": "e-c1-cp1", "source": "c1", "target": "cp1", "relationKind": "Reference"}]
//	}
//
// [ReadGraph] validates node id uniqueness and edge endpoints on input.
//
// [resource.Collections]: github.com/taloscope/taloscope/pkg/resource.Collections
package graph
