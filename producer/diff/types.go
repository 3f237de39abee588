// Copyright © 2023 Meroxa, Inc. & Yalantis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package diff

// Node is a snapshot of a node.
type Node struct {
	// ID is the host identity assigned by the storage engine.
	ID         int64
	Labels     []string
	Properties map[string]any
}

// Relationship is a snapshot of a relationship.
type Relationship struct {
	ID         int64
	Type       string
	StartID    int64
	EndID      int64
	Properties map[string]any
}

// LabelEntry is a label assigned to or removed from a node.
type LabelEntry struct {
	NodeID int64
	Label  string
}

// PropertyEntry is a property assigned to or removed from a node or a relationship.
type PropertyEntry struct {
	EntityID int64
	Key      string
	// Value is the assigned value, it's nil for removals.
	Value any
	// Previous is the last committed value, nil if the property didn't exist.
	Previous any
}

// Reader gives access to the current state of live entities,
// that is the state with the commit changes applied but not yet committed.
type Reader interface {
	Node(id int64) (Node, bool)
	Relationship(id int64) (Relationship, bool)
}

// TransactionData holds the changes of one commit as reported by the commit hook.
//
// Deleted entities must be captured before the physical delete,
// they are not readable through a [Reader] afterwards.
type TransactionData struct {
	AssignedLabels                 []LabelEntry
	RemovedLabels                  []LabelEntry
	AssignedNodeProperties         []PropertyEntry
	RemovedNodeProperties          []PropertyEntry
	AssignedRelationshipProperties []PropertyEntry
	RemovedRelationshipProperties  []PropertyEntry
	CreatedNodes                   []Node
	DeletedNodes                   []Node
	CreatedRelationships           []Relationship
	DeletedRelationships           []Relationship
}

// Graph is an in-memory [Reader].
type Graph struct {
	nodes         map[int64]Node
	relationships map[int64]Relationship
}

// NewGraph creates a new [Graph] holding the given entities.
func NewGraph(nodes []Node, relationships []Relationship) *Graph {
	g := &Graph{
		nodes:         make(map[int64]Node, len(nodes)),
		relationships: make(map[int64]Relationship, len(relationships)),
	}

	for _, node := range nodes {
		g.nodes[node.ID] = node
	}

	for _, relationship := range relationships {
		g.relationships[relationship.ID] = relationship
	}

	return g
}

// Node returns a node by its host identity.
func (g *Graph) Node(id int64) (Node, bool) {
	node, ok := g.nodes[id]

	return node, ok
}

// Relationship returns a relationship by its host identity.
func (g *Graph) Relationship(id int64) (Relationship, bool) {
	relationship, ok := g.relationships[id]

	return relationship, ok
}
