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

import (
	"errors"
	"testing"

	"github.com/conduitio-labs/conduit-connector-neo4j-streams/event"
	"github.com/matryer/is"
)

func TestBuild_updatedNode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		node   Node
		data   TransactionData
		before *event.NodeChange
	}{
		{
			name: "add_label",
			node: Node{ID: 1, Labels: []string{"PreTest", "Test"}, Properties: map[string]any{}},
			data: TransactionData{
				AssignedLabels: []LabelEntry{{NodeID: 1, Label: "Test"}},
			},
			before: event.NewNodeChange(nil, []string{"PreTest"}),
		},
		{
			name: "remove_label",
			node: Node{ID: 1, Labels: []string{"PreTest"}, Properties: map[string]any{}},
			data: TransactionData{
				RemovedLabels: []LabelEntry{{NodeID: 1, Label: "Test"}},
			},
			before: event.NewNodeChange(nil, []string{"PreTest", "Test"}),
		},
		{
			name: "add_several_labels",
			node: Node{ID: 1, Labels: []string{"A", "B", "C"}},
			data: TransactionData{
				AssignedLabels: []LabelEntry{{NodeID: 1, Label: "B"}, {NodeID: 1, Label: "C"}},
			},
			before: event.NewNodeChange(nil, []string{"A"}),
		},
		{
			name: "replace_label",
			node: Node{ID: 1, Labels: []string{"B", "C"}},
			data: TransactionData{
				AssignedLabels: []LabelEntry{{NodeID: 1, Label: "C"}},
				RemovedLabels:  []LabelEntry{{NodeID: 1, Label: "A"}},
			},
			before: event.NewNodeChange(nil, []string{"A", "B"}),
		},
		{
			name: "add_property",
			node: Node{ID: 1, Properties: map[string]any{"p1": "value"}},
			data: TransactionData{
				AssignedNodeProperties: []PropertyEntry{{EntityID: 1, Key: "p1", Value: "value"}},
			},
			before: event.NewNodeChange(map[string]any{}, nil),
		},
		{
			name: "remove_property",
			node: Node{ID: 1, Properties: map[string]any{}},
			data: TransactionData{
				RemovedNodeProperties: []PropertyEntry{{EntityID: 1, Key: "p1", Previous: "value0"}},
			},
			before: event.NewNodeChange(map[string]any{"p1": "value0"}, nil),
		},
		{
			name: "remove_property_without_previous_value",
			node: Node{ID: 1, Properties: map[string]any{"p2": "keep"}},
			data: TransactionData{
				RemovedNodeProperties: []PropertyEntry{{EntityID: 1, Key: "p1"}},
			},
			before: event.NewNodeChange(map[string]any{"p2": "keep"}, nil),
		},
		{
			name: "set_property",
			node: Node{ID: 1, Properties: map[string]any{"p1": "value1"}},
			data: TransactionData{
				AssignedNodeProperties: []PropertyEntry{{EntityID: 1, Key: "p1", Value: "value1", Previous: "value0"}},
			},
			before: event.NewNodeChange(map[string]any{"p1": "value0"}, nil),
		},
		{
			name: "property_change_keeps_labels",
			node: Node{ID: 1, Labels: []string{"Person"}, Properties: map[string]any{"age": int64(31)}},
			data: TransactionData{
				AssignedNodeProperties: []PropertyEntry{{EntityID: 1, Key: "age", Value: int64(31), Previous: int64(30)}},
			},
			before: event.NewNodeChange(map[string]any{"age": int64(30)}, []string{"Person"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			is := is.New(t)

			payloads, err := Build(NewGraph([]Node{tt.node}, nil), tt.data)
			is.NoErr(err)
			is.Equal(len(payloads), 1)

			payload, ok := payloads[0].(event.NodePayload)
			is.True(ok)
			is.Equal(payload.ID, "1")
			is.Equal(payload.Before, tt.before)
			is.Equal(payload.After, event.NewNodeChange(tt.node.Properties, tt.node.Labels))
			is.Equal(event.OperationOf(payload), event.OperationUpdated)
		})
	}
}

func TestBuild_multipleNodesOrderedByID(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	graph := NewGraph([]Node{
		{ID: 1, Properties: map[string]any{"p1": "value1"}},
		{ID: 2, Labels: []string{"PreTest", "Test"}},
	}, nil)

	payloads, err := Build(graph, TransactionData{
		AssignedLabels:         []LabelEntry{{NodeID: 2, Label: "Test"}},
		AssignedNodeProperties: []PropertyEntry{{EntityID: 1, Key: "p1", Value: "value1", Previous: "value0"}},
	})
	is.NoErr(err)
	is.Equal(len(payloads), 2)
	is.Equal(payloads[0].EntityID(), "1")
	is.Equal(payloads[1].EntityID(), "2")
}

func TestBuild_createdNodeIsNotUpdated(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	created := Node{ID: 1, Labels: []string{"Person"}, Properties: map[string]any{"name": "Andrea"}}
	// the node got relabeled and re-propertized after its creation within the same commit
	current := Node{ID: 1, Labels: []string{"Person", "Marked"}, Properties: map[string]any{"name": "Andrea", "age": int64(31)}}

	payloads, err := Build(NewGraph([]Node{current}, nil), TransactionData{
		CreatedNodes:           []Node{created},
		AssignedLabels:         []LabelEntry{{NodeID: 1, Label: "Marked"}},
		AssignedNodeProperties: []PropertyEntry{{EntityID: 1, Key: "age", Value: int64(31)}},
	})
	is.NoErr(err)
	is.Equal(len(payloads), 1)

	payload, ok := payloads[0].(event.NodePayload)
	is.True(ok)
	is.Equal(event.OperationOf(payload), event.OperationCreated)
	is.True(payload.Before == nil)
	is.Equal(payload.After, event.NewNodeChange(current.Properties, current.Labels))
}

func TestBuild_createdAndDeletedEmitsNothing(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	node := Node{ID: 1, Labels: []string{"Person"}}

	payloads, err := Build(NewGraph(nil, nil), TransactionData{
		CreatedNodes:  []Node{node},
		DeletedNodes:  []Node{node},
		RemovedLabels: []LabelEntry{{NodeID: 1, Label: "Person"}},
	})
	is.NoErr(err)
	is.Equal(len(payloads), 0)
}

func TestBuild_deletedNode(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	deleted := Node{ID: 1, Labels: []string{"Person", "Marked"}, Properties: map[string]any{"name": "Andrea", "age": int64(31)}}

	payloads, err := Build(NewGraph(nil, nil), TransactionData{
		DeletedNodes:          []Node{deleted},
		RemovedLabels:         []LabelEntry{{NodeID: 1, Label: "Person"}, {NodeID: 1, Label: "Marked"}},
		RemovedNodeProperties: []PropertyEntry{{EntityID: 1, Key: "name", Previous: "Andrea"}},
	})
	is.NoErr(err)
	is.Equal(len(payloads), 1)

	payload, ok := payloads[0].(event.NodePayload)
	is.True(ok)
	is.Equal(event.OperationOf(payload), event.OperationDeleted)
	is.Equal(payload.Before.Labels, []string{"Marked", "Person"})
	is.Equal(payload.Before.Properties, map[string]any{"name": "Andrea", "age": int64(31)})
}

func TestBuild_relationships(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	andrea := Node{ID: 1, Labels: []string{"Person"}}
	michael := Node{ID: 2, Labels: []string{"Person"}}
	knows := Relationship{ID: 10, Type: "KNOWS", StartID: 1, EndID: 2, Properties: map[string]any{"since": int64(2014)}}
	likes := Relationship{ID: 11, Type: "LIKES", StartID: 2, EndID: 3, Properties: map[string]any{"stars": int64(5)}}
	follows := Relationship{ID: 12, Type: "FOLLOWS", StartID: 1, EndID: 2, Properties: map[string]any{"since": int64(2020)}}
	deletedEnd := Node{ID: 3, Labels: []string{"Product"}}

	graph := NewGraph([]Node{andrea, michael}, []Relationship{knows, follows})

	payloads, err := Build(graph, TransactionData{
		CreatedRelationships: []Relationship{knows},
		AssignedRelationshipProperties: []PropertyEntry{
			{EntityID: 12, Key: "since", Value: int64(2020), Previous: int64(2019)},
		},
		DeletedNodes:         []Node{deletedEnd},
		DeletedRelationships: []Relationship{likes},
	})
	is.NoErr(err)
	is.Equal(len(payloads), 4)

	created, ok := payloads[0].(event.RelationshipPayload)
	is.True(ok)
	is.Equal(created.ID, "10")
	is.Equal(created.Label, "KNOWS")
	is.Equal(created.Start, event.NodeRef{ID: "1", Labels: []string{"Person"}})
	is.Equal(created.End, event.NodeRef{ID: "2", Labels: []string{"Person"}})
	is.Equal(event.OperationOf(created), event.OperationCreated)

	updated, ok := payloads[1].(event.RelationshipPayload)
	is.True(ok)
	is.Equal(updated.ID, "12")
	is.Equal(updated.Before.Properties, map[string]any{"since": int64(2019)})
	is.Equal(updated.After.Properties, map[string]any{"since": int64(2020)})

	is.Equal(payloads[2].EntityID(), "3")
	is.Equal(payloads[2].EntityType(), event.EntityTypeNode)

	deleted, ok := payloads[3].(event.RelationshipPayload)
	is.True(ok)
	is.Equal(deleted.End, event.NodeRef{ID: "3", Labels: []string{"Product"}})
	is.Equal(event.OperationOf(deleted), event.OperationDeleted)
}

func TestBuild_missingEndpointAbortsCommit(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	graph := NewGraph([]Node{{ID: 1}}, nil)

	payloads, err := Build(graph, TransactionData{
		CreatedNodes:         []Node{{ID: 1}},
		CreatedRelationships: []Relationship{{ID: 10, Type: "KNOWS", StartID: 1, EndID: 2}},
	})
	is.True(errors.Is(err, ErrMissingEntity))
	is.Equal(payloads, nil)
}

func TestBuild_missingUpdatedNode(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	_, err := Build(NewGraph(nil, nil), TransactionData{
		AssignedNodeProperties: []PropertyEntry{{EntityID: 5, Key: "p1", Value: "value"}},
	})
	is.True(errors.Is(err, ErrMissingEntity))
}

func TestBuild_inconsistentLabels(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	graph := NewGraph([]Node{{ID: 1, Labels: []string{"Person"}}}, nil)

	_, err := Build(graph, TransactionData{
		// the node still has the label it was reported to lose
		RemovedLabels: []LabelEntry{{NodeID: 1, Label: "Person"}},
	})
	is.True(errors.Is(err, ErrInconsistentLabels))
}
