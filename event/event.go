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

// Package event defines the change events captured from committed transactions
// and replayed into a graph on the receiving side.
package event

import (
	"maps"
	"slices"

	"github.com/conduitio-labs/conduit-connector-neo4j-streams/schema"
)

// Operation defines what happened to an entity within a commit.
type Operation string

// The available operations are listed below.
const (
	OperationCreated Operation = "created"
	OperationUpdated Operation = "updated"
	OperationDeleted Operation = "deleted"
)

// EntityType defines a kind of a changed entity.
type EntityType string

// The available entity types are listed below.
const (
	EntityTypeNode         EntityType = "node"
	EntityTypeRelationship EntityType = "relationship"
)

// Meta holds the commit-level information shared by all events of one commit.
type Meta struct {
	// Timestamp is the commit time in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
	// Actor is the user that performed the commit.
	Actor    string `json:"actor"`
	CommitID int64  `json:"commitId"`
	// EventIndex is the position of the event within its commit, in [0, EventCount).
	EventIndex int `json:"eventIndex"`
	// EventCount is the number of events of the commit.
	EventCount int            `json:"eventCount"`
	Operation  Operation      `json:"operation"`
	Source     map[string]any `json:"source"`
}

// RecordChange is the state of an entity at one point in time.
// It is implemented by [*NodeChange] and [*RelationshipChange] only.
type RecordChange interface {
	Props() map[string]any
	recordChange()
}

// NodeChange is the state of a node.
type NodeChange struct {
	Properties map[string]any `json:"properties"`
	// Labels are always sorted.
	Labels []string `json:"labels"`
}

// NewNodeChange creates a new [NodeChange], copying the properties and sorting the labels.
func NewNodeChange(properties map[string]any, labels []string) *NodeChange {
	sorted := slices.Clone(labels)
	if sorted == nil {
		sorted = []string{}
	}

	slices.Sort(sorted)

	return &NodeChange{
		Properties: cloneProperties(properties),
		Labels:     slices.Compact(sorted),
	}
}

// Props returns the node properties.
func (c *NodeChange) Props() map[string]any { return c.Properties }

func (*NodeChange) recordChange() {}

// RelationshipChange is the state of a relationship.
// The relationship type is carried by the [RelationshipPayload].
type RelationshipChange struct {
	Properties map[string]any `json:"properties"`
}

// NewRelationshipChange creates a new [RelationshipChange], copying the properties.
func NewRelationshipChange(properties map[string]any) *RelationshipChange {
	return &RelationshipChange{Properties: cloneProperties(properties)}
}

// Props returns the relationship properties.
func (c *RelationshipChange) Props() map[string]any { return c.Properties }

func (*RelationshipChange) recordChange() {}

// Payload is the changed entity. It is implemented by [NodePayload] and [RelationshipPayload] only.
//
// Before is nil if the entity was created by the commit,
// After is nil if the entity was deleted by it.
type Payload interface {
	// EntityID returns the external identity of the entity.
	EntityID() string
	EntityType() EntityType
	// Changes returns the before and the after states, either of them may be nil.
	Changes() (before, after RecordChange)
	payload()
}

// NodePayload is a changed node.
type NodePayload struct {
	ID     string
	Before *NodeChange
	After  *NodeChange
}

// EntityID returns the external identity of the node.
func (p NodePayload) EntityID() string { return p.ID }

// EntityType returns [EntityTypeNode].
func (NodePayload) EntityType() EntityType { return EntityTypeNode }

// Changes returns the before and the after states of the node.
func (p NodePayload) Changes() (RecordChange, RecordChange) {
	var before, after RecordChange
	if p.Before != nil {
		before = p.Before
	}

	if p.After != nil {
		after = p.After
	}

	return before, after
}

func (NodePayload) payload() {}

// NodeRef references a relationship endpoint as of commit time.
type NodeRef struct {
	ID     string   `json:"id"`
	Labels []string `json:"labels"`
}

// RelationshipPayload is a changed relationship.
type RelationshipPayload struct {
	ID     string
	Start  NodeRef
	End    NodeRef
	Before *RelationshipChange
	After  *RelationshipChange
	// Label is the relationship type.
	Label string
}

// EntityID returns the external identity of the relationship.
func (p RelationshipPayload) EntityID() string { return p.ID }

// EntityType returns [EntityTypeRelationship].
func (RelationshipPayload) EntityType() EntityType { return EntityTypeRelationship }

// Changes returns the before and the after states of the relationship.
func (p RelationshipPayload) Changes() (RecordChange, RecordChange) {
	var before, after RecordChange
	if p.Before != nil {
		before = p.Before
	}

	if p.After != nil {
		after = p.After
	}

	return before, after
}

func (RelationshipPayload) payload() {}

// OperationOf derives the operation from the presence of the payload states.
func OperationOf(p Payload) Operation {
	before, after := p.Changes()

	switch {
	case before == nil:
		return OperationCreated
	case after == nil:
		return OperationDeleted
	default:
		return OperationUpdated
	}
}

// TransactionEvent is a single changed entity of a commit, the unit of transport.
type TransactionEvent struct {
	Meta    Meta
	Payload Payload
	Schema  schema.Schema
}

// Operation returns the event operation,
// falling back to the one derived from the payload if the meta doesn't carry it.
func (e TransactionEvent) Operation() Operation {
	if e.Meta.Operation != "" {
		return e.Meta.Operation
	}

	return OperationOf(e.Payload)
}

func cloneProperties(properties map[string]any) map[string]any {
	if properties == nil {
		return map[string]any{}
	}

	return maps.Clone(properties)
}
