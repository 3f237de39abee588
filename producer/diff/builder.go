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

// Package diff reconstructs complete before and after states of entities
// changed by a commit from the incremental changes reported by the commit hook.
package diff

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/conduitio-labs/conduit-connector-neo4j-streams/event"
)

// Builder accumulates the changes of a single commit.
// A Builder must not be reused across commits.
type Builder struct {
	reader Reader

	assignedLabels   map[int64][]string
	removedLabels    map[int64][]string
	nodeProperties   map[int64][]propertyChange
	relationshipProp map[int64][]propertyChange

	createdNodes         []Node
	deletedNodes         []Node
	createdRelationships []Relationship
	deletedRelationships []Relationship
}

// propertyChange is a property delta folded into the previous state of an entity.
type propertyChange struct {
	key      string
	previous any
	// existed reports whether the property had a committed value.
	existed bool
}

// NewBuilder creates a new instance of the [Builder].
func NewBuilder(reader Reader) *Builder {
	return &Builder{
		reader:           reader,
		assignedLabels:   make(map[int64][]string),
		removedLabels:    make(map[int64][]string),
		nodeProperties:   make(map[int64][]propertyChange),
		relationshipProp: make(map[int64][]propertyChange),
	}
}

// Build runs a [Builder] over the whole [TransactionData] of a commit.
func Build(reader Reader, data TransactionData) ([]event.Payload, error) {
	return NewBuilder(reader).
		WithLabels(data.AssignedLabels, data.RemovedLabels).
		WithNodeProperties(data.AssignedNodeProperties, data.RemovedNodeProperties).
		WithRelationshipProperties(data.AssignedRelationshipProperties, data.RemovedRelationshipProperties).
		WithCreated(data.CreatedNodes, data.CreatedRelationships).
		WithDeleted(data.DeletedNodes, data.DeletedRelationships).
		Build()
}

// WithLabels records assigned and removed node labels.
func (b *Builder) WithLabels(assigned, removed []LabelEntry) *Builder {
	for _, entry := range assigned {
		b.assignedLabels[entry.NodeID] = append(b.assignedLabels[entry.NodeID], entry.Label)
	}

	for _, entry := range removed {
		b.removedLabels[entry.NodeID] = append(b.removedLabels[entry.NodeID], entry.Label)
	}

	return b
}

// WithNodeProperties records assigned and removed node properties.
func (b *Builder) WithNodeProperties(assigned, removed []PropertyEntry) *Builder {
	addPropertyChanges(b.nodeProperties, assigned, removed)

	return b
}

// WithRelationshipProperties records assigned and removed relationship properties.
func (b *Builder) WithRelationshipProperties(assigned, removed []PropertyEntry) *Builder {
	addPropertyChanges(b.relationshipProp, assigned, removed)

	return b
}

// WithCreated records created entities.
func (b *Builder) WithCreated(nodes []Node, relationships []Relationship) *Builder {
	b.createdNodes = append(b.createdNodes, nodes...)
	b.createdRelationships = append(b.createdRelationships, relationships...)

	return b
}

// WithDeleted records deleted entities, captured before they were deleted.
func (b *Builder) WithDeleted(nodes []Node, relationships []Relationship) *Builder {
	b.deletedNodes = append(b.deletedNodes, nodes...)
	b.deletedRelationships = append(b.deletedRelationships, relationships...)

	return b
}

// Build returns one payload per changed entity, in a deterministic order:
// created nodes and relationships, updated nodes and relationships ordered by identity,
// deleted nodes and relationships.
//
// Entities created and deleted within the commit produce no payload.
// On error nothing is returned, a commit is emitted either whole or not at all.
func (b *Builder) Build() ([]event.Payload, error) {
	createdNodeIDs := idSet(b.createdNodes, func(n Node) int64 { return n.ID })
	deletedNodeIDs := idSet(b.deletedNodes, func(n Node) int64 { return n.ID })
	createdRelIDs := idSet(b.createdRelationships, func(r Relationship) int64 { return r.ID })
	deletedRelIDs := idSet(b.deletedRelationships, func(r Relationship) int64 { return r.ID })

	// deleted nodes stay resolvable as relationship endpoints
	deletedNodes := make(map[int64]Node, len(b.deletedNodes))
	for _, node := range b.deletedNodes {
		deletedNodes[node.ID] = node
	}

	var payloads []event.Payload

	for _, node := range b.createdNodes {
		if _, ok := deletedNodeIDs[node.ID]; ok {
			continue
		}

		// the created snapshot may predate later changes within the commit
		if current, ok := b.reader.Node(node.ID); ok {
			node = current
		}

		payloads = append(payloads, event.NodePayload{
			ID:    externalID(node.ID),
			After: event.NewNodeChange(node.Properties, node.Labels),
		})
	}

	for _, relationship := range b.createdRelationships {
		if _, ok := deletedRelIDs[relationship.ID]; ok {
			continue
		}

		if current, ok := b.reader.Relationship(relationship.ID); ok {
			relationship = current
		}

		payload, err := b.relationshipPayload(relationship, deletedNodes)
		if err != nil {
			return nil, err
		}

		payload.After = event.NewRelationshipChange(relationship.Properties)
		payloads = append(payloads, payload)
	}

	for _, id := range b.updatedCandidates(b.nodeIDs(), createdNodeIDs, deletedNodeIDs) {
		payload, err := b.updatedNode(id)
		if err != nil {
			return nil, err
		}

		payloads = append(payloads, payload)
	}

	for _, id := range b.updatedCandidates(slices.Collect(maps.Keys(b.relationshipProp)), createdRelIDs, deletedRelIDs) {
		payload, err := b.updatedRelationship(id, deletedNodes)
		if err != nil {
			return nil, err
		}

		payloads = append(payloads, payload)
	}

	for _, node := range b.deletedNodes {
		if _, ok := createdNodeIDs[node.ID]; ok {
			continue
		}

		payloads = append(payloads, event.NodePayload{
			ID:     externalID(node.ID),
			Before: event.NewNodeChange(node.Properties, node.Labels),
		})
	}

	for _, relationship := range b.deletedRelationships {
		if _, ok := createdRelIDs[relationship.ID]; ok {
			continue
		}

		payload, err := b.relationshipPayload(relationship, deletedNodes)
		if err != nil {
			return nil, err
		}

		payload.Before = event.NewRelationshipChange(relationship.Properties)
		payloads = append(payloads, payload)
	}

	return payloads, nil
}

func (b *Builder) updatedNode(id int64) (event.NodePayload, error) {
	current, ok := b.reader.Node(id)
	if !ok {
		return event.NodePayload{}, fmt.Errorf("updated node %d: %w", id, ErrMissingEntity)
	}

	previousLabels, err := b.previousLabels(current)
	if err != nil {
		return event.NodePayload{}, err
	}

	return event.NodePayload{
		ID:     externalID(id),
		Before: event.NewNodeChange(previousProperties(current.Properties, b.nodeProperties[id]), previousLabels),
		After:  event.NewNodeChange(current.Properties, current.Labels),
	}, nil
}

func (b *Builder) updatedRelationship(id int64, deletedNodes map[int64]Node) (event.RelationshipPayload, error) {
	current, ok := b.reader.Relationship(id)
	if !ok {
		return event.RelationshipPayload{}, fmt.Errorf("updated relationship %d: %w", id, ErrMissingEntity)
	}

	payload, err := b.relationshipPayload(current, deletedNodes)
	if err != nil {
		return event.RelationshipPayload{}, err
	}

	payload.Before = event.NewRelationshipChange(previousProperties(current.Properties, b.relationshipProp[id]))
	payload.After = event.NewRelationshipChange(current.Properties)

	return payload, nil
}

// relationshipPayload resolves the relationship endpoints and returns a payload without states.
func (b *Builder) relationshipPayload(
	relationship Relationship,
	deletedNodes map[int64]Node,
) (event.RelationshipPayload, error) {
	start, err := b.endpoint(relationship.StartID, deletedNodes)
	if err != nil {
		return event.RelationshipPayload{}, fmt.Errorf("relationship %d start: %w", relationship.ID, err)
	}

	end, err := b.endpoint(relationship.EndID, deletedNodes)
	if err != nil {
		return event.RelationshipPayload{}, fmt.Errorf("relationship %d end: %w", relationship.ID, err)
	}

	return event.RelationshipPayload{
		ID:    externalID(relationship.ID),
		Start: start,
		End:   end,
		Label: relationship.Type,
	}, nil
}

func (b *Builder) endpoint(id int64, deletedNodes map[int64]Node) (event.NodeRef, error) {
	node, ok := b.reader.Node(id)
	if !ok {
		node, ok = deletedNodes[id]
	}

	if !ok {
		return event.NodeRef{}, fmt.Errorf("node %d: %w", id, ErrMissingEntity)
	}

	labels := slices.Clone(node.Labels)
	slices.Sort(labels)

	return event.NodeRef{ID: externalID(id), Labels: labels}, nil
}

// previousLabels folds all label changes of a node into its label set before the commit:
// labels assigned by the commit are taken away, labels removed by it are put back.
func (b *Builder) previousLabels(current Node) ([]string, error) {
	assigned := b.assignedLabels[current.ID]
	removed := b.removedLabels[current.ID]

	if len(assigned) == 0 && len(removed) == 0 {
		return current.Labels, nil
	}

	previous := make(map[string]struct{}, len(current.Labels))
	for _, label := range current.Labels {
		previous[label] = struct{}{}
	}

	for _, label := range assigned {
		if !slices.Contains(current.Labels, label) || slices.Contains(removed, label) {
			return nil, fmt.Errorf("node %d label %q assigned: %w", current.ID, label, ErrInconsistentLabels)
		}

		delete(previous, label)
	}

	for _, label := range removed {
		if slices.Contains(current.Labels, label) {
			return nil, fmt.Errorf("node %d label %q removed: %w", current.ID, label, ErrInconsistentLabels)
		}

		previous[label] = struct{}{}
	}

	return slices.Collect(maps.Keys(previous)), nil
}

// nodeIDs returns identities of nodes touched by any label or property change.
func (b *Builder) nodeIDs() []int64 {
	ids := slices.Collect(maps.Keys(b.assignedLabels))
	ids = append(ids, slices.Collect(maps.Keys(b.removedLabels))...)
	ids = append(ids, slices.Collect(maps.Keys(b.nodeProperties))...)

	return ids
}

// updatedCandidates returns sorted unique identities that are neither created nor deleted by the commit.
func (b *Builder) updatedCandidates(ids []int64, created, deleted map[int64]struct{}) []int64 {
	slices.Sort(ids)
	ids = slices.Compact(ids)

	return slices.DeleteFunc(ids, func(id int64) bool {
		_, isCreated := created[id]
		_, isDeleted := deleted[id]

		return isCreated || isDeleted
	})
}

func addPropertyChanges(target map[int64][]propertyChange, assigned, removed []PropertyEntry) {
	for _, entry := range assigned {
		target[entry.EntityID] = append(target[entry.EntityID], propertyChange{
			key:      entry.Key,
			previous: entry.Previous,
			existed:  entry.Previous != nil,
		})
	}

	for _, entry := range removed {
		target[entry.EntityID] = append(target[entry.EntityID], propertyChange{
			key:      entry.Key,
			previous: entry.Previous,
			existed:  entry.Previous != nil,
		})
	}
}

// previousProperties rebuilds the committed properties of an entity from its current ones.
func previousProperties(current map[string]any, changes []propertyChange) map[string]any {
	previous := maps.Clone(current)
	if previous == nil {
		previous = make(map[string]any)
	}

	for _, change := range changes {
		if change.existed {
			previous[change.key] = change.previous
		} else {
			delete(previous, change.key)
		}
	}

	return previous
}

func idSet[T any](entities []T, id func(T) int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(entities))
	for _, entity := range entities {
		set[id(entity)] = struct{}{}
	}

	return set
}

func externalID(id int64) string {
	return strconv.FormatInt(id, 10)
}
