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

// Package grouper partitions a batch of change events into groups of one statement shape.
package grouper

import (
	"fmt"
	"slices"
	"strings"

	"github.com/conduitio-labs/conduit-connector-neo4j-streams/event"
)

// Kind defines a kind of a replay statement.
type Kind int

// The available kinds are listed below in their execution order.
const (
	KindNodeMerge Kind = iota
	KindRelationshipMerge
	KindRelationshipDelete
	KindNodeDelete
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNodeMerge:
		return "node_merge"
	case KindRelationshipMerge:
		return "relationship_merge"
	case KindRelationshipDelete:
		return "relationship_delete"
	case KindNodeDelete:
		return "node_delete"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Shape is the structural part of a statement that cannot be bound as a row parameter.
type Shape struct {
	// LabelsToAdd and LabelsToRemove are sorted, they're set for node merges only.
	LabelsToAdd    []string
	LabelsToRemove []string
	// RelationshipType is set for relationship merges and deletes only.
	RelationshipType string
}

// String returns a readable shape key.
func (s Shape) String() string {
	if s.RelationshipType != "" {
		return "type=" + s.RelationshipType
	}

	return fmt.Sprintf("add=[%s] remove=[%s]",
		strings.Join(s.LabelsToAdd, ","), strings.Join(s.LabelsToRemove, ","))
}

// key returns a comparable form of the shape.
func (s Shape) key() string {
	return strings.Join(s.LabelsToAdd, "\x00") + "\x01" +
		strings.Join(s.LabelsToRemove, "\x00") + "\x01" + s.RelationshipType
}

// Group holds the events sharing one statement kind and shape, in arrival order.
type Group struct {
	Kind   Kind
	Shape  Shape
	Events []event.TransactionEvent
}

type identity struct {
	entityType event.EntityType
	id         string
}

type groupKey struct {
	kind  Kind
	shape string
}

// run is the fold of all events of one entity within a batch.
type run struct {
	// latest is the index of the last event of the entity.
	latest int
	// beforeLabels are the node labels before the first event, nil if the entity was created in the batch.
	beforeLabels []string
}

// Partition drops all but the latest event of every entity and groups the remaining ones
// by statement kind and shape.
//
// The shape of a node merge covers all events of the node within the batch:
// it turns the labels before the first event into the labels after the latest one.
//
// Groups are returned in execution order: node merges, relationship merges,
// relationship deletes, node deletes. Groups of one kind are ordered by their first event.
func Partition(events []event.TransactionEvent) []Group {
	runs := make(map[identity]*run, len(events))
	for i, e := range events {
		if e.Payload == nil {
			continue
		}

		key := identity{entityType: e.Payload.EntityType(), id: e.Payload.EntityID()}

		r, ok := runs[key]
		if !ok {
			r = &run{beforeLabels: beforeLabels(e.Payload)}
			runs[key] = r
		} else if e.Operation() == event.OperationCreated {
			r.beforeLabels = nil
		}

		r.latest = i
	}

	var (
		groups []*Group
		index  = make(map[groupKey]*Group)
	)

	for i, e := range events {
		if e.Payload == nil {
			continue
		}

		r := runs[identity{entityType: e.Payload.EntityType(), id: e.Payload.EntityID()}]
		if r.latest != i {
			continue
		}

		kind, shape := shapeOf(e, r.beforeLabels)

		key := groupKey{kind: kind, shape: shape.key()}

		group, ok := index[key]
		if !ok {
			group = &Group{Kind: kind, Shape: shape}
			index[key] = group
			groups = append(groups, group)
		}

		group.Events = append(group.Events, e)
	}

	// stable, so groups of one kind keep their first arrival order
	slices.SortStableFunc(groups, func(a, b *Group) int {
		return int(a.Kind) - int(b.Kind)
	})

	result := make([]Group, len(groups))
	for i, group := range groups {
		result[i] = *group
	}

	return result
}

// LabelDiff returns the labels to add and to remove to turn the before labels into the after ones.
func LabelDiff(before, after []string) (toAdd, toRemove []string) {
	toAdd = difference(after, before)
	toRemove = difference(before, after)

	return toAdd, toRemove
}

func shapeOf(e event.TransactionEvent, before []string) (Kind, Shape) {
	deleted := e.Operation() == event.OperationDeleted

	switch p := e.Payload.(type) {
	case event.NodePayload:
		if deleted {
			return KindNodeDelete, Shape{}
		}

		var after []string
		if p.After != nil {
			after = p.After.Labels
		}

		toAdd, toRemove := LabelDiff(before, after)

		return KindNodeMerge, Shape{LabelsToAdd: toAdd, LabelsToRemove: toRemove}

	case event.RelationshipPayload:
		if deleted {
			return KindRelationshipDelete, Shape{RelationshipType: p.Label}
		}

		return KindRelationshipMerge, Shape{RelationshipType: p.Label}

	default:
		// unreachable, the payload is sealed
		panic(fmt.Sprintf("unexpected payload type %T", e.Payload))
	}
}

// beforeLabels returns the labels of a node before the change, nil for created nodes and relationships.
func beforeLabels(p event.Payload) []string {
	node, ok := p.(event.NodePayload)
	if !ok || node.Before == nil {
		return nil
	}

	return node.Before.Labels
}

// difference returns the sorted unique elements of a that are not in b.
func difference(a, b []string) []string {
	result := make([]string, 0, len(a))
	for _, s := range a {
		if !slices.Contains(b, s) {
			result = append(result, s)
		}
	}

	slices.Sort(result)

	return slices.Compact(result)
}
