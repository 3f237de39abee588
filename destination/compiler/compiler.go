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

// Package compiler turns groups of change events into idempotent batched Cypher statements.
package compiler

import (
	"context"
	"fmt"
	"strings"

	"github.com/conduitio-labs/conduit-connector-neo4j-streams/destination/grouper"
	"github.com/conduitio-labs/conduit-connector-neo4j-streams/event"
	sdk "github.com/conduitio/conduit-connector-sdk"
)

const (
	// DefaultSentinelLabel is the default label of all replayed nodes, used for identity lookups.
	DefaultSentinelLabel = "CDCEntity"
	// DefaultIDKey is the default property holding the external identity of replayed entities.
	DefaultIDKey = "cdc_id"
	// ParameterEvents is the name of the statement parameter holding the rows.
	ParameterEvents = "events"

	unwind = "UNWIND $" + ParameterEvents + " AS event"

	// row fields
	fieldID         = "id"
	fieldStart      = "start"
	fieldEnd        = "end"
	fieldProperties = "properties"
)

// QueryEvents is a compiled statement and the rows it is executed with.
type QueryEvents struct {
	Statement string
	Rows      []map[string]any
	Kind      grouper.Kind
	Shape     grouper.Shape
}

// Compiler compiles event groups.
type Compiler struct {
	sentinelLabel string
	idKey         string
}

// Params holds incoming params for the [Compiler].
type Params struct {
	SentinelLabel string
	IDKey         string
}

// New creates a new instance of the [Compiler].
func New(params Params) *Compiler {
	c := &Compiler{
		sentinelLabel: params.SentinelLabel,
		idKey:         params.IDKey,
	}

	if c.sentinelLabel == "" {
		c.sentinelLabel = DefaultSentinelLabel
	}

	if c.idKey == "" {
		c.idKey = DefaultIDKey
	}

	return c
}

// Compile returns one statement per group, keeping the group order.
// Invalid rows are dropped with a warning, a group without valid rows produces no statement.
func (c *Compiler) Compile(ctx context.Context, groups []grouper.Group) []QueryEvents {
	result := make([]QueryEvents, 0, len(groups))
	for _, group := range groups {
		query, ok := c.compileGroup(ctx, group)
		if !ok {
			continue
		}

		result = append(result, query)
	}

	return result
}

func (c *Compiler) compileGroup(ctx context.Context, group grouper.Group) (QueryEvents, bool) {
	logger := sdk.Logger(ctx).With().
		Str("kind", group.Kind.String()).
		Str("shape", group.Shape.String()).
		Logger()

	switch group.Kind {
	case grouper.KindRelationshipMerge, grouper.KindRelationshipDelete:
		if group.Shape.RelationshipType == "" {
			for _, e := range group.Events {
				logger.Warn().
					Str("id", e.Payload.EntityID()).
					Int64("commitId", e.Meta.CommitID).
					Int("eventIndex", e.Meta.EventIndex).
					Msg("dropping row without a relationship type")
			}

			return QueryEvents{}, false
		}
	case grouper.KindNodeMerge, grouper.KindNodeDelete:
	}

	rows := make([]map[string]any, 0, len(group.Events))
	for _, e := range group.Events {
		row, err := c.row(group.Kind, e)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("id", entityID(e)).
				Int64("commitId", e.Meta.CommitID).
				Int("eventIndex", e.Meta.EventIndex).
				Msg("dropping invalid row")

			continue
		}

		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return QueryEvents{}, false
	}

	return QueryEvents{
		Statement: c.statement(group.Kind, group.Shape),
		Rows:      rows,
		Kind:      group.Kind,
		Shape:     group.Shape,
	}, true
}

func (c *Compiler) row(kind grouper.Kind, e event.TransactionEvent) (map[string]any, error) {
	if e.Payload == nil {
		return nil, event.ErrEmptyPayload
	}

	id := e.Payload.EntityID()
	if id == "" {
		return nil, ErrEmptyID
	}

	if kind == grouper.KindNodeDelete || kind == grouper.KindRelationshipDelete {
		return map[string]any{fieldID: id}, nil
	}

	_, after := e.Payload.Changes()
	if after == nil {
		return nil, fmt.Errorf("%s %s: %w", e.Payload.EntityType(), id, ErrMissingAfter)
	}

	row := map[string]any{
		fieldID:         id,
		fieldProperties: after.Props(),
	}

	if p, ok := e.Payload.(event.RelationshipPayload); ok {
		if p.Start.ID == "" || p.End.ID == "" {
			return nil, fmt.Errorf("relationship %s: %w", id, ErrMissingEndpoint)
		}

		row[fieldStart] = p.Start.ID
		row[fieldEnd] = p.End.ID
	}

	return row, nil
}

func (c *Compiler) statement(kind grouper.Kind, shape grouper.Shape) string {
	var (
		sentinel = Escape(c.sentinelLabel)
		idKey    = Escape(c.idKey)
		sb       strings.Builder
	)

	sb.WriteString(unwind)

	switch kind {
	case grouper.KindNodeMerge:
		fmt.Fprintf(&sb, "\nMERGE (n:%s {%s: event.%s})", sentinel, idKey, fieldID)
		fmt.Fprintf(&sb, "\nSET n = event.%s", fieldProperties)
		fmt.Fprintf(&sb, "\nSET n.%s = event.%s", idKey, fieldID)

		if len(shape.LabelsToAdd) > 0 {
			sb.WriteString("\nSET n" + labelClause(shape.LabelsToAdd))
		}

		if len(shape.LabelsToRemove) > 0 {
			sb.WriteString("\nREMOVE n" + labelClause(shape.LabelsToRemove))
		}

	case grouper.KindRelationshipMerge:
		fmt.Fprintf(&sb, "\nMERGE (start:%s {%s: event.%s})", sentinel, idKey, fieldStart)
		fmt.Fprintf(&sb, "\nMERGE (end:%s {%s: event.%s})", sentinel, idKey, fieldEnd)
		fmt.Fprintf(&sb, "\nMERGE (start)-[r:%s {%s: event.%s}]->(end)",
			Escape(shape.RelationshipType), idKey, fieldID)
		fmt.Fprintf(&sb, "\nSET r = event.%s", fieldProperties)
		fmt.Fprintf(&sb, "\nSET r.%s = event.%s", idKey, fieldID)

	case grouper.KindRelationshipDelete:
		fmt.Fprintf(&sb, "\nMATCH ()-[r:%s {%s: event.%s}]->()",
			Escape(shape.RelationshipType), idKey, fieldID)
		sb.WriteString("\nDELETE r")

	case grouper.KindNodeDelete:
		fmt.Fprintf(&sb, "\nMATCH (n:%s {%s: event.%s})", sentinel, idKey, fieldID)
		// incident relationships are removed together with the node
		sb.WriteString("\nDETACH DELETE n")
	}

	return sb.String()
}

func entityID(e event.TransactionEvent) string {
	if e.Payload == nil {
		return ""
	}

	return e.Payload.EntityID()
}

// Escape quotes a label, a relationship type or a property key as a Cypher identifier.
func Escape(identifier string) string {
	return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
}

func labelClause(labels []string) string {
	var sb strings.Builder
	for _, label := range labels {
		sb.WriteString(":" + Escape(label))
	}

	return sb.String()
}
