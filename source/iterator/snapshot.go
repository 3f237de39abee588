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

// Package iterator implements the snapshot capture of Neo4j entities as change events.
package iterator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/conduitio-labs/conduit-connector-neo4j-streams/event"
	"github.com/conduitio-labs/conduit-connector-neo4j-streams/producer"
	"github.com/conduitio-labs/conduit-connector-neo4j-streams/producer/diff"
	"github.com/conduitio/conduit-commons/opencdc"
	sdk "github.com/conduitio/conduit-connector-sdk"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

const (
	// all Cypher queries used by the [Snapshot] are listed below in the format of Go fmt.
	getNodeMaxPropertyQueryTemplate         = "MATCH (obj:%s) RETURN obj.%s as %s ORDER BY obj.%s DESC LIMIT 1"
	getRelationshipMaxPropertyQueryTemplate = "MATCH ()-[obj:%s]-() RETURN obj.%s as %s ORDER BY obj.%s DESC LIMIT 1"
	getNodesQueryTemplate                   = "MATCH (obj:%s) %s RETURN obj ORDER BY obj.%s LIMIT %d"
	getRelationshipsQueryTemplate           = "MATCH (src)-[obj:%s]->(trgt) %s RETURN obj, src, trgt ORDER BY obj.%s LIMIT %d"
	opmvLTEWhereClause                      = "obj.%s <= $opmv"
	opvGTWhereClause                        = "obj.%s > $opv"

	// some helpers for Cypher queries.
	orderingPropertyMaxValueFieldName = "opmv"
	orderingPropertyValueFieldName    = "opv"
	objPlaceholder                    = "obj"
	srcPlaceholder                    = "src"
	trgtPlaceholder                   = "trgt"

	// metadataEntityLabelsField is a name of a metadata field that holds entity labels.
	metadataEntityLabelsField = "neo4j.entityLabels"
)

// queued is a captured event waiting to be returned by the [Snapshot].
type queued struct {
	event         event.TransactionEvent
	orderingValue any
}

// batch holds the elements of one loaded batch.
type batch struct {
	nodes         []diff.Node
	relationships []diff.Relationship
	// endpoints are the start and end nodes of the loaded relationships.
	endpoints []diff.Node
	// orderingValues are the ordering property values by entity identity.
	orderingValues map[string]any
}

func (b *batch) len() int {
	return len(b.nodes) + len(b.relationships)
}

// Snapshot implements a snapshot logic for the connector.
//
// Every loaded batch is captured as one commit creating all of its elements,
// so the produced records hold the same change events a committed transaction produces.
type Snapshot struct {
	driver                   neo4j.DriverWithContext
	handler                  *producer.Handler
	actor                    string
	orderingProperty         string
	orderingPropertyMaxValue any
	entityType               event.EntityType
	entityLabels             string
	batchSize                int
	databaseName             string
	position                 *Position
	// orderingValues are the ordering property values of the batch being routed.
	orderingValues map[string]any
	// records stores captured events,
	// this channel works as a queue from which the Next method takes records.
	records chan queued
	// polling defines if the snapshot is used to detect insertions
	// by polling for new elements.
	polling bool
}

// SnapshotParams is incoming params for the [NewSnapshot] function.
type SnapshotParams struct {
	Driver           neo4j.DriverWithContext
	Schemas          producer.SchemaProvider
	Actor            string
	OrderingProperty string
	EntityType       event.EntityType
	EntityLabels     []string
	BatchSize        int
	DatabaseName     string
	Position         *Position
}

// NewSnapshot creates a new instance of the [Snapshot].
func NewSnapshot(ctx context.Context, params SnapshotParams) (*Snapshot, error) {
	var (
		orderingPropertyMaxValue any
		// join entity labels here to not do this for each individual element
		entityLabels = strings.Join(params.EntityLabels, ":")
	)

	switch position := params.Position; {
	case position != nil && position.MaxElement != nil:
		orderingPropertyMaxValue = position.MaxElement

	default:
		var err error
		orderingPropertyMaxValue, err = getMaxPropertyValue(
			ctx, params.Driver,
			params.DatabaseName, entityLabels, params.OrderingProperty,
			params.EntityType,
		)
		if err != nil && !errors.Is(err, errNoElements) {
			return nil, fmt.Errorf("get ordering property max value: %w", err)
		}
	}

	return newSnapshot(params, entityLabels, orderingPropertyMaxValue, false), nil
}

// NewPollingSnapshot creates a new instance of the [Snapshot] iterator prepared for polling.
func NewPollingSnapshot(ctx context.Context, params SnapshotParams) (*Snapshot, error) {
	// join entity labels here to not do this for each individual element
	entityLabels := strings.Join(params.EntityLabels, ":")

	switch position := params.Position; {
	case position == nil:
		orderingPropertyMaxValue, err := getMaxPropertyValue(ctx, params.Driver,
			params.DatabaseName, entityLabels, params.OrderingProperty,
			params.EntityType)
		if err != nil && !errors.Is(err, errNoElements) {
			return nil, fmt.Errorf("get ordering property max value: %w", err)
		}

		params.Position = &Position{
			Mode:               ModeSnapshotPolling,
			LastProcessedValue: orderingPropertyMaxValue,
		}

	case position.Mode == ModeSnapshot:
		// the interrupted snapshot covers everything up to its max element
		params.Position = &Position{
			Mode:               ModeSnapshotPolling,
			LastProcessedValue: position.MaxElement,
		}
	}

	return newSnapshot(params, entityLabels, nil, true), nil
}

func newSnapshot(params SnapshotParams, entityLabels string, orderingPropertyMaxValue any, polling bool) *Snapshot {
	s := &Snapshot{
		driver:                   params.Driver,
		actor:                    params.Actor,
		orderingProperty:         params.OrderingProperty,
		orderingPropertyMaxValue: orderingPropertyMaxValue,
		entityType:               params.EntityType,
		entityLabels:             entityLabels,
		batchSize:                params.BatchSize,
		databaseName:             params.DatabaseName,
		position:                 params.Position,
		records:                  make(chan queued, params.BatchSize),
		polling:                  polling,
	}

	s.handler = producer.New(producer.Params{
		Router:  s,
		Schemas: params.Schemas,
	})

	return s
}

// HasNext checks whether the snapshot iterator has records to return or not.
func (s *Snapshot) HasNext(ctx context.Context) (bool, error) {
	if len(s.records) > 0 {
		return true, nil
	}

	if err := s.loadBatch(ctx); err != nil {
		return false, fmt.Errorf("load batch: %w", err)
	}

	return len(s.records) > 0, nil
}

// Next returns the next available record.
func (s *Snapshot) Next(ctx context.Context) (opencdc.Record, error) {
	select {
	case <-ctx.Done():
		return opencdc.Record{}, ctx.Err() //nolint:wrapcheck // there's no much to wrap here

	case item := <-s.records:
		// if the snapshot is polling new items,
		// we mark its position as CDC to identify it during pauses correctly
		mode := ModeSnapshot
		if s.polling {
			mode = ModeSnapshotPolling
		}

		// construct the position
		position := &Position{
			Mode:               mode,
			LastProcessedValue: item.orderingValue,
			MaxElement:         s.orderingPropertyMaxValue,
		}

		sdkPosition, err := position.MarshalSDKPosition()
		if err != nil {
			return opencdc.Record{}, fmt.Errorf("marshal sdk position: %w", err)
		}

		s.position = position

		toRecord := event.ToSnapshotRecord
		if s.polling {
			toRecord = event.ToRecord
		}

		record, err := toRecord(sdkPosition, item.event)
		if err != nil {
			return opencdc.Record{}, fmt.Errorf("convert event to record: %w", err)
		}

		record.Metadata[metadataEntityLabelsField] = s.entityLabels

		return record, nil
	}
}

// Send queues the events of a captured batch.
func (s *Snapshot) Send(ctx context.Context, events []event.TransactionEvent) error {
	for _, e := range events {
		select {
		case <-ctx.Done():
			return ctx.Err() //nolint:wrapcheck // there's no much to wrap here

		case s.records <- queued{event: e, orderingValue: s.orderingValues[e.Payload.EntityID()]}:
		}
	}

	return nil
}

// loadBatch finds a batch of elements in a Neo4j database, based on labels and ordering property,
// and captures it.
func (s *Snapshot) loadBatch(ctx context.Context) error {
	loaded, err := s.readBatch(ctx)
	if err != nil {
		return err
	}

	return s.capture(ctx, loaded)
}

// capture routes a loaded batch through the producer as one commit creating all of its elements.
func (s *Snapshot) capture(ctx context.Context, loaded *batch) error {
	if loaded.len() == 0 {
		return nil
	}

	// a batch is a commit of its own, identified by its capture time
	capturedAt := time.Now()
	commitID := capturedAt.UnixNano()

	pending, err := s.handler.BeforeCommit(ctx, producer.CommitInfo{
		ID:        commitID,
		Timestamp: capturedAt,
		Actor:     s.actor,
	}, diff.NewGraph(slices.Concat(loaded.endpoints, loaded.nodes), loaded.relationships), diff.TransactionData{
		CreatedNodes:         loaded.nodes,
		CreatedRelationships: loaded.relationships,
	})
	if err != nil {
		return fmt.Errorf("capture batch: %w", err)
	}

	s.orderingValues = loaded.orderingValues
	defer func() { s.orderingValues = nil }()

	if err := s.handler.AfterCommit(ctx, pending, producer.Committed); err != nil {
		return fmt.Errorf("route batch: %w", err)
	}

	sdk.Logger(ctx).Debug().
		Int64("commitId", commitID).
		Int("elements", loaded.len()).
		Msg("batch captured")

	return nil
}

// readBatch reads the next batch of elements.
func (s *Snapshot) readBatch(ctx context.Context) (*batch, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.databaseName,
	})
	defer session.Close(ctx)

	var (
		conditions []string
		params     = make(map[string]any)
	)

	// if the ordering property max value isn't nil,
	// we'll use it to get elements with ordering property less than or equal to the max value
	if s.orderingPropertyMaxValue != nil {
		conditions = append(conditions, fmt.Sprintf(opmvLTEWhereClause, s.orderingProperty))
		params[orderingPropertyMaxValueFieldName] = s.orderingPropertyMaxValue
	}

	// if the position and its last processed value are not nil,
	// we'll use the value to construct the where clause so we only get elements
	// that have ordering field greater than the position's last processed value
	if s.position != nil && s.position.LastProcessedValue != nil {
		conditions = append(conditions, fmt.Sprintf(opvGTWhereClause, s.orderingProperty))
		params[orderingPropertyValueFieldName] = s.position.LastProcessedValue
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	getQueryTemplate := getNodesQueryTemplate
	if s.entityType == event.EntityTypeRelationship {
		getQueryTemplate = getRelationshipsQueryTemplate
	}

	query := fmt.Sprintf(getQueryTemplate, s.entityLabels, whereClause, s.orderingProperty, s.batchSize)

	loaded, err := neo4j.ExecuteRead(ctx, session, func(tx neo4j.ManagedTransaction) (*batch, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, fmt.Errorf("run tx: %w", err)
		}

		// collect records here,
		// because once the function exits the result won't contain any records
		loaded, err := s.processNeo4jResult(ctx, result)
		if err != nil {
			return nil, fmt.Errorf("process neo4j result: %w", err)
		}

		return loaded, nil
	})
	if err != nil {
		return nil, fmt.Errorf("execute read: %w", err)
	}

	return loaded, nil
}

// processNeo4jResult parses the result records into a [batch].
func (s *Snapshot) processNeo4jResult(ctx context.Context, result neo4j.ResultWithContext) (*batch, error) {
	loaded := &batch{orderingValues: make(map[string]any)}

	var record *db.Record
	for result.NextRecord(ctx, &record) {
		if err := s.addElement(loaded, record); err != nil {
			return nil, err
		}
	}

	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("iterate result: %w", err)
	}

	return loaded, nil
}

//nolint:staticcheck // the numeric ids are the identities change events carry
func (s *Snapshot) addElement(loaded *batch, record *db.Record) error {
	elementRaw, ok := record.Get(objPlaceholder)
	if !ok {
		return fmt.Errorf("record doesn't contain %q key", objPlaceholder)
	}

	switch element := elementRaw.(type) {
	case dbtype.Node:
		loaded.nodes = append(loaded.nodes, nodeFromDB(element))
		loaded.orderingValues[strconv.FormatInt(element.Id, 10)] = element.Props[s.orderingProperty]

	case dbtype.Relationship:
		srcNode, err := nodeFromRecord(record, srcPlaceholder)
		if err != nil {
			return err
		}

		trgtNode, err := nodeFromRecord(record, trgtPlaceholder)
		if err != nil {
			return err
		}

		loaded.endpoints = append(loaded.endpoints, srcNode, trgtNode)
		loaded.relationships = append(loaded.relationships, diff.Relationship{
			ID:         element.Id,
			Type:       element.Type,
			StartID:    element.StartId,
			EndID:      element.EndId,
			Properties: element.Props,
		})
		loaded.orderingValues[strconv.FormatInt(element.Id, 10)] = element.Props[s.orderingProperty]

	default:
		return fmt.Errorf("%T: %w", elementRaw, errUnexpectedElement)
	}

	return nil
}

func nodeFromRecord(record *db.Record, key string) (diff.Node, error) {
	raw, ok := record.Get(key)
	if !ok {
		return diff.Node{}, fmt.Errorf("record doesn't contain %q key", key)
	}

	node, ok := raw.(dbtype.Node)
	if !ok {
		return diff.Node{}, errConvertRawNode
	}

	return nodeFromDB(node), nil
}

//nolint:staticcheck // the numeric ids are the identities change events carry
func nodeFromDB(node dbtype.Node) diff.Node {
	return diff.Node{
		ID:         node.Id,
		Labels:     node.Labels,
		Properties: node.Props,
	}
}

// getMaxPropertyValue returns the maximum property value that can be found among Neo4j entities.
func getMaxPropertyValue(
	ctx context.Context,
	driver neo4j.DriverWithContext,
	database, labels, property string,
	entityType event.EntityType,
) (any, error) {
	session := driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: database,
	})
	defer session.Close(ctx)

	maxPropertyQueryTemplate := getNodeMaxPropertyQueryTemplate
	if entityType == event.EntityTypeRelationship {
		maxPropertyQueryTemplate = getRelationshipMaxPropertyQueryTemplate
	}

	query := fmt.Sprintf(maxPropertyQueryTemplate, labels, property, property, property)

	propertyValue, err := neo4j.ExecuteRead(ctx, session, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, fmt.Errorf("run tx: %w", err)
		}

		record, err := result.Single(ctx)
		if err != nil {
			var usageError *neo4j.UsageError
			if errors.As(err, &usageError) && usageError.Message == neo4jNoMoreRecordsErrorMessage {
				return nil, errNoElements
			}

			return nil, fmt.Errorf("extract single from result: %w", err)
		}

		propertyValue, ok := record.Get(property)
		if !ok {
			return nil, fmt.Errorf("record doesn't contain %q property", property)
		}

		return propertyValue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("execute read: %w", err)
	}

	return propertyValue, nil
}
