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

package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/conduitio-labs/conduit-connector-neo4j-streams/schema"
	"github.com/conduitio/conduit-commons/opencdc"
	sdk "github.com/conduitio/conduit-connector-sdk"
	"github.com/mitchellh/mapstructure"
)

const (
	// metadata fields attached to every record.
	metadataCommitIDField   = "neo4j.commitId"
	metadataEventIndexField = "neo4j.eventIndex"
	metadataEventCountField = "neo4j.eventCount"
	metadataEntityTypeField = "neo4j.entityType"

	// record key fields, the key is used as the partition key by the transport.
	keyIDField         = "id"
	keyEntityTypeField = "type"
)

// wireChange is the serialized form of a [RecordChange].
type wireChange struct {
	Properties map[string]any `json:"properties"`
	Labels     []string       `json:"labels,omitempty"`
}

// wirePayload is the serialized form of a [Payload].
type wirePayload struct {
	ID     string      `json:"id"`
	Type   EntityType  `json:"type"`
	Before *wireChange `json:"before"`
	After  *wireChange `json:"after"`
	Start  *NodeRef    `json:"start,omitempty"`
	End    *NodeRef    `json:"end,omitempty"`
	Label  string      `json:"label,omitempty"`
}

// wireEvent is the serialized form of a [TransactionEvent].
type wireEvent struct {
	Meta    Meta          `json:"meta"`
	Payload wirePayload   `json:"payload"`
	Schema  schema.Schema `json:"schema"`
}

// MarshalJSON implements [json.Marshaler].
func (e TransactionEvent) MarshalJSON() ([]byte, error) {
	wire := wireEvent{Meta: e.Meta, Schema: e.Schema}

	switch p := e.Payload.(type) {
	case NodePayload:
		wire.Payload = wirePayload{ID: p.ID, Type: EntityTypeNode}
		if p.Before != nil {
			wire.Payload.Before = &wireChange{Properties: p.Before.Properties, Labels: p.Before.Labels}
		}

		if p.After != nil {
			wire.Payload.After = &wireChange{Properties: p.After.Properties, Labels: p.After.Labels}
		}

	case RelationshipPayload:
		start, end := p.Start, p.End
		wire.Payload = wirePayload{ID: p.ID, Type: EntityTypeRelationship, Start: &start, End: &end, Label: p.Label}
		if p.Before != nil {
			wire.Payload.Before = &wireChange{Properties: p.Before.Properties}
		}

		if p.After != nil {
			wire.Payload.After = &wireChange{Properties: p.After.Properties}
		}

	default:
		return nil, fmt.Errorf("marshal %T: %w", e.Payload, ErrUnknownEntityType)
	}

	//nolint:wrapcheck // the wire form is marshaled as is
	return json.Marshal(wire)
}

// UnmarshalJSON implements [json.Unmarshaler].
// Numbers are decoded as int64 where possible, otherwise as float64.
func (e *TransactionEvent) UnmarshalJSON(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrEmptyPayload
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}

	var wire wireEvent

	mapDecoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &wire,
	})
	if err != nil {
		return fmt.Errorf("create map decoder: %w", err)
	}

	if err := mapDecoder.Decode(raw); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}

	parsed, err := wire.toEvent()
	if err != nil {
		return err
	}

	*e = parsed

	return nil
}

func (w wireEvent) toEvent() (TransactionEvent, error) {
	if w.Payload.Before == nil && w.Payload.After == nil {
		return TransactionEvent{}, fmt.Errorf("payload %q: %w", w.Payload.ID, ErrMissingChanges)
	}

	meta := w.Meta
	meta.Source = normalizeMap(meta.Source)

	// whole doubles are indistinguishable from integers in JSON, the schema tells them apart
	for _, change := range []*wireChange{w.Payload.Before, w.Payload.After} {
		if change != nil {
			restoreDoubles(normalizeMap(change.Properties), w.Schema.Properties)
		}
	}

	var payload Payload

	switch w.Payload.Type {
	case EntityTypeNode:
		p := NodePayload{ID: w.Payload.ID}
		if w.Payload.Before != nil {
			p.Before = NewNodeChange(w.Payload.Before.Properties, w.Payload.Before.Labels)
		}

		if w.Payload.After != nil {
			p.After = NewNodeChange(w.Payload.After.Properties, w.Payload.After.Labels)
		}

		payload = p

	case EntityTypeRelationship:
		p := RelationshipPayload{ID: w.Payload.ID, Label: w.Payload.Label}
		if w.Payload.Start != nil {
			p.Start = *w.Payload.Start
		}

		if w.Payload.End != nil {
			p.End = *w.Payload.End
		}

		if w.Payload.Before != nil {
			p.Before = NewRelationshipChange(w.Payload.Before.Properties)
		}

		if w.Payload.After != nil {
			p.After = NewRelationshipChange(w.Payload.After.Properties)
		}

		payload = p

	default:
		return TransactionEvent{}, fmt.Errorf("payload %q of type %q: %w", w.Payload.ID, w.Payload.Type, ErrUnknownEntityType)
	}

	return TransactionEvent{Meta: meta, Payload: payload, Schema: w.Schema}, nil
}

// ToRecord converts the event into an [opencdc.Record] at the given position.
//
// The whole event is the record payload, placed in Before for deletes and in After otherwise.
// The record key holds the entity identity so the transport partitions by it.
func ToRecord(position opencdc.Position, e TransactionEvent) (opencdc.Record, error) {
	return toRecord(position, e, false)
}

// ToSnapshotRecord converts the event of a created entity into an [opencdc.Record]
// with the snapshot operation.
func ToSnapshotRecord(position opencdc.Position, e TransactionEvent) (opencdc.Record, error) {
	return toRecord(position, e, true)
}

func toRecord(position opencdc.Position, e TransactionEvent, snapshot bool) (opencdc.Record, error) {
	if e.Payload == nil {
		return opencdc.Record{}, ErrEmptyPayload
	}

	raw, err := json.Marshal(e)
	if err != nil {
		return opencdc.Record{}, fmt.Errorf("marshal event: %w", err)
	}

	metadata := opencdc.Metadata{
		metadataCommitIDField:   strconv.FormatInt(e.Meta.CommitID, 10),
		metadataEventIndexField: strconv.Itoa(e.Meta.EventIndex),
		metadataEventCountField: strconv.Itoa(e.Meta.EventCount),
		metadataEntityTypeField: string(e.Payload.EntityType()),
	}
	metadata.SetCreatedAt(time.UnixMilli(e.Meta.Timestamp))

	key := opencdc.StructuredData{
		keyIDField:         e.Payload.EntityID(),
		keyEntityTypeField: string(e.Payload.EntityType()),
	}

	switch operation := e.Operation(); {
	case snapshot && operation == OperationCreated:
		return sdk.Util.Source.NewRecordSnapshot(position, metadata, key, opencdc.RawData(raw)), nil
	case snapshot:
		return opencdc.Record{}, fmt.Errorf("snapshot of %s event: %w", operation, ErrUnknownOperation)
	case operation == OperationCreated:
		return sdk.Util.Source.NewRecordCreate(position, metadata, key, opencdc.RawData(raw)), nil
	case operation == OperationUpdated:
		return sdk.Util.Source.NewRecordUpdate(position, metadata, key, nil, opencdc.RawData(raw)), nil
	case operation == OperationDeleted:
		return sdk.Util.Source.NewRecordDelete(position, metadata, key, opencdc.RawData(raw)), nil
	default:
		return opencdc.Record{}, fmt.Errorf("%q: %w", operation, ErrUnknownOperation)
	}
}

// FromRecord parses a [TransactionEvent] from an [opencdc.Record] produced by [ToRecord].
func FromRecord(record opencdc.Record) (TransactionEvent, error) {
	var raw []byte
	switch {
	case record.Payload.After != nil && len(record.Payload.After.Bytes()) > 0:
		raw = record.Payload.After.Bytes()
	case record.Payload.Before != nil && len(record.Payload.Before.Bytes()) > 0:
		raw = record.Payload.Before.Bytes()
	default:
		return TransactionEvent{}, ErrEmptyPayload
	}

	var e TransactionEvent
	if err := json.Unmarshal(raw, &e); err != nil {
		return TransactionEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}

	return e, nil
}

// restoreDoubles converts integer values of properties typed as doubles, or lists of them, to float64.
func restoreDoubles(properties map[string]any, types map[string]string) {
	for name, typeName := range types {
		value, ok := properties[name]
		if !ok {
			continue
		}

		switch typeName {
		case schema.TypeDouble:
			properties[name] = toFloat(value)
		case schema.ListOf(schema.TypeDouble):
			if values, ok := value.([]any); ok {
				for i := range values {
					values[i] = toFloat(values[i])
				}
			}
		}
	}
}

func toFloat(value any) any {
	if i, ok := value.(int64); ok {
		return float64(i)
	}

	return value
}

// normalizeMap replaces [json.Number] values with int64 or float64 ones.
func normalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	for key, value := range m {
		m[key] = normalizeValue(value)
	}

	return m
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}

		if f, err := v.Float64(); err == nil {
			return f
		}

		return v.String()
	case map[string]any:
		return normalizeMap(v)
	case []any:
		for i := range v {
			v[i] = normalizeValue(v[i])
		}

		return v
	default:
		return value
	}
}
