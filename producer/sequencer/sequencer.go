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

// Package sequencer turns the payloads of one commit into an ordered event sequence.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/conduitio-labs/conduit-connector-neo4j-streams/event"
	"github.com/conduitio-labs/conduit-connector-neo4j-streams/schema"
)

// ErrInvalidSequence occurs when events of a commit violate the index and count invariant.
var ErrInvalidSequence = errors.New("invalid event sequence")

// Commit holds the identity shared by all events of one commit.
type Commit struct {
	ID        int64
	Timestamp time.Time
	Actor     string
	Source    map[string]any
}

// SchemaFunc returns the current schema of a changed entity.
type SchemaFunc func(ctx context.Context, payload event.Payload) (schema.Schema, error)

// Sequence assigns the commit identity and positions to the payloads, keeping their order.
// A schema failure fails the whole sequence.
func Sequence(
	ctx context.Context,
	commit Commit,
	payloads []event.Payload,
	schemaOf SchemaFunc,
) ([]event.TransactionEvent, error) {
	events := make([]event.TransactionEvent, 0, len(payloads))
	for i, payload := range payloads {
		var entitySchema schema.Schema
		if schemaOf != nil {
			var err error

			entitySchema, err = schemaOf(ctx, payload)
			if err != nil {
				return nil, fmt.Errorf("schema of %s %s: %w", payload.EntityType(), payload.EntityID(), err)
			}
		}

		events = append(events, event.TransactionEvent{
			Meta: event.Meta{
				Timestamp:  commit.Timestamp.UnixMilli(),
				Actor:      commit.Actor,
				CommitID:   commit.ID,
				EventIndex: i,
				EventCount: len(payloads),
				Operation:  event.OperationOf(payload),
				Source:     maps.Clone(commit.Source),
			},
			Payload: payload,
			Schema:  entitySchema,
		})
	}

	return events, nil
}

// Verify checks that the events form one complete commit:
// they share a commit identity and the event count,
// and event indexes cover [0, count) with no gaps or repeats.
func Verify(events []event.TransactionEvent) error {
	if len(events) == 0 {
		return nil
	}

	commitID := events[0].Meta.CommitID
	seen := make([]bool, len(events))

	for _, e := range events {
		switch {
		case e.Meta.CommitID != commitID:
			return fmt.Errorf("commit %d mixed with commit %d: %w", e.Meta.CommitID, commitID, ErrInvalidSequence)
		case e.Meta.EventCount != len(events):
			return fmt.Errorf("commit %d: count %d of %d events: %w",
				commitID, e.Meta.EventCount, len(events), ErrInvalidSequence)
		case e.Meta.EventIndex < 0 || e.Meta.EventIndex >= len(events):
			return fmt.Errorf("commit %d: index %d out of range: %w", commitID, e.Meta.EventIndex, ErrInvalidSequence)
		case seen[e.Meta.EventIndex]:
			return fmt.Errorf("commit %d: index %d repeated: %w", commitID, e.Meta.EventIndex, ErrInvalidSequence)
		}

		seen[e.Meta.EventIndex] = true
	}

	return nil
}
