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

package sequencer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/conduitio-labs/conduit-connector-neo4j-streams/event"
	"github.com/conduitio-labs/conduit-connector-neo4j-streams/schema"
	"github.com/matryer/is"
)

func TestSequence(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	payloads := []event.Payload{
		event.NodePayload{ID: "1", After: event.NewNodeChange(map[string]any{"name": "Omar"}, []string{"Person"})},
		event.NodePayload{ID: "2", After: event.NewNodeChange(map[string]any{"name": "Andrea"}, []string{"Person"})},
		event.NodePayload{ID: "3", Before: event.NewNodeChange(nil, []string{"Person"})},
	}

	commit := Commit{
		ID:        7,
		Timestamp: time.UnixMilli(1700000000000),
		Actor:     "neo4j",
		Source:    map[string]any{"hostname": "graph-1"},
	}

	events, err := Sequence(context.Background(), commit, payloads, func(_ context.Context, p event.Payload) (schema.Schema, error) {
		_, after := p.Changes()
		if after == nil {
			return schema.Schema{}, nil
		}

		return schema.Schema{Properties: schema.PropertyTypes(after.Props())}, nil
	})
	is.NoErr(err)
	is.Equal(len(events), 3)
	is.NoErr(Verify(events))

	for i, e := range events {
		is.Equal(e.Meta.EventIndex, i)
		is.Equal(e.Meta.EventCount, 3)
		is.Equal(e.Meta.CommitID, int64(7))
		is.Equal(e.Meta.Timestamp, int64(1700000000000))
		is.Equal(e.Meta.Actor, "neo4j")
		is.Equal(e.Meta.Source["hostname"], "graph-1")
		is.Equal(e.Payload, payloads[i])
	}

	is.Equal(events[0].Meta.Operation, event.OperationCreated)
	is.Equal(events[0].Schema.Properties, map[string]string{"name": "String"})
	is.Equal(events[2].Meta.Operation, event.OperationDeleted)
}

func TestSequence_schemaFailure(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	errSchema := errors.New("schema unavailable")

	events, err := Sequence(context.Background(), Commit{ID: 1},
		[]event.Payload{event.NodePayload{ID: "1", After: event.NewNodeChange(nil, nil)}},
		func(context.Context, event.Payload) (schema.Schema, error) {
			return schema.Schema{}, errSchema
		},
	)
	is.True(errors.Is(err, errSchema))
	is.Equal(events, nil)
}

func TestVerify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		metas   []event.Meta
		wantErr bool
	}{
		{
			name:  "complete",
			metas: []event.Meta{{CommitID: 1, EventIndex: 1, EventCount: 2}, {CommitID: 1, EventIndex: 0, EventCount: 2}},
		},
		{
			name:    "repeated_index",
			metas:   []event.Meta{{CommitID: 1, EventIndex: 0, EventCount: 2}, {CommitID: 1, EventIndex: 0, EventCount: 2}},
			wantErr: true,
		},
		{
			name:    "wrong_count",
			metas:   []event.Meta{{CommitID: 1, EventIndex: 0, EventCount: 3}, {CommitID: 1, EventIndex: 1, EventCount: 3}},
			wantErr: true,
		},
		{
			name:    "mixed_commits",
			metas:   []event.Meta{{CommitID: 1, EventIndex: 0, EventCount: 2}, {CommitID: 2, EventIndex: 1, EventCount: 2}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			is := is.New(t)

			events := make([]event.TransactionEvent, 0, len(tt.metas))
			for _, meta := range tt.metas {
				events = append(events, event.TransactionEvent{Meta: meta})
			}

			err := Verify(events)
			is.Equal(err != nil, tt.wantErr)

			if tt.wantErr {
				is.True(errors.Is(err, ErrInvalidSequence))
			}
		})
	}
}
