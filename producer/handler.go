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

//go:generate mockgen -package mock -destination mock/producer.go . Router,SchemaProvider

// Package producer captures committed graph changes as change events.
package producer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/conduitio-labs/conduit-connector-neo4j-streams/event"
	"github.com/conduitio-labs/conduit-connector-neo4j-streams/producer/diff"
	"github.com/conduitio-labs/conduit-connector-neo4j-streams/producer/sequencer"
	"github.com/conduitio-labs/conduit-connector-neo4j-streams/schema"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// source metadata fields attached to every event.
	sourceHostnameField = "hostname"
	sourceInstanceField = "instance"
)

// Router hands committed events over to the transport.
type Router interface {
	Send(ctx context.Context, events []event.TransactionEvent) error
}

// SchemaProvider returns the current schema of labels and relationship types.
type SchemaProvider interface {
	NodeSchema(ctx context.Context, labels []string, properties map[string]any) (schema.Schema, error)
	RelationshipSchema(ctx context.Context, relationshipType string, properties map[string]any) (schema.Schema, error)
}

// Outcome is the result of a commit.
type Outcome int

// The available outcomes are listed below.
const (
	Committed Outcome = iota
	RolledBack
)

// CommitInfo identifies a commit.
type CommitInfo struct {
	ID        int64
	Timestamp time.Time
	Actor     string
}

// Pending holds the events of a commit that is not finished yet.
type Pending struct {
	commitID int64
	events   []event.TransactionEvent
}

// Events returns the events of the commit.
func (p *Pending) Events() []event.TransactionEvent {
	return p.events
}

// Handler builds change events on commit notifications.
type Handler struct {
	router  Router
	schemas SchemaProvider
	source  map[string]any
}

// Params holds incoming params for the [Handler].
type Params struct {
	Router  Router
	Schemas SchemaProvider
	// Hostname defaults to the name reported by the OS.
	Hostname string
	// InstanceID defaults to a random UUID.
	InstanceID string
}

// New creates a new instance of the [Handler].
func New(params Params) *Handler {
	hostname := params.Hostname
	if hostname == "" {
		// an unknown hostname leaves the field empty
		hostname, _ = os.Hostname()
	}

	instanceID := params.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}

	return &Handler{
		router:  params.Router,
		schemas: params.Schemas,
		source: map[string]any{
			sourceHostnameField: hostname,
			sourceInstanceField: instanceID,
		},
	}
}

// BeforeCommit builds the events of a commit. It must be called before the commit is persisted,
// while the previous values are still observable through the reader.
//
// An error means no event of the commit can be emitted and the commit should be aborted.
func (h *Handler) BeforeCommit(
	ctx context.Context,
	info CommitInfo,
	reader diff.Reader,
	data diff.TransactionData,
) (*Pending, error) {
	payloads, err := diff.Build(reader, data)
	if err != nil {
		return nil, fmt.Errorf("commit %d: build diff: %w", info.ID, err)
	}

	events, err := sequencer.Sequence(ctx, sequencer.Commit{
		ID:        info.ID,
		Timestamp: info.Timestamp,
		Actor:     info.Actor,
		Source:    h.source,
	}, payloads, h.schemaOf)
	if err != nil {
		return nil, fmt.Errorf("commit %d: sequence events: %w", info.ID, err)
	}

	if err := sequencer.Verify(events); err != nil {
		return nil, fmt.Errorf("commit %d: verify events: %w", info.ID, err)
	}

	zerolog.Ctx(ctx).Debug().
		Int64("commitId", info.ID).
		Int("events", len(events)).
		Msg("commit captured")

	return &Pending{commitID: info.ID, events: events}, nil
}

// AfterCommit routes the events of a committed commit and drops the ones of a rolled back commit.
func (h *Handler) AfterCommit(ctx context.Context, pending *Pending, outcome Outcome) error {
	if pending == nil || len(pending.events) == 0 {
		return nil
	}

	if outcome == RolledBack {
		zerolog.Ctx(ctx).Debug().
			Int64("commitId", pending.commitID).
			Msg("commit rolled back, dropping events")

		return nil
	}

	if err := h.router.Send(ctx, pending.events); err != nil {
		return fmt.Errorf("commit %d: send events: %w", pending.commitID, err)
	}

	return nil
}

// schemaOf returns the schema of a payload's labels or type,
// using the after state if there is one and the before state otherwise.
func (h *Handler) schemaOf(ctx context.Context, payload event.Payload) (schema.Schema, error) {
	before, after := payload.Changes()

	state := after
	if state == nil {
		state = before
	}

	if h.schemas == nil {
		return schema.Schema{Properties: schema.PropertyTypes(state.Props())}, nil
	}

	var (
		result schema.Schema
		err    error
	)

	switch p := payload.(type) {
	case event.NodePayload:
		labels := p.Before
		if p.After != nil {
			labels = p.After
		}

		result, err = h.schemas.NodeSchema(ctx, labels.Labels, state.Props())
	case event.RelationshipPayload:
		result, err = h.schemas.RelationshipSchema(ctx, p.Label, state.Props())
	default:
		return schema.Schema{}, fmt.Errorf("payload %T: %w", payload, event.ErrUnknownEntityType)
	}

	if err != nil {
		return schema.Schema{}, fmt.Errorf("get schema: %w", err)
	}

	return result, nil
}
