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

//go:generate mockgen -package mock -destination mock/writer.go . Executor

// Package writer replays batches of change events into a Neo4j database.
package writer

import (
	"context"
	"errors"
	"fmt"

	"github.com/conduitio-labs/conduit-connector-neo4j-streams/destination/compiler"
	"github.com/conduitio-labs/conduit-connector-neo4j-streams/destination/grouper"
	"github.com/conduitio-labs/conduit-connector-neo4j-streams/event"
	"github.com/conduitio/conduit-commons/opencdc"
	sdk "github.com/conduitio/conduit-connector-sdk"
)

// Executor executes a compiled statement over all of its rows.
type Executor interface {
	Execute(ctx context.Context, query compiler.QueryEvents) error
}

// Writer implements a writer logic for the Neo4j Destination.
type Writer struct {
	executor Executor
	compiler *compiler.Compiler
}

// Params holds incoming params for the [Writer].
type Params struct {
	Executor      Executor
	SentinelLabel string
	IDKey         string
}

// New creates a new instance of the [Writer].
func New(params Params) *Writer {
	return &Writer{
		executor: params.Executor,
		compiler: compiler.New(compiler.Params{
			SentinelLabel: params.SentinelLabel,
			IDKey:         params.IDKey,
		}),
	}
}

// Write replays a batch of records holding change events.
//
// Records that don't hold a change event are skipped with a warning.
// All statements are executed even if some of them fail,
// the failures are returned as joined [*StatementError]s.
func (w *Writer) Write(ctx context.Context, records []opencdc.Record) error {
	logger := sdk.Logger(ctx)

	events := make([]event.TransactionEvent, 0, len(records))
	for _, record := range records {
		e, err := event.FromRecord(record)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("position", string(record.Position)).
				Msg("skipping record without a change event")

			continue
		}

		events = append(events, e)
	}

	groups := grouper.Partition(events)
	queries := w.compiler.Compile(ctx, groups)

	logger.Debug().
		Int("records", len(records)).
		Int("events", len(events)).
		Int("statements", len(queries)).
		Msg("replaying batch")

	var errs []error
	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("replay batch: %w", err))

			break
		}

		if err := w.executor.Execute(ctx, query); err != nil {
			logger.Error().
				Err(err).
				Str("kind", query.Kind.String()).
				Str("shape", query.Shape.String()).
				Int("rows", len(query.Rows)).
				Msg("statement failed")

			errs = append(errs, &StatementError{
				Kind:  query.Kind,
				Shape: query.Shape,
				Rows:  len(query.Rows),
				Err:   err,
			})
		}
	}

	return errors.Join(errs...)
}
