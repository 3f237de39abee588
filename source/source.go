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

//go:generate mockgen -package mock -destination mock/source.go . Iterator

// Package source implements the Source capturing Neo4j entities as change events.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/conduitio-labs/conduit-connector-neo4j-streams/schema"
	"github.com/conduitio-labs/conduit-connector-neo4j-streams/source/iterator"
	"github.com/conduitio/conduit-commons/config"
	"github.com/conduitio/conduit-commons/opencdc"
	sdk "github.com/conduitio/conduit-connector-sdk"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var errNoIterator = errors.New("no iterator")

// Iterator defines an iterator interface needed for the [Source].
type Iterator interface {
	HasNext(ctx context.Context) (bool, error)
	Next(ctx context.Context) (opencdc.Record, error)
}

// Source captures Neo4j nodes or relationships as change events.
type Source struct {
	sdk.UnimplementedSource

	config          Config
	driver          neo4j.DriverWithContext
	snapshot        Iterator
	pollingSnapshot Iterator
}

// New creates a new instance of the [Source].
func New() sdk.Source {
	return sdk.SourceWithMiddleware(&Source{}, sdk.DefaultSourceMiddleware()...)
}

// Parameters returns a map of named [config.Parameter] that describe how to configure the [Source].
func (s *Source) Parameters() config.Parameters {
	return s.config.Parameters()
}

// Configure parses and initializes the [Source] config.
func (s *Source) Configure(ctx context.Context, raw config.Config) error {
	if err := sdk.Util.ParseConfig(ctx, raw, &s.config, New().Parameters()); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	return nil
}

// Open prepares the snapshot and the polling iterators starting from the provided position.
func (s *Source) Open(ctx context.Context, sdkPosition opencdc.Position) error {
	driver, err := s.config.NewDriver(ctx)
	if err != nil {
		return err //nolint:wrapcheck // the error is already wrapped
	}

	s.driver = driver

	position, err := iterator.ParsePosition(sdkPosition)
	if err != nil && !errors.Is(err, iterator.ErrNilSDKPosition) {
		return fmt.Errorf("parse position: %w", err)
	}

	params := iterator.SnapshotParams{
		Driver:           driver,
		Schemas:          schema.NewRegistry(driver, s.config.Database),
		Actor:            s.config.Auth.Username,
		OrderingProperty: s.config.OrderingProperty,
		EntityType:       s.config.EntityType,
		EntityLabels:     s.config.EntityLabels,
		BatchSize:        s.config.BatchSize,
		DatabaseName:     s.config.Database,
		Position:         position,
	}

	s.pollingSnapshot, err = iterator.NewPollingSnapshot(ctx, params)
	if err != nil {
		return fmt.Errorf("init polling snapshot iterator: %w", err)
	}

	if s.config.Snapshot && (position == nil || position.Mode == iterator.ModeSnapshot) {
		s.snapshot, err = iterator.NewSnapshot(ctx, params)
		if err != nil {
			return fmt.Errorf("init snapshot iterator: %w", err)
		}
	}

	return nil
}

// Read returns the next record.
func (s *Source) Read(ctx context.Context) (opencdc.Record, error) {
	switch {
	case s.snapshot != nil:
		record, err := read(ctx, s.snapshot)
		if err != nil {
			if !errors.Is(err, sdk.ErrBackoffRetry) {
				return opencdc.Record{}, err
			}

			s.snapshot = nil

			return read(ctx, s.pollingSnapshot)
		}

		return record, nil

	case s.pollingSnapshot != nil:
		return read(ctx, s.pollingSnapshot)

	default:
		return opencdc.Record{}, errNoIterator
	}
}

// Ack logs the acknowledged position.
func (s *Source) Ack(ctx context.Context, sdkPosition opencdc.Position) error {
	sdk.Logger(ctx).Debug().Str("position", string(sdkPosition)).Msg("got ack")

	return nil
}

// Teardown gracefully closes connections.
func (s *Source) Teardown(ctx context.Context) error {
	if s.driver != nil {
		if err := s.driver.Close(ctx); err != nil {
			return fmt.Errorf("close neo4j driver: %w", err)
		}
	}

	return nil
}

func read(ctx context.Context, iterator Iterator) (opencdc.Record, error) {
	hasNext, err := iterator.HasNext(ctx)
	if err != nil {
		return opencdc.Record{}, fmt.Errorf("has next: %w", err)
	}

	if !hasNext {
		return opencdc.Record{}, sdk.ErrBackoffRetry
	}

	record, err := iterator.Next(ctx)
	if err != nil {
		return opencdc.Record{}, fmt.Errorf("get next record: %w", err)
	}

	return record, nil
}
