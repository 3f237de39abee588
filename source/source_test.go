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

package source

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/conduitio-labs/conduit-connector-neo4j-streams/event"
	"github.com/conduitio-labs/conduit-connector-neo4j-streams/source/mock"
	"github.com/conduitio/conduit-commons/config"
	"github.com/conduitio/conduit-commons/opencdc"
	sdk "github.com/conduitio/conduit-connector-sdk"
	"github.com/matryer/is"
	"go.uber.org/mock/gomock"
)

// The mapstructure package that is used within the sdk.Util.ParseConfig
// has some problems with concurrent access so we don't place the t.Parallel inside the loop.
//
//nolint:paralleltest,tparallel,nolintlint
func TestSource_Configure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		raw           config.Config
		expectedError string
	}{
		{
			name: "success",
			raw: config.Config{
				ConfigUri:              "bolt://localhost:7687",
				ConfigEntityType:       "node",
				ConfigEntityLabels:     "Person,Writer",
				ConfigOrderingProperty: "created_at",
				ConfigBatchSize:        "1000",
				ConfigSnapshot:         "true",
			},
			expectedError: "",
		},
		{
			name: "fail_invalid_batchSize",
			raw: config.Config{
				ConfigUri:              "bolt://localhost:7687",
				ConfigEntityType:       "node",
				ConfigEntityLabels:     "Person,Writer",
				ConfigOrderingProperty: "created_at",
				ConfigBatchSize:        "one",
				ConfigSnapshot:         "true",
			},
			expectedError: "parse config",
		},
		{
			name: "fail_invalid_snapshot",
			raw: config.Config{
				ConfigUri:              "bolt://localhost:7687",
				ConfigEntityType:       "node",
				ConfigEntityLabels:     "Person,Writer",
				ConfigOrderingProperty: "created_at",
				ConfigBatchSize:        "1000",
				ConfigSnapshot:         "yes",
			},
			expectedError: "parse config",
		},
		{
			name: "fail_invalid_entityType",
			raw: config.Config{
				ConfigUri:              "bolt://localhost:7687",
				ConfigEntityType:       "path",
				ConfigEntityLabels:     "Person",
				ConfigOrderingProperty: "created_at",
			},
			expectedError: "parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Source{}

			err := s.Configure(context.Background(), tt.raw)
			if err != nil {
				if tt.expectedError == "" || !strings.Contains(err.Error(), tt.expectedError) {
					t.Errorf("Configure() error = %v, expectedError is %s", err, tt.expectedError)
				}

				return
			}

			if tt.expectedError != "" {
				t.Errorf("Configure() expected error %s", tt.expectedError)

				return
			}

			if s.config.EntityType != event.EntityTypeNode || len(s.config.EntityLabels) != 2 {
				t.Errorf("Configure() parsed config = %+v", s.config)
			}
		})
	}
}

func TestSource_Read(t *testing.T) {
	t.Parallel()

	record := changeEventRecord(t)

	tests := []struct {
		name    string
		expect  func(ctx context.Context, snapshot, polling *mock.MockIterator)
		noSnap  bool
		wantErr error
	}{
		{
			name: "success_snapshot",
			expect: func(ctx context.Context, snapshot, _ *mock.MockIterator) {
				snapshot.EXPECT().HasNext(ctx).Return(true, nil)
				snapshot.EXPECT().Next(ctx).Return(record, nil)
			},
		},
		{
			name: "success_switch_to_polling",
			expect: func(ctx context.Context, snapshot, polling *mock.MockIterator) {
				snapshot.EXPECT().HasNext(ctx).Return(false, nil)
				polling.EXPECT().HasNext(ctx).Return(true, nil)
				polling.EXPECT().Next(ctx).Return(record, nil)
			},
		},
		{
			name:   "success_polling",
			noSnap: true,
			expect: func(ctx context.Context, _, polling *mock.MockIterator) {
				polling.EXPECT().HasNext(ctx).Return(true, nil)
				polling.EXPECT().Next(ctx).Return(record, nil)
			},
		},
		{
			name:   "backoff_nothing_to_poll",
			noSnap: true,
			expect: func(ctx context.Context, _, polling *mock.MockIterator) {
				polling.EXPECT().HasNext(ctx).Return(false, nil)
			},
			wantErr: sdk.ErrBackoffRetry,
		},
		{
			name: "fail_has_next",
			expect: func(ctx context.Context, snapshot, _ *mock.MockIterator) {
				snapshot.EXPECT().HasNext(ctx).Return(false, errors.New("load batch: connection refused"))
			},
			wantErr: errors.New("has next: load batch: connection refused"),
		},
		{
			name: "fail_next",
			expect: func(ctx context.Context, snapshot, _ *mock.MockIterator) {
				snapshot.EXPECT().HasNext(ctx).Return(true, nil)
				snapshot.EXPECT().Next(ctx).Return(opencdc.Record{}, errors.New("marshal sdk position: fail"))
			},
			wantErr: errors.New("get next record: marshal sdk position: fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			is := is.New(t)

			ctrl := gomock.NewController(t)
			ctx := context.Background()

			snapshot := mock.NewMockIterator(ctrl)
			polling := mock.NewMockIterator(ctrl)
			tt.expect(ctx, snapshot, polling)

			s := Source{pollingSnapshot: polling}
			if !tt.noSnap {
				s.snapshot = snapshot
			}

			got, err := s.Read(ctx)
			if tt.wantErr != nil {
				is.True(err != nil)
				if errors.Is(tt.wantErr, sdk.ErrBackoffRetry) {
					is.True(errors.Is(err, sdk.ErrBackoffRetry))
				} else {
					is.Equal(err.Error(), tt.wantErr.Error())
				}

				return
			}

			is.NoErr(err)
			is.Equal(got, record)
		})
	}
}

func TestSource_Read_noIterator(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	s := Source{}

	_, err := s.Read(context.Background())
	is.True(errors.Is(err, errNoIterator))
}

func TestSource_Teardown_noDriver(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	s := Source{}
	is.NoErr(s.Teardown(context.Background()))
}

func changeEventRecord(t *testing.T) opencdc.Record {
	t.Helper()

	is := is.New(t)

	record, err := event.ToRecord(opencdc.Position(`{"mode":"snapshot","lastProcessedValue":1}`), event.TransactionEvent{
		Meta: event.Meta{
			Timestamp:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC).UnixMilli(),
			Actor:      "neo4j",
			CommitID:   42,
			EventIndex: 0,
			EventCount: 1,
			Operation:  event.OperationCreated,
		},
		Payload: event.NodePayload{
			ID:    "1",
			After: event.NewNodeChange(map[string]any{"name": "Andrea"}, []string{"Person"}),
		},
	})
	is.NoErr(err)

	return record
}
