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

package writer

import (
	"context"
	"fmt"
	"slices"

	"github.com/conduitio-labs/conduit-connector-neo4j-streams/destination/compiler"
	sdk "github.com/conduitio/conduit-connector-sdk"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// DefaultBatchSize is the default number of rows a statement is executed with at once.
const DefaultBatchSize = 1000

// Neo4jExecutor executes compiled statements using a Neo4j driver.
// Every chunk of rows is executed within its own write transaction.
type Neo4jExecutor struct {
	driver       neo4j.DriverWithContext
	databaseName string
	batchSize    int
}

// Neo4jExecutorParams holds incoming params for the [Neo4jExecutor].
type Neo4jExecutorParams struct {
	Driver       neo4j.DriverWithContext
	DatabaseName string
	BatchSize    int
}

// NewNeo4jExecutor creates a new instance of the [Neo4jExecutor].
func NewNeo4jExecutor(params Neo4jExecutorParams) *Neo4jExecutor {
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &Neo4jExecutor{
		driver:       params.Driver,
		databaseName: params.DatabaseName,
		batchSize:    batchSize,
	}
}

// Execute executes the statement with the query rows bound to the events parameter.
func (e *Neo4jExecutor) Execute(ctx context.Context, query compiler.QueryEvents) error {
	if query.Statement == "" {
		return ErrEmptyStatement
	}

	session := e.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: e.databaseName,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	for chunk := range slices.Chunk(query.Rows, e.batchSize) {
		summary, err := executeWriteQuery(ctx, session, query.Statement, map[string]any{
			compiler.ParameterEvents: rowsParameter(chunk),
		})
		if err != nil {
			return fmt.Errorf("execute write query: %w", err)
		}

		counters := summary.Counters()
		sdk.Logger(ctx).Trace().
			Str("statement", query.Statement).
			Int("rows", len(chunk)).
			Int("nodesCreated", counters.NodesCreated()).
			Int("nodesDeleted", counters.NodesDeleted()).
			Int("relationshipsCreated", counters.RelationshipsCreated()).
			Int("relationshipsDeleted", counters.RelationshipsDeleted()).
			Int("propertiesSet", counters.PropertiesSet()).
			Msg("statement executed")
	}

	return nil
}

// executeWriteQuery is a helper function that wraps the [neo4j.ExecuteWrite] function
// and the underlying anonymous function.
func executeWriteQuery(
	ctx context.Context,
	session neo4j.SessionWithContext,
	query string,
	parameters map[string]any,
) (neo4j.ResultSummary, error) {
	summary, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (neo4j.ResultSummary, error) {
		result, err := tx.Run(ctx, query, parameters)
		if err != nil {
			return nil, fmt.Errorf("run tx: %w", err)
		}

		summary, err := result.Consume(ctx)
		if err != nil {
			return nil, fmt.Errorf("consume result: %w", err)
		}

		return summary, nil
	})
	if err != nil {
		return nil, fmt.Errorf("execute write: %w", err)
	}

	return summary, nil
}

// rowsParameter converts rows into a list the driver can pack.
func rowsParameter(rows []map[string]any) []any {
	result := make([]any, len(rows))
	for i, row := range rows {
		result[i] = row
	}

	return result
}
