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
	"errors"
	"fmt"

	"github.com/conduitio-labs/conduit-connector-neo4j-streams/destination/grouper"
)

// ErrEmptyStatement occurs when trying to execute a query without a statement.
var ErrEmptyStatement = errors.New("empty statement")

// StatementError is a failure of one compiled statement.
type StatementError struct {
	Kind  grouper.Kind
	Shape grouper.Shape
	// Rows is the number of rows the statement was executed with.
	Rows int
	Err  error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("execute %s statement (%s, %d rows): %v", e.Kind, e.Shape, e.Rows, e.Err)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}
