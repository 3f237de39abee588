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

package neo4j

import (
	sdk "github.com/conduitio/conduit-connector-sdk"
)

// version is set during the build process with ldflags (see Makefile).
// Default version matches default from runtime/debug.
var version = "(devel)"

// Specification returns specification of the connector.
func Specification() sdk.Specification {
	return sdk.Specification{
		Name:    "neo4j-streams",
		Summary: "Neo4j change data capture source and idempotent replay destination.",
		Description: "The source captures Neo4j nodes or relationships as change events " +
			"carrying full before and after states, commit ids and per-commit positions. " +
			"The destination groups incoming change events by shape and replays them " +
			"with one batched MERGE or DELETE statement per shape.",
		Version: version,
		Author:  "Meroxa, Inc. & Yalantis",
	}
}
