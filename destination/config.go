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

package destination

import (
	"github.com/conduitio-labs/conduit-connector-neo4j-streams/config"
)

//go:generate paramgen -output=paramgen_dest.go Config

// Config holds destination-specific configurable values.
type Config struct {
	config.Config

	// The number of rows a replay statement is executed with at once.
	BatchSize int `json:"batchSize" validate:"gt=0,lt=100001" default:"1000"`
	// The label every replayed node carries, used to look nodes up by their identity.
	SentinelLabel string `json:"sentinelLabel" default:"CDCEntity"`
	// The name of a property that holds the identity of replayed nodes and relationships.
	IDKey string `json:"idKey" default:"cdc_id"`
}
