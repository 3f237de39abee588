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
	"github.com/conduitio-labs/conduit-connector-neo4j-streams/config"
	"github.com/conduitio-labs/conduit-connector-neo4j-streams/event"
)

//go:generate paramgen -output=paramgen_src.go Config

// Config holds source-specific configurable values.
type Config struct {
	config.Config

	// Defines an entity type the connector should work with.
	EntityType event.EntityType `json:"entityType" validate:"required,inclusion=node|relationship"`
	// Holds a list of labels belonging to an entity.
	EntityLabels []string `json:"entityLabels" validate:"required"`
	// The name of a property that is used for ordering
	// nodes or relationships when capturing a snapshot.
	OrderingProperty string `json:"orderingProperty" validate:"required"`
	// The size of an element batch.
	BatchSize int `json:"batchSize" validate:"gt=0,lt=100001" default:"1000"`
	// Determines whether or not the connector will take a snapshot
	// of all nodes or relationships before starting polling mode.
	Snapshot bool `json:"snapshot" default:"true"`
}
