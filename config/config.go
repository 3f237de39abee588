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

// Package config holds the configuration shared by the Source and the Destination.
package config

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Config contains configurable values shared between the Source and the Destination.
type Config struct {
	// The connection URI pointed to a Neo4j instance.
	URI string `json:"uri" validate:"required"`
	// The name of a database the connector should work with.
	Database string `json:"database" default:"neo4j"`
	// Auth holds auth-specific configurable values.
	Auth AuthConfig `json:"auth"`
}

// AuthConfig contains auth-specific configurable values.
type AuthConfig struct {
	// The username to use when performing basic auth.
	Username string `json:"username"`
	// The password to use when performing basic auth.
	Password string `json:"password"`
	// The realm to use when performing basic auth.
	Realm string `json:"realm"`
}

// AuthToken returns a basic auth token if any of the auth values is set, and no auth otherwise.
func (c AuthConfig) AuthToken() neo4j.AuthToken {
	if c.Username != "" || c.Password != "" || c.Realm != "" {
		return neo4j.BasicAuth(c.Username, c.Password, c.Realm)
	}

	return neo4j.NoAuth()
}

// NewDriver creates a Neo4j driver and verifies it can reach the instance.
func (c Config) NewDriver(ctx context.Context) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(c.URI, c.Auth.AuthToken())
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		// the connectivity error is the one worth reporting
		_ = driver.Close(ctx)

		return nil, fmt.Errorf("ping neo4j instance: %w", err)
	}

	return driver, nil
}
