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

package schema

import (
	"context"
	"fmt"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const (
	showConstraintsQuery = "SHOW CONSTRAINTS YIELD type, labelsOrTypes, properties"

	// columns returned by the showConstraintsQuery.
	typeColumn          = "type"
	labelsOrTypesColumn = "labelsOrTypes"
	propertiesColumn    = "properties"
)

// constraintTypes maps Neo4j constraint type names to a [ConstraintType].
var constraintTypes = map[string]ConstraintType{
	"UNIQUENESS":                      ConstraintTypeUnique,
	"RELATIONSHIP_UNIQUENESS":         ConstraintTypeUnique,
	"NODE_PROPERTY_EXISTENCE":         ConstraintTypeNodePropertyExists,
	"RELATIONSHIP_PROPERTY_EXISTENCE": ConstraintTypeRelationshipPropertyExists,
	"NODE_KEY":                        ConstraintTypeNodeKey,
	"RELATIONSHIP_KEY":                ConstraintTypeRelationshipKey,
}

// Registry builds a [Schema] for labels and relationship types
// using the constraints declared in a Neo4j database.
//
// Constraints are loaded once and cached until [Registry.Refresh] is called.
// A Registry without a driver builds schemas with property types only.
type Registry struct {
	driver       neo4j.DriverWithContext
	databaseName string

	mu          sync.Mutex
	loaded      bool
	constraints map[string][]Constraint
}

// NewRegistry creates a new instance of the [Registry].
func NewRegistry(driver neo4j.DriverWithContext, databaseName string) *Registry {
	return &Registry{
		driver:       driver,
		databaseName: databaseName,
	}
}

// NodeSchema returns the schema of a node with the given labels and properties.
func (r *Registry) NodeSchema(ctx context.Context, labels []string, properties map[string]any) (Schema, error) {
	return r.build(ctx, labels, properties)
}

// RelationshipSchema returns the schema of a relationship with the given type and properties.
func (r *Registry) RelationshipSchema(
	ctx context.Context,
	relationshipType string,
	properties map[string]any,
) (Schema, error) {
	return r.build(ctx, []string{relationshipType}, properties)
}

// Refresh drops cached constraints, they are loaded again on the next schema request.
func (r *Registry) Refresh() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.loaded = false
	r.constraints = nil
}

func (r *Registry) build(ctx context.Context, labelsOrTypes []string, properties map[string]any) (Schema, error) {
	constraints, err := r.lookup(ctx, labelsOrTypes)
	if err != nil {
		return Schema{}, fmt.Errorf("lookup constraints: %w", err)
	}

	return Schema{
		Properties:  PropertyTypes(properties),
		Constraints: constraints,
	}, nil
}

func (r *Registry) lookup(ctx context.Context, labelsOrTypes []string) ([]Constraint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.loaded {
		constraints, err := r.load(ctx)
		if err != nil {
			return nil, err
		}

		r.constraints = constraints
		r.loaded = true
	}

	var result []Constraint
	for _, labelOrType := range labelsOrTypes {
		result = append(result, r.constraints[labelOrType]...)
	}

	sortConstraints(result)

	return result, nil
}

// load reads all declared constraints and indexes them by label or relationship type.
func (r *Registry) load(ctx context.Context) (map[string][]Constraint, error) {
	constraints := make(map[string][]Constraint)
	if r.driver == nil {
		return constraints, nil
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: r.databaseName,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	records, err := neo4j.ExecuteRead(ctx, session, func(tx neo4j.ManagedTransaction) ([]*neo4j.Record, error) {
		result, err := tx.Run(ctx, showConstraintsQuery, nil)
		if err != nil {
			return nil, fmt.Errorf("run tx: %w", err)
		}

		records, err := result.Collect(ctx)
		if err != nil {
			return nil, fmt.Errorf("collect records: %w", err)
		}

		return records, nil
	})
	if err != nil {
		return nil, fmt.Errorf("execute read: %w", err)
	}

	for _, record := range records {
		rawType, _ := record.Get(typeColumn)
		rawLabels, _ := record.Get(labelsOrTypesColumn)
		rawProperties, _ := record.Get(propertiesColumn)

		typeName, _ := rawType.(string)
		for _, constraint := range constraintsFromRow(typeName, toStrings(rawLabels), toStrings(rawProperties)) {
			constraints[constraint.Label] = append(constraints[constraint.Label], constraint)
		}
	}

	return constraints, nil
}

// constraintsFromRow converts a single SHOW CONSTRAINTS row into constraints, one per label or type.
// Rows of unsupported constraint types produce nothing.
func constraintsFromRow(typeName string, labelsOrTypes, properties []string) []Constraint {
	constraintType, ok := constraintTypes[typeName]
	if !ok {
		return nil
	}

	constraints := make([]Constraint, 0, len(labelsOrTypes))
	for _, labelOrType := range labelsOrTypes {
		constraints = append(constraints, Constraint{
			Label:      labelOrType,
			Properties: properties,
			Type:       constraintType,
		})
	}

	return constraints
}

func toStrings(raw any) []string {
	values, ok := raw.([]any)
	if !ok {
		return nil
	}

	result := make([]string, 0, len(values))
	for _, value := range values {
		if s, ok := value.(string); ok {
			result = append(result, s)
		}
	}

	return result
}
