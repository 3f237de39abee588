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

// Package schema holds the schema description attached to every change event.
package schema

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// ConstraintType defines a kind of a declared Neo4j constraint.
type ConstraintType string

// The available constraint types are listed below.
const (
	ConstraintTypeUnique                     ConstraintType = "UNIQUE"
	ConstraintTypeNodePropertyExists         ConstraintType = "NODE_PROPERTY_EXISTS"
	ConstraintTypeRelationshipPropertyExists ConstraintType = "RELATIONSHIP_PROPERTY_EXISTS"
	ConstraintTypeNodeKey                    ConstraintType = "NODE_KEY"
	ConstraintTypeRelationshipKey            ConstraintType = "RELATIONSHIP_KEY"
)

// Constraint is a constraint declared on a label or a relationship type.
type Constraint struct {
	Label      string         `json:"label"`
	Properties []string       `json:"properties"`
	Type       ConstraintType `json:"type"`
}

// Schema describes the current declared schema of an entity's labels or type.
type Schema struct {
	// Properties maps a property name to the name of its value type.
	Properties  map[string]string `json:"properties"`
	Constraints []Constraint      `json:"constraints"`
}

// PropertyTypes returns a map of property names to their type names.
func PropertyTypes(properties map[string]any) map[string]string {
	types := make(map[string]string, len(properties))
	for name, value := range properties {
		types[name] = TypeName(value)
	}

	return types
}

// Type names of property values.
const (
	TypeNull      = "Null"
	TypeString    = "String"
	TypeBoolean   = "Boolean"
	TypeLong      = "Long"
	TypeDouble    = "Double"
	TypeByteArray = "ByteArray"
	TypeList      = "List"
	TypeMap       = "Map"
	TypeTemporal  = "Temporal"
	TypeDuration  = "Duration"
	TypePoint     = "Point"
	TypeUnknown   = "Unknown"

	// listSuffix marks a list whose elements share one type, like String[].
	listSuffix = "[]"
)

// TypeName returns a Neo4j-flavoured type name of the value.
// Lists of elements of a single type are named after it, like Double[].
func TypeName(value any) string {
	switch v := value.(type) {
	case nil:
		return TypeNull
	case string:
		return TypeString
	case bool:
		return TypeBoolean
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return TypeLong
	case float32, float64:
		return TypeDouble
	case []byte:
		return TypeByteArray
	case []string:
		return ListOf(TypeString)
	case []int64:
		return ListOf(TypeLong)
	case []float64:
		return ListOf(TypeDouble)
	case []bool:
		return ListOf(TypeBoolean)
	case []any:
		return listTypeName(v)
	case map[string]any:
		return TypeMap
	case time.Time, dbtype.Date, dbtype.LocalDateTime, dbtype.LocalTime, dbtype.Time:
		return TypeTemporal
	case dbtype.Duration:
		return TypeDuration
	case dbtype.Point2D, dbtype.Point3D:
		return TypePoint
	default:
		return TypeUnknown
	}
}

// ListOf returns the type name of a list of elements of the given type.
func ListOf(elementType string) string {
	return elementType + listSuffix
}

func listTypeName(values []any) string {
	if len(values) == 0 {
		return TypeList
	}

	elementType := TypeName(values[0])
	for _, value := range values[1:] {
		if TypeName(value) != elementType {
			return TypeList
		}
	}

	switch elementType {
	case TypeNull, TypeUnknown, TypeList, TypeMap:
		return TypeList
	default:
		if strings.HasSuffix(elementType, listSuffix) {
			return TypeList
		}

		return ListOf(elementType)
	}
}

// sortConstraints orders constraints by label, type and properties
// so the same schema always serializes the same way.
func sortConstraints(constraints []Constraint) {
	sort.SliceStable(constraints, func(i, j int) bool {
		a, b := constraints[i], constraints[j]
		if a.Label != b.Label {
			return a.Label < b.Label
		}

		if a.Type != b.Type {
			return a.Type < b.Type
		}

		return slices.Compare(a.Properties, b.Properties) < 0
	})
}
