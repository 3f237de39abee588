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

package event

import "errors"

var (
	// ErrEmptyPayload occurs when a record carries no event payload.
	ErrEmptyPayload = errors.New("empty payload")
	// ErrUnknownEntityType occurs when an event payload has an unsupported type.
	ErrUnknownEntityType = errors.New("unknown entity type")
	// ErrUnknownOperation occurs when an event operation cannot be represented by a record.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrMissingChanges occurs when an event payload has neither a before nor an after state.
	ErrMissingChanges = errors.New("payload has neither before nor after state")
)
