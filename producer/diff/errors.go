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

package diff

import "errors"

var (
	// ErrMissingEntity occurs when a change references an entity
	// that is neither readable nor captured within the commit.
	ErrMissingEntity = errors.New("missing entity")
	// ErrInconsistentLabels occurs when label changes contradict the current node labels.
	ErrInconsistentLabels = errors.New("inconsistent label changes")
)
