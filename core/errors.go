// Copyright 2025 Pileworks
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


package core

import "errors"

// Domain validation errors
var (
	// ErrEmptyQuery indicates a query string is empty.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrInvalidScore indicates a score outside the [0, 100] range.
	ErrInvalidScore = errors.New("score must be between 0 and 100")

	// ErrInvalidMatchResult indicates a MatchResult violating the
	// empty-match-iff-zero-score invariant.
	ErrInvalidMatchResult = errors.New("invalid match result")
)
