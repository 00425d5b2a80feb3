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

import "fmt"

// ValidateQuery validates a query string according to domain rules.
// Queries are immutable once loaded, so this runs once at load time.
func ValidateQuery(query string) error {
	if query == "" {
		return ErrEmptyQuery
	}
	return nil
}

// ValidateMatchResult validates a MatchResult according to domain rules.
//
// Validation rules:
//   - Score must be in [0, 100]
//   - Match must be empty if and only if Score is zero
func ValidateMatchResult(result MatchResult) error {
	if result.Score < 0 || result.Score > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidScore, result.Score)
	}
	if (result.Match == "") != (result.Score == 0) {
		return fmt.Errorf("%w: match %q with score %d", ErrInvalidMatchResult, result.Match, result.Score)
	}
	return nil
}
