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


// Package match scores how closely a query string matches the best
// substring of a corpus chunk.
//
// Two interchangeable Scorer implementations are provided:
//
//   - Alignment finds the best local alignment of the query anywhere in
//     the chunk and accepts only scores strictly above the threshold.
//   - Window is an explicit fixed-stride sliding-window scan that accepts
//     scores at or above the threshold.
//
// The accept thresholds intentionally differ (strict vs non-strict); both
// behaviors are load-bearing and must not be unified.
//
// Both scorers build on a normalized indel similarity: 100 times the
// fraction of characters that survive aligning the two strings with
// insertions and deletions only (substitution cost 2, i.e. delete+insert).
package match
