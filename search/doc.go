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


// Package search coordinates parallel approximate-substring search of
// queries against a chunked corpus.
//
// The Coordinator dispatches (query, chunk) scoring tasks across a worker
// pool in one of two modes. Single-query mode scores one query against many
// chunks, passing chunk text directly to each short-lived task, and stops
// scheduling new chunks once a perfect match is found. Batch mode scores
// many queries against one chunk at a time: the chunk is published once to
// a broadcast region, every query is scored against it in parallel, and the
// region is released before the next chunk is published. Batch mode never
// exits early: every query is scored against every chunk.
//
// The Runner drives a whole corpus: it iterates shard files in fixed order,
// builds chunks with globally continuous indices, and folds each shard's
// results into the running best result per query.
package search
