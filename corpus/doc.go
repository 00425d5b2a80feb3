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


// Package corpus loads reference corpus shards and query files and
// segments corpus documents into bounded-size chunks.
//
// A corpus is split across numbered JSONL shard files, each line holding
// one document under a "text" field. Query files are JSONL with one
// "canonical_solution" field per line. Documents are atomic: a chunk
// boundary never falls inside a document.
package corpus
