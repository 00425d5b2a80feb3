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


// Package broadcast publishes one corpus chunk to many parallel scoring
// workers without re-transmitting it per task.
//
// A chunk is encoded once into a named region sized exactly to its encoded
// length. Workers attach the region by name and decode it back to the
// published chunk. The publisher releases the region only after every
// worker task reading it has completed.
//
// The protocol is strictly sequential across chunks: at most one region is
// resident at a time, and publishing over a live region of the same name is
// a programming error reported as ErrRegionExists.
package broadcast
