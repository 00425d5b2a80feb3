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


package dolos

import "errors"

// ErrNoPrograms occurs when the input result file holds no records to
// analyze.
var ErrNoPrograms = errors.New("no programs to analyze")

// ErrNoScore occurs when the analyzer output contains no similarity score
// line.
var ErrNoScore = errors.New("no similarity score in analyzer output")

// ErrBadProgramDir occurs when a program directory name does not carry a
// trailing program index.
var ErrBadProgramDir = errors.New("program directory has no index suffix")
