// Copyright 2025 Poiesic Systems
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


// Package features extracts musical features from a song and encodes them
// as a fixed-length vector for similarity ranking.
//
// The vector concatenates, in order:
//
//   - pitch-class histogram (12)
//   - interval-class histogram (12)
//   - melodic contour fractions up, down, same (3)
//   - chord root histogram C..B (12)
//   - chord type histogram (8)
//   - key root one-hot (12) and major-mode flag (1)
//   - note duration histogram (11), average duration / 1000, tempo / 300
//   - measure count / 100 (capped at 1) and time signature one-hot (6)
//
// and is zero padded to VectorSize. Only the first track contributes notes
// and chords.
package features
