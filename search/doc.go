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


// Package search provides semantic search over song titles and
// similar-song lookup.
//
// FindTitles embeds the query, asks a VectorIndex for the nearest title
// vectors and re-ranks the candidates with a verbatim keyword boost:
//
//   - Semantic similarity between the query and title embeddings
//   - Verbatim keyword matching with stop-word filtering
//
// The index is the song repository itself (exhaustive scan) unless an
// approximate index such as index.TitleIndex is supplied with WithIndex.
//
// FindSimilarSongs delegates to a storage.SimilarityFinder, which ranks songs
// by the similarity of their musical feature vectors.
package search
