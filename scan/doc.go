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


// Package scan searches a song corpus for a melodic pattern.
//
// A Scanner loads every listed song on a worker pool, builds the event
// sequence of each track and tests the pattern against it. A song is
// reported at most once, for the first track that contains the pattern.
// Files that cannot be read or decoded are logged and reported as skipped;
// they never abort a scan.
//
// # Usage
//
//	loader, _ := corpus.NewLoader("/data/pdmx")
//	scanner, err := scan.NewScanner(loader, scan.WithPoolSize(8))
//	if err != nil {
//	    return err
//	}
//	defer scanner.Release()
//
//	result, err := scanner.Scan(ctx, paths, query)
//	for _, m := range result.Matches {
//	    fmt.Println(m.Path, m.Title)
//	}
//
// Results follow the order of the input path list regardless of which
// worker finished first.
package scan
