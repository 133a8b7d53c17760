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


package ingestion

import (
	"context"

	"github.com/poiesic/motif/core"
	"github.com/poiesic/motif/corpus"
	"github.com/poiesic/motif/features"
)

// buildRecord loads the song at path and encodes it into a record without
// a title embedding.
func buildRecord(ctx context.Context, loader *corpus.Loader, path string) (*core.SongRecord, error) {
	song, err := loader.LoadSong(ctx, path)
	if err != nil {
		return nil, err
	}

	vector, summary := features.EncodeSong(song)
	creators := song.Metadata.Creators
	if creators == nil {
		creators = []string{}
	}
	return &core.SongRecord{
		Id:            core.IDFromContent(path),
		Path:          path,
		Title:         song.Title(),
		Creators:      creators,
		Summary:       summary,
		FeatureVector: vector,
	}, nil
}
