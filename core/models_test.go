package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same path produces same ID",
			content:  "./data/a/b/song.json",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("./data/a.json")
	id2 := IDFromContent("./data/b.json")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestSong_Title(t *testing.T) {
	title := "Ode to Joy"
	empty := ""

	t.Run("present", func(t *testing.T) {
		s := Song{Metadata: Metadata{Title: &title}}
		assert.Equal(t, "Ode to Joy", s.Title())
	})

	t.Run("missing", func(t *testing.T) {
		s := Song{}
		assert.Equal(t, UnknownTitle, s.Title())
	})

	t.Run("blank is kept", func(t *testing.T) {
		s := Song{Metadata: Metadata{Title: &empty}}
		assert.Equal(t, "", s.Title())
	})
}

func TestSong_Creators(t *testing.T) {
	s := Song{}
	assert.NotNil(t, s.Creators())
	assert.Empty(t, s.Creators())

	s.Metadata.Creators = []string{"Beethoven"}
	assert.Equal(t, []string{"Beethoven"}, s.Creators())
}

func TestMatchResult(t *testing.T) {
	r := &MatchResult{
		Matches: []Match{
			{Path: "./b.json", Title: "B"},
			{Path: "./a.json", Title: "A"},
		},
	}

	assert.Equal(t, map[string]string{"./a.json": "A", "./b.json": "B"}, r.Titles())
	assert.Equal(t, []string{"./b.json", "./a.json"}, r.Paths())
}
