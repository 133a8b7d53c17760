package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/poiesic/motif/core"
	"github.com/poiesic/motif/pattern"
	"github.com/poiesic/motif/scan"
	"github.com/poiesic/motif/storage"
)

// SimilarRequest is the body of POST /similar.
type SimilarRequest struct {
	InputTitles []string `json:"input_titles"`
	TopN        int      `json:"top_n"`
}

// SongResponse is one ranked song.
type SongResponse struct {
	ID       string   `json:"id"`
	Path     string   `json:"path"`
	Title    string   `json:"title"`
	Creators []string `json:"creators"`
	Key      string   `json:"key"`
	Mode     string   `json:"mode"`
	Tempo    float64  `json:"tempo"`
	Score    float32  `json:"score"`
}

// MatchRequest is the body of POST /match.
type MatchRequest struct {
	Notes []core.Note `json:"notes"`
	Paths []string    `json:"paths,omitempty"`
}

// MatchResponse is the result of POST /match.
type MatchResponse struct {
	RunID   string             `json:"run_id"`
	Matches []core.Match       `json:"matches"`
	Skipped []core.SkippedFile `json:"skipped"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	maxResults := 0
	if raw := r.URL.Query().Get("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, errors.New("max_results must be a positive integer"))
			return
		}
		maxResults = n
	}

	results, err := s.searcher.FindSongsWithMonitor(r.Context(), query, maxResults, s.metrics.SearchMonitor())
	if err != nil {
		s.logger.Error("title search failed", "query", query, "err", err)
		s.metrics.ObserveSearch("title", 0, err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	titles := make([]string, len(results))
	for i, result := range results {
		titles[i] = result.Record.Title
	}
	s.writeJSON(w, http.StatusOK, titles)
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	var req SimilarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	started := time.Now()
	results, err := s.searcher.FindSimilarSongs(r.Context(), req.InputTitles, req.TopN)
	s.metrics.ObserveSearch("similar", time.Since(started), err)
	switch {
	case errors.Is(err, storage.ErrNoSimilarSongs):
		s.writeError(w, http.StatusNotFound, err)
		return
	case err != nil:
		s.logger.Error("similar song lookup failed", "titles", req.InputTitles, "err", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	songs := make([]SongResponse, 0, len(results))
	for _, result := range results {
		rec := result.Record
		songs = append(songs, SongResponse{
			ID:       rec.Id.String(),
			Path:     rec.Path,
			Title:    rec.Title,
			Creators: rec.Creators,
			Key:      rec.Summary.Key,
			Mode:     rec.Summary.Mode,
			Tempo:    rec.Summary.Tempo,
			Score:    result.Score,
		})
	}
	s.writeJSON(w, http.StatusOK, songs)
}

// maxMatchBody caps the size of a match request body.
const maxMatchBody = 1 << 20

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	body := http.MaxBytesReader(w, r.Body, maxMatchBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if len(req.Paths) > s.maxMatchPaths {
		s.writeError(w, http.StatusBadRequest,
			fmt.Errorf("too many paths: %d exceeds limit of %d", len(req.Paths), s.maxMatchPaths))
		return
	}

	paths := req.Paths
	if len(paths) == 0 {
		paths = s.manifest
	}
	if len(paths) == 0 {
		s.writeError(w, http.StatusBadRequest, errors.New("no corpus paths to scan"))
		return
	}

	query := pattern.BuildEvents(req.Notes)
	result, err := s.scanner.ScanWithMonitor(r.Context(), paths, query, s.metrics.ScanMonitor())
	switch {
	case errors.Is(err, scan.ErrEmptyPattern):
		s.writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		s.logger.Error("pattern scan failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, MatchResponse{
		RunID:   result.RunID,
		Matches: result.Matches,
		Skipped: result.Skipped,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
