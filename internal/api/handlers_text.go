package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/docslice/internal/chunker"
	"github.com/dgallion1/docslice/internal/pipeline"
)

type splitRequest struct {
	Text     string `json:"text"`
	Filename string `json:"filename"`
	pipeline.Options
}

// handleSplit segments text posted as JSON, skipping file extraction.
func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req splitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.orchestrator.Processor().ProcessText(r.Context(), req.Text, req.Filename, req.Options)
	if err != nil {
		writeProcessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type detectRequest struct {
	Text     string   `json:"text"`
	Patterns []string `json:"patterns,omitempty"`
}

type detectResponse struct {
	Kind           string `json:"kind"`
	Family         string `json:"family,omitempty"`
	Example        string `json:"example,omitempty"`
	ChapterPattern string `json:"chapter_pattern,omitempty"`
	ArticlePattern string `json:"article_pattern,omitempty"`
}

// handleDetect reports the heading structure of text without segmenting it.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}

	d, err := chunker.Resolve(req.Text, req.Patterns, s.orchestrator.Processor().Catalog())
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, detectResponse{
		Kind:           d.Kind.String(),
		Family:         d.Family,
		Example:        d.Example,
		ChapterPattern: d.Chapter.String(),
		ArticlePattern: d.Article.String(),
	})
}

type familyView struct {
	Name    string `json:"name"`
	Chapter string `json:"chapter"`
	Article string `json:"article"`
	Example string `json:"example,omitempty"`
}

func (s *Server) handleFamilies(w http.ResponseWriter, r *http.Request) {
	fams := s.orchestrator.Processor().Catalog().Families()
	out := make([]familyView, 0, len(fams))
	for _, f := range fams {
		out = append(out, familyView{
			Name:    f.Name,
			Chapter: f.Chapter.String(),
			Article: f.Article.String(),
			Example: f.Example,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"families": out})
}
