package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/docslice/internal/convert"
	"github.com/dgallion1/docslice/internal/parser"
	"github.com/dgallion1/docslice/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

// handleParse extracts and segments one uploaded file synchronously.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	opts, err := formOptions(r)
	if err != nil {
		writeProcessError(w, err)
		return
	}

	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	if err := s.acquire(r.Context()); err != nil {
		jsonError(w, "request cancelled while waiting for a parse slot", http.StatusServiceUnavailable)
		return
	}
	defer s.release()

	ctx := convert.WithRequestID(r.Context(), requestID(r))
	res, err := s.orchestrator.Processor().ProcessFile(ctx, data, filename, opts)
	if err != nil {
		s.log.Error("parse failed", "request_id", requestID(r), "filename", filename, "error", err)
		writeProcessError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// handleParseAsync queues an uploaded file and returns the job to poll.
func (s *Server) handleParseAsync(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	opts, err := formOptions(r)
	if err != nil {
		writeProcessError(w, err)
		return
	}
	if opts, err = opts.Normalize(); err != nil {
		writeProcessError(w, err)
		return
	}

	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	job := pipeline.NewJob(filename, data, opts)
	job.RequestID = requestID(r)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

type batchItem struct {
	Filename string           `json:"filename"`
	Result   *pipeline.Result `json:"result,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// handleParseBatch segments several files concurrently. Per-file failures
// are reported in place; results keep the upload order.
func (s *Server) handleParseBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*int64(s.cfg.BatchMaxFiles)+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	opts, err := formOptions(r)
	if err != nil {
		writeProcessError(w, err)
		return
	}
	if opts, err = opts.Normalize(); err != nil {
		writeProcessError(w, err)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	if len(files) > s.cfg.BatchMaxFiles {
		jsonError(w, fmt.Sprintf("too many files: %d (max %d)", len(files), s.cfg.BatchMaxFiles), http.StatusBadRequest)
		return
	}

	ctx := convert.WithRequestID(r.Context(), requestID(r))
	proc := s.orchestrator.Processor()
	results := make([]batchItem, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.cfg.MaxConcurrentParse, 1))
	for i, fh := range files {
		g.Go(func() error {
			filename := sanitizeFilename(fh.Filename)
			results[i] = batchItem{Filename: filename}

			data, err := s.readPart(fh, filename)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			res, err := proc.ProcessFile(gCtx, data, filename, opts)
			if err != nil {
				s.log.Warn("batch item failed", "request_id", requestID(r), "filename", filename, "error", err)
				results[i].Error = err.Error()
				return nil
			}
			results[i].Result = res
			return nil
		})
	}
	_ = g.Wait() // item errors are recorded in results

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// readUpload reads the "file" form part, writing an error response on failure.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return "", nil, false
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return "", nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return "", nil, false
	}
	return filename, data, true
}

func (s *Server) readPart(fh *multipart.FileHeader, filename string) ([]byte, error) {
	if !parser.IsSupportedExtension(filename) {
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.New("failed to open file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil || int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, errors.New("file too large or read error")
	}
	return data, nil
}

func (s *Server) acquire(ctx context.Context) error {
	select {
	case s.parseSem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) release() {
	<-s.parseSem
}

// formOptions reads segmentation options from a parsed form. re_matchers
// may be repeated; "patterns" is accepted as an alias.
func formOptions(r *http.Request) (pipeline.Options, error) {
	var opts pipeline.Options
	opts.Patterns = append(opts.Patterns, r.MultipartForm.Value["re_matchers"]...)
	opts.Patterns = append(opts.Patterns, r.MultipartForm.Value["patterns"]...)
	opts.OutputFormat = r.FormValue("output_format")
	opts.ChunkSplitter = r.FormValue("chunk_splitter")

	if v := strings.TrimSpace(r.FormValue("length_limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, &pipeline.ValidationError{Field: "length_limit", Err: err}
		}
		opts.LengthLimit = n
	}
	if v := strings.TrimSpace(r.FormValue("filename_in_chunk")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, &pipeline.ValidationError{Field: "filename_in_chunk", Err: err}
		}
		opts.FilenameInChunk = b
	}
	return opts, nil
}

// requestID prefers the caller's request_id form field over the generated one.
func requestID(r *http.Request) string {
	if r.MultipartForm != nil {
		if v := r.MultipartForm.Value["request_id"]; len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}
	return middleware.GetReqID(r.Context())
}

func writeProcessError(w http.ResponseWriter, err error) {
	switch {
	case pipeline.IsValidationError(err):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case convert.IsRetryable(err):
		jsonError(w, err.Error(), http.StatusBadGateway)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	}
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
