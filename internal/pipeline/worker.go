package pipeline

import (
	"context"
	"log/slog"

	"github.com/dgallion1/docslice/internal/convert"
)

// Worker processes a single document job.
type Worker struct {
	proc *Processor
	log  *slog.Logger
}

func NewWorker(proc *Processor, log *slog.Logger) *Worker {
	return &Worker{proc: proc, log: log}
}

// Process extracts and segments the job's document, recording the result
// or the failing phase on the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	if job.RequestID != "" {
		ctx = convert.WithRequestID(ctx, job.RequestID)
	}

	job.SetStatus(StatusParsing, "parsing")
	text, err := w.proc.Extract(ctx, job.FileData(), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.Fail("parsing", err)
		return
	}

	job.SetStatus(StatusSegmenting, "segmenting")
	res, err := w.proc.ProcessText(ctx, text, job.Filename, job.Options)
	if err != nil {
		log.Error("segmentation failed", "error", err)
		job.Fail("segmenting", err)
		return
	}

	job.Complete(res)
	log.Info("job complete", "kind", res.Kind, "chunks", len(res.Chunks))
}
