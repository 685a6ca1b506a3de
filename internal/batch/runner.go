// Package batch drives concurrent fetch-parse-build jobs over a list of
// share links and aggregates their outcomes.
package batch

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/coursekit/roundex/internal/convo"
	"github.com/coursekit/roundex/internal/fetch"
	"github.com/coursekit/roundex/internal/names"
	"github.com/coursekit/roundex/internal/rounds"
	"github.com/coursekit/roundex/internal/share"
	"github.com/coursekit/roundex/internal/workbook"
)

var (
	ErrNoLinks        = errors.New("batch: no input links")
	ErrBadConcurrency = errors.New("batch: concurrency limit must be at least 1")
)

const reasonCancelled = "cancelled"

// Fetcher retrieves raw share-page content. Satisfied by *fetch.Client.
type Fetcher interface {
	Fetch(ctx context.Context, link string) (*fetch.Page, error)
}

// Output pairs an allocated name with its finished workbook.
type Output struct {
	Name string
	File *excelize.File
}

// Result is the settled batch: successful workbooks and one status record
// per input link, both in input order.
type Result struct {
	Outputs []Output
	Records []workbook.StatusRecord
}

type Runner struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func NewRunner(fetcher Fetcher, logger *slog.Logger) *Runner {
	return &Runner{fetcher: fetcher, logger: logger}
}

// Run processes every link with at most concurrency fetches in flight.
// Names are allocated in input order before any job starts, so re-running
// the same list reproduces the same assignment. One job's failure never
// aborts the batch; only invalid top-level input does.
func (r *Runner) Run(ctx context.Context, links []share.Link, concurrency int) (*Result, error) {
	if len(links) == 0 {
		return nil, ErrNoLinks
	}
	if concurrency < 1 {
		return nil, ErrBadConcurrency
	}

	registry := names.NewRegistry()
	jobs := make([]*Job, len(links))
	for i, link := range links {
		jobs[i] = &Job{
			ID:    uuid.New(),
			Index: i,
			Link:  link,
			Name:  registry.Allocate(link.URL, link.Name),
			State: StatePending,
		}
	}

	var g errgroup.Group
	g.SetLimit(concurrency)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			r.process(ctx, job)
			return nil
		})
	}
	_ = g.Wait() // job failures live on the jobs, never here

	result := &Result{Records: make([]workbook.StatusRecord, len(jobs))}
	for i, job := range jobs {
		rec := workbook.StatusRecord{
			Name: job.Name,
			Link: job.Link.URL,
		}
		if job.State == StateDone {
			rec.Status = workbook.StatusOK
			rec.RoundCount = len(job.Rounds)
			result.Outputs = append(result.Outputs, Output{Name: job.Name, File: job.File})
		} else {
			rec.Status = workbook.StatusFailed
			rec.Reason = job.Reason
		}
		result.Records[i] = rec
	}

	r.logger.Info("batch settled",
		"links", len(links),
		"succeeded", len(result.Outputs),
		"failed", len(links)-len(result.Outputs),
	)
	return result, nil
}

// process walks one job through the pipeline. A cancelled context lets the
// current step finish, then marks the job failed at the step boundary.
func (r *Runner) process(ctx context.Context, job *Job) {
	if ctx.Err() != nil {
		job.fail(reasonCancelled)
		return
	}

	if !share.Valid(job.Link.URL) {
		job.fail("invalid_share_link")
		r.logJob(job)
		return
	}

	job.State = StateFetching
	page, err := r.fetcher.Fetch(ctx, job.Link.URL)
	if err != nil {
		if ctx.Err() != nil {
			job.fail(reasonCancelled)
		} else {
			job.fail(err.Error())
		}
		r.logJob(job)
		return
	}
	if ctx.Err() != nil {
		job.fail(reasonCancelled)
		return
	}

	job.State = StateParsing
	nodes, err := convo.Parse(page.Body)
	if err != nil {
		job.fail(err.Error())
		r.logJob(job)
		return
	}
	if ctx.Err() != nil {
		job.fail(reasonCancelled)
		return
	}

	job.State = StateBuilding
	job.Rounds = rounds.Build(nodes)
	file, err := workbook.Conversation(job.Name, job.Rounds)
	if err != nil {
		job.fail("workbook: " + err.Error())
		r.logJob(job)
		return
	}
	job.File = file
	job.State = StateDone
	r.logJob(job)
}

func (r *Runner) logJob(job *Job) {
	if job.State == StateDone {
		r.logger.Info("job done",
			"job_id", job.ID.String(),
			"name", job.Name,
			"rounds", len(job.Rounds),
		)
		return
	}
	r.logger.Warn("job failed",
		"job_id", job.ID.String(),
		"name", job.Name,
		"reason", job.Reason,
	)
}
