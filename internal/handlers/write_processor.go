package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/atharvakonge/portfolio-pilot/internal/db"
	"github.com/atharvakonge/portfolio-pilot/internal/models"
)

// ErrProcessorStopped is returned for writes submitted after Stop
var ErrProcessorStopped = errors.New("write processor stopped")

// WriteOp is the kind of change a write request makes
type WriteOp int

const (
	OpCreate WriteOp = iota
	OpUpdate
	OpDelete
)

func (op WriteOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	}
	return fmt.Sprintf("WriteOp(%d)", int(op))
}

// WriteRequest is one validated change to an owner's portfolio
type WriteRequest struct {
	Op      WriteOp
	OwnerID string
	ID      string                 // update, delete
	Fields  models.NewInvestment   // create
	Patch   models.InvestmentPatch // update
}

// WriteResult represents result of a write operation
type WriteResult struct {
	Investment *models.Investment // nil for deletes
	Err        error
}

// Notifier is told whenever an owner's portfolio changed
type Notifier interface {
	PortfolioChanged(ownerID string)
}

type writeJob struct {
	ctx      context.Context
	req      WriteRequest
	resultCh chan WriteResult // Channel to send result back
}

// WriteProcessor runs portfolio writes on a worker pool. Writes of the same
// owner never run concurrently.
type WriteProcessor struct {
	workers      int
	queue        chan writeJob
	stopCh       chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
	portfolioMgr *models.PortfolioManager
	store        db.Store
	notifier     Notifier
	log          zerolog.Logger
}

// NewWriteProcessor creates a new write processor with worker pool.
// notifier may be nil.
func NewWriteProcessor(workers int, store db.Store, notifier Notifier, log zerolog.Logger) *WriteProcessor {
	if workers < 1 {
		workers = 1
	}
	return &WriteProcessor{
		workers:      workers,
		queue:        make(chan writeJob, 100), // Buffer of 100 writes
		stopCh:       make(chan struct{}),
		portfolioMgr: models.NewPortfolioManager(),
		store:        store,
		notifier:     notifier,
		log:          log,
	}
}

// Start starts the worker pool
func (wp *WriteProcessor) Start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
	wp.log.Info().Int("workers", wp.workers).Msg("Started write workers")
}

// Stop gracefully stops all workers
func (wp *WriteProcessor) Stop() {
	wp.stopOnce.Do(func() { close(wp.stopCh) })
	wp.wg.Wait()
	wp.log.Info().Msg("Write processor stopped")
}

// worker processes writes from the queue
func (wp *WriteProcessor) worker(id int) {
	defer wp.wg.Done()

	log := wp.log.With().Int("worker", id).Logger()
	log.Debug().Msg("Worker started")

	for {
		select {
		case <-wp.stopCh:
			log.Debug().Msg("Worker stopping")
			return

		case job := <-wp.queue:
			log.Debug().
				Stringer("op", job.req.Op).
				Str("owner", job.req.OwnerID).
				Str("id", job.req.ID).
				Msg("Processing write")

			job.resultCh <- wp.process(job.ctx, job.req)
		}
	}
}

// process executes a single write with per-owner locking
func (wp *WriteProcessor) process(ctx context.Context, req WriteRequest) WriteResult {
	if err := ctx.Err(); err != nil {
		return WriteResult{Err: err}
	}

	// Lock portfolio for THIS OWNER ONLY
	wp.portfolioMgr.LockOwner(req.OwnerID)
	defer wp.portfolioMgr.UnlockOwner(req.OwnerID)

	var res WriteResult
	switch req.Op {
	case OpCreate:
		res.Investment, res.Err = wp.store.Create(ctx, req.OwnerID, req.Fields)
	case OpUpdate:
		res.Investment, res.Err = wp.store.Update(ctx, req.OwnerID, req.ID, req.Patch)
	case OpDelete:
		res.Err = wp.store.Delete(ctx, req.OwnerID, req.ID)
	default:
		res.Err = fmt.Errorf("unknown write op %v", req.Op)
	}

	if res.Err != nil {
		if !db.IsNotFound(res.Err) {
			wp.log.Error().Err(res.Err).Stringer("op", req.Op).Str("owner", req.OwnerID).Msg("Write failed")
		}
		return res
	}

	if wp.notifier != nil {
		wp.notifier.PortfolioChanged(req.OwnerID)
	}
	return res
}

// Submit queues a write and waits for its result
func (wp *WriteProcessor) Submit(ctx context.Context, req WriteRequest) WriteResult {
	job := writeJob{
		ctx:      ctx,
		req:      req,
		resultCh: make(chan WriteResult, 1),
	}

	select {
	case wp.queue <- job:
	case <-wp.stopCh:
		return WriteResult{Err: ErrProcessorStopped}
	case <-ctx.Done():
		return WriteResult{Err: ctx.Err()}
	}

	select {
	case res := <-job.resultCh:
		return res
	case <-wp.stopCh:
		// a worker may still have finished the job on its way out
		select {
		case res := <-job.resultCh:
			return res
		default:
			return WriteResult{Err: ErrProcessorStopped}
		}
	case <-ctx.Done():
		return WriteResult{Err: ctx.Err()}
	}
}
