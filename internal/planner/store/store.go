// internal/planner/store/store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"itinerary-workers/internal/common/logger"
	"itinerary-workers/internal/models"
)

var ErrNotFound = errors.New("plan record not found")

// PlanStore persists finished plan records. Implementations must honor ctx deadlines.
type PlanStore interface {
	Name() string
	Save(ctx context.Context, rec models.PlanRecord) error
}

type Recorder interface {
	ObserveStoreWrite(store string, err error)
}

// FanOut writes every record to all stores concurrently.
type FanOut struct {
	stores   []PlanStore
	timeout  time.Duration
	recorder Recorder
	logger   logger.Logger
}

func NewFanOut(timeout time.Duration, recorder Recorder, log logger.Logger, stores ...PlanStore) *FanOut {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &FanOut{stores: stores, timeout: timeout, recorder: recorder, logger: log}
}

func (f *FanOut) Name() string {
	return "fanout"
}

// Len reports how many stores are attached.
func (f *FanOut) Len() int {
	return len(f.stores)
}

// Save writes to every store. One store failing does not stop the others; the returned
// error joins every failure.
func (f *FanOut) Save(ctx context.Context, rec models.PlanRecord) error {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	errs := make([]error, len(f.stores))
	var g errgroup.Group
	for i, s := range f.stores {
		i, s := i, s
		g.Go(func() error {
			err := s.Save(ctx, rec)
			if f.recorder != nil {
				f.recorder.ObserveStoreWrite(s.Name(), err)
			}
			if err != nil {
				f.logger.Warn("Plan store write failed", map[string]interface{}{
					"store":  s.Name(),
					"planId": rec.ID,
					"error":  err.Error(),
				})
				errs[i] = fmt.Errorf("%s: %w", s.Name(), err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
