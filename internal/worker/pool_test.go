package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type funcJob struct {
	id string
	fn func(ctx context.Context) error
}

func (j funcJob) ID() string                        { return j.id }
func (j funcJob) Execute(ctx context.Context) error { return j.fn(ctx) }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func collect(d *Dispatcher) <-chan []Result {
	out := make(chan []Result, 1)
	go func() {
		var results []Result
		for r := range d.Results {
			results = append(results, r)
		}
		out <- results
	}()
	return out
}

func TestDispatcherRunsEveryJob(t *testing.T) {
	d := NewDispatcher(3, 10, quietLogger())
	d.Run(context.Background())
	done := collect(d)

	var executed atomic.Int32
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("job-%d", i)
		err := d.SubmitJob(funcJob{id: id, fn: func(context.Context) error {
			executed.Add(1)
			if id == "job-7" {
				return errors.New("boom")
			}
			return nil
		}})
		if err != nil {
			t.Fatalf("SubmitJob(%s) error = %v", id, err)
		}
	}
	d.Stop()

	results := <-done
	if executed.Load() != 10 || len(results) != 10 {
		t.Fatalf("executed %d jobs, %d results; want 10", executed.Load(), len(results))
	}

	sort.Slice(results, func(i, j int) bool { return results[i].JobID < results[j].JobID })
	for _, r := range results {
		if (r.Err != nil) != (r.JobID == "job-7") {
			t.Errorf("result %s err = %v", r.JobID, r.Err)
		}
	}
}

func TestDispatcherLimitsConcurrency(t *testing.T) {
	const workers = 2
	d := NewDispatcher(workers, 8, quietLogger())
	d.Run(context.Background())
	done := collect(d)

	var running, peak atomic.Int32
	for i := 0; i < 8; i++ {
		if err := d.SubmitJob(funcJob{id: fmt.Sprint(i), fn: func(context.Context) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return nil
		}}); err != nil {
			t.Fatal(err)
		}
	}
	d.Stop()
	<-done

	if peak.Load() > workers {
		t.Errorf("peak concurrency = %d, want <= %d", peak.Load(), workers)
	}
}

func TestSubmitJobQueueFull(t *testing.T) {
	d := NewDispatcher(1, 1, quietLogger())
	noop := func(context.Context) error { return nil }

	// Not running yet, so the queue cannot drain.
	if err := d.SubmitJob(funcJob{id: "a", fn: noop}); err != nil {
		t.Fatalf("first SubmitJob error = %v", err)
	}
	if err := d.SubmitJob(funcJob{id: "b", fn: noop}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("second SubmitJob error = %v, want ErrQueueFull", err)
	}

	d.Run(context.Background())
	done := collect(d)
	d.Stop()

	if results := <-done; len(results) != 1 || results[0].JobID != "a" {
		t.Errorf("results = %+v", results)
	}
	if err := d.SubmitJob(funcJob{id: "c", fn: noop}); !errors.Is(err, ErrStopped) {
		t.Errorf("SubmitJob after Stop error = %v, want ErrStopped", err)
	}
	d.Stop()
}

func TestJobsReceiveContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDispatcher(1, 1, quietLogger())
	d.Run(ctx)
	done := collect(d)

	if err := d.SubmitJob(funcJob{id: "ctx", fn: func(ctx context.Context) error { return ctx.Err() }}); err != nil {
		t.Fatal(err)
	}
	d.Stop()

	results := <-done
	if len(results) != 1 || !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("results = %+v", results)
	}
}
