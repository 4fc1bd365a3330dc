package evalqueue

import (
	"context"
	"sync"
	"time"

	"github.com/5w1tchy/passmeter/internal/store/evaluations"
	"github.com/rs/zerolog"
)

// Sink persists a batch of events.
type Sink interface {
	InsertBatch(ctx context.Context, batch []evaluations.Event) error
}

const (
	batchSize  = 100
	flushEvery = 250 * time.Millisecond
	writeTO    = 500 * time.Millisecond
)

// Queue buffers evaluation events and writes them in batches from background workers.
// A nil *Queue accepts and drops everything.
type Queue struct {
	sink    Sink
	log     zerolog.Logger
	ch      chan evaluations.Event
	done    chan struct{}
	wg      sync.WaitGroup
	stop    sync.Once
	dropped int64
	mu      sync.Mutex
}

// Start spins up workers reading from a channel of size buf.
// Suggested: buf=10000, workers=2
func Start(sink Sink, buf, workers int, log zerolog.Logger) *Queue {
	if buf < 1 {
		buf = 1
	}
	if workers < 1 {
		workers = 1
	}
	q := &Queue{
		sink: sink,
		log:  log.With().Str("component", "evalqueue").Logger(),
		ch:   make(chan evaluations.Event, buf),
		done: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Enqueue queues ev without blocking. If the buffer is full the event is
// dropped (acceptable for statistics).
func (q *Queue) Enqueue(ev evaluations.Event) {
	if q == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	select {
	case <-q.done:
		return
	default:
	}
	select {
	case q.ch <- ev:
	default:
		q.mu.Lock()
		q.dropped++
		q.mu.Unlock()
	}
}

// Dropped is the number of events lost to a full buffer.
func (q *Queue) Dropped() int64 {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Shutdown signals workers to stop, flushes remaining events, and waits.
func (q *Queue) Shutdown() {
	if q == nil {
		return
	}
	q.stop.Do(func() { close(q.done) })
	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	tk := time.NewTicker(flushEvery)
	defer tk.Stop()

	batch := make([]evaluations.Event, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), writeTO)
		if err := q.sink.InsertBatch(ctx, batch); err != nil {
			// best-effort; statistics may lose a batch
			q.log.Warn().Err(err).Int("events", len(batch)).Msg("insert batch failed")
		}
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case <-q.done:
			// drain quickly then flush
			for {
				select {
				case ev := <-q.ch:
					batch = append(batch, ev)
					if len(batch) >= batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		case ev := <-q.ch:
			batch = append(batch, ev)
			if len(batch) >= batchSize {
				flush()
			}
		case <-tk.C:
			flush()
		}
	}
}
