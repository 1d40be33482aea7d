package game

import (
	"runtime"
	"sync"
	"time"

	"github.com/pthm-cable/bloomfield/systems"
)

// workChunk represents a range of steady particles for a worker to integrate.
type workChunk struct {
	start, end int
	fc         *systems.FrameConstants
}

// parallelState holds the worker pool for the steady pass.
type parallelState struct {
	numWorkers int

	// Worker pool channels
	workChan chan workChunk     // sends work to workers
	doneChan chan time.Duration // workers report each chunk's run time
	stopChan chan struct{}      // signals workers to exit
	wg       sync.WaitGroup     // tracks active workers
	running  bool               // true if workers are running
}

func newParallelState(workers int) *parallelState {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &parallelState{numWorkers: workers}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(e *Engine) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan time.Duration, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(e)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(e *Engine) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			start := time.Now()
			e.integrator.Run(chunk.fc, chunk.start, chunk.end, e.buf, e.mask)
			p.doneChan <- time.Since(start)
		}
	}
}

// integrateSteady runs the steady pass inline for small clouds and across
// the pool otherwise. Each particle is written by exactly one chunk. It
// returns the chunk count and the longest chunk's run time.
func (e *Engine) integrateSteady(fc *systems.FrameConstants) (int, time.Duration) {
	n := e.integrator.Len()
	if n == 0 {
		return 0, 0
	}
	if n < e.cfg.Parallel.Threshold || e.parallel.numWorkers == 1 {
		start := time.Now()
		e.integrator.Run(fc, 0, n, e.buf, e.mask)
		return 1, time.Since(start)
	}
	return e.computeParallel(n, fc)
}

// computeParallel dispatches work to the worker pool.
func (e *Engine) computeParallel(n int, fc *systems.FrameConstants) (int, time.Duration) {
	// Ensure workers are running
	if !e.parallel.running {
		e.parallel.startWorkers(e)
	}

	numWorkers := e.parallel.numWorkers
	chunkSize := (n + numWorkers - 1) / numWorkers

	// Dispatch chunks to workers
	chunksDispatched := 0
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		e.parallel.workChan <- workChunk{start: start, end: end, fc: fc}
		chunksDispatched++
	}

	// Wait for all chunks to complete
	var slowest time.Duration
	for i := 0; i < chunksDispatched; i++ {
		slowest = max(slowest, <-e.parallel.doneChan)
	}
	return chunksDispatched, slowest
}
