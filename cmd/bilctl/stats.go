package main

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oisee/bil/pkg/il"
)

// functionStats tallies what a single worker found while walking one
// function's control-flow graph.
type functionStats struct {
	address      uint64
	blocks       int
	instructions int
	expressions  int
}

// statsPool walks every function in a Program in parallel, read-only. No
// worker ever holds a mutable handle to a Program, Function, or
// ControlFlowGraph — each only calls accessor methods — so sharing a single
// *il.Program across workers needs no locking of its own; the counters
// below are the only mutable state, and they are atomic.
type statsPool struct {
	numWorkers int
	checked    atomic.Int64
	completed  atomic.Int64
}

func newStatsPool(numWorkers int) *statsPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &statsPool{numWorkers: numWorkers}
}

// run distributes prog's functions across workers and returns one
// functionStats per function, in no particular order.
func (sp *statsPool) run(prog *il.Program, verbose bool) []functionStats {
	functions := prog.Functions()
	total := int64(len(functions))

	ch := make(chan *il.Function, len(functions))
	for _, fn := range functions {
		ch <- fn
	}
	close(ch)

	results := make(chan functionStats, len(functions))

	done := make(chan struct{})
	start := time.Now()
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				comp := sp.completed.Load()
				fmt.Fprintf(streamErr, "  [%s] %d/%d functions | %d expressions walked\n",
					time.Since(start).Round(time.Second), comp, total, sp.checked.Load())
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < sp.numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for fn := range ch {
				results <- sp.walkFunction(fn)
				sp.completed.Add(1)
			}
		}()
	}
	wg.Wait()
	close(done)
	close(results)

	out := make([]functionStats, 0, len(functions))
	for fs := range results {
		out = append(out, fs)
		if verbose {
			fmt.Fprintf(streamErr, "  sub_%x: %d blocks, %d instructions, %d expressions\n",
				fs.address, fs.blocks, fs.instructions, fs.expressions)
		}
	}
	return out
}

func (sp *statsPool) walkFunction(fn *il.Function) functionStats {
	cfg := fn.ControlFlowGraph()
	fs := functionStats{address: fn.Address()}
	for _, b := range cfg.Blocks() {
		fs.blocks++
		for _, instr := range b.Instructions() {
			fs.instructions++
			// Assign, Load and Raise carry one expression; Store (index,
			// value) and Brc (target, condition) carry two.
			op := instr.Operation()
			n := 1
			if op.IsStore() || op.IsBrc() {
				n = 2
			}
			fs.expressions += n
			sp.checked.Add(int64(n))
		}
	}
	return fs
}
