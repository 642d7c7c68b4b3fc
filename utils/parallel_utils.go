package utils

import (
	"fmt"
	"sync"
)

// WorkerGroup is a fixed set of NP cooperating threads, each owning a rank.
// Collective calls must be entered by every rank; rank 0 acts as the root of
// each reduction.
type WorkerGroup struct {
	NP      int
	contrib chan float64
	results []chan float64
}

func NewWorkerGroup(NP int) *WorkerGroup {
	if NP < 1 {
		panic(fmt.Errorf("worker group size must be >= 1, have %d", NP))
	}
	wg := &WorkerGroup{
		NP:      NP,
		contrib: make(chan float64, NP),
		results: make([]chan float64, NP),
	}
	for n := 0; n < NP; n++ {
		wg.results[n] = make(chan float64, 1)
	}
	return wg
}

// AllReduceSum performs a collective sum across all ranks. Every rank must
// call it; every rank receives the global sum.
func (wg *WorkerGroup) AllReduceSum(myThread int, val float64) float64 {
	if myThread < 0 || myThread > wg.NP-1 {
		panic(fmt.Sprintf("thread %d out of bounds for group of %d", myThread, wg.NP))
	}
	wg.contrib <- val
	if myThread == 0 {
		var sum float64
		for n := 0; n < wg.NP; n++ {
			sum += <-wg.contrib
		}
		for n := 0; n < wg.NP; n++ {
			wg.results[n] <- sum
		}
	}
	return <-wg.results[myThread]
}

// Barrier blocks until every rank has arrived.
func (wg *WorkerGroup) Barrier(myThread int) {
	wg.AllReduceSum(myThread, 0)
}

// Run spawns fn on NP ranks and waits for all of them to return.
func (wg *WorkerGroup) Run(fn func(myThread int)) {
	var swg sync.WaitGroup
	swg.Add(wg.NP)
	for n := 0; n < wg.NP; n++ {
		go func(myThread int) {
			defer swg.Done()
			fn(myThread)
		}(n)
	}
	swg.Wait()
}
