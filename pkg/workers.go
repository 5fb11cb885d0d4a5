package music

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type calibrationJob struct {
	Index int
	Pair  ChannelPair
}

type calibrationResult struct {
	Index        int
	Calibrations []ChannelCalibration
	Err          error
}

func (n *Normalizer) calibrateParallel(ctx context.Context, table *EventTable) []calibrationResult {
	jobs := make(chan calibrationJob, n.workers)
	results := make(chan calibrationResult, len(n.topology.Pairs))

	var wg sync.WaitGroup
	for w := 1; w <= n.workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			calibrationWorker(id, n, table, jobs, results)
		}(w)
	}
	go sendPairsToWorkers(ctx, n.topology.Pairs, jobs)
	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]calibrationResult, 0, len(n.topology.Pairs))
	for result := range results {
		collected = append(collected, result)
	}
	return collected
}

func calibrationWorker(id int, n *Normalizer, table *EventTable, jobs <-chan calibrationJob, results chan<- calibrationResult) {
	for job := range jobs {
		if configuration.Verbosity > 2 {
			logger.Info(fmt.Sprintf("Worker %d calibrating %s", id, job.Pair.ID), "workers")
		}
		results <- n.runJob(id, table, job)
	}
}

func sendPairsToWorkers(ctx context.Context, pairs []ChannelPair, jobs chan<- calibrationJob) {
	defer close(jobs)
	for i, pair := range pairs {
		select {
		case jobs <- calibrationJob{Index: i, Pair: pair}:
		case <-ctx.Done():
			return
		}
	}
}

func (n *Normalizer) runJob(id int, table *EventTable, job calibrationJob) (result calibrationResult) {
	result.Index = job.Index
	defer func() {
		if r := recover(); r != nil {
			result.Calibrations = nil
			result.Err = fmt.Errorf("worker %d recovered from panic calibrating %s: %v", id, job.Pair.ID, r)
			logger.Error(result.Err.Error())
		}
	}()
	result.Calibrations, result.Err = n.calibratePair(table, job.Pair)
	return result
}

func sortedResults(results []calibrationResult) []calibrationResult {
	sorted := make([]calibrationResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Index < sorted[j].Index
	})
	return sorted
}
