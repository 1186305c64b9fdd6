package tools

import (
	"runtime"
	"sort"
	"sync"

	"github.com/df07/go-surface-scatter/pkg/config"
	"github.com/df07/go-surface-scatter/pkg/core"
	"github.com/df07/go-surface-scatter/pkg/scatter"
)

// StrokeTask is one brush placement to sample
type StrokeTask struct {
	TaskID int // For deterministic ordering
	Ray    core.Ray
	Up     core.Vec3
	Seed   int64
}

// StrokeResult holds the samples computed for a stroke
type StrokeResult struct {
	TaskID  int
	Hit     bool
	Center  core.SurfaceHit
	Samples []scatter.BrushSample
}

// StrokePool samples many strokes in parallel. The probe must be safe for
// concurrent use; geometry.World is. Painting the results stays on the
// caller's goroutine since the scene is not.
type StrokePool struct {
	probe       scatter.Probe
	cfg         config.BrushConfig
	taskQueue   chan StrokeTask
	resultQueue chan StrokeResult
	numWorkers  int
	wg          sync.WaitGroup
}

// NewStrokePool creates a pool with room for queueSize pending tasks.
// numWorkers <= 0 uses one worker per CPU.
func NewStrokePool(probe scatter.Probe, cfg config.BrushConfig, numWorkers, queueSize int) *StrokePool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &StrokePool{
		probe:       probe,
		cfg:         cfg,
		taskQueue:   make(chan StrokeTask, queueSize),
		resultQueue: make(chan StrokeResult, queueSize),
		numWorkers:  numWorkers,
	}
}

// Start begins all workers
func (sp *StrokePool) Start() {
	for i := 0; i < sp.numWorkers; i++ {
		sp.wg.Add(1)
		go sp.run()
	}
}

// Stop waits for queued tasks to finish and closes the result queue
func (sp *StrokePool) Stop() {
	close(sp.taskQueue)
	sp.wg.Wait()
	close(sp.resultQueue)
}

// Submit queues a stroke
func (sp *StrokePool) Submit(task StrokeTask) {
	sp.taskQueue <- task
}

// Result retrieves a completed stroke
func (sp *StrokePool) Result() (StrokeResult, bool) {
	result, ok := <-sp.resultQueue
	return result, ok
}

// NumWorkers returns the number of workers in the pool
func (sp *StrokePool) NumWorkers() int {
	return sp.numWorkers
}

func (sp *StrokePool) run() {
	defer sp.wg.Done()

	for task := range sp.taskQueue {
		result := StrokeResult{TaskID: task.TaskID}

		hit, ok := sp.probe.Raycast(task.Ray, 0, core.AllLayers)
		if ok {
			// Each stroke gets its own brush so offsets only depend on the seed
			brush := scatter.NewBrush(sp.cfg.Radius, sp.cfg.SpawnCount, core.NewSeededSampler(task.Seed))
			brush.SetProbeConfig(sp.cfg.ProbeConfig())
			brush.SetOnlyHorizontal(sp.cfg.OnlyHorizontal)
			brush.SetHorizontalThreshold(sp.cfg.HorizontalThreshold)

			result.Hit = true
			result.Center = hit
			result.Samples = brush.Sample(hit, task.Up, sp.probe)
		}

		sp.resultQueue <- result
	}
}

// SampleStrokes runs tasks through a pool and returns the results ordered by TaskID
func SampleStrokes(probe scatter.Probe, cfg config.BrushConfig, tasks []StrokeTask, numWorkers int) []StrokeResult {
	pool := NewStrokePool(probe, cfg, numWorkers, len(tasks))
	pool.Start()
	for _, task := range tasks {
		pool.Submit(task)
	}
	pool.Stop()

	results := make([]StrokeResult, 0, len(tasks))
	for {
		result, ok := pool.Result()
		if !ok {
			break
		}
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].TaskID < results[j].TaskID })
	return results
}
