package activity

import (
	"runtime"
	"sync"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	leaguestore "github.com/openrange/rangex/pkg/db/league"
	"github.com/openrange/rangex/pkg/redis"
	"github.com/openrange/rangex/pkg/scoring"
	temporalclient "github.com/openrange/rangex/pkg/temporal"
)

type Context struct {
	Logger *zap.Logger
	// League database (inputs and derived tables)
	Store leaguestore.Store
	// Scoring configuration, normalized at startup
	Options scoring.Options
	// For scheduling workflows
	TemporalClient *temporalclient.Client
	// For publishing real-time events; nil when Redis is disabled
	RedisClient *redis.Client
	// ComputeMaxParallelism allows overriding the default compute pool size.
	ComputeMaxParallelism int
	computePoolOnce       sync.Once
	computePool           pond.Pool
	computePoolSize       int
}

// computeBatchPool returns a shared worker pool for per-key fan-out inside
// activities: entries in stage and match aggregation, squads in composition,
// competitions in recompute-all scheduling.
func (c *Context) computeBatchPool(batchSize int) pond.Pool {
	c.computePoolOnce.Do(func() {
		maxWorkers := ComputeParallelism(c.ComputeMaxParallelism)
		c.computePoolSize = maxWorkers
		queueSize := ComputeQueueSize(maxWorkers, batchSize)
		c.computePool = pond.NewPool(
			maxWorkers,
			pond.WithQueueSize(queueSize),
		)
	})

	return c.computePool
}

// ComputePoolSize exposes the configured pool size for logging purposes.
func (c *Context) ComputePoolSize() int {
	if c.computePoolSize != 0 {
		return c.computePoolSize
	}
	return ComputeParallelism(c.ComputeMaxParallelism)
}

// ComputeParallelism calculates the worker count for the compute pool. The
// work is CPU-bound scoring, so the pool tracks the CPU count.
func ComputeParallelism(override int) int {
	if override > 0 {
		if override > 256 {
			return 256
		}
		return override
	}

	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}

	parallelism := n * 2
	if parallelism < 2 {
		parallelism = 2
	}
	if parallelism > 256 {
		parallelism = 256
	}

	return parallelism
}

// ComputeQueueSize calculates the queue size for the compute pool so large
// competitions can enqueue without blocking submissions.
func ComputeQueueSize(parallelism, batchSize int) int {
	if parallelism < 1 {
		parallelism = 1
	}
	if batchSize < 1 {
		batchSize = 1
	}

	queue := parallelism * batchSize
	if queue < 1024 {
		queue = 1024
	}
	if queue > 131072 {
		queue = 131072
	}
	return queue
}
