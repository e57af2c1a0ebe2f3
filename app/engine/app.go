package engine

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	sdktemporal "go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	temporalworkflow "go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/openrange/rangex/app/engine/activity"
	"github.com/openrange/rangex/app/engine/types"
	"github.com/openrange/rangex/app/engine/workflow"
	leaguestore "github.com/openrange/rangex/pkg/db/league"
	"github.com/openrange/rangex/pkg/logging"
	"github.com/openrange/rangex/pkg/redis"
	"github.com/openrange/rangex/pkg/scoring"
	"github.com/openrange/rangex/pkg/temporal"
	engineworkflow "github.com/openrange/rangex/pkg/temporal/engine"
	"github.com/openrange/rangex/pkg/utils"
)

type App struct {
	Worker         worker.Worker
	OpsWorker      worker.Worker
	TemporalClient *temporal.Client
	RedisClient    *redis.Client
	Store          leaguestore.Store

	// Cron enqueues the full-league sweep on CronSpec ticks. Nil when the
	// schedule is disabled.
	Cron     *cron.Cron
	CronSpec string

	Logger *zap.Logger
}

// Start starts the workers and the sweep schedule and blocks until the
// context is canceled.
func (a *App) Start(ctx context.Context) {
	if err := a.Worker.Start(); err != nil {
		a.Logger.Fatal("Unable to start recompute worker", zap.Error(err))
	}
	if err := a.OpsWorker.Start(); err != nil {
		a.Logger.Fatal("Unable to start operations worker", zap.Error(err))
	}
	if a.Cron != nil {
		a.Cron.Start()
		a.Logger.Info("Sweep schedule started", zap.String("cron_spec", a.CronSpec))
	}
	<-ctx.Done()
	a.Stop()
}

// Stop stops the schedule and the workers.
func (a *App) Stop() {
	if a.Cron != nil {
		<-a.Cron.Stop().Done()
	}
	a.Worker.Stop()
	a.OpsWorker.Stop()
	if a.RedisClient != nil {
		_ = a.RedisClient.Close()
	}
	_ = a.Store.Close()
	time.Sleep(200 * time.Millisecond)
	a.Logger.Info("Goodbye!")
}

// Initialize initializes the application.
func Initialize(ctx context.Context) *App {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr
		panic(err)
	}

	store, err := leaguestore.New(ctx, logger, utils.Env("LEAGUE_DB", leaguestore.DefaultDBName))
	if err != nil {
		logger.Fatal("Unable to initialize league database", zap.Error(err))
	}

	temporalClient, err := temporal.NewClient(ctx, logger)
	if err != nil {
		logger.Fatal("Unable to establish temporal connection", zap.Error(err))
	}

	// Redis is optional, runs without the completion events when unset.
	var redisClient *redis.Client
	if utils.Env("REDIS_HOST", "") != "" {
		redisClient, err = redis.NewClient(ctx, logger)
		if err != nil {
			logger.Fatal("Unable to establish redis connection", zap.Error(err))
		}
	} else {
		logger.Info("REDIS_HOST not set, completion events disabled")
	}

	activityContext := &activity.Context{
		Logger:         logger,
		Store:          store,
		Options:        scoring.FromEnv().Normalize(),
		TemporalClient: temporalClient,
		RedisClient:    redisClient,
	}
	workflowContext := workflow.Context{
		TemporalClient:  temporalClient,
		ActivityContext: activityContext,
	}

	// Recompute worker runs the per-competition pipeline. The activities are
	// themselves parallel internally, so a modest execution size is plenty.
	wkr := worker.New(
		temporalClient.TClient,
		temporalClient.GetRecomputeQueue(),
		worker.Options{
			MaxConcurrentWorkflowTaskPollers:       10,
			MaxConcurrentActivityTaskPollers:       10,
			MaxConcurrentWorkflowTaskExecutionSize: 200,
			MaxConcurrentActivityExecutionSize:     200,
			WorkerStopTimeout:                      1 * time.Minute,
		},
	)

	wkr.RegisterWorkflowWithOptions(
		workflowContext.RecomputeCompetitionWorkflow,
		temporalworkflow.RegisterOptions{
			Name: engineworkflow.RecomputeCompetitionWorkflowName,
		},
	)
	wkr.RegisterActivity(activityContext.PrepareRecompute)
	wkr.RegisterActivity(activityContext.ComputeStages)
	wkr.RegisterActivity(activityContext.ComputeMatches)
	wkr.RegisterActivity(activityContext.ComposeSquads)
	wkr.RegisterActivity(activityContext.ComputeRankings)
	wkr.RegisterActivity(activityContext.RecordRun)

	opsWorker := worker.New(
		temporalClient.TClient,
		temporalClient.GetOpsQueue(),
		worker.Options{
			MaxConcurrentWorkflowTaskPollers: 5,
			MaxConcurrentActivityTaskPollers: 5,
			WorkerStopTimeout:                1 * time.Minute,
		},
	)

	opsWorker.RegisterWorkflowWithOptions(
		workflowContext.RecomputeAllWorkflow,
		temporalworkflow.RegisterOptions{Name: engineworkflow.RecomputeAllWorkflowName},
	)
	opsWorker.RegisterActivity(activityContext.ListCompetitions)
	opsWorker.RegisterActivity(activityContext.ScheduleRecomputes)

	app := &App{
		Worker:         wkr,
		OpsWorker:      opsWorker,
		TemporalClient: temporalClient,
		RedisClient:    redisClient,
		Store:          store,
		CronSpec:       utils.Env("CRON_SPEC", ""),
		Logger:         logger,
	}

	if app.CronSpec != "" {
		if err := app.SetupScheduler(ctx, cron.DefaultLogger, app.CronSpec); err != nil {
			logger.Fatal("Unable to set up sweep schedule", zap.Error(err))
		}
	} else {
		logger.Info("CRON_SPEC not set, scheduled sweeps disabled")
	}

	return app
}

// SetupScheduler registers the full-league sweep on the cron spec. Each tick
// enqueues RecomputeAllWorkflow; the deterministic workflow ID collapses
// overlapping ticks into one running sweep.
func (a *App) SetupScheduler(ctx context.Context, logger cron.Logger, cronSpec string) error {
	// Seconds field, optional
	a.Cron = cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(logger)))

	_, err := a.Cron.AddFunc(cronSpec, func() {
		// keep each enqueue bounded
		rctx, cancel := context.WithTimeout(ctx, 25*time.Second)
		defer cancel()
		if err := a.EnqueueSweep(rctx, false); err != nil {
			logger.Info("sweep enqueue error", "error", err)
		}
	})
	if err != nil {
		return err
	}

	return nil
}

// EnqueueSweep starts the full-league recompute sweep on the operations
// queue.
func (a *App) EnqueueSweep(ctx context.Context, rebuild bool) error {
	options := client.StartWorkflowOptions{
		ID:                       a.TemporalClient.GetRecomputeAllWorkflowID(),
		TaskQueue:                a.TemporalClient.GetOpsQueue(),
		WorkflowIDConflictPolicy: enums.WORKFLOW_ID_CONFLICT_POLICY_USE_EXISTING,
		WorkflowIDReusePolicy:    enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY,
		RetryPolicy: &sdktemporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 1.5,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    3,
		},
	}

	_, err := a.TemporalClient.TClient.ExecuteWorkflow(ctx, options,
		engineworkflow.RecomputeAllWorkflowName, types.RecomputeAllInput{Rebuild: rebuild})
	return err
}
