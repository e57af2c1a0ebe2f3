package temporal

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"go.temporal.io/api/enums/v1"
	taskqueuepb "go.temporal.io/api/taskqueue/v1"
	workflowservicepb "go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/log"

	"github.com/openrange/rangex/pkg/utils"
)

type Client struct {
	TClient   client.Client
	Namespace string

	// Task Queues
	RecomputeQueue string // recompute - per-competition recompute workflows
	OpsQueue       string // recompute:ops - recompute-all fan-out and scheduled enqueues

	// Workflow ID formats
	RecomputeWorkflowID    string
	RecomputeAllWorkflowID string
}

type Health struct {
	ConnectionOK   bool                      `json:"connection_ok"`
	RecomputeQueue []*taskqueuepb.PollerInfo `json:"recompute_queue"`
	OpsQueue       []*taskqueuepb.PollerInfo `json:"ops_queue"`
}

func NewClient(ctx context.Context, logger *zap.Logger) (*Client, error) {
	host := utils.Env("TEMPORAL_HOSTPORT", "localhost:7233")
	ns := utils.Env("TEMPORAL_NAMESPACE", "rangex")
	loggerWrapper := NewZapAdapter(logger)

	logger.Info("Connecting to Temporal", zap.String("host", host), zap.String("namespace", ns))
	tClient, err := Dial(ctx, host, ns, loggerWrapper)
	if err != nil {
		return nil, err
	}

	if _, err = tClient.CheckHealth(ctx, nil); err != nil {
		return nil, err
	}

	return &Client{
		TClient:   tClient,
		Namespace: ns,
		// for now these are just hardcoded, could be configurable if we need it
		RecomputeQueue: "recompute",
		OpsQueue:       "recompute:ops",
		// workflow IDs
		RecomputeWorkflowID:    "recompute:%d",
		RecomputeAllWorkflowID: "recompute:all",
	}, nil
}

// Dial connects to Temporal using the provided hostPort and namespace.
func Dial(ctx context.Context, hostPort, namespace string, logger log.Logger) (client.Client, error) {
	return client.DialContext(
		ctx,
		client.Options{
			HostPort:  hostPort,
			Namespace: namespace,
			Logger:    logger,
		},
	)
}

// GetRecomputeQueue returns the per-competition recompute queue.
func (c *Client) GetRecomputeQueue() string { return c.RecomputeQueue }

// GetOpsQueue returns the operations queue.
func (c *Client) GetOpsQueue() string { return c.OpsQueue }

// GetRecomputeWorkflowID returns the deterministic workflow ID for one
// competition's recompute. Deterministic IDs plus conflict policies keep
// duplicate scheduling idempotent.
func (c *Client) GetRecomputeWorkflowID(competitionID uint64) string {
	return fmt.Sprintf(c.RecomputeWorkflowID, competitionID)
}

// GetRecomputeAllWorkflowID returns the workflow ID for the full-league
// recompute sweep.
func (c *Client) GetRecomputeAllWorkflowID() string {
	return c.RecomputeAllWorkflowID
}

// Health returns the health of the Temporal client.
func (c *Client) Health(ctx context.Context) (Health, error) {
	h := Health{ConnectionOK: true}
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	svc := c.TClient.WorkflowService()
	if svc != nil {
		if rep, err := svc.DescribeTaskQueue(ctx, &workflowservicepb.DescribeTaskQueueRequest{
			Namespace:     c.Namespace,
			TaskQueue:     &taskqueuepb.TaskQueue{Name: c.RecomputeQueue},
			TaskQueueType: enums.TASK_QUEUE_TYPE_WORKFLOW,
		}); err == nil {
			h.RecomputeQueue = rep.GetPollers()
		}
		if rep, err := svc.DescribeTaskQueue(ctx, &workflowservicepb.DescribeTaskQueueRequest{
			Namespace:     c.Namespace,
			TaskQueue:     &taskqueuepb.TaskQueue{Name: c.OpsQueue},
			TaskQueueType: enums.TASK_QUEUE_TYPE_WORKFLOW,
		}); err == nil {
			h.OpsQueue = rep.GetPollers()
		}
	}
	return h, nil
}
