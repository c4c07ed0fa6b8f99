// harvester/controllers/runs.go
package controllers

import (
	"context"
	"errors"
	"sync"

	"harvester/harvester/services/pipeline"
	"harvester/harvester/sources/psql/models"
	"harvester/harvester/utils/logging"
	"harvester/harvester/utils/types"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrRunInProgress   = errors.New("a run is already in progress")
	ErrArchiveDisabled = errors.New("run archive is not configured")
)

type Runner interface {
	Run(ctx context.Context, rep pipeline.Reporter) types.Summary
}

type RunStore interface {
	ListRuns(ctx context.Context, limit int) ([]models.Run, error)
	GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error)
}

// RunsController triggers pipeline runs, one at a time.
type RunsController struct {
	runner Runner
	store  RunStore
	mu     sync.Mutex
}

// NewRunsController takes a nil store when archiving is off.
func NewRunsController(runner Runner, store RunStore) *RunsController {
	return &RunsController{runner: runner, store: store}
}

func (c *RunsController) Trigger(ctx context.Context) (*types.Summary, error) {
	return c.run(ctx, pipeline.LogReporter{})
}

func (c *RunsController) run(ctx context.Context, rep pipeline.Reporter) (*types.Summary, error) {
	if !c.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer c.mu.Unlock()

	summary := c.runner.Run(ctx, rep)
	return &summary, nil
}

func (c *RunsController) List(ctx context.Context, limit int) ([]models.Run, error) {
	if c.store == nil {
		return nil, ErrArchiveDisabled
	}
	return c.store.ListRuns(ctx, limit)
}

func (c *RunsController) Get(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	if c.store == nil {
		return nil, ErrArchiveDisabled
	}
	return c.store.GetRun(ctx, id)
}

type streamMessage struct {
	Type    string          `json:"type"`
	Event   *pipeline.Event `json:"event,omitempty"`
	Summary *types.Summary  `json:"summary,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Stream runs the pipeline and forwards each progress event to the socket,
// ending with the summary.
func (c *RunsController) Stream(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close(websocket.StatusInternalError, "internal error")
	// nothing is read from the client; this keeps control frames flowing
	ctx = conn.CloseRead(ctx)

	writeFailed := false
	forward := pipeline.ReporterFunc(func(e pipeline.Event) {
		if writeFailed {
			return
		}
		if err := wsjson.Write(ctx, conn, streamMessage{Type: "event", Event: &e}); err != nil {
			logging.ErrorLogger.Error("websocket write error", zap.Error(err))
			writeFailed = true
		}
	})

	summary, err := c.run(ctx, pipeline.Multi(pipeline.LogReporter{}, forward))
	if err != nil {
		wsjson.Write(ctx, conn, streamMessage{Type: "error", Error: err.Error()})
		conn.Close(websocket.StatusTryAgainLater, err.Error())
		return
	}
	if err := wsjson.Write(ctx, conn, streamMessage{Type: "summary", Summary: summary}); err != nil {
		logging.ErrorLogger.Error("websocket write error", zap.Error(err))
		return
	}
	conn.Close(websocket.StatusNormalClosure, "run finished")
}
