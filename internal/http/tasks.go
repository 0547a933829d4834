package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookreviews/internal/entities"
	"github.com/mrlokans/bookreviews/internal/tasks"
)

// SettingsReader reads persisted key/value settings.
type SettingsReader interface {
	GetValue(ctx context.Context, key string) (string, error)
}

// ReconcileRequest is the optional body of POST /api/reconcile.
type ReconcileRequest struct {
	// BookID limits the run to one book; 0 reconciles the whole catalog
	BookID uint `json:"book_id,omitempty" form:"book_id"`
}

// TasksController handles task queue and reconciliation endpoints.
type TasksController struct {
	client     *tasks.Client
	reconciler *tasks.Reconciler
	state      SettingsReader
}

// NewTasksController creates a new TasksController. client may be nil, in
// which case reconciliation runs inline through reconciler.
func NewTasksController(client *tasks.Client, reconciler *tasks.Reconciler, state SettingsReader) *TasksController {
	return &TasksController{client: client, reconciler: reconciler, state: state}
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	if tc.client == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "task queue is disabled"})
		return
	}

	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.client.Status(ctx, taskID)
	if err != nil {
		respondAppError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// Reconcile handles POST /api/reconcile
// Enqueues an aggregate reconciliation, or runs it inline without a queue.
func (tc *TasksController) Reconcile(c *gin.Context) {
	var req ReconcileRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBind(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	task := tasks.ReconcileAggregatesTask{BookID: req.BookID}

	if tc.client != nil {
		ids, err := tc.client.Enqueue(c.Request.Context(), task)
		if err != nil {
			respondAppError(c, err, "enqueue reconcile")
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"task_id": ids[0],
			"queue":   tasks.ReconcileQueueName,
			"message": "task enqueued",
		})
		return
	}

	if tc.reconciler == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "reconciliation is not configured"})
		return
	}

	result, err := tc.reconciler.Run(c.Request.Context(), req.BookID)
	if err != nil {
		respondAppError(c, err, "reconcile")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"checked":  result.Checked,
		"repaired": result.Repaired,
	})
}

// ReconcileStatus handles GET /api/reconcile/status
func (tc *TasksController) ReconcileStatus(c *gin.Context) {
	if tc.state == nil {
		c.JSON(http.StatusOK, gin.H{"status": "never_run"})
		return
	}

	ctx := c.Request.Context()
	values := make(map[string]string, 3)
	for _, key := range []string{
		entities.SettingKeyReconcileLastAt,
		entities.SettingKeyReconcileLastStatus,
		entities.SettingKeyReconcileLastMessage,
	} {
		v, err := tc.state.GetValue(ctx, key)
		if err != nil {
			respondAppError(c, err, "reconcile status")
			return
		}
		values[key] = v
	}

	status := values[entities.SettingKeyReconcileLastStatus]
	if status == "" {
		status = "never_run"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  status,
		"last_at": values[entities.SettingKeyReconcileLastAt],
		"message": values[entities.SettingKeyReconcileLastMessage],
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
