package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/Paul-Starodub/fast-library/internal/apperr"
	"github.com/Paul-Starodub/fast-library/internal/database/audit"
	"github.com/Paul-Starodub/fast-library/internal/entities"
	"github.com/Paul-Starodub/fast-library/internal/tasks"
)

// AuditReader lists recorded audit events.
type AuditReader interface {
	ListEvents(ctx context.Context, filter audit.Filter, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// TaskQueue enqueues the audit cleanup and reports task progress.
type TaskQueue interface {
	EnqueueAuditCleanup(ctx context.Context, retentionDays int) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

const taskStatusTimeout = 5 * time.Second

var errTasksDisabled = apperr.NotFound("Background tasks are disabled")

// AuditController serves the audit trail and its retention task to superusers.
type AuditController struct {
	events        AuditReader
	queue         TaskQueue
	retentionDays int
}

func NewAuditController(events AuditReader, queue TaskQueue, retentionDays int) *AuditController {
	return &AuditController{events: events, queue: queue, retentionDays: retentionDays}
}

// ListEvents handles GET /audit/events/?limit=&offset=&actor_id=&event_type=
func (ac *AuditController) ListEvents(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	filter := audit.Filter{EventType: entities.AuditEventType(c.Query("event_type"))}
	if raw := c.Query("actor_id"); raw != "" {
		actorID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondAppError(c, apperr.ValidationWithDetails("validation failed", map[string]string{
				"actor_id": "must be a positive integer",
			}))
			return
		}
		filter.ActorID = uint(actorID)
	}

	events, total, err := ac.events.ListEvents(c.Request.Context(), filter, limit, offset)
	if err != nil {
		respondAppError(c, err)
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	c.JSON(http.StatusOK, AuditEventsResponse{
		Events: events,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// Cleanup handles POST /audit/cleanup/?retention_days=
// The cleanup runs in the background; the response carries the task ID.
func (ac *AuditController) Cleanup(c *gin.Context) {
	if ac.queue == nil {
		respondAppError(c, errTasksDisabled)
		return
	}

	days := ac.retentionDays
	if raw := c.Query("retention_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondAppError(c, apperr.ValidationWithDetails("validation failed", map[string]string{
				"retention_days": "must be a positive integer",
			}))
			return
		}
		days = parsed
	}

	taskID, err := ac.queue.EnqueueAuditCleanup(c.Request.Context(), days)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, TaskResponse{
		ID:     taskID,
		Queue:  tasks.CleanupAuditEventsQueue,
		Status: tasks.StatusString(backlite.TaskStatusPending),
	})
}

// TaskStatus handles GET /tasks/:id/
func (ac *AuditController) TaskStatus(c *gin.Context) {
	if ac.queue == nil {
		respondAppError(c, errTasksDisabled)
		return
	}

	taskID := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request.Context(), taskStatusTimeout)
	defer cancel()

	status, err := ac.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondAppError(c, apperr.NotFound("Task not found"))
		return
	}

	c.JSON(http.StatusOK, TaskResponse{ID: taskID, Status: tasks.StatusString(status)})
}
