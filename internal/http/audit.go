package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookreviews/internal/audit"
	"github.com/mrlokans/bookreviews/internal/auth"
	dbaudit "github.com/mrlokans/bookreviews/internal/database/audit"
	"github.com/mrlokans/bookreviews/internal/entities"
)

const defaultAuditPageSize = 50

// AuditController exposes a user's own audit trail.
type AuditController struct {
	service *audit.Service
}

func NewAuditController(service *audit.Service) *AuditController {
	return &AuditController{service: service}
}

// ListEvents handles GET /api/me/audit-events
func (ac *AuditController) ListEvents(c *gin.Context) {
	limit, offset := parsePagination(c, defaultAuditPageSize)
	if limit > 200 {
		limit = 200
	}

	events, total, err := ac.service.GetEvents(c.Request.Context(), dbaudit.EventFilter{
		UserID:    auth.GetUserID(c),
		EventType: entities.AuditEventType(c.Query("type")),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		respondAppError(c, err, "audit events")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    events,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(events)) < total,
	})
}
