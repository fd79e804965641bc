package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/chong-myung/collabcut-sub001/internal/service"
)

// PresenceHandler serves read-only snapshots of live cursors and presence.
type PresenceHandler struct {
	presenceService *service.PresenceService
}

// NewPresenceHandler creates a PresenceHandler instance.
func NewPresenceHandler(presenceService *service.PresenceService) *PresenceHandler {
	if presenceService == nil {
		panic("PresenceService cannot be nil for PresenceHandler")
	}
	return &PresenceHandler{presenceService: presenceService}
}

// ListCursors handles GET /api/projects/:projectId/cursors. With a
// sequence_id query parameter the snapshot narrows to that sequence.
func (h *PresenceHandler) ListCursors(c *gin.Context) {
	projectID := c.Param("projectId")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project ID is required"})
		return
	}

	var err error
	if sequenceID := c.Query("sequence_id"); sequenceID != "" {
		cursors, serr := h.presenceService.GetActiveCursors(c.Request.Context(), sequenceID)
		if serr == nil {
			c.JSON(http.StatusOK, gin.H{"cursors": cursors})
			return
		}
		err = serr
	} else {
		cursors, serr := h.presenceService.GetProjectCursors(c.Request.Context(), projectID)
		if serr == nil {
			c.JSON(http.StatusOK, gin.H{"cursors": cursors})
			return
		}
		err = serr
	}

	logrus.WithError(err).WithField("project_id", projectID).Error("Handler.ListCursors: Failed to fetch cursors")
	HandleServiceError(c, err)
}

// ListPresence handles GET /api/projects/:projectId/presence.
func (h *PresenceHandler) ListPresence(c *gin.Context) {
	projectID := c.Param("projectId")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project ID is required"})
		return
	}

	presence, err := h.presenceService.GetProjectPresence(c.Request.Context(), projectID)
	if err != nil {
		logrus.WithError(err).WithField("project_id", projectID).Error("Handler.ListPresence: Failed to fetch presence")
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{"presence": presence})
}
