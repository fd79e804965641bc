package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/chong-myung/collabcut-sub001/internal/domain"
	"github.com/chong-myung/collabcut-sub001/internal/service"
)

// CommentHandler serves the REST surface for threaded comments.
type CommentHandler struct {
	commentService *service.CommentService
}

// NewCommentHandler creates a CommentHandler instance.
func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	if commentService == nil {
		panic("CommentService cannot be nil for CommentHandler")
	}
	return &CommentHandler{commentService: commentService}
}

// CreateCommentRequest is the POST /api/comments body. Exactly one of
// clip_id and sequence_id may be set; with neither, the comment is
// project-wide.
type CreateCommentRequest struct {
	ProjectID  string   `json:"project_id" binding:"required"`
	ClipID     string   `json:"clip_id"`
	SequenceID string   `json:"sequence_id"`
	ParentID   string   `json:"parent_id"`
	Content    string   `json:"content" binding:"required"`
	Timestamp  *float64 `json:"timestamp"`
}

// CreateComment handles POST /api/comments. The author comes from the
// identity middleware, not the body.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}
	logCtx := logrus.WithField("user_id", userID)

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logCtx.WithError(err).Warn("Handler.CreateComment: Invalid input format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: project_id and content are required"})
		return
	}

	comment := &domain.Comment{
		ProjectID: req.ProjectID,
		AuthorID:  userID,
		Content:   req.Content,
		Timestamp: req.Timestamp,
	}
	if req.ClipID != "" {
		comment.ClipID = &req.ClipID
	}
	if req.SequenceID != "" {
		comment.SequenceID = &req.SequenceID
	}
	if req.ParentID != "" {
		comment.ParentID = &req.ParentID
	}

	created, err := h.commentService.AddComment(c.Request.Context(), comment)
	if err != nil {
		logCtx.WithError(err).Warn("Handler.CreateComment: Failed to create comment via service")
		HandleServiceError(c, err)
		return
	}

	logCtx.WithField("comment_id", created.ID).Info("Handler.CreateComment: Comment created")
	SuccessResponse(c, http.StatusCreated, created)
}

// ListComments handles GET /api/comments. Scope narrows by the most
// specific query parameter present: clip_id, then sequence_id, then
// project_id.
func (h *CommentHandler) ListComments(c *gin.Context) {
	query := service.CommentQuery{
		ClipID:     c.Query("clip_id"),
		SequenceID: c.Query("sequence_id"),
		ProjectID:  c.Query("project_id"),
	}
	if query.ClipID == "" && query.SequenceID == "" && query.ProjectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "One of clip_id, sequence_id or project_id is required"})
		return
	}

	comments, err := h.commentService.GetComments(c.Request.Context(), query)
	if err != nil {
		logrus.WithError(err).Error("Handler.ListComments: Failed to fetch comments")
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{"comments": comments})
}

// GetThread handles GET /api/comments/:commentId/thread, returning a root
// comment with its replies in creation order.
func (h *CommentHandler) GetThread(c *gin.Context) {
	commentID := c.Param("commentId")
	if commentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment ID is required"})
		return
	}

	thread, err := h.commentService.GetCommentThread(c.Request.Context(), commentID)
	if err != nil {
		logrus.WithError(err).WithField("comment_id", commentID).Warn("Handler.GetThread: Failed to fetch thread")
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{"thread": thread})
}
