package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/constructhq/defect-tracker/internal/apperrors"
	"github.com/constructhq/defect-tracker/internal/auth"
	"github.com/constructhq/defect-tracker/internal/database"
	"github.com/constructhq/defect-tracker/internal/export"
	"github.com/constructhq/defect-tracker/internal/models"
	"github.com/constructhq/defect-tracker/internal/stats"
	"github.com/constructhq/defect-tracker/internal/storage"
)

type Handler struct {
	db      *database.Database
	storage *storage.FileStorage
}

func NewHandler(db *database.Database, storage *storage.FileStorage) *Handler {
	return &Handler{
		db:      db,
		storage: storage,
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
}

type CreateDefectRequest struct {
	ProjectID   string     `json:"projectId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	AssigneeID  *string    `json:"assigneeId"`
	DueDate     *time.Time `json:"dueDate"`
}

func (h *Handler) CreateDefect(c *gin.Context) {
	var req CreateDefectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := auth.CurrentUser(c)
	defect := models.Defect{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    models.DefectPriority(req.Priority),
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		ReporterID:  user.ID,
	}

	if err := h.db.CreateDefect(&defect); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, defect)
}

func (h *Handler) GetDefect(c *gin.Context) {
	defect, err := h.db.GetDefect(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, defect)
}

func (h *Handler) ListDefects(c *gin.Context) {
	filter := database.DefectFilter{
		Query:      c.Query("q"),
		Status:     models.DefectStatus(c.Query("status")),
		Priority:   models.DefectPriority(c.Query("priority")),
		ProjectID:  c.Query("projectId"),
		AssigneeID: c.Query("assigneeId"),
		Sort:       c.DefaultQuery("sort", "createdAt"),
		Order:      c.DefaultQuery("order", "desc"),
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		filter.Page = page
	}
	if pageSize, err := strconv.Atoi(c.Query("pageSize")); err == nil {
		filter.PageSize = pageSize
	}

	result, err := h.db.ListDefects(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// updatableColumns maps accepted PATCH fields to store columns. Status is
// deliberately absent: it only changes through the workflow transition.
var updatableColumns = map[string]string{
	"title":       "title",
	"description": "description",
	"priority":    "priority",
	"projectId":   "project_id",
	"assigneeId":  "assignee_id",
	"dueDate":     "due_date",
}

func (h *Handler) UpdateDefect(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, ok := body["status"]; ok {
		respondError(c, apperrors.Validation("status cannot be changed here; use the status transition endpoint"))
		return
	}

	updates := map[string]interface{}{}
	for field, column := range updatableColumns {
		value, ok := body[field]
		if !ok {
			continue
		}
		switch field {
		case "title":
			title, _ := value.(string)
			if title == "" {
				respondError(c, apperrors.Validation("title is required"))
				return
			}
			updates[column] = title
		case "priority":
			priority, _ := value.(string)
			if !models.DefectPriority(priority).Valid() {
				respondError(c, apperrors.Validation(fmt.Sprintf("unknown priority %q", priority)))
				return
			}
			updates[column] = priority
		case "projectId":
			projectID, _ := value.(string)
			if projectID == "" {
				respondError(c, apperrors.Validation("projectId is required"))
				return
			}
			updates[column] = projectID
		case "dueDate":
			if value == nil {
				updates[column] = nil
				break
			}
			raw, _ := value.(string)
			dueDate, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				respondError(c, apperrors.Validation("dueDate must be an RFC 3339 timestamp"))
				return
			}
			updates[column] = dueDate
		default:
			// description and assigneeId pass through; a JSON null clears
			// the column.
			updates[column] = value
		}
	}

	defect, err := h.db.UpdateDefect(c.Param("id"), updates)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, defect)
}

func (h *Handler) DeleteDefect(c *gin.Context) {
	if err := h.db.DeleteDefect(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

type TransitionRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (h *Handler) TransitionDefect(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status == "" {
		respondError(c, apperrors.Validation("status is required"))
		return
	}

	user := auth.CurrentUser(c)
	defect, err := h.db.TransitionDefect(c.Param("id"), models.DefectStatus(req.Status), req.Reason, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, defect)
}

type CommentRequest struct {
	Message string `json:"message"`
}

func (h *Handler) AddComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.db.AddComment(c.Param("id"), req.Message, auth.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

type AttachmentRequest struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// AddAttachment accepts either a multipart upload, stored through the file
// storage collaborator, or a JSON metadata record pointing at an external
// URL.
func (h *Handler) AddAttachment(c *gin.Context) {
	defectID := c.Param("id")
	user := auth.CurrentUser(c)

	var attachment models.Attachment
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, err := c.FormFile("file")
		if err != nil {
			respondError(c, apperrors.Validation("no file provided"))
			return
		}
		path, err := h.storage.SaveFile(file, defectID)
		if err != nil {
			respondError(c, err)
			return
		}
		attachment = models.Attachment{
			Name: file.Filename,
			Size: file.Size,
			Type: file.Header.Get("Content-Type"),
			URL:  "/uploads/" + filepath.ToSlash(path),
		}
	} else {
		var req AttachmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Name == "" {
			req.Name = "uploaded_file"
		}
		if req.Type == "" {
			req.Type = "application/octet-stream"
		}
		attachment = models.Attachment{Name: req.Name, Size: req.Size, Type: req.Type, URL: req.URL}
	}

	if err := h.db.AddAttachment(defectID, &attachment, user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, attachment)
}

func (h *Handler) RemoveAttachment(c *gin.Context) {
	attachment, err := h.db.RemoveAttachment(c.Param("id"), c.Param("attachmentId"))
	if err != nil {
		respondError(c, err)
		return
	}

	if path, ok := strings.CutPrefix(attachment.URL, "/uploads/"); ok {
		// Best effort; the metadata record is already gone.
		_ = h.storage.DeleteFile(filepath.FromSlash(path))
	}

	c.JSON(http.StatusNoContent, nil)
}

func (h *Handler) GetStats(c *gin.Context) {
	defects, err := h.db.AllDefects()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats.Compute(defects))
}

func (h *Handler) ExportDefects(c *gin.Context) {
	defects, err := h.db.AllDefects()
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename=defects.csv`)
	c.Status(http.StatusOK)
	if err := export.WriteCSV(c.Writer, defects); err != nil {
		_ = c.Error(err)
	}
}

func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.db.ListProjects()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *Handler) GetProject(c *gin.Context) {
	project, err := h.db.GetProject(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.db.ListUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) ListEngineers(c *gin.Context) {
	users, err := h.db.ListAssignableUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
