package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/constructhq/defect-tracker/internal/apperrors"
	"github.com/constructhq/defect-tracker/internal/models"
	"github.com/constructhq/defect-tracker/internal/workflow"
)

// DefectFilter describes one list query. All filter fields are optional and
// conjunctive. Zero values for Page/PageSize fall back to 1/20.
type DefectFilter struct {
	Query      string
	Status     models.DefectStatus
	Priority   models.DefectPriority
	ProjectID  string
	AssigneeID string
	Sort       string
	Order      string
	Page       int
	PageSize   int
}

type DefectPage struct {
	Items    []models.Defect `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

// sortColumns is the allow-list of sortable fields. Unknown keys fall back
// to createdAt.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"title":     "title",
	"priority":  "priority",
	"status":    "status",
	"dueDate":   "due_date",
}

func (db *Database) CreateDefect(defect *models.Defect) error {
	if defect.Title == "" || defect.ProjectID == "" || defect.Priority == "" {
		return apperrors.Validation("title, projectId and priority are required")
	}
	if !defect.Priority.Valid() {
		return apperrors.Validation(fmt.Sprintf("unknown priority %q", defect.Priority))
	}

	if defect.ID == "" {
		defect.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	defect.Status = models.DefectStatusNew
	defect.CreatedAt = now
	defect.UpdatedAt = now
	defect.History = []models.HistoryEntry{}
	defect.Comments = []models.Comment{}
	defect.Attachments = []models.Attachment{}

	return db.Create(defect).Error
}

func (db *Database) GetDefect(id string) (*models.Defect, error) {
	var defect models.Defect
	err := db.
		Preload("History", func(tx *gorm.DB) *gorm.DB { return tx.Order("timestamp ASC") }).
		Preload("Comments", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		Preload("Attachments", func(tx *gorm.DB) *gorm.DB { return tx.Order("uploaded_at ASC") }).
		First(&defect, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("defect")
	}
	if err != nil {
		return nil, err
	}

	// Empty associations serialize as [] rather than null.
	if defect.History == nil {
		defect.History = []models.HistoryEntry{}
	}
	if defect.Comments == nil {
		defect.Comments = []models.Comment{}
	}
	if defect.Attachments == nil {
		defect.Attachments = []models.Attachment{}
	}
	return &defect, nil
}

func (db *Database) ListDefects(filter DefectFilter) (*DefectPage, error) {
	applyFilter := func(tx *gorm.DB) *gorm.DB {
		if filter.Query != "" {
			pattern := "%" + strings.ToLower(filter.Query) + "%"
			tx = tx.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
		}
		if filter.Status != "" {
			tx = tx.Where("status = ?", filter.Status)
		}
		if filter.Priority != "" {
			tx = tx.Where("priority = ?", filter.Priority)
		}
		if filter.ProjectID != "" {
			tx = tx.Where("project_id = ?", filter.ProjectID)
		}
		if filter.AssigneeID != "" {
			tx = tx.Where("assignee_id = ?", filter.AssigneeID)
		}
		return tx
	}

	var total int64
	if err := applyFilter(db.Model(&models.Defect{})).Count(&total).Error; err != nil {
		return nil, err
	}

	column, ok := sortColumns[filter.Sort]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if filter.Order == "asc" {
		direction = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	items := []models.Defect{}
	err := applyFilter(db.Model(&models.Defect{})).
		Order(fmt.Sprintf("%s %s, id ASC", column, direction)).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &DefectPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// UpdateDefect merges the given column values over the stored record and
// refreshes updated_at. It never touches status or history; those belong to
// TransitionDefect.
func (db *Database) UpdateDefect(id string, updates map[string]interface{}) (*models.Defect, error) {
	var defect models.Defect
	if err := db.First(&defect, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("defect")
		}
		return nil, err
	}

	updates["updated_at"] = time.Now().UTC()
	if err := db.Model(&defect).Updates(updates).Error; err != nil {
		return nil, err
	}
	return db.GetDefect(id)
}

func (db *Database) DeleteDefect(id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var defect models.Defect
		if err := tx.First(&defect, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("defect")
			}
			return err
		}

		if err := tx.Where("defect_id = ?", id).Delete(&models.HistoryEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("defect_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("defect_id = ?", id).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Defect{}, "id = ?", id).Error
	})
}

// TransitionDefect is the only path that writes a defect's status. The
// status write and the history append happen in one transaction so the audit
// trail can never diverge from the record.
func (db *Database) TransitionDefect(id string, target models.DefectStatus, reason string, actor *models.User) (*models.Defect, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		var defect models.Defect
		if err := tx.First(&defect, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("defect")
			}
			return err
		}

		if err := workflow.Validate(defect.Status, target); err != nil {
			return err
		}
		if !workflow.CanInitiate(actor, defect.Status) {
			return apperrors.ErrForbidden
		}

		now := time.Now().UTC()
		entry := models.HistoryEntry{
			ID:        uuid.NewString(),
			DefectID:  defect.ID,
			Action:    workflow.ActionLabel(target),
			Timestamp: now,
			Changes:   models.StatusChange{Status: target},
			Reason:    reason,
			ChangedBy: actor.Email,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		return tx.Model(&defect).Updates(map[string]interface{}{
			"status":     target,
			"updated_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return db.GetDefect(id)
}

func (db *Database) AddComment(defectID, message string, author *models.User) (*models.Comment, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.Validation("message is required")
	}

	comment := models.Comment{
		ID:         uuid.NewString(),
		DefectID:   defectID,
		Message:    message,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		CreatedAt:  time.Now().UTC(),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := defectExists(tx, defectID); err != nil {
			return err
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return touchDefect(tx, defectID, comment.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (db *Database) AddAttachment(defectID string, attachment *models.Attachment, uploader *models.User) error {
	attachment.ID = uuid.NewString()
	attachment.DefectID = defectID
	attachment.UploadedAt = time.Now().UTC()
	attachment.UploadedBy = uploader.Email

	return db.Transaction(func(tx *gorm.DB) error {
		if err := defectExists(tx, defectID); err != nil {
			return err
		}
		if err := tx.Create(attachment).Error; err != nil {
			return err
		}
		return touchDefect(tx, defectID, attachment.UploadedAt)
	})
}

// RemoveAttachment deletes one attachment record and returns it so the
// caller can clean up the stored file. The attachment list is untouched when
// the id is absent.
func (db *Database) RemoveAttachment(defectID, attachmentID string) (*models.Attachment, error) {
	var attachment models.Attachment
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := defectExists(tx, defectID); err != nil {
			return err
		}
		err := tx.First(&attachment, "id = ? AND defect_id = ?", attachmentID, defectID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("attachment")
		}
		if err != nil {
			return err
		}
		if err := tx.Delete(&attachment).Error; err != nil {
			return err
		}
		return touchDefect(tx, defectID, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

// AllDefects returns the full collection without sub-collections, newest
// first. Used by the stats aggregator and the CSV exporter.
func (db *Database) AllDefects() ([]models.Defect, error) {
	defects := []models.Defect{}
	err := db.Order("created_at DESC, id ASC").Find(&defects).Error
	return defects, err
}

func defectExists(tx *gorm.DB, id string) error {
	var count int64
	if err := tx.Model(&models.Defect{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperrors.NotFound("defect")
	}
	return nil
}

func touchDefect(tx *gorm.DB, id string, now time.Time) error {
	return tx.Model(&models.Defect{}).Where("id = ?", id).Update("updated_at", now).Error
}
