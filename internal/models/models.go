package models

import (
	"time"
)

type DefectStatus string

const (
	DefectStatusNew        DefectStatus = "new"
	DefectStatusInProgress DefectStatus = "in_progress"
	DefectStatusInReview   DefectStatus = "in_review"
	DefectStatusClosed     DefectStatus = "closed"
	DefectStatusCancelled  DefectStatus = "cancelled"
)

// DefectStatuses lists every status in workflow order.
var DefectStatuses = []DefectStatus{
	DefectStatusNew,
	DefectStatusInProgress,
	DefectStatusInReview,
	DefectStatusClosed,
	DefectStatusCancelled,
}

func (s DefectStatus) Valid() bool {
	for _, known := range DefectStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type DefectPriority string

const (
	DefectPriorityLow      DefectPriority = "low"
	DefectPriorityMedium   DefectPriority = "medium"
	DefectPriorityHigh     DefectPriority = "high"
	DefectPriorityCritical DefectPriority = "critical"
)

var DefectPriorities = []DefectPriority{
	DefectPriorityLow,
	DefectPriorityMedium,
	DefectPriorityHigh,
	DefectPriorityCritical,
}

func (p DefectPriority) Valid() bool {
	for _, known := range DefectPriorities {
		if p == known {
			return true
		}
	}
	return false
}

type Defect struct {
	ID          string         `json:"id" gorm:"primaryKey"`
	ProjectID   string         `json:"projectId" gorm:"not null;index"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description"`
	Priority    DefectPriority `json:"priority" gorm:"not null"`
	Status      DefectStatus   `json:"status" gorm:"not null;default:'new';index"`
	AssigneeID  *string        `json:"assigneeId" gorm:"index"`
	ReporterID  string         `json:"reporterId" gorm:"not null"`
	DueDate     *time.Time     `json:"dueDate"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	History     []HistoryEntry `json:"history" gorm:"foreignKey:DefectID"`
	Comments    []Comment      `json:"comments" gorm:"foreignKey:DefectID"`
	Attachments []Attachment   `json:"attachments" gorm:"foreignKey:DefectID"`
}

// StatusChange is the changed-fields payload of a history entry. Status is
// the only field the workflow engine mutates.
type StatusChange struct {
	Status DefectStatus `json:"status"`
}

// HistoryEntry is an immutable audit record of one workflow transition.
// Rows are only ever appended; the store exposes no update or delete for them.
type HistoryEntry struct {
	ID        string       `json:"id" gorm:"primaryKey"`
	DefectID  string       `json:"-" gorm:"not null;index"`
	Action    string       `json:"action"`
	Timestamp time.Time    `json:"timestamp"`
	Changes   StatusChange `json:"changes" gorm:"embedded;embeddedPrefix:change_"`
	Reason    string       `json:"reason"`
	ChangedBy string       `json:"changedBy"`
}

type Comment struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	DefectID   string    `json:"-" gorm:"not null;index"`
	Message    string    `json:"message" gorm:"not null"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Attachment struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	DefectID   string    `json:"-" gorm:"not null;index"`
	Name       string    `json:"name" gorm:"not null"`
	Size       int64     `json:"size"`
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
	UploadedBy string    `json:"uploadedBy"`
}

// Project is reference data describing a construction site and its timeline.
// The defect workflow reads projects but never mutates them.
type Project struct {
	ID       string  `json:"id" gorm:"primaryKey"`
	Name     string  `json:"name" gorm:"not null"`
	Code     string  `json:"code" gorm:"not null"`
	Location string  `json:"location"`
	Stages   []Stage `json:"stages" gorm:"foreignKey:ProjectID"`
}

// Stage is a time-boxed phase of a project's construction timeline. A nil
// EndDate means the stage is still open.
type Stage struct {
	ID        string     `json:"id" gorm:"primaryKey"`
	ProjectID string     `json:"-" gorm:"not null;index"`
	Name      string     `json:"name" gorm:"not null"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}
