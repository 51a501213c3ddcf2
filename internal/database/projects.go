package database

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/constructhq/defect-tracker/internal/apperrors"
	"github.com/constructhq/defect-tracker/internal/models"
)

// Projects are reference data: created by the seed tool, read-only for the
// defect workflow.

func (db *Database) CreateProject(project *models.Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	for i := range project.Stages {
		if project.Stages[i].ID == "" {
			project.Stages[i].ID = uuid.NewString()
		}
		project.Stages[i].ProjectID = project.ID
	}
	return db.Create(project).Error
}

func (db *Database) GetProject(id string) (*models.Project, error) {
	var project models.Project
	err := db.
		Preload("Stages", func(tx *gorm.DB) *gorm.DB { return tx.Order("start_date ASC") }).
		First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("project")
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (db *Database) ListProjects() ([]models.Project, error) {
	projects := []models.Project{}
	err := db.
		Preload("Stages", func(tx *gorm.DB) *gorm.DB { return tx.Order("start_date ASC") }).
		Order("code ASC").
		Find(&projects).Error
	return projects, err
}
