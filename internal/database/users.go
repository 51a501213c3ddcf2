package database

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/constructhq/defect-tracker/internal/apperrors"
	"github.com/constructhq/defect-tracker/internal/models"
)

func (db *Database) CreateUser(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Name == "" {
		user.Name = strings.SplitN(user.Email, "@", 2)[0]
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperrors.Conflict("a user with this email already exists")
	}

	return db.Create(user).Error
}

func (db *Database) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, err
	}
	return &user, nil
}

func (db *Database) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, err
	}
	return &user, nil
}

func (db *Database) ListUsers() ([]models.User, error) {
	users := []models.User{}
	err := db.Order("email ASC").Find(&users).Error
	return users, err
}

// ListAssignableUsers returns the users a defect may be assigned to:
// engineers, managers and admins.
func (db *Database) ListAssignableUsers() ([]models.User, error) {
	users := []models.User{}
	err := db.
		Where("role IN ?", []models.UserRole{models.UserRoleEngineer, models.UserRoleManager, models.UserRoleAdmin}).
		Order("email ASC").
		Find(&users).Error
	return users, err
}
