package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/constructhq/defect-tracker/internal/apperrors"
	"github.com/constructhq/defect-tracker/internal/models"
)

func TestValidate(t *testing.T) {
	t.Run("LegalTransitions", func(t *testing.T) {
		legal := []struct {
			from, to models.DefectStatus
		}{
			{models.DefectStatusNew, models.DefectStatusInProgress},
			{models.DefectStatusNew, models.DefectStatusCancelled},
			{models.DefectStatusInProgress, models.DefectStatusInReview},
			{models.DefectStatusInProgress, models.DefectStatusCancelled},
			{models.DefectStatusInReview, models.DefectStatusClosed},
			{models.DefectStatusInReview, models.DefectStatusInProgress},
		}
		for _, tc := range legal {
			assert.NoError(t, Validate(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
		}
	})

	t.Run("TerminalStatesHaveNoExits", func(t *testing.T) {
		for _, from := range []models.DefectStatus{models.DefectStatusClosed, models.DefectStatusCancelled} {
			for _, to := range models.DefectStatuses {
				err := Validate(from, to)
				assert.Error(t, err, "%s -> %s", from, to)
				assert.Equal(t, 400, apperrors.StatusCode(err))
			}
		}
	})

	t.Run("SelfLoopRejected", func(t *testing.T) {
		for _, status := range models.DefectStatuses {
			assert.Error(t, Validate(status, status), "self-loop on %s", status)
		}
	})

	t.Run("SkippingStatesRejected", func(t *testing.T) {
		assert.Error(t, Validate(models.DefectStatusNew, models.DefectStatusClosed))
		assert.Error(t, Validate(models.DefectStatusNew, models.DefectStatusInReview))
		assert.Error(t, Validate(models.DefectStatusInProgress, models.DefectStatusClosed))
	})

	t.Run("UnknownTargetRejected", func(t *testing.T) {
		err := Validate(models.DefectStatusNew, "reopened")
		assert.Error(t, err)
		assert.Equal(t, 400, apperrors.StatusCode(err))
	})
}

func TestCanInitiate(t *testing.T) {
	user := func(role models.UserRole) *models.User {
		return &models.User{ID: "u1", Email: "u1@example.com", Role: role}
	}

	t.Run("AdminMayInitiateFromAnyActiveState", func(t *testing.T) {
		for _, from := range []models.DefectStatus{models.DefectStatusNew, models.DefectStatusInProgress, models.DefectStatusInReview} {
			assert.True(t, CanInitiate(user(models.UserRoleAdmin), from), "admin from %s", from)
		}
	})

	t.Run("EngineerCannotCloseReview", func(t *testing.T) {
		assert.True(t, CanInitiate(user(models.UserRoleEngineer), models.DefectStatusInProgress))
		assert.False(t, CanInitiate(user(models.UserRoleEngineer), models.DefectStatusInReview))
	})

	t.Run("ManagerCannotMoveInProgress", func(t *testing.T) {
		assert.True(t, CanInitiate(user(models.UserRoleManager), models.DefectStatusNew))
		assert.False(t, CanInitiate(user(models.UserRoleManager), models.DefectStatusInProgress))
		assert.True(t, CanInitiate(user(models.UserRoleManager), models.DefectStatusInReview))
	})

	t.Run("ReadOnlyRolesNeverInitiate", func(t *testing.T) {
		for _, role := range []models.UserRole{models.UserRoleUser, models.UserRoleObserver} {
			for _, from := range models.DefectStatuses {
				assert.False(t, CanInitiate(user(role), from), "%s from %s", role, from)
			}
		}
	})

	t.Run("NilUserDenied", func(t *testing.T) {
		assert.False(t, CanInitiate(nil, models.DefectStatusNew))
	})
}

func TestTerminal(t *testing.T) {
	assert.True(t, Terminal(models.DefectStatusClosed))
	assert.True(t, Terminal(models.DefectStatusCancelled))
	assert.False(t, Terminal(models.DefectStatusNew))
	assert.False(t, Terminal(models.DefectStatusInProgress))
	assert.False(t, Terminal(models.DefectStatusInReview))
}
