// Package workflow enforces the defect status state machine. Every status
// write goes through a transition validated here; the generic field-update
// path rejects status outright.
package workflow

import (
	"fmt"

	"github.com/constructhq/defect-tracker/internal/apperrors"
	"github.com/constructhq/defect-tracker/internal/models"
)

// Rule describes the outgoing edges of one status and the roles allowed to
// initiate a transition out of it.
type Rule struct {
	Next  []models.DefectStatus
	Roles []models.UserRole
}

// Transitions is the full state machine. closed and cancelled are terminal.
// Role sets gate the SOURCE state, and enumerate admin explicitly rather
// than relying on a role hierarchy.
var Transitions = map[models.DefectStatus]Rule{
	models.DefectStatusNew: {
		Next:  []models.DefectStatus{models.DefectStatusInProgress, models.DefectStatusCancelled},
		Roles: []models.UserRole{models.UserRoleManager, models.UserRoleEngineer, models.UserRoleAdmin},
	},
	models.DefectStatusInProgress: {
		Next:  []models.DefectStatus{models.DefectStatusInReview, models.DefectStatusCancelled},
		Roles: []models.UserRole{models.UserRoleEngineer, models.UserRoleAdmin},
	},
	models.DefectStatusInReview: {
		Next:  []models.DefectStatus{models.DefectStatusClosed, models.DefectStatusInProgress},
		Roles: []models.UserRole{models.UserRoleManager, models.UserRoleAdmin},
	},
	models.DefectStatusClosed:    {},
	models.DefectStatusCancelled: {},
}

// Validate checks that target is a legal next status from the current one.
// A self-loop is invalid, not silently accepted.
func Validate(from, to models.DefectStatus) error {
	if !to.Valid() {
		return apperrors.Validation(fmt.Sprintf("unknown status %q", to))
	}
	rule, ok := Transitions[from]
	if !ok {
		return apperrors.InvalidTransition(string(from), string(to))
	}
	for _, next := range rule.Next {
		if next == to {
			return nil
		}
	}
	return apperrors.InvalidTransition(string(from), string(to))
}

// CanInitiate reports whether user may move a defect out of the given status.
func CanInitiate(user *models.User, from models.DefectStatus) bool {
	rule, ok := Transitions[from]
	if !ok {
		return false
	}
	return user.HasAnyRole(rule.Roles...)
}

// Terminal reports whether a status has no outgoing transitions.
func Terminal(status models.DefectStatus) bool {
	return len(Transitions[status].Next) == 0
}

// ActionLabel is the history entry label recorded for a transition.
func ActionLabel(to models.DefectStatus) string {
	return fmt.Sprintf("status changed to %q", string(to))
}
