package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dojohub/internal/models"
)

func TestRBACService_HasPermission(t *testing.T) {
	rbac := NewRBACService()

	tests := []struct {
		name       string
		role       models.Role
		permission string
		want       bool
	}{
		{"admin holds everything", models.RoleAdmin, PermAuditRead, true},
		{"coach takes attendance", models.RoleCoach, PermAttendanceWrite, true},
		{"coach cannot touch payments", models.RoleCoach, PermPaymentsWrite, false},
		{"coach cannot create coaches", models.RoleCoach, PermCoachesWrite, false},
		{"coach reads branding", models.RoleCoach, PermBrandingRead, true},
		{"coach cannot edit branding", models.RoleCoach, PermBrandingWrite, false},
		{"student reads branding", models.RoleStudent, PermBrandingRead, true},
		{"student checks in", models.RoleStudent, PermAttendanceCheckin, true},
		{"student pays for self", models.RoleStudent, PermPaymentsSelf, true},
		{"student cannot list students", models.RoleStudent, PermStudentsRead, false},
		{"unknown role", models.Role("owner"), PermSelfRead, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rbac.HasPermission(tt.role, tt.permission))
		})
	}
}

func TestRBACService_GetPermissions(t *testing.T) {
	rbac := NewRBACService()

	admin := rbac.GetPermissions(models.RoleAdmin)
	assert.ElementsMatch(t, AllPermissions, admin)
	assert.IsIncreasing(t, admin)
	assert.Empty(t, rbac.GetPermissions(models.Role("owner")))
}
