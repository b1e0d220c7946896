package services

import (
	"sort"

	"dojohub/internal/models"
)

// Permission strings checked by the RequirePermission middleware.
const (
	PermStudentsRead      = "students:read"
	PermStudentsWrite     = "students:write"
	PermCoachesWrite      = "coaches:write"
	PermClassesRead       = "classes:read"
	PermClassesWrite      = "classes:write"
	PermAttendanceRead    = "attendance:read"
	PermAttendanceWrite   = "attendance:write"
	PermAttendanceCheckin = "attendance:checkin"
	PermCurriculumRead    = "curriculum:read"
	PermCurriculumWrite   = "curriculum:write"
	PermEventsRead        = "events:read"
	PermEventsWrite       = "events:write"
	PermEventsRegister    = "events:register"
	PermClubRead          = "club:read"
	PermClubWrite         = "club:write"
	PermContentRead       = "content:read"
	PermContentWrite      = "content:write"
	PermPlansRead         = "plans:read"
	PermPlansWrite        = "plans:write"
	PermMembershipsRead   = "memberships:read"
	PermMembershipsWrite  = "memberships:write"
	PermPaymentsRead      = "payments:read"
	PermPaymentsWrite     = "payments:write"
	PermPaymentsSelf      = "payments:self"
	PermBankAccountsRead  = "bank_accounts:read"
	PermBankAccountsWrite = "bank_accounts:write"
	PermBrandingRead      = "branding:read"
	PermBrandingWrite     = "branding:write"
	PermAcademyWrite      = "academy:write"
	PermExpensesRead      = "expenses:read"
	PermExpensesWrite     = "expenses:write"
	PermAuditRead         = "audit:read"
	PermDashboardRead     = "dashboard:read"
	PermSelfRead          = "self:read"
	PermSelfWrite         = "self:write"
)

// AllPermissions is every permission known to the system. Admins hold all of them.
var AllPermissions = []string{
	PermStudentsRead, PermStudentsWrite, PermCoachesWrite,
	PermClassesRead, PermClassesWrite,
	PermAttendanceRead, PermAttendanceWrite, PermAttendanceCheckin,
	PermCurriculumRead, PermCurriculumWrite,
	PermEventsRead, PermEventsWrite, PermEventsRegister,
	PermClubRead, PermClubWrite,
	PermContentRead, PermContentWrite,
	PermPlansRead, PermPlansWrite,
	PermMembershipsRead, PermMembershipsWrite,
	PermPaymentsRead, PermPaymentsWrite, PermPaymentsSelf,
	PermBankAccountsRead, PermBankAccountsWrite,
	PermBrandingRead, PermBrandingWrite, PermAcademyWrite,
	PermExpensesRead, PermExpensesWrite,
	PermAuditRead, PermDashboardRead,
	PermSelfRead, PermSelfWrite,
}

var rolePermissions = map[models.Role]map[string]struct{}{
	models.RoleAdmin: permissionSet(AllPermissions...),
	models.RoleCoach: permissionSet(
		PermStudentsRead,
		PermClassesRead, PermClassesWrite,
		PermAttendanceRead, PermAttendanceWrite,
		PermCurriculumRead, PermCurriculumWrite,
		PermEventsRead, PermEventsWrite,
		PermClubRead, PermClubWrite,
		PermContentRead, PermContentWrite,
		PermPlansRead, PermMembershipsRead, PermDashboardRead,
		PermBrandingRead,
	),
	models.RoleStudent: permissionSet(
		PermSelfRead, PermSelfWrite,
		PermClassesRead, PermAttendanceCheckin,
		PermCurriculumRead,
		PermEventsRead, PermEventsRegister,
		PermContentRead, PermPlansRead,
		PermPaymentsSelf, PermClubRead, PermBankAccountsRead,
		PermBrandingRead,
	),
}

func permissionSet(perms ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// RBACService answers permission checks against the static role matrix.
type RBACService interface {
	HasPermission(role models.Role, permission string) bool
	GetPermissions(role models.Role) []string
}

type rbacService struct {
	matrix map[models.Role]map[string]struct{}
}

func NewRBACService() RBACService {
	return &rbacService{matrix: rolePermissions}
}

// HasPermission is an inclusion test. Unknown roles hold no permissions.
func (s *rbacService) HasPermission(role models.Role, permission string) bool {
	perms, ok := s.matrix[role]
	if !ok {
		return false
	}
	_, ok = perms[permission]
	return ok
}

// GetPermissions returns the sorted permissions of role.
func (s *rbacService) GetPermissions(role models.Role) []string {
	perms := make([]string, 0, len(s.matrix[role]))
	for p := range s.matrix[role] {
		perms = append(perms, p)
	}
	sort.Strings(perms)
	return perms
}
