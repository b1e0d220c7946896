package handlers

import (
	"github.com/labstack/echo/v4"

	"dojohub/internal/middleware"
	"dojohub/internal/models"
	"dojohub/internal/services"
)

// Handlers groups every handler set mounted by RegisterRoutes.
type Handlers struct {
	Auth        *AuthHandlers
	Academy     *AcademyHandlers
	Users       *UserHandlers
	Plans       *PlanHandlers
	Memberships *MembershipHandlers
	Payments    *PaymentHandlers
	Classes     *ClassHandlers
	Curriculum  *CurriculumHandlers
	Events      *EventHandlers
	Club        *ClubHandlers
	Content     *ContentHandlers
	Dashboard   *DashboardHandlers
	AuditLogs   *AuditLogsHandlers
	Webhooks    *WebhookHandlers
	Health      *HealthHandlers
	Jobs        *JobHandlers
}

// RouteMiddleware is the middleware RegisterRoutes attaches per group.
type RouteMiddleware struct {
	JWT        echo.MiddlewareFunc
	RBAC       *middleware.RBACMiddleware
	Audit      *middleware.AuditMiddleware
	CronSecret string
}

// RegisterRoutes mounts the health checks at the root and the API under /v1.
func RegisterRoutes(e *echo.Echo, h *Handlers, mw RouteMiddleware) {
	e.GET("/health", h.Health.LivenessCheck)
	e.GET("/health/ready", h.Health.ReadinessCheck)
	e.GET("/health/detailed", h.Health.DetailedHealthCheck)

	v1 := e.Group("/"+middleware.CurrentAPIVersion, middleware.VersionHeader(middleware.CurrentAPIVersion))

	auth := v1.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	v1.GET("/public/academies/:slug/branding", h.Academy.PublicBranding)

	webhooks := v1.Group("/webhooks")
	webhooks.POST("/mercadopago", h.Webhooks.MercadoPago)
	webhooks.POST("/flow", h.Webhooks.Flow)

	cron := v1.Group("/cron", middleware.CronAuth(mw.CronSecret))
	cron.POST("/suspend-overdue", h.Jobs.SuspendOverdue)
	cron.POST("/expire-trials", h.Jobs.ExpireTrials)
	cron.POST("/materialize", h.Jobs.Materialize)
	cron.POST("/refresh-dashboards", h.Jobs.RefreshDashboards)

	me := v1.Group("/me", mw.JWT)
	me.GET("", h.Auth.Me)
	me.PUT("", h.Auth.UpdateMe)

	admin := v1.Group("/admin", mw.JWT, mw.RBAC.RequireRole(models.RoleAdmin, models.RoleCoach), mw.Audit.AuditRequest())
	registerAdminRoutes(admin, h, mw.RBAC.RequirePermission)
	registerStudentRoutes(v1.Group("/student", mw.JWT), h, mw.RBAC.RequirePermission)
}

func registerAdminRoutes(admin *echo.Group, h *Handlers, perm func(string) echo.MiddlewareFunc) {
	admin.GET("/academy", h.Academy.GetAcademy, perm(services.PermDashboardRead))
	admin.PUT("/academy", h.Academy.UpdateAcademy, perm(services.PermAcademyWrite))
	admin.GET("/branding", h.Academy.GetBranding, perm(services.PermBrandingRead))
	admin.PUT("/branding", h.Academy.UpdateBranding, perm(services.PermBrandingWrite))
	admin.POST("/branding/logo", h.Academy.UploadLogo, perm(services.PermBrandingWrite))
	admin.GET("/dashboard", h.Dashboard.GetDashboard, perm(services.PermDashboardRead))

	// Students and coaches
	admin.GET("/students", h.Users.List(models.RoleStudent), perm(services.PermStudentsRead))
	admin.GET("/students/:id", h.Users.Get(models.RoleStudent), perm(services.PermStudentsRead))
	admin.POST("/students", h.Users.Create(models.RoleStudent), perm(services.PermStudentsWrite))
	admin.PUT("/students/:id", h.Users.Update(models.RoleStudent), perm(services.PermStudentsWrite))
	admin.DELETE("/students/:id", h.Users.Deactivate(models.RoleStudent), perm(services.PermStudentsWrite))
	admin.GET("/students/:id/promotions", h.Curriculum.ListPromotions, perm(services.PermCurriculumRead))
	admin.GET("/students/:id/progress", h.Curriculum.StudentProgress, perm(services.PermCurriculumRead))

	admin.GET("/coaches", h.Users.List(models.RoleCoach), perm(services.PermStudentsRead))
	admin.GET("/coaches/:id", h.Users.Get(models.RoleCoach), perm(services.PermStudentsRead))
	admin.POST("/coaches", h.Users.Create(models.RoleCoach), perm(services.PermCoachesWrite))
	admin.PUT("/coaches/:id", h.Users.Update(models.RoleCoach), perm(services.PermCoachesWrite))
	admin.DELETE("/coaches/:id", h.Users.Deactivate(models.RoleCoach), perm(services.PermCoachesWrite))

	// Billing
	admin.GET("/plans", h.Plans.ListPlans, perm(services.PermPlansRead))
	admin.GET("/plans/:id", h.Plans.GetPlan, perm(services.PermPlansRead))
	admin.POST("/plans", h.Plans.CreatePlan, perm(services.PermPlansWrite))
	admin.PUT("/plans/:id", h.Plans.UpdatePlan, perm(services.PermPlansWrite))
	admin.DELETE("/plans/:id", h.Plans.DeletePlan, perm(services.PermPlansWrite))

	admin.GET("/memberships", h.Memberships.ListMemberships, perm(services.PermMembershipsRead))
	admin.GET("/memberships/:id", h.Memberships.GetMembership, perm(services.PermMembershipsRead))
	admin.POST("/memberships", h.Memberships.CreateMembership, perm(services.PermMembershipsWrite))
	admin.PUT("/memberships/:id/status", h.Memberships.ChangeStatus, perm(services.PermMembershipsWrite))
	admin.POST("/memberships/:id/cancel", h.Memberships.CancelMembership, perm(services.PermMembershipsWrite))

	admin.GET("/payments", h.Payments.ListPayments, perm(services.PermPaymentsRead))
	admin.GET("/payments/:id", h.Payments.GetPayment, perm(services.PermPaymentsRead))
	admin.GET("/payments/:id/receipt", h.Payments.Receipt, perm(services.PermPaymentsRead))
	admin.POST("/payments", h.Payments.RecordPayment, perm(services.PermPaymentsWrite))
	admin.POST("/payments/:id/approve", h.Payments.ApproveTransfer, perm(services.PermPaymentsWrite))
	admin.POST("/payments/:id/reject", h.Payments.RejectTransfer, perm(services.PermPaymentsWrite))
	admin.POST("/payments/:id/refund", h.Payments.Refund, perm(services.PermPaymentsWrite))
	admin.POST("/payments/:id/confirm-flow", h.Payments.ConfirmFlow, perm(services.PermPaymentsWrite))
	admin.POST("/payments/:id/cancel", h.Payments.Cancel, perm(services.PermPaymentsWrite))

	admin.GET("/bank-accounts", h.Academy.ListBankAccounts, perm(services.PermBankAccountsRead))
	admin.GET("/bank-accounts/:id", h.Academy.GetBankAccount, perm(services.PermBankAccountsRead))
	admin.POST("/bank-accounts", h.Academy.CreateBankAccount, perm(services.PermBankAccountsWrite))
	admin.PUT("/bank-accounts/:id", h.Academy.UpdateBankAccount, perm(services.PermBankAccountsWrite))
	admin.DELETE("/bank-accounts/:id", h.Academy.DeleteBankAccount, perm(services.PermBankAccountsWrite))

	// Classes and attendance
	admin.GET("/classes", h.Classes.ListClasses, perm(services.PermClassesRead))
	admin.GET("/classes/:id", h.Classes.GetClass, perm(services.PermClassesRead))
	admin.POST("/classes", h.Classes.CreateClass, perm(services.PermClassesWrite))
	admin.PUT("/classes/:id", h.Classes.UpdateClass, perm(services.PermClassesWrite))
	admin.DELETE("/classes/:id", h.Classes.DeleteClass, perm(services.PermClassesWrite))

	admin.GET("/schedules", h.Classes.ListSchedules, perm(services.PermClassesRead))
	admin.GET("/schedules/:id", h.Classes.GetSchedule, perm(services.PermClassesRead))
	admin.POST("/schedules", h.Classes.CreateSchedule, perm(services.PermClassesWrite))
	admin.PUT("/schedules/:id", h.Classes.UpdateSchedule, perm(services.PermClassesWrite))
	admin.DELETE("/schedules/:id", h.Classes.DeleteSchedule, perm(services.PermClassesWrite))

	admin.GET("/instances", h.Classes.ListInstances, perm(services.PermClassesRead))
	admin.GET("/instances/:id", h.Classes.GetInstance, perm(services.PermClassesRead))
	admin.POST("/instances", h.Classes.CreateInstance, perm(services.PermClassesWrite))
	admin.POST("/instances/generate", h.Classes.GenerateInstances, perm(services.PermClassesWrite))
	admin.POST("/instances/:id/cancel", h.Classes.CancelInstance, perm(services.PermClassesWrite))
	admin.GET("/instances/:id/qr", h.Classes.InstanceQR, perm(services.PermAttendanceWrite))
	admin.GET("/instances/:id/attendance", h.Classes.ListAttendance, perm(services.PermAttendanceRead))
	admin.POST("/instances/:id/attendance", h.Classes.RecordAttendance, perm(services.PermAttendanceWrite))
	admin.DELETE("/instances/:id/attendance/:attendance_id", h.Classes.DeleteAttendance, perm(services.PermAttendanceWrite))

	// Curriculum
	admin.GET("/belts", h.Curriculum.ListBelts, perm(services.PermCurriculumRead))
	admin.GET("/belts/:id", h.Curriculum.GetBelt, perm(services.PermCurriculumRead))
	admin.GET("/belts/:id/curriculum", h.Curriculum.ListItems, perm(services.PermCurriculumRead))
	admin.POST("/belts", h.Curriculum.CreateBelt, perm(services.PermCurriculumWrite))
	admin.PUT("/belts/:id", h.Curriculum.UpdateBelt, perm(services.PermCurriculumWrite))
	admin.DELETE("/belts/:id", h.Curriculum.DeleteBelt, perm(services.PermCurriculumWrite))

	admin.GET("/curriculum/:id", h.Curriculum.GetItem, perm(services.PermCurriculumRead))
	admin.POST("/curriculum", h.Curriculum.CreateItem, perm(services.PermCurriculumWrite))
	admin.PUT("/curriculum/:id", h.Curriculum.UpdateItem, perm(services.PermCurriculumWrite))
	admin.DELETE("/curriculum/:id", h.Curriculum.DeleteItem, perm(services.PermCurriculumWrite))
	admin.POST("/promotions", h.Curriculum.Promote, perm(services.PermCurriculumWrite))

	// Events
	admin.GET("/events", h.Events.ListEvents, perm(services.PermEventsRead))
	admin.GET("/events/:id", h.Events.GetEvent, perm(services.PermEventsRead))
	admin.GET("/events/:id/registrations", h.Events.ListRegistrations, perm(services.PermEventsRead))
	admin.POST("/events", h.Events.CreateEvent, perm(services.PermEventsWrite))
	admin.PUT("/events/:id", h.Events.UpdateEvent, perm(services.PermEventsWrite))
	admin.DELETE("/events/:id", h.Events.DeleteEvent, perm(services.PermEventsWrite))

	// Club
	admin.GET("/matches", h.Club.ListMatches, perm(services.PermClubRead))
	admin.GET("/matches/:id", h.Club.GetMatch, perm(services.PermClubRead))
	admin.POST("/matches", h.Club.CreateMatch, perm(services.PermClubWrite))
	admin.PUT("/matches/:id", h.Club.UpdateMatch, perm(services.PermClubWrite))
	admin.PUT("/matches/:id/score", h.Club.RecordScore, perm(services.PermClubWrite))
	admin.DELETE("/matches/:id", h.Club.DeleteMatch, perm(services.PermClubWrite))

	admin.GET("/evaluations", h.Club.ListEvaluations, perm(services.PermClubRead))
	admin.GET("/evaluations/:id", h.Club.GetEvaluation, perm(services.PermClubRead))
	admin.POST("/evaluations", h.Club.CreateEvaluation, perm(services.PermClubWrite))
	admin.PUT("/evaluations/:id", h.Club.UpdateEvaluation, perm(services.PermClubWrite))
	admin.DELETE("/evaluations/:id", h.Club.DeleteEvaluation, perm(services.PermClubWrite))

	admin.GET("/training-schedules", h.Club.ListTrainingSchedules, perm(services.PermClubRead))
	admin.GET("/training-schedules/:id", h.Club.GetTrainingSchedule, perm(services.PermClubRead))
	admin.POST("/training-schedules", h.Club.CreateTrainingSchedule, perm(services.PermClubWrite))
	admin.PUT("/training-schedules/:id", h.Club.UpdateTrainingSchedule, perm(services.PermClubWrite))
	admin.DELETE("/training-schedules/:id", h.Club.DeleteTrainingSchedule, perm(services.PermClubWrite))

	admin.GET("/training-sessions", h.Club.ListSessions, perm(services.PermClubRead))
	admin.GET("/training-sessions/:id", h.Club.GetSession, perm(services.PermClubRead))
	admin.POST("/training-sessions", h.Club.CreateSession, perm(services.PermClubWrite))
	admin.PUT("/training-sessions/:id", h.Club.UpdateSession, perm(services.PermClubWrite))
	admin.DELETE("/training-sessions/:id", h.Club.DeleteSession, perm(services.PermClubWrite))

	admin.GET("/expenses", h.Club.ListExpenses, perm(services.PermExpensesRead))
	admin.GET("/expenses/summary", h.Club.ExpenseSummary, perm(services.PermExpensesRead))
	admin.GET("/expenses/:id", h.Club.GetExpense, perm(services.PermExpensesRead))
	admin.POST("/expenses", h.Club.CreateExpense, perm(services.PermExpensesWrite))
	admin.PUT("/expenses/:id", h.Club.UpdateExpense, perm(services.PermExpensesWrite))
	admin.POST("/expenses/:id/receipt", h.Club.UploadExpenseReceipt, perm(services.PermExpensesWrite))
	admin.DELETE("/expenses/:id", h.Club.DeleteExpense, perm(services.PermExpensesWrite))

	// Content
	admin.GET("/channels", h.Content.ListChannels, perm(services.PermContentRead))
	admin.GET("/channels/:id", h.Content.GetChannel, perm(services.PermContentRead))
	admin.POST("/channels", h.Content.CreateChannel, perm(services.PermContentWrite))
	admin.PUT("/channels/:id", h.Content.UpdateChannel, perm(services.PermContentWrite))
	admin.DELETE("/channels/:id", h.Content.DeleteChannel, perm(services.PermContentWrite))

	admin.GET("/contents", h.Content.ListContents, perm(services.PermContentRead))
	admin.GET("/contents/:id", h.Content.GetContent, perm(services.PermContentRead))
	admin.POST("/contents", h.Content.CreateContent, perm(services.PermContentWrite))
	admin.PUT("/contents/:id", h.Content.UpdateContent, perm(services.PermContentWrite))
	admin.POST("/contents/:id/document", h.Content.UploadDocument, perm(services.PermContentWrite))
	admin.DELETE("/contents/:id", h.Content.DeleteContent, perm(services.PermContentWrite))

	// Audit
	admin.GET("/audit-logs", h.AuditLogs.ListAuditLogs, perm(services.PermAuditRead))
	admin.GET("/audit-logs/tables", h.AuditLogs.GetTableNames, perm(services.PermAuditRead))
	admin.GET("/audit-logs/:id", h.AuditLogs.GetAuditLog, perm(services.PermAuditRead))
	admin.GET("/audit-logs/history/:table/:record_id", h.AuditLogs.GetEntityHistory, perm(services.PermAuditRead))
}

func registerStudentRoutes(student *echo.Group, h *Handlers, perm func(string) echo.MiddlewareFunc) {
	student.GET("/branding", h.Academy.GetBranding, perm(services.PermBrandingRead))
	student.GET("/memberships", h.Memberships.MyMemberships, perm(services.PermSelfRead))
	student.GET("/plans", h.Plans.ListPlans, perm(services.PermPlansRead))
	student.GET("/bank-accounts", h.Academy.ListBankAccounts, perm(services.PermBankAccountsRead))

	student.GET("/payments", h.Payments.ListPayments, perm(services.PermPaymentsSelf))
	student.GET("/payments/:id", h.Payments.GetPayment, perm(services.PermPaymentsSelf))
	student.GET("/payments/:id/receipt", h.Payments.Receipt, perm(services.PermPaymentsSelf))
	student.POST("/payments/transfer", h.Payments.SubmitTransfer, perm(services.PermPaymentsSelf))
	student.POST("/payments/mercadopago", h.Payments.StartMercadoPago, perm(services.PermPaymentsSelf))
	student.POST("/payments/flow", h.Payments.StartFlow, perm(services.PermPaymentsSelf))
	student.POST("/payments/:id/cancel", h.Payments.Cancel, perm(services.PermPaymentsSelf))

	student.GET("/schedule", h.Classes.ListInstances, perm(services.PermClassesRead))
	student.POST("/checkin", h.Classes.CheckIn, perm(services.PermAttendanceCheckin))
	student.GET("/attendance", h.Classes.MyAttendance, perm(services.PermSelfRead))

	student.GET("/progress", h.Curriculum.MyProgress, perm(services.PermCurriculumRead))
	student.GET("/curriculum", h.Curriculum.ListBelts, perm(services.PermCurriculumRead))
	student.GET("/curriculum/:id", h.Curriculum.ListItems, perm(services.PermCurriculumRead))

	student.GET("/events", h.Events.ListEvents, perm(services.PermEventsRead))
	student.GET("/events/:id", h.Events.GetEvent, perm(services.PermEventsRead))
	student.POST("/events/:id/register", h.Events.Register, perm(services.PermEventsRegister))
	student.DELETE("/events/:id/register", h.Events.Unregister, perm(services.PermEventsRegister))

	student.GET("/channels", h.Content.ListChannels, perm(services.PermContentRead))
	student.GET("/content", h.Content.ListContents, perm(services.PermContentRead))
	student.GET("/content/:id", h.Content.GetContent, perm(services.PermContentRead))

	student.GET("/evaluations", h.Club.ListEvaluations, perm(services.PermClubRead))
	student.GET("/matches", h.Club.ListMatches, perm(services.PermClubRead))
}
