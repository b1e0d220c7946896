package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dojohub/internal/common"
	"dojohub/internal/jobs"
	"dojohub/internal/logging"
	"dojohub/internal/middleware"
	"dojohub/internal/models"
	"dojohub/internal/services"
	"dojohub/internal/validation"
)

// The mocks embed the service interfaces; only the methods a test calls
// are implemented.

type mockPaymentService struct {
	services.PaymentService
	mock.Mock
}

func (m *mockPaymentService) SubmitTransfer(ctx context.Context, academyID, userID uuid.UUID, req *services.SubmitTransferRequest, proof *services.Upload) (*models.Payment, error) {
	args := m.Called(ctx, academyID, userID, req, proof)
	if p := args.Get(0); p != nil {
		return p.(*models.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPaymentService) ListPayments(ctx context.Context, academyID uuid.UUID, filters *models.PaymentFilters) ([]*models.Payment, error) {
	args := m.Called(ctx, academyID, filters)
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *mockPaymentService) Receipt(ctx context.Context, academyID, id uuid.UUID, ownerID *uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, academyID, id, ownerID)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPaymentService) RejectTransfer(ctx context.Context, academyID, actorID, id uuid.UUID, reason string) (*models.Payment, error) {
	args := m.Called(ctx, academyID, actorID, id, reason)
	if p := args.Get(0); p != nil {
		return p.(*models.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPaymentService) HandleMercadoPagoNotification(ctx context.Context, n *services.MercadoPagoNotification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *mockPaymentService) HandleFlowConfirmation(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

type mockUserService struct {
	services.UserService
	mock.Mock
}

func (m *mockUserService) CreateUser(ctx context.Context, academyID uuid.UUID, role models.Role, req *services.CreateUserRequest) (*models.User, error) {
	args := m.Called(ctx, academyID, role, req)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserService) GetUser(ctx context.Context, academyID uuid.UUID, role models.Role, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, academyID, role, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAuthService struct {
	services.AuthService
	mock.Mock
}

func (m *mockAuthService) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

type mockBrandingService struct {
	services.BrandingService
	mock.Mock
}

func (m *mockBrandingService) GetBranding(ctx context.Context, academyID uuid.UUID) (*models.Branding, error) {
	args := m.Called(ctx, academyID)
	if b := args.Get(0); b != nil {
		return b.(*models.Branding), args.Error(1)
	}
	return nil, args.Error(1)
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeSuspension struct{ result *jobs.SuspensionResult }

func (f fakeSuspension) Run(context.Context, time.Time) (*jobs.SuspensionResult, error) {
	return f.result, nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.HTTPErrorHandler
	e.Validator = validation.EchoValidator{}
	return e
}

func as(id identity) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := common.WithIdentity(c.Request().Context(), id.UserID, id.AcademyID, id.Role)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func newIdentity(role models.Role) identity {
	return identity{UserID: uuid.New(), AcademyID: uuid.New(), Role: role}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) common.ErrorResponse {
	t.Helper()
	var resp common.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestSubmitTransfer_ParsesMultipartForm(t *testing.T) {
	caller := newIdentity(models.RoleStudent)
	membershipID := uuid.NewString()
	svc := new(mockPaymentService)
	svc.On("SubmitTransfer", mock.Anything, caller.AcademyID, caller.UserID,
		mock.MatchedBy(func(r *services.SubmitTransferRequest) bool {
			return r.MembershipID != nil && *r.MembershipID == membershipID &&
				r.Amount.Equal(decimal.NewFromInt(25000)) && r.Notes == nil
		}),
		mock.MatchedBy(func(u *services.Upload) bool {
			return u.Filename == "proof.png" && u.Size == int64(len("png-bytes"))
		}),
	).Return(&models.Payment{ID: uuid.New(), Status: models.PaymentPending}, nil)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("membership_id", membershipID))
	require.NoError(t, w.WriteField("amount", "25000"))
	fw, err := w.CreateFormFile("proof", "proof.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	e := newTestEcho()
	e.POST("/transfer", NewPaymentHandlers(svc).SubmitTransfer, as(caller))
	req := httptest.NewRequest(http.MethodPost, "/transfer", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestSubmitTransfer_RequiresProof(t *testing.T) {
	svc := new(mockPaymentService)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("amount", "25000"))
	require.NoError(t, w.Close())

	e := newTestEcho()
	e.POST("/transfer", NewPaymentHandlers(svc).SubmitTransfer, as(newIdentity(models.RoleStudent)))
	req := httptest.NewRequest(http.MethodPost, "/transfer", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "proof is required", decodeError(t, rec).Error.Details["proof"])
	svc.AssertNotCalled(t, "SubmitTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListPayments_StudentsSeeOnlyTheirOwn(t *testing.T) {
	caller := newIdentity(models.RoleStudent)
	other := uuid.New()
	svc := new(mockPaymentService)
	svc.On("ListPayments", mock.Anything, caller.AcademyID, mock.MatchedBy(func(f *models.PaymentFilters) bool {
		return f.UserID != nil && *f.UserID == caller.UserID && f.Status != nil && *f.Status == models.PaymentPaid
	})).Return([]*models.Payment{}, nil)

	e := newTestEcho()
	e.GET("/payments", NewPaymentHandlers(svc).ListPayments, as(caller))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payments?status=paid&user_id="+other.String(), nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestListPayments_UnknownStatus(t *testing.T) {
	e := newTestEcho()
	e.GET("/payments", NewPaymentHandlers(new(mockPaymentService)).ListPayments, as(newIdentity(models.RoleAdmin)))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payments?status=lost", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error.Details, "status")
}

func TestReceipt_ServesPDF(t *testing.T) {
	caller := newIdentity(models.RoleAdmin)
	paymentID := uuid.New()
	svc := new(mockPaymentService)
	svc.On("Receipt", mock.Anything, caller.AcademyID, paymentID, (*uuid.UUID)(nil)).Return([]byte("%PDF-1.3"), nil)

	e := newTestEcho()
	e.GET("/payments/:id/receipt", NewPaymentHandlers(svc).Receipt, as(caller))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payments/"+paymentID.String()+"/receipt", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), paymentID.String())
	assert.Equal(t, "%PDF-1.3", rec.Body.String())
}

func TestRejectTransfer_MapsServiceErrors(t *testing.T) {
	caller := newIdentity(models.RoleAdmin)
	paymentID := uuid.New()
	svc := new(mockPaymentService)
	svc.On("RejectTransfer", mock.Anything, caller.AcademyID, caller.UserID, paymentID, "blurry proof").
		Return(nil, fmt.Errorf("%w: payment is PAID", services.ErrInvalidTransition))

	e := newTestEcho()
	e.POST("/payments/:id/reject", NewPaymentHandlers(svc).RejectTransfer, as(caller))
	req := httptest.NewRequest(http.MethodPost, "/payments/"+paymentID.String()+"/reject", strings.NewReader(`{"reason":"blurry proof"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", decodeError(t, rec).Error.Code)
}

func TestCreateStudent(t *testing.T) {
	caller := newIdentity(models.RoleAdmin)
	svc := new(mockUserService)
	svc.On("CreateUser", mock.Anything, caller.AcademyID, models.RoleStudent, mock.MatchedBy(func(r *services.CreateUserRequest) bool {
		return r.Email == "ana@dojo.cl"
	})).Return(&models.User{ID: uuid.New(), Role: models.RoleStudent}, nil)

	e := newTestEcho()
	e.POST("/students", NewUserHandlers(svc).Create(models.RoleStudent), as(caller))

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"valid", `{"email":"ana@dojo.cl","password":"secret123","first_name":"Ana"}`, http.StatusCreated},
		{"invalid email", `{"email":"ana","password":"secret123","first_name":"Ana"}`, http.StatusBadRequest},
		{"malformed", `{"email":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/students", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
	svc.AssertNumberOfCalls(t, "CreateUser", 1)
}

func TestGetCoach_InvalidID(t *testing.T) {
	e := newTestEcho()
	e.GET("/coaches/:id", NewUserHandlers(new(mockUserService)).Get(models.RoleCoach), as(newIdentity(models.RoleAdmin)))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/coaches/not-a-uuid", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error.Details, "id")
}

func TestHandlers_RequireIdentity(t *testing.T) {
	e := newTestEcho()
	e.GET("/students/:id", NewUserHandlers(new(mockUserService)).Get(models.RoleStudent))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/students/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMercadoPagoWebhook(t *testing.T) {
	svc := new(mockPaymentService)
	svc.On("HandleMercadoPagoNotification", mock.Anything, &services.MercadoPagoNotification{
		Signature: "ts=1700000000,v1=abc",
		RequestID: "req-1",
		Topic:     "payment",
		DataID:    "123456",
	}).Return(nil).Once()
	svc.On("HandleMercadoPagoNotification", mock.Anything, mock.MatchedBy(func(n *services.MercadoPagoNotification) bool {
		return n.Signature == "forged"
	})).Return(fmt.Errorf("%w: invalid mercado pago signature", services.ErrUnauthorized))

	e := newTestEcho()
	e.POST("/webhooks/mercadopago", NewWebhookHandlers(svc).MercadoPago)

	tests := []struct {
		name      string
		signature string
		url       string
		body      string
		status    int
	}{
		{"body payload", "ts=1700000000,v1=abc", "/webhooks/mercadopago", `{"type":"payment","data":{"id":123456}}`, http.StatusOK},
		{"bad signature", "forged", "/webhooks/mercadopago?type=payment&data.id=1", "", http.StatusUnauthorized},
		{"malformed body", "ts=1700000000,v1=abc", "/webhooks/mercadopago", `{"type":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.url, strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			req.Header.Set("x-signature", tt.signature)
			req.Header.Set("x-request-id", "req-1")
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
	svc.AssertExpectations(t)
}

func TestFlowWebhook(t *testing.T) {
	svc := new(mockPaymentService)
	svc.On("HandleFlowConfirmation", mock.Anything, "tok-1").Return(nil)
	svc.On("HandleFlowConfirmation", mock.Anything, "unknown").Return(fmt.Errorf("payment %w", services.ErrNotFound))

	e := newTestEcho()
	e.POST("/webhooks/flow", NewWebhookHandlers(svc).Flow)

	for token, status := range map[string]int{"tok-1": http.StatusOK, "unknown": http.StatusNotFound} {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/flow", strings.NewReader("token="+token))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, status, rec.Code, token)
	}
}

func TestHealthHandlers(t *testing.T) {
	healthy := NewHealthHandlers(fakePinger{}, fakePinger{}, fakePinger{}, "test")
	dbDown := NewHealthHandlers(fakePinger{err: errors.New("connection refused")}, fakePinger{}, nil, "test")

	tests := []struct {
		name    string
		handler echo.HandlerFunc
		status  int
	}{
		{"liveness", dbDown.LivenessCheck, http.StatusOK},
		{"ready", healthy.ReadinessCheck, http.StatusOK},
		{"not ready", dbDown.ReadinessCheck, http.StatusServiceUnavailable},
		{"detailed healthy", healthy.DetailedHealthCheck, http.StatusOK},
		{"detailed degraded", dbDown.DetailedHealthCheck, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			e.GET("/health", tt.handler)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRegisterRoutes_GuardsGroups(t *testing.T) {
	suspension := fakeSuspension{result: &jobs.SuspensionResult{Scanned: 3, Suspended: 2, Failed: 1}}
	h := &Handlers{
		Auth:        &AuthHandlers{},
		Academy:     &AcademyHandlers{},
		Users:       NewUserHandlers(new(mockUserService)),
		Plans:       &PlanHandlers{},
		Memberships: &MembershipHandlers{},
		Payments:    NewPaymentHandlers(new(mockPaymentService)),
		Classes:     &ClassHandlers{},
		Curriculum:  &CurriculumHandlers{},
		Events:      &EventHandlers{},
		Club:        &ClubHandlers{},
		Content:     &ContentHandlers{},
		Dashboard:   &DashboardHandlers{},
		AuditLogs:   &AuditLogsHandlers{},
		Webhooks:    NewWebhookHandlers(new(mockPaymentService)),
		Health:      NewHealthHandlers(fakePinger{}, fakePinger{}, fakePinger{}, "test"),
		Jobs:        NewJobHandlers(suspension, nil, nil, nil),
	}
	denyAll := func(echo.HandlerFunc) echo.HandlerFunc {
		return func(echo.Context) error { return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token") }
	}

	e := newTestEcho()
	RegisterRoutes(e, h, RouteMiddleware{
		JWT:        denyAll,
		RBAC:       middleware.NewRBACMiddleware(services.NewRBACService()),
		Audit:      middleware.NewAuditMiddleware(nil),
		CronSecret: "cron-secret",
	})

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		status int
	}{
		{"liveness is public", http.MethodGet, "/health", "", http.StatusOK},
		{"admin needs a token", http.MethodGet, "/v1/admin/plans", "", http.StatusUnauthorized},
		{"student needs a token", http.MethodGet, "/v1/student/payments", "", http.StatusUnauthorized},
		{"me needs a token", http.MethodGet, "/v1/me", "", http.StatusUnauthorized},
		{"cron needs the secret", http.MethodPost, "/v1/cron/suspend-overdue", "Bearer wrong", http.StatusUnauthorized},
		{"cron with secret", http.MethodPost, "/v1/cron/suspend-overdue", "Bearer cron-secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.auth)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/cron/suspend-overdue", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer cron-secret")
	e.ServeHTTP(rec, req)
	var result jobs.SuspensionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, jobs.SuspensionResult{Scanned: 3, Suspended: 2, Failed: 1}, result)
	assert.Equal(t, middleware.CurrentAPIVersion, rec.Header().Get("X-API-Version"))
}

func TestRegisterRoutes_BrandingReadableByEveryRole(t *testing.T) {
	tests := []struct {
		name string
		role models.Role
		path string
	}{
		{"admin", models.RoleAdmin, "/v1/admin/branding"},
		{"coach", models.RoleCoach, "/v1/admin/branding"},
		{"student", models.RoleStudent, "/v1/student/branding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := newIdentity(tt.role)
			branding := new(mockBrandingService)
			branding.On("GetBranding", mock.Anything, caller.AcademyID).
				Return(&models.Branding{AcademyID: caller.AcademyID, PrimaryColor: "#1E3A8A"}, nil).Once()

			e := newTestEcho()
			RegisterRoutes(e, &Handlers{
				Auth:    &AuthHandlers{},
				Academy: NewAcademyHandlers(nil, branding, nil),
				Jobs:    NewJobHandlers(nil, nil, nil, nil),
			}, RouteMiddleware{
				JWT:   as(caller),
				RBAC:  middleware.NewRBACMiddleware(services.NewRBACService()),
				Audit: middleware.NewAuditMiddleware(nil),
			})

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), "#1E3A8A")
			branding.AssertExpectations(t)
		})
	}
}

func TestLogout_RevokeFailureIsLogged(t *testing.T) {
	auth := new(mockAuthService)
	auth.On("RevokeRefreshToken", mock.Anything, "refresh-123").Return(errors.New("redis timeout")).Once()
	h := NewAuthHandlers(auth, nil, nil)

	var logs bytes.Buffer
	e := newTestEcho()
	e.POST("/logout", h.Logout)

	req := httptest.NewRequest(http.MethodPost, "/logout", strings.NewReader(`{"refresh_token":"refresh-123"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = req.WithContext(logging.WithLogger(req.Context(), zerolog.New(&logs)))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, logs.String(), "failed to revoke refresh token on logout")
	assert.Contains(t, logs.String(), "redis timeout")
	auth.AssertExpectations(t)
}
