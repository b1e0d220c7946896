package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"dojohub/internal/caching"
	"dojohub/internal/common"
	"dojohub/internal/logging"
	"dojohub/internal/models"
	"dojohub/internal/repositories"
)

const checkInIssuer = "dojohub-checkin"

// AttendanceConfig sets the check-in window and QR rendering.
type AttendanceConfig struct {
	Secret     string
	OpenBefore time.Duration
	CloseAfter time.Duration
	QRSize     int
	Lookback   time.Duration
}

type ManualAttendanceRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

type CheckInRequest struct {
	Token string `json:"token" validate:"required"`
}

type checkInClaims struct {
	AcademyID  string `json:"academy_id"`
	InstanceID string `json:"instance_id"`
	jwt.RegisteredClaims
}

type AttendanceService interface {
	IssueQR(ctx context.Context, academyID, instanceID uuid.UUID) (*models.CheckInQR, error)
	CheckIn(ctx context.Context, academyID, userID uuid.UUID, token string) (*models.Attendance, error)
	RecordManual(ctx context.Context, academyID, actorID, instanceID uuid.UUID, req *ManualAttendanceRequest) (*models.Attendance, error)
	DeleteAttendance(ctx context.Context, academyID, id uuid.UUID) error
	ListForInstance(ctx context.Context, academyID, instanceID uuid.UUID) ([]*models.Attendance, error)
	ListForUser(ctx context.Context, academyID, userID uuid.UUID, limit, offset int) ([]*models.Attendance, error)
	Stats(ctx context.Context, academyID, userID uuid.UUID) (*models.AttendanceStats, error)
}

type attendanceService struct {
	attendanceRepo repositories.AttendanceRepository
	instanceRepo   repositories.ClassInstanceRepository
	userRepo       repositories.UserRepository
	membershipRepo repositories.MembershipRepository
	cacheSvc       caching.CacheService
	cfg            AttendanceConfig
	signingKey     []byte
	now            func() time.Time
}

func NewAttendanceService(
	attendanceRepo repositories.AttendanceRepository,
	instanceRepo repositories.ClassInstanceRepository,
	userRepo repositories.UserRepository,
	membershipRepo repositories.MembershipRepository,
	cacheSvc caching.CacheService,
	cfg AttendanceConfig,
) AttendanceService {
	if cfg.QRSize <= 0 {
		cfg.QRSize = 256
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 30 * 24 * time.Hour
	}
	return &attendanceService{
		attendanceRepo: attendanceRepo,
		instanceRepo:   instanceRepo,
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		cacheSvc:       cacheSvc,
		cfg:            cfg,
		signingKey:     []byte(cfg.Secret + ":checkin"),
		now:            time.Now,
	}
}

// window returns when check-in opens and closes for inst.
func (s *attendanceService) window(inst *models.ClassInstance) (time.Time, time.Time) {
	return inst.StartsAt.Add(-s.cfg.OpenBefore), inst.EndsAt.Add(s.cfg.CloseAfter)
}

func (s *attendanceService) checkWindow(inst *models.ClassInstance, at time.Time) error {
	if inst.Status == models.InstanceCancelled {
		return invalidField("instance_id", "class instance is cancelled")
	}
	opens, closes := s.window(inst)
	if at.Before(opens) || at.After(closes) {
		return invalidField("token", "check-in window closed")
	}
	return nil
}

func (s *attendanceService) loadInstance(ctx context.Context, academyID, instanceID uuid.UUID) (*models.ClassInstance, error) {
	inst, err := s.instanceRepo.GetByID(ctx, academyID, instanceID)
	if err != nil {
		return nil, notFound("class instance", err)
	}
	return inst, nil
}

// IssueQR signs a token that expires when the check-in window closes and
// renders it as a PNG QR code.
func (s *attendanceService) IssueQR(ctx context.Context, academyID, instanceID uuid.UUID) (*models.CheckInQR, error) {
	inst, err := s.loadInstance(ctx, academyID, instanceID)
	if err != nil {
		return nil, err
	}
	if inst.Status == models.InstanceCancelled {
		return nil, invalidField("instance_id", "class instance is cancelled")
	}
	now := s.now()
	_, closes := s.window(inst)
	if !now.Before(closes) {
		return nil, invalidField("instance_id", "check-in window closed")
	}

	claims := checkInClaims{
		AcademyID:  academyID.String(),
		InstanceID: instanceID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    checkInIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(closes),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return nil, fmt.Errorf("sign check-in token: %w", err)
	}
	png, err := qrcode.Encode(token, qrcode.Medium, s.cfg.QRSize)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}
	return &models.CheckInQR{InstanceID: instanceID, Token: token, ExpiresAt: closes.UTC(), PNG: png}, nil
}

func (s *attendanceService) parseCheckIn(token string) (*checkInClaims, error) {
	claims := &checkInClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(checkInIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, invalidField("token", "check-in window closed")
		}
		return nil, invalidField("token", "invalid check-in token")
	}
	return claims, nil
}

// canAttend requires an ACTIVE student holding an ACTIVE or TRIAL membership.
func (s *attendanceService) canAttend(ctx context.Context, academyID, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, academyID, userID)
	if err != nil {
		return notFound("user", err)
	}
	if user.Status != models.UserStatusActive {
		return forbidden("account is %s", user.Status)
	}
	m, err := s.membershipRepo.FindLiveByUser(ctx, academyID, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return forbidden("no active membership")
		}
		return err
	}
	if m.Status != models.MembershipActive && m.Status != models.MembershipTrial {
		return forbidden("membership is %s", m.Status)
	}
	return nil
}

func (s *attendanceService) CheckIn(ctx context.Context, academyID, userID uuid.UUID, token string) (*models.Attendance, error) {
	claims, err := s.parseCheckIn(token)
	if err != nil {
		return nil, err
	}
	if claims.AcademyID != academyID.String() {
		return nil, forbidden("check-in token belongs to another academy")
	}
	instanceID, err := uuid.Parse(claims.InstanceID)
	if err != nil {
		return nil, invalidField("token", "invalid check-in token")
	}
	if err := s.canAttend(ctx, academyID, userID); err != nil {
		return nil, err
	}

	inst, err := s.loadInstance(ctx, academyID, instanceID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.checkWindow(inst, now); err != nil {
		return nil, err
	}

	_, closes := s.window(inst)
	key := checkinKey(instanceID, userID)
	claimed, err := s.cacheSvc.ClaimOnce(ctx, key, closes.Sub(now)+time.Minute)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("check-in replay guard unavailable")
	} else if !claimed {
		return nil, conflict("already checked in")
	}

	a, err := s.create(ctx, &models.Attendance{
		ID:          uuid.New(),
		AcademyID:   academyID,
		InstanceID:  instanceID,
		UserID:      userID,
		CheckedInAt: now.UTC(),
		Method:      models.AttendanceQR,
	})
	if err != nil && claimed && !errors.Is(err, ErrConflict) {
		// no row was written, so the student must be able to retry
		s.releaseCheckin(ctx, instanceID, userID)
	}
	return a, err
}

func checkinKey(instanceID, userID uuid.UUID) string {
	return fmt.Sprintf("checkin:%s:%s", instanceID, userID)
}

func (s *attendanceService) releaseCheckin(ctx context.Context, instanceID, userID uuid.UUID) {
	key := checkinKey(instanceID, userID)
	if err := s.cacheSvc.Delete(ctx, key); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to release check-in guard")
	}
}

// RecordManual lets staff record attendance outside the QR window.
func (s *attendanceService) RecordManual(ctx context.Context, academyID, actorID, instanceID uuid.UUID, req *ManualAttendanceRequest) (*models.Attendance, error) {
	userID, err := common.ValidateUUID(req.UserID, "user_id")
	if err != nil {
		return nil, invalidField("user_id", "%s", err.Error())
	}
	inst, err := s.loadInstance(ctx, academyID, instanceID)
	if err != nil {
		return nil, err
	}
	if inst.Status == models.InstanceCancelled {
		return nil, invalidField("instance_id", "class instance is cancelled")
	}
	if _, err := loadStudent(ctx, s.userRepo, academyID, userID, "user_id"); err != nil {
		return nil, err
	}

	return s.create(ctx, &models.Attendance{
		ID:          uuid.New(),
		AcademyID:   academyID,
		InstanceID:  instanceID,
		UserID:      userID,
		CheckedInAt: s.now().UTC(),
		Method:      models.AttendanceManual,
		RecordedBy:  &actorID,
	})
}

func (s *attendanceService) create(ctx context.Context, a *models.Attendance) (*models.Attendance, error) {
	if err := s.attendanceRepo.Create(ctx, a); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, conflict("already checked in")
		}
		return nil, fmt.Errorf("create attendance: %w", err)
	}
	logging.Ctx(ctx).Info().
		Str("instance_id", a.InstanceID.String()).
		Str("user_id", a.UserID.String()).
		Str("method", string(a.Method)).
		Msg("attendance recorded")
	return a, nil
}

// DeleteAttendance removes the record and lets the student check in again
// by QR.
func (s *attendanceService) DeleteAttendance(ctx context.Context, academyID, id uuid.UUID) error {
	a, err := s.attendanceRepo.GetByID(ctx, academyID, id)
	if err != nil {
		return notFound("attendance", err)
	}
	if err := s.attendanceRepo.Delete(ctx, academyID, id); err != nil {
		return notFound("attendance", err)
	}
	s.releaseCheckin(ctx, a.InstanceID, a.UserID)
	return nil
}

func (s *attendanceService) ListForInstance(ctx context.Context, academyID, instanceID uuid.UUID) ([]*models.Attendance, error) {
	if _, err := s.loadInstance(ctx, academyID, instanceID); err != nil {
		return nil, err
	}
	return s.attendanceRepo.ListForInstance(ctx, academyID, instanceID)
}

func (s *attendanceService) ListForUser(ctx context.Context, academyID, userID uuid.UUID, limit, offset int) ([]*models.Attendance, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, invalidField("offset", "%s", err.Error())
	}
	return s.attendanceRepo.ListForUser(ctx, academyID, userID, limit, offset)
}

func (s *attendanceService) Stats(ctx context.Context, academyID, userID uuid.UUID) (*models.AttendanceStats, error) {
	if _, err := s.userRepo.GetByID(ctx, academyID, userID); err != nil {
		return nil, notFound("user", err)
	}
	return s.attendanceRepo.Stats(ctx, academyID, userID, s.now().Add(-s.cfg.Lookback))
}
