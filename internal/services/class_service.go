package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dojohub/internal/common"
	"dojohub/internal/models"
	"dojohub/internal/repositories"
	"dojohub/internal/validation"
)

const maxInstanceRangeDays = 92

type ClassRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Discipline  string  `json:"discipline" validate:"required,max=60"`
	CoachID     *string `json:"coach_id" validate:"omitempty,uuid"`
	Capacity    *int    `json:"capacity" validate:"omitempty,gte=1,lte=500"`
	Level       *string `json:"level" validate:"omitempty,max=60"`
}

type ScheduleRequest struct {
	ClassID         string  `json:"class_id" validate:"required,uuid"`
	Weekday         *int    `json:"weekday" validate:"required,weekday"`
	StartTime       string  `json:"start_time" validate:"required,hhmm"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,gte=15,lte=480"`
	ValidFrom       string  `json:"valid_from" validate:"required,datetime=2006-01-02"`
	ValidUntil      *string `json:"valid_until" validate:"omitempty,datetime=2006-01-02"`
	Active          *bool   `json:"active"`
}

type InstanceRequest struct {
	ClassID   string    `json:"class_id" validate:"required,uuid"`
	StartsAt  time.Time `json:"starts_at" validate:"required"`
	EndsAt    time.Time `json:"ends_at" validate:"required"`
}

type ClassService interface {
	CreateClass(ctx context.Context, academyID uuid.UUID, req *ClassRequest) (*models.Class, error)
	GetClass(ctx context.Context, academyID, id uuid.UUID) (*models.Class, error)
	UpdateClass(ctx context.Context, academyID, id uuid.UUID, req *ClassRequest) (*models.Class, error)
	DeleteClass(ctx context.Context, academyID, id uuid.UUID) error
	ListClasses(ctx context.Context, academyID uuid.UUID) ([]*models.Class, error)

	CreateSchedule(ctx context.Context, academyID uuid.UUID, req *ScheduleRequest) (*models.ClassSchedule, error)
	GetSchedule(ctx context.Context, academyID, id uuid.UUID) (*models.ClassSchedule, error)
	UpdateSchedule(ctx context.Context, academyID, id uuid.UUID, req *ScheduleRequest) (*models.ClassSchedule, error)
	DeleteSchedule(ctx context.Context, academyID, id uuid.UUID) error
	ListSchedules(ctx context.Context, academyID uuid.UUID, classID *uuid.UUID) ([]*models.ClassSchedule, error)

	CreateInstance(ctx context.Context, academyID uuid.UUID, req *InstanceRequest) (*models.ClassInstance, error)
	GetInstance(ctx context.Context, academyID, id uuid.UUID) (*models.ClassInstance, error)
	CancelInstance(ctx context.Context, academyID, id uuid.UUID) (*models.ClassInstance, error)
	// ListInstances hides non-SCHEDULED instances from students.
	ListInstances(ctx context.Context, academyID uuid.UUID, role models.Role, filters *models.InstanceFilters) ([]*models.ClassInstance, error)
}

type classService struct {
	classRepo    repositories.ClassRepository
	scheduleRepo repositories.ClassScheduleRepository
	instanceRepo repositories.ClassInstanceRepository
	userRepo     repositories.UserRepository
	academyRepo  repositories.AcademyRepository
}

func NewClassService(
	classRepo repositories.ClassRepository,
	scheduleRepo repositories.ClassScheduleRepository,
	instanceRepo repositories.ClassInstanceRepository,
	userRepo repositories.UserRepository,
	academyRepo repositories.AcademyRepository,
) ClassService {
	return &classService{
		classRepo:    classRepo,
		scheduleRepo: scheduleRepo,
		instanceRepo: instanceRepo,
		userRepo:     userRepo,
		academyRepo:  academyRepo,
	}
}

func (s *classService) applyClass(ctx context.Context, academyID uuid.UUID, class *models.Class, req *ClassRequest) error {
	class.Name = strings.TrimSpace(req.Name)
	class.Description = req.Description
	class.Discipline = strings.TrimSpace(req.Discipline)
	class.Capacity = req.Capacity
	class.Level = req.Level
	class.CoachID = nil

	if req.CoachID != nil && *req.CoachID != "" {
		coachID, err := common.ValidateUUID(*req.CoachID, "coach_id")
		if err != nil {
			return invalidField("coach_id", "%s", err.Error())
		}
		coach, err := s.userRepo.GetByID(ctx, academyID, coachID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return invalidField("coach_id", "coach_id does not exist")
			}
			return err
		}
		if coach.Role != models.RoleCoach && coach.Role != models.RoleAdmin {
			return invalidField("coach_id", "coach_id must be a coach or admin")
		}
		class.CoachID = &coach.ID
	}
	return nil
}

func (s *classService) CreateClass(ctx context.Context, academyID uuid.UUID, req *ClassRequest) (*models.Class, error) {
	now := time.Now().UTC()
	class := &models.Class{
		ID:        uuid.New(),
		AcademyID: academyID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.applyClass(ctx, academyID, class, req); err != nil {
		return nil, err
	}
	if err := s.classRepo.Create(ctx, class); err != nil {
		return nil, fmt.Errorf("create class: %w", err)
	}
	return class, nil
}

func (s *classService) GetClass(ctx context.Context, academyID, id uuid.UUID) (*models.Class, error) {
	class, err := s.classRepo.GetByID(ctx, academyID, id)
	if err != nil {
		return nil, notFound("class", err)
	}
	return class, nil
}

func (s *classService) UpdateClass(ctx context.Context, academyID, id uuid.UUID, req *ClassRequest) (*models.Class, error) {
	class, err := s.GetClass(ctx, academyID, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyClass(ctx, academyID, class, req); err != nil {
		return nil, err
	}
	class.UpdatedAt = time.Now().UTC()
	if err := s.classRepo.Update(ctx, class); err != nil {
		return nil, notFound("class", err)
	}
	return class, nil
}

func (s *classService) DeleteClass(ctx context.Context, academyID, id uuid.UUID) error {
	return notFound("class", s.classRepo.Delete(ctx, academyID, id))
}

func (s *classService) ListClasses(ctx context.Context, academyID uuid.UUID) ([]*models.Class, error) {
	return s.classRepo.List(ctx, academyID)
}

// parseSlot validates the weekly template part shared by class and
// training schedules.
func parseSlot(weekday *int, startTime string, duration int, validFrom string, validUntil *string, active *bool) (models.WeeklySlot, error) {
	slot := models.WeeklySlot{StartTime: startTime, DurationMinutes: duration, Active: true}
	if weekday == nil || *weekday < 0 || *weekday > 6 {
		return slot, invalidField("weekday", "weekday must be between 0 (Sunday) and 6")
	}
	slot.Weekday = *weekday
	if duration <= 0 {
		return slot, invalidField("duration_minutes", "duration_minutes must be positive")
	}
	if !validation.IsHHMM(startTime) {
		return slot, invalidField("start_time", "start_time must be a 24h time (HH:MM)")
	}

	from, err := common.ParseDate(validFrom, "valid_from")
	if err != nil {
		return slot, invalidField("valid_from", "%s", err.Error())
	}
	slot.ValidFrom = from
	if validUntil != nil {
		until, err := common.ParseOptionalDate(*validUntil, "valid_until")
		if err != nil {
			return slot, invalidField("valid_until", "%s", err.Error())
		}
		if until != nil && until.Before(from) {
			return slot, invalidField("valid_until", "valid_until must not be before valid_from")
		}
		slot.ValidUntil = until
	}
	if active != nil {
		slot.Active = *active
	}
	return slot, nil
}

func (s *classService) CreateSchedule(ctx context.Context, academyID uuid.UUID, req *ScheduleRequest) (*models.ClassSchedule, error) {
	classID, err := common.ValidateUUID(req.ClassID, "class_id")
	if err != nil {
		return nil, invalidField("class_id", "%s", err.Error())
	}
	if _, err := s.classRepo.GetByID(ctx, academyID, classID); err != nil {
		if repositories.IsNotFound(err) {
			return nil, invalidField("class_id", "class_id does not exist")
		}
		return nil, err
	}
	slot, err := parseSlot(req.Weekday, req.StartTime, req.DurationMinutes, req.ValidFrom, req.ValidUntil, req.Active)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	schedule := &models.ClassSchedule{
		ID:         uuid.New(),
		AcademyID:  academyID,
		ClassID:    classID,
		WeeklySlot: slot,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		return nil, fmt.Errorf("create schedule: %w", err)
	}
	return schedule, nil
}

func (s *classService) GetSchedule(ctx context.Context, academyID, id uuid.UUID) (*models.ClassSchedule, error) {
	schedule, err := s.scheduleRepo.GetByID(ctx, academyID, id)
	if err != nil {
		return nil, notFound("schedule", err)
	}
	return schedule, nil
}

// UpdateSchedule changes the template only. Instances already materialized
// keep their times.
func (s *classService) UpdateSchedule(ctx context.Context, academyID, id uuid.UUID, req *ScheduleRequest) (*models.ClassSchedule, error) {
	schedule, err := s.GetSchedule(ctx, academyID, id)
	if err != nil {
		return nil, err
	}
	slot, err := parseSlot(req.Weekday, req.StartTime, req.DurationMinutes, req.ValidFrom, req.ValidUntil, req.Active)
	if err != nil {
		return nil, err
	}
	schedule.WeeklySlot = slot
	schedule.UpdatedAt = time.Now().UTC()
	if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
		return nil, notFound("schedule", err)
	}
	return schedule, nil
}

func (s *classService) DeleteSchedule(ctx context.Context, academyID, id uuid.UUID) error {
	return notFound("schedule", s.scheduleRepo.Delete(ctx, academyID, id))
}

func (s *classService) ListSchedules(ctx context.Context, academyID uuid.UUID, classID *uuid.UUID) ([]*models.ClassSchedule, error) {
	return s.scheduleRepo.List(ctx, academyID, classID)
}

func (s *classService) CreateInstance(ctx context.Context, academyID uuid.UUID, req *InstanceRequest) (*models.ClassInstance, error) {
	classID, err := common.ValidateUUID(req.ClassID, "class_id")
	if err != nil {
		return nil, invalidField("class_id", "%s", err.Error())
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, invalidField("ends_at", "ends_at must be after starts_at")
	}
	class, err := s.classRepo.GetByID(ctx, academyID, classID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, invalidField("class_id", "class_id does not exist")
		}
		return nil, err
	}
	academy, err := s.academyRepo.GetByID(ctx, academyID)
	if err != nil {
		return nil, notFound("academy", err)
	}

	instance := &models.ClassInstance{
		ID:        uuid.New(),
		AcademyID: academyID,
		ClassID:   classID,
		Date:      localDate(req.StartsAt, academy.Location()),
		StartsAt:  req.StartsAt.UTC(),
		EndsAt:    req.EndsAt.UTC(),
		Status:    models.InstanceScheduled,
		ClassName: class.Name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.instanceRepo.Create(ctx, instance); err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	return instance, nil
}

func (s *classService) GetInstance(ctx context.Context, academyID, id uuid.UUID) (*models.ClassInstance, error) {
	instance, err := s.instanceRepo.GetByID(ctx, academyID, id)
	if err != nil {
		return nil, notFound("class instance", err)
	}
	return instance, nil
}

func (s *classService) CancelInstance(ctx context.Context, academyID, id uuid.UUID) (*models.ClassInstance, error) {
	instance, err := s.GetInstance(ctx, academyID, id)
	if err != nil {
		return nil, err
	}
	if instance.Status == models.InstanceCancelled {
		return instance, nil
	}
	if instance.Status != models.InstanceScheduled {
		return nil, fmt.Errorf("%w: instance is %s", ErrInvalidTransition, instance.Status)
	}
	if err := s.instanceRepo.UpdateStatus(ctx, academyID, id, models.InstanceCancelled); err != nil {
		return nil, notFound("class instance", err)
	}
	instance.Status = models.InstanceCancelled
	return instance, nil
}

func (s *classService) ListInstances(ctx context.Context, academyID uuid.UUID, role models.Role, filters *models.InstanceFilters) ([]*models.ClassInstance, error) {
	if filters == nil {
		filters = &models.InstanceFilters{}
	}
	if filters.From.IsZero() {
		filters.From = common.TruncateToDay(time.Now().UTC())
	}
	if filters.To.IsZero() {
		filters.To = filters.From.AddDate(0, 0, 7)
	}
	if err := checkRange(filters.From, filters.To); err != nil {
		return nil, err
	}
	if role == models.RoleStudent {
		scheduled := models.InstanceScheduled
		filters.Status = &scheduled
	}
	return s.instanceRepo.List(ctx, academyID, filters)
}

// checkRange enforces to >= from and a span of at most 92 days.
func checkRange(from, to time.Time) error {
	if err := common.ValidateDateRange(from, to, maxInstanceRangeDays); err != nil {
		return invalidField("to", "%s", err.Error())
	}
	return nil
}
