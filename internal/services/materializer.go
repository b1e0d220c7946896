package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dojohub/internal/logging"
	"dojohub/internal/models"
	"dojohub/internal/repositories"
)

// MaterializeResult counts what one materialization run did.
type MaterializeResult struct {
	From             string `json:"from"`
	To               string `json:"to"`
	Academies        int    `json:"academies"`
	ClassesCreated   int    `json:"classes_created"`
	TrainingsCreated int    `json:"trainings_created"`
	Skipped          int    `json:"skipped"`
	Failed           int    `json:"failed"`
}

func (r *MaterializeResult) add(o *MaterializeResult) {
	r.ClassesCreated += o.ClassesCreated
	r.TrainingsCreated += o.TrainingsCreated
	r.Skipped += o.Skipped
	r.Failed += o.Failed
}

// Materializer turns weekly templates into dated class instances and
// training sessions. Running it twice over the same range creates nothing
// new.
type Materializer interface {
	Materialize(ctx context.Context, academyID uuid.UUID, from, to time.Time) (*MaterializeResult, error)
	// MaterializeAll covers [today, today+horizonDays] for every ACTIVE or
	// TRIAL academy, each in its own timezone.
	MaterializeAll(ctx context.Context, now time.Time, horizonDays int) (*MaterializeResult, error)
}

type materializer struct {
	academyRepo  repositories.AcademyRepository
	scheduleRepo repositories.ClassScheduleRepository
	instanceRepo repositories.ClassInstanceRepository
	trainingRepo repositories.TrainingRepository
}

func NewMaterializer(
	academyRepo repositories.AcademyRepository,
	scheduleRepo repositories.ClassScheduleRepository,
	instanceRepo repositories.ClassInstanceRepository,
	trainingRepo repositories.TrainingRepository,
) Materializer {
	return &materializer{
		academyRepo:  academyRepo,
		scheduleRepo: scheduleRepo,
		instanceRepo: instanceRepo,
		trainingRepo: trainingRepo,
	}
}

// slotDates lists the dates in [from, to] clipped to the slot validity that
// fall on the slot weekday.
func slotDates(slot models.WeeklySlot, from, to time.Time) []time.Time {
	start, end, ok := slot.Window(from, to)
	if !ok {
		return nil
	}
	offset := (slot.Weekday - int(start.Weekday()) + 7) % 7
	var dates []time.Time
	for d := start.AddDate(0, 0, offset); !d.After(end); d = d.AddDate(0, 0, 7) {
		dates = append(dates, d)
	}
	return dates
}

func (m *materializer) Materialize(ctx context.Context, academyID uuid.UUID, from, to time.Time) (*MaterializeResult, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	academy, err := m.academyRepo.GetByID(ctx, academyID)
	if err != nil {
		return nil, notFound("academy", err)
	}
	return m.materializeAcademy(ctx, academy, from, to)
}

func (m *materializer) materializeAcademy(ctx context.Context, academy *models.Academy, from, to time.Time) (*MaterializeResult, error) {
	loc := academy.Location()
	result := &MaterializeResult{
		From:      from.Format(time.DateOnly),
		To:        to.Format(time.DateOnly),
		Academies: 1,
	}

	schedules, err := m.scheduleRepo.ListActive(ctx, academy.ID)
	if err != nil {
		return nil, fmt.Errorf("list class schedules: %w", err)
	}
	for _, schedule := range schedules {
		for _, date := range slotDates(schedule.WeeklySlot, from, to) {
			created, err := m.classInstance(ctx, schedule, date, loc)
			tally(ctx, result, &result.ClassesCreated, created, err, schedule.ID, date)
		}
	}

	if !academy.IsClub() {
		return result, nil
	}
	trainings, err := m.trainingRepo.ListSchedules(ctx, academy.ID, true)
	if err != nil {
		return nil, fmt.Errorf("list training schedules: %w", err)
	}
	for _, schedule := range trainings {
		for _, date := range slotDates(schedule.WeeklySlot, from, to) {
			created, err := m.trainingSession(ctx, schedule, date, loc)
			tally(ctx, result, &result.TrainingsCreated, created, err, schedule.ID, date)
		}
	}
	return result, nil
}

func tally(ctx context.Context, result *MaterializeResult, counter *int, created bool, err error, scheduleID uuid.UUID, date time.Time) {
	switch {
	case err != nil:
		result.Failed++
		logging.Ctx(ctx).Error().Err(err).
			Str("schedule_id", scheduleID.String()).
			Str("date", date.Format(time.DateOnly)).
			Msg("failed to materialize occurrence")
	case created:
		*counter++
	default:
		result.Skipped++
	}
}

func (m *materializer) classInstance(ctx context.Context, schedule *models.ClassSchedule, date time.Time, loc *time.Location) (bool, error) {
	exists, err := m.instanceRepo.ExistsForScheduleDate(ctx, schedule.ID, date)
	if err != nil || exists {
		return false, err
	}
	start, end, err := schedule.Occurrence(date, loc)
	if err != nil {
		return false, err
	}
	scheduleID := schedule.ID
	return m.instanceRepo.InsertFromSchedule(ctx, &models.ClassInstance{
		ID:         uuid.New(),
		AcademyID:  schedule.AcademyID,
		ClassID:    schedule.ClassID,
		ScheduleID: &scheduleID,
		Date:       date,
		StartsAt:   start.UTC(),
		EndsAt:     end.UTC(),
		Status:     models.InstanceScheduled,
		CreatedAt:  time.Now().UTC(),
	})
}

func (m *materializer) trainingSession(ctx context.Context, schedule *models.TrainingSchedule, date time.Time, loc *time.Location) (bool, error) {
	exists, err := m.trainingRepo.SessionExists(ctx, schedule.ID, date)
	if err != nil || exists {
		return false, err
	}
	start, end, err := schedule.Occurrence(date, loc)
	if err != nil {
		return false, err
	}
	scheduleID := schedule.ID
	return m.trainingRepo.InsertSessionFromSchedule(ctx, &models.TrainingSession{
		ID:         uuid.New(),
		AcademyID:  schedule.AcademyID,
		ScheduleID: &scheduleID,
		Category:   schedule.Category,
		Date:       date,
		StartsAt:   start.UTC(),
		EndsAt:     end.UTC(),
		Location:   schedule.Location,
		Status:     models.InstanceScheduled,
		CreatedAt:  time.Now().UTC(),
	})
}

func (m *materializer) MaterializeAll(ctx context.Context, now time.Time, horizonDays int) (*MaterializeResult, error) {
	if horizonDays <= 0 || horizonDays > maxInstanceRangeDays {
		return nil, invalidField("horizon_days", "horizon_days must be between 1 and %d", maxInstanceRangeDays)
	}
	academies, err := m.academyRepo.ListByStatus(ctx, models.AcademyStatusActive, models.AcademyStatusTrial)
	if err != nil {
		return nil, fmt.Errorf("list academies: %w", err)
	}

	total := &MaterializeResult{}
	for _, academy := range academies {
		from := localDate(now, academy.Location())
		to := from.AddDate(0, 0, horizonDays)
		if total.From == "" || from.Format(time.DateOnly) < total.From {
			total.From = from.Format(time.DateOnly)
		}
		if to.Format(time.DateOnly) > total.To {
			total.To = to.Format(time.DateOnly)
		}

		result, err := m.materializeAcademy(ctx, academy, from, to)
		if err != nil {
			total.Failed++
			logging.Ctx(ctx).Error().Err(err).Str("academy_id", academy.ID.String()).Msg("materialization failed")
			continue
		}
		total.Academies++
		total.add(result)
	}
	return total, nil
}
