package jobs

import (
	"context"
	"time"

	"dojohub/internal/logging"
	"dojohub/internal/metrics"
	"dojohub/internal/services"
)

const ScheduleMaterializerJob = "schedule-materializer"

// ScheduleMaterializer keeps the next horizonDays of class instances and
// training sessions materialized for every live academy.
type ScheduleMaterializer struct {
	materializer services.Materializer
	horizonDays  int
}

func NewScheduleMaterializer(materializer services.Materializer, horizonDays int) *ScheduleMaterializer {
	return &ScheduleMaterializer{
		materializer: materializer,
		horizonDays:  horizonDays,
	}
}

func (j *ScheduleMaterializer) Run(ctx context.Context, now time.Time) (result *services.MaterializeResult, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordJobRun(ScheduleMaterializerJob, err == nil, time.Since(start))
	}()

	result, err = j.materializer.MaterializeAll(ctx, now, j.horizonDays)
	if err != nil {
		return nil, err
	}

	metrics.RecordJobItems(ScheduleMaterializerJob, "classes_created", result.ClassesCreated)
	metrics.RecordJobItems(ScheduleMaterializerJob, "trainings_created", result.TrainingsCreated)
	metrics.RecordJobItems(ScheduleMaterializerJob, "failed", result.Failed)
	logging.Info().
		Int("academies", result.Academies).
		Int("classes_created", result.ClassesCreated).
		Int("trainings_created", result.TrainingsCreated).
		Int("failed", result.Failed).
		Msg("schedule materialization finished")
	return result, nil
}
