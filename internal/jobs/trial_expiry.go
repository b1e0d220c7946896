package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dojohub/internal/logging"
	"dojohub/internal/metrics"
	"dojohub/internal/repositories"
)

const TrialExpiryJob = "trial-expiry"

type TrialExpiryResult struct {
	ExpiredMemberships int64 `json:"expired_memberships"`
	SuspendedAcademies int64 `json:"suspended_academies"`
}

// TrialExpiry ends member trials and academy trials that ran out.
type TrialExpiry struct {
	membershipRepo repositories.MembershipRepository
	academyRepo    repositories.AcademyRepository
}

func NewTrialExpiry(membershipRepo repositories.MembershipRepository, academyRepo repositories.AcademyRepository) *TrialExpiry {
	return &TrialExpiry{
		membershipRepo: membershipRepo,
		academyRepo:    academyRepo,
	}
}

// Run performs both updates even when the first one fails.
func (j *TrialExpiry) Run(ctx context.Context, now time.Time) (result *TrialExpiryResult, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordJobRun(TrialExpiryJob, err == nil, time.Since(start))
	}()

	result = &TrialExpiryResult{}
	var errs []error

	expired, err := j.membershipRepo.ExpireTrials(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to expire membership trials: %w", err))
	}
	result.ExpiredMemberships = expired

	suspended, err := j.academyRepo.SuspendExpiredTrials(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to suspend expired academy trials: %w", err))
	}
	result.SuspendedAcademies = suspended

	metrics.RecordJobItems(TrialExpiryJob, "expired_memberships", int(expired))
	metrics.RecordJobItems(TrialExpiryJob, "suspended_academies", int(suspended))
	logging.Info().
		Int64("expired_memberships", expired).
		Int64("suspended_academies", suspended).
		Msg("trial expiry finished")

	if err := errors.Join(errs...); err != nil {
		return result, err
	}
	return result, nil
}
