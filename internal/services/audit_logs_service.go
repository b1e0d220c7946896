package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"dojohub/internal/models"
	"dojohub/internal/repositories"
)

type AuditLogsService interface {
	// Create audit log entry
	LogActivity(ctx context.Context, academyID uuid.UUID, tableName, recordID, action string, changedBy *uuid.UUID, oldValues, newValues models.JSONB) error

	// Query audit logs
	GetAuditLog(ctx context.Context, academyID, auditLogID uuid.UUID) (*models.AuditLog, error)
	ListAuditLogs(ctx context.Context, academyID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
	GetEntityHistory(ctx context.Context, academyID uuid.UUID, tableName, recordID string, limit, offset int) ([]*models.AuditLog, error)
	GetTableNames(ctx context.Context, academyID uuid.UUID) ([]string, error)

	ValidateAuditFilters(filters *models.AuditLogFilters) error
}

type auditLogsService struct {
	auditLogsRepo repositories.AuditLogsRepository
}

func NewAuditLogsService(auditLogsRepo repositories.AuditLogsRepository) AuditLogsService {
	return &auditLogsService{
		auditLogsRepo: auditLogsRepo,
	}
}

// LogActivity creates a new audit log entry with validation
func (s *auditLogsService) LogActivity(ctx context.Context, academyID uuid.UUID, tableName, recordID, action string, changedBy *uuid.UUID, oldValues, newValues models.JSONB) error {
	return writeAudit(ctx, s.auditLogsRepo, academyID, tableName, recordID, action, changedBy, oldValues, newValues)
}

func (s *auditLogsService) GetAuditLog(ctx context.Context, academyID, auditLogID uuid.UUID) (*models.AuditLog, error) {
	log, err := s.auditLogsRepo.GetByID(ctx, academyID, auditLogID)
	if err != nil {
		return nil, notFound("audit log", err)
	}
	return log, nil
}

// ListAuditLogs retrieves multiple audit log entries with filtering
func (s *auditLogsService) ListAuditLogs(ctx context.Context, academyID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{Limit: 50}
	}
	if err := s.ValidateAuditFilters(filters); err != nil {
		return nil, err
	}
	if filters.Limit <= 0 {
		filters.Limit = 50
	}

	return s.auditLogsRepo.List(ctx, academyID, filters)
}

// GetEntityHistory retrieves audit history for a specific entity
func (s *auditLogsService) GetEntityHistory(ctx context.Context, academyID uuid.UUID, tableName, recordID string, limit, offset int) ([]*models.AuditLog, error) {
	return s.auditLogsRepo.GetByTableAndRecord(ctx, academyID, tableName, recordID, limit, offset)
}

// GetTableNames returns distinct table names that have audit logs
func (s *auditLogsService) GetTableNames(ctx context.Context, academyID uuid.UUID) ([]string, error) {
	return s.auditLogsRepo.GetTableNames(ctx, academyID)
}

// ValidateAuditFilters bounds date ranges and page sizes
func (s *auditLogsService) ValidateAuditFilters(filters *models.AuditLogFilters) error {
	if filters == nil {
		return nil
	}

	if filters.StartDate != nil && filters.EndDate != nil {
		if filters.EndDate.Before(*filters.StartDate) {
			return invalidField("end_date", "end_date cannot be before start_date")
		}
		if filters.EndDate.Sub(*filters.StartDate) > 365*24*time.Hour {
			return invalidField("end_date", "date range cannot exceed 1 year")
		}
	}

	if filters.Limit > 1000 {
		return invalidField("limit", "maximum limit is 1000 records")
	}

	return nil
}

// writeAudit inserts an entry through repo, which may be bound to a
// transaction.
func writeAudit(ctx context.Context, repo repositories.AuditLogsRepository, academyID uuid.UUID, tableName, recordID, action string, changedBy *uuid.UUID, oldValues, newValues models.JSONB) error {
	if tableName == "" {
		return errors.New("table_name is required")
	}
	if action == "" {
		return errors.New("action is required")
	}

	return repo.Create(ctx, &models.AuditLog{
		ID:        uuid.New(),
		AcademyID: academyID,
		TableName: tableName,
		RecordID:  recordID,
		Action:    action,
		NewValues: newValues,
		OldValues: oldValues,
		ChangedBy: changedBy,
		CreatedAt: time.Now(),
	})
}

// statusValues is the audit payload of a status change.
func statusValues(status string) models.JSONB {
	return models.JSONB{"status": status}
}
