package repositories

import (
	"context"
	"fmt"
	"time"

	"dojohub/internal/models"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type AuditLogsRepository interface {
	// Create a new audit log entry
	Create(ctx context.Context, auditLog *models.AuditLog) error

	// Get audit log by ID within an academy
	GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.AuditLog, error)

	// List audit logs with filtering options
	List(ctx context.Context, academyID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, error)

	// Get audit logs for a specific table and record
	GetByTableAndRecord(ctx context.Context, academyID uuid.UUID, tableName, recordID string, limit, offset int) ([]*models.AuditLog, error)

	// Get distinct table names for an academy
	GetTableNames(ctx context.Context, academyID uuid.UUID) ([]string, error)
}

type auditLogsRepo struct {
	db DBTX
}

func NewAuditLogsRepository(db DBTX) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

func (r *auditLogsRepo) Create(ctx context.Context, auditLog *models.AuditLog) error {
	auditLog.CreatedAt = time.Now()
	if auditLog.ID == uuid.Nil {
		auditLog.ID = uuid.New()
	}

	query := `
		INSERT INTO audit_logs (id, academy_id, table_name, record_id, action, new_values, old_values, changed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	// Marshal JSONB fields
	var newValuesBytes, oldValuesBytes []byte
	var err error

	if auditLog.NewValues != nil {
		newValuesBytes, err = json.Marshal(auditLog.NewValues)
		if err != nil {
			return fmt.Errorf("failed to marshal new_values: %w", err)
		}
	}

	if auditLog.OldValues != nil {
		oldValuesBytes, err = json.Marshal(auditLog.OldValues)
		if err != nil {
			return fmt.Errorf("failed to marshal old_values: %w", err)
		}
	}

	_, err = r.db.Exec(ctx, query,
		auditLog.ID,
		auditLog.AcademyID,
		auditLog.TableName,
		auditLog.RecordID,
		auditLog.Action,
		newValuesBytes,
		oldValuesBytes,
		auditLog.ChangedBy,
		auditLog.CreatedAt,
	)

	return err
}

const auditLogColumns = `id, academy_id, table_name, record_id, action, new_values, old_values, changed_by, created_at`

func scanAuditLog(row scanner) (*models.AuditLog, error) {
	auditLog := &models.AuditLog{}
	var newValuesBytes, oldValuesBytes []byte

	err := row.Scan(
		&auditLog.ID,
		&auditLog.AcademyID,
		&auditLog.TableName,
		&auditLog.RecordID,
		&auditLog.Action,
		&newValuesBytes,
		&oldValuesBytes,
		&auditLog.ChangedBy,
		&auditLog.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Unmarshal JSONB fields
	if len(newValuesBytes) > 0 {
		if err := json.Unmarshal(newValuesBytes, &auditLog.NewValues); err != nil {
			return nil, fmt.Errorf("failed to unmarshal new_values: %w", err)
		}
	}

	if len(oldValuesBytes) > 0 {
		if err := json.Unmarshal(oldValuesBytes, &auditLog.OldValues); err != nil {
			return nil, fmt.Errorf("failed to unmarshal old_values: %w", err)
		}
	}

	return auditLog, nil
}

func (r *auditLogsRepo) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.AuditLog, error) {
	query := `SELECT ` + auditLogColumns + ` FROM audit_logs WHERE academy_id = $1 AND id = $2`
	return scanAuditLog(r.db.QueryRow(ctx, query, academyID, id))
}

func (r *auditLogsRepo) List(ctx context.Context, academyID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{}
	}

	args := newArgList(academyID)
	query := `SELECT ` + auditLogColumns + ` FROM audit_logs WHERE academy_id = $1`
	if filters.TableName != nil {
		query += " AND table_name = " + args.add(*filters.TableName)
	}
	if filters.RecordID != nil {
		query += " AND record_id = " + args.add(*filters.RecordID)
	}
	if filters.Action != nil {
		query += " AND action = " + args.add(*filters.Action)
	}
	if filters.ChangedBy != nil {
		query += " AND changed_by = " + args.add(*filters.ChangedBy)
	}
	if filters.StartDate != nil {
		query += " AND created_at >= " + args.add(*filters.StartDate)
	}
	if filters.EndDate != nil {
		query += " AND created_at <= " + args.add(*filters.EndDate)
	}
	query += " ORDER BY created_at DESC"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %s OFFSET %s", args.add(filters.Limit), args.add(filters.Offset))
	}

	rows, err := r.db.Query(ctx, query, args.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auditLogs []*models.AuditLog
	for rows.Next() {
		auditLog, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		auditLogs = append(auditLogs, auditLog)
	}

	return auditLogs, rows.Err()
}

func (r *auditLogsRepo) GetByTableAndRecord(ctx context.Context, academyID uuid.UUID, tableName, recordID string, limit, offset int) ([]*models.AuditLog, error) {
	filters := &models.AuditLogFilters{
		TableName: &tableName,
		RecordID:  &recordID,
		Limit:     limit,
		Offset:    offset,
	}
	return r.List(ctx, academyID, filters)
}

func (r *auditLogsRepo) GetTableNames(ctx context.Context, academyID uuid.UUID) ([]string, error) {
	query := `
		SELECT DISTINCT table_name
		FROM audit_logs
		WHERE academy_id = $1
		ORDER BY table_name
	`

	rows, err := r.db.Query(ctx, query, academyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tableNames []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tableNames = append(tableNames, tableName)
	}

	return tableNames, rows.Err()
}
