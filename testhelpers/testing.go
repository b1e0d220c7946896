// Package testhelpers provides fixtures for tests that run against a real
// PostgreSQL database. Tests using it are skipped unless TEST_DATABASE_URL
// is set.
package testhelpers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"dojohub/internal/models"
	"dojohub/pkg/database"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func()

	academies []uuid.UUID
}

// SetupTestDB migrates the test database and opens a pool on it. Every
// academy created through the helpers is removed on cleanup; rows hanging
// off it go with the ON DELETE CASCADE.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	if err := database.MigrateUp(dsn); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	pool, err := database.NewPool(context.Background(), dsn, 4)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	db := &TestDB{Pool: pool}
	db.Cleanup = func() {
		for _, id := range db.academies {
			if _, err := pool.Exec(context.Background(), `DELETE FROM academies WHERE id = $1`, id); err != nil {
				t.Logf("failed to remove test academy %s: %v", id, err)
			}
		}
		pool.Close()
	}
	t.Cleanup(db.Cleanup)
	return db
}

// SetupTestAcademy inserts a TRIAL academy with a unique slug.
func SetupTestAcademy(t *testing.T, db *TestDB, kind models.AcademyKind) *models.Academy {
	t.Helper()

	id := uuid.New()
	trialEnds := time.Now().UTC().Add(14 * 24 * time.Hour)
	academy := &models.Academy{
		ID:          id,
		Name:        "Test Academy",
		Slug:        "test-" + strings.ReplaceAll(id.String()[:8], "-", ""),
		Kind:        kind,
		Status:      models.AcademyStatusTrial,
		TrialEndsAt: &trialEnds,
		Timezone:    "America/Santiago",
		Currency:    "CLP",
	}

	query := `
		INSERT INTO academies (id, name, slug, kind, status, trial_ends_at, timezone, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := db.Pool.Exec(context.Background(), query, academy.ID, academy.Name, academy.Slug, academy.Kind,
		academy.Status, academy.TrialEndsAt, academy.Timezone, academy.Currency)
	if err != nil {
		t.Fatalf("Failed to create test academy: %v", err)
	}

	db.academies = append(db.academies, id)
	return academy
}

// SetupTestUser inserts an ACTIVE user of role in academyID.
func SetupTestUser(t *testing.T, db *TestDB, academyID uuid.UUID, role models.Role) *models.User {
	t.Helper()

	id := uuid.New()
	user := &models.User{
		ID:           id,
		AcademyID:    academyID,
		Email:        fmt.Sprintf("%s-%s@example.com", role, id.String()[:8]),
		PasswordHash: "not-a-real-hash",
		FirstName:    "Test",
		LastName:     strings.ToUpper(string(role[:1])) + string(role[1:]),
		Role:         role,
		Status:       models.UserStatusActive,
	}

	query := `
		INSERT INTO users (id, academy_id, email, password_hash, first_name, last_name, role, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := db.Pool.Exec(context.Background(), query, user.ID, user.AcademyID, user.Email, user.PasswordHash,
		user.FirstName, user.LastName, user.Role, user.Status)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}
