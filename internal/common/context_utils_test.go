package common

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dojohub/internal/models"
)

func TestIdentityRoundTrip(t *testing.T) {
	userID, academyID := uuid.New(), uuid.New()
	ctx := WithIdentity(context.Background(), userID, academyID, models.RoleCoach)

	gotUser, ok := GetUserIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, userID, gotUser)

	gotAcademy, ok := GetAcademyIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, academyID, gotAcademy)

	role, ok := GetRoleFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, models.RoleCoach, role)

	_, ok = GetRoleFromContext(context.Background())
	assert.False(t, ok)
}

func TestValidateUUID(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expectErr string
	}{
		{name: "valid", input: "550e8400-e29b-41d4-a716-446655440000"},
		{name: "trimmed", input: " 550e8400-e29b-41d4-a716-446655440000 "},
		{name: "empty", input: "  ", expectErr: "id is required"},
		{name: "short", input: "550e8400-e29b-41d4-a716-44665544000", expectErr: "exactly 36 characters"},
		{name: "bad char", input: "550e8400-e29b-41d4-g716-446655440000", expectErr: "invalid characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ValidateUUID(tt.input, "id")
			if tt.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectErr)
				assert.Equal(t, uuid.Nil, id)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, id)
		})
	}
}

func TestDates(t *testing.T) {
	d, err := ParseDate("2026-03-02", "date")
	require.NoError(t, err)
	assert.Equal(t, time.March, d.Month())

	_, err = ParseDate("02/03/2026", "date")
	assert.EqualError(t, err, "date must be in YYYY-MM-DD format")

	none, err := ParseOptionalDate("", "date")
	require.NoError(t, err)
	assert.Nil(t, none)

	assert.NoError(t, ValidateDateRange(d, d.AddDate(0, 0, 92), 92))
	assert.Error(t, ValidateDateRange(d, d.AddDate(0, 0, 93), 92))
	assert.Error(t, ValidateDateRange(d, d.AddDate(0, 0, -1), 92))

	ts := time.Date(2026, 3, 2, 17, 45, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), TruncateToDay(ts))
}

func TestPaginationAndStrings(t *testing.T) {
	limit, offset, err := ValidatePaginationParams(0, -5)
	require.NoError(t, err)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 0, offset)

	limit, _, _ = ValidatePaginationParams(5000, 0)
	assert.Equal(t, 200, limit)

	assert.Equal(t, "abc", SanitizeSearchQuery(" a%b_c "))
	assert.Nil(t, StringPtr("   "))
	assert.Equal(t, "x", *StringPtr(" x "))
}
