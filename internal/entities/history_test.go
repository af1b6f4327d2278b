package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormattedChange(t *testing.T) {
	tests := []struct {
		name  string
		entry HistoryEntry
		want  string
	}{
		{
			name:  "created",
			entry: HistoryEntry{Field: FieldCreated, NewValue: sp(CreatedValue)},
			want:  "Created: task created",
		},
		{
			name:  "status",
			entry: HistoryEntry{Field: FieldStatus, OldValue: sp("Pending"), NewValue: sp("Completed")},
			want:  "Status: Pending → Completed",
		},
		{
			name:  "assignee cleared",
			entry: HistoryEntry{Field: FieldAssignedTo, OldValue: sp("u1")},
			want:  "Assignee: u1 → empty",
		},
		{
			name:  "unknown field",
			entry: HistoryEntry{Field: "color", OldValue: sp(""), NewValue: sp("red")},
			want:  "color: empty → red",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.entry.FormattedChange())
		})
	}
}

func TestRetentionCutoff(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 10, 18, 0, 0, 0, 0, time.UTC), RetentionCutoff(now, 365))
}

func TestPageDefaults(t *testing.T) {
	require.Equal(t, Page{Limit: 50}, Page{}.WithDefault(DefaultPageLimit))
	require.Equal(t, Page{Limit: MaxPageLimit, Offset: 0}, Page{Limit: 10000, Offset: -4}.WithDefault(DefaultPageLimit))
	require.Equal(t, Page{Limit: 20, Offset: 40}, PageFromNumber(3, 20))
	require.Equal(t, Page{Limit: DefaultPageLimit, Offset: 0}, PageFromNumber(0, 0))
	require.Equal(t, Page{Limit: MaxPageLimit, Offset: MaxPageLimit}, PageFromNumber(2, 1000))
}

func TestNewUserValidation(t *testing.T) {
	n := NewUser{Name: " Ana ", Email: " Ana@Example.COM ", Password: "secret"}
	n.Normalize()
	require.NoError(t, n.Validate())
	require.Equal(t, "ana@example.com", n.Email)
	require.Equal(t, RoleMember, n.Role)

	bad := NewUser{Name: "Ana", Email: "ana@example", Password: "secret"}
	bad.Normalize()
	require.ErrorIs(t, bad.Validate(), ErrInvalidArgument)

	short := NewUser{Name: "Ana", Email: "ana@example.com", Password: "12345"}
	short.Normalize()
	require.ErrorIs(t, short.Validate(), ErrInvalidArgument)
}

func TestValidateTeamName(t *testing.T) {
	require.NoError(t, ValidateTeamName("QA"))
	require.ErrorIs(t, ValidateTeamName("Q"), ErrInvalidArgument)
	require.ErrorIs(t, ValidateTeamName(""), ErrInvalidArgument)
}
