package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssignmentStatusTerminal(t *testing.T) {
	assert.True(t, AssignmentAccepted.IsTerminal())
	assert.True(t, AssignmentDeclined.IsTerminal())
	assert.False(t, AssignmentPending.IsTerminal())
	assert.False(t, AssignmentNotified.IsTerminal())
}

func TestRosterFullyAccepted(t *testing.T) {
	tests := []struct {
		name     string
		statuses []AssignmentStatus
		want     bool
	}{
		{name: "empty roster never satisfies", statuses: nil, want: false},
		{name: "all accepted", statuses: []AssignmentStatus{AssignmentAccepted, AssignmentAccepted}, want: true},
		{name: "single accepted", statuses: []AssignmentStatus{AssignmentAccepted}, want: true},
		{
			name:     "one still notified",
			statuses: []AssignmentStatus{AssignmentAccepted, AssignmentNotified},
			want:     false,
		},
		{
			name:     "one declined",
			statuses: []AssignmentStatus{AssignmentAccepted, AssignmentAccepted, AssignmentDeclined},
			want:     false,
		},
		{name: "all pending", statuses: []AssignmentStatus{AssignmentPending, AssignmentPending}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assignments := make([]*Assignment, 0, len(tt.statuses))
			for _, status := range tt.statuses {
				assignments = append(assignments, &Assignment{Status: status})
			}
			assert.Equal(t, tt.want, RosterFullyAccepted(assignments))
		})
	}
}
