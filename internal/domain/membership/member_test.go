package membership_test

import (
	"testing"
	"time"

	"github.com/rinkpass/backend/internal/domain/membership"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMember(t *testing.T) *membership.Member {
	t.Helper()
	m, err := membership.NewMember(
		"Jamie", "Fraser", "Jamie@Example.com", "+61 400 000 000",
		time.Date(1995, 3, 14, 0, 0, 0, 0, time.UTC),
		membership.EmergencyContact{Name: "Claire Fraser", Phone: "+61 400 111 111"},
	)
	require.NoError(t, err)
	return m
}

func TestNewMember(t *testing.T) {
	tests := []struct {
		name        string
		firstName   string
		lastName    string
		email       string
		dob         time.Time
		expectedErr string
	}{
		{
			name:      "valid member",
			firstName: "Jamie",
			lastName:  "Fraser",
			email:     "jamie@example.com",
			dob:       time.Date(1995, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "empty first name",
			firstName:   "  ",
			lastName:    "Fraser",
			email:       "jamie@example.com",
			dob:         time.Date(1995, 3, 14, 0, 0, 0, 0, time.UTC),
			expectedErr: "First name cannot be empty",
		},
		{
			name:        "invalid email",
			firstName:   "Jamie",
			lastName:    "Fraser",
			email:       "not-an-email",
			dob:         time.Date(1995, 3, 14, 0, 0, 0, 0, time.UTC),
			expectedErr: "Email address is not valid",
		},
		{
			name:        "future date of birth",
			firstName:   "Jamie",
			lastName:    "Fraser",
			email:       "jamie@example.com",
			dob:         time.Now().AddDate(1, 0, 0),
			expectedErr: "Date of birth must be in the past",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := membership.NewMember(tt.firstName, tt.lastName, tt.email, "", tt.dob, membership.EmergencyContact{})
			if tt.expectedErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, membership.MemberStatusActive, m.Status)
			assert.Len(t, m.GetDomainEvents(), 1)
		})
	}
}

func TestMemberEmailNormalised(t *testing.T) {
	m := newTestMember(t)
	assert.Equal(t, "jamie@example.com", m.Email)
}

func TestMemberAge(t *testing.T) {
	m := newTestMember(t)
	at := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 31, m.Age(at))

	before := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 30, m.Age(before))
}

func TestMemberLifecycle(t *testing.T) {
	m := newTestMember(t)

	require.NoError(t, m.Deactivate())
	assert.Equal(t, membership.MemberStatusInactive, m.Status)
	assert.False(t, m.IsActive())

	require.NoError(t, m.Reactivate())
	assert.True(t, m.IsActive())

	m.Archive()
	assert.Equal(t, membership.MemberStatusArchived, m.Status)
	assert.Error(t, m.Deactivate())
	assert.Error(t, m.Reactivate())
}

func TestMemberAttachDocument(t *testing.T) {
	m := newTestMember(t)
	assert.Error(t, m.AttachDocument(""))
	require.NoError(t, m.AttachDocument("members/"+m.ID.String()+"/waiver.pdf"))
	assert.NotEmpty(t, m.DocumentKey)
}
