package gateway

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-counseling/internal/models"
	appErrors "github.com/noah-isme/sma-adp-counseling/pkg/errors"
)

var testUser = models.AuthUser{ID: "user-1", Role: models.RolePsychopedagogue}

func requireMissingField(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, field, appErr.Field)
}

func TestProcessDefaultRuleMergesWithTranslatedPrecedence(t *testing.T) {
	p := NewProcessor()
	original := Payload{"role": "docente", "term": "2025-1", "limit": 10}
	translated := Payload{"role": "teacher", "limit": 20}

	out, err := p.Process("list-announcements", translated, testUser, original)
	require.NoError(t, err)
	assert.Equal(t, Payload{
		"callerId": "user-1",
		"role":     "teacher",
		"term":     "2025-1",
		"limit":    20,
	}, out)
}

func TestProcessDefaultRuleTranslatedOverridesCallerID(t *testing.T) {
	out, err := NewProcessor().Process("custom", Payload{"callerId": "x"}, testUser, Payload{})
	require.NoError(t, err)
	assert.Equal(t, "x", out["callerId"])
}

func TestProcessSubjectEndpointsRequireStudentID(t *testing.T) {
	p := NewProcessor()
	for _, endpoint := range []Endpoint{EndpointGenerateAIPlan, EndpointAnalyzeEmotions, EndpointStudentReport} {
		_, err := p.Process(string(endpoint), Payload{}, testUser, Payload{})
		requireMissingField(t, err, "studentId")

		_, err = p.Process(string(endpoint), Payload{"studentId": "   "}, testUser, Payload{})
		requireMissingField(t, err, "studentId")
	}
}

func TestProcessGenerateAIPlanStampsRequester(t *testing.T) {
	in := Payload{"studentId": " s1 ", "context": "attention issues"}
	out, err := NewProcessor().Process(string(EndpointGenerateAIPlan), in, testUser, in)
	require.NoError(t, err)
	assert.Equal(t, Payload{"studentId": "s1", "context": "attention issues", "requestedBy": "user-1"}, out)
	assert.Equal(t, " s1 ", in["studentId"], "input must not be modified")
}

func TestProcessAssignRoleRequiresRoleAndUser(t *testing.T) {
	p := NewProcessor()

	_, err := p.Process(string(EndpointAssignRole), Payload{"userId": "u2"}, testUser, Payload{})
	requireMissingField(t, err, "role")

	_, err = p.Process(string(EndpointAssignRole), Payload{"role": "teacher"}, testUser, Payload{})
	requireMissingField(t, err, "userId")

	out, err := p.Process(string(EndpointAssignRole), Payload{"role": "teacher", "userId": "u2"}, testUser, Payload{})
	require.NoError(t, err)
	assert.Equal(t, Payload{"role": "teacher", "userId": "u2", "assignedBy": "user-1"}, out)
}

func TestProcessDashboardStatsBranchesOnRole(t *testing.T) {
	p := NewProcessor()
	endpoint := string(EndpointDashboardStats)

	_, err := p.Process(endpoint, Payload{}, testUser, Payload{})
	requireMissingField(t, err, "role")

	out, err := p.Process(endpoint, Payload{"role": "student", "studentId": "other"}, testUser, Payload{})
	require.NoError(t, err)
	assert.Equal(t, Payload{"role": "student", "studentId": "user-1"}, out)

	_, err = p.Process(endpoint, Payload{"role": "parent"}, testUser, Payload{})
	requireMissingField(t, err, "studentId")

	out, err = p.Process(endpoint, Payload{"role": "parent", "studentId": "child-1"}, testUser, Payload{})
	require.NoError(t, err)
	assert.Equal(t, Payload{"role": "parent", "studentId": "child-1", "parentId": "user-1"}, out)

	out, err = p.Process(endpoint, Payload{"role": "director"}, testUser, Payload{})
	require.NoError(t, err)
	assert.Equal(t, Payload{"role": "director", "userId": "user-1"}, out)

	out, err = p.Process(endpoint, Payload{"role": "psychopedagogue", "studentId": "s9"}, testUser, Payload{})
	require.NoError(t, err)
	assert.Equal(t, Payload{"role": "psychopedagogue", "userId": "user-1", "studentId": "s9"}, out)
}

func TestProcessIsDeterministic(t *testing.T) {
	p := NewProcessor()
	in := Payload{"role": "teacher", "studentId": "s1"}
	first, err := p.Process(string(EndpointDashboardStats), in, testUser, in)
	require.NoError(t, err)
	second, err := p.Process(string(EndpointDashboardStats), in, testUser, in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProcessorRegisterOverridesEntry(t *testing.T) {
	p := NewProcessor()
	p.Register("echo", EndpointSpec{Shaper: ShaperFunc(func(in ShapeInput) (Payload, error) {
		return Payload{"echo": in.User.ID}, nil
	})})

	out, err := p.Process("echo", Payload{"ignored": true}, testUser, Payload{})
	require.NoError(t, err)
	assert.Equal(t, Payload{"echo": "user-1"}, out)
}
