package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectFor_NumericIDIsParsed(t *testing.T) {
	assert.Equal(t, Subject(4012345678), SubjectFor("4012345678"))
	assert.Equal(t, Subject(-7), SubjectFor("-7"))
}

func TestSubjectFor_NonNumericIsStableAndNonNegative(t *testing.T) {
	ids := []string{
		"Ab3_xYz-naver-id",
		"108234567890123456789", // overflows int64, Google style
		"",
	}
	for _, id := range ids {
		first := SubjectFor(id)
		second := SubjectFor(id)
		assert.Equal(t, first, second, "subject for %q must be stable", id)
		assert.GreaterOrEqual(t, int64(first), int64(0), "subject for %q must be non-negative", id)
	}
	assert.NotEqual(t, SubjectFor("alpha"), SubjectFor("beta"))
}

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider(" Naver ")
	require.NoError(t, err)
	assert.Equal(t, Naver, p)

	_, err = ParseProvider("keycloak")
	assert.Error(t, err)
}

func TestIdentityUserID(t *testing.T) {
	id := &Identity{Provider: Kakao, ExternalID: "12345"}
	assert.Equal(t, "kakao_12345", id.UserID())
}
