package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTranslateRoleWithoutRoleReturnsPayloadUnchanged(t *testing.T) {
	payload := Payload{"studentId": "s1", "note": "hello"}

	out := TranslateRole(payload, zap.NewNop())

	assert.Equal(t, payload, out)
}

func TestTranslateRoleMapsKnownRoles(t *testing.T) {
	cases := map[string]string{
		"directivo":     "director",
		"psicopedagogo": "psychopedagogue",
		"docente":       "teacher",
		"padre":         "parent",
		"estudiante":    "student",
	}
	for internal, remote := range cases {
		payload := Payload{"role": internal}
		out := TranslateRole(payload, zap.NewNop())
		assert.Equal(t, remote, out["role"])
		assert.Equal(t, internal, payload["role"], "input must not be modified")
	}
}

func TestTranslateRoleUnmappedPassesThroughWithWarning(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	out := TranslateRole(Payload{"role": "janitor", "x": 1}, zap.New(core))

	assert.Equal(t, "janitor", out["role"])
	assert.Equal(t, 1, out["x"])
	assert.Equal(t, 1, logs.Len())
}

func TestTranslateRoleNonStringPassesThrough(t *testing.T) {
	out := TranslateRole(Payload{"role": 7}, zap.NewNop())
	assert.Equal(t, 7, out["role"])
}
