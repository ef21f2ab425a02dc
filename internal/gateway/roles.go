package gateway

import (
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-counseling/internal/models"
)

// Endpoint-facing role identifiers.
const (
	RemoteRoleDirector        = "director"
	RemoteRolePsychopedagogue = "psychopedagogue"
	RemoteRoleTeacher         = "teacher"
	RemoteRoleParent          = "parent"
	RemoteRoleStudent         = "student"
)

var roleVocabulary = map[models.UserRole]string{
	models.RoleDirector:        RemoteRoleDirector,
	models.RolePsychopedagogue: RemoteRolePsychopedagogue,
	models.RoleTeacher:         RemoteRoleTeacher,
	models.RoleParent:          RemoteRoleParent,
	models.RoleStudent:         RemoteRoleStudent,
}

// RemoteRole maps an internal role to its endpoint-facing name.
func RemoteRole(role models.UserRole) (string, bool) {
	remote, ok := roleVocabulary[role]
	return remote, ok
}

// TranslateRole rewrites the payload's role field into the endpoint vocabulary.
// A payload without a role is returned as is. Unmapped roles pass through unchanged
// and are logged; they never fail the call. The input map is not modified.
func TranslateRole(payload Payload, logger *zap.Logger) Payload {
	raw, ok := payload[FieldRole]
	if !ok {
		return payload
	}
	out := payload.Clone()
	role, isString := raw.(string)
	if !isString {
		logger.Warn("role field is not a string, forwarding unchanged", zap.Any("role", raw))
		return out
	}
	remote, mapped := RemoteRole(models.UserRole(role))
	if !mapped {
		logger.Warn("role has no endpoint mapping, forwarding unchanged", zap.String("role", role))
		return out
	}
	out[FieldRole] = remote
	return out
}
