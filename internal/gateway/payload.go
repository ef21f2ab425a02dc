package gateway

import "strings"

// Payload is a JSON object exchanged with remote endpoints.
type Payload map[string]interface{}

// Well-known payload keys.
const (
	FieldRole      = "role"
	FieldStudentID = "studentId"
	FieldUserID    = "userId"
	FieldCallerID  = "callerId"
)

// Clone returns a shallow copy. A nil payload clones to an empty one.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p)+2)
	for k, v := range p {
		out[k] = v
	}
	return out
}

// String returns the trimmed string under key; ok is false when absent, blank or not a string.
func (p Payload) String(key string) (string, bool) {
	raw, exists := p[key]
	if !exists || raw == nil {
		return "", false
	}
	s, isString := raw.(string)
	if !isString {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}
