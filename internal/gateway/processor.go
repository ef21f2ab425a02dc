package gateway

import (
	"github.com/noah-isme/sma-adp-counseling/internal/models"
	appErrors "github.com/noah-isme/sma-adp-counseling/pkg/errors"
)

// ShapeInput is everything a shaper may read. Shapers must not modify it.
type ShapeInput struct {
	Translated Payload
	Original   Payload
	User       models.AuthUser
}

// Shaper turns a caller payload into the request body of one endpoint.
type Shaper interface {
	Shape(in ShapeInput) (Payload, error)
}

// ShaperFunc adapts a function to Shaper.
type ShaperFunc func(in ShapeInput) (Payload, error)

// Shape implements Shaper.
func (f ShaperFunc) Shape(in ShapeInput) (Payload, error) { return f(in) }

// Processor is the per-endpoint request shaping table. It performs no I/O.
type Processor struct {
	endpoints map[Endpoint]EndpointSpec
}

// NewProcessor builds a processor with the built-in endpoint table.
func NewProcessor() *Processor {
	return &Processor{endpoints: defaultEndpoints()}
}

// Register adds or replaces the definition of an endpoint.
func (p *Processor) Register(endpoint Endpoint, spec EndpointSpec) {
	p.endpoints[endpoint] = spec
}

// Spec returns the registered definition for endpoint, if any.
func (p *Processor) Spec(endpoint Endpoint) (EndpointSpec, bool) {
	spec, ok := p.endpoints[endpoint]
	return spec, ok
}

// Process produces the final request body for endpoint or a validation error.
func (p *Processor) Process(endpoint string, translated Payload, user models.AuthUser, original Payload) (Payload, error) {
	in := ShapeInput{Translated: translated, Original: original, User: user}
	spec, ok := p.endpoints[Endpoint(endpoint)]
	if !ok || spec.Shaper == nil {
		return shapeDefault(in), nil
	}
	return spec.Shaper.Shape(in)
}

// shapeDefault merges {callerId, ...original, ...translated}; translated keys win.
func shapeDefault(in ShapeInput) Payload {
	out := Payload{FieldCallerID: in.User.ID}
	for k, v := range in.Original {
		out[k] = v
	}
	for k, v := range in.Translated {
		out[k] = v
	}
	return out
}

// subjectShaper requires field and stamps the caller id under actorKey.
func subjectShaper(field, actorKey string) Shaper {
	return ShaperFunc(func(in ShapeInput) (Payload, error) {
		subject, ok := in.Translated.String(field)
		if !ok {
			return nil, appErrors.MissingField(field)
		}
		out := in.Translated.Clone()
		out[field] = subject
		out[actorKey] = in.User.ID
		return out, nil
	})
}

func shapeAssignRole(in ShapeInput) (Payload, error) {
	role, ok := in.Translated.String(FieldRole)
	if !ok {
		return nil, appErrors.MissingField(FieldRole)
	}
	userID, ok := in.Translated.String(FieldUserID)
	if !ok {
		return nil, appErrors.MissingField(FieldUserID)
	}
	return Payload{
		FieldUserID:  userID,
		FieldRole:    role,
		"assignedBy": in.User.ID,
	}, nil
}

// shapeDashboardStats scopes the request by the translated role: students only ever
// see themselves, parents must name the child, staff may name a student or default to self.
func shapeDashboardStats(in ShapeInput) (Payload, error) {
	role, ok := in.Translated.String(FieldRole)
	if !ok {
		return nil, appErrors.MissingField(FieldRole)
	}
	out := Payload{FieldRole: role}
	switch role {
	case RemoteRoleStudent:
		out[FieldStudentID] = in.User.ID
	case RemoteRoleParent:
		studentID, ok := in.Translated.String(FieldStudentID)
		if !ok {
			return nil, appErrors.MissingField(FieldStudentID)
		}
		out[FieldStudentID] = studentID
		out["parentId"] = in.User.ID
	default:
		out[FieldUserID] = in.User.ID
		if studentID, ok := in.Translated.String(FieldStudentID); ok {
			out[FieldStudentID] = studentID
		}
	}
	return out, nil
}
