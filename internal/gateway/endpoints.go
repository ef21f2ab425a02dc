package gateway

// Endpoint names a remote callable operation.
type Endpoint string

const (
	// EndpointGenerateAIPlan drafts an intervention plan with the AI collaborator.
	// Its success body may be plain text; see EndpointSpec.RawTextTolerant.
	EndpointGenerateAIPlan  Endpoint = "generate-ai-plan"
	EndpointAnalyzeEmotions Endpoint = "analyze-emotions"
	EndpointStudentReport   Endpoint = "student-report"
	EndpointAssignRole      Endpoint = "assign-role"
	EndpointDashboardStats  Endpoint = "dashboard-stats"
)

// EndpointSpec describes how a named endpoint is shaped and how its response is read.
type EndpointSpec struct {
	Shaper Shaper
	// RawTextTolerant accepts a non-JSON 2xx body and returns it as text.
	RawTextTolerant bool
}

func defaultEndpoints() map[Endpoint]EndpointSpec {
	return map[Endpoint]EndpointSpec{
		EndpointGenerateAIPlan: {
			Shaper:          subjectShaper(FieldStudentID, "requestedBy"),
			RawTextTolerant: true,
		},
		EndpointAnalyzeEmotions: {Shaper: subjectShaper(FieldStudentID, "analyzedBy")},
		EndpointStudentReport:   {Shaper: subjectShaper(FieldStudentID, "requestedBy")},
		EndpointAssignRole:      {Shaper: ShaperFunc(shapeAssignRole)},
		EndpointDashboardStats:  {Shaper: ShaperFunc(shapeDashboardStats)},
	}
}
