package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-counseling/internal/models"
	"github.com/noah-isme/sma-adp-counseling/internal/service"
	"github.com/noah-isme/sma-adp-counseling/pkg/response"
)

type studentStore interface {
	CreateStudent(ctx context.Context, req service.CreateStudentRequest) (*models.Student, error)
	ListStudents(ctx context.Context, filter models.StudentFilter) []models.Student
	GetStudent(ctx context.Context, id string) (*models.Student, error)
	UpdateStudent(ctx context.Context, id string, req service.UpdateStudentRequest) (*models.Student, error)
}

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students studentStore
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentStore) *StudentHandler {
	return &StudentHandler{students: students}
}

// List returns students filtered by grade, section, status and guardianId.
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		Grade:      c.Query("grade"),
		Section:    c.Query("section"),
		Status:     models.StudentStatus(c.Query("status")),
		GuardianID: c.Query("guardianId"),
	}
	students := h.students.ListStudents(c.Request.Context(), filter)
	response.JSON(c, http.StatusOK, students, map[string]interface{}{"total": len(students)})
}

// Get returns one student.
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.GetStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Create registers a student.
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.CreateStudent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update patches a student profile.
func (h *StudentHandler) Update(c *gin.Context) {
	var req service.UpdateStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.UpdateStudent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}
