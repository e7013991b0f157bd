package handler

import (
	"net/http"

	"procurement/internal/service"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
)

type DepartmentHandler struct {
	departmentService service.DepartmentService
}

func NewDepartmentHandler(departmentService service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departmentService: departmentService}
}

func (h *DepartmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	departments := router.Group("/api/departments")
	{
		departments.GET("/list", h.ListDepartments)
		departments.POST("/create", h.CreateDepartment)
		departments.POST("/seed", h.SeedDepartments)
	}
}

func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	depts, err := h.departmentService.ListDepartments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, depts))
}

func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req service.CreateDepartmentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	dept, err := h.departmentService.CreateDepartment(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, dept))
}

func (h *DepartmentHandler) SeedDepartments(c *gin.Context) {
	result, err := h.departmentService.SeedDepartments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
