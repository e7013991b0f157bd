package handler

import (
	"net/http"

	"procurement/internal/service"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
)

type BudgetHandler struct {
	budgetService service.BudgetService
}

func NewBudgetHandler(budgetService service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

func (h *BudgetHandler) RegisterRoutes(router *gin.RouterGroup) {
	budgets := router.Group("/api/budget")
	{
		budgets.GET("/list", h.ListBudgets)
		budgets.GET("/detail/:id", h.GetBudget)
		budgets.POST("/create", h.CreateBudget)
		budgets.PUT("/update/:id", h.UpdateBudget)
		budgets.DELETE("/delete/:id", h.DeleteBudget)
	}
}

// ListBudgets returns active budgets
// @Summary      List budgets
// @Description  Active budgets ordered by fiscal year (newest first) then department
// @Tags         budget
// @Produce      json
// @Param        fiscal_year  query  string  false  "Fiscal year"
// @Param        department   query  string  false  "Department name"
// @Param        budget_type  query  string  false  "CAPEX or OPEX"
// @Success      200  {object}  response.Response{data=[]model.Budget}
// @Router       /api/budget/list [get]
func (h *BudgetHandler) ListBudgets(c *gin.Context) {
	budgets, err := h.budgetService.ListBudgets(c.Request.Context(), service.BudgetFilter{
		FiscalYear:     c.Query("fiscal_year"),
		DepartmentName: c.Query("department"),
		BudgetType:     c.Query("budget_type"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, budgets))
}

func (h *BudgetHandler) GetBudget(c *gin.Context) {
	budget, err := h.budgetService.GetBudget(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, budget))
}

// CreateBudget opens a new budget
// @Summary      Create budget
// @Tags         budget
// @Accept       json
// @Produce      json
// @Param        budget  body      service.CreateBudgetDTO  true  "Budget"
// @Success      201     {object}  response.Response{data=model.Budget}
// @Failure      400     {object}  response.Response
// @Router       /api/budget/create [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	var req service.CreateBudgetDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	budget, err := h.budgetService.CreateBudget(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, budget))
}

func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	var req service.UpdateBudgetDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	budget, err := h.budgetService.UpdateBudget(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, budget))
}

// DeleteBudget removes a budget, or deactivates it when requests reference it
// @Summary      Delete budget
// @Tags         budget
// @Produce      json
// @Param        id   path      string  true  "Budget ID"
// @Success      200  {object}  response.Response{data=service.DeleteResult}
// @Failure      404  {object}  response.Response
// @Router       /api/budget/delete/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	result, err := h.budgetService.DeleteBudget(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
