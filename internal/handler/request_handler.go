package handler

import (
	"net/http"

	"procurement/internal/service"
	"procurement/pkg/pagination"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	requestService service.RequestService
}

func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/budget")
	{
		requests.GET("/requests", h.ListRequests)
		requests.GET("/request/detail/:id", h.GetRequest)
		requests.POST("/request/create", h.CreateRequest)
		requests.PUT("/request/submit/:id", h.SubmitRequest)
		requests.DELETE("/request/delete/:id", h.DeleteRequest)
		requests.PUT("/request/choose/:id/:tipe", h.ChooseSRMR)
		requests.PUT("/request/complete/:id", h.CompleteRequest)
	}
}

// ListRequests returns a page of requests, newest first
// @Summary      List requests
// @Tags         request
// @Produce      json
// @Param        status      query  string  false  "Status filter"
// @Param        department  query  string  false  "Department filter"
// @Param        budget_id   query  string  false  "Budget filter"
// @Param        page        query  int     false  "Page number (default 1)"
// @Param        limit       query  int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/budget/requests [get]
func (h *RequestHandler) ListRequests(c *gin.Context) {
	p := pagination.Parse(c)

	requests, total, err := h.requestService.ListRequests(c.Request.Context(), service.RequestFilter{
		Status:     c.Query("status"),
		Department: c.Query("department"),
		BudgetID:   c.Query("budget_id"),
		Page:       p.Page,
		Limit:      p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(requests, total, p)))
}

func (h *RequestHandler) GetRequest(c *gin.Context) {
	req, err := h.requestService.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var in service.CreateRequestDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadBody(c, err)
		return
	}

	req, err := h.requestService.CreateRequest(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, req))
}

// SubmitRequest checks the request against its budget and reserves funds
// @Summary      Submit request
// @Description  Approves and reserves funds when the budget covers the estimate, otherwise rejects with a note
// @Tags         request
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=model.BudgetRequest}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/budget/request/submit/{id} [put]
func (h *RequestHandler) SubmitRequest(c *gin.Context) {
	req, err := h.requestService.SubmitRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// DeleteRequest releases any reservation and removes the request
// @Summary      Delete request
// @Tags         request
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.DeleteResult}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/budget/request/delete/{id} [delete]
func (h *RequestHandler) DeleteRequest(c *gin.Context) {
	result, err := h.requestService.DeleteRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

func (h *RequestHandler) ChooseSRMR(c *gin.Context) {
	req, err := h.requestService.ChooseSRMR(c.Request.Context(), c.Param("id"), c.Param("tipe"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

func (h *RequestHandler) CompleteRequest(c *gin.Context) {
	req, err := h.requestService.CompleteRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}
