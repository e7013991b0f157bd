package handler

import (
	"net/http"

	"procurement/internal/service"
	"procurement/pkg/pagination"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
)

type RevisionHandler struct {
	revisionService service.RevisionService
}

func NewRevisionHandler(revisionService service.RevisionService) *RevisionHandler {
	return &RevisionHandler{revisionService: revisionService}
}

func (h *RevisionHandler) RegisterRoutes(router *gin.RouterGroup) {
	revisions := router.Group("/api/budget")
	{
		revisions.GET("/revisions/list", h.ListRevisions)
		revisions.POST("/revision/create", h.CreateRevision)
	}
}

func (h *RevisionHandler) ListRevisions(c *gin.Context) {
	p := pagination.Parse(c)

	revisions, total, err := h.revisionService.ListRevisions(c.Request.Context(), c.Query("request_id"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(revisions, total, p)))
}

// CreateRevision adjusts a request's committed amount and records the change
// @Summary      Create revision
// @Description  Administrative override; does not check that the budget can absorb the change
// @Tags         revision
// @Accept       json
// @Produce      json
// @Param        revision  body      service.CreateRevisionDTO  true  "Revision"
// @Success      201       {object}  response.Response{data=model.BudgetRevision}
// @Failure      400       {object}  response.Response
// @Failure      404       {object}  response.Response
// @Router       /api/budget/revision/create [post]
func (h *RevisionHandler) CreateRevision(c *gin.Context) {
	var in service.CreateRevisionDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadBody(c, err)
		return
	}

	rev, err := h.revisionService.CreateRevision(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rev))
}
