package guardian

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"KATS-backend/internal/platform/apperr"
)

type Handler struct{ svc *Service }

// RegisterAdminRoutes: 保護者管理（管理者のみ。認証は呼び出し側で掛ける）。
func RegisterAdminRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/parents", h.CreateParent)
	r.GET("/parents/:id", h.GetParent)
	r.POST("/parents/:id/students", h.AssignStudent)
}

func (h *Handler) CreateParent(c *gin.Context) {
	var req CreateParentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	resp, err := h.svc.CreateParent(c.Request.Context(), req)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) GetParent(c *gin.Context) {
	resp, err := h.svc.GetParent(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) AssignStudent(c *gin.Context) {
	var req AssignStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	if err := h.svc.AssignStudent(c.Request.Context(), c.Param("id"), req.StudentID); err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "assigned"})
}
