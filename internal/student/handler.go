package student

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"KATS-backend/internal/platform/apperr"
)

type Handler struct{ svc *Service }

// RegisterKioskRoutes: 端末用（認証なし。端末は構内ネットワーク限定）。
func RegisterKioskRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// 確認ダイアログ表示用（氏名＋次操作）
	r.GET("/kiosk/students/:number", h.Lookup)
	// 確定した打刻の登録
	r.POST("/kiosk/attendances", h.CreateAttendance)
}

// RegisterAdminRoutes: 管理者用。呼び出し側で認証ミドルウェアを掛けること。
func RegisterAdminRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/students", h.CreateStudent)
	r.GET("/students", h.ListStudents)
	r.GET("/students/:number", h.GetStudent)
}

func (h *Handler) Lookup(c *gin.Context) {
	resp, err := h.svc.Lookup(c.Request.Context(), c.Param("number"))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateAttendance(c *gin.Context) {
	var req CreateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	resp, err := h.svc.RecordAttendance(c.Request.Context(), req)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) CreateStudent(c *gin.Context) {
	var req CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	resp, err := h.svc.CreateStudent(c.Request.Context(), req)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) GetStudent(c *gin.Context) {
	resp, err := h.svc.GetStudent(c.Request.Context(), c.Param("number"))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListStudents(c *gin.Context) {
	resp, err := h.svc.ListStudents(c.Request.Context())
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}
