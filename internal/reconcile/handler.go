package reconcile

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"KATS-backend/internal/jstime"
	"KATS-backend/internal/platform/apperr"
)

type Handler struct{ svc *Service }

// RegisterAdminRoutes: 運用者の手動実行用。認証は呼び出し側で掛ける。
func RegisterAdminRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// POST /reconciliation/run?day=YYYY-MM-DD（省略時は今日・JST）
	r.POST("/reconciliation/run", h.Run)
}

func (h *Handler) Run(c *gin.Context) {
	day := c.Query("day")
	if day != "" {
		if _, err := jstime.ParseDay(day); err != nil {
			c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, "day must be YYYY-MM-DD"))
			return
		}
	}

	report, err := h.svc.Run(c.Request.Context(), day)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, report)
}
