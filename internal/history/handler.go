package history

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"KATS-backend/internal/platform/apperr"
	"KATS-backend/internal/platform/auth"
)

// AccessChecker: 保護者が当該生徒の履歴を見てよいか（guardianパッケージが実装）。
type AccessChecker interface {
	CanViewStudent(ctx context.Context, parentID, studentID string) (bool, error)
}

type Handler struct {
	svc     *Service
	checker AccessChecker
}

// RegisterRoutes: 履歴閲覧と出席集計。認証必須（admin または guardian）。
// guardian は自分に割り当てられた生徒のみ閲覧できる。
func RegisterRoutes(r gin.IRoutes, svc *Service, checker AccessChecker) {
	h := &Handler{svc: svc, checker: checker}

	// GET /students/:number/history?locale=ja
	r.GET("/students/:number/history", h.History)
	// GET /attendances/stats?from=&to=&limit=（adminのみ）
	r.GET("/attendances/stats", h.Stats)
}

func (h *Handler) History(c *gin.Context) {
	resp, err := h.svc.History(c.Request.Context(), c.Param("number"), c.Query("locale"))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}

	if c.GetString(auth.CtxRoleKey) == auth.RoleGuardian {
		parentID := c.GetString(auth.CtxParentIDKey)
		ok, err := h.checker.CanViewStudent(c.Request.Context(), parentID, resp.StudentID)
		if err != nil {
			c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
			return
		}
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "student not assigned to this account"})
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Stats(c *gin.Context) {
	if c.GetString(auth.CtxRoleKey) != auth.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	limit := 10
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	resp, err := h.svc.Stats(c.Request.Context(), c.Query("from"), c.Query("to"), limit)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}
