package httpapi

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxManagementBody = 64 << 10

type adminHandler struct {
	admin Administrator
}

// Management forwards the raw {"action": ...} document; the service owns
// the per-action parameter decoding.
func (h *adminHandler) Management(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxManagementBody))
	if err != nil {
		badRequest(c, "unreadable request body")
		return
	}
	res, err := h.admin.Execute(c.Request.Context(), userID(c), body)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

func (h *adminHandler) Stats(c *gin.Context) {
	res, err := h.admin.Execute(c.Request.Context(), userID(c), []byte(`{"action":"stats"}`))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}
