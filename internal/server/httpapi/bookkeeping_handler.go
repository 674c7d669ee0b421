package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/lirra/internal/server/models"
	"github.com/dmitrijs2005/lirra/internal/server/services"
	"github.com/gin-gonic/gin"
)

type bookkeepingHandler struct {
	books   Bookkeeper
	reports Reporter
}

type transactionRequest struct {
	Type          string     `json:"type" binding:"required"`
	Category      string     `json:"category" binding:"required"`
	Description   string     `json:"description"`
	AmountCents   int64      `json:"amount_cents"`
	CostCents     int64      `json:"cost_cents"`
	Quantity      int        `json:"quantity"`
	PaymentMethod string     `json:"payment_method"`
	OccurredAt    *time.Time `json:"occurred_at"`
}

func (r transactionRequest) input() services.TransactionInput {
	in := services.TransactionInput{
		Type:          r.Type,
		Category:      r.Category,
		Description:   r.Description,
		AmountCents:   r.AmountCents,
		CostCents:     r.CostCents,
		Quantity:      r.Quantity,
		PaymentMethod: r.PaymentMethod,
	}
	if r.OccurredAt != nil {
		in.OccurredAt = *r.OccurredAt
	}
	return in
}

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required"`
}

// filter reads from, to, type, category, limit and offset.
func filter(c *gin.Context) (models.TransactionFilter, error) {
	f := models.TransactionFilter{
		StoreID:  c.Param("storeID"),
		Type:     c.Query("type"),
		Category: c.Query("category"),
	}
	var err error
	if f.From, err = queryTime(c, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryTime(c, "to"); err != nil {
		return f, err
	}
	if f.Limit, f.Offset, err = pagination(c); err != nil {
		return f, err
	}
	return f, nil
}

func (h *bookkeepingHandler) List(c *gin.Context) {
	f, err := filter(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	page, err := h.books.List(c.Request.Context(), userID(c), f)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, page)
}

func (h *bookkeepingHandler) Get(c *gin.Context) {
	tx, err := h.books.Get(c.Request.Context(), userID(c), c.Param("storeID"), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, tx)
}

func (h *bookkeepingHandler) Create(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	tx, err := h.books.Create(c.Request.Context(), userID(c), c.Param("storeID"), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, tx)
}

func (h *bookkeepingHandler) Update(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	tx, err := h.books.Update(c.Request.Context(), userID(c), c.Param("storeID"), c.Param("id"), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, tx)
}

func (h *bookkeepingHandler) Delete(c *gin.Context) {
	if err := h.books.Delete(c.Request.Context(), userID(c), c.Param("storeID"), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Export renders into a buffer first so a failure can still be reported as
// a JSON error.
func (h *bookkeepingHandler) Export(c *gin.Context) {
	f, err := filter(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := h.books.ExportCSV(c.Request.Context(), userID(c), f, &buf); err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="transactions-%s.csv"`, f.StoreID))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *bookkeepingHandler) Categories(c *gin.Context) {
	cats, err := h.books.Categories(c.Request.Context(), userID(c), c.Param("storeID"), c.Query("type"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, cats)
}

func (h *bookkeepingHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	cat, err := h.books.CreateCategory(c.Request.Context(), userID(c), c.Param("storeID"), req.Name, req.Type)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, cat)
}

func (h *bookkeepingHandler) DeleteCategory(c *gin.Context) {
	if err := h.books.DeleteCategory(c.Request.Context(), userID(c), c.Param("storeID"), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *bookkeepingHandler) Report(c *gin.Context) {
	r, err := h.reports.Report(c.Request.Context(), userID(c), c.Param("storeID"), c.Query("from"), c.Query("to"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}
