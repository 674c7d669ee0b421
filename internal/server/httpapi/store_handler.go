package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/lirra/internal/server/services"
	"github.com/gin-gonic/gin"
)

type storeHandler struct {
	stores Stores
}

type storeRequest struct {
	Name     string `json:"name" binding:"required"`
	Address  string `json:"address"`
	Currency string `json:"currency"`
	Timezone string `json:"timezone"`
}

func (r storeRequest) input() services.StoreInput {
	return services.StoreInput{Name: r.Name, Address: r.Address, Currency: r.Currency, Timezone: r.Timezone}
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

type staffRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
	Role  string `json:"role" binding:"required"`
}

func (r staffRequest) input() services.StaffInput {
	return services.StaffInput{Name: r.Name, Email: r.Email, Role: r.Role}
}

type activeRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *storeHandler) List(c *gin.Context) {
	stores, err := h.stores.List(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, stores)
}

func (h *storeHandler) Create(c *gin.Context) {
	var req storeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	st, err := h.stores.Create(c.Request.Context(), userID(c), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, st)
}

func (h *storeHandler) Get(c *gin.Context) {
	st, err := h.stores.Get(c.Request.Context(), userID(c), c.Param("storeID"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}

func (h *storeHandler) Update(c *gin.Context) {
	var req storeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	st, err := h.stores.Update(c.Request.Context(), userID(c), c.Param("storeID"), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}

func (h *storeHandler) Delete(c *gin.Context) {
	if err := h.stores.Delete(c.Request.Context(), userID(c), c.Param("storeID")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *storeHandler) ListRoles(c *gin.Context) {
	roles, err := h.stores.ListRoles(c.Request.Context(), userID(c), c.Param("storeID"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, roles)
}

func (h *storeHandler) GrantRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if err := h.stores.GrantRole(c.Request.Context(), userID(c), c.Param("storeID"), c.Param("userID"), req.Role); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *storeHandler) RevokeRole(c *gin.Context) {
	if err := h.stores.RevokeRole(c.Request.Context(), userID(c), c.Param("storeID"), c.Param("userID")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *storeHandler) ListStaff(c *gin.Context) {
	staff, err := h.stores.ListStaff(c.Request.Context(), userID(c), c.Param("storeID"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, staff)
}

func (h *storeHandler) CreateStaff(c *gin.Context) {
	var req staffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	u, err := h.stores.CreateStaff(c.Request.Context(), userID(c), c.Param("storeID"), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, u)
}

func (h *storeHandler) UpdateStaff(c *gin.Context) {
	var req staffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	u, err := h.stores.UpdateStaff(c.Request.Context(), userID(c), c.Param("storeID"), c.Param("staffID"), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

func (h *storeHandler) SetStaffActive(c *gin.Context) {
	var req activeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if err := h.stores.SetStaffActive(c.Request.Context(), userID(c), c.Param("storeID"), c.Param("staffID"), *req.Active); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
