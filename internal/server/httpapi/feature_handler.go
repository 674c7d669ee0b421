package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/dmitrijs2005/lirra/internal/server/services"
	"github.com/gin-gonic/gin"
)

// Multipart framing on top of the image itself.
const maxUploadBody = services.MaxPhotoSize + 1<<20

type featureHandler struct {
	photos PhotoProcessor
	labels Labels
	chat   Chat
}

type labelRequest struct {
	StoreID  *string         `json:"store_id"`
	Name     string          `json:"name" binding:"required"`
	Template string          `json:"template" binding:"required"`
	Data     json.RawMessage `json:"data"`
}

func (r labelRequest) input() services.LabelInput {
	return services.LabelInput{StoreID: r.StoreID, Name: r.Name, Template: r.Template, Data: r.Data}
}

type chatEntry struct {
	Role    string `json:"role" binding:"required"`
	Message string `json:"message" binding:"required"`
}

type chatRequest struct {
	StoreID *string     `json:"store_id"`
	Entries []chatEntry `json:"entries" binding:"required,dive"`
}

// SubmitPhoto accepts multipart/form-data with an "image" file and an
// optional "store_id" field.
func (h *featureHandler) SubmitPhoto(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBody)
	fh, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "image file is required")
		return
	}
	if fh.Size > services.MaxPhotoSize {
		badRequest(c, "image is too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, "unreadable image")
		return
	}
	defer f.Close()

	image, err := io.ReadAll(io.LimitReader(f, services.MaxPhotoSize+1))
	if err != nil {
		badRequest(c, "unreadable image")
		return
	}

	v, err := h.photos.Submit(c.Request.Context(), userID(c), optional(c.PostForm("store_id")), image, fh.Header.Get("Content-Type"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, v)
}

func (h *featureHandler) GetPhoto(c *gin.Context) {
	v, err := h.photos.Get(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, v)
}

func (h *featureHandler) ListPhotos(c *gin.Context) {
	limit, offset, err := pagination(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	jobs, err := h.photos.List(c.Request.Context(), userID(c), limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, jobs)
}

func (h *featureHandler) ListLabels(c *gin.Context) {
	items, err := h.labels.List(c.Request.Context(), userID(c), optional(c.Query("store_id")))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

func (h *featureHandler) CreateLabel(c *gin.Context) {
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	l, err := h.labels.Create(c.Request.Context(), userID(c), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, l)
}

func (h *featureHandler) GetLabel(c *gin.Context) {
	l, err := h.labels.Get(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, l)
}

func (h *featureHandler) UpdateLabel(c *gin.Context) {
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	l, err := h.labels.Update(c.Request.Context(), userID(c), c.Param("id"), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, l)
}

func (h *featureHandler) DeleteLabel(c *gin.Context) {
	if err := h.labels.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *featureHandler) History(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	items, err := h.chat.History(c.Request.Context(), userID(c), optional(c.Query("store_id")), limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

func (h *featureHandler) Append(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	entries := make([]services.ChatEntry, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = services.ChatEntry{Role: e.Role, Message: e.Message}
	}
	items, err := h.chat.Append(c.Request.Context(), userID(c), req.StoreID, entries)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, items)
}
