package license

import (
	"errors"
	"io"
	"net/http"

	"smallbiznis-paytopublish/pkg/errutil"
	"smallbiznis-paytopublish/pkg/httpapi"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type revokeRequest struct {
	Expired bool `json:"expired"`
}

func (h *Handler) Register(r gin.IRouter) {
	licenses := r.Group("/licenses")
	licenses.POST("", h.CreateLicense)
	licenses.GET("/:id", h.GetLicense)
	licenses.POST("/:id/grant", h.ScheduleGrant)
	licenses.POST("/:id/revoke", h.ScheduleRevoke)

	admin := r.Group("/admin/license-types")
	admin.GET("", h.ListTypes)
	admin.GET("/:type/form", h.TypeForm)
	admin.PUT("/:type/config", h.SaveTypeConfig)
	admin.GET("/:type/fields", h.TypeFields)
}

func (h *Handler) CreateLicense(c *gin.Context) {
	var req CreateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	l, err := h.service.CreateLicense(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	httpapi.Respond(c, http.StatusCreated, l)
}

func (h *Handler) GetLicense(c *gin.Context) {
	l, err := h.service.GetLicense(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	httpapi.Respond(c, http.StatusOK, l)
}

func (h *Handler) ScheduleGrant(c *gin.Context) {
	l, err := h.service.ScheduleGrant(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	httpapi.Accepted(c, l)
}

func (h *Handler) ScheduleRevoke(c *gin.Context) {
	var req revokeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	l, err := h.service.ScheduleRevoke(c.Request.Context(), c.Param("id"), req.Expired)
	if err != nil {
		c.Error(err)
		return
	}
	httpapi.Accepted(c, l)
}

func (h *Handler) ListTypes(c *gin.Context) {
	httpapi.Respond(c, http.StatusOK, h.service.ListTypes())
}

func (h *Handler) TypeForm(c *gin.Context) {
	form, err := h.service.TypeForm(c.Request.Context(), c.Param("type"))
	if err != nil {
		c.Error(err)
		return
	}
	httpapi.Respond(c, http.StatusOK, form)
}

func (h *Handler) SaveTypeConfig(c *gin.Context) {
	var values Configuration
	if err := c.ShouldBindJSON(&values); err != nil {
		c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	cfg, err := h.service.SaveTypeConfig(c.Request.Context(), c.Param("type"), values)
	if err != nil {
		c.Error(err)
		return
	}
	httpapi.Respond(c, http.StatusOK, cfg)
}

func (h *Handler) TypeFields(c *gin.Context) {
	fields, err := h.service.TypeFields(c.Request.Context(), c.Param("type"))
	if err != nil {
		c.Error(err)
		return
	}
	httpapi.Respond(c, http.StatusOK, fields)
}
