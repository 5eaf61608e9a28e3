// Ministry HTTP handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-church-backend/internal/services"
)

// ListMinistries godoc
// @ID          listMinistries
// @Summary     List active ministries
// @Description Active ministries by display order, newest first within the same order.
// @Tags        Ministries
// @Produce     json
// @Success     200  {object}  handlers.ListEnvelope{data=[]domain.Ministry}
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /ministries [get]
func (h *Handlers) ListMinistries(c *gin.Context) {
	items, err := h.svc.Ministries.List(c.Request.Context())
	if err != nil {
		h.failErr(c, err)
		return
	}
	okList(c, items)
}

// GetMinistry godoc
// @ID          getMinistry
// @Summary     Get a ministry
// @Tags        Ministries
// @Produce     json
// @Param       id   path      string  true  "Ministry ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.Envelope{data=domain.Ministry}
// @Failure     404  {object}  handlers.ErrorResponse "Ministry not found"
// @Router      /ministries/{id} [get]
func (h *Handlers) GetMinistry(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	m, err := h.svc.Ministries.Get(c.Request.Context(), id)
	if err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", m)
}

// CreateMinistry godoc
// @ID          createMinistry
// @Summary     Create a ministry
// @Tags        Ministries
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       name           formData  string  true   "Name (max 100)"
// @Param       description    formData  string  true   "Description"
// @Param       contactPerson  formData  string  false  "Contact person"
// @Param       contactEmail   formData  string  false  "Contact email"
// @Param       contactPhone   formData  string  false  "Contact phone"
// @Param       schedule       formData  string  false  "Schedule (max 200)"
// @Param       order          formData  int     false  "Display order"
// @Param       image          formData  file    true   "Ministry image"
// @Success     201  {object}  handlers.Envelope{data=domain.Ministry}
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Router      /ministries [post]
func (h *Handlers) CreateMinistry(c *gin.Context) {
	var in services.MinistryInput
	if err := bindPayload(c, &in); err != nil {
		h.failErr(c, err)
		return
	}
	image, err := h.formImage(c, "image")
	if err != nil {
		h.failErr(c, err)
		return
	}
	m, err := h.svc.Ministries.Create(c.Request.Context(), in, image, actor(c))
	if err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, "Ministry created successfully", m)
}

// UpdateMinistry godoc
// @ID          updateMinistry
// @Summary     Update a ministry
// @Tags        Ministries
// @Accept      multipart/form-data,json
// @Produce     json
// @Security    BearerAuth
// @Param       id     path      string                 true   "Ministry ID (UUID)"  format(uuid)
// @Param       body   body      services.MinistryPatch  false  "Fields to change (JSON variant)"
// @Param       image  formData  file                   false  "New image"
// @Success     200  {object}  handlers.Envelope{data=domain.Ministry}
// @Failure     404  {object}  handlers.ErrorResponse "Ministry not found"
// @Router      /ministries/{id} [put]
func (h *Handlers) UpdateMinistry(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var patch services.MinistryPatch
	if err := bindPayload(c, &patch); err != nil {
		h.failErr(c, err)
		return
	}
	image, err := h.formImage(c, "image")
	if err != nil {
		h.failErr(c, err)
		return
	}
	m, err := h.svc.Ministries.Update(c.Request.Context(), id, patch, image)
	if err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Ministry updated successfully", m)
}

// DeleteMinistry godoc
// @ID          deleteMinistry
// @Summary     Delete a ministry
// @Tags        Ministries
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Ministry ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.Envelope
// @Failure     404  {object}  handlers.ErrorResponse "Ministry not found"
// @Router      /ministries/{id} [delete]
func (h *Handlers) DeleteMinistry(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Ministries.Delete(c.Request.Context(), id); err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Ministry deleted successfully", nil)
}
