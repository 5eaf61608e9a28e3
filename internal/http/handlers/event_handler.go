// Event HTTP handlers.
//
//   - GET    /events       (list published; upcoming, featured, category filters; ETag)
//   - GET    /events/{id}
//   - POST   /events       (create, multipart with image)
//   - PUT    /events/{id}
//   - DELETE /events/{id}
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-church-backend/internal/services"
	"github.com/tbourn/go-church-backend/internal/sysutil"
)

// ListEvents godoc
// @ID          listEvents
// @Summary     List published events
// @Description Returns published events ordered by start date. upcoming=true keeps events starting from now on; upcoming=false keeps past ones.
// @Tags        Events
// @Produce     json
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       upcoming       query   bool    false "Filter on start date relative to now"
// @Param       featured       query   bool    false "Filter on the featured flag"
// @Param       category       query   string  false "Category"  Enums(worship, bible-study, youth, outreach, fellowship, other)
// @Success     200  {object}  handlers.ListEnvelope{data=[]domain.Event}
// @Success     304  {string}  string "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /events [get]
func (h *Handlers) ListEvents(c *gin.Context) {
	p := services.EventListParams{
		Upcoming: sysutil.OptionalBool(c.Query("upcoming")),
		Featured: sysutil.OptionalBool(c.Query("featured")),
		Category: strings.TrimSpace(c.Query("category")),
	}
	variant := fmt.Sprintf("%s:%s:%s", c.Query("upcoming"), c.Query("featured"), p.Category)
	// Upcoming depends on the clock as well as the data.
	if p.Upcoming == nil && notModified(c, h.svc.Events, "events", variant) {
		return
	}

	events, err := h.svc.Events.List(c.Request.Context(), p)
	if err != nil {
		h.failErr(c, err)
		return
	}
	okList(c, events)
}

// GetEvent godoc
// @ID          getEvent
// @Summary     Get an event
// @Tags        Events
// @Produce     json
// @Param       id   path      string  true  "Event ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.Envelope{data=domain.Event}
// @Failure     400  {object}  handlers.ErrorResponse "Invalid ID"
// @Failure     404  {object}  handlers.ErrorResponse "Event not found"
// @Router      /events/{id} [get]
func (h *Handlers) GetEvent(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	ev, err := h.svc.Events.Get(c.Request.Context(), id)
	if err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", ev)
}

// CreateEvent godoc
// @ID          createEvent
// @Summary     Create an event
// @Tags        Events
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       title        formData  string  true   "Title (max 200)"
// @Param       description  formData  string  true   "Description"
// @Param       startDate    formData  string  true   "Start (RFC 3339 or YYYY-MM-DDTHH:MM)"
// @Param       endDate      formData  string  true   "End, not before start"
// @Param       location     formData  string  true   "Location (max 200)"
// @Param       category     formData  string  false  "Category"  Enums(worship, bible-study, youth, outreach, fellowship, other)
// @Param       isFeatured   formData  bool    false  "Featured"
// @Param       image        formData  file    true   "Event image"
// @Success     201  {object}  handlers.Envelope{data=domain.Event}
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Router      /events [post]
func (h *Handlers) CreateEvent(c *gin.Context) {
	var in services.EventInput
	if err := bindPayload(c, &in); err != nil {
		h.failErr(c, err)
		return
	}
	image, err := h.formImage(c, "image")
	if err != nil {
		h.failErr(c, err)
		return
	}
	ev, err := h.svc.Events.Create(c.Request.Context(), in, image, actor(c))
	if err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, "Event created successfully", ev)
}

// UpdateEvent godoc
// @ID          updateEvent
// @Summary     Update an event
// @Tags        Events
// @Accept      multipart/form-data,json
// @Produce     json
// @Security    BearerAuth
// @Param       id     path      string              true   "Event ID (UUID)"  format(uuid)
// @Param       body   body      services.EventPatch  false  "Fields to change (JSON variant)"
// @Param       image  formData  file                false  "New image"
// @Success     200  {object}  handlers.Envelope{data=domain.Event}
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     404  {object}  handlers.ErrorResponse "Event not found"
// @Router      /events/{id} [put]
func (h *Handlers) UpdateEvent(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var patch services.EventPatch
	if err := bindPayload(c, &patch); err != nil {
		h.failErr(c, err)
		return
	}
	image, err := h.formImage(c, "image")
	if err != nil {
		h.failErr(c, err)
		return
	}
	ev, err := h.svc.Events.Update(c.Request.Context(), id, patch, image)
	if err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Event updated successfully", ev)
}

// DeleteEvent godoc
// @ID          deleteEvent
// @Summary     Delete an event
// @Tags        Events
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Event ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.Envelope
// @Failure     404  {object}  handlers.ErrorResponse "Event not found"
// @Router      /events/{id} [delete]
func (h *Handlers) DeleteEvent(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Events.Delete(c.Request.Context(), id); err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Event deleted successfully", nil)
}
