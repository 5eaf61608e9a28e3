// Contact HTTP handlers.
//
//   - POST   /contact                 (public form; Idempotency-Key aware)
//   - GET    /contact/messages        (staff; status filter, paginated)
//   - GET    /contact/messages/{id}   (staff; marks the message read)
//   - PUT    /contact/messages/{id}   (staff; status and notes)
//   - DELETE /contact/messages/{id}   (admin)
//
// A POST that carries an Idempotency-Key already used by the same client
// returns the original message id with 200 and Idempotency-Replayed: true
// instead of storing a second message.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-church-backend/internal/http/middleware"
	"github.com/tbourn/go-church-backend/internal/services"
	"github.com/tbourn/go-church-backend/internal/utils"
)

// ContactReceipt is returned for a submitted contact form.
type ContactReceipt struct {
	ID string `json:"id" example:"3f1c2b9e-8a7d-4c55-9a0e-2f5b6c7d8e9f"`
}

const contactThanks = "Your message has been sent successfully. We will get back to you soon!"

// SubmitContact godoc
// @ID          submitContact
// @Summary     Submit the contact form
// @Tags        Contact
// @Accept      json,x-www-form-urlencoded
// @Produce     json
// @Param       Idempotency-Key  header  string                 false  "Retry key; a repeat returns the original id"  example(7b0e1c2a-form-1)
// @Param       body             body    services.ContactInput  true   "Message"
// @Success     201  {object}  handlers.Envelope{data=handlers.ContactReceipt}
// @Success     200  {object}  handlers.Envelope{data=handlers.ContactReceipt}  "Replayed"
// @Header      200  {string}  Idempotency-Replayed  "true"
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     429  {object}  handlers.ErrorResponse "Too many requests"
// @Router      /contact [post]
func (h *Handlers) SubmitContact(c *gin.Context) {
	var in services.ContactInput
	if err := bindPayload(c, &in); err != nil {
		h.failErr(c, err)
		return
	}
	key, _ := middleware.GetIdempotencyKey(c)

	msg, replayed, err := h.svc.Contact.Submit(c.Request.Context(), in, middleware.ClientIdentity(c), c.ClientIP(), key)
	if err != nil {
		h.failErr(c, err)
		return
	}
	if replayed {
		c.Header("Idempotency-Replayed", "true")
		ok(c, http.StatusOK, contactThanks, ContactReceipt{ID: msg.ID})
		return
	}
	ok(c, http.StatusCreated, contactThanks, ContactReceipt{ID: msg.ID})
}

// ListContactMessages godoc
// @ID          listContactMessages
// @Summary     List contact messages
// @Tags        Contact
// @Produce     json
// @Security    BearerAuth
// @Param       status  query  string  false  "Status filter"  Enums(new, read, replied, archived)
// @Param       page    query  int     false  "Page number"     minimum(1) default(1)
// @Param       limit   query  int     false  "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListEnvelope{data=[]domain.ContactMessage}
// @Failure     400  {object}  handlers.ErrorResponse "Invalid status"
// @Router      /contact/messages [get]
func (h *Handlers) ListContactMessages(c *gin.Context) {
	p := services.ContactListParams{
		Status: strings.TrimSpace(c.Query("status")),
		Page:   utils.AtoiDefault(c.Query("page"), 1),
		Limit:  utils.AtoiDefault(c.Query("limit"), services.DefaultContactPageSize),
	}
	res, err := h.svc.Contact.List(c.Request.Context(), p)
	if err != nil {
		h.failErr(c, err)
		return
	}
	okPage(c, res)
}

// GetContactMessage godoc
// @ID          getContactMessage
// @Summary     Read a contact message
// @Description Returns the message and marks a new message as read.
// @Tags        Contact
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Message ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.Envelope{data=domain.ContactMessage}
// @Failure     404  {object}  handlers.ErrorResponse "Message not found"
// @Router      /contact/messages/{id} [get]
func (h *Handlers) GetContactMessage(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	msg, err := h.svc.Contact.Open(c.Request.Context(), id)
	if err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", msg)
}

// UpdateContactMessage godoc
// @ID          updateContactMessage
// @Summary     Update a contact message
// @Tags        Contact
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      string                 true  "Message ID (UUID)"  format(uuid)
// @Param       body  body      services.ContactPatch  true  "Status and notes"
// @Success     200  {object}  handlers.Envelope{data=domain.ContactMessage}
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     404  {object}  handlers.ErrorResponse "Message not found"
// @Router      /contact/messages/{id} [put]
func (h *Handlers) UpdateContactMessage(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var patch services.ContactPatch
	if err := bindPayload(c, &patch); err != nil {
		h.failErr(c, err)
		return
	}
	msg, err := h.svc.Contact.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Message updated successfully", msg)
}

// DeleteContactMessage godoc
// @ID          deleteContactMessage
// @Summary     Delete a contact message
// @Tags        Contact
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Message ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.Envelope
// @Failure     404  {object}  handlers.ErrorResponse "Message not found"
// @Router      /contact/messages/{id} [delete]
func (h *Handlers) DeleteContactMessage(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Contact.Delete(c.Request.Context(), id); err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Message deleted successfully", nil)
}
