// Sermon HTTP handlers.
//
//   - GET    /sermons                   (list published, paginated, ETag)
//   - GET    /sermons/{id}              (read)
//   - POST   /sermons                   (create, multipart with image)
//   - PUT    /sermons/{id}              (partial update, optional new image)
//   - DELETE /sermons/{id}              (delete with likes and image)
//   - POST   /sermons/{id}/like         (toggle like for the caller)
//   - GET    /sermons/{id}/like-status  (whether the caller liked it)
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-church-backend/internal/services"
	"github.com/tbourn/go-church-backend/internal/utils"
)

// LikeStatus is the like-status payload.
type LikeStatus struct {
	Liked bool `json:"liked" example:"true"`
}

// ListSermons godoc
// @ID          listSermons
// @Summary     List published sermons
// @Description Returns a page of published sermons. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Sermons
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"sermons:1a2b:12:0\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       limit          query   int     false "Items per page"               minimum(1) maximum(100) default(10)
// @Param       sort           query   string  false "Sort order"                   Enums(-date, date, -likes, title) default(-date)
//
// @Success     200  {object} handlers.ListEnvelope{data=[]domain.Sermon}
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /sermons [get]
func (h *Handlers) ListSermons(c *gin.Context) {
	p := services.SermonListParams{
		Page:  utils.AtoiDefault(c.Query("page"), 1),
		Limit: utils.AtoiDefault(c.Query("limit"), services.DefaultPageSize),
		Sort:  c.DefaultQuery("sort", "-date"),
	}
	if notModified(c, h.svc.Sermons, "sermons", fmt.Sprintf("%d:%d:%s", p.Page, p.Limit, p.Sort)) {
		return
	}

	res, err := h.svc.Sermons.List(c.Request.Context(), p)
	if err != nil {
		h.failErr(c, err)
		return
	}
	okPage(c, res)
}

// GetSermon godoc
// @ID          getSermon
// @Summary     Get a sermon
// @Tags        Sermons
// @Produce     json
// @Param       id   path      string  true  "Sermon ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.Envelope{data=domain.Sermon}
// @Failure     400  {object}  handlers.ErrorResponse "Invalid ID"
// @Failure     404  {object}  handlers.ErrorResponse "Sermon not found"
// @Router      /sermons/{id} [get]
func (h *Handlers) GetSermon(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	s, err := h.svc.Sermons.Get(c.Request.Context(), id)
	if err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", s)
}

// CreateSermon godoc
// @ID          createSermon
// @Summary     Create a sermon
// @Description Stores the cover image, derives the YouTube video id and creates the sermon.
// @Tags        Sermons
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
//
// @Param       title        formData  string  true   "Title (max 200)"
// @Param       description  formData  string  true   "Description"
// @Param       scripture    formData  string  true   "Scripture reference (max 100)"
// @Param       youtubeUrl   formData  string  true   "YouTube URL"  example(https://www.youtube.com/watch?v=dQw4w9WgXcQ)
// @Param       date         formData  string  false  "Date (YYYY-MM-DD or RFC 3339)"
// @Param       pastor       formData  string  false  "Pastor (default Pastor)"
// @Param       isPublished  formData  bool    false  "Published (default true)"
// @Param       image        formData  file    true   "Cover image (jpeg, png, webp)"
//
// @Success     201  {object}  handlers.Envelope{data=domain.Sermon}
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     401  {object}  handlers.ErrorResponse "Not authorized"
// @Failure     403  {object}  handlers.ErrorResponse "Role not allowed"
// @Failure     503  {object}  handlers.ErrorResponse "Image storage unavailable"
// @Router      /sermons [post]
func (h *Handlers) CreateSermon(c *gin.Context) {
	var in services.SermonInput
	if err := bindPayload(c, &in); err != nil {
		h.failErr(c, err)
		return
	}
	image, err := h.formImage(c, "image")
	if err != nil {
		h.failErr(c, err)
		return
	}

	s, err := h.svc.Sermons.Create(c.Request.Context(), in, image, actor(c))
	if err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, "Sermon created successfully", s)
}

// UpdateSermon godoc
// @ID          updateSermon
// @Summary     Update a sermon
// @Description Applies the sent fields; a new image replaces the old one.
// @Tags        Sermons
// @Accept      multipart/form-data,json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id     path      string                 true   "Sermon ID (UUID)"  format(uuid)
// @Param       body   body      services.SermonPatch    false  "Fields to change (JSON variant)"
// @Param       image  formData  file                   false  "New cover image"
//
// @Success     200  {object}  handlers.Envelope{data=domain.Sermon}
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     404  {object}  handlers.ErrorResponse "Sermon not found"
// @Router      /sermons/{id} [put]
func (h *Handlers) UpdateSermon(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var patch services.SermonPatch
	if err := bindPayload(c, &patch); err != nil {
		h.failErr(c, err)
		return
	}
	image, err := h.formImage(c, "image")
	if err != nil {
		h.failErr(c, err)
		return
	}

	s, err := h.svc.Sermons.Update(c.Request.Context(), id, patch, image)
	if err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Sermon updated successfully", s)
}

// DeleteSermon godoc
// @ID          deleteSermon
// @Summary     Delete a sermon
// @Description Deletes the sermon, its likes and its image.
// @Tags        Sermons
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Sermon ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.Envelope
// @Failure     404  {object}  handlers.ErrorResponse "Sermon not found"
// @Router      /sermons/{id} [delete]
func (h *Handlers) DeleteSermon(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Sermons.Delete(c.Request.Context(), id); err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Sermon deleted successfully", nil)
}

// ToggleSermonLike godoc
// @ID          toggleSermonLike
// @Summary     Like or unlike a sermon
// @Description Flips the like of the caller, identified by X-User-ID or the client address.
// @Tags        Sermons
// @Produce     json
// @Param       X-User-ID  header  string  false "Caller identity"  example(visitor-42)
// @Param       id         path    string  true  "Sermon ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.Envelope{data=services.LikeResult}
// @Failure     404  {object}  handlers.ErrorResponse "Sermon not found"
// @Failure     409  {object}  handlers.ErrorResponse "Concurrent toggle"
// @Router      /sermons/{id}/like [post]
func (h *Handlers) ToggleSermonLike(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	res, err := h.svc.Likes.Toggle(c.Request.Context(), id, likeIdentity(c), c.ClientIP())
	if err != nil {
		h.failErr(c, err)
		return
	}
	msg := "Sermon unliked"
	if res.Liked {
		msg = "Sermon liked"
	}
	ok(c, http.StatusOK, msg, res)
}

// SermonLikeStatus godoc
// @ID          sermonLikeStatus
// @Summary     Whether the caller liked a sermon
// @Tags        Sermons
// @Produce     json
// @Param       X-User-ID  header  string  false "Caller identity"  example(visitor-42)
// @Param       id         path    string  true  "Sermon ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.Envelope{data=handlers.LikeStatus}
// @Failure     400  {object}  handlers.ErrorResponse "Invalid ID"
// @Router      /sermons/{id}/like-status [get]
func (h *Handlers) SermonLikeStatus(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	liked, err := h.svc.Likes.Status(c.Request.Context(), id, likeIdentity(c))
	if err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", LikeStatus{Liked: liked})
}
