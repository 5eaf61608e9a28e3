// About page HTTP handlers.
//
//   - GET    /about                    (the page, created with defaults on first read)
//   - PUT    /about                    (reconcile sections and leadership, optional welcome image)
//   - POST   /about/section-image      (upload only)
//   - POST   /about/leader-image       (upload only)
//   - DELETE /about/image/{publicId}   (best-effort delete of an about image)
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-church-backend/internal/media"
	"github.com/tbourn/go-church-backend/internal/services"
)

// GetAbout godoc
// @ID          getAbout
// @Summary     Get the about page
// @Tags        About
// @Produce     json
// @Success     200  {object}  handlers.Envelope{data=domain.About}
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /about [get]
func (h *Handlers) GetAbout(c *gin.Context) {
	about, err := h.svc.About.Get(c.Request.Context())
	if err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", about)
}

// UpdateAbout godoc
// @ID          updateAbout
// @Summary     Update the about page
// @Description Sections and leaders are matched by id: known ids are updated in place, entries without a stored id are added, and stored entries missing from the payload are removed. An omitted collection is left unchanged. In multipart requests sections, leadership and coreValues are JSON text.
// @Tags        About
// @Accept      json,multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       body   body      services.AboutInput  false  "About content (JSON variant)"
// @Param       image  formData  file                 false  "Welcome image"
// @Success     200  {object}  handlers.Envelope{data=domain.About}
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     404  {object}  handlers.ErrorResponse "Referenced section or leader does not exist"
// @Router      /about [put]
func (h *Handlers) UpdateAbout(c *gin.Context) {
	var in services.AboutInput
	if err := bindPayload(c, &in); err != nil {
		h.failErr(c, err)
		return
	}
	image, err := h.formImage(c, "image")
	if err != nil {
		h.failErr(c, err)
		return
	}
	about, err := h.svc.About.Update(c.Request.Context(), in, image, actor(c))
	if err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "About page updated successfully", about)
}

// UploadSectionImage godoc
// @ID          uploadAboutSectionImage
// @Summary     Upload an image for an about section
// @Tags        About
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       image  formData  file  true  "Image"
// @Success     200  {object}  handlers.Envelope{data=media.Asset}
// @Failure     400  {object}  handlers.ErrorResponse "Please upload an image"
// @Router      /about/section-image [post]
func (h *Handlers) UploadSectionImage(c *gin.Context) {
	h.uploadAboutImage(c, h.svc.About.UploadSectionImage, "Image uploaded successfully")
}

// UploadLeaderImage godoc
// @ID          uploadAboutLeaderImage
// @Summary     Upload a leader portrait
// @Tags        About
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       image  formData  file  true  "Image"
// @Success     200  {object}  handlers.Envelope{data=media.Asset}
// @Failure     400  {object}  handlers.ErrorResponse "Please upload an image"
// @Router      /about/leader-image [post]
func (h *Handlers) UploadLeaderImage(c *gin.Context) {
	h.uploadAboutImage(c, h.svc.About.UploadLeaderImage, "Leader image uploaded successfully")
}

func (h *Handlers) uploadAboutImage(c *gin.Context, upload func(context.Context, []byte) (media.Asset, error), msg string) {
	image, err := h.formImage(c, "image")
	if err != nil {
		h.failErr(c, err)
		return
	}
	asset, err := upload(c.Request.Context(), image)
	if err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, msg, asset)
}

// DeleteAboutImage godoc
// @ID          deleteAboutImage
// @Summary     Delete an about-page image
// @Description The public id may contain slashes, sent either raw or as %2F.
// @Tags        About
// @Produce     json
// @Security    BearerAuth
// @Param       publicId  path      string  true  "Image public id"  example(church-website/about/3f1c)
// @Success     200  {object}  handlers.Envelope
// @Failure     400  {object}  handlers.ErrorResponse "Invalid image reference"
// @Router      /about/image/{publicId} [delete]
func (h *Handlers) DeleteAboutImage(c *gin.Context) {
	publicID := strings.TrimPrefix(strings.ReplaceAll(c.Param("publicId"), "%2F", "/"), "/")
	if err := h.svc.About.DeleteImage(c.Request.Context(), publicID); err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Image deleted successfully", nil)
}
