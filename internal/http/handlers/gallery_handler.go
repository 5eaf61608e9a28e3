// Gallery HTTP handlers.
//
//   - GET    /gallery                              (published albums, newest first)
//   - GET    /gallery/{id}
//   - POST   /gallery                              (create with images[] and captions[i])
//   - POST   /gallery/{id}/images                  (append images)
//   - DELETE /gallery/{id}                         (album and all its images)
//   - DELETE /gallery/{id}/images/{imageId}        (one image)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-church-backend/internal/services"
)

// ListAlbums godoc
// @ID          listAlbums
// @Summary     List published albums
// @Tags        Gallery
// @Produce     json
// @Success     200  {object}  handlers.ListEnvelope{data=[]domain.GalleryAlbum}
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /gallery [get]
func (h *Handlers) ListAlbums(c *gin.Context) {
	albums, err := h.svc.Gallery.List(c.Request.Context())
	if err != nil {
		h.failErr(c, err)
		return
	}
	okList(c, albums)
}

// GetAlbum godoc
// @ID          getAlbum
// @Summary     Get an album
// @Tags        Gallery
// @Produce     json
// @Param       id   path      string  true  "Album ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.Envelope{data=domain.GalleryAlbum}
// @Failure     404  {object}  handlers.ErrorResponse "Album not found"
// @Router      /gallery/{id} [get]
func (h *Handlers) GetAlbum(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	album, err := h.svc.Gallery.Get(c.Request.Context(), id)
	if err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", album)
}

// CreateAlbum godoc
// @ID          createAlbum
// @Summary     Create an album
// @Description The first uploaded image becomes the cover.
// @Tags        Gallery
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       albumName    formData  string  true   "Album name (max 100)"
// @Param       description  formData  string  false  "Description (max 500)"
// @Param       date         formData  string  false  "Album date"
// @Param       images       formData  file    true   "Images (repeat the field, max 10)"
// @Param       captions[0]  formData  string  false  "Caption of the first image"
// @Success     201  {object}  handlers.Envelope{data=domain.GalleryAlbum}
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Router      /gallery [post]
func (h *Handlers) CreateAlbum(c *gin.Context) {
	var in services.AlbumInput
	if err := bindPayload(c, &in); err != nil {
		h.failErr(c, err)
		return
	}
	files, err := h.galleryUploads(c)
	if err != nil {
		h.failErr(c, err)
		return
	}
	album, err := h.svc.Gallery.Create(c.Request.Context(), in, files, actor(c))
	if err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, "Album created successfully", album)
}

// AddAlbumImages godoc
// @ID          addAlbumImages
// @Summary     Add images to an album
// @Tags        Gallery
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       id      path      string  true  "Album ID (UUID)"  format(uuid)
// @Param       images  formData  file    true  "Images"
// @Success     200  {object}  handlers.Envelope{data=domain.GalleryAlbum}
// @Failure     404  {object}  handlers.ErrorResponse "Album not found"
// @Router      /gallery/{id}/images [post]
func (h *Handlers) AddAlbumImages(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	files, err := h.galleryUploads(c)
	if err != nil {
		h.failErr(c, err)
		return
	}
	album, err := h.svc.Gallery.AddImages(c.Request.Context(), id, files)
	if err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Images added successfully", album)
}

// DeleteAlbum godoc
// @ID          deleteAlbum
// @Summary     Delete an album
// @Tags        Gallery
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Album ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.Envelope
// @Failure     404  {object}  handlers.ErrorResponse "Album not found"
// @Router      /gallery/{id} [delete]
func (h *Handlers) DeleteAlbum(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Gallery.Delete(c.Request.Context(), id); err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Album deleted successfully", nil)
}

// DeleteAlbumImage godoc
// @ID          deleteAlbumImage
// @Summary     Delete one image of an album
// @Tags        Gallery
// @Produce     json
// @Security    BearerAuth
// @Param       id       path      string  true  "Album ID (UUID)"  format(uuid)
// @Param       imageId  path      string  true  "Image ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.Envelope{data=domain.GalleryAlbum}
// @Failure     404  {object}  handlers.ErrorResponse "Album or image not found"
// @Router      /gallery/{id}/images/{imageId} [delete]
func (h *Handlers) DeleteAlbumImage(c *gin.Context) {
	albumID, valid := pathID(c, "id")
	if !valid {
		return
	}
	imageID, valid := pathID(c, "imageId")
	if !valid {
		return
	}
	album, err := h.svc.Gallery.DeleteImage(c.Request.Context(), albumID, imageID)
	if err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Image deleted successfully", album)
}

// galleryUploads reads the "images" files and pairs them with captions.
func (h *Handlers) galleryUploads(c *gin.Context) ([]services.ImageUpload, error) {
	files, err := h.formFiles(c, "images", h.opts.MaxUploadFiles)
	if err != nil {
		return nil, err
	}
	captions := formCaptions(c, len(files))
	out := make([]services.ImageUpload, len(files))
	for i, data := range files {
		out[i] = services.ImageUpload{Data: data, Caption: captions[i]}
	}
	return out, nil
}
