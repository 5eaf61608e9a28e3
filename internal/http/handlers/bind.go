package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/tbourn/go-church-backend/internal/services"
)

// bindPayload decodes the request body into dst. The admin UI posts
// multipart forms so an image can travel with the fields; those bind on the
// `form` tags, JSON bodies on the `json` tags. Validation belongs to the
// services. An empty JSON body leaves dst untouched.
func bindPayload(c *gin.Context, dst any) error {
	var err error
	switch c.ContentType() {
	case binding.MIMEMultipartPOSTForm:
		err = c.ShouldBindWith(dst, binding.FormMultipart)
	case binding.MIMEPOSTForm:
		err = c.ShouldBindWith(dst, binding.FormPost)
	default:
		if c.Request.Body == nil || c.Request.ContentLength == 0 {
			return nil
		}
		if err = c.ShouldBindJSON(dst); errors.Is(err, io.EOF) {
			return nil
		}
	}
	if err != nil {
		return requestError(err)
	}
	return nil
}

// requestError classifies a body parsing failure. Oversized bodies keep
// their *http.MaxBytesError so they render as 413.
func requestError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return &services.Error{Kind: services.KindValidation, Message: "Malformed request body", Err: err}
}
