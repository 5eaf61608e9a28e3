package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/tbourn/go-church-backend/internal/services"
)

var imageExts = map[string]bool{".jpeg": true, ".jpg": true, ".png": true, ".webp": true}

// formImage returns the single image sent in field, or nil when the request
// carries none.
func (h *Handlers) formImage(c *gin.Context, field string) ([]byte, error) {
	files, err := h.formFiles(c, field, 1)
	if err != nil || len(files) == 0 {
		return nil, err
	}
	return files[0], nil
}

// formFiles reads up to limit images from the multipart field. Each file must
// have an image extension and fit in MaxUploadBytes; the content itself is
// checked again when it is optimized.
func (h *Handlers) formFiles(c *gin.Context, field string, limit int) ([][]byte, error) {
	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, requestError(err)
	}
	headers := form.File[field]
	if len(headers) > limit {
		return nil, &services.Error{
			Kind:    services.KindValidation,
			Message: fmt.Sprintf("Too many files. Maximum is %d files", limit),
		}
	}

	out := make([][]byte, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > h.opts.MaxUploadBytes {
			return nil, h.fileTooLarge()
		}
		if !imageExts[strings.ToLower(filepath.Ext(fh.Filename))] {
			return nil, services.ErrUnsupportedImage
		}
		data, err := h.readFile(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

func (h *Handlers) readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, requestError(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.opts.MaxUploadBytes+1))
	if err != nil {
		return nil, requestError(err)
	}
	if int64(len(data)) > h.opts.MaxUploadBytes {
		return nil, h.fileTooLarge()
	}
	return data, nil
}

func (h *Handlers) fileTooLarge() error {
	return &services.Error{
		Kind:    services.KindValidation,
		Message: fmt.Sprintf("File size too large. Maximum size is %dMB", h.opts.MaxUploadBytes>>20),
	}
}

// formCaptions returns the caption for each of n uploaded images, read from
// captions[i] or, failing that, the i-th "captions" value.
func formCaptions(c *gin.Context, n int) []string {
	out := make([]string, n)
	list := c.PostFormArray("captions")
	for i := range out {
		if v, ok := c.GetPostForm(fmt.Sprintf("captions[%d]", i)); ok {
			out[i] = v
		} else if i < len(list) {
			out[i] = list[i]
		}
	}
	return out
}
