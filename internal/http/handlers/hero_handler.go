// Hero banner HTTP handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-church-backend/internal/services"
)

// GetHero godoc
// @ID          getHeroSettings
// @Summary     Get a page's hero banner
// @Description Returns the banner of the page, creating the default banner on first read.
// @Tags        Hero
// @Produce     json
// @Param       page  path      string  true  "Site page"  Enums(home, sermons, ministries, events, gallery, about, contact)
// @Success     200   {object}  handlers.Envelope{data=domain.HeroSettings}
// @Failure     400   {object}  handlers.ErrorResponse "Invalid page"
// @Router      /hero-settings/{page} [get]
func (h *Handlers) GetHero(c *gin.Context) {
	hero, err := h.svc.Hero.Get(c.Request.Context(), c.Param("page"))
	if err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", hero)
}

// UpdateHero godoc
// @ID          updateHeroSettings
// @Summary     Update a page's hero banner
// @Tags        Hero
// @Accept      multipart/form-data,json
// @Produce     json
// @Security    BearerAuth
// @Param       page            path      string   true   "Site page"  Enums(home, sermons, ministries, events, gallery, about, contact)
// @Param       title           formData  string   false  "Title (max 200)"
// @Param       subtitle        formData  string   false  "Subtitle (max 300)"
// @Param       overlayOpacity  formData  number   false  "Overlay opacity in [0, 1]"
// @Param       image           formData  file     false  "Background image"
// @Success     200  {object}  handlers.Envelope{data=domain.HeroSettings}
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Router      /hero-settings/{page} [put]
func (h *Handlers) UpdateHero(c *gin.Context) {
	var patch services.HeroPatch
	if err := bindPayload(c, &patch); err != nil {
		h.failErr(c, err)
		return
	}
	image, err := h.formImage(c, "image")
	if err != nil {
		h.failErr(c, err)
		return
	}
	hero, err := h.svc.Hero.Update(c.Request.Context(), c.Param("page"), patch, image, actor(c))
	if err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Hero settings updated successfully", hero)
}
