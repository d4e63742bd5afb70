package handlers

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/rms-templui/internal/app/components/banner"
)

// addFlash queues a one-shot banner for the next page this browser renders.
func (h *BaseHandler) addFlash(c *gin.Context, typ banner.Type, message string) {
	s := sessions.Default(c)
	s.AddFlash(string(typ) + "|" + message)
	if err := s.Save(); err != nil {
		h.Logger.Warn("Failed to save flash", zap.Error(err))
	}
}

// takeFlash pops the most recent queued banner, if any.
func (h *BaseHandler) takeFlash(c *gin.Context) banner.BannerProps {
	s := sessions.Default(c)
	flashes := s.Flashes()
	if len(flashes) == 0 {
		return banner.BannerProps{}
	}
	if err := s.Save(); err != nil {
		h.Logger.Warn("Failed to save flash", zap.Error(err))
	}
	raw, _ := flashes[len(flashes)-1].(string)
	typ, msg, ok := strings.Cut(raw, "|")
	if !ok {
		return banner.BannerProps{Type: banner.BannerInfo, Message: raw, Dismissable: true}
	}
	return banner.BannerProps{Type: banner.Type(typ), Message: msg, Dismissable: true}
}
