package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waqf-qatar/prayer-api/internal/http/api"
	"github.com/waqf-qatar/prayer-api/internal/syncer"
)

type SyncController struct {
	engine *syncer.Engine
}

func NewSyncController(engine *syncer.Engine) *SyncController {
	return &SyncController{engine: engine}
}

func SyncModule(engine *syncer.Engine) api.Module {
	ctl := NewSyncController(engine)
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/sync", ctl.runSync)
	})
}

// runSync triggers one sync run. There is no retry here; a failed run is
// re-triggered by the external scheduler or another POST.
func (s *SyncController) runSync(ctx *gin.Context) (any, *api.Error) {
	result, err := s.engine.RunSync(ctx.Request.Context())
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Label: "Sync failed", Message: err.Error()}
	}
	return result, nil
}
