package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is a handler failure translated into the {error, message} envelope.
// Label fills the "error" field; it defaults to "Internal server error".
type Error struct {
	Code    int
	Label   string
	Message string
}

// HandlerFunc is an endpoint that returns either a payload for the success
// envelope or an Error. No failure leaves a request unanswered.
type HandlerFunc func(ctx *gin.Context) (any, *Error)

// ResolveEndpoint wraps a HandlerFunc into a gin handler producing the
// {success, data, timezone} success envelope.
func ResolveEndpoint(timezone string, h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		if apiErr != nil {
			label := apiErr.Label
			if label == "" {
				label = "Internal server error"
			}
			ctx.JSON(apiErr.Code, gin.H{"error": label, "message": apiErr.Message})
			return
		}

		ctx.JSON(http.StatusOK, gin.H{
			"success":  true,
			"data":     result,
			"timezone": timezone,
		})
	}
}

// Controller is the gin group endpoints mount onto, carrying the timezone id
// echoed in every success envelope.
type Controller struct {
	Group    *gin.RouterGroup
	Timezone string
}

func (c *Controller) GET(path string, h HandlerFunc) {
	c.Group.GET(path, ResolveEndpoint(c.Timezone, h))
}

func (c *Controller) POST(path string, h HandlerFunc) {
	c.Group.POST(path, ResolveEndpoint(c.Timezone, h))
}

// Raw mounts a plain gin handler for endpoints outside the envelope, such as
// the liveness probe.
func (c *Controller) Raw(method, path string, h gin.HandlerFunc) {
	c.Group.Handle(method, path, h)
}
