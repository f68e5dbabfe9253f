package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/go-petr/pet-roulette/pkg/configpkg"
)

// CORS returns the cross-origin policy of the browser facing gateway.
//
// In production only the configured origins are allowed. Elsewhere the
// request origin is echoed back, so any front-end can call with credentials.
func CORS(config configpkg.Config) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if config.IsProduction() {
		c.AllowOrigins = config.AllowedOrigins()
	} else {
		c.AllowOriginFunc = func(string) bool { return true }
	}

	return cors.New(c)
}
