package docs

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Path is where the API description is served.
const Path = "/docs/swagger.json"

//go:embed swagger.json
var swagger []byte

// Register serves the embedded Swagger document on r.
func Register(r gin.IRoutes) {
	r.GET(Path, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", swagger)
	})
}
