package openapi

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"

	"bookshelf-backend/internal/shared/response"
)

//go:embed openapi.yaml
var document []byte

var (
	loadOnce sync.Once
	loaded   *openapi3.T
	loadErr  error
)

// Load parses and validates the embedded API document. The result is
// shared; callers must not modify it.
func Load() (*openapi3.T, error) {
	loadOnce.Do(func() {
		doc, err := openapi3.NewLoader().LoadFromData(document)
		if err != nil {
			loadErr = fmt.Errorf("load openapi document: %w", err)
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			loadErr = fmt.Errorf("validate openapi document: %w", err)
			return
		}
		loaded = doc
	})
	return loaded, loadErr
}

// Handler serves the document as JSON.
func Handler(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := Load()
		if err != nil {
			response.InternalServerError(c, err.Error())
			return
		}

		out := *doc
		if version != "" {
			info := *doc.Info
			info.Version = version
			out.Info = &info
		}
		c.JSON(http.StatusOK, &out)
	}
}
