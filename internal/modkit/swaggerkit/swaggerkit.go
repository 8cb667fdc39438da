// Package swaggerkit serves the generated OpenAPI document and the Swagger UI
// under /api/docs
package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	"immiwatch/internal/modkit/httpkit"
	perr "immiwatch/internal/platform/errors"
	phttp "immiwatch/internal/platform/net/http"

	docs "immiwatch/internal/services/api/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	// DocsPath is where the UI lives
	DocsPath = "/api/docs"
	// SpecPath is the JSON document the UI loads
	SpecPath = DocsPath + "/doc.json"
)

// readDoc is swapped in tests
var readDoc = func() string { return docs.SwaggerInfo.ReadDoc() }

// Mount serves the UI and spec when enabled
func Mount(r httpkit.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get(DocsPath, func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, DocsPath+"/", http.StatusPermanentRedirect)
	})
	r.Get(SpecPath, serveSpec)
	r.Handle(DocsPath+"/*", httpSwagger.Handler(
		httpSwagger.InstanceName(docs.SwaggerInfo.InstanceName()),
		httpSwagger.URL(SpecPath),
	))
}

func serveSpec(w http.ResponseWriter, r *http.Request) {
	spec, err := Prepare(readDoc())
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	phttp.JSON(w, http.StatusOK, spec)
}

// Prepare parses the generated document and normalizes it for the UI: OAS
// 3.0.3, a server rooted at /api/v1 and a 500 envelope on every operation
func Prepare(raw string) (map[string]any, error) {
	var spec map[string]any
	if err := json.Unmarshal([]byte(raw), &spec); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "parse openapi document")
	}

	// the bundled UI renders 3.0 only
	delete(spec, "swagger")
	if v, _ := spec["openapi"].(string); !strings.HasPrefix(v, "3.0") {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": httpkit.APIPrefix}}
	}

	schemas := child(child(spec, "components"), "schemas")
	if _, ok := schemas[envelopeRef]; !ok {
		schemas[envelopeRef] = envelopeSchema
	}

	paths, _ := spec["paths"].(map[string]any)
	for _, p := range paths {
		ops, _ := p.(map[string]any)
		for _, op := range ops {
			o, ok := op.(map[string]any)
			if !ok {
				continue
			}
			resps := child(o, "responses")
			if _, ok := resps["500"]; !ok {
				resps["500"] = serverError
			}
		}
	}
	return spec, nil
}

// child returns m[key] as an object, creating it when missing
func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}

// envelopeRef matches the name swag gives httpkit.Envelope
const envelopeRef = "httpkit.Envelope"

var envelopeSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"status_code": map[string]any{"type": "integer"},
		"status":      map[string]any{"type": "string"},
		"code":        map[string]any{"type": "integer"},
		"error":       map[string]any{"type": "string"},
		"field":       map[string]any{"type": "string"},
		"request_id":  map[string]any{"type": "string"},
		"data":        map[string]any{},
	},
	"required": []any{"status_code", "status"},
}

var serverError = map[string]any{
	"description": "Internal Server Error",
	"content": map[string]any{
		"application/json": map[string]any{
			"schema": map[string]any{"$ref": "#/components/schemas/" + envelopeRef},
		},
	},
}
