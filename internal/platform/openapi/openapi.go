// Package openapi assembles an OpenAPI 3.0 document from operation
// descriptors registered by the route owners.
package openapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
)

// Param is a query or path parameter of an operation.
type Param struct {
	Name        string
	In          string // "query" or "path"
	Type        string // "string", "integer" or "boolean"
	Required    bool
	Enum        []string
	Description string
}

// Response is one documented status of an operation. Each content type maps
// to a component schema name; an empty name documents an untyped body.
type Response struct {
	Description string
	Content     map[string]string
}

// Operation documents a single route.
type Operation struct {
	Method      string
	Path        string
	OperationID string
	Summary     string
	Tag         string
	Params      []Param
	Responses   map[int]Response
}

// Generator collects operations and component schemas and renders them as
// an OpenAPI 3.0 document.
type Generator struct {
	title   string
	version string
	baseURL string

	mu      sync.RWMutex
	ops     []Operation
	schemas map[string]map[string]interface{}
}

// NewGenerator creates an empty document for the API.
func NewGenerator(title, version, baseURL string) *Generator {
	return &Generator{
		title:   title,
		version: version,
		baseURL: baseURL,
		schemas: make(map[string]map[string]interface{}),
	}
}

// AddOperation documents a route. Paths use OpenAPI templating ("{id}").
func (g *Generator) AddOperation(op Operation) {
	g.mu.Lock()
	g.ops = append(g.ops, op)
	g.mu.Unlock()
}

// AddSchema registers a component schema under name.
func (g *Generator) AddSchema(name string, schema map[string]interface{}) {
	g.mu.Lock()
	g.schemas[name] = schema
	g.mu.Unlock()
}

// GenerateSpec produces the OpenAPI 3.0 document as a map.
func (g *Generator) GenerateSpec() map[string]interface{} {
	g.mu.RLock()
	defer g.mu.RUnlock()

	paths := make(map[string]interface{})
	tagSet := make(map[string]bool)
	for _, op := range g.ops {
		item, ok := paths[op.Path].(map[string]interface{})
		if !ok {
			item = make(map[string]interface{})
			paths[op.Path] = item
		}
		item[strings.ToLower(op.Method)] = buildOperation(op)
		if op.Tag != "" {
			tagSet[op.Tag] = true
		}
	}

	tags := make([]string, 0, len(tagSet))
	for t := range tagSet {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	tagList := make([]map[string]string, 0, len(tags))
	for _, t := range tags {
		tagList = append(tagList, map[string]string{"name": t})
	}

	schemas := make(map[string]interface{}, len(g.schemas)+1)
	for name, s := range g.schemas {
		schemas[name] = s
	}
	schemas["Error"] = map[string]interface{}{
		"type":     "object",
		"required": []string{"error"},
		"properties": map[string]interface{}{
			"error": map[string]string{"type": "string"},
		},
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":   g.title,
			"version": g.version,
		},
		"servers": []map[string]string{
			{"url": g.baseURL},
		},
		"tags":  tagList,
		"paths": paths,
		"components": map[string]interface{}{
			"schemas": schemas,
		},
	}
}

func buildOperation(op Operation) map[string]interface{} {
	out := map[string]interface{}{
		"summary":     op.Summary,
		"operationId": op.OperationID,
	}
	if op.Tag != "" {
		out["tags"] = []string{op.Tag}
	}
	if len(op.Params) > 0 {
		out["parameters"] = buildParameters(op.Params)
	}

	responses := make(map[string]interface{}, len(op.Responses))
	for code, r := range op.Responses {
		responses[strconv.Itoa(code)] = buildResponse(r)
	}
	out["responses"] = responses
	return out
}

func buildParameters(params []Param) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(params))
	for _, p := range params {
		schema := map[string]interface{}{"type": p.Type}
		if len(p.Enum) > 0 {
			schema["enum"] = p.Enum
		}
		param := map[string]interface{}{
			"name":     p.Name,
			"in":       p.In,
			"required": p.Required || p.In == "path",
			"schema":   schema,
		}
		if p.Description != "" {
			param["description"] = p.Description
		}
		out = append(out, param)
	}
	return out
}

func buildResponse(r Response) map[string]interface{} {
	out := map[string]interface{}{"description": r.Description}
	if len(r.Content) == 0 {
		return out
	}
	content := make(map[string]interface{}, len(r.Content))
	for ct, schemaName := range r.Content {
		var schema map[string]interface{}
		if schemaName == "" {
			schema = map[string]interface{}{"type": "string"}
		} else {
			schema = map[string]interface{}{"$ref": "#/components/schemas/" + schemaName}
		}
		content[ct] = map[string]interface{}{"schema": schema}
	}
	out["content"] = content
	return out
}

// ErrorResponse documents a {"error": "..."} body.
func ErrorResponse(description string) Response {
	return Response{
		Description: description,
		Content:     map[string]string{"application/json": "Error"},
	}
}

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{TITLE}} - Swagger UI</title>
  <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" >
  <style>
    html { box-sizing: border-box; overflow-y: scroll; }
    *, *:before, *:after { box-sizing: inherit; }
    body { margin: 0; background: #fafafa; }
  </style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: "{{SPEC_URL}}",
      dom_id: '#swagger-ui',
      deepLinking: true,
      presets: [SwaggerUIBundle.presets.apis],
      layout: "BaseLayout"
    })
  </script>
</body>
</html>`

// RegisterRoutes serves the document at openapi.json and a Swagger UI page at
// docs, both under the group.
func (g *Generator) RegisterRoutes(apiGroup *echo.Group, prefix string) {
	page := strings.NewReplacer(
		"{{TITLE}}", g.title,
		"{{SPEC_URL}}", prefix+"/openapi.json",
	).Replace(swaggerUIHTML)

	apiGroup.GET("/openapi.json", func(c echo.Context) error {
		return c.JSON(http.StatusOK, g.GenerateSpec())
	})
	apiGroup.GET("/docs", func(c echo.Context) error {
		return c.HTML(http.StatusOK, page)
	})
}
