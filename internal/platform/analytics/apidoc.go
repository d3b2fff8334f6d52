package analytics

import (
	"net/http"

	"github.com/norrisp90/HL7SyntGen/internal/platform/openapi"
)

// DescribeAPI documents the statistics routes.
func DescribeAPI(g *openapi.Generator) {
	duration := map[string]string{"type": "integer", "description": "nanoseconds"}
	g.AddSchema("TypeSummary", map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"message_type_id": map[string]string{"type": "integer"},
			"hl7_type":        map[string]string{"type": "string"},
			"generated":       map[string]string{"type": "integer"},
			"failed":          map[string]string{"type": "integer"},
			"error_rate":      map[string]string{"type": "number"},
			"avg_latency":     duration,
			"p95_latency":     duration,
			"last_at":         map[string]string{"type": "string", "format": "date-time"},
		},
	})
	g.AddSchema("StatsOverview", map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"total_generated": map[string]string{"type": "integer"},
			"total_failed":    map[string]string{"type": "integer"},
			"error_rate":      map[string]string{"type": "number"},
			"avg_latency":     duration,
			"bytes_out":       map[string]string{"type": "integer"},
			"framed":          map[string]string{"type": "integer"},
			"by_format": map[string]interface{}{
				"type":                 "object",
				"additionalProperties": map[string]string{"type": "integer"},
			},
			"unique_types": map[string]string{"type": "integer"},
			"top_types": map[string]interface{}{
				"type":  "array",
				"items": map[string]string{"$ref": "#/components/schemas/TypeSummary"},
			},
		},
	})
	g.AddSchema("TypeSummaryList", map[string]interface{}{
		"type":  "array",
		"items": map[string]string{"$ref": "#/components/schemas/TypeSummary"},
	})
	g.AddSchema("TimeSeries", map[string]interface{}{
		"type": "array",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"timestamp":   map[string]string{"type": "string", "format": "date-time"},
				"generated":   map[string]string{"type": "integer"},
				"failed":      map[string]string{"type": "integer"},
				"avg_latency": duration,
			},
		},
	})

	ok := func(desc, schema string) openapi.Response {
		return openapi.Response{Description: desc, Content: map[string]string{"application/json": schema}}
	}
	g.AddOperation(openapi.Operation{
		Method: http.MethodGet, Path: "/api/v1/stats", OperationID: "getStats",
		Summary: "Generation statistics overview", Tag: "stats",
		Responses: map[int]openapi.Response{http.StatusOK: ok("Overview", "StatsOverview")},
	})
	g.AddOperation(openapi.Operation{
		Method: http.MethodGet, Path: "/api/v1/stats/types", OperationID: "listTypeStats",
		Summary: "Message types by generated count", Tag: "stats",
		Params:    []openapi.Param{{Name: "limit", In: "query", Type: "integer"}},
		Responses: map[int]openapi.Response{http.StatusOK: ok("Type summaries", "TypeSummaryList")},
	})
	g.AddOperation(openapi.Operation{
		Method: http.MethodGet, Path: "/api/v1/stats/types/{id}", OperationID: "getTypeStats",
		Summary: "Statistics for one message type", Tag: "stats",
		Params: []openapi.Param{{Name: "id", In: "path", Type: "integer"}},
		Responses: map[int]openapi.Response{
			http.StatusOK:         ok("Type summary", "TypeSummary"),
			http.StatusBadRequest: openapi.ErrorResponse("Non-numeric id"),
			http.StatusNotFound:   openapi.ErrorResponse("Nothing generated for this type"),
		},
	})
	g.AddOperation(openapi.Operation{
		Method: http.MethodGet, Path: "/api/v1/stats/timeseries", OperationID: "getStatsTimeSeries",
		Summary: "Generations bucketed over time", Tag: "stats",
		Params: []openapi.Param{
			{Name: "interval", In: "query", Type: "string", Description: "bucket width, e.g. 1m"},
			{Name: "duration", In: "query", Type: "string", Description: "lookback, e.g. 1h or 7d"},
		},
		Responses: map[int]openapi.Response{
			http.StatusOK:         ok("Buckets", "TimeSeries"),
			http.StatusBadRequest: openapi.ErrorResponse("Too many buckets"),
		},
	})
}
