package healthlink

import (
	"net/http"
	"strconv"

	"github.com/norrisp90/HL7SyntGen/internal/platform/openapi"
)

// DescribeAPI documents the generation routes registered by RegisterRoutes.
func DescribeAPI(g *openapi.Generator) {
	g.AddSchema("MessageType", map[string]interface{}{
		"type":     "object",
		"required": []string{"id", "hl7_type", "name", "header_suffix"},
		"properties": map[string]interface{}{
			"id":            map[string]interface{}{"type": "integer", "minimum": 1, "maximum": len(catalog)},
			"hl7_type":      map[string]string{"type": "string"},
			"name":          map[string]string{"type": "string"},
			"header_suffix": map[string]string{"type": "string"},
		},
	})
	g.AddSchema("MessageTypeList", map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"message_types": map[string]interface{}{
				"type":  "array",
				"items": map[string]string{"$ref": "#/components/schemas/MessageType"},
			},
			"total": map[string]string{"type": "integer"},
		},
	})
	g.AddSchema("FramingInfo", map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"start_block":    map[string]string{"type": "string"},
			"end_block":      map[string]string{"type": "string"},
			"terminator":     map[string]string{"type": "string"},
			"total_length":   map[string]string{"type": "integer"},
			"xml_length":     map[string]string{"type": "integer"},
			"frame_overhead": map[string]string{"type": "integer"},
		},
	})
	g.AddSchema("Envelope", map[string]interface{}{
		"type":     "object",
		"required": []string{"message_type_id", "message_type", "hl7_type", "message_control_id", "xml_message"},
		"properties": map[string]interface{}{
			"message_type_id":    map[string]string{"type": "integer"},
			"message_type":       map[string]string{"type": "string"},
			"hl7_type":           map[string]string{"type": "string"},
			"request_id":         map[string]string{"type": "string"},
			"message_control_id": map[string]string{"type": "string"},
			"xml_message":        map[string]string{"type": "string"},
			"tcp_framed_bytes":   map[string]string{"type": "string", "description": "hex encoded"},
			"framing_info":       map[string]string{"$ref": "#/components/schemas/FramingInfo"},
		},
	})

	g.AddOperation(openapi.Operation{
		Method:      http.MethodGet,
		Path:        "/api/v1/generate",
		OperationID: "generateMessage",
		Summary:     "Generate one synthetic HealthLink message",
		Tag:         "messages",
		Params: []openapi.Param{
			{Name: "type", In: "query", Type: "integer", Description: "Message type id 1-" + strconv.Itoa(len(catalog)) + ", random when absent"},
			{Name: "format", In: "query", Type: "string", Enum: []string{"xml", "raw", "hl7", "json"}},
			{Name: "tcp_framing", In: "query", Type: "boolean"},
		},
		Responses: map[int]openapi.Response{
			http.StatusOK: {
				Description: "Generated message",
				Content: map[string]string{
					ContentTypeXML:    "",
					ContentTypeText:   "",
					ContentTypeFramed: "",
					ContentTypeJSON:   "Envelope",
				},
			},
			http.StatusBadRequest:          openapi.ErrorResponse("Invalid type, format or framing flag"),
			http.StatusTooManyRequests:     openapi.ErrorResponse("Rate limit exceeded"),
			http.StatusInternalServerError: openapi.ErrorResponse("Generation failed"),
		},
	})
	g.AddOperation(openapi.Operation{
		Method:      http.MethodGet,
		Path:        "/api/v1/message-types",
		OperationID: "listMessageTypes",
		Summary:     "List the supported message types",
		Tag:         "messages",
		Responses: map[int]openapi.Response{
			http.StatusOK: {
				Description: "Message type catalog",
				Content:     map[string]string{ContentTypeJSON: "MessageTypeList"},
			},
		},
	})
}
