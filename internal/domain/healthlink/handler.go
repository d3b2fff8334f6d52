package healthlink

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/norrisp90/HL7SyntGen/internal/platform/analytics"
)

type Handler struct {
	assembler *Assembler
	logger    zerolog.Logger
	usage     *analytics.UsageTracker
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithUsageTracker records every generation into the tracker.
func WithUsageTracker(t *analytics.UsageTracker) HandlerOption {
	return func(h *Handler) { h.usage = t }
}

func NewHandler(assembler *Assembler, logger zerolog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{assembler: assembler, logger: logger}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/generate", h.Generate)
	api.GET("/message-types", h.ListMessageTypes)
}

// Generate builds one message. Query parameters: type (1..31, random when
// absent), format (xml|raw|hl7|json) and tcp_framing (bool).
func (h *Handler) Generate(c echo.Context) error {
	format, err := ParseFormat(c.QueryParam("format"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid format. Use 'xml', 'raw', 'hl7' or 'json'.",
		})
	}

	framing := false
	if v := c.QueryParam("tcp_framing"); v != "" {
		framing, err = strconv.ParseBool(strings.ToLower(v))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "tcp_framing must be true or false.",
			})
		}
	}

	var typeID int
	if v := c.QueryParam("type"); v != "" {
		typeID, err = strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Message type ID must be a number.",
			})
		}
	} else {
		typeID = h.assembler.RandomTypeID()
	}

	start := time.Now()
	msg, err := h.assembler.Build(c.Request().Context(), typeID)
	if err != nil {
		if errors.Is(err, ErrUnknownMessageType) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Invalid message type ID. Must be between 1 and 31.",
			})
		}
		h.usage.Record(&analytics.GenerationMetric{MessageTypeID: typeID, Duration: time.Since(start), Failed: true})
		return h.internalError(c, err)
	}

	out, err := Render(msg, format, framing, requestID(c))
	h.usage.Record(NewGenerationMetric(msg, format, framing, time.Since(start), out))
	if err != nil {
		return h.internalError(c, err)
	}
	return c.Blob(http.StatusOK, out.ContentType, out.Body)
}

// ListMessageTypes returns the full catalog.
func (h *Handler) ListMessageTypes(c echo.Context) error {
	types := Catalog()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message_types": types,
		"total":         len(types),
	})
}

func (h *Handler) internalError(c echo.Context, err error) error {
	h.logger.Error().Err(err).Str("request_id", requestID(c)).Msg("failed to generate message")
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "failed to generate message: " + err.Error(),
	})
}

// requestID prefers the id set by the request id middleware.
func requestID(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok && id != "" {
		return id
	}
	id := uuid.New().String()
	c.Set("request_id", id)
	return id
}
