package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/workorder-service/internal/config"
	"github.com/spec-kit/workorder-service/internal/observability"
)

func TestPanickingHandlerIsLoggedAndCounted(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	metrics := observability.NewMetrics()
	cfg := config.AppConfig{Name: "workorder-service"}

	app := NewApp(cfg)
	RegisterMiddlewares(app, logger, metrics, cfg)
	app.Get("/boom", func(*fiber.Ctx) error {
		panic("handler exploded")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/boom", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	require.Equal(t, "INTERNAL_ERROR", body.Error.Code)

	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	requestLogs := logs.FilterMessage("request").All()
	require.Len(t, requestLogs, 1)
	fields := requestLogs[0].ContextMap()
	require.Equal(t, "/boom", fields["route"])
	require.EqualValues(t, fiber.StatusInternalServerError, fields["status"])

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	var counted float64
	for _, mf := range families {
		if mf.GetName() != "workorders_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "status" && lp.GetValue() == "500" {
					counted += m.GetCounter().GetValue()
				}
			}
		}
	}
	require.Equal(t, float64(1), counted)
}
