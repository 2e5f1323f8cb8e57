package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/markusressel/alt2go/internal/control_loop"
	"github.com/markusressel/alt2go/internal/controller"
	"github.com/markusressel/alt2go/internal/outputs"
	"github.com/markusressel/alt2go/internal/persistence"
	"github.com/markusressel/alt2go/internal/sensors"
	"github.com/markusressel/alt2go/internal/testingutils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	rest        *echo.Echo
	controller  controller.FieldController
	persistence persistence.Persistence
}

func createTestEnv(t *testing.T) *testEnv {
	dir := t.TempDir()
	configuration.CurrentConfig.SensorRollingWindowSize = 10
	configuration.CurrentConfig.MaxEventLogSize = 100

	pers := persistence.NewPersistence(filepath.Join(dir, "alt2go.db"))
	require.NoError(t, pers.Init())

	fieldConfig := testingutils.CreateFieldConfig(dir)
	output, err := outputs.NewFieldOutput(fieldConfig)
	require.NoError(t, err)

	temperature := testingutils.CreateVirtualSensor("temp", 25)
	voltage := testingutils.CreateVirtualSensor("volt", 13.0)
	current := testingutils.CreateVirtualSensor("amp", 10)
	for _, s := range []sensors.Sensor{temperature, voltage, current} {
		sensors.SensorMap.Set(s.GetId(), s)
	}
	t.Cleanup(func() {
		sensors.SensorMap.Clear()
	})

	fieldController := controller.NewFieldController(
		pers,
		fieldConfig,
		control_loop.NewThresholdTrendRegulator(true),
		controller.FieldSensors{Temperature: temperature, Voltage: voltage, Current: current},
		output,
		time.Second,
	)

	return &testEnv{
		rest:        CreateRestService(fieldController, pers, prometheus.NewRegistry()),
		controller:  fieldController,
		persistence: pers,
	}
}

func (env *testEnv) request(method string, path string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	env.rest.ServeHTTP(rec, req)
	return rec
}

func TestAlive(t *testing.T) {
	// GIVEN
	env := createTestEnv(t)

	// WHEN
	rec := env.request(http.MethodGet, "/alive", "")

	// THEN
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetStatus(t *testing.T) {
	// GIVEN
	env := createTestEnv(t)
	require.NoError(t, env.controller.Tick())

	// WHEN
	rec := env.request(http.MethodGet, "/status/", "")

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	status := controller.Status{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "alternator", status.Field)
	assert.Equal(t, configuration.RegulatorTypeThreshold, status.Regulator)
	assert.True(t, status.Enabled)
	assert.Equal(t, 13.0, status.Voltage)
	assert.Equal(t, 5, status.Duty)
	assert.Contains(t, status.Trends, "voltage")
}

func TestGetConfig(t *testing.T) {
	// GIVEN
	env := createTestEnv(t)

	// WHEN
	rec := env.request(http.MethodGet, "/config", "")

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	limits := configuration.LimitsConfig{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &limits))
	assert.Equal(t, configuration.DefaultLimits, limits)
}

func TestPostConfig_Partial(t *testing.T) {
	// GIVEN
	env := createTestEnv(t)

	// WHEN
	rec := env.request(http.MethodPost, "/config/", `{"targetVoltage": "14.2", "derateTemp": 70}`)

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	expected := configuration.DefaultLimits
	expected.TargetVoltage = 14.2
	expected.DerateTemp = 70
	assert.Equal(t, expected, env.controller.GetLimits())

	persisted, err := env.persistence.LoadLimits("alternator")
	require.NoError(t, err)
	assert.Equal(t, expected, persisted)
}

func TestPostConfig_Invalid(t *testing.T) {
	var tests = []struct {
		tn   string
		body string
	}{
		{tn: "not a number", body: `{"currentLimit": "lots"}`},
		{tn: "unknown key", body: `{"rpm": 3000}`},
		{tn: "invalid limit", body: `{"currentLimit": -5}`},
		{tn: "malformed json", body: `{"currentLimit":`},
		{tn: "nan", body: `{"derateTemp": "NaN"}`},
		{tn: "infinity", body: `{"targetVoltage": "+Inf"}`},
	}

	for _, tt := range tests {
		t.Run(tt.tn, func(t *testing.T) {
			// GIVEN
			env := createTestEnv(t)

			// WHEN
			rec := env.request(http.MethodPost, "/config/", tt.body)

			// THEN
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, configuration.DefaultLimits, env.controller.GetLimits())
		})
	}
}

func TestDeleteConfig(t *testing.T) {
	// GIVEN
	env := createTestEnv(t)
	rec := env.request(http.MethodPost, "/config/", `{"derateTemp": 70}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// WHEN
	rec = env.request(http.MethodDelete, "/config/", "")

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	limits := configuration.LimitsConfig{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &limits))
	assert.Equal(t, configuration.DefaultLimits, limits)
	assert.Equal(t, configuration.DefaultLimits, env.controller.GetLimits())

	_, err := env.persistence.LoadLimits("alternator")
	assert.Error(t, err)
}

func TestEnable(t *testing.T) {
	// GIVEN
	env := createTestEnv(t)

	// WHEN
	rec := env.request(http.MethodPost, "/enable/", `{"enabled": false}`)

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"enabled": false}`, rec.Body.String())
	assert.False(t, env.controller.IsEnabled())

	rec = env.request(http.MethodGet, "/enable/", "")
	assert.JSONEq(t, `{"enabled": false}`, rec.Body.String())
}

func TestEnable_MissingField(t *testing.T) {
	// GIVEN
	env := createTestEnv(t)

	// WHEN
	rec := env.request(http.MethodPost, "/enable/", `{}`)

	// THEN
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, env.controller.IsEnabled())
}

func TestGetLog(t *testing.T) {
	// GIVEN
	env := createTestEnv(t)
	for _, event := range []string{"Overcurrent", "Overtemp Derate"} {
		err := env.persistence.AppendEvent(persistence.EventEntry{
			Time:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			Field: "alternator",
			Event: event,
			Duty:  0,
		}, 100)
		require.NoError(t, err)
	}

	// WHEN
	rec := env.request(http.MethodGet, "/log/?limit=1", "")

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-05-01T12:00:00Z alternator: Overtemp Derate (duty 0)\n", rec.Body.String())
}

func TestGetLog_InvalidLimit(t *testing.T) {
	// GIVEN
	env := createTestEnv(t)

	// WHEN
	rec := env.request(http.MethodGet, "/log/?limit=abc", "")

	// THEN
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteLog(t *testing.T) {
	// GIVEN
	env := createTestEnv(t)
	err := env.persistence.AppendEvent(persistence.EventEntry{
		Time:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Field: "alternator",
		Event: "Overcurrent",
	}, 100)
	require.NoError(t, err)

	// WHEN
	rec := env.request(http.MethodDelete, "/log/", "")

	// THEN
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.request(http.MethodGet, "/log/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestGetSensors(t *testing.T) {
	// GIVEN
	env := createTestEnv(t)

	// WHEN
	rec := env.request(http.MethodGet, "/sensor/", "")

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	var result []sensorInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result, 3)
	assert.Equal(t, "amp", result[0].Id)
	assert.Equal(t, "temp", result[1].Id)
	assert.Equal(t, "volt", result[2].Id)
}

func TestGetSensor(t *testing.T) {
	// GIVEN
	env := createTestEnv(t)

	// WHEN
	rec := env.request(http.MethodGet, "/sensor/volt/", "")
	missing := env.request(http.MethodGet, "/sensor/missing/", "")

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	result := sensorInfo{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "volt", result.Id)
	require.NotNil(t, result.Config.Virtual)
	assert.Equal(t, 13.0, result.Config.Virtual.Value)

	assert.Equal(t, http.StatusNotFound, missing.Code)
}
