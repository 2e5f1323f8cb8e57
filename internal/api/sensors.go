package api

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/markusressel/alt2go/internal/sensors"
	"github.com/qdm12/reprint"
)

type sensorInfo struct {
	Id        string                     `json:"id"`
	Label     string                     `json:"label"`
	MovingAvg float64                    `json:"movingAvg"`
	Config    configuration.SensorConfig `json:"config"`
}

func registerSensorEndpoints(rest *echo.Echo) {
	group := rest.Group("/sensor")

	group.GET("/", getSensors)
	group.GET("/:"+urlParamId+"/", getSensor)
}

func newSensorInfo(sensor sensors.Sensor) sensorInfo {
	return sensorInfo{
		Id:        sensor.GetId(),
		Label:     sensor.GetLabel(),
		MovingAvg: sensor.GetMovingAvg(),
		Config:    reprint.This(sensor.GetConfig()).(configuration.SensorConfig),
	}
}

func getSensors(c echo.Context) error {
	var data []sensorInfo
	for _, sensor := range sensors.SensorMap.Items() {
		data = append(data, newSensorInfo(sensor))
	}
	sort.Slice(data, func(i, j int) bool {
		return data[i].Id < data[j].Id
	})
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

func getSensor(c echo.Context) error {
	id := c.Param(urlParamId)

	sensor, exists := sensors.SensorMap.Get(id)
	if !exists {
		return returnNotFound(c, id)
	}
	return c.JSONPretty(http.StatusOK, newSensorInfo(sensor), indentationChar)
}
