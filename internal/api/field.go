package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/markusressel/alt2go/internal/controller"
)

type enableRequest struct {
	Enabled *bool `json:"enabled"`
}

type enableResponse struct {
	Enabled bool `json:"enabled"`
}

func registerFieldEndpoints(rest *echo.Echo, fieldController controller.FieldController) {
	rest.GET("/status/", func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, fieldController.GetStatus(), indentationChar)
	})

	rest.GET("/config/", func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, fieldController.GetLimits(), indentationChar)
	})
	rest.POST("/config/", func(c echo.Context) error {
		return updateLimits(c, fieldController)
	})
	rest.DELETE("/config/", func(c echo.Context) error {
		if err := fieldController.ResetLimits(); err != nil {
			return returnError(c, err)
		}
		return c.JSONPretty(http.StatusOK, fieldController.GetLimits(), indentationChar)
	})

	rest.GET("/enable/", func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, enableResponse{Enabled: fieldController.IsEnabled()}, indentationChar)
	})
	rest.POST("/enable/", func(c echo.Context) error {
		return updateEnabled(c, fieldController)
	})
}

func updateLimits(c echo.Context, fieldController controller.FieldController) error {
	update := map[string]interface{}{}
	if err := c.Bind(&update); err != nil {
		return returnBadRequest(c, err)
	}

	limits, err := configuration.MergeLimits(fieldController.GetLimits(), update)
	if err != nil {
		return returnBadRequest(c, err)
	}
	if err = configuration.ValidateLimits(limits); err != nil {
		return returnBadRequest(c, err)
	}

	if err = fieldController.SetLimits(limits); err != nil {
		return returnError(c, err)
	}
	return c.JSONPretty(http.StatusOK, fieldController.GetLimits(), indentationChar)
}

func updateEnabled(c echo.Context, fieldController controller.FieldController) error {
	request := enableRequest{}
	if err := c.Bind(&request); err != nil {
		return returnBadRequest(c, err)
	}
	if request.Enabled == nil {
		return returnBadRequest(c, errors.New("missing field: enabled"))
	}

	if err := fieldController.SetEnabled(*request.Enabled); err != nil {
		return returnError(c, err)
	}
	return c.JSONPretty(http.StatusOK, enableResponse{Enabled: fieldController.IsEnabled()}, indentationChar)
}
