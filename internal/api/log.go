package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/alt2go/internal/persistence"
)

func registerLogEndpoints(rest *echo.Echo, pers persistence.Persistence) {
	rest.GET("/log/", func(c echo.Context) error {
		return getLog(c, pers)
	})
	rest.DELETE("/log/", func(c echo.Context) error {
		if err := pers.ClearEvents(); err != nil {
			return returnError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})
}

// returns the most recent events as plain text, oldest first
func getLog(c echo.Context, pers persistence.Persistence) error {
	limit := defaultLogLimit
	if param := c.QueryParam("limit"); param != "" {
		value, err := strconv.Atoi(param)
		if err != nil || value <= 0 {
			return returnBadRequest(c, fmt.Errorf("invalid limit: %s", param))
		}
		limit = value
	}

	events, err := pers.LoadEvents(limit)
	if err != nil {
		return returnError(c, err)
	}

	var sb strings.Builder
	for _, event := range events {
		sb.WriteString(event.String())
		sb.WriteString("\n")
	}
	return c.String(http.StatusOK, sb.String())
}
