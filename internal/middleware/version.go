package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// CurrentAPIVersion is the only version served.
const CurrentAPIVersion = "v1"

// VersionHeader adds X-API-Version to every response of the group.
func VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("X-API-Version", version)
			return next(c)
		}
	}
}

// RejectUnknownVersion answers 404 for /vN paths other than the current
// version so old clients get a clear message instead of a bare route miss.
func RejectUnknownVersion() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			segment := strings.SplitN(strings.TrimPrefix(c.Request().URL.Path, "/"), "/", 2)[0]
			if isVersionSegment(segment) && segment != CurrentAPIVersion {
				return echo.NewHTTPError(http.StatusNotFound, "Unsupported API version "+segment)
			}
			return next(c)
		}
	}
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
