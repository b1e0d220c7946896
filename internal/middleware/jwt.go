package middleware

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"dojohub/internal/common"
	"dojohub/internal/logging"
	"dojohub/internal/services"
)

// claimsContextKey is where echo-jwt stores the parsed token claims.
const claimsContextKey = "claims"

// JWTConfig builds the echo-jwt configuration for access tokens. Token
// parsing is delegated to the auth service so audience and role checks stay
// in one place.
func JWTConfig(authSvc services.AuthService) echojwt.Config {
	return echojwt.Config{
		ContextKey: claimsContextKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return authSvc.ValidateToken(c.Request().Context(), auth)
		},
		SuccessHandler: func(c echo.Context) {
			claims, ok := c.Get(claimsContextKey).(*services.TokenClaims)
			if !ok {
				return
			}
			userID, academyID, err := claims.Identity()
			if err != nil {
				return
			}
			ctx := common.WithIdentity(c.Request().Context(), userID, academyID, claims.Role)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("academy_id", academyID.String())
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logging.Ctx(c.Request().Context()).Debug().Err(err).Msg("rejected access token")
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
}

// JWT authenticates the request and stores the caller identity in the
// request context.
func JWT(authSvc services.AuthService) echo.MiddlewareFunc {
	return echojwt.WithConfig(JWTConfig(authSvc))
}
