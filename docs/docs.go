// Package docs holds the OpenAPI description served at /docs when
// server.enable_docs is set. Regenerate with `swag init -g cmd/main.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in with academy slug, email and password",
                "responses": {
                    "200": {"description": "access and refresh tokens"},
                    "401": {"description": "invalid credentials"},
                    "429": {"description": "too many attempts"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register an academy with its first admin",
                "responses": {
                    "201": {"description": "academy, admin and tokens"},
                    "409": {"description": "slug or email already taken"}
                }
            }
        },
        "/student/checkin": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["attendance"],
                "summary": "Check in to a class instance with a QR token",
                "responses": {
                    "201": {"description": "attendance recorded"},
                    "409": {"description": "already checked in"},
                    "400": {"description": "invalid token or closed check-in window"},
                    "403": {"description": "no live membership"}
                }
            }
        },
        "/webhooks/mercadopago": {
            "post": {
                "tags": ["webhooks"],
                "summary": "MercadoPago payment notification",
                "responses": {"200": {"description": "acknowledged"}}
            }
        },
        "/webhooks/flow": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded"],
                "tags": ["webhooks"],
                "summary": "Flow payment confirmation",
                "responses": {"200": {"description": "acknowledged"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "DojoHub API",
	Description:      "Multi-tenant management for martial arts academies and sports clubs.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
