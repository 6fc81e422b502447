// Package authd holds the Swagger document served at /swagger/. It is
// maintained by hand in the format swaggo/swag emits; regenerate with
// `swag init -g internal/auth/http/router.go -o api/authd` after changing
// handler annotations.
package authd

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": ["http", "https"],
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "contact": {
            "name": "Drawpoint Team",
            "url": "https://github.com/drawpoint/authd"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/token": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded", "application/json"],
                "produces": ["application/json"],
                "tags": ["OAuth2"],
                "summary": "OAuth2 Token Endpoint",
                "description": "Issues an opaque access/refresh token pair via the client_credentials grant.",
                "parameters": [
                    {"type": "string", "name": "grant_type", "in": "formData", "required": true},
                    {"type": "string", "name": "client_id", "in": "formData", "required": true},
                    {"type": "string", "name": "client_secret", "in": "formData", "required": true},
                    {"type": "string", "name": "scope", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/oauthsdk.TokenResponse"}},
                    "400": {"description": "Malformed request", "schema": {"$ref": "#/definitions/oauthsdk.ErrorResponse"}},
                    "401": {"description": "Client authentication failed", "schema": {"$ref": "#/definitions/oauthsdk.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/oauthsdk.ErrorResponse"}}
                }
            }
        },
        "/token/refresh": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded", "application/json"],
                "produces": ["application/json"],
                "tags": ["OAuth2"],
                "summary": "Refresh Token Rotation",
                "description": "Exchanges a refresh token for a new pair. The old token is consumed atomically.",
                "parameters": [
                    {"type": "string", "name": "refresh_token", "in": "formData", "required": true},
                    {"type": "string", "name": "client_id", "in": "formData", "required": true},
                    {"type": "string", "name": "client_secret", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/oauthsdk.TokenResponse"}},
                    "400": {"description": "Malformed request", "schema": {"$ref": "#/definitions/oauthsdk.ErrorResponse"}},
                    "401": {"description": "Invalid refresh token or client", "schema": {"$ref": "#/definitions/oauthsdk.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/oauthsdk.ErrorResponse"}}
                }
            }
        },
        "/introspect": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded", "application/json"],
                "produces": ["application/json"],
                "tags": ["OAuth2"],
                "summary": "Token Introspection",
                "description": "Reports whether a token is active along with its metadata per RFC 7662.",
                "parameters": [
                    {"type": "string", "name": "token", "in": "formData", "required": true},
                    {"type": "string", "name": "client_id", "in": "formData", "required": true},
                    {"type": "string", "name": "client_secret", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "Introspection result", "schema": {"$ref": "#/definitions/oauthsdk.IntrospectionResponse"}},
                    "400": {"description": "Malformed request", "schema": {"$ref": "#/definitions/oauthsdk.ErrorResponse"}},
                    "401": {"description": "Client authentication failed", "schema": {"$ref": "#/definitions/oauthsdk.ErrorResponse"}}
                }
            }
        },
        "/revoke": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded", "application/json"],
                "produces": ["application/json"],
                "tags": ["OAuth2"],
                "summary": "Token Revocation",
                "description": "Marks a token revoked. Idempotent: unknown tokens succeed too.",
                "parameters": [
                    {"type": "string", "name": "token", "in": "formData", "required": true},
                    {"type": "string", "name": "client_id", "in": "formData", "required": true},
                    {"type": "string", "name": "client_secret", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "Revocation result", "schema": {"$ref": "#/definitions/oauthsdk.RevokeResponse"}},
                    "400": {"description": "Malformed request", "schema": {"$ref": "#/definitions/oauthsdk.ErrorResponse"}},
                    "401": {"description": "Client authentication failed", "schema": {"$ref": "#/definitions/oauthsdk.ErrorResponse"}}
                }
            }
        },
        "/v1/bootstrap": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Bootstrap"],
                "summary": "Bootstrap the token service",
                "description": "Creates the first machine client on an empty store.",
                "parameters": [
                    {"type": "string", "name": "X-Bootstrap-Token", "in": "header", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/oauthsdk.BootstrapRequest"}}
                ],
                "responses": {
                    "201": {"description": "First client credentials", "schema": {"$ref": "#/definitions/oauthsdk.BootstrapResponse"}},
                    "400": {"description": "Malformed request", "schema": {"$ref": "#/definitions/oauthsdk.ErrorResponse"}},
                    "401": {"description": "Invalid bootstrap token or already bootstrapped", "schema": {"$ref": "#/definitions/oauthsdk.ErrorResponse"}},
                    "404": {"description": "Bootstrap not enabled", "schema": {"$ref": "#/definitions/oauthsdk.ErrorResponse"}}
                }
            }
        },
        "/v1/clients": {
            "get": {
                "security": [{"AdminAuth": []}],
                "produces": ["application/json"],
                "tags": ["Clients"],
                "summary": "List Machine Clients",
                "responses": {
                    "200": {"description": "Registered clients", "schema": {"$ref": "#/definitions/oauthsdk.ListClientsResponse"}},
                    "401": {"description": "Missing or invalid admin token", "schema": {"$ref": "#/definitions/oauthsdk.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"AdminAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Clients"],
                "summary": "Create Machine Client",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/oauthsdk.CreateClientRequest"}}
                ],
                "responses": {
                    "201": {"description": "New client credentials", "schema": {"$ref": "#/definitions/oauthsdk.CreateClientResponse"}},
                    "400": {"description": "Malformed request", "schema": {"$ref": "#/definitions/oauthsdk.ErrorResponse"}},
                    "401": {"description": "Missing or invalid admin token", "schema": {"$ref": "#/definitions/oauthsdk.ErrorResponse"}}
                }
            }
        },
        "/v1/clients/{id}/status": {
            "post": {
                "security": [{"AdminAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Clients"],
                "summary": "Update Client Status",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/oauthsdk.UpdateClientStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated client", "schema": {"$ref": "#/definitions/oauthsdk.ClientInfo"}},
                    "400": {"description": "Unknown status", "schema": {"$ref": "#/definitions/oauthsdk.ErrorResponse"}},
                    "404": {"description": "Client not found", "schema": {"$ref": "#/definitions/oauthsdk.ErrorResponse"}}
                }
            }
        },
        "/v1/clients/{id}/revoke-tokens": {
            "post": {
                "security": [{"AdminAuth": []}],
                "produces": ["application/json"],
                "tags": ["Clients"],
                "summary": "Revoke All Client Tokens",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Number of tokens revoked", "schema": {"$ref": "#/definitions/oauthsdk.RevokeClientTokensResponse"}},
                    "404": {"description": "Client not found", "schema": {"$ref": "#/definitions/oauthsdk.ErrorResponse"}}
                }
            }
        },
        "/livez": {
            "get": {
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Liveness Check",
                "responses": {
                    "200": {"description": "Process is up", "schema": {"$ref": "#/definitions/oauthsdk.HealthResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Readiness Check",
                "responses": {
                    "200": {"description": "Ready to serve", "schema": {"$ref": "#/definitions/oauthsdk.HealthResponse"}},
                    "503": {"description": "Store unreachable", "schema": {"$ref": "#/definitions/oauthsdk.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "oauthsdk.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "error_description": {"type": "string"}
            }
        },
        "oauthsdk.TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "refresh_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_in": {"type": "integer"},
                "scope": {"type": "string"}
            }
        },
        "oauthsdk.IntrospectionResponse": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"},
                "scope": {"type": "string"},
                "client_id": {"type": "string"},
                "token_type": {"type": "string"},
                "exp": {"type": "integer"},
                "iat": {"type": "integer"}
            }
        },
        "oauthsdk.RevokeResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"}
            }
        },
        "oauthsdk.BootstrapRequest": {
            "type": "object",
            "properties": {
                "client_name": {"type": "string"},
                "client_scopes": {"type": "array", "items": {"type": "string"}}
            }
        },
        "oauthsdk.BootstrapResponse": {
            "type": "object",
            "properties": {
                "client_id": {"type": "string"},
                "client_secret": {"type": "string"}
            }
        },
        "oauthsdk.CreateClientRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "scopes": {"type": "array", "items": {"type": "string"}},
                "rate_limit": {"type": "integer"}
            }
        },
        "oauthsdk.CreateClientResponse": {
            "type": "object",
            "properties": {
                "client_id": {"type": "string"},
                "client_secret": {"type": "string"}
            }
        },
        "oauthsdk.UpdateClientStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        },
        "oauthsdk.ClientInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "scopes": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string"},
                "rate_limit": {"type": "integer"},
                "created_at": {"type": "string"}
            }
        },
        "oauthsdk.ListClientsResponse": {
            "type": "object",
            "properties": {
                "clients": {"type": "array", "items": {"$ref": "#/definitions/oauthsdk.ClientInfo"}}
            }
        },
        "oauthsdk.RevokeClientTokensResponse": {
            "type": "object",
            "properties": {
                "revoked": {"type": "integer"}
            }
        },
        "oauthsdk.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"},
                "checks": {"$ref": "#/definitions/oauthsdk.HealthChecks"}
            }
        },
        "oauthsdk.HealthChecks": {
            "type": "object",
            "properties": {
                "database": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "AdminAuth": {
            "type": "apiKey",
            "name": "X-Admin-Token",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Authd Machine Token Service API",
	Description:      "OAuth2 client_credentials token service for machine-to-machine authentication.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
