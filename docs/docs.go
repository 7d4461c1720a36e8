// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with `swag init -g cmd/api/main.go`.
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
        "/session/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Sign in",
                "parameters": [
                    {
                        "description": "credentials",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.loginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.SessionResult"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/session/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Create an account",
                "parameters": [
                    {
                        "description": "account",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.signupRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/services.SessionResult"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/session/subscription": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Current subscription tier",
                "parameters": [
                    {"type": "boolean", "description": "bypass the cache", "name": "force", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Subscription"}}
                }
            }
        },
        "/progress/{module}/{step}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["progress"],
                "summary": "Mark a module step completed or not",
                "parameters": [
                    {"type": "string", "description": "module id", "name": "module", "in": "path", "required": true},
                    {"type": "string", "description": "step id", "name": "step", "in": "path", "required": true},
                    {
                        "description": "step state",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.saveStepRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ProgressRecord"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/streaks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["streaks"],
                "summary": "Streak counters and at-risk flags",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.StreakSummary"}}
                }
            }
        },
        "/achievements": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["achievements"],
                "summary": "Achievement catalog joined with the user's earned set",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.AchievementView"}}}
                }
            }
        },
        "/dashboard/layout": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Dashboard widget layout",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.layoutResponse"}}
                }
            }
        },
        "/billing/checkout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["billing"],
                "summary": "Start a hosted checkout for a price",
                "parameters": [
                    {
                        "description": "price",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.checkoutRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.RedirectURL"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "domain.AchievementView": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "category": {"type": "string"},
                "tier": {"type": "string"},
                "xp_reward": {"type": "integer"},
                "requirement": {"type": "object"},
                "earned": {"type": "boolean"},
                "earned_at": {"type": "string"},
                "eligible": {"type": "boolean"}
            }
        },
        "domain.ProgressRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "module": {"type": "string"},
                "step": {"type": "string"},
                "completed": {"type": "boolean"},
                "completed_at": {"type": "string"},
                "notes": {"type": "string"},
                "metadata": {"type": "object"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "domain.RedirectURL": {
            "type": "object",
            "properties": {"url": {"type": "string"}}
        },
        "domain.Subscription": {
            "type": "object",
            "properties": {
                "tier": {"type": "string", "enum": ["free", "start", "build", "scale"]},
                "subscribed": {"type": "boolean"},
                "subscription_end": {"type": "string"},
                "cancel_at_period_end": {"type": "boolean"}
            }
        },
        "http.checkoutRequest": {
            "type": "object",
            "properties": {"price_id": {"type": "string"}}
        },
        "http.layoutResponse": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "widget_order": {"type": "array", "items": {"type": "string"}},
                "hidden_widgets": {"type": "array", "items": {"type": "string"}},
                "visible": {"type": "array", "items": {"type": "string"}},
                "message": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "http.loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "remember_me": {"type": "boolean"}
            }
        },
        "http.saveStepRequest": {
            "type": "object",
            "required": ["completed"],
            "properties": {
                "completed": {"type": "boolean"},
                "notes": {"type": "string"},
                "metadata": {"type": "object"}
            }
        },
        "http.signupRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "full_name": {"type": "string"}
            }
        },
        "services.SessionResult": {
            "type": "object",
            "properties": {
                "session": {"type": "object"},
                "profile": {"type": "object"},
                "subscription": {"$ref": "#/definitions/domain.Subscription"}
            }
        },
        "services.StreakSummary": {
            "type": "object",
            "properties": {
                "login_streak_current": {"type": "integer"},
                "login_streak_longest": {"type": "integer"},
                "last_login_date": {"type": "string"},
                "task_streak_current": {"type": "integer"},
                "task_streak_longest": {"type": "integer"},
                "last_task_date": {"type": "string"},
                "total_login_days": {"type": "integer"},
                "total_tasks_completed": {"type": "integer"},
                "login_at_risk": {"type": "boolean"},
                "task_at_risk": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "NÈKO Progress Engine API",
	Description:      "Progress, streaks, achievements and dashboard layout for NÈKO members.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
