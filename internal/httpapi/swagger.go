package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "gptbridge API",
	Description:      "Batch completions backed by an external tool process.",
	InfoInstanceName: swag.Name,
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// MountSwagger serves the Swagger UI and doc.json under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/generate": {
            "post": {
                "description": "Runs the tool once over all inputs and returns completions in input order.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["generate"],
                "summary": "Generate completions for a batch of prompts",
                "parameters": [
                    {
                        "description": "Batch",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/types.GenerateRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.GenerateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "summary": "Adapter status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.GenerateRequest": {
            "type": "object",
            "properties": {
                "inputs": {"type": "array", "items": {"type": "object"}},
                "max_out_len": {"type": "integer", "example": 512}
            }
        },
        "types.GenerateResponse": {
            "type": "object",
            "properties": {
                "outputs": {"type": "array", "items": {"type": "string"}}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "error": {"type": "string", "example": "invalid JSON body"}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "tool": {"type": "string"},
                "model": {"type": "string"},
                "workers": {"type": "integer"},
                "session_dir": {"type": "string"},
                "inflight": {"type": "integer"},
                "completed": {"type": "integer"},
                "failed": {"type": "integer"},
                "last_error": {"type": "string"},
                "uptime_seconds": {"type": "integer"}
            }
        }
    }
}`
