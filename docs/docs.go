// Package docs holds the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "https://github.com/guttosm/goldrate",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/guttosm/goldrate",
            "email": "support@example.com"
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
        "/api/v1/instruments": {
            "get": {
                "description": "Returns the configured instrument names and upstream codes",
                "produces": ["application/json"],
                "tags": ["quotes"],
                "summary": "List instruments",
                "responses": {
                    "200": {
                        "description": "Success",
                        "schema": {"$ref": "#/definitions/dto.InstrumentsResponse"}
                    }
                }
            }
        },
        "/api/v1/quotes": {
            "get": {
                "description": "Returns the latest price record for each requested instrument",
                "produces": ["application/json"],
                "tags": ["quotes"],
                "summary": "Get quotes",
                "parameters": [
                    {
                        "type": "array",
                        "items": {"type": "string"},
                        "collectionFormat": "multi",
                        "example": "Shanghai",
                        "description": "Instrument name or code",
                        "name": "name",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Success",
                        "schema": {"$ref": "#/definitions/dto.QuotesResponse"}
                    },
                    "429": {
                        "description": "Too Many Requests",
                        "schema": {"$ref": "#/definitions/dto.ErrorResponse"}
                    },
                    "500": {
                        "description": "Internal Error",
                        "schema": {"$ref": "#/definitions/dto.ErrorResponse"}
                    }
                }
            }
        },
        "/api/v1/quotes/summary": {
            "get": {
                "description": "Returns the quotes rendered as plain text or Markdown, blocks separated by a blank line",
                "produces": ["text/plain", "text/markdown"],
                "tags": ["quotes"],
                "summary": "Get quote summary",
                "parameters": [
                    {
                        "type": "array",
                        "items": {"type": "string"},
                        "collectionFormat": "multi",
                        "example": "London",
                        "description": "Instrument name or code",
                        "name": "name",
                        "in": "query"
                    },
                    {
                        "enum": ["text", "markdown"],
                        "type": "string",
                        "default": "text",
                        "description": "Output format",
                        "name": "format",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Summary",
                        "schema": {"type": "string"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/dto.ErrorResponse"}
                    }
                }
            }
        },
        "/healthz": {
            "get": {
                "description": "Always returns OK if the service is running",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "Returns ready if the upstream quote client is open",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "object", "additionalProperties": {"type": "string"}}
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "upstream returned http 502"},
                "message": {"type": "string", "example": "invalid format, expected text or markdown"},
                "timestamp": {"type": "string", "example": "2025-09-12T15:04:05Z"}
            }
        },
        "dto.InstrumentsResponse": {
            "type": "object",
            "properties": {
                "instruments": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/models.Instrument"}
                }
            }
        },
        "dto.QuoteItem": {
            "type": "object",
            "properties": {
                "available": {"type": "boolean", "example": true},
                "code": {"type": "string", "example": "gds_AUTD"},
                "direction": {"type": "string", "example": "↑"},
                "error": {"type": "string"},
                "error_kind": {"type": "string", "example": "network"},
                "name": {"type": "string", "example": "Shanghai"},
                "price": {"$ref": "#/definitions/models.PriceRecord"},
                "text": {"type": "string", "example": "Shanghai (gds_AUTD)\nPrice:      480.50 ↑"}
            }
        },
        "dto.QuotesResponse": {
            "type": "object",
            "properties": {
                "quotes": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/dto.QuoteItem"}
                }
            }
        },
        "models.Instrument": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "gds_AUTD"},
                "name": {"type": "string", "example": "Shanghai"}
            }
        },
        "models.PriceRecord": {
            "type": "object",
            "properties": {
                "change": {"type": "number", "example": 1.5},
                "change_rate_percent": {"type": "number", "example": 0.31},
                "high": {"type": "number", "example": 482},
                "low": {"type": "number", "example": 478},
                "open": {"type": "number", "example": 481},
                "previous_close": {"type": "number", "example": 479},
                "price": {"type": "number", "example": 480.5}
            }
        }
    },
    "tags": [
        {"description": "Gold and silver quotes from the upstream feed", "name": "quotes"},
        {"description": "Liveness and readiness probes", "name": "health"}
    ]
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "goldrate API",
	Description:      "Gold and silver price feed: cached, retried upstream quotes.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
