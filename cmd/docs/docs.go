// Package docs holds the Swagger 2.0 document served under /swagger. Keep it in
// step with the handler annotations when routes change.
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
        "/currencies": {
            "get": {
                "description": "Retrieves the reference set of currencies",
                "produces": ["application/json"],
                "tags": ["currencies"],
                "summary": "List all currencies",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.CurrencyResponse"}}},
                    "500": {"description": "Failed to list currencies", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Adds a new currency to the reference set (admin operation)",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["currencies"],
                "summary": "Create a new currency",
                "parameters": [
                    {"description": "Currency details", "name": "currency", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateCurrencyRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.CurrencyResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Currency code already exists", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/currencies/{code}": {
            "get": {
                "description": "Retrieves details for a specific currency by its 3-letter code",
                "produces": ["application/json"],
                "tags": ["currencies"],
                "summary": "Get a currency by code",
                "parameters": [
                    {"maxLength": 3, "minLength": 3, "type": "string", "description": "Currency Code (3 letters)", "name": "code", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CurrencyResponse"}},
                    "400": {"description": "Invalid code", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Currency not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/currency-converter": {
            "get": {
                "description": "Returns the rate for a pair at a valuation date, read from the store or the active provider.",
                "produces": ["application/json"],
                "tags": ["exchange-rates"],
                "summary": "Convert an amount between two currencies",
                "parameters": [
                    {"type": "string", "description": "Source currency code", "name": "from_currency", "in": "query", "required": true},
                    {"type": "string", "description": "Destination currency code", "name": "to_currency", "in": "query", "required": true},
                    {"type": "string", "description": "Valuation date (YYYY-MM-DD)", "name": "valuation_date", "in": "query", "required": true},
                    {"type": "string", "description": "Amount to convert (default 1)", "name": "amount", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ConverterResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ConverterResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.ConverterResponse"}},
                    "504": {"description": "Gateway Timeout", "schema": {"$ref": "#/definitions/dto.ConverterResponse"}}
                }
            }
        },
        "/exchange-rates/import": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Fetches and stores the daily rates of every pair among the given currencies.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["exchange-rates"],
                "summary": "Backfill exchange rates",
                "parameters": [
                    {"description": "Currencies and inclusive date range", "name": "import", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ImportRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ImportResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Provider unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/providers": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the provider registry ordered by priority",
                "produces": ["application/json"],
                "tags": ["providers"],
                "summary": "List rate providers",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.ProviderResponse"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/providers/failover": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Deactivates the active provider and activates the next one by priority",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["providers"],
                "summary": "Fail over to the next provider",
                "parameters": [
                    {"description": "Reason for the rotation", "name": "failover", "in": "body", "schema": {"$ref": "#/definitions/dto.FailoverRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.FailoverResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "No provider or no fallback available", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.ConverterResponse": {
            "type": "object",
            "properties": {
                "amount": {"type": "number"},
                "converted_amount": {"type": "number"},
                "from_currency": {"type": "string"},
                "message": {"type": "string"},
                "origin": {"type": "string"},
                "provider": {"type": "string"},
                "rate_value": {"type": "number"},
                "status": {"type": "string"},
                "to_currency": {"type": "string"},
                "valuation_date": {"type": "string"}
            }
        },
        "dto.CreateCurrencyRequest": {
            "type": "object",
            "required": ["currencyCode", "name", "symbol"],
            "properties": {
                "currencyCode": {"type": "string"},
                "name": {"type": "string", "maxLength": 64},
                "symbol": {"type": "string", "maxLength": 8}
            }
        },
        "dto.CurrencyResponse": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "createdBy": {"type": "string"},
                "currencyCode": {"type": "string"},
                "lastUpdatedAt": {"type": "string"},
                "lastUpdatedBy": {"type": "string"},
                "name": {"type": "string"},
                "symbol": {"type": "string"}
            }
        },
        "dto.FailoverRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            }
        },
        "dto.FailoverResponse": {
            "type": "object",
            "properties": {
                "activated": {"type": "string"},
                "deactivated": {"type": "string"},
                "superseded": {"type": "boolean"}
            }
        },
        "dto.ImportRequest": {
            "type": "object",
            "required": ["currencies", "fromDate", "toDate"],
            "properties": {
                "currencies": {"type": "array", "minItems": 2, "items": {"type": "string"}},
                "fromDate": {"type": "string"},
                "toDate": {"type": "string"}
            }
        },
        "dto.ImportResponse": {
            "type": "object",
            "properties": {
                "fromDate": {"type": "string"},
                "ratesFetched": {"type": "integer"},
                "ratesStored": {"type": "integer"},
                "requested": {"type": "integer"},
                "skippedSources": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string"},
                "toDate": {"type": "string"}
            }
        },
        "dto.ProviderResponse": {
            "type": "object",
            "properties": {
                "activeFlag": {"type": "boolean"},
                "activeStatus": {"type": "boolean"},
                "name": {"type": "string"},
                "priority": {"type": "integer"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "MyCurrency API",
	Description:      "Currency exchange rates with provider failover.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
