// Package docs holds the OpenAPI description of the scoring API, registered with swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "Apache 2.0",
            "url": "https://opensource.org/licenses/Apache-2.0"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/evaluate": {
            "post": {
                "description": "Runs the selected evaluators on one search result against its ground truth and returns a merged metric row",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["evaluate"],
                "summary": "Score one search result",
                "parameters": [
                    {
                        "description": "Search result and ground truth",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/router.EvaluateRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/router.EvaluateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperr.ErrorResponse"}}
                }
            }
        },
        "/v1/evaluate/batch": {
            "post": {
                "description": "Scores every row and returns the per-row metrics with their means",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["evaluate"],
                "summary": "Score many search results",
                "parameters": [
                    {
                        "description": "Rows of search result and ground truth",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/router.BatchRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/router.BatchResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperr.ErrorResponse"}}
                }
            }
        },
        "/v1/runs/{id}/metrics": {
            "get": {
                "description": "Returns the aggregated metrics stored for an evaluation run",
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Get tracked run metrics",
                "parameters": [
                    {"type": "string", "description": "Run ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/router.RunMetricsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperr.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apperr.ErrorResponse"}}
                }
            }
        },
        "/v1/evaluators": {
            "get": {
                "description": "Returns the default evaluator keys with the supported kinds and identifier schemes",
                "produces": ["application/json"],
                "tags": ["evaluate"],
                "summary": "List evaluators",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/router.EvaluatorsResponse"}}
                }
            }
        }
    },
    "definitions": {
        "apperr.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "field": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "docid.Record": {
            "type": "object",
            "additionalProperties": true
        },
        "evaluator.Input": {
            "type": "object",
            "properties": {
                "ground_truth": {"type": "array", "items": {"$ref": "#/definitions/docid.Record"}},
                "search_result": {"type": "array", "items": {"$ref": "#/definitions/docid.Record"}},
                "truth": {"$ref": "#/definitions/docid.Record"}
            }
        },
        "router.EvaluateRequest": {
            "type": "object",
            "properties": {
                "evaluators": {"type": "array", "items": {"type": "string"}, "example": ["recall@5", "average_precision"]},
                "found_k": {"type": "integer"},
                "ground_truth": {"type": "array", "items": {"$ref": "#/definitions/docid.Record"}},
                "k_values": {"type": "array", "items": {"type": "integer"}},
                "scheme": {"type": "string", "example": "location"},
                "search_result": {"type": "array", "items": {"$ref": "#/definitions/docid.Record"}},
                "truth": {"$ref": "#/definitions/docid.Record"}
            }
        },
        "router.EvaluateResponse": {
            "type": "object",
            "properties": {
                "metrics": {"type": "object", "additionalProperties": {"type": "number"}}
            }
        },
        "router.BatchRequest": {
            "type": "object",
            "properties": {
                "evaluators": {"type": "array", "items": {"type": "string"}},
                "found_k": {"type": "integer"},
                "k_values": {"type": "array", "items": {"type": "integer"}},
                "rows": {"type": "array", "items": {"$ref": "#/definitions/evaluator.Input"}},
                "scheme": {"type": "string"}
            }
        },
        "router.BatchResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "means": {"type": "object", "additionalProperties": {"type": "number"}},
                "rows": {"type": "array", "items": {"type": "object", "additionalProperties": {"type": "number"}}}
            }
        },
        "router.RunMetricsResponse": {
            "type": "object",
            "properties": {
                "metrics": {"type": "object", "additionalProperties": {"type": "number"}},
                "run_id": {"type": "string"}
            }
        },
        "router.EvaluatorsResponse": {
            "type": "object",
            "properties": {
                "default": {"type": "array", "items": {"type": "string"}},
                "kinds": {"type": "array", "items": {"type": "string"}},
                "schemes": {"type": "array", "items": {"type": "string"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Search Eval API",
	Description:      "Scores search results against ground truth with retrieval metrics",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
