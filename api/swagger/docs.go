// Package swagger holds the OpenAPI document served at /swagger/*any.
package swagger

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
        "/api/audit-logs": {
            "get": {
                "description": "Paginated history of every budget, request and revision mutation",
                "produces": ["application/json"],
                "tags": ["audit"],
                "summary": "Get audit logs",
                "parameters": [
                    {"type": "string", "description": "Only entries for this entity", "name": "entity_id", "in": "query"},
                    {"type": "integer", "description": "Page number (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Number of items per page (default 20)", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/budget/list": {
            "get": {
                "description": "Active budgets ordered by fiscal year (newest first) then department",
                "produces": ["application/json"],
                "tags": ["budget"],
                "summary": "List budgets",
                "parameters": [
                    {"type": "string", "description": "Fiscal year", "name": "fiscal_year", "in": "query"},
                    {"type": "string", "description": "Department name", "name": "department", "in": "query"},
                    {"type": "string", "description": "CAPEX or OPEX", "name": "budget_type", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/budget/create": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["budget"],
                "summary": "Create budget",
                "parameters": [
                    {"description": "Budget", "name": "budget", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.CreateBudgetDTO"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/budget/delete/{id}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["budget"],
                "summary": "Delete budget",
                "parameters": [
                    {"type": "string", "description": "Budget ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/budget/requests": {
            "get": {
                "produces": ["application/json"],
                "tags": ["request"],
                "summary": "List requests",
                "parameters": [
                    {"type": "string", "description": "Status filter", "name": "status", "in": "query"},
                    {"type": "string", "description": "Department filter", "name": "department", "in": "query"},
                    {"type": "string", "description": "Budget filter", "name": "budget_id", "in": "query"},
                    {"type": "integer", "description": "Page number (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Items per page (default 20)", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/budget/request/submit/{id}": {
            "put": {
                "description": "Approves and reserves funds when the budget covers the estimate, otherwise rejects with a note",
                "produces": ["application/json"],
                "tags": ["request"],
                "summary": "Submit request",
                "parameters": [
                    {"type": "string", "description": "Request ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/budget/request/delete/{id}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["request"],
                "summary": "Delete request",
                "parameters": [
                    {"type": "string", "description": "Request ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/budget/revision/create": {
            "post": {
                "description": "Administrative override; does not check that the budget can absorb the change",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["revision"],
                "summary": "Create revision",
                "parameters": [
                    {"description": "Revision", "name": "revision", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.CreateRevisionDTO"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        }
    },
    "definitions": {
        "response.Response": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "status_code": {"type": "integer"},
                "data": {},
                "error": {"type": "string"},
                "code": {"type": "string"}
            }
        },
        "service.CreateBudgetDTO": {
            "type": "object",
            "required": ["fiscal_year", "department_name", "budget_type", "budget_name", "total_amount"],
            "properties": {
                "fiscal_year": {"type": "string"},
                "department_name": {"type": "string"},
                "budget_type": {"type": "string", "enum": ["CAPEX", "OPEX"]},
                "budget_code": {"type": "string"},
                "budget_name": {"type": "string"},
                "description": {"type": "string"},
                "budget_owner": {"type": "string"},
                "period_start": {"type": "string", "format": "date-time"},
                "period_end": {"type": "string", "format": "date-time"},
                "currency": {"type": "string", "example": "IDR"},
                "total_amount": {"type": "string", "example": "1000.00"},
                "reserved_amount": {"type": "string"}
            }
        },
        "service.CreateRevisionDTO": {
            "type": "object",
            "required": ["request_id", "budget_id", "new_amount"],
            "properties": {
                "request_id": {"type": "string", "format": "uuid"},
                "budget_id": {"type": "string", "format": "uuid"},
                "new_amount": {"type": "string", "example": "250.00"},
                "original_amount": {"type": "string"},
                "reduction_percentage": {"type": "string"},
                "currency": {"type": "string"},
                "reason": {"type": "string"},
                "revised_by": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:4003",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Procurement Budget API",
	Description:      "Department budgets, purchase requests and revisions with IDR mirrors.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
