// Package docs holds the Swagger document served at /swagger.
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
        "/categories": {
            "get": {
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "List categories",
                "parameters": [
                    {"type": "string", "description": "Filter by category type (inflow/outflow)", "name": "type", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Categories"},
                    "400": {"description": "Invalid type", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Create a category",
                "parameters": [
                    {"description": "Category details", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateCategoryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Category created"},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Duplicate category", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/categories/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Get category by ID",
                "parameters": [{"type": "string", "description": "Category ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Category details"},
                    "404": {"description": "Category not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Update category",
                "parameters": [
                    {"type": "string", "description": "Category ID", "name": "id", "in": "path", "required": true},
                    {"description": "Updated category details", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UpdateCategoryRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated category"},
                    "404": {"description": "Category not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Duplicate category", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Delete category",
                "parameters": [{"type": "string", "description": "Category ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Category deleted", "schema": {"$ref": "#/definitions/handlers.MessageResponse"}},
                    "404": {"description": "Category not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/dashboard/cash-flow": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "description": "Inflow, outflow and net change with a per-category breakdown. Defaults to the calendar week (Sunday to Saturday) containing to_date, or today.",
                "summary": "Cash flow summary",
                "parameters": [
                    {"type": "string", "description": "Earliest date, YYYY-MM-DD", "name": "from_date", "in": "query"},
                    {"type": "string", "description": "Latest date, YYYY-MM-DD (default end of this week)", "name": "to_date", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/linked-accounts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["plaid"],
                "summary": "List linked accounts",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/pipeline/sync": {
            "post": {
                "security": [{"PipelineAPIKey": []}],
                "produces": ["application/json"],
                "tags": ["pipeline"],
                "summary": "Scheduled sync",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SyncResponse"}},
                    "401": {"description": "Invalid API key", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/plaid/exchange-token": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["plaid"],
                "summary": "Exchange a public token",
                "parameters": [
                    {"description": "Public token", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ExchangeTokenRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Already linked", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Provider error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/plaid/link-token": {
            "post": {
                "produces": ["application/json"],
                "tags": ["plaid"],
                "summary": "Create a link token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.LinkTokenResponse"}},
                    "502": {"description": "Provider error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/plaid/sync": {
            "post": {
                "produces": ["application/json"],
                "tags": ["plaid"],
                "summary": "Sync transactions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SyncResponse"}},
                    "500": {"description": "Sync failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/snapshots": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "List cash snapshots",
                "parameters": [
                    {"type": "string", "description": "Earliest date, YYYY-MM-DD", "name": "from_date", "in": "query"},
                    {"type": "string", "description": "Latest date, YYYY-MM-DD", "name": "to_date", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/transactions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "List transactions",
                "parameters": [
                    {"type": "integer", "description": "Page number (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Items per page (default 50, max 200)", "name": "page_size", "in": "query"},
                    {"type": "string", "description": "Earliest date, YYYY-MM-DD", "name": "from_date", "in": "query"},
                    {"type": "string", "description": "Latest date, YYYY-MM-DD", "name": "to_date", "in": "query"},
                    {"type": "string", "description": "Category ID, or 'uncategorized'", "name": "category_id", "in": "query"},
                    {"type": "string", "description": "Linked account ID", "name": "linked_account_id", "in": "query"},
                    {"type": "boolean", "description": "Pending status", "name": "pending", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Paginated transactions"},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/transactions/assign-category": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Assign a category",
                "parameters": [
                    {"description": "Assignment", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.AssignCategoryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Transaction or category not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/transactions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Get transaction by ID",
                "parameters": [{"type": "string", "description": "Transaction ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Transaction not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.AssignCategoryRequest": {
            "type": "object",
            "required": ["transaction_id"],
            "properties": {
                "category_id": {"type": "string"},
                "transaction_id": {"type": "string"}
            }
        },
        "handlers.CreateCategoryRequest": {
            "type": "object",
            "required": ["name", "type"],
            "properties": {
                "color": {"type": "string"},
                "name": {"type": "string", "maxLength": 100},
                "type": {"type": "string", "enum": ["inflow", "outflow"]}
            }
        },
        "handlers.ErrorBody": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "INVALID_INPUT"},
                "message": {"type": "string", "example": "Invalid input"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"$ref": "#/definitions/handlers.ErrorBody"}}
        },
        "handlers.ExchangeTokenRequest": {
            "type": "object",
            "required": ["public_token"],
            "properties": {"public_token": {"type": "string"}}
        },
        "handlers.LinkTokenResponse": {
            "type": "object",
            "properties": {"link_token": {"type": "string"}}
        },
        "handlers.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "handlers.SyncFailure": {
            "type": "object",
            "properties": {
                "item_id": {"type": "string"},
                "linked_account_id": {"type": "string"},
                "stage": {"type": "string"}
            }
        },
        "handlers.SyncResponse": {
            "type": "object",
            "properties": {
                "accounts_synced": {"type": "integer"},
                "failed_accounts": {"type": "integer"},
                "failures": {"type": "array", "items": {"$ref": "#/definitions/handlers.SyncFailure"}},
                "message": {"type": "string", "example": "Synced 42 transactions"},
                "transaction_count": {"type": "integer"}
            }
        },
        "handlers.UpdateCategoryRequest": {
            "type": "object",
            "properties": {
                "color": {"type": "string"},
                "name": {"type": "string", "maxLength": 100},
                "type": {"type": "string", "enum": ["inflow", "outflow"]}
            }
        }
    },
    "securityDefinitions": {
        "PipelineAPIKey": {
            "description": "Shared key for scheduled pipeline calls.",
            "type": "apiKey",
            "name": "X-API-Key",
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
	Title:            "Cash Dashboard API",
	Description:      "Cash Dashboard links bank accounts through Plaid, keeps a ledger of recent transactions and records a daily cash snapshot.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
