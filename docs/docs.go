// Package docs registers the OpenAPI description of the content service with swag.
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
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/content-service/health": {
            "get": {
                "description": "Returns the overall health status and component statuses.",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "Service healthy or degraded", "schema": {"$ref": "#/definitions/dto.HealthResponse"}},
                    "503": {"description": "Service unhealthy", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        },
        "/api/v1/content-service/posts": {
            "get": {
                "description": "Returns one page of public posts with their aggregates",
                "produces": ["application/json"],
                "tags": ["Posts"],
                "summary": "List public posts",
                "parameters": [
                    {"type": "string", "description": "Viewer ID", "name": "X-User-ID", "in": "header"},
                    {"type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "description": "Page size", "name": "pageSize", "in": "query"},
                    {"enum": ["recent", "oldest"], "type": "string", "description": "Sort order", "name": "sort", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PostPageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Posts"],
                "summary": "Create a post",
                "parameters": [
                    {"type": "string", "description": "Viewer ID", "name": "X-User-ID", "in": "header", "required": true},
                    {"description": "Post", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreatePostRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.PostView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/content-service/posts/{postId}": {
            "get": {
                "description": "Returns a post with its aggregates and records the view",
                "produces": ["application/json"],
                "tags": ["Posts"],
                "summary": "Get a post",
                "parameters": [
                    {"type": "string", "description": "Viewer ID", "name": "X-User-ID", "in": "header"},
                    {"type": "string", "description": "Post ID", "name": "postId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PostView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/content-service/posts/{postId}/like": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Likes"],
                "summary": "Like a post",
                "parameters": [
                    {"type": "string", "description": "Viewer ID", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "string", "description": "Post ID", "name": "postId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.LikeResponse"}}
                }
            }
        },
        "/api/v1/content-service/events": {
            "get": {
                "description": "Streams every cache invalidation applied by any instance as Server-Sent Events until the client disconnects.",
                "produces": ["text/event-stream"],
                "tags": ["Events"],
                "summary": "Stream invalidation events",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.InvalidationEventResponse"}}
                }
            }
        },
        "/media/{token}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Media"],
                "summary": "Resolve a signed media URL",
                "parameters": [
                    {"type": "string", "description": "Signed token", "name": "token", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.MediaResponse"}},
                    "302": {"description": "Found"},
                    "403": {"description": "Token expired", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Unknown token", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "components": {"type": "object", "additionalProperties": {"type": "string"}},
                "reason": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "dto.CreatePostRequest": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "body": {"type": "string"},
                "locationId": {"type": "string"},
                "mediaRef": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "title": {"type": "string"},
                "visibility": {"type": "string", "enum": ["public", "followers", "private"]}
            }
        },
        "dto.LikeResponse": {
            "type": "object",
            "properties": {
                "likeCount": {"type": "integer"},
                "liked": {"type": "boolean"},
                "postId": {"type": "string"}
            }
        },
        "dto.MediaResponse": {
            "type": "object",
            "properties": {
                "ref": {"type": "string"}
            }
        },
        "dto.InvalidationEventResponse": {
            "type": "object",
            "properties": {
                "action": {"type": "string"},
                "entity": {"type": "string"},
                "entityId": {"type": "string"},
                "id": {"type": "string"},
                "keys": {"type": "array", "items": {"type": "string"}},
                "occurredAt": {"type": "string"},
                "origin": {"type": "string"},
                "patterns": {"type": "array", "items": {"type": "string"}}
            }
        },
        "dto.PostPageResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/models.PostView"}},
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "models.PostView": {
            "type": "object",
            "properties": {
                "body": {"type": "string"},
                "commentCount": {"type": "integer"},
                "createdAt": {"type": "string"},
                "id": {"type": "string"},
                "likeCount": {"type": "integer"},
                "likedByMe": {"type": "boolean"},
                "mediaRef": {"type": "string"},
                "mediaUrl": {"type": "string"},
                "ownerId": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "title": {"type": "string"},
                "updatedAt": {"type": "string"},
                "viewerCount": {"type": "integer"},
                "visibility": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Content Service API",
	Description:      "Posts, comments, likes, follows and catalog content served through a read-through Redis cache.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
