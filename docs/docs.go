// Package docs registers the OpenAPI document served at /api/swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs
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
        "/users": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List users",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.User"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Create a user",
                "parameters": [
                    {"description": "New user", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.CreateUserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.User"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/users/{userId}": {
            "get": {
                "description": "With expand=true the thoughts and friends sets are resolved into documents.",
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get a user",
                "parameters": [
                    {"type": "integer", "description": "User ID", "name": "userId", "in": "path", "required": true},
                    {"type": "boolean", "description": "Resolve thoughts and friends", "name": "expand", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.User"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "put": {
                "description": "A new username is copied onto every thought the user owns.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Update a user",
                "parameters": [
                    {"type": "integer", "description": "User ID", "name": "userId", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.UpdateUserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.User"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Delete a user and every thought it owns",
                "parameters": [
                    {"type": "integer", "description": "User ID", "name": "userId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.DeleteUserResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/users/{userId}/friends/{friendId}": {
            "post": {
                "description": "Friendship is directed: only the user's friends set changes.",
                "produces": ["application/json"],
                "tags": ["friends"],
                "summary": "Add a friend",
                "parameters": [
                    {"type": "integer", "description": "User ID", "name": "userId", "in": "path", "required": true},
                    {"type": "integer", "description": "Friend user ID", "name": "friendId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.User"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["friends"],
                "summary": "Remove a friend",
                "parameters": [
                    {"type": "integer", "description": "User ID", "name": "userId", "in": "path", "required": true},
                    {"type": "integer", "description": "Friend user ID", "name": "friendId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.User"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/thoughts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["thoughts"],
                "summary": "List thoughts",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Thought"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "post": {
                "description": "The thought is linked to its owner in the same unit of work. Unresolvable owners leave it orphaned.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["thoughts"],
                "summary": "Create a thought",
                "parameters": [
                    {"description": "New thought", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.CreateThoughtRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.CreateThoughtResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/thoughts/{thoughtId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["thoughts"],
                "summary": "Get a thought",
                "parameters": [
                    {"type": "integer", "description": "Thought ID", "name": "thoughtId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Thought"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["thoughts"],
                "summary": "Update a thought",
                "parameters": [
                    {"type": "integer", "description": "Thought ID", "name": "thoughtId", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.UpdateThoughtRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Thought"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["thoughts"],
                "summary": "Delete a thought",
                "parameters": [
                    {"type": "integer", "description": "Thought ID", "name": "thoughtId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.DeleteThoughtResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/thoughts/{thoughtId}/reactions": {
            "post": {
                "description": "A reaction with the same body and username as an existing one is not added again.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["reactions"],
                "summary": "Add a reaction",
                "parameters": [
                    {"type": "integer", "description": "Thought ID", "name": "thoughtId", "in": "path", "required": true},
                    {"description": "Reaction", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.AddReactionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Thought"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/thoughts/{thoughtId}/reactions/{reactionId}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["reactions"],
                "summary": "Remove a reaction",
                "parameters": [
                    {"type": "integer", "description": "Thought ID", "name": "thoughtId", "in": "path", "required": true},
                    {"type": "string", "description": "Reaction ID", "name": "reactionId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Thought"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "code": {"type": "string"},
                "details": {"type": "string"}
            }
        },
        "models.Reaction": {
            "type": "object",
            "properties": {
                "reactionId": {"type": "string"},
                "reactionBody": {"type": "string"},
                "username": {"type": "string"},
                "createdAt": {"type": "string", "example": "1/2/06 at 3:04 PM"}
            }
        },
        "models.Thought": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "thoughtText": {"type": "string"},
                "username": {"type": "string"},
                "userId": {"type": "integer"},
                "reactions": {"type": "array", "items": {"$ref": "#/definitions/models.Reaction"}},
                "reactionCount": {"type": "integer"},
                "createdAt": {"type": "string", "example": "1/2/06 at 3:04 PM"}
            }
        },
        "models.User": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "thoughts": {"type": "array", "items": {"type": "integer"}},
                "friends": {"type": "array", "items": {"type": "integer"}},
                "thoughtCount": {"type": "integer"},
                "friendCount": {"type": "integer"},
                "createdAt": {"type": "string", "example": "1/2/06 at 3:04 PM"}
            }
        },
        "server.AddReactionRequest": {
            "type": "object",
            "properties": {
                "reactionBody": {"type": "string", "example": "lol"},
                "username": {"type": "string", "example": "bea"}
            }
        },
        "server.CreateThoughtRequest": {
            "type": "object",
            "properties": {
                "thoughtText": {"type": "string", "example": "hello"},
                "username": {"type": "string", "example": "ana"},
                "userId": {"type": "integer"}
            }
        },
        "server.CreateThoughtResponse": {
            "type": "object",
            "properties": {
                "thought": {"$ref": "#/definitions/models.Thought"},
                "user": {"$ref": "#/definitions/models.User"}
            }
        },
        "server.CreateUserRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string", "example": "ana"},
                "email": {"type": "string", "example": "ana@example.com"}
            }
        },
        "server.DeleteThoughtResponse": {
            "type": "object",
            "properties": {
                "deletedThought": {"$ref": "#/definitions/models.Thought"},
                "user": {"$ref": "#/definitions/models.User"}
            }
        },
        "server.DeleteUserResponse": {
            "type": "object",
            "properties": {
                "deletedUser": {"$ref": "#/definitions/models.User"},
                "deletedThoughts": {"type": "array", "items": {"$ref": "#/definitions/models.Thought"}},
                "deletedThoughtCount": {"type": "integer"}
            }
        },
        "server.UpdateThoughtRequest": {
            "type": "object",
            "properties": {
                "thoughtText": {"type": "string"},
                "username": {"type": "string"},
                "userId": {"type": "integer"}
            }
        },
        "server.UpdateUserRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Social API",
	Description:      "Users, thoughts, reactions and friends.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
