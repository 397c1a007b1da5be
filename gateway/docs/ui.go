package docs

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// openapiJSON is served at /openapi.json.
const openapiJSON = `{
  "openapi": "3.0.3",
  "info": {"title": "Cinexnema API", "version": "1.0.0"},
  "servers": [{"url": "/"}],
  "tags": [
    {"name": "auth", "description": "Sign up, sign in and token introspection"},
    {"name": "videos", "description": "Catalogue, pricing and moderation"},
    {"name": "creators", "description": "Creator area: uploads, projects, dashboard"},
    {"name": "storage", "description": "Signed URLs and bucket administration"},
    {"name": "setup", "description": "Schema setup"}
  ],
  "components": {
    "securitySchemes": {
      "bearerAuth": {"type": "http", "scheme": "bearer", "bearerFormat": "JWT"}
    },
    "schemas": {
      "Error": {
        "type": "object",
        "properties": {
          "success": {"type": "boolean", "example": false},
          "error": {"type": "string", "enum": ["CONFIGURATION_MISSING", "UNAUTHORIZED", "FORBIDDEN", "NOT_FOUND", "VALIDATION", "UPSTREAM_FAILURE", "RATE_LIMITED", "INTERNAL"]},
          "message": {"type": "string"},
          "reason": {"type": "string", "enum": ["bucket_not_found", "permission_denied", "already_exists"]}
        }
      },
      "Credentials": {
        "type": "object",
        "required": ["email", "password"],
        "properties": {
          "email": {"type": "string", "format": "email"},
          "password": {"type": "string", "minLength": 6},
          "display_name": {"type": "string"}
        }
      },
      "CreateUpload": {
        "type": "object",
        "properties": {
          "title": {"type": "string"},
          "description": {"type": "string"},
          "format": {"type": "string", "enum": ["Movie", "Series", "Season/Serial"]},
          "genres": {"type": "array", "items": {"type": "string"}},
          "duration_minutes": {"type": "integer", "minimum": 0},
          "filename": {"type": "string"},
          "project_id": {"type": "string", "format": "uuid"},
          "cover_url": {"type": "string"},
          "cover_path": {"type": "string"}
        }
      }
    },
    "parameters": {
      "id": {"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}},
      "page": {"name": "page", "in": "query", "schema": {"type": "integer", "default": 1}},
      "pageSize": {"name": "page_size", "in": "query", "schema": {"type": "integer", "default": 20, "maximum": 100}}
    }
  },
  "paths": {
    "/health": {"get": {"summary": "Database health", "responses": {"200": {"description": "OK"}, "503": {"description": "Database unreachable"}}}},
    "/api/auth/signup": {"post": {"summary": "Sign up", "tags": ["auth"], "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Credentials"}}}}, "responses": {"201": {"description": "Session"}, "400": {"description": "Invalid or duplicate email"}, "429": {"description": "Rate limited"}}}},
    "/api/auth/login": {"post": {"summary": "Sign in", "tags": ["auth"], "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Credentials"}}}}, "responses": {"200": {"description": "Session"}, "401": {"description": "Wrong password"}, "404": {"description": "Unknown email"}}}},
    "/api/auth/session": {"post": {"summary": "Sign in, registering first when the email is unknown", "tags": ["auth"], "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Credentials"}}}}, "responses": {"200": {"description": "Existing user"}, "201": {"description": "New user"}}}},
    "/api/auth/validate": {"get": {"summary": "Token introspection", "tags": ["auth"], "parameters": [{"name": "token", "in": "query", "schema": {"type": "string"}}], "responses": {"200": {"description": "valid flag and principal"}}}},
    "/api/auth/me": {"get": {"summary": "Current principal", "tags": ["auth"], "security": [{"bearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
    "/api/auth/password": {"put": {"summary": "Replace the caller's password", "tags": ["auth"], "security": [{"bearerAuth": []}], "responses": {"200": {"description": "Updated"}, "400": {"description": "Validation error"}, "401": {"description": "Unauthorized"}}}},
    "/api/videos/config": {"get": {"summary": "Pricing rule and bucket names", "tags": ["videos"], "responses": {"200": {"description": "OK"}}}},
    "/api/videos/quote": {"get": {"summary": "Preview the monthly cost", "tags": ["videos"], "parameters": [{"name": "duration", "in": "query", "schema": {"type": "integer"}}], "responses": {"200": {"description": "OK"}}}},
    "/api/videos/public": {"get": {"summary": "Approved videos", "tags": ["videos"], "parameters": [{"$ref": "#/components/parameters/page"}, {"$ref": "#/components/parameters/pageSize"}], "responses": {"200": {"description": "OK"}}}},
    "/api/videos/submit": {"post": {"summary": "Anonymous submission of a hosted video", "tags": ["videos"], "responses": {"201": {"description": "Created"}}}},
    "/api/videos": {"get": {"summary": "All videos", "tags": ["videos"], "security": [{"bearerAuth": []}], "parameters": [{"$ref": "#/components/parameters/page"}, {"$ref": "#/components/parameters/pageSize"}], "responses": {"200": {"description": "OK"}, "403": {"description": "Not an admin"}}}},
    "/api/videos/{id}/approve": {"post": {"summary": "Approve", "tags": ["videos"], "security": [{"bearerAuth": []}], "parameters": [{"$ref": "#/components/parameters/id"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}},
    "/api/videos/{id}/revoke": {"post": {"summary": "Revoke approval", "tags": ["videos"], "security": [{"bearerAuth": []}], "parameters": [{"$ref": "#/components/parameters/id"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}},
    "/api/creators/cover": {"post": {"summary": "Upload a cover image", "tags": ["creators"], "security": [{"bearerAuth": []}], "requestBody": {"content": {"multipart/form-data": {"schema": {"type": "object", "properties": {"file": {"type": "string", "format": "binary"}}}}}}, "responses": {"200": {"description": "OK"}}}},
    "/api/creators/videos": {"get": {"summary": "Own videos", "tags": ["creators"], "security": [{"bearerAuth": []}], "parameters": [{"$ref": "#/components/parameters/page"}, {"$ref": "#/components/parameters/pageSize"}], "responses": {"200": {"description": "OK"}}}},
    "/api/creators/video/{id}": {
      "patch": {"summary": "Edit metadata", "tags": ["creators"], "security": [{"bearerAuth": []}], "parameters": [{"$ref": "#/components/parameters/id"}], "responses": {"200": {"description": "OK"}}},
      "delete": {"summary": "Delete a video and its stored objects", "tags": ["creators"], "security": [{"bearerAuth": []}], "parameters": [{"$ref": "#/components/parameters/id"}], "responses": {"200": {"description": "OK"}}}
    },
    "/api/creators/dashboard": {"get": {"summary": "Stats and earnings", "tags": ["creators"], "security": [{"bearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
    "/api/creators/upload": {"post": {"summary": "Create a video and a signed upload target", "tags": ["creators"], "security": [{"bearerAuth": []}], "requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/CreateUpload"}}}}, "responses": {"201": {"description": "Upload target"}, "503": {"description": "Storage not configured"}}}},
    "/api/creators/upload-complete": {"post": {"summary": "Finalize an upload", "tags": ["creators"], "security": [{"bearerAuth": []}], "requestBody": {"content": {"application/json": {"schema": {"type": "object", "properties": {"video_id": {"type": "string", "format": "uuid"}}}}}}, "responses": {"200": {"description": "OK"}}}},
    "/api/creators/upload-complete-form": {"post": {"summary": "Register an already stored video with the full form", "tags": ["creators"], "security": [{"bearerAuth": []}], "responses": {"201": {"description": "Created"}}}},
    "/api/creators/projects": {
      "get": {"summary": "Own projects", "tags": ["creators"], "security": [{"bearerAuth": []}], "responses": {"200": {"description": "OK"}}},
      "post": {"summary": "Create a project", "tags": ["creators"], "security": [{"bearerAuth": []}], "responses": {"201": {"description": "Created"}}}
    },
    "/api/creators/projects/{id}": {"delete": {"summary": "Delete a project", "tags": ["creators"], "security": [{"bearerAuth": []}], "parameters": [{"$ref": "#/components/parameters/id"}], "responses": {"200": {"description": "OK"}}}},
    "/api/storage/signed-url": {"post": {"summary": "Signed read URL", "tags": ["storage"], "security": [{"bearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
    "/api/storage/signed-upload": {"post": {"summary": "Generic signed upload", "tags": ["storage"], "security": [{"bearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
    "/api/storage/create-buckets": {"post": {"summary": "Create the bucket set", "tags": ["storage"], "security": [{"bearerAuth": []}], "responses": {"200": {"description": "Per bucket results"}}}},
    "/api/storage/check-buckets": {"get": {"summary": "Report missing buckets", "tags": ["storage"], "security": [{"bearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
    "/api/setup/database": {"post": {"summary": "Run schema migrations", "tags": ["setup"], "security": [{"bearerAuth": []}], "responses": {"200": {"description": "OK"}}}}
  }
}`

// RegisterRoutes serves the OpenAPI document and a Swagger UI page.
func RegisterRoutes(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/docs") })
	r.GET("/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(openapiJSON))
	})
	r.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerHTML))
	})
}

const swaggerHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8"/>
  <title>Cinexnema API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body style="margin:0">
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
  <script>
    window.ui = SwaggerUIBundle({url: '/openapi.json', dom_id: '#swagger-ui', deepLinking: true});
  </script>
</body>
</html>`
