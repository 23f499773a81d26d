package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Memorial Gallery API",
        "description": "Photo gallery backend: paginated browsing, ZIP photo ingestion and tar.gz bulk extraction.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Photos", "description": "Gallery browsing, ingestion and metadata"},
        {"name": "System", "description": "Probes and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["System"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["System"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "Database reachable"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/api/photos": {
            "get": {
                "tags": ["Photos"],
                "summary": "List photos, newest upload first",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer", "minimum": 1, "default": 1},
                    {"name": "pageSize", "in": "query", "type": "integer", "minimum": 1, "maximum": 100, "default": 24}
                ],
                "responses": {
                    "200": {
                        "description": "One page of photos",
                        "schema": {"$ref": "#/definitions/PhotoListEnvelope"}
                    }
                }
            }
        },
        "/api/photos/{id}": {
            "get": {
                "tags": ["Photos"],
                "summary": "Get a photo",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "200": {"description": "Photo", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown or malformed id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/photos/upload": {
            "post": {
                "tags": ["Photos"],
                "summary": "Upload a ZIP archive of images",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "X-Upload-Password", "in": "header", "required": true, "type": "string"},
                    {"name": "zipFile", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "Photos created", "schema": {"$ref": "#/definitions/UploadEnvelope"}},
                    "400": {"description": "VALIDATION_ERROR, INVALID_ARCHIVE or NO_VALID_IMAGES", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "UNAUTHORIZED", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "UPLOAD_NOT_CONFIGURED or INTERNAL_ERROR", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/photos/metadata/{id}": {
            "post": {
                "tags": ["Photos"],
                "summary": "Replace photo title, description and keywords",
                "consumes": ["application/json"],
                "parameters": [
                    {"name": "X-Upload-Password", "in": "header", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateMetadataRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated photo", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "VALIDATION_ERROR", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "NOT_FOUND", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/photos/extract": {
            "post": {
                "tags": ["Photos"],
                "summary": "Bulk extract a tar.gz archive onto disk",
                "description": "Regular files are written under their base name, replacing existing files. No photo records are created.",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "X-Upload-Password", "in": "header", "required": true, "type": "string"},
                    {"name": "archive", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "Extraction summary", "schema": {"$ref": "#/definitions/ExtractionEnvelope"}},
                    "400": {"description": "VALIDATION_ERROR or INVALID_ARCHIVE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "UNAUTHORIZED", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "INTERNAL_ERROR", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Photo": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "keywords": {"type": "array", "items": {"type": "string"}},
                "filePath": {"type": "string"},
                "fileName": {"type": "string"},
                "fileSize": {"type": "integer"},
                "mimeType": {"type": "string"},
                "uploadedAt": {"type": "string", "format": "date-time"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "UpdateMetadataRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string", "maxLength": 500},
                "description": {"type": "string"},
                "keywords": {"type": "array", "maxItems": 50, "items": {"type": "string", "maxLength": 100}}
            }
        },
        "UploadResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "count": {"type": "integer"},
                "photos": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "id": {"type": "string"},
                            "fileName": {"type": "string"}
                        }
                    }
                }
            }
        },
        "ExtractionResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "fileCount": {"type": "integer"},
                "totalBytes": {"type": "integer"},
                "destination": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalCount": {"type": "integer"},
                "totalPages": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        },
        "PhotoListEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/Photo"}},
                "pagination": {"$ref": "#/definitions/Pagination"}
            }
        },
        "UploadEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/UploadResponse"}
            }
        },
        "ExtractionEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/ExtractionResponse"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
