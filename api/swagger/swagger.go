package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {"title": "Volunteer Hub API", "description": "Volunteer onboarding, events, trainings and reporting.", "version": "1.0.0"},
    "basePath": "/",
    "schemes": ["http", "https"],
    "securityDefinitions": {"BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}},
    "paths": {
        "/health": {
            "get": {"tags": ["System"], "summary": "Health check", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/ready": {
            "get": {"tags": ["System"], "summary": "Readiness check", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/auth/signup": {
            "post": {"tags": ["Authentication"], "summary": "Volunteer sign-up", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SignUpRequest"}}], "responses": {"201": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/auth/admin/register": {
            "post": {"tags": ["Authentication"], "summary": "Administrator registration", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AdminRegisterRequest"}}], "responses": {"201": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/auth/login": {
            "post": {"tags": ["Authentication"], "summary": "Sign in", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/auth/refresh": {
            "post": {"tags": ["Authentication"], "summary": "Refresh tokens", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/auth/logout": {
            "post": {"tags": ["Authentication"], "summary": "Sign out", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/auth/change-password": {
            "post": {"tags": ["Authentication"], "summary": "Change password", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/auth/me": {
            "get": {"tags": ["Authentication"], "summary": "Current session", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/profile": {
            "get": {"tags": ["Profile"], "summary": "My profile", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "put": {"tags": ["Profile"], "summary": "Update contact details", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/profile/onboarding": {
            "post": {"tags": ["Profile"], "summary": "Submit onboarding", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/profile/status": {
            "get": {"tags": ["Profile"], "summary": "Re-check approval status", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/profile/languages": {
            "put": {"tags": ["Profile"], "summary": "Replace spoken languages", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/profile/avatar": {
            "post": {"tags": ["Profile"], "summary": "Upload avatar", "parameters": [{"name": "avatar", "in": "formData", "type": "file", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/messages": {
            "get": {"tags": ["Messages"], "summary": "Inbox", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {"tags": ["Messages"], "summary": "Send a message", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/messages/sent": {
            "get": {"tags": ["Messages"], "summary": "Sent messages", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/messages/unread-count": {
            "get": {"tags": ["Messages"], "summary": "Unread counter", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/messages/{id}/read": {
            "patch": {"tags": ["Messages"], "summary": "Mark as read", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/events/public": {
            "get": {"tags": ["Events"], "summary": "Public events", "parameters": [{"name": "page", "in": "query", "type": "integer", "required": false}, {"name": "pageSize", "in": "query", "type": "integer", "required": false}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/events": {
            "get": {"tags": ["Events"], "summary": "List events", "parameters": [{"name": "page", "in": "query", "type": "integer", "required": false}, {"name": "pageSize", "in": "query", "type": "integer", "required": false}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/events/{id}": {
            "get": {"tags": ["Events"], "summary": "Get event", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/events/{id}/register": {
            "post": {"tags": ["Registrations"], "summary": "Register for an event", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "delete": {"tags": ["Registrations"], "summary": "Withdraw a registration", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/me/registrations": {
            "get": {"tags": ["Registrations"], "summary": "My registrations", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/me/stats": {
            "get": {"tags": ["Reports"], "summary": "My statistics", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/trainings": {
            "get": {"tags": ["Trainings"], "summary": "List trainings", "parameters": [{"name": "upcoming", "in": "query", "type": "boolean", "required": false}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/trainings/{id}": {
            "get": {"tags": ["Trainings"], "summary": "Get training", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/trainings/{id}/join": {
            "post": {"tags": ["Trainings"], "summary": "Join a training", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "delete": {"tags": ["Trainings"], "summary": "Leave a training", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/attestations": {
            "get": {"tags": ["Attestations"], "summary": "My attestation requests", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {"tags": ["Attestations"], "summary": "Request an attestation", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/certificates": {
            "get": {"tags": ["Attestations"], "summary": "My certificates", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/volunteers": {
            "get": {"tags": ["Volunteers"], "summary": "List volunteers", "parameters": [{"name": "status", "in": "query", "type": "string", "required": false}, {"name": "search", "in": "query", "type": "string", "required": false}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/volunteers/pending": {
            "get": {"tags": ["Volunteers"], "summary": "Profiles awaiting approval", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/volunteers/{id}": {
            "get": {"tags": ["Volunteers"], "summary": "Get volunteer", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/volunteers/{id}/approve": {
            "post": {"tags": ["Volunteers"], "summary": "Approve a profile", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/volunteers/{id}/reject": {
            "post": {"tags": ["Volunteers"], "summary": "Reject a profile", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/events": {
            "post": {"tags": ["Events"], "summary": "Create event", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/events/{id}": {
            "put": {"tags": ["Events"], "summary": "Update event", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "delete": {"tags": ["Events"], "summary": "Delete event", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/events/{id}/status": {
            "patch": {"tags": ["Events"], "summary": "Change event status", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/events/{id}/cancel": {
            "post": {"tags": ["Events"], "summary": "Cancel event and notify volunteers", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/events/{id}/poster": {
            "post": {"tags": ["Events"], "summary": "Upload event poster", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}, {"name": "poster", "in": "formData", "type": "file", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/events/{id}/registrations": {
            "get": {"tags": ["Registrations"], "summary": "Registrations of an event", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/events/{id}/assign": {
            "post": {"tags": ["Registrations"], "summary": "Assign a volunteer", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/registrations/pending": {
            "get": {"tags": ["Registrations"], "summary": "Pending registrations", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/registrations/{id}/validate": {
            "post": {"tags": ["Registrations"], "summary": "Validate a registration", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/registrations/{id}/reject": {
            "post": {"tags": ["Registrations"], "summary": "Reject a registration", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/registrations/{id}/complete": {
            "post": {"tags": ["Registrations"], "summary": "Complete a registration", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/trainings": {
            "post": {"tags": ["Trainings"], "summary": "Create training", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/trainings/{id}": {
            "put": {"tags": ["Trainings"], "summary": "Update training", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "delete": {"tags": ["Trainings"], "summary": "Delete training", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/trainings/{id}/cancel": {
            "post": {"tags": ["Trainings"], "summary": "Cancel training and notify participants", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/trainings/{id}/poster": {
            "post": {"tags": ["Trainings"], "summary": "Upload training poster", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}, {"name": "poster", "in": "formData", "type": "file", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/trainings/{id}/participants": {
            "get": {"tags": ["Trainings"], "summary": "Training participants", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/trainings/{id}/participants/{volunteerId}": {
            "patch": {"tags": ["Trainings"], "summary": "Record attendance", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}, {"name": "volunteerId", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/attestations": {
            "get": {"tags": ["Attestations"], "summary": "List attestation requests", "parameters": [{"name": "status", "in": "query", "type": "string", "required": false}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/attestations/{id}/process": {
            "post": {"tags": ["Attestations"], "summary": "Process an attestation request", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/certificates": {
            "post": {"tags": ["Attestations"], "summary": "Issue a certificate", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/stats": {
            "get": {"tags": ["Reports"], "summary": "Platform statistics", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/exports/volunteers": {
            "get": {"tags": ["Reports"], "summary": "Export all volunteers", "parameters": [{"name": "format", "in": "query", "type": "string", "required": false}, {"name": "download", "in": "query", "type": "boolean", "required": false}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/exports/events/{id}/volunteers": {
            "get": {"tags": ["Reports"], "summary": "Export the volunteers of an event", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}, {"name": "format", "in": "query", "type": "string", "required": false}, {"name": "download", "in": "query", "type": "boolean", "required": false}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/exports/download": {
            "get": {"tags": ["Reports"], "summary": "Download a generated export", "parameters": [{"name": "token", "in": "query", "type": "string", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        }
    },
    "definitions": {
        "SignUpRequest": {"type": "object", "required": ["email", "password", "fullName"], "properties": {"email": {"type": "string"}, "password": {"type": "string"}, "fullName": {"type": "string"}, "phone": {"type": "string"}}},
        "AdminRegisterRequest": {"type": "object", "required": ["email", "password", "fullName", "adminCode"], "properties": {"email": {"type": "string"}, "password": {"type": "string"}, "fullName": {"type": "string"}, "adminCode": {"type": "string"}}},
        "LoginRequest": {"type": "object", "required": ["email", "password"], "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "RefreshRequest": {"type": "object", "required": ["refresh_token"], "properties": {"refresh_token": {"type": "string"}}},
        "Pagination": {"type": "object", "properties": {"page": {"type": "integer"}, "page_size": {"type": "integer"}, "total_count": {"type": "integer"}}},
        "APIError": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}, "status": {"type": "integer"}, "details": {"type": "object"}}},
        "ResponseEnvelope": {"type": "object", "properties": {"data": {"type": "object"}, "error": {"$ref": "#/definitions/APIError"}, "pagination": {"$ref": "#/definitions/Pagination"}, "meta": {"type": "object"}}}
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
