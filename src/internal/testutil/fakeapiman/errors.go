package fakeapiman

import (
	"encoding/json"
	"net/http"
)

// Exception types reported in error beans.
const (
	ExceptionInvalid       = "InvalidRequestException"
	ExceptionNotFound      = "EntityNotFoundException"
	ExceptionAlreadyExists = "EntityAlreadyExistsException"
	ExceptionNotAuthorized = "NotAuthorizedException"
	ExceptionInvalidState  = "InvalidEntityStateException"
	ExceptionServer        = "SystemErrorException"
)

// ErrorBean is the error payload of the management API.
type ErrorBean struct {
	Type      string `json:"type"`
	ErrorCode int    `json:"errorCode"`
	Message   string `json:"message"`
}

// WriteError writes an error bean with the given status code.
func WriteError(w http.ResponseWriter, statusCode int, exception, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorBean{Type: exception, ErrorCode: statusCode, Message: message})
}

// WriteInvalidRequest writes a 400 Bad Request error.
func WriteInvalidRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, ExceptionInvalid, message)
}

// WriteNotFound writes a 404 Not Found error.
func WriteNotFound(w http.ResponseWriter, resource string) {
	WriteError(w, http.StatusNotFound, ExceptionNotFound, resource+" not found")
}

// WriteConflict writes a 409 Conflict error.
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, ExceptionAlreadyExists, message)
}

// WriteUnauthorized writes a 401 Unauthorized error.
func WriteUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="apiman"`)
	WriteError(w, http.StatusUnauthorized, ExceptionNotAuthorized, "invalid credentials")
}

// WriteInternalError writes a 500 Internal Server Error.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, ExceptionServer, message)
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeJSONData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, data)
}

func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
