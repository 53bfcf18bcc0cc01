// Package response writes sandbox API responses.
//
// Success bodies are the bare resource (an object or an array). Error bodies
// always have the same shape so clients can read one field:
//
//	{"message": "Product not found"}
//	{"message": "Validation failed", "errors": {"email": "..."}}
package response

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON shape of every non-2xx response.
type ErrorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// OK sends 200 with v as the body.
func OK(w http.ResponseWriter, v interface{}) { JSON(w, http.StatusOK, v) }

// Created sends 201 with v as the body.
func Created(w http.ResponseWriter, v interface{}) { JSON(w, http.StatusCreated, v) }

// Error sends {"message": message} with status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Message: message})
}

// ValidationError sends 422 with a field map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	JSON(w, http.StatusUnprocessableEntity, ErrorBody{Message: "Validation failed", Errors: errs})
}

func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	Error(w, http.StatusUnauthorized, message)
}

func Forbidden(w http.ResponseWriter) { Error(w, http.StatusForbidden, "Forbidden") }

func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Not found"
	}
	Error(w, http.StatusNotFound, message)
}
