package response

import (
	"encoding/json"
	"net/http"

	"github.com/resor-app/resor/pkg/apperr"
)

// ProblemJSON is the content type used for every error body.
const ProblemJSON = "application/problem+json; charset=utf-8"

type envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 JSON response with data.
func Success(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, envelope{Status: http.StatusOK, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusCreated, envelope{Status: http.StatusCreated, Data: data})
}

// JSON sends data in the envelope with an arbitrary status.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, envelope{Status: status, Data: data})
}

// NoContent sends an empty 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Fail writes err as a problem body. The status comes from the error kind;
// anything that is not an *apperr.Error is reported as a 500.
func Fail(w http.ResponseWriter, err error) {
	p := apperr.ToProblem(err)
	w.Header().Set("Content-Type", ProblemJSON)
	w.WriteHeader(p.Status)
	json.NewEncoder(w).Encode(p) //nolint:errcheck
}

// Unauthorized sends a 403 AuthorizationError, which is what the API reports
// for missing or invalid tokens as well as insufficient roles.
func Unauthorized(w http.ResponseWriter) {
	Fail(w, apperr.Authorization("Unauthorized"))
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Fail(w, apperr.NotFound("Not found"))
}

// TooManyRequests sends a 429 problem body.
func TooManyRequests(w http.ResponseWriter) {
	w.Header().Set("Content-Type", ProblemJSON)
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(apperr.Problem{ //nolint:errcheck
		Name:    "TooManyRequestsError",
		Message: "Too Many Requests",
		Status:  http.StatusTooManyRequests,
	})
}
