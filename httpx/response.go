package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorResponse struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"message":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Message: msg, Details: details})
}

// Created answers 201 with a Location header pointing at the new resource.
func Created(w http.ResponseWriter, location string, payload any) {
	w.Header().Set("Location", location)
	JSON(w, http.StatusCreated, payload)
}

// NoContent answers 204 with an empty body.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// NotFound answers 404 with the id of the missing entity alongside the
// message, e.g. {"message":"...","productId":42}.
func NotFound(w http.ResponseWriter, msg, idField string, id uint) {
	JSON(w, http.StatusNotFound, map[string]any{"message": msg, idField: id})
}

// CreatedLocation builds the canonical resource path for Created.
func CreatedLocation(base string, id uint) string {
	return fmt.Sprintf("%s/%d", base, id)
}
