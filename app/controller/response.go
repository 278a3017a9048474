package controller

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"studio-storefront/models"
	"studio-storefront/repository"
	"studio-storefront/service"
)

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, status int, v interface{}, handler string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ %s: Error encoding response: %v", handler, err)
	}
}

// pathParts splits the remainder of a path after prefix, e.g.
// pathParts("/cart/abc/items/x", "/cart/") = ["abc", "items", "x"]
func pathParts(path, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

// errorStatus maps service and validation errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrCartNotFound),
		errors.Is(err, service.ErrItemNotInCatalog),
		errors.Is(err, service.ErrItemNotSelected),
		errors.Is(err, repository.ErrLeadNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadySelected),
		errors.Is(err, service.ErrItemUnavailable),
		errors.Is(err, service.ErrCartConflicts):
		return http.StatusConflict
	case errors.Is(err, models.ErrCustomerNameRequired),
		errors.Is(err, models.ErrContactRequired),
		errors.Is(err, models.ErrConsentRequired),
		errors.Is(err, models.ErrEmptySelection):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSharingDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError logs err and replies with its mapped status
func writeError(w http.ResponseWriter, err error, handler string) {
	status := errorStatus(err)
	log.Printf("❌ %s: %v (status %d)", handler, err, status)
	http.Error(w, err.Error(), status)
}
