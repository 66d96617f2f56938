package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskman-api/internal/api/shared"
	"github.com/phrazzld/taskman-api/internal/domain"
	"github.com/phrazzld/taskman-api/internal/platform/logger"
)

// getPathID extracts a positive int64 from the URL path parameter paramName.
func getPathID(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// parseListQuery reads q, page and size from the query string. Missing or
// non-numeric page and size fall back to the defaults; oversized pages are
// clamped.
func parseListQuery(r *http.Request) domain.ListQuery {
	values := r.URL.Query()
	q := domain.ListQuery{Q: values.Get("q")}
	if page, err := strconv.Atoi(values.Get("page")); err == nil {
		q.Page = page
	}
	if size, err := strconv.Atoi(values.Get("size")); err == nil {
		q.Size = size
	}
	return q.Normalize()
}

// requirePrincipal returns the authenticated caller, writing a 401 when the
// auth middleware did not run.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Warn("principal not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return domain.Principal{}, false
	}
	return p, true
}

// handlePrincipalAndPathID extracts both the caller and a path ID, writing
// the error response when either is missing.
func handlePrincipalAndPathID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
) (domain.Principal, int64, bool) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return domain.Principal{}, 0, false
	}

	id, err := getPathID(r, paramName)
	if err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return domain.Principal{}, 0, false
	}
	return p, id, true
}

// decodeAndValidate decodes the JSON body into v and validates it, writing a
// 400 on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			HandleAPIError(w, r, err, "")
			return false
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}
