package transport

import (
	"errors"
	"net/http"
	"strconv"

	"veneto-api/internal/domain"
	"veneto-api/internal/logger"
	"veneto-api/internal/middleware"
	"veneto-api/internal/service"

	"go.uber.org/zap"
)

const (
	defaultSkip  = 0
	defaultLimit = service.MaxPageLimit
)

// page is the skip/limit window read from the query string
type page struct {
	Skip  int
	Limit int
	// Set is false when neither skip nor limit was given
	Set bool
}

// parsePage reads skip and limit, defaulting to 0 and 100. Range checks are
// left to the service so every caller gets the same error.
func parsePage(r *http.Request) (page, []middleware.ValidationError) {
	p := page{Skip: defaultSkip, Limit: defaultLimit}
	var errs []middleware.ValidationError

	q := r.URL.Query()
	for _, f := range []struct {
		name string
		dst  *int
	}{{"skip", &p.Skip}, {"limit", &p.Limit}} {
		if !q.Has(f.name) {
			continue
		}
		p.Set = true

		v, err := strconv.Atoi(q.Get(f.name))
		if err != nil {
			errs = append(errs, middleware.ValidationError{Field: f.name, Message: "must be an integer"})
			continue
		}
		*f.dst = v
	}

	return p, errs
}

// respondDecodeError answers a body that could not be decoded or failed the
// request struct's tags
func respondDecodeError(w http.ResponseWriter, err error) {
	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}
	if errors.Is(err, middleware.ErrEmptyBody) {
		middleware.RespondWithError(w, http.StatusBadRequest, "request body is required")
		return
	}
	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
}

// respondError maps domain and service errors onto HTTP statuses
func respondError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		middleware.RespondWithValidationErrors(w, fromDomainValidation(verr))
	case errors.Is(err, service.ErrInvalidPagination):
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			{Field: "skip", Message: "must be >= 0"},
			{Field: "limit", Message: "must be between 1 and " + strconv.Itoa(service.MaxPageLimit)},
		})
	case errors.Is(err, service.ErrInvalidArgument):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		middleware.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		logger.Error(r.Context(), log, "Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

func fromDomainValidation(verr *domain.ValidationError) []middleware.ValidationError {
	out := make([]middleware.ValidationError, len(verr.Fields))
	for i, f := range verr.Fields {
		out[i] = middleware.ValidationError{Field: f.Field, Message: f.Message}
	}
	return out
}

// nonEmpty makes empty listings encode as [] rather than null
func nonEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
