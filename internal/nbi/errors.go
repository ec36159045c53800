package nbi

import (
	"context"
	"errors"
	"net/http"

	"github.com/signalsfoundry/polageo/catalog"
	"github.com/signalsfoundry/polageo/core"
	"github.com/signalsfoundry/polageo/internal/nbi/types"
	"github.com/signalsfoundry/polageo/model"
)

var (
	// ErrNotFound is used when a name is not present in the registry.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest is used for malformed request bodies and parameters.
	ErrInvalidRequest = errors.New("invalid request")
)

// ToHTTPStatus maps domain errors onto HTTP status codes.
func ToHTTPStatus(err error) int {
	var perr *catalog.ParseError
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, types.ErrInvalidElements),
		errors.Is(err, model.ErrUnknownBody):
		return http.StatusBadRequest

	case errors.Is(err, ErrNotFound),
		errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, core.ErrNonFinitePosition):
		return http.StatusUnprocessableEntity

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	// Upstream catalog problems: unreachable, unparseable, or a record SGP4
	// cannot propagate.
	case errors.Is(err, catalog.ErrTransport),
		errors.As(err, &perr),
		errors.Is(err, core.ErrPropagationFailed):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
