package nbi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/signalsfoundry/polageo/catalog"
	"github.com/signalsfoundry/polageo/core"
	"github.com/signalsfoundry/polageo/internal/nbi/types"
	"github.com/signalsfoundry/polageo/model"
)

func TestToHTTPStatus(t *testing.T) {
	t.Parallel()

	_, bodyErr := model.BodyRadiusKm("vulcan")
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "nil", err: nil, code: http.StatusOK},
		{name: "invalid request", err: fmt.Errorf("%w: bad json", ErrInvalidRequest), code: http.StatusBadRequest},
		{name: "invalid elements", err: types.ErrInvalidElements, code: http.StatusBadRequest},
		{name: "unknown body", err: bodyErr, code: http.StatusBadRequest},
		{name: "registry miss", err: ErrNotFound, code: http.StatusNotFound},
		{name: "catalog miss", err: fmt.Errorf("lookup: %w", &catalog.NotFoundError{Group: "stations", Name: "X"}), code: http.StatusNotFound},
		{name: "transport", err: &catalog.TransportError{URL: "u", StatusCode: 503}, code: http.StatusBadGateway},
		{name: "deadline", err: &catalog.TransportError{URL: "u", Err: context.DeadlineExceeded}, code: http.StatusGatewayTimeout},
		{name: "parse", err: fmt.Errorf("decode: %w", &catalog.ParseError{Line: 3, Err: catalog.ErrChecksum}), code: http.StatusBadGateway},
		{name: "non-finite", err: fmt.Errorf("%w: X", core.ErrNonFinitePosition), code: http.StatusUnprocessableEntity},
		{name: "propagation", err: core.ErrPropagationFailed, code: http.StatusBadGateway},
		{name: "fallback", err: errors.New("boom"), code: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ToHTTPStatus(tc.err); got != tc.code {
				t.Fatalf("ToHTTPStatus(%v) = %d, want %d", tc.err, got, tc.code)
			}
		})
	}
}
