package errutil

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBaseErrorWrapsCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := Conflict("license already exists", cause)

	require.ErrorIs(t, err, cause)
	require.Equal(t, StatusConflict, Code(err))
	require.Equal(t, "[conflict] license already exists: duplicate key", err.Error())
}

func TestBaseErrorWithoutCause(t *testing.T) {
	err := NotFound("license not found", nil)

	var base BaseError
	require.ErrorAs(t, err, &base)
	require.Nil(t, base.Unwrap())
	require.Equal(t, "[not_found] license not found", err.Error())
}

func TestValidationDetails(t *testing.T) {
	err := ValidationFailed("invalid configuration", nil, WithDetails(Detail{Field: "license_target_field", Message: "is required"}))

	var base BaseError
	require.ErrorAs(t, err, &base)
	require.Len(t, base.Details, 1)
	require.Equal(t, http.StatusBadRequest, base.Code.HTTPStatus())
}

func TestCodeForeignError(t *testing.T) {
	require.Equal(t, StatusUnknown, Code(nil))
	require.Equal(t, StatusInternal, Code(errors.New("boom")))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[CoreStatus]int{
		StatusNotFound:            http.StatusNotFound,
		StatusUnprocessableEntity: http.StatusUnprocessableEntity,
		StatusInternal:            http.StatusInternalServerError,
		StatusServiceUnavailable:  http.StatusServiceUnavailable,
		CoreStatus("nope"):        http.StatusInternalServerError,
	}
	for status, want := range cases {
		require.Equal(t, want, status.HTTPStatus(), string(status))
	}
}
