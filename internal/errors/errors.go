package errors

import "net/http"

type HTTPError interface {
    error
    StatusCode() int
}

type apiError struct {
    msg  string
    code int
}

func (e *apiError) Error() string   { return e.msg }
func (e *apiError) StatusCode() int { return e.code }

var (
    ErrInvalidRange   = &apiError{msg: "invalid date range", code: http.StatusBadRequest}
    ErrNoValidators   = &apiError{msg: "no validators resolved", code: http.StatusBadRequest}
    ErrNotFound       = &apiError{msg: "not found", code: http.StatusNotFound}
    ErrRequestTimeout = &apiError{msg: "request timed out", code: http.StatusGatewayTimeout}
    ErrInternal       = &apiError{msg: "internal server error", code: http.StatusInternalServerError}
)
