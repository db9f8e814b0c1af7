package errutil

import (
	"errors"
	"net/http"

	"outreach/entity"
)

const (
	NameValidationError   = "Validation Error"
	NameBadRequest        = "Bad Request"
	NamePayloadTooLarge   = "Payload Too Large"
	NameTooManyRequests   = "Too Many Requests"
	NameGatewayTimeout    = "Gateway Timeout"
	NameInternalServerErr = "Internal Server Error"
)

// HttpError carries the status code and public error name returned to the
// caller. The wrapped error stays internal; ParseHttpError never leaks it.
type HttpError struct {
	code    int
	name    string
	err     error
	details []entity.FieldError
}

func (e *HttpError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return e.name
}

func (e *HttpError) Unwrap() error {
	return e.err
}

func (e *HttpError) Code() int {
	return e.code
}

func (e *HttpError) Name() string {
	return e.name
}

func (e *HttpError) Details() []entity.FieldError {
	return e.details
}

func ValidationError(details ...entity.FieldError) *HttpError {
	return &HttpError{
		code:    http.StatusBadRequest,
		name:    NameValidationError,
		details: details,
	}
}

func BadRequestError(err error) *HttpError {
	return &HttpError{
		code: http.StatusBadRequest,
		name: NameBadRequest,
		err:  err,
	}
}

// JSONParseError is the single structural error for an unparsable body.
func JSONParseError() *HttpError {
	return &HttpError{
		code: http.StatusBadRequest,
		name: NameValidationError,
		details: []entity.FieldError{
			{Field: "body", Message: "invalid JSON payload", Code: "INVALID_JSON"},
		},
	}
}

func PayloadTooLargeError() *HttpError {
	return &HttpError{
		code: http.StatusRequestEntityTooLarge,
		name: NamePayloadTooLarge,
	}
}

func RateLimitError() *HttpError {
	return &HttpError{
		code: http.StatusTooManyRequests,
		name: NameTooManyRequests,
	}
}

func TimeoutError(err error) *HttpError {
	return &HttpError{
		code: http.StatusGatewayTimeout,
		name: NameGatewayTimeout,
		err:  err,
	}
}

func InternalError(err error) *HttpError {
	return &HttpError{
		code: http.StatusInternalServerError,
		name: NameInternalServerErr,
		err:  err,
	}
}

// ParseHttpError maps any error to the (code, name, details) surfaced to the
// caller. Unrecognized errors collapse to a generic 500 so internal detail is
// never exposed.
func ParseHttpError(err error) (int, string, []entity.FieldError) {
	if err == nil {
		return http.StatusOK, "", nil
	}

	httpErr := new(HttpError)
	if errors.As(err, &httpErr) {
		return httpErr.Code(), httpErr.Name(), httpErr.Details()
	}

	return http.StatusInternalServerError, NameInternalServerErr, nil
}
