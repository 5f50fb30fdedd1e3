package response

import "obrafin/pkg/apperror"

// Response represents a standard API response format
type Response struct {
	Status     string            `json:"status"`      // "success" or "error"
	StatusCode int               `json:"status_code"` // HTTP status code
	Data       interface{}       `json:"data,omitempty"`
	Error      string            `json:"error,omitempty"`
	Code       string            `json:"code,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// FromError builds the error envelope and status code for a service error.
// Untyped errors never leak their text.
func FromError(err error) (int, Response) {
	kind := apperror.KindOf(err)
	status := apperror.HTTPStatus(kind)
	res := Error(status, apperror.MessageOf(err))
	res.Code = apperror.Code(kind)
	res.Details = apperror.FieldsOf(err)
	return status, res
}
