// Common helper functions for HTTP handlers.

package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/turtacn/chargeview/pkg/errors"
)

// maxBodyBytes bounds request bodies; every body here is a small JSON object.
const maxBodyBytes = 1 << 16

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeAppError maps err to its status code.  Errors without a code are
// reported as internal without their message.
func writeAppError(w http.ResponseWriter, err error) {
	var ae *errors.AppError
	if !errors.As(err, &ae) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Code:    string(errors.ErrCodeInternal),
			Message: "internal server error",
		})
		return
	}
	writeJSON(w, errors.HTTPStatusForCode(ae.Code), ErrorResponse{
		Code:    string(ae.Code),
		Message: ae.Message,
		Detail:  ae.Detail,
	})
}

// decodeJSON reads a JSON body into dst.  An empty body leaves dst as is.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && err != io.EOF {
		return errors.InvalidParam("malformed request body").WithCause(err)
	}
	return nil
}

func errorMissing(field string) error {
	return errors.InvalidParam("missing required field").WithDetail(field)
}

//Personal.AI order the ending
