package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"

	"outreach/entity"
	"outreach/pkg/errutil"
)

type ErrorResponse struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Details []entity.FieldError `json:"details,omitempty"`
}

// ReturnServerResponse writes res as-is on success, or the error shape
// derived from resErr otherwise.
func ReturnServerResponse(w http.ResponseWriter, res interface{}, resErr error) {
	if resErr != nil {
		code, name, details := errutil.ParseHttpError(resErr)
		WriteJson(w, code, &ErrorResponse{
			Success: false,
			Error:   name,
			Details: details,
		})
		return
	}

	if res == nil {
		res = struct {
			Success bool `json:"success"`
		}{Success: true}
	}

	WriteJson(w, http.StatusOK, res)
}

func WriteJson(w http.ResponseWriter, code int, body interface{}) {
	js, err := json.Marshal(body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if _, err := w.Write(js); err != nil {
		fmt.Printf("fail to return server response, err: %v\n", err)
	}
}
