package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ukane-philemon/reportcard/internal/db"
	customerror "github.com/ukane-philemon/reportcard/internal/errors"
)

type errorResponse struct {
	Error string `json:"error"`
}

// handleError maps err to a response status. Server errors are logged and
// replaced by a generic error.
func handleError(err error) (int, error) {
	var unauthorized *customerror.ErrorUnauthorized
	switch {
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized, err
	case errors.Is(err, db.ErrorNotFound):
		return http.StatusNotFound, err
	case errors.Is(err, db.ErrorDuplicateRollNo):
		return http.StatusConflict, err
	case errors.Is(err, db.ErrorInvalidMarks):
		return http.StatusUnprocessableEntity, err
	case errors.Is(err, db.ErrorInvalidRequest):
		return http.StatusBadRequest, err
	}

	log.Printf("SERVER ERROR: %v", err.Error())
	return http.StatusInternalServerError, &customerror.ErrorUnknown{}
}

func writeError(res http.ResponseWriter, err error) {
	status, err := handleError(err)
	writeJSON(res, status, errorResponse{Error: err.Error()})
}

func writeJSON(res http.ResponseWriter, status int, v any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(v); err != nil {
		log.Printf("json.Encode error: %v", err)
	}
}
