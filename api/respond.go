package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/garnizeh/interviewdesk/internal/apperr"
	"github.com/garnizeh/interviewdesk/internal/validation"
)

// maxBody caps request payloads.
const maxBody = 1 << 20

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

// writeError maps err to its status code. Internal failures are logged and
// their details withheld.
func writeError(w http.ResponseWriter, err error) {
	ae := apperr.As(err)
	status := apperr.Status(ae.Kind)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", slog.String("code", ae.Code), slog.Any("err", err))
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: ae.Code, Message: ae.Message}})
}

func badRequest(code, message string) error {
	return apperr.New(apperr.KindValidation, code, message)
}

// readBody returns the request body, checked against schema when one is named.
func readBody(r *http.Request, schema string) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil {
		return nil, badRequest("INVALID_REQUEST", "could not read the request body")
	}
	if len(body) > maxBody {
		return nil, badRequest("BODY_TOO_LARGE", "request body is too large")
	}
	if schema != "" {
		if err := validation.Default().Validate(r.Context(), schema, body); err != nil {
			return nil, err
		}
	}
	return body, nil
}

// decode reads the body into dst after the optional schema check.
func decode(r *http.Request, schema string, dst any) error {
	body, err := readBody(r, schema)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		var syn *json.SyntaxError
		if errors.As(err, &syn) || len(body) == 0 {
			return badRequest("INVALID_REQUEST", "request body is not valid JSON")
		}
		return badRequest("INVALID_REQUEST", err.Error())
	}
	return nil
}
