package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lealre/cinematch-backend/internal/auth"
	"github.com/lealre/cinematch-backend/internal/mongodb"
)

var (
	ErrForbidden     = errors.New("you do not have permission to perform this action")
	ErrInvalidId     = errors.New("id in the path must be a positive integer")
	ErrInvalidBody   = errors.New("invalid JSON in request body")
	ErrMissingUserId = errors.New("authenticated user not found in request")
)

func respondWithJSON(w http.ResponseWriter, code int, payload any) error {
	response, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, err = w.Write(response)
	return err
}

func respondWithError(w http.ResponseWriter, code int, msg string) error {
	messageBody := ErrorResponse{
		StatusCode:   code,
		ErrorMessage: msg,
	}
	return respondWithJSON(w, code, messageBody)
}

func respondWithForbidden(w http.ResponseWriter) error {
	return respondWithError(w, http.StatusForbidden, formatErrorMessage(ErrForbidden))
}

func RespondWithUnauthorized(w http.ResponseWriter, err error) error {
	return respondWithError(w, http.StatusUnauthorized, formatErrorMessage(err))
}

func formatErrorMessage(err error) string {
	errorMsg := err.Error()
	if len(errorMsg) > 0 {
		return strings.ToUpper(errorMsg[:1]) + errorMsg[1:]
	}
	return ""
}

// getErrorStatusCode safely checks if an error is in the ErrorMap by iterating through it
// and using errors.Is() to match errors. This prevents panics when non-hashable errors
// (like MongoDB errors) are passed as map keys.
func getErrorStatusCode(errMap map[error]int, err error) (int, bool) {
	for predefinedErr, statusCode := range errMap {
		if errors.Is(err, predefinedErr) {
			return statusCode, true
		}
	}
	return 0, false
}

// respondWithServiceError answers with the status the first matching map
// assigns to err, or logs it and answers 500.
func respondWithServiceError(w http.ResponseWriter, logger *logrus.Entry, err error, msg string, errMaps ...map[error]int) {
	for _, m := range errMaps {
		if statusCode, ok := getErrorStatusCode(m, err); ok {
			respondWithError(w, statusCode, formatErrorMessage(err))
			return
		}
	}
	logger.WithError(err).Error(msg)
	respondWithError(w, http.StatusInternalServerError, msg)
}

// decodeAndValidate reads the JSON body into dst and runs the struct rules.
// It answers the request itself and returns false on failure.
func (api *API) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, formatErrorMessage(ErrInvalidBody))
		return false
	}
	if err := api.validate.Struct(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// currentUser returns the authenticated user, answering 401 when absent.
func currentUser(w http.ResponseWriter, r *http.Request) (*mongodb.UserDb, bool) {
	user := auth.GetUserFromContext(r.Context())
	if user == nil {
		RespondWithUnauthorized(w, ErrMissingUserId)
		return nil, false
	}
	return user, true
}

func pathInt(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(r.PathValue(name))
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// queryInt returns def when the parameter is missing or not a positive integer.
func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func parseUrlQueryToBool(val string) *bool {
	var parsedVal *bool
	switch val {
	case "true":
		val := true
		parsedVal = &val
	case "false":
		val := false
		parsedVal = &val
	}

	return parsedVal
}

// parseIdList reads a comma separated list of positive integers.
func parseIdList(raw string) ([]int, bool) {
	if strings.TrimSpace(raw) == "" {
		return []int{}, true
	}
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || id <= 0 {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
