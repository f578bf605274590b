package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/edvart/cupkeeper/internal/coordinator"
	"github.com/edvart/cupkeeper/internal/draft"
	"github.com/edvart/cupkeeper/internal/roster"
	"github.com/edvart/cupkeeper/internal/store"
)

const handlerTimeout = 10 * time.Second

var errTimeout = errors.New("request timed out")

// waitFor waits for a coordinator reply with a timeout.
func waitFor[T any](resp <-chan T) (T, error) {
	select {
	case v := <-resp:
		return v, nil
	case <-time.After(handlerTimeout):
		var zero T
		return zero, errTimeout
	}
}

// waitForResponse waits for an error reply with a timeout.
func waitForResponse(resp <-chan error) error {
	err, waitErr := waitFor(resp)
	if waitErr != nil {
		return waitErr
	}
	return err
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{coordinator.ErrMatchNotFound, http.StatusNotFound},
	{roster.ErrUnknownCup, http.StatusNotFound},
	{roster.ErrUnknownTeam, http.StatusNotFound},
	{store.ErrNotFound, http.StatusNotFound},
	{coordinator.ErrChannelBusy, http.StatusConflict},
	{coordinator.ErrAlreadyRunning, http.StatusConflict},
	{errTimeout, http.StatusGatewayTimeout},
	{draft.ErrWrongTurnOwner, http.StatusForbidden},
	{coordinator.ErrUnknownAction, http.StatusBadRequest},
	{roster.ErrCupRequired, http.StatusBadRequest},
	{roster.ErrSameTeam, http.StatusBadRequest},
	{roster.ErrInvalidEntry, http.StatusBadRequest},
	{draft.ErrUnknownFormat, http.StatusBadRequest},
	{draft.ErrPoolTooSmall, http.StatusBadRequest},
	{draft.ErrDuplicateMap, http.StatusBadRequest},
}

// statusFor maps a domain error to an HTTP status. Rejected draft actions
// are client errors, anything unknown is a server error.
func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	var ae *draft.ActionError
	if errors.As(err, &ae) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).Error("Request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", roster.ErrInvalidEntry, err)
	}
	return nil
}
