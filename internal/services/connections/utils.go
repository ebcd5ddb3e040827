package connections

import (
	"errors"
	"net/http"
)

var (
	ErrConnectionNotFound   = errors.New("connection not found")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrInvalidParticipantId = errors.New("participant ids must not contain '.' or '$'")
	ErrNotParticipant       = errors.New("only participants of the connection can perform this action")
	ErrInvalidScore         = errors.New("score must be an integer between 1 and 10, or -1 to skip")
	ErrInvalidDuration      = errors.New("duration must be a positive number of minutes")
	ErrNameRequired         = errors.New("connection name is required")
	ErrMovieNotInConnection = errors.New("movie is not a candidate of this connection")
	ErrVotingNotStarted     = errors.New("matching has not run for this connection yet")
	ErrInvalidTransition    = errors.New("connection is not in a state that allows this action")
	ErrNoCandidates         = errors.New("no candidate movies could be found, check connectivity and try again")
	ErrVotingClosed         = errors.New("voting deadline has passed")
	ErrVotingStillOpen      = errors.New("voting deadline has not passed yet")
)

var ErrorMap = map[error]int{
	ErrConnectionNotFound:   http.StatusNotFound,
	ErrParticipantNotFound:  http.StatusNotFound,
	ErrInvalidParticipantId: http.StatusBadRequest,
	ErrNotParticipant:       http.StatusForbidden,
	ErrInvalidScore:         http.StatusBadRequest,
	ErrInvalidDuration:      http.StatusBadRequest,
	ErrNameRequired:         http.StatusBadRequest,
	ErrMovieNotInConnection: http.StatusBadRequest,
	ErrVotingNotStarted:     http.StatusConflict,
	ErrInvalidTransition:    http.StatusConflict,
	ErrNoCandidates:         http.StatusUnprocessableEntity,
	ErrVotingClosed:         http.StatusLocked,
	ErrVotingStillOpen:      http.StatusConflict,
}
