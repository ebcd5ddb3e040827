package awards

import (
	"errors"
	"net/http"
)

var (
	ErrEventNotFound          = errors.New("awards event not found")
	ErrCategoryNotFound       = errors.New("category not found")
	ErrNomineeNotFound        = errors.New("nominee not found in this category")
	ErrVotingLocked           = errors.New("voting is closed for this event")
	ErrInvalidDate            = errors.New("event date must be formatted as YYYY-MM-DD")
	ErrInvalidLockOverride    = errors.New("lock override must be one of auto, open or closed")
	ErrDuplicateCategory      = errors.New("a category with this id already exists")
	ErrDuplicateNominee       = errors.New("this movie is already a nominee of the category")
	ErrInvalidCategoryOrder   = errors.New("category order must list every category exactly once")
	ErrConcurrentModification = errors.New("the event was modified by someone else, reload and try again")
	ErrNameRequired           = errors.New("name is required")
	ErrInvalidCategoryId      = errors.New("category id must not contain '.' or '$'")
	ErrDuplicateEvent         = errors.New("an awards event with this id already exists")
)

var ErrorMap = map[error]int{
	ErrEventNotFound:          http.StatusNotFound,
	ErrCategoryNotFound:       http.StatusNotFound,
	ErrNomineeNotFound:        http.StatusNotFound,
	ErrVotingLocked:           http.StatusLocked,
	ErrInvalidDate:            http.StatusBadRequest,
	ErrInvalidLockOverride:    http.StatusBadRequest,
	ErrDuplicateCategory:      http.StatusBadRequest,
	ErrDuplicateNominee:       http.StatusBadRequest,
	ErrInvalidCategoryOrder:   http.StatusBadRequest,
	ErrConcurrentModification: http.StatusConflict,
	ErrNameRequired:           http.StatusBadRequest,
	ErrInvalidCategoryId:      http.StatusBadRequest,
	ErrDuplicateEvent:         http.StatusConflict,
}
