package awards

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lealre/cinematch-backend/internal/logx"
	"github.com/lealre/cinematch-backend/internal/mongodb"
)

func validDate(date string) bool {
	_, err := time.Parse(DateLayout, date)
	return err == nil
}

func validLockOverride(lock string) bool {
	return lock == "" || lock == LockAuto || lock == LockOpen || lock == LockClosed
}

func (s *Service) CreateEvent(ctx context.Context, req NewEventRequest) (AwardsEvent, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return AwardsEvent{}, ErrNameRequired
	}
	if !validDate(req.Date) {
		return AwardsEvent{}, ErrInvalidDate
	}
	if !validLockOverride(req.LockOverride) {
		return AwardsEvent{}, ErrInvalidLockOverride
	}
	lock := req.LockOverride
	if lock == "" {
		lock = LockAuto
	}

	event, err := s.db.CreateAwardsEvent(ctx, mongodb.AwardsEventDb{
		Id:           req.Id,
		Name:         name,
		Date:         req.Date,
		IsActive:     req.IsActive,
		LockOverride: lock,
	})
	if err != nil {
		if errors.Is(err, mongodb.ErrDuplicateKey) {
			return AwardsEvent{}, ErrDuplicateEvent
		}
		return AwardsEvent{}, err
	}

	logx.FromContext(ctx).WithField("event_id", event.Id).Info("awards event created")
	return MapDbEventToApiEvent(event, s.closed(event)), nil
}

func (s *Service) UpdateEvent(ctx context.Context, id string, req UpdateEventRequest) (AwardsEvent, error) {
	update := mongodb.AwardsEventUpdateDb{
		IsActive:     req.IsActive,
		LockOverride: req.LockOverride,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return AwardsEvent{}, ErrNameRequired
		}
		update.Name = &name
	}
	if req.Date != nil {
		if !validDate(*req.Date) {
			return AwardsEvent{}, ErrInvalidDate
		}
		update.Date = req.Date
	}
	if req.LockOverride != nil && !validLockOverride(*req.LockOverride) {
		return AwardsEvent{}, ErrInvalidLockOverride
	}

	if err := s.db.UpdateAwardsEvent(ctx, id, update); err != nil {
		if errors.Is(err, mongodb.ErrRecordNotFound) {
			return AwardsEvent{}, ErrEventNotFound
		}
		return AwardsEvent{}, err
	}
	return s.GetEvent(ctx, id)
}

// DeleteEvent removes the event together with every ballot cast for it.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	deleted, err := s.db.DeleteAwardsEvent(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrEventNotFound
	}
	logx.FromContext(ctx).WithField("event_id", id).Info("awards event deleted")
	return nil
}

// editCategories applies fn to a copy of the event's categories and writes the
// result only if nobody else changed them since version.
func (s *Service) editCategories(ctx context.Context, eventId string, version int, fn func([]mongodb.CategoryDb) ([]mongodb.CategoryDb, error)) (AwardsEvent, error) {
	event, err := s.getEvent(ctx, eventId)
	if err != nil {
		return AwardsEvent{}, err
	}
	if event.Version != version {
		return AwardsEvent{}, ErrConcurrentModification
	}

	categories := make([]mongodb.CategoryDb, len(event.Categories))
	for i, c := range event.Categories {
		c.Nominees = slices.Clone(c.Nominees)
		categories[i] = c
	}
	categories, err = fn(categories)
	if err != nil {
		return AwardsEvent{}, err
	}

	err = s.db.ReplaceAwardsEventCategories(ctx, eventId, version, categories)
	switch {
	case errors.Is(err, mongodb.ErrVersionConflict):
		return AwardsEvent{}, ErrConcurrentModification
	case errors.Is(err, mongodb.ErrRecordNotFound):
		return AwardsEvent{}, ErrEventNotFound
	case err != nil:
		return AwardsEvent{}, err
	}

	logx.FromContext(ctx).WithFields(logrus.Fields{
		"event_id": eventId,
		"version":  version + 1,
	}).Debug("awards categories updated")

	event.Categories = categories
	event.Version = version + 1
	return MapDbEventToApiEvent(event, s.closed(event)), nil
}

func (s *Service) AddCategory(ctx context.Context, eventId string, req NewCategoryRequest) (AwardsEvent, error) {
	id := strings.TrimSpace(req.Id)
	name := strings.TrimSpace(req.Name)
	if id == "" || name == "" {
		return AwardsEvent{}, ErrNameRequired
	}
	// Category ids become keys of ballot picks.
	if !mongodb.ValidFieldKey(id) {
		return AwardsEvent{}, ErrInvalidCategoryId
	}
	return s.editCategories(ctx, eventId, req.Version, func(cats []mongodb.CategoryDb) ([]mongodb.CategoryDb, error) {
		if slices.ContainsFunc(cats, func(c mongodb.CategoryDb) bool { return c.Id == id }) {
			return nil, ErrDuplicateCategory
		}
		return append(cats, mongodb.CategoryDb{
			Id:              id,
			Name:            name,
			AwardsRatingKey: strings.TrimSpace(req.AwardsRatingKey),
			Nominees:        []mongodb.NomineeDb{},
		}), nil
	})
}

// RemoveCategory drops the category. Picks already made for it stay on the
// ballots but no longer score.
func (s *Service) RemoveCategory(ctx context.Context, eventId, categoryId string, version int) (AwardsEvent, error) {
	return s.editCategories(ctx, eventId, version, func(cats []mongodb.CategoryDb) ([]mongodb.CategoryDb, error) {
		idx := slices.IndexFunc(cats, func(c mongodb.CategoryDb) bool { return c.Id == categoryId })
		if idx < 0 {
			return nil, ErrCategoryNotFound
		}
		return slices.Delete(cats, idx, idx+1), nil
	})
}

func (s *Service) ReorderCategories(ctx context.Context, eventId string, req ReorderCategoriesRequest) (AwardsEvent, error) {
	return s.editCategories(ctx, eventId, req.Version, func(cats []mongodb.CategoryDb) ([]mongodb.CategoryDb, error) {
		if len(req.CategoryIds) != len(cats) {
			return nil, ErrInvalidCategoryOrder
		}
		byId := make(map[string]mongodb.CategoryDb, len(cats))
		for _, c := range cats {
			byId[c.Id] = c
		}
		ordered := make([]mongodb.CategoryDb, 0, len(cats))
		for _, id := range req.CategoryIds {
			c, ok := byId[id]
			if !ok {
				return nil, ErrInvalidCategoryOrder
			}
			delete(byId, id)
			ordered = append(ordered, c)
		}
		return ordered, nil
	})
}

// withCategory runs fn on the named category inside a versioned edit.
func (s *Service) withCategory(ctx context.Context, eventId, categoryId string, version int, fn func(*mongodb.CategoryDb) error) (AwardsEvent, error) {
	return s.editCategories(ctx, eventId, version, func(cats []mongodb.CategoryDb) ([]mongodb.CategoryDb, error) {
		idx := slices.IndexFunc(cats, func(c mongodb.CategoryDb) bool { return c.Id == categoryId })
		if idx < 0 {
			return nil, ErrCategoryNotFound
		}
		if err := fn(&cats[idx]); err != nil {
			return nil, err
		}
		return cats, nil
	})
}

func (s *Service) AddNominee(ctx context.Context, eventId, categoryId string, req NomineeRequest) (AwardsEvent, error) {
	return s.withCategory(ctx, eventId, categoryId, req.Version, func(c *mongodb.CategoryDb) error {
		if _, ok := findNominee(*c, req.TmdbId); ok {
			return ErrDuplicateNominee
		}
		c.Nominees = append(c.Nominees, mongodb.NomineeDb{
			TmdbId:     req.TmdbId,
			Title:      req.Title,
			Name:       req.Name,
			PosterPath: req.PosterPath,
		})
		return nil
	})
}

func (s *Service) EditNominee(ctx context.Context, eventId, categoryId string, tmdbId int, req EditNomineeRequest) (AwardsEvent, error) {
	return s.withCategory(ctx, eventId, categoryId, req.Version, func(c *mongodb.CategoryDb) error {
		idx, ok := findNominee(*c, tmdbId)
		if !ok {
			return ErrNomineeNotFound
		}
		n := &c.Nominees[idx]
		if req.Title != nil {
			n.Title = *req.Title
		}
		if req.Name != nil {
			n.Name = *req.Name
		}
		if req.PosterPath != nil {
			n.PosterPath = *req.PosterPath
		}
		return nil
	})
}

// RemoveNominee also clears the category winner when it was this nominee.
func (s *Service) RemoveNominee(ctx context.Context, eventId, categoryId string, tmdbId, version int) (AwardsEvent, error) {
	return s.withCategory(ctx, eventId, categoryId, version, func(c *mongodb.CategoryDb) error {
		idx, ok := findNominee(*c, tmdbId)
		if !ok {
			return ErrNomineeNotFound
		}
		c.Nominees = slices.Delete(c.Nominees, idx, idx+1)
		if c.WinnerTmdbId != nil && *c.WinnerTmdbId == tmdbId {
			c.WinnerTmdbId = nil
		}
		return nil
	})
}

func (s *Service) SetWinner(ctx context.Context, eventId, categoryId string, req SetWinnerRequest) (AwardsEvent, error) {
	return s.withCategory(ctx, eventId, categoryId, req.Version, func(c *mongodb.CategoryDb) error {
		if req.TmdbId == nil {
			c.WinnerTmdbId = nil
			return nil
		}
		if _, ok := findNominee(*c, *req.TmdbId); !ok {
			return ErrNomineeNotFound
		}
		winner := *req.TmdbId
		c.WinnerTmdbId = &winner
		return nil
	})
}
