package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lealre/cinematch-backend/internal/services/awards"
)

type awardsFixture struct {
	awards.NewEventRequest
	Categories []categoryFixture `json:"categories"`
}

type categoryFixture struct {
	Id              string           `json:"id"`
	Name            string           `json:"name"`
	AwardsRatingKey string           `json:"awardsRatingKey"`
	Nominees        []nomineeFixture `json:"nominees"`
	WinnerTmdbId    *int             `json:"winnerTmdbId"`
}

type nomineeFixture struct {
	TmdbId     int    `json:"tmdbId"`
	Title      string `json:"title"`
	Name       string `json:"name"`
	PosterPath string `json:"poster_path"`
}

func loadAwardsFixture(path string) (awardsFixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return awardsFixture{}, err
	}
	var fixture awardsFixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return awardsFixture{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return fixture, nil
}

// seedAwardsEvent creates the event and replays every category edit through
// the awards service so fixtures get the same checks as admin requests.
func seedAwardsEvent(ctx context.Context, svc *awards.Service, fixture awardsFixture) (awards.AwardsEvent, error) {
	event, err := svc.CreateEvent(ctx, fixture.NewEventRequest)
	if err != nil {
		return awards.AwardsEvent{}, fmt.Errorf("create event %q: %w", fixture.Id, err)
	}

	for _, c := range fixture.Categories {
		event, err = svc.AddCategory(ctx, event.Id, awards.NewCategoryRequest{
			Id:              c.Id,
			Name:            c.Name,
			AwardsRatingKey: c.AwardsRatingKey,
			Version:         event.Version,
		})
		if err != nil {
			return awards.AwardsEvent{}, fmt.Errorf("add category %s: %w", c.Id, err)
		}

		for _, n := range c.Nominees {
			event, err = svc.AddNominee(ctx, event.Id, c.Id, awards.NomineeRequest{
				TmdbId:     n.TmdbId,
				Title:      n.Title,
				Name:       n.Name,
				PosterPath: n.PosterPath,
				Version:    event.Version,
			})
			if err != nil {
				return awards.AwardsEvent{}, fmt.Errorf("add nominee %d to %s: %w", n.TmdbId, c.Id, err)
			}
		}

		if c.WinnerTmdbId != nil {
			event, err = svc.SetWinner(ctx, event.Id, c.Id, awards.SetWinnerRequest{TmdbId: c.WinnerTmdbId, Version: event.Version})
			if err != nil {
				return awards.AwardsEvent{}, fmt.Errorf("set winner of %s: %w", c.Id, err)
			}
		}
	}
	return event, nil
}
