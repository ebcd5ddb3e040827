package watchlist

import "github.com/lealre/cinematch-backend/internal/mongodb"

type MovieStub = mongodb.MovieStubDb

type AddMovieRequest struct {
	Id          int    `json:"id" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required"`
	PosterPath  string `json:"poster_path"`
	Overview    string `json:"overview"`
	ReleaseDate string `json:"release_date"`
}

type AddMovieResponse struct {
	Movies []MovieStub `json:"movies"`
	Added  bool        `json:"added"`
}
