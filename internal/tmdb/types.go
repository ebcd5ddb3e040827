// Types mirroring the TMDB v3 responses the app consumes. Only the fields the
// backend reads or forwards are declared.
package tmdb

type MovieStub struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	PosterPath  string `json:"poster_path"`
	Overview    string `json:"overview"`
	ReleaseDate string `json:"release_date"`
}

type PagedMovies struct {
	Page         int         `json:"page"`
	Results      []MovieStub `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type MovieDetail struct {
	MovieStub
	BackdropPath string  `json:"backdrop_path"`
	Runtime      int     `json:"runtime"`
	Genres       []Genre `json:"genres"`
	Tagline      string  `json:"tagline"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	ImdbID       string  `json:"imdb_id"`
}

type Credit struct {
	ID           int    `json:"id"`
	MediaType    string `json:"media_type"`
	Title        string `json:"title,omitempty"`
	Name         string `json:"name,omitempty"`
	Character    string `json:"character,omitempty"`
	Job          string `json:"job,omitempty"`
	PosterPath   string `json:"poster_path"`
	ReleaseDate  string `json:"release_date,omitempty"`
	FirstAirDate string `json:"first_air_date,omitempty"`
}

type CombinedCredits struct {
	Cast []Credit `json:"cast"`
	Crew []Credit `json:"crew"`
}

type PersonDetail struct {
	ID                 int             `json:"id"`
	Name               string          `json:"name"`
	Biography          string          `json:"biography"`
	Birthday           string          `json:"birthday"`
	PlaceOfBirth       string          `json:"place_of_birth"`
	ProfilePath        string          `json:"profile_path"`
	KnownForDepartment string          `json:"known_for_department"`
	CombinedCredits    CombinedCredits `json:"combined_credits"`
}
