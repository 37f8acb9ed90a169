package tournament

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no tournament matches the lookup.
var ErrNotFound = errors.New("tournament not found")

// Tournament statuses, matching the tournaments table constraint.
const (
	StatusPreparing = "Preparing"
	StatusOpen      = "Open"
	StatusActive    = "Active"
	StatusClosed    = "Closed"
)

// Tournament is a listing row: the tournaments table joined with its league
// name and aggregated prize pool. Money columns travel as decimal strings.
type Tournament struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Information       *string   `json:"information"`
	Cost              string    `json:"cost"`
	Teams             int       `json:"teams"`
	LeagueID          *int64    `json:"league_id"`
	LeagueName        *string   `json:"league_name"`
	Season            int       `json:"season"`
	StartsAt          time.Time `json:"starts_at"`
	EndsAt            time.Time `json:"ends_at"`
	RegistrationOpens time.Time `json:"registration_opens"`
	RegistrationEnds  time.Time `json:"registration_ends"`
	Status            string    `json:"status"`
	Slug              string    `json:"slug"`
	Champion          *string   `json:"champion"`
	PrizePool         string    `json:"prize_pool"`
}

// ListFilters narrows the tournament listing.
type ListFilters struct {
	Status   string
	LeagueID int64
	Limit    int
	Offset   int
}

// PlatformStats is the display-formatted counter set for the landing page.
type PlatformStats struct {
	Users       string `json:"users"`
	Tournaments string `json:"tournaments"`
	Active      string `json:"active"`
	Prizes      string `json:"prizes"`
}
