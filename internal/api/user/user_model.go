package user

import "time"

// UserProfile joins the users row with its personal-details row for the
// dashboard profile view.
type UserProfile struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Level        int       `json:"level"`
	XP           int       `json:"xp"`
	Status       string    `json:"status"`
	SummonerName *string   `json:"summoner_name"`
	Tag          *string   `json:"tag"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Country      *string   `json:"country"`
	CreatedAt    time.Time `json:"created_at"`
}
