package models

import (
	"cinehub/proj/internal/domain/fields"
	"time"
)

// Title is a catalog entry. Movies and series share this shape.
type Title struct {
	ID                 string          `json:"id" db:"id"`                                   // Opaque identifier assigned by the store
	Name               string          `json:"name" db:"name"`                               // Display name
	Synopsis           string          `json:"synopsis" db:"synopsis"`                       // Short description
	ReleaseYear        int             `json:"release_year" db:"release_year"`               // Release year
	Genre              string          `json:"genre" db:"genre"`                             // Single free-text genre label
	Country            string          `json:"country,omitempty" db:"country"`               // Production country
	Director           string          `json:"director,omitempty" db:"director"`             // Director name
	CastMembers        []string        `json:"cast_members,omitempty" db:"cast_members"`     // Ordered cast names
	Awards             string          `json:"awards,omitempty" db:"awards"`                 // Awards text
	PosterURL          string          `json:"poster_url" db:"poster_url"`                   // Poster image reference
	TrailerURL         string          `json:"trailer_url" db:"trailer_url"`                 // Stored trailer link
	Price              float64         `json:"price" db:"price"`                             // Rental price, non-negative
	IsPremium          bool            `json:"is_premium" db:"is_premium"`                   // Premium titles are rentable
	Rating             *float64        `json:"rating,omitempty" db:"rating"`                 // Usually 0-10
	Runtime            *fields.Runtime `json:"runtime_minutes,omitempty" db:"runtime_minutes"` // Runtime in minutes
	StreamingPlatforms []string        `json:"streaming_platforms" db:"streaming_platforms"` // Display order
	CreatedAt          time.Time       `json:"-" db:"created_at"`
}

// IsRentable reports whether the purchase affordance applies to the title at all.
func (t *Title) IsRentable() bool {
	return t.IsPremium && t.Price > 0
}

type WatchlistEntry struct {
	UserID  int64     `json:"user_id" db:"user_id"`
	TitleID string    `json:"title_id" db:"title_id"`
	AddedAt time.Time `json:"added_at" db:"added_at"`
	Title   *Title    `json:"title,omitempty" db:"title"` // nil when the joined title no longer resolves
}

type PurchaseRecord struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	TitleID     string    `json:"title_id" db:"title_id"`
	AmountPaid  *float64  `json:"amount_paid" db:"amount_paid"` // captured at purchase time
	PurchasedAt time.Time `json:"purchased_at" db:"purchased_at"`
	Title       *Title    `json:"title,omitempty" db:"title"`
}

type User struct {
	ID           int64
	Username     string
	PasswordHash []byte
	Email        string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var AnonymousUser = &User{}

func (u *User) IsAnonymous() bool {
	return u == nil || u == AnonymousUser
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
