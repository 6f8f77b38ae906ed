package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Genre describes a movie genre.
type Genre struct {
	Name        string `bun:"name" json:"name,omitempty"`
	Description string `bun:"description" json:"description,omitempty"`
}

// Director describes a movie director.
type Director struct {
	Name string `bun:"name" json:"name,omitempty"`
	Bio  string `bun:"bio" json:"bio,omitempty"`
}

// Movie is the catalog entry. Title is the public identifier used by
// the /movies/:Title routes, so it is unique.
type Movie struct {
	bun.BaseModel `bun:"table:movies,alias:mov"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string     `bun:"title,notnull,unique" json:"title"`
	Description   string     `bun:"description,notnull" json:"description"`
	Genre         Genre      `bun:"embed:genre_" json:"genre"`
	Director      Director   `bun:"embed:director_" json:"director"`
	Actors        []string   `bun:"actors" json:"actors,omitempty"`
	ImagePath     string     `bun:"image_path" json:"image_path,omitempty"`
	Featured      bool       `bun:"featured" json:"featured"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
