package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model. PasswordHash is produced exclusively by the
// auth package hasher and is stripped from every API response via
// Sanitize.
// JSON keys follow the original API contract, which capitalized the
// user fields (Username, Email, ...) while keeping movies lowercase.
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID   `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username       string      `bun:"username,notnull,unique" json:"Username,omitempty"`
	Email          string      `bun:"email,notnull,unique" json:"Email,omitempty"`
	PasswordHash   string      `bun:"password_hash,notnull" json:"-"`
	Birthday       *time.Time  `bun:"birthday,nullzero" json:"Birthday,omitempty"`
	FavoriteMovies []uuid.UUID `bun:"-" json:"FavoriteMovies,omitempty"`
	LoginAttempts  int         `bun:"login_attempts" json:"-"`
	LoginAttemptAt *time.Time  `bun:"login_attempt_at,nullzero" json:"-"`
	LoggedInAt     *time.Time  `bun:"loggedin_at,nullzero" json:"-"`
	CreatedAt      *time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time  `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}

// Sanitize returns a copy safe to put in an HTTP response body.
func (u *User) Sanitize() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.PasswordHash = ""
	out.LoginAttempts = 0
	out.LoginAttemptAt = nil
	return &out
}

// Favorite links a user to a movie in their favorites list.
// The (user_id, movie_id) pair is the primary key so a movie can be
// favorited at most once per user.
type Favorite struct {
	bun.BaseModel `bun:"table:user_favorites,alias:fav"`
	UserID        uuid.UUID  `bun:"user_id,pk,type:uuid" json:"user_id"`
	MovieID       uuid.UUID  `bun:"movie_id,pk,type:uuid" json:"movie_id"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
