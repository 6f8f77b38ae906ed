package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the user store surface the rest of the application depends
// on. The auth package consumes the read + tracking subset; the HTTP
// handlers use the full CRUD surface.
type Users interface {
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Create(ctx context.Context, record *User) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)
	Update(ctx context.Context, record *User) (*User, error)
	Delete(ctx context.Context, username string) error

	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackSuccessfulLogin(ctx context.Context, user *User) error
	ResetLoginAttempts(ctx context.Context, user *User) error

	AddFavorite(ctx context.Context, userID, movieID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, movieID uuid.UUID) error
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type users struct {
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	return &users{db: db}
}

// GetByIdentifier matches the username exactly and case-sensitively.
func (r *users) GetByIdentifier(ctx context.Context, identifier string) (*User, error) {
	return r.GetByIdentifierTx(ctx, r.db, identifier)
}

// GetByIdentifierTx is GetByIdentifier running on the given connection.
// Callers inside a transaction must use this variant: going through the
// pool while the transaction holds its connection deadlocks on a
// single-connection pool and escapes the transaction on a wider one.
func (r *users) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string) (*User, error) {
	user := &User{}
	err := tx.NewSelect().
		Model(user).
		Where("usr.username = ?", identifier).
		Scan(ctx)
	if err != nil {
		return nil, wrapUserErr(err)
	}

	if err := r.loadFavorites(ctx, tx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user := &User{}
	err := r.db.NewSelect().
		Model(user).
		Where("usr.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, wrapUserErr(err)
	}

	if err := r.loadFavorites(ctx, r.db, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *users) List(ctx context.Context) ([]*User, error) {
	var records []*User
	err := r.db.NewSelect().
		Model(&records).
		Order("usr.username ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list users")
	}
	return records, nil
}

func (r *users) Create(ctx context.Context, record *User) (*User, error) {
	return r.CreateTx(ctx, r.db, record)
}

func (r *users) CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConflict, "could not create user")
	}
	return record, nil
}

func (r *users) Update(ctx context.Context, record *User) (*User, error) {
	now := time.Now()
	record.UpdatedAt = &now

	res, err := r.db.NewUpdate().
		Model(record).
		Column("username", "email", "password_hash", "birthday", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "could not update user")
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, errNoUser()
	}
	return record, nil
}

func (r *users) Delete(ctx context.Context, username string) error {
	res, err := r.db.NewDelete().
		Model((*User)(nil)).
		Where("usr.username = ?", username).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "could not delete user")
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return errNoUser()
	}
	return nil
}

// TrackAttemptedLogin bumps the failed-attempt counter and window start
// used by the login cooldown.
func (r *users) TrackAttemptedLogin(ctx context.Context, user *User) error {
	_, err := r.db.NewUpdate().
		Model((*User)(nil)).
		Set("login_attempts = login_attempts + 1").
		Set("login_attempt_at = ?", time.Now()).
		Where("usr.id = ?", user.ID).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to track login attempt")
	}
	return nil
}

func (r *users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	_, err := r.db.NewUpdate().
		Model((*User)(nil)).
		Set("login_attempts = 0").
		Set("login_attempt_at = NULL").
		Set("loggedin_at = ?", time.Now()).
		Where("usr.id = ?", user.ID).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to track successful login")
	}
	return nil
}

// ResetLoginAttempts clears the failed-attempt counter and window start
// without touching loggedin_at. Used when the cooldown window lapses so
// the next failure counts from zero instead of the stale total.
func (r *users) ResetLoginAttempts(ctx context.Context, user *User) error {
	_, err := r.db.NewUpdate().
		Model((*User)(nil)).
		Set("login_attempts = 0").
		Set("login_attempt_at = NULL").
		Where("usr.id = ?", user.ID).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to reset login attempts")
	}
	return nil
}

func (r *users) AddFavorite(ctx context.Context, userID, movieID uuid.UUID) error {
	fav := &Favorite{UserID: userID, MovieID: movieID}
	_, err := r.db.NewInsert().
		Model(fav).
		On("CONFLICT (user_id, movie_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "could not add favorite")
	}
	return nil
}

func (r *users) RemoveFavorite(ctx context.Context, userID, movieID uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*Favorite)(nil)).
		Where("fav.user_id = ?", userID).
		Where("fav.movie_id = ?", movieID).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "could not remove favorite")
	}
	return nil
}

func (r *users) ListFavorites(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return r.listFavorites(ctx, r.db, userID)
}

func (r *users) listFavorites(ctx context.Context, idb bun.IDB, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := idb.NewSelect().
		Model((*Favorite)(nil)).
		Column("movie_id").
		Where("fav.user_id = ?", userID).
		Order("fav.created_at ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "could not list favorites")
	}
	return ids, nil
}

func (r *users) loadFavorites(ctx context.Context, idb bun.IDB, user *User) error {
	favorites, err := r.listFavorites(ctx, idb, user.ID)
	if err != nil {
		return err
	}
	user.FavoriteMovies = favorites
	return nil
}

func wrapUserErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errNoUser()
	}
	return errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user")
}

func errNoUser() error {
	return errors.New("user not found", errors.CategoryNotFound).
		WithTextCode("USER_NOT_FOUND")
}
