package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Movies is the catalog store surface.
type Movies interface {
	GetByTitle(ctx context.Context, title string) (*Movie, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Movie, error)
	List(ctx context.Context) ([]*Movie, error)
	Create(ctx context.Context, record *Movie) (*Movie, error)
	UpdateByTitle(ctx context.Context, title string, record *Movie) (*Movie, error)
	DeleteByTitle(ctx context.Context, title string) error
}

type movies struct {
	db *bun.DB
}

var _ Movies = (*movies)(nil)

func NewMoviesRepository(db *bun.DB) Movies {
	return &movies{db: db}
}

func (r *movies) GetByTitle(ctx context.Context, title string) (*Movie, error) {
	movie := &Movie{}
	err := r.db.NewSelect().
		Model(movie).
		Where("mov.title = ?", title).
		Scan(ctx)
	if err != nil {
		return nil, wrapMovieErr(err)
	}
	return movie, nil
}

func (r *movies) GetByID(ctx context.Context, id uuid.UUID) (*Movie, error) {
	movie := &Movie{}
	err := r.db.NewSelect().
		Model(movie).
		Where("mov.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, wrapMovieErr(err)
	}
	return movie, nil
}

func (r *movies) List(ctx context.Context) ([]*Movie, error) {
	var records []*Movie
	err := r.db.NewSelect().
		Model(&records).
		Order("mov.title ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list movies")
	}
	return records, nil
}

func (r *movies) Create(ctx context.Context, record *Movie) (*Movie, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConflict, "could not create movie")
	}
	return record, nil
}

// UpdateByTitle applies the record's fields to the movie currently
// stored under title. The title itself may change as part of the
// update, matching the original PUT /movies/:title behavior.
func (r *movies) UpdateByTitle(ctx context.Context, title string, record *Movie) (*Movie, error) {
	current, err := r.GetByTitle(ctx, title)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record.ID = current.ID
	record.CreatedAt = current.CreatedAt
	record.UpdatedAt = &now

	if _, err := r.db.NewUpdate().
		Model(record).
		ExcludeColumn("created_at").
		WherePK().
		Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "could not update movie")
	}
	return record, nil
}

func (r *movies) DeleteByTitle(ctx context.Context, title string) error {
	res, err := r.db.NewDelete().
		Model((*Movie)(nil)).
		Where("mov.title = ?", title).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "could not delete movie")
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return errNoMovie()
	}
	return nil
}

func wrapMovieErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errNoMovie()
	}
	return errors.Wrap(err, errors.CategoryInternal, "failed to retrieve movie")
}

func errNoMovie() error {
	return errors.New("movie not found", errors.CategoryNotFound).
		WithTextCode("MOVIE_NOT_FOUND")
}
