package store

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// PasswordHasher is satisfied by the auth package. Declared locally so
// the store does not import auth.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type RegisterUserMessage struct {
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Birthday *time.Time `json:"birthday"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// RegisterUserHandler creates a new user with a hashed password inside
// a transaction. The username must not already exist.
type RegisterUserHandler struct {
	Repo   RepositoryManager
	Hasher PasswordHasher
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) (*User, error) {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.Repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// the lookup must ride the transaction's connection: through the
		// pool it deadlocks on a single-connection pool and the
		// uniqueness check escapes the transaction on a wider one
		if existing, err := h.Repo.Users().GetByIdentifierTx(ctx, tx, event.Username); err == nil && existing != nil {
			return goerrors.New("username already exists", goerrors.CategoryConflict).
				WithTextCode("USERNAME_TAKEN")
		} else if err != nil && !goerrors.IsNotFound(err) {
			return err
		}

		hash, err := h.Hasher.HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Username = event.Username
		user.Email = event.Email
		user.Birthday = event.Birthday
		if id, err := hashid.NewUUID(event.Email); err == nil {
			user.ID = id
		}

		if user, err = h.Repo.Users().CreateTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user registration failed")
	}

	return user, nil
}
