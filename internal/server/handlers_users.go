package server

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/flixandchill/backend/internal/auth"
	"github.com/flixandchill/backend/internal/auth/jwtware"
	"github.com/flixandchill/backend/internal/store"
)

// requireOwner enforces that the authenticated identity matches the
// :Username path parameter. Profile and favorites mutations are
// self-service only.
func (s *Server) requireOwner(c *fiber.Ctx) (jwtware.Identity, error) {
	identity, ok := jwtware.IdentityFromContext(c, "")
	if !ok {
		return nil, respondMessage(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	if identity.Username() != c.Params("Username") {
		return nil, respondMessage(c, fiber.StatusForbidden, "Permission denied")
	}

	return identity, nil
}

func (s *Server) ListUsers(c *fiber.Ctx) error {
	records, err := s.repo.Users().List(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}

	out := make([]*store.User, 0, len(records))
	for _, u := range records {
		out = append(out, u.Sanitize())
	}
	return c.Status(fiber.StatusOK).JSON(out)
}

func (s *Server) GetUser(c *fiber.Ctx) error {
	user, err := s.repo.Users().GetByIdentifier(c.UserContext(), c.Params("Username"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(user.Sanitize())
}

// UpdateUserPayload is the PUT /users/:Username body. All fields are
// required, matching the original replace-style update.
type UpdateUserPayload struct {
	Username string `json:"Username"`
	Password string `json:"Password"`
	Email    string `json:"Email"`
	Birthday string `json:"Birthday"`
}

func (r UpdateUserPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50), is.Alphanumeric),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Birthday, validation.Required, validation.By(validDate)),
	)
}

func (s *Server) UpdateUser(c *fiber.Ctx) error {
	if _, err := s.requireOwner(c); err != nil {
		return err
	}

	payload := new(UpdateUserPayload)
	if err := c.BodyParser(payload); err != nil {
		return respondMessage(c, fiber.StatusBadRequest, "Failed to parse body")
	}

	if err := payload.Validate(); err != nil {
		return respondMessage(c, fiber.StatusBadRequest, err.Error())
	}

	user, err := s.repo.Users().GetByIdentifier(c.UserContext(), c.Params("Username"))
	if err != nil {
		return s.respondError(c, err)
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		return s.respondError(c, err)
	}

	birthday, err := parseBirthday(payload.Birthday)
	if err != nil {
		return respondMessage(c, fiber.StatusBadRequest, "Birthday must be a valid date")
	}

	user.Username = payload.Username
	user.Email = payload.Email
	user.PasswordHash = hash
	user.Birthday = &birthday

	updated, err := s.repo.Users().Update(c.UserContext(), user)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(updated.Sanitize())
}

func (s *Server) DeleteUser(c *fiber.Ctx) error {
	if _, err := s.requireOwner(c); err != nil {
		return err
	}

	if err := s.repo.Users().Delete(c.UserContext(), c.Params("Username")); err != nil {
		return s.respondError(c, err)
	}

	return respondMessage(c, fiber.StatusOK, "User deregistered")
}

func (s *Server) AddFavorite(c *fiber.Ctx) error {
	identity, err := s.requireOwner(c)
	if err != nil {
		return err
	}

	userID, movieID, ferr := s.favoriteIDs(c, identity)
	if ferr != nil {
		return ferr
	}

	// 404 rather than a dangling reference when the movie is unknown
	if _, err := s.repo.Movies().GetByID(c.UserContext(), movieID); err != nil {
		return s.respondError(c, err)
	}

	if err := s.repo.Users().AddFavorite(c.UserContext(), userID, movieID); err != nil {
		return s.respondError(c, err)
	}

	return s.respondWithUser(c, identity.Username())
}

func (s *Server) RemoveFavorite(c *fiber.Ctx) error {
	identity, err := s.requireOwner(c)
	if err != nil {
		return err
	}

	userID, movieID, ferr := s.favoriteIDs(c, identity)
	if ferr != nil {
		return ferr
	}

	if err := s.repo.Users().RemoveFavorite(c.UserContext(), userID, movieID); err != nil {
		return s.respondError(c, err)
	}

	return s.respondWithUser(c, identity.Username())
}

func (s *Server) favoriteIDs(c *fiber.Ctx, identity jwtware.Identity) (uuid.UUID, uuid.UUID, error) {
	userID, err := uuid.Parse(identity.ID())
	if err != nil {
		return uuid.Nil, uuid.Nil, s.respondError(c,
			goerrors.Wrap(err, goerrors.CategoryInternal, "invalid identity id"))
	}

	movieID, err := uuid.Parse(c.Params("MovieID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, respondMessage(c, fiber.StatusBadRequest, "MovieID must be a valid id")
	}

	return userID, movieID, nil
}

func (s *Server) respondWithUser(c *fiber.Ctx, username string) error {
	user, err := s.repo.Users().GetByIdentifier(c.UserContext(), username)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(user.Sanitize())
}
