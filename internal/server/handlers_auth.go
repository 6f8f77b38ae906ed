package server

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/flixandchill/backend/internal/auth"
	"github.com/flixandchill/backend/internal/store"
)

// incorrectCredentials is the uniform bad-login message. Lookup misses
// and wrong passwords produce the same body so the endpoint cannot be
// used to enumerate usernames.
const incorrectCredentials = "Incorrect username or password."

// LoginPayload is the POST /login body. Field names follow the
// original API contract.
type LoginPayload struct {
	Username string `json:"Username"`
	Password string `json:"Password"`
}

func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// Login verifies credentials and returns the sanitized user plus a
// bearer token.
func (s *Server) Login(c *fiber.Ctx) error {
	payload := new(LoginPayload)
	if err := c.BodyParser(payload); err != nil {
		return respondMessage(c, fiber.StatusBadRequest, "Failed to parse body")
	}

	if err := payload.Validate(); err != nil {
		return respondMessage(c, fiber.StatusBadRequest, err.Error())
	}

	token, err := s.auther.Login(c.UserContext(), payload.Username, payload.Password)
	if err != nil {
		switch {
		case goerrors.IsNotFound(err), isInvalidCredentials(err):
			return respondMessage(c, fiber.StatusBadRequest, incorrectCredentials)
		case goerrors.Is(err, auth.ErrTooManyLoginAttempts):
			return respondMessage(c, fiber.StatusTooManyRequests, auth.ErrTooManyLoginAttempts.Message)
		default:
			s.logger.Error("login failed", "username", payload.Username, "error", err)
			return respondMessage(c, fiber.StatusInternalServerError, "Internal server error")
		}
	}

	user, err := s.repo.Users().GetByIdentifier(c.UserContext(), payload.Username)
	if err != nil {
		s.logger.Error("login user fetch failed", "username", payload.Username, "error", err)
		return respondMessage(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user":  user.Sanitize(),
		"token": token,
	})
}

// RegisterPayload is the POST /users body.
type RegisterPayload struct {
	Username string `json:"Username"`
	Password string `json:"Password"`
	Email    string `json:"Email"`
	Birthday string `json:"Birthday"`
}

func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50), is.Alphanumeric),
		// bcrypt truncates beyond 72 bytes, so cap the length here
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Birthday, validation.Required, validation.By(validDate)),
	)
}

var birthdayLayouts = []string{"2006-01-02", time.RFC3339}

func validDate(value any) error {
	raw, _ := value.(string)
	if _, err := parseBirthday(raw); err != nil {
		return goerrors.New("must be a valid date (YYYY-MM-DD)", goerrors.CategoryValidation)
	}
	return nil
}

func parseBirthday(raw string) (time.Time, error) {
	var err error
	for _, layout := range birthdayLayouts {
		var t time.Time
		if t, err = time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// RegisterUser creates a user with a hashed password.
func (s *Server) RegisterUser(c *fiber.Ctx) error {
	payload := new(RegisterPayload)
	if err := c.BodyParser(payload); err != nil {
		return respondMessage(c, fiber.StatusBadRequest, "Failed to parse body")
	}

	if err := payload.Validate(); err != nil {
		return respondMessage(c, fiber.StatusBadRequest, err.Error())
	}

	birthday, err := parseBirthday(payload.Birthday)
	if err != nil {
		return respondMessage(c, fiber.StatusBadRequest, "Birthday must be a valid date")
	}

	handler := store.RegisterUserHandler{Repo: s.repo, Hasher: auth.Hasher{}}
	user, err := handler.Execute(c.UserContext(), store.RegisterUserMessage{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
		Birthday: &birthday,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	s.logger.Info("user registered", "username", user.Username)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user":    user.Sanitize(),
	})
}

func isInvalidCredentials(err error) bool {
	var richErr *goerrors.Error
	return goerrors.As(err, &richErr) && richErr.TextCode == auth.TextCodeInvalidCreds
}
