package server

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"

	"github.com/flixandchill/backend/internal/store"
)

// MoviePayload is the POST /movies and PUT /movies/:Title body. It
// mirrors the catalog schema: lowercase keys, nested genre/director.
type MoviePayload struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Genre       store.Genre    `json:"genre"`
	Director    store.Director `json:"director"`
	Actors      []string       `json:"actors"`
	ImagePath   string         `json:"image_path"`
	Featured    bool           `json:"featured"`
}

func (r MoviePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Required),
	)
}

func (r MoviePayload) toModel() *store.Movie {
	return &store.Movie{
		Title:       r.Title,
		Description: r.Description,
		Genre:       r.Genre,
		Director:    r.Director,
		Actors:      r.Actors,
		ImagePath:   r.ImagePath,
		Featured:    r.Featured,
	}
}

func (s *Server) ListMovies(c *fiber.Ctx) error {
	records, err := s.repo.Movies().List(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(records)
}

func (s *Server) GetMovie(c *fiber.Ctx) error {
	movie, err := s.repo.Movies().GetByTitle(c.UserContext(), c.Params("Title"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(movie)
}

func (s *Server) CreateMovie(c *fiber.Ctx) error {
	payload := new(MoviePayload)
	if err := c.BodyParser(payload); err != nil {
		return respondMessage(c, fiber.StatusBadRequest, "Failed to parse body")
	}

	if err := payload.Validate(); err != nil {
		return respondMessage(c, fiber.StatusBadRequest, err.Error())
	}

	movie, err := s.repo.Movies().Create(c.UserContext(), payload.toModel())
	if err != nil {
		return s.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(movie)
}

func (s *Server) UpdateMovie(c *fiber.Ctx) error {
	payload := new(MoviePayload)
	if err := c.BodyParser(payload); err != nil {
		return respondMessage(c, fiber.StatusBadRequest, "Failed to parse body")
	}

	if err := payload.Validate(); err != nil {
		return respondMessage(c, fiber.StatusBadRequest, err.Error())
	}

	movie, err := s.repo.Movies().UpdateByTitle(c.UserContext(), c.Params("Title"), payload.toModel())
	if err != nil {
		return s.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(movie)
}

func (s *Server) DeleteMovie(c *fiber.Ctx) error {
	if err := s.repo.Movies().DeleteByTitle(c.UserContext(), c.Params("Title")); err != nil {
		return s.respondError(c, err)
	}
	return respondMessage(c, fiber.StatusOK, "Movie deleted")
}
