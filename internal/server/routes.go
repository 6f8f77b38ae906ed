package server

import "github.com/gofiber/fiber/v2"

// registerRoutes wires the route table. Registration and login are the
// only writable public endpoints; the gate middleware runs first on
// everything else.
func (s *Server) registerRoutes() {
	s.app.Get("/", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Welcome to Flix and Chill App!")
	})

	s.app.Post("/users", s.RegisterUser)
	s.app.Post("/login", s.Login)

	protected := s.protected()

	s.app.Get("/users", protected, s.ListUsers)
	s.app.Get("/users/:Username", protected, s.GetUser)
	s.app.Put("/users/:Username", protected, s.UpdateUser)
	s.app.Delete("/users/:Username", protected, s.DeleteUser)
	s.app.Post("/users/:Username/movies/:MovieID", protected, s.AddFavorite)
	s.app.Delete("/users/:Username/movies/:MovieID", protected, s.RemoveFavorite)

	s.app.Get("/movies", protected, s.ListMovies)
	s.app.Get("/movies/:Title", protected, s.GetMovie)
	s.app.Post("/movies", protected, s.CreateMovie)
	s.app.Put("/movies/:Title", protected, s.UpdateMovie)
	s.app.Delete("/movies/:Title", protected, s.DeleteMovie)
}
