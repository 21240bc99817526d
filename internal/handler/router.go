package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/GoArmGo/contactbook/internal/core/ports"
	"github.com/GoArmGo/contactbook/internal/usecase"
	"github.com/GoArmGo/contactbook/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterDeps: зависимости HTTP-слоя.
type RouterDeps struct {
	Auth           usecase.AuthUseCase
	Contacts       usecase.ContactUseCase
	Users          usecase.UserUseCase
	Validator      *validation.Validator
	Files          ports.FileStorage
	Pingers        []ports.Pinger
	MaxAvatarBytes int64
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewRouter собирает все маршруты API.
func NewRouter(d RouterDeps) http.Handler {
	authHandler := NewAuthHandler(d.Auth, d.Logger)
	contactHandler := NewContactHandler(d.Contacts, d.Validator, d.MaxAvatarBytes, d.Logger)
	userHandler := NewUserHandler(d.Users, d.Validator, d.MaxAvatarBytes, d.Logger)
	systemHandler := NewSystemHandler(d.Pingers, d.Files, d.Logger)

	authn := Authenticate(d.Auth, d.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	if d.RequestTimeout > 0 {
		r.Use(middleware.Timeout(d.RequestTimeout))
	}

	r.NotFound(systemHandler.NotFound)
	r.MethodNotAllowed(systemHandler.MethodNotAllowed)

	r.Get("/", systemHandler.Root)
	r.Get("/health", systemHandler.Health)
	r.Get("/uploads/{file}", systemHandler.Upload)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.With(authn).Get("/me", authHandler.Me)
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Use(authn)
			r.Get("/", contactHandler.List)
			r.Post("/", contactHandler.Create)
			r.Get("/{id}", contactHandler.Get)
			r.Put("/{id}", contactHandler.Update)
			r.Delete("/{id}", contactHandler.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authn)
			r.Put("/profile", userHandler.UpdateProfile)
			r.Put("/password", userHandler.UpdatePassword)

			r.Group(func(r chi.Router) {
				r.Use(AdminOnly(d.Logger))
				r.Get("/", userHandler.List)
				r.Get("/{id}", userHandler.Get)
				r.Put("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Delete)
			})
		})
	})

	return r
}
