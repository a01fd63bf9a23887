package main

import (
	"cinehub/proj/internal/config"
	"cinehub/proj/internal/lib/validator"
	"cinehub/proj/internal/services"
	"log/slog"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

type Application struct {
	cfg       *config.Config
	log       *slog.Logger
	Http      *Http
	Services  *services.Services
	validator *govalidator.Validate
	decoder   *schema.Decoder
}

func NewApplication(cfg *config.Config, log *slog.Logger, services *services.Services) *Application {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return &Application{
		cfg:       cfg,
		log:       log,
		validator: validator.New(),
		decoder:   decoder,
		Services:  services,
		Http: &Http{
			log: log,
			cfg: cfg,
		},
	}
}
