package rolesync

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	dispatcher *Dispatcher
	handler    *Handler
}

// NewFeature creates a new rolesync feature around a dispatcher.
func NewFeature(dispatcher *Dispatcher, ledger *Ledger, state StatusSource, gatherer prometheus.Gatherer, logger *zap.Logger) *Feature {
	return &Feature{
		dispatcher: dispatcher,
		handler:    NewHandler(dispatcher, ledger, state, gatherer, logger),
	}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "rolesync"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.dispatcher != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Dispatcher returns the feature's dispatcher.
func (f *Feature) Dispatcher() *Dispatcher {
	return f.dispatcher
}
