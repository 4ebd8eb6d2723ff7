package http

import (
	"github.com/nats-io/nats.go"

	"github.com/orbitcap/orbitcap/internal/adapters/postgres"
	"github.com/orbitcap/orbitcap/internal/adapters/valkey"
	"github.com/orbitcap/orbitcap/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Capacity  *usecases.CapacityService
	Missions  *usecases.MissionService
	Analytics *usecases.AnalyticsService
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
