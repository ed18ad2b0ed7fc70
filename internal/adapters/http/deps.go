package http

import (
	"github.com/AdelSuarez/geo-api-v2/internal/adapters/mongodb"
	"github.com/AdelSuarez/geo-api-v2/internal/adapters/valkey"
	"github.com/AdelSuarez/geo-api-v2/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Cities      *usecases.CityService
	Populations *usecases.PopulationService
	Transit     *usecases.TransitService
	Reports     *usecases.ReportService
	Incidents   *usecases.IncidentService
	DB          *mongodb.DB
	Cache       *valkey.Cache
}
