package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/AdelSuarez/geo-api-v2/internal/core/domain"
)

// TransitRoutesHandler returns the status board for a covered city.
func TransitRoutesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		routes, err := deps.Transit.Routes(c.UserContext(), c.Params("city"))
		if err != nil {
			return respondError(c, err, "no transit coverage for this city")
		}
		return c.JSON(fiber.Map{"count": len(routes), "data": routes})
	}
}

// TransitETAHandler returns predicted arrivals at a stop.
func TransitETAHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		arrivals, err := deps.Transit.ETA(c.UserContext(), c.Query("stop_id"))
		if err != nil {
			return respondError(c, err, "stop not found")
		}
		return c.JSON(fiber.Map{"count": len(arrivals), "data": arrivals})
	}
}

// CreateIncidentHandler records a manually reported disruption.
func CreateIncidentHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var inc domain.Incident
		if err := c.BodyParser(&inc); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		created, err := deps.Incidents.Create(c.UserContext(), &inc)
		if err != nil {
			return respondError(c, err, "")
		}
		return c.Status(201).JSON(created)
	}
}

// ListIncidentsHandler returns incidents, optionally filtered by line.
func ListIncidentsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		incidents, err := deps.Incidents.ListByLine(c.UserContext(), c.Query("line"))
		if err != nil {
			return respondError(c, err, "")
		}
		return c.JSON(fiber.Map{"count": len(incidents), "data": incidents})
	}
}

// UpdateIncidentHandler patches an incident.
func UpdateIncidentHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch map[string]any
		if err := c.BodyParser(&patch); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		updated, err := deps.Incidents.Update(c.UserContext(), c.Params("id"), patch)
		if err != nil {
			return respondError(c, err, "incident not found")
		}
		return c.JSON(updated)
	}
}

// DeleteIncidentHandler removes an incident.
func DeleteIncidentHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deleted, err := deps.Incidents.Delete(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err, "incident not found")
		}
		return c.JSON(fiber.Map{"deleted": deleted})
	}
}
