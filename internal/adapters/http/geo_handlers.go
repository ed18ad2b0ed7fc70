package http

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
)

// GetCityHandler resolves a place through the read-through cache.
func GetCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, err := url.PathUnescape(c.Params("city"))
		if err != nil {
			name = c.Params("city")
		}

		city, err := deps.Cities.Lookup(c.UserContext(), name)
		if err != nil {
			return respondError(c, err, "city not found")
		}
		return c.JSON(city)
	}
}

// CityHistoryHandler lists every cached city, newest first.
func CityHistoryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cities, err := deps.Cities.History(c.UserContext())
		if err != nil {
			return respondError(c, err, "")
		}
		return c.JSON(fiber.Map{"count": len(cities), "data": cities})
	}
}

// UpdateCityHandler patches a cached city by its upstream place id.
func UpdateCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch map[string]any
		if err := c.BodyParser(&patch); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if len(patch) == 0 {
			return errBadRequest(c, "empty patch")
		}

		city, err := deps.Cities.Update(c.UserContext(), c.Params("id"), patch)
		if err != nil {
			return respondError(c, err, "city not found")
		}
		return c.JSON(city)
	}
}

// DeleteCityHandler removes a cached city by its upstream place id.
func DeleteCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		city, err := deps.Cities.Delete(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err, "city not found")
		}
		return c.JSON(fiber.Map{"deleted": city})
	}
}

// GetPopulationHandler resolves a country's demographic aggregate.
func GetPopulationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := deps.Populations.Lookup(c.UserContext(), c.Params("countryCode"))
		if err != nil {
			return respondError(c, err, "country not found")
		}
		return c.JSON(p)
	}
}

// PopulationHistoryHandler lists every cached aggregate, newest first.
func PopulationHistoryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		populations, err := deps.Populations.History(c.UserContext())
		if err != nil {
			return respondError(c, err, "")
		}
		return c.JSON(fiber.Map{"count": len(populations), "data": populations})
	}
}

// DeletePopulationHandler removes a cached aggregate by country id.
func DeletePopulationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := deps.Populations.Delete(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err, "country not found")
		}
		return c.JSON(fiber.Map{"deleted": p})
	}
}
