package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/AdelSuarez/geo-api-v2/internal/core/domain"
)

// Report endpoints answer in a success envelope because the mobile
// clients consuming them key off the success flag.

func reportOK(c *fiber.Ctx, status int, body fiber.Map) error {
	body["success"] = true
	return c.Status(status).JSON(body)
}

func reportErr(c *fiber.Ctx, status int, message string, fields []domain.FieldError) error {
	body := fiber.Map{"success": false, "message": message}
	if len(fields) > 0 {
		body["errors"] = fields
	}
	return c.Status(status).JSON(body)
}

// respondReportError is respondError for the success-envelope endpoints.
func respondReportError(c *fiber.Ctx, err error, notFoundMsg string) error {
	switch e := err.(type) {
	case *domain.ValidationError:
		return reportErr(c, 400, "validation failed", e.Fields)
	case *domain.UpstreamError:
		return reportErr(c, 500, "internal error", nil)
	}
	if err == domain.ErrNotFound {
		return reportErr(c, 404, notFoundMsg, nil)
	}
	return reportErr(c, 500, "internal error", nil)
}

// createReportRequest is the public shape of a new report. Coordinates
// arrive as separate latitude/longitude and are folded into GeoJSON
// order server-side.
type createReportRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	City        string   `json:"city"`
	Country     string   `json:"country"`
	Address     string   `json:"address"`
	Priority    string   `json:"priority"`
	MediaURLs   []string `json:"mediaUrls"`
	UserID      string   `json:"userId"`
}

// CreateReportHandler accepts a new citizen report.
func CreateReportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createReportRequest
		if err := c.BodyParser(&req); err != nil {
			return reportErr(c, 400, "invalid JSON body", nil)
		}

		v := &domain.ValidationError{}
		if req.Title == "" {
			v.Add("title", "is required")
		}
		if req.Description == "" {
			v.Add("description", "is required")
		}
		if req.Category == "" {
			v.Add("category", "is required")
		}
		if req.Latitude == nil {
			v.Add("latitude", "is required")
		}
		if req.Longitude == nil {
			v.Add("longitude", "is required")
		}
		if req.City == "" {
			v.Add("city", "is required")
		}
		if req.Country == "" {
			v.Add("country", "is required")
		}
		if err := v.Err(); err != nil {
			return reportErr(c, 400, "missing required fields", v.Fields)
		}

		r := &domain.Report{
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
			Priority:    req.Priority,
			UserID:      req.UserID,
			MediaURLs:   req.MediaURLs,
			Location: domain.ReportLocation{
				Coordinates: []float64{*req.Longitude, *req.Latitude},
				Address:     req.Address,
				City:        req.City,
				Country:     req.Country,
			},
			Metadata: domain.ReportMetadata{
				IPAddress: c.IP(),
				UserAgent: c.Get(fiber.HeaderUserAgent, "unknown"),
			},
		}

		created, err := deps.Reports.Create(c.UserContext(), r)
		if err != nil {
			return respondReportError(c, err, "report not found")
		}

		return reportOK(c, 201, fiber.Map{
			"message": "report created",
			"data": fiber.Map{
				"id":           created.ID,
				"title":        created.Title,
				"trackingCode": created.TrackingCode,
				"status":       created.Status,
			},
		})
	}
}

// GetReportHandler returns one report by id.
func GetReportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report, err := deps.Reports.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondReportError(c, err, "report not found")
		}
		return reportOK(c, 200, fiber.Map{"data": report})
	}
}

// NearbyReportsHandler returns reports around a point, nearest first.
func NearbyReportsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		latStr := c.Query("latitude")
		lonStr := c.Query("longitude")
		if latStr == "" || lonStr == "" {
			return reportErr(c, 400, "latitude and longitude are required", nil)
		}
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return reportErr(c, 400, "latitude must be a number", nil)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return reportErr(c, 400, "longitude must be a number", nil)
		}
		radius, _ := strconv.ParseFloat(c.Query("radius", "0"), 64)

		reports, err := deps.Reports.Nearby(c.UserContext(), lat, lon, radius, c.Query("category"))
		if err != nil {
			return respondReportError(c, err, "report not found")
		}
		return reportOK(c, 200, fiber.Map{"count": len(reports), "data": reports})
	}
}

// ReportHistoryHandler returns the most recent reports.
func ReportHistoryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reports, err := deps.Reports.History(c.UserContext())
		if err != nil {
			return respondReportError(c, err, "")
		}
		return reportOK(c, 200, fiber.Map{"count": len(reports), "data": reports})
	}
}

// UpdateReportHandler patches a report's mutable fields.
func UpdateReportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch map[string]any
		if err := c.BodyParser(&patch); err != nil {
			return reportErr(c, 400, "invalid JSON body", nil)
		}

		updated, err := deps.Reports.Update(c.UserContext(), c.Params("id"), patch)
		if err != nil {
			return respondReportError(c, err, "report not found")
		}
		return reportOK(c, 200, fiber.Map{"message": "report updated", "data": updated})
	}
}

// DeleteReportHandler removes a report.
func DeleteReportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deleted, err := deps.Reports.Delete(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondReportError(c, err, "report not found")
		}
		return reportOK(c, 200, fiber.Map{
			"message": "report deleted",
			"data":    fiber.Map{"id": deleted.ID, "title": deleted.Title},
		})
	}
}
