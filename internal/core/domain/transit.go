package domain

import "time"

// RouteStatus is the current service status of one transit line.
type RouteStatus struct {
	Mode    string `json:"mode"`
	Route   string `json:"route"`
	Status  string `json:"status"`
	Details string `json:"details"`
}

// Arrival is one predicted arrival at a stop.
type Arrival struct {
	Line            string `json:"line"`
	Destination     string `json:"destination"`
	Platform        string `json:"platform"`
	TimeToStation   int    `json:"timeToStation"` // seconds
	ExpectedArrival string `json:"expectedArrival"`
}

// Incident is a manually reported transit disruption.
type Incident struct {
	ID          string    `bson:"-" json:"id"`
	Type        string    `bson:"type" json:"type"`
	Line        string    `bson:"line" json:"line"`
	Description string    `bson:"description" json:"description"`
	StopID      string    `bson:"stop_id,omitempty" json:"stopId,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}
