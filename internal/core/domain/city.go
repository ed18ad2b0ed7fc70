package domain

import "time"

// Bounding is the bounding box a gazetteer reports for a place.
type Bounding struct {
	East          float64 `bson:"east" json:"east"`
	South         float64 `bson:"south" json:"south"`
	North         float64 `bson:"north" json:"north"`
	West          float64 `bson:"west" json:"west"`
	AccuracyLevel int     `bson:"accuracy_level" json:"accuracyLevel"`
}

// CityTimezone holds the upstream timezone block for a place.
type CityTimezone struct {
	GMTOffset  float64 `bson:"gmt_offset" json:"gmtOffset"`
	TimeZoneID string  `bson:"time_zone_id" json:"timeZoneId"`
	DSTOffset  float64 `bson:"dst_offset" json:"dstOffset"`
}

// City is one normalized gazetteer result, cached after the first
// successful lookup. Latitude/longitude stay strings because the
// upstream reports them that way and clients expect them verbatim.
// Bounding and Timezone are omitted entirely when the upstream has
// no data for them.
type City struct {
	ID         string        `bson:"id" json:"id"`
	SearchKey  string        `bson:"search_key" json:"-"`
	SearchName string        `bson:"search_name" json:"searchName"`
	Name       string        `bson:"name" json:"name"`
	Latitude   string        `bson:"latitude" json:"latitude"`
	Longitude  string        `bson:"longitude" json:"longitude"`
	Bounding   *Bounding     `bson:"bounding,omitempty" json:"bounding,omitempty"`
	Timezone   *CityTimezone `bson:"timezone,omitempty" json:"timezone,omitempty"`
	CreatedAt  time.Time     `bson:"created_at" json:"createdAt"`
}
