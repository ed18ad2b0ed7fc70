package domain

import "time"

// Indicator is one statistical series reading: the most recent year
// with a non-null value. Value is a pointer so a missing indicator
// round-trips as null instead of zero.
type Indicator struct {
	Date  string   `bson:"date" json:"date"`
	Value *float64 `bson:"value" json:"value"`
}

// Population aggregates five independently-fetched indicator series
// for one country. Only TotalPopulation is guaranteed present; the
// others are nil when their upstream call failed or had no data.
type Population struct {
	ID               string     `bson:"id" json:"id"`
	SearchKey        string     `bson:"search_key" json:"-"`
	SearchName       string     `bson:"search_name" json:"searchName"`
	Name             string     `bson:"name" json:"name"`
	CountryISO3Code  string     `bson:"countryiso3code" json:"countryiso3code"`
	TotalPopulation  *Indicator `bson:"total_population" json:"totalPopulation"`
	LifeExpectance   *Indicator `bson:"life_expectance" json:"lifeExpectance"`
	PopulationGrowth *Indicator `bson:"population_growth" json:"populationGrowth"`
	Male             *Indicator `bson:"male" json:"male"`
	Female           *Indicator `bson:"female" json:"female"`
	CreatedAt        time.Time  `bson:"created_at" json:"createdAt"`
}
