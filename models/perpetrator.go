package models

import "time"

// PerpetratorSummary is one row of the per-handler perpetrator report.
type PerpetratorSummary struct {
	Name           string    `json:"_id" bson:"_id"`
	Count          int       `json:"count" bson:"count"`
	LatestIncident time.Time `json:"latestIncident" bson:"latestIncident"`
}
