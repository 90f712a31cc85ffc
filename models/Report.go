package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HarassmentReport is the summary the video analyser posts after scanning a
// recording.
type HarassmentReport struct {
	ID               primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	VideoName        string             `json:"videoName" bson:"video_name"`
	TotalIncidents   int                `json:"totalIncidents" bson:"total_incidents"`
	RiskLevel        string             `json:"riskLevel" bson:"risk_level"`
	IncidentTimeline []string           `json:"incidentTimeline" bson:"incident_timeline"`
	CreatedAt        time.Time          `json:"createdAt" bson:"created_at"`
}
