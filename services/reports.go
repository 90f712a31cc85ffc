package services

import (
	"complaint-portal/models"
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

type ReportInput struct {
	VideoName        string   `json:"videoName"`
	TotalIncidents   *int     `json:"totalIncidents" label:"Total incidents" validate:"required,min=0"`
	RiskLevel        string   `json:"riskLevel" label:"Risk level" validate:"required"`
	IncidentTimeline []string `json:"incidentTimeline"`
}

// ReportService stores the summaries posted by the video analyser.
type ReportService struct {
	reports ReportRepository
	logger  *zap.Logger
	now     func() time.Time
}

func NewReportService(store *Store, logger *zap.Logger) *ReportService {
	return &ReportService{reports: store.Reports, logger: logger, now: time.Now}
}

func (s *ReportService) Create(ctx context.Context, in ReportInput) (*models.HarassmentReport, error) {
	in.RiskLevel = strings.TrimSpace(in.RiskLevel)
	if err := check(in); err != nil {
		return nil, err
	}

	report := &models.HarassmentReport{
		VideoName:        strings.TrimSpace(in.VideoName),
		TotalIncidents:   *in.TotalIncidents,
		RiskLevel:        in.RiskLevel,
		IncidentTimeline: in.IncidentTimeline,
		CreatedAt:        s.now(),
	}
	if report.VideoName == "" {
		report.VideoName = "Unknown Video"
	}
	if report.IncidentTimeline == nil {
		report.IncidentTimeline = []string{}
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	s.logger.Info("harassment report saved",
		zap.String("report_id", report.ID.Hex()),
		zap.String("video", report.VideoName),
		zap.Int("incidents", report.TotalIncidents),
	)
	return report, nil
}

func (s *ReportService) List(ctx context.Context) ([]models.HarassmentReport, error) {
	return s.reports.List(ctx)
}

func (s *ReportService) Get(ctx context.Context, id string) (*models.HarassmentReport, error) {
	oid, err := parseID(id, "Report not found")
	if err != nil {
		return nil, err
	}
	report, err := s.reports.FindByID(ctx, oid)
	if err != nil {
		if isNotFound(err) {
			return nil, NotFound("Report not found")
		}
		return nil, err
	}
	return report, nil
}
