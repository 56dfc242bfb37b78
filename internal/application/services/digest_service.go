package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/analytics"
	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/entities"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/email"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/email/templates"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/observability/logging"
)

// DigestService composes and sends the at-risk account digest from the
// latest analysis result.
type DigestService struct {
	emailService email.Service
	logger       *logging.ChanneledLogger
}

// NewDigestService creates a new digest service
func NewDigestService(emailService email.Service, logger *logging.ChanneledLogger) *DigestService {
	return &DigestService{
		emailService: emailService,
		logger:       logger,
	}
}

// DigestSummary reports what a digest send contained.
type DigestSummary struct {
	RunID         string `json:"runId"`
	HighRiskCount int    `json:"highRiskCount"`
	Recipients    int    `json:"recipients"`
}

// SendAtRiskDigest emails the high-risk paying accounts from the given
// result to the requested recipients.
func (s *DigestService) SendAtRiskDigest(result *entities.AnalysisResult, recipients []string, dashboardURL string) (*DigestSummary, error) {
	if s.emailService == nil {
		return nil, fmt.Errorf("email service is not configured")
	}
	if result == nil {
		return nil, fmt.Errorf("no analysis result available, trigger a run first")
	}

	rows := collectHighRiskRows(result)

	props := templates.DigestEmailProps{
		RunID:        result.RunID,
		GeneratedAt:  result.ComputedAt.Format(time.RFC1123),
		HighRiskRows: rows,
		DashboardURL: dashboardURL,
	}

	log := s.logger.WithOperation(logging.ChannelEmail, "digest:send")
	if err := s.emailService.SendAtRiskDigest(recipients, props); err != nil {
		log.Error("Failed to send at-risk digest", "error", err.Error(), "runId", result.RunID)
		return nil, err
	}

	log.Info("At-risk digest sent", "runId", result.RunID, "highRisk", len(rows), "recipients", len(recipients))
	return &DigestSummary{
		RunID:         result.RunID,
		HighRiskCount: len(rows),
		Recipients:    len(recipients),
	}, nil
}

// collectHighRiskRows selects high-risk profiles sorted by engagement score
// ascending, most disengaged first.
func collectHighRiskRows(result *entities.AnalysisResult) []templates.RiskRowProps {
	now := result.ComputedAt
	var rows []templates.RiskRowProps

	for _, profile := range result.Profiles {
		if profile.Derived.ChurnRisk != entities.RiskHigh {
			continue
		}
		organisation := profile.Organisation
		if organisation == "" {
			organisation = analytics.UnknownOrganisation
		}
		rows = append(rows, templates.RiskRowProps{
			Email:        profile.Email,
			Organisation: organisation,
			Score:        profile.Derived.EngagementScore,
			DaysInactive: analytics.DaysSinceOrCeiling(profile.Usage.LastActive, now),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score < rows[j].Score
		}
		return rows[i].Email < rows[j].Email
	})

	return rows
}
