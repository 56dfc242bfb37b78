package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/entities"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/email/templates"
)

type fakeEmailService struct {
	sentTo    []string
	sentProps templates.DigestEmailProps
	fail      bool
}

func (f *fakeEmailService) SendAtRiskDigest(toEmails []string, props templates.DigestEmailProps) error {
	if f.fail {
		return fmt.Errorf("smtp unavailable")
	}
	f.sentTo = toEmails
	f.sentProps = props
	return nil
}

func digestResult(now time.Time) *entities.AnalysisResult {
	lastActive := now.AddDate(0, 0, -90)
	profiles := map[string]*entities.UnifiedUserProfile{
		"quiet@acme.com": {
			Email:        "quiet@acme.com",
			Organisation: "acme",
			Usage:        entities.UsageFacet{LastActive: &lastActive},
			Derived:      entities.DerivedFacet{EngagementScore: 12, ChurnRisk: entities.RiskHigh},
		},
		"silent@nowhere.io": {
			Email:   "silent@nowhere.io",
			Derived: entities.DerivedFacet{EngagementScore: 5, ChurnRisk: entities.RiskHigh},
		},
		"busy@acme.com": {
			Email:   "busy@acme.com",
			Derived: entities.DerivedFacet{EngagementScore: 85, ChurnRisk: entities.RiskLow},
		},
	}
	return &entities.AnalysisResult{
		RunID:      "run-digest",
		ComputedAt: now,
		Profiles:   profiles,
	}
}

func TestSendAtRiskDigestSelectsAndOrdersHighRisk(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fake := &fakeEmailService{}
	svc := NewDigestService(fake, testLogger(t))

	summary, err := svc.SendAtRiskDigest(digestResult(now), []string{"cs@pulsedesk.io"}, "https://app.pulsedesk.io")
	require.NoError(t, err)

	assert.Equal(t, "run-digest", summary.RunID)
	assert.Equal(t, 2, summary.HighRiskCount)
	assert.Equal(t, 1, summary.Recipients)

	require.Len(t, fake.sentProps.HighRiskRows, 2)
	// Lowest score first.
	assert.Equal(t, "silent@nowhere.io", fake.sentProps.HighRiskRows[0].Email)
	assert.Equal(t, "Unknown", fake.sentProps.HighRiskRows[0].Organisation)
	assert.Equal(t, "quiet@acme.com", fake.sentProps.HighRiskRows[1].Email)
	assert.Equal(t, 90, fake.sentProps.HighRiskRows[1].DaysInactive)
	assert.Equal(t, []string{"cs@pulsedesk.io"}, fake.sentTo)
}

func TestSendAtRiskDigestRequiresResult(t *testing.T) {
	svc := NewDigestService(&fakeEmailService{}, testLogger(t))

	_, err := svc.SendAtRiskDigest(nil, []string{"cs@pulsedesk.io"}, "")
	assert.Error(t, err)
}

func TestSendAtRiskDigestRequiresEmailService(t *testing.T) {
	svc := NewDigestService(nil, testLogger(t))

	_, err := svc.SendAtRiskDigest(digestResult(time.Now().UTC()), []string{"cs@pulsedesk.io"}, "")
	assert.Error(t, err)
}

func TestSendAtRiskDigestPropagatesSendFailure(t *testing.T) {
	svc := NewDigestService(&fakeEmailService{fail: true}, testLogger(t))

	_, err := svc.SendAtRiskDigest(digestResult(time.Now().UTC()), []string{"cs@pulsedesk.io"}, "")
	assert.Error(t, err)
}
