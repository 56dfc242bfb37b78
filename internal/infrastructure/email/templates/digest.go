package templates

import "fmt"

// DigestEmailProps carries the data for the at-risk account digest body
type DigestEmailProps struct {
	RunID        string
	GeneratedAt  string
	HighRiskRows []RiskRowProps
	DashboardURL string
}

// GetDigestEmailContent composes the inner HTML for the at-risk digest
func GetDigestEmailContent(props DigestEmailProps) string {
	content := GetParagraph(fmt.Sprintf("Your engagement analysis run %s finished at %s.", props.RunID, props.GeneratedAt))

	if len(props.HighRiskRows) == 0 {
		content += GetParagraph("No accounts are currently classified as high churn risk.")
	} else {
		content += GetParagraph(fmt.Sprintf("%d paying accounts are at high churn risk and may need outreach:", len(props.HighRiskRows)))
		content += GetRiskTable(props.HighRiskRows)
	}

	if props.DashboardURL != "" {
		content += GetButton(ButtonProps{
			Text: "Open the dashboard",
			URL:  props.DashboardURL,
		})
	}

	return content
}
