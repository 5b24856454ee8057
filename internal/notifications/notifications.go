// Package notifications delivers scan alerts over Slack webhooks and
// SMTP email, gated by a minimum risk level.
package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"github.com/privasee/footprint/internal/models"
	"github.com/privasee/footprint/internal/risk"
)

// NotificationType defines the type of notification
type NotificationType string

const (
	NotifyScanComplete   NotificationType = "scan_complete"
	NotifyScanFailed     NotificationType = "scan_failed"
	NotifyCriticalBreach NotificationType = "critical_breach"
	NotifyDailyDigest    NotificationType = "daily_digest"
)

// Channel defines notification channels
type Channel string

const (
	ChannelSlack Channel = "slack"
	ChannelEmail Channel = "email"
)

// Notification represents a notification to be sent
type Notification struct {
	Type      NotificationType
	Title     string
	Message   string
	Severity  models.RiskLevel
	Data      map[string]interface{}
	Timestamp time.Time
}

// Config holds notification configuration
type Config struct {
	MinRiskLevel models.RiskLevel
	Slack        SlackConfig
	Email        EmailConfig
}

// SlackConfig holds Slack configuration
type SlackConfig struct {
	WebhookURL string
	Channel    string
	Username   string
	Enabled    bool
}

// EmailConfig holds email configuration
type EmailConfig struct {
	SMTPHost string
	SMTPPort int
	Username string
	Password string
	From     string
	To       []string
	Enabled  bool
}

// Service handles notifications
type Service struct {
	config Config
	logger *slog.Logger
	client *http.Client
}

// NewService creates a new notification service
func NewService(config Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if config.MinRiskLevel == "" {
		config.MinRiskLevel = models.RiskHigh
	}

	return &Service{
		config: config,
		logger: logger,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send sends a notification to all enabled channels
func (s *Service) Send(ctx context.Context, notif *Notification) error {
	if models.CompareRisk(notif.Severity, s.config.MinRiskLevel) < 0 {
		return nil
	}

	var errs []error

	if s.config.Slack.Enabled {
		if err := s.sendSlack(ctx, notif); err != nil {
			errs = append(errs, fmt.Errorf("slack: %w", err))
		}
	}

	if s.config.Email.Enabled {
		if err := s.sendEmail(notif); err != nil {
			errs = append(errs, fmt.Errorf("email: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %v", errs)
	}

	return nil
}

// NotifyScanResult reports a completed assessment. Low and medium
// results are filtered out by the severity gate in Send.
func (s *Service) NotifyScanResult(ctx context.Context, scan *models.FootprintScan, assessment risk.Assessment) error {
	notifType := NotifyScanComplete
	title := fmt.Sprintf("Footprint scan completed: %s risk", assessment.RiskLevel)
	if assessment.RiskLevel == models.RiskCritical {
		notifType = NotifyCriticalBreach
		title = "Critical digital footprint exposure detected"
	}

	notif := &Notification{
		Type:     notifType,
		Title:    title,
		Message:  assessment.Summary,
		Severity: assessment.RiskLevel,
		Data: map[string]interface{}{
			"scan_id":       scan.ID.String(),
			"target_email":  scan.TargetEmail,
			"risk_score":    assessment.OverallScore,
			"privacy_score": assessment.PrivacyScore,
			"breach_count":  assessment.BreachCount,
			"exposures":     assessment.SocialExposureCount,
		},
		Timestamp: time.Now(),
	}

	return s.Send(ctx, notif)
}

// NotifyScanFailed reports a scan that could not finish.
func (s *Service) NotifyScanFailed(ctx context.Context, scan *models.FootprintScan, scanErr error) error {
	notif := &Notification{
		Type:     NotifyScanFailed,
		Title:    "Footprint scan failed",
		Message:  fmt.Sprintf("Scan %s for %s failed: %s", scan.ID, scan.TargetEmail, scanErr.Error()),
		Severity: models.RiskHigh,
		Data: map[string]interface{}{
			"scan_id":      scan.ID.String(),
			"target_email": scan.TargetEmail,
			"error":        scanErr.Error(),
		},
		Timestamp: time.Now(),
	}

	return s.Send(ctx, notif)
}

// DigestStats holds daily digest statistics
type DigestStats struct {
	Period         string
	ScansRun       int
	FailedScans    int
	CriticalScans  int
	HighRiskScans  int
	NewBreaches    int
	TotalExposures int
}

// NotifyDailyDigest sends a daily digest notification
func (s *Service) NotifyDailyDigest(ctx context.Context, stats DigestStats) error {
	notif := &Notification{
		Type:     NotifyDailyDigest,
		Title:    "Daily Footprint Digest",
		Message:  fmt.Sprintf("Summary: %d scans run, %d new breaches found", stats.ScansRun, stats.NewBreaches),
		Severity: s.digestToSeverity(stats),
		Data: map[string]interface{}{
			"period":          stats.Period,
			"scans_run":       stats.ScansRun,
			"failed_scans":    stats.FailedScans,
			"critical_scans":  stats.CriticalScans,
			"high_risk_scans": stats.HighRiskScans,
			"new_breaches":    stats.NewBreaches,
			"total_exposures": stats.TotalExposures,
		},
		Timestamp: time.Now(),
	}

	return s.Send(ctx, notif)
}

// digestToSeverity determines notification severity from digest stats
func (s *Service) digestToSeverity(stats DigestStats) models.RiskLevel {
	if stats.CriticalScans > 0 {
		return models.RiskCritical
	}
	if stats.HighRiskScans > 0 {
		return models.RiskHigh
	}
	if stats.NewBreaches > 0 {
		return models.RiskMedium
	}
	return models.RiskLow
}

// SlackMessage represents a Slack message payload
type SlackMessage struct {
	Channel     string            `json:"channel,omitempty"`
	Username    string            `json:"username,omitempty"`
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

// SlackAttachment represents a Slack attachment
type SlackAttachment struct {
	Color     string       `json:"color,omitempty"`
	Title     string       `json:"title,omitempty"`
	Text      string       `json:"text,omitempty"`
	Fallback  string       `json:"fallback,omitempty"`
	Fields    []SlackField `json:"fields,omitempty"`
	Footer    string       `json:"footer,omitempty"`
	Timestamp int64        `json:"ts,omitempty"`
}

// SlackField represents a field in a Slack attachment
type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// sendSlack sends a notification to Slack
func (s *Service) sendSlack(ctx context.Context, notif *Notification) error {
	color := s.severityToColor(notif.Severity)

	fields := []SlackField{}
	if notif.Data != nil {
		if target, ok := notif.Data["target_email"].(string); ok {
			fields = append(fields, SlackField{
				Title: "Target",
				Value: target,
				Short: true,
			})
		}
		if score, ok := notif.Data["risk_score"].(int); ok {
			fields = append(fields, SlackField{
				Title: "Risk Score",
				Value: fmt.Sprintf("%d", score),
				Short: true,
			})
		}
		if count, ok := notif.Data["breach_count"].(int); ok {
			fields = append(fields, SlackField{
				Title: "Breaches",
				Value: fmt.Sprintf("%d", count),
				Short: true,
			})
		}
		if count, ok := notif.Data["exposures"].(int); ok {
			fields = append(fields, SlackField{
				Title: "Exposures",
				Value: fmt.Sprintf("%d", count),
				Short: true,
			})
		}
	}

	msg := SlackMessage{
		Channel:  s.config.Slack.Channel,
		Username: s.config.Slack.Username,
		Attachments: []SlackAttachment{
			{
				Color:     color,
				Title:     notif.Title,
				Text:      notif.Message,
				Fallback:  fmt.Sprintf("%s: %s", notif.Title, notif.Message),
				Fields:    fields,
				Footer:    "Footprint Alert System",
				Timestamp: notif.Timestamp.Unix(),
			},
		},
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.Slack.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}

	s.logger.Info("slack notification sent",
		"type", notif.Type,
		"title", notif.Title)

	return nil
}

// severityToColor converts severity to Slack color
func (s *Service) severityToColor(severity models.RiskLevel) string {
	switch severity {
	case models.RiskCritical:
		return "#FF0000" // Red
	case models.RiskHigh:
		return "#FFA500" // Orange
	case models.RiskMedium:
		return "#FFFF00" // Yellow
	default:
		return "#36A64F" // Green
	}
}

// sendEmail sends a notification via email
func (s *Service) sendEmail(notif *Notification) error {
	subject := fmt.Sprintf("[Footprint Alert] %s", notif.Title)
	body, err := s.formatEmailBody(notif)
	if err != nil {
		return err
	}

	msg := s.buildEmailMessage(subject, body)

	auth := smtp.PlainAuth("", s.config.Email.Username, s.config.Email.Password, s.config.Email.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.config.Email.SMTPHost, s.config.Email.SMTPPort)

	err = smtp.SendMail(addr, auth, s.config.Email.From, s.config.Email.To, []byte(msg))
	if err != nil {
		return err
	}

	s.logger.Info("email notification sent",
		"type", notif.Type,
		"title", notif.Title,
		"recipients", len(s.config.Email.To))

	return nil
}

// buildEmailMessage builds an email message
func (s *Service) buildEmailMessage(subject, body string) string {
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", s.config.Email.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(s.config.Email.To, ",")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return msg.String()
}

// formatEmailBody formats the email body
func (s *Service) formatEmailBody(notif *Notification) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f5f5f5; }
        .container { max-width: 600px; margin: 0 auto; background: white; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .header { padding: 20px; background: {{.HeaderColor}}; color: white; border-radius: 8px 8px 0 0; }
        .content { padding: 20px; }
        .severity { display: inline-block; padding: 4px 8px; border-radius: 4px; font-weight: bold; background: {{.SeverityColor}}; color: white; }
        .data-table { width: 100%; border-collapse: collapse; margin-top: 15px; }
        .data-table td { padding: 8px; border-bottom: 1px solid #eee; }
        .data-table td:first-child { font-weight: bold; width: 30%; }
        .footer { padding: 15px 20px; background: #f9f9f9; border-radius: 0 0 8px 8px; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h2 style="margin:0;">{{.Title}}</h2>
        </div>
        <div class="content">
            <p>{{.Message}}</p>
            <p>Risk level: <span class="severity">{{.Severity}}</span></p>
            {{if .HasData}}
            <table class="data-table">
                {{range $key, $value := .Data}}
                <tr>
                    <td>{{$key}}</td>
                    <td>{{$value}}</td>
                </tr>
                {{end}}
            </table>
            {{end}}
        </div>
        <div class="footer">
            <p>This is an automated alert from the footprint analyzer.</p>
            <p>Generated at: {{.Timestamp}}</p>
        </div>
    </div>
</body>
</html>
`
	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", err
	}

	headerColor := "#2196F3" // Default blue
	severityColor := s.severityToColor(notif.Severity)

	switch notif.Severity {
	case models.RiskCritical:
		headerColor = "#F44336"
	case models.RiskHigh:
		headerColor = "#FF9800"
	case models.RiskMedium:
		headerColor = "#FFC107"
	}

	data := map[string]interface{}{
		"Title":         notif.Title,
		"Message":       notif.Message,
		"Severity":      string(notif.Severity),
		"HeaderColor":   headerColor,
		"SeverityColor": severityColor,
		"Data":          notif.Data,
		"HasData":       len(notif.Data) > 0,
		"Timestamp":     notif.Timestamp.Format(time.RFC1123),
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
