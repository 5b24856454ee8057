package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/privasee/footprint/internal/models"
	"github.com/privasee/footprint/internal/risk"
)

func newSlackService(t *testing.T, minLevel models.RiskLevel, received *[]SlackMessage) *Service {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg SlackMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			t.Errorf("decoding slack payload: %v", err)
		}
		*received = append(*received, msg)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	return NewService(Config{
		MinRiskLevel: minLevel,
		Slack: SlackConfig{
			WebhookURL: server.URL,
			Username:   "Footprint Bot",
			Enabled:    true,
		},
	}, nil)
}

func TestSendRespectsMinimumSeverity(t *testing.T) {
	tests := []struct {
		name     string
		minLevel models.RiskLevel
		severity models.RiskLevel
		wantSent bool
	}{
		{"medium below high gate", models.RiskHigh, models.RiskMedium, false},
		{"high meets high gate", models.RiskHigh, models.RiskHigh, true},
		{"critical above high gate", models.RiskHigh, models.RiskCritical, true},
		{"low passes low gate", models.RiskLow, models.RiskLow, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var received []SlackMessage
			svc := newSlackService(t, tt.minLevel, &received)

			err := svc.Send(context.Background(), &Notification{
				Type:     NotifyScanComplete,
				Title:    "test",
				Severity: tt.severity,
			})
			if err != nil {
				t.Fatalf("Send() error = %v", err)
			}

			if sent := len(received) > 0; sent != tt.wantSent {
				t.Errorf("sent = %v, want %v", sent, tt.wantSent)
			}
		})
	}
}

func TestNotifyScanResultEscalatesCritical(t *testing.T) {
	var received []SlackMessage
	svc := newSlackService(t, models.RiskHigh, &received)

	scan := &models.FootprintScan{
		ID:          uuid.New(),
		TargetEmail: "target@example.com",
	}
	assessment := risk.Assessment{
		OverallScore: 85,
		RiskLevel:    models.RiskCritical,
		PrivacyScore: 15,
		BreachCount:  3,
		Summary:      "3 breaches found",
	}

	if err := svc.NotifyScanResult(context.Background(), scan, assessment); err != nil {
		t.Fatalf("NotifyScanResult() error = %v", err)
	}

	if len(received) != 1 {
		t.Fatalf("expected 1 slack message, got %d", len(received))
	}
	if len(received[0].Attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(received[0].Attachments))
	}

	att := received[0].Attachments[0]
	if att.Title != "Critical digital footprint exposure detected" {
		t.Errorf("attachment title = %q", att.Title)
	}
	if att.Color != "#FF0000" {
		t.Errorf("attachment color = %q, want red", att.Color)
	}

	var gotTarget bool
	for _, f := range att.Fields {
		if f.Title == "Target" && f.Value == "target@example.com" {
			gotTarget = true
		}
	}
	if !gotTarget {
		t.Error("expected a Target field with the scanned email")
	}
}

func TestDigestToSeverity(t *testing.T) {
	svc := NewService(Config{}, nil)

	tests := []struct {
		name  string
		stats DigestStats
		want  models.RiskLevel
	}{
		{"critical scans dominate", DigestStats{CriticalScans: 1, HighRiskScans: 5, NewBreaches: 10}, models.RiskCritical},
		{"high risk scans", DigestStats{HighRiskScans: 2, NewBreaches: 1}, models.RiskHigh},
		{"only new breaches", DigestStats{NewBreaches: 4}, models.RiskMedium},
		{"quiet day", DigestStats{ScansRun: 12}, models.RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.digestToSeverity(tt.stats); got != tt.want {
				t.Errorf("digestToSeverity() = %v, want %v", got, tt.want)
			}
		})
	}
}
