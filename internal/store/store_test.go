package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/privasee/footprint/internal/models"
)

// getTestDSN returns the test database DSN from environment
func getTestDSN() string {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost port=5432 user=footprint password=footprint_password dbname=footprint_test sslmode=disable"
	}
	return dsn
}

// skipIfNoTestDB skips the test if no test database is available
func skipIfNoTestDB(t *testing.T) *Store {
	t.Helper()

	store, err := New(Config{
		DSN:          getTestDSN(),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	})
	if err != nil {
		t.Skipf("Skipping test, database not available: %v", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		t.Skipf("Skipping test, database not reachable: %v", err)
		return nil
	}

	return store
}

func TestStore_Scans(t *testing.T) {
	store := skipIfNoTestDB(t)
	if store == nil {
		return
	}
	defer store.Close()

	ctx := context.Background()
	userID := uuid.New()

	// Create scan
	scan := &models.FootprintScan{
		UserID:      userID,
		ScanType:    models.ScanTypeFull,
		TargetEmail: "scan-test@example.com",
	}

	err := store.CreateScan(ctx, scan)
	if err != nil {
		t.Fatalf("CreateScan failed: %v", err)
	}

	if scan.ID == uuid.Nil {
		t.Error("Expected scan ID to be set")
	}
	if scan.Status != models.ScanStatusPending {
		t.Errorf("Expected status 'pending', got %s", scan.Status)
	}

	// Get scan
	retrieved, err := store.GetScan(ctx, userID, scan.ID)
	if err != nil {
		t.Fatalf("GetScan failed: %v", err)
	}
	if retrieved.TargetEmail != scan.TargetEmail {
		t.Errorf("Expected target %s, got %s", scan.TargetEmail, retrieved.TargetEmail)
	}

	// Other users must not see it
	other, err := store.GetScan(ctx, uuid.New(), scan.ID)
	if err != nil {
		t.Fatalf("GetScan (other user) failed: %v", err)
	}
	if other != nil {
		t.Error("Expected scan to be invisible to another user")
	}

	// List scans
	scans, total, err := store.ListScans(ctx, userID, ListScanFilters{Limit: 10})
	if err != nil {
		t.Fatalf("ListScans failed: %v", err)
	}
	if total == 0 || len(scans) == 0 {
		t.Error("Expected at least one scan")
	}

	// Update results
	scan.Status = models.ScanStatusCompleted
	scan.RiskScore = 65
	scan.RiskLevel = models.RiskHigh
	scan.PrivacyScore = 35
	scan.BreachCount = 1
	scan.Recommendations = models.StringArray{"Enable two-factor authentication on every account that supports it"}
	scan.ScanResults = models.JSONB{"summary": "test"}

	err = store.UpdateScanResults(ctx, scan)
	if err != nil {
		t.Fatalf("UpdateScanResults failed: %v", err)
	}

	retrieved, _ = store.GetScan(ctx, userID, scan.ID)
	if retrieved.RiskScore != 65 || retrieved.RiskLevel != models.RiskHigh {
		t.Errorf("Expected risk 65/high, got %d/%s", retrieved.RiskScore, retrieved.RiskLevel)
	}
	if retrieved.CompletedAt == nil {
		t.Error("Expected completed_at to be set")
	}

	// Cleanup
	err = store.DeleteScan(ctx, userID, scan.ID)
	if err != nil {
		t.Fatalf("DeleteScan failed: %v", err)
	}

	retrieved, _ = store.GetScan(ctx, userID, scan.ID)
	if retrieved != nil {
		t.Error("Expected scan to be deleted")
	}
}

func TestStore_BreachRecords(t *testing.T) {
	store := skipIfNoTestDB(t)
	if store == nil {
		return
	}
	defer store.Close()

	ctx := context.Background()
	userID := uuid.New()

	scan := &models.FootprintScan{
		UserID:      userID,
		ScanType:    models.ScanTypeBreachCheck,
		TargetEmail: "breach-test@example.com",
	}
	store.CreateScan(ctx, scan)
	defer store.DeleteScan(ctx, userID, scan.ID)

	breachDate := time.Date(2013, 10, 4, 0, 0, 0, 0, time.UTC)
	record := &models.BreachRecord{
		ScanID:      scan.ID,
		Name:        "Adobe",
		BreachDate:  &breachDate,
		DataClasses: models.StringArray{"Email addresses", "Passwords"},
		Severity:    models.RiskCritical,
		Verified:    true,
		Source:      "hibp",
	}

	err := store.CreateBreachRecord(ctx, record)
	if err != nil {
		t.Fatalf("CreateBreachRecord failed: %v", err)
	}

	records, err := store.ListBreachRecords(ctx, scan.ID)
	if err != nil {
		t.Fatalf("ListBreachRecords failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Severity != models.RiskCritical {
		t.Errorf("Expected severity critical, got %s", records[0].Severity)
	}
	if len(records[0].DataClasses) != 2 {
		t.Errorf("Expected 2 data classes, got %v", records[0].DataClasses)
	}

	// Re-check replaces findings
	err = store.DeleteBreachRecords(ctx, scan.ID)
	if err != nil {
		t.Fatalf("DeleteBreachRecords failed: %v", err)
	}
	records, _ = store.ListBreachRecords(ctx, scan.ID)
	if len(records) != 0 {
		t.Error("Expected breach records to be cleared")
	}
}

func TestStore_SocialExposures(t *testing.T) {
	store := skipIfNoTestDB(t)
	if store == nil {
		return
	}
	defer store.Close()

	ctx := context.Background()
	userID := uuid.New()

	scan := &models.FootprintScan{
		UserID:      userID,
		ScanType:    models.ScanTypeSocial,
		TargetEmail: "social-test@example.com",
	}
	store.CreateScan(ctx, scan)
	defer store.DeleteScan(ctx, userID, scan.ID)

	exposure := &models.SocialExposure{
		ScanID:       scan.ID,
		Platform:     "facebook",
		ExposureType: models.ExposureLocationData,
		RiskLevel:    models.RiskHigh,
		Details:      models.JSONB{"description": "Recent posts carry precise location tags"},
	}

	err := store.CreateSocialExposure(ctx, exposure)
	if err != nil {
		t.Fatalf("CreateSocialExposure failed: %v", err)
	}

	exposures, err := store.ListSocialExposures(ctx, scan.ID)
	if err != nil {
		t.Fatalf("ListSocialExposures failed: %v", err)
	}
	if len(exposures) != 1 {
		t.Fatalf("Expected 1 exposure, got %d", len(exposures))
	}
	if exposures[0].ExposureType != models.ExposureLocationData {
		t.Errorf("Expected location_data, got %s", exposures[0].ExposureType)
	}
}

func TestStore_TextAnalyses(t *testing.T) {
	store := skipIfNoTestDB(t)
	if store == nil {
		return
	}
	defer store.Close()

	ctx := context.Background()
	userID := uuid.New()

	analysis := &models.TextAnalysis{
		UserID:    userID,
		InputText: "mail me at a@b.com",
		Entities: models.JSONB{
			"items": []map[string]interface{}{{"label": "email"}},
		},
		Categories:   models.StringArray{"Email Address"},
		RiskScore:    5,
		RiskLevel:    models.RiskMedium,
		PrivacyScore: 90,
		Source:       "pattern",
	}

	err := store.CreateTextAnalysis(ctx, analysis)
	if err != nil {
		t.Fatalf("CreateTextAnalysis failed: %v", err)
	}

	retrieved, err := store.GetTextAnalysis(ctx, userID, analysis.ID)
	if err != nil {
		t.Fatalf("GetTextAnalysis failed: %v", err)
	}
	if retrieved.RiskLevel != models.RiskMedium {
		t.Errorf("Expected risk level medium, got %s", retrieved.RiskLevel)
	}

	analyses, total, err := store.ListTextAnalyses(ctx, userID, 10, 0)
	if err != nil {
		t.Fatalf("ListTextAnalyses failed: %v", err)
	}
	if total == 0 || len(analyses) == 0 {
		t.Error("Expected at least one analysis")
	}
}

func TestStore_Consent(t *testing.T) {
	store := skipIfNoTestDB(t)
	if store == nil {
		return
	}
	defer store.Close()

	ctx := context.Background()
	userID := uuid.New()

	// Absent by default
	consent, err := store.GetConsent(ctx, userID)
	if err != nil {
		t.Fatalf("GetConsent failed: %v", err)
	}
	if consent != nil {
		t.Error("Expected no consent record for new user")
	}

	// Save then read back
	err = store.UpsertConsent(ctx, &models.ConsentRecord{
		UserID:         userID,
		DataProcessing: true,
		BreachLookup:   true,
	})
	if err != nil {
		t.Fatalf("UpsertConsent failed: %v", err)
	}

	consent, _ = store.GetConsent(ctx, userID)
	if consent == nil || !consent.BreachLookup || consent.SocialScan {
		t.Errorf("Unexpected consent record: %+v", consent)
	}

	// Update in place
	err = store.UpsertConsent(ctx, &models.ConsentRecord{
		UserID:         userID,
		DataProcessing: true,
		BreachLookup:   true,
		SocialScan:     true,
	})
	if err != nil {
		t.Fatalf("UpsertConsent (update) failed: %v", err)
	}

	consent, _ = store.GetConsent(ctx, userID)
	if consent == nil || !consent.SocialScan {
		t.Error("Expected social_scan consent after update")
	}
}

func TestStore_UpdateScanBreachCount(t *testing.T) {
	store := skipIfNoTestDB(t)
	if store == nil {
		return
	}
	defer store.Close()

	ctx := context.Background()
	userID := uuid.New()

	scan := &models.FootprintScan{
		UserID:      userID,
		ScanType:    models.ScanTypeBreachCheck,
		TargetEmail: "counter-test@example.com",
	}
	store.CreateScan(ctx, scan)
	defer store.DeleteScan(ctx, userID, scan.ID)

	err := store.UpdateScanBreachCount(ctx, scan.ID, 3)
	if err != nil {
		t.Fatalf("UpdateScanBreachCount failed: %v", err)
	}

	retrieved, err := store.GetScan(ctx, userID, scan.ID)
	if err != nil {
		t.Fatalf("GetScan failed: %v", err)
	}
	if retrieved.BreachCount != 3 {
		t.Errorf("Expected breach count 3, got %d", retrieved.BreachCount)
	}

	// A breach check alone must not finish the scan
	if retrieved.Status != models.ScanStatusPending {
		t.Errorf("Expected status to stay 'pending', got %s", retrieved.Status)
	}
	if retrieved.CompletedAt != nil {
		t.Error("Expected completed_at to stay unset")
	}
}
