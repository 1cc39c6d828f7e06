package repositories

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/blogem/sso-demo/database"
	"github.com/blogem/sso-demo/models"
	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	// Create a temporary database for testing
	dbPath := "test_" + time.Now().Format("20060102150405.000000000") + ".db"

	// Clean up function
	t.Cleanup(func() {
		database.CloseDB()
		os.Remove(dbPath)
	})

	// Initialize test database using the actual migration system
	if err := database.InitializeDatabase(dbPath); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	return database.GetDB()
}

func TestAuditRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuditRepository(db)

	// Test Create
	event := &models.AuthEvent{
		Event:     models.AuthEventLogin,
		UserEmail: "jane@example.com",
		UserAgent: "test-agent",
		IPAddress: "192.0.2.10",
	}

	err := repo.Create(event)
	if err != nil {
		t.Fatalf("Failed to create auth event: %v", err)
	}

	if event.ID == 0 {
		t.Error("Expected event ID to be set after creation")
	}

	// Test ListByEmail
	events, err := repo.ListByEmail("jane@example.com", 10)
	if err != nil {
		t.Fatalf("Failed to list auth events: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("Expected 1 auth event, got %d", len(events))
	}
	if events[0].Event != models.AuthEventLogin {
		t.Errorf("Expected event %s, got %s", models.AuthEventLogin, events[0].Event)
	}
	if events[0].IPAddress != "192.0.2.10" {
		t.Errorf("Expected IP 192.0.2.10, got %s", events[0].IPAddress)
	}

	// Events for other users stay invisible
	events, err = repo.ListByEmail("other@example.com", 10)
	if err != nil {
		t.Fatalf("Failed to list auth events: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("Expected no auth events for other user, got %d", len(events))
	}
}

func TestAuditRepositoryOrderingAndLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuditRepository(db)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, kind := range []string{models.AuthEventLogin, models.AuthEventRefreshFailed, models.AuthEventLogout} {
		event := &models.AuthEvent{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Event:     kind,
			UserEmail: "jane@example.com",
		}
		if err := repo.Create(event); err != nil {
			t.Fatalf("Failed to create auth event: %v", err)
		}
	}

	events, err := repo.ListByEmail("jane@example.com", 2)
	if err != nil {
		t.Fatalf("Failed to list auth events: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("Expected limit of 2 auth events, got %d", len(events))
	}
	// Newest first
	if events[0].Event != models.AuthEventLogout {
		t.Errorf("Expected newest event first, got %s", events[0].Event)
	}
	if events[1].Event != models.AuthEventRefreshFailed {
		t.Errorf("Expected second newest event, got %s", events[1].Event)
	}
}
