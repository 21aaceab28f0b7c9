package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bu6030/tag-note/pkg/tagnote/auth"
	"github.com/bu6030/tag-note/pkg/tagnote/models"
	"github.com/bu6030/tag-note/pkg/tagnote/notes"
	"github.com/bu6030/tag-note/pkg/tagnote/tags"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// setupFullServer creates a Gin engine with all routes registered
// This mirrors the setup in cmd/tagnote-server/main.go
func setupFullServer(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	noteService := notes.NewService(db)
	tagService := tags.NewService(db, noteService)

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "tagnote",
			})
		})

		// Auth routes (public)
		authHandler := auth.NewHandler(db)
		authHandler.RegisterRoutes(api.Group("/auth"))

		// Notes routes (protected)
		notesHandler := notes.NewHandler(noteService)
		notesHandler.RegisterRoutes(api.Group("", auth.AuthMiddleware()))

		// Tags routes (protected)
		tagsHandler := tags.NewHandler(tagService)
		tagsHandler.RegisterRoutes(api.Group("", auth.AuthMiddleware()))
	}

	return r
}

// TestServerStartup verifies that all routes can be registered without conflicts
func TestServerStartup(t *testing.T) {
	db := setupTestDB(t)

	// This will panic if there are route conflicts
	router := setupFullServer(db)

	if router == nil {
		t.Fatal("Expected router to be created")
	}
}

// TestHealthEndpoint verifies the health endpoint responds correctly
func TestHealthEndpoint(t *testing.T) {
	db := setupTestDB(t)
	router := setupFullServer(db)

	req, _ := http.NewRequest("GET", "/health", nil)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.Code)
	}
}

// TestAPIHealthEndpoint verifies the API health endpoint responds correctly
func TestAPIHealthEndpoint(t *testing.T) {
	db := setupTestDB(t)
	router := setupFullServer(db)

	req, _ := http.NewRequest("GET", "/api/health", nil)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.Code)
	}
}

// TestProtectedEndpointsRequireAuth verifies that protected endpoints return 401 without auth
func TestProtectedEndpointsRequireAuth(t *testing.T) {
	db := setupTestDB(t)
	router := setupFullServer(db)

	protectedEndpoints := []struct {
		method string
		path   string
	}{
		{"GET", "/api/notes"},
		{"POST", "/api/notes"},
		{"GET", "/api/search"},
		{"GET", "/api/stats"},
		{"GET", "/api/tags"},
	}

	for _, endpoint := range protectedEndpoints {
		t.Run(endpoint.method+" "+endpoint.path, func(t *testing.T) {
			req, _ := http.NewRequest(endpoint.method, endpoint.path, nil)
			resp := httptest.NewRecorder()

			router.ServeHTTP(resp, req)

			if resp.Code != http.StatusUnauthorized {
				t.Errorf("Expected status 401 for %s %s, got %d", endpoint.method, endpoint.path, resp.Code)
			}
		})
	}
}

// TestPublicEndpointsNoAuth verifies that public endpoints don't require auth
func TestPublicEndpointsNoAuth(t *testing.T) {
	db := setupTestDB(t)
	router := setupFullServer(db)

	publicEndpoints := []struct {
		method       string
		path         string
		expectedCode int
	}{
		{"GET", "/health", http.StatusOK},
		{"GET", "/api/health", http.StatusOK},
		{"POST", "/api/auth/register", http.StatusBadRequest}, // Bad request (no body), but not 401
		{"POST", "/api/auth/login", http.StatusBadRequest},    // Bad request (no body), but not 401
	}

	for _, endpoint := range publicEndpoints {
		t.Run(endpoint.method+" "+endpoint.path, func(t *testing.T) {
			req, _ := http.NewRequest(endpoint.method, endpoint.path, nil)
			resp := httptest.NewRecorder()

			router.ServeHTTP(resp, req)

			if resp.Code != endpoint.expectedCode {
				t.Errorf("Expected status %d for %s %s, got %d", endpoint.expectedCode, endpoint.method, endpoint.path, resp.Code)
			}
		})
	}
}

// TestFullNoteLifecycle walks register, note creation, listing and the
// tag-delete cascade through the assembled server.
func TestFullNoteLifecycle(t *testing.T) {
	db := setupTestDB(t)
	router := setupFullServer(db)

	// Register
	registerBody, _ := json.Marshal(map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
		"name":     "Alice",
	})
	req, _ := http.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(registerBody))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("Register failed: %d %s", resp.Code, resp.Body.String())
	}

	var authResp struct {
		Token string `json:"token"`
	}
	json.Unmarshal(resp.Body.Bytes(), &authResp)
	authHeader := "Bearer " + authResp.Token

	// Create a note with tags
	noteBody, _ := json.Marshal(map[string]interface{}{
		"title":   "Groceries",
		"content": "milk, eggs",
		"tags":    []string{"shopping,home"},
	})
	req, _ = http.NewRequest("POST", "/api/notes", bytes.NewBuffer(noteBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authHeader)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("Create note failed: %d %s", resp.Code, resp.Body.String())
	}

	var created struct {
		ID   uint     `json:"id"`
		Tags []string `json:"tags"`
	}
	json.Unmarshal(resp.Body.Bytes(), &created)
	if len(created.Tags) != 2 {
		t.Errorf("Expected 2 tags, got %v", created.Tags)
	}

	// List
	req, _ = http.NewRequest("GET", "/api/notes", nil)
	req.Header.Set("Authorization", authHeader)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var listed []json.RawMessage
	json.Unmarshal(resp.Body.Bytes(), &listed)
	if len(listed) != 1 {
		t.Fatalf("Expected 1 note, got %d", len(listed))
	}

	// Find one of the tags and delete it; the note must go with it
	var tag models.Tag
	if err := db.Where("name = ?", "shopping").First(&tag).Error; err != nil {
		t.Fatalf("Tag not found: %v", err)
	}

	req, _ = http.NewRequest("DELETE", fmt.Sprintf("/api/tags/%d", tag.ID), nil)
	req.Header.Set("Authorization", authHeader)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Delete tag failed: %d %s", resp.Code, resp.Body.String())
	}

	req, _ = http.NewRequest("GET", "/api/notes", nil)
	req.Header.Set("Authorization", authHeader)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	json.Unmarshal(resp.Body.Bytes(), &listed)
	if len(listed) != 0 {
		t.Errorf("Expected 0 notes after tag cascade delete, got %d", len(listed))
	}
}
