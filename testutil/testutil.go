// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/treat-pageant/auth"
	"github.com/danielhkuo/treat-pageant/cliparse"
	"github.com/danielhkuo/treat-pageant/db"
	"github.com/danielhkuo/treat-pageant/models"
)

// Admin credentials accepted by GetTestConfig
const (
	AdminEmail    = "admin@mrandmisstreat.test"
	AdminPassword = "crown-the-queen"
)

// Now is the fixed instant handlers see through clock.Fixed in tests
var Now = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

var (
	adminHashOnce sync.Once
	adminHash     string
)

func adminPasswordHash() string {
	adminHashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		adminHash = string(h)
	})
	return adminHash
}

// SetupTestDB creates a fresh SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "treat.db")
	conn, err := db.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                 3318,
		DatabaseURL:          "treat.db",
		DatabaseType:         "sqlite",
		HashSalt:             "test-hash-salt",
		JWTSecret:            "test-jwt-secret",
		AdminEmail:           AdminEmail,
		AdminPasswordHash:    adminPasswordHash(),
		PublicBaseURL:        "https://mrandmisstreat.test",
		EventYear:            2025,
		RegistrationOpen:     true,
		VoteCost:             100,
		VoteCurrency:         "NGN",
		VotingTimezone:       "Africa/Lagos",
		PaymentProvider:      "stub",
		PaymentWebhookSecret: "test-webhook-secret",
		PaymentCustomerEmail: "votes@mrandmisstreat.test",
		StorageBackend:       "local",
		MaxUploadBytes:       8 << 20,
	}
}

// AdminToken returns a valid bearer token for the test admin
func AdminToken(t *testing.T, cfg cliparse.Config) string {
	t.Helper()

	token, _, err := auth.IssueAdminToken(cfg.AdminEmail, cfg.JWTSecret, Now)
	if err != nil {
		t.Fatalf("Failed to issue admin token: %v", err)
	}
	return token
}

// CreateTestContestant inserts a contestant for the config's event year and returns its ID
func CreateTestContestant(t *testing.T, conn *sql.DB, cfg cliparse.Config, name string, number int, votes int64) string {
	t.Helper()

	id, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO contestant (id, name, contestant_number, state, votes, event_year, created_at)
		VALUES ($1, $2, $3, 'Rivers', $4, $5, $6)
	`, id, name, number, votes, cfg.EventYear, Now)
	if err != nil {
		t.Fatalf("Failed to create test contestant: %v", err)
	}

	return id
}

// CreateTestPayment inserts a payment and returns its tx_ref
func CreateTestPayment(t *testing.T, conn *sql.DB, contestantID string, votes int, amount int64, status string) string {
	t.Helper()

	txRef := auth.GenerateTxRef()
	_, err := conn.Exec(`
		INSERT INTO payment (tx_ref, contestant_id, votes, amount, currency, provider, status, created_at)
		VALUES ($1, $2, $3, $4, 'NGN', 'stub', $5, $6)
	`, txRef, contestantID, votes, amount, status, Now)
	if err != nil {
		t.Fatalf("Failed to create test payment: %v", err)
	}

	return txRef
}

// CreateTestRegistration inserts a registration with the given approval
// status (nil leaves the column NULL) and returns its ID
func CreateTestRegistration(t *testing.T, conn *sql.DB, fullName string, status *string, year int, createdAt time.Time) string {
	t.Helper()

	id, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO registration (
			id, full_name, email, whatsapp_number, instagram, tiktok, facebook, age, height,
			winner_response, state, dob, address, lga, added_info,
			portrait_url, payment_proof_url, approval_status, event_year, created_at
		) VALUES ($1, $2, 'entrant@example.com', '08012345678', '@ig', '@tt', 'fb', '21', '170cm',
			'I will champion youth education.', 'Rivers', '2003-04-05', '1 Aba Road', 'Obio-Akpor', 'None',
			'https://files.test/p.png', 'https://files.test/proof.pdf', $3, $4, $5)
	`, id, fullName, status, year, createdAt)
	if err != nil {
		t.Fatalf("Failed to create test registration: %v", err)
	}

	return id
}

// CreateTestMessage inserts a contact message and returns its ID
func CreateTestMessage(t *testing.T, conn *sql.DB, name, status string, createdAt time.Time) string {
	t.Helper()

	id, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO message (id, name, email, message, status, created_at)
		VALUES ($1, $2, 'someone@example.com', 'Hello there, when is the show?', $3, $4)
	`, id, name, status, createdAt)
	if err != nil {
		t.Fatalf("Failed to create test message: %v", err)
	}

	return id
}

// ContestantVotes reads a contestant's vote count
func ContestantVotes(t *testing.T, conn *sql.DB, id string) int64 {
	t.Helper()

	var votes int64
	if err := conn.QueryRow(`SELECT votes FROM contestant WHERE id = $1`, id).Scan(&votes); err != nil {
		t.Fatalf("Failed to read votes: %v", err)
	}
	return votes
}

// PaymentStatus reads a payment's status
func PaymentStatus(t *testing.T, conn *sql.DB, txRef string) string {
	t.Helper()

	var status string
	if err := conn.QueryRow(`SELECT status FROM payment WHERE tx_ref = $1`, txRef).Scan(&status); err != nil {
		t.Fatalf("Failed to read payment status: %v", err)
	}
	return status
}

// CountRows returns the number of rows in table
func CountRows(t *testing.T, conn *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// File is one part of a multipart test request
type File struct {
	Field string
	Name  string
	Data  []byte
}

// Minimal payloads that http.DetectContentType recognizes
var (
	PNGData  = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	JPEGData = append([]byte("\xff\xd8\xff\xe0"), bytes.Repeat([]byte{0}, 64)...)
	PDFData  = []byte("%PDF-1.4\n%test\n")
	TextData = []byte("just some text, not an image")
)

// MakeMultipartRequest builds a multipart/form-data request
func MakeMultipartRequest(method, path string, fields map[string]string, files []File, headers map[string]string) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	for _, f := range files {
		part, _ := mw.CreateFormFile(f.Field, f.Name)
		_, _ = part.Write(f.Data)
	}
	_ = mw.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertErrorFields decodes a validation error and returns its field messages
func AssertErrorFields(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var resp models.ErrorResponse
	AssertJSON(t, w, &resp)
	return resp.Fields
}
