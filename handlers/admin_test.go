// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/treat-pageant/middleware"
	"github.com/danielhkuo/treat-pageant/models"
	"github.com/danielhkuo/treat-pageant/testutil"
)

func strPtr(s string) *string { return &s }

func TestLogin(t *testing.T) {
	tests := []struct {
		name           string
		body           models.LoginRequest
		expectedStatus int
	}{
		{"valid credentials", models.LoginRequest{Email: testutil.AdminEmail, Password: testutil.AdminPassword}, http.StatusOK},
		{"email is case insensitive", models.LoginRequest{Email: strings.ToUpper(testutil.AdminEmail), Password: testutil.AdminPassword}, http.StatusOK},
		{"wrong password", models.LoginRequest{Email: testutil.AdminEmail, Password: "wrong"}, http.StatusUnauthorized},
		{"unknown email", models.LoginRequest{Email: "someone@else.test", Password: testutil.AdminPassword}, http.StatusUnauthorized},
		{"missing password", models.LoginRequest{Email: testutil.AdminEmail}, http.StatusBadRequest},
		{"missing email", models.LoginRequest{Password: testutil.AdminPassword}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			defer db.Close()

			handler := NewAdminHandler(db, testutil.GetTestConfig(), testClock)
			w := httptest.NewRecorder()
			handler.Login(w, testutil.MakeRequest("POST", "/admin/login", tt.body, nil))
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusOK {
				var resp models.LoginResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Token == "" || !resp.ExpiresAt.After(testutil.Now) {
					t.Errorf("login response = %+v", resp)
				}
			}
		})
	}
}

func TestSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewAdminHandler(db, cfg, testClock)
	protected := middleware.RequireAdmin(cfg.JWTSecret, testClock.Now, handler.Session)

	w := httptest.NewRecorder()
	protected(w, testutil.MakeRequest("GET", "/admin/session", nil, map[string]string{
		"Authorization": "Bearer " + testutil.AdminToken(t, cfg),
	}))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.SessionResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Email != cfg.AdminEmail {
		t.Errorf("email = %q, want %q", resp.Email, cfg.AdminEmail)
	}

	w = httptest.NewRecorder()
	protected(w, testutil.MakeRequest("GET", "/admin/session", nil, nil))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	w = httptest.NewRecorder()
	handler.Session(w, testutil.MakeRequest("GET", "/admin/session", nil, nil))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestListRegistrations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	older := testutil.Now.Add(-48 * time.Hour)
	testutil.CreateTestRegistration(t, db, "Ada Legacy", nil, 2024, older)
	testutil.CreateTestRegistration(t, db, "Bola Pending", strPtr(models.ApprovalPending), 2025, older)
	testutil.CreateTestRegistration(t, db, "Chi Newer", strPtr(models.ApprovalPending), 2025, testutil.Now)
	testutil.CreateTestRegistration(t, db, "Dayo Accepted", strPtr(models.ApprovalAccepted), 2025, testutil.Now)
	testutil.CreateTestRegistration(t, db, "Efe Rejected", strPtr(models.ApprovalRejected), 2024, older)

	handler := NewAdminHandler(db, testutil.GetTestConfig(), testClock)
	w := httptest.NewRecorder()
	handler.ListRegistrations(w, testutil.MakeRequest("GET", "/admin/registrations", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.RegistrationDashboard
	testutil.AssertJSON(t, w, &resp)

	want := map[string]int{models.ApprovalPending: 3, models.ApprovalAccepted: 1, models.ApprovalRejected: 1}
	for k, v := range want {
		if resp.Counts[k] != v {
			t.Errorf("counts[%s] = %d, want %d", k, resp.Counts[k], v)
		}
	}

	if len(resp.Pending) != 2 || resp.Pending[0].Year != 2025 || resp.Pending[1].Year != 2024 {
		t.Fatalf("pending groups = %+v", resp.Pending)
	}
	if got := resp.Pending[0].Data; len(got) != 2 || got[0].FullName != "Chi Newer" {
		t.Errorf("2025 pending = %+v", got)
	}
	if got := resp.Pending[1].Data[0]; got.FullName != "Ada Legacy" || got.ApprovalStatus != models.ApprovalPending {
		t.Errorf("NULL status registration = %+v", got)
	}
	if len(resp.Accepted) != 1 || len(resp.Rejected) != 1 {
		t.Errorf("accepted = %+v, rejected = %+v", resp.Accepted, resp.Rejected)
	}
}

func TestUpdateApproval(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		status         string
		expectedStatus int
		wantReviewed   bool
	}{
		{"accept", "", models.ApprovalAccepted, http.StatusOK, true},
		{"reject", "", models.ApprovalRejected, http.StatusOK, true},
		{"back to pending", "", models.ApprovalPending, http.StatusOK, false},
		{"unknown status", "", "maybe", http.StatusBadRequest, false},
		{"unknown registration", "missing", models.ApprovalAccepted, http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			defer db.Close()

			regID := testutil.CreateTestRegistration(t, db, "Ada", nil, 2025, testutil.Now)
			id := regID
			if tt.id != "" {
				id = tt.id
			}

			handler := NewAdminHandler(db, testutil.GetTestConfig(), testClock)
			req := testutil.MakeRequest("PATCH", "/admin/registrations/"+id+"/approval",
				models.UpdateApprovalRequest{Status: tt.status}, nil)
			req.SetPathValue("id", id)
			w := httptest.NewRecorder()
			handler.UpdateApproval(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus != http.StatusOK {
				return
			}

			var status string
			var reviewed sql.NullTime
			if err := db.QueryRow(`SELECT approval_status, reviewed_at FROM registration WHERE id = $1`, regID).
				Scan(&status, &reviewed); err != nil {
				t.Fatalf("query registration: %v", err)
			}
			if status != tt.status {
				t.Errorf("approval_status = %q, want %q", status, tt.status)
			}
			if reviewed.Valid != tt.wantReviewed {
				t.Errorf("reviewed_at = %v, want set = %v", reviewed.Time, tt.wantReviewed)
			}
		})
	}
}

func TestExportRegistrations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	testutil.CreateTestRegistration(t, db, "Ada, the First", strPtr(models.ApprovalAccepted), 2025, testutil.Now)
	testutil.CreateTestRegistration(t, db, "Old Entrant", nil, 2024, testutil.Now)

	handler := NewAdminHandler(db, testutil.GetTestConfig(), testClock)

	w := httptest.NewRecorder()
	handler.ExportRegistrations(w, testutil.MakeRequest("GET", "/admin/registrations/export.csv", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "registrations-2025.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	records, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want header + 1", len(records))
	}
	if records[0][1] != "full_name" || records[1][1] != "Ada, the First" {
		t.Errorf("records = %v", records)
	}

	w = httptest.NewRecorder()
	handler.ExportRegistrations(w, testutil.MakeRequest("GET", "/admin/registrations/export.csv?year=2024", nil, nil))
	records, err = csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 || records[1][19] != models.ApprovalPending {
		t.Errorf("2024 records = %v", records)
	}

	w = httptest.NewRecorder()
	handler.ExportRegistrations(w, testutil.MakeRequest("GET", "/admin/registrations/export.csv?year=last", nil, nil))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestExportRegistrations_FormulaCells(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	testutil.CreateTestRegistration(t, db, `=HYPERLINK("http://evil.example","x")`, nil, 2025, testutil.Now)

	handler := NewAdminHandler(db, testutil.GetTestConfig(), testClock)

	w := httptest.NewRecorder()
	handler.ExportRegistrations(w, testutil.MakeRequest("GET", "/admin/registrations/export.csv", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	records, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want header + 1", len(records))
	}
	if got := records[1][1]; got != `'=HYPERLINK("http://evil.example","x")` {
		t.Errorf("full_name cell = %q, want quoted formula", got)
	}
}

func TestCSVCell(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Ada Obi", "Ada Obi"},
		{"", ""},
		{"=1+1", "'=1+1"},
		{"+2348012345678", "'+2348012345678"},
		{"-5", "'-5"},
		{"@SUM(A1)", "'@SUM(A1)"},
		{"\tcmd", "'\tcmd"},
		{"a=b", "a=b"},
	}
	for _, tt := range tests {
		if got := csvCell(tt.in); got != tt.want {
			t.Errorf("csvCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMessages(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	unread := testutil.CreateTestMessage(t, db, "Ngozi", models.MessageUnread, testutil.Now)
	testutil.CreateTestMessage(t, db, "Tunde", models.MessageRead, testutil.Now.Add(-time.Hour))

	handler := NewAdminHandler(db, testutil.GetTestConfig(), testClock)

	w := httptest.NewRecorder()
	handler.ListMessages(w, testutil.MakeRequest("GET", "/admin/messages", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.MessageDashboard
	testutil.AssertJSON(t, w, &resp)
	if resp.Counts[models.MessageUnread] != 1 || resp.Counts[models.MessageRead] != 1 {
		t.Errorf("counts = %v", resp.Counts)
	}

	markRead := func(id string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/admin/messages/"+id+"/read", nil, nil)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		handler.MarkMessageRead(w, req)
		return w
	}

	testutil.AssertStatus(t, markRead(unread), http.StatusOK)
	testutil.AssertStatus(t, markRead(unread), http.StatusOK)
	testutil.AssertStatus(t, markRead("missing"), http.StatusNotFound)

	w = httptest.NewRecorder()
	handler.ListMessages(w, testutil.MakeRequest("GET", "/admin/messages", nil, nil))
	resp = models.MessageDashboard{}
	testutil.AssertJSON(t, w, &resp)
	if resp.Counts[models.MessageRead] != 2 || len(resp.Unread) != 0 {
		t.Errorf("after mark read: %+v", resp)
	}
	if resp.Read[0].ReadAt == nil {
		t.Error("read_at not set")
	}
}

func TestSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	id := testutil.CreateTestContestant(t, db, cfg, "Ada", 1, 40)
	testutil.CreateTestContestant(t, db, cfg, "Bola", 2, 2)
	testutil.CreateTestPayment(t, db, id, 10, 1000, models.PaymentSuccessful)
	testutil.CreateTestPayment(t, db, id, 5, 500, models.PaymentSuccessful)
	testutil.CreateTestPayment(t, db, id, 5, 500, models.PaymentPending)

	lastYear := cfg
	lastYear.EventYear--
	oldID := testutil.CreateTestContestant(t, db, lastYear, "Old Queen", 9, 300)
	testutil.CreateTestPayment(t, db, oldID, 300, 30000, models.PaymentSuccessful)

	testutil.CreateTestRegistration(t, db, "Ada", nil, 2025, testutil.Now)
	testutil.CreateTestRegistration(t, db, "Bola", strPtr(models.ApprovalPending), 2025, testutil.Now)
	testutil.CreateTestRegistration(t, db, "Chi", strPtr(models.ApprovalAccepted), 2025, testutil.Now)
	testutil.CreateTestMessage(t, db, "Ngozi", models.MessageUnread, testutil.Now)

	handler := NewAdminHandler(db, cfg, testClock)
	w := httptest.NewRecorder()
	handler.Summary(w, testutil.MakeRequest("GET", "/admin/summary", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.AdminSummary
	testutil.AssertJSON(t, w, &resp)
	if resp.Registrations[models.ApprovalPending] != 2 || resp.Registrations[models.ApprovalAccepted] != 1 ||
		resp.Registrations[models.ApprovalRejected] != 0 {
		t.Errorf("registrations = %v", resp.Registrations)
	}
	if resp.Messages[models.MessageUnread] != 1 || resp.Messages[models.MessageRead] != 0 {
		t.Errorf("messages = %v", resp.Messages)
	}
	if resp.TotalVotes != 42 || resp.SuccessfulPayments != 2 || resp.Revenue != 1500 {
		t.Errorf("summary = %+v", resp)
	}
	if resp.RevenueDisplay == "" {
		t.Error("revenue_display is empty")
	}
}
