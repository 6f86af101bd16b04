package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kataras/iris/v12"

	"sportmeet-server/models"
	"sportmeet-server/services"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func doJSON(app *iris.Application, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body: %s)", err, resp.Body.String())
	}
	return env
}

func TestCreateEventIgnoresClientStatus(t *testing.T) {
	db := newTestDB(t)
	app := buildTestApp(t, db)
	user := seedUser(t, db, "user")
	sport := seedSport(t, db)
	token := signTestToken(t, user)

	eventDate := time.Now().AddDate(0, 0, 5).Format("2006-01-02")
	// Client-supplied moderation fields must be ignored outright.
	body := fmt.Sprintf(`{
		"sportID": %d,
		"title": "Pickup Basketball",
		"description": "Casual 3v3.",
		"locationName": "Riverside Court",
		"eventDate": %q,
		"startTime": "17:00",
		"endTime": "19:00",
		"maxParticipants": 6,
		"status": "inactive",
		"approvalStatus": "approved"
	}`, sport.ID, eventDate)

	resp := doJSON(app, http.MethodPost, "/api/events", token, body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %s)", resp.Code, resp.Body.String())
	}
	env := decodeEnvelope(t, resp)
	if !env.Success {
		t.Fatalf("success = false")
	}

	var event models.Event
	if err := json.Unmarshal(env.Data, &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if event.ApprovalStatus != models.ApprovalPending {
		t.Errorf("approvalStatus = %q, want pending", event.ApprovalStatus)
	}
	if event.Status != models.EventStatusActive {
		t.Errorf("status = %q, want active", event.Status)
	}
	if event.Slug != "pickup-basketball" {
		t.Errorf("slug = %q", event.Slug)
	}
}

func TestCreateEventValidation(t *testing.T) {
	db := newTestDB(t)
	app := buildTestApp(t, db)
	user := seedUser(t, db, "user")
	token := signTestToken(t, user)

	// Missing required fields.
	resp := doJSON(app, http.MethodPost, "/api/events", token, `{"title": "No details"}`)
	if resp.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 (body: %s)", resp.Code, resp.Body.String())
	}

	// No credential at all.
	resp = doJSON(app, http.MethodPost, "/api/events", "", `{}`)
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want 401", resp.Code)
	}
}

func TestModerationRBAC(t *testing.T) {
	db := newTestDB(t)
	app := buildTestApp(t, db)
	creator := seedUser(t, db, "user")
	plainUser := seedUser(t, db, "user")
	admin := seedUser(t, db, "admin")
	sport := seedSport(t, db)

	event, err := services.NewEventService(db).Create(creator.ID, services.CreateEventInput{
		SportID:      sport.ID,
		Title:        "Morning Yoga",
		Description:  "Sunrise session.",
		LocationName: "East Lawn",
		EventDate:    time.Now().AddDate(0, 0, 3),
		StartTime:    "07:00",
		EndTime:      "08:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	approvePath := fmt.Sprintf("/api/admin/events/%d/approve", event.ID)

	resp := doJSON(app, http.MethodPost, approvePath, "", "")
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", resp.Code)
	}

	resp = doJSON(app, http.MethodPost, approvePath, signTestToken(t, plainUser), "")
	if resp.Code != http.StatusForbidden {
		t.Errorf("user role: status = %d, want 403", resp.Code)
	}

	resp = doJSON(app, http.MethodPost, approvePath, signTestToken(t, admin), "")
	if resp.Code != http.StatusOK {
		t.Fatalf("admin approve: status = %d, want 200 (body: %s)", resp.Code, resp.Body.String())
	}

	// Terminal state: a second decision must be refused.
	resp = doJSON(app, http.MethodPost, approvePath, signTestToken(t, admin), "")
	if resp.Code != http.StatusConflict {
		t.Errorf("second approve: status = %d, want 409 (body: %s)", resp.Code, resp.Body.String())
	}

	// The moderation decision is audited.
	var audits int64
	db.Model(&models.AuditLog{}).Where("action = ?", "event.approve").Count(&audits)
	if audits != 1 {
		t.Errorf("audit rows = %d, want 1", audits)
	}
}

func TestJoinLeaveOverHTTP(t *testing.T) {
	db := newTestDB(t)
	app := buildTestApp(t, db)
	creator := seedUser(t, db, "user")
	joiner := seedUser(t, db, "user")
	admin := seedUser(t, db, "admin")
	sport := seedSport(t, db)

	eventService := services.NewEventService(db)
	event, err := eventService.Create(creator.ID, services.CreateEventInput{
		SportID:         sport.ID,
		Title:           "Evening Run",
		Description:     "10k along the river.",
		LocationName:    "Harbor Loop",
		EventDate:       time.Now().AddDate(0, 0, 2),
		StartTime:       "19:00",
		EndTime:         "20:30",
		MaxParticipants: 1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	joinPath := fmt.Sprintf("/api/events/%d/join", event.ID)
	leavePath := fmt.Sprintf("/api/events/%d/leave", event.ID)
	token := signTestToken(t, joiner)

	// Not approved yet: join is refused.
	resp := doJSON(app, http.MethodPost, joinPath, token, "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("join pending event: status = %d, want 400", resp.Code)
	}

	doJSON(app, http.MethodPost, fmt.Sprintf("/api/admin/events/%d/approve", event.ID), signTestToken(t, admin), "")

	resp = doJSON(app, http.MethodPost, joinPath, token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("join: status = %d, want 200 (body: %s)", resp.Code, resp.Body.String())
	}

	resp = doJSON(app, http.MethodPost, joinPath, token, "")
	env := decodeEnvelope(t, resp)
	if resp.Code != http.StatusBadRequest || env.Error != "already_participating" {
		t.Errorf("duplicate join: status = %d error = %q, want 400/already_participating", resp.Code, env.Error)
	}

	// Capacity is 1; a second user is rejected explicitly.
	other := seedUser(t, db, "user")
	resp = doJSON(app, http.MethodPost, joinPath, signTestToken(t, other), "")
	env = decodeEnvelope(t, resp)
	if resp.Code != http.StatusBadRequest || env.Error != "event_full" {
		t.Errorf("full join: status = %d error = %q, want 400/event_full", resp.Code, env.Error)
	}

	resp = doJSON(app, http.MethodPost, leavePath, token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("leave: status = %d, want 200", resp.Code)
	}
	resp = doJSON(app, http.MethodPost, leavePath, token, "")
	env = decodeEnvelope(t, resp)
	if resp.Code != http.StatusBadRequest || env.Error != "not_participating" {
		t.Errorf("second leave: status = %d error = %q, want 400/not_participating", resp.Code, env.Error)
	}
}

func TestGetEventAndSlugLookup(t *testing.T) {
	db := newTestDB(t)
	app := buildTestApp(t, db)
	creator := seedUser(t, db, "user")
	sport := seedSport(t, db)

	event, err := services.NewEventService(db).Create(creator.ID, services.CreateEventInput{
		SportID:      sport.ID,
		Title:        "Chess in the Park",
		Description:  "Open boards.",
		LocationName: "North Plaza",
		EventDate:    time.Now().AddDate(0, 0, 1),
		StartTime:    "14:00",
		EndTime:      "18:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	resp := doJSON(app, http.MethodGet, fmt.Sprintf("/api/events/%d", event.ID), "", "")
	if resp.Code != http.StatusOK {
		t.Errorf("get by id: status = %d, want 200", resp.Code)
	}
	resp = doJSON(app, http.MethodGet, "/api/events/slug/chess-in-the-park", "", "")
	if resp.Code != http.StatusOK {
		t.Errorf("get by slug: status = %d, want 200", resp.Code)
	}
	resp = doJSON(app, http.MethodGet, "/api/events/slug/no-such-event", "", "")
	if resp.Code != http.StatusNotFound {
		t.Errorf("unknown slug: status = %d, want 404", resp.Code)
	}
	resp = doJSON(app, http.MethodGet, "/api/events/424242", "", "")
	if resp.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", resp.Code)
	}
}

func TestSweepEndpoint(t *testing.T) {
	db := newTestDB(t)
	app := buildTestApp(t, db)
	creator := seedUser(t, db, "user")
	admin := seedUser(t, db, "admin")
	sport := seedSport(t, db)

	_, err := services.NewEventService(db).Create(creator.ID, services.CreateEventInput{
		SportID:      sport.ID,
		Title:        "Never Reviewed",
		Description:  "Expired while pending.",
		LocationName: "Old Field",
		EventDate:    time.Now().AddDate(0, 0, -3),
		StartTime:    "10:00",
		EndTime:      "12:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	token := signTestToken(t, admin)
	resp := doJSON(app, http.MethodPost, "/api/admin/events/sweep-expired", token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("sweep: status = %d, want 200 (body: %s)", resp.Code, resp.Body.String())
	}
	env := decodeEnvelope(t, resp)
	var data struct {
		Count int64 `json:"count"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Count != 1 {
		t.Errorf("count = %d, want 1", data.Count)
	}

	// Second run has nothing left.
	resp = doJSON(app, http.MethodPost, "/api/admin/events/sweep-expired", token, "")
	env = decodeEnvelope(t, resp)
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Count != 0 {
		t.Errorf("second count = %d, want 0", data.Count)
	}
}
