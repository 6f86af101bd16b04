package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"sportmeet-server/models"
)

func TestNewsUpdatePatchesPresentFields(t *testing.T) {
	db := newTestDB(t)
	app := buildTestApp(t, db)
	admin := seedUser(t, db, "admin")
	token := signTestToken(t, admin)

	resp := doJSON(app, http.MethodPost, "/api/admin/news", token, `{
		"title": "Local Derby Recap",
		"summary": "Full time report.",
		"body": "Ninety minutes of it.",
		"tags": ["football", "recap"]
	}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, want 201 (body: %s)", resp.Code, resp.Body.String())
	}
	env := decodeEnvelope(t, resp)
	var item models.NewsItem
	if err := json.Unmarshal(env.Data, &item); err != nil {
		t.Fatalf("decode item: %v", err)
	}

	path := fmt.Sprintf("/api/admin/news/%d", item.ID)
	resp = doJSON(app, http.MethodPatch, path, token, `{"title": "Derby Recap, Corrected"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("update: status = %d, want 200 (body: %s)", resp.Code, resp.Body.String())
	}

	var stored models.NewsItem
	if err := db.First(&stored, item.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Title != "Derby Recap, Corrected" {
		t.Errorf("title = %q, want the patched value", stored.Title)
	}
	// Fields absent from the patch stay untouched.
	if stored.Summary != "Full time report." {
		t.Errorf("summary = %q, changed by a patch that omitted it", stored.Summary)
	}

	var audits int64
	db.Model(&models.AuditLog{}).Where("action = ?", "news.update").Count(&audits)
	if audits != 1 {
		t.Errorf("audit rows = %d, want 1", audits)
	}

	resp = doJSON(app, http.MethodPatch, "/api/admin/news/424242", token, `{"title": "x"}`)
	if resp.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", resp.Code)
	}

	resp = doJSON(app, http.MethodPatch, path, token, `{"publishedAt": "not-a-timestamp"}`)
	if resp.Code != http.StatusBadRequest {
		t.Errorf("bad publishedAt: status = %d, want 400", resp.Code)
	}
}

func TestAnnouncementUpdateTogglesVisibility(t *testing.T) {
	db := newTestDB(t)
	app := buildTestApp(t, db)
	admin := seedUser(t, db, "admin")
	plainUser := seedUser(t, db, "user")
	token := signTestToken(t, admin)

	resp := doJSON(app, http.MethodPost, "/api/admin/announcements", token, `{
		"title": "Court Maintenance",
		"body": "Riverside courts closed this weekend."
	}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, want 201 (body: %s)", resp.Code, resp.Body.String())
	}
	env := decodeEnvelope(t, resp)
	var item models.Announcement
	if err := json.Unmarshal(env.Data, &item); err != nil {
		t.Fatalf("decode item: %v", err)
	}

	path := fmt.Sprintf("/api/admin/announcements/%d", item.ID)

	// Admin gate still applies to the patch route.
	resp = doJSON(app, http.MethodPatch, path, signTestToken(t, plainUser), `{"isActive": false}`)
	if resp.Code != http.StatusForbidden {
		t.Errorf("user role: status = %d, want 403", resp.Code)
	}

	endsAt := time.Now().Add(time.Hour).Format(time.RFC3339)
	resp = doJSON(app, http.MethodPatch, path, token, fmt.Sprintf(`{"isActive": false, "endsAt": %q}`, endsAt))
	if resp.Code != http.StatusOK {
		t.Fatalf("update: status = %d, want 200 (body: %s)", resp.Code, resp.Body.String())
	}

	var stored models.Announcement
	if err := db.First(&stored, item.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.IsActive {
		t.Errorf("isActive = true, want false")
	}
	if stored.EndsAt == nil {
		t.Errorf("endsAt = nil, want the patched bound")
	}

	// A deactivated announcement drops out of the public feed.
	resp = doJSON(app, http.MethodGet, "/api/announcements", "", "")
	env = decodeEnvelope(t, resp)
	var visible []models.Announcement
	if err := json.Unmarshal(env.Data, &visible); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(visible) != 0 {
		t.Errorf("visible announcements = %d, want 0", len(visible))
	}

	// Empty string clears a window bound.
	resp = doJSON(app, http.MethodPatch, path, token, `{"endsAt": ""}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("clear bound: status = %d, want 200", resp.Code)
	}
	var cleared models.Announcement
	if err := db.First(&cleared, item.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cleared.EndsAt != nil {
		t.Errorf("endsAt = %v, want nil after clearing", cleared.EndsAt)
	}
}
