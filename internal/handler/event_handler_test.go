package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/mirrordash/internal/model"
	"github.com/hitoshi/mirrordash/internal/repository"
)

// fakeEventRepo はテスト用のインメモリ実装。
type fakeEventRepo struct {
	events    map[string]*model.CalendarEvent
	created   *model.CalendarEvent
	updated   *model.CalendarEvent
	updatedID string
	createErr error
	updateOK  bool
	deleteOK  bool
	deleteErr error
}

var _ repository.EventRepository = (*fakeEventRepo)(nil)

func (f *fakeEventRepo) Create(ctx context.Context, event *model.CalendarEvent) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = event
	return "new-id", nil
}

func (f *fakeEventRepo) FindByID(ctx context.Context, id string) (*model.CalendarEvent, error) {
	return f.events[id], nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, event *model.CalendarEvent) (bool, error) {
	f.updatedID = id
	f.updated = event
	return f.updateOK, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	return f.deleteOK, nil
}

func (f *fakeEventRepo) ListAll(ctx context.Context) ([]*model.CalendarEvent, error) {
	return nil, nil
}

func newEventTestRouter(repo *fakeEventRepo) http.Handler {
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	h := NewEventHandler(repo, logger)

	r := chi.NewRouter()
	r.Post("/event/save", h.SaveEvent)
	r.Get("/event/{id}", h.GetEvent)
	r.Post("/event/{id}/delete", h.DeleteEvent)
	return r
}

func postForm(t *testing.T, router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// flashFromResponse はレスポンスの通知バナークッキーを読み取る。
func flashFromResponse(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == flashCookieName && cookie.MaxAge > 0 {
			value, err := url.QueryUnescape(cookie.Value)
			if err != nil {
				t.Fatalf("クッキー値のデコードに失敗: %v", err)
			}
			return value
		}
	}
	return ""
}

func TestGetEvent_Found(t *testing.T) {
	repo := &fakeEventRepo{events: map[string]*model.CalendarEvent{
		"abc": {ID: "abc", Title: "Meeting", StartDate: "2026-09-10", StartTime: "09:00"},
	}}
	router := newEventTestRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/event/abc", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp eventResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("レスポンスのパースに失敗: %v", err)
	}
	if resp.Title != "Meeting" || resp.StartDate != "2026-09-10" {
		t.Errorf("レスポンス = %+v", resp)
	}
	if resp.StartTime == nil || *resp.StartTime != "09:00" {
		t.Errorf("StartTime = %v, want 09:00", resp.StartTime)
	}
	if resp.EndDate != nil {
		t.Errorf("未設定のEndDateはnullになるべき: %v", *resp.EndDate)
	}
	if resp.Priority != "medium" {
		t.Errorf("Priority = %q, want medium", resp.Priority)
	}
}

// 未検出と不正ID形式はどちらも404になることを検証
func TestGetEvent_NotFound(t *testing.T) {
	router := newEventTestRouter(&fakeEventRepo{events: map[string]*model.CalendarEvent{}})

	for _, id := range []string{"missing-id", "not-a-uuid"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/event/"+id, nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("id %q: status = %d, want 404", id, rec.Code)
		}
		var resp apiErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("レスポンスのパースに失敗: %v", err)
		}
		if resp.Code != model.ErrCodeEventNotFound {
			t.Errorf("Code = %q, want %q", resp.Code, model.ErrCodeEventNotFound)
		}
	}
}

func TestSaveEvent_Create(t *testing.T) {
	repo := &fakeEventRepo{}
	router := newEventTestRouter(repo)

	rec := postForm(t, router, "/event/save", url.Values{
		"event_id":   {""},
		"title":      {"Dentist"},
		"start_date": {"2026-09-15"},
		"start_time": {"14:30"},
		"priority":   {"high"},
		"reminder":   {"on"},
	})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if rec.Header().Get("Location") != "/" {
		t.Errorf("リダイレクト先 = %q, want /", rec.Header().Get("Location"))
	}
	if repo.created == nil {
		t.Fatal("Createが呼ばれるべき")
	}
	if repo.created.Title != "Dentist" || repo.created.StartTime != "14:30" {
		t.Errorf("作成イベント = %+v", repo.created)
	}
	if !repo.created.Reminder || repo.created.Priority != model.PriorityHigh {
		t.Errorf("作成イベント = %+v", repo.created)
	}
	if flash := flashFromResponse(t, rec); flash != "success|Event added successfully" {
		t.Errorf("通知バナー = %q", flash)
	}
}

// 終日チェック時は時刻フィールドが捨てられることを検証
func TestSaveEvent_AllDayDropsTimeFields(t *testing.T) {
	repo := &fakeEventRepo{}
	router := newEventTestRouter(repo)

	postForm(t, router, "/event/save", url.Values{
		"title":      {"Holiday"},
		"start_date": {"2026-09-20"},
		"start_time": {"09:00"},
		"end_time":   {"17:00"},
		"all_day":    {"on"},
	})

	if repo.created == nil {
		t.Fatal("Createが呼ばれるべき")
	}
	if !repo.created.AllDay {
		t.Error("AllDayが立つべき")
	}
	if repo.created.StartTime != "" || repo.created.EndTime != "" {
		t.Errorf("終日イベントの時刻は捨てられるべき: %+v", repo.created)
	}
}

func TestSaveEvent_Update(t *testing.T) {
	repo := &fakeEventRepo{updateOK: true}
	router := newEventTestRouter(repo)

	rec := postForm(t, router, "/event/save", url.Values{
		"event_id":    {"11111111-2222-3333-4444-555555555555"},
		"title":       {"Updated title"},
		"start_date":  {"2026-09-15"},
		"redirect_to": {"calendar"},
	})

	if repo.updatedID != "11111111-2222-3333-4444-555555555555" {
		t.Errorf("更新ID = %q", repo.updatedID)
	}
	if rec.Header().Get("Location") != "/calendar-events" {
		t.Errorf("リダイレクト先 = %q, want /calendar-events", rec.Header().Get("Location"))
	}
	if flash := flashFromResponse(t, rec); flash != "success|Event updated successfully" {
		t.Errorf("通知バナー = %q", flash)
	}
}

// 更新対象が存在しない（またはIDが不正な）場合はエラーバナーになることを検証
func TestSaveEvent_UpdateMissing_ErrorBanner(t *testing.T) {
	repo := &fakeEventRepo{updateOK: false}
	router := newEventTestRouter(repo)

	rec := postForm(t, router, "/event/save", url.Values{
		"event_id":   {"not-a-uuid"},
		"title":      {"X"},
		"start_date": {"2026-09-15"},
	})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if flash := flashFromResponse(t, rec); flash != "error|Failed to update event" {
		t.Errorf("通知バナー = %q", flash)
	}
}

func TestSaveEvent_CreateFailure_ErrorBanner(t *testing.T) {
	repo := &fakeEventRepo{createErr: errors.New("insert failed")}
	router := newEventTestRouter(repo)

	rec := postForm(t, router, "/event/save", url.Values{
		"title":      {"X"},
		"start_date": {"2026-09-15"},
	})

	if flash := flashFromResponse(t, rec); flash != "error|Failed to add event" {
		t.Errorf("通知バナー = %q", flash)
	}
}

func TestDeleteEvent_Success(t *testing.T) {
	router := newEventTestRouter(&fakeEventRepo{deleteOK: true})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/event/abc/delete", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp deleteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("レスポンスのパースに失敗: %v", err)
	}
	if !resp.Success {
		t.Error("Success = false, want true")
	}
}

func TestDeleteEvent_NotFound(t *testing.T) {
	router := newEventTestRouter(&fakeEventRepo{deleteOK: false})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/event/missing/delete", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var resp deleteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("レスポンスのパースに失敗: %v", err)
	}
	if resp.Success {
		t.Error("Success = true, want false")
	}
}
