package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/mirrordash/internal/model"
	"github.com/hitoshi/mirrordash/internal/repository"
)

// EventHandler はカレンダーイベントCRUDのHTTPハンドラー。
type EventHandler struct {
	repo   repository.EventRepository
	logger *slog.Logger
}

// NewEventHandler はEventHandlerを生成する。
func NewEventHandler(repo repository.EventRepository, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		repo:   repo,
		logger: logger,
	}
}

// eventResponse はイベント詳細のAPIレスポンス。
// 時刻・終了日は未設定の場合nullになる。
type eventResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	StartDate   string  `json:"start_date"`
	StartTime   *string `json:"start_time"`
	EndDate     *string `json:"end_date"`
	EndTime     *string `json:"end_time"`
	AllDay      bool    `json:"all_day"`
	Location    string  `json:"location"`
	Priority    string  `json:"priority"`
	Reminder    bool    `json:"reminder"`
}

// deleteResponse はイベント削除のAPIレスポンス。
type deleteResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// GetEvent はイベント詳細を取得する。
// GET /event/{id}
// IDの形式が不正な場合も未検出として404を返す。
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	event, err := h.repo.FindByID(r.Context(), eventID)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusInternalServerError, model.NewStoreUnavailableError())
		return
	}

	if event == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewEventNotFoundError(eventID))
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(event))
}

// SaveEvent はイベントの作成または更新をフォーム入力から処理する。
// POST /event/save
// event_idが空なら作成、非空なら更新。結果は通知バナーで伝え、
// redirect_toに応じて / または /calendar-events にリダイレクトする。
func (h *EventHandler) SaveEvent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		setFlash(w, "error", "Invalid form data")
		redirectAfterSave(w, r)
		return
	}

	event := eventFromForm(r)
	eventID := r.PostFormValue("event_id")

	if eventID != "" {
		h.updateEvent(w, r, eventID, event)
	} else {
		h.createEvent(w, r, event)
	}

	redirectAfterSave(w, r)
}

// DeleteEvent はイベントを削除する。
// POST /event/{id}/delete
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	deleted, err := h.repo.Delete(r.Context(), eventID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, deleteResponse{
			Success: false,
			Error:   "Failed to delete event",
		})
		return
	}

	if !deleted {
		writeJSON(w, http.StatusNotFound, deleteResponse{
			Success: false,
			Error:   "Event not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{Success: true})
}

// createEvent は新規イベントを作成し、結果を通知バナーに積む。
func (h *EventHandler) createEvent(w http.ResponseWriter, r *http.Request, event *model.CalendarEvent) {
	if _, err := h.repo.Create(r.Context(), event); err != nil {
		h.logger.Error("イベントの作成に失敗しました",
			slog.String("error", err.Error()),
		)
		setFlash(w, "error", "Failed to add event")
		return
	}
	setFlash(w, "success", "Event added successfully")
}

// updateEvent は既存イベントを更新し、結果を通知バナーに積む。
// IDの形式が不正な場合はストアに触れずにエラーバナーを積む。
func (h *EventHandler) updateEvent(w http.ResponseWriter, r *http.Request, eventID string, event *model.CalendarEvent) {
	updated, err := h.repo.Update(r.Context(), eventID, event)
	if err != nil {
		h.logger.Error("イベントの更新に失敗しました",
			slog.String("event_id", eventID),
			slog.String("error", err.Error()),
		)
		setFlash(w, "error", "Failed to update event")
		return
	}

	if !updated {
		setFlash(w, "error", "Failed to update event")
		return
	}
	setFlash(w, "success", "Event updated successfully")
}

// eventFromForm はフォーム入力からイベントを組み立てる。
// 終日イベントの場合は時刻フィールドを捨てる。
func eventFromForm(r *http.Request) *model.CalendarEvent {
	allDay := r.PostFormValue("all_day") != ""

	event := &model.CalendarEvent{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		StartDate:   r.PostFormValue("start_date"),
		EndDate:     r.PostFormValue("end_date"),
		AllDay:      allDay,
		Location:    r.PostFormValue("location"),
		Priority:    model.Priority(r.PostFormValue("priority")),
		Reminder:    r.PostFormValue("reminder") != "",
	}

	if !allDay {
		event.StartTime = r.PostFormValue("start_time")
		event.EndTime = r.PostFormValue("end_time")
	}

	return event
}

// redirectAfterSave はredirect_toフォーム値に応じたページへリダイレクトする。
func redirectAfterSave(w http.ResponseWriter, r *http.Request) {
	target := "/"
	if r.PostFormValue("redirect_to") == "calendar" {
		target = "/calendar-events"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// toEventResponse はドメインモデルをAPIレスポンスに変換する。
func toEventResponse(event *model.CalendarEvent) eventResponse {
	return eventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		StartDate:   event.StartDate,
		StartTime:   nullableString(event.StartTime),
		EndDate:     nullableString(event.EndDate),
		EndTime:     nullableString(event.EndTime),
		AllDay:      event.AllDay,
		Location:    event.Location,
		Priority:    string(event.EffectivePriority()),
		Reminder:    event.Reminder,
	}
}

// nullableString は空文字列をnilに変換する。
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
