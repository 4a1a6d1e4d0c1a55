package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hitoshi/mirrordash/internal/model"
)

// LocationChecker は地名が実在するかを天気APIで確認するインターフェース。
type LocationChecker interface {
	// CheckLocation は地名が解決できない場合にエラーを返す。
	CheckLocation(ctx context.Context, location string) error
}

// GeoResolver は座標から地名を解決するインターフェース。
type GeoResolver interface {
	// ReverseGeocode は座標から地名を解決する。
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

// PreferenceStore はユーザー設定の解決と保存のインターフェース。
type PreferenceStore interface {
	// Resolve は現在のユーザー設定を返す（常に非nil）。
	Resolve(ctx context.Context) *model.Preference
	// Save はユーザー設定を保存する。
	Save(ctx context.Context, pref *model.Preference) error
}

// LocationHandler は地点設定のHTTPハンドラー。
type LocationHandler struct {
	checker LocationChecker
	geo     GeoResolver
	prefs   PreferenceStore
	logger  *slog.Logger
}

// NewLocationHandler はLocationHandlerを生成する。
func NewLocationHandler(checker LocationChecker, geo GeoResolver, prefs PreferenceStore, logger *slog.Logger) *LocationHandler {
	return &LocationHandler{
		checker: checker,
		geo:     geo,
		prefs:   prefs,
		logger:  logger,
	}
}

// locationResponse は座標からの地名解決のAPIレスポンス。
type locationResponse struct {
	Location string `json:"location"`
}

// UpdateLocation はユーザーの地点設定を更新する。
// POST /update-location
// 保存前に天気APIで地名を検証し、結果は通知バナーで伝えて / にリダイレクトする。
func (h *LocationHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		setFlash(w, "error", "Invalid form data")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	location := r.PostFormValue("location")
	if location == "" {
		setFlash(w, "error", "Please enter a valid location")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := h.checker.CheckLocation(r.Context(), location); err != nil {
		h.logger.Warn("地点の検証に失敗しました",
			slog.String("location", location),
			slog.String("error", err.Error()),
		)
		setFlash(w, "error", fmt.Sprintf("Location %q not found", location))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	pref := h.prefs.Resolve(r.Context())
	pref.Location = location
	if err := h.prefs.Save(r.Context(), pref); err != nil {
		h.logger.Error("地点設定の保存に失敗しました",
			slog.String("location", location),
			slog.String("error", err.Error()),
		)
		setFlash(w, "error", "Failed to save location preference")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	setFlash(w, "success", fmt.Sprintf("Location updated to %s", location))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GetLocationByCoords は座標から地名を解決する。
// GET /get-location-by-coords?lat=&lon=
func (h *LocationHandler) GetLocationByCoords(w http.ResponseWriter, r *http.Request) {
	latParam := r.URL.Query().Get("lat")
	lonParam := r.URL.Query().Get("lon")

	if latParam == "" || lonParam == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingCoordinatesError())
		return
	}

	lat, latErr := strconv.ParseFloat(latParam, 64)
	lon, lonErr := strconv.ParseFloat(lonParam, 64)
	if latErr != nil || lonErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingCoordinatesError())
		return
	}

	location, err := h.geo.ReverseGeocode(r.Context(), lat, lon)
	if err != nil {
		h.logger.Error("座標からの地名解決に失敗しました",
			slog.Float64("lat", lat),
			slog.Float64("lon", lon),
			slog.String("error", err.Error()),
		)
		writeAPIErrorResponse(w, http.StatusInternalServerError, model.NewLocationNotFoundError(
			fmt.Sprintf("%s,%s", latParam, lonParam),
		))
		return
	}

	writeJSON(w, http.StatusOK, locationResponse{Location: location})
}
