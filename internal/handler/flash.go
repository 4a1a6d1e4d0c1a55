package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/hitoshi/mirrordash/internal/web"
)

// flashCookieName は通知バナー用クッキーの名前。
const flashCookieName = "mirrordash_flash"

// setFlash はリダイレクト先で一度だけ表示する通知バナーをクッキーに保存する。
// levelはsuccessまたはerror。
func setFlash(w http.ResponseWriter, level, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(level + "|" + message),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash は通知バナーを読み取り、クッキーを削除する。
// バナーが存在しない場合はnilを返す。
func popFlash(w http.ResponseWriter, r *http.Request) *web.Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	// 読み取りと同時に消す（一度だけ表示する）
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	value, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}

	level, message, found := strings.Cut(value, "|")
	if !found || message == "" {
		return nil
	}
	if level != "success" && level != "error" {
		return nil
	}

	return &web.Flash{Level: level, Message: message}
}
