package geo

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(endpoint string) *Client {
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	c := NewClient(http.DefaultClient, logger, "test-key")
	c.reverseEndpoint = endpoint
	return c
}

func TestReverseGeocode_PrefersName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "1" {
			t.Errorf("limit = %q, want 1", r.URL.Query().Get("limit"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name": "Shibuya", "state": "Tokyo", "country": "JP"}]`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).ReverseGeocode(context.Background(), 35.66, 139.70)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if got != "Shibuya" {
		t.Errorf("地名 = %q, want Shibuya", got)
	}
}

// 都市名が空なら州名、州名も空なら国名へ順にフォールバックすることを検証
func TestReverseGeocode_FallsBackToStateThenCountry(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"州名へフォールバック", `[{"name": "", "state": "Hokkaido", "country": "JP"}]`, "Hokkaido"},
		{"国名へフォールバック", `[{"name": "", "state": "", "country": "JP"}]`, "JP"},
		{"全フィールド空", `[{"name": "", "state": "", "country": ""}]`, UnknownLocation},
		{"結果ゼロ件", `[]`, UnknownLocation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got, err := newTestClient(srv.URL).ReverseGeocode(context.Background(), 43.0, 141.3)
			if err != nil {
				t.Fatalf("予期しないエラー: %v", err)
			}
			if got != tt.want {
				t.Errorf("地名 = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReverseGeocode_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ReverseGeocode(context.Background(), 0, 0)
	if err == nil {
		t.Error("APIエラー時はエラーを返すべき")
	}
}
