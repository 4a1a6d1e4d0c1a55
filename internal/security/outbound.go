// Package security はアプリケーションのセキュリティ機能を提供する。
//
// 外部API（天気・ニュース・ジオコーディング）への送信リクエストは
// safeurlで構築したHTTPクライアントを通し、プライベートIPや
// ループバックへの到達を遮断する。座標や地名はブラウザ由来の
// 入力がそのままクエリに乗るため、送信側で防御しておく。
package security

import (
	"net/http"
	"time"

	"github.com/doyensec/safeurl"
)

// allowedSchemes は送信リクエストで許可されるURLスキーム。
var allowedSchemes = []string{"http", "https"}

// OutboundClientFactory は外部API呼び出し用HTTPクライアントのファクトリ。
type OutboundClientFactory interface {
	// NewOutboundClient はSSRF防止機能付きのHTTPクライアントを生成する。
	// safeurlにより、プライベートIP、ループバック、リンクローカル、
	// メタデータIPへのリクエストが自動的にブロックされる。
	// DNS再バインディング攻撃への対策も有効化される。
	NewOutboundClient(timeout time.Duration) *http.Client
}

// outboundGuard はOutboundClientFactoryの実装。
type outboundGuard struct{}

// NewOutboundGuard はOutboundClientFactoryの新しいインスタンスを生成する。
func NewOutboundGuard() *outboundGuard {
	return &outboundGuard{}
}

// NewOutboundClient はSSRF防止機能付きのHTTPクライアントを生成する。
// safeurlはnet.DialerのControlフックでDNS解決後のIPアドレスを検証するため、
// DNS再バインディング攻撃にも対応している。
func (g *outboundGuard) NewOutboundClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	wrappedClient := safeurl.Client(config)
	return wrappedClient.Client
}
