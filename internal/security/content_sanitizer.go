// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService はユーザーが入力する自由記述テキスト
// （目標テキスト、リーディングメモ、プロフィール自由記述）をサニタイズし、
// 保存されたテキストをクライアントが表示する際のXSSリスクを排除する。
// bluemondayの厳格ポリシーで全てのHTMLタグを除去する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService は自由記述テキストのサニタイズ機能のインターフェースを定義する。
// 保存前の入力値に対して使用される。
type TextSanitizerService interface {
	// Sanitize は入力テキストから全てのHTMLタグを除去したプレーンテキストを返す。
	// エンティティ参照はデコードされ、前後の空白は除去される。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// 自由記述フィールドはプレーンテキストとして扱うため、
// 許可タグを一切持たないStrictPolicyを使用する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力テキストから全てのHTMLタグを除去したプレーンテキストを返す。
func (s *textSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}

	stripped := s.policy.Sanitize(raw)

	// bluemondayは残存テキストをエスケープして返すため、
	// プレーンテキストとして保存する前にエンティティ参照を戻す
	return strings.TrimSpace(html.UnescapeString(stripped))
}

// compile-time interface check
var _ TextSanitizerService = (*textSanitizer)(nil)
