package auth

import (
	"context"
	"testing"
)

func TestEnvelopeFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "表示名付きアドレス",
			input: "Tarot42 <noreply@tarot42.dev>",
			want:  "noreply@tarot42.dev",
		},
		{
			name:  "アドレスのみ",
			input: "noreply@tarot42.dev",
			want:  "noreply@tarot42.dev",
		},
		{
			name:  "閉じ括弧なしはそのまま返す",
			input: "Tarot42 <noreply@tarot42.dev",
			want:  "Tarot42 <noreply@tarot42.dev",
		},
		{
			name:  "空文字列",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := envelopeFrom(tt.input)
			if got != tt.want {
				t.Errorf("envelopeFrom(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNoopMailer_ReturnsNil(t *testing.T) {
	mailer := NoopMailer{}

	err := mailer.SendVerificationMail(context.Background(), "test@example.com", "http://localhost:3000/verify")
	if err != nil {
		t.Errorf("NoopMailerはエラーを返さない契約: %v", err)
	}
}
