package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("secret-password")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "secret-password" {
		t.Fatal("平文のまま保存されている")
	}

	if err := hasher.Compare(hash, "secret-password"); err != nil {
		t.Errorf("正しいパスワードの照合に失敗: %v", err)
	}
}

func TestBcryptHasher_Compare_WrongPassword(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("secret-password")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	err = hasher.Compare(hash, "wrong-password")
	if err == nil {
		t.Fatal("誤ったパスワードの照合がエラーにならなかった")
	}
	if err != bcrypt.ErrMismatchedHashAndPassword {
		t.Errorf("err = %v, want bcrypt.ErrMismatchedHashAndPassword", err)
	}
}

func TestBcryptHasher_Hash_DifferentSalts(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash1, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	hash2, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	// ソルトにより同一パスワードでもハッシュ値は毎回異なる
	if hash1 == hash2 {
		t.Error("同一パスワードで同一ハッシュ値が生成された")
	}
}

func TestNewBcryptHasher_CostOutOfRange_FallsBackToDefault(t *testing.T) {
	tests := []struct {
		name string
		cost int
	}{
		{"コストが小さすぎる", bcrypt.MinCost - 1},
		{"コストが大きすぎる", bcrypt.MaxCost + 1},
		{"ゼロ", 0},
		{"負数", -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasher := NewBcryptHasher(tt.cost)
			if hasher.cost != bcrypt.DefaultCost {
				t.Errorf("cost = %d, want %d", hasher.cost, bcrypt.DefaultCost)
			}
		})
	}
}

func TestNewBcryptHasher_ValidCost(t *testing.T) {
	hasher := NewBcryptHasher(12)
	if hasher.cost != 12 {
		t.Errorf("cost = %d, want 12", hasher.cost)
	}
}
