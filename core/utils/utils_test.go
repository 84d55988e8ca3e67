package utils

import (
	"errors"
	"strings"
	"testing"
	"time"

	"appointment-scheduler/core/constants"

	"github.com/google/uuid"
)

const testSecret = "this-is-a-test-secret-with-32-bytes!"

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	userID := uuid.New()

	token, expiresAt, err := issuer.GenerateToken(userID, "dev@example.com", constants.RoleDeveloper)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if time.Until(expiresAt) <= 59*time.Minute {
		t.Errorf("expiresAt = %v, want about one hour from now", expiresAt)
	}

	claims, err := issuer.ValidateAndParseToken(token)
	if err != nil {
		t.Fatalf("ValidateAndParseToken() error = %v", err)
	}
	if claims.UserID != userID || claims.Email != "dev@example.com" || !claims.IsDeveloper() {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := issuer.GenerateToken(uuid.New(), "m@example.com", constants.RoleManager)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.ValidateAndParseToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("error = %v, want ErrTokenExpired", err)
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	token, _, _ := NewTokenIssuer(testSecret, time.Hour).GenerateToken(uuid.New(), "a@b.co", constants.RoleManager)

	other := NewTokenIssuer("another-secret-that-is-long-enough!!", time.Hour)
	if _, err := other.ValidateAndParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("error = %v, want ErrTokenInvalid", err)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		part, whole float64
		want        int
	}{
		{0, 0, 0},
		{5, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{3, 3, 100},
	}
	for _, tt := range tests {
		if got := Percent(tt.part, tt.whole); got != tt.want {
			t.Errorf("Percent(%v, %v) = %d, want %d", tt.part, tt.whole, got, tt.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"john@example.com", "first.last@corp.co", "a-b@sub.domain.org"}
	invalid := []string{"", "plain", "no-at.example.com", "x@y", "x@@y.com"}

	for _, e := range valid {
		if !IsValidEmail(e) {
			t.Errorf("IsValidEmail(%q) = false, want true", e)
		}
	}
	for _, e := range invalid {
		if IsValidEmail(e) {
			t.Errorf("IsValidEmail(%q) = true, want false", e)
		}
	}
}

func TestStorageKey(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	key := StorageKey("uploads", "user-1", "New Hires (Q3).CSV", now)

	if !strings.HasPrefix(key, "uploads/1700000000000-user-1-new-hires-q3-") {
		t.Errorf("unexpected key prefix: %s", key)
	}
	if !strings.HasSuffix(key, ".csv") {
		t.Errorf("key should keep lower-cased extension: %s", key)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2030-05-01", time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"2030-05-01T09:30:00Z", time.Date(2030, 5, 1, 9, 30, 0, 0, time.UTC)},
		{"2030-05-01T09:30:00", time.Date(2030, 5, 1, 9, 30, 0, 0, time.UTC)},
		{" 2030-05-01 09:30:00 ", time.Date(2030, 5, 1, 9, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.raw)
		if err != nil {
			t.Errorf("ParseDate(%q) error = %v", tt.raw, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}

	if _, err := ParseDate("next tuesday"); err == nil {
		t.Error("ParseDate() should reject free text")
	}
	if d, err := ParseOptionalDate(""); d != nil || err != nil {
		t.Errorf("ParseOptionalDate(\"\") = %v, %v; want nil, nil", d, err)
	}
}
