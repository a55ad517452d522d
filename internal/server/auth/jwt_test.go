package auth

import (
	"testing"
	"time"

	"github.com/lbxxgn/my-blog/internal/common"
	"github.com/lbxxgn/my-blog/internal/server/access"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken(7, access.RoleAdmin, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	v, err := ViewerFromToken(tok, secret)
	if err != nil {
		t.Fatalf("ViewerFromToken error: %v", err)
	}
	if v.UserID != 7 || !v.Authenticated || !v.IsAdmin() {
		t.Fatalf("unexpected viewer: %+v", v)
	}
}

func TestViewerFromToken_EmptyIsAnonymous(t *testing.T) {
	t.Parallel()

	v, err := ViewerFromToken("", []byte("k"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != access.Anonymous() {
		t.Fatalf("expected anonymous viewer, got %+v", v)
	}
}

func TestViewerFromToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateToken(1, "", secret, -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = ViewerFromToken(tok, secret)
	if err != common.ErrTokenExpired {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestViewerFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken(2, "", []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = ViewerFromToken(tok, []byte("wrong-secret"))
	if err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestViewerFromToken_MissingUser(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := GenerateToken(0, "", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, err := ViewerFromToken(tok, secret); err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestViewerFromToken_MalformedString(t *testing.T) {
	t.Parallel()

	if _, err := ViewerFromToken("not.a.jwt", []byte("k")); err == nil {
		t.Fatalf("expected error for malformed token, got nil")
	}
}
