package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestVerifier_RoundTrip(t *testing.T) {
	tok, err := IssueToken("s3cret", "user-1", RoleEditor, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	c, err := NewVerifier("s3cret").Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if c.Subject != "user-1" || c.Role != RoleEditor {
		t.Fatalf("claims = %+v", c)
	}
}

func TestVerifier_Rejects(t *testing.T) {
	good, _ := IssueToken("s3cret", "u", RoleAdmin, time.Hour)
	expired, _ := IssueToken("s3cret", "u", RoleAdmin, -time.Minute)
	noRole, _ := IssueToken("s3cret", "u", "", time.Hour)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: RoleAdmin})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	v := NewVerifier("s3cret")
	cases := map[string]string{
		"wrong secret": mustVerifyWith(t, "other", good),
		"expired":      expired,
		"no role":      noRole,
		"alg none":     unsigned,
		"garbage":      "not.a.jwt",
	}
	for name, tok := range cases {
		if tok == "" {
			continue
		}
		if _, err := v.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: err = %v; want ErrInvalidToken", name, err)
		}
	}
	if _, err := v.Verify("  "); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("blank token err = %v", err)
	}
	if _, err := NewVerifier("").Verify(good); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("empty secret must reject, got %v", err)
	}
}

// mustVerifyWith returns tok unchanged; it documents that tok was signed with
// a different secret than the verifier under test.
func mustVerifyWith(t *testing.T, secret, tok string) string {
	t.Helper()
	if _, err := NewVerifier(secret).Verify(tok); err == nil {
		t.Fatalf("token unexpectedly valid for secret %q", secret)
	}
	return tok
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"":             "",
		"Bearer":       "",
	}
	for in, want := range cases {
		if got := BearerToken(in); got != want {
			t.Fatalf("BearerToken(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestEnforcer_Policy(t *testing.T) {
	en, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	cases := []struct {
		role, obj, act string
		want           bool
	}{
		{RoleAdmin, ObjSermons, ActDelete, true},
		{RoleAdmin, ObjContact, ActRead, true},
		{RoleEditor, ObjSermons, ActCreate, true},
		{RoleEditor, ObjSermons, ActUpdate, true},
		{RoleEditor, ObjSermons, ActDelete, false},
		{RoleEditor, ObjGallery, ActDelete, false},
		{RoleEditor, ObjContact, ActRead, true},
		{RoleEditor, ObjContact, ActDelete, false},
		{RoleEditor, ObjHero, ActUpdate, true},
		{"member", ObjSermons, ActCreate, false},
	}
	for _, c := range cases {
		got, err := en.Allowed(c.role, c.obj, c.act)
		if err != nil {
			t.Fatalf("Allowed(%s,%s,%s): %v", c.role, c.obj, c.act, err)
		}
		if got != c.want {
			t.Fatalf("Allowed(%s,%s,%s) = %v; want %v", c.role, c.obj, c.act, got, c.want)
		}
	}
}
