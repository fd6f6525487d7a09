package identity

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestIssuer(t *testing.T) *OperatorIssuer {
	t.Helper()
	o, err := NewOperatorIssuer(testSecret, "", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return o
}

func TestNewOperatorIssuer_shortSecret(t *testing.T) {
	if _, err := NewOperatorIssuer("short", "", 0); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestOperatorIssuer_roundTrip(t *testing.T) {
	o := newTestIssuer(t)

	token, err := o.Issue("qc-officer-7", []string{ScopeCustodyWrite})
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Fatalf("expected 3-part JWT, got %d parts", len(parts))
	}

	claims, err := o.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if claims.Subject != "qc-officer-7" {
		t.Errorf("Subject: got %q", claims.Subject)
	}
	if claims.Issuer != DefaultIssuer {
		t.Errorf("Issuer: got %q", claims.Issuer)
	}
	if !claims.HasScope(ScopeCustodyWrite) {
		t.Errorf("expected scope %q in %v", ScopeCustodyWrite, claims.Scopes)
	}
}

func TestOperatorIssuer_expired(t *testing.T) {
	o := newTestIssuer(t)
	token, err := o.Issue("op", nil)
	if err != nil {
		t.Fatal(err)
	}

	o.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := o.Verify(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestOperatorIssuer_wrongSecret(t *testing.T) {
	token, _ := newTestIssuer(t).Issue("op", nil)

	other, _ := NewOperatorIssuer("ffffffffffffffffffffffffffffffff", "", time.Hour)
	if _, err := other.Verify(token); err == nil {
		t.Fatal("expected signature mismatch")
	}
}

func TestOperatorIssuer_wrongIssuer(t *testing.T) {
	token, _ := newTestIssuer(t).Issue("op", nil)

	other, _ := NewOperatorIssuer(testSecret, "someone-else", time.Hour)
	if _, err := other.Verify(token); err == nil {
		t.Fatal("expected issuer mismatch")
	}
}

func setupOperatorRouter(o *OperatorIssuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/guarded", RequireOperator(o, ScopeCustodyWrite), func(c *gin.Context) {
		c.String(http.StatusOK, OperatorFromCtx(c))
	})
	return r
}

func TestRequireOperator(t *testing.T) {
	o := newTestIssuer(t)
	good, _ := o.Issue("depot-7", []string{ScopeCustodyWrite})
	noScope, _ := o.Issue("viewer", []string{"custody:read"})

	cases := []struct {
		name   string
		header string
		want   int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"garbage token", "Bearer nope", http.StatusUnauthorized, ""},
		{"missing scope", "Bearer " + noScope, http.StatusForbidden, ""},
		{"valid", "Bearer " + good, http.StatusOK, "depot-7"},
	}
	router := setupOperatorRouter(o)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
			if tc.body != "" && w.Body.String() != tc.body {
				t.Errorf("body: got %q, want %q", w.Body.String(), tc.body)
			}
		})
	}
}

func TestRequireOperator_disabled(t *testing.T) {
	router := setupOperatorRouter(nil)

	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with auth disabled, got %d", w.Code)
	}
	if w.Body.String() != "" {
		t.Errorf("expected empty operator, got %q", w.Body.String())
	}
}
