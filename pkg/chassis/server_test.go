package chassis

import (
	"context"
	"crypto/x509"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{Addr: ":0", Logger: discard}); err == nil {
		t.Error("expected error for nil handler")
	}
	if _, err := New(Config{Addr: ":0", Handler: okHandler(), HTTP3: true, Logger: discard}); err == nil {
		t.Error("expected error for HTTP/3 without TLS")
	}
	if _, err := New(Config{Addr: ":0", Handler: okHandler(), CertFile: "missing.pem", KeyFile: "missing.key", Logger: discard}); err == nil {
		t.Error("expected error for missing cert files")
	}
}

func TestHandler_Headers(t *testing.T) {
	s, err := New(Config{Addr: ":8443", Handler: okHandler(), SelfSigned: true, HTTP3: true, Logger: discard})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := w.Header().Get("Alt-Svc"); got != `h3=":8443"; ma=86400` {
		t.Errorf("Alt-Svc = %q", got)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}
}

func TestHandler_NoAltSvcWithoutHTTP3(t *testing.T) {
	s, err := New(Config{Addr: ":8420", Handler: okHandler(), Logger: discard})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("Alt-Svc") != "" {
		t.Error("Alt-Svc advertised without HTTP/3")
	}
}

func TestStartStop(t *testing.T) {
	s, err := New(Config{Addr: "127.0.0.1:0", Handler: okHandler(), Logger: discard})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

func TestGenerateSelfSignedCert(t *testing.T) {
	cert, err := GenerateSelfSignedCert()
	if err != nil {
		t.Fatalf("GenerateSelfSignedCert: %v", err)
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		t.Fatalf("ParseCertificate: %v", err)
	}
	if len(leaf.DNSNames) != 1 || leaf.DNSNames[0] != "localhost" {
		t.Errorf("DNSNames = %v, want [localhost]", leaf.DNSNames)
	}
	if leaf.NotAfter.Before(time.Now().Add(24 * time.Hour)) {
		t.Errorf("NotAfter = %v, too soon", leaf.NotAfter)
	}
}
