// Package chassis runs the HTTP surface of the service.
//
// Listeners on the same port:
//   - TCP -> HTTP/1.1 (plain) or HTTP/1.1 + HTTP/2 (TLS)
//   - UDP -> HTTP/3 over QUIC, only when TLS is enabled and HTTP3 is set
//
// With HTTP/3 on, TCP responses carry an Alt-Svc header so clients that
// support it can upgrade transparently.
package chassis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/quic-go/quic-go/http3"
)

// Config holds configuration for the chassis server.
type Config struct {
	Addr       string       // listen address (e.g. ":8420"), TCP + UDP same port
	Handler    http.Handler // API + static page
	TLS        *tls.Config  // nil = plain HTTP unless cert files or SelfSigned are set
	CertFile   string       // production cert path
	KeyFile    string       // production key path
	SelfSigned bool         // generate a development cert
	HTTP3      bool         // serve HTTP/3 on UDP (requires TLS)
	Logger     *slog.Logger
}

// Server is the HTTP chassis.
type Server struct {
	addr      string
	logger    *slog.Logger
	tlsCfg    *tls.Config
	http3     bool
	handler   http.Handler
	tcpServer *http.Server
	h3Server  *http3.Server
	mu        sync.Mutex
}

// New validates cfg and resolves its TLS configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Handler == nil {
		return nil, errors.New("chassis: nil handler")
	}

	tlsCfg := cfg.TLS
	if tlsCfg == nil {
		switch {
		case cfg.CertFile != "" && cfg.KeyFile != "":
			var err error
			tlsCfg, err = ProductionTLSConfig(cfg.CertFile, cfg.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("load TLS cert: %w", err)
			}
			cfg.Logger.Info("TLS: production certs loaded")
		case cfg.SelfSigned:
			var err error
			tlsCfg, err = DevelopmentTLSConfig()
			if err != nil {
				return nil, fmt.Errorf("generate dev TLS: %w", err)
			}
			cfg.Logger.Info("TLS: self-signed dev cert generated")
		}
	}
	if cfg.HTTP3 && tlsCfg == nil {
		return nil, errors.New("chassis: HTTP/3 requires TLS")
	}

	return &Server{
		addr:    cfg.Addr,
		logger:  cfg.Logger,
		tlsCfg:  tlsCfg,
		http3:   cfg.HTTP3,
		handler: cfg.Handler,
	}, nil
}

// securityHeaders wraps an http.Handler and adds standard security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// altSvcMiddleware advertises HTTP/3 availability on the same port.
func altSvcMiddleware(addr string, next http.Handler) http.Handler {
	_, port, _ := net.SplitHostPort(addr)
	if port == "" {
		port = "443"
	}
	altSvc := fmt.Sprintf(`h3=":%s"; ma=86400`, port)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Alt-Svc", altSvc)
		next.ServeHTTP(w, r)
	})
}

// Handler returns the fully wrapped handler served on every listener.
func (s *Server) Handler() http.Handler {
	h := securityHeaders(s.handler)
	if s.http3 {
		h = altSvcMiddleware(s.addr, h)
	}
	return h
}

// Start serves until ctx is cancelled or a listener fails.
// It does not shut down the listeners: call Stop.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()

	handler := s.Handler()
	s.tcpServer = &http.Server{
		Addr:              s.addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	if s.tlsCfg != nil {
		tcpTLS := s.tlsCfg.Clone()
		tcpTLS.NextProtos = []string{"h2", "http/1.1"}
		s.tcpServer.TLSConfig = tcpTLS
	}
	if s.http3 {
		s.h3Server = &http3.Server{
			Addr:      s.addr,
			Handler:   handler,
			TLSConfig: http3.ConfigureTLSConfig(s.tlsCfg.Clone()),
		}
	}

	s.mu.Unlock()

	s.logger.Info("chassis started",
		"addr", s.addr,
		"tls", s.tlsCfg != nil,
		"http3", s.http3,
	)

	errCh := make(chan error, 2)
	go func() {
		ln, err := net.Listen("tcp", s.addr)
		if err != nil {
			errCh <- fmt.Errorf("TCP listen: %w", err)
			return
		}
		if s.tcpServer.TLSConfig != nil {
			ln = tls.NewListener(ln, s.tcpServer.TLSConfig)
		}
		s.logger.Info("TCP listener ready", "addr", ln.Addr().String())
		if err := s.tcpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("TCP: %w", err)
		}
	}()

	if s.h3Server != nil {
		go func() {
			s.logger.Info("UDP listener ready", "addr", s.addr, "proto", "HTTP/3")
			if err := s.h3Server.ListenAndServe(); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
				errCh <- fmt.Errorf("QUIC: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Stop gracefully shuts down the TCP and QUIC listeners.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("chassis stopping")

	var firstErr error
	if s.tcpServer != nil {
		if err := s.tcpServer.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.h3Server != nil {
		if err := s.h3Server.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	s.logger.Info("chassis stopped")
	return firstErr
}
