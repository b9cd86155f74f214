package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("port: got %d", cfg.ServerPort)
	}
	if cfg.OTPTTL != 10*time.Minute {
		t.Errorf("otp ttl: got %v", cfg.OTPTTL)
	}
	if cfg.SessionStore != "memory" {
		t.Errorf("session store: got %s", cfg.SessionStore)
	}
	if cfg.IsProduction() {
		t.Error("default env should not be production")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("OTP_TTL", "0")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("SESSION_STORE", "redis")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerPort != 9090 {
		t.Errorf("port: got %d", cfg.ServerPort)
	}
	if cfg.OTPTTL != 0 {
		t.Errorf("otp ttl: got %v", cfg.OTPTTL)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("origins: got %v", cfg.AllowedOrigins)
	}
	if cfg.SessionStore != "redis" {
		t.Errorf("session store: got %s", cfg.SessionStore)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"bad port", map[string]string{"JWT_SECRET": "x", "PORT": "eighty"}},
		{"bad ttl", map[string]string{"JWT_SECRET": "x", "OTP_TTL": "soon"}},
		{"bad store", map[string]string{"JWT_SECRET": "x", "SESSION_STORE": "disk"}},
		{"bad mail driver", map[string]string{"JWT_SECRET": "x", "MAIL_DRIVER": "pigeon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
