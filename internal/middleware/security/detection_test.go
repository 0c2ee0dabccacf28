package security

import (
	"net/http/httptest"
	"testing"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		method     string
		userAgent  string
		suspicious bool
	}{
		{"plain api call", "/api/dashboard", "GET", "Mozilla/5.0", false},
		{"curl is a legitimate client", "/api/state", "GET", "curl/8.4.0", false},
		{"filter text is not an injection", "/api/dashboard?description=office+select", "GET", "Mozilla/5.0", false},
		{"path traversal", "/api/../../etc/passwd", "GET", "Mozilla/5.0", true},
		{"env probe", "/.env", "GET", "Mozilla/5.0", true},
		{"wordpress probe", "/wp-admin/setup.php", "GET", "Mozilla/5.0", true},
		{"script tag in query", "/api/dashboard?description=<script>alert(1)</script>", "GET", "Mozilla/5.0", true},
		{"sqlmap agent", "/api/dashboard", "GET", "sqlmap/1.7", true},
		{"trace method", "/api/state", "TRACE", "Mozilla/5.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector()
			r := httptest.NewRequest(tt.method, tt.target, nil)
			r.Header.Set("User-Agent", tt.userAgent)

			if got := d.DetectSuspiciousRequest(r); got != tt.suspicious {
				t.Fatalf("DetectSuspiciousRequest(%s) = %v, want %v", tt.target, got, tt.suspicious)
			}

			want := int64(0)
			if tt.suspicious {
				want = 1
			}
			if m := d.GetMetrics(); m.SuspiciousRequests != want {
				t.Fatalf("SuspiciousRequests = %d, want %d", m.SuspiciousRequests, want)
			}
		})
	}
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		realIP     string
		want       string
	}{
		{"direct connection", "203.0.113.7:5432", "", "", "203.0.113.7"},
		{"forwarded via trusted proxy", "127.0.0.1:8080", "198.51.100.2, 10.0.0.5", "", "198.51.100.2"},
		{"x-real-ip via trusted proxy", "10.0.0.1:8080", "", "198.51.100.9", "198.51.100.9"},
		{"forwarded header ignored from untrusted peer", "203.0.113.7:5432", "198.51.100.2", "", "203.0.113.7"},
		{"garbage forwarded entry falls back", "127.0.0.1:8080", "not-an-ip", "", "127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector()
			r := httptest.NewRequest("GET", "/api/state", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}

			if got := d.ExtractClientIP(r); got != tt.want {
				t.Fatalf("ExtractClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractClientIPCountsInvalidForwards(t *testing.T) {
	d := NewDetector()
	r := httptest.NewRequest("GET", "/api/state", nil)
	r.RemoteAddr = "127.0.0.1:8080"
	r.Header.Set("X-Forwarded-For", "not-an-ip")

	d.ExtractClientIP(r)
	if m := d.GetMetrics(); m.InvalidIPAttempts != 1 {
		t.Fatalf("InvalidIPAttempts = %d, want 1", m.InvalidIPAttempts)
	}
}

func TestAddTrustedProxy(t *testing.T) {
	d := NewDetector()
	if err := d.AddTrustedProxy("203.0.113.0/24"); err != nil {
		t.Fatalf("add trusted proxy: %v", err)
	}
	if err := d.AddTrustedProxy("not-a-cidr"); err == nil {
		t.Fatalf("expected error for malformed CIDR")
	}

	r := httptest.NewRequest("GET", "/api/state", nil)
	r.RemoteAddr = "203.0.113.7:5432"
	r.Header.Set("X-Forwarded-For", "198.51.100.2")
	if got := d.ExtractClientIP(r); got != "198.51.100.2" {
		t.Fatalf("ExtractClientIP = %q, want forwarded ip", got)
	}
}
