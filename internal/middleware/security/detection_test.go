package security

import (
	"net/http/httptest"
	"testing"
)

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xRealIP    string
		want       string
	}{
		{
			name:       "direct connection",
			remoteAddr: "203.0.113.7:52011",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded via trusted proxy",
			remoteAddr: "10.0.0.5:40000",
			xff:        "198.51.100.23, 10.0.0.5",
			want:       "198.51.100.23",
		},
		{
			name:       "forwarded header from untrusted peer is ignored",
			remoteAddr: "203.0.113.7:52011",
			xff:        "198.51.100.23",
			want:       "203.0.113.7",
		},
		{
			name:       "x-real-ip fallback behind trusted proxy",
			remoteAddr: "127.0.0.1:9000",
			xRealIP:    "198.51.100.23",
			want:       "198.51.100.23",
		},
		{
			name:       "garbage forwarded value falls back to peer",
			remoteAddr: "192.168.1.10:1234",
			xff:        "not-an-ip",
			want:       "192.168.1.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/trips", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				r.Header.Set("X-Real-IP", tt.xRealIP)
			}

			if got := d.ExtractClientIP(r); got != tt.want {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractClientIPAddedProxy(t *testing.T) {
	d := NewDetector()
	if err := d.AddTrustedProxy("100.64.0.0/10"); err != nil {
		t.Fatalf("AddTrustedProxy() error = %v", err)
	}

	r := httptest.NewRequest("GET", "/api/trips", nil)
	r.RemoteAddr = "100.64.1.1:8080"
	r.Header.Set("X-Forwarded-For", "198.51.100.23")

	if got := d.ExtractClientIP(r); got != "198.51.100.23" {
		t.Errorf("ExtractClientIP() = %q, want forwarded client", got)
	}

	if err := d.AddTrustedProxy("bogus"); err == nil {
		t.Error("AddTrustedProxy() expected error for invalid CIDR")
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name   string
		target string
		agent  string
		want   bool
	}{
		{name: "normal api call", target: "/api/trips/abc/ledger", want: false},
		{name: "path traversal", target: "/api/../etc/passwd", want: true},
		{name: "env probe", target: "/.env", want: true},
		{name: "sqli in query", target: "/api/trips?id=1%20union%20select%202", want: true},
		{name: "scanner agent", target: "/api/trips", agent: "sqlmap/1.7", want: true},
		{name: "plain http client", target: "/api/trips", agent: "curl/8.5.0", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector()
			r := httptest.NewRequest("GET", tt.target, nil)
			if tt.agent != "" {
				r.Header.Set("User-Agent", tt.agent)
			}

			if got := d.DetectSuspiciousRequest(r); got != tt.want {
				t.Errorf("DetectSuspiciousRequest() = %v, want %v", got, tt.want)
			}
			wantCount := int64(0)
			if tt.want {
				wantCount = 1
			}
			if got := d.GetMetrics().SuspiciousRequests; got != wantCount {
				t.Errorf("SuspiciousRequests = %d, want %d", got, wantCount)
			}
		})
	}
}
