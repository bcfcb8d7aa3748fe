package clicks

import "testing"

func TestDeviceClass(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		want      string
	}{
		{"Android phone", "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 Mobile Safari/537.36", "Mobile"},
		{"iPhone", "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15", "Mobile"},
		{"iPad", "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15", "Tablet"},
		{"Generic tablet", "Mozilla/5.0 (Linux; Tablet; rv:121.0) Gecko/121.0 Firefox/121.0", "Tablet"},
		{"Desktop Chrome", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36", "Desktop"},
		{"Uppercase tokens", "SOMETHING MOBILE SOMETHING", "Mobile"},
		{"Empty", "", "Unknown"},
		{"Gibberish", "curl/8.4.0", "Desktop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeviceClass(tt.userAgent); got != tt.want {
				t.Errorf("DeviceClass(%q) = %q, want %q", tt.userAgent, got, tt.want)
			}
		})
	}
}

func TestBrowserClass(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		want      string
	}{
		// Chrome UAs carry a trailing "Safari" token; match order decides
		{"Chrome on Windows", "Mozilla/5.0 (Windows NT 10.0) AppleWebKit/537.36 Chrome/120.0 Safari/537.36", "Chrome"},
		// Chromium Edge carries a "Chrome" token, so the first match wins
		{"Chromium Edge", "Mozilla/5.0 (Windows NT 10.0) AppleWebKit/537.36 Chrome/120.0 Safari/537.36 Edg/120.0", "Chrome"},
		{"Firefox", "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0", "Firefox"},
		{"Safari on Mac", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 Version/17.0 Safari/605.1.15", "Safari"},
		{"Presto Opera", "Opera/9.80 (Windows NT 6.1) Presto/2.12.388 Version/12.16", "Opera"},
		{"Empty", "", "Unknown"},
		{"Unrecognized", "curl/8.4.0", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BrowserClass(tt.userAgent); got != tt.want {
				t.Errorf("BrowserClass(%q) = %q, want %q", tt.userAgent, got, tt.want)
			}
		})
	}
}

func TestStubLocator(t *testing.T) {
	tests := []struct {
		name        string
		ip          string
		wantCountry string
		wantCity    string
	}{
		{"Loopback IPv4", "127.0.0.1", "Local", "Localhost"},
		{"Loopback with port", "127.0.0.1:54321", "Local", "Localhost"},
		{"Loopback IPv6", "::1", "Local", "Localhost"},
		{"Public IP", "203.0.113.9", "Unknown", "Unknown"},
		{"Hostname", "example.com", "Unknown", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			country, city := StubLocator{}.Locate(tt.ip)
			if country != tt.wantCountry || city != tt.wantCity {
				t.Errorf("Locate(%q) = (%q, %q), want (%q, %q)", tt.ip, country, city, tt.wantCountry, tt.wantCity)
			}
		})
	}
}
