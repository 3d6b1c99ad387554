package timestamp

import "testing"

func TestScanKnownFormats(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"iso-comma-tz", "2024-01-02 15:04:05,123+02:00 LOG: hello"},
		{"iso-comma", "2024-01-02 15:04:05,123 LOG: hello"},
		{"iso-plain", "2024-01-02 15:04:05 LOG: hello"},
		{"syslog", "Jan  2 15:04:05 host proc[123]: hello"},
		{"http-common", "02/Jan/2024 15:04:05 GET /"},
		{"http-combined-tz", "02/Jan/2024:15:04:05 +0000 GET /"},
		{"epoch-seconds", "1704207845.123456 hello"},
		{"epoch-millis", "1704207845123 hello"},
	}
	s := New()
	for _, tc := range cases {
		if _, ok := s.Scan(tc.line); !ok {
			t.Errorf("%s: expected match for %q", tc.name, tc.line)
		}
	}
}

func TestScanPromotesMatchToFront(t *testing.T) {
	s := New()
	if _, ok := s.Scan("Jan  2 15:04:05 host proc[1]: a"); !ok {
		t.Fatal("expected syslog match")
	}
	if s.formats[0].name != "syslog" {
		t.Fatalf("expected syslog promoted to front, got %s", s.formats[0].name)
	}
}

func TestScanNoMatch(t *testing.T) {
	s := New()
	if _, ok := s.Scan("not a timestamp at all"); ok {
		t.Fatal("expected no match")
	}
}

// TestScanUnanchoredInLine verifies timestamps are found anywhere in the
// line, not just at column 0 — a combined-log line leads with a client IP
// and hostname fields before the bracketed timestamp.
func TestScanUnanchoredInLine(t *testing.T) {
	s := New()
	line := `121.137.55.45 - - [29/Jan/2024:13:45:19 +0000] "GET /index.html HTTP/1.1" 200 1234`
	ts, ok := s.Scan(line)
	if !ok {
		t.Fatalf("expected match in %q", line)
	}
	if ts.Year() != 2024 || ts.Month().String() != "January" || ts.Day() != 29 {
		t.Fatalf("unexpected parsed timestamp: %v", ts)
	}
}
