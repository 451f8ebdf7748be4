package storage

import (
	"testing"
	"time"
)

func TestStoredTime(t *testing.T) {
	t.Parallel()

	// Non-UTC inputs are normalized before formatting.
	loc := time.FixedZone("UTC+5", 5*3600)
	ts := time.Date(2024, 3, 1, 17, 30, 45, 123456000, loc)
	if got, want := storedTime(ts), "2024-03-01 12:30:45.123456"; got != want {
		t.Errorf("storedTime() = %q, want %q", got, want)
	}

	// The format is fixed width so string comparison orders correctly.
	whole := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if got, want := storedTime(whole), "2024-03-01 12:00:00.000000"; got != want {
		t.Errorf("storedTime() = %q, want %q", got, want)
	}
}

func TestReportTime(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 1, 12, 30, 45, 123456000, time.UTC)
	if got, want := reportTime(ts), "2024-03-01T12:30:45.123456+00:00"; got != want {
		t.Errorf("reportTime() = %q, want %q", got, want)
	}
}

func TestParseStoredTime(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, 3, 1, 12, 30, 45, 123456000, time.UTC)

	tests := []struct {
		name  string
		input any
	}{
		{"stored text", "2024-03-01 12:30:45.123456"},
		{"stored bytes", []byte("2024-03-01 12:30:45.123456")},
		{"time value", time.Date(2024, 3, 1, 12, 30, 45, 123456000, time.UTC)},
		{"rfc3339", "2024-03-01T12:30:45.123456Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseStoredTime(tt.input)
			if err != nil {
				t.Fatalf("parseStoredTime(%v): %v", tt.input, err)
			}
			if !got.Equal(want) {
				t.Errorf("parseStoredTime(%v) = %v, want %v", tt.input, got, want)
			}
		})
	}

	if _, err := parseStoredTime(42); err == nil {
		t.Error("expected error for unsupported column type")
	}
	if _, err := parseStoredTime("not a timestamp"); err == nil {
		t.Error("expected error for unparseable text")
	}
}

func TestEncodeDecodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		want  any
	}{
		{"float", 21.5, 21.5},
		{"string", "occupied", "occupied"},
		{"bool", true, true},
		{"null", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			encoded, err := encodeValue(tt.value)
			if err != nil {
				t.Fatalf("encodeValue(%v): %v", tt.value, err)
			}
			decoded, err := decodeValue(encoded)
			if err != nil {
				t.Fatalf("decodeValue(%q): %v", encoded, err)
			}
			if decoded != tt.want {
				t.Errorf("round trip of %v = %v", tt.value, decoded)
			}
		})
	}

	if _, err := encodeValue(make(chan int)); err == nil {
		t.Error("expected encoding error for channel value")
	}
	if _, err := decodeValue("{not json"); err == nil {
		t.Error("expected decoding error for malformed text")
	}
}

func TestNullString(t *testing.T) {
	t.Parallel()

	if got := nullString(""); got.Valid {
		t.Error("empty string should map to NULL")
	}
	got := nullString("x")
	if !got.Valid || got.String != "x" {
		t.Errorf("nullString(x) = %+v", got)
	}
}
