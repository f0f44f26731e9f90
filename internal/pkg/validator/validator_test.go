package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"123e4567-e89b-12d3-a456-426614174000",
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"", // empty
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	if _, ok := IsValidDate("2025-02-28"); !ok {
		t.Error("IsValidDate(2025-02-28) = false, want true")
	}
	if _, ok := IsValidDate("2025-02-30"); ok {
		t.Error("IsValidDate(2025-02-30) = true, want false")
	}
	if _, ok := IsValidDate("28-02-2025"); ok {
		t.Error("IsValidDate(28-02-2025) = true, want false")
	}
}

func TestIsValidLatitudeLongitude(t *testing.T) {
	cases := []struct {
		lat, lon float64
		latOK    bool
		lonOK    bool
	}{
		{0, 0, true, true},
		{-90, -180, true, true},
		{90, 180, true, true},
		{90.01, 180.01, false, false},
		{-90.01, -180.01, false, false},
	}
	for _, c := range cases {
		if got := IsValidLatitude(c.lat); got != c.latOK {
			t.Errorf("IsValidLatitude(%v) = %v, want %v", c.lat, got, c.latOK)
		}
		if got := IsValidLongitude(c.lon); got != c.lonOK {
			t.Errorf("IsValidLongitude(%v) = %v, want %v", c.lon, got, c.lonOK)
		}
	}
}

func TestIsValidMonth(t *testing.T) {
	for _, m := range []int{1, 6, 12} {
		if !IsValidMonth(m) {
			t.Errorf("IsValidMonth(%d) = false, want true", m)
		}
	}
	for _, m := range []int{0, 13, -1} {
		if IsValidMonth(m) {
			t.Errorf("IsValidMonth(%d) = true, want false", m)
		}
	}
}

func TestIsValidDateTime(t *testing.T) {
	valid := []string{
		"2024-01-15T10:30:00Z",
		"2024-01-15T10:30:00+07:00",
		"2024-01-15T10:30:00.123456789Z",
	}
	invalid := []string{"2024-01-15 10:30:00", "not-a-time", ""}
	for _, s := range valid {
		if _, ok := IsValidDateTime(s); !ok {
			t.Errorf("IsValidDateTime(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidDateTime(s); ok {
			t.Errorf("IsValidDateTime(%q) = true, want false", s)
		}
	}
}
