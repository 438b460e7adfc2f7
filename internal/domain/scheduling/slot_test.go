package scheduling

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDailySlots(t *testing.T) {
	slots := DailySlots()
	if len(slots) != 11 {
		t.Fatalf("expected 11 slots, got %d", len(slots))
	}
	if slots[0].Label() != "8:00 AM" {
		t.Errorf("first slot = %s", slots[0])
	}
	if slots[len(slots)-1].Label() != "6:00 PM" {
		t.Errorf("last slot = %s", slots[len(slots)-1])
	}
	for i := 1; i < len(slots); i++ {
		if slots[i] <= slots[i-1] {
			t.Errorf("slots out of order at %d", i)
		}
	}
}

func TestSlotLabel(t *testing.T) {
	tests := []struct {
		slot Slot
		want string
	}{
		{0, "12:00 AM"},
		{9 * 60, "9:00 AM"},
		{12 * 60, "12:00 PM"},
		{13*60 + 30, "1:30 PM"},
		{23*60 + 59, "11:59 PM"},
	}
	for _, tt := range tests {
		if got := tt.slot.Label(); got != tt.want {
			t.Errorf("Slot(%d).Label() = %q, want %q", int(tt.slot), got, tt.want)
		}
	}
}

func TestParseSlot(t *testing.T) {
	tests := []struct {
		in   string
		want Slot
	}{
		{"9:00 AM", 9 * 60},
		{"09:00 AM", 9 * 60},
		{"9:00am", 9 * 60},
		{" 9:00 pm ", 21 * 60},
		{"12:00 PM", 12 * 60},
		{"12:00 AM", 0},
		{"13:00", 13 * 60},
		{"08:30", 8*60 + 30},
	}
	for _, tt := range tests {
		got, err := ParseSlot(tt.in)
		if err != nil {
			t.Errorf("ParseSlot(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSlot(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseSlot_Invalid(t *testing.T) {
	for _, in := range []string{"", "9", "9 AM", "9:0 AM", "13:00 PM", "0:00 AM", "24:00", "9:60", "+9:00", "nine"} {
		if _, err := ParseSlot(in); !errors.Is(err, ErrInvalidSlot) {
			t.Errorf("ParseSlot(%q): expected ErrInvalidSlot, got %v", in, err)
		}
	}
}

func TestParseSlot_RoundTripsDailySlots(t *testing.T) {
	for _, s := range DailySlots() {
		got, err := ParseSlot(s.Label())
		if err != nil || got != s {
			t.Errorf("ParseSlot(%q) = %d, %v", s.Label(), got, err)
		}
	}
}

func TestSlotBookable(t *testing.T) {
	if !Slot(9 * 60).Bookable() {
		t.Error("9:00 AM should be bookable")
	}
	for _, s := range []Slot{7 * 60, 9*60 + 30, 19 * 60} {
		if s.Bookable() {
			t.Errorf("%s should not be bookable", s)
		}
	}
}

func TestSlotJSON(t *testing.T) {
	b, _ := json.Marshal(Slot(14 * 60))
	if string(b) != `"2:00 PM"` {
		t.Errorf("marshal = %s", b)
	}

	var s Slot
	if err := json.Unmarshal([]byte(`"02:00 pm"`), &s); err != nil || s != 14*60 {
		t.Errorf("unmarshal label = %d, %v", s, err)
	}
	if err := json.Unmarshal([]byte(`600`), &s); err != nil || s != 10*60 {
		t.Errorf("unmarshal minutes = %d, %v", s, err)
	}
	if err := json.Unmarshal([]byte(`1440`), &s); err == nil {
		t.Error("expected error for out-of-day minutes")
	}
}
