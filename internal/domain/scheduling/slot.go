package scheduling

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Slot is a bookable time of day stored as minutes from midnight. Its
// wire form is the label "9:00 AM".
type Slot int

const (
	FirstSlot    Slot = 8 * 60
	LastSlot     Slot = 18 * 60
	SlotInterval      = 60
	minutesInDay      = 24 * 60
)

var ErrInvalidSlot = errors.New("invalid time slot")

// DailySlots returns the fixed daily schedule in order: hourly from 8:00 AM
// to 6:00 PM inclusive.
func DailySlots() []Slot {
	out := make([]Slot, 0, int(LastSlot-FirstSlot)/SlotInterval+1)
	for s := FirstSlot; s <= LastSlot; s += SlotInterval {
		out = append(out, s)
	}
	return out
}

// Bookable reports whether s is one of DailySlots.
func (s Slot) Bookable() bool {
	return s >= FirstSlot && s <= LastSlot && int(s-FirstSlot)%SlotInterval == 0
}

func (s Slot) Valid() bool { return s >= 0 && int(s) < minutesInDay }

// Label renders s as "h:mm AM".
func (s Slot) Label() string {
	h, m := int(s)/60, int(s)%60
	meridiem := "AM"
	if h >= 12 {
		meridiem = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, meridiem)
}

func (s Slot) String() string { return s.Label() }

// ParseSlot accepts "9:00 AM", "09:00 am", "9:00PM" and 24-hour "13:00".
func ParseSlot(raw string) (Slot, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	meridiem := ""
	for _, suffix := range []string{"AM", "PM"} {
		if strings.HasSuffix(s, suffix) {
			meridiem = suffix
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}

	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 || !allDigits(hh) || !allDigits(mm) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSlot, raw)
	}
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	if m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSlot, raw)
	}

	switch meridiem {
	case "":
		if h > 23 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidSlot, raw)
		}
	default:
		if h < 1 || h > 12 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidSlot, raw)
		}
		h %= 12
		if meridiem == "PM" {
			h += 12
		}
	}
	return Slot(h*60 + m), nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s Slot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Label())
}

// UnmarshalJSON accepts a label or a number of minutes from midnight.
func (s *Slot) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		parsed, err := ParseSlot(label)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	}
	var minutes int
	if err := json.Unmarshal(data, &minutes); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSlot, data)
	}
	if !Slot(minutes).Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, minutes)
	}
	*s = Slot(minutes)
	return nil
}
