package doctor

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		in      string
		min     *float64
		max     *float64
		wantErr bool
	}{
		{in: ""},
		{in: "5,10", min: f64(5), max: f64(10)},
		{in: " 0 , 500 ", min: f64(0), max: f64(500)},
		{in: "5,", min: f64(5)},
		{in: ",10", max: f64(10)},
		{in: "5", wantErr: true},
		{in: "5,10,15", wantErr: true},
		{in: "a,b", wantErr: true},
		{in: "-1,4", wantErr: true},
		{in: "10,5", wantErr: true},
	}
	for _, tt := range tests {
		r, err := ParseRange("experience", tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidFilter) {
				t.Errorf("ParseRange(%q): expected ErrInvalidFilter, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRange(%q): unexpected error %v", tt.in, err)
			continue
		}
		if !sameBound(r.Min, tt.min) || !sameBound(r.Max, tt.max) {
			t.Errorf("ParseRange(%q) = %v..%v", tt.in, r.Min, r.Max)
		}
	}
}

func TestFilterFromQuery(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet,
		"/?specialty=Cardiology&location=Pune&experience=5,20&fee=,800&gender=female&rating=4.5", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	f, err := FilterFromQuery(c)
	if err != nil {
		t.Fatalf("FilterFromQuery: %v", err)
	}
	if f.Specialty != "Cardiology" || f.Location != "Pune" || f.Gender != "female" {
		t.Errorf("unexpected text filters %+v", f)
	}
	if *f.Experience.Min != 5 || *f.Experience.Max != 20 {
		t.Errorf("unexpected experience range")
	}
	if f.Fee.Min != nil || *f.Fee.Max != 800 {
		t.Errorf("unexpected fee range")
	}
	if f.MinRating == nil || *f.MinRating != 4.5 {
		t.Errorf("unexpected rating %v", f.MinRating)
	}
}

func TestFilterFromQuery_BadRating(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?rating=9", nil), httptest.NewRecorder())
	if _, err := FilterFromQuery(c); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("expected ErrInvalidFilter, got %v", err)
	}
}

func TestBuildWhere(t *testing.T) {
	where, args := buildWhere(Filter{})
	if where != "" || len(args) != 0 {
		t.Errorf("expected empty clause, got %q %v", where, args)
	}

	where, args = buildWhere(Filter{Specialty: "12", Gender: "male", Fee: Range{Max: f64(500)}, VideoConsult: true})
	want := " WHERE d.specialty_id = $1 AND LOWER(d.gender) = LOWER($2) AND d.consultation_fee <= $3 AND d.video_consult"
	if where != want {
		t.Errorf("where = %q\nwant    %q", where, want)
	}
	if len(args) != 3 || args[0] != int64(12) {
		t.Errorf("unexpected args %v", args)
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`50%_off\`); got != `50\%\_off\\` {
		t.Errorf("escapeLike = %q", got)
	}
}

func f64(v float64) *float64 { return &v }

func sameBound(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
