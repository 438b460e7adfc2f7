package doctor

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

const (
	// MinSuggestionQuery is the shortest query that produces suggestions.
	MinSuggestionQuery = 3
	MaxSuggestions     = 10
)

type Service struct {
	doctors   DoctorRepository
	listeners []func()
}

func NewService(doctors DoctorRepository) *Service {
	return &Service{doctors: doctors}
}

// OnChange registers fn to run after every successful doctor create, update
// or delete. Caches holding doctor-derived data hook in here.
func (s *Service) OnChange(fn func()) {
	s.listeners = append(s.listeners, fn)
}

func (s *Service) changed() {
	for _, fn := range s.listeners {
		fn()
	}
}

func (s *Service) ListDoctors(ctx context.Context, f Filter) ([]*Doctor, error) {
	items, _, err := s.doctors.Search(ctx, f, 0, 0)
	return items, err
}

// ListVideoConsultDoctors is ListDoctors restricted to doctors offering
// video consultations.
func (s *Service) ListVideoConsultDoctors(ctx context.Context, f Filter) ([]*Doctor, error) {
	f.VideoConsult = true
	return s.ListDoctors(ctx, f)
}

func (s *Service) SearchDoctors(ctx context.Context, f Filter, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.Search(ctx, f, limit, offset)
}

func (s *Service) GetDoctor(ctx context.Context, id int64) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

// Suggestions returns doctor and specialty names containing q. Queries
// shorter than MinSuggestionQuery characters yield an empty list.
func (s *Service) Suggestions(ctx context.Context, q string) ([]Suggestion, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < MinSuggestionQuery {
		return []Suggestion{}, nil
	}
	return s.doctors.Suggest(ctx, q, MaxSuggestions)
}

func (s *Service) CreateDoctor(ctx context.Context, req *CreateDoctorRequest) (*Doctor, error) {
	d := &Doctor{
		UserID:          req.UserID,
		Name:            strings.TrimSpace(req.Name),
		SpecialtyID:     req.SpecialtyID,
		Gender:          req.Gender,
		Experience:      req.Experience,
		Rating:          req.Rating,
		Location:        req.Location,
		ConsultationFee: req.ConsultationFee,
		Availability:    req.Availability,
		Languages:       normalizeLanguages(req.Languages),
		Education:       normalizeEducation(req.Education),
		ImageURL:        req.ImageURL,
		VideoConsult:    req.VideoConsult,
	}
	if err := s.doctors.Create(ctx, d); err != nil {
		return nil, err
	}
	s.changed()
	return d, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, id int64, req *UpdateDoctorRequest) (*Doctor, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.UserID != nil {
		d.UserID = req.UserID
	}
	if req.Name != nil {
		d.Name = strings.TrimSpace(*req.Name)
	}
	if req.SpecialtyID != nil {
		d.SpecialtyID = req.SpecialtyID
	}
	if req.Gender != nil {
		d.Gender = req.Gender
	}
	if req.Experience != nil {
		d.Experience = *req.Experience
	}
	if req.Rating != nil {
		d.Rating = *req.Rating
	}
	if req.Location != nil {
		d.Location = req.Location
	}
	if req.ConsultationFee != nil {
		d.ConsultationFee = *req.ConsultationFee
	}
	if req.Availability != nil {
		d.Availability = req.Availability
	}
	if req.Languages != nil {
		d.Languages = normalizeLanguages(req.Languages)
	}
	if req.Education != nil {
		d.Education = normalizeEducation(req.Education)
	}
	if req.ImageURL != nil {
		d.ImageURL = req.ImageURL
	}
	if req.VideoConsult != nil {
		d.VideoConsult = *req.VideoConsult
	}
	if err := s.doctors.Update(ctx, d); err != nil {
		return nil, err
	}
	s.changed()
	return d, nil
}

func (s *Service) DeleteDoctor(ctx context.Context, id int64) error {
	if err := s.doctors.Delete(ctx, id); err != nil {
		return err
	}
	s.changed()
	return nil
}

func normalizeLanguages(in []string) []string {
	out := make([]string, 0, len(in))
	for _, l := range in {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func normalizeEducation(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return json.RawMessage("[]")
	}
	return raw
}
