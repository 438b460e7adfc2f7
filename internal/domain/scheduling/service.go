package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mediconsult/mediconsult/internal/platform/notification"
	"github.com/mediconsult/mediconsult/internal/platform/video"
	"github.com/mediconsult/mediconsult/pkg/civil"
)

// RoomTokens signs the credential the video client presents to enter a room.
type RoomTokens interface {
	Issue(room string, userID int64, name string) (string, error)
}

// Mailer delivers templated email.
type Mailer interface {
	Email(ctx context.Context, to, templateID string, data map[string]string) error
}

type Service struct {
	appts     AppointmentRepository
	doctors   DoctorDirectory
	tokens    RoomTokens
	mailer    Mailer
	newRoomID func() (string, error)
}

// NewService builds the scheduling service. mailer may be nil, in which case
// no confirmations are sent.
func NewService(appts AppointmentRepository, doctors DoctorDirectory, tokens RoomTokens, mailer Mailer) *Service {
	return &Service{
		appts:     appts,
		doctors:   doctors,
		tokens:    tokens,
		mailer:    mailer,
		newRoomID: video.NewRoomID,
	}
}

// -- Availability --

// Availability returns the daily slots of doctorID on date that no active
// appointment holds, in schedule order.
func (s *Service) Availability(ctx context.Context, doctorID int64, date civil.Date) ([]Slot, error) {
	if _, err := s.doctors.GetDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	booked, err := s.appts.BookedSlots(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	return subtractSlots(DailySlots(), booked), nil
}

func subtractSlots(all, booked []Slot) []Slot {
	taken := make(map[Slot]bool, len(booked))
	for _, b := range booked {
		taken[b] = true
	}
	free := make([]Slot, 0, len(all))
	for _, s := range all {
		if !taken[s] {
			free = append(free, s)
		}
	}
	return free
}

// -- Booking --

// BookVideo books a video consultation for userID. The slot is claimed by
// the insert itself; a concurrent booking of the same slot gets ErrSlotTaken.
func (s *Service) BookVideo(ctx context.Context, userID int64, req *BookVideoRequest) (*Appointment, error) {
	slot, date, err := parseSlotDate(req.Slot, req.Date)
	if err != nil {
		return nil, err
	}
	doc, err := s.doctors.GetDoctor(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	room, err := s.newRoomID()
	if err != nil {
		return nil, fmt.Errorf("generate room id: %w", err)
	}

	a := &Appointment{
		UserID:          userID,
		DoctorID:        doc.ID,
		AppointmentDate: date,
		Slot:            slot,
		Status:          StatusScheduled,
		Type:            TypeVideo,
		Notes:           trimmed(req.PatientNotes),
		RoomID:          &room,
	}
	return s.book(ctx, a, doc)
}

// BookInPerson books a clinic visit for userID.
func (s *Service) BookInPerson(ctx context.Context, userID int64, req *BookInPersonRequest) (*Appointment, error) {
	slot, date, err := parseSlotDate(req.Slot, req.Date)
	if err != nil {
		return nil, err
	}
	doc, err := s.doctors.GetDoctor(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	a := &Appointment{
		UserID:          userID,
		DoctorID:        doc.ID,
		AppointmentDate: date,
		Slot:            slot,
		Status:          StatusScheduled,
		Type:            TypeInPerson,
		Reason:          trimmed(req.Reason),
	}
	return s.book(ctx, a, doc)
}

func (s *Service) book(ctx context.Context, a *Appointment, doc *DoctorRef) (*Appointment, error) {
	if err := s.appts.Create(ctx, a); err != nil {
		if errors.Is(err, ErrInvalidReference) {
			// The doctor was removed between lookup and insert.
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}
	a.DoctorName = doc.Name
	if full, err := s.appts.GetByID(ctx, a.ID); err == nil {
		a = full
	}
	s.sendConfirmation(ctx, a)
	return a, nil
}

// sendConfirmation emails the patient. Failures are logged and otherwise
// ignored; the booking already stands.
func (s *Service) sendConfirmation(ctx context.Context, a *Appointment) {
	if s.mailer == nil {
		return
	}
	log := zerolog.Ctx(ctx)
	p, err := s.appts.GetParticipants(ctx, a.ID)
	if err != nil {
		log.Warn().Err(err).Int64("appointment_id", a.ID).Msg("load confirmation recipient")
		return
	}
	hint := "Please arrive 10 minutes early."
	if a.Type == TypeVideo {
		hint = "Join from the Video Consult page a few minutes before your slot."
	}
	err = s.mailer.Email(ctx, p.PatientEmail, notification.TemplateAppointmentBooked, map[string]string{
		"patient":   a.PatientName,
		"doctor":    a.DoctorName,
		"type":      a.Type,
		"date":      a.AppointmentDate.String(),
		"slot":      a.Slot.Label(),
		"join_hint": hint,
	})
	if err != nil {
		log.Warn().Err(err).Int64("appointment_id", a.ID).Msg("send booking confirmation")
	}
}

// -- Listing --

func (s *Service) ListForUser(ctx context.Context, userID int64, apptType string) ([]*Appointment, error) {
	return s.appts.ListByUser(ctx, userID, apptType)
}

// -- Joining --

// Join admits the booking patient or the assigned doctor to the
// appointment's video room. The first join of a scheduled appointment moves
// it to in-progress; later joins change nothing.
func (s *Service) Join(ctx context.Context, userID, appointmentID int64) (*JoinResult, error) {
	a, err := s.appts.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	p, err := s.appts.GetParticipants(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	isPatient := a.UserID == userID
	isDoctor := p.DoctorUserID != nil && *p.DoctorUserID == userID
	if !isPatient && !isDoctor {
		return nil, ErrNotParticipant
	}
	if releasesSlot(a.Status) || a.Status == StatusCompleted {
		return nil, ErrAppointmentClosed
	}

	room := ""
	if a.RoomID != nil {
		room = *a.RoomID
	}
	if room == "" {
		if room, err = s.newRoomID(); err != nil {
			return nil, fmt.Errorf("generate room id: %w", err)
		}
	}
	status, room, err := s.appts.MarkJoined(ctx, a.ID, room)
	if err != nil {
		return nil, err
	}

	displayName := a.PatientName
	if !isPatient {
		displayName = a.DoctorName
	}
	token, err := s.tokens.Issue(room, userID, displayName)
	if err != nil {
		return nil, fmt.Errorf("issue room token: %w", err)
	}

	return &JoinResult{
		RoomID:          room,
		Token:           token,
		DoctorName:      a.DoctorName,
		PatientName:     a.PatientName,
		TimeSlot:        a.Slot,
		AppointmentDate: a.AppointmentDate,
		Status:          status,
	}, nil
}

// -- Administration --

func (s *Service) AdminList(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.Search(ctx, f, limit, offset)
}

// AdminGet returns appointment id. A non-empty onlyType hides appointments
// of other types.
func (s *Service) AdminGet(ctx context.Context, id int64, onlyType string) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if onlyType != "" && a.Type != onlyType {
		return nil, ErrAppointmentNotFound
	}
	return a, nil
}

func (s *Service) AdminCreate(ctx context.Context, req *AdminCreateRequest, onlyType string) (*Appointment, error) {
	slot, date, err := parseSlotDate(req.Slot, req.Date)
	if err != nil {
		return nil, err
	}
	apptType := req.Type
	if onlyType != "" {
		if apptType != "" && apptType != onlyType {
			return nil, &ValidationError{Field: "type", Message: "type must be " + onlyType}
		}
		apptType = onlyType
	}
	if apptType == "" {
		apptType = TypeVideo
	}
	status := req.Status
	if status == "" {
		status = StatusScheduled
	}
	if !validStatuses[status] || !validTypes[apptType] {
		return nil, &ValidationError{Field: "status", Message: "invalid status or type"}
	}

	doc, err := s.doctors.GetDoctor(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	a := &Appointment{
		UserID:          req.UserID,
		DoctorID:        doc.ID,
		AppointmentDate: date,
		Slot:            slot,
		Status:          status,
		Type:            apptType,
		Notes:           trimmed(req.Notes),
		Reason:          trimmed(req.Reason),
	}
	if apptType == TypeVideo {
		room, err := s.newRoomID()
		if err != nil {
			return nil, fmt.Errorf("generate room id: %w", err)
		}
		a.RoomID = &room
	}
	if err := s.appts.Create(ctx, a); err != nil {
		return nil, err
	}
	return s.reload(ctx, a)
}

func (s *Service) AdminUpdate(ctx context.Context, id int64, req *AdminUpdateRequest, onlyType string) (*Appointment, error) {
	a, err := s.AdminGet(ctx, id, onlyType)
	if err != nil {
		return nil, err
	}

	if req.DoctorID != nil && *req.DoctorID != a.DoctorID {
		doc, err := s.doctors.GetDoctor(ctx, *req.DoctorID)
		if err != nil {
			return nil, err
		}
		a.DoctorID = doc.ID
		a.DoctorName = doc.Name
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		a.AppointmentDate = date
	}
	if req.Slot != nil {
		slot, err := parseSlot(*req.Slot)
		if err != nil {
			return nil, err
		}
		a.Slot = slot
	}
	if req.Status != nil {
		if !validStatuses[*req.Status] {
			return nil, &ValidationError{Field: "status", Message: "invalid status: " + *req.Status}
		}
		a.Status = *req.Status
	}
	if req.Type != nil {
		if !validTypes[*req.Type] || (onlyType != "" && *req.Type != onlyType) {
			return nil, &ValidationError{Field: "type", Message: "invalid type: " + *req.Type}
		}
		a.Type = *req.Type
	}
	if req.Notes != nil {
		a.Notes = trimmed(req.Notes)
	}
	if req.Reason != nil {
		a.Reason = trimmed(req.Reason)
	}
	if a.Type == TypeVideo && (a.RoomID == nil || *a.RoomID == "") {
		room, err := s.newRoomID()
		if err != nil {
			return nil, fmt.Errorf("generate room id: %w", err)
		}
		a.RoomID = &room
	}

	if err := s.appts.Update(ctx, a); err != nil {
		return nil, err
	}
	return s.reload(ctx, a)
}

func (s *Service) AdminDelete(ctx context.Context, id int64, onlyType string) error {
	if _, err := s.AdminGet(ctx, id, onlyType); err != nil {
		return err
	}
	return s.appts.Delete(ctx, id)
}

// reload re-reads a written appointment to pick up the joined doctor and
// patient names. The write already committed, so a failed read is logged and
// the caller gets the record as written.
func (s *Service) reload(ctx context.Context, a *Appointment) (*Appointment, error) {
	full, err := s.appts.GetByID(ctx, a.ID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("appointment_id", a.ID).Msg("reload appointment after write")
		return a, nil
	}
	return full, nil
}

// -- Input parsing --

func parseSlotDate(rawSlot, rawDate string) (Slot, civil.Date, error) {
	date, err := parseDate(rawDate)
	if err != nil {
		return 0, civil.Date{}, err
	}
	slot, err := parseSlot(rawSlot)
	if err != nil {
		return 0, civil.Date{}, err
	}
	return slot, date, nil
}

func parseDate(raw string) (civil.Date, error) {
	date, err := civil.Parse(strings.TrimSpace(raw))
	if err != nil {
		return civil.Date{}, &ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"}
	}
	return date, nil
}

// parseSlot accepts only slots on the daily schedule.
func parseSlot(raw string) (Slot, error) {
	slot, err := ParseSlot(raw)
	if err != nil {
		return 0, &ValidationError{Field: "slot", Message: "slot must be a time such as 9:00 AM"}
	}
	if !slot.Bookable() {
		return 0, &ValidationError{Field: "slot", Message: "slot " + slot.Label() + " is outside the bookable hours"}
	}
	return slot, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
