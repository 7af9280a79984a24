package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/robertarktes/batch-seat-reservations/internal/domain"
)

type SeatService interface {
	GetStatus(ctx context.Context) (domain.BatchStatus, error)
	ReserveSeat(ctx context.Context, req domain.ReservationRequest) (domain.ReservationResult, error)
}

type BrochureService interface {
	RequestBrochure(ctx context.Context, channel domain.BrochureChannel, email, phone string) (domain.BrochureRequest, error)
}

type CourseCatalog interface {
	GetCourse(ctx context.Context, id string) (domain.Course, error)
	ListCourses(ctx context.Context) ([]domain.Course, error)
}

// Check reports whether a dependency is ready to serve.
type Check func(ctx context.Context) error

type Handlers struct {
	seats     SeatService
	brochures BrochureService
	courses   CourseCatalog
	checks    map[string]Check
}

// NewHandlers builds the API handlers. brochures and courses may be nil, in
// which case their routes answer 404.
func NewHandlers(seats SeatService, brochures BrochureService, courses CourseCatalog, checks map[string]Check) *Handlers {
	return &Handlers{seats: seats, brochures: brochures, courses: courses, checks: checks}
}

type StatusResponse struct {
	SeatsLeft    int   `json:"seats_left"`
	LastReserved int64 `json:"last_reserved"`
}

type ReservationResponse struct {
	Success   bool `json:"success"`
	SeatsLeft int  `json:"seats_left"`
}

type BrochureRequestBody struct {
	Channel domain.BrochureChannel `json:"channel"`
	Email   string                 `json:"email"`
	Phone   string                 `json:"phone"`
}

type BrochureResponse struct {
	RequestID string `json:"request_id"`
}

type CurriculumItemResponse struct {
	Period  string `json:"period"`
	Topic   string `json:"topic"`
	Details string `json:"details"`
}

type CourseResponse struct {
	ID         string                   `json:"id"`
	Title      string                   `json:"title"`
	Subtitle   string                   `json:"subtitle"`
	Curriculum []CurriculumItemResponse `json:"curriculum"`
	Outcomes   string                   `json:"outcomes"`
}

func NewCourseResponse(c domain.Course) CourseResponse {
	resp := CourseResponse{
		ID:         c.ID,
		Title:      c.Title,
		Subtitle:   c.Subtitle,
		Curriculum: make([]CurriculumItemResponse, 0, len(c.Curriculum)),
		Outcomes:   c.Outcomes,
	}
	for _, it := range c.Curriculum {
		resp.Curriculum = append(resp.Curriculum, CurriculumItemResponse{Period: it.Period, Topic: it.Topic, Details: it.Details})
	}
	return resp
}

type ErrorResponse struct {
	Error domain.ErrorKind `json:"error"`
}

const (
	errorKindBadRequest domain.ErrorKind = "bad_request"
	ErrorKindNotFound   domain.ErrorKind = "not_found"
)

func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.seats.GetStatus(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{
		SeatsLeft:    status.SeatsLeft,
		LastReserved: status.LastReserved.UnixMilli(),
	})
}

func (h *Handlers) Reserve(w http.ResponseWriter, r *http.Request) {
	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: errorKindBadRequest})
		return
	}
	req := domain.NewReservationRequest(fields)
	if err := req.Validate(); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.seats.ReserveSeat(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReservationResponse{Success: res.Success, SeatsLeft: res.SeatsLeft})
}

func (h *Handlers) RequestBrochure(w http.ResponseWriter, r *http.Request) {
	if h.brochures == nil {
		http.NotFound(w, r)
		return
	}
	var body BrochureRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: errorKindBadRequest})
		return
	}
	req, err := h.brochures.RequestBrochure(r.Context(), body.Channel, body.Email, body.Phone)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, BrochureResponse{RequestID: req.ID.String()})
}

func (h *Handlers) GetCourse(w http.ResponseWriter, r *http.Request) {
	if h.courses == nil {
		http.NotFound(w, r)
		return
	}
	course, err := h.courses.GetCourse(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: ErrorKindNotFound})
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewCourseResponse(course))
}

func (h *Handlers) ListCourses(w http.ResponseWriter, r *http.Request) {
	if h.courses == nil {
		http.NotFound(w, r)
		return
	}
	courses, err := h.courses.ListCourses(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]CourseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, NewCourseResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	failed := map[string]string{}
	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		LoggerFromContext(r.Context()).WithField("failed", failed).Warn("not ready")
		writeJSON(w, http.StatusServiceUnavailable, failed)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.ErrorKindNone:
		return http.StatusOK
	case domain.ErrorKindValidation:
		return http.StatusUnprocessableEntity
	case domain.ErrorKindSoldOut:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	if kind == domain.ErrorKindUnknown {
		LoggerFromContext(r.Context()).WithField("error", err.Error()).Error("request failed")
	}
	writeJSON(w, StatusFor(kind), ErrorResponse{Error: kind})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, _ := json.Marshal(v)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
