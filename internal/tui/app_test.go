package tui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/robertarktes/batch-seat-reservations/internal/controller"
	"github.com/robertarktes/batch-seat-reservations/internal/domain"
	"github.com/robertarktes/batch-seat-reservations/internal/service"
	"github.com/stretchr/testify/require"
)

type fakeActions struct {
	mu        sync.Mutex
	requests  []domain.ReservationRequest
	brochures []string
}

func (f *fakeActions) Submit(ctx context.Context, req domain.ReservationRequest) (controller.SubmitState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return controller.SubmitSuccess, nil
}

func (f *fakeActions) SubmitBrochure(ctx context.Context, channel domain.BrochureChannel, email, phone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.brochures = append(f.brochures, string(channel)+":"+email+phone)
	return nil
}

func newModel() (appModel, *fakeActions) {
	actions := &fakeActions{}
	return New(context.Background(), actions, service.NewMemoryCourses(), "Cohort enrollment").(appModel), actions
}

type unavailableCourses struct{}

func (unavailableCourses) GetCourse(ctx context.Context, id string) (domain.Course, error) {
	return domain.Course{}, errors.New("catalog offline")
}

func update(t *testing.T, m appModel, msg tea.Msg) (appModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(appModel), cmd
}

func typeText(t *testing.T, m appModel, text string) appModel {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func TestCountersRenderAfterSeatsMsg(t *testing.T) {
	m, _ := newModel()
	require.Contains(t, m.View(), "loading seats")

	m, _ = update(t, m, seatsMsg{seatsLeft: 17, live: 11})
	view := m.View()
	require.Contains(t, view, "17")
	require.Contains(t, view, "11 live")
}

func TestEnterSubmitsFormFields(t *testing.T) {
	m, actions := newModel()
	m = typeText(t, m, "Ada")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "ada@example.com")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "555")

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.Equal(t, submittedMsg{}, cmd())

	require.Len(t, actions.requests, 1)
	require.Equal(t, map[string]string{"name": "Ada", "email": "ada@example.com", "phone": "555"}, actions.requests[0].Fields)
}

func TestResubmittingSameFormReusesSubmissionID(t *testing.T) {
	m, actions := newModel()
	fill := func(m appModel) appModel {
		m = typeText(t, m, "Ada")
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
		m = typeText(t, m, "ada@example.com")
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
		return typeText(t, m, "555")
	}
	enter := func(m appModel) appModel {
		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		require.NotNil(t, cmd)
		cmd()
		return m
	}

	m = fill(m)
	m = enter(m)
	m = enter(m)
	m = typeText(t, m, "1")
	m = enter(m)
	m, _ = update(t, m, dismissMsg{})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = fill(m)
	enter(m)

	require.Len(t, actions.requests, 4)
	ids := make([]string, 0, 4)
	for _, req := range actions.requests {
		require.Len(t, req.SubmissionID, 36)
		ids = append(ids, req.SubmissionID)
	}
	require.Equal(t, ids[0], ids[1])
	require.NotEqual(t, ids[1], ids[2])
	require.Equal(t, "5551", actions.requests[2].Fields["phone"])
	require.NotEqual(t, ids[0], ids[3])
	require.NotEqual(t, ids[2], ids[3])
}

func TestSubmitDisabledWhileBusy(t *testing.T) {
	m, actions := newModel()
	m, _ = update(t, m, submitMsg{enabled: false, label: controller.BusyLabel})
	require.Contains(t, m.View(), controller.BusyLabel)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.Empty(t, actions.requests)
}

func TestToastExpiresOnlyForLatestNotification(t *testing.T) {
	m, _ := newModel()
	m, _ = update(t, m, notifyMsg{text: controller.MsgSoldOut, isError: true})
	m, _ = update(t, m, notifyMsg{text: controller.MsgFailed, isError: true})
	require.Contains(t, m.View(), controller.MsgFailed)

	m, _ = update(t, m, toastExpiredMsg{seq: 1})
	require.Contains(t, m.View(), controller.MsgFailed)

	m, _ = update(t, m, toastExpiredMsg{seq: 2})
	require.NotContains(t, m.View(), controller.MsgFailed)
}

func TestDismissShowsEnrolledPage(t *testing.T) {
	m, _ := newModel()
	m = typeText(t, m, "Ada")
	m, _ = update(t, m, dismissMsg{})
	require.Contains(t, m.View(), "You're in")
	require.Empty(t, m.inputs[0].Value())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.Equal(t, pageEnrollment, m.page)
}

func TestBrochurePopup(t *testing.T) {
	m, actions := newModel()
	m, _ = update(t, m, brochureMsg{show: true})
	require.Contains(t, m.View(), "Get the brochure")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, domain.BrochureChannelEmail, m.brochureChannel)
	m = typeText(t, m, "ada@example.com")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()
	require.Equal(t, []string{"email:ada@example.com"}, actions.brochures)

	m, _ = update(t, m, brochureMsg{show: false})
	require.False(t, strings.Contains(m.View(), "Get the brochure"))
}

func TestCurriculumPanel(t *testing.T) {
	m, _ := newModel()
	require.Contains(t, m.View(), "ctrl+o curriculum")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.True(t, m.courseOpen)
	require.Contains(t, m.View(), "loading curriculum")
	m, _ = update(t, m, cmd())
	view := m.View()
	require.Contains(t, view, "Self-Paced Digital Marketing")
	require.Contains(t, view, "8-Week Recorded Program")
	require.Contains(t, view, "Orientation + Fundamentals")

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	stale := courseMsg{id: domain.CourseSelfPaced, course: domain.Course{Title: "stale"}}
	m, _ = update(t, m, stale)
	require.True(t, m.courseLoading)
	m, _ = update(t, m, cmd())
	view = m.View()
	require.Contains(t, view, "Performance Marketing")
	require.Contains(t, view, "Automation + Client Readiness")

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = update(t, m, cmd())
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = update(t, m, cmd())
	require.Contains(t, m.View(), "Career Accelerator")

	m = typeText(t, m, "x")
	require.Empty(t, m.inputs[0].Value())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.courseOpen)
	require.NotContains(t, m.View(), "Career Accelerator")
}

func TestCurriculumPanelErrorsAndDisabled(t *testing.T) {
	m := New(context.Background(), &fakeActions{}, unavailableCourses{}, "Cohort").(appModel)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	m, _ = update(t, m, cmd())
	require.Contains(t, m.View(), "Curriculum unavailable")

	m = New(context.Background(), &fakeActions{}, nil, "Cohort").(appModel)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.False(t, m.courseOpen)
	require.NotContains(t, m.View(), "ctrl+o")
}

func TestBridgeForwardsToProgram(t *testing.T) {
	b := NewBridge()
	b.ShowSeats(1, 0)

	var got []tea.Msg
	b.send = func(msg tea.Msg) { got = append(got, msg) }

	var view controller.View = b
	view.ShowSeats(9, 3)
	view.Notify("hi", false)
	view.SetSubmit(true, controller.SubmitLabel)
	view.DismissEnrollment()
	view.ShowBrochure()
	view.HideBrochure()

	require.Equal(t, []tea.Msg{
		seatsMsg{seatsLeft: 9, live: 3},
		notifyMsg{text: "hi"},
		submitMsg{enabled: true, label: controller.SubmitLabel},
		dismissMsg{},
		brochureMsg{show: true},
		brochureMsg{show: false},
	}, got)
}
