// Package tui renders the enrollment page in the terminal.
package tui

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/robertarktes/batch-seat-reservations/internal/controller"
	"github.com/robertarktes/batch-seat-reservations/internal/domain"
)

const toastTTL = 4 * time.Second

// Actions is the part of the controller the form drives.
type Actions interface {
	Submit(ctx context.Context, req domain.ReservationRequest) (controller.SubmitState, error)
	SubmitBrochure(ctx context.Context, channel domain.BrochureChannel, email, phone string) error
}

// Courses serves the curriculum panel. It may be nil.
type Courses interface {
	GetCourse(ctx context.Context, id string) (domain.Course, error)
}

type pageState int

const (
	pageEnrollment pageState = iota
	pageEnrolled
)

type toastExpiredMsg struct {
	seq int
}

type courseMsg struct {
	id     string
	course domain.Course
	err    error
}

// submittedMsg arrives once a controller call returns; rendering already
// happened through the bridge.
type submittedMsg struct{}

var fieldLabels = []string{"Name", "Email", "Phone"}

type appModel struct {
	actions Actions
	courses Courses
	ctx     context.Context
	title   string

	page   pageState
	width  int
	loaded bool
	seats  int
	live   int

	inputs []textinput.Model
	focus  int

	// submission is reused while the form still holds submittedFields, so a
	// resend after a lost answer replays instead of taking another seat.
	submission      string
	submittedFields map[string]string

	submitEnabled bool
	submitLabel   string
	spinner       spinner.Model

	toast      string
	toastError bool
	toastSeq   int

	brochureOpen    bool
	brochureChannel domain.BrochureChannel
	brochureInput   textinput.Model
	brochureBusy    bool

	courseOpen    bool
	courseIdx     int
	course        *domain.Course
	courseErr     error
	courseLoading bool
}

// New builds the enrollment model. ctx bounds every controller call it makes.
// courses may be nil, which disables the curriculum panel.
func New(ctx context.Context, actions Actions, courses Courses, title string) tea.Model {
	m := appModel{
		actions:         actions,
		courses:         courses,
		ctx:             ctx,
		title:           title,
		submitEnabled:   true,
		submitLabel:     controller.SubmitLabel,
		brochureChannel: domain.BrochureChannelPhone,
	}
	for i, label := range fieldLabels {
		in := textinput.New()
		in.Prompt = fmt.Sprintf("%-6s ", label)
		in.CharLimit = 120
		if i == 0 {
			in.Focus()
		}
		m.inputs = append(m.inputs, in)
	}
	m.brochureInput = textinput.New()
	m.brochureInput.Prompt = "Phone  "
	m.brochureInput.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.courseOpen {
			return m.updateCourse(msg)
		}
		if msg.Type == tea.KeyCtrlO && m.courses != nil && !m.brochureOpen {
			m.courseOpen = true
			cmd := m.loadCourse()
			return m, cmd
		}
		if m.brochureOpen {
			return m.updateBrochure(msg)
		}
		return m.updateEnrollment(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case seatsMsg:
		m.loaded = true
		m.seats = msg.seatsLeft
		m.live = msg.live
		return m, nil

	case notifyMsg:
		m.toast = msg.text
		m.toastError = msg.isError
		m.toastSeq++
		seq := m.toastSeq
		return m, tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case submitMsg:
		m.submitEnabled = msg.enabled
		m.submitLabel = msg.label
		return m, nil

	case dismissMsg:
		m.page = pageEnrolled
		m.submission, m.submittedFields = "", nil
		for i := range m.inputs {
			m.inputs[i].Reset()
		}
		return m, nil

	case brochureMsg:
		m.brochureOpen = msg.show
		if msg.show {
			m.brochureInput.Focus()
		} else {
			m.brochureInput.Reset()
			m.brochureInput.Blur()
		}
		return m, nil

	case submittedMsg:
		m.brochureBusy = false
		return m, nil

	case courseMsg:
		if msg.id != domain.CourseIDs[m.courseIdx] {
			return m, nil
		}
		m.courseLoading = false
		m.courseErr = msg.err
		if msg.err == nil {
			course := msg.course
			m.course = &course
		}
		return m, nil
	}

	return m.updateInputs(msg)
}

func (m appModel) updateEnrollment(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.page == pageEnrolled {
		if msg.String() == "r" {
			m.page = pageEnrollment
			m.focusInput(0)
		}
		return m, nil
	}
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		m.focusInput((m.focus + 1) % len(m.inputs))
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.focusInput((m.focus + len(m.inputs) - 1) % len(m.inputs))
		return m, nil
	case tea.KeyEnter:
		if !m.submitEnabled {
			return m, nil
		}
		req := m.request()
		if m.submission == "" || !maps.Equal(req.Fields, m.submittedFields) {
			m.submission = uuid.NewString()
			m.submittedFields = req.Fields
		}
		req.SubmissionID = m.submission
		return m, m.submitCmd(req)
	}
	return m.updateInputs(msg)
}

func (m appModel) updateBrochure(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.brochureOpen = false
		m.brochureInput.Blur()
		return m, nil
	case tea.KeyTab:
		if m.brochureChannel == domain.BrochureChannelPhone {
			m.brochureChannel = domain.BrochureChannelEmail
			m.brochureInput.Prompt = "Email  "
		} else {
			m.brochureChannel = domain.BrochureChannelPhone
			m.brochureInput.Prompt = "Phone  "
		}
		m.brochureInput.Reset()
		return m, nil
	case tea.KeyEnter:
		if m.brochureBusy {
			return m, nil
		}
		m.brochureBusy = true
		return m, m.brochureCmd(m.brochureChannel, strings.TrimSpace(m.brochureInput.Value()))
	}
	var cmd tea.Cmd
	m.brochureInput, cmd = m.brochureInput.Update(msg)
	return m, cmd
}

func (m appModel) updateCourse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlO:
		m.courseOpen = false
		return m, nil
	case tea.KeyRight, tea.KeyTab:
		m.courseIdx = (m.courseIdx + 1) % len(domain.CourseIDs)
		cmd := m.loadCourse()
		return m, cmd
	case tea.KeyLeft, tea.KeyShiftTab:
		m.courseIdx = (m.courseIdx + len(domain.CourseIDs) - 1) % len(domain.CourseIDs)
		cmd := m.loadCourse()
		return m, cmd
	}
	return m, nil
}

// loadCourse marks the panel loading and fetches the selected course.
func (m *appModel) loadCourse() tea.Cmd {
	m.course, m.courseErr, m.courseLoading = nil, nil, true
	courses, ctx, id := m.courses, m.ctx, domain.CourseIDs[m.courseIdx]
	return func() tea.Msg {
		course, err := courses.GetCourse(ctx, id)
		return courseMsg{id: id, course: course, err: err}
	}
}

func (m appModel) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m *appModel) focusInput(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

func (m appModel) request() domain.ReservationRequest {
	return domain.NewReservationRequest(map[string]string{
		"name":  m.inputs[0].Value(),
		"email": m.inputs[1].Value(),
		"phone": m.inputs[2].Value(),
	})
}

func (m appModel) submitCmd(req domain.ReservationRequest) tea.Cmd {
	actions, ctx := m.actions, m.ctx
	return func() tea.Msg {
		_, _ = actions.Submit(ctx, req)
		return submittedMsg{}
	}
}

func (m appModel) brochureCmd(channel domain.BrochureChannel, value string) tea.Cmd {
	actions, ctx := m.actions, m.ctx
	return func() tea.Msg {
		email, phone := "", value
		if channel == domain.BrochureChannelEmail {
			email, phone = value, ""
		}
		_ = actions.SubmitBrochure(ctx, channel, email, phone)
		return submittedMsg{}
	}
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	counterStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	liveStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	buttonStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("63")).Padding(0, 2)
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Background(lipgloss.Color("237")).Padding(0, 2)
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(1, 2)
)

func (m appModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.countersView())
	b.WriteString("\n\n")

	if m.page == pageEnrolled {
		b.WriteString(successStyle.Render("You're in. We'll be in touch."))
		b.WriteString("\n\n")
		b.WriteString(hint("r reserve another seat • ctrl+c quit"))
	} else {
		for _, in := range m.inputs {
			b.WriteString(in.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if m.submitEnabled {
			b.WriteString(buttonStyle.Render(m.submitLabel))
		} else {
			b.WriteString(disabledStyle.Render(m.submitLabel))
		}
		b.WriteString("\n\n")
		if m.courses != nil {
			b.WriteString(hint("tab next field • enter submit • ctrl+o curriculum • ctrl+c quit"))
		} else {
			b.WriteString(hint("tab next field • enter submit • ctrl+c quit"))
		}
	}

	if m.brochureOpen {
		b.WriteString("\n\n")
		b.WriteString(m.brochureView())
	}
	if m.courseOpen {
		b.WriteString("\n\n")
		b.WriteString(m.courseView())
	}
	if m.toast != "" {
		b.WriteString("\n\n")
		if m.toastError {
			b.WriteString(errorStyle.Render(m.toast))
		} else {
			b.WriteString(successStyle.Render(m.toast))
		}
	}
	return b.String()
}

func (m appModel) countersView() string {
	if !m.loaded {
		return m.spinner.View() + " loading seats"
	}
	return fmt.Sprintf("%s seats left  %s",
		counterStyle.Render(fmt.Sprint(m.seats)),
		liveStyle.Render(fmt.Sprintf("● %d live", m.live)))
}

func (m appModel) brochureView() string {
	content := titleStyle.Render("Get the brochure") + "\n\n" +
		m.brochureInput.View() + "\n\n" +
		hint("tab switch phone/email • enter send • esc close")
	return panelStyle.Render(content)
}

func (m appModel) courseView() string {
	var b strings.Builder
	switch {
	case m.courseLoading:
		b.WriteString(m.spinner.View() + " loading curriculum")
	case m.courseErr != nil:
		b.WriteString(errorStyle.Render("Curriculum unavailable, try again later."))
	case m.course != nil:
		b.WriteString(titleStyle.Render(m.course.Title))
		b.WriteString("\n")
		b.WriteString(hint(m.course.Subtitle))
		b.WriteString("\n\n")
		for _, it := range m.course.Curriculum {
			fmt.Fprintf(&b, "%s  %s\n", counterStyle.Render(it.Period), titleStyle.Render(it.Topic))
			fmt.Fprintf(&b, "  %s\n", it.Details)
		}
		b.WriteString("\n")
		b.WriteString(m.course.Outcomes)
	}
	b.WriteString("\n\n")
	b.WriteString(hint("←/→ switch course • esc close"))
	return panelStyle.Render(b.String())
}

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}
