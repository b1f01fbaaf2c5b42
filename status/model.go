// Package status renders a live view of a tracked session in the terminal.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/anisan-cli/playtrack/analytics"
	"github.com/anisan-cli/playtrack/analytics/record"
	"github.com/anisan-cli/playtrack/color"
	"github.com/anisan-cli/playtrack/style"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cast"
)

const (
	recentEvents = 5
	minBarWidth  = 10
	maxBarWidth  = 60
)

type recordMsg record.Record

type doneMsg struct{}

type keymap struct {
	quit key.Binding
}

func newKeymap() keymap {
	return keymap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

type model struct {
	title    string
	state    string
	playhead time.Duration
	duration time.Duration
	live     bool
	stalls   int
	errors   int
	adBreak  bool
	events   []string
	done     bool

	keymap   keymap
	spinner  spinner.Model
	progress progress.Model
}

func newModel(title string) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(color.Purple)

	return model{
		title:    title,
		state:    string(analytics.StateUnknown),
		keymap:   newKeymap(),
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.quit) {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.progress.Width = min(max(msg.Width-4, minBarWidth), maxBarWidth)
	case recordMsg:
		m.apply(record.Record(msg))
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *model) apply(r record.Record) {
	switch r.Kind {
	case record.KindPlaybackRequested, record.KindContentInfo:
		m.applyInfo(r.Info)
	case record.KindMetric:
		m.applyMetric(r)
	case record.KindError:
		m.errors++
		m.push(style.Fg(color.Red)("error " + r.Name))
	case record.KindEvent:
		m.push(r.Name)
	case record.KindAdBreakStarted:
		m.adBreak = true
		m.push("ad break started")
	case record.KindAdBreakEnded:
		m.adBreak = false
		m.push("ad break ended")
	case record.KindPlaybackEnded:
		m.state = string(analytics.StateStopped)
		m.push("playback ended")
	}
}

func (m *model) applyInfo(info analytics.ContentInfo) {
	if name, ok := info[analytics.KeyAssetName]; ok {
		m.title = cast.ToString(name)
	}

	if seconds, ok := info[analytics.KeyDuration]; ok {
		m.duration = time.Duration(cast.ToInt(seconds)) * time.Second
	}

	if streamType, ok := info[analytics.KeyStreamType]; ok {
		m.live = fmt.Sprint(streamType) == analytics.StreamLive
	}
}

func (m *model) applyMetric(r record.Record) {
	value, ok := r.Value()
	if !ok {
		return
	}

	switch analytics.MetricName(r.Name) {
	case analytics.MetricPlayerState:
		state := fmt.Sprint(value)
		if state == string(analytics.StateBuffering) && m.state != state {
			m.stalls++
		}
		m.state = state
	case analytics.MetricPlayHeadTime:
		m.playhead = time.Duration(cast.ToInt64(value)) * time.Millisecond
	}
}

func (m *model) push(event string) {
	m.events = append(m.events, event)
	if len(m.events) > recentEvents {
		m.events = m.events[len(m.events)-recentEvents:]
	}
}

func (m model) percent() float64 {
	if m.live || m.duration <= 0 {
		return 0
	}

	return min(float64(m.playhead)/float64(m.duration), 1)
}

func (m model) View() string {
	var b strings.Builder

	indicator := m.spinner.View()
	if m.done {
		indicator = style.Fg(color.Green)("✓")
	}

	b.WriteString(fmt.Sprintf("%s %s\n\n", indicator, style.Bold(m.title)))
	b.WriteString(fmt.Sprintf("  %s %s", style.Faint("state"), stateStyle(m.state)(m.state)))
	if m.adBreak {
		b.WriteString(" " + style.Fg(color.Yellow)("[ad]"))
	}
	b.WriteString("\n")

	if m.live {
		b.WriteString(fmt.Sprintf("  %s %s %s\n", style.Faint("time"), clock(m.playhead), style.Fg(color.Red)("LIVE")))
	} else {
		b.WriteString(fmt.Sprintf("  %s %s / %s\n", style.Faint("time"), clock(m.playhead), clock(m.duration)))
		b.WriteString("  " + m.progress.ViewAs(m.percent()) + "\n")
	}

	b.WriteString(fmt.Sprintf("  %s %d  %s %d\n", style.Faint("stalls"), m.stalls, style.Faint("errors"), m.errors))

	if len(m.events) > 0 {
		b.WriteString("\n")
		for _, event := range m.events {
			b.WriteString("  " + style.Faint("·") + " " + event + "\n")
		}
	}

	if !m.done {
		b.WriteString("\n" + style.Faint(m.keymap.quit.Help().Key+" "+m.keymap.quit.Help().Desc) + "\n")
	}

	return b.String()
}

func stateStyle(state string) func(string) string {
	switch analytics.PlayerState(state) {
	case analytics.StatePlaying:
		return style.Fg(color.Green)
	case analytics.StateBuffering:
		return style.Fg(color.Yellow)
	case analytics.StatePaused:
		return style.Fg(color.Cyan)
	case analytics.StateStopped:
		return style.Fg(color.Gray)
	default:
		return style.Faint
	}
}

func clock(d time.Duration) string {
	d = d.Truncate(time.Second)
	hours := int(d / time.Hour)
	minutes := int(d/time.Minute) % 60
	seconds := int(d/time.Second) % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}

	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
