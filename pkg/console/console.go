// Package console prints demo replies and session transcripts to a terminal.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	contractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/contract"
)

type Theme struct {
	System    lipgloss.Color
	User      lipgloss.Color
	Assistant lipgloss.Color
	Dim       lipgloss.Color
}

var DefaultTheme = Theme{
	System:    lipgloss.Color("#6e7681"),
	User:      lipgloss.Color("#58a6ff"),
	Assistant: lipgloss.Color("#00ff9f"),
	Dim:       lipgloss.Color("#6e7681"),
}

type styles struct {
	header    lipgloss.Style
	session   lipgloss.Style
	system    lipgloss.Style
	user      lipgloss.Style
	assistant lipgloss.Style
	body      lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		header:    lipgloss.NewStyle().Bold(true).Foreground(t.Dim).Border(lipgloss.NormalBorder(), false, false, true, false),
		session:   lipgloss.NewStyle().Foreground(t.Dim),
		system:    lipgloss.NewStyle().Bold(true).Foreground(t.System),
		user:      lipgloss.NewStyle().Bold(true).Foreground(t.User),
		assistant: lipgloss.NewStyle().Bold(true).Foreground(t.Assistant),
		body:      lipgloss.NewStyle().PaddingLeft(2),
	}
}

// Printer serialises writes so concurrent sessions do not interleave lines.
type Printer struct {
	mu     sync.Mutex
	w      io.Writer
	styles styles
}

func New(w io.Writer) *Printer {
	return NewWithTheme(w, DefaultTheme)
}

func NewWithTheme(w io.Writer, t Theme) *Printer {
	return &Printer{w: w, styles: newStyles(t)}
}

func RoleLabel(role contractx.Role) string {
	switch role {
	case contractx.RoleSystem:
		return "[System]"
	case contractx.RoleUser:
		return "[Usuário]"
	case contractx.RoleAssistant:
		return "[Assistente]"
	default:
		return "[" + string(role) + "]"
	}
}

func (p *Printer) label(role contractx.Role) string {
	style := p.styles.assistant
	switch role {
	case contractx.RoleSystem:
		style = p.styles.system
	case contractx.RoleUser:
		style = p.styles.user
	}
	return style.Render(RoleLabel(role))
}

// Reply prints one exchange as it happens.
func (p *Printer) Reply(sessionID, text, reply string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, err := fmt.Fprintf(p.w, "%s %s %s\n%s %s\n",
		p.styles.session.Render(shortID(sessionID)),
		p.label(contractx.RoleUser), text,
		strings.Repeat(" ", len(shortID(sessionID))), p.label(contractx.RoleAssistant)+" "+reply,
	)
	return err
}

// Transcript prints the whole history of a session.
func (p *Printer) Transcript(sessionID string, msgs []contractx.Message) error {
	var b strings.Builder
	b.WriteString(p.styles.header.Render("Sessão " + sessionID))
	b.WriteString("\n")
	for _, m := range msgs {
		b.WriteString(p.label(m.Role))
		b.WriteString("\n")
		b.WriteString(p.styles.body.Render(m.Content))
		b.WriteString("\n")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := io.WriteString(p.w, b.String())
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
