// Package terminal is the command-line front end for a chat.Session.
package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"leke-chat/internal/chat"
)

type PrinterOptions struct {
	// Plain disables colors and markdown rendering.
	Plain    bool
	WordWrap int
}

// Printer writes views and submission progress to a terminal. It
// implements chat.Observer.
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	styles Styles
	plain  bool
	md     *glamour.TermRenderer
}

func NewPrinter(out io.Writer, opts PrinterOptions) *Printer {
	p := &Printer{out: out, styles: NewStyles(), plain: opts.Plain}
	if opts.Plain {
		return p
	}

	wrap := opts.WordWrap
	if wrap <= 0 {
		wrap = 80
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		p.md = md
	}
	return p
}

// PrintView writes the whole conversation, or the welcome placeholder.
func (p *Printer) PrintView(v chat.View) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v.Placeholder != nil {
		fmt.Fprintln(p.out, p.render(p.styles.Title, v.Placeholder.Title))
		fmt.Fprintln(p.out, p.render(p.styles.Muted, v.Placeholder.Text))
		fmt.Fprintln(p.out)
		return
	}
	for _, rec := range v.Records {
		p.printRecord(rec)
	}
}

func (p *Printer) printRecord(rec chat.Record) {
	stamp := p.render(p.styles.Timestamp, rec.Timestamp)

	switch rec.Sender {
	case chat.SenderUser:
		line := fmt.Sprintf("%s %s", p.render(p.styles.User, "You"), stamp)
		if rec.Badge != "" {
			line += " " + p.render(p.styles.Badge, "📎 "+rec.Badge)
		}
		fmt.Fprintln(p.out, line)
		fmt.Fprintln(p.out, rec.Text)
	default:
		fmt.Fprintf(p.out, "%s %s\n", p.render(p.styles.User, "LEKE"), stamp)
		if strings.HasPrefix(rec.Text, "Error: ") {
			fmt.Fprintln(p.out, p.render(p.styles.Error, rec.Text))
		} else {
			fmt.Fprintln(p.out, p.render(p.styles.Assistant, p.renderMarkdown(rec.Text)))
		}
	}
	fmt.Fprintln(p.out)
}

// renderMarkdown falls back to the raw text when glamour is unavailable or
// fails.
func (p *Printer) renderMarkdown(text string) (out string) {
	if p.md == nil {
		return text
	}
	defer func() {
		if r := recover(); r != nil {
			out = text
		}
	}()

	rendered, err := p.md.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}

func (p *Printer) SubmissionStarted(e chat.Echo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e.AttachmentName != "" {
		fmt.Fprintln(p.out, p.render(p.styles.Muted, fmt.Sprintf("Sending with %s...", e.AttachmentName)))
		return
	}
	fmt.Fprintln(p.out, p.render(p.styles.Muted, "Thinking..."))
}

func (p *Printer) SubmissionFinished(o chat.Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch o.Kind {
	case chat.OutcomeSucceeded:
		fmt.Fprintln(p.out, p.render(p.styles.Assistant, p.renderMarkdown(o.Response)))
	case chat.OutcomeFailed:
		fmt.Fprintln(p.out, p.render(p.styles.Error, "Error: "+o.Reason))
	}
	fmt.Fprintln(p.out)
}

// PrintAttachment shows the pending attachment, if any.
func (p *Printer) PrintAttachment(pv chat.Preview, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !ok {
		fmt.Fprintln(p.out, p.render(p.styles.Muted, "No file attached."))
		return
	}
	fmt.Fprintln(p.out, p.render(p.styles.Badge, fmt.Sprintf("📎 %s (%s)", pv.Name, pv.Size)))
}

func (p *Printer) Info(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, p.render(p.styles.Success, msg))
}

func (p *Printer) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, p.render(p.styles.Error, "Error: "+err.Error()))
}

// Prompt writes the input marker; cont marks a continuation line.
func (p *Printer) Prompt(cont bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	marker := "> "
	if cont {
		marker = ". "
	}
	fmt.Fprint(p.out, p.render(p.styles.Prompt, marker))
}

func (p *Printer) render(style lipgloss.Style, text string) string {
	if p.plain {
		return text
	}
	return style.Render(text)
}
