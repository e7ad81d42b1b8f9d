package chat

import (
	"regexp"
	"strings"
	"time"
)

const (
	WelcomeTitle = "Welcome to LEKE"
	WelcomeText  = "Upload a document (PDF, image, or CSV) and ask me anything about it. I'll analyze and provide intelligent responses."

	// historyBadge marks loaded entries whose file name the server did not keep.
	historyBadge = "Document attached"
)

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Record is one rendered message.
type Record struct {
	Sender Sender
	// Text is the raw message text.
	Text string
	// Body is Text as HTML: escaped for users, markdown-lite for the assistant.
	Body      string
	Badge     string
	Timestamp string
}

// Placeholder is shown instead of a message list when there is nothing to show.
type Placeholder struct {
	Title string
	Text  string
}

// View is the rendered conversation. Exactly one of Placeholder and
// Records is set.
type View struct {
	Placeholder *Placeholder
	Records     []Record
	Sending     bool
}

// Snapshot is everything the renderer looks at.
type Snapshot struct {
	Entries []Entry
	State   State
	Echo    *Echo
	Failure string
}

// Renderer turns a Snapshot into a View. Timestamps come from the clock
// at render time and are not stored, so the same entry rendered later
// shows a later time.
type Renderer struct {
	now func() time.Time
}

func NewRenderer(now func() time.Time) *Renderer {
	if now == nil {
		now = time.Now
	}
	return &Renderer{now: now}
}

func (r *Renderer) Render(s Snapshot) View {
	stamp := r.now().Local().Format("15:04")

	var records []Record
	for _, e := range s.Entries {
		badge := e.DocumentName
		if badge == "" && e.HasDocument {
			badge = historyBadge
		}
		records = append(records,
			userRecord(e.Prompt, badge, stamp),
			assistantRecord(e.Response, stamp),
		)
	}

	if s.Echo != nil {
		records = append(records, userRecord(s.Echo.Prompt, s.Echo.AttachmentName, stamp))
	}
	if s.Failure != "" {
		records = append(records, assistantRecord("Error: "+s.Failure, stamp))
	}

	if len(records) == 0 {
		return View{
			Placeholder: &Placeholder{Title: WelcomeTitle, Text: WelcomeText},
			Sending:     s.State == Sending,
		}
	}
	return View{Records: records, Sending: s.State == Sending}
}

func userRecord(text, badge, stamp string) Record {
	return Record{
		Sender:    SenderUser,
		Text:      text,
		Body:      EscapeHTML(text),
		Badge:     badge,
		Timestamp: stamp,
	}
}

func assistantRecord(text, stamp string) Record {
	return Record{
		Sender:    SenderAssistant,
		Text:      text,
		Body:      FormatAssistant(text),
		Timestamp: stamp,
	}
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML makes s safe to place in HTML text.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

var (
	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.*?)\*`)
)

// FormatAssistant applies the markdown-lite rules to an assistant reply.
// The text is escaped first; the markup it adds is the only HTML in the result.
func FormatAssistant(s string) string {
	s = EscapeHTML(s)
	s = boldPattern.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicPattern.ReplaceAllString(s, "<em>$1</em>")
	s = strings.ReplaceAll(s, "\n\n", "</p><p>")
	s = strings.ReplaceAll(s, "\n", "<br>")
	return "<p>" + s + "</p>"
}
