package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"leke-chat/internal/chat"
)

// REPL drives a chat.Session from line input.
type REPL struct {
	session *chat.Session
	printer *Printer
	in      io.Reader
	logger  *zap.Logger

	// TeardownWait bounds how long Run waits for the exit cleanup.
	TeardownWait time.Duration
}

func NewREPL(session *chat.Session, printer *Printer, in io.Reader, logger *zap.Logger) *REPL {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &REPL{
		session:      session,
		printer:      printer,
		in:           in,
		logger:       logger,
		TeardownWait: chat.DefaultTeardownTimeout + time.Second,
	}
}

// Run loads history, then reads inputs until /quit, end of input or ctx is
// done. The session is torn down before Run returns.
func (r *REPL) Run(ctx context.Context) error {
	defer r.teardown()

	r.session.Start(ctx)
	r.printer.PrintView(r.session.View())

	reader := NewInputReader(bufio.NewScanner(r.in))
	for {
		if ctx.Err() != nil {
			return nil
		}
		r.printer.Prompt(false)
		input, ok := reader.Next(func() { r.printer.Prompt(true) })
		if !ok {
			return nil
		}
		if quit := r.handle(ctx, input); quit {
			return nil
		}
	}
}

// handle runs one input and reports whether the loop should stop.
func (r *REPL) handle(ctx context.Context, input string) bool {
	cmd := ParseCommand(input)

	switch cmd.Kind {
	case CmdPrompt:
		out := r.session.Submit(ctx, cmd.Arg)
		if out.Kind == chat.OutcomeBusy {
			r.printer.Info("Still waiting for the previous answer.")
		}

	case CmdAttach:
		if cmd.Arg == "" {
			r.printer.Error(errors.New("usage: /attach <path>"))
			return false
		}
		candidate, err := chat.CandidateFromFile(cmd.Arg)
		if err != nil {
			r.printer.Error(err)
			return false
		}
		if err := r.session.Dispatch(ctx, chat.Intent{Kind: chat.IntentSelectFile, File: candidate}); err != nil {
			r.printer.Error(err)
			return false
		}
		r.printer.PrintAttachment(r.session.Attachments().Preview())

	case CmdRemove:
		r.session.Dispatch(ctx, chat.Intent{Kind: chat.IntentRemoveFile})
		r.printer.PrintAttachment(r.session.Attachments().Preview())

	case CmdClear:
		if err := r.session.Dispatch(ctx, chat.Intent{Kind: chat.IntentClearHistory}); err != nil {
			r.printer.Error(err)
			return false
		}
		r.printer.Info("Conversation cleared.")
		r.printer.PrintView(r.session.View())

	case CmdHistory:
		r.printer.PrintView(r.session.View())

	case CmdHelp:
		r.printer.Info(helpText)

	case CmdQuit:
		return true

	case CmdUnknown:
		r.printer.Error(fmt.Errorf("unknown command %s, try /help", cmd.Arg))
	}
	return false
}

func (r *REPL) teardown() {
	select {
	case <-r.session.Teardown():
	case <-time.After(r.TeardownWait):
		r.logger.Warn("exit cleanup did not finish in time")
	}
}
