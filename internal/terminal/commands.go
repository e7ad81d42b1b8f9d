package terminal

import (
	"bufio"
	"strings"
)

type CommandKind int

const (
	CmdPrompt CommandKind = iota
	CmdAttach
	CmdRemove
	CmdClear
	CmdHistory
	CmdHelp
	CmdQuit
	CmdUnknown
)

// Command is one parsed line of REPL input.
type Command struct {
	Kind CommandKind
	Arg  string
}

var slashCommands = map[string]CommandKind{
	"/attach":  CmdAttach,
	"/remove":  CmdRemove,
	"/clear":   CmdClear,
	"/history": CmdHistory,
	"/help":    CmdHelp,
	"/quit":    CmdQuit,
	"/exit":    CmdQuit,
}

const helpText = `Type a message and press Enter to send it.
End a line with \ to continue the message on the next line.

  /attach <path>  attach a PDF, image or CSV file
  /remove         remove the attached file
  /clear          clear the conversation history
  /history        show the conversation again
  /help           show this help
  /quit           leave`

// ParseCommand interprets input. Anything not starting with "/" is a
// prompt; a lone "/" followed by a space is too.
func ParseCommand(input string) Command {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") || strings.HasPrefix(trimmed, "/ ") {
		return Command{Kind: CmdPrompt, Arg: input}
	}

	name, arg, _ := strings.Cut(trimmed, " ")
	kind, ok := slashCommands[strings.ToLower(name)]
	if !ok {
		return Command{Kind: CmdUnknown, Arg: name}
	}
	return Command{Kind: kind, Arg: strings.TrimSpace(arg)}
}

// InputReader reads logical inputs. A line ending in a backslash
// continues on the next line, joined with a newline.
type InputReader struct {
	sc *bufio.Scanner
}

func NewInputReader(sc *bufio.Scanner) *InputReader {
	return &InputReader{sc: sc}
}

// Next returns the next input. ok is false at end of input with nothing
// pending. onContinue is called before each continuation line is read.
func (r *InputReader) Next(onContinue func()) (input string, ok bool) {
	var lines []string
	for r.sc.Scan() {
		line := strings.TrimRight(r.sc.Text(), "\r")
		if strings.HasSuffix(line, `\`) {
			lines = append(lines, strings.TrimSuffix(line, `\`))
			if onContinue != nil {
				onContinue()
			}
			continue
		}
		lines = append(lines, line)
		return strings.Join(lines, "\n"), true
	}
	if len(lines) > 0 {
		return strings.Join(lines, "\n"), true
	}
	return "", false
}
