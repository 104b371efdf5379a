package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// TerminalPrompt returns a PromptFunc reading from in. When in is a terminal
// input is masked; otherwise a single line is read, so values can be piped.
func TerminalPrompt(in *os.File, out io.Writer) PromptFunc {
	return func(prompt string) (string, error) {
		fd := int(in.Fd())
		if !term.IsTerminal(fd) {
			line, err := bufio.NewReader(in).ReadString('\n')
			if err != nil && (err != io.EOF || line == "") {
				return "", fmt.Errorf("read value: %w", err)
			}
			return strings.TrimRight(line, "\r\n"), nil
		}

		fmt.Fprint(out, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read value: %w", err)
		}
		return string(b), nil
	}
}
