package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/dmitrijs2005/credstore/internal/flagx"
	"github.com/dmitrijs2005/credstore/internal/server/config"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// stdinFd is the descriptor readPassword reads from.
var stdinFd = func() int { return int(os.Stdin.Fd()) }

// GetPassword prints prompt to w and reads a password from the terminal
// without echo. The caller wipes the returned slice.
func GetPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}
	pw, err := readPassword(stdinFd())
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// ReadLine reads one line from reader with the trailing newline trimmed.
// A final line without a newline is returned as-is.
func ReadLine(reader *bufio.Reader) ([]byte, error) {
	line, err := reader.ReadBytes('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return nil, err
	}
	return bytes.TrimRight(line, "\r\n"), nil
}

// getPassword is swapped in tests.
var getPassword = GetPassword

// readSecret returns the password from stdin when fromStdin is set and from
// the terminal prompt otherwise.
func (a *App) readSecret(prompt string, fromStdin bool) ([]byte, error) {
	if fromStdin {
		return ReadLine(a.reader)
	}
	return getPassword(a.out, prompt)
}

// splitCommand separates the command word. Config flags, wherever they
// appear, have already been consumed by config.LoadConfig and are ignored
// by the command flag sets.
func splitCommand(args []string) (string, []string) {
	return flagx.Subcommand(args, config.FlagNames())
}
