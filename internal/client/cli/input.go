package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// readPassword and isTerminal are test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	return readLine(reader)
}

// GetWithDefault is GetSimpleText that returns def for an empty answer.
func GetWithDefault(reader *bufio.Reader, prompt, def string, w io.Writer) (string, error) {
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]", prompt, def)
	}
	s, err := GetSimpleText(reader, prompt, w)
	if err != nil {
		return "", err
	}
	if s == "" {
		return def, nil
	}
	return s, nil
}

// GetPassword reads a password without echo when stdin is a terminal and
// falls back to a plain line otherwise (pipes, tests).
func GetPassword(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return readLine(reader)
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// GetMultiline prints a prompt to w and reads multiple lines until an empty
// line is entered (i.e., the user presses Enter twice). The trailing newline
// on each line is trimmed and the collected text is joined with '\n'.
func GetMultiline(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(press Enter on an empty line to finish)\n"); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
		if err != nil {
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// GetChoice lists options and returns the one picked by number. An empty
// answer keeps def.
func GetChoice(reader *bufio.Reader, prompt string, options []string, def string, w io.Writer) (string, error) {
	for {
		fmt.Fprintln(w, prompt)
		for i, o := range options {
			fmt.Fprintf(w, "  %d) %s\n", i+1, o)
		}
		ans, err := GetWithDefault(reader, "Choose a number", def, w)
		if err != nil {
			return "", err
		}
		if ans == def && def != "" {
			return def, nil
		}
		n, err := strconv.Atoi(ans)
		if err == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		fmt.Fprintln(w, "Please enter one of the listed numbers.")
	}
}

// GetMultiChoice lists options and returns those picked as a comma
// separated list of numbers. An empty answer keeps def.
func GetMultiChoice(reader *bufio.Reader, prompt string, options []string, def []string, w io.Writer) ([]string, error) {
	for {
		fmt.Fprintln(w, prompt)
		for i, o := range options {
			fmt.Fprintf(w, "  %d) %s\n", i+1, o)
		}
		ans, err := GetWithDefault(reader, "Numbers separated by commas", strings.Join(def, ", "), w)
		if err != nil {
			return nil, err
		}
		if len(def) > 0 && ans == strings.Join(def, ", ") {
			return def, nil
		}
		picked, ok := parsePicks(ans, options)
		if ok {
			return picked, nil
		}
		fmt.Fprintln(w, "Please enter numbers from the list, e.g. 1,3,5.")
	}
}

func parsePicks(ans string, options []string) ([]string, bool) {
	var out []string
	for _, part := range strings.Split(ans, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > len(options) {
			return nil, false
		}
		out = append(out, options[n-1])
	}
	return out, true
}

// Confirm asks a yes/no question; anything but y/yes is no.
func Confirm(reader *bufio.Reader, question string, w io.Writer) (bool, error) {
	if _, err := fmt.Fprint(w, question+" [y/N]: "); err != nil {
		return false, err
	}
	ans, err := readLine(reader)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(ans) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
