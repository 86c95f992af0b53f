package initiator

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var ErrInputFormat = errors.New("initiator: input is not an integer")

const (
	promptText  = "Enter an integer between 1 and 100: "
	invalidText = "Please enter a valid integer."
)

// InputFormatError reports console text that did not parse as an integer.
type InputFormatError struct {
	Input string
}

func (e *InputFormatError) Error() string {
	return fmt.Sprintf("initiator: %q is not an integer", e.Input)
}

func (e *InputFormatError) Is(target error) bool {
	return target == ErrInputFormat
}

// ParseInteger parses a base-10 integer. Range is not checked here.
func ParseInteger(text string) (int, error) {
	trimmed := strings.TrimSpace(text)
	v, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, &InputFormatError{Input: trimmed}
	}
	return v, nil
}

// PromptInteger asks until a line parses. It fails only when in is exhausted.
func PromptInteger(in io.Reader, out io.Writer) (int, error) {
	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, promptText)
		line, err := reader.ReadString('\n')
		if line == "" && err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
			}
			return 0, fmt.Errorf("initiator: read input: %w", err)
		}
		v, perr := ParseInteger(line)
		if perr == nil {
			return v, nil
		}
		fmt.Fprintln(out, invalidText)
		if err != nil {
			return 0, fmt.Errorf("initiator: read input: %w", err)
		}
	}
}
