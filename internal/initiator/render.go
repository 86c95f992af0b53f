package initiator

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var rule = strings.Repeat("=", 50)

// Render writes the fixed report. Headings are colored only on a terminal.
func Render(w io.Writer, res Result) {
	heading := color.New(color.FgCyan, color.Bold)
	sum := color.New(color.FgGreen, color.Bold)
	if !colorEnabled(w) {
		heading.DisableColor()
		sum.DisableColor()
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	heading.Fprintln(w, "COMMUNICATION RESULTS:")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Client name: %s\n", res.ClientName)
	fmt.Fprintf(w, "Server name: %s\n", res.ServerName)
	fmt.Fprintf(w, "Client integer: %d\n", res.ClientNumber)
	fmt.Fprintf(w, "Server integer: %d\n", res.ServerNumber)
	sum.Fprintf(w, "Sum: %d + %d = %d\n", res.ClientNumber, res.ServerNumber, res.Sum)
	fmt.Fprintln(w, rule)
}

func colorEnabled(w io.Writer) bool {
	if color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
