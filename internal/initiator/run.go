package initiator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/tcpsum/internal/exchange"
)

// Run drives the whole interactive sequence: prompt, exchange, report.
// Every failure is reported on out before it is returned.
func (c *Client) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	number, err := PromptInteger(in, out)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "You entered: %d\n", number)

	res, err := c.Exchange(ctx, number)
	if err != nil {
		reportFailure(out, err)
		return err
	}

	Render(out, res)
	fmt.Fprintln(out, "\nCommunication completed successfully!")
	return nil
}

func reportFailure(out io.Writer, err error) {
	switch {
	case errors.Is(err, exchange.ErrConnection):
		fmt.Fprintln(out, "Error: Could not connect to server. Make sure the server is running.")
	case errors.Is(err, exchange.ErrEmptyPayload):
		fmt.Fprintln(out, "No response received from server")
	case errors.Is(err, exchange.ErrDecode):
		fmt.Fprintf(out, "Error parsing server response: %v\n", err)
	default:
		fmt.Fprintf(out, "Client error: %v\n", err)
	}
}
