package initiator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/danmuck/tcpsum/internal/exchange"
	"github.com/danmuck/tcpsum/internal/observability"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Result is everything the report needs from one completed exchange.
type Result struct {
	ClientName   string
	ServerName   string
	ClientNumber int
	ServerNumber int
	Sum          int
}

// Client performs one request/response exchange per call.
type Client struct {
	cfg    Config
	logger zerolog.Logger
}

func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		cfg:    cfg,
		logger: log.Logger.With().Str("component", "initiator").Logger(),
	}, nil
}

func (c *Client) Config() Config {
	return c.cfg
}

// Exchange connects, sends number, waits for one reply and closes the socket
// on every path.
func (c *Client) Exchange(ctx context.Context, number int) (res Result, err error) {
	start := time.Now()
	logger := c.logger.With().Str("conn_id", uuid.NewString()).Str("addr", c.cfg.Addr).Logger()

	logger.Info().Msg("connecting to server")
	dialer := net.Dialer{Timeout: c.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.cfg.Addr)
	if err != nil {
		logger.Error().Err(err).Msg("could not connect to server")
		observability.RecordExchange(observability.RoleInitiator, outcomeLabel(exchange.ErrConnection), time.Since(start))
		return Result{}, &exchange.ConnectionError{Addr: c.cfg.Addr, Err: err}
	}
	logger.Info().Str("local", conn.LocalAddr().String()).Msg("connected to server")

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer func() {
		stop()
		if cerr := conn.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = multierror.Append(err, fmt.Errorf("initiator: close: %w", cerr)).ErrorOrNil()
		}
		logger.Info().Msg("client socket closed")
		observability.RecordExchange(observability.RoleInitiator, outcomeLabel(err), time.Since(start))
	}()

	return c.roundTrip(conn, number, logger)
}

func (c *Client) roundTrip(conn net.Conn, number int, logger zerolog.Logger) (Result, error) {
	payload, err := exchange.EncodeRequest(exchange.Request{Name: c.cfg.Name, Number: number})
	if err != nil {
		return Result{}, err
	}
	if err := exchange.WritePayload(conn, payload); err != nil {
		logger.Error().Err(err).Msg("send failed")
		return Result{}, err
	}
	logger.Info().Int("number", number).Msg("message sent to server")

	logger.Info().Msg("waiting for server response")
	if c.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	}
	reply, err := exchange.ReadPayload(conn)
	if err != nil {
		if errors.Is(err, exchange.ErrEmptyPayload) {
			logger.Warn().Msg("no response received from server")
			return Result{}, fmt.Errorf("initiator: no response: %w", err)
		}
		logger.Error().Err(err).Msg("receive failed")
		return Result{}, err
	}

	resp, err := exchange.DecodeResponse(reply)
	if err != nil {
		logger.Warn().Err(err).Int("bytes", len(reply)).Msg("error parsing server response")
		return Result{}, err
	}
	return Result{
		ClientName:   c.cfg.Name,
		ServerName:   resp.Name,
		ClientNumber: number,
		ServerNumber: resp.Number,
		Sum:          number + resp.Number,
	}, nil
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "replied"
	case errors.Is(err, exchange.ErrConnection):
		return "connection_failed"
	case errors.Is(err, exchange.ErrEmptyPayload):
		return "empty"
	case errors.Is(err, exchange.ErrDecode):
		return "decode_failed"
	default:
		return "transport_failed"
	}
}
