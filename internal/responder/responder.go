package responder

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/danmuck/tcpsum/internal/exchange"
	"github.com/danmuck/tcpsum/internal/observability"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Responder owns one listening socket and serves connections strictly in order.
type Responder struct {
	cfg    Config
	logger zerolog.Logger

	mu        sync.Mutex
	ln        net.Listener
	state     State
	closeErr  error
	closeOnce sync.Once
}

// New validates cfg and returns an idle responder.
func New(cfg Config) (*Responder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Responder{
		cfg:    cfg,
		logger: log.Logger.With().Str("component", "responder").Logger(),
		state:  StateIdle,
	}, nil
}

func (r *Responder) Config() Config {
	return r.cfg
}

func (r *Responder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Responder) setState(next State) {
	r.mu.Lock()
	prev := r.state
	if prev == StateShutdown {
		r.mu.Unlock()
		return
	}
	r.state = next
	r.mu.Unlock()
	if prev != next {
		r.logger.Debug().Str("from", prev.String()).Str("to", next.String()).Msg("state transition")
	}
}

// Addr returns the bound address, or nil before Listen.
func (r *Responder) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ln == nil {
		return nil
	}
	return r.ln.Addr()
}

// Listen binds the listening socket and enters LISTENING.
func (r *Responder) Listen() error {
	r.mu.Lock()
	if r.ln != nil {
		r.mu.Unlock()
		return fmt.Errorf("responder: already listening on %s", r.ln.Addr())
	}
	if r.state == StateShutdown {
		r.mu.Unlock()
		return ErrNotListening
	}
	r.mu.Unlock()

	ln, err := listenTCP(r.cfg)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.ln = ln
	r.mu.Unlock()
	r.setState(StateListening)

	r.logger.Info().
		Str("name", r.cfg.Name).
		Str("addr", ln.Addr().String()).
		Int("backlog", r.cfg.Backlog).
		Bool("reuse_addr", r.cfg.ReuseAddr).
		Msg("listening")
	r.logger.Info().
		Int("min", r.cfg.MinNumber).
		Int("max", r.cfg.MaxNumber).
		Msg("send a number outside the accepted range to shut down")
	return nil
}

// Run binds and serves until shutdown or ctx is done.
func (r *Responder) Run(ctx context.Context) error {
	if err := r.Listen(); err != nil {
		return err
	}
	return r.Serve(ctx)
}

// Serve runs the accept loop. It returns nil on range-violation shutdown or
// ctx cancellation, and an error for any other accept fault. The listening
// socket is closed on every return path.
func (r *Responder) Serve(ctx context.Context) (err error) {
	r.mu.Lock()
	ln := r.ln
	r.mu.Unlock()
	if ln == nil {
		return ErrNotListening
	}

	stop := context.AfterFunc(ctx, func() {
		r.logger.Info().Msg("interrupted, closing listener")
		_ = r.Close()
	})
	defer stop()
	defer func() {
		if cerr := r.Close(); cerr != nil {
			err = multierror.Append(err, cerr).ErrorOrNil()
		}
	}()

	for {
		conn, aerr := ln.Accept()
		if aerr != nil {
			if ctx.Err() != nil || r.State() == StateShutdown {
				return nil
			}
			return fmt.Errorf("responder: accept: %w", aerr)
		}

		r.setState(StateServe)
		out := r.Handle(ctx, conn)
		if out.Terminal() {
			r.logger.Warn().Err(out.Err).Msg("shutting down")
			r.setState(StateShutdown)
			return nil
		}
		r.setState(StateListening)
	}
}

// Close moves to SHUTDOWN and closes the listening socket. Safe to call repeatedly.
func (r *Responder) Close() error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.state = StateShutdown
		ln := r.ln
		r.mu.Unlock()
		if ln == nil {
			return
		}
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			r.closeErr = fmt.Errorf("responder: close listener: %w", err)
		}
		r.logger.Info().Msg("server socket closed")
	})
	return r.closeErr
}

// Handle runs one SERVE step on conn and always closes it.
func (r *Responder) Handle(ctx context.Context, conn net.Conn) (out Outcome) {
	start := time.Now()
	logger := r.logger.With().
		Str("conn_id", uuid.NewString()).
		Str("remote", conn.RemoteAddr().String()).
		Logger()
	logger.Info().Msg("connection established")

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer func() {
		stop()
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			out.Err = multierror.Append(out.Err, fmt.Errorf("responder: close conn: %w", err)).ErrorOrNil()
			logger.Warn().Err(err).Msg("client connection close failed")
		}
		logger.Info().Str("outcome", out.Kind.String()).Msg("client connection closed")
		observability.RecordExchange(observability.RoleResponder, out.Kind.String(), time.Since(start))
	}()

	return r.serve(conn, logger)
}

func (r *Responder) serve(conn net.Conn, logger zerolog.Logger) Outcome {
	if r.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(r.cfg.ReadTimeout))
	}
	payload, err := exchange.ReadPayload(conn)
	if err != nil {
		if errors.Is(err, exchange.ErrEmptyPayload) {
			logger.Warn().Msg("no data received from client")
			return Outcome{Kind: OutcomeEmpty, Err: err}
		}
		logger.Error().Err(err).Msg("error handling client")
		return Outcome{Kind: OutcomeTransportFailed, Err: err}
	}

	req, err := exchange.DecodeRequest(payload)
	var overflow *exchange.NumberOverflowError
	if errors.As(err, &overflow) {
		rangeErr := &RangeError{Literal: overflow.Literal, Min: r.cfg.MinNumber, Max: r.cfg.MaxNumber}
		logger.Warn().
			Str("client_name", overflow.Name).
			Str("client_number", overflow.Literal).
			Err(rangeErr).
			Msg("client number out of range")
		return Outcome{Kind: OutcomeRangeViolation, Request: exchange.Request{Name: overflow.Name}, Err: rangeErr}
	}
	if err != nil {
		kind := OutcomeDecodeFailed
		if errors.Is(err, exchange.ErrEmptyPayload) {
			kind = OutcomeEmpty
		}
		logger.Warn().Err(err).Int("bytes", len(payload)).Msg("error parsing client message")
		return Outcome{Kind: kind, Err: err}
	}
	logger.Info().
		Str("client_name", req.Name).
		Int("client_number", req.Number).
		Msg("received from client")

	if !r.cfg.InRange(req.Number) {
		rangeErr := &RangeError{Number: req.Number, Min: r.cfg.MinNumber, Max: r.cfg.MaxNumber}
		logger.Warn().Err(rangeErr).Msg("client number out of range")
		return Outcome{Kind: OutcomeRangeViolation, Request: req, Err: rangeErr}
	}

	sum := Sum(req.Number, r.cfg.Number)
	logger.Info().
		Str("server_name", r.cfg.Name).
		Int("client_number", req.Number).
		Int("server_number", r.cfg.Number).
		Int("sum", sum).
		Msgf("sum: %d + %d = %d", req.Number, r.cfg.Number, sum)

	reply := exchange.Response{Name: r.cfg.Name, Number: r.cfg.Number}
	encoded, err := exchange.EncodeResponse(reply)
	if err != nil {
		logger.Error().Err(err).Msg("encode response failed")
		return Outcome{Kind: OutcomeTransportFailed, Request: req, Sum: sum, Err: err}
	}
	if r.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(r.cfg.WriteTimeout))
	}
	if err := exchange.WritePayload(conn, encoded); err != nil {
		logger.Error().Err(err).Msg("error handling client")
		return Outcome{Kind: OutcomeTransportFailed, Request: req, Sum: sum, Err: err}
	}
	logger.Info().Msg("response sent to client")
	return Outcome{Kind: OutcomeReplied, Request: req, Reply: reply, Sum: sum}
}
