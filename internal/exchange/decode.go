package exchange

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// DecodeRequest parses one request payload. An integer literal that does not
// fit in int yields a *NumberOverflowError carrying the sender's name.
func DecodeRequest(payload []byte) (Request, error) {
	name, number, err := decode(payload)
	if err != nil {
		return Request{}, err
	}
	return Request{Name: name, Number: number}, nil
}

// DecodeResponse parses one response payload. An overflowing number is a
// decode failure here since no sum can be reported.
func DecodeResponse(payload []byte) (Response, error) {
	name, number, err := decode(payload)
	if err != nil {
		var overflow *NumberOverflowError
		if errors.As(err, &overflow) {
			return Response{}, &DecodeError{Err: err}
		}
		return Response{}, err
	}
	return Response{Name: name, Number: number}, nil
}

func decode(payload []byte) (string, int, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return "", 0, ErrEmptyPayload
	}
	var msg message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return "", 0, &DecodeError{Err: err}
	}
	if msg.Name == nil {
		return "", 0, &DecodeError{Field: "name"}
	}
	literal := string(bytes.TrimSpace(msg.Number))
	if literal == "" || literal == "null" {
		return "", 0, &DecodeError{Field: "number"}
	}
	number, err := parseInteger(literal)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return "", 0, &NumberOverflowError{Name: *msg.Name, Literal: literal}
		}
		return "", 0, &DecodeError{Err: err}
	}
	return *msg.Name, number, nil
}

// parseInteger accepts JSON integer literals only; fractions, exponents and
// non-number values are rejected.
func parseInteger(literal string) (int, error) {
	digits := literal
	if len(digits) > 0 && digits[0] == '-' {
		digits = digits[1:]
	}
	if digits == "" {
		return 0, fmt.Errorf("number %s is not an integer", literal)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, fmt.Errorf("number %s is not an integer", literal)
		}
	}
	n, err := strconv.ParseInt(literal, 10, strconv.IntSize)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
