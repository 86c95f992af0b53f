package exchange

import "encoding/json"

// MaxPayloadSize caps the single read performed per message.
const MaxPayloadSize = 1024

// Request is sent by the initiator.
type Request struct {
	Name   string `json:"name"`
	Number int    `json:"number"`
}

// Response is sent by the responder for an accepted request.
type Response struct {
	Name   string `json:"name"`
	Number int    `json:"number"`
}

// message is the shared decode shape; nil or null values mark absent keys.
type message struct {
	Name   *string         `json:"name"`
	Number json.RawMessage `json:"number"`
}
