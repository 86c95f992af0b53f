package exchange

import "encoding/json"

// EncodeRequest renders req as one JSON object.
func EncodeRequest(req Request) ([]byte, error) {
	return encode(req)
}

// EncodeResponse renders resp as one JSON object.
func EncodeResponse(resp Response) ([]byte, error) {
	return encode(resp)
}

func encode(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(payload) > MaxPayloadSize {
		return nil, ErrPayloadTooLarge
	}
	return payload, nil
}
