// pkg/codec/jsoncodec.go
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	ContentType() string
}

type jsonStrict struct{}

type jsonLenient struct{}

// JSONStrict rejects unknown fields and trailing content. Used for envelopes.
var JSONStrict Codec = jsonStrict{}

// JSON accepts unknown fields. Used for handler payloads and journal entries.
var JSON Codec = jsonLenient{}

func marshal(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func unmarshal(data []byte, v any, strict bool) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	// Numbers land in `any` as json.Number so big integers survive a round trip.
	dec.UseNumber()
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}
	// Probe for trailing data (must be EOF)
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return fmt.Errorf("json trailing content")
	}
	return nil
}

func (jsonStrict) Marshal(v any) ([]byte, error)      { return marshal(v) }
func (jsonStrict) Unmarshal(data []byte, v any) error { return unmarshal(data, v, true) }
func (jsonStrict) ContentType() string                { return "application/json" }

func (jsonLenient) Marshal(v any) ([]byte, error)      { return marshal(v) }
func (jsonLenient) Unmarshal(data []byte, v any) error { return unmarshal(data, v, false) }
func (jsonLenient) ContentType() string                { return "application/json" }
