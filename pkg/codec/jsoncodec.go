// pkg/codec/jsoncodec.go
package codec

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
)

type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	ContentType() string
}

// ErrTrailing is returned when a payload holds more than one JSON value.
var ErrTrailing = errors.New("json trailing content")

type jsonStrict struct{}

// JSONStrict rejects unknown fields and trailing data on decode, and never
// HTML-escapes on encode.
var JSONStrict Codec = jsonStrict{}

func (jsonStrict) Marshal(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "json encode")
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (jsonStrict) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "json decode")
	}
	// must be EOF
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return ErrTrailing
	}
	return nil
}

func (jsonStrict) ContentType() string { return "application/json" }
