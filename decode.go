package karaoke

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/QEStudios/karaoke/config"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func decoder(enc config.Encoding) (encoding.Encoding, error) {
	switch enc {
	case config.Latin1, "":
		return charmap.ISO8859_1, nil
	case config.Windows1252:
		return charmap.Windows1252, nil
	case config.GBK:
		return simplifiedchinese.GBK, nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", enc)
}

// ReadScore reads a whole score and returns it as UTF-8 text.
// A UTF-8 byte order mark is dropped. Input that is not valid UTF-8 is
// decoded from the fallback encoding instead; an empty fallback means Latin-1.
func ReadScore(r io.Reader, fallback config.Encoding) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading score: %w", err)
	}

	if bytes.HasPrefix(data, utf8BOM) {
		return string(bytes.TrimPrefix(data, utf8BOM)), nil
	}
	if utf8.Valid(data) {
		return string(data), nil
	}

	enc, err := decoder(fallback)
	if err != nil {
		return "", err
	}
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("failed to decode score as %s: %w", fallback, err)
	}
	return string(decoded), nil
}
