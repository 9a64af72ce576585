package store

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var errInvalidUTF8 = errors.New("content is not valid UTF-8")

// EncodeText turns text into the base64 form the contents API stores.
func EncodeText(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

// DecodeText reverses EncodeText. Line breaks and spaces, which the API
// inserts every 60 characters, are ignored.
func DecodeText(encoded string) (string, error) {
	compact := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, encoded)

	decoded, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return "", fmt.Errorf("decoding base64: %w", err)
	}
	if !utf8.Valid(decoded) {
		return "", errInvalidUTF8
	}
	return string(decoded), nil
}

// MarshalDocument renders v as two-space indented JSON without HTML
// escaping and without a trailing newline.
func MarshalDocument(v any) (string, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return "", fmt.Errorf("marshalling document: %w", err)
	}
	return strings.TrimSuffix(buffer.String(), "\n"), nil
}

func EncodeDocument(v any) (string, error) {
	text, err := MarshalDocument(v)
	if err != nil {
		return "", err
	}
	return EncodeText(text), nil
}

func DecodeDocument(encoded string, v any) error {
	text, err := DecodeText(encoded)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("parsing document: %w", err)
	}
	return nil
}
