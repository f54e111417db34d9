package graphfile

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Format is a graph file encoding.
type Format uint8

const (
	FormatJSON Format = iota + 1
	FormatMsgpack
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "unknown"
	}
}

// FormatOf picks the encoding from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".msgpack", ".mpk":
		return FormatMsgpack, nil
	default:
		return 0, errors.WithHint(
			errors.Newf("%s: unknown graph file extension", path),
			"use .json, .msgpack or .mpk")
	}
}

// Decode reads one document. Unknown JSON fields are rejected so typos in
// hand-written graphs surface early.
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode json graph")
		}
	case FormatMsgpack:
		dec := msgpack.NewDecoder(r)
		dec.SetCustomStructTag("json")
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode msgpack graph")
		}
	default:
		return nil, errors.Newf("unsupported graph format %v", format)
	}
	return &doc, nil
}

// Encode writes one document.
func Encode(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(doc), "encode json graph")
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		enc.SetOmitEmpty(true)
		return errors.Wrap(enc.Encode(doc), "encode msgpack graph")
	default:
		return errors.Newf("unsupported graph format %v", format)
	}
}

// ReadFile decodes the document at path, picking the format by extension.
// It also returns the raw bytes for content hashing.
func ReadFile(path string) (*Document, []byte, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read graph %s", path)
	}
	doc, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%s", path)
	}
	return doc, data, nil
}

// WriteFile encodes doc to path, picking the format by extension.
func WriteFile(path string, doc *Document) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, doc, format); err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(path, buf.Bytes(), 0o644), "write graph %s", path)
}
