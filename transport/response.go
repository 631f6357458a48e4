package transport

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	nethttp "net/http"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/stackmode/fireadmin/apperror"
)

// Response is the uniform wrapper around a completed HTTP exchange.
// Header names are case-folded to lowercase; the body is stored
// decompressed. A Response is immutable after construction.
type Response struct {
	Status int
	Header map[string]string
	Body   []byte

	parts [][]byte
}

// IsJSON reports whether the response declares a JSON content type.
func (r *Response) IsJSON() bool {
	return strings.HasPrefix(r.Header["content-type"], "application/json")
}

// Text returns the body decoded as text with trailing whitespace trimmed.
// Multipart responses have no single text representation and return an
// app/parse-error.
func (r *Response) Text() (string, error) {
	if r.parts != nil {
		return "", apperror.New(apperror.PrefixApp, apperror.CodeParseError,
			"unable to interpret a multipart response as text")
	}
	return strings.TrimRightFunc(string(r.Body), unicode.IsSpace), nil
}

// Data returns the body parsed as JSON. Non-JSON bodies and multipart
// responses return an app/parse-error.
func (r *Response) Data() (any, error) {
	var data any
	if err := r.Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	text, err := r.Text()
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return apperror.Wrap(apperror.PrefixApp, apperror.CodeParseError,
			fmt.Sprintf("error while parsing response data: %q", text), err)
	}
	return nil
}

// Multipart returns the raw content bytes of each MIME part, in order.
// It is nil for non-multipart responses. Each segment is one part's
// payload with the part's own header block stripped.
func (r *Response) Multipart() [][]byte {
	return r.parts
}

// newResponse normalizes a transport-native status/header/body triple into
// a Response: header names lowercased, body decompressed with the
// content-encoding header stripped, and multipart bodies split into parts.
func newResponse(status int, header nethttp.Header, body []byte) (*Response, error) {
	headers := make(map[string]string, len(header))
	for name, values := range header {
		headers[strings.ToLower(name)] = strings.Join(values, ", ")
	}
	return buildResponse(status, headers, body)
}

func buildResponse(status int, headers map[string]string, body []byte) (*Response, error) {
	if encoding, ok := headers["content-encoding"]; ok {
		decoded, err := decompress(encoding, body)
		if err != nil {
			return nil, apperror.Wrap(apperror.PrefixApp, apperror.CodeParseError,
				fmt.Sprintf("failed to decompress %s response body", encoding), err)
		}
		body = decoded
		// Callers must never see a stale encoding header next to
		// decoded bytes.
		delete(headers, "content-encoding")
	}

	resp := &Response{Status: status, Header: headers, Body: body}

	if strings.Contains(headers["content-type"], "multipart/") {
		parts, err := splitMultipart(headers["content-type"], body)
		if err != nil {
			return nil, err
		}
		resp.parts = parts
	}
	return resp, nil
}

// statusLineRE matches "HTTP/<version> <code> <reason>".
var statusLineRE = regexp.MustCompile(`^HTTP/[\d.]+\s+(\d+)\s*(.*)$`)

// ParseHTTPResponse parses a raw serialized HTTP response, as found in
// each part of a multipart batch payload:
//
//	HTTP/1.1 200 OK\r\nHeader: value\r\n\r\n<body>
//
// Header names are lowercased and a compressed body is decoded, exactly
// as for live responses.
func ParseHTTPResponse(raw []byte) (*Response, error) {
	head, body, _ := bytes.Cut(raw, []byte("\r\n\r\n"))
	lines := strings.Split(string(head), "\r\n")

	match := statusLineRE.FindStringSubmatch(strings.TrimSpace(lines[0]))
	if match == nil {
		return nil, apperror.New(apperror.PrefixApp, apperror.CodeInternalError,
			"malformed HTTP status line")
	}
	status, err := strconv.Atoi(match[1])
	if err != nil {
		return nil, apperror.New(apperror.PrefixApp, apperror.CodeInternalError,
			"malformed HTTP status line")
	}

	headers := make(map[string]string, len(lines)-1)
	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		headers[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(value)
	}
	return buildResponse(status, headers, body)
}

// splitMultipart extracts the raw content of each MIME part.
func splitMultipart(contentType string, body []byte) ([][]byte, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil || params["boundary"] == "" {
		return nil, apperror.New(apperror.PrefixApp, apperror.CodeParseError,
			"multipart response is missing a boundary parameter")
	}

	var parts [][]byte
	reader := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperror.Wrap(apperror.PrefixApp, apperror.CodeParseError,
				"failed to parse multipart response body", err)
		}
		content, err := io.ReadAll(part)
		if err != nil {
			return nil, apperror.Wrap(apperror.PrefixApp, apperror.CodeParseError,
				"failed to read multipart response part", err)
		}
		parts = append(parts, content)
	}
	if parts == nil {
		parts = [][]byte{}
	}
	return parts, nil
}

// decompress decodes a gzip or deflate encoded body. Deflate on the wire
// is usually zlib-wrapped but some servers send raw deflate streams, so
// both forms are accepted.
func decompress(encoding string, body []byte) ([]byte, error) {
	switch {
	case strings.Contains(encoding, "gzip"):
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		return io.ReadAll(reader)
	case strings.Contains(encoding, "deflate"):
		if reader, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
			defer reader.Close()
			return io.ReadAll(reader)
		}
		reader := flate.NewReader(bytes.NewReader(body))
		defer reader.Close()
		return io.ReadAll(reader)
	default:
		return body, nil
	}
}
