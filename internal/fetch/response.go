package fetch

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// HeaderField is one response header line, name kept as received.
type HeaderField struct {
	Name  string
	Value string
}

// Header keeps response headers in wire order. Lookups ignore case.
type Header []HeaderField

func (h Header) Get(name string) string {
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			return f.Value
		}
	}
	return ""
}

func (h Header) Values(name string) []string {
	var out []string
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			out = append(out, f.Value)
		}
	}
	return out
}

type Response struct {
	StatusCode int
	Reason     string
	Header     Header
	Body       []byte
	// URL is the final target after redirects.
	URL ParsedURL
}

func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// CheckStatus returns an ErrHTTPStatus error for anything outside 2xx.
func (r *Response) CheckStatus() error {
	if r.StatusCode >= 200 && r.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("%w: %d %s for %s", ErrHTTPStatus, r.StatusCode, r.Reason, r.URL.String())
}

// ReadResponse parses one response from br. The body is framed by chunked
// encoding first, then Content-Length, then the end of the stream.
func ReadResponse(br *bufio.Reader) (*Response, error) {
	line, err := readLine(br)
	if err != nil {
		return nil, err
	}
	resp, err := parseStatusLine(line)
	if err != nil {
		return nil, err
	}

	for {
		line, err := readLine(br)
		if err != nil {
			return nil, err
		}
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: malformed header line %q", ErrProtocol, line)
		}
		resp.Header = append(resp.Header, HeaderField{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}

	if !hasBody(resp.StatusCode) {
		return resp, nil
	}

	switch {
	case isChunked(resp.Header):
		resp.Body, err = readChunked(br)
	case resp.Header.Get("Content-Length") != "":
		resp.Body, err = readFixed(br, resp.Header.Get("Content-Length"))
	default:
		resp.Body, err = readToClose(br)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func parseStatusLine(line string) (*Response, error) {
	proto, rest, ok := strings.Cut(line, " ")
	if !ok || !strings.HasPrefix(proto, "HTTP/") {
		return nil, fmt.Errorf("%w: malformed status line %q", ErrProtocol, line)
	}
	codeText, reason, _ := strings.Cut(strings.TrimSpace(rest), " ")
	code, err := strconv.Atoi(codeText)
	if err != nil || code < 100 || code > 999 {
		return nil, fmt.Errorf("%w: malformed status code %q", ErrProtocol, codeText)
	}
	return &Response{StatusCode: code, Reason: strings.TrimSpace(reason)}, nil
}

func hasBody(code int) bool {
	return !(code < 200 || code == 204 || code == 304)
}

func isChunked(h Header) bool {
	for _, v := range h.Values("Transfer-Encoding") {
		for _, coding := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(coding), "chunked") {
				return true
			}
		}
	}
	return false
}

func readChunked(br *bufio.Reader) ([]byte, error) {
	var body bytes.Buffer
	for {
		line, err := readLine(br)
		if err != nil {
			return nil, err
		}
		sizeText, _, _ := strings.Cut(line, ";")
		sizeText = strings.TrimSpace(sizeText)
		size, err := strconv.ParseInt(sizeText, 16, 64)
		if err != nil || size < 0 {
			return nil, fmt.Errorf("%w: malformed chunk size %q", ErrProtocol, line)
		}
		if size == 0 {
			break
		}
		if _, err := io.CopyN(&body, br, size); err != nil {
			return nil, readErr(err)
		}
		crlf, err := readLine(br)
		if err != nil {
			return nil, err
		}
		if crlf != "" {
			return nil, fmt.Errorf("%w: missing CRLF after chunk", ErrProtocol)
		}
	}

	// trailers, up to the blank line
	for {
		line, err := readLine(br)
		if err != nil {
			if errors.Is(err, ErrTruncatedResponse) {
				break
			}
			return nil, err
		}
		if line == "" {
			break
		}
	}
	return body.Bytes(), nil
}

func readFixed(br *bufio.Reader, lengthText string) ([]byte, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(lengthText), 10, 64)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: malformed Content-Length %q", ErrProtocol, lengthText)
	}
	// grow with the bytes actually received, not the announced length
	var body bytes.Buffer
	if _, err := io.CopyN(&body, br, n); err != nil {
		return nil, readErr(err)
	}
	return body.Bytes(), nil
}

func readToClose(br *bufio.Reader) ([]byte, error) {
	body, err := io.ReadAll(br)
	if err != nil {
		return nil, readErr(err)
	}
	return body, nil
}

// readLine returns one CRLF (or bare LF) terminated line without the terminator.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return "", readErr(err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func readErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrTruncatedResponse, err)
	}
	// timeouts and resets on the stream
	return &ConnectionError{Op: "read", Err: err}
}
