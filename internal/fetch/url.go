package fetch

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

type Scheme string

const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
)

// DefaultPort returns 80 or 443.
func (s Scheme) DefaultPort() int {
	if s == SchemeHTTPS {
		return 443
	}
	return 80
}

// ParsedURL is the request target used by the transport. Path includes the query.
type ParsedURL struct {
	Scheme Scheme
	Host   string
	Port   int
	Path   string
}

func ParseURL(raw string) (ParsedURL, error) {
	raw = strings.TrimSpace(raw)
	idx := strings.Index(raw, "://")
	if idx <= 0 {
		return ParsedURL{}, fmt.Errorf("%w: %q has no scheme", ErrMalformedURL, raw)
	}

	scheme := Scheme(strings.ToLower(raw[:idx]))
	if scheme != SchemeHTTP && scheme != SchemeHTTPS {
		return ParsedURL{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, raw[:idx])
	}

	rest := raw[idx+3:]
	authority, path := rest, ""
	if cut := strings.IndexAny(rest, "/?#"); cut >= 0 {
		authority, path = rest[:cut], rest[cut:]
	}
	if at := strings.LastIndex(authority, "@"); at >= 0 {
		authority = authority[at+1:]
	}

	host, port, err := splitAuthority(authority, scheme)
	if err != nil {
		return ParsedURL{}, err
	}

	if hash := strings.Index(path, "#"); hash >= 0 {
		path = path[:hash]
	}
	switch {
	case path == "":
		path = "/"
	case strings.HasPrefix(path, "?"):
		path = "/" + path
	}

	return ParsedURL{Scheme: scheme, Host: host, Port: port, Path: path}, nil
}

func splitAuthority(authority string, scheme Scheme) (string, int, error) {
	host, portStr := authority, ""
	if strings.HasPrefix(authority, "[") {
		end := strings.Index(authority, "]")
		if end < 0 {
			return "", 0, fmt.Errorf("%w: unterminated ipv6 host %q", ErrMalformedURL, authority)
		}
		host = authority[1:end]
		tail := authority[end+1:]
		if tail != "" {
			if !strings.HasPrefix(tail, ":") {
				return "", 0, fmt.Errorf("%w: unexpected %q after host", ErrMalformedURL, tail)
			}
			portStr = tail[1:]
		}
	} else if colon := strings.LastIndex(authority, ":"); colon >= 0 {
		host, portStr = authority[:colon], authority[colon+1:]
	}

	if host == "" {
		return "", 0, fmt.Errorf("%w: empty host", ErrMalformedURL)
	}

	port := scheme.DefaultPort()
	if portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil || p <= 0 || p > 65535 {
			return "", 0, fmt.Errorf("%w: invalid port %q", ErrMalformedURL, portStr)
		}
		port = p
	}
	return strings.ToLower(host), port, nil
}

func (u ParsedURL) String() string {
	return string(u.Scheme) + "://" + u.HostHeader() + u.Path
}

// Address is the dial target, host:port with IPv6 literals bracketed.
func (u ParsedURL) Address() string {
	return net.JoinHostPort(u.Host, strconv.Itoa(u.Port))
}

// HostHeader omits the port when it is the scheme default.
func (u ParsedURL) HostHeader() string {
	host := u.Host
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if u.Port == u.Scheme.DefaultPort() {
		return host
	}
	return host + ":" + strconv.Itoa(u.Port)
}

// Resolve returns the target of a reference found in a page or a Location header.
func (u ParsedURL) Resolve(ref string) (ParsedURL, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return u, nil
	case strings.Contains(ref, "://"):
		return ParseURL(ref)
	case strings.HasPrefix(ref, "//"):
		return ParseURL(string(u.Scheme) + ":" + ref)
	}

	if hash := strings.Index(ref, "#"); hash >= 0 {
		ref = ref[:hash]
	}
	next := u
	switch {
	case ref == "":
	case strings.HasPrefix(ref, "/"):
		next.Path = ref
	case strings.HasPrefix(ref, "?"):
		next.Path = stripQuery(u.Path) + ref
	default:
		dir := stripQuery(u.Path)
		dir = dir[:strings.LastIndex(dir, "/")+1]
		next.Path = dir + ref
	}
	return next, nil
}

func stripQuery(path string) string {
	if q := strings.Index(path, "?"); q >= 0 {
		return path[:q]
	}
	return path
}

const upperHex = "0123456789ABCDEF"

// EncodeQuerySegment percent-encodes s for a query value. Space becomes %20, never '+'.
func EncodeQuerySegment(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}
	return b.String()
}

// ArticlePath builds /wiki/<title> the way article URLs are written: spaces become
// underscores and everything else outside the unreserved set is percent-encoded.
func ArticlePath(title string) string {
	title = strings.Join(strings.Fields(title), "_")
	return "/wiki/" + EncodeQuerySegment(title)
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	}
	return false
}
