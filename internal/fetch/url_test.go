package fetch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		raw  string
		want ParsedURL
	}{
		{"https://fr.wikipedia.org/wiki/Avion", ParsedURL{SchemeHTTPS, "fr.wikipedia.org", 443, "/wiki/Avion"}},
		{"http://example.com", ParsedURL{SchemeHTTP, "example.com", 80, "/"}},
		{"HTTP://Example.COM:8080/a?b=c#frag", ParsedURL{SchemeHTTP, "example.com", 8080, "/a?b=c"}},
		{"https://user:pw@host/x", ParsedURL{SchemeHTTPS, "host", 443, "/x"}},
		{"https://host?q=1", ParsedURL{SchemeHTTPS, "host", 443, "/?q=1"}},
		{"http://[::1]:9000/p", ParsedURL{SchemeHTTP, "::1", 9000, "/p"}},
		{"  https://host/%C3%A9t%C3%A9  ", ParsedURL{SchemeHTTPS, "host", 443, "/%C3%A9t%C3%A9"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseURL(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseURLErrors(t *testing.T) {
	tests := []struct {
		raw  string
		want error
	}{
		{"fr.wikipedia.org/wiki/Avion", ErrMalformedURL},
		{"", ErrMalformedURL},
		{"https://", ErrMalformedURL},
		{"https://host:0/", ErrMalformedURL},
		{"https://host:65536/", ErrMalformedURL},
		{"https://host:abc/", ErrMalformedURL},
		{"http://[::1/", ErrMalformedURL},
		{"ftp://host/file", ErrUnsupportedScheme},
		{"file:///etc/passwd", ErrUnsupportedScheme},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := ParseURL(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestParsedURLStringRoundTrip(t *testing.T) {
	for _, raw := range []string{
		"https://fr.wikipedia.org/wiki/Avion",
		"http://example.com:8080/a/b?c=d",
		"http://[::1]:9000/p",
		"https://example.com/",
	} {
		u, err := ParseURL(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, u.String())

		again, err := ParseURL(u.String())
		require.NoError(t, err)
		assert.Equal(t, u, again)
	}
}

func TestAddressAndHostHeader(t *testing.T) {
	u, err := ParseURL("https://fr.wikipedia.org/wiki/Avion")
	require.NoError(t, err)
	assert.Equal(t, "fr.wikipedia.org:443", u.Address())
	assert.Equal(t, "fr.wikipedia.org", u.HostHeader())

	u, err = ParseURL("http://[::1]:8080/")
	require.NoError(t, err)
	assert.Equal(t, "[::1]:8080", u.Address())
	assert.Equal(t, "[::1]:8080", u.HostHeader())
}

func TestResolve(t *testing.T) {
	base, err := ParseURL("https://fr.wikipedia.org/wiki/Avion?x=1")
	require.NoError(t, err)

	tests := []struct {
		ref  string
		want string
	}{
		{"/wiki/Aile", "https://fr.wikipedia.org/wiki/Aile"},
		{"Aile", "https://fr.wikipedia.org/wiki/Aile"},
		{"//upload.wikimedia.org/a.png", "https://upload.wikimedia.org/a.png"},
		{"http://other.org/x", "http://other.org/x"},
		{"?y=2", "https://fr.wikipedia.org/wiki/Avion?y=2"},
		{"/wiki/Aile#Histoire", "https://fr.wikipedia.org/wiki/Aile"},
		{"", "https://fr.wikipedia.org/wiki/Avion?x=1"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := base.Resolve(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestEncodeQuerySegment(t *testing.T) {
	assert.Equal(t, "Avion", EncodeQuerySegment("Avion"))
	// space is %20, never '+'
	assert.Equal(t, "Tour%20Eiffel", EncodeQuerySegment("Tour Eiffel"))
	assert.Equal(t, "a%26b%3Dc%2Bd", EncodeQuerySegment("a&b=c+d"))
	assert.Equal(t, "%C3%A9t%C3%A9", EncodeQuerySegment("été"))
	assert.Equal(t, "-_.~", EncodeQuerySegment("-_.~"))
}

func TestArticlePath(t *testing.T) {
	assert.Equal(t, "/wiki/Tour_Eiffel", ArticlePath("Tour Eiffel"))
	assert.Equal(t, "/wiki/Avion", ArticlePath("  Avion "))
	assert.Equal(t, "/wiki/%C3%89t%C3%A9", ArticlePath("Été"))
}
