package transformer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAtivo(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"true", "TRUE", " True "} {
		assert.True(t, ParseAtivo(in), "%q", in)
	}
	for _, in := range []string{"false", "0", "", "null", "1", "t", "'true'"} {
		assert.False(t, ParseAtivo(in), "%q", in)
	}
}

func TestParseFundoMunicipalID(t *testing.T) {
	t.Parallel()

	v, err := ParseFundoMunicipalID("NULL")
	require.NoError(t, err)
	assert.Zero(t, v)

	v, err = ParseFundoMunicipalID("42")
	require.NoError(t, err)
	assert.EqualValues(t, 42, v)

	_, err = ParseFundoMunicipalID("abc")
	assert.Error(t, err)

	// Only the exact upper-case sentinel is NULL.
	_, err = ParseFundoMunicipalID("null")
	assert.Error(t, err)
}

func TestStripQuotes(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"'texto'":     "texto",
		"texto":       "texto",
		"'it''s'":     "it''s",
		"''":          "",
		"'a'b'":       "a'b",
		"sem 'aspas'": "sem 'aspas",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripQuotes(in), "%q", in)
	}
}

func TestParseDataCriacao(t *testing.T) {
	t.Parallel()

	ts, err := ParseDataCriacao("2025-01-15 10:30:00.123456")
	require.NoError(t, err)
	assert.Equal(t, 2025, ts.Year())
	assert.Equal(t, time.January, ts.Month())
	assert.Equal(t, 15, ts.Day())
	assert.Equal(t, 10, ts.Hour())
	assert.Equal(t, 30, ts.Minute())
	assert.Equal(t, 0, ts.Second())
	assert.Equal(t, 123456, ts.Nanosecond()/1000)

	ts, err = ParseDataCriacao("2025-01-01 00:00:00.0")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), ts)

	for _, bad := range []string{
		"",
		"2025-01-15",
		"2025-01-15 10:30:00",
		"2025-01-15 10:30:00.",
		"2025-01-15T10:30:00.1",
		"15/01/2025 10:30:00.1",
		"2025-13-15 10:30:00.1",
		"2025-01-15 10:30:00.1234567890",
		"2025-01-15 10:30:00.12a",
	} {
		_, err := ParseDataCriacao(bad)
		assert.Error(t, err, "%q", bad)
	}
}

func TestParseInt(t *testing.T) {
	t.Parallel()

	v, err := ParseInt(" 17 ")
	require.NoError(t, err)
	assert.EqualValues(t, 17, v)

	_, err = ParseInt("'17'")
	assert.Error(t, err)
}
