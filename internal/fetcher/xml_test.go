package fetcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeXML(t *testing.T) {
	type filing struct {
		Date string `xml:"dateFiled"`
		Type string `xml:"type"`
	}
	var got filing
	err := DecodeXML(strings.NewReader(`<filing><dateFiled>2024-03-31</dateFiled><type>NPORT-P</type></filing>`), &got)
	require.NoError(t, err)
	assert.Equal(t, "NPORT-P", got.Type)
	assert.Equal(t, "2024-03-31", got.Date)
}

func TestDecodeXMLDeclaredCharset(t *testing.T) {
	type doc struct {
		Name string `xml:"name"`
	}
	var got doc
	in := `<?xml version="1.0" encoding="ISO-8859-1"?><doc><name>fund</name></doc>`
	err := DecodeXML(strings.NewReader(in), &got)
	require.NoError(t, err)
	assert.Equal(t, "fund", got.Name)
}

func TestDecodeXMLMalformed(t *testing.T) {
	var got struct{}
	assert.Error(t, DecodeXML(strings.NewReader("<unclosed"), &got))
}
