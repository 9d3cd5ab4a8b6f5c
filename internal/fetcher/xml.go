package fetcher

import (
	"encoding/xml"
	"io"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// DecodeXML decodes an XML document into v. Older EDGAR index responses
// occasionally declare non-UTF-8 charsets, so the decoder carries a
// charset reader.
func DecodeXML(r io.Reader, v any) error {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "xml: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}
	if err := decoder.Decode(v); err != nil {
		return eris.Wrap(err, "xml: decode")
	}
	return nil
}
