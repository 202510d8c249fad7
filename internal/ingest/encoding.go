package ingest

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
)

// Encoding names recorded on the dataset for display.
const (
	EncodingUTF8    = "utf-8"
	EncodingUTF8BOM = "utf-8-sig"
	EncodingEUCKR   = "euc-kr"
	EncodingLatin1  = "latin-1"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText sniffs the byte stream's encoding and returns UTF-8 text.
// Korean bookkeeping exports commonly arrive as CP949/EUC-KR; the fallback
// order matches what those files need: UTF-8, UTF-8 with BOM, EUC-KR, then
// Latin-1 as the decode-anything last resort.
func decodeText(raw []byte) (string, string) {
	if bytes.HasPrefix(raw, utf8BOM) {
		return string(raw[len(utf8BOM):]), EncodingUTF8BOM
	}
	if utf8.Valid(raw) {
		return string(raw), EncodingUTF8
	}
	if decoded, err := korean.EUCKR.NewDecoder().Bytes(raw); err == nil && !bytes.ContainsRune(decoded, utf8.RuneError) {
		return string(decoded), EncodingEUCKR
	}
	decoded, _ := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	return string(decoded), EncodingLatin1
}
