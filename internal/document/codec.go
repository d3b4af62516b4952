package document

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrNotText is returned when file bytes cannot be decoded as text.
var ErrNotText = errors.New("file is not valid UTF-8 text")

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Encoding is the byte encoding of a file on disk.
type Encoding int

const (
	UTF8 Encoding = iota
	UTF8BOM
	UTF16LE
	UTF16BE
)

func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "utf-8"
	case UTF8BOM:
		return "utf-8-bom"
	case UTF16LE:
		return "utf-16le"
	case UTF16BE:
		return "utf-16be"
	default:
		return "unknown"
	}
}

// Format records what Decode stripped from a file so Encode can write the
// same bytes back.
type Format struct {
	Encoding Encoding
	// Breaks has one entry per line break in the file, true where the break
	// was \r\n. Breaks past the end reuse the last entry.
	Breaks []bool
}

// crlfAt reports whether line break i should be written as \r\n.
func (f Format) crlfAt(i int) bool {
	if len(f.Breaks) == 0 {
		return false
	}
	if i < len(f.Breaks) {
		return f.Breaks[i]
	}
	return f.Breaks[len(f.Breaks)-1]
}

// CRLF reports whether any line break in the file was \r\n.
func (f Format) CRLF() bool {
	for _, crlf := range f.Breaks {
		if crlf {
			return true
		}
	}
	return false
}

// Decoded is file content converted for editing.
type Decoded struct {
	Text   string
	Format Format
}

// Decode converts raw file bytes into editor text. UTF-8 (with or without a
// byte order mark) and BOM-prefixed UTF-16 are accepted; anything else fails
// with ErrNotText. Every \r\n is folded to \n and remembered in the Format.
func Decode(data []byte) (Decoded, error) {
	var f Format
	switch {
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		if len(data)%2 != 0 {
			return Decoded{}, fmt.Errorf("%w: truncated UTF-16", ErrNotText)
		}
		f.Encoding = UTF16BE
		if bytes.HasPrefix(data, bomUTF16LE) {
			f.Encoding = UTF16LE
		}
	case !utf8.Valid(data):
		return Decoded{}, ErrNotText
	case bytes.HasPrefix(data, bomUTF8):
		f.Encoding = UTF8BOM
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return Decoded{}, fmt.Errorf("%w: %v", ErrNotText, err)
	}

	var sb strings.Builder
	sb.Grow(len(out))
	rest := string(out)
	for {
		i := strings.IndexByte(rest, '\n')
		if i < 0 {
			sb.WriteString(rest)
			break
		}
		line := rest[:i]
		crlf := strings.HasSuffix(line, "\r")
		if crlf {
			line = line[:len(line)-1]
		}
		f.Breaks = append(f.Breaks, crlf)
		sb.WriteString(line)
		sb.WriteByte('\n')
		rest = rest[i+1:]
	}
	return Decoded{Text: sb.String(), Format: f}, nil
}

// Encode converts editor text back to file bytes in format f. Text read
// with Decode and left unchanged encodes to the original bytes.
func Encode(text string, f Format) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(text) + len(f.Breaks) + len(bomUTF8))
	if f.Encoding == UTF8BOM {
		buf.Write(bomUTF8)
	}
	for i := 0; ; i++ {
		j := strings.IndexByte(text, '\n')
		if j < 0 {
			buf.WriteString(text)
			break
		}
		buf.WriteString(text[:j])
		if f.crlfAt(i) {
			buf.WriteString("\r\n")
		} else {
			buf.WriteByte('\n')
		}
		text = text[j+1:]
	}

	var enc encoding.Encoding
	switch f.Encoding {
	case UTF16LE:
		enc = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case UTF16BE:
		enc = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	default:
		return buf.Bytes(), nil
	}
	out, err := enc.NewEncoder().Bytes(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", f.Encoding, err)
	}
	return out, nil
}
