// Package connection patches Remote Desktop connection profiles and starts
// the client on the result.
package connection

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Directive keys touched by Patch.
const (
	MultimonKey         = "use multimon:i:"
	SelectedMonitorsKey = "selectedmonitors:s:"
)

// Keys match case-insensitively at line start and never span lines; the
// optional \r keeps CRLF files intact.
var (
	multimonRe         = regexp.MustCompile(`(?im)^(use[ \t]multimon:i:)[^\r\n]*(\r?)$`)
	selectedMonitorsRe = regexp.MustCompile(`(?im)^(selectedmonitors:s:)[^\r\n]*(\r?)$`)
)

// Encoding is the on-disk text encoding of a profile.
type Encoding int

const (
	EncodingUTF8 Encoding = iota
	EncodingUTF8BOM
	EncodingUTF16LE // what mstsc writes when saving a profile
	EncodingUTF16BE
)

func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "utf-8"
	case EncodingUTF8BOM:
		return "utf-8-bom"
	case EncodingUTF16LE:
		return "utf-16le"
	case EncodingUTF16BE:
		return "utf-16be"
	default:
		return "unknown"
	}
}

func (e Encoding) textEncoding() encoding.Encoding {
	switch e {
	case EncodingUTF8BOM:
		return unicode.UTF8BOM
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	default:
		return encoding.Nop
	}
}

// DetectEncoding inspects the byte order mark. Files without one are UTF-8.
func DetectEncoding(data []byte) Encoding {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return EncodingUTF8BOM
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return EncodingUTF16LE
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return EncodingUTF16BE
	default:
		return EncodingUTF8
	}
}

// DecodeProfile returns the profile text without its byte order mark.
func DecodeProfile(data []byte) (string, Encoding, error) {
	enc := DetectEncoding(data)
	text, err := enc.textEncoding().NewDecoder().Bytes(data)
	if err != nil {
		return "", enc, fmt.Errorf("decode %s profile: %w", enc, err)
	}
	return string(text), enc, nil
}

// EncodeProfile is the inverse of DecodeProfile.
func EncodeProfile(text string, enc Encoding) ([]byte, error) {
	data, err := enc.textEncoding().NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode %s profile: %w", enc, err)
	}
	return data, nil
}

// FormatMonitorList joins ids ascending with commas. Duplicates are dropped
// and an empty list gives "".
func FormatMonitorList(ids []uint32) string {
	sorted := append([]uint32(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, 0, len(sorted))
	for i, id := range sorted {
		if i > 0 && sorted[i-1] == id {
			continue
		}
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	return strings.Join(parts, ",")
}

// ParseMonitorList parses "0, 2,3" into ids. An empty string gives none.
func ParseMonitorList(s string) ([]uint32, error) {
	var ids []uint32
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid monitor id %q", part)
		}
		ids = append(ids, uint32(n))
	}
	return ids, nil
}

// Patch enables multi-monitor mode and restricts the session to ids.
// Existing directives keep their key spelling and position; missing ones are
// appended. Patching its own output again returns it unchanged.
func Patch(text string, ids []uint32) string {
	eol := "\n"
	if strings.Contains(text, "\r\n") {
		eol = "\r\n"
	}
	text = upsertDirective(text, multimonRe, MultimonKey, "1", eol)
	text = upsertDirective(text, selectedMonitorsRe, SelectedMonitorsKey, FormatMonitorList(ids), eol)
	return text
}

func upsertDirective(text string, re *regexp.Regexp, key, value, eol string) string {
	if re.MatchString(text) {
		// value is digits and commas only, so it cannot form a $ reference.
		return re.ReplaceAllString(text, "${1}"+value+"${2}")
	}
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += eol
	}
	return text + key + value + eol
}
