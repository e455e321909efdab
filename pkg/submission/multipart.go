package submission

import (
	"bytes"
	"regexp"
	"strings"
)

var (
	boundaryRe = regexp.MustCompile(`boundary=([^\s;]+)`)
	nameRe     = regexp.MustCompile(`name="([^"]+)"`)
	filenameRe = regexp.MustCompile(`filename="([^"]*)"`)
)

// ParseMultipart decodes a raw multipart/form-data body into a map of
// parts keyed by field name. Repeated field names are last-write-wins.
//
// The parser is deliberately lenient: segments without a parseable
// name="..." disposition are skipped rather than rejected, since some
// well-formed clients emit unnamed preamble parts. The only fatal
// condition is a content type with no boundary token.
func ParseMultipart(contentType string, body []byte) (map[string]Part, error) {
	m := boundaryRe.FindStringSubmatch(contentType)
	if m == nil {
		return nil, ErrMissingBoundary
	}

	boundary := strings.Trim(m[1], `"'`)
	delimiter := []byte("--" + boundary)

	segments := bytes.Split(body, delimiter)
	parsed := make(map[string]Part)

	for _, segment := range segments {
		// Preamble and the closing delimiter carry no payload.
		trimmed := string(bytes.TrimSpace(segment))
		if len(segment) == 0 || trimmed == "" || trimmed == "--" {
			continue
		}

		// Split once on the first blank line: header block, content block.
		// Canonical CRLF first, bare LF as a fallback.
		var rawHeaders, rawBody []byte
		if idx := bytes.Index(segment, []byte("\r\n\r\n")); idx >= 0 {
			rawHeaders, rawBody = segment[:idx], segment[idx+4:]
		} else if idx := bytes.Index(segment, []byte("\n\n")); idx >= 0 {
			rawHeaders, rawBody = segment[:idx], segment[idx+2:]
		} else {
			continue
		}

		// The delimiter is preceded by a CRLF that belongs to the
		// framing, not the content.
		rawBody = bytes.TrimSuffix(rawBody, []byte("\r\n"))

		headerText := string(rawHeaders)

		nameMatch := nameRe.FindStringSubmatch(headerText)
		if nameMatch == nil {
			continue
		}

		part := Part{
			Name:  nameMatch[1],
			Value: rawBody,
		}

		// filename="" is a legitimate, present-but-empty filename and
		// must be distinguished from an absent filename.
		if fm := filenameRe.FindStringSubmatch(headerText); fm != nil {
			filename := fm[1]
			part.Filename = &filename
		}

		parsed[part.Name] = part
	}

	return parsed, nil
}
