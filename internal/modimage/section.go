// SPDX-License-Identifier: MPL-2.0

package modimage

import "encoding/binary"

// sectionIDCustom is the section id of custom (name-tagged) sections.
const sectionIDCustom = 0

// CustomSection returns the contents of the first custom section with the
// given name. The second return value reports whether such a section exists.
//
// The scan walks the section table of the raw image. A truncated or
// inconsistent section simply ends the walk: section-level corruption is
// the runtime compiler's problem to report, not the scanner's.
func (img *Image) CustomSection(name string) ([]byte, bool) {
	data := img.Bytes
	off := 8 // past magic + version, validated at load time

	for off < len(data) {
		id := data[off]
		off++

		size, n := uvarint(data[off:])
		if n <= 0 {
			return nil, false
		}
		off += n

		end := off + int(size)
		if end < off || end > len(data) {
			return nil, false
		}

		if id == sectionIDCustom {
			if secName, body, ok := splitCustomPayload(data[off:end]); ok && secName == name {
				return body, true
			}
		}

		off = end
	}

	return nil, false
}

// splitCustomPayload splits a custom section payload into its name and body.
func splitCustomPayload(payload []byte) (name string, body []byte, ok bool) {
	nameLen, n := uvarint(payload)
	if n <= 0 {
		return "", nil, false
	}
	nameEnd := n + int(nameLen)
	if nameEnd < n || nameEnd > len(payload) {
		return "", nil, false
	}
	return string(payload[n:nameEnd]), payload[nameEnd:], true
}

// uvarint decodes an unsigned LEB128 value, the integer encoding used
// throughout the module binary format.
func uvarint(data []byte) (uint64, int) {
	var v uint64
	var shift uint
	for i, b := range data {
		if i == binary.MaxVarintLen64 {
			return 0, -1
		}
		v |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return v, i + 1
		}
		shift += 7
	}
	return 0, -1
}

// appendSection appends a custom section with the given name and body to a
// module image and returns the extended image. Used by tooling and tests to
// attach a manifest to a built module.
func appendSection(image []byte, name string, body []byte) []byte {
	payload := make([]byte, 0, len(name)+len(body)+binary.MaxVarintLen32)
	payload = binary.AppendUvarint(payload, uint64(len(name)))
	payload = append(payload, name...)
	payload = append(payload, body...)

	out := make([]byte, 0, len(image)+len(payload)+binary.MaxVarintLen32+1)
	out = append(out, image...)
	out = append(out, sectionIDCustom)
	out = binary.AppendUvarint(out, uint64(len(payload)))
	out = append(out, payload...)
	return out
}
