package model

import "unicode/utf16"

// Offsets in the model count UTF-16 code units, matching the selection offsets a
// browser surface reports. Values are stored as Go strings and converted on demand.

func toUnits(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

func fromUnits(units []uint16) string {
	return string(utf16.Decode(units))
}

// UnitLen returns the length of s in UTF-16 code units.
func UnitLen(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// UnitSlice returns the substring of s between UTF-16 offsets from and to,
// clamped to the bounds of s.
func UnitSlice(s string, from, to int) string {
	units := toUnits(s)
	from = clamp(from, 0, len(units))
	to = clamp(to, from, len(units))
	return fromUnits(units[from:to])
}

// UnitInsert inserts text into s at the UTF-16 offset at.
func UnitInsert(s string, at int, text string) string {
	units := toUnits(s)
	at = clamp(at, 0, len(units))
	out := make([]uint16, 0, len(units)+UnitLen(text))
	out = append(out, units[:at]...)
	out = append(out, toUnits(text)...)
	out = append(out, units[at:]...)
	return fromUnits(out)
}

// UnitDelete removes the UTF-16 range [from, to) from s.
func UnitDelete(s string, from, to int) string {
	units := toUnits(s)
	from = clamp(from, 0, len(units))
	to = clamp(to, from, len(units))
	out := make([]uint16, 0, len(units)-(to-from))
	out = append(out, units[:from]...)
	out = append(out, units[to:]...)
	return fromUnits(out)
}

func isHighSurrogate(u uint16) bool {
	return u >= 0xD800 && u <= 0xDBFF
}

func isLowSurrogate(u uint16) bool {
	return u >= 0xDC00 && u <= 0xDFFF
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
