package config

import (
	"fmt"
	"strconv"
	"strings"
)

// RegisterRange is an inclusive span of register addresses.
type RegisterRange struct {
	Lo, Hi byte
}

// RegisterRanges is a parsed REGISTER_DEBUG_ALLOWED_RANGES value.
type RegisterRanges []RegisterRange

// ParseRegisterRanges parses a comma separated list of addresses and
// lo-hi spans, e.g. "0x3D-0x3F,0x07".
func ParseRegisterRanges(s string) (RegisterRanges, error) {
	var out RegisterRanges
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isSpan := strings.Cut(part, "-")
		l, err := parseReg(lo)
		if err != nil {
			return nil, err
		}
		h := l
		if isSpan {
			if h, err = parseReg(hi); err != nil {
				return nil, err
			}
		}
		if h < l {
			return nil, fmt.Errorf("range %q is reversed", part)
		}
		out = append(out, RegisterRange{Lo: l, Hi: h})
	}
	return out, nil
}

func parseReg(s string) (byte, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 8)
	if err != nil {
		return 0, fmt.Errorf("bad register %q: %w", s, err)
	}
	return byte(v), nil
}

// Allows reports whether addr falls in any range.
func (r RegisterRanges) Allows(addr byte) bool {
	for _, rr := range r {
		if addr >= rr.Lo && addr <= rr.Hi {
			return true
		}
	}
	return false
}
