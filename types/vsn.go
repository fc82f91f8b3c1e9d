package types

import (
	"errors"
	"fmt"
)

// MaxVSNLen is the longest VSN that fits a Command field with its terminator.
const MaxVSNLen = VSNFieldLen - 1

// ansiLabelPunct is the punctuation allowed in ANSI tape labels.
const ansiLabelPunct = "!\"%&'()*+,-./:;<=>?_"

// ErrEmptyVSN is returned by ParseVSN for an empty string.
var ErrEmptyVSN = errors.New("vsn is empty")

// VSN is a volume serial number validated against the ANSI tape-label
// character set.
type VSN string

// ParseVSN validates s and returns it as a VSN.
func ParseVSN(s string) (VSN, error) {
	if s == "" {
		return "", ErrEmptyVSN
	}
	if len(s) > MaxVSNLen {
		return "", fmt.Errorf("vsn %q is longer than %d characters", s, MaxVSNLen)
	}
	for i := 0; i < len(s); i++ {
		if !isANSILabelChar(s[i]) {
			return "", fmt.Errorf("vsn %q: invalid character %q at offset %d", s, s[i], i)
		}
	}
	return VSN(s), nil
}

func isANSILabelChar(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	}
	for i := 0; i < len(ansiLabelPunct); i++ {
		if ansiLabelPunct[i] == c {
			return true
		}
	}
	return false
}

func (v VSN) field() [VSNFieldLen]byte {
	var f [VSNFieldLen]byte
	copy(f[:MaxVSNLen], v)
	return f
}
