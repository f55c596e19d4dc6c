package hdkey

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidPath is returned for malformed derivation paths or out of range indices.
var ErrInvalidPath = errors.New("invalid derivation path")

// HardenedOffset is added to the index of hardened segments (2^31).
const HardenedOffset uint32 = 0x80000000

const (
	purposeBIP44     = 44
	coinTypeEthereum = 60
)

// Segment is one step of a derivation path.
type Segment struct {
	Index    uint32 // below HardenedOffset
	Hardened bool
}

// Hardened returns the segment index' (index + 2^31).
func Hardened(index uint32) Segment {
	return Segment{Index: index, Hardened: true}
}

// Normal returns the non-hardened segment index.
func Normal(index uint32) Segment {
	return Segment{Index: index}
}

func (s Segment) childNumber() uint32 {
	if s.Hardened {
		return s.Index + HardenedOffset
	}
	return s.Index
}

func (s Segment) String() string {
	if s.Hardened {
		return strconv.FormatUint(uint64(s.Index), 10) + "'"
	}
	return strconv.FormatUint(uint64(s.Index), 10)
}

// Path is a sequence of segments below the master key.
type Path []Segment

// String renders the path in "m/44'/60'/0'/0/0" form.
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString("m")
	for _, segment := range p {
		sb.WriteString("/")
		sb.WriteString(segment.String())
	}
	return sb.String()
}

// EthereumPath returns m/44'/60'/account'/0/0.
func EthereumPath(account uint32) (Path, error) {
	if account >= HardenedOffset {
		return nil, errors.Wrapf(ErrInvalidPath, "account %d out of range", account)
	}

	return Path{
		Hardened(purposeBIP44),
		Hardened(coinTypeEthereum),
		Hardened(account),
		Normal(0),
		Normal(0),
	}, nil
}

// ParsePath parses a path string such as "m/44'/60'/0'/0/0".
// Hardened segments may be marked with ' or h.
func ParsePath(path string) (Path, error) {
	if path == "" || path[0] != 'm' {
		return nil, errors.Wrapf(ErrInvalidPath, "path must start with m: %q", path)
	}

	rest := path[1:]
	if rest == "" {
		return Path{}, nil
	}
	if rest[0] != '/' {
		return nil, errors.Wrapf(ErrInvalidPath, "expected / after m: %q", path)
	}

	parts := strings.Split(rest[1:], "/")
	segments := make(Path, 0, len(parts))
	for _, part := range parts {
		segment, err := parseSegment(part)
		if err != nil {
			return nil, errors.Wrapf(err, "path %q", path)
		}
		segments = append(segments, segment)
	}

	return segments, nil
}

func parseSegment(part string) (Segment, error) {
	hardened := false
	if trimmed, ok := cutHardenedSuffix(part); ok {
		hardened = true
		part = trimmed
	}

	if part == "" {
		return Segment{}, errors.Wrapf(ErrInvalidPath, "invalid path segment: %q", part)
	}

	index, err := strconv.ParseUint(part, 10, 32)
	if err != nil {
		return Segment{}, errors.Wrapf(ErrInvalidPath, "invalid path segment: %q", part)
	}

	if uint32(index) >= HardenedOffset {
		return Segment{}, errors.Wrapf(ErrInvalidPath, "segment index %d out of range", index)
	}

	return Segment{Index: uint32(index), Hardened: hardened}, nil
}

func cutHardenedSuffix(part string) (string, bool) {
	for _, suffix := range []string{"'", "h", "H"} {
		if trimmed, ok := strings.CutSuffix(part, suffix); ok {
			return trimmed, true
		}
	}
	return part, false
}
