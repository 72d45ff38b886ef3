// Package values is the reference implementation of the structured-document
// value framework the notary core treats as an external dependency. The
// core depends only on deterministic canonical serialization, equality, and
// typed accessors (see the Value, Attributed, and Parameterized
// interfaces); a real deployment can swap this package for its own value
// framework as long as it satisfies the same contracts.
package values

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var base32Encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Value is any typed value the notary core stores in a Record attribute or
// parameter: tags, versions, moments, binary blobs, names, text, or a
// nested Record.
type Value interface {
	Equal(other Value) bool
}

// None is the sentinel value used where the spec calls for an explicit
// absence (a proto-citation's digest, the first certificate's $previous).
type None struct{}

// NONE is the single instance of the absence sentinel.
var NONE Value = None{}

func (None) Equal(other Value) bool {
	_, ok := other.(None)
	return ok
}

func (None) String() string { return "none" }

// IsNone reports whether v is the absence sentinel, treating a nil
// interface the same way so callers don't need a separate nil check.
func IsNone(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(None)
	return ok
}

// Tag is a randomly generated, stable identifier — a notary key's $tag, or
// an account's $accountId.
type Tag struct {
	raw [16]byte
}

// NewTag generates a fresh random tag.
func NewTag() Tag {
	return Tag{raw: uuid.New()}
}

// TagFromString parses a tag previously rendered with String, accepting
// both the "#"-prefixed display form and the bare base-32 form.
func TagFromString(s string) (Tag, error) {
	s = strings.TrimPrefix(s, "#")
	decoded, err := base32Encoding.DecodeString(strings.ToUpper(s))
	if err != nil || len(decoded) != 16 {
		return Tag{}, fmt.Errorf("invalid tag %q: %w", s, err)
	}
	var t Tag
	copy(t.raw[:], decoded)
	return t, nil
}

func (t Tag) String() string {
	return "#" + base32Encoding.EncodeToString(t.raw[:])
}

func (t Tag) Equal(other Value) bool {
	o, ok := other.(Tag)
	return ok && t.raw == o.raw
}

// Version is a monotonically ordered dotted version, e.g. v1, v1.2.
type Version struct {
	parts []int
}

// InitialVersion returns the first version in a sequence, v1.
func InitialVersion() Version {
	return Version{parts: []int{1}}
}

// ParseVersion parses a "v"-prefixed dotted version string.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimPrefix(s, "v")
	if s == "" {
		return Version{}, errors.New("empty version")
	}
	segments := strings.Split(s, ".")
	parts := make([]int, 0, len(segments))
	for _, seg := range segments {
		n, err := strconv.Atoi(seg)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version %q", s)
		}
		parts = append(parts, n)
	}
	return Version{parts: parts}, nil
}

// Next returns the next version in sequence, incrementing the last
// component — v1 -> v2, v1.3 -> v1.4.
func (v Version) Next() Version {
	parts := append([]int(nil), v.parts...)
	parts[len(parts)-1]++
	return Version{parts: parts}
}

// Less reports whether v sorts strictly before o under version ordering.
func (v Version) Less(o Version) bool {
	for i := 0; i < len(v.parts) && i < len(o.parts); i++ {
		if v.parts[i] != o.parts[i] {
			return v.parts[i] < o.parts[i]
		}
	}
	return len(v.parts) < len(o.parts)
}

func (v Version) String() string {
	segments := make([]string, len(v.parts))
	for i, p := range v.parts {
		segments[i] = strconv.Itoa(p)
	}
	return "v" + strings.Join(segments, ".")
}

func (v Version) Equal(other Value) bool {
	o, ok := other.(Version)
	if !ok || len(v.parts) != len(o.parts) {
		return false
	}
	for i := range v.parts {
		if v.parts[i] != o.parts[i] {
			return false
		}
	}
	return true
}

// Moment is an instant in time, the $timestamp attribute's type.
type Moment time.Time

// Now returns the current instant in UTC, at full nanosecond precision,
// which the canonical serializer's RFC 3339 form preserves.
func Now() Moment {
	return Moment(time.Now().UTC())
}

func (m Moment) Time() time.Time { return time.Time(m) }

func (m Moment) String() string {
	return time.Time(m).UTC().Format(time.RFC3339Nano)
}

// ParseMoment parses a moment previously rendered with Moment.String.
func ParseMoment(s string) (Moment, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Moment{}, fmt.Errorf("invalid moment %q: %w", s, err)
	}
	return Moment(t), nil
}

func (m Moment) Equal(other Value) bool {
	o, ok := other.(Moment)
	return ok && time.Time(m).Equal(time.Time(o))
}

// Binary is an octet string — public keys, signatures, digests, AEM
// fields. The value framework base-32 encodes it at the artifact layer;
// the algorithm suite operates on the raw bytes.
type Binary []byte

func (b Binary) String() string {
	return base32Encoding.EncodeToString(b)
}

// ParseBinary decodes a base-32 string previously produced by
// Binary.String back into its raw bytes.
func ParseBinary(s string) (Binary, error) {
	decoded, err := base32Encoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid binary %q: %w", s, err)
	}
	return Binary(decoded), nil
}

func (b Binary) Equal(other Value) bool {
	o, ok := other.(Binary)
	if !ok || len(b) != len(o) {
		return false
	}
	for i := range b {
		if b[i] != o[i] {
			return false
		}
	}
	return true
}

// Name is a symbolic, namespaced identifier — a $type or $permissions
// value, e.g. "/bali/notary/Certificate/v1".
type Name string

func (n Name) Equal(other Value) bool {
	o, ok := other.(Name)
	return ok && n == o
}

// Text is a plain string leaf value, used for free-form component payloads
// and account identifiers passed through without tag semantics.
type Text string

func (t Text) Equal(other Value) bool {
	o, ok := other.(Text)
	return ok && t == o
}

// Boolean is a plain boolean leaf value.
type Boolean bool

func (b Boolean) Equal(other Value) bool {
	o, ok := other.(Boolean)
	return ok && b == o
}

// RandomBytes draws n cryptographically random bytes. The v1 algorithm
// suite does not call it: it draws its IVs from crypto/rand directly, and
// crypto/ecdh generates its ephemeral scalars itself.
func RandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
