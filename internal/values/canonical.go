package values

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Canonicalize returns the deterministic byte encoding of a Value: same
// logical value always yields the same bytes. Object-valued members (a
// catalog's attributes and parameters) are emitted key-sorted, the way
// RFC 8785 JSON canonicalization sorts object members — this is the
// "trivial textual grammar" a value-framework test double needs, not a
// format any external system is required to match.
func Canonicalize(v Value) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := writeCanonical(buf, toJSON(v)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toJSON(v Value) any {
	switch t := v.(type) {
	case nil:
		return nil
	case None:
		return nil
	case Tag:
		return t.String()
	case Version:
		return t.String()
	case Moment:
		return t.String()
	case Binary:
		return t.String()
	case Name:
		return string(t)
	case Text:
		return string(t)
	case Boolean:
		return bool(t)
	default:
		// *Catalog and anything built on top of one (Citation,
		// Certificate, Document, AEM, and similarly shaped records)
		// satisfy Attributed — the latter through promoted methods
		// without being a *Catalog themselves — so object-valued
		// members are matched structurally rather than by concrete
		// type.
		if a, ok := v.(Attributed); ok {
			return attributedToJSON(a)
		}
		return fmt.Sprintf("%v", v)
	}
}

func attributedToJSON(a Attributed) any {
	obj := map[string]any{}
	for _, name := range a.AttributeNames() {
		v, _ := a.Attribute(name)
		obj[name] = toJSON(v)
	}
	if names := a.ParameterNames(); len(names) > 0 {
		params := map[string]any{}
		for _, name := range names {
			v, _ := a.Parameter(name)
			params[name] = toJSON(v)
		}
		obj["$parameters"] = params
	}
	return obj
}

func writeCanonical(buf *bytes.Buffer, value any) error {
	switch v := value.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case string:
		writeString(buf, v)
	case float64:
		num, err := canonicalizeFloat(v)
		if err != nil {
			return err
		}
		buf.WriteString(num)
	case int:
		return writeCanonical(buf, float64(v))
	case map[string]any:
		return writeObject(buf, v)
	case []any:
		return writeArray(buf, v)
	default:
		return fmt.Errorf("unsupported canonical value type %T", value)
	}
	return nil
}

func writeObject(buf *bytes.Buffer, obj map[string]any) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeString(buf, k)
		buf.WriteByte(':')
		if err := writeCanonical(buf, obj[k]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeArray(buf *bytes.Buffer, arr []any) error {
	buf.WriteByte('[')
	for i, item := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonical(buf, item); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			buf.WriteByte('\\')
			buf.WriteRune(r)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				buf.WriteString(`\u00`)
				buf.WriteByte(hexLower[r>>4])
				buf.WriteByte(hexLower[r&0x0f])
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}

var hexLower = []byte("0123456789abcdef")

func canonicalizeFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("invalid number")
	}
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10), nil
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	return strings.ToLower(s), nil
}
