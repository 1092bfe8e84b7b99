package rdf

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Lexical layouts for temporal XSD datatypes
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// NewValueLiteral converts a native Go value into a typed literal. When
// datatype is nil, it is inferred from the Go type. The conversion is
// total over the supported scalar set; anything else is an error.
func NewValueLiteral(value any, datatype *NamedNode) (*Literal, error) {
	if datatype == nil {
		inferred, err := inferDatatype(value)
		if err != nil {
			return nil, err
		}
		datatype = inferred
	}

	var lexical string
	switch datatype.IRI {
	case XSDString.IRI:
		lexical = fmt.Sprintf("%v", value)
	case XSDInteger.IRI, XSDInt.IRI, XSDLong.IRI, XSDShort.IRI,
		XSDNegativeInteger.IRI, XSDNonNegativeInteger.IRI,
		XSDNonPositiveInteger.IRI, XSDPositiveInteger.IRI:
		n, err := asInt64(value)
		if err != nil {
			return nil, err
		}
		if err := checkIntegerRange(n, datatype); err != nil {
			return nil, err
		}
		lexical = strconv.FormatInt(n, 10)
	case XSDFloat.IRI, XSDDouble.IRI, XSDDecimal.IRI:
		f, err := asFloat64(value)
		if err != nil {
			return nil, err
		}
		lexical = strconv.FormatFloat(f, 'g', -1, 64)
	case XSDBoolean.IRI:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool for %s, got %T", datatype.IRI, value)
		}
		lexical = strconv.FormatBool(b)
	case XSDDate.IRI:
		t, ok := value.(time.Time)
		if !ok {
			return nil, fmt.Errorf("expected time.Time for %s, got %T", datatype.IRI, value)
		}
		lexical = t.Format(DateLayout)
	case XSDTime.IRI:
		t, ok := value.(time.Time)
		if !ok {
			return nil, fmt.Errorf("expected time.Time for %s, got %T", datatype.IRI, value)
		}
		lexical = t.Format(TimeLayout)
	case XSDDateTime.IRI, XSDDateTimeStamp.IRI:
		t, ok := value.(time.Time)
		if !ok {
			return nil, fmt.Errorf("expected time.Time for %s, got %T", datatype.IRI, value)
		}
		lexical = t.Format(time.RFC3339)
	case XSDDuration.IRI:
		d, ok := value.(time.Duration)
		if !ok {
			return nil, fmt.Errorf("expected time.Duration for %s, got %T", datatype.IRI, value)
		}
		lexical = FormatXSDDuration(d)
	case XSDByte.IRI, XSDBase64Binary.IRI:
		b, ok := value.([]byte)
		if !ok {
			return nil, fmt.Errorf("expected []byte for %s, got %T", datatype.IRI, value)
		}
		lexical = base64.StdEncoding.EncodeToString(b)
	default:
		return nil, fmt.Errorf("unsupported literal datatype: %s", datatype.IRI)
	}

	return NewLiteralWithDatatype(lexical, datatype), nil
}

// Native parses the literal's lexical form back to a native Go value
// according to its datatype. Untyped and language-tagged literals map
// to string.
func (l *Literal) Native() (any, error) {
	if l.Datatype == nil {
		return l.Value, nil
	}

	switch l.Datatype.IRI {
	case XSDString.IRI:
		return l.Value, nil
	case XSDInteger.IRI, XSDInt.IRI, XSDLong.IRI, XSDShort.IRI,
		XSDNegativeInteger.IRI, XSDNonNegativeInteger.IRI,
		XSDNonPositiveInteger.IRI, XSDPositiveInteger.IRI:
		n, err := strconv.ParseInt(l.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer literal %q: %w", l.Value, err)
		}
		if err := checkIntegerRange(n, l.Datatype); err != nil {
			return nil, err
		}
		return n, nil
	case XSDFloat.IRI, XSDDouble.IRI, XSDDecimal.IRI:
		f, err := strconv.ParseFloat(l.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float literal %q: %w", l.Value, err)
		}
		return f, nil
	case XSDBoolean.IRI:
		b, err := strconv.ParseBool(l.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean literal %q: %w", l.Value, err)
		}
		return b, nil
	case XSDDate.IRI:
		t, err := time.Parse(DateLayout, strings.TrimSpace(l.Value))
		if err != nil {
			return nil, fmt.Errorf("invalid date literal %q: %w", l.Value, err)
		}
		return t, nil
	case XSDTime.IRI:
		t, err := time.Parse(TimeLayout, strings.TrimSpace(l.Value))
		if err != nil {
			return nil, fmt.Errorf("invalid time literal %q: %w", l.Value, err)
		}
		return t, nil
	case XSDDateTime.IRI, XSDDateTimeStamp.IRI:
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(l.Value))
		if err != nil {
			return nil, fmt.Errorf("invalid dateTime literal %q: %w", l.Value, err)
		}
		return t, nil
	case XSDDuration.IRI:
		return ParseXSDDuration(l.Value)
	case XSDByte.IRI, XSDBase64Binary.IRI:
		b, err := base64.StdEncoding.DecodeString(l.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid binary literal %q: %w", l.Value, err)
		}
		return b, nil
	default:
		// Unknown datatypes round-trip as their lexical form
		return l.Value, nil
	}
}

func inferDatatype(value any) (*NamedNode, error) {
	switch value.(type) {
	case string:
		return XSDString, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		return XSDInteger, nil
	case float32, float64:
		return XSDFloat, nil
	case bool:
		return XSDBoolean, nil
	case time.Time:
		return XSDDateTime, nil
	case time.Duration:
		return XSDDuration, nil
	case []byte:
		return XSDByte, nil
	default:
		return nil, fmt.Errorf("no datatype mapping for Go type %T", value)
	}
}

func asInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil // #nosec G115 - caller values are within range
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", value)
	}
}

func asFloat64(value any) (float64, error) {
	switch v := value.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("expected float, got %T", value)
	}
}

// checkIntegerRange enforces the sign refinement carried by the
// refined XSD integer datatypes.
func checkIntegerRange(n int64, datatype *NamedNode) error {
	switch datatype.IRI {
	case XSDNegativeInteger.IRI:
		if n >= 0 {
			return fmt.Errorf("value %d out of range for negativeInteger", n)
		}
	case XSDNonNegativeInteger.IRI:
		if n < 0 {
			return fmt.Errorf("value %d out of range for nonNegativeInteger", n)
		}
	case XSDNonPositiveInteger.IRI:
		if n > 0 {
			return fmt.Errorf("value %d out of range for nonPositiveInteger", n)
		}
	case XSDPositiveInteger.IRI:
		if n <= 0 {
			return fmt.Errorf("value %d out of range for positiveInteger", n)
		}
	}
	return nil
}

// FormatXSDDuration renders a time.Duration in xsd:duration lexical
// form (PnDTnHnMnS). Sub-second precision is kept as fractional seconds.
func FormatXSDDuration(d time.Duration) string {
	var sb strings.Builder
	if d < 0 {
		sb.WriteByte('-')
		d = -d
	}
	sb.WriteByte('P')

	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d.Seconds()

	if days > 0 {
		fmt.Fprintf(&sb, "%dD", days)
	}
	if hours > 0 || minutes > 0 || seconds > 0 || days == 0 {
		sb.WriteByte('T')
		if hours > 0 {
			fmt.Fprintf(&sb, "%dH", hours)
		}
		if minutes > 0 {
			fmt.Fprintf(&sb, "%dM", minutes)
		}
		if seconds > 0 || (hours == 0 && minutes == 0) {
			sb.WriteString(strconv.FormatFloat(seconds, 'f', -1, 64))
			sb.WriteByte('S')
		}
	}
	return sb.String()
}

// ParseXSDDuration parses the day/time portion of an xsd:duration.
// Year and month components have no fixed length in seconds and are
// rejected.
func ParseXSDDuration(s string) (time.Duration, error) {
	orig := s
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}
	if !strings.HasPrefix(s, "P") {
		return 0, fmt.Errorf("invalid duration literal %q", orig)
	}
	s = s[1:]

	datePart := s
	timePart := ""
	if idx := strings.IndexByte(s, 'T'); idx >= 0 {
		datePart = s[:idx]
		timePart = s[idx+1:]
	}

	var total time.Duration
	read := func(part string, unitOf func(byte) (time.Duration, bool)) error {
		for len(part) > 0 {
			i := 0
			for i < len(part) && (part[i] == '.' || (part[i] >= '0' && part[i] <= '9')) {
				i++
			}
			if i == 0 || i == len(part) {
				return fmt.Errorf("invalid duration literal %q", orig)
			}
			num, err := strconv.ParseFloat(part[:i], 64)
			if err != nil {
				return fmt.Errorf("invalid duration literal %q: %w", orig, err)
			}
			unit, ok := unitOf(part[i])
			if !ok {
				return fmt.Errorf("unsupported duration component %q in %q", part[i], orig)
			}
			total += time.Duration(num * float64(unit))
			part = part[i+1:]
		}
		return nil
	}

	if err := read(datePart, func(c byte) (time.Duration, bool) {
		if c == 'D' {
			return 24 * time.Hour, true
		}
		return 0, false
	}); err != nil {
		return 0, err
	}
	if err := read(timePart, func(c byte) (time.Duration, bool) {
		switch c {
		case 'H':
			return time.Hour, true
		case 'M':
			return time.Minute, true
		case 'S':
			return time.Second, true
		}
		return 0, false
	}); err != nil {
		return 0, err
	}

	if negative {
		total = -total
	}
	return total, nil
}
