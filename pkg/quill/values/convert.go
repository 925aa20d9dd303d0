package values

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	qerrors "github.com/sambeau/quill/pkg/quill/errors"
)

// Converter turns a Value into a Go type, failing with a conversion error.
type Converter[T any] func(Value) (T, error)

func conversionError(v Value, to Kind) error {
	from := KindOf(v)
	switch from {
	case KindString, KindNumber, KindBool:
		return qerrors.New("CONV-0002", map[string]any{"From": from, "To": to, "Text": v.Inspect()})
	}
	return qerrors.New("CONV-0001", map[string]any{"From": from, "To": to})
}

// ToBool converts v to a Go bool.
func ToBool(v Value) (bool, error) {
	switch val := v.(type) {
	case nil, Null:
		return false, nil
	case Bool:
		return val.Value, nil
	case Number:
		return val.Value != 0, nil
	case String:
		b, err := strconv.ParseBool(strings.TrimSpace(val.Value))
		if err != nil {
			return false, conversionError(v, KindBool)
		}
		return b, nil
	case Date, Time, *Array, *Map, Function, Object, Unit:
		return false, conversionError(v, KindBool)
	}
	return false, conversionError(v, KindBool)
}

// Truthy reports the truth value used by conditionals. Unlike ToBool it
// never fails.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil, Null:
		return false
	case Bool:
		return val.Value
	case Number:
		return val.Value != 0 && !math.IsNaN(val.Value)
	case String:
		return val.Value != ""
	case *Array:
		return len(val.Elements) > 0
	case *Map:
		return val.Len() > 0
	case Unit:
		return val.Value != 0
	case Date, Time, Function, Object:
		return true
	}
	return true
}

// ToNumber converts v to a float64.
func ToNumber(v Value) (float64, error) {
	switch val := v.(type) {
	case Number:
		return val.Value, nil
	case Bool:
		if val.Value {
			return 1, nil
		}
		return 0, nil
	case String:
		f, err := strconv.ParseFloat(strings.TrimSpace(val.Value), 64)
		if err != nil {
			return 0, conversionError(v, KindNumber)
		}
		return f, nil
	case Unit:
		return val.Value, nil
	case nil, Null, Date, Time, *Array, *Map, Function, Object:
		return 0, conversionError(v, KindNumber)
	}
	return 0, conversionError(v, KindNumber)
}

// ToInt converts v to an int, failing if it has a fractional part.
func ToInt(v Value) (int, error) {
	f, err := ToNumber(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, qerrors.New("CONV-0002", map[string]any{"From": KindNumber, "To": "integer", "Text": strconv.FormatFloat(f, 'g', -1, 64)})
	}
	return int(f), nil
}

// ToString converts v to its string form.
func ToString(v Value) (string, error) {
	switch val := v.(type) {
	case nil, Null:
		return "", nil
	case String:
		return val.Value, nil
	case Bool, Number, Date, Time, Unit, *Array, *Map:
		return val.Inspect(), nil
	case Function, Object:
		return "", conversionError(v, KindString)
	}
	return "", conversionError(v, KindString)
}

// ToDate converts v to a time.Time.
func ToDate(v Value) (time.Time, error) {
	switch val := v.(type) {
	case Date:
		return val.Value, nil
	case String:
		t, err := dateparse.ParseStrict(strings.TrimSpace(val.Value))
		if err != nil {
			return time.Time{}, conversionError(v, KindDate)
		}
		return t, nil
	case nil, Null, Bool, Number, Time, *Array, *Map, Function, Object, Unit:
		return time.Time{}, conversionError(v, KindDate)
	}
	return time.Time{}, conversionError(v, KindDate)
}

// ToTime converts v to a time of day.
func ToTime(v Value) (time.Duration, error) {
	switch val := v.(type) {
	case Time:
		return val.Value, nil
	case Date:
		t := val.Value
		return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second, nil
	case String:
		d, err := ParseTimeOfDay(val.Value)
		if err != nil {
			return 0, conversionError(v, KindTime)
		}
		return d, nil
	case nil, Null, Bool, Number, *Array, *Map, Function, Object, Unit:
		return 0, conversionError(v, KindTime)
	}
	return 0, conversionError(v, KindTime)
}

// ToArray converts v to an array. Null becomes an empty array.
func ToArray(v Value) (*Array, error) {
	switch val := v.(type) {
	case *Array:
		return val, nil
	case nil, Null:
		return &Array{}, nil
	case Bool, Number, String, Date, Time, *Map, Function, Object, Unit:
		return nil, conversionError(v, KindArray)
	}
	return nil, conversionError(v, KindArray)
}

// ToMap converts v to a map. Null becomes an empty map.
func ToMap(v Value) (*Map, error) {
	switch val := v.(type) {
	case *Map:
		return val, nil
	case nil, Null:
		return NewMap(), nil
	case Bool, Number, String, Date, Time, *Array, Function, Object, Unit:
		return nil, conversionError(v, KindMap)
	}
	return nil, conversionError(v, KindMap)
}

// ParseTimeOfDay parses "9:30", "9:30am", "9:30 pm", "14:05:10", "noon" and
// "midnight" into an offset from midnight.
func ParseTimeOfDay(text string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	switch s {
	case "noon":
		return 12 * time.Hour, nil
	case "midnight":
		return 0, nil
	}

	meridiem := ""
	for _, suffix := range []string{"am", "pm"} {
		if strings.HasSuffix(s, suffix) {
			meridiem = suffix
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}

	parts := strings.Split(s, ":")
	if len(parts) < 1 || len(parts) > 3 || (len(parts) == 1 && meridiem == "") {
		return 0, qerrors.New("LEX-0004", map[string]any{"Text": text})
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || (i > 0 && (len(p) != 2 || n > 59)) {
			return 0, qerrors.New("LEX-0004", map[string]any{"Text": text})
		}
		nums[i] = n
	}

	hour := nums[0]
	switch meridiem {
	case "am", "pm":
		if hour < 1 || hour > 12 {
			return 0, qerrors.New("LEX-0004", map[string]any{"Text": text})
		}
		if hour == 12 {
			hour = 0
		}
		if meridiem == "pm" {
			hour += 12
		}
	default:
		if hour > 23 {
			return 0, qerrors.New("LEX-0004", map[string]any{"Text": text})
		}
	}

	return time.Duration(hour)*time.Hour + time.Duration(nums[1])*time.Minute + time.Duration(nums[2])*time.Second, nil
}
