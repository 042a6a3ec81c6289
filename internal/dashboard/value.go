package dashboard

import (
	"math"
	"strconv"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindMissing Kind = iota
	KindNumber
	KindText
)

// Value is a raw payload as delivered by a broker connection.
type Value struct {
	kind Kind
	num  float64
	text string
}

func Missing() Value { return Value{} }

func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

func Text(s string) Value { return Value{kind: KindText, text: s} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsMissing() bool { return v.kind == KindMissing }

// String returns the textual form. Missing values have none.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	}
	return ""
}

// Float reports the value as a finite number. Text must parse completely
// after trimming surrounding whitespace.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, isFinite(v.num)
	case KindText:
		return parseFinite(v.text)
	}
	return 0, false
}

// threshold coerces the value for a less-than comparison against a color
// bucket: missing and blank values count as 0, unparsable text as NaN.
func (v Value) threshold() float64 {
	switch v.kind {
	case KindMissing:
		return 0
	case KindNumber:
		return v.num
	}
	if strings.TrimSpace(v.text) == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64); err == nil {
		return f
	}
	return math.NaN()
}

func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !isFinite(f) {
		return 0, false
	}
	return f, true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
