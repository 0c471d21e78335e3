package handler

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// fieldReader Structから型付きで値を取り出す（最初のエラーを保持）
type fieldReader struct {
	s   *structpb.Struct
	err error
}

func newFieldReader(s *structpb.Struct) *fieldReader {
	if s == nil {
		s = &structpb.Struct{}
	}
	return &fieldReader{s: s}
}

func (r *fieldReader) value(name string) (*structpb.Value, bool) {
	v, ok := r.s.GetFields()[name]
	if !ok {
		return nil, false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return v, true
}

func (r *fieldReader) fail(format string, args ...interface{}) {
	if r.err == nil {
		r.err = fmt.Errorf(format, args...)
	}
}

// String 文字列フィールド（未指定は空文字）
func (r *fieldReader) String(name string) string {
	v, ok := r.value(name)
	if !ok {
		return ""
	}
	s, isString := v.GetKind().(*structpb.Value_StringValue)
	if !isString {
		r.fail("%s must be a string", name)
		return ""
	}
	return s.StringValue
}

// Amount 10進文字列の数量（未指定は0）
func (r *fieldReader) Amount(name string) uint64 {
	s := r.String(name)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		r.fail("invalid %s format", name)
		return 0
	}
	return n
}

// Int64 整数フィールド（数値または10進文字列、未指定は0）
func (r *fieldReader) Int64(name string) int64 {
	v, ok := r.value(name)
	if !ok {
		return 0
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
			r.fail("%s must be an integer", name)
			return 0
		}
		return int64(f)
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(k.StringValue, 10, 64)
		if err != nil {
			r.fail("invalid %s format", name)
			return 0
		}
		return n
	default:
		r.fail("%s must be an integer", name)
		return 0
	}
}

// Struct 入れ子のStructフィールド
func (r *fieldReader) Struct(name string) *fieldReader {
	v, ok := r.value(name)
	if !ok {
		return &fieldReader{s: &structpb.Struct{}, err: r.err}
	}
	s := v.GetStructValue()
	if s == nil {
		r.fail("%s must be an object", name)
		return &fieldReader{s: &structpb.Struct{}, err: r.err}
	}
	return &fieldReader{s: s}
}

// merge 入れ子のエラーを取り込む
func (r *fieldReader) merge(child *fieldReader) {
	if child.err != nil && r.err == nil {
		r.err = child.err
	}
}

func formatAmount(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
