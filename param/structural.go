package param

import (
	"bytes"
	"cmp"
	"math"
	"reflect"
	"slices"
	"strconv"
)

// maxDepth bounds structural rendering of self-referencing values.
const maxDepth = 32

// structural renders v by value: every node carries its type, pointers are
// followed and addresses never appear. Values reflect.DeepEqual reports equal
// render identically, across processes.
func structural(v any) []byte {
	var buf bytes.Buffer
	writeStructural(&buf, reflect.ValueOf(v), 0)
	return buf.Bytes()
}

func writeStructural(buf *bytes.Buffer, v reflect.Value, depth int) {
	if !v.IsValid() {
		buf.WriteString("nil")
		return
	}
	buf.WriteString(v.Type().String())
	if depth > maxDepth {
		buf.WriteString("(...)")
		return
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			buf.WriteString("(nil)")
			return
		}
		buf.WriteByte('(')
		writeStructural(buf, v.Elem(), depth+1)
		buf.WriteByte(')')
	case reflect.Struct:
		buf.WriteByte('{')
		for i := range v.NumField() {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(v.Type().Field(i).Name)
			buf.WriteByte(':')
			writeStructural(buf, v.Field(i), depth+1)
		}
		buf.WriteByte('}')
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			buf.WriteString("(nil)")
			return
		}
		buf.WriteByte('[')
		for i := range v.Len() {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeStructural(buf, v.Index(i), depth+1)
		}
		buf.WriteByte(']')
	case reflect.Map:
		if v.IsNil() {
			buf.WriteString("(nil)")
			return
		}
		type pair struct{ k, v []byte }
		pairs := make([]pair, 0, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			var kb, vb bytes.Buffer
			writeStructural(&kb, iter.Key(), depth+1)
			writeStructural(&vb, iter.Value(), depth+1)
			pairs = append(pairs, pair{kb.Bytes(), vb.Bytes()})
		}
		slices.SortFunc(pairs, func(a, b pair) int {
			return cmp.Or(bytes.Compare(a.k, b.k), bytes.Compare(a.v, b.v))
		})
		buf.WriteByte('{')
		for i, p := range pairs {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.Write(p.k)
			buf.WriteByte(':')
			buf.Write(p.v)
		}
		buf.WriteByte('}')
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		// Only nil funcs are ever DeepEqual; channels compare by identity.
		if v.IsNil() {
			buf.WriteString("(nil)")
		} else {
			buf.WriteString("(set)")
		}
	case reflect.Bool:
		buf.WriteString(strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		buf.WriteString(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		buf.WriteString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		writeFloat(buf, v.Float())
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		writeFloat(buf, real(c))
		buf.WriteByte('i')
		writeFloat(buf, imag(c))
	case reflect.String:
		buf.WriteString(strconv.Quote(v.String()))
	}
}

// writeFloat renders -0 as 0, since the two compare equal.
func writeFloat(buf *bytes.Buffer, f float64) {
	if f == 0 {
		f = 0
	}
	buf.WriteString(strconv.FormatUint(math.Float64bits(f), 16))
}
