package osc

import (
	"fmt"
	"reflect"
)

// Marshal and Unmarshal are a minimal reflect-based binder mapping
// application records onto the wire codec, symmetrically in both
// directions. A record (a struct, a fixed-size array, or — for Unmarshal, a
// slice of interface{} — used as a tuple) is mapped to a Packet by looking
// only at field order, never field names:
//
//   - a record whose first field is a string is message-shaped: the string
//     is the address, and the remaining fields (or, if there is exactly one
//     remaining field and it is a non-byte slice, its elements) are the
//     arguments, each one of int32, float32, string, []byte, or Argument.
//   - a record whose first field is a TimeTag (or any two-uint32-field
//     struct) is bundle-shaped: the remaining fields (or the single
//     remaining slice field's elements) are the contained elements, each one
//     of Packet, Message, Bundle, or another message-/bundle-shaped record.
//
// A zero-field argument/element list binds to and from an empty sequence.
// Diagnostics the binder raises itself (arity mismatches, address/time-tag
// shape mismatches) carry KindMessage, distinguishing them from KindBadFormat
// and KindUnsupportedType, which name codec- and value-kind-level failures.
var (
	argumentType = reflect.TypeOf(Argument{})
	packetType   = reflect.TypeOf(Packet{})
	messageType  = reflect.TypeOf(Message{})
	bundleType   = reflect.TypeOf(Bundle{})
	timeTagType  = reflect.TypeOf(TimeTag{})
)

// Marshal converts an application record into a Packet.
func Marshal(v interface{}) (Packet, error) {
	rv := derefValue(reflect.ValueOf(v))
	if !rv.IsValid() {
		return Packet{}, newErr(KindMessage, "cannot marshal a nil value")
	}

	n := numFields(rv)
	if n < 0 {
		return Packet{}, newErr(KindUnsupportedType, "marshal target must be a struct or slice/array, got "+rv.Kind().String())
	}
	if n == 0 {
		return Packet{}, newErr(KindMessage, "record has no fields to classify as message or bundle")
	}

	first := fieldAt(rv, 0)
	isBundle, address, tt, err := classifyFirst(first)
	if err != nil {
		return Packet{}, err
	}

	rest := fieldsFrom(rv, 1, n)
	if isBundle {
		elements, err := marshalElements(rest)
		if err != nil {
			return Packet{}, err
		}
		return BundlePacket(Bundle{TimeTag: tt, Elements: elements}), nil
	}

	args, err := marshalArgs(rest)
	if err != nil {
		return Packet{}, err
	}
	return MessagePacket(Message{Address: address, Args: args}), nil
}

// Unmarshal binds p onto target, which must be a non-nil pointer to a
// struct, a fixed-size array, or a slice of interface{}, whose shape matches
// p (message-shaped or bundle-shaped, per Marshal's rules). A slice target
// is grown to fit the packet's argument/element count, mirroring the tuple
// shape Marshal accepts for a slice/array record.
func Unmarshal(p Packet, target interface{}) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return newErr(KindMessage, "unmarshal target must be a non-nil pointer")
	}

	elem := rv.Elem()
	switch elem.Kind() {
	case reflect.Struct, reflect.Array:
		return unmarshalFixed(p, elem, numFields(elem))
	case reflect.Slice:
		return unmarshalSlice(p, elem)
	default:
		return newErr(KindUnsupportedType, "unmarshal target must point to a struct, array, or slice, got "+elem.Kind().String())
	}
}

// unmarshalFixed binds p onto a record whose field count n is fixed ahead of
// time (a struct's NumField or an array's Len), used by both Unmarshal's
// struct/array case and packetToValue's nested-element recursion.
func unmarshalFixed(p Packet, rv reflect.Value, n int) error {
	if n == 0 {
		return newErr(KindMessage, "target has no fields to bind address/time-tag onto")
	}

	field0 := fieldAt(rv, 0)
	switch {
	case p.Message != nil:
		if !setAddressField(field0, p.Message.Address) {
			return newErr(KindMessage, "message packet requires a string first field, got "+field0.Kind().String())
		}
		return bindArgsInto(rv, n, p.Message.Args)
	case p.Bundle != nil:
		if !setTimeTagField(field0, p.Bundle.TimeTag) {
			return newErr(KindMessage, "bundle packet requires a TimeTag-shaped first field, got "+field0.Type().String())
		}
		return bindElementsInto(rv, n, p.Bundle.Elements)
	default:
		return newErr(KindMessage, "packet has neither message nor bundle set")
	}
}

// unmarshalSlice binds p onto a tuple-shaped slice target, the Unmarshal
// counterpart to Marshal's slice/array record support. The element count is
// only known once p is in hand, so — unlike a struct or array — the target
// must be a slice of interface{} wide enough to hold any mix of address/
// time-tag plus argument/element values.
func unmarshalSlice(p Packet, elem reflect.Value) error {
	if elem.Type().Elem().Kind() != reflect.Interface {
		return newErr(KindMessage, "unmarshal target slice must have an interface{} element type, got []"+elem.Type().Elem().String())
	}

	switch {
	case p.Message != nil:
		out := reflect.MakeSlice(elem.Type(), 1+len(p.Message.Args), 1+len(p.Message.Args))
		out.Index(0).Set(reflect.ValueOf(p.Message.Address))
		for i, a := range p.Message.Args {
			v, err := argumentToValue(a, out.Index(i+1).Type())
			if err != nil {
				return err
			}
			out.Index(i + 1).Set(v)
		}
		elem.Set(out)
		return nil
	case p.Bundle != nil:
		out := reflect.MakeSlice(elem.Type(), 1+len(p.Bundle.Elements), 1+len(p.Bundle.Elements))
		out.Index(0).Set(reflect.ValueOf(p.Bundle.TimeTag))
		for i, child := range p.Bundle.Elements {
			v, err := packetToValue(child, out.Index(i+1).Type())
			if err != nil {
				return err
			}
			out.Index(i + 1).Set(v)
		}
		elem.Set(out)
		return nil
	default:
		return newErr(KindMessage, "packet has neither message nor bundle set")
	}
}

// --- field/record plumbing -------------------------------------------------

func numFields(v reflect.Value) int {
	switch v.Kind() {
	case reflect.Struct:
		return v.NumField()
	case reflect.Slice, reflect.Array:
		return v.Len()
	default:
		return -1
	}
}

func fieldAt(v reflect.Value, i int) reflect.Value {
	if v.Kind() == reflect.Struct {
		return v.Field(i)
	}
	return v.Index(i)
}

func fieldsFrom(v reflect.Value, start, n int) []reflect.Value {
	fields := make([]reflect.Value, 0, n-start)
	for i := start; i < n; i++ {
		fields = append(fields, fieldAt(v, i))
	}
	return fields
}

// setAddressField assigns address into field, which is either a concrete
// string (the struct case) or an interface{} slot (the tuple-as-slice/array
// case).
func setAddressField(field reflect.Value, address string) bool {
	switch field.Kind() {
	case reflect.String:
		field.SetString(address)
		return true
	case reflect.Interface:
		field.Set(reflect.ValueOf(address))
		return true
	default:
		return false
	}
}

func setTimeTagField(field reflect.Value, tt TimeTag) bool {
	v := field
	if v.Kind() == reflect.Interface {
		v.Set(reflect.ValueOf(tt))
		return true
	}
	if v.Type() == timeTagType {
		v.Set(reflect.ValueOf(tt))
		return true
	}
	if v.Kind() == reflect.Struct && v.NumField() == 2 &&
		v.Field(0).Kind() == reflect.Uint32 && v.Field(1).Kind() == reflect.Uint32 {
		v.Field(0).SetUint(uint64(tt.Seconds))
		v.Field(1).SetUint(uint64(tt.Fractional))
		return true
	}
	return false
}

// --- message argument binding ----------------------------------------------

func isArgSequenceField(fields []reflect.Value) bool {
	if len(fields) != 1 {
		return false
	}
	t := fields[0].Type()
	return (fields[0].Kind() == reflect.Slice || fields[0].Kind() == reflect.Array) && t.Elem().Kind() != reflect.Uint8
}

func marshalArgs(fields []reflect.Value) ([]Argument, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	if isArgSequenceField(fields) {
		seq := fields[0]
		args := make([]Argument, seq.Len())
		for i := 0; i < seq.Len(); i++ {
			a, err := valueToArgument(seq.Index(i))
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		return args, nil
	}

	args := make([]Argument, len(fields))
	for i, f := range fields {
		a, err := valueToArgument(f)
		if err != nil {
			return nil, err
		}
		args[i] = a
	}
	return args, nil
}

func valueToArgument(v reflect.Value) (Argument, error) {
	v = derefValue(v)
	if !v.IsValid() {
		return Argument{}, newErr(KindUnsupportedType, "nil argument value")
	}
	if v.Type() == argumentType {
		return v.Interface().(Argument), nil
	}
	switch v.Kind() {
	case reflect.Int32:
		return NewInt32(int32(v.Int())), nil
	case reflect.Float32:
		return NewFloat32(float32(v.Float())), nil
	case reflect.String:
		return NewString(v.String()), nil
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return NewBlob(v.Bytes()), nil
		}
	}
	return Argument{}, newErr(KindUnsupportedType, "cannot bind Go kind "+v.Kind().String()+" to an OSC argument")
}

func bindArgsInto(rv reflect.Value, n int, args []Argument) error {
	if n == 1 {
		if len(args) != 0 {
			return argArityError(0, len(args))
		}
		return nil
	}

	if n == 2 {
		field := fieldAt(rv, 1)
		if field.Kind() == reflect.Slice && field.Type().Elem().Kind() != reflect.Uint8 {
			elemType := field.Type().Elem()
			out := reflect.MakeSlice(field.Type(), len(args), len(args))
			for i, a := range args {
				v, err := argumentToValue(a, elemType)
				if err != nil {
					return err
				}
				out.Index(i).Set(v)
			}
			field.Set(out)
			return nil
		}
	}

	remaining := n - 1
	if remaining != len(args) {
		return argArityError(remaining, len(args))
	}
	for i := 0; i < remaining; i++ {
		field := fieldAt(rv, i+1)
		v, err := argumentToValue(args[i], field.Type())
		if err != nil {
			return err
		}
		field.Set(v)
	}
	return nil
}

func argArityError(want, got int) error {
	return newErr(KindMessage, fmt.Sprintf("field count mismatch: target wants %d, packet has %d", want, got))
}

func argumentToValue(a Argument, t reflect.Type) (reflect.Value, error) {
	if t == argumentType {
		return reflect.ValueOf(a), nil
	}
	if t.Kind() == reflect.Interface {
		return reflect.ValueOf(a.Value()), nil
	}
	switch t.Kind() {
	case reflect.Int32:
		if a.Type != ArgInt32 {
			return reflect.Value{}, argTypeMismatch(t, a.Type)
		}
		return reflect.ValueOf(a.I32), nil
	case reflect.Float32:
		if a.Type != ArgFloat {
			return reflect.Value{}, argTypeMismatch(t, a.Type)
		}
		return reflect.ValueOf(a.F32), nil
	case reflect.String:
		if a.Type != ArgString {
			return reflect.Value{}, argTypeMismatch(t, a.Type)
		}
		return reflect.ValueOf(a.Str), nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			if a.Type != ArgBlob {
				return reflect.Value{}, argTypeMismatch(t, a.Type)
			}
			return reflect.ValueOf(a.Blob), nil
		}
	}
	return reflect.Value{}, newErr(KindUnsupportedType, "cannot bind OSC argument to Go kind "+t.Kind().String())
}

func argTypeMismatch(t reflect.Type, got ArgType) error {
	return newErr(KindMessage, "field of type "+t.String()+" cannot accept an argument tagged '"+got.String()+"'")
}

// --- bundle element binding -------------------------------------------------

func marshalElements(fields []reflect.Value) ([]Packet, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	if len(fields) == 1 && (fields[0].Kind() == reflect.Slice || fields[0].Kind() == reflect.Array) {
		seq := fields[0]
		packets := make([]Packet, seq.Len())
		for i := 0; i < seq.Len(); i++ {
			p, err := valueToPacket(seq.Index(i))
			if err != nil {
				return nil, err
			}
			packets[i] = p
		}
		return packets, nil
	}

	packets := make([]Packet, len(fields))
	for i, f := range fields {
		p, err := valueToPacket(f)
		if err != nil {
			return nil, err
		}
		packets[i] = p
	}
	return packets, nil
}

func valueToPacket(v reflect.Value) (Packet, error) {
	v = derefValue(v)
	if !v.IsValid() {
		return Packet{}, newErr(KindUnsupportedType, "nil bundle element")
	}
	switch v.Type() {
	case packetType:
		return v.Interface().(Packet), nil
	case messageType:
		return MessagePacket(v.Interface().(Message)), nil
	case bundleType:
		return BundlePacket(v.Interface().(Bundle)), nil
	}
	return Marshal(v.Interface())
}

func bindElementsInto(rv reflect.Value, n int, elements []Packet) error {
	if n == 1 {
		if len(elements) != 0 {
			return argArityError(0, len(elements))
		}
		return nil
	}

	if n == 2 {
		field := fieldAt(rv, 1)
		if field.Kind() == reflect.Slice || field.Kind() == reflect.Array {
			elemType := field.Type().Elem()
			out := reflect.MakeSlice(reflect.SliceOf(elemType), len(elements), len(elements))
			for i, p := range elements {
				v, err := packetToValue(p, elemType)
				if err != nil {
					return err
				}
				out.Index(i).Set(v)
			}
			field.Set(out)
			return nil
		}
	}

	remaining := n - 1
	if remaining != len(elements) {
		return argArityError(remaining, len(elements))
	}
	for i := 0; i < remaining; i++ {
		field := fieldAt(rv, i+1)
		v, err := packetToValue(elements[i], field.Type())
		if err != nil {
			return err
		}
		field.Set(v)
	}
	return nil
}

// packetToValue binds one bundle element onto target type t: the three
// codec sum types bind directly, an interface{} slot takes the raw Packet
// (the element's own shape is unknown to the caller), and anything else is
// recursed into via unmarshalFixed as a nested message-/bundle-shaped
// record.
func packetToValue(p Packet, t reflect.Type) (reflect.Value, error) {
	switch t {
	case packetType:
		return reflect.ValueOf(p), nil
	case messageType:
		if p.Message == nil {
			return reflect.Value{}, newErr(KindMessage, "element is a bundle, expected a message")
		}
		return reflect.ValueOf(*p.Message), nil
	case bundleType:
		if p.Bundle == nil {
			return reflect.Value{}, newErr(KindMessage, "element is a message, expected a bundle")
		}
		return reflect.ValueOf(*p.Bundle), nil
	}
	if t.Kind() == reflect.Interface {
		return reflect.ValueOf(p), nil
	}
	if t.Kind() != reflect.Struct && t.Kind() != reflect.Array {
		return reflect.Value{}, newErr(KindUnsupportedType, "cannot bind a bundle element to Go kind "+t.Kind().String())
	}

	nv := reflect.New(t)
	if err := unmarshalFixed(p, nv.Elem(), numFields(nv.Elem())); err != nil {
		return reflect.Value{}, err
	}
	return nv.Elem(), nil
}
