// Package cmn provides the low-level value and status types shared by
// every layer of kvbus: wire schema, storage, and dispatch.
/*
 * Copyright (c) 2026, kvbus authors. All rights reserved.
 */
package cmn

import "fmt"

// ValueKind tags the variant carried by a Value.
type ValueKind uint8

const (
	KindAbsent ValueKind = iota
	KindInt
	KindFloat
	KindString
	KindBytes
	KindBool
)

func (k ValueKind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a tagged variant over int64, float64, string, []byte, bool,
// and "absent" (no value). Only the field matching Kind is meaningful.
type Value struct {
	Kind  ValueKind `json:"kind"`
	I     int64     `json:"i,omitempty"`
	F     float64   `json:"f,omitempty"`
	S     string    `json:"s,omitempty"`
	B     []byte    `json:"b,omitempty"`
	Bl    bool      `json:"bl,omitempty"`
}

// Absent is the zero Value: Kind == KindAbsent.
var Absent = Value{Kind: KindAbsent}

func IntValue(v int64) Value      { return Value{Kind: KindInt, I: v} }
func FloatValue(v float64) Value  { return Value{Kind: KindFloat, F: v} }
func StringValue(v string) Value  { return Value{Kind: KindString, S: v} }
func BytesValue(v []byte) Value   { return Value{Kind: KindBytes, B: v} }
func BoolValue(v bool) Value      { return Value{Kind: KindBool, Bl: v} }

// IsAbsent reports whether v carries no data.
func (v Value) IsAbsent() bool { return v.Kind == KindAbsent }

func (v Value) String() string {
	switch v.Kind {
	case KindAbsent:
		return "<absent>"
	case KindInt:
		return fmt.Sprintf("%d", v.I)
	case KindFloat:
		return fmt.Sprintf("%g", v.F)
	case KindString:
		return v.S
	case KindBytes:
		return fmt.Sprintf("%x", v.B)
	case KindBool:
		return fmt.Sprintf("%t", v.Bl)
	default:
		return "<invalid>"
	}
}

// KeyValue is a (key, value, optional expiration) triple. Expiration, when
// set, is milliseconds since epoch.
type KeyValue struct {
	Key        string `json:"key"`
	Value      Value  `json:"value"`
	Expiration *int64 `json:"expiration,omitempty"`
}

// Expired reports whether the pair's expiration, if any, is at or before
// nowMs.
func (kv KeyValue) Expired(nowMs int64) bool {
	return kv.Expiration != nil && *kv.Expiration <= nowMs
}
