// Package wire defines the request/response message shapes carried inside
// frame payloads. The frame codec and framed stream never inspect these
// types beyond what the generic Encode/Decode constraints require: they
// stay opaque to the core.
/*
 * Copyright (c) 2026, kvbus authors. All rights reserved.
 */
package wire

import "github.com/kvbus/kvbus/cmn"

// Kind enumerates the command set.
type Kind string

const (
	HGET        Kind = "HGET"
	HGETALL     Kind = "HGETALL"
	HMGET       Kind = "HMGET"
	HSET        Kind = "HSET"
	HMSET       Kind = "HMSET"
	HDEL        Kind = "HDEL"
	HMDEL       Kind = "HMDEL"
	HEXIST      Kind = "HEXIST"
	HMEXIST     Kind = "HMEXIST"
	SUBSCRIBE   Kind = "SUBSCRIBE"
	UNSUBSCRIBE Kind = "UNSUBSCRIBE"
	PUBLISH     Kind = "PUBLISH"
)

// CommandRequest is the tagged variant carried by every request frame.
// Only the fields relevant to Kind are populated; the rest are left zero.
type CommandRequest struct {
	Kind  Kind          `json:"kind"`
	Table string        `json:"table,omitempty"`
	Key   string        `json:"key,omitempty"`
	Keys  []string      `json:"keys,omitempty"`
	Pair  *cmn.KeyValue `json:"pair,omitempty"`
	Pairs []cmn.KeyValue `json:"pairs,omitempty"`
	Topic string        `json:"topic,omitempty"`
	ID    uint32        `json:"id,omitempty"`
	Values []cmn.Value  `json:"values,omitempty"`
}

// CommandResponse is the unified response shape for every command kind.
type CommandResponse struct {
	Status  uint32        `json:"status"`
	Message string        `json:"message,omitempty"`
	Values  []cmn.Value   `json:"values,omitempty"`
	Pairs   []cmn.KeyValue `json:"pairs,omitempty"`
}

// OK builds a 200 response carrying values/pairs.
func OK(values []cmn.Value, pairs []cmn.KeyValue) *CommandResponse {
	return &CommandResponse{Status: cmn.StatusOK, Values: values, Pairs: pairs}
}

// Error builds a response from any error in the cmn taxonomy.
func Error(err error) *CommandResponse {
	return &CommandResponse{Status: cmn.StatusOf(err), Message: err.Error()}
}

// --- CommandRequest constructors, one per command kind ---

func NewHGet(table, key string) *CommandRequest {
	return &CommandRequest{Kind: HGET, Table: table, Key: key}
}

func NewHGetAll(table string) *CommandRequest {
	return &CommandRequest{Kind: HGETALL, Table: table}
}

func NewHMGet(table string, keys []string) *CommandRequest {
	return &CommandRequest{Kind: HMGET, Table: table, Keys: keys}
}

func NewHSet(table, key string, value cmn.Value) *CommandRequest {
	return &CommandRequest{Kind: HSET, Table: table, Pair: &cmn.KeyValue{Key: key, Value: value}}
}

func NewHMSet(table string, pairs []cmn.KeyValue) *CommandRequest {
	return &CommandRequest{Kind: HMSET, Table: table, Pairs: pairs}
}

func NewHDel(table, key string) *CommandRequest {
	return &CommandRequest{Kind: HDEL, Table: table, Key: key}
}

func NewHMDel(table string, keys []string) *CommandRequest {
	return &CommandRequest{Kind: HMDEL, Table: table, Keys: keys}
}

func NewHExist(table, key string) *CommandRequest {
	return &CommandRequest{Kind: HEXIST, Table: table, Key: key}
}

func NewHMExist(table string, keys []string) *CommandRequest {
	return &CommandRequest{Kind: HMEXIST, Table: table, Keys: keys}
}

func NewSubscribe(topic string) *CommandRequest {
	return &CommandRequest{Kind: SUBSCRIBE, Topic: topic}
}

func NewUnsubscribe(topic string, id uint32) *CommandRequest {
	return &CommandRequest{Kind: UNSUBSCRIBE, Topic: topic, ID: id}
}

func NewPublish(topic string, values []cmn.Value) *CommandRequest {
	return &CommandRequest{Kind: PUBLISH, Topic: topic, Values: values}
}
