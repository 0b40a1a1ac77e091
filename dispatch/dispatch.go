// Package dispatch implements the command dispatcher: it routes a
// decoded request to storage or pub/sub handlers and returns a unified
// streaming response, single-shot commands as a lazy one-element
// sequence, SUBSCRIBE as an open-ended one.
/*
 * Copyright (c) 2026, kvbus authors. All rights reserved.
 */
package dispatch

import (
	"github.com/kvbus/kvbus/broadcaster"
	"github.com/kvbus/kvbus/cmn"
	"github.com/kvbus/kvbus/store"
	"github.com/kvbus/kvbus/wire"
)

// Stream is the dispatcher's unified return type. Responses yields one or
// more CommandResponses; for single-shot commands the channel is closed
// after the one item. OnDisconnect, present only for SUBSCRIBE, must be
// called by the caller when it stops forwarding Responses (e.g. because
// writing to the client failed) so the broadcaster can lazily garbage
// collect the dead subscription on its next publish.
type Stream struct {
	Responses    <-chan *wire.CommandResponse
	OnDisconnect func()
}

func single(resp *wire.CommandResponse) Stream {
	ch := make(chan *wire.CommandResponse, 1)
	ch <- resp
	close(ch)
	return Stream{Responses: ch}
}

// Dispatcher routes requests to the storage and pub/sub backends it was
// constructed with.
type Dispatcher struct {
	storage     store.Storage
	broadcaster *broadcaster.Broadcaster
}

// New builds a Dispatcher over storage and a pub/sub broadcaster.
func New(storage store.Storage, b *broadcaster.Broadcaster) *Dispatcher {
	return &Dispatcher{storage: storage, broadcaster: b}
}

// Execute routes req to the matching handler and returns its streaming
// response. Every error in the cmn taxonomy is converted to a response
// before it leaves Execute: a response is always produced.
func (d *Dispatcher) Execute(req *wire.CommandRequest) Stream {
	switch req.Kind {
	case wire.HGET:
		return single(d.hget(req))
	case wire.HGETALL:
		return single(d.hgetAll(req))
	case wire.HMGET:
		return single(d.hmget(req))
	case wire.HSET:
		return single(d.hset(req))
	case wire.HMSET:
		return single(d.hmset(req))
	case wire.HDEL:
		return single(d.hdel(req))
	case wire.HMDEL:
		return single(d.hmdel(req))
	case wire.HEXIST:
		return single(d.hexist(req))
	case wire.HMEXIST:
		return single(d.hmexist(req))
	case wire.SUBSCRIBE:
		return d.subscribe(req)
	case wire.UNSUBSCRIBE:
		return single(d.unsubscribe(req))
	case wire.PUBLISH:
		return single(d.publish(req))
	default:
		return single(wire.Error(cmn.NewInvalidCommand("unrecognized command kind %q", req.Kind)))
	}
}

func (d *Dispatcher) hget(req *wire.CommandRequest) *wire.CommandResponse {
	v, err := d.storage.Get(req.Table, req.Key)
	if err != nil {
		return wire.Error(cmn.NewInternal(err))
	}
	if v.IsAbsent() {
		return wire.Error(cmn.NewNotFound("Not found for table %s, key %s", req.Table, req.Key))
	}
	return wire.OK([]cmn.Value{v}, nil)
}

func (d *Dispatcher) hgetAll(req *wire.CommandRequest) *wire.CommandResponse {
	pairs, err := d.storage.GetAll(req.Table)
	if err != nil {
		return wire.Error(cmn.NewInternal(err))
	}
	return wire.OK(nil, pairs)
}

func (d *Dispatcher) hmget(req *wire.CommandRequest) *wire.CommandResponse {
	values := make([]cmn.Value, len(req.Keys))
	for i, k := range req.Keys {
		v, err := d.storage.Get(req.Table, k)
		if err != nil {
			return wire.Error(cmn.NewInternal(err))
		}
		values[i] = v
	}
	return wire.OK(values, nil)
}

func (d *Dispatcher) hset(req *wire.CommandRequest) *wire.CommandResponse {
	if req.Pair == nil {
		return wire.Error(cmn.NewInvalidCommand("HSET requires a pair"))
	}
	prev, err := d.storage.Set(req.Table, req.Pair.Key, req.Pair.Value)
	if err != nil {
		return wire.Error(cmn.NewInternal(err))
	}
	return wire.OK([]cmn.Value{prev}, nil)
}

func (d *Dispatcher) hmset(req *wire.CommandRequest) *wire.CommandResponse {
	values := make([]cmn.Value, len(req.Pairs))
	for i, kv := range req.Pairs {
		prev, err := d.storage.Set(req.Table, kv.Key, kv.Value)
		if err != nil {
			return wire.Error(cmn.NewInternal(err))
		}
		values[i] = prev
	}
	return wire.OK(values, nil)
}

func (d *Dispatcher) hdel(req *wire.CommandRequest) *wire.CommandResponse {
	removed, err := d.storage.Del(req.Table, req.Key)
	if err != nil {
		return wire.Error(cmn.NewInternal(err))
	}
	if removed.IsAbsent() {
		return wire.Error(cmn.NewNotFound("Not found for table %s, key %s", req.Table, req.Key))
	}
	return wire.OK([]cmn.Value{removed}, nil)
}

func (d *Dispatcher) hmdel(req *wire.CommandRequest) *wire.CommandResponse {
	values := make([]cmn.Value, len(req.Keys))
	for i, k := range req.Keys {
		removed, err := d.storage.Del(req.Table, k)
		if err != nil {
			return wire.Error(cmn.NewInternal(err))
		}
		values[i] = removed
	}
	return wire.OK(values, nil)
}

func (d *Dispatcher) hexist(req *wire.CommandRequest) *wire.CommandResponse {
	ok, err := d.storage.Contains(req.Table, req.Key)
	if err != nil {
		return wire.Error(cmn.NewInternal(err))
	}
	return wire.OK([]cmn.Value{cmn.BoolValue(ok)}, nil)
}

func (d *Dispatcher) hmexist(req *wire.CommandRequest) *wire.CommandResponse {
	values := make([]cmn.Value, len(req.Keys))
	for i, k := range req.Keys {
		ok, err := d.storage.Contains(req.Table, k)
		if err != nil {
			return wire.Error(cmn.NewInternal(err))
		}
		values[i] = cmn.BoolValue(ok)
	}
	return wire.OK(values, nil)
}

func (d *Dispatcher) subscribe(req *wire.CommandRequest) Stream {
	sub := d.broadcaster.Subscribe(req.Topic)
	return Stream{Responses: sub.C(), OnDisconnect: sub.Close}
}

func (d *Dispatcher) unsubscribe(req *wire.CommandRequest) *wire.CommandResponse {
	if err := d.broadcaster.Unsubscribe(req.Topic, req.ID); err != nil {
		return wire.Error(err)
	}
	return wire.OK(nil, nil)
}

func (d *Dispatcher) publish(req *wire.CommandRequest) *wire.CommandResponse {
	d.broadcaster.Publish(req.Topic, req.Values)
	return wire.OK(nil, nil)
}
