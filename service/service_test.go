/*
 * Copyright (c) 2026, kvbus authors. All rights reserved.
 */
package service_test

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvbus/kvbus/cmn"
	"github.com/kvbus/kvbus/service"
	"github.com/kvbus/kvbus/store"
	"github.com/kvbus/kvbus/stream"
	"github.com/kvbus/kvbus/wire"
)

func startServer(t *testing.T) net.Addr {
	t.Helper()
	return startServerWith(t, func(*service.Service) {})
}

func startServerWith(t *testing.T, configure func(*service.Service)) net.Addr {
	t.Helper()
	svc := service.New(store.NewMemStore(), nil)
	configure(svc)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go svc.Serve(ln)
	t.Cleanup(func() { ln.Close() })
	return ln.Addr()
}

func dial(t *testing.T, addr net.Addr) *stream.Stream[*wire.CommandResponse, *wire.CommandRequest] {
	t.Helper()
	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return stream.New[*wire.CommandResponse, *wire.CommandRequest](conn)
}

func TestServiceHSetThenHGetOverTheWire(t *testing.T) {
	addr := startServer(t)
	conn := dial(t, addr)

	require.NoError(t, conn.Send(wire.NewHSet("table1", "hello", cmn.StringValue("world"))))
	setResp, err := conn.Recv()
	require.NoError(t, err)
	assert.Equal(t, cmn.StatusOK, setResp.Status)

	require.NoError(t, conn.Send(wire.NewHGet("table1", "hello")))
	getResp, err := conn.Recv()
	require.NoError(t, err)
	assert.Equal(t, cmn.StatusOK, getResp.Status)
	assert.Equal(t, cmn.StringValue("world"), getResp.Values[0])
}

func TestServiceHGetMissingKeyIsNotFound(t *testing.T) {
	addr := startServer(t)
	conn := dial(t, addr)

	require.NoError(t, conn.Send(wire.NewHGet("t", "missing")))
	resp, err := conn.Recv()
	require.NoError(t, err)
	assert.Equal(t, cmn.StatusNotFound, resp.Status)
}

func TestServiceSubscribeAcrossTwoConnections(t *testing.T) {
	addr := startServer(t)
	subscriber := dial(t, addr)
	publisher := dial(t, addr)

	require.NoError(t, subscriber.Send(wire.NewSubscribe("lobby")))
	ack, err := subscriber.Recv()
	require.NoError(t, err)
	require.Equal(t, cmn.StatusOK, ack.Status)

	require.NoError(t, publisher.Send(wire.NewPublish("lobby", []cmn.Value{cmn.StringValue("hi")})))
	pubAck, err := publisher.Recv()
	require.NoError(t, err)
	assert.Equal(t, cmn.StatusOK, pubAck.Status)

	type recvResult struct {
		resp *wire.CommandResponse
		err  error
	}
	done := make(chan recvResult, 1)
	go func() {
		resp, err := subscriber.Recv()
		done <- recvResult{resp, err}
	}()

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, cmn.StringValue("hi"), r.resp.Values[0])
	case <-time.After(2 * time.Second):
		t.Fatal("expected published message to be forwarded to the subscriber")
	}
}

func TestServiceHooksRunBeforeAndAfterDispatch(t *testing.T) {
	var mu sync.Mutex
	var seenReqs []wire.Kind
	var seenResps []uint32

	addr := startServerWith(t, func(svc *service.Service) {
		svc.OnBefore(func(req *wire.CommandRequest) {
			mu.Lock()
			defer mu.Unlock()
			seenReqs = append(seenReqs, req.Kind)
		})
		svc.OnAfter(func(req *wire.CommandRequest, resp *wire.CommandResponse) {
			mu.Lock()
			defer mu.Unlock()
			seenResps = append(seenResps, resp.Status)
		})
	})
	conn := dial(t, addr)

	require.NoError(t, conn.Send(wire.NewHGet("t", "missing")))
	_, err := conn.Recv()
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seenReqs) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []wire.Kind{wire.HGET}, seenReqs)
	assert.Equal(t, []uint32{cmn.StatusNotFound}, seenResps)
}
