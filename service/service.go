// Package service is the connection-handling facade: it binds storage,
// the pub/sub broadcaster, and the command dispatcher to a listening
// socket, running one goroutine per accepted connection.
/*
 * Copyright (c) 2026, kvbus authors. All rights reserved.
 */
package service

import (
	"errors"
	"io"
	"net"
	"sync"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/kvbus/kvbus/broadcaster"
	"github.com/kvbus/kvbus/dispatch"
	"github.com/kvbus/kvbus/metrics"
	"github.com/kvbus/kvbus/store"
	"github.com/kvbus/kvbus/stream"
	"github.com/kvbus/kvbus/wire"
)

// TLSWrap upgrades an accepted plain connection into an authenticated one.
// A nil TLSWrap leaves connections as plain TCP.
type TLSWrap func(net.Conn) (net.Conn, error)

// BeforeHook observes a decoded request before it reaches the dispatcher.
// Hooks run in registration order and must not mutate req.
type BeforeHook func(req *wire.CommandRequest)

// AfterHook observes one response yielded by the dispatcher, in the
// order responses are produced, after dispatch and before the response
// is written to the wire.
type AfterHook func(req *wire.CommandRequest, resp *wire.CommandResponse)

// Service owns the storage and pub/sub state shared by every connection,
// plus the ordered pre/post hook chains every request/response passes
// through.
type Service struct {
	dispatcher *dispatch.Dispatcher
	wrap       TLSWrap

	before []BeforeHook
	after  []AfterHook

	wg sync.WaitGroup
}

// New builds a Service over storage and a fresh broadcaster, with the
// standard metrics-recording after-hook already registered. wrap may be
// nil to serve plain TCP.
func New(storage store.Storage, wrap TLSWrap) *Service {
	s := &Service{
		dispatcher: dispatch.New(storage, broadcaster.New()),
		wrap:       wrap,
	}
	s.OnAfter(recordMetrics)
	return s
}

func recordMetrics(req *wire.CommandRequest, resp *wire.CommandResponse) {
	metrics.CommandsTotal.WithLabelValues(string(req.Kind), statusLabel(resp.Status)).Inc()
	if req.Kind == wire.PUBLISH {
		metrics.PublishesTotal.Inc()
	}
}

// OnBefore appends a hook run, in order, on every decoded request before
// it reaches the dispatcher.
func (s *Service) OnBefore(h BeforeHook) {
	s.before = append(s.before, h)
}

// OnAfter appends a hook run, in order, on every response the dispatcher
// yields, before that response is written to the wire.
func (s *Service) OnAfter(h AfterHook) {
	s.after = append(s.after, h)
}

// Serve accepts connections from ln until it returns an error (including
// when ln is closed by the caller to shut down).
func (s *Service) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

// Wait blocks until every in-flight connection handler has returned.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) handle(raw net.Conn) {
	connID := uuid.NewString()
	conn := net.Conn(raw)
	if s.wrap != nil {
		wrapped, err := s.wrap(raw)
		if err != nil {
			glog.Errorf("%s: tls handshake failed: %v", connID, err)
			raw.Close()
			return
		}
		conn = wrapped
	}
	defer conn.Close()

	metrics.ActiveConnections.Inc()
	defer metrics.ActiveConnections.Dec()

	glog.Infof("%s: connected (%s)", connID, conn.RemoteAddr())
	st := stream.New[*wire.CommandRequest, *wire.CommandResponse](conn)

	for {
		req, err := st.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				glog.Infof("%s: disconnected", connID)
			} else {
				glog.Errorf("%s: recv error: %v", connID, err)
				metrics.FrameErrorsTotal.WithLabelValues("recv").Inc()
			}
			return
		}

		if !s.forward(connID, st, req) {
			return
		}
	}
}

// forward runs one request through the dispatcher and writes every
// response it yields, in order, to the connection. It returns false when
// the connection should be torn down.
func (s *Service) forward(connID string, st *stream.Stream[*wire.CommandRequest, *wire.CommandResponse], req *wire.CommandRequest) bool {
	for _, h := range s.before {
		h(req)
	}

	result := s.dispatcher.Execute(req)

	for resp := range result.Responses {
		for _, h := range s.after {
			h(req, resp)
		}

		if err := st.Send(resp); err != nil {
			glog.Errorf("%s: send error: %v", connID, err)
			metrics.FrameErrorsTotal.WithLabelValues("send").Inc()
			if result.OnDisconnect != nil {
				result.OnDisconnect()
				metrics.DeadSubscriptionsTotal.Inc()
			}
			return false
		}
	}
	return true
}

func statusLabel(status uint32) string {
	switch status {
	case 200:
		return "200"
	case 404:
		return "404"
	case 422:
		return "422"
	default:
		return "500"
	}
}
