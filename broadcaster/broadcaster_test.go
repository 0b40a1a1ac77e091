/*
 * Copyright (c) 2026, kvbus authors. All rights reserved.
 */
package broadcaster_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/kvbus/kvbus/broadcaster"
	"github.com/kvbus/kvbus/cmn"
)

var _ = Describe("Broadcaster", func() {
	var b *broadcaster.Broadcaster

	BeforeEach(func() {
		b = broadcaster.New()
	})

	Describe("Subscribe", func() {
		It("assigns an ID >= 1 and pushes it as the first response", func() {
			sub := b.Subscribe("lobby")
			Expect(sub.ID()).To(BeNumerically(">=", 1))

			first := <-sub.C()
			Expect(first.Status).To(Equal(cmn.StatusOK))
			Expect(first.Values).To(HaveLen(1))
			Expect(first.Values[0].Kind).To(Equal(cmn.KindInt))
			Expect(first.Values[0].I).To(BeNumerically(">=", 1))
		})

		It("never reuses or collides IDs across many subscriptions", func() {
			seen := map[uint32]bool{}
			for i := 0; i < 1000; i++ {
				sub := b.Subscribe("lobby")
				Expect(seen[sub.ID()]).To(BeFalse())
				seen[sub.ID()] = true
				Expect(sub.ID()).To(BeNumerically(">=", 1))
			}
		})
	})

	Describe("Publish", func() {
		It("delivers to an existing subscriber", func() {
			sub := b.Subscribe("lobby")
			<-sub.C() // drain the subscribe-ack

			b.Publish("lobby", []cmn.Value{cmn.StringValue("hi")})

			select {
			case resp := <-sub.C():
				Expect(resp.Values[0].S).To(Equal("hi"))
			case <-time.After(time.Second):
				Fail("expected a delivered publish")
			}
		})

		It("is a no-op for a topic with no subscribers", func() {
			Expect(func() { b.Publish("nobody-home", nil) }).NotTo(Panic())
		})

		It("removes a subscription whose receiver was closed, detected on the next publish", func() {
			sub := b.Subscribe("lobby")
			<-sub.C()
			sub.Close()

			b.Publish("lobby", []cmn.Value{cmn.StringValue("hello")})

			err := b.Unsubscribe("lobby", sub.ID())
			Expect(err).To(HaveOccurred())
		})

		It("treats a full outbound queue as dead and removes it", func() {
			sub := b.Subscribe("lobby")
			<-sub.C()

			// Overflow the bounded queue without draining it.
			for i := 0; i < 10; i++ {
				b.Publish("lobby", []cmn.Value{cmn.IntValue(int64(i))})
			}

			err := b.Unsubscribe("lobby", sub.ID())
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Unsubscribe", func() {
		It("fails with not-found for an ID that was never issued", func() {
			err := b.Unsubscribe("lobby", 9527)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(Equal("Not found: subscription 9527"))
			Expect(cmn.StatusOf(err)).To(Equal(cmn.StatusNotFound))
		})

		It("succeeds for a live subscription and is idempotent-failing after", func() {
			sub := b.Subscribe("lobby")
			<-sub.C()

			Expect(b.Unsubscribe("lobby", sub.ID())).To(Succeed())
			Expect(b.Unsubscribe("lobby", sub.ID())).To(HaveOccurred())
		})
	})
})
