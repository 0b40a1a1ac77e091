/*
 * Copyright (c) 2026, kvbus authors. All rights reserved.
 */
package hk_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/kvbus/kvbus/hk"
)

var _ = Describe("Cleaner", func() {
	var c *hk.Cleaner

	BeforeEach(func() {
		c = hk.New()
	})

	AfterEach(func() {
		c.Stop()
	})

	It("fires the callback immediately and then on its own interval", func() {
		fired := false
		c.Reg("", func() time.Duration {
			fired = true
			return 300 * time.Millisecond
		})

		Eventually(func() bool { return fired }, "50ms").Should(BeTrue())
		fired = false

		Consistently(func() bool { return fired }, "150ms").Should(BeFalse())
		Eventually(func() bool { return fired }, "400ms").Should(BeTrue())
	})

	It("delays the first firing when an initial interval is given", func() {
		fired := false
		c.Reg("", func() time.Duration {
			fired = true
			return time.Second
		}, 200*time.Millisecond)

		Consistently(func() bool { return fired }, "100ms").Should(BeFalse())
		Eventually(func() bool { return fired }, "300ms").Should(BeTrue())
	})

	It("stops firing once unregistered", func() {
		fired := false
		c.Reg("foo", func() time.Duration {
			fired = true
			return 100 * time.Millisecond
		}, 100*time.Millisecond)

		Eventually(func() bool { return fired }, "200ms").Should(BeTrue())
		fired = false
		c.Unreg("foo")

		Consistently(func() bool { return fired }, "300ms").Should(BeFalse())
	})

	It("runs multiple independent callbacks", func() {
		var fooFired, barFired bool
		c.Reg("foo", func() time.Duration {
			fooFired = true
			return time.Second
		})
		c.Reg("bar", func() time.Duration {
			barFired = true
			return time.Second
		})

		Eventually(func() bool { return fooFired && barFired }, "50ms").Should(BeTrue())
	})
})
