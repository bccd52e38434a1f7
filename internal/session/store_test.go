package session

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kitakits/stock-ledger/internal/extract"
)

// fakeClock is a settable Clock for TTL tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

var _ = Describe("Store", func() {
	var (
		clock *fakeClock
		store *Store
	)

	BeforeEach(func() {
		clock = &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
		store = NewStoreWithClock(clock, TTL)
	})

	Describe("Get", func() {
		When("no session exists", func() {
			It("should report absent", func() {
				_, ok := store.Get("owner-1")
				Expect(ok).To(BeFalse())
			})
		})

		When("a live session exists", func() {
			BeforeEach(func() {
				store.Put(New("owner-1", extract.KindInventory, clock.Now()))
			})

			It("should return it", func() {
				s, ok := store.Get("owner-1")
				Expect(ok).To(BeTrue())
				Expect(s.OwnerID).To(Equal("owner-1"))
			})

			It("should still return it just inside the TTL", func() {
				clock.Advance(TTL - time.Second)
				_, ok := store.Get("owner-1")
				Expect(ok).To(BeTrue())
			})
		})

		When("the session is older than the TTL", func() {
			BeforeEach(func() {
				store.Put(New("owner-1", extract.KindInventory, clock.Now()))
				clock.Advance(TTL + time.Second)
			})

			It("should report absent", func() {
				_, ok := store.Get("owner-1")
				Expect(ok).To(BeFalse())
			})

			It("should evict the session", func() {
				store.Get("owner-1")
				clock.Advance(-2 * time.Second)
				_, ok := store.Get("owner-1")
				Expect(ok).To(BeFalse())
			})
		})
	})

	Describe("Put", func() {
		It("should replace an existing session for the owner", func() {
			store.Put(New("owner-1", extract.KindInventory, clock.Now()))
			store.Put(New("owner-1", extract.KindSales, clock.Now()))

			s, ok := store.Get("owner-1")
			Expect(ok).To(BeTrue())
			Expect(s.Kind).To(Equal(extract.KindSales))
		})

		It("should keep owners independent", func() {
			store.Put(New("owner-1", extract.KindInventory, clock.Now()))
			store.Put(New("owner-2", extract.KindSales, clock.Now()))

			a, _ := store.Get("owner-1")
			b, _ := store.Get("owner-2")
			Expect(a.Kind).To(Equal(extract.KindInventory))
			Expect(b.Kind).To(Equal(extract.KindSales))
		})
	})

	Describe("Delete", func() {
		It("should remove the session", func() {
			store.Put(New("owner-1", extract.KindInventory, clock.Now()))
			store.Delete("owner-1")
			_, ok := store.Get("owner-1")
			Expect(ok).To(BeFalse())
		})
	})
})
