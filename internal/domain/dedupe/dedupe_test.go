package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/flowfit/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryTracker(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new tracker", t, func() {
		d := dedupe.NewInMemory()
		So(d.Size(), ShouldEqual, 0)

		Convey("When a key is claimed for the first time", func() {
			prev, dup := d.Claim(ctx, "k1", "sub-1")

			Convey("Then it is recorded", func() {
				So(dup, ShouldBeFalse)
				So(prev, ShouldBeEmpty)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And the same key is claimed again", func() {
				prev, dup := d.Claim(ctx, "k1", "sub-2")

				Convey("Then the first submission id is returned", func() {
					So(dup, ShouldBeTrue)
					So(prev, ShouldEqual, "sub-1")
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the key is released", func() {
				d.Release(ctx, "k1")

				Convey("Then it can be claimed again", func() {
					So(d.Size(), ShouldEqual, 0)
					_, dup := d.Claim(ctx, "k1", "sub-3")
					So(dup, ShouldBeFalse)
				})
			})
		})

		Convey("When releasing an unknown key", func() {
			d.Release(ctx, "missing")
			So(d.Size(), ShouldEqual, 0)
		})
	})

	Convey("Given a bounded tracker", t, func() {
		d := dedupe.NewInMemory(dedupe.WithMaxSize(3))
		for i := 1; i <= 3; i++ {
			d.Claim(ctx, fmt.Sprintf("k%d", i), fmt.Sprintf("s%d", i))
		}

		Convey("When a fourth key arrives", func() {
			d.Claim(ctx, "k4", "s4")

			Convey("Then the oldest key is evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				_, dup := d.Claim(ctx, "k1", "again")
				So(dup, ShouldBeFalse)
				// k2 was evicted to make room for k1.
				_, dup = d.Claim(ctx, "k4", "again")
				So(dup, ShouldBeTrue)
			})
		})

		Convey("When the middle key is released before eviction", func() {
			d.Release(ctx, "k2")
			d.Claim(ctx, "k4", "s4")
			d.Claim(ctx, "k5", "s5")

			Convey("Then the list stays consistent", func() {
				So(d.Size(), ShouldEqual, 3)
				_, dup := d.Claim(ctx, "k3", "x")
				So(dup, ShouldBeTrue)
				_, dup = d.Claim(ctx, "k5", "x")
				So(dup, ShouldBeTrue)
			})
		})
	})

	Convey("Given an unbounded tracker", t, func() {
		d := dedupe.NewInMemory(dedupe.WithMaxSize(0))
		for i := 0; i < 1000; i++ {
			d.Claim(ctx, fmt.Sprintf("k%d", i), "s")
		}
		So(d.Size(), ShouldEqual, 1000)
	})
}

func TestTrackerConcurrency(t *testing.T) {
	Convey("Given concurrent claims of the same keys", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemory()
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			fresh   int
			workers = 20
		)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					if _, dup := d.Claim(ctx, fmt.Sprintf("k%d", i), fmt.Sprintf("w%d", w)); !dup {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}
			}(w)
		}
		wg.Wait()

		Convey("Then every key is claimed exactly once", func() {
			So(fresh, ShouldEqual, 50)
			So(d.Size(), ShouldEqual, 50)
		})
	})
}
