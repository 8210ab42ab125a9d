package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type payload struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func TestMemoryCache(t *testing.T) {
	Convey("Given a memory cache", t, func() {
		ctx := context.Background()
		mc := NewMemoryCache(WithMemoryMaxSize(2), WithMemoryTTL(time.Minute))
		defer mc.Close()

		Convey("When a value is stored", func() {
			So(mc.Set(ctx, "a", payload{Name: "a", Score: 1.5}, 0), ShouldBeNil)

			Convey("Then it round-trips through Get", func() {
				got, err := GetTyped[payload](ctx, mc, "a")
				So(err, ShouldBeNil)
				So(got, ShouldResemble, payload{Name: "a", Score: 1.5})
				ok, err := mc.Exists(ctx, "a", "b")
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
			})

			Convey("Then deleting it makes the next Get a miss", func() {
				So(mc.Delete(ctx, "a"), ShouldBeNil)
				var p payload
				So(errors.Is(mc.Get(ctx, "a", &p), ErrCacheMiss), ShouldBeTrue)
			})
		})

		Convey("When more keys are stored than fit", func() {
			So(mc.Set(ctx, "a", 1, 0), ShouldBeNil)
			So(mc.Set(ctx, "b", 2, 0), ShouldBeNil)
			var v int
			So(mc.Get(ctx, "a", &v), ShouldBeNil)
			So(mc.Set(ctx, "c", 3, 0), ShouldBeNil)

			Convey("Then the least recently used key is evicted", func() {
				So(mc.Len(), ShouldEqual, 2)
				So(errors.Is(mc.Get(ctx, "b", &v), ErrCacheMiss), ShouldBeTrue)
				So(mc.Get(ctx, "a", &v), ShouldBeNil)
				So(v, ShouldEqual, 1)
			})
		})

		Convey("When an entry outlives its expiration", func() {
			now := time.Now()
			mc.now = func() time.Time { return now }
			So(mc.Set(ctx, "a", 1, time.Second), ShouldBeNil)
			mc.now = func() time.Time { return now.Add(2 * time.Second) }

			Convey("Then it is a miss", func() {
				var v int
				So(errors.Is(mc.Get(ctx, "a", &v), ErrCacheMiss), ShouldBeTrue)
				So(mc.Len(), ShouldEqual, 0)
			})

			Convey("Then a sweep removes it", func() {
				mc.sweep()
				So(mc.Len(), ShouldEqual, 0)
			})
		})

		Convey("When closed twice", func() {
			So(mc.Close(), ShouldBeNil)
			So(mc.Close(), ShouldBeNil)
		})
	})
}

func TestLayeredCache(t *testing.T) {
	Convey("Given memory in front of another memory cache", t, func() {
		ctx := context.Background()
		front := NewMemoryCache()
		back := NewMemoryCache()
		lc := NewLayeredCache(front, back)
		defer lc.Close()

		Convey("When a value exists only in the backend", func() {
			So(back.Set(ctx, "k", "v", 0), ShouldBeNil)
			var s string
			So(lc.Get(ctx, "k", &s), ShouldBeNil)
			So(s, ShouldEqual, "v")

			Convey("Then it is promoted to memory", func() {
				ok, _ := front.Exists(ctx, "k")
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When a value is written through", func() {
			So(lc.Set(ctx, "k", 7, 0), ShouldBeNil)
			ok, _ := back.Exists(ctx, "k")
			So(ok, ShouldBeTrue)
			So(lc.Delete(ctx, "k"), ShouldBeNil)
			ok, _ = lc.Exists(ctx, "k")
			So(ok, ShouldBeFalse)
		})
	})
}

// downCache fails every call, like a backend that went away.
type downCache struct{ err error }

func (d downCache) Set(context.Context, string, any, time.Duration) error { return d.err }
func (d downCache) Get(context.Context, string, any) error { return d.err }
func (d downCache) Delete(context.Context, ...string) error { return d.err }
func (d downCache) Exists(context.Context, ...string) (bool, error) { return false, d.err }
func (d downCache) Close() error { return nil }

func TestLayeredCacheBackendDown(t *testing.T) {
	Convey("Given memory in front of a failing backend", t, func() {
		ctx := context.Background()
		down := errors.New("connection refused")
		lc := NewLayeredCache(NewMemoryCache(), downCache{err: down})
		defer lc.Close()

		Convey("When a value is written", func() {
			err := lc.Set(ctx, "k", payload{Name: "charizard", Score: 9}, 0)

			Convey("Then the backend error is reported", func() {
				So(errors.Is(err, down), ShouldBeTrue)
			})

			Convey("Then the value is still served from memory", func() {
				got, err := GetTyped[payload](ctx, lc, "k")
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "charizard")
			})
		})
	})
}

func TestRedisCacheUnreachable(t *testing.T) {
	Convey("Given an address nothing listens on", t, func() {
		_, err := NewRedisCache(context.Background(),
			WithRedisAddr("127.0.0.1:1"),
			WithRedisDialTimeout(200*time.Millisecond))
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "redis ping")
	})

	Convey("Given a prefix", t, func() {
		c := &RedisCache{prefix: "raidtier"}
		So(c.wrapKey("overall:1"), ShouldEqual, "raidtier:overall:1")
		So(c.wrapKeys("a", "b"), ShouldResemble, []string{"raidtier:a", "raidtier:b"})
		So((&RedisCache{}).wrapKey("a"), ShouldEqual, "a")
	})
}
