package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/flowfit/internal/adapters/repository"
	"github.com/okian/flowfit/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sample(id string, at time.Time) repository.Submission {
	return repository.Submission{
		ID:        id,
		CreatedAt: at,
		Profile: model.Profile{Name: "Ada", Ratings: []model.Rating{
			{Domain: "restructuring", Skill: 6, Challenge: 6, TimePerception: 2},
			{Domain: "culture", Skill: 2, Challenge: 5, TimePerception: -1},
		}},
	}
}

func exerciseStore(ctx context.Context, open func() repository.Store) {
	s := open()
	defer func() { So(s.Close(), ShouldBeNil) }()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	Convey("When saving and reading back a submission", func() {
		want := sample("b", base)
		So(s.Save(ctx, want), ShouldBeNil)

		got, err := s.Get(ctx, "b")
		So(err, ShouldBeNil)
		So(got.ID, ShouldEqual, "b")
		So(got.Name, ShouldEqual, "Ada")
		So(got.CreatedAt.Equal(base), ShouldBeTrue)
		So(got.Ratings, ShouldResemble, want.Ratings)

		Convey("Then saving the same id conflicts", func() {
			err := s.Save(ctx, sample("b", base))
			So(errors.Is(err, repository.ErrConflict), ShouldBeTrue)
		})
	})

	Convey("When a submission carries an idempotency key", func() {
		first := sample("k1", base)
		first.IdempotencyKey = "form-1"
		So(s.Save(ctx, first), ShouldBeNil)

		got, err := s.GetByKey(ctx, "form-1")
		So(err, ShouldBeNil)
		So(got.ID, ShouldEqual, "k1")
		So(got.IdempotencyKey, ShouldEqual, "form-1")

		Convey("Then another submission with the same key is refused", func() {
			again := sample("k2", base)
			again.IdempotencyKey = "form-1"
			So(errors.Is(s.Save(ctx, again), repository.ErrDuplicateKey), ShouldBeTrue)
			n, err := s.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
		})

		Convey("Then submissions without a key never collide", func() {
			So(s.Save(ctx, sample("k2", base)), ShouldBeNil)
			So(s.Save(ctx, sample("k3", base)), ShouldBeNil)
			_, err := s.GetByKey(ctx, "")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("When a key is unknown", func() {
		_, err := s.GetByKey(ctx, "form-x")
		So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
	})

	Convey("When the id is unknown", func() {
		_, err := s.Get(ctx, "missing")
		So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
	})

	Convey("When listing several submissions", func() {
		So(s.Save(ctx, sample("c", base.Add(time.Minute))), ShouldBeNil)
		So(s.Save(ctx, sample("b", base)), ShouldBeNil)
		So(s.Save(ctx, sample("a", base)), ShouldBeNil)

		list, err := s.List(ctx)
		So(err, ShouldBeNil)
		n, err := s.Count(ctx)
		So(err, ShouldBeNil)

		Convey("Then they come back by creation time, then id", func() {
			So(n, ShouldEqual, 3)
			So(list, ShouldHaveLength, 3)
			So([]string{list[0].ID, list[1].ID, list[2].ID}, ShouldResemble, []string{"a", "b", "c"})
		})
	})

	Convey("When the store is empty", func() {
		list, err := s.List(ctx)
		So(err, ShouldBeNil)
		So(list, ShouldBeEmpty)
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a memory store", t, func() {
		exerciseStore(context.Background(), func() repository.Store { return repository.NewMemoryStore() })
	})

	Convey("Given a stored submission", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore()
		sub := sample("x", time.Now())
		So(s.Save(ctx, sub), ShouldBeNil)

		Convey("Then callers cannot mutate the stored ratings", func() {
			sub.Ratings[0].Skill = 1
			got, err := s.Get(ctx, "x")
			So(err, ShouldBeNil)
			So(got.Ratings[0].Skill, ShouldEqual, 6)
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s := repository.NewMemoryStore()
		So(s.Save(ctx, sample("x", time.Now())), ShouldNotBeNil)
	})
}

func TestSQLiteStore(t *testing.T) {
	Convey("Given a sqlite store in a temp dir", t, func() {
		ctx := context.Background()
		// Convey re-runs this block per leaf, so each path gets a fresh file.
		path := filepath.Join(t.TempDir(), "flowfit.db")
		exerciseStore(ctx, func() repository.Store {
			s, err := repository.OpenSQL(ctx, repository.DriverSQLite, path)
			So(err, ShouldBeNil)
			return s
		})
	})
}

func TestSQLiteStore_KeysSurviveReopen(t *testing.T) {
	Convey("Given a keyed submission in a sqlite file", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "flowfit.db")
		s, err := repository.OpenSQL(ctx, repository.DriverSQLite, path)
		So(err, ShouldBeNil)
		sub := sample("a", time.Now())
		sub.IdempotencyKey = "form-1"
		So(s.Save(ctx, sub), ShouldBeNil)
		So(s.Close(), ShouldBeNil)

		Convey("When the store is reopened", func() {
			again, err := repository.OpenSQL(ctx, repository.DriverSQLite, path)
			So(err, ShouldBeNil)
			defer func() { So(again.Close(), ShouldBeNil) }()

			Convey("Then the key is still known", func() {
				dup := sample("b", time.Now())
				dup.IdempotencyKey = "form-1"
				So(errors.Is(again.Save(ctx, dup), repository.ErrDuplicateKey), ShouldBeTrue)
				got, err := again.GetByKey(ctx, "form-1")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, "a")
			})
		})
	})
}

func TestOpen(t *testing.T) {
	Convey("Given driver names", t, func() {
		ctx := context.Background()

		s, err := repository.Open(ctx, repository.DriverMemory, "")
		So(err, ShouldBeNil)
		So(s, ShouldHaveSameTypeAs, &repository.MemoryStore{})

		_, err = repository.Open(ctx, "mongo", "")
		So(errors.Is(err, repository.ErrUnsupportedDriver), ShouldBeTrue)
	})
}
