package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/inourx99/Englishcompition/internal/adapters/kv"
	"github.com/inourx99/Englishcompition/internal/domain/catalog"
	"github.com/inourx99/Englishcompition/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// flakyBackend fails reads or writes on demand.
type flakyBackend struct {
	*kv.Memory
	mu       sync.Mutex
	failPuts bool
	failGets bool
}

func newFlakyBackend() *flakyBackend {
	return &flakyBackend{Memory: kv.NewMemory()}
}

func (b *flakyBackend) Put(ctx context.Context, key string, value []byte) error {
	b.mu.Lock()
	fail := b.failPuts
	b.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return b.Memory.Put(ctx, key, value)
}

func (b *flakyBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	fail := b.failGets
	b.mu.Unlock()
	if fail {
		return nil, false, errors.New("io error")
	}
	return b.Memory.Get(ctx, key)
}

func (b *flakyBackend) setFailPuts(v bool) {
	b.mu.Lock()
	b.failPuts = v
	b.mu.Unlock()
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("p-%d", n)
	}
}

func TestRegister(t *testing.T) {
	Convey("Given an empty roster store", t, func() {
		ctx := context.Background()
		backend := newFlakyBackend()
		store := NewRosterStore(backend, WithIDGenerator(sequentialIDs()))

		Convey("When a participant registers", func() {
			p, err := store.Register(ctx, "  Sara   Ali ", model.GradeFourth)

			Convey("Then the record should start at zero with a normalized name", func() {
				So(err, ShouldBeNil)
				So(p.ID, ShouldEqual, "p-1")
				So(p.Name, ShouldEqual, "Sara Ali")
				So(p.TotalPoints, ShouldEqual, 0)
				So(p.GoalReached, ShouldBeFalse)
				So(store.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then the roster should be persisted", func() {
				data, ok, err := backend.Memory.Get(ctx, DefaultKey)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(string(data), ShouldContainSubstring, `"name":"Sara Ali"`)
			})

			Convey("Then the same trimmed name should be rejected", func() {
				_, err := store.Register(ctx, "Sara Ali  ", model.GradeSixth)
				So(errors.Is(err, ErrDuplicateName), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then a name differing only in case should be accepted", func() {
				_, err := store.Register(ctx, "sara ali", model.GradeFourth)
				So(err, ShouldBeNil)
				So(store.Count(ctx), ShouldEqual, 2)
			})
		})

		Convey("When the name is blank", func() {
			_, err := store.Register(ctx, " \t ", model.GradeFourth)

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, ErrInvalidName), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When the grade is unsupported", func() {
			_, err := store.Register(ctx, "Omar", model.Grade("الخامس"))

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, ErrInvalidGrade), ShouldBeTrue)
			})
		})

		Convey("When the write fails", func() {
			backend.setFailPuts(true)
			_, err := store.Register(ctx, "Lina", model.GradeSixth)

			Convey("Then the registration should be rolled back", func() {
				So(errors.Is(err, ErrPersistenceWrite), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 0)
				_, found := store.FindByName(ctx, "Lina")
				So(found, ShouldBeFalse)
			})

			Convey("Then a retry after recovery should succeed", func() {
				backend.setFailPuts(false)
				p, err := store.Register(ctx, "Lina", model.GradeSixth)
				So(err, ShouldBeNil)
				got, err := store.Get(ctx, p.ID)
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "Lina")
			})
		})
	})
}

func TestUpdate(t *testing.T) {
	Convey("Given a store with one participant", t, func() {
		ctx := context.Background()
		backend := newFlakyBackend()
		store := NewRosterStore(backend, WithIDGenerator(sequentialIDs()))
		sara, err := store.Register(ctx, "Sara", model.GradeFourth)
		So(err, ShouldBeNil)

		award := func(p model.Participant) (model.Participant, error) {
			p.Log = append([]model.LogEntry{{ID: "e", Kind: catalog.Worksheet, Points: 1}}, p.Log...)
			p.TotalPoints++
			return p, nil
		}

		Convey("When the record is updated", func() {
			got, err := store.Update(ctx, sara.ID, award)

			Convey("Then the new record should be stored and returned", func() {
				So(err, ShouldBeNil)
				So(got.TotalPoints, ShouldEqual, 1)
				stored, _ := store.Get(ctx, sara.ID)
				So(stored.TotalPoints, ShouldEqual, 1)
			})

			Convey("Then mutating the returned copy should not affect the store", func() {
				got.Log[0].Points = 99
				stored, _ := store.Get(ctx, sara.ID)
				So(stored.Log[0].Points, ShouldEqual, 1)
			})
		})

		Convey("When the id is unknown", func() {
			_, err := store.Update(ctx, "missing", award)

			Convey("Then ErrNotFound should be returned", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				So(errors.Is(store.Replace(ctx, "missing", sara), ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the update function fails", func() {
			boom := errors.New("boom")
			_, err := store.Update(ctx, sara.ID, func(model.Participant) (model.Participant, error) {
				return model.Participant{}, boom
			})

			Convey("Then its error should surface and nothing change", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
				stored, _ := store.Get(ctx, sara.ID)
				So(stored.TotalPoints, ShouldEqual, 0)
			})
		})

		Convey("When the update changes the id", func() {
			_, err := store.Update(ctx, sara.ID, func(p model.Participant) (model.Participant, error) {
				p.ID = "other"
				return p, nil
			})

			Convey("Then it should be refused", func() {
				So(err, ShouldNotBeNil)
				_, err := store.Get(ctx, sara.ID)
				So(err, ShouldBeNil)
			})
		})

		Convey("When the write fails", func() {
			backend.setFailPuts(true)
			_, err := store.Update(ctx, sara.ID, award)

			Convey("Then the previous record should be restored", func() {
				So(errors.Is(err, ErrPersistenceWrite), ShouldBeTrue)
				stored, _ := store.Get(ctx, sara.ID)
				So(stored.TotalPoints, ShouldEqual, 0)
				So(stored.Log, ShouldBeEmpty)
			})
		})

		Convey("When a record is replaced", func() {
			replacement := sara
			replacement.TotalPoints = 2
			So(store.Replace(ctx, sara.ID, replacement), ShouldBeNil)

			Convey("Then Get should return the replacement", func() {
				stored, _ := store.Get(ctx, sara.ID)
				So(stored.TotalPoints, ShouldEqual, 2)
			})
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given a backend", t, func() {
		ctx := context.Background()
		backend := newFlakyBackend()

		Convey("When nothing was stored", func() {
			store := NewRosterStore(backend)
			err := store.Load(ctx)

			Convey("Then the roster should be empty", func() {
				So(err, ShouldBeNil)
				So(store.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When the stored payload is not valid JSON", func() {
			So(backend.Memory.Put(ctx, DefaultKey, []byte(`{not json`)), ShouldBeNil)
			store := NewRosterStore(backend)
			err := store.Load(ctx)

			Convey("Then the roster should load empty without error", func() {
				So(err, ShouldBeNil)
				So(store.List(ctx), ShouldBeEmpty)
			})
		})

		Convey("When the payload has an unknown activity", func() {
			So(backend.Memory.Put(ctx, DefaultKey, []byte(
				`[{"id":"a","name":"Sara","grade":"الرابع","totalPoints":1,"logs":[{"id":"l","activityType":"DANCE","timestamp":1,"points":1}],"projects":[],"hasWon":false}]`,
			)), ShouldBeNil)
			store := NewRosterStore(backend)

			Convey("Then the payload should be discarded", func() {
				So(store.Load(ctx), ShouldBeNil)
				So(store.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When the backend read fails", func() {
			backend.failGets = true
			store := NewRosterStore(backend)

			Convey("Then the roster should load empty", func() {
				So(store.Load(ctx), ShouldBeNil)
				So(store.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			store := NewRosterStore(backend)

			Convey("Then Load should report it", func() {
				So(errors.Is(store.Load(cctx), context.Canceled), ShouldBeTrue)
			})
		})

		Convey("When a stored total disagrees with the log", func() {
			So(backend.Memory.Put(ctx, DefaultKey, []byte(
				`[{"id":"a","name":"Sara","grade":"الرابع","totalPoints":40,"logs":[{"id":"l1","activityType":"PROJECT","timestamp":2000,"points":2},{"id":"l2","activityType":"WORKSHEET","timestamp":1000,"points":1}],"projects":[{"id":"pr","title":"Volcano","description":"","timestamp":2000}],"hasWon":false}]`,
			)), ShouldBeNil)
			store := NewRosterStore(backend)
			So(store.Load(ctx), ShouldBeNil)

			Convey("Then the total should be recomputed from the log", func() {
				p, err := store.Get(ctx, "a")
				So(err, ShouldBeNil)
				So(p.TotalPoints, ShouldEqual, 3)
				So(p.Log[0].Kind, ShouldEqual, catalog.Project)
				So(p.Projects[0].CreatedAt, ShouldEqual, time.UnixMilli(2000).UTC())
			})
		})
	})
}

func TestPersistenceRoundTrip(t *testing.T) {
	Convey("Given a roster written by one store", t, func() {
		ctx := context.Background()
		backend := kv.NewMemory()
		first := NewRosterStore(backend, WithIDGenerator(sequentialIDs()))
		sara, err := first.Register(ctx, "Sara", model.GradeFourth)
		So(err, ShouldBeNil)
		_, err = first.Register(ctx, "Lina", model.GradeSixth)
		So(err, ShouldBeNil)

		at := time.UnixMilli(1_700_000_000_123).UTC()
		_, err = first.Update(ctx, sara.ID, func(p model.Participant) (model.Participant, error) {
			p.Log = []model.LogEntry{{ID: "l1", Kind: catalog.Project, Points: 2, CreatedAt: at}}
			p.Projects = []model.Project{{ID: "pr1", Title: "Volcano", Description: "lava", CreatedAt: at}}
			p.TotalPoints = 2
			return p, nil
		})
		So(err, ShouldBeNil)

		Convey("When a second store loads it", func() {
			second := NewRosterStore(backend)
			So(second.Load(ctx), ShouldBeNil)

			Convey("Then records and order should match", func() {
				So(second.List(ctx), ShouldResemble, first.List(ctx))
			})

			Convey("Then names should be found", func() {
				p, ok := second.FindByName(ctx, " Lina ")
				So(ok, ShouldBeTrue)
				So(p.Grade, ShouldEqual, model.GradeSixth)
			})
		})

		Convey("When Save is called explicitly", func() {
			So(first.Save(ctx), ShouldBeNil)
		})
	})
}

func TestConcurrentUpdates(t *testing.T) {
	Convey("Given many concurrent awards to one participant", t, func() {
		ctx := context.Background()
		store := NewRosterStore(kv.NewMemory())
		p, err := store.Register(ctx, "Sara", model.GradeFourth)
		So(err, ShouldBeNil)

		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = store.Update(ctx, p.ID, func(cur model.Participant) (model.Participant, error) {
					cur.TotalPoints++
					return cur, nil
				})
			}()
		}
		wg.Wait()

		Convey("Then no update should be lost", func() {
			got, _ := store.Get(ctx, p.ID)
			So(got.TotalPoints, ShouldEqual, 50)
		})
	})
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"  Sara  ":     "Sara",
		"Sara\t\tAli":  "Sara Ali",
		"":             "",
		"Cafe\u0301":   "Caf\u00e9",
		"نور   الهدى": "نور الهدى",
	}
	for in, want := range cases {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}
