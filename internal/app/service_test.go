package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/inourx99/Englishcompition/internal/adapters/repository"
	service "github.com/inourx99/Englishcompition/internal/app"
	"github.com/inourx99/Englishcompition/internal/domain/catalog"
	"github.com/inourx99/Englishcompition/internal/domain/ledger"
	"github.com/inourx99/Englishcompition/internal/domain/model"
	"github.com/inourx99/Englishcompition/internal/domain/projection"
	"github.com/inourx99/Englishcompition/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

func startService(opts ...service.Option) *service.Service {
	svc := service.New(opts...)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	So(svc.Start(ctx), ShouldBeNil)
	return svc
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["workerCount"], ShouldEqual, 2)
			So(stats["queueSize"], ShouldEqual, 256)
			So(stats["dedupeSize"], ShouldEqual, 10_000)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(4),
			service.WithQueueSize(8),
			service.WithDedupeSize(100),
			service.WithLeaderboardLimit(3),
			service.WithAdviceTimeout(time.Second),
		)

		Convey("Then the options should be applied", func() {
			stats := svc.GetStats()
			So(stats["workerCount"], ShouldEqual, 4)
			So(stats["queueSize"], ShouldEqual, 8)
			So(stats["dedupeSize"], ShouldEqual, 100)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startService()
		Reset(svc.Stop)

		Convey("Then it should be marked as started", func() {
			So(svc.GetStats()["started"], ShouldEqual, true)
			So(svc.GetStats()["queueLength"], ShouldEqual, 0)
		})

		Convey("When starting again", func() {
			err := svc.Start(context.Background())

			Convey("Then it is a no-op", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When stopping the service", func() {
			svc.Stop()
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})

	Convey("Given a cancelled start context", t, func() {
		svc := service.New()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("Then Start returns the context error", func() {
			err := svc.Start(ctx)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})
}

func TestService_Register(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startService(service.WithIDGenerator(sequentialIDs()))
		ctx := context.Background()
		Reset(svc.Stop)

		Convey("When registering a participant", func() {
			p, err := svc.Register(ctx, "  Sara  ", model.GradeFourth)

			Convey("Then the record starts at zero", func() {
				So(err, ShouldBeNil)
				So(p.ID, ShouldEqual, "id-001")
				So(p.Name, ShouldEqual, "Sara")
				So(p.TotalPoints, ShouldEqual, 0)
				So(p.GoalReached, ShouldBeFalse)
			})

			Convey("And the trimmed name cannot be registered again", func() {
				_, err := svc.Register(ctx, "Sara", model.GradeSixth)
				So(errors.Is(err, repository.ErrDuplicateName), ShouldBeTrue)
			})
		})

		Convey("When registering a blank name or unknown grade", func() {
			_, errName := svc.Register(ctx, "   ", model.GradeFourth)
			_, errGrade := svc.Register(ctx, "Lina", model.Grade("fifth"))

			Convey("Then both are rejected", func() {
				So(errors.Is(errName, repository.ErrInvalidName), ShouldBeTrue)
				So(errors.Is(errGrade, repository.ErrInvalidGrade), ShouldBeTrue)
			})
		})
	})
}

func TestService_RecordActivity(t *testing.T) {
	Convey("Given a started service with one participant", t, func() {
		svc := startService()
		ctx := context.Background()
		Reset(svc.Stop)

		sara, err := svc.Register(ctx, "Sara", model.GradeFourth)
		So(err, ShouldBeNil)

		Convey("When awarding a project", func() {
			out, err := svc.RecordActivity(ctx, service.AwardInput{
				ParticipantID: sara.ID,
				Kind:          catalog.Project,
				Project:       &ledger.ProjectInput{Title: "  Solar system  ", Description: "model"},
			})

			Convey("Then the stored record has the entry and the artifact", func() {
				So(err, ShouldBeNil)
				So(out.Entry.Points, ShouldEqual, 2)
				So(out.Project, ShouldNotBeNil)
				So(out.Project.Title, ShouldEqual, "Solar system")

				stored, err := svc.Participant(ctx, sara.ID)
				So(err, ShouldBeNil)
				So(stored.TotalPoints, ShouldEqual, 2)
				So(stored.Log, ShouldHaveLength, 1)
				So(stored.Projects, ShouldHaveLength, 1)
				So(svc.Gallery(ctx), ShouldHaveLength, 1)
			})
		})

		Convey("When awards cross the goal", func() {
			var wins int
			for range 100 {
				out, err := svc.RecordActivity(ctx, service.AwardInput{ParticipantID: sara.ID, Kind: catalog.Worksheet})
				So(err, ShouldBeNil)
				if out.JustWon {
					wins++
				}
			}
			out, err := svc.RecordActivity(ctx, service.AwardInput{ParticipantID: sara.ID, Kind: catalog.Research})

			Convey("Then the goal flips exactly once", func() {
				So(err, ShouldBeNil)
				So(wins, ShouldEqual, 1)
				So(out.JustWon, ShouldBeFalse)
				So(out.Participant.TotalPoints, ShouldEqual, 101)
				So(out.Participant.GoalReached, ShouldBeTrue)
			})
		})

		Convey("When the same idempotency key is used twice", func() {
			in := service.AwardInput{ParticipantID: sara.ID, Kind: catalog.Strategy, IdempotencyKey: "k1"}
			_, err1 := svc.RecordActivity(ctx, in)
			out, err2 := svc.RecordActivity(ctx, in)

			Convey("Then the second is a duplicate and the total is unchanged", func() {
				So(err1, ShouldBeNil)
				So(errors.Is(err2, service.ErrDuplicateRequest), ShouldBeTrue)
				So(out.Participant.TotalPoints, ShouldEqual, 1)
				So(svc.GetStats()["dedupeKeys"], ShouldEqual, 1)
			})
		})

		Convey("When an award with a key fails", func() {
			in := service.AwardInput{ParticipantID: sara.ID, Kind: catalog.Project, IdempotencyKey: "k2"}
			_, err1 := svc.RecordActivity(ctx, in)
			in.Project = &ledger.ProjectInput{Title: "Poster"}
			_, err2 := svc.RecordActivity(ctx, in)

			Convey("Then the key is released for a retry", func() {
				So(errors.Is(err1, ledger.ErrInvalidActivityInput), ShouldBeTrue)
				So(err2, ShouldBeNil)
			})
		})

		Convey("When the participant does not exist", func() {
			_, err := svc.RecordActivity(ctx, service.AwardInput{ParticipantID: "missing", Kind: catalog.Worksheet})

			Convey("Then it should return not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_Projections(t *testing.T) {
	Convey("Given a roster with several participants", t, func() {
		svc := startService(service.WithLeaderboardLimit(2))
		ctx := context.Background()
		Reset(svc.Stop)

		points := map[string]int{"Sara": 3, "Lina": 5, "Omar": 3}
		for _, name := range []string{"Sara", "Lina", "Omar"} {
			grade := model.GradeFourth
			if name == "Omar" {
				grade = model.GradeSixth
			}
			p, err := svc.Register(ctx, name, grade)
			So(err, ShouldBeNil)
			for range points[name] {
				_, err := svc.RecordActivity(ctx, service.AwardInput{ParticipantID: p.ID, Kind: catalog.LessonExplanation})
				So(err, ShouldBeNil)
			}
		}

		Convey("Then the leaderboard uses the configured default limit", func() {
			board := svc.Leaderboard(ctx, 0)
			So(board, ShouldHaveLength, 2)
			So(board[0].Name, ShouldEqual, "Lina")
			So(board[1].Name, ShouldEqual, "Sara")
		})

		Convey("Then an explicit limit wins", func() {
			board := svc.Leaderboard(ctx, 10)
			So(board, ShouldHaveLength, 3)
			So(board[2].Name, ShouldEqual, "Omar")
			So(board[2].Position, ShouldEqual, 3)
		})

		Convey("Then search filters by grade and name", func() {
			So(svc.Participants(ctx, projection.Query{Grade: model.GradeSixth}), ShouldHaveLength, 1)
			So(svc.Participants(ctx, projection.Query{Name: "a"}), ShouldHaveLength, 3)
			So(svc.Participants(ctx, projection.Query{Name: "LIN"}), ShouldHaveLength, 1)
		})

		Convey("Then the catalog lists five kinds", func() {
			So(svc.Catalog(), ShouldHaveLength, 5)
			So(svc.Roster(ctx), ShouldHaveLength, 3)
		})
	})
}
