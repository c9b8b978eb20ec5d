package rosterctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"go.yaml.in/yaml/v3"

	"github.com/inourx99/Englishcompition/internal/adapters/repository"
	"github.com/inourx99/Englishcompition/internal/config"
	"github.com/inourx99/Englishcompition/internal/domain/catalog"
)

func newOptions(t *testing.T, format string) (*Options, *bytes.Buffer) {
	t.Helper()
	cfg := config.New()
	cfg.StorageDriver = config.DriverFile
	cfg.StoragePath = t.TempDir()
	out := &bytes.Buffer{}
	return &Options{Settings: cfg, Format: format, Out: out}, out
}

// exec runs one command and returns its output, resetting the buffer first.
func exec(opts *Options, out *bytes.Buffer, args ...string) (string, error) {
	out.Reset()
	err := Run(context.Background(), opts, args)
	return out.String(), err
}

func TestRunCommands(t *testing.T) {
	Convey("Given a CLI over file storage", t, func() {
		opts, out := newOptions(t, FormatJSON)

		Convey("When a participant is registered", func() {
			text, err := exec(opts, out, "register", "-name", "  Sara   Ali ", "-grade", "6")
			So(err, ShouldBeNil)

			var p participantView
			So(json.Unmarshal([]byte(text), &p), ShouldBeNil)

			Convey("Then the normalized record is printed", func() {
				So(p.ID, ShouldNotBeEmpty)
				So(p.Name, ShouldEqual, "Sara Ali")
				So(string(p.Grade), ShouldEqual, "6")
				So(p.TotalPoints, ShouldEqual, 0)
			})

			Convey("Then a duplicate name is rejected on the next run", func() {
				_, err := exec(opts, out, "register", "-name", "Sara Ali", "-grade", "4")
				So(errors.Is(err, repository.ErrDuplicateName), ShouldBeTrue)
			})

			Convey("Then awards persist between runs", func() {
				text, err := exec(opts, out, "award", "-id", p.ID, "-kind", "project", "-title", "Water cycle")
				So(err, ShouldBeNil)

				var award awardView
				So(json.Unmarshal([]byte(text), &award), ShouldBeNil)
				So(award.Entry.Kind, ShouldEqual, catalog.Project)
				So(award.Entry.Points, ShouldEqual, 2)
				So(award.Project, ShouldNotBeNil)
				So(award.Project.Title, ShouldEqual, "Water cycle")

				_, err = exec(opts, out, "award", "-id", p.ID, "-kind", "WORKSHEET")
				So(err, ShouldBeNil)

				text, err = exec(opts, out, "show", "-id", p.ID)
				So(err, ShouldBeNil)
				var shown participantView
				So(json.Unmarshal([]byte(text), &shown), ShouldBeNil)
				So(shown.TotalPoints, ShouldEqual, 3)
				So(len(shown.Log), ShouldEqual, 2)
				So(len(shown.Projects), ShouldEqual, 1)
			})

			Convey("Then the leaderboard and gallery list the participant", func() {
				_, err := exec(opts, out, "award", "-id", p.ID, "-kind", "PROJECT", "-title", "Poster")
				So(err, ShouldBeNil)

				text, err := exec(opts, out, "leaderboard", "-limit", "5")
				So(err, ShouldBeNil)
				var standings []standingView
				So(json.Unmarshal([]byte(text), &standings), ShouldBeNil)
				So(len(standings), ShouldEqual, 1)
				So(standings[0].Position, ShouldEqual, 1)
				So(standings[0].TotalPoints, ShouldEqual, 2)

				text, err = exec(opts, out, "gallery")
				So(err, ShouldBeNil)
				var items []galleryView
				So(json.Unmarshal([]byte(text), &items), ShouldBeNil)
				So(len(items), ShouldEqual, 1)
				So(items[0].Name, ShouldEqual, "Sara Ali")
			})

			Convey("Then export writes the roster as YAML", func() {
				text, err := exec(opts, out, "export", "-format", "yaml")
				So(err, ShouldBeNil)

				var doc struct {
					StorageKey   string `yaml:"storage_key"`
					Participants []struct {
						ID   string `yaml:"id"`
						Name string `yaml:"name"`
					} `yaml:"participants"`
				}
				So(yaml.Unmarshal([]byte(text), &doc), ShouldBeNil)
				So(doc.StorageKey, ShouldEqual, "english_comp_students")
				So(len(doc.Participants), ShouldEqual, 1)
				So(doc.Participants[0].ID, ShouldEqual, p.ID)
			})
		})

		Convey("When the catalog is printed", func() {
			text, err := exec(opts, out, "catalog")
			So(err, ShouldBeNil)

			var entries []map[string]any
			So(json.Unmarshal([]byte(text), &entries), ShouldBeNil)

			Convey("Then every kind is listed with its wire name", func() {
				So(len(entries), ShouldEqual, 5)
				So(entries[0]["kind"], ShouldEqual, "PROJECT")
				So(entries[0]["points"], ShouldEqual, 2.0)
			})
		})

		Convey("When input is malformed", func() {
			_, err := exec(opts, out)
			So(errors.Is(err, ErrNoCommand), ShouldBeTrue)

			_, err = exec(opts, out, "promote")
			So(errors.Is(err, ErrUnknownCommand), ShouldBeTrue)

			_, err = exec(opts, out, "show", "-nope")
			So(errors.Is(err, ErrUsage), ShouldBeTrue)
			So(IsUsage(err), ShouldBeTrue)

			_, err = exec(opts, out, "award", "-kind", "PROJECT")
			So(errors.Is(err, ErrUsage), ShouldBeTrue)

			_, err = exec(opts, out, "award", "-id", "x", "-kind", "DANCE")
			So(errors.Is(err, catalog.ErrUnknownKind), ShouldBeTrue)

			_, err = exec(opts, out, "show", "-id", "missing")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			So(IsUsage(err), ShouldBeFalse)

			_, err = exec(opts, out, "export", "-format", "xml")
			So(errors.Is(err, ErrUnknownFormat), ShouldBeTrue)
		})

		Convey("When the global format is unknown", func() {
			opts.Format = "csv"
			_, err := exec(opts, out, "catalog")

			Convey("Then nothing is opened and the format is rejected", func() {
				So(errors.Is(err, ErrUnknownFormat), ShouldBeTrue)
			})
		})
	})
}

func TestRunWithoutGlobalLogger(t *testing.T) {
	Convey("Given a quiet CLI over memory storage and no initialized logger", t, func() {
		cfg := config.New()
		cfg.StorageDriver = config.DriverMemory
		out := &bytes.Buffer{}
		opts := &Options{Settings: cfg, Format: FormatJSON, Out: out}

		Convey("Then commands run without touching the global logger", func() {
			So(func() {
				So(Run(context.Background(), opts, []string{"catalog"}), ShouldBeNil)
			}, ShouldNotPanic)
			So(out.String(), ShouldContainSubstring, "PROJECT")
		})
	})
}

func TestShowHelp(t *testing.T) {
	Convey("Given the help text", t, func() {
		var buf bytes.Buffer
		ShowHelp(&buf)

		Convey("Then every command is described", func() {
			for name := range commands {
				So(buf.String(), ShouldContainSubstring, name)
			}
		})
	})
}
