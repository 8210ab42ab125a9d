package ranking

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/raidtier/internal/domain/model"
	"github.com/okian/raidtier/internal/domain/types"
)

func TestRankRecoversScoringPanic(t *testing.T) {
	Convey("Given a score function that panics for one entity", t, func() {
		a, err := New()
		So(err, ShouldBeNil)
		ds := &model.Dataset{Entities: []model.Entity{
			{SpeciesID: "a", Dex: 1},
			{SpeciesID: "b", Dex: 2},
			{SpeciesID: "c", Dex: 3},
		}}
		score := func(e model.Entity, _, _ []model.Move) (scored, error) {
			if e.SpeciesID == "b" {
				panic("bad stats table")
			}
			return scored{include: true, value: float64(e.Dex)}, nil
		}

		view, err := a.rank(context.Background(), ds, PVP, "", score)
		So(err, ShouldBeNil)

		Convey("Then the panicking entity is skipped with a reason", func() {
			So(view.Count, ShouldEqual, 2)
			_, ok := view.Entry("b")
			So(ok, ShouldBeFalse)
			So(view.Skipped, ShouldHaveLength, 1)
			So(view.Skipped[0].SpeciesID, ShouldEqual, "b")
			So(view.Skipped[0].Reason, ShouldEqual, types.ReasonScoringFailed)
			So(view.Skipped[0].Detail, ShouldContainSubstring, "bad stats table")
		})

		Convey("Then the other entities are still ranked", func() {
			So(view.Entries[0].SpeciesID, ShouldEqual, "c")
			So(view.Entries[1].SpeciesID, ShouldEqual, "a")
		})
	})
}
