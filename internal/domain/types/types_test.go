package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/raidtier/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntry(t *testing.T) {
	Convey("Given an overall entry", t, func() {
		entry := types.Entry{Rank: 1, Tier: "S+", Score: 21.5, Percentile: 100, SpeciesID: "charizard", Name: "Charizard"}

		Convey("When encoded as JSON", func() {
			b, err := json.Marshal(entry)
			So(err, ShouldBeNil)

			Convey("Then view-specific fields are omitted", func() {
				So(string(b), ShouldContainSubstring, `"speciesId":"charizard"`)
				So(string(b), ShouldContainSubstring, `"tier":"S+"`)
				So(string(b), ShouldNotContainSubstring, "bestAttackType")
				So(string(b), ShouldNotContainSubstring, "bestLeague")
			})
		})
	})
}
