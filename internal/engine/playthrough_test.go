// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package engine_test

import (
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/lightwell/internal/engine"
	"github.com/holomush/lightwell/internal/geom"
	"github.com/holomush/lightwell/internal/level"
	"github.com/holomush/lightwell/internal/scoring"
)

type step struct {
	rotate string
	dir    int
	move   string
	delta  geom.Vec3
}

func rot(id string, dir int) step         { return step{rotate: id, dir: dir} }
func mov(id string, delta geom.Vec3) step { return step{move: id, delta: delta} }

func apply(s *engine.Session, st step) bool {
	if st.move != "" {
		return s.Move(st.move, st.delta)
	}
	return s.Rotate(st.rotate, st.dir)
}

var _ = Describe("Built-in level playthroughs", func() {
	var (
		catalog *level.Catalog
		session *engine.Session
	)

	BeforeEach(func() {
		var err error
		catalog, err = level.Default()
		Expect(err).NotTo(HaveOccurred())
		session = engine.NewSession(catalog, engine.DefaultConfig())
	})

	DescribeTable("solving in the fewest moves",
		func(id int, steps []step, tier scoring.Tier) {
			Expect(session.LoadLevel(id)).To(Succeed())
			for i, st := range steps {
				Expect(apply(session, st)).To(BeTrue(), "step %d", i)
				if i < len(steps)-1 {
					Expect(session.Snapshot().Complete()).To(BeFalse(), "solved early at step %d", i)
				}
			}
			snap := session.Snapshot()
			Expect(snap.Complete()).To(BeTrue())
			Expect(snap.MovesUsed).To(Equal(len(steps)))
			Expect(snap.Tier).To(Equal(tier))

			rec, ok := session.Result()
			Expect(ok).To(BeTrue())
			Expect(rec.LevelID).To(Equal(id))
			Expect(rec.BestMoves).To(Equal(len(steps)))
		},
		Entry("First Light", 1, []step{rot("prism1", 1), rot("prism1", 1), rot("prism2", 1), rot("prism2", 1)}, scoring.TierGold),
		Entry("Fork", 2, []step{rot("prism2", 1), rot("prism3", 1)}, scoring.TierGold),
		Entry("Triangle", 6, []step{rot("left", -1), rot("left", -1)}, scoring.TierGold),
		Entry("Split Decision", 7, []step{rot("l1", 1), rot("l1", 1), rot("r1", -1), rot("r1", -1)}, scoring.TierGold),
		Entry("Two Suns", 12, []step{mov("block1", geom.V(0, 0, 1)), rot("prism1", 1), rot("prism1", 1)}, scoring.TierGold),
	)

	It("tiers down with wasted moves", func() {
		Expect(session.LoadLevel(1)).To(Succeed())
		for _, st := range []step{
			rot("prism1", -1), rot("prism1", 1),
			rot("prism1", 1), rot("prism1", 1),
			rot("prism2", 1), rot("prism2", 1),
		} {
			Expect(apply(session, st)).To(BeTrue())
		}
		snap := session.Snapshot()
		Expect(snap.Complete()).To(BeTrue())
		Expect(snap.Tier).To(Equal(scoring.TierSilver))
		Expect(snap.Score).To(Equal(scoring.BaseScore))
	})

	It("powers chain elements as links connect", func() {
		Expect(session.LoadLevel(1)).To(Succeed())
		Expect(session.Snapshot().Outcome.Powered).To(HaveKeyWithValue("prism1", true))
		Expect(session.Snapshot().Outcome.Powered).NotTo(HaveKey("prism2"))

		session.Rotate("prism1", 1)
		session.Rotate("prism1", 1)
		Expect(session.Snapshot().Outcome.Powered).To(HaveKeyWithValue("prism2", true))
		Expect(session.Snapshot().Complete()).To(BeFalse())
	})

	It("collects the jewel on the way to Two Suns", func() {
		Expect(session.LoadLevel(12)).To(Succeed())
		Expect(session.ActivateBonus("jewel1")).To(BeTrue())
		Expect(session.Snapshot().MovesRemaining).To(Equal(8 + 2))

		for _, st := range []step{mov("block1", geom.V(0, 0, 1)), rot("prism1", 1), rot("prism1", 1)} {
			Expect(apply(session, st)).To(BeTrue())
		}
		snap := session.Snapshot()
		Expect(snap.Complete()).To(BeTrue())
		Expect(snap.JewelsCollected).To(Equal(1))
		Expect(snap.Score).To(Equal(scoring.BaseScore + 2*scoring.EfficiencyBonus + scoring.JewelBonus))
	})

	It("keeps the undo law across a ripple", func() {
		Expect(session.LoadLevel(7)).To(Succeed())
		before := session.Snapshot()

		Expect(session.Rotate("l2", 1)).To(BeTrue())
		Expect(session.Undo()).To(BeTrue())

		after := session.Snapshot()
		Expect(after.MovesRemaining).To(Equal(before.MovesRemaining))
		Expect(after.MovesUsed).To(Equal(before.MovesUsed))
		for _, el := range before.Elements {
			got, ok := after.Element(el.ID())
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(el))
		}
	})

	It("traces segments for display", func() {
		Expect(session.LoadLevel(6)).To(Succeed())
		session.Rotate("left", -1)
		session.Rotate("left", -1)

		beams := session.Snapshot().Outcome.Beams
		Expect(beams).To(HaveLen(1))
		Expect(beams[0].ReachesTarget).To(BeTrue())
		Expect(beams[0].Segments).To(HaveLen(3))
	})

	It("walks the whole catalog with next", func() {
		seen := 0
		for session.NextLevel() {
			seen++
		}
		Expect(seen).To(Equal(catalog.Len()))
	})
})
