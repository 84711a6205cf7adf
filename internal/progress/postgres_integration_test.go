// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package progress_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/holomush/lightwell/internal/progress"
	"github.com/holomush/lightwell/internal/scoring"
)

var _ = Describe("PostgresStore", Ordered, func() {
	var (
		ctx       context.Context
		container *postgres.PostgresContainer
		connStr   string
		store     *progress.PostgresStore
	)

	BeforeAll(func() {
		ctx = context.Background()
		var err error
		container, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("lightwell_test"),
			postgres.WithUsername("lightwell"),
			postgres.WithPassword("lightwell"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		Expect(err).NotTo(HaveOccurred())

		connStr, err = container.ConnectionString(ctx, "sslmode=disable")
		Expect(err).NotTo(HaveOccurred())

		store, err = progress.Connect(ctx, connStr)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if store != nil {
			store.Close()
		}
		if container != nil {
			_ = container.Terminate(ctx)
		}
	})

	It("reports a missing schema before migrating", func() {
		_, err := store.List(ctx)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("level_progress"))
	})

	It("migrates up", func() {
		m, err := progress.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = m.Close() }()

		Expect(m.Up()).To(Succeed())
		v, dirty, err := m.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint(1)))
		Expect(dirty).To(BeFalse())

		pending, err := m.Pending()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(BeEmpty())
	})

	It("keeps only improvements through a tracker", func() {
		tr := progress.NewTracker(store, nil)
		_, err := tr.Record(ctx, scoring.Record{LevelID: 1, Completed: true, BestMoves: 5, Tier: scoring.TierSilver, Score: 1000})
		Expect(err).NotTo(HaveOccurred())
		_, err = tr.Record(ctx, scoring.Record{LevelID: 1, Completed: true, BestMoves: 3, Tier: scoring.TierGold, Score: 1150})
		Expect(err).NotTo(HaveOccurred())
		_, err = tr.Record(ctx, scoring.Record{LevelID: 1, Completed: true, BestMoves: 8, Tier: scoring.TierBronze, Score: 900})
		Expect(err).NotTo(HaveOccurred())

		rec, ok, err := store.Get(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(rec).To(Equal(scoring.Record{LevelID: 1, Completed: true, BestMoves: 3, Tier: scoring.TierGold, Score: 1150}))

		recs, totals, err := tr.Summary(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(recs).To(HaveLen(1))
		Expect(totals.TotalJewels).To(Equal(3))
	})
})
