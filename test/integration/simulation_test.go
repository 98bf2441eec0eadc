// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

//go:build integration

package integration

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/event"
	"github.com/lifefork/lifefork/internal/narrative"
	"github.com/lifefork/lifefork/internal/sim"
	"github.com/lifefork/lifefork/internal/snapshot"
)

func settingsFor(outputDir string, layers int) *config.Settings {
	s := config.DefaultSettings()
	s.Seed = 1234
	s.Layers = layers
	s.OutputDir = outputDir
	s.Scenarios = config.DefaultScenarios()
	return &s
}

var _ = Describe("Simulation run", func() {
	var (
		ctx       context.Context
		outputDir string
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		outputDir, err = os.MkdirTemp("", "lifefork-run-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { _ = os.RemoveAll(outputDir) })
	})

	Describe("writing layer files", func() {
		It("writes one reloadable file per scenario layer", func() {
			const layers = 12
			files := snapshot.NewFileWriter(outputDir)
			result, err := sim.RunAll(ctx, settingsFor(outputDir, layers), files)
			Expect(err).NotTo(HaveOccurred())

			for _, sc := range result.Scenarios {
				for layer := range layers {
					path := filepath.Join(files.RunDir(result.RunID), snapshot.FileName(sc.Label, layer))
					doc, err := snapshot.Load(path)
					Expect(err).NotTo(HaveOccurred(), path)
					Expect(doc.Timestamp).To(Equal(layer))

					ids := map[int64]bool{}
					for _, rec := range doc.Worlds {
						Expect(ids).NotTo(HaveKey(rec.ID))
						ids[rec.ID] = true
						Expect(len(rec.TrajectoryEvents)).To(BeNumerically("<=", layer+2))
						Expect(rec.CurrentLoan).To(BeNumerically(">=", 0))
					}
				}

				final, err := snapshot.Load(filepath.Join(files.RunDir(result.RunID), snapshot.FileName(sc.Label, layers-1)))
				Expect(err).NotTo(HaveOccurred())
				Expect(final.Worlds).To(HaveLen(len(sc.Worlds)))
				for i, rec := range final.Worlds {
					Expect(rec.ID).To(Equal(sc.Worlds[i].ID))
					Expect(rec.TrajectoryEvents).To(Equal(sc.Worlds[i].TrajectoryEvents))
				}
			}
		})

		It("records the loan at the scenario's layer", func() {
			result, err := sim.RunAll(ctx, settingsFor(outputDir, 3), nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Scenarios).To(HaveLen(2))
			for _, w := range result.Scenarios[0].Worlds {
				Expect(w.TrajectoryEvents[0]).To(Equal(event.LoanTag(0)))
			}
			for _, w := range result.Scenarios[1].Worlds {
				Expect(w.TrajectoryEvents[1]).To(Equal(event.LoanTag(1)))
			}
		})
	})

	Describe("determinism", func() {
		It("reproduces every world for the same seed", func() {
			first, err := sim.RunAll(ctx, settingsFor(outputDir, 24), nil)
			Expect(err).NotTo(HaveOccurred())

			parallel := settingsFor(outputDir, 24)
			parallel.Parallel = true
			second, err := sim.RunAll(ctx, parallel, nil)
			Expect(err).NotTo(HaveOccurred())

			for i := range first.Scenarios {
				Expect(second.Scenarios[i].Worlds).To(Equal(first.Scenarios[i].Worlds))
			}
		})
	})

	Describe("explaining layer files", func() {
		It("describes every written layer", func() {
			files := snapshot.NewFileWriter(outputDir)
			result, err := sim.RunAll(ctx, settingsFor(outputDir, 6), files)
			Expect(err).NotTo(HaveOccurred())

			partners := narrative.NewPartners(rand.New(rand.NewPCG(1, 1)))
			entries, err := os.ReadDir(files.RunDir(result.RunID))
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(12))

			for _, e := range entries {
				path := filepath.Join(files.RunDir(result.RunID), e.Name())
				text, err := narrative.DescribeFile(path, partners)
				Expect(err).NotTo(HaveOccurred())
				Expect(text).To(HavePrefix(path + ":"))
			}
		})
	})
})
