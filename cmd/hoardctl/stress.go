package main

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/spf13/cobra"

	"github.com/joshuapare/hoardkit/hoard/recycle"
	"github.com/joshuapare/hoardkit/hoard/superblock"
)

var (
	stressWorkers    int
	stressRounds     int
	stressBlockSizes []uint
	stressMode       string
	stressBatch      int
	stressMaxFree    int
	stressChecked    bool
	stressSeed       int64
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVarP(&stressWorkers, "workers", "w", 4, "Concurrent heaps")
	cmd.Flags().IntVarP(&stressRounds, "rounds", "r", 100, "Superblocks each heap takes, fills, drains and returns")
	cmd.Flags().UintSliceVarP(&stressBlockSizes, "block-size", "b", []uint{32, 64, 256, 1024},
		"Block sizes cycled through by each heap")
	cmd.Flags().StringVar(&stressMode, "mode", "pooled", "Recycling strategy: pooled or direct")
	cmd.Flags().IntVar(&stressBatch, "batch", recycle.DefaultBatchCount, "Superblocks mapped per refill (pooled)")
	cmd.Flags().IntVar(&stressMaxFree, "max-free", recycle.DefaultMaxFree, "Idle superblocks retained (pooled)")
	cmd.Flags().BoolVar(&stressChecked, "checked", false, "Track live blocks to catch double frees")
	cmd.Flags().Int64Var(&stressSeed, "seed", 1, "Seed for the free-order shuffle")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stress",
		Short: "Drive the superblock manager from concurrent heaps",
		Long: `The stress command starts one goroutine per heap. Each heap repeatedly takes
a superblock from a shared manager, initializes it for the next block size,
allocates every block, frees them in random order and hands the superblock
back. The manager's counters are printed at the end.

Example:
  hoardctl stress
  hoardctl stress --workers 16 --rounds 1000 --max-free 8
  hoardctl stress --mode direct --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := recycle.ParseMode(stressMode)
			if err != nil {
				return err
			}
			cfg := stressConfig{
				Workers:    stressWorkers,
				Rounds:     stressRounds,
				BlockSizes: stressBlockSizes,
				Mode:       mode,
				Batch:      stressBatch,
				MaxFree:    stressMaxFree,
				Checked:    stressChecked,
				Seed:       stressSeed,
			}
			return runStress(cfg)
		},
	}
}

type stressConfig struct {
	Workers    int
	Rounds     int
	BlockSizes []uint
	Mode       recycle.Mode
	Batch      int
	MaxFree    int
	Checked    bool
	Seed       int64
}

func (c stressConfig) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Rounds < 0 {
		return fmt.Errorf("rounds must not be negative, got %d", c.Rounds)
	}
	if len(c.BlockSizes) == 0 {
		return fmt.Errorf("at least one block size is required")
	}
	for _, bs := range c.BlockSizes {
		if err := checkBlockSize(bs); err != nil {
			return err
		}
	}
	return nil
}

// StressResult is the stress command's report.
type StressResult struct {
	Mode     string        `json:"mode"`
	Workers  int           `json:"workers"`
	Rounds   int           `json:"rounds"`
	Checked  bool          `json:"checked"`
	Allocs   int64         `json:"allocs"`
	Frees    int64         `json:"frees"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	Live     int           `json:"live"`
	Cached   int           `json:"cached"`
	Maps     int           `json:"maps"`
	Unmapped int           `json:"unmapped"`
}

// stress runs the workload and returns the manager's counters taken just
// before the manager is closed.
func stress(cfg stressConfig) StressResult {
	m := recycle.New(recycle.Options{
		Mode:       cfg.Mode,
		BatchCount: cfg.Batch,
		MaxFree:    cfg.MaxFree,
	})
	defer m.Close()

	var allocs, frees atomic.Int64
	start := time.Now()

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(owner superblock.OwnerID, r *rand.Rand) {
			defer wg.Done()
			var blocks []unsafe.Pointer
			for round := 0; round < cfg.Rounds; round++ {
				s := m.GetSuperblock()
				h := s.Header()
				h.SetOwner(owner)
				bs := uintptr(cfg.BlockSizes[round%len(cfg.BlockSizes)])
				if cfg.Checked {
					h.InitChecked(bs)
				} else {
					h.Init(bs)
				}

				blocks = blocks[:0]
				for i := 0; i < h.Size(); i++ {
					blocks = append(blocks, h.Alloc())
				}
				r.Shuffle(len(blocks), func(i, j int) { blocks[i], blocks[j] = blocks[j], blocks[i] })
				for _, p := range blocks {
					h.Free(p)
				}
				allocs.Add(int64(len(blocks)))
				frees.Add(int64(len(blocks)))
				m.AddSuperblock(s)
			}
		}(superblock.OwnerID(w+1), rand.New(rand.NewSource(cfg.Seed+int64(w))))
	}
	wg.Wait()

	st := m.Stats()
	return StressResult{
		Mode:     cfg.Mode.String(),
		Workers:  cfg.Workers,
		Rounds:   cfg.Rounds,
		Checked:  cfg.Checked,
		Allocs:   allocs.Load(),
		Frees:    frees.Load(),
		Elapsed:  time.Since(start),
		Live:     st.Live,
		Cached:   st.Cached,
		Maps:     st.Maps,
		Unmapped: st.Unmapped,
	}
}

func runStress(cfg stressConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	printVerbose("Starting %d heaps x %d rounds (%s)\n", cfg.Workers, cfg.Rounds, cfg.Mode)

	res := stress(cfg)
	if jsonOut {
		return printJSON(res)
	}

	printInfo("Mode:       %s\n", res.Mode)
	printInfo("Heaps:      %d x %d rounds\n", res.Workers, res.Rounds)
	printInfo("Blocks:     %d allocated, %d freed\n", res.Allocs, res.Frees)
	printInfo("Elapsed:    %s\n", res.Elapsed)
	printInfo("Mappings:   %d\n", res.Maps)
	printInfo("Released:   %d superblocks\n", res.Unmapped)
	printInfo("Live:       %d superblocks (%d cached)\n", res.Live, res.Cached)
	return nil
}
