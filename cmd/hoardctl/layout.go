package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/hoardkit/hoard/superblock"
)

var layoutBlockSizes []uint

func init() {
	cmd := newLayoutCmd()
	cmd.Flags().UintSliceVarP(&layoutBlockSizes, "block-size", "b",
		[]uint{16, 32, 64, 128, 256, 512, 1024, 4096, 16384},
		"Block sizes to report (repeatable or comma-separated)")
	rootCmd.AddCommand(cmd)
}

func newLayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Show superblock geometry per block size",
		Long: `The layout command prints the superblock and header sizes and, for each
block size, how many blocks one superblock holds and how many bytes are left
over at the end.

Example:
  hoardctl layout
  hoardctl layout -b 48 -b 96 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(layoutBlockSizes)
		},
	}
}

// LayoutRow describes one block size.
type LayoutRow struct {
	BlockSize  uint `json:"block_size"`
	Blocks     int  `json:"blocks"`
	SlackBytes uint `json:"slack_bytes"`
}

// Layout is the layout command's report.
type Layout struct {
	SuperblockSize uint        `json:"superblock_size"`
	HeaderSize     uint        `json:"header_size"`
	MinBlockSize   uint        `json:"min_block_size"`
	MaxBlockSize   uint        `json:"max_block_size"`
	Rows           []LayoutRow `json:"rows"`
}

func buildLayout(sizes []uint) (Layout, error) {
	l := Layout{
		SuperblockSize: superblock.SuperblockSize,
		HeaderSize:     uint(superblock.HeaderSize),
		MinBlockSize:   superblock.MinBlockSize,
		MaxBlockSize:   uint(superblock.MaxBlockSize),
	}
	for _, bs := range sizes {
		if err := checkBlockSize(bs); err != nil {
			return Layout{}, err
		}
		n := superblock.BlocksFor(uintptr(bs))
		l.Rows = append(l.Rows, LayoutRow{
			BlockSize:  bs,
			Blocks:     n,
			SlackBytes: l.MaxBlockSize - uint(n)*bs,
		})
	}
	return l, nil
}

// checkBlockSize rejects sizes Header.Init would treat as fatal.
func checkBlockSize(bs uint) error {
	switch {
	case bs < superblock.MinBlockSize:
		return fmt.Errorf("block size %d below minimum %d", bs, superblock.MinBlockSize)
	case bs > uint(superblock.MaxBlockSize):
		return fmt.Errorf("block size %d above maximum %d", bs, superblock.MaxBlockSize)
	case bs%superblock.BlockAlign != 0:
		return fmt.Errorf("block size %d is not a multiple of %d", bs, superblock.BlockAlign)
	}
	return nil
}

func runLayout(sizes []uint) error {
	l, err := buildLayout(sizes)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(l)
	}

	printInfo("Superblock size: %d bytes\n", l.SuperblockSize)
	printInfo("Header size:     %d bytes\n", l.HeaderSize)
	printInfo("Block sizes:     %d..%d bytes (multiple of %d)\n\n",
		l.MinBlockSize, l.MaxBlockSize, superblock.BlockAlign)
	printInfo("%10s %8s %8s\n", "BLOCK", "BLOCKS", "SLACK")
	for _, r := range l.Rows {
		printInfo("%10d %8d %8d\n", r.BlockSize, r.Blocks, r.SlackBytes)
	}
	return nil
}
