package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/bent101/wordle-mcts/guess"
	"github.com/bent101/wordle-mcts/tree"
)

// RootStat summarizes one candidate guess at the search root.
type RootStat struct {
	Word            string  `parquet:"word,dict"`
	CumulativeScore float64 `parquet:"cumulative_score"`
	NumSimulations  int64   `parquet:"num_simulations"`
	Mean            float64 `parquet:"mean"`
	Remaining       int32   `parquet:"remaining"`
}

// RootStats lists the root children of space in dictionary order.
func RootStats(space tree.StateSpace, root guess.Guess, dict []string) []RootStat {
	var rows []RootStat
	for _, w := range root.Solutions(dict) {
		n, ok := space.Get(root, w)
		if !ok {
			continue
		}
		rows = append(rows, RootStat{
			Word:            w,
			CumulativeScore: n.CumulativeScore,
			NumSimulations:  int64(n.NumSimulations),
			Mean:            n.Mean(),
			Remaining:       int32(n.Guess.NumSolutions()),
		})
	}
	return rows
}

// ExportRoot writes rows to a zstd compressed parquet file, through a temp
// file renamed into place.
func ExportRoot(outPath string, rows []RootStat) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "root_stats_v1"),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}
