// Package members classifies galaxies as cluster members from their
// redshifts. A galaxy is a spectroscopic member when its spectroscopic
// redshift sits within 2% (scaled by 1+z) of the cluster redshift, and a
// photometric member when its photometric redshift sits within the looser 8%
// band. Spectroscopic classification wins: a galaxy in both bands counts
// once, as a spectroscopic member.
//
// A galaxy whose zspec exists but fails the spectroscopic band may still
// qualify as a photometric member; only IDs already classified
// spectroscopically are excluded from the photometric set. (The survey's own
// reductions disagree on this point between iterations; this is the rule the
// final one uses.)
package members

import (
	"fmt"
	"math"

	"github.com/gogreen-survey/gogreen/src/table"
)

// Redshift proximity bands, |z - zcluster| < band * (1 + z).
const (
	SpecBand = 0.02
	PhotBand = 0.08
)

// Column names the classifier reads.
const (
	idColumn    = "cPHOTID"
	zspecColumn = "zspec"
	zphotColumn = "zphot"
)

// Classification carries the two disjoint member subsets of one cluster.
type Classification struct {
	// Spectroscopic members, in input row order.
	Spectroscopic *table.Table
	// Photometric members not already counted spectroscopically, in input
	// row order.
	Photometric *table.Table
}

// Members returns both subsets stacked, spectroscopic first.
func (c Classification) Members() (*table.Table, error) {
	return c.Spectroscopic.Concat(c.Photometric)
}

// Classify partitions the galaxies of one cluster into members and
// non-members. galaxies is assumed restricted to a single cluster; only the
// redshift columns and the canonical ID are consulted.
func Classify(galaxies *table.Table, clusterZ float64) (Classification, error) {
	ids, err := galaxies.Column(idColumn)
	if err != nil {
		return Classification{}, fmt.Errorf("classify members: %w", err)
	}
	zspec, err := galaxies.Column(zspecColumn)
	if err != nil {
		return Classification{}, fmt.Errorf("classify members: %w", err)
	}
	zphot, err := galaxies.Column(zphotColumn)
	if err != nil {
		return Classification{}, fmt.Errorf("classify members: %w", err)
	}

	specRows := make([]int, 0, galaxies.NumRows())
	specIDs := make(map[int64]struct{})
	for row := 0; row < galaxies.NumRows(); row++ {
		z, ok := zspec.Float(row)
		if !ok || !inBand(z, clusterZ, SpecBand) {
			continue
		}
		specRows = append(specRows, row)
		if id, ok := ids.Int(row); ok {
			specIDs[id] = struct{}{}
		}
	}

	photRows := make([]int, 0, galaxies.NumRows())
	for row := 0; row < galaxies.NumRows(); row++ {
		z, ok := zphot.Float(row)
		if !ok || !inBand(z, clusterZ, PhotBand) {
			continue
		}
		if id, ok := ids.Int(row); ok {
			if _, dup := specIDs[id]; dup {
				continue
			}
		}
		photRows = append(photRows, row)
	}

	spec, err := galaxies.TakeRows(specRows)
	if err != nil {
		return Classification{}, err
	}
	phot, err := galaxies.TakeRows(photRows)
	if err != nil {
		return Classification{}, err
	}
	return Classification{Spectroscopic: spec, Photometric: phot}, nil
}

func inBand(z, clusterZ, band float64) bool {
	return math.Abs(z-clusterZ) < band*(1+z)
}
