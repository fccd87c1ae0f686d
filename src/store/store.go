// Package store loads every survey catalog once and holds the merged result.
// A Store is built by Open and never mutated afterwards, so concurrent reads
// need no locking.
package store

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/gogreen-survey/gogreen/src"
	"github.com/gogreen-survey/gogreen/src/loader"
	"github.com/gogreen-survey/gogreen/src/remap"
	"github.com/gogreen-survey/gogreen/src/table"
)

// ErrClusterNotFound aliases the remapper's sentinel: the same condition —
// a name with no catalog rows — surfaces from both places.
var ErrClusterNotFound = remap.ErrClusterNotFound

// Kind enumerates the catalogs the store holds.
type Kind uint8

const (
	// KindClusters is the cluster property catalog (names, redshifts).
	KindClusters Kind = iota
	// KindPhoto is the photometric source catalog.
	KindPhoto
	// KindRedshift is the spectroscopic redshift catalog.
	KindRedshift
	// KindGalfit is the aggregated structural-fit catalog.
	KindGalfit
	// KindMatched is the aggregated, remapped structural-photometric
	// match catalog.
	KindMatched
	// KindMerged is the final photometric × structural join.
	KindMerged
)

func (k Kind) String() string {
	switch k {
	case KindClusters:
		return "clusters"
	case KindPhoto:
		return "photo"
	case KindRedshift:
		return "redshift"
	case KindGalfit:
		return "galfit"
	case KindMatched:
		return "matched"
	case KindMerged:
		return "merged"
	}
	panic("invalid catalog kind")
}

// DefaultStructuralClusters lists the clusters with structural-fit runs in
// the v1.1 structural release.
var DefaultStructuralClusters = []string{
	"SpARCS0219", "SpARCS0035", "SpARCS1634", "SpARCS1616", "SPT0546",
	"SpARCS1638", "SPT0205", "SPT2106", "SpARCS1051", "SpARCS0335",
	"SpARCS1034",
}

// Catalog locations inside the data release directory.
const (
	clustersPath = "DR1/CATS/Clusters.fits"
	photoPath    = "DR1/CATS/Photo.fits"
	redshiftPath = "DR1/CATS/Redshift_catalogue.fits"
	galfitDir    = "STRUCTURAL_PARA_v1.1_CATONLY/GALFIT_ORG_CATS"
	matchedDir   = "STRUCTURAL_PARA_v1.1_CATONLY/STRUCTCAT_MATCHED"

	clusterNameColumn = "cluster"
	redshiftColumn    = "Redshift"
)

// Config locates the data release.
type Config struct {
	// DataPath is the directory containing DR1/ and
	// STRUCTURAL_PARA_v1.1_CATONLY/.
	DataPath string
	// StructuralClusters overrides DefaultStructuralClusters when non-nil.
	StructuralClusters []string
}

func (c Config) structuralClusters() []string {
	if c.StructuralClusters != nil {
		return c.StructuralClusters
	}
	return DefaultStructuralClusters
}

// Store holds every loaded catalog and the merged result. Read-only after
// Open.
type Store struct {
	clusters *table.Table
	photo    *table.Table
	redshift *table.Table
	galfit   *table.Table
	matched  *table.Table
	merged   *table.Table

	structuralClusters []string
}

// Open loads every catalog of the release. Loading is all-or-nothing: any
// failure aborts and no store is returned.
func Open(fs afero.Fs, cfg Config, log src.Logger) (*Store, error) {
	s := &Store{structuralClusters: cfg.structuralClusters()}

	clusters, err := loader.Load(fs, path.Join(cfg.DataPath, clustersPath))
	if err != nil {
		return nil, fmt.Errorf("load clusters catalog: %w", err)
	}
	// some cluster names carry padding whitespace in the release
	s.clusters, err = clusters.MapStrings(clusterNameColumn, strings.TrimSpace)
	if err != nil {
		return nil, fmt.Errorf("normalize cluster names: %w", err)
	}
	log.Infof("loaded clusters catalog: %d clusters", s.clusters.NumRows())

	s.photo, err = loader.Load(fs, path.Join(cfg.DataPath, photoPath))
	if err != nil {
		return nil, fmt.Errorf("load photometric catalog: %w", err)
	}
	log.Infof("loaded photometric catalog: %d sources", s.photo.NumRows())

	s.redshift, err = loader.Load(fs, path.Join(cfg.DataPath, redshiftPath))
	if err != nil {
		return nil, fmt.Errorf("load redshift catalog: %w", err)
	}
	log.Infof("loaded redshift catalog: %d sources", s.redshift.NumRows())

	// fold the per-cluster structural catalogs into two aggregate tables;
	// each matched catalog is rebased into the canonical ID space first
	galfitAcc := table.Empty()
	matchedAcc := table.Empty()
	for _, name := range s.structuralClusters {
		galfitCluster, err := loader.Load(fs, path.Join(
			cfg.DataPath, galfitDir, galfitFilename(name),
		))
		if err != nil {
			return nil, fmt.Errorf("load galfit catalog for %s: %w", name, err)
		}
		galfitAcc, err = galfitAcc.Concat(galfitCluster)
		if err != nil {
			return nil, fmt.Errorf("aggregate galfit catalog for %s: %w", name, err)
		}

		matchedCluster, err := loader.Load(fs, path.Join(
			cfg.DataPath, matchedDir, matchedFilename(name),
		))
		if err != nil {
			return nil, fmt.Errorf("load matched catalog for %s: %w", name, err)
		}
		remapped, err := remap.Remap(matchedCluster, name, s.photo)
		if err != nil {
			return nil, fmt.Errorf("remap matched catalog for %s: %w", name, err)
		}
		matchedAcc, err = matchedAcc.Concat(remapped)
		if err != nil {
			return nil, fmt.Errorf("aggregate matched catalog for %s: %w", name, err)
		}
		log.Debugf("aggregated structural catalogs for %s: %d galfit rows, %d matched rows",
			name, galfitCluster.NumRows(), matchedCluster.NumRows())
	}
	s.galfit = galfitAcc
	s.matched = matchedAcc

	s.merged, err = table.Join(s.photo, s.matched, remap.CanonicalIDColumn)
	if err != nil {
		return nil, fmt.Errorf("merge photometric and structural catalogs: %w", err)
	}
	log.Infof("merged catalog ready: %d rows, %d columns",
		s.merged.NumRows(), s.merged.NumCols())

	return s, nil
}

// galfitFilename resolves a cluster's structural-fit catalog filename.
// SpARCS clusters appear under their survey-internal spj token.
func galfitFilename(cluster string) string {
	return "gal_" + structuralToken(cluster) + "_orgcat.fits"
}

func matchedFilename(cluster string) string {
	return "structcat_photmatch_" + structuralToken(cluster) + ".dat"
}

func structuralToken(cluster string) string {
	if strings.HasPrefix(cluster, "SpARCS") {
		return "spj" + cluster[len(cluster)-4:]
	}
	return strings.ToLower(cluster)
}

// Table returns the catalog of the given kind.
func (s *Store) Table(kind Kind) *table.Table {
	switch kind {
	case KindClusters:
		return s.clusters
	case KindPhoto:
		return s.photo
	case KindRedshift:
		return s.redshift
	case KindGalfit:
		return s.galfit
	case KindMatched:
		return s.matched
	case KindMerged:
		return s.merged
	}
	panic("invalid catalog kind")
}

// Merged returns the photometric × structural join, the table every query
// runs against.
func (s *Store) Merged() *table.Table {
	return s.merged
}

// StructuralClusters returns the cluster names the store aggregated.
func (s *Store) StructuralClusters() []string {
	return append([]string(nil), s.structuralClusters...)
}

// ClusterRedshift returns the best-estimate redshift of the named cluster.
func (s *Store) ClusterRedshift(name string) (float64, error) {
	names, err := s.clusters.Column(clusterNameColumn)
	if err != nil {
		return 0, fmt.Errorf("clusters catalog: %w", err)
	}
	zs, err := s.clusters.Column(redshiftColumn)
	if err != nil {
		return 0, fmt.Errorf("clusters catalog: %w", err)
	}
	for row := 0; row < s.clusters.NumRows(); row++ {
		if n, ok := names.Str(row); ok && n == name {
			z, ok := zs.Float(row)
			if !ok {
				return 0, fmt.Errorf("cluster %s has no redshift estimate", name)
			}
			return z, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrClusterNotFound, name)
}
