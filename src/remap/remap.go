// Package remap rebases per-cluster structural catalog identifiers into the
// canonical photometric ID space.
//
// Structural-fit runs number their sources locally, starting from 1 within
// each cluster. The photometric catalog instead uses canonical IDs of the
// form prefix*10^6 + localID, where the 3-digit prefix identifies the
// cluster. The prefix is not published anywhere on its own: it is recovered
// from any one photometric row of the same cluster by truncating its
// canonical ID to the leading three decimal digits.
package remap

import (
	"errors"
	"fmt"

	"github.com/gogreen-survey/gogreen/src/table"
)

// ErrClusterNotFound is returned when the photometric catalog holds no row
// for the requested cluster, leaving no sentinel ID to derive a prefix from.
var ErrClusterNotFound = errors.New("cluster not found")

// ErrMalformedID is returned when a sentinel canonical ID has fewer than
// three decimal digits; the prefix would be meaningless.
var ErrMalformedID = errors.New("canonical ID has fewer than 3 digits")

const (
	// LocalIDColumn names the local identifier column of structural
	// match catalogs.
	LocalIDColumn = "PHOTCATID"
	// CanonicalIDColumn names the canonical identifier column of the
	// photometric and redshift catalogs.
	CanonicalIDColumn = "cPHOTID"
	// ClusterColumn names the cluster column of the photometric catalog.
	ClusterColumn = "Cluster"

	prefixScale = 1_000_000
)

// Remap returns a copy of structural whose local ID column has been renamed
// to the canonical name and rebased by the cluster's ID prefix, making the
// result join-compatible with the photometric catalog. photo must already be
// loaded; the first of its rows belonging to clusterName supplies the
// sentinel ID.
func Remap(structural *table.Table, clusterName string, photo *table.Table) (*table.Table, error) {
	prefix, err := Prefix(clusterName, photo)
	if err != nil {
		return nil, err
	}

	renamed, err := structural.Rename(LocalIDColumn, CanonicalIDColumn)
	if err != nil {
		return nil, fmt.Errorf("remap %s: %w", clusterName, err)
	}
	rebased, err := renamed.MapInts(CanonicalIDColumn, func(id int64) int64 {
		return id + prefix
	})
	if err != nil {
		return nil, fmt.Errorf("remap %s: %w", clusterName, err)
	}
	return rebased, nil
}

// Prefix derives the cluster's canonical ID prefix (already scaled by 10^6)
// from the photometric catalog.
func Prefix(clusterName string, photo *table.Table) (int64, error) {
	clusters, err := photo.Column(ClusterColumn)
	if err != nil {
		return 0, fmt.Errorf("photometric catalog: %w", err)
	}
	ids, err := photo.Column(CanonicalIDColumn)
	if err != nil {
		return 0, fmt.Errorf("photometric catalog: %w", err)
	}

	for row := 0; row < photo.NumRows(); row++ {
		name, ok := clusters.Str(row)
		if !ok || name != clusterName {
			continue
		}
		sentinel, ok := ids.Int(row)
		if !ok {
			continue
		}
		return prefixOf(sentinel, clusterName)
	}
	return 0, fmt.Errorf("%w: %s has no photometric rows", ErrClusterNotFound, clusterName)
}

// prefixOf truncates the sentinel to its leading three decimal digits and
// scales. 100000042 → 100 → 100000000.
func prefixOf(sentinel int64, clusterName string) (int64, error) {
	if sentinel < 100 {
		return 0, fmt.Errorf("%w: %d (cluster %s)", ErrMalformedID, sentinel, clusterName)
	}
	lead := sentinel
	for lead >= 1000 {
		lead /= 10
	}
	return lead * prefixScale, nil
}
