// Package query is the read surface over the catalog store: per-cluster
// lookups, membership classification, criterion-based searches and the
// series preparation consumed by the plotting side.
package query

import (
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gogreen-survey/gogreen/src"
	"github.com/gogreen-survey/gogreen/src/expr"
	"github.com/gogreen-survey/gogreen/src/members"
	"github.com/gogreen-survey/gogreen/src/metrics"
	"github.com/gogreen-survey/gogreen/src/remap"
	"github.com/gogreen-survey/gogreen/src/store"
	"github.com/gogreen-survey/gogreen/src/table"
)

// ErrClusterNotFound re-exports the store sentinel for callers that only
// import the query surface.
var ErrClusterNotFound = store.ErrClusterNotFound

// Engine answers queries against a frozen store. All methods are safe for
// concurrent use: the store never changes and the engine keeps no per-query
// state.
type Engine struct {
	store     *store.Store
	standards []expr.Criterion
	log       src.Logger
	metrics   *metrics.Registry
}

// New builds an engine. standards are the recurring criteria applied to
// every reduction that asks for them; the slice is not copied and must not
// change afterwards. m may be nil.
func New(s *store.Store, standards []expr.Criterion, log src.Logger, m *metrics.Registry) *Engine {
	return &Engine{
		store:     s,
		standards: standards,
		log:       log,
		metrics:   m,
	}
}

func (e *Engine) observe(op string, start time.Time) {
	if e.metrics != nil {
		e.metrics.ObserveQuery(op, time.Since(start))
	}
}

// ClusterRedshift returns the best-estimate redshift of the named cluster.
func (e *Engine) ClusterRedshift(name string) (float64, error) {
	defer e.observe("cluster_redshift", time.Now())
	return e.store.ClusterRedshift(name)
}

// ClusterGalaxies returns every merged-catalog row of the named cluster, in
// catalog order.
func (e *Engine) ClusterGalaxies(name string) (*table.Table, error) {
	defer e.observe("cluster_galaxies", time.Now())
	return clusterRows(e.store.Merged(), name)
}

func clusterRows(merged *table.Table, name string) (*table.Table, error) {
	col, err := merged.Column(remap.ClusterColumn)
	if err != nil {
		return nil, fmt.Errorf("merged catalog: %w", err)
	}
	return merged.FilterRows(func(row int) (bool, error) {
		s, ok := col.Str(row)
		return ok && s == name, nil
	})
}

// Members returns the member galaxies of the named cluster, spectroscopic
// members first.
func (e *Engine) Members(name string) (*table.Table, error) {
	defer e.observe("members", time.Now())

	c, err := e.classify(name)
	if err != nil {
		return nil, err
	}
	return c.Members()
}

func (e *Engine) classify(name string) (members.Classification, error) {
	z, err := e.store.ClusterRedshift(name)
	if err != nil {
		return members.Classification{}, err
	}
	galaxies, err := clusterRows(e.store.Merged(), name)
	if err != nil {
		return members.Classification{}, err
	}
	return members.Classify(galaxies, z)
}

// Reduce filters t through the ad hoc criteria in their given order and
// then, when useStandards is set, through the engine's standard criteria in
// their stored order. The reductions are conjunctive, so the result does not
// depend on the order; the order only fixes which criterion a schema error
// is reported for first. Every criterion is validated against the schema
// before any row is touched.
func (e *Engine) Reduce(t *table.Table, adHoc []expr.Criterion, useStandards bool) (*table.Table, error) {
	defer e.observe("reduce", time.Now())

	criteria := append([]expr.Criterion(nil), adHoc...)
	if useStandards {
		criteria = append(criteria, e.standards...)
	}
	for _, c := range criteria {
		if err := c.Validate(t); err != nil {
			return nil, fmt.Errorf("criterion %s: %w", c, err)
		}
	}
	var err error
	for _, c := range criteria {
		t, err = t.FilterRows(func(row int) (bool, error) {
			return c.Eval(t, row)
		})
		if err != nil {
			return nil, fmt.Errorf("criterion %s: %w", c, err)
		}
	}
	return t, nil
}

// Search restricts the merged catalog to the given clusters, applies the
// criteria (standards included) and projects onto the requested properties.
// Result rows come grouped by cluster in the requested cluster order,
// keeping catalog order within each cluster. Cluster restrictions are
// evaluated in parallel; the store is frozen, so that needs no locking.
func (e *Engine) Search(clusters, properties []string, criteria []expr.Criterion) (*table.Table, error) {
	defer e.observe("search", time.Now())

	merged := e.store.Merged()
	for _, p := range properties {
		if !merged.HasColumn(p) {
			return nil, fmt.Errorf("property %s: %w", p, table.ErrUnknownColumn)
		}
	}

	parts := make([]*table.Table, len(clusters))
	var g errgroup.Group
	for i, name := range clusters {
		i, name := i, name
		g.Go(func() error {
			rows, err := clusterRows(merged, name)
			if err != nil {
				return err
			}
			reduced, err := e.Reduce(rows, criteria, true)
			if err != nil {
				return err
			}
			parts[i] = reduced
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// seed the fold with the merged schema so column names resolve even
	// when no clusters were requested
	acc, err := merged.TakeRows(nil)
	if err != nil {
		return nil, err
	}
	for _, part := range parts {
		acc, err = acc.Concat(part)
		if err != nil {
			return nil, err
		}
	}
	return acc.Project(properties...)
}

// Clusters returns the structural cluster names, sorted.
func (e *Engine) Clusters() []string {
	names := e.store.StructuralClusters()
	sort.Strings(names)
	return names
}
