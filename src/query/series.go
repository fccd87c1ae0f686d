package query

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/panjf2000/ants"

	"github.com/gogreen-survey/gogreen/src/expr"
	"github.com/gogreen-survey/gogreen/src/table"
)

// ColorScheme selects how plotted galaxies are split into series.
type ColorScheme uint8

const (
	// ColorNone yields a single series.
	ColorNone ColorScheme = iota
	// ColorMembership splits by redshift provenance: sources with a
	// spectroscopic redshift vs. the rest.
	ColorMembership
	// ColorPassive splits quiescent from star-forming galaxies by the
	// van der Burg 2020 rest-frame color cut.
	ColorPassive
)

func (c ColorScheme) String() string {
	switch c {
	case ColorNone:
		return "none"
	case ColorMembership:
		return "membership"
	case ColorPassive:
		return "passive"
	}
	panic("invalid color scheme")
}

// ParseColorScheme maps the wire names onto the closed enum.
func ParseColorScheme(s string) (ColorScheme, error) {
	switch s {
	case "", "none":
		return ColorNone, nil
	case "membership":
		return ColorMembership, nil
	case "passive":
		return ColorPassive, nil
	}
	return ColorNone, fmt.Errorf("invalid color scheme %q", s)
}

// PassiveCut is the van der Burg 2020 quiescence criterion on rest-frame
// colors.
var PassiveCut = expr.MustParse("(UMINV > 1.3) and (VMINJ < 1.6) and (UMINV > 0.60+VMINJ)")

// AxisSpec names the plotted columns and their transforms. When a range is
// set, points outside it are dropped from the series.
type AxisSpec struct {
	X, Y       string
	LogX, LogY bool
	XMin, XMax *float64
	YMin, YMax *float64
}

// SeriesRequest describes one series extraction.
type SeriesRequest struct {
	Scheme       ColorScheme
	Axes         AxisSpec
	OnlyMembers  bool
	Criteria     []expr.Criterion
	UseStandards bool
}

// Series is one plottable point set.
type Series struct {
	Label string    `json:"label"`
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
}

// ClusterSeries prepares the plot series of one cluster.
func (e *Engine) ClusterSeries(name string, req SeriesRequest) ([]Series, error) {
	defer e.observe("series", time.Now())
	return e.clusterSeries(name, req)
}

func (e *Engine) clusterSeries(name string, req SeriesRequest) ([]Series, error) {
	var data *table.Table
	var err error
	if req.OnlyMembers {
		data, err = e.Members(name)
	} else {
		data, err = e.ClusterGalaxies(name)
	}
	if err != nil {
		return nil, err
	}
	data, err = e.Reduce(data, req.Criteria, req.UseStandards)
	if err != nil {
		return nil, err
	}
	return splitSeries(data, req.Scheme, req.Axes)
}

// AllClusterSeries prepares series for every structural cluster, keyed by
// cluster name. Clusters are processed on a worker pool; the store is frozen
// so the workers share it without locking.
func (e *Engine) AllClusterSeries(req SeriesRequest) (map[string][]Series, error) {
	defer e.observe("series", time.Now())

	names := e.store.StructuralClusters()
	pool, err := ants.NewPool(len(names))
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	out := make(map[string][]Series, len(names))
	errs := make([]error, len(names))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			series, err := e.clusterSeries(name, req)
			if err != nil {
				errs[i] = fmt.Errorf("cluster %s: %w", name, err)
				return
			}
			mu.Lock()
			out[name] = series
			mu.Unlock()
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			return nil, err
		}
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// PooledSeries prepares series with every structural cluster pooled into one
// point set per label, for single-panel plots of the whole sample.
func (e *Engine) PooledSeries(req SeriesRequest) ([]Series, error) {
	perCluster, err := e.AllClusterSeries(req)
	if err != nil {
		return nil, err
	}

	byLabel := map[string]*Series{}
	var order []string
	for _, name := range e.store.StructuralClusters() {
		for _, s := range perCluster[name] {
			agg, ok := byLabel[s.Label]
			if !ok {
				agg = &Series{Label: s.Label}
				byLabel[s.Label] = agg
				order = append(order, s.Label)
			}
			agg.X = append(agg.X, s.X...)
			agg.Y = append(agg.Y, s.Y...)
		}
	}

	out := make([]Series, 0, len(order))
	for _, label := range order {
		out = append(out, *byLabel[label])
	}
	return out, nil
}

// splitSeries carves data into labeled series per the coloring scheme and
// extracts the axis columns.
func splitSeries(data *table.Table, scheme ColorScheme, axes AxisSpec) ([]Series, error) {
	switch scheme {
	case ColorNone:
		s, err := extractSeries(data, "", axes)
		if err != nil {
			return nil, err
		}
		return []Series{s}, nil

	case ColorMembership:
		zspec, err := data.Column("zspec")
		if err != nil {
			return nil, fmt.Errorf("membership coloring: %w", err)
		}
		withSpec, err := data.FilterRows(func(row int) (bool, error) {
			return !zspec.IsNull(row), nil
		})
		if err != nil {
			return nil, err
		}
		withoutSpec, err := data.FilterRows(func(row int) (bool, error) {
			return zspec.IsNull(row), nil
		})
		if err != nil {
			return nil, err
		}
		return labeledPair(withSpec, withoutSpec,
			"Spectroscopic z", "Photometric z", axes)

	case ColorPassive:
		if err := PassiveCut.Validate(data); err != nil {
			return nil, fmt.Errorf("passive coloring: %w", err)
		}
		passive, err := data.FilterRows(func(row int) (bool, error) {
			return PassiveCut.Eval(data, row)
		})
		if err != nil {
			return nil, err
		}
		forming, err := data.FilterRows(func(row int) (bool, error) {
			ok, err := PassiveCut.Eval(data, row)
			return !ok, err
		})
		if err != nil {
			return nil, err
		}
		return labeledPair(passive, forming, "Quiescent", "Star Forming", axes)
	}
	panic("invalid color scheme")
}

func labeledPair(a, b *table.Table, labelA, labelB string, axes AxisSpec) ([]Series, error) {
	sa, err := extractSeries(a, labelA, axes)
	if err != nil {
		return nil, err
	}
	sb, err := extractSeries(b, labelB, axes)
	if err != nil {
		return nil, err
	}
	return []Series{sa, sb}, nil
}

// extractSeries pulls the axis columns out of data, applying log transforms
// and range clipping. Rows missing either coordinate are dropped.
func extractSeries(data *table.Table, label string, axes AxisSpec) (Series, error) {
	xc, err := data.Column(axes.X)
	if err != nil {
		return Series{}, err
	}
	yc, err := data.Column(axes.Y)
	if err != nil {
		return Series{}, err
	}

	s := Series{Label: label, X: []float64{}, Y: []float64{}}
	for row := 0; row < data.NumRows(); row++ {
		x, ok := xc.Float(row)
		if !ok {
			continue
		}
		y, ok := yc.Float(row)
		if !ok {
			continue
		}
		if axes.LogX {
			x = math.Log10(x)
		}
		if axes.LogY {
			y = math.Log10(y)
		}
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		if !inRange(x, axes.XMin, axes.XMax) || !inRange(y, axes.YMin, axes.YMax) {
			continue
		}
		s.X = append(s.X, x)
		s.Y = append(s.Y, y)
	}
	return s, nil
}

func inRange(v float64, lo, hi *float64) bool {
	if lo != nil && v < *lo {
		return false
	}
	if hi != nil && v > *hi {
		return false
	}
	return true
}
