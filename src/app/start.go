package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/gogreen-survey/gogreen/src"
	"github.com/gogreen-survey/gogreen/src/delivery"
	"github.com/gogreen-survey/gogreen/src/expr"
	"github.com/gogreen-survey/gogreen/src/handlers"
	"github.com/gogreen-survey/gogreen/src/metrics"
	"github.com/gogreen-survey/gogreen/src/pkg/utils"
	"github.com/gogreen-survey/gogreen/src/query"
	"github.com/gogreen-survey/gogreen/src/store"
)

const CloseTimeout = 15 * time.Second

// APIEntrypoint wires the catalog service together: store, query engine,
// metrics, HTTP server.
type APIEntrypoint struct {
	Env envVars

	s   *delivery.Server
	log src.Logger
}

func (e *APIEntrypoint) Init(_ context.Context) error {
	e.Env = mustLoadEnv()

	var log src.Logger
	if e.Env.Environment == EnvDev {
		log = utils.Must(zap.NewDevelopment()).Sugar()
	} else {
		log = utils.Must(zap.NewProduction()).Sugar()
	}
	e.log = log

	engine, m, err := BuildEngine(
		afero.NewOsFs(), e.Env.DataPath, e.Env.StandardCriteria, log,
	)
	if err != nil {
		return err
	}

	h := handlers.New(engine, m, log)
	e.s = delivery.NewServer(e.Env.ServerHost, e.Env.ServerPort, h.Router(), log)

	return nil
}

func (e *APIEntrypoint) Run(_ context.Context) error {
	return e.s.Run()
}

func (e *APIEntrypoint) Close() (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), CloseTimeout)
	defer cancel()

	if e.s != nil {
		err = e.s.Close(ctx)
	}

	if e.log != nil {
		if err != nil {
			e.log.Errorf("failed to close server: %v", err)
		}

		logErr := e.log.Sync()
		if logErr != nil && err != nil {
			err = fmt.Errorf("%w, %w", err, logErr)
		} else if logErr != nil {
			err = logErr
		}
	}

	return
}

// BuildEngine opens the catalog store and assembles the query engine. Shared
// between the HTTP entrypoint and the one-shot CLI commands.
func BuildEngine(
	fs afero.Fs,
	dataPath string,
	standardCriteria string,
	log src.Logger,
) (*query.Engine, *metrics.Registry, error) {
	standards, err := ParseStandards(standardCriteria)
	if err != nil {
		return nil, nil, fmt.Errorf("parse standard criteria: %w", err)
	}

	s, err := store.Open(fs, store.Config{DataPath: dataPath}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog store: %w", err)
	}

	m := metrics.New()
	return query.New(s, standards, log, m), m, nil
}

// ParseStandards parses a semicolon-separated list of criteria.
func ParseStandards(raw string) ([]expr.Criterion, error) {
	var out []expr.Criterion
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c, err := expr.Parse(part)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
