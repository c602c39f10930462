package ui

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ppimalaysia/regform/pkg/config"
	"github.com/ppimalaysia/regform/pkg/datasource"
	"github.com/ppimalaysia/regform/pkg/loader"
	"github.com/ppimalaysia/regform/pkg/model"
)

// Dataset names, used in logs and load notifications
const (
	DatasetUniversities = "universities"
	DatasetPostcodes    = "postcode"
	DatasetRegionCodes  = "regioncode"
)

// Sources holds one shared DataSource per dataset. Every control that needs
// a dataset gets the same Source, so each dataset is fetched at most once.
type Sources struct {
	Universities *datasource.Source[model.University]
	Postcodes    *datasource.Source[model.Postcode]
	RegionCodes  *datasource.Source[model.RegionCode]
}

// NewSources builds the sources described by cfg
func NewSources(cfg config.DatasetConfig) Sources {
	return Sources{
		Universities: datasource.New[model.University](DatasetUniversities, loader.NewFetcher(cfg.Universities, cfg.NoCache)),
		Postcodes:    datasource.New[model.Postcode](DatasetPostcodes, loader.NewFetcher(cfg.Postcodes, cfg.NoCache)),
		RegionCodes:  datasource.New[model.RegionCode](DatasetRegionCodes, loader.NewFetcher(cfg.RegionCodes, cfg.NoCache)),
	}
}

// withFallbacks replaces missing sources with empty ones
func (s Sources) withFallbacks() Sources {
	if s.Universities == nil {
		s.Universities = datasource.Static[model.University](DatasetUniversities, nil)
	}
	if s.Postcodes == nil {
		s.Postcodes = datasource.Static[model.Postcode](DatasetPostcodes, nil)
	}
	if s.RegionCodes == nil {
		s.RegionCodes = datasource.Static[model.RegionCode](DatasetRegionCodes, nil)
	}
	return s
}

// DatasetCounts is the number of records loaded per dataset
type DatasetCounts struct {
	Universities int
	Postcodes    int
	RegionCodes  int
}

// WarmAll loads every dataset concurrently. Sources absorb fetch failures,
// so the only error is ctx ending first.
func WarmAll(ctx context.Context, s Sources) (DatasetCounts, error) {
	var counts DatasetCounts
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts.Universities = len(s.Universities.All(gctx))
		return gctx.Err()
	})
	g.Go(func() error {
		counts.Postcodes = len(s.Postcodes.All(gctx))
		return gctx.Err()
	})
	g.Go(func() error {
		counts.RegionCodes = len(s.RegionCodes.All(gctx))
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		return counts, fmt.Errorf("warm datasets: %w", err)
	}
	return counts, nil
}
