package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/faldi95/supplynet/internal/cloudwriter"
	"github.com/faldi95/supplynet/internal/factories"
	"github.com/faldi95/supplynet/internal/geocoding"
	"github.com/faldi95/supplynet/internal/models"
	"github.com/faldi95/supplynet/internal/network"
	"github.com/faldi95/supplynet/internal/render"
	"github.com/faldi95/supplynet/internal/repositories"
	"github.com/faldi95/supplynet/internal/repositories/postgres"
	"github.com/lucsky/cuid"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

type Simulator struct {
	Config *models.Config
	Logger *zap.SugaredLogger
	RunID  string

	Geocoder           geocoding.Geocoder
	Output             OutputDestination
	Repository         repositories.NetworkRepository
	CloudWriterFactory cloudwriter.CloudWriterFactory

	Customers []models.Customer
	Network   *network.Graph

	now func() time.Time
}

func NewSimulator(config *models.Config, logger *zap.SugaredLogger) *Simulator {
	return &Simulator{
		Config:   config,
		Logger:   logger,
		RunID:    cuid.New(),
		Geocoder: geocoding.NewNominatimGeocoder(config.Geocoding),
		now:      time.Now,
	}
}

// Run resolves the fixed locations, generates customers, assembles the network and
// writes the map. Exports run last and only when configured.
func (s *Simulator) Run(ctx context.Context) error {
	cfg := s.Config
	startTime := s.now()
	resolver := geocoding.NewResolver(s.Geocoder, cfg.Country, cfg.Geocoding, s.Logger)

	s.Logger.Infof("Starting run %s with %d customers", s.RunID, cfg.CustomerCount)
	fixed := s.resolveFixedLocations(ctx, resolver)
	if missing := fixed.Missing(); len(missing) > 0 {
		for _, m := range missing {
			s.Logger.Errorf("Critical location could not be geocoded: %s", m)
		}
		return fmt.Errorf("%w: %s", network.ErrMissingFixedLocation, strings.Join(missing, ", "))
	}

	factory := factories.NewCustomerFactory(s.seed(), cfg.Cities, resolver, s.Logger)
	if cfg.ShowProgress {
		factory.Progress = progressbar.Default(int64(cfg.CustomerCount), "geocoding customers")
	}
	s.Customers = factory.CreateCustomers(ctx, cfg.CustomerCount)
	if factory.Progress != nil {
		_ = factory.Progress.Finish()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Logger.Infof("Generated %d of %d customers", len(s.Customers), cfg.CustomerCount)

	g, err := network.Assemble(fixed, s.Customers)
	if err != nil {
		return err
	}
	s.Network = g
	s.Logger.Infof("Network built with %d nodes and %d edges", g.NumberOfNodes(), g.NumberOfEdges())

	renderer := render.NewMapRenderer(cfg.Map, s.Logger)
	if err := renderer.RenderFile(cfg.MapOutputFile, g); err != nil {
		return fmt.Errorf("failed to write map: %w", err)
	}
	s.Logger.Infof("Map saved to %s", cfg.MapOutputFile)

	if cfg.CloudStorage.UploadMap {
		if err := s.uploadMap(ctx); err != nil {
			return err
		}
	}

	if err := s.export(ctx, startTime); err != nil {
		return err
	}

	s.Logger.Infof("Run %s completed in %s", s.RunID, s.now().Sub(startTime).Round(time.Millisecond))
	return nil
}

func (s *Simulator) resolveFixedLocations(ctx context.Context, resolver *geocoding.Resolver) network.FixedLocations {
	cfg := s.Config
	return network.FixedLocations{
		Retailer:       resolver.Resolve(ctx, cfg.RetailerLocation),
		Wholesaler:     resolver.Resolve(ctx, cfg.WholesalerLocation),
		WineryMosel:    resolver.Resolve(ctx, cfg.WineryMoselLocation),
		WineryRheingau: resolver.Resolve(ctx, cfg.WineryRheingauLocation),
	}
}

// seed 0 means a time based seed
func (s *Simulator) seed() int64 {
	if s.Config.Seed != 0 {
		return s.Config.Seed
	}
	return s.now().UnixNano()
}

func (s *Simulator) uploadMap(ctx context.Context) error {
	factory, err := s.cloudWriters(ctx)
	if err != nil {
		return err
	}

	file, err := os.Open(s.Config.MapOutputFile)
	if err != nil {
		return fmt.Errorf("failed to open map for upload: %w", err)
	}
	defer file.Close()

	objectPath := path.Join(s.RunID, filepath.Base(s.Config.MapOutputFile))
	if err := cloudwriter.Upload(factory, s.Config.CloudStorage.BucketName, objectPath, file); err != nil {
		return fmt.Errorf("failed to upload map: %w", err)
	}
	s.Logger.Infof("Map uploaded to s3://%s/%s", s.Config.CloudStorage.BucketName, objectPath)
	return nil
}

func (s *Simulator) export(ctx context.Context, generatedAt time.Time) error {
	output := s.Output
	if output == nil {
		var err error
		output, err = s.determineOutputDestination(ctx)
		if err != nil {
			return err
		}
	}
	if output != nil {
		if err := s.writeNetwork(output, generatedAt.UnixMilli()); err != nil {
			_ = output.Close()
			return err
		}
		if err := output.Close(); err != nil {
			return fmt.Errorf("failed to close output: %w", err)
		}
	}

	repo := s.Repository
	if repo == nil && s.Config.Database.URL != "" {
		pgRepo, err := postgres.Connect(ctx, s.Config.Database.URL)
		if err != nil {
			return err
		}
		defer pgRepo.Close()
		repo = pgRepo
	}
	if repo != nil {
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		if err := repo.Replace(ctx, s.RunID, s.Network.Nodes(), s.Network.Edges()); err != nil {
			return fmt.Errorf("failed to store network: %w", err)
		}
		s.Logger.Infof("Network stored in database (run %s)", s.RunID)
	}
	return nil
}

func (s *Simulator) writeNetwork(output OutputDestination, generatedAt int64) error {
	for _, node := range s.Network.Nodes() {
		msg, err := json.Marshal(NewNodeRecord(s.RunID, generatedAt, node))
		if err != nil {
			return fmt.Errorf("error serializing node %s: %w", node.ID, err)
		}
		if err := output.WriteMessage(models.TopicNodes, msg); err != nil {
			return fmt.Errorf("failed to write node %s: %w", node.ID, err)
		}
	}
	for _, edge := range s.Network.Edges() {
		msg, err := json.Marshal(NewEdgeRecord(s.RunID, generatedAt, edge))
		if err != nil {
			return fmt.Errorf("error serializing edge %s -> %s: %w", edge.From, edge.To, err)
		}
		if err := output.WriteMessage(models.TopicEdges, msg); err != nil {
			return fmt.Errorf("failed to write edge %s -> %s: %w", edge.From, edge.To, err)
		}
	}
	s.Logger.Infof("Exported %d nodes and %d edges", s.Network.NumberOfNodes(), s.Network.NumberOfEdges())
	return nil
}
