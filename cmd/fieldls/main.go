// Command fieldls loads a dataset descriptor and its field catalogs, runs the
// full field setup (fluid aliases, per-species particle fields, plugin
// population, validation), and prints the surviving derived fields.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/simfoundry/fieldkit/core"
	"github.com/simfoundry/fieldkit/internal/logging"
	"github.com/simfoundry/fieldkit/internal/observability"
	"github.com/simfoundry/fieldkit/model"
	_ "github.com/simfoundry/fieldkit/plugins"
)

func main() {
	datasetPath := flag.String("dataset", "configs/dataset.json", "Path to a JSON dataset descriptor")
	fluidCatalogPath := flag.String("fluid-catalog", "configs/fluid_fields.yaml", "Path to the known fluid field catalog (YAML)")
	particleCatalogPath := flag.String("particle-catalog", "configs/particle_fields.yaml", "Path to the known particle field catalog (YAML)")
	strict := flag.Bool("strict", false, "Fail on dependency-discovery errors instead of dropping fields")
	showDeps := flag.Bool("deps", false, "Print the on-disk dependencies of each derived field")
	numNeighbors := flag.Int("num-neighbors", 64, "SPH smoothing neighbor count")
	metricsAddr := flag.String("metrics-addr", "", "HTTP address for Prometheus /metrics (empty disables the server)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	collector, err := observability.NewFieldCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	tracer := otel.Tracer("fieldkit/cmd/fieldls")
	ctx, span := tracer.Start(ctx, "field-setup",
		trace.WithAttributes(attribute.String("dataset", *datasetPath)))
	defer span.End()

	ds, err := core.LoadDatasetDescriptorFile(*datasetPath)
	if err != nil {
		log.Error(ctx, "failed to load dataset descriptor", logging.String("path", *datasetPath), logging.Err(err))
		os.Exit(1)
	}

	reg := core.NewFieldRegistry(ds, core.RegistryConfig{
		FluidCatalog:    loadCatalog(ctx, log, *fluidCatalogPath),
		ParticleCatalog: loadCatalog(ctx, log, *particleCatalogPath),
		Logger:          log,
		Metrics:         collector,
	})

	ftype := ds.DefaultFluidType
	if err := reg.SetupFluidAliases(ftype); err != nil {
		log.Error(ctx, "fluid alias setup failed", logging.Err(err))
		os.Exit(1)
	}
	for _, ptype := range ds.ParticleTypes {
		if err := reg.SetupParticleFields(ptype, ftype, *numNeighbors); err != nil {
			log.Error(ctx, "particle field setup failed", logging.String("particle_type", ptype), logging.Err(err))
			os.Exit(1)
		}
	}

	loaded, err := reg.LoadAllPlugins(ftype)
	if err != nil {
		log.Error(ctx, "plugin load failed", logging.Err(err))
		os.Exit(1)
	}
	log.Info(ctx, "plugins applied",
		logging.Int("plugins", len(core.PluginNames())),
		logging.Int("fields_introduced", len(loaded)),
	)

	if err := reg.SetupFluidIndexFields(); err != nil {
		log.Error(ctx, "index field aliasing failed", logging.Err(err))
		os.Exit(1)
	}

	mode := core.Lenient
	if *strict {
		mode = core.Strict
	}
	deps, unavailable, err := reg.Validate(nil, mode)
	if err != nil {
		log.Error(ctx, "field validation failed", logging.Err(err))
		os.Exit(1)
	}
	span.SetAttributes(
		attribute.Int("fields.valid", len(deps)),
		attribute.Int("fields.unavailable", len(unavailable)),
	)

	fmt.Printf("Dataset %q (%s geometry, %s units): %d derived fields, %d unavailable\n",
		ds.Name, ds.Geometry, ds.UnitSystem.Name(), len(ds.DerivedFieldList), len(unavailable))
	for _, field := range ds.DerivedFieldList {
		printField(reg, field, ds.FieldDependencies[field], *showDeps)
	}
	if len(unavailable) > 0 {
		fmt.Println("Unavailable on this dataset:")
		for _, field := range unavailable {
			fmt.Printf("  %s\n", field)
		}
	}

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

func printField(reg *core.FieldRegistry, field model.FieldName, deps []model.FieldName, showDeps bool) {
	fd, err := reg.Lookup(field)
	if err != nil {
		return
	}
	kind := "derived"
	if fd.OnDisk() {
		kind = "on-disk"
	}
	fmt.Printf("  %-48s %-8s %-10s %s\n", field, fd.Sampling, kind, fd.Units)
	if showDeps {
		for _, dep := range deps {
			fmt.Printf("    <- %s\n", dep)
		}
	}
}

func loadCatalog(ctx context.Context, log logging.Logger, path string) model.FieldCatalog {
	if path == "" {
		return nil
	}
	catalog, err := core.LoadFieldCatalogFile(path)
	if err != nil {
		log.Warn(ctx, "skipping field catalog", logging.String("path", path), logging.Err(err))
		return nil
	}
	log.Info(ctx, "loaded field catalog", logging.String("path", path), logging.Int("entries", len(catalog)))
	return catalog
}

func serveMetrics(addr string, collector *observability.FieldCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
