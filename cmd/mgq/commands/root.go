package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"moderngov/internal/components/chrono"
	"moderngov/internal/components/telemetry"
	"moderngov/lib/platforms/moderngov"
	"moderngov/lib/responsecache"

	"github.com/spf13/cobra"
)

var (
	siteFlag    string
	cacheFlag   string
	noCacheFlag bool
	verboseFlag bool
)

// populated by setup before any command runs
var (
	api     *moderngov.Api
	store   responsecache.Store
	otelTel telemetry.Telemetry
)

var rootCmd = &cobra.Command{
	Use:   "mgq",
	Short: "mgq queries the moderngov web service of a council site.",
	Long: `mgq queries the moderngov web service of a council site.

Responses are cached for a day, the site can be given with --site or
as "site" in mgq.json5.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		teardown(cmd.Context())
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&siteFlag, "site", "", "council site, for example democracy.example.gov.uk")
	flags.StringVar(&cacheFlag, "cache", "", "sqlite file to cache responses in")
	flags.BoolVar(&noCacheFlag, "no-cache", false, "keep responses in memory only")
	flags.BoolVarP(&verboseFlag, "verbose", "v", false, "log debug information")
}

func setup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	config, err := loadConfig()
	if err != nil {
		return err
	}
	if siteFlag != "" {
		config.Site = siteFlag
	}
	if cacheFlag != "" {
		config.Cache.File = cacheFlag
		config.Cache.Url = ""
	}
	if verboseFlag {
		config.LogLevel = "debug"
	}
	telemetry.InitSlog(os.Stderr, telemetry.ParseLevel(config.LogLevel))

	if config.Site == "" {
		return errors.New("no site given, use --site or set \"site\" in " + configName)
	}

	otelTel, err = telemetry.Setup(ctx, "mgq", config.Telemetry)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}

	tel := telemetry.SlogAPI{}
	store, err = openStore(ctx, config.Cache, tel)
	if err != nil {
		return err
	}

	api, err = moderngov.New(config.Site, moderngov.ClientOptions{
		Store:             store,
		Telemetry:         tel,
		TTL:               config.Cache.TTL(),
		Timeout:           config.Http.Timeout(),
		RequestsPerSecond: config.Http.RequestsPerSecond,
		CloudflareBypass:  config.Http.CloudflareBypass,
	})
	if err != nil {
		return err
	}
	return nil
}

// openStore puts a memory layer in front of the persistent one, --no-cache
// leaves only the memory layer.
func openStore(ctx context.Context, config CacheConfig, tel telemetry.API) (responsecache.Store, error) {
	clock := chrono.NewStandardImpl()

	memory, err := responsecache.NewMemoryStore(ctx, responsecache.MemoryOptions{
		SizeMB: config.MemoryMB,
		MaxTTL: config.TTL(),
	}, clock)
	if err != nil {
		return nil, err
	}
	if noCacheFlag {
		return memory, nil
	}

	persistent, err := config.OpenStore(clock)
	if err != nil {
		memory.Close()
		return nil, err
	}
	return responsecache.NewLayered(clock, tel, memory, persistent), nil
}

func teardown(ctx context.Context) {
	if api != nil {
		api.Close()
	}
	if store != nil {
		err := store.Close()
		if err != nil {
			slog.Warn("failed to close cache", "err", err)
		}
	}
	err := otelTel.Shutdown(ctx)
	if err != nil {
		slog.Warn("failed to flush telemetry", "err", err)
	}
}

// ExecuteContext runs the command line, anything setup opened is released
// before it returns.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		// post run hooks are skipped when a command fails
		teardown(ctx)
	}
	return err
}
