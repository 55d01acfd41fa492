package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vantoi-labs/hoadon-cli/internal/adapters/driven/artifact"
	"github.com/vantoi-labs/hoadon-cli/internal/adapters/driven/auth"
	"github.com/vantoi-labs/hoadon-cli/internal/adapters/driven/config/file"
	"github.com/vantoi-labs/hoadon-cli/internal/adapters/driven/storage/sqlite"
	"github.com/vantoi-labs/hoadon-cli/internal/connectors/portal"
	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/services"
	"github.com/vantoi-labs/hoadon-cli/internal/logger"
)

var version = "dev"

var (
	cfgPath string
	verbose bool

	profile *domain.Profile
	store   *sqlite.Store
)

var rootCmd = &cobra.Command{
	Use:   "hoadon",
	Short: "Vietnamese e-invoice harvester",
	Long: `Harvests invoice metadata from the national e-invoice portal and
retrieves the underlying PDF documents from each tax provider's own
lookup service.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)

		path := cfgPath
		if path == "" {
			var err error
			path, err = file.DefaultPath()
			if err != nil {
				return fmt.Errorf("resolving config path: %w", err)
			}
		}

		var err error
		profile, err = file.Load(path)
		if err != nil {
			return fmt.Errorf("loading profile: %w", err)
		}
		logger.Debug().Str("config", path).Str("profile", profile.Name).Msg("profile loaded")
		return nil
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		if store != nil {
			return store.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to the profile file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the CLI. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore opens the SQLite store once per invocation.
func openStore() (*sqlite.Store, error) {
	if store != nil {
		return store, nil
	}
	s, err := sqlite.NewStore(profile.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	store = s
	return store, nil
}

func newIngestor() (*services.IngestionPipeline, error) {
	s, err := openStore()
	if err != nil {
		return nil, err
	}
	return services.NewIngestionPipeline(profile, s.SellerStore(), s.TaxProviderStore(), s.InvoiceStore()), nil
}

func newFetchService() *services.FetchService {
	client := portal.NewClient(auth.NewProvider(profile))
	return services.NewFetchService(profile, portal.NewFetcher(client, profile.PageSize))
}

func newQuerier() (*services.QueryService, error) {
	s, err := openStore()
	if err != nil {
		return nil, err
	}
	return services.NewQueryService(s.InvoiceStore()), nil
}

func newArtifactStore() (*artifact.Store, error) {
	artifacts, err := artifact.NewStore(profile.DownloadDir)
	if err != nil {
		return nil, fmt.Errorf("opening download dir: %w", err)
	}
	return artifacts, nil
}
