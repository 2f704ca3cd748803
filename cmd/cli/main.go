// Command devlinks exports, imports and checks profile links from the shell.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wadjakorntonsri/go-devlinks/pkg/app"
	"github.com/wadjakorntonsri/go-devlinks/pkg/config"
	"github.com/wadjakorntonsri/go-devlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-devlinks/pkg/logging"
)

// Export is the file format shared by export and import.
type Export struct {
	Profile *domain.Profile    `json:"profile,omitempty"`
	Links   []domain.LinkEntry `json:"links"`
}

func main() {
	if err := newRootCmd(config.Load).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(loadConfig func() *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "devlinks",
		Short:        "Manage devlinks profiles from the command line",
		SilenceUsage: true,
	}

	open := func(cmd *cobra.Command) (*app.App, error) {
		cfg := loadConfig()
		logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: logging.FormatText, Writer: cmd.ErrOrStderr()})
		return app.New(cmd.Context(), cfg, logger)
	}

	root.AddCommand(newExportCmd(open), newImportCmd(open), newValidateCmd())
	return root
}

type opener func(cmd *cobra.Command) (*app.App, error)

func newExportCmd(open opener) *cobra.Command {
	var uid string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print a user's profile and saved links as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			profile, err := a.Repo.GetByUserID(ctx, uid)
			if err != nil {
				return err
			}
			links, err := a.Sync.Load(ctx, uid)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(Export{Profile: profile, Links: links})
		},
	}
	cmd.Flags().StringVar(&uid, "user", "", "user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newImportCmd(open opener) *cobra.Command {
	var uid, file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace a user's saved links with the links of an export file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open %s: %w", file, err)
			}
			defer f.Close()

			links, err := decodeLinks(f)
			if err != nil {
				return err
			}
			if len(links) > domain.MaxLinks {
				return fmt.Errorf("%d links in %s, at most %d allowed", len(links), file, domain.MaxLinks)
			}

			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Sync.Save(cmd.Context(), uid, links)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d links", len(result.Written))
			if len(result.Dropped) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), ", skipped invalid positions %v", result.Dropped)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringVar(&uid, "user", "", "user id")
	cmd.Flags().StringVar(&file, "file", "", "JSON file to import")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// decodeLinks accepts an export document or a bare array of links.
func decodeLinks(r io.Reader) ([]domain.LinkEntry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var links []domain.LinkEntry
	if err := json.Unmarshal(data, &links); err == nil {
		return links, nil
	}
	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("decode links: %w", err)
	}
	return export.Links, nil
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate PLATFORM URL",
		Short: "Check a link against a platform's URL pattern",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			platform, ok := domain.ParsePlatform(args[0])
			if !ok || platform == domain.PlatformNone {
				return fmt.Errorf("%q: %w", args[0], domain.ErrUnknownPlatform)
			}
			if !domain.ValidateLink(platform, args[1]) {
				fmt.Fprintln(cmd.OutOrStdout(), "invalid")
				return fmt.Errorf("%s is not a valid %s link", args[1], platform.Label())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "valid %s\n", domain.FormatURL(args[1]))
			return nil
		},
	}
}
