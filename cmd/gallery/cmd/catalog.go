package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/campusmedia/gallery/internal/app"
	"github.com/campusmedia/gallery/internal/catalog"
	"github.com/campusmedia/gallery/internal/config"
	"github.com/campusmedia/gallery/internal/markdown"
	"github.com/campusmedia/gallery/internal/model"
	"github.com/campusmedia/gallery/internal/query"
	"github.com/spf13/cobra"
)

func ImportCmd() *cobra.Command {
	var markdownDir string

	cmd := &cobra.Command{
		Use:   "import [resources.json]",
		Short: "Import resources from a JSON file or a markdown directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if markdownDir == "" && len(args) == 0 {
				return fmt.Errorf("pass a JSON file or --markdown <dir>")
			}

			ctx := cmd.Context()
			a, err := app.New(ctx, config.Load())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			var records []*model.Resource
			if markdownDir != "" {
				records, err = catalog.LoadMarkdownDir(markdownDir, a.Parser)
			} else {
				records, err = loadJSONFile(args[0])
			}
			if err != nil {
				return err
			}

			result, err := a.ResourceService.Import(ctx, records)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d, updated %d\n", result.Created, result.Updated)
			return nil
		},
	}

	cmd.Flags().StringVar(&markdownDir, "markdown", "", "directory of markdown resources with front matter")
	return cmd
}

func loadJSONFile(path string) ([]*model.Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return catalog.LoadJSON(f)
}

// QueryCmd runs a search against the catalog and prints the page as JSON.
// Parameters use the same names as the HTTP API, e.g.
//
//	gallery query q=กราฟิก sort=popular tag=AI,IoT
func QueryCmd() *cobra.Command {
	var fixture bool

	cmd := &cobra.Command{
		Use:   "query [param=value ...]",
		Short: "Search the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			values := url.Values{}
			for _, arg := range args {
				parsed, err := url.ParseQuery(arg)
				if err != nil {
					return fmt.Errorf("invalid parameter %q: %w", arg, err)
				}
				for k, v := range parsed {
					values[k] = append(values[k], v...)
				}
			}
			q := query.FromValues(values)

			var result query.Result
			if fixture {
				cfg := config.Load()
				records, err := app.LoadCatalog(cfg, markdown.NewParser())
				if err != nil {
					return err
				}
				result = query.NewEngine(app.EngineOptions(cfg)).Evaluate(records, q, time.Now())
			} else {
				var err error
				result, err = searchDatabase(cmd.Context(), q)
				if err != nil {
					return err
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().BoolVar(&fixture, "fixture", false, "search the configured seed catalog instead of the database")
	return cmd
}

func searchDatabase(ctx context.Context, q query.Query) (query.Result, error) {
	a, err := app.New(ctx, config.Load())
	if err != nil {
		return query.Result{}, err
	}
	defer func() { _ = a.Close() }()
	return a.ResourceService.Search(ctx, q, time.Now())
}
