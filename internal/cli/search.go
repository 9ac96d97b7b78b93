package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/parthk/blockvault/pkg/cache"
	"github.com/parthk/blockvault/pkg/client"
	"github.com/parthk/blockvault/pkg/keywords"
)

// searchCacheTTL bounds how long search results are reused locally.
const searchCacheTTL = time.Minute

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		serverURL string
		minScore  float64
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find blocks by keyword tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]

			vc, err := newVaultClient(serverURL, 0, 0)
			if err != nil {
				return err
			}

			localCache, err := newLocalCache(noCache)
			if err != nil {
				return err
			}
			defer localCache.Close()
			keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), serverURL)

			results, cached := cachedSearch(cmd, localCache, keyer.SearchKey(query, minScore))
			if !cached {
				results, err = vc.Search(cmd.Context(), query, minScore)
				if err != nil {
					return err
				}
				if data, err := json.Marshal(results); err == nil {
					_ = localCache.Set(cmd.Context(), keyer.SearchKey(query, minScore), data, searchCacheTTL)
				}
			}

			if len(results) == 0 {
				printInfo("No blocks match %q", query)
				return nil
			}

			printSuccess("%d matching blocks", len(results))
			if cached {
				printDetail("cached result")
			}
			for _, r := range results {
				name := r.FileName
				if name == "" {
					name = r.Block.FileID
				}
				fmt.Printf("  %s %s %s\n",
					StyleHighlight.Render(fmt.Sprintf("%.3f", r.Score)),
					StyleValue.Render(name),
					StyleDim.Render(fmt.Sprintf("block %d (%s)", r.Block.Index, r.Block.ID)))
				if len(r.Terms) > 0 {
					printDetail("terms: %v", r.Terms)
				}
			}
			return nil
		},
		Args: cobra.ExactArgs(1),
	}

	cmd.Flags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "vault server URL")
	cmd.Flags().Float64Var(&minScore, "min-score", keywords.DefaultMinScore, "minimum tag score")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the local result cache")

	return cmd
}

// cachedSearch returns locally cached results for key, if any.
func cachedSearch(cmd *cobra.Command, localCache cache.Cache, key string) ([]client.SearchResult, bool) {
	data, hit, err := localCache.Get(cmd.Context(), key)
	if err != nil || !hit {
		return nil, false
	}
	var results []client.SearchResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, false
	}
	return results, true
}
