package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"scribblehub-to-epub/httpcache"
	apperrors "scribblehub-to-epub/pkg/errors"
)

func newCacheCmd(root *rootOptions) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the HTTP response cache",
	}

	cacheCmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every cached response",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cmd, root, func(store httpcache.Store) (int64, error) {
					return store.Clear(cmd.Context())
				}, "removed %d cached responses\n")
			},
		},
		&cobra.Command{
			Use:   "prune",
			Short: "Remove expired cached responses",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cmd, root, func(store httpcache.Store) (int64, error) {
					return store.Purge(cmd.Context(), time.Now())
				}, "removed %d expired responses\n")
			},
		},
	)
	return cacheCmd
}

func withStore(cmd *cobra.Command, root *rootOptions, fn func(httpcache.Store) (int64, error), format string) error {
	cfg, _, err := root.loadConfig()
	if err != nil {
		return err
	}
	store, err := httpcache.Open(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := fn(store)
	if err != nil {
		return apperrors.NewCache(cfg.CacheBackend, "cache operation failed", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), format, n)
	return nil
}
