package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"verso.dev/verso/internal/track"
)

var cacheSortBy string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "manage the lyrics cache",
	Long:  `inspect, list, and clear cached lyrics.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := setupLogging(cfg, nil); err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		var size int64
		if info, err := os.Stat(store.Path()); err == nil {
			size = info.Size()
		}

		fmt.Println("cache statistics:")
		fmt.Printf("  location: %s\n", store.Path())
		fmt.Printf("  entries:  %d\n", store.Len())
		fmt.Printf("  size:     %s\n", formatBytes(size))
		if store.Disabled() {
			fmt.Println("  status:   disabled (file unreadable or corrupt)")
		}
		return nil
	},
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "list cached songs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := setupLogging(cfg, nil); err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		entries := store.List()
		if len(entries) == 0 {
			fmt.Println("cache is empty")
			return nil
		}

		sort.Slice(entries, func(i, j int) bool {
			switch cacheSortBy {
			case "date":
				return entries[i].CreatedAt > entries[j].CreatedAt
			case "title":
				return entries[i].Title < entries[j].Title
			default:
				if entries[i].Artist != entries[j].Artist {
					return entries[i].Artist < entries[j].Artist
				}
				return entries[i].Title < entries[j].Title
			}
		})

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ARTIST\tTITLE\tFORMAT\tPROVIDER\tOFFSET\tCACHED")
		for _, entry := range entries {
			offset := "-"
			if entry.SyncOffset != 0 {
				offset = fmt.Sprintf("%+.1fs", entry.SyncOffset)
			}
			cached := time.Unix(entry.CreatedAt, 0).Format("2006-01-02")
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				entry.Artist, entry.Title, entry.Format, entry.Provider, offset, cached)
		}
		w.Flush()

		fmt.Printf("\ntotal: %d songs\n", len(entries))
		return nil
	},
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete <artist> <title>",
	Short: "remove one song from the cache",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := setupLogging(cfg, nil); err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		id := &track.Identity{Artist: args[0], Title: args[1]}
		if _, err := store.Get(id); err != nil {
			return fmt.Errorf("song not found in cache: %s - %s", args[0], args[1])
		}
		if err := store.Delete(id); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}

		fmt.Printf("deleted: %s - %s\n", args[0], args[1])
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "remove every cached song",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := setupLogging(cfg, nil); err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		count := store.Len()
		if err := store.Clear(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}

		fmt.Printf("cleared %d entries\n", count)
		return nil
	},
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func init() {
	cacheListCmd.Flags().StringVar(&cacheSortBy, "sort", "artist", "sort order: artist, title, date")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheDeleteCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
