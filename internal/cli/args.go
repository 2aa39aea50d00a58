package cli

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yiblet/pix/internal/history"
)

// ErrUsage marks errors caused by invalid arguments
var ErrUsage = errors.New("invalid arguments")

const maxPages = 50

// Args represents the top-level command structure
type Args struct {
	Home       *string `arg:"--home" help:"Data directory (default ~/.config/pix)"`
	ConfigFile *string `arg:"--config" help:"Config file (default <home>/config.yaml)"`
	NoCache    bool    `arg:"--no-cache" help:"Always fetch from Pixabay, bypassing the page cache"`
	Verbose    bool    `arg:"-v,--verbose" help:"Log at debug level"`

	Browse  *BrowseCmd  `arg:"subcommand:browse" help:"Open the interactive image browser (default)"`
	Search  *SearchCmd  `arg:"subcommand:search" help:"Search images and print the results"`
	History *HistoryCmd `arg:"subcommand:history" help:"Show or clear recent searches"`
	Cache   *CacheCmd   `arg:"subcommand:cache" help:"Manage the page cache"`
	Config  *ConfigCmd  `arg:"subcommand:config" help:"Read or change configuration"`
}

// BrowseCmd represents 'pix browse [QUERY]'
type BrowseCmd struct {
	Query []string `arg:"positional" help:"Initial search query (optional)"`
}

// SearchCmd represents 'pix search QUERY'
type SearchCmd struct {
	Query []string `arg:"positional,required" help:"Search query"`
	Pages int      `arg:"-p,--pages" default:"1" help:"Number of pages to load"`
	JSON  bool     `arg:"--json" help:"Print results as JSON"`
	Copy  bool     `arg:"-c,--copy" help:"Copy the first large image URL to the clipboard"`
}

// HistoryCmd represents 'pix history'
type HistoryCmd struct {
	Limit  int               `arg:"-n,--limit" help:"Number of queries to show (default all kept)"`
	Grep   *string           `arg:"-g,--grep" help:"Only show queries matching this regular expression"`
	Clear  *HistoryClearCmd  `arg:"subcommand:clear" help:"Delete all recorded queries"`
	Delete *HistoryDeleteCmd `arg:"subcommand:delete" help:"Delete one recorded query"`
}

// HistoryClearCmd represents 'pix history clear'
type HistoryClearCmd struct {
	Force bool `arg:"-f,--force" help:"Skip confirmation prompt"`
}

// HistoryDeleteCmd represents 'pix history delete INDEX'
type HistoryDeleteCmd struct {
	Index int `arg:"positional,required" help:"Index shown by 'pix history' (0 = newest)"`
}

// CacheCmd represents 'pix cache'
type CacheCmd struct {
	Warm  *CacheWarmCmd  `arg:"subcommand:warm" help:"Fetch pages ahead of time"`
	Prune *CachePruneCmd `arg:"subcommand:prune" help:"Delete pages older than the cache TTL"`
	Clear *CacheClearCmd `arg:"subcommand:clear" help:"Delete every cached page"`
	Stats *CacheStatsCmd `arg:"subcommand:stats" help:"Show cache and history sizes"`
}

// CacheWarmCmd represents 'pix cache warm QUERY'
type CacheWarmCmd struct {
	Query       []string `arg:"positional,required" help:"Search query"`
	Pages       int      `arg:"-p,--pages" default:"3" help:"Number of pages to fetch"`
	Concurrency int      `arg:"-j,--concurrency" default:"4" help:"Parallel requests"`
}

type CachePruneCmd struct{}

type CacheClearCmd struct{}

type CacheStatsCmd struct{}

// ConfigCmd represents 'pix config'
type ConfigCmd struct {
	Get  *ConfigGetCmd  `arg:"subcommand:get" help:"Print one value"`
	Set  *ConfigSetCmd  `arg:"subcommand:set" help:"Change one value"`
	List *ConfigListCmd `arg:"subcommand:list" help:"Print every value"`
	Path *ConfigPathCmd `arg:"subcommand:path" help:"Print the config file location"`
}

type ConfigGetCmd struct {
	Key string `arg:"positional,required" help:"Configuration key"`
}

type ConfigSetCmd struct {
	Key   string `arg:"positional,required" help:"Configuration key"`
	Value string `arg:"positional,required" help:"New value"`
}

type ConfigListCmd struct{}

type ConfigPathCmd struct{}

// Description returns the program description
func (Args) Description() string {
	return "pix - search and browse Pixabay images from the terminal"
}

// Version returns the program version
func (Args) Version() string {
	return "pix 0.1.0"
}

// Epilogue returns additional help text
func (Args) Epilogue() string {
	return `Examples:
  # Interactive browser
  pix                              # Open the browser
  pix browse red fox               # Open the browser searching "red fox"

  # Scripting
  pix search mountains --pages 2   # Print two pages of results
  pix search owl --json            # Print results as JSON
  pix search owl -c                # Copy the first image URL

  # Housekeeping
  pix history                      # Recent searches
  pix history delete 0             # Forget the newest search
  pix cache warm forest -p 5       # Prefetch five pages
  pix config set api-key KEY       # Store your Pixabay API key

The API key can also be supplied through PIXABAY_API_KEY.`
}

// Validate performs validation on the parsed arguments
func (args *Args) Validate() error {
	var err error
	switch {
	case args.Search != nil:
		err = args.Search.Validate()
	case args.History != nil:
		err = args.History.Validate()
	case args.Cache != nil && args.Cache.Warm != nil:
		err = args.Cache.Warm.Validate()
	case args.Cache != nil:
		err = args.Cache.Validate()
	case args.Config != nil:
		err = args.Config.Validate()
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// Validate validates search command arguments
func (s *SearchCmd) Validate() error {
	if err := validateQuery(s.Query); err != nil {
		return err
	}
	if s.Pages < 1 || s.Pages > maxPages {
		return fmt.Errorf("pages must be between 1 and %d", maxPages)
	}
	return nil
}

// Validate validates history command arguments
func (h *HistoryCmd) Validate() error {
	if h.Limit < 0 {
		return fmt.Errorf("limit must be non-negative")
	}
	if h.Grep != nil && (h.Clear != nil || h.Delete != nil) {
		return fmt.Errorf("cannot combine --grep with clear or delete")
	}
	if h.Delete != nil && h.Delete.Index < 0 {
		return fmt.Errorf("index must be non-negative")
	}
	return nil
}

// Validate requires a cache subcommand
func (c *CacheCmd) Validate() error {
	if c.Warm == nil && c.Prune == nil && c.Clear == nil && c.Stats == nil {
		return fmt.Errorf("no cache subcommand specified")
	}
	return nil
}

// Validate validates cache warm arguments
func (w *CacheWarmCmd) Validate() error {
	if err := validateQuery(w.Query); err != nil {
		return err
	}
	if w.Pages < 1 || w.Pages > maxPages {
		return fmt.Errorf("pages must be between 1 and %d", maxPages)
	}
	if w.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	return nil
}

// Validate requires a config subcommand
func (c *ConfigCmd) Validate() error {
	if c.Get == nil && c.Set == nil && c.List == nil && c.Path == nil {
		return fmt.Errorf("no config subcommand specified")
	}
	return nil
}

// joinQuery turns positional words into one query
func joinQuery(words []string) string {
	return strings.TrimSpace(strings.Join(words, " "))
}

func validateQuery(words []string) error {
	query := joinQuery(words)
	if query == "" {
		return fmt.Errorf("query must not be empty")
	}
	if utf8.RuneCountInString(query) > history.MaxQueryLen {
		return fmt.Errorf("query must be at most %d characters", history.MaxQueryLen)
	}
	return nil
}
