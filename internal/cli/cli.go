package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yiblet/pix/internal/clipboard"
	"github.com/yiblet/pix/internal/clipboard/sysboard"
	"github.com/yiblet/pix/internal/config"
	"github.com/yiblet/pix/internal/fetchcache"
	"github.com/yiblet/pix/internal/gallery"
	"github.com/yiblet/pix/internal/history"
	"github.com/yiblet/pix/internal/logging"
	"github.com/yiblet/pix/internal/pixabay"
	"github.com/yiblet/pix/internal/pixfs"
	"github.com/yiblet/pix/internal/prefetch"
	"github.com/yiblet/pix/internal/store"
	"github.com/yiblet/pix/internal/store/dbstore"
	"github.com/yiblet/pix/internal/tui"
)

// CLI handles the command-line interface
type CLI struct {
	filesystem *pixfs.PixFS
	configs    *config.ConfigManager
	config     *config.Config
	store      store.Store
	history    *history.Manager
	clipboard  clipboard.Clipboard
	logger     zerolog.Logger
	logFile    io.Closer
	noCache    bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// New creates a new CLI instance with default locations
func New() (*CLI, error) {
	return NewWithArgs(nil)
}

// NewWithArgs creates a CLI using the global flags in args. The browser logs
// to pix.log since it owns the terminal; every other command logs to stderr.
func NewWithArgs(args *Args) (*CLI, error) {
	if args == nil {
		args = &Args{}
	}

	var home string
	if args.Home != nil {
		home = *args.Home
	}
	filesystem, err := pixfs.New(home)
	if err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	configPath := filesystem.ConfigPath()
	if args.ConfigFile != nil {
		configPath = *args.ConfigFile
	}
	configs := config.NewConfigManagerWithPath(configPath)
	cfg, err := configs.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	c := &CLI{
		filesystem: filesystem,
		configs:    configs,
		config:     cfg,
		clipboard:  sysboard.New(),
		noCache:    args.NoCache,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}

	opts := logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}
	if args.Verbose {
		opts.Level = "debug"
	}
	var logOut io.Writer = os.Stderr
	if args.Browse != nil || !args.hasSubcommand() {
		logFile, err := filesystem.OpenLog()
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		c.logFile = logFile
		logOut = logFile
	}
	c.logger = logging.New(opts, logOut)

	sqliteStore, err := dbstore.NewSQLiteStore(filesystem.DBPath())
	if err != nil {
		c.closeLog()
		return nil, fmt.Errorf("failed to create database store: %w", err)
	}
	c.store = sqliteStore
	c.history = history.NewManager(sqliteStore.History(), cfg.HistoryLimit)

	c.logger.Debug().
		Str("root", filesystem.Root()).
		Str("config", configPath).
		Msg("Initialised")

	return c, nil
}

func (args *Args) hasSubcommand() bool {
	return args.Browse != nil || args.Search != nil || args.History != nil || args.Cache != nil || args.Config != nil
}

// Close releases the database and the log file
func (c *CLI) Close() error {
	err := c.store.Close()
	c.closeLog()
	return err
}

func (c *CLI) closeLog() {
	if c.logFile != nil {
		c.logFile.Close()
		c.logFile = nil
	}
}

// Execute runs the CLI command based on parsed arguments
func (c *CLI) Execute(ctx context.Context, args *Args) error {
	if err := args.Validate(); err != nil {
		return err
	}

	switch {
	case args.Browse != nil:
		return c.executeBrowse(ctx, args.Browse)
	case args.Search != nil:
		return c.executeSearch(ctx, args.Search)
	case args.History != nil:
		return c.executeHistory(args.History)
	case args.Cache != nil:
		return c.executeCache(ctx, args.Cache)
	case args.Config != nil:
		return c.executeConfig(args.Config)
	default:
		return c.executeBrowse(ctx, &BrowseCmd{})
	}
}

// fetcher builds the Pixabay client, wrapped in the page cache unless
// caching is disabled
func (c *CLI) fetcher() (gallery.Fetcher, error) {
	client, err := pixabay.NewClient(c.config.APIKey, c.logger,
		pixabay.WithBaseURL(c.config.BaseURL),
		pixabay.WithPerPage(c.config.PerPage),
		pixabay.WithImageType(c.config.ImageType),
		pixabay.WithOrientation(c.config.Orientation),
		pixabay.WithSafeSearch(c.config.SafeSearchEnabled()),
	)
	if err != nil {
		if errors.Is(err, pixabay.ErrInvalidConfig) {
			return nil, fmt.Errorf("%w (run 'pix config set api-key KEY' or set %s)", err, config.APIKeyEnv)
		}
		return nil, err
	}

	if !c.cacheEnabled() {
		return client, nil
	}
	return fetchcache.New(client, c.store.Pages(), c.config.CacheTTLDuration(), c.logger), nil
}

func (c *CLI) cacheEnabled() bool {
	return !c.noCache && c.config.CacheTTLDuration() > 0
}

// recordQuery adds query to the history; failures only get logged
func (c *CLI) recordQuery(query string) {
	if _, err := c.history.Record(query); err != nil {
		c.logger.Warn().Err(err).Str("query", query).Msg("Failed to record query")
	}
}

// executeBrowse starts the interactive browser
func (c *CLI) executeBrowse(ctx context.Context, cmd *BrowseCmd) error {
	fetcher, err := c.fetcher()
	if err != nil {
		return err
	}

	if cached, ok := fetcher.(*fetchcache.CachedFetcher); ok {
		if n, err := cached.Prune(); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to prune page cache")
		} else if n > 0 {
			c.logger.Info().Int("pages", n).Msg("Pruned expired pages")
		}
	}

	notices := tui.NewChannelNotifier(16)
	controller := gallery.NewController(fetcher, notices, c.logger)
	model := tui.NewAppModel(ctx, controller, notices,
		tui.WithHistory(c.history),
		tui.WithClipboard(c.clipboard),
		tui.WithInitialQuery(joinQuery(cmd.Query)),
		tui.WithLogger(c.logger),
	)
	return tui.Run(ctx, model)
}

// searchResult is the JSON shape printed by 'pix search --json'
type searchResult struct {
	Query     string       `json:"query"`
	Page      int          `json:"page"`
	TotalHits int          `json:"total_hits"`
	Images    []searchItem `json:"images"`
}

type searchItem struct {
	ID            int64  `json:"id"`
	Tags          string `json:"tags"`
	ThumbnailURL  string `json:"thumbnail_url"`
	LargeImageURL string `json:"large_image_url"`
	PageURL       string `json:"page_url,omitempty"`
	User          string `json:"user,omitempty"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
}

// executeSearch drives the gallery controller without a UI: one submit,
// then load more until enough pages are shown or the results run out
func (c *CLI) executeSearch(ctx context.Context, cmd *SearchCmd) error {
	fetcher, err := c.fetcher()
	if err != nil {
		return err
	}

	query := joinQuery(cmd.Query)
	var failure string
	notifier := gallery.NotifierFunc(func(message string, level gallery.Level) {
		if level == gallery.LevelError {
			failure = message
			return
		}
		fmt.Fprintln(c.stderr, message)
	})

	controller := gallery.NewController(fetcher, notifier, c.logger)
	c.recordQuery(query)
	controller.SubmitQuery(ctx, query)
	for controller.State().Page < cmd.Pages && failure == "" {
		if controller.State().Exhausted() {
			break
		}
		controller.LoadMore(ctx)
	}

	state := controller.State()
	if err := c.printResults(state, cmd.JSON); err != nil {
		return err
	}

	if cmd.Copy && state.Len() > 0 {
		first := state.Items[0]
		if err := clipboard.WriteText(c.clipboard, first.LargeImageURL); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Fprintf(c.stderr, "Copied URL of image #%d to clipboard\n", first.ID)
	}

	if failure != "" {
		return errors.New(failure)
	}
	return nil
}

func (c *CLI) printResults(state gallery.State, asJSON bool) error {
	if asJSON {
		result := searchResult{
			Query:     state.Query,
			Page:      state.Page,
			TotalHits: state.TotalCount,
			Images:    make([]searchItem, len(state.Items)),
		}
		for i, item := range state.Items {
			result.Images[i] = searchItem{
				ID:            item.ID,
				Tags:          item.Tags,
				ThumbnailURL:  item.ThumbnailURL,
				LargeImageURL: item.LargeImageURL,
				PageURL:       item.PageURL,
				User:          item.User,
				Width:         item.Width,
				Height:        item.Height,
			}
		}
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if state.Len() == 0 {
		return nil
	}
	for _, item := range state.Items {
		fmt.Fprintf(c.stdout, "%d\t%s\t%s\n", item.ID, item.LargeImageURL, item.Tags)
	}
	fmt.Fprintf(c.stderr, "Showing %d of %d results for %q\n", state.Len(), state.TotalCount, state.Query)
	return nil
}

// executeHistory handles the 'pix history' command
func (c *CLI) executeHistory(cmd *HistoryCmd) error {
	if cmd.Clear != nil {
		return c.executeHistoryClear(cmd.Clear)
	}
	if cmd.Delete != nil {
		return c.executeHistoryDelete(cmd.Delete)
	}

	var (
		records []*store.QueryRecord
		err     error
	)
	if cmd.Grep != nil {
		records, err = c.history.Search(*cmd.Grep, cmd.Limit)
	} else {
		records, err = c.history.List(cmd.Limit)
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(records) == 0 {
		fmt.Fprintln(c.stdout, "No searches yet.")
		return nil
	}

	for i, rec := range records {
		fmt.Fprintf(c.stdout, "%3d  %s  x%-3d %s\n", i, rec.SearchedAt.Local().Format("2006-01-02 15:04"), rec.Count, rec.Query)
	}
	return nil
}

// executeHistoryClear handles the 'pix history clear' command
func (c *CLI) executeHistoryClear(cmd *HistoryClearCmd) error {
	size, err := c.history.Size()
	if err != nil {
		return fmt.Errorf("failed to count history: %w", err)
	}

	if size == 0 {
		fmt.Fprintln(c.stdout, "History is already empty.")
		return nil
	}

	if !cmd.Force && !c.confirm(fmt.Sprintf("This will delete %d search(es) from history. Continue? [y/N]: ", size)) {
		fmt.Fprintln(c.stdout, "Cancelled.")
		return nil
	}

	if err := c.history.Clear(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	fmt.Fprintf(c.stdout, "Cleared %d search(es) from history.\n", size)
	return nil
}

// executeHistoryDelete handles the 'pix history delete' command
func (c *CLI) executeHistoryDelete(cmd *HistoryDeleteCmd) error {
	size, err := c.history.Size()
	if err != nil {
		return fmt.Errorf("failed to count history: %w", err)
	}
	if size == 0 {
		return fmt.Errorf("history is empty")
	}

	rec, err := c.history.Get(cmd.Index)
	if err != nil {
		return fmt.Errorf("failed to get search: %w", err)
	}
	if err := c.history.Delete(cmd.Index); err != nil {
		return fmt.Errorf("failed to delete search: %w", err)
	}

	fmt.Fprintf(c.stdout, "Deleted search %d: %s\n", cmd.Index, rec.Query)
	return nil
}

// confirm asks a yes/no question on stdin
func (c *CLI) confirm(prompt string) bool {
	fmt.Fprint(c.stdout, prompt)
	line, _ := bufio.NewReader(c.stdin).ReadString('\n')
	response := strings.ToLower(strings.TrimSpace(line))
	return response == "y" || response == "yes"
}

// executeCache handles the 'pix cache' command
func (c *CLI) executeCache(ctx context.Context, cmd *CacheCmd) error {
	switch {
	case cmd.Warm != nil:
		return c.executeCacheWarm(ctx, cmd.Warm)
	case cmd.Prune != nil:
		return c.executeCachePrune()
	case cmd.Clear != nil:
		return c.executeCacheClear()
	default:
		return c.executeCacheStats()
	}
}

// executeCacheWarm fetches pages concurrently so later searches hit the cache
func (c *CLI) executeCacheWarm(ctx context.Context, cmd *CacheWarmCmd) error {
	if !c.cacheEnabled() {
		return fmt.Errorf("caching is disabled (cache-ttl is 0 or --no-cache is set)")
	}

	fetcher, err := c.fetcher()
	if err != nil {
		return err
	}

	query := joinQuery(cmd.Query)
	start := time.Now()
	pages, err := prefetch.Pages(ctx, fetcher, query, cmd.Pages, cmd.Concurrency)
	if err != nil {
		return fmt.Errorf("failed to warm cache for %q: %w", query, err)
	}

	c.logger.Debug().
		Str("query", query).
		Int("pages", len(pages)).
		Dur("elapsed", time.Since(start)).
		Msg("Cache warmed")

	fmt.Fprintf(c.stdout, "Cached %d page(s), %d image(s) for %q\n", len(pages), len(prefetch.Flatten(pages)), query)
	return nil
}

// executeCachePrune deletes pages older than the configured TTL
func (c *CLI) executeCachePrune() error {
	cutoff := time.Now().Add(-c.config.CacheTTLDuration())
	n, err := c.store.Pages().DeleteOlderThan(cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune cache: %w", err)
	}
	fmt.Fprintf(c.stdout, "Pruned %d page(s).\n", n)
	return nil
}

// executeCacheClear deletes every cached page
func (c *CLI) executeCacheClear() error {
	n, err := c.store.Pages().Count()
	if err != nil {
		return fmt.Errorf("failed to count cached pages: %w", err)
	}
	if err := c.store.Pages().Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Fprintf(c.stdout, "Cleared %d page(s).\n", n)
	return nil
}

// executeCacheStats prints cache and history sizes
func (c *CLI) executeCacheStats() error {
	pages, err := c.store.Pages().Count()
	if err != nil {
		return fmt.Errorf("failed to count cached pages: %w", err)
	}
	queries, err := c.history.Size()
	if err != nil {
		return fmt.Errorf("failed to count history: %w", err)
	}

	ttl := "disabled"
	if c.config.CacheTTLDuration() > 0 {
		ttl = c.config.CacheTTLDuration().String()
	}

	fmt.Fprintf(c.stdout, "Database:       %s\n", c.filesystem.DBPath())
	fmt.Fprintf(c.stdout, "Cached pages:   %d\n", pages)
	fmt.Fprintf(c.stdout, "Cache TTL:      %s\n", ttl)
	fmt.Fprintf(c.stdout, "Saved searches: %d (limit %d)\n", queries, c.history.Limit())
	return nil
}

// executeConfig handles the 'pix config' command
func (c *CLI) executeConfig(cmd *ConfigCmd) error {
	switch {
	case cmd.Get != nil:
		value, err := c.configs.Get(cmd.Get.Key)
		if err != nil {
			return fmt.Errorf("failed to get config value: %w", err)
		}
		fmt.Fprintln(c.stdout, value)
		return nil

	case cmd.Set != nil:
		if err := c.configs.Update(cmd.Set.Key, cmd.Set.Value); err != nil {
			return fmt.Errorf("failed to set config value: %w", err)
		}
		value, err := c.configs.Get(cmd.Set.Key)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "Set %s = %s\n", cmd.Set.Key, value)
		return nil

	case cmd.List != nil:
		values, err := c.configs.List()
		if err != nil {
			return fmt.Errorf("failed to list config values: %w", err)
		}
		fmt.Fprintln(c.stdout, "Current configuration:")
		for _, key := range config.Keys() {
			fmt.Fprintf(c.stdout, "  %s = %s\n", key, values[key])
		}
		return nil

	default:
		fmt.Fprintln(c.stdout, c.configs.GetConfigPath())
		return nil
	}
}
