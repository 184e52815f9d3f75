package imagefetch

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/Hilla44/Ubuntu-Requests/internal/config"
	"github.com/Hilla44/Ubuntu-Requests/internal/download"
	"github.com/Hilla44/Ubuntu-Requests/internal/utils"
)

// Client owns everything one imagefetch session needs: the destination
// directory, the debug log and the HTTP client.
type Client struct {
	opts      *config.Options
	fetcher   *download.Fetcher
	transport io.Closer

	closeOnce sync.Once
}

// NewClient validates opts, prepares the destination directory and returns a
// ready client. A directory failure is returned as *DirError.
func NewClient(opts *ClientOptions) (*Client, error) {
	if opts == nil || opts.Options == nil {
		return nil, errors.New("options not available")
	}
	cfg := opts.Options
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Verbosity is a process-wide switch; configure it once here.
	utils.SetVerbose(cfg.Verbose)
	if cfg.Verbose && cfg.LogsDir != "" {
		utils.ConfigureDebug(cfg.LogsDir)
		utils.CleanupLogs(cfg.LogRetention)
	}

	if err := utils.EnsureDir(cfg.Destination); err != nil {
		return nil, err
	}

	httpClient, transport := download.NewHTTPClient(cfg)
	fetcher := download.NewFetcher(httpClient, cfg, opts.Confirmer, opts.Output)

	return &Client{
		opts:      cfg,
		fetcher:   fetcher,
		transport: transport,
	}, nil
}

// Dir returns the destination directory as configured.
func (c *Client) Dir() string {
	return c.opts.Destination
}

// Fetch downloads one URL. See download.Fetcher.Fetch.
func (c *Client) Fetch(ctx context.Context, rawURL string) Outcome {
	return c.fetcher.Fetch(ctx, rawURL)
}

// Close releases the transport and the debug log. It is safe to call more than once.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	var err error
	c.closeOnce.Do(func() {
		if c.transport != nil {
			err = c.transport.Close()
		}
		utils.CloseDebug()
	})
	return err
}
