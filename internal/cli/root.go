package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Hilla44/Ubuntu-Requests/internal/clipboard"
	"github.com/Hilla44/Ubuntu-Requests/internal/config"
	"github.com/Hilla44/Ubuntu-Requests/internal/utils"
	"github.com/Hilla44/Ubuntu-Requests/pkg/imagefetch"
)

// Version information - set via ldflags during build.
var Version = "dev"

// opts collects flag values; defaults reproduce the plain interactive tool.
var opts = config.DefaultOptions()

// readClipboardURL is replaced in tests.
var readClipboardURL = clipboard.ReadURL

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "imagefetch",
	Short:         "Download images from URLs into a local folder",
	Long:          `imagefetch prompts for image URLs and saves each one into a local folder without ever overwriting an existing file.`,
	Version:       Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// run is the whole program: banner, directory setup, optional clipboard URL,
// then the interactive loop.
func run(ctx context.Context, cfg *config.Options, in io.Reader, out io.Writer) error {
	printBanner(out)

	prompter := NewPrompter(in, out)
	client, err := imagefetch.NewClient(&imagefetch.ClientOptions{
		Options:   cfg,
		Confirmer: prompter,
		Output:    out,
	})
	if err != nil {
		var dirErr *utils.DirError
		if errors.As(err, &dirErr) {
			fmt.Fprintf(out, "✗ Error creating directory: %v\n", dirErr)
		} else {
			fmt.Fprintf(out, "✗ %v\n", err)
		}
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			utils.Debug("close client: %v", err)
		}
	}()
	fmt.Fprintf(out, "✓ Directory '%s' is ready\n", client.Dir())

	session := NewSession(prompter, client, out)

	if cfg.Clipboard {
		u, err := readClipboardURL()
		if err != nil {
			fmt.Fprintf(out, "⚠️  %v\n", err)
		} else {
			fmt.Fprintf(out, "📋 URL from clipboard: %s\n", u)
			if session.Handle(ctx, u) {
				return nil
			}
		}
	}

	session.Run(ctx)
	return nil
}

func printBanner(out io.Writer) {
	rule := strings.Repeat("=", 50)
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "🖼️  Image Fetcher - Ubuntu Principles Edition")
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "Community:    Connecting to the wider web")
	fmt.Fprintln(out, "Respect:      Graceful error handling")
	fmt.Fprintln(out, "Sharing:      Organized image collection")
	fmt.Fprintln(out, "Practicality: Real-world utility")
	fmt.Fprintln(out, rule)
}

// Execute runs the root command with a context cancelled by SIGINT/SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Write a debug log under the per-user logs directory")
	rootCmd.Flags().StringVarP(&opts.Destination, "output", "o", opts.Destination, "Directory images are saved into")
	rootCmd.Flags().DurationVar(&opts.Timeout, "timeout", opts.Timeout, "Total time allowed for one download")
	rootCmd.Flags().IntVar(&opts.MaxRedirects, "max-redirects", opts.MaxRedirects, "Redirects followed before giving up")
	rootCmd.Flags().BoolVar(&opts.Clipboard, "clipboard", false, "Fetch the URL on the clipboard before the first prompt")
	rootCmd.Flags().BoolVar(&opts.HTTP3, "http3", false, "Use HTTP/3 (QUIC) instead of HTTP/1.1 and HTTP/2")
	rootCmd.Flags().BoolVar(&opts.Progress, "progress", false, "Show a progress bar while downloading")
	rootCmd.SetVersionTemplate("imagefetch {{.Version}}\n")
}
