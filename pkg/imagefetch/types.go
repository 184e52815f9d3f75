package imagefetch

import (
	"github.com/Hilla44/Ubuntu-Requests/internal/config"
	"github.com/Hilla44/Ubuntu-Requests/internal/download"
	"github.com/Hilla44/Ubuntu-Requests/internal/utils"
)

// Re-exported types for the public API to keep internal packages private
// while maintaining a stable surface for consumers.
type Options = config.Options
type Outcome = download.Outcome
type Status = download.Status
type Category = download.Category
type Confirmer = download.Confirmer
type ConfirmFunc = download.ConfirmFunc
type DirError = utils.DirError

const (
	StatusSaved       = download.StatusSaved
	StatusFailed      = download.StatusFailed
	StatusCancelled   = download.StatusCancelled
	StatusInterrupted = download.StatusInterrupted
)

// DefaultOptions returns the options used by the imagefetch command.
func DefaultOptions() *Options {
	return config.DefaultOptions()
}
