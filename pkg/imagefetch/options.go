package imagefetch

import (
	"io"

	"github.com/Hilla44/Ubuntu-Requests/internal/config"
)

// ClientOptions configures an embedded fetch session.
type ClientOptions struct {
	Options *config.Options
	// Confirmer is asked before saving non-image content; nil declines.
	Confirmer Confirmer
	// Output receives status lines; nil discards them.
	Output io.Writer
}
