// Package heuristic decides whether the current clipboard image was most
// likely written by the system screenshot tool. No OS API states that a
// clipboard write is a screenshot, so the verdict is best effort: false
// positives and false negatives are expected.
package heuristic

import (
	"fmt"
	"strings"

	"go.klb.dev/snipsave/internal/clip"
)

// DefaultProcessName is the host process that owns clipboard writes made by
// Snip & Sketch and the Snipping Tool.
const DefaultProcessName = "svchost.exe"

// DefaultPreference is the format priority list consulted by the format
// signal. It holds only the raw bitmap format.
var DefaultPreference = []clip.Format{clip.FormatDIB}

// Querier is the part of a clipboard backend the heuristic inspects.
type Querier interface {
	Owner() (clip.Process, error)
	Formats() ([]clip.Format, error)
}

// Config holds the strictness knobs.
type Config struct {
	// ProcessName is compared against the final segment of the owner's image
	// path. Empty disables the process signal, for platforms that cannot
	// name the clipboard owner.
	ProcessName string
	// RequireFormat ANDs the format signal into the verdict.
	RequireFormat bool
	// Preference is the ordered format list for the format signal.
	// DefaultPreference when nil.
	Preference []clip.Format
}

// DefaultConfig returns the stricter variant: process name and format.
func DefaultConfig() Config {
	return Config{
		ProcessName:   DefaultProcessName,
		RequireFormat: true,
		Preference:    DefaultPreference,
	}
}

// Verdict is the outcome of one heuristic evaluation.
type Verdict struct {
	Trusted bool
	// Process is the owner's image path when it was queried.
	Process string
	// Format is the preferred format found on the clipboard, zero if the
	// format signal was not evaluated or found nothing.
	Format clip.Format
}

// QueryError reports a failure to read clipboard identity or format state.
// Callers downgrade it to an untrusted verdict.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string { return fmt.Sprintf("heuristic: %s: %v", e.Op, e.Err) }
func (e *QueryError) Unwrap() error { return e.Err }

// Heuristic combines the process identity and format priority signals.
type Heuristic struct {
	Source Querier
	Config Config
}

// New returns a Heuristic over src.
func New(src Querier, cfg Config) *Heuristic {
	return &Heuristic{Source: src, Config: cfg}
}

// LikelyTrustedCapture evaluates the enabled signals against the live
// clipboard. Any query failure is returned as *QueryError and the verdict is
// untrusted.
func (h *Heuristic) LikelyTrustedCapture() (Verdict, error) {
	var v Verdict

	if h.Config.ProcessName != "" {
		proc, err := h.Source.Owner()
		if err != nil {
			return v, &QueryError{Op: "owner", Err: err}
		}
		v.Process = proc.ImagePath
		if !ProcessSignal(proc.ImagePath, h.Config.ProcessName) {
			return v, nil
		}
	}

	if h.Config.RequireFormat {
		offered, err := h.Source.Formats()
		if err != nil {
			return v, &QueryError{Op: "formats", Err: err}
		}
		pref := h.Config.Preference
		if pref == nil {
			pref = DefaultPreference
		}
		f, ok := FormatSignal(offered, pref)
		if !ok {
			return v, nil
		}
		v.Format = f
	}

	v.Trusted = true
	return v, nil
}

// ProcessSignal reports whether the final segment of imagePath equals
// expected, ignoring case. Both separators are accepted.
func ProcessSignal(imagePath, expected string) bool {
	if imagePath == "" || expected == "" {
		return false
	}
	base := imagePath
	if i := strings.LastIndexAny(base, `\/`); i >= 0 {
		base = base[i+1:]
	}
	return strings.EqualFold(base, expected)
}

// FormatSignal returns the first format in preference that is present in
// offered.
func FormatSignal(offered, preference []clip.Format) (clip.Format, bool) {
	for _, want := range preference {
		for _, f := range offered {
			if f == want {
				return want, true
			}
		}
	}
	return 0, false
}
