package train

import (
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

// StepFn runs one epoch -- typically: build the forward graph, run Backward,
// step the optimizer -- and returns the epoch's loss.
type StepFn func(epoch int) (loss float64, err error)

// Loop runs a training function for a fixed number of epochs, optionally
// displaying a progress bar, and collects the per-epoch losses.
type Loop struct {
	name        string
	epochs      int
	progressBar bool
}

// NewLoop creates a Loop that will run the given number of epochs.
func NewLoop(name string, epochs int) *Loop {
	return &Loop{name: name, epochs: epochs}
}

// WithProgressBar enables a command-line progress bar while the loop runs.
// It returns the Loop to allow chaining.
func (l *Loop) WithProgressBar() *Loop {
	l.progressBar = true
	return l
}

// Run calls step once per epoch and returns the collected losses, one per
// epoch. It stops at the first error. Per-epoch losses are logged at
// verbosity 1 (see klog -v).
func (l *Loop) Run(step StepFn) (losses []float64, err error) {
	var bar *progressbar.ProgressBar
	if l.progressBar {
		bar = progressbar.NewOptions(l.epochs,
			progressbar.OptionSetDescription(l.name),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("epochs"),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
		)
	}
	losses = make([]float64, 0, l.epochs)
	for epoch := range l.epochs {
		loss, err := step(epoch)
		if err != nil {
			return losses, errors.WithMessagef(err, "loop %q failed at epoch %d", l.name, epoch)
		}
		losses = append(losses, loss)
		klog.V(1).Infof("%s: epoch %d: loss=%g", l.name, epoch, loss)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return losses, nil
}
