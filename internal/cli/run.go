package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/spf13/cobra"

	"github.com/jmgilman/go/xfer/browse"
	"github.com/jmgilman/go/xfer/errors"
	"github.com/jmgilman/go/xfer/fs/core"
	"github.com/jmgilman/go/xfer/session"
	"github.com/jmgilman/go/xfer/stash"
)

// selection resolves args and marks them in a stash. All args must name
// entries of the same directory on the same mount. A name with glob syntax
// selects every visible entry it matches.
func (a *app) selection(args []string, op stash.Op) (*stash.Stash, error) {
	var view *browse.View
	names := make([]string, 0, len(args))

	for _, arg := range args {
		b, p, err := a.registry.Resolve(arg)
		if err != nil {
			return nil, err
		}
		name := core.Base(p)
		if name == "" {
			return nil, errors.WithContext(
				errors.New(errors.CodeInvalidInput, "cannot select a mount root"), "arg", arg)
		}

		dir := core.Dir(p)
		switch {
		case view == nil:
			view = browse.New(b, dir, browse.WithLogger(a.logger))
			if err := view.Scan(dir); err != nil {
				return nil, err
			}
		case !core.SameBackend(view.Backend(), b) || view.Path() != dir:
			return nil, errors.WithContextMap(
				errors.New(errors.CodeInvalidInput, "selected paths must share one directory"),
				map[string]interface{}{"arg": arg, "dir": view.Path()})
		}
		if !browse.IsPattern(name) {
			names = append(names, name)
			continue
		}
		matched, err := view.Match(name)
		if err != nil {
			return nil, err
		}
		names = append(names, matched...)
	}

	if err := view.Mark(names, op); err != nil {
		return nil, err
	}
	return view.Stash(), nil
}

// run executes work on the runner and blocks until it finishes. An interrupt
// cancels the session; work observes it at its next checkpoint.
func (a *app) run(cmd *cobra.Command, title string, work session.WorkFunc) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	p := &progress{w: cmd.ErrOrStderr(), runner: a.runner, last: -1}

	var result error
	a.runner.Launch(ctx, title, work, func(err error) {
		result = err
	}, session.WithProgress(p.update))
	a.runner.Wait()

	p.finish()
	return result
}

// progress renders a single status line on stderr.
type progress struct {
	mu      sync.Mutex
	w       io.Writer
	runner  *session.Runner
	last    int
	printed bool
}

func (p *progress) update(done, total int64) {
	if total <= 0 {
		return
	}
	pct := int(done * 100 / total)

	label := ""
	if s := p.runner.Current(); s != nil {
		label = s.Status().Transfer
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if pct == p.last {
		return
	}
	p.last = pct
	p.printed = true
	fmt.Fprintf(p.w, "\r\033[K%3d%% %s", pct, label)
}

func (p *progress) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.printed {
		fmt.Fprintln(p.w)
	}
}
