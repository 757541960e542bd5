// Package hooks runs user scripts when links leave a selection.
//
// Scripts live in one directory per hook point under the hooks directory,
// e.g. ~/.config/area-links/hooks/links-opened/10-log.sh. Every executable
// file of the point's directory runs in name order. The links are passed in
// AREA_LINKS_URLS, one per line.
package hooks

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cristianoliveira/area-links/internal/config"
	"github.com/cristianoliveira/area-links/internal/logging"
	"github.com/cristianoliveira/area-links/internal/ports"
)

// Hook points.
const (
	// PointLinksOpened runs after the background opened links in new tabs.
	PointLinksOpened = "links-opened"
	// PointLinksCopied runs after links were written to the clipboard.
	PointLinksCopied = "links-copied"
)

// Failure modes.
const (
	// FailureAbort returns the first script failure to the caller.
	FailureAbort = "abort"
	// FailureWarn logs failures and keeps going.
	FailureWarn = "warn"
	// FailureIgnore drops failures silently.
	FailureIgnore = "ignore"
)

const (
	defaultAsyncTimeout = 30 * time.Second
	defaultMaxAsync     = 10
)

// Runner executes hook scripts.
type Runner struct {
	dir          string
	enabled      bool
	failureMode  string
	async        bool
	asyncTimeout time.Duration
	maxAsync     int
	output       io.Writer
	logger       logging.Logger
	now          func() time.Time

	mu      sync.Mutex
	pending int
	wg      sync.WaitGroup
}

// Option configures a Runner.
type Option func(*Runner)

// WithDir sets the hooks directory.
func WithDir(dir string) Option { return func(r *Runner) { r.dir = dir } }

// WithEnabled turns every hook on or off.
func WithEnabled(on bool) Option { return func(r *Runner) { r.enabled = on } }

// WithFailureMode sets abort, warn or ignore. Unknown modes mean warn.
func WithFailureMode(mode string) Option { return func(r *Runner) { r.failureMode = mode } }

// WithAsync runs scripts in the background, each bounded by timeout.
func WithAsync(async bool, timeout time.Duration) Option {
	return func(r *Runner) {
		r.async = async
		if timeout > 0 {
			r.asyncTimeout = timeout
		}
	}
}

// WithMaxAsync caps the number of background scripts running at once.
func WithMaxAsync(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxAsync = n
		}
	}
}

// WithOutput copies script output to w. Output is always logged.
func WithOutput(w io.Writer) Option { return func(r *Runner) { r.output = w } }

// WithLogger sets the runner logger.
func WithLogger(l logging.Logger) Option { return func(r *Runner) { r.logger = l } }

// New returns a runner. Without WithDir no script is found.
func New(opts ...Option) *Runner {
	r := &Runner{
		enabled:      true,
		failureMode:  FailureWarn,
		asyncTimeout: defaultAsyncTimeout,
		maxAsync:     defaultMaxAsync,
		logger:       logging.NewNoop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewFromConfig returns a runner configured by the hooks_* keys.
func NewFromConfig(opts ...Option) *Runner {
	base := []Option{
		WithDir(config.Get("hooks_dir", "")),
		WithEnabled(config.GetBool("hooks_enabled", true)),
		WithFailureMode(config.Get("hooks_failure_mode", FailureWarn)),
		WithAsync(config.GetBool("hooks_async", false), config.GetDuration("hooks_async_timeout", defaultAsyncTimeout)),
		WithMaxAsync(config.GetInt("hooks_max_async", defaultMaxAsync)),
	}
	return New(append(base, opts...)...)
}

// Scripts returns the executable scripts of point in run order.
func (r *Runner) Scripts(point string) []string {
	if r.dir == "" {
		return nil
	}
	dir := filepath.Join(r.dir, point)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var scripts []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.Mode()&0o111 == 0 {
			continue
		}
		scripts = append(scripts, filepath.Join(dir, e.Name()))
	}
	sort.Strings(scripts)
	return scripts
}

// Run executes the scripts of point with env added to the process
// environment. Only the abort failure mode returns script errors.
func (r *Runner) Run(ctx context.Context, point string, env map[string]string) error {
	if !r.enabled {
		return nil
	}
	scripts := r.Scripts(point)
	if len(scripts) == 0 {
		return nil
	}

	environ := r.environ(point, env)
	r.logger.Debug("running hooks", "point", point, "scripts", len(scripts))

	for _, script := range scripts {
		if r.async {
			r.start(script, environ)
			continue
		}
		if err := r.runSync(ctx, script, environ); err != nil && r.failureMode == FailureAbort {
			return err
		}
	}
	return nil
}

func (r *Runner) environ(point string, env map[string]string) []string {
	environ := append(os.Environ(),
		"HOOK_POINT="+point,
		"HOOK_TIMESTAMP="+r.now().Format(time.RFC3339),
		"AREA_LINKS_HOOKS_FAILURE_MODE="+r.failureMode,
	)
	if exe, err := os.Executable(); err == nil {
		environ = append(environ, "AREA_LINKS_BINARY="+exe)
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		environ = append(environ, k+"="+env[k])
	}
	return environ
}

func (r *Runner) runSync(ctx context.Context, script string, environ []string) error {
	start := time.Now()
	cmd := exec.CommandContext(ctx, script)
	cmd.Env = environ
	out, err := cmd.CombinedOutput()
	r.report(script, out, err, time.Since(start))
	if err != nil {
		return fmt.Errorf("hook %s failed: %w", filepath.Base(script), err)
	}
	return nil
}

// start launches script in the background unless maxAsync scripts are
// already running.
func (r *Runner) start(script string, environ []string) {
	r.mu.Lock()
	if r.pending >= r.maxAsync {
		r.mu.Unlock()
		r.logger.Warn("too many hooks pending, skipping", "script", filepath.Base(script), "max", r.maxAsync)
		return
	}
	r.pending++
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer func() {
			r.mu.Lock()
			r.pending--
			r.mu.Unlock()
			r.wg.Done()
		}()
		ctx, cancel := context.WithTimeout(context.Background(), r.asyncTimeout)
		defer cancel()

		start := time.Now()
		cmd := exec.CommandContext(ctx, script)
		cmd.Env = environ
		out, err := cmd.CombinedOutput()
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("timed out after %s", r.asyncTimeout)
		}
		r.report(script, out, err, time.Since(start))
	}()
}

func (r *Runner) report(script string, out []byte, err error, took time.Duration) {
	name := filepath.Base(script)
	if len(out) > 0 {
		r.logger.Info("hook output", "script", name, "output", strings.TrimSpace(string(out)))
		if r.output != nil {
			r.mu.Lock()
			_, _ = r.output.Write(out)
			r.mu.Unlock()
		}
	}
	switch {
	case err == nil:
		r.logger.Debug("hook completed", "script", name, "duration", took)
	case r.failureMode == FailureIgnore:
	default:
		r.logger.Warn("hook failed", "script", name, "error", err, "duration", took)
	}
}

// Wait blocks until every background script has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Pending returns how many background scripts are running.
func (r *Runner) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

func linkEnv(urls []string) map[string]string {
	return map[string]string{
		"AREA_LINKS_URLS":      strings.Join(urls, "\n"),
		"AREA_LINKS_URL_COUNT": strconv.Itoa(len(urls)),
	}
}

// LinksOpened runs the links-opened hooks.
func (r *Runner) LinksOpened(ctx context.Context, urls []string) error {
	return r.Run(ctx, PointLinksOpened, linkEnv(urls))
}

// clipboardHook runs the links-copied hooks after every successful write.
type clipboardHook struct {
	next   ports.Clipboard
	runner *Runner
}

// Clipboard wraps next so that successful copies run the links-copied
// hooks. The copied text is split back into one URL per line.
func (r *Runner) Clipboard(next ports.Clipboard) ports.Clipboard {
	return clipboardHook{next: next, runner: r}
}

func (c clipboardHook) WriteText(text string) error {
	if err := c.next.WriteText(text); err != nil {
		return err
	}
	urls := strings.Split(text, "\n")
	if err := c.runner.Run(context.Background(), PointLinksCopied, linkEnv(urls)); err != nil {
		c.runner.logger.Warn("links-copied hook aborted", "error", err)
	}
	return nil
}
