// Package config resolves the area-links settings.
//
// Every value is a string keyed by a snake_case name. Built-in defaults are
// overridden by the TOML file, and both by AREA_LINKS_<KEY> environment
// variables. Registered validators normalise values and replace invalid ones
// with the default.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cristianoliveira/area-links/internal/colors"
	"github.com/pelletier/go-toml/v2"
)

// AppName names the XDG directories.
const AppName = "area-links"

// EnvPrefix starts every environment override, e.g. AREA_LINKS_TAB_LIMIT.
const EnvPrefix = "AREA_LINKS_"

const (
	// FileModeDir is used for the config and state directories.
	FileModeDir os.FileMode = 0o755
	// FileModeFile is used for the sample config file.
	FileModeFile os.FileMode = 0o644

	// FileExtTOML is the only config file format read.
	FileExtTOML = ".toml"
)

// option is one known key. Options without doc are left out of the sample
// file because their defaults depend on the machine.
type option struct {
	key   string
	value string
	doc   string
}

func builtinOptions(configHome, stateHome string) []option {
	return []option{
		{key: "config_dir", value: filepath.Join(configHome, AppName)},
		{key: "state_dir", value: filepath.Join(stateHome, AppName)},
		{key: "hooks_dir", value: filepath.Join(configHome, AppName, "hooks")},
		{"history_backend", "sqlite", "Where history lists are kept: sqlite or memory."},

		{"tab_limit", "15", "Most links opened from one selection before asking."},
		{"selection_style", "dashed-blue", "Legacy box style, used when selection_box_style is empty."},
		{"selection_box_style", "", "Selection box border: solid, dashed or dotted."},
		{"selection_box_color", "#007bff", "Selection box color as #rgb or #rrggbb."},
		{"highlight_style", "classic-yellow", "How selected links are highlighted."},
		{"open_in_new_window", "false", "Open selected links in a new window."},
		{"reverse_order", "false", "Open links in reverse document order."},
		{"open_next_to_parent", "true", "Insert opened tabs right after the page they came from."},
		{"show_context_menu", "true", "Show the selection entries in the context menu."},
		{"apply_exclusions_on_copy", "false", "Apply excluded_domains and excluded_words when copying."},
		{"remove_duplicates_in_selection", "true", "Drop links already selected in the same drag."},
		{"check_duplicates_on_copy", "true", "Drop duplicate links when copying."},
		{"use_history", "true", "Remember opened links and skip them in later selections."},
		{"use_copy_history", "false", "Remember copied links."},
		{"excluded_domains", "", "Domains never selected, as a list or comma separated."},
		{"excluded_words", "", "Words that exclude a link when found in its host or href."},
		{"drag_threshold", "5", "Cells the mouse must move before a press becomes a drag."},

		{"liveness_interval", "1m0s", "How often the background checks the selecting tab still exists."},
		{"auto_inject", "false", "Arm every page on load instead of on first use."},
		{"fetch_timeout", "15s", "Time limit for loading one page."},

		{"hooks_enabled", "true", "Run scripts from hooks_dir/links-opened and hooks_dir/links-copied."},
		{"hooks_failure_mode", "warn", "What a failing hook does: abort, warn or ignore."},
		{"hooks_async", "false", "Run hooks in the background."},
		{"hooks_async_timeout", "30s", "Time limit for one background hook."},
		{"hooks_max_async", "10", "Most background hooks running at once."},

		{"logging_enabled", "false", "Write a JSON log file per run under state_dir/logs."},
		{"logging_level", "info", "Lowest level written: debug, info, warn or error."},
		{"logging_max_files", "10", "Log files kept."},
		{"debug", "false", "Print debug messages and log at debug level."},
		{"quiet", "false", "Only print errors."},
	}
}

var (
	mu       sync.RWMutex
	values   map[string]string
	defaults map[string]string
	options  []option
)

func init() {
	initValidators()
}

// Load resolves the configuration: defaults, then the TOML file, then the
// environment. The environment is applied before reading the file too, so
// AREA_LINKS_CONFIG_DIR can move it. A commented sample file is written when
// none exists.
func Load() {
	mu.Lock()
	defer mu.Unlock()

	home, _ := os.UserHomeDir()
	options = builtinOptions(
		xdgDir("XDG_CONFIG_HOME", filepath.Join(home, ".config")),
		xdgDir("XDG_STATE_HOME", filepath.Join(home, ".local", "state")),
	)
	values = make(map[string]string, len(options))
	defaults = make(map[string]string, len(options))
	for _, o := range options {
		values[o.key] = o.value
		defaults[o.key] = o.value
	}

	applyEnv()
	applyFile()
	applyEnv()
	normalize()
	writeSample()
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	return fallback
}

// Path returns the configuration file in use, which may not exist.
func Path() string {
	if p := os.Getenv(EnvPrefix + "CONFIG_PATH"); p != "" {
		return p
	}
	mu.RLock()
	defer mu.RUnlock()
	return filepath.Join(values["config_dir"], "config"+FileExtTOML)
}

func applyFile() {
	path := os.Getenv(EnvPrefix + "CONFIG_PATH")
	explicit := path != ""
	if !explicit {
		path = filepath.Join(values["config_dir"], "config"+FileExtTOML)
	}
	if !strings.EqualFold(filepath.Ext(path), FileExtTOML) {
		colors.Warning(fmt.Sprintf("ignoring config file %s: only %s is supported", path, FileExtTOML))
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if explicit || !os.IsNotExist(err) {
			colors.Warning(fmt.Sprintf("unable to read config file %s: %v", path, err))
		}
		return
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		colors.Warning(fmt.Sprintf("unable to parse config file %s: %v", path, err))
		return
	}
	for k, v := range raw {
		key := strings.ToLower(k)
		s, ok := tomlString(v)
		if !ok {
			colors.Warning(fmt.Sprintf("unsupported config value type for %s: %T", key, v))
			continue
		}
		values[key] = s
	}
}

// tomlString turns a decoded TOML value into its config string. Arrays of
// strings become comma separated lists, so excluded_domains can be written
// either way.
func tomlString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return "", false
			}
			parts[i] = s
		}
		return strings.Join(parts, ","), true
	default:
		return "", false
	}
}

func applyEnv() {
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		if key == "config_path" {
			continue
		}
		values[key] = value
	}
}

// normalize runs the registered validators over every value.
func normalize() {
	for key, value := range values {
		v := getValidator(key)
		if v == nil {
			continue
		}
		def := defaults[key]
		norm, err := v(key, value, def)
		if err != nil {
			colors.Warning(fmt.Sprintf("validation error for %s: %v, using default: %s", key, err, def))
			norm = def
		}
		values[key] = norm
	}
}

// writeSample writes the documented defaults to config_dir/config.toml when
// that file does not exist.
func writeSample() {
	dir := values["config_dir"]
	if dir == "" {
		return
	}
	path := filepath.Join(dir, "config"+FileExtTOML)
	if _, err := os.Stat(path); err == nil {
		return
	}
	if err := os.MkdirAll(dir, FileModeDir); err != nil {
		colors.Debug(fmt.Sprintf("unable to create config dir %s: %v", dir, err))
		return
	}

	var b strings.Builder
	b.WriteString("# area-links configuration (TOML).\n")
	b.WriteString("# AREA_LINKS_<KEY> environment variables override these values.\n")
	for _, o := range options {
		if o.doc == "" {
			continue
		}
		line, err := toml.Marshal(map[string]any{o.key: sampleValue(o.value)})
		if err != nil {
			colors.Warning(fmt.Sprintf("unable to marshal sample value %s: %v", o.key, err))
			return
		}
		fmt.Fprintf(&b, "\n# %s\n%s", o.doc, line)
	}
	if err := os.WriteFile(path, []byte(b.String()), FileModeFile); err != nil {
		colors.Warning(fmt.Sprintf("unable to write sample config to %s: %v", path, err))
	}
}

// sampleValue types a default for the sample file.
func sampleValue(v string) any {
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}

// Get returns the value of key, or defaultValue when it is unknown.
func Get(key, defaultValue string) string {
	mu.RLock()
	defer mu.RUnlock()
	if v, ok := values[key]; ok {
		return v
	}
	return defaultValue
}

// GetInt returns key as an integer, or defaultValue.
func GetInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(Get(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

// GetBool returns key as a boolean, or defaultValue. Accepts the same
// spellings as the bool validator.
func GetBool(key string, defaultValue bool) bool {
	switch strings.ToLower(Get(key, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

// GetDuration returns key as a duration, or defaultValue.
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(Get(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}

// Set overrides a single value for the running process.
func Set(key, value string) {
	mu.Lock()
	defer mu.Unlock()
	if values == nil {
		values = make(map[string]string)
		defaults = make(map[string]string)
	}
	values[key] = value
}

// Describe returns the documentation of key, or "" for undocumented keys.
func Describe(key string) string {
	mu.RLock()
	defer mu.RUnlock()
	for _, o := range options {
		if o.key == key {
			return o.doc
		}
	}
	return ""
}

// Entry is one resolved configuration value.
type Entry struct {
	Key     string
	Value   string
	Default bool
}

// All returns every resolved value sorted by key. Default reports whether
// the value equals the built-in default.
func All() []Entry {
	mu.RLock()
	defer mu.RUnlock()
	entries := make([]Entry, 0, len(values))
	for k, v := range values {
		def, known := defaults[k]
		entries = append(entries, Entry{Key: k, Value: v, Default: known && def == v})
	}
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Key, b.Key) })
	return entries
}
