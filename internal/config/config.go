// Package config loads the batch-run configuration file: per-test
// ICS/IXIT overrides and an optional skip list, per spec.md §6.
//
// Two on-disk dialects are accepted, selected by extension: YAML
// (".yaml"/".yml", via gopkg.in/yaml.v3, the dialect samoyed's
// src/deviceid.go uses for tocalls.yaml) and a JSON-with-"//"-comments
// superset ("jsonc") for everything else, grounded on
// original_source/src/jsonc.rs's comment-filtering reader.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the parsed batch-run configuration.
type Config struct {
	ICS  map[string]bool              `json:"ics" yaml:"ics"`
	IXIT map[string]map[string]string `json:"ixit" yaml:"ixit"`
	Skip []string                     `json:"skip" yaml:"skip"`
}

// Load reads and parses the config file at path, dispatching on its
// extension.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml %s: %w", path, err)
		}
	default:
		if err := json.NewDecoder(NewJSONCReader(f)).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("config: parse json %s: %w", path, err)
		}
	}
	return &cfg, nil
}

// IXITFor merges the "default" IXIT overrides with the profile-specific
// ones, profile values winning, per spec.md §6's "default" fallback
// layer semantics (mirrors original_source/src/main.rs's two-pass
// pts.set_ixit calls).
func (c *Config) IXITFor(profile string) map[string]string {
	merged := map[string]string{}
	for k, v := range c.IXIT["default"] {
		merged[k] = v
	}
	for k, v := range c.IXIT[profile] {
		merged[k] = v
	}
	return merged
}

// ICSOverrides returns the configured ICS map with each key also
// present in its upper-cased form, matching
// original_source/src/main.rs's "pts.set_ics(&*ics, value);
// pts.set_ics(&ics.to_uppercase(), value);" double-insertion that
// tolerates case mismatches between a config file and a PICS row name.
func (c *Config) ICSOverrides() map[string]bool {
	out := make(map[string]bool, len(c.ICS)*2)
	for k, v := range c.ICS {
		out[k] = v
		out[strings.ToUpper(k)] = v
	}
	return out
}

// SkipSet returns the configured skip list as a lookup set.
func (c *Config) SkipSet() map[string]bool {
	set := make(map[string]bool, len(c.Skip))
	for _, name := range c.Skip {
		set[name] = true
	}
	return set
}

type jsoncState int

const (
	statePlain jsoncState = iota
	stateQuote
	stateQuoteEscape
	stateSlash
	stateComment
)

// JSONCReader strips "//" line comments from a JSON stream outside of
// quoted strings, letting encoding/json decode a "//"-commented
// config file as if it were plain JSON. A standalone '/' that is not
// the start of a "//" comment is passed through unchanged — the
// original Rust filter rejected this case outright (`unreachable!`);
// Go's stdlib JSON decoder will simply reject the resulting malformed
// JSON with its own parse error, which is the more idiomatic failure
// path here.
type JSONCReader struct {
	r       io.Reader
	state   jsoncState
	eof     bool
	err     error
	pending []byte // filtered bytes produced but not yet returned to a caller
}

// NewJSONCReader wraps r for comment-stripped decoding.
func NewJSONCReader(r io.Reader) *JSONCReader {
	return &JSONCReader{r: r}
}

// Read filters through a pending buffer rather than writing straight
// into the caller's buf: filter can emit two output bytes for one
// input byte (a stateSlash carried over from a prior call, followed by
// an ordinary character, emits both '/' and that character), so buf's
// length is not a safe upper bound on the output of a single
// underlying Read. Any overflow, plus a trailing unpaired '/' flushed
// at end-of-stream, is kept in pending and drained on subsequent
// calls before the underlying error is finally returned.
func (j *JSONCReader) Read(buf []byte) (int, error) {
	if len(j.pending) > 0 {
		n := copy(buf, j.pending)
		j.pending = j.pending[n:]
		if len(j.pending) > 0 || !j.eof {
			return n, nil
		}
		return n, j.err
	}
	if j.eof {
		return 0, j.err
	}

	raw := make([]byte, len(buf))
	n, err := j.r.Read(raw)
	var out []byte
	if n > 0 {
		out = j.filter(raw[:n])
	}
	if err != nil {
		j.eof = true
		j.err = err
		if j.state == stateSlash {
			out = append(out, '/')
			j.state = statePlain
		}
	}

	written := copy(buf, out)
	if written < len(out) {
		j.pending = append(j.pending, out[written:]...)
		return written, nil
	}
	if j.eof {
		return written, j.err
	}
	return written, nil
}

func (j *JSONCReader) filter(in []byte) []byte {
	out := make([]byte, 0, len(in))

	for _, c := range in {
		switch j.state {
		case statePlain:
			switch c {
			case '/':
				j.state = stateSlash
			case '"':
				out = append(out, c)
				j.state = stateQuote
			default:
				out = append(out, c)
			}
		case stateQuote:
			out = append(out, c)
			switch c {
			case '"':
				j.state = statePlain
			case '\\':
				j.state = stateQuoteEscape
			}
		case stateQuoteEscape:
			// A backslash-escaped character inside a quoted string
			// (e.g. the '"' in \") never ends the string and never
			// starts a comment, regardless of which character it is.
			out = append(out, c)
			j.state = stateQuote
		case stateSlash:
			if c == '/' {
				j.state = stateComment
			} else {
				out = append(out, '/', c)
				j.state = statePlain
			}
		case stateComment:
			if c == '\n' {
				out = append(out, c)
				j.state = statePlain
			}
		}
	}
	return out
}
