package internal

import (
	"io"

	"github.com/starford/sprout/internal/recommend"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	version   string
	logOutput io.Writer
	generator recommend.Generator
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithLogOutput redirects the JSON log stream. The default is stdout for
// the HTTP server and stderr for the MCP server.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}

// WithGenerator replaces the Gemini client, e.g. with a local model proxy.
func WithGenerator(g recommend.Generator) Option {
	return func(a *application) {
		a.generator = g
	}
}
