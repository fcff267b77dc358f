package bridge

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/viant/mcpgw/gateway"
	"github.com/viant/mcpgw/router"
	"gopkg.in/yaml.v3"
)

const (
	DefaultURL         = "http://127.0.0.1:4444"
	DefaultConcurrency = 1
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

type Options struct {
	URL         string        `short:"u" long:"url" env:"MCP_GATEWAY_URL" description:"tool gateway base url" yaml:"url"`
	Token       string        `short:"t" long:"token" env:"MCP_JWT_TOKEN" description:"gateway bearer token" yaml:"token"`
	TokenURL    string        `long:"token-url" description:"bearer token location (file, mem, s3, gs ...)" yaml:"tokenURL"`
	Secret      string        `long:"secret" description:"scy secret resource holding bearer token, URL or URL|key" yaml:"secret"`
	Key         string        `short:"k" long:"key" description:"secret encryption key" yaml:"key"`
	ConfigURL   string        `short:"c" long:"config" description:"YAML config file" yaml:"-"`
	ListTimeout time.Duration `long:"list-timeout" description:"tools/list gateway timeout" yaml:"listTimeout"`
	CallTimeout time.Duration `long:"call-timeout" description:"tools/call gateway timeout" yaml:"callTimeout"`
	Concurrency int           `long:"concurrency" description:"max concurrently dispatched requests, 1 keeps replies in input order" yaml:"concurrency"`
	LenientList bool          `long:"lenient-list" description:"reply with empty tool list when gateway fails" yaml:"lenientList"`
	Name        string        `long:"name" description:"server name reported by initialize" yaml:"name"`
	Version     string        `long:"version" description:"server version reported by initialize" yaml:"version"`
	LogLevel    string        `long:"log-level" description:"log level" yaml:"logLevel"`
	LogFormat   string        `long:"log-format" description:"log format: text or json" yaml:"logFormat"`
	LogFile     string        `long:"log-file" description:"append logs to file instead of stderr" yaml:"logFile"`
}

// LoadConfig fills options left unset with values from the YAML config file
func (o *Options) LoadConfig(ctx context.Context) error {
	if o.ConfigURL == "" {
		return nil
	}
	data, err := afs.New().DownloadWithURL(ctx, o.ConfigURL)
	if err != nil {
		return fmt.Errorf("failed to load config %v: %w", o.ConfigURL, err)
	}
	config := &Options{}
	if err = yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("invalid config %v: %w", o.ConfigURL, err)
	}
	o.merge(config)
	return nil
}

func (o *Options) merge(config *Options) {
	setString(&o.URL, config.URL)
	setString(&o.Token, config.Token)
	setString(&o.TokenURL, config.TokenURL)
	setString(&o.Secret, config.Secret)
	setString(&o.Key, config.Key)
	setString(&o.Name, config.Name)
	setString(&o.Version, config.Version)
	setString(&o.LogLevel, config.LogLevel)
	setString(&o.LogFormat, config.LogFormat)
	setString(&o.LogFile, config.LogFile)
	if o.ListTimeout == 0 {
		o.ListTimeout = config.ListTimeout
	}
	if o.CallTimeout == 0 {
		o.CallTimeout = config.CallTimeout
	}
	if o.Concurrency == 0 {
		o.Concurrency = config.Concurrency
	}
	o.LenientList = o.LenientList || config.LenientList
}

func setString(target *string, value string) {
	if *target == "" {
		*target = value
	}
}

// Init sets defaults
func (o *Options) Init() {
	setString(&o.URL, DefaultURL)
	setString(&o.Name, router.DefaultServerName)
	setString(&o.Version, router.DefaultServerVersion)
	setString(&o.LogLevel, DefaultLogLevel)
	setString(&o.LogFormat, DefaultLogFormat)
	if o.ListTimeout == 0 {
		o.ListTimeout = gateway.DefaultListTimeout
	}
	if o.CallTimeout == 0 {
		o.CallTimeout = gateway.DefaultCallTimeout
	}
	if o.Concurrency == 0 {
		o.Concurrency = DefaultConcurrency
	}
}

// Validate checks options
func (o *Options) Validate() error {
	URL, err := url.Parse(o.URL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", o.URL, err)
	}
	if URL.Scheme != "http" && URL.Scheme != "https" || URL.Host == "" {
		return fmt.Errorf("invalid url %q: expected http(s)://host[:port]", o.URL)
	}
	if o.ListTimeout < 0 || o.CallTimeout < 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if o.Concurrency < 1 {
		return fmt.Errorf("invalid concurrency %d: expected >= 1", o.Concurrency)
	}
	if _, err = logrus.ParseLevel(o.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(o.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q", o.LogFormat)
	}
	return nil
}
