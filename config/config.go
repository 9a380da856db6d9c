package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settle strategies understood by the pagination driver
const (
	SettleFixed  = "fixed"
	SettleChange = "change"
)

// Selectors holds the CSS selectors used to read the grid. Defaults match AG Grid.
type Selectors struct {
	RowContainer  string `yaml:"row_container"`
	Row           string `yaml:"row"`
	Cell          string `yaml:"cell"`
	ColumnAttr    string `yaml:"column_attr"`
	Value         string `yaml:"value"`
	NestedValue   string `yaml:"nested_value"`
	FirstButton   string `yaml:"first_button"`
	NextButton    string `yaml:"next_button"`
	DisabledClass string `yaml:"disabled_class"`
}

// PaginationConfig controls how many pages are read and how long to wait between them
type PaginationConfig struct {
	MaxPages      int           `yaml:"max_pages"` // 0 means no limit
	FirstDelay    time.Duration `yaml:"first_delay"`
	NextDelay     time.Duration `yaml:"next_delay"`
	Settle        string        `yaml:"settle"`
	SettleTimeout time.Duration `yaml:"settle_timeout"`
	PollInterval  time.Duration `yaml:"poll_interval"`
}

// BrowserConfig configures the headless browser used for live scraping
type BrowserConfig struct {
	Headless    bool          `yaml:"headless"`
	Bin         string        `yaml:"bin"`
	UserDataDir string        `yaml:"user_data_dir"`
	ControlURL  string        `yaml:"control_url"` // attach to a running browser instead of launching one
	LoadTimeout time.Duration `yaml:"load_timeout"`
}

// OutputConfig configures where records go once gathered
type OutputConfig struct {
	Format         string `yaml:"format"`
	XLSXPath       string `yaml:"xlsx"`
	SpreadsheetURL string `yaml:"spreadsheet"`
	Credentials    string `yaml:"credentials"`
}

// Config is the full scraper configuration
type Config struct {
	URL        string            `yaml:"url"`
	Selectors  Selectors         `yaml:"selectors"`
	Pagination PaginationConfig  `yaml:"pagination"`
	Browser    BrowserConfig     `yaml:"browser"`
	Output     OutputConfig      `yaml:"output"`
	Filters    map[string]string `yaml:"filters"`
}

// LoadConfig loads configuration from a YAML file on top of the defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadConfigOrDefault loads the file at path, falling back to defaults when it does not exist
func LoadConfigOrDefault(path string) (*Config, error) {
	if path == "" {
		return GetDefaultConfig(), nil
	}
	cfg, err := LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		return GetDefaultConfig(), nil
	}
	return cfg, err
}

// DefaultSelectors returns the AG Grid selectors
func DefaultSelectors() Selectors {
	return Selectors{
		RowContainer:  ".ag-center-cols-container",
		Row:           ".ag-row",
		Cell:          ".ag-cell",
		ColumnAttr:    "col-id",
		Value:         ".ag-cell-value",
		NestedValue:   "div",
		FirstButton:   `[ref="btFirst"]`,
		NextButton:    `[ref="btNext"]`,
		DisabledClass: "ag-disabled",
	}
}

// GetDefaultConfig returns a default configuration
func GetDefaultConfig() *Config {
	return &Config{
		Selectors: DefaultSelectors(),
		Pagination: PaginationConfig{
			MaxPages:      0,
			FirstDelay:    500 * time.Millisecond,
			NextDelay:     1000 * time.Millisecond,
			Settle:        SettleFixed,
			SettleTimeout: 10 * time.Second,
			PollInterval:  100 * time.Millisecond,
		},
		Browser: BrowserConfig{
			Headless:    true,
			LoadTimeout: 30 * time.Second,
		},
		Output: OutputConfig{
			Format: "json",
		},
	}
}

// Validate checks the configuration for values the scraper cannot work with
func (c *Config) Validate() error {
	if c.Pagination.MaxPages < 0 {
		return fmt.Errorf("max_pages must be 0 (no limit) or positive, got %d", c.Pagination.MaxPages)
	}
	if c.Pagination.FirstDelay < 0 || c.Pagination.NextDelay < 0 {
		return fmt.Errorf("settle delays must not be negative")
	}
	switch c.Pagination.Settle {
	case SettleFixed:
	case SettleChange:
		if c.Pagination.PollInterval <= 0 {
			return fmt.Errorf("poll_interval must be positive for the %q settle strategy", SettleChange)
		}
	default:
		return fmt.Errorf("unknown settle strategy %q", c.Pagination.Settle)
	}
	switch c.Output.Format {
	case "json", "table":
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}
	s := c.Selectors
	if s.RowContainer == "" || s.Row == "" || s.Cell == "" || s.ColumnAttr == "" {
		return fmt.Errorf("row_container, row, cell and column_attr selectors are required")
	}
	return nil
}
