// Package cutconfig loads the configuration of one diamond upgrade.
//
// The file is JSON or YAML; both are decoded with yaml.v3 so init call
// arguments keep their exact textual form until they are ABI-encoded.
package cutconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rmacdonaldsmith/diamondcut-go/pkg/diamondcut"
)

var (
	// ErrEmptyDiamond is returned when no diamond address is configured
	ErrEmptyDiamond = errors.New("diamond address cannot be empty")
	// ErrInvalidAddress is returned for addresses that are not 20-byte hex
	ErrInvalidAddress = errors.New("invalid address")
	// ErrMissingInitAddress is returned when an initializer is configured without an address
	ErrMissingInitAddress = errors.New("init address is required when init is configured")
	// ErrIncompleteInit is returned when init names a contract without a method or vice versa
	ErrIncompleteInit = errors.New("init requires both contract and method")
)

// configValidate checks the struct tags of Config and InitConfig
var configValidate = validator.New()

// InitConfig describes the initializer called after the cut
type InitConfig struct {
	// Contract whose artifact ABI encodes Method
	Contract string `yaml:"contract"`

	// Method is the initializer function name
	Method string `yaml:"method"`

	// Args are the method arguments, kept as raw nodes until encoding
	Args []yaml.Node `yaml:"args"`

	// Calldata is pre-encoded call data; it wins over Contract/Method when set
	Calldata string `yaml:"calldata"`

	// Address of the deployed initializer; the --init-address flag overrides it
	Address string `yaml:"address" validate:"omitempty,eth_addr"`
}

// HasCalldata reports whether explicit call data is configured
func (c *InitConfig) HasCalldata() bool {
	return c.Calldata != "" && c.Calldata != "0x"
}

// Config represents the configuration of one diamond cut
type Config struct {
	// Diamond is the diamond being upgraded
	Diamond string `yaml:"diamond" validate:"required,eth_addr"`

	// Facets names the facet contracts being deployed; informational
	Facets []string `yaml:"facets" validate:"dive,required"`

	// DeleteAllOldMethods removes deployed selectors no desired facet serves
	DeleteAllOldMethods bool `yaml:"deleteAllOldMethods"`

	// DeleteSelectorSigs lists selectors or signatures to remove
	DeleteSelectorSigs []string `yaml:"deleteSelectorSigs" validate:"dive,required"`

	// Init configures the optional initializer
	Init *InitConfig `yaml:"init"`

	// Execute asks the submitter to send the transaction; not used by planning
	Execute bool `yaml:"execute"`
}

// NewConfig creates a configuration for a diamond with no deletions and no initializer
func NewConfig(diamond string) *Config {
	return &Config{
		Diamond:            diamond,
		DeleteSelectorSigs: []string{},
	}
}

// Load reads a JSON or YAML configuration file
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a JSON or YAML configuration document
func Parse(raw []byte) (*Config, error) {
	cfg := NewConfig("")
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("%w: config: %v", diamondcut.ErrMalformedInput, err)
	}
	if cfg.DeleteSelectorSigs == nil {
		cfg.DeleteSelectorSigs = []string{}
	}
	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Diamond) == "" {
		return ErrEmptyDiamond
	}
	if err := configValidate.Struct(c); err != nil {
		return validationError(err)
	}
	if c.Init != nil && !c.Init.HasCalldata() && (c.Init.Contract == "") != (c.Init.Method == "") {
		return ErrIncompleteInit
	}
	return nil
}

// validationError maps the first failed tag onto a package sentinel
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	if fe.Tag() == "eth_addr" {
		return fmt.Errorf("%w: %s %q", ErrInvalidAddress, fe.Namespace(), fe.Value())
	}
	return fmt.Errorf("%w: %s failed %q check", diamondcut.ErrMalformedInput, fe.Namespace(), fe.Tag())
}

// WithDiamond sets the diamond address
func (c *Config) WithDiamond(diamond string) *Config {
	c.Diamond = diamond
	return c
}

// WithInitAddress overrides the initializer address. It has no effect when
// no init section is configured.
func (c *Config) WithInitAddress(addr string) *Config {
	if c.Init != nil && addr != "" {
		c.Init.Address = addr
	}
	return c
}

// DiamondAddress returns the configured diamond address
func (c *Config) DiamondAddress() common.Address {
	return common.HexToAddress(c.Diamond)
}

// Request assembles the planner request for the given desired facets
func (c *Config) Request(facets []diamondcut.FacetInput, init *diamondcut.Init) diamondcut.Request {
	deleteMethods := make([]string, len(c.DeleteSelectorSigs))
	copy(deleteMethods, c.DeleteSelectorSigs)
	return diamondcut.Request{
		Diamond:             c.DiamondAddress(),
		Facets:              facets,
		DeleteAllOldMethods: c.DeleteAllOldMethods,
		DeleteMethods:       deleteMethods,
		Init:                init,
	}
}
