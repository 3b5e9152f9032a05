// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchplot

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/fpbench/benchgroup"
	"golang.org/x/fpbench/benchseries"
	"gopkg.in/yaml.v3"
)

// A Config is a list of figure definitions.
type Config struct {
	Figures []*FigureConfig `yaml:"figures" validate:"required,min=1,dive"`
}

// Figure returns the definition of the named figure, or nil.
func (c *Config) Figure(name string) *FigureConfig {
	for _, f := range c.Figures {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Names returns the names of c's figures in definition order.
func (c *Config) Names() []string {
	names := make([]string, len(c.Figures))
	for i, f := range c.Figures {
		names[i] = f.Name
	}
	return names
}

// Figure kinds.
const (
	KindCurve = "curve"
	KindBar   = "bar"
)

// Normalization modes.
const (
	ModeNone      = "none"
	ModeColumn    = "column"
	ModeReference = "reference"
	ModeScalar    = "scalar"
	ModePairwise  = "pairwise"
)

// A FigureConfig defines one figure: which log to load, how to group
// and average it, how to normalize the means, and how to chart them.
type FigureConfig struct {
	Name       string `yaml:"name" validate:"required"`
	Experiment string `yaml:"experiment" validate:"required"`

	// Input is the log to load, resolved against the pipeline's
	// directory. It defaults to the experiment name plus ".csv".
	Input string `yaml:"input"`

	Kind string `yaml:"kind" validate:"required,oneof=curve bar"`

	// Where keeps only the rows whose categorical column has the given
	// value. A value may name a level of the column.
	Where map[string]string `yaml:"where"`

	// GroupBy lists the columns rows are grouped by before averaging.
	// For curves it defaults to X.
	GroupBy  []string `yaml:"group_by"`
	KeyOrder string   `yaml:"key_order" validate:"omitempty,oneof=first sorted sort"`

	// X is the categorical column that gives the x position of curve
	// points.
	X string `yaml:"x"`

	Series []SeriesConfig `yaml:"series" validate:"required,min=1,dive"`

	// Categories are the bar clusters. Each bar series has one column
	// per category.
	Categories []string `yaml:"categories"`
	BarWidth   float64  `yaml:"bar_width" validate:"gte=0,lte=1"`

	Normalize NormalizeConfig `yaml:"normalize"`
	Axis      AxisConfig      `yaml:"axis"`

	// Facet, if set, makes one figure per level of this categorical
	// column. "{facet}" in the title is replaced by the level.
	Facet string `yaml:"facet"`
}

// A SeriesConfig is one curve or one series of bars.
type SeriesConfig struct {
	Label   string   `yaml:"label" validate:"required"`
	Column  string   `yaml:"column"`
	Columns []string `yaml:"columns"`
}

// A NormalizeConfig selects the baseline measurements are divided by.
type NormalizeConfig struct {
	Mode string `yaml:"mode" validate:"omitempty,oneof=none column reference scalar pairwise"`

	// Baseline is the column of mode "column".
	Baseline string `yaml:"baseline"`

	// Value is the divisor of mode "scalar".
	Value float64 `yaml:"value"`

	// Split, Numerator and Denominator select the two subsets of mode
	// "pairwise": the rows whose Split column is Numerator are divided,
	// point by point, by the rows whose Split column is Denominator.
	Split       string `yaml:"split"`
	Numerator   string `yaml:"numerator"`
	Denominator string `yaml:"denominator"`

	Invert bool `yaml:"invert"`
}

// An AxisConfig holds the decorations of a figure.
type AxisConfig struct {
	Title      string              `yaml:"title"`
	XLabel     string              `yaml:"x_label"`
	YLabel     string              `yaml:"y_label"`
	XScale     benchseries.Scale   `yaml:"x_scale"`
	XLimits    *benchseries.Limits `yaml:"x_limits"`
	YLimits    *benchseries.Limits `yaml:"y_limits"`
	RatioTicks bool                `yaml:"ratio_ticks"`
}

func (fc *FigureConfig) input() string {
	if fc.Input != "" {
		return fc.Input
	}
	return fc.Experiment + ".csv"
}

func (fc *FigureConfig) mode() string {
	if fc.Normalize.Mode == "" {
		return ModeNone
	}
	return fc.Normalize.Mode
}

func (fc *FigureConfig) groupBy() []string {
	if fc.GroupBy == nil && fc.Kind == KindCurve {
		return []string{fc.X}
	}
	return fc.GroupBy
}

func (fc *FigureConfig) order() benchgroup.Order {
	o, err := benchgroup.ParseOrder(fc.KeyOrder)
	if err != nil {
		panic(err) // ruled out by validation
	}
	return o
}

// columns returns the measurement columns fc averages, without
// duplicates, in order of first use.
func (fc *FigureConfig) columns() []string {
	var cols []string
	seen := make(map[string]bool)
	add := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	for _, s := range fc.Series {
		add(s.Column)
		for _, c := range s.Columns {
			add(c)
		}
	}
	if fc.mode() == ModeColumn {
		add(fc.Normalize.Baseline)
	}
	return cols
}

// check reports inconsistencies between fields of fc that struct tags
// cannot express.
func (fc *FigureConfig) check() error {
	var errs []string
	bad := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}
	switch fc.Kind {
	case KindCurve:
		if fc.X == "" {
			bad("curve figure needs x")
		}
		inGroup := false
		for _, c := range fc.groupBy() {
			inGroup = inGroup || c == fc.X
		}
		if fc.X != "" && !inGroup {
			bad("x %q is not in group_by", fc.X)
		}
		for _, s := range fc.Series {
			if s.Column == "" || len(s.Columns) > 0 {
				bad("curve series %q needs exactly one column", s.Label)
			}
		}
		if len(fc.Categories) > 0 {
			bad("curve figure has categories")
		}
	case KindBar:
		if len(fc.Categories) == 0 {
			bad("bar figure needs categories")
		}
		for _, s := range fc.Series {
			if s.Column != "" || len(s.Columns) != len(fc.Categories) {
				bad("bar series %q needs one column per category (%d)", s.Label, len(fc.Categories))
			}
		}
		if fc.X != "" {
			bad("bar figure has x")
		}
		if fc.mode() == ModePairwise {
			bad("bar figure cannot be normalized pairwise")
		}
		if fc.Axis.XScale == benchseries.Log {
			bad("bar figure cannot have a log x scale")
		}
	}

	n := fc.Normalize
	switch fc.mode() {
	case ModeColumn:
		if n.Baseline == "" {
			bad("normalize mode column needs baseline")
		}
	case ModeScalar:
		if n.Value == 0 {
			bad("normalize mode scalar needs a non-zero value")
		}
	case ModePairwise:
		if n.Split == "" || n.Numerator == "" || n.Denominator == "" {
			bad("normalize mode pairwise needs split, numerator and denominator")
		}
		if n.Numerator == n.Denominator {
			bad("pairwise numerator and denominator are both %q", n.Numerator)
		}
		for _, c := range fc.groupBy() {
			if c == n.Split {
				bad("pairwise split %q cannot be grouped by", c)
			}
		}
	}
	if fc.mode() != ModePairwise && (n.Split != "" || n.Numerator != "" || n.Denominator != "") {
		bad("split, numerator and denominator need normalize mode pairwise")
	}
	if fc.mode() == ModeNone && n.Invert {
		bad("invert needs a normalize mode")
	}
	if fc.Facet != "" && fc.Facet == n.Split {
		bad("facet %q is also the pairwise split", fc.Facet)
	}
	if len(errs) > 0 {
		return fmt.Errorf("figure %s: %s", fc.Name, strings.Join(errs, "; "))
	}
	return nil
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// Validate checks c for missing fields, bad values, duplicate figure
// names and inconsistent figure definitions.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	seen := make(map[string]bool)
	var errs []error
	for _, f := range c.Figures {
		if seen[f.Name] {
			errs = append(errs, fmt.Errorf("duplicate figure %s", f.Name))
		}
		seen[f.Name] = true
		if err := f.check(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, len(verrs))
	for i, e := range verrs {
		msgs[i] = formatFieldError(e)
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.TrimPrefix(e.Namespace(), "Config.")
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", field)
	}
	return fmt.Sprintf("%s is invalid", field)
}

// Parse decodes and validates a YAML configuration. Unknown fields are
// errors.
func Parse(r io.Reader) (*Config, error) {
	cfg := new(Config)
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty configuration")
		}
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

//go:embed figures.yaml
var defaultConfig []byte

// Default returns the built-in figure definitions, which chart the
// logs of every floating-point precision experiment.
func Default() *Config {
	cfg, err := Parse(bytes.NewReader(defaultConfig))
	if err != nil {
		panic(err)
	}
	return cfg
}
