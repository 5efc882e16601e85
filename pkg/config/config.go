// Package config loads book settings from pageflip.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-drift/pageflip/pkg/animation"
	flerrors "github.com/go-drift/pageflip/pkg/errors"
	"github.com/go-drift/pageflip/pkg/flip"
	"github.com/go-drift/pageflip/pkg/gestures"
	"github.com/go-drift/pageflip/pkg/render"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// FileName is the settings file looked up by LoadOptional.
const FileName = "pageflip.yaml"

// SupportedMajor is the settings schema major version this package reads.
const SupportedMajor = "v1"

// Stretch mode bounds applied when the file leaves them unset.
const (
	defaultMinSize = 100
	defaultMaxSize = 2000
)

// Settings mirrors pageflip.yaml.
type Settings struct {
	Version string `yaml:"version,omitempty"`

	StartPage int    `yaml:"startPage"`
	Size      string `yaml:"size"`

	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	MinWidth  float64 `yaml:"minWidth"`
	MaxWidth  float64 `yaml:"maxWidth"`
	MinHeight float64 `yaml:"minHeight"`
	MaxHeight float64 `yaml:"maxHeight"`

	DrawShadow       bool    `yaml:"drawShadow"`
	FlippingTime     int     `yaml:"flippingTime"` // milliseconds
	UsePortrait      bool    `yaml:"usePortrait"`
	AutoSize         bool    `yaml:"autoSize"`
	MaxShadowOpacity float64 `yaml:"maxShadowOpacity"`
	ShowCover        bool    `yaml:"showCover"`

	MobileScrollSupport bool    `yaml:"mobileScrollSupport"`
	SwipeDistance       float64 `yaml:"swipeDistance"`
	ShowPageCorners     bool    `yaml:"showPageCorners"`
	DisableFlipByClick  bool    `yaml:"disableFlipByClick"`

	// Easing names the animation curve: linear, ease, ease-in, ease-out or
	// ease-in-out. Empty is linear.
	Easing string `yaml:"easing,omitempty"`

	Tuning Tuning `yaml:"tuning"`
}

// Tuning exposes the engine constants. Zero values use the package
// defaults of flip and gestures.
type Tuning struct {
	MinFlatAngle       float64 `yaml:"minFlatAngle,omitempty"`
	HotZoneDivisor     float64 `yaml:"hotZoneDivisor,omitempty"`
	CornerFoldSize     float64 `yaml:"cornerFoldSize,omitempty"`
	ClipMinSeparation  float64 `yaml:"clipMinSeparation,omitempty"`
	StartMarginDivisor float64 `yaml:"startMarginDivisor,omitempty"`
	MoveThreshold      float64 `yaml:"moveThreshold,omitempty"`
	SwipeTimeout       int     `yaml:"swipeTimeout,omitempty"` // milliseconds
}

// Default returns the settings used for keys the file omits. Width and
// Height have no default and must be set.
func Default() Settings {
	return Settings{
		Size:                "fixed",
		DrawShadow:          true,
		FlippingTime:        1000,
		UsePortrait:         true,
		AutoSize:            true,
		MaxShadowOpacity:    1,
		MobileScrollSupport: true,
		SwipeDistance:       30,
		ShowPageCorners:     true,
	}
}

// Parse decodes YAML over the defaults and normalizes the result. Unknown
// keys are rejected.
func Parse(data []byte) (Settings, error) {
	s := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, err
	}
	if err := s.Normalize(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Load reads and validates the settings file at path.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	s, err := Parse(data)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// LoadOptional reads pageflip.yaml from dir if present. Without a file it
// returns the defaults, which are not normalized since they carry no page
// size; found reports which case applied.
func LoadOptional(dir string) (s Settings, found bool, err error) {
	path := filepath.Join(dir, FileName)
	s, err = Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), false, nil
		}
		return Settings{}, false, err
	}
	return s, true, nil
}

// Marshal encodes s as YAML.
func (s Settings) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Normalize validates s and fills the size bounds: stretch mode gets
// defaults for unset or inverted bounds, fixed mode pins them to the page
// size.
func (s *Settings) Normalize() error {
	if err := checkVersion(s.Version); err != nil {
		return err
	}
	size, err := render.ParseSizeMode(s.Size)
	if err != nil {
		return err
	}
	s.Size = size.String()

	if !(s.Width > 0) || !(s.Height > 0) {
		return &flerrors.ValidationError{Field: "width or height", Value: fmt.Sprintf("%vx%v", s.Width, s.Height), Reason: "must be positive"}
	}
	if s.FlippingTime <= 0 {
		return &flerrors.ValidationError{Field: "flippingTime", Value: s.FlippingTime, Reason: "must be positive"}
	}
	if s.StartPage < 0 {
		return &flerrors.ValidationError{Field: "startPage", Value: s.StartPage, Reason: "must not be negative"}
	}
	if s.MaxShadowOpacity < 0 || s.MaxShadowOpacity > 1 {
		return &flerrors.ValidationError{Field: "maxShadowOpacity", Value: s.MaxShadowOpacity, Reason: "must be within [0, 1]"}
	}
	if s.SwipeDistance < 0 {
		return &flerrors.ValidationError{Field: "swipeDistance", Value: s.SwipeDistance, Reason: "must not be negative"}
	}
	if _, err := animation.CurveByName(s.Easing); err != nil {
		return &flerrors.ValidationError{Field: "easing", Value: s.Easing, Reason: err.Error()}
	}
	if err := s.Tuning.validate(); err != nil {
		return err
	}

	if size == render.Stretch {
		if s.MinWidth <= 0 {
			s.MinWidth = defaultMinSize
		}
		if s.MaxWidth < s.MinWidth {
			s.MaxWidth = defaultMaxSize
		}
		if s.MinHeight <= 0 {
			s.MinHeight = defaultMinSize
		}
		if s.MaxHeight < s.MinHeight {
			s.MaxHeight = defaultMaxSize
		}
	} else {
		s.MinWidth, s.MaxWidth = s.Width, s.Width
		s.MinHeight, s.MaxHeight = s.Height, s.Height
	}
	return nil
}

func (t Tuning) validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"tuning.minFlatAngle", t.MinFlatAngle},
		{"tuning.hotZoneDivisor", t.HotZoneDivisor},
		{"tuning.cornerFoldSize", t.CornerFoldSize},
		{"tuning.clipMinSeparation", t.ClipMinSeparation},
		{"tuning.startMarginDivisor", t.StartMarginDivisor},
		{"tuning.moveThreshold", t.MoveThreshold},
		{"tuning.swipeTimeout", float64(t.SwipeTimeout)},
	}
	for _, f := range fields {
		if f.v < 0 {
			return &flerrors.ValidationError{Field: f.name, Value: f.v, Reason: "must not be negative"}
		}
	}
	return nil
}

// checkVersion accepts an empty version or any v1 semantic version, with
// or without the leading v.
func checkVersion(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	canon := v
	if !strings.HasPrefix(canon, "v") {
		canon = "v" + canon
	}
	if !semver.IsValid(canon) {
		return &flerrors.ValidationError{Field: "version", Value: v, Reason: "must be a semantic version"}
	}
	if semver.Major(canon) != SupportedMajor {
		return &flerrors.ValidationError{Field: "version", Value: v, Reason: "unsupported major version, want " + SupportedMajor}
	}
	return nil
}

// FlippingDuration returns FlippingTime as a duration.
func (s Settings) FlippingDuration() time.Duration {
	return time.Duration(s.FlippingTime) * time.Millisecond
}

// FlipOptions returns the controller options.
func (s Settings) FlipOptions() flip.Options {
	return flip.Options{
		FlippingTime:       s.FlippingDuration(),
		DisableFlipByClick: s.DisableFlipByClick,
		HotZoneDivisor:     s.Tuning.HotZoneDivisor,
		CornerFoldSize:     s.Tuning.CornerFoldSize,
		StartMarginDivisor: s.Tuning.StartMarginDivisor,
		MinFlatAngle:       s.Tuning.MinFlatAngle,
		ClipMinSeparation:  s.Tuning.ClipMinSeparation,
	}
}

// RenderOptions returns the render options. s must be normalized.
func (s Settings) RenderOptions() (render.Options, error) {
	size, err := render.ParseSizeMode(s.Size)
	if err != nil {
		return render.Options{}, err
	}
	curve, err := animation.CurveByName(s.Easing)
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{
		Size:             size,
		Width:            s.Width,
		Height:           s.Height,
		MinWidth:         s.MinWidth,
		MaxWidth:         s.MaxWidth,
		MinHeight:        s.MinHeight,
		MaxHeight:        s.MaxHeight,
		UsePortrait:      s.UsePortrait,
		DrawShadow:       s.DrawShadow,
		MaxShadowOpacity: s.MaxShadowOpacity,
		Curve:            curve,
	}, nil
}

// GestureOptions returns the input recognizer options.
func (s Settings) GestureOptions() gestures.Options {
	return gestures.Options{
		SwipeDistance: s.SwipeDistance,
		SwipeTimeout:  time.Duration(s.Tuning.SwipeTimeout) * time.Millisecond,
		ScrollSupport: s.MobileScrollSupport,
	}
}
