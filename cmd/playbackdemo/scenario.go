package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/baxromumarov/playback/tween"
	"gopkg.in/yaml.v3"
)

// Scenario describes a batch of animations started together.
type Scenario struct {
	FPS        int             `yaml:"fps"`
	Collect    bool            `yaml:"collect"`
	Animations []AnimationSpec `yaml:"animations"`
}

// AnimationSpec describes one animated property. Properties starting with
// "--" are written as custom properties.
type AnimationSpec struct {
	Property string  `yaml:"property"`
	From     float64 `yaml:"from"`
	To       float64 `yaml:"to"`
	Duration string  `yaml:"duration"`
	Easing   string  `yaml:"easing"`

	// Skip leaves the slot empty, as for a property with nothing to animate.
	Skip bool `yaml:"skip"`

	// Fail, when set, makes the animation fail halfway with this message.
	Fail string `yaml:"fail"`

	duration time.Duration
	easing   tween.Easing
}

const maxFPS = 1000

var defaultScenario = Scenario{
	FPS: 60,
	Animations: []AnimationSpec{
		{Property: "opacity", From: 0, To: 1, Duration: "400ms", Easing: "easeOut"},
		{Property: "x", Skip: true},
		{Property: "translateY", From: 40, To: 0, Duration: "600ms", Easing: "easeInOut"},
		{Property: "--accent-hue", From: 200, To: 320, Duration: "500ms"},
	},
}

var easings = map[string]tween.Easing{
	"":          tween.Linear,
	"linear":    tween.Linear,
	"easeIn":    tween.EaseIn,
	"easeOut":   tween.EaseOut,
	"easeInOut": tween.EaseInOut,
}

func loadScenario(path string) (Scenario, error) {
	if path == "" {
		sc := defaultScenario
		sc.Animations = append([]AnimationSpec(nil), defaultScenario.Animations...)
		return sc, sc.validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to read scenario: %w", err)
	}
	return parseScenario(data)
}

func parseScenario(data []byte) (Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := sc.validate(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

func (sc *Scenario) validate() error {
	if sc.FPS == 0 {
		sc.FPS = 60
	}
	if sc.FPS < 0 || sc.FPS > maxFPS {
		return fmt.Errorf("fps must be between 1 and %d, got %d", maxFPS, sc.FPS)
	}

	var errs []error
	for i := range sc.Animations {
		a := &sc.Animations[i]
		if a.Property == "" {
			errs = append(errs, fmt.Errorf("animation %d: property is required", i))
			continue
		}
		if a.Skip {
			continue
		}

		d, err := time.ParseDuration(a.Duration)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("animation %q: %w", a.Property, err))
		case d <= 0:
			errs = append(errs, fmt.Errorf("animation %q: duration must be positive", a.Property))
		}
		a.duration = d

		e, ok := easings[a.Easing]
		if !ok {
			errs = append(errs, fmt.Errorf("animation %q: unknown easing %q", a.Property, a.Easing))
		}
		a.easing = e
	}
	return errors.Join(errs...)
}
