package config

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalid is returned by Validate for settings the viewer cannot run with.
var ErrInvalid = errors.New("invalid settings")

// Settings holds all tunables of a viewer session.
type Settings struct {
	Spawn    Spawn    `yaml:"spawn"`
	Physics  Physics  `yaml:"physics"`
	Viewport Viewport `yaml:"viewport"`
	Render   Render   `yaml:"render"`
}

// Spawn configures the object spawner
type Spawn struct {
	IntervalMS  int     `yaml:"interval_ms"`
	BudgetMin   int     `yaml:"budget_min"`
	BudgetMax   int     `yaml:"budget_max"`
	TargetSize  float64 `yaml:"target_size"` // longest bounding-box axis after normalization
	DropHeight  float64 `yaml:"drop_height"`
	Jitter      float64 `yaml:"jitter"` // max X/Z offset from the spawn point
	Mass        float64 `yaml:"mass"`
	Restitution float64 `yaml:"restitution"`
	Friction    float64 `yaml:"friction"`
}

// Physics configures the physics world and how the render loop steps it
type Physics struct {
	Gravity          float64 `yaml:"gravity"`
	FixedStep        float64 `yaml:"fixed_step"`
	MaxSubsteps      int     `yaml:"max_substeps"`
	FloorY           float64 `yaml:"floor_y"`
	FloorRestitution float64 `yaml:"floor_restitution"`
	FloorFriction    float64 `yaml:"floor_friction"`
	FloorSize        float64 `yaml:"floor_size"`
}

// Viewport configures camera placement
type Viewport struct {
	FOV             float64 `yaml:"fov"`
	Near            float64 `yaml:"near"`
	Far             float64 `yaml:"far"`
	CameraHeight    float64 `yaml:"camera_height"`
	CameraDistance  float64 `yaml:"camera_distance"`
	WideOffsetRatio float64 `yaml:"wide_offset_ratio"` // fraction of the window width the wide layout shifts to
	PixelsPerUnit   float64 `yaml:"pixels_per_unit"`
}

// Render configures the GL backend and the host frame loop
type Render struct {
	ShadersDir string     `yaml:"shaders_dir"`
	ClearColor [4]float32 `yaml:"clear_color"`
	ShowFloor  bool       `yaml:"show_floor"`
	ShowStats  bool       `yaml:"show_stats"`
	FPSLimit   int        `yaml:"fps_limit"` // 0 = uncapped
}

// Default returns the settings the viewer ships with.
func Default() Settings {
	return Settings{
		Spawn: Spawn{
			IntervalMS:  500,
			BudgetMin:   1,
			BudgetMax:   3,
			TargetSize:  2,
			DropHeight:  10,
			Jitter:      0.5,
			Mass:        1,
			Restitution: 0.8,
			Friction:    0.3,
		},
		Physics: Physics{
			Gravity:          -9.82,
			FixedStep:        1.0 / 60.0,
			MaxSubsteps:      3,
			FloorY:           -5,
			FloorRestitution: 0.5,
			FloorFriction:    1,
			FloorSize:        100,
		},
		Viewport: Viewport{
			FOV:             75,
			Near:            0.1,
			Far:             1000,
			CameraHeight:    5,
			CameraDistance:  15,
			WideOffsetRatio: 0.7,
			PixelsPerUnit:   100,
		},
		Render: Render{
			ShadersDir: "assets/shaders",
			ClearColor: [4]float32{0, 0, 0, 0},
			FPSLimit:   120,
		},
	}
}

// Validate reports the first setting that is out of range.
func (s Settings) Validate() error {
	checks := []struct {
		ok   bool
		what string
	}{
		{s.Spawn.IntervalMS > 0, "spawn.interval_ms must be positive"},
		{s.Spawn.BudgetMin >= 0, "spawn.budget_min must not be negative"},
		{s.Spawn.BudgetMax >= s.Spawn.BudgetMin, "spawn.budget_max must be >= spawn.budget_min"},
		{positive(s.Spawn.TargetSize), "spawn.target_size must be positive"},
		{positive(s.Spawn.Mass), "spawn.mass must be positive"},
		{s.Spawn.Restitution >= 0 && s.Spawn.Restitution <= 1, "spawn.restitution must be in [0,1]"},
		{s.Spawn.Friction >= 0, "spawn.friction must not be negative"},
		{s.Spawn.Jitter >= 0, "spawn.jitter must not be negative"},
		{positive(s.Physics.FixedStep), "physics.fixed_step must be positive"},
		{s.Physics.MaxSubsteps >= 1, "physics.max_substeps must be at least 1"},
		{s.Physics.FloorRestitution >= 0 && s.Physics.FloorRestitution <= 1, "physics.floor_restitution must be in [0,1]"},
		{s.Physics.FloorFriction >= 0, "physics.floor_friction must not be negative"},
		{positive(s.Physics.FloorSize), "physics.floor_size must be positive"},
		{s.Spawn.DropHeight > s.Physics.FloorY, "spawn.drop_height must be above physics.floor_y"},
		{s.Viewport.FOV > 0 && s.Viewport.FOV < 180, "viewport.fov must be in (0,180)"},
		{positive(s.Viewport.Near) && s.Viewport.Far > s.Viewport.Near, "viewport.near/far must satisfy 0 < near < far"},
		{positive(s.Viewport.PixelsPerUnit), "viewport.pixels_per_unit must be positive"},
		{s.Render.FPSLimit >= 0, "render.fps_limit must not be negative"},
	}
	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("%w: %s", ErrInvalid, c.what)
		}
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
