package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical engine defaults file.
const DefaultConfigPath = "config/engine.defaults.json"

// EngineConfig represents the root configuration for the tomographic
// protocol engine. The schema matches the /api/engine/params endpoint so
// the same JSON can be used for both startup configuration and runtime
// updates. Fields omitted from the JSON retain their defaults, so partial
// configs are safe.
type EngineConfig struct {
	// Grid params
	GridSize     *int `json:"grid_size,omitempty"`     // coordinate range N; capacity is N^3
	SparseFactor *int `json:"sparse_factor,omitempty"` // 1/sparse_factor of slots are active

	// Wave synthesis params
	Harmonics *int `json:"harmonics,omitempty"` // odd-harmonic count for square wave

	// Derivative tracing params
	TraceEpsilon *float64  `json:"trace_epsilon,omitempty"` // termination threshold
	PolyCoeffs   []float64 `json:"poly_coeffs,omitempty"`   // c0..c3 of the trace polynomial

	// Protocol params
	RiskThreshold  *float64 `json:"risk_threshold,omitempty"`  // attack_risk balance verdict cutoff
	PacketCapacity *int     `json:"packet_capacity,omitempty"` // max packet bytes per cycle

	// Entropy params
	Seed *int64 `json:"seed,omitempty"` // RNG seed; 0 selects a fixed default
}

// EmptyEngineConfig returns an EngineConfig with all fields set to nil.
func EmptyEngineConfig() *EngineConfig {
	return &EngineConfig{}
}

// LoadEngineConfig loads an EngineConfig from a JSON file. The file is
// validated to ensure it has a .json extension and is under the max file size.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyEngineConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *EngineConfig) Validate() error {
	if c.GridSize != nil && *c.GridSize < 1 {
		return fmt.Errorf("grid_size must be positive, got %d", *c.GridSize)
	}
	if c.SparseFactor != nil && *c.SparseFactor < 1 {
		return fmt.Errorf("sparse_factor must be positive, got %d", *c.SparseFactor)
	}
	if c.Harmonics != nil {
		if *c.Harmonics < 1 {
			return fmt.Errorf("harmonics must be >= 1, got %d", *c.Harmonics)
		}
		if *c.Harmonics%2 == 0 {
			return fmt.Errorf("harmonics must be odd, got %d", *c.Harmonics)
		}
	}
	if c.TraceEpsilon != nil && *c.TraceEpsilon <= 0 {
		return fmt.Errorf("trace_epsilon must be positive, got %g", *c.TraceEpsilon)
	}
	if c.PolyCoeffs != nil && len(c.PolyCoeffs) != 4 {
		return fmt.Errorf("poly_coeffs must have exactly 4 entries, got %d", len(c.PolyCoeffs))
	}
	if c.RiskThreshold != nil {
		if *c.RiskThreshold < 0 || *c.RiskThreshold > 1 {
			return fmt.Errorf("risk_threshold must be between 0 and 1, got %f", *c.RiskThreshold)
		}
	}
	if c.PacketCapacity != nil && *c.PacketCapacity < 1 {
		return fmt.Errorf("packet_capacity must be positive, got %d", *c.PacketCapacity)
	}
	return nil
}

// GetGridSize returns the grid_size value or the default.
func (c *EngineConfig) GetGridSize() int {
	if c.GridSize == nil {
		return 10
	}
	return *c.GridSize
}

// GetSparseFactor returns the sparse_factor value or the default.
func (c *EngineConfig) GetSparseFactor() int {
	if c.SparseFactor == nil {
		return 4 // 1/4 active
	}
	return *c.SparseFactor
}

// GetHarmonics returns the harmonics value or the default.
func (c *EngineConfig) GetHarmonics() int {
	if c.Harmonics == nil {
		return 9
	}
	return *c.Harmonics
}

// GetTraceEpsilon returns the trace_epsilon value or the default.
func (c *EngineConfig) GetTraceEpsilon() float64 {
	if c.TraceEpsilon == nil {
		return 1e-10
	}
	return *c.TraceEpsilon
}

// GetPolyCoeffs returns the polynomial coefficients or the default (4,3,2,1).
func (c *EngineConfig) GetPolyCoeffs() [4]float64 {
	if c.PolyCoeffs == nil || len(c.PolyCoeffs) != 4 {
		return [4]float64{4, 3, 2, 1}
	}
	var out [4]float64
	copy(out[:], c.PolyCoeffs)
	return out
}

// GetRiskThreshold returns the risk_threshold value or the default.
func (c *EngineConfig) GetRiskThreshold() float64 {
	if c.RiskThreshold == nil {
		return 0.1
	}
	return *c.RiskThreshold
}

// GetPacketCapacity returns the packet_capacity value or the default.
func (c *EngineConfig) GetPacketCapacity() int {
	if c.PacketCapacity == nil {
		return 256
	}
	return *c.PacketCapacity
}

// GetSeed returns the seed value or the default.
func (c *EngineConfig) GetSeed() int64 {
	if c.Seed == nil || *c.Seed == 0 {
		return 1
	}
	return *c.Seed
}
