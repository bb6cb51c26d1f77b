package prefs

import (
	"image-processor/internal/engine"
)

// Preference keys.
const (
	keyLastImagePath   = "lastImagePath"
	keyDefaultDir      = "defaultDir"
	keyGaussianSigma   = "gaussianSigma"
	keyLaplacianKernel = "laplacianKernel"
	keyThreshold       = "binarizationThreshold"
	keyOtsu            = "binarizationOtsu"
	keyDilationKernel  = "dilationKernel"
	keyErosionKernel   = "erosionKernel"
	keyMedianKernel    = "medianKernel"
	keyHistoryCapacity = "historyCapacity"
	keyTheme           = "theme"
)

// Theme names.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Settings is the typed view of the editor preferences.
type Settings struct {
	LastImagePath string
	DefaultDir    string
	Params        engine.Params
	// HistoryCapacity bounds the undo stack; 0 keeps every step.
	HistoryCapacity int
	Theme           string
}

// DefaultSettings returns the settings used before anything is saved.
func DefaultSettings() Settings {
	return Settings{
		Params: engine.DefaultParams(),
		Theme:  ThemeDark,
	}
}

// Validate rejects settings the engine could not run with.
func (s Settings) Validate() error {
	if s.HistoryCapacity < 0 {
		return &engine.ValidationError{Field: "history capacity", Value: s.HistoryCapacity, Reason: "must not be negative"}
	}
	return s.Params.Validate()
}

// ReadSettings reads the settings from p, using defaults for missing keys.
func ReadSettings(p *Prefs) Settings {
	d := DefaultSettings()
	s := Settings{
		LastImagePath: p.String(keyLastImagePath),
		DefaultDir:    p.String(keyDefaultDir),
		Params: engine.Params{
			GaussianSigma:         p.FloatWithFallback(keyGaussianSigma, d.Params.GaussianSigma),
			LaplacianKernel:       p.Int(keyLaplacianKernel, d.Params.LaplacianKernel),
			BinarizationThreshold: p.Int(keyThreshold, d.Params.BinarizationThreshold),
			Otsu:                  p.Bool(keyOtsu, d.Params.Otsu),
			DilationKernel:        p.Int(keyDilationKernel, d.Params.DilationKernel),
			ErosionKernel:         p.Int(keyErosionKernel, d.Params.ErosionKernel),
			MedianKernel:          p.Int(keyMedianKernel, d.Params.MedianKernel),
		},
		HistoryCapacity: p.Int(keyHistoryCapacity, d.HistoryCapacity),
		Theme:           p.String(keyTheme),
	}
	if s.Theme == "" {
		s.Theme = d.Theme
	}
	return s
}

// WriteSettings validates s and stores it in p. Nothing is written when
// validation fails. Call Save to persist.
func WriteSettings(p *Prefs, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	p.SetString(keyLastImagePath, s.LastImagePath)
	p.SetString(keyDefaultDir, s.DefaultDir)
	p.SetFloat(keyGaussianSigma, s.Params.GaussianSigma)
	p.SetInt(keyLaplacianKernel, s.Params.LaplacianKernel)
	p.SetInt(keyThreshold, s.Params.BinarizationThreshold)
	p.SetBool(keyOtsu, s.Params.Otsu)
	p.SetInt(keyDilationKernel, s.Params.DilationKernel)
	p.SetInt(keyErosionKernel, s.Params.ErosionKernel)
	p.SetInt(keyMedianKernel, s.Params.MedianKernel)
	p.SetInt(keyHistoryCapacity, s.HistoryCapacity)
	p.SetString(keyTheme, s.Theme)
	return nil
}

// SaveLastImagePath records path and persists the preferences.
func SaveLastImagePath(p *Prefs, path string) error {
	p.SetString(keyLastImagePath, path)
	return p.Save()
}
