// Package services contains application services for the BorderEase client
// that sit between the CLI and local or remote stores.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/borderease/internal/client/repositories/preferences"
	"github.com/dmitrijs2005/borderease/internal/common"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ThemeService persists the light/dark preference.
type ThemeService struct {
	prefs preferences.Repository
}

func NewThemeService(prefs preferences.Repository) *ThemeService {
	return &ThemeService{prefs: prefs}
}

// Current returns the stored theme, light when nothing valid is stored.
func (s *ThemeService) Current(ctx context.Context) (Theme, error) {
	b, err := s.prefs.Get(ctx, common.ThemePreferenceKey)
	if err != nil {
		return ThemeLight, fmt.Errorf("read theme: %w", err)
	}
	if Theme(b) == ThemeDark {
		return ThemeDark, nil
	}
	return ThemeLight, nil
}

func (s *ThemeService) Set(ctx context.Context, t Theme) error {
	if t != ThemeLight && t != ThemeDark {
		return fmt.Errorf("unknown theme %q", t)
	}
	if err := s.prefs.Set(ctx, common.ThemePreferenceKey, []byte(t)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// Toggle flips the theme and returns the new value.
func (s *ThemeService) Toggle(ctx context.Context) (Theme, error) {
	cur, err := s.Current(ctx)
	if err != nil {
		return cur, err
	}
	next := ThemeDark
	if cur == ThemeDark {
		next = ThemeLight
	}
	return next, s.Set(ctx, next)
}
