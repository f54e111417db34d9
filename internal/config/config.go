// Package config holds generation options and the hdrgen.toml manifest.
package config

import (
	"strings"

	"github.com/cockroachdb/errors"

	"hdrgen/internal/emit"
)

// Options are the user-facing generation settings, spelled the way they
// appear in the manifest and on the command line.
type Options struct {
	Platform     string `toml:"platform"`
	Style        string `toml:"style"`
	NamePrefix   string `toml:"name_prefix"`
	Guard        string `toml:"guard"`
	SizeAsserts  bool   `toml:"size_asserts"`
	PointerWidth int    `toml:"pointer_width"`
}

// Default returns portable, compact output with #pragma once.
func Default() Options {
	return Options{Platform: "portable", Style: "compact", Guard: "pragma"}
}

// Emit validates o and converts it for the emitter.
func (o Options) Emit() (emit.Options, error) {
	platform, err := emit.ParsePlatform(o.Platform)
	if err != nil {
		return emit.Options{}, errors.Wrap(err, "platform")
	}
	style, err := emit.ParseStyle(o.Style)
	if err != nil {
		return emit.Options{}, errors.Wrap(err, "style")
	}
	guard := strings.TrimSpace(o.Guard)
	if strings.EqualFold(guard, "pragma") {
		guard = ""
	}
	if guard != "" && !isMacroName(guard) {
		return emit.Options{}, errors.WithHint(
			errors.Newf("guard %q is not a valid macro name", o.Guard),
			"use letters, digits and underscores, or \"pragma\"")
	}
	switch o.PointerWidth {
	case 0, 32, 64:
	default:
		return emit.Options{}, errors.Newf("pointer_width must be 32 or 64, got %d", o.PointerWidth)
	}
	return emit.Options{
		Platform:     platform,
		Style:        style,
		Prefix:       o.NamePrefix,
		Guard:        guard,
		SizeAsserts:  o.SizeAsserts,
		PointerWidth: o.PointerWidth,
	}, nil
}

func isMacroName(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}

// Overrides carries optional per-header settings; nil fields inherit.
type Overrides struct {
	Platform     *string `toml:"platform"`
	Style        *string `toml:"style"`
	NamePrefix   *string `toml:"name_prefix"`
	Guard        *string `toml:"guard"`
	SizeAsserts  *bool   `toml:"size_asserts"`
	PointerWidth *int    `toml:"pointer_width"`
}

// Apply returns o with every set override replacing its field.
func (o Options) Apply(ov Overrides) Options {
	if ov.Platform != nil {
		o.Platform = *ov.Platform
	}
	if ov.Style != nil {
		o.Style = *ov.Style
	}
	if ov.NamePrefix != nil {
		o.NamePrefix = *ov.NamePrefix
	}
	if ov.Guard != nil {
		o.Guard = *ov.Guard
	}
	if ov.SizeAsserts != nil {
		o.SizeAsserts = *ov.SizeAsserts
	}
	if ov.PointerWidth != nil {
		o.PointerWidth = *ov.PointerWidth
	}
	return o
}
