// Package dsl peeks into exported app definitions.
//
// The export payload is opaque to the creation workflow and passed through
// unmodified; this package parses just the envelope — the app block with
// name, icon and mode — to prefill the creation dialog.
package dsl

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/lumenapps/explore/internal/shared/types"
)

// Envelope is the outer structure of an exported app definition.
type Envelope struct {
	Version string `yaml:"version"`
	Kind    string `yaml:"kind"`
	App     struct {
		Name           string        `yaml:"name"`
		Mode           types.AppMode `yaml:"mode"`
		Icon           string        `yaml:"icon"`
		IconType       string        `yaml:"icon_type"`
		IconBackground string        `yaml:"icon_background"`
		Description    string        `yaml:"description"`
	} `yaml:"app"`
}

// Parse decodes the envelope of an exported definition.
func Parse(content string) (*Envelope, error) {
	var env Envelope
	if err := yaml.Unmarshal([]byte(content), &env); err != nil {
		return nil, fmt.Errorf("parse dsl envelope: %w", err)
	}
	if env.App.Name == "" {
		return nil, fmt.Errorf("parse dsl envelope: missing app.name")
	}
	return &env, nil
}

// Prefill derives the creation dialog defaults for a template. Fields come
// from the export payload where present and fall back to the template's own
// catalog metadata, so an unparseable payload still yields usable defaults.
func Prefill(tpl types.TemplateApp, exportData string) types.CreationForm {
	form := types.CreationForm{
		Name:           tpl.Name,
		IconType:       tpl.IconType,
		Icon:           tpl.Icon,
		IconBackground: tpl.IconBackground,
		Description:    tpl.Description,
	}
	if form.IconType == "" {
		form.IconType = "emoji"
	}

	env, err := Parse(exportData)
	if err != nil {
		return form
	}

	if env.App.Name != "" {
		form.Name = env.App.Name
	}
	if env.App.Icon != "" {
		form.Icon = env.App.Icon
	}
	if env.App.IconType != "" {
		form.IconType = env.App.IconType
	}
	if env.App.IconBackground != "" {
		form.IconBackground = env.App.IconBackground
	}
	if env.App.Description != "" {
		form.Description = env.App.Description
	}
	return form
}
