// Package config reads the optional ~/.wsusreport ini file: named profiles
// holding per-site defaults so operators don't repeat flags on every run.
package config

import (
	"context"
	"fmt"

	"gopkg.in/ini.v1"
)

// Profile is one named set of report defaults.
type Profile struct {
	Name           string
	Servers        []string
	Architecture   string
	Driver         string
	Format         string
	OutputPath     string
	Locale         string
	Insecure       bool
	TimeoutSeconds int
}

type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, name string) (*Profile, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetProfile(_ context.Context, name string) (*Profile, error) {
	section, err := cr.cfg.GetSection(name)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found", name)
	}

	return &Profile{
		Name:           name,
		Servers:        section.Key("servers").Strings(","),
		Architecture:   section.Key("architecture").String(),
		Driver:         section.Key("driver").String(),
		Format:         section.Key("format").MustString("CSV"),
		OutputPath:     section.Key("output_path").String(),
		Locale:         section.Key("locale").String(),
		Insecure:       section.Key("insecure").MustBool(false),
		TimeoutSeconds: section.Key("timeout_seconds").MustInt(0),
	}, nil
}
