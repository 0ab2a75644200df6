package commands

import (
	"fmt"
	"strings"

	"github.com/de-tools/patch-atlas/pkg/services/config"
	"github.com/spf13/cobra"
)

type ProfilesCmd struct {
	deps        Deps
	profilePath string
}

func NewProfilesCmd(deps Deps) *cobra.Command {
	pc := &ProfilesCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List profiles defined in the config file",
		RunE:  pc.run,
	}

	cmd.Flags().StringVar(&pc.profilePath, "config", defaultConfigPath(), "Path to the profiles file")

	return cmd
}

func (pc *ProfilesCmd) run(cmd *cobra.Command, _ []string) error {
	registry, err := config.NewRegistry(pc.profilePath)
	if err != nil {
		return fmt.Errorf("load profiles from %s: %w", pc.profilePath, err)
	}

	profiles, err := registry.GetProfiles(cmd.Context())
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Fprintf(pc.deps.Out, "No profiles found in %s\n", pc.profilePath)
		return nil
	}

	fmt.Fprintf(pc.deps.Out, "Profiles in %s:\n%s\n", pc.profilePath, strings.Join(profiles, "\n"))
	return nil
}
