package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/menagerie/internal/engine"
	"github.com/mesh-intelligence/menagerie/internal/schema"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the zoo schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := schema.Zoo(engine.New())
			if err != nil {
				return sysError(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), s.Describe())
			return nil
		},
	}
}
