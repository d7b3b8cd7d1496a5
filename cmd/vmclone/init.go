package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jbweber/vmclone/api/v1alpha1"
	"github.com/jbweber/vmclone/internal/loader"
)

var initOpts struct {
	output       string
	username     string
	template     string
	folder       string
	resourcePool string
	datastore    string
	force        bool
}

var initCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Write a new definition file",
	Long: `Write a VirtualMachineClone definition with the given placement.

Example:
  vmclone init dev-box --template /dc1/vm/templates/centos7 \
    --folder /dc1/vm/dev --resource-pool /dc1/host/c1/Resources \
    --datastore ds1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		path := initOpts.output
		if path == "" {
			path = name + ".yaml"
		}
		if !initOpts.force {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}

		c := v1alpha1.NewVirtualMachineClone(name)
		c.Spec.Username = initOpts.username
		c.Spec.Template = initOpts.template
		c.Spec.TargetFolder = initOpts.folder
		c.Spec.TargetResourcePool = initOpts.resourcePool
		c.Spec.TargetDatastore = initOpts.datastore

		if err := loader.SaveToFile(c, path); err != nil {
			return err
		}

		// Reject anything clone would refuse to load.
		if _, err := loader.LoadFromFile(path); err != nil {
			return fmt.Errorf("wrote %s but it is not a valid definition: %w", path, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Definition written to %s\n", path)
		return nil
	},
}

func init() {
	f := initCmd.Flags()
	f.StringVarP(&initOpts.output, "file", "f", "", "definition file to write (default <name>.yaml)")
	f.StringVar(&initOpts.username, "for-user", "", "user the machine is named after (defaults to the login user at clone time)")
	f.StringVar(&initOpts.template, "template", "", "inventory path of the source template")
	f.StringVar(&initOpts.folder, "folder", "", "inventory path of the target VM folder")
	f.StringVar(&initOpts.resourcePool, "resource-pool", "", "inventory path of the target resource pool")
	f.StringVar(&initOpts.datastore, "datastore", "", "target datastore")
	f.BoolVar(&initOpts.force, "force", false, "overwrite an existing file")

	for _, name := range []string{"template", "folder", "resource-pool", "datastore"} {
		_ = initCmd.MarkFlagRequired(name)
	}
}
