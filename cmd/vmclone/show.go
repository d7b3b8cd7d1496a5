package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmware/govmomi/object"
	vimtypes "github.com/vmware/govmomi/vim25/types"

	"github.com/jbweber/vmclone/api/v1alpha1"
	"github.com/jbweber/vmclone/internal/config"
	"github.com/jbweber/vmclone/internal/loader"
	"github.com/jbweber/vmclone/internal/metadata"
	"github.com/jbweber/vmclone/internal/output"
)

var (
	outputFormat string
	noHeaders    bool
	showRemote   bool
)

var showCmd = &cobra.Command{
	Use:   "show <definition.yaml|metadata.json>",
	Short: "Show the provisioning record of a cloned VM",
	Long: `Show the provisioning record written when a VM was cloned.

The argument is either the definition the VM was cloned from or the
record file itself. With --remote the record is read from the VM's
annotation in vCenter instead of the local file.

Output formats:
  -o table  Human-readable table (default)
  -o yaml   Full YAML record
  -o json   Full JSON record`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := output.ValidateFormat(outputFormat); err != nil {
			return err
		}

		rec, err := loadRecord(args[0])
		if err != nil {
			return err
		}

		if showRemote {
			ctx := cmd.Context()
			conn, err := config.LoadConnection(vip)
			if err != nil {
				return err
			}
			client, err := connect(ctx, conn)
			if err != nil {
				return err
			}
			defer closeClient(ctx, client)

			ref := vimtypes.ManagedObjectReference{Type: "VirtualMachine", Value: rec.MoRef}
			annotation, err := client.Annotation(ctx, object.NewVirtualMachine(client.Vim(), ref))
			if err != nil {
				return fmt.Errorf("failed to read record of %s: %w", rec.MachineName, err)
			}

			rec, err = metadata.ParseAnnotation(annotation)
			if err != nil {
				return err
			}
		}

		formatter, err := output.NewFormatter(output.Options{
			Format:    output.Format(outputFormat),
			NoHeaders: noHeaders,
		})
		if err != nil {
			return err
		}

		result, err := formatter.FormatRecord(rec)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	showCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, yaml or json")
	showCmd.Flags().BoolVar(&noHeaders, "no-headers", false, "omit the table header")
	showCmd.Flags().BoolVar(&showRemote, "remote", false, "read the record from the VM annotation")
}

// loadRecord reads a record file directly, or the record belonging to a
// definition file.
func loadRecord(path string) (*v1alpha1.ProvisioningRecord, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return metadata.LoadFile(path)
	}

	def, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load definition: %w", err)
	}
	return metadata.LoadFile(def.Clone.MetadataPath())
}
