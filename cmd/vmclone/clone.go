package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jbweber/vmclone/internal/config"
	"github.com/jbweber/vmclone/internal/loader"
	"github.com/jbweber/vmclone/internal/metrics"
	"github.com/jbweber/vmclone/internal/vm"
)

var (
	cloneTimeout time.Duration
	metricsFile  string
)

// runIDHook stamps every log entry with the ID of the current run, so lines
// from all packages of one clone can be correlated.
type runIDHook struct {
	id string
}

func (h runIDHook) Levels() []log.Level {
	return log.AllLevels
}

func (h runIDHook) Fire(e *log.Entry) error {
	e.Data["run"] = h.id
	return nil
}

var cloneCmd = &cobra.Command{
	Use:   "clone <definition.yaml>",
	Short: "Clone a VM from a definition file",
	Long: `Clone a new virtual machine from the template named in a YAML definition.

This will:
- Check that the resource pool, datastore, folder and template exist
- Pick an unused name derived from the requesting user
- Clone the template, applying its customization spec if one exists
- Record the machine in its annotation and in the local data directory

A VM left behind by a failed clone is not removed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log.AddHook(runIDHook{id: uuid.NewString()})

		def, err := loader.LoadFromFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to load definition: %w", err)
		}

		conn, err := config.LoadConnection(vip)
		if err != nil {
			return err
		}
		log.WithField("connection", fmt.Sprintf("%+v", conn.Redacted())).Debug("Loaded connection settings")

		recorder := metrics.NewRecorder()
		start := time.Now()

		result, err := provision(cmd, def, conn)
		recorder.ObserveProvision(time.Since(start), err)

		if metricsFile != "" {
			if werr := recorder.WriteTextfile(metricsFile); werr != nil {
				log.Warnf("Failed to write metrics: %v", werr)
			}
		}

		if err != nil {
			if vm.IsResourcesNotFound(err) {
				return err
			}
			return fmt.Errorf("failed to clone %s: %w", def.Clone.Name, err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ VM %s created at %s\n", result.MachineName, result.Path)
		fmt.Fprintf(out, "✓ Record written to %s\n", result.RecordPath)
		return nil
	},
}

// provision runs one clone over a session that lives for the call.
func provision(cmd *cobra.Command, def *loader.Definition, conn *config.Connection) (*vm.Result, error) {
	ctx := cmd.Context()

	client, err := connect(ctx, conn)
	if err != nil {
		return nil, err
	}
	defer closeClient(ctx, client)

	log.Infof("Cloning %s from %s", def.Clone.Name, def.Path)
	return vm.Provision(ctx, def, client, vm.Options{
		Principal: conn.Principal(),
		Timeout:   cloneTimeout,
		Out:       cmd.OutOrStdout(),
	})
}

func init() {
	cloneCmd.Flags().DurationVar(&cloneTimeout, "timeout", 0, "give up waiting for the clone task after this long (0 waits indefinitely)")
	cloneCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write run metrics to this file in the Prometheus text format")
}
