package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jbweber/vmclone/internal/config"
	"github.com/jbweber/vmclone/internal/vsphere"
)

const appName = "vmclone"

var (
	version = "dev"
	commit  = "unknown"
)

// vip holds connection settings merged from flags, VMCLONE_* environment
// variables and the optional configuration file.
var vip = viper.New()

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "vmclone - vSphere template clone tool",
	Long: `vmclone clones virtual machines from vSphere templates using a simple
YAML definition.

Each clone gets a unique name derived from the requesting user, and a
provisioning record is written to both the VM's annotation and a local
data directory next to the definition.`,
	Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.Init(appName, cmd, vip)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.CountP("verbose", "v", "issue INFO (-v), DEBUG (-vv) or DEBUG with caller (-vvv) output")
	flags.StringP("config", "c", "", "use a specific configuration file")

	flags.String("url", "", "vCenter SDK URL, e.g. https://vcenter.example.com/sdk")
	flags.String("username", "", "vCenter login user")
	flags.String("password", "", "vCenter login password")
	flags.Bool("insecure", false, "skip TLS certificate verification")
	flags.String("datacenter", "", "datacenter to search (defaults to the only one)")
	flags.String("ca-file", "", "PEM bundle used to verify the vCenter certificate")

	for _, key := range []string{"url", "username", "password", "insecure", "datacenter", "ca-file"} {
		if err := vip.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", key, err))
		}
	}

	rootCmd.AddCommand(cloneCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(testConnCmd)
}

// connect opens a vCenter session for conn.
func connect(ctx context.Context, conn *config.Connection) (*vsphere.Client, error) {
	client, err := vsphere.Connect(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vCenter: %w", err)
	}
	return client, nil
}

// closeClient logs out, reporting but not failing on errors.
func closeClient(ctx context.Context, client *vsphere.Client) {
	if err := client.Close(context.WithoutCancel(ctx)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close vCenter session: %v\n", err)
	}
}

var testConnCmd = &cobra.Command{
	Use:   "test-conn",
	Short: "Test vCenter connection",
	Long:  `Test connectivity to vCenter and display server information.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "Testing vCenter connection...")

		conn, err := config.LoadConnection(vip)
		if err != nil {
			return err
		}

		client, err := connect(ctx, conn)
		if err != nil {
			return err
		}
		defer closeClient(ctx, client)

		fmt.Fprintln(out, "✓ Logged in to vCenter")

		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("connection test failed: %w", err)
		}

		about := client.About()
		fmt.Fprintf(out, "✓ Server: %s\n", about.FullName)
		fmt.Fprintf(out, "✓ API version: %s\n", about.ApiVersion)
		fmt.Fprintf(out, "✓ Datacenter: %s\n", client.Datacenter().InventoryPath)

		fmt.Fprintln(out, "\nConnection test successful!")
		return nil
	},
}
