package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Device management commands",
}

var listDevicesCmd = &cobra.Command{
	Use:   "list",
	Short: "List the devices of a user",
	RunE:  runListDevices,
}

func init() {
	rootCmd.AddCommand(deviceCmd)
	deviceCmd.AddCommand(listDevicesCmd)

	listDevicesCmd.Flags().String("user", "", "Username of the device owner")
	listDevicesCmd.MarkFlagRequired("user")
}

func runListDevices(cmd *cobra.Command, args []string) error {
	dbManager := dbManagerFrom(cmd)

	username, _ := cmd.Flags().GetString("user")
	user, err := dbManager.GetUserByUsername(cmd.Context(), username)
	if err != nil {
		return fmt.Errorf("failed to find user %q: %w", username, err)
	}

	devices, err := dbManager.ListDevices(cmd.Context(), user.ID)
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}

	if len(devices) == 0 {
		fmt.Printf("No devices registered for %s\n", user.Username)
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DEVICE ID\tMANUFACTURER\tMODEL\tOS\tACTIVE\tLAST SEEN")
	for _, d := range devices {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\n",
			d.ID, d.Manufacturer, d.Model, d.OSVersion, d.IsActive,
			d.LastSeen.Local().Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}
