package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cutsend/pkg/serial"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List detected serial devices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports := serial.ListPorts()
		if len(ports) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "no serial devices detected")
			return nil
		}
		for _, p := range ports {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}
