package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(stringsCmd)
}

var stringsCmd = &cobra.Command{
	Use:           "strings <DEX|APK>",
	Aliases:       []string{"s"},
	Short:         "Dump every string in a DEX image's string_ids table",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := openImage(args[0])
		if err != nil {
			return err
		}
		for i := uint32(0); i < img.NumStringIds(); i++ {
			data, _, err := img.StringData(i)
			if err != nil {
				return err
			}
			fmt.Printf("%6d  %s\n", i, data)
		}
		return nil
	},
}
