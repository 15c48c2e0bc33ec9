package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().Bool("header", false, "only dump the header_item")
	viper.BindPFlag("dump.header", dumpCmd.Flags().Lookup("header"))
}

var dumpCmd = &cobra.Command{
	Use:           "dump <DEX|APK>",
	Aliases:       []string{"d"},
	Short:         "Dump a DEX image's header and class list",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := openImage(args[0])
		if err != nil {
			return err
		}

		h := img.Header()
		bold := color.New(color.Bold).SprintFunc()
		fmt.Printf("%s      %s\n", bold("location"), img.Location())
		fmt.Printf("%s       %d\n", bold("version"), img.Version())
		fmt.Printf("%s     %d bytes\n", bold("file_size"), h.FileSize)
		fmt.Printf("%s  %08x\n", bold("checksum"), h.Checksum)
		fmt.Printf("%s string_ids=%d type_ids=%d proto_ids=%d field_ids=%d method_ids=%d class_defs=%d\n",
			bold("tables"), h.StringIdsSize, h.TypeIdsSize, h.ProtoIdsSize, h.FieldIdsSize, h.MethodIdsSize, h.ClassDefsSize)

		if viper.GetBool("dump.header") {
			return nil
		}

		fmt.Println()
		for i := uint32(0); i < img.NumClassDefs(); i++ {
			cd, err := img.GetClassDef(i)
			if err != nil {
				return err
			}
			desc := img.GetClassDescriptor(cd)
			src := img.GetSourceFile(cd)
			if src == nil {
				fmt.Printf("%s\n", color.CyanString(string(desc)))
			} else {
				fmt.Printf("%s %s\n", color.CyanString(string(desc)), color.HiBlackString("(%s)", src))
			}
		}
		return nil
	},
}
