package cmd

import (
	"fmt"
	"regexp"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blacktop/go-dex/pkg/dex"
)

func init() {
	rootCmd.AddCommand(methodsCmd)
	methodsCmd.Flags().StringP("class", "c", "", "only dump classes matching this regexp")
	viper.BindPFlag("methods.class", methodsCmd.Flags().Lookup("class"))
}

var methodsCmd = &cobra.Command{
	Use:           "methods <DEX|APK>",
	Aliases:       []string{"m"},
	Short:         "Dump every class's direct and virtual methods",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := openImage(args[0])
		if err != nil {
			return err
		}

		var classFilter *regexp.Regexp
		if pat := viper.GetString("methods.class"); pat != "" {
			classFilter, err = regexp.Compile(pat)
			if err != nil {
				return err
			}
		}

		for i := uint32(0); i < img.NumClassDefs(); i++ {
			cd, err := img.GetClassDef(i)
			if err != nil {
				return err
			}
			desc := string(img.GetClassDescriptor(cd))
			if classFilter != nil && !classFilter.MatchString(desc) {
				continue
			}
			fmt.Println(color.CyanString(desc))
			if err := dumpMethods(img, cd); err != nil {
				return err
			}
		}
		return nil
	},
}

func dumpMethods(img *dex.Image, cd *dex.ClassDef) error {
	it, err := img.NewClassDataItemIterator(cd)
	if err != nil {
		return err
	}
	if it == nil {
		return nil
	}
	for it.HasNext() {
		if it.IsMethod() {
			m, err := img.GetMethodId(it.MemberIndex())
			if err != nil {
				return err
			}
			sig, err := img.GetMethodSignature(m)
			if err != nil {
				return err
			}
			kind := "virtual"
			if it.HasNextDirectMethod() {
				kind = "direct"
			}
			fmt.Printf("  %-8s %s%s\n", kind, img.GetMethodName(m), sig)
		}
		if err := it.Next(); err != nil {
			return err
		}
	}
	return nil
}
