package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blacktop/go-dex/pkg/dex"
)

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.Flags().StringP("class", "c", "", "class descriptor, e.g. Lcom/example/Foo;")
	debugCmd.Flags().StringP("method", "m", "", "method name")
	debugCmd.MarkFlagRequired("class")
	debugCmd.MarkFlagRequired("method")
	viper.BindPFlag("debug.class", debugCmd.Flags().Lookup("class"))
	viper.BindPFlag("debug.method", debugCmd.Flags().Lookup("method"))
}

var debugCmd = &cobra.Command{
	Use:           "debug <DEX|APK>",
	Short:         "Dump the line-number table and local variables of one method",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := openImage(args[0])
		if err != nil {
			return err
		}

		classDesc := viper.GetString("debug.class")
		methodName := viper.GetString("debug.method")

		cd, _, ok := img.FindClassDef(classDesc)
		if !ok {
			return fmt.Errorf("no such class: %s", classDesc)
		}

		ci, isStatic, methodIdx, err := findMethodCode(img, cd, methodName)
		if err != nil {
			return err
		}
		if ci == nil {
			return fmt.Errorf("method %s.%s has no code (native, abstract, or not found)", classDesc, methodName)
		}

		fmt.Println("line table:")
		err = img.DecodeDebugInfo(ci, isStatic, methodIdx, func(ev dex.PositionEvent) bool {
			fmt.Printf("  0x%04x -> line %d\n", ev.Address, ev.Line)
			return false
		}, func(l dex.LocalEvent) {
			name := fmt.Sprintf("name_idx=%d", l.NameIdx)
			if l.IsThis {
				name = "this"
			}
			fmt.Printf("  local v%d [0x%04x, 0x%04x) %s type_idx=%d\n", l.Register, l.StartAddr, l.EndAddr, name, l.TypeIdx)
		})
		return err
	},
}

// findMethodCode returns methodName's code item, whether it is static, and
// its method_ids index, so callers can drive DecodeDebugInfo's implicit
// argument-local handling.
func findMethodCode(img *dex.Image, cd *dex.ClassDef, methodName string) (*dex.CodeItem, bool, uint32, error) {
	it, err := img.NewClassDataItemIterator(cd)
	if err != nil || it == nil {
		return nil, false, 0, err
	}
	for it.HasNext() {
		if it.IsMethod() {
			m, err := img.GetMethodId(it.MemberIndex())
			if err != nil {
				return nil, false, 0, err
			}
			if string(img.GetMethodName(m)) == methodName {
				ci, err := it.CodeItem()
				isStatic := it.AccessFlags()&dex.AccStatic != 0
				return ci, isStatic, it.MemberIndex(), err
			}
		}
		if err := it.Next(); err != nil {
			return nil, false, 0, err
		}
	}
	return nil, false, 0, nil
}
