package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/trackvault/pkg/internal/storage/db"
	"github.com/yeisme/trackvault/pkg/internal/storage/kv"
	"github.com/yeisme/trackvault/pkg/internal/storage/mq"
	"github.com/yeisme/trackvault/pkg/internal/storage/upload"
)

// newBackendCmd 生成 `<name> ls` 形式的命令，列出编译进二进制的后端类型.
func newBackendCmd[T ~string](name, short string, types func() []T) *cobra.Command {
	parent := &cobra.Command{Use: name, Short: short}

	parent.AddCommand(&cobra.Command{
		Use:     "list",
		Short:   "List registered " + name + " backends",
		Aliases: []string{"ls", "l"},
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Registered %s types:\n", name)

			for _, t := range types() {
				fmt.Fprintln(out, "   - "+string(t))
			}
		},
	})

	return parent
}

func registerBackendCommands() {
	rootCmd.AddCommand(
		newBackendCmd("db", "Database backends", db.GetRegisteredDBTypes),
		newBackendCmd("kv", "Key-value store backends", kv.GetRegisteredKVTypes),
		newBackendCmd("mq", "Message queue backends", mq.Types),
		newBackendCmd("upload", "Upload storage backends", upload.Types),
	)
}
