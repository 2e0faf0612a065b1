// Package cmd contains the command line applications for the project.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yeisme/trackvault/pkg/configs"
	"github.com/yeisme/trackvault/pkg/log"
)

var (
	// configPath 配置文件或其所在目录.
	configPath string
	// debug 打印配置时同时输出 viper 的调试信息.
	debug bool

	rootCmd = &cobra.Command{
		Use:           "trackvault",
		Short:         "TrackVault stores music projects together with their audio and lyric files",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return err
			}

			log.Init()

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "config file or directory containing config.{yaml,json,toml,env}")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "print viper debug output")

	registerServeCommands()
	registerConfigsCommands()
	registerBackendCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
