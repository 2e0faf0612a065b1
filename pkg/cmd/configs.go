package cmd

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yeisme/trackvault/pkg/configs"
)

const redacted = "******"

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect the loaded configuration",
	}

	pathCmd = &cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := configs.GetViper()
			if v == nil {
				return fmt.Errorf("config not initialized")
			}

			if file := v.ConfigFileUsed(); file != "" {
				fmt.Fprintln(cmd.OutOrStdout(), file)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "no config file, using defaults and TRACKVAULT_* env")
			}

			return nil
		},
	}

	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "Print the effective configuration as JSON, secrets masked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := configs.GetViper()
			if v == nil {
				return fmt.Errorf("config not initialized")
			}

			if debug {
				v.Debug()
			}

			b, err := sonic.ConfigStd.MarshalIndent(maskSecrets(*configs.GetConfig()), "", "  ")
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))

			return nil
		},
	}
)

// maskSecrets 返回隐去密码与密钥的配置副本.
func maskSecrets(cfg configs.AppConfig) configs.AppConfig {
	for _, s := range []*string{
		&cfg.DB.Password,
		&cfg.S3.SecretKey,
		&cfg.KV.Redis.Password,
		&cfg.KV.NATS.Password,
		&cfg.MQ.Common.Password,
		&cfg.MQ.Redis.Password,
		&cfg.MQ.NATS.NKey,
	} {
		if *s != "" {
			*s = redacted
		}
	}

	return cfg
}

func registerConfigsCommands() {
	configCmd.AddCommand(pathCmd, debugCmd)
	rootCmd.AddCommand(configCmd)
}
