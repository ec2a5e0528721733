/*
 * Copyright 2021 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cmd

import (
	"fmt"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/nlnwa/gocrawldoc/cmd/crawldoc/cmd/cat"
	"github.com/nlnwa/gocrawldoc/cmd/crawldoc/cmd/charsets"
	"github.com/nlnwa/gocrawldoc/cmd/crawldoc/cmd/hash"
	"github.com/nlnwa/gocrawldoc/cmd/crawldoc/cmd/index"
	"github.com/nlnwa/gocrawldoc/cmd/crawldoc/cmd/links"
	"github.com/nlnwa/gocrawldoc/cmd/crawldoc/cmd/ls"
	"github.com/nlnwa/gocrawldoc/cmd/crawldoc/cmd/serve"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type conf struct {
	cfgFile string
}

// NewCommand returns a new cobra.Command implementing the root command for crawldoc
func NewCommand() *cobra.Command {
	c := &conf{}
	cmd := &cobra.Command{
		Use:   "crawldoc",
		Short: "Tools for crawled document files",
		Long: `crawldoc reads files of crawled document records.

Each record holds the crawl metadata, the raw HTTP request and the raw response of one fetched URL.
The tool lists and prints records, counts charsets and links, computes URL hashes and indexes
and serves records by URL.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(viper.GetString("log-level"))
			if err != nil {
				return err
			}
			log.SetLevel(level)
			return nil
		},
	}

	cobra.OnInitialize(func() { c.initConfig() })

	// Flags
	cmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is $HOME/.crawldoc.yaml)")
	cmd.PersistentFlags().String("log-level", "info", "log level: panic, fatal, error, warn, info, debug or trace")
	if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		log.Fatalf("Failed to bind root flags: %v", err)
	}

	// Subcommands
	cmd.AddCommand(ls.NewCommand())
	cmd.AddCommand(cat.NewCommand())
	cmd.AddCommand(charsets.NewCommand())
	cmd.AddCommand(links.NewCommand())
	cmd.AddCommand(hash.NewCommand())
	cmd.AddCommand(index.NewCommand())
	cmd.AddCommand(serve.NewCommand())

	return cmd
}

// initConfig reads in config file and ENV variables if set.
func (c *conf) initConfig() {
	if c.cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(c.cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			log.Fatal(err)
		}

		// Search config in home directory with name ".crawldoc" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".crawldoc")
	}

	viper.SetEnvPrefix("crawldoc")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if c.cfgFile != "" {
		log.Fatal(fmt.Errorf("failed to read config file: %w", err))
	}
}
