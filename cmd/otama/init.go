// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/otama-dev/otama-go/internal/native/sqlitevec"
	otamaerr "github.com/otama-dev/otama-go/pkg/errors"
)

const engineConfigHeader = `# otama engine configuration.
# Relative paths resolve against the directory holding this file.
# Keys can be overridden with OTAMA_ENGINE_ variables, e.g. OTAMA_ENGINE_NAMESPACE.
`

// renderEngineConfig encodes cfg as commented YAML with two-space indents.
func renderEngineConfig(cfg sqlitevec.Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(engineConfigHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, otamaerr.Wrap(err, otamaerr.CodeCLIOutputFailure, "encoding engine config")
	}
	if err := enc.Close(); err != nil {
		return nil, otamaerr.Wrap(err, otamaerr.CodeCLIOutputFailure, "encoding engine config")
	}
	return buf.Bytes(), nil
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write an engine configuration file",
		Long: "Write an engine configuration file to engine.config " +
			"(default ~/.config/otama/engine.yaml). Use --print to write it to stdout instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			namespace, _ := flags.GetString("namespace")
			dataDir, _ := flags.GetString("data-dir")
			printOnly, _ := flags.GetBool("print")
			force, _ := flags.GetBool("force")

			engineCfg := sqlitevec.DefaultConfig()
			engineCfg.Namespace = namespace
			engineCfg.Driver.DataDir = dataDir
			if errs := engineCfg.Validate(); len(errs) > 0 {
				return otamaerr.Wrap(errors.Join(errs...), otamaerr.CodeCLIInputInvalid, "invalid engine settings")
			}

			out, err := renderEngineConfig(engineCfg)
			if err != nil {
				return err
			}

			if printOnly {
				_, err := cmd.OutOrStdout().Write(out)
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path := cfg.Engine.Config

			if _, err := os.Stat(path); err == nil && !force {
				return otamaerr.New(otamaerr.CodeCLIInputInvalid,
					"engine config already exists (use --force to overwrite)",
					otamaerr.FieldPath(path),
				)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return otamaerr.Wrap(err, otamaerr.CodeCLISetupFailure, "creating config directory", otamaerr.FieldPath(path))
			}
			if err := os.WriteFile(path, out, 0o600); err != nil {
				return otamaerr.Wrap(err, otamaerr.CodeCLISetupFailure, "writing engine config", otamaerr.FieldPath(path))
			}

			return newPrinter(cmd.OutOrStdout(), cfg).text("wrote %s\n", path)
		},
	}

	def := sqlitevec.DefaultConfig()
	cmd.Flags().String("namespace", def.Namespace, "table namespace inside the database")
	cmd.Flags().String("data-dir", def.Driver.DataDir, "engine data directory")
	cmd.Flags().Bool("print", false, "print the configuration instead of writing it")
	cmd.Flags().Bool("force", false, "overwrite an existing configuration")
	return cmd
}
