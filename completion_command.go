package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const (
	zshCompletionBlockStart = "# >>> tkx completion >>>"
	zshCompletionBlockEnd   = "# <<< tkx completion <<<"
	zshAliasBlockStart      = "# >>> tkx aliases >>>"
	zshAliasBlockEnd        = "# <<< tkx aliases <<<"
)

type zshCompletionStatus struct {
	Installed      bool
	Enabled        bool
	AliasesEnabled bool
	ScriptPath     string
	ZshrcPath      string
}

func newCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Manage zsh completion",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			status, err := detectZshCompletionStatus()
			if err != nil {
				return err
			}
			fmt.Printf("installed: %t\n", status.Installed)
			fmt.Printf("enabled: %t\n", status.Enabled)
			fmt.Printf("aliases: %t\n", status.AliasesEnabled)
			fmt.Printf("script: %s\n", status.ScriptPath)
			if !status.Installed || !status.Enabled {
				fmt.Println("Install with: tkx completion install")
			}
			return nil
		},
	}

	var aliases bool
	install := &cobra.Command{
		Use:   "install",
		Short: "Install zsh completion into ~/.zshrc",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := installZshCompletion(cmd.Root(), aliases)
			if err != nil {
				return err
			}
			fmt.Printf("Installed completion script: %s\n", status.ScriptPath)
			fmt.Printf("Updated zsh config: %s\n", status.ZshrcPath)
			if aliases {
				fmt.Println("Installed aliases: tkt, tkm")
			}
			fmt.Println("Restart shell or run: exec zsh")
			return nil
		},
	}
	install.Flags().BoolVar(&aliases, "aliases", false, "Also install aliases tkt (tickets) and tkm (match)")

	cmd.AddCommand(
		install,
		&cobra.Command{
			Use:   "zsh",
			Short: "Print the zsh completion script",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return cmd.Root().GenZshCompletion(os.Stdout)
			},
		},
	)
	return cmd
}

func detectZshCompletionStatus() (zshCompletionStatus, error) {
	home, err := tkxHomeDir()
	if err != nil {
		return zshCompletionStatus{}, err
	}
	status := zshCompletionStatus{
		ScriptPath: filepath.Join(home, "completions", "_tkx"),
		ZshrcPath:  filepath.Join(filepath.Dir(home), ".zshrc"),
	}
	if info, err := os.Stat(status.ScriptPath); err == nil && info.Size() > 0 {
		status.Installed = true
	}
	data, err := os.ReadFile(status.ZshrcPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return status, nil
		}
		return zshCompletionStatus{}, err
	}
	content := string(data)
	status.Enabled = strings.Contains(content, zshCompletionBlockStart) && strings.Contains(content, zshCompletionBlockEnd)
	status.AliasesEnabled = strings.Contains(content, zshAliasBlockStart) && strings.Contains(content, zshAliasBlockEnd)
	return status, nil
}

func installZshCompletion(root *cobra.Command, withAliases bool) (zshCompletionStatus, error) {
	status, err := detectZshCompletionStatus()
	if err != nil {
		return zshCompletionStatus{}, err
	}

	if err := os.MkdirAll(filepath.Dir(status.ScriptPath), 0o755); err != nil {
		return zshCompletionStatus{}, err
	}
	var script bytes.Buffer
	if err := root.GenZshCompletion(&script); err != nil {
		return zshCompletionStatus{}, err
	}
	if err := os.WriteFile(status.ScriptPath, script.Bytes(), 0o644); err != nil {
		return zshCompletionStatus{}, err
	}

	current := ""
	if data, err := os.ReadFile(status.ZshrcPath); err == nil {
		current = string(data)
	} else if !errors.Is(err, os.ErrNotExist) {
		return zshCompletionStatus{}, err
	}

	updated := upsertManagedBlock(current, zshCompletionBlock(), zshCompletionBlockStart, zshCompletionBlockEnd)
	if withAliases {
		updated = upsertManagedBlock(updated, zshAliasesBlock(), zshAliasBlockStart, zshAliasBlockEnd)
	}
	if err := os.WriteFile(status.ZshrcPath, []byte(updated), 0o644); err != nil {
		return zshCompletionStatus{}, err
	}
	return detectZshCompletionStatus()
}

func zshCompletionBlock() string {
	return strings.Join([]string{
		zshCompletionBlockStart,
		"fpath+=(\"$HOME/.tkx/completions\")",
		"autoload -Uz compinit",
		"compinit",
		zshCompletionBlockEnd,
		"",
	}, "\n")
}

func zshAliasesBlock() string {
	return strings.Join([]string{
		zshAliasBlockStart,
		"alias tkt='tkx tickets'",
		"alias tkm='tkx match'",
		"compdef _tkx tkt",
		"compdef _tkx tkm",
		zshAliasBlockEnd,
		"",
	}, "\n")
}

// upsertManagedBlock replaces an existing marker-delimited block in place,
// or appends the block after the existing content.
func upsertManagedBlock(content string, block string, startMarker string, endMarker string) string {
	start := strings.Index(content, startMarker)
	end := strings.Index(content, endMarker)
	if start >= 0 && end >= start {
		end += len(endMarker)
		return strings.TrimRight(content[:start]+block+content[end:], "\n") + "\n"
	}
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return block
	}
	return content + "\n\n" + block
}
