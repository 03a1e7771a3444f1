package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// promptSelection asks for a package selection on the command's input
// stream. An empty answer skips the batch.
func promptSelection(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Select packages (e.g. 1,3-5), 'all', or press enter to skip: ")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read selection: %w", err)
	}
	return strings.TrimSpace(line), nil
}
