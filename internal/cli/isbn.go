package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bookclusters/pkg/isbn"
)

// isbnCommand creates the isbn command group.
func (c *CLI) isbnCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "isbn",
		Short: "Compute and verify ISBN check digits",
	}

	cmd.AddCommand(c.isbnCheckCommand())
	cmd.AddCommand(c.isbnValidCommand())

	return cmd
}

// isbnCheckCommand creates the "isbn check" subcommand.
func (c *CLI) isbnCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <isbn>...",
		Short: "Print the check character of each ISBN",
		Long: `Print the check character of each ISBN.

Arguments are 10- or 13-character ISBNs; the last character is ignored, so a
placeholder such as 0 or ? may be used. Hyphens and spaces are stripped.`,
		Example: `  bookclusters isbn check 030640615?
  bookclusters isbn check 978-0-306-40615-0`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, arg := range args {
				s := normalizeISBN(arg)
				ck, err := isbn.CheckDigit(s)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%c\n", arg, ck)
			}
			return nil
		},
	}
}

// isbnValidCommand creates the "isbn valid" subcommand.
func (c *CLI) isbnValidCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "valid [isbn...]",
		Short: "Verify ISBN checksums",
		Long: `Verify ISBN checksums.

ISBNs are read from the arguments, or one per line from stdin when no
arguments are given. Each is printed with "valid" or "invalid".`,
		Example: `  bookclusters isbn valid 0306406152 9780306406158
  cut -d, -f1 isbns.csv | bookclusters isbn valid --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				lines, err := readLines(cmd.InOrStdin())
				if err != nil {
					return err
				}
				args = lines
			}

			batch := make([]string, len(args))
			for i, arg := range args {
				batch[i] = normalizeISBN(arg)
			}

			w := cmd.OutOrStdout()
			invalid := 0
			for i, ok := range isbn.ValidateBatch(batch) {
				status := "valid"
				if !ok {
					status = "invalid"
					invalid++
				}
				fmt.Fprintf(w, "%s\t%s\n", args[i], status)
			}

			if strict && invalid > 0 {
				return fmt.Errorf("%d of %d ISBNs are invalid", invalid, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error if any ISBN is invalid")

	return cmd
}

// normalizeISBN strips hyphens and spaces and upper-cases a trailing x.
func normalizeISBN(s string) string {
	s = strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(s))
	return strings.ToUpper(s)
}

// readLines returns the non-empty lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}
