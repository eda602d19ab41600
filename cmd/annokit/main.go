// Command annokit inspects annotated corpora from the command line.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/annokit/annokit/conll"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func main() {
	root := &cobra.Command{
		Use:           "annokit",
		Short:         "Inspect annotated corpora",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newStatsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newStatsCmd() *cobra.Command {
	var (
		tab      bool
		embedded bool
		comments string
	)
	cmd := &cobra.Command{
		Use:   "stats FILE",
		Short: "Summarize a CoNLL 2002 / GermEval file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := conll.DefaultConfig()
			if tab {
				cfg.Separator = conll.SeparatorTab
			}
			cfg.ReadEmbeddedNamedEntity = embedded
			switch comments {
			case "skip":
				cfg.Comments = conll.CommentSkip
			case "token":
				cfg.Comments = conll.CommentToken
			case "reject":
				cfg.Comments = conll.CommentReject
			default:
				return fmt.Errorf("unknown comment policy %q", comments)
			}

			doc, err := conll.ReadFile(args[0], cfg)
			if err != nil {
				return err
			}

			fmt.Println(headerStyle.Render(args[0]))
			fmt.Printf("%s %d\n", labelStyle.Render("sentences"), len(doc.Sentences()))
			fmt.Printf("%s %d\n", labelStyle.Render("tokens   "), len(doc.Tokens()))

			counts := make(map[string]int)
			for _, e := range doc.Entities() {
				counts[e.Value]++
			}
			values := make([]string, 0, len(counts))
			for v := range counts {
				values = append(values, v)
			}
			sort.Strings(values)
			for _, v := range values {
				fmt.Printf("%s %d\n", labelStyle.Render(fmt.Sprintf("%-9s", v)), counts[v])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&tab, "tab", false, "columns are tab-separated (GermEval)")
	cmd.Flags().BoolVar(&embedded, "embedded", false, "read the embedded entity column")
	cmd.Flags().StringVar(&comments, "comments", "skip", "policy for '#' lines: skip, token or reject")
	return cmd
}
