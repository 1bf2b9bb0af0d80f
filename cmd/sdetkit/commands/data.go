package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/the-sdet/sdetkit/internal/excel"
	"github.com/the-sdet/sdetkit/internal/files"
	"github.com/the-sdet/sdetkit/internal/jsonpath"
	"github.com/the-sdet/sdetkit/internal/xmlpath"
)

func excelCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "excel", Short: "Read spreadsheet test data"}

	var skipFirst bool
	read := &cobra.Command{
		Use:   "read <file> [sheet]",
		Short: "Print a sheet as JSON records keyed by header",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet := ""
			if len(args) == 2 {
				sheet = args[1]
			}
			var (
				records []map[string]string
				err     error
			)
			if skipFirst {
				records, err = excel.ReadSheetSkipFirstColumn(args[0], sheet)
			} else {
				records, err = excel.ReadSheet(args[0], sheet)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, records)
		},
	}
	read.Flags().BoolVar(&skipFirst, "skip-first-column", false, "ignore the first column")

	sheets := &cobra.Command{
		Use:   "sheets <file>",
		Short: "List the sheets of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := excel.SheetNames(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
			return nil
		},
	}

	cmd.AddCommand(read, sheets)
	return cmd
}

func jsonCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "json", Short: "Query and edit JSON files with JSONPath"}

	var all bool
	get := &cobra.Command{
		Use:   "get <file> <path>",
		Short: "Print the value at a JSONPath",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := jsonpath.ReadFile(args[0])
			if err != nil {
				return err
			}
			if all {
				vals, err := jsonpath.Values(doc, args[1])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(vals, "\n"))
				return nil
			}
			v, err := jsonpath.Value(doc, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
	get.Flags().BoolVar(&all, "all", false, "print every match")

	set := &cobra.Command{
		Use:   "set <file> <path> <value>",
		Short: "Replace the value at a JSONPath and save the file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := jsonpath.ReadFile(args[0])
			if err != nil {
				return err
			}
			updated, err := jsonpath.Update(doc, args[1], args[2])
			if err != nil {
				return err
			}
			return jsonpath.WriteFile(updated, args[0])
		},
	}

	patch := &cobra.Command{
		Use:   "patch <file> <patch-file>",
		Short: "Apply an RFC 6902 patch and print the result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := jsonpath.ReadFile(args[0])
			if err != nil {
				return err
			}
			p, err := jsonpath.ReadFile(args[1])
			if err != nil {
				return err
			}
			out, err := jsonpath.ApplyPatch(doc, p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.AddCommand(get, set, patch)
	return cmd
}

func xmlCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "xml", Short: "Query and edit XML files with XPath"}

	get := &cobra.Command{
		Use:   "get <file> <xpath>",
		Short: "Print the text of every match",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := xmlpath.ReadFile(args[0])
			if err != nil {
				return err
			}
			vals, err := xmlpath.Values(doc, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(vals, "\n"))
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <file> <xpath> <value>",
		Short: "Set the text of the first match and save the file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := xmlpath.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := xmlpath.Update(doc, args[1], args[2]); err != nil {
				return err
			}
			return xmlpath.Save(doc, args[0])
		},
	}

	del := &cobra.Command{
		Use:   "delete <file> <xpath>",
		Short: "Remove the first match and save the file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := xmlpath.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := xmlpath.Delete(doc, args[1]); err != nil {
				return err
			}
			return xmlpath.Save(doc, args[0])
		},
	}

	cmd.AddCommand(get, set, del)
	return cmd
}

func diffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <a> <b>",
		Short: "Compare two text files line by line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			same, diff, err := files.CompareFiles(args[0], args[1])
			if err != nil {
				return err
			}
			if same {
				fmt.Fprintln(cmd.OutOrStdout(), "Files are identical")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), diff)
			return fmt.Errorf("%s and %s differ", args[0], args[1])
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
