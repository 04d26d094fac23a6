package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/internal/form"
	"github.com/mesh-intelligence/pantry/internal/store"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

const collectionsHelp = "Collections: movies, ideas, wishes, moods, groceries"

// completeCollection offers collection names for the first argument.
func completeCollection(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return types.CollectionNames, cobra.ShellCompDirectiveNoFileComp
}

// readPayload returns the JSON argument, or stdin when the argument is "-".
func readPayload(cmd *cobra.Command, arg string) ([]byte, error) {
	if arg != "-" {
		return []byte(arg), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, sysError(fmt.Errorf("read stdin: %w", err))
	}
	return data, nil
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <collection> <json>",
		Short: "Add a record from JSON",
		Long: `Add validates a record given as a JSON object and appends it to the
collection. Pass - to read the object from stdin. An ID and creation time are
assigned when missing.

` + collectionsHelp + `

Example:
  pantry add groceries '{"name":"Milk","quantity":2,"category":"dairy"}'
  pantry add moods '{"day":"2024-03-01","color":"#ffcc00","weather":"sunny"}'`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeCollection,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readPayload(cmd, args[1])
			if err != nil {
				return err
			}
			return a.withCollection(args[0], func(_ types.Backend, c store.Collection) error {
				rec, err := c.AddJSON(data)
				if err != nil {
					return fail(err)
				}
				return printSaved(a, cmd, c.Schema(), "Added", rec)
			})
		},
	}
}

func newNewCmd(a *app) *cobra.Command {
	var accessible bool
	cmd := &cobra.Command{
		Use:   "new <collection>",
		Short: "Add a record through an interactive form",
		Long: `New shows a form built from the collection's fields. A field that fails
validation blocks submission until it is fixed.

` + collectionsHelp,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeCollection,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCollection(args[0], func(_ types.Backend, c store.Collection) error {
				rec, err := form.Run(cmd.Context(), c.Schema(), nil, formOptions(cmd, accessible))
				if err != nil {
					return fail(err)
				}
				data, err := json.Marshal(rec)
				if err != nil {
					return sysError(err)
				}
				added, err := c.AddJSON(data)
				if err != nil {
					return fail(err)
				}
				return printSaved(a, cmd, c.Schema(), "Added", added)
			})
		},
	}
	cmd.Flags().BoolVar(&accessible, "accessible", false, "use plain prompts instead of the full-screen form")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var accessible bool
	cmd := &cobra.Command{
		Use:   "edit <collection> <id>",
		Short: "Edit a record through an interactive form",
		Long: `Edit opens the form prefilled with the record's current values and saves
the result in place.

` + collectionsHelp,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeCollection,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCollection(args[0], func(_ types.Backend, c store.Collection) error {
				current, err := c.Record(args[1])
				if err != nil {
					return fail(err)
				}
				rec, err := form.Run(cmd.Context(), c.Schema(), current, formOptions(cmd, accessible))
				if err != nil {
					return fail(err)
				}
				data, err := json.Marshal(rec)
				if err != nil {
					return sysError(err)
				}
				updated, err := c.UpdateJSON(args[1], data)
				if err != nil {
					return fail(err)
				}
				return printSaved(a, cmd, c.Schema(), "Updated", updated)
			})
		},
	}
	cmd.Flags().BoolVar(&accessible, "accessible", false, "use plain prompts instead of the full-screen form")
	return cmd
}

func formOptions(cmd *cobra.Command, accessible bool) form.Options {
	return form.Options{
		Accessible: accessible,
		Input:      cmd.InOrStdin(),
		Output:     cmd.OutOrStdout(),
		OnInvalid: func(err error) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Not saved:", err)
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection> <id>",
		Short: "Show one record",
		Long: `Get prints every field of the record with the given ID.

` + collectionsHelp,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeCollection,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCollection(args[0], func(_ types.Backend, c store.Collection) error {
				rec, err := c.Record(args[1])
				if err != nil {
					return fail(err)
				}
				return a.printer(cmd).Record(c.Schema(), rec)
			})
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update <collection> <id> <json>",
		Short: "Change fields of a record",
		Long: `Update overlays a JSON object onto an existing record. Fields absent from
the object keep their values; the ID never changes. Pass - to read the object
from stdin.

Example:
  pantry update wishes 0192f0aa-... '{"price":89.99}'`,
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: completeCollection,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readPayload(cmd, args[2])
			if err != nil {
				return err
			}
			return a.withCollection(args[0], func(_ types.Backend, c store.Collection) error {
				rec, err := c.UpdateJSON(args[1], data)
				if err != nil {
					return fail(err)
				}
				return printSaved(a, cmd, c.Schema(), "Updated", rec)
			})
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:               "delete <collection> <id>",
		Short:             "Delete a record",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeCollection,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCollection(args[0], func(_ types.Backend, c store.Collection) error {
				if err := c.Delete(args[1]); err != nil {
					return fail(err)
				}
				p := a.printer(cmd)
				if p.JSONMode() {
					return p.JSON(map[string]string{"deleted": args[1]})
				}
				p.Messagef("Deleted %s %s", c.Schema().Singular, args[1])
				return nil
			})
		},
	}
}

func newToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <collection> <id> <field>",
		Short: "Flip a yes/no field of a record",
		Long: `Toggle flips a boolean field such as bought, purchased, favorite or
completed. Toggling twice restores the record.`,
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: completeCollection,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCollection(args[0], func(_ types.Backend, c store.Collection) error {
				rec, err := c.Toggle(args[1], args[2])
				if err != nil {
					if toggles := c.Schema().Toggles; len(toggles) > 0 {
						return fail(fmt.Errorf("%w (toggles: %s)", err, strings.Join(toggles, ", ")))
					}
					return fail(err)
				}
				p := a.printer(cmd)
				if p.JSONMode() {
					return p.JSON(rec)
				}
				v, _ := rec.Field(args[2])
				p.Messagef("%s %s: %s = %v", strings.ToUpper(c.Schema().Singular[:1])+c.Schema().Singular[1:], rec.RecordID(), args[2], v)
				return nil
			})
		},
	}
}

// printSaved reports a written record: the full record in JSON mode, a
// one-line confirmation otherwise.
func printSaved(a *app, cmd *cobra.Command, schema types.Schema, verb string, rec types.Record) error {
	p := a.printer(cmd)
	if p.JSONMode() {
		return p.JSON(rec)
	}
	p.Messagef("%s %s %s", verb, schema.Singular, rec.RecordID())
	return nil
}
