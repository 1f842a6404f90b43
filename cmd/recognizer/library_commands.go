package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"recognizer/internal/config"
	"recognizer/internal/fileutil"
	"recognizer/internal/identification"
	"recognizer/internal/library"
)

// libraryItemView is the structured form of a library item for json/yaml.
type libraryItemView struct {
	ID          int64             `json:"id" yaml:"id"`
	Key         string            `json:"key" yaml:"key"`
	Type        string            `json:"type" yaml:"type"`
	ParentID    int64             `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	ContentType string            `json:"contentType,omitempty" yaml:"contentType,omitempty"`
	Path        string            `json:"path,omitempty" yaml:"path,omitempty"`
	Fields      map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`
	Creators    []string          `json:"creators,omitempty" yaml:"creators,omitempty"`
	Collections []int64           `json:"collections,omitempty" yaml:"collections,omitempty"`
	Children    []int64           `json:"children,omitempty" yaml:"children,omitempty"`
	Recognize   bool              `json:"recognizable" yaml:"recognizable"`
}

func newLibraryItemView(item *library.Item) libraryItemView {
	view := libraryItemView{
		ID:          item.ID,
		Key:         item.Key,
		Type:        item.ItemType,
		ParentID:    item.ParentID,
		ContentType: item.ContentType,
		Path:        item.Path,
		Fields:      item.Fields,
		Recognize:   item.IsRecognizable(),
	}
	for _, c := range item.Creators {
		view.Creators = append(view.Creators, c.Name())
	}
	return view
}

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Manage documents in the library",
	}
	libraryCmd.AddCommand(newLibraryAddCommand(ctx))
	libraryCmd.AddCommand(newLibraryListCommand(ctx))
	libraryCmd.AddCommand(newLibraryShowCommand(ctx))
	return libraryCmd
}

func newLibraryAddCommand(ctx *commandContext) *cobra.Command {
	var collection string

	cmd := &cobra.Command{
		Use:   "add <pdf>...",
		Short: "Import PDF files as top-level attachments",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			return ctx.withStore(func(store *library.Store) error {
				var coll *library.Collection
				if name := strings.TrimSpace(collection); name != "" {
					var err error
					if coll, err = store.EnsureCollection(cmd.Context(), name); err != nil {
						return fmt.Errorf("collection %q: %w", name, err)
					}
				}
				out := cmd.OutOrStdout()
				var failed int
				for _, arg := range args {
					item, err := importAttachment(cmd, cfg, store, arg, coll)
					if err != nil {
						failed++
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", arg, err)
						continue
					}
					fmt.Fprintf(out, "Added item %d: %s\n", item.ID, item.Title())
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d files could not be added", failed, len(args))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&collection, "collection", "", "Add the imported items to this collection (created if missing)")
	return cmd
}

func importAttachment(cmd *cobra.Command, cfg *config.Config, store *library.Store, arg string, coll *library.Collection) (*library.Item, error) {
	src, err := config.ExpandPath(arg)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(src)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, errors.New("is a directory")
	}
	dst, err := fileutil.ImportPDF(src, cfg.StorageDir())
	if err != nil {
		return nil, err
	}

	item := library.NewItem(library.TypeAttachment, store.LibraryID())
	item.ContentType = library.ContentTypePDF
	item.Path = dst
	item.SetField(library.FieldTitle, identification.DeriveTitle(filepath.Base(src)))

	err = store.InTx(cmd.Context(), func(tx *library.Tx) error {
		if err := tx.Insert(cmd.Context(), item); err != nil {
			return err
		}
		if coll != nil {
			return tx.AddToCollection(cmd.Context(), coll.ID, item.ID)
		}
		return nil
	})
	if err != nil {
		_ = os.Remove(dst)
		return nil, err
	}
	return item, nil
}

func newLibraryListCommand(ctx *commandContext) *cobra.Command {
	var recognizable bool
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List library items",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(formatFlag)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *library.Store) error {
				var items []*library.Item
				if recognizable {
					items, err = store.ListRecognizable(cmd.Context())
				} else {
					items, err = store.List(cmd.Context())
				}
				if err != nil {
					return err
				}
				views := make([]libraryItemView, 0, len(items))
				for _, item := range items {
					views = append(views, newLibraryItemView(item))
				}
				if handled, err := writeStructured(cmd, format, views); handled {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Library is empty")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					parent := ""
					if item.ParentID != 0 {
						parent = formatID(item.ParentID)
					}
					rows = append(rows, []string{
						formatID(item.ID),
						item.ItemType,
						truncate(item.Title(), 60),
						parent,
						yesNo(item.IsRecognizable()),
					})
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Type", "Title", "Parent", "Recognizable"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&recognizable, "recognizable", false, "Only show top-level PDF attachments")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "table", "Output format: table, json, or yaml")
	return cmd
}

func newLibraryShowCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one library item with its fields, collections, and children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(formatFlag)
			if err != nil {
				return err
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *library.Store) error {
				item, err := store.Get(cmd.Context(), ids[0])
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("item %d not found", ids[0])
				}
				view := newLibraryItemView(item)
				if view.Collections, err = store.CollectionsOf(cmd.Context(), item.ID); err != nil {
					return err
				}
				children, err := store.Children(cmd.Context(), item.ID)
				if err != nil {
					return err
				}
				for _, child := range children {
					view.Children = append(view.Children, child.ID)
				}
				if handled, err := writeStructured(cmd, format, view); handled {
					return err
				}
				return printItemView(cmd, view)
			})
		},
	}
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "table", "Output format: table, json, or yaml")
	return cmd
}

func printItemView(cmd *cobra.Command, view libraryItemView) error {
	rows := [][]string{
		{"ID", formatID(view.ID)},
		{"Key", view.Key},
		{"Type", view.Type},
	}
	if view.ParentID != 0 {
		rows = append(rows, []string{"Parent", formatID(view.ParentID)})
	}
	if view.Path != "" {
		rows = append(rows, []string{"Path", view.Path})
	}
	for _, name := range sortedKeys(view.Fields) {
		rows = append(rows, []string{name, truncate(view.Fields[name], 80)})
	}
	if len(view.Creators) > 0 {
		rows = append(rows, []string{"Creators", strings.Join(view.Creators, "; ")})
	}
	if len(view.Collections) > 0 {
		rows = append(rows, []string{"Collections", joinIDs(view.Collections)})
	}
	if len(view.Children) > 0 {
		rows = append(rows, []string{"Children", joinIDs(view.Children)})
	}
	rows = append(rows, []string{"Recognizable", yesNo(view.Recognize)})
	fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
	return nil
}
