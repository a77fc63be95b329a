// ABOUTME: Subcommand definitions for the fichas CLI
// ABOUTME: Each command parses flags and hands off to the cli package
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/fichas/db"
)

func addCommands(root *cobra.Command) {
	root.AddCommand(
		initCmd(),
		importCmd(),
		listCmd(),
		showCmd(),
		historyCmd(),
		moveCmd(),
		shareCmd(),
		permissionCmd(),
		groupCmd(),
		graphCmd(),
		dashboardCmd(),
		browseCmd(),
		serveCmd(),
		mcpCmd(),
		pullMongoCmd(),
	)
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the database and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Opening the database already created the schema
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Database initialized successfully")
			return err
		},
	}
}

func importCmd() *cobra.Command {
	var collection string
	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import records from a JSON object or array",
		Long: `Imports every object in the file as a record. Field order is kept as
written. A string "id" field becomes the record id; otherwise one is generated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ImportCommand(cmd.Context(), args[0], collection)
		},
	}
	cmd.Flags().StringVar(&collection, "collection", db.DefaultCollection, "Collection to import into")
	return cmd
}

func listCmd() *cobra.Command {
	var collection string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ListCommand(cmd.Context(), collection, limit)
		},
	}
	cmd.Flags().StringVar(&collection, "collection", "", "Only list this collection")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum results")
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a record organized into groups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ShowCommand(cmd.Context(), args[0])
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <id>",
		Short: "Show a record's audit trail, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.HistoryCommand(cmd.Context(), args[0], limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum entries (0 for all)")
	return cmd
}

func moveCmd() *cobra.Command {
	var group, actor string
	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move a record to a group",
		Long: `Moves a record to --group and logs the change. An empty --group removes
the record from its current group.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.MoveCommand(cmd.Context(), args[0], group, actor)
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "Target group ID")
	cmd.Flags().StringVar(&actor, "as", "", "Name recorded as the author of the change")
	return cmd
}

func shareCmd() *cobra.Command {
	var with, permission, actor string
	cmd := &cobra.Command{
		Use:   "share <id>",
		Short: "Log that a record was shared",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ShareCommand(cmd.Context(), args[0], with, permission, actor)
		},
	}
	cmd.Flags().StringVar(&with, "with", "", "Person or team the record is shared with (required)")
	cmd.Flags().StringVar(&permission, "permission", "", "Granted permission, e.g. read or edit")
	cmd.Flags().StringVar(&actor, "as", "", "Name recorded as the author of the change")
	_ = cmd.MarkFlagRequired("with")
	return cmd
}

func permissionCmd() *cobra.Command {
	var actor string
	cmd := &cobra.Command{
		Use:   "permission <id> [level]",
		Short: "Log a permission change on a record",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level := ""
			if len(args) == 2 {
				level = args[1]
			}
			return app.PermissionCommand(cmd.Context(), args[0], level, actor)
		},
	}
	cmd.Flags().StringVar(&actor, "as", "", "Name recorded as the author of the change")
	return cmd
}

func groupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage the group directory",
	}

	var id string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a group, or rename it when --id exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.GroupAddCommand(cmd.Context(), id, args[0])
		},
	}
	add.Flags().StringVar(&id, "id", "", "Group ID (default: generated)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List groups by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.GroupListCommand(cmd.Context())
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func graphCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "graph <id>",
		Short: "Generate a GraphViz DOT graph of a record's group moves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.GraphCommand(cmd.Context(), args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show record and activity statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.DashboardCommand(cmd.Context())
		},
	}
}

func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [id]",
		Short: "Browse records in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return app.BrowseCommand(cmd.Context(), id)
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve read-only record pages over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ServeCommand(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Listen address")
	return cmd
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.MCPCommand(cmd.Context())
		},
	}
}

func pullMongoCmd() *cobra.Command {
	var collections []string
	var limit int64
	var dryRun, ensureIndexes bool
	cmd := &cobra.Command{
		Use:   "pull-mongo",
		Short: "Copy records, history and groups from MongoDB",
		Long: `Copies the given collections from the configured MongoDB (mongo.uri or
FICHAS_MONGO_URI) into the local database. Records already present are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.PullMongoCommand(cmd.Context(), collections, limit, dryRun, ensureIndexes)
		},
	}
	cmd.Flags().StringSliceVar(&collections, "collection", nil, "Collection to copy (repeatable)")
	cmd.Flags().Int64Var(&limit, "limit", 0, "Maximum records per collection (0 for all)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Count what would be copied without writing")
	cmd.Flags().BoolVar(&ensureIndexes, "ensure-indexes", false, "Create the history lookup index in MongoDB first")
	return cmd
}
