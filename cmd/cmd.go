// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// app builds the root command. Global flags are resolved into the runner's config before any subcommand runs.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "plview",
		Usage:   "Browse, play, and manage playlists",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "Path to a dotenv file loaded before the environment is read",
				Value: ".env",
			},
		},
		Before:   r.configure,
		Writer:   r.output,
		Commands: r.register(),
	}
}

// serveCommand starts the web interface.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the playlist browser over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles database and configuration setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize the SQLite database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recently applied migration",
				Action: r.SetupRollback,
			},
			{
				Name:   "status",
				Usage:  "Show applied and pending migrations",
				Action: r.SetupStatus,
			},
			{
				Name:  "config",
				Usage: "Write an example configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Where to write the file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// playlistCommand handles playlist and track operations against the configured store.
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Manage playlists and their tracks",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List playlist names",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.PlaylistList,
			},
			{
				Name:      "show",
				Usage:     "Show the tracks of a playlist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"s"},
						Usage:   "Only show tracks whose artist or title contains this text",
					},
					&cli.StringFlag{
						Name:  "sort",
						Usage: "Order by date, artist, title, play_count, or random",
					},
					&cli.StringFlag{
						Name:  "direction",
						Usage: "asc or desc",
						Value: "asc",
					},
					jsonFlag(),
				},
				Action: r.PlaylistShow,
			},
			{
				Name:      "create",
				Usage:     "Create an empty playlist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Action:    r.PlaylistCreate,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove an empty playlist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Action:    r.PlaylistRemove,
			},
			{
				Name:      "add",
				Usage:     "Add a track to a playlist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "playlist"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "artist", Usage: "Track artist", Required: true},
					&cli.StringFlag{Name: "title", Usage: "Track title", Required: true},
					&cli.StringFlag{Name: "url", Usage: "Media link"},
					&cli.StringFlag{Name: "date", Usage: "Date added, defaults to today"},
				},
				Action: r.PlaylistAdd,
			},
			{
				Name:  "remove-track",
				Usage: "Remove a track from a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist"},
					&cli.StringArg{Name: "id"},
				},
				Action: r.PlaylistRemoveTrack,
			},
			{
				Name:  "move",
				Usage: "Move a track between playlists",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "from"},
					&cli.StringArg{Name: "to"},
				},
				Action: r.PlaylistMove,
			},
			{
				Name:      "play",
				Usage:     "Record a play of a track",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.PlaylistPlay,
			},
			{
				Name:   "random",
				Usage:  "Pick a random track from every playlist",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.PlaylistRandom,
			},
			{
				Name:      "export",
				Usage:     "Export a playlist to CSV, Markdown, text, or JSON",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "csv, markdown, text, or json",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   `Output file, "-" for stdout (default: <name>.<ext>)`,
					},
				},
				Action: r.PlaylistExport,
			},
			{
				Name:  "export-all",
				Usage: "Export every playlist into a directory with a manifest",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "csv, markdown, text, or json",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Output directory (default: playlists_export_<epoch>)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent exports",
						Value: 4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Playlist reads per second, 0 for unlimited",
					},
				},
				Action: r.PlaylistExportAll,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal browser",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs here while the TUI owns the terminal",
				Value: "./tmp/plview-tui.log",
			},
		},
		Action: r.TUI,
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Output JSON"}
}
