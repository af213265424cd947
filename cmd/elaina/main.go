package main

import (
	"fmt"
	"io"
	"os"

	"github.com/G4NGGAA/Elaina-Ai/internal/app"
	"github.com/G4NGGAA/Elaina-Ai/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

func main() {
	var (
		configPath    string
		backendURL    string
		storageDriver string
		storageRoot   string
	)

	root := &cobra.Command{
		Use:     "elaina",
		Short:   "Elaina - teman ngobrol AI di terminal",
		Long:    "Elaina is a terminal chat companion backed by a Gemini chat server.\n\nRun without arguments to open the chat UI. Sessions persist locally\nand can be resumed across launches.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, backendURL, storageDriver, storageRoot)
			if err != nil {
				return err
			}

			store := cfg.OpenStore()
			defer closeStore(store)

			logger := app.NewLogger(app.DefaultLogWriter(cfg.StorageRoot))
			client := app.NewChatClient(cfg.BackendURL, cfg.Timeout())
			controller := app.NewController(store, client, logger)
			controller.RestoreLastSession()

			p := tea.NewProgram(tui.NewMainModel(controller), tea.WithAltScreen())
			_, runErr := p.Run()
			controller.SaveActivePointer()
			return runErr
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	root.PersistentFlags().StringVar(&backendURL, "backend", "", "chat backend URL")
	root.PersistentFlags().StringVar(&storageDriver, "storage-driver", "", "session storage driver (sqlite or file)")
	root.PersistentFlags().StringVar(&storageRoot, "storage-root", "", "session storage directory")

	sessions := &cobra.Command{
		Use:   "sessions",
		Short: "List stored chat sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, backendURL, storageDriver, storageRoot)
			if err != nil {
				return err
			}
			store := cfg.OpenStore()
			defer closeStore(store)

			list := store.ListSessions()
			if len(list) == 0 {
				fmt.Println("no sessions yet")
				return nil
			}
			for _, s := range list {
				fmt.Printf("%-16s  %-32s  %d messages\n", s.ID, s.Title, len(s.Messages))
			}
			return nil
		},
	}
	root.AddCommand(sessions)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(path, backend, driver, storageRoot string) (app.Config, error) {
	if path == "" {
		path = app.DefaultConfigPath()
	}
	cfg, err := app.LoadConfig(path)
	if err != nil {
		return app.Config{}, err
	}
	if backend != "" {
		cfg.BackendURL = backend
	}
	if driver != "" {
		cfg.StorageDriver = driver
	}
	if storageRoot != "" {
		cfg.StorageRoot = storageRoot
	}
	if cfg.StorageRoot == "" {
		cfg.StorageRoot = app.DefaultStorageRoot()
	}
	return cfg, nil
}

func closeStore(store app.SessionStore) {
	if c, ok := store.(io.Closer); ok {
		_ = c.Close()
	}
}
