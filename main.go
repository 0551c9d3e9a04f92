package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"io/fs"
	"os"
)

var (
	configPath string
	debugLog   bool
)

func loadConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to unmarshal json data: %w", err)
	}

	ServiceConfig = config
	return nil
}

func writeDefaultConfig(path string) error {
	defaultData, err := json.MarshalIndent(DefaultConfig(), "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal json data: %w", err)
	}

	if err := os.WriteFile(path, defaultData, 0660); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// newApp builds the fiber app and its route table. The AJAX dispatcher is
// built once here and handed to the routes that need it.
func newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
	})

	app.Use(recover.New())
	app.Use(RequestLogger)

	metricsRoutes(app)

	appGroup := app.Group("/api/v1")
	authRoutes(appGroup)
	ajaxRoutes(appGroup, NewAjaxDispatcher())
	themeRoutes(appGroup)
	themeOptionRoutes(appGroup)
	forumRoutes(appGroup)
	favoriteRoutes(appGroup)
	adminRoutes(appGroup)

	return app
}

func serve() error {
	if err := loadConfig(configPath); errors.Is(err, fs.ErrNotExist) {
		logger.Warn("config not found, writing defaults", zap.String("path", configPath))
		return writeDefaultConfig(configPath)
	} else if err != nil {
		return err
	}

	if ServiceConfig.Jwt.Secret == "" || ServiceConfig.Nonce.Secret == "" {
		return errors.New("jwt.secret and nonce.secret must be set")
	}

	if err := SetupDatabaseConnection(); err != nil {
		return err
	}

	SetupRedisConnection()

	logger.Info("listening", zap.String("addr", ServiceConfig.Listen))
	return newApp().Listen(ServiceConfig.Listen)
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "bbpapi",
		Short:         "Forum theme compatibility API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return SetupLogger(debugLog)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "service_conf.json", "path to the service config")
	root.PersistentFlags().BoolVar(&debugLog, "debug", false, "development logging")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	})

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the service config",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := writeDefaultConfig(configPath); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configPath)
			return nil
		},
	})

	root.AddCommand(configCmd)
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logger.Error("exit", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	_ = logger.Sync()
}
