// ABOUTME: Entry point for the jobtrack server
// ABOUTME: Session-authenticated job application tracker

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"jobtrack/internal/config"
	"jobtrack/internal/store"
	"jobtrack/internal/web"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
   _       _     _                 _
  (_) ___ | |__ | |_ _ __ __ _  __| | __
  | |/ _ \| '_ \| __| '__/ _' |/ _' |/ /
  | | (_) | |_) | |_| | | (_| | (_| |  \
 _/ |\___/|_.__/ \__|_|  \__,_|\__,_|\_\
|__/
`

// getConfigPath returns the path to the jobtrack config file.
// Priority: JOBTRACK_CONFIG env var > XDG_CONFIG_HOME/jobtrack/jobtrack.yaml > ~/.config/jobtrack/jobtrack.yaml
func getConfigPath() string {
	if envPath := os.Getenv("JOBTRACK_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "jobtrack.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "jobtrack", "jobtrack.yaml")
}

// getDataPath returns the path to the jobtrack data directory.
// Priority: XDG_DATA_HOME/jobtrack > ~/.local/share/jobtrack
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "jobtrack")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: jobtrack <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                          Start the web server")
		fmt.Println("  init                           Create a config file with a fresh cookie secret")
		fmt.Println("  adduser --name NAME --email E  Create an account from the terminal")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "adduser":
		err = runAddUser(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:   %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Listen:   http://%s\n", cfg.Server.Addr)
	green.Print("    ▶ ")
	fmt.Printf("Database: %s\n", cfg.Database.Path)
	if cfg.Server.Production {
		yellow.Println("    ▶ production mode (Secure cookies)")
	}
	fmt.Println()

	logger.Info("starting jobtrack",
		"config", configPath,
		"addr", cfg.Server.Addr,
		"db", cfg.Database.Path,
	)

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	// Expired session rows accumulate until swept; reads already treat
	// them as absent.
	go st.SweepExpiredSessions(ctx, cfg.Sessions.SweepInterval)

	app := web.New(st, web.Config{
		CookieSecret:     cfg.Sessions.CookieSecret,
		SessionTTL:       cfg.Sessions.TTL,
		SecureCookies:    cfg.Server.Production,
		CSRFMethods:      cfg.CSRF.ProtectedMethods,
		CSRFContentTypes: cfg.CSRF.ProtectedContentTypes,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("jobtrack configuration setup")
	fmt.Println("============================")
	fmt.Println()

	defaultConfigPath := getConfigPath()
	defaultDataPath := getDataPath()
	defaultDbPath := filepath.Join(defaultDataPath, "jobtrack.db")

	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println("\n--- Server Configuration ---")
	addr := prompt(reader, "Listen address", "127.0.0.1:3000")

	fmt.Println("\n--- Database Configuration ---")
	dbPath := prompt(reader, "SQLite database path", defaultDbPath)

	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return fmt.Errorf("generating cookie secret: %w", err)
	}
	cookieSecret := hex.EncodeToString(secretBytes)

	var cfg strings.Builder
	cfg.WriteString("# jobtrack configuration\n")
	cfg.WriteString("# Generated by jobtrack init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  addr: \"%s\"\n", addr))
	cfg.WriteString("  production: false\n")
	cfg.WriteString("\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  path: \"%s\"\n", dbPath))
	cfg.WriteString("\n")

	cfg.WriteString("sessions:\n")
	cfg.WriteString(fmt.Sprintf("  cookie_secret: \"%s\"\n", cookieSecret))
	cfg.WriteString("  ttl: \"168h\"\n")
	cfg.WriteString("  sweep_interval: \"1h\"\n")
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: \"%s\"\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: \"%s\"\n", logFormat))

	configDir := filepath.Dir(outputFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// 0600: the file holds the cookie secret
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	dataDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Printf("Data directory: %s\n", dataDir)
	fmt.Println("\nTo start the server:")
	fmt.Printf("  jobtrack serve\n")

	return nil
}

// runAddUser creates an account without going through the web form, for
// bootstrapping a first user on a fresh install.
func runAddUser(ctx context.Context) error {
	var name, email string
	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--name" || arg == "-n":
			if i+1 >= len(args) {
				return fmt.Errorf("--name requires a value")
			}
			name = args[i+1]
			i++
		case strings.HasPrefix(arg, "--name="):
			name = strings.TrimPrefix(arg, "--name=")
		case arg == "--email" || arg == "-e":
			if i+1 >= len(args) {
				return fmt.Errorf("--email requires a value")
			}
			email = args[i+1]
			i++
		case strings.HasPrefix(arg, "--email="):
			email = strings.TrimPrefix(arg, "--email=")
		case strings.HasPrefix(arg, "-"):
			return fmt.Errorf("unknown flag: %s", arg)
		default:
			return fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return fmt.Errorf("--name and --email are both required")
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Password: ")
	password, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	password = strings.TrimRight(password, "\r\n")
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	user := &store.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := st.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return fmt.Errorf("an account with email %s already exists", email)
		}
		return fmt.Errorf("creating user: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("  ✓ Created user: %s <%s>\n", name, email)
	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
