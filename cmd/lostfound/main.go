package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/client"
	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/store"
	"github.com/erazemk/lostfound/internal/view"
)

const defaultServer = "http://localhost:5000"

const usage = `Usage: lostfound [flags] <command> [args]

Commands:
  login -token <jwt>          store a bearer token issued by the service
  logout                      forget the stored token
  whoami                      show the signed-in user
  items [flags]               browse the item feed
  item <id>                   show one item
  mine                        list items you reported
  report [flags]              report a lost or found item
  delete <id>                 delete an item you reported
  mark-found <id> -m <text>   tell the owner you found their item
  reports <itemId>            list found reports for your item
  pending                     list found reports awaiting your confirmation
  confirm <id>...             confirm found reports
  upload <file>               upload an item photo
  admin items                 list every item (administrators)
  admin users                 list users (administrators)
  admin user-items <id>       list a user's items (administrators)
  admin delete-user <id>      delete a user and their items (administrators)

Flags:
  -s, -server <url>     service URL (env LOSTFOUND_SERVER, default: http://localhost:5000)
  -d, -session <path>   session database path (env LOSTFOUND_SESSION, default: lostfound.sqlite3)
  -l, -log <path>       log file path (env LOSTFOUND_LOG, default: no file)
  -e, -env <path>       dotenv file (default: .env)
  -v, -verbose          log requests and debug details
  -h, -help             show this help and exit
`

// env resolves configuration from the process environment, falling back to
// values read from a dotenv file.
type env struct {
	getenv func(string) string
	file   map[string]string
}

func (e env) get(key, fallback string) string {
	if v := e.getenv(key); v != "" {
		return v
	}
	if v := e.file[key]; v != "" {
		return v
	}
	return fallback
}

func loadEnv(path string, getenv func(string) string) (env, error) {
	file, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		file, err = map[string]string{}, nil
	}
	if err != nil {
		return env{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return env{getenv: getenv, file: file}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	fs := flag.NewFlagSet("lostfound", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var envPath string
	fs.StringVar(&envPath, "env", ".env", "")
	fs.StringVar(&envPath, "e", ".env", "")

	var server string
	fs.StringVar(&server, "server", "", "")
	fs.StringVar(&server, "s", "", "")

	var sessionPath string
	fs.StringVar(&sessionPath, "session", "", "")
	fs.StringVar(&sessionPath, "d", "", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	var verbose bool
	fs.BoolVar(&verbose, "verbose", false, "")
	fs.BoolVar(&verbose, "v", false, "")

	fs.Usage = func() { fmt.Fprint(stdout, usage) }

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	// Flags win over the environment, which wins over the dotenv file.
	cfgEnv, err := loadEnv(envPath, getenv)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if server == "" {
		server = cfgEnv.get("LOSTFOUND_SERVER", "")
	}
	if sessionPath == "" {
		sessionPath = cfgEnv.get("LOSTFOUND_SESSION", "lostfound.sqlite3")
	}
	if logPath == "" {
		logPath = cfgEnv.get("LOSTFOUND_LOG", "")
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command: %s\n", name)
		fs.Usage()
		return 2
	}

	closeLog, err := setupLogger(logPath, verbose, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if closeLog != nil {
		defer closeLog()
	}

	a, err := openApp(ctx, sessionPath, server, stdout)
	if err != nil {
		slog.Error("failed to open session", "path", sessionPath, "error", err)
		return 1
	}
	defer a.close()

	if err := cmd(ctx, a, fs.Args()[1:]); err != nil {
		var uerr usageError
		if errors.As(err, &uerr) {
			fmt.Fprintf(stderr, "%s: %v\n", name, uerr.err)
			return 2
		}
		if !errors.Is(err, errReported) {
			view.Notify(stderr, err)
		}
		return 1
	}
	return 0
}

// app holds what every command needs.
type app struct {
	db      *sql.DB
	server  string
	session *auth.TokenSession
	client  *client.Client
	out     *view.Printer
	stdout  io.Writer
}

// openApp opens the session database and builds a client for the stored
// token. An explicit server wins over the one saved with the session.
func openApp(ctx context.Context, path, server string, stdout io.Writer) (*app, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	saved, err := store.LoadSession(ctx, database)
	if err != nil {
		database.Close()
		return nil, err
	}

	var token string
	if saved != nil {
		token = saved.Token
		if server == "" {
			server = saved.Server
		}
	}
	if server == "" {
		server = defaultServer
	}

	session := auth.NewSession(token, func() error {
		return store.ClearSession(context.Background(), database)
	})
	session.OnInvalidated(func() {
		slog.Warn("session rejected by server, stored credentials cleared")
	})

	return &app{
		db:      database,
		server:  server,
		session: session,
		client:  client.New(server, session),
		out:     view.New(stdout),
		stdout:  stdout,
	}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		slog.Error("failed to close session database", "error", err)
	}
}
