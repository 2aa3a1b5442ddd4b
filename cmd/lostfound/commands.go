package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/feed"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/pending"
	"github.com/erazemk/lostfound/internal/store"
)

// usageError marks bad command-line input.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }

// errReported means the command already printed its failures.
var errReported = errors.New("failures reported")

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"login":      cmdLogin,
	"logout":     cmdLogout,
	"whoami":     cmdWhoami,
	"items":      cmdItems,
	"item":       cmdItem,
	"mine":       cmdMine,
	"report":     cmdReport,
	"delete":     cmdDelete,
	"mark-found": cmdMarkFound,
	"reports":    cmdReports,
	"pending":    cmdPending,
	"confirm":    cmdConfirm,
	"upload":     cmdUpload,
	"admin":      cmdAdmin,
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseArgs parses flags that may come before or after the positional
// arguments, e.g. "mark-found 42 -m text" and "mark-found -m text 42".
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, usageError{err}
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, usagef("invalid id %q", s)
	}
	return id, nil
}

// oneID parses a command taking exactly one id argument.
func oneID(fs *flag.FlagSet, args []string) (int64, error) {
	pos, err := parseArgs(fs, args)
	if err != nil {
		return 0, err
	}
	if len(pos) != 1 {
		return 0, usagef("expected one id")
	}
	return parseID(pos[0])
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("login")
	var token string
	fs.StringVar(&token, "token", "", "")
	fs.StringVar(&token, "t", "", "")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return usagef("-token is required")
	}

	s := store.Session{Server: a.server, Token: token}
	var profile *model.User

	claims, err := auth.ParseClaims(token)
	switch {
	case err != nil:
		slog.Debug("token is not a JWT, storing as opaque", "error", err)
	case claims.Expired(time.Now()):
		return auth.ErrTokenExpired
	default:
		profile = claims.User()
		if claims.ExpiresAt != nil {
			exp := claims.ExpiresAt.Time
			s.ExpiresAt = &exp
		}
	}

	if err := store.SaveSession(ctx, a.db, s, profile); err != nil {
		return err
	}
	a.session.SetToken(token)

	if profile != nil {
		a.out.Success("Logged in as %s.", profile.Name)
	} else {
		a.out.Success("Token saved.")
	}
	return nil
}

func cmdLogout(ctx context.Context, a *app, args []string) error {
	if err := store.ClearSession(ctx, a.db); err != nil {
		return err
	}
	a.session.SetToken("")
	a.out.Success("Logged out.")
	return nil
}

func cmdWhoami(ctx context.Context, a *app, args []string) error {
	saved, err := store.LoadSession(ctx, a.db)
	if err != nil {
		return err
	}
	if saved == nil {
		a.out.User(nil, nil)
		return nil
	}
	profile, err := store.LoadProfile(ctx, a.db)
	if err != nil {
		return err
	}
	if profile == nil {
		fmt.Fprintf(a.stdout, "Logged in to %s with an opaque token.\n", saved.Server)
		return nil
	}
	a.out.User(profile, saved.ExpiresAt)
	return nil
}

func cmdItems(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("items")
	var viewName, search, status, category string
	var pages int
	fs.StringVar(&viewName, "view", "all", "")
	fs.StringVar(&search, "search", "", "")
	fs.StringVar(&search, "q", "", "")
	fs.StringVar(&status, "status", "all", "")
	fs.StringVar(&category, "category", "all", "")
	fs.StringVar(&category, "c", "all", "")
	fs.IntVar(&pages, "pages", 1, "")
	fs.IntVar(&pages, "p", 1, "")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	v, err := feed.ParseView(viewName)
	if err != nil {
		return usageError{err}
	}
	st, err := feed.ParseStatusFilter(status)
	if err != nil {
		return usageError{err}
	}

	items, err := a.client.ListItems(ctx)
	if err != nil {
		return err
	}

	f := feed.New(items)
	f.Apply(feed.Criteria{View: v, Search: search, Status: st, Category: category})
	for range pages - 1 {
		if !f.LoadMore() {
			break
		}
	}
	a.out.Feed(f)
	return nil
}

func cmdItem(ctx context.Context, a *app, args []string) error {
	id, err := oneID(newFlagSet("item"), args)
	if err != nil {
		return err
	}
	item, err := a.client.GetItem(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, a.out.Detail(*item))

	if claims := a.session.Claims(); claims != nil && model.CanMarkFound(claims.User(), *item) {
		fmt.Fprintf(a.stdout, "\nFound it? Run: lostfound mark-found %d -m <where you found it>\n", item.ID)
	}
	return nil
}

func cmdMine(ctx context.Context, a *app, args []string) error {
	items, err := a.client.MyItems(ctx)
	if err != nil {
		return err
	}
	a.out.Items(items)
	return nil
}

func cmdReport(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("report")
	var n model.NewItem
	var status, image string
	fs.StringVar(&status, "status", "LOST", "")
	fs.StringVar(&n.Name, "name", "", "")
	fs.StringVar(&n.Description, "description", "", "")
	fs.StringVar(&n.Category, "category", "", "")
	fs.StringVar(&n.Location, "location", "", "")
	fs.StringVar(&n.Reward, "reward", "", "")
	fs.StringVar(&n.ContactInfo, "contact", "", "")
	fs.StringVar(&image, "image", "", "")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	n.Status = model.ParseStatus(status)
	if n.Status == model.StatusUnknown {
		return usagef("status must be LOST or FOUND")
	}
	if err := n.Validate(); err != nil {
		return usageError{err}
	}

	if image != "" {
		url, err := uploadFile(ctx, a, image)
		if err != nil {
			return err
		}
		n.ImageURL = url
	}

	item, err := a.client.CreateItem(ctx, n)
	if err != nil {
		return err
	}
	if item == nil {
		a.out.Success("Report submitted.")
		return nil
	}
	a.out.Success("Report submitted as item #%d.", item.ID)
	return nil
}

func cmdDelete(ctx context.Context, a *app, args []string) error {
	id, err := oneID(newFlagSet("delete"), args)
	if err != nil {
		return err
	}
	if err := a.client.DeleteItem(ctx, id); err != nil {
		return err
	}
	a.out.Success("Item #%d deleted.", id)
	return nil
}

func cmdMarkFound(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("mark-found")
	var message string
	fs.StringVar(&message, "message", "", "")
	fs.StringVar(&message, "m", "", "")
	id, err := oneID(fs, args)
	if err != nil {
		return err
	}
	if err := a.client.MarkItemFound(ctx, id, message); err != nil {
		return err
	}
	a.out.Success("Thanks! The owner has been notified and needs to confirm.")
	return nil
}

func cmdReports(ctx context.Context, a *app, args []string) error {
	id, err := oneID(newFlagSet("reports"), args)
	if err != nil {
		return err
	}
	reports, err := a.client.FoundReports(ctx, id)
	if err != nil {
		return err
	}
	a.out.Reports(reports)
	return nil
}

func cmdPending(ctx context.Context, a *app, args []string) error {
	vm := pending.New(a.client)
	defer vm.Close()

	if err := vm.Load(ctx); err != nil {
		return err
	}
	a.out.Pending(vm.Entries())
	return nil
}

// cmdConfirm confirms several found reports at once. Each id succeeds or
// fails on its own.
func cmdConfirm(ctx context.Context, a *app, args []string) error {
	pos, err := parseArgs(newFlagSet("confirm"), args)
	if err != nil {
		return err
	}
	if len(pos) == 0 {
		return usagef("expected at least one id")
	}
	ids := make([]int64, len(pos))
	for i, p := range pos {
		if ids[i], err = parseID(p); err != nil {
			return err
		}
	}

	vm := pending.New(a.client)
	defer vm.Close()
	if err := vm.Load(ctx); err != nil {
		return err
	}

	errs := make([]error, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			errs[i] = vm.Confirm(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	failed := false
	for i, id := range ids {
		if errs[i] != nil {
			failed = true
			a.out.ErrorFor(fmt.Sprintf("#%d", id), errs[i])
			continue
		}
		a.out.Success("Confirmed #%d. The item is now marked as found.", id)
	}
	if vm.Len() > 0 {
		fmt.Fprintf(a.stdout, "%d confirmation(s) still pending.\n", vm.Len())
	}
	if failed {
		return errReported
	}
	return nil
}

func cmdAdmin(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return usagef("expected an admin command: items, users, user-items, delete-user")
	}
	sub, args := args[0], args[1:]
	switch sub {
	case "items":
		if _, err := parseArgs(newFlagSet("admin items"), args); err != nil {
			return err
		}
		items, err := a.client.AdminItems(ctx)
		if err != nil {
			return err
		}
		a.out.Items(items)
	case "users":
		if _, err := parseArgs(newFlagSet("admin users"), args); err != nil {
			return err
		}
		users, err := a.client.Users(ctx)
		if err != nil {
			return err
		}
		a.out.Users(users)
	case "user-items":
		id, err := oneID(newFlagSet("admin user-items"), args)
		if err != nil {
			return err
		}
		items, err := a.client.UserItems(ctx, id)
		if err != nil {
			return err
		}
		a.out.Items(items)
	case "delete-user":
		id, err := oneID(newFlagSet("admin delete-user"), args)
		if err != nil {
			return err
		}
		if err := a.client.DeleteUser(ctx, id); err != nil {
			return err
		}
		a.out.Success("User #%d and their items deleted.", id)
	default:
		return usagef("unknown admin command %q", sub)
	}
	return nil
}

func cmdUpload(ctx context.Context, a *app, args []string) error {
	pos, err := parseArgs(newFlagSet("upload"), args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return usagef("expected one file")
	}
	url, err := uploadFile(ctx, a, pos[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, url)
	return nil
}

func uploadFile(ctx context.Context, a *app, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	res, err := a.client.UploadImage(ctx, filepath.Base(path), f)
	if err != nil {
		return "", err
	}
	return res.ImageURL, nil
}
