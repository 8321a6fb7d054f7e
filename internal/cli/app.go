// Package cli implements the weather command: account commands, city
// search and the favourites list, filed under the resolved identity.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/iliyamo/weather-favourites/internal/client"
	"github.com/iliyamo/weather-favourites/internal/identity"
)

// SessionKey is the storage key of the saved session token.
const SessionKey = "sessionToken"

type App struct {
	api   *client.Client
	ids   *identity.Resolver
	store identity.Storage

	in          *bufio.Reader
	out         io.Writer
	errOut      io.Writer
	stdinIsFile bool
}

func NewApp(api *client.Client, store identity.Storage, in io.Reader, out, errOut io.Writer) *App {
	_, isFile := in.(*os.File)
	return &App{
		api:         api,
		ids:         identity.NewResolver(api, store),
		store:       store,
		in:          bufio.NewReader(in),
		out:         out,
		errOut:      errOut,
		stdinIsFile: isFile,
	}
}

const usage = `usage: weather <command> [flags] [args]

commands:
  register [-name NAME] EMAIL   create an account and log in
  login EMAIL                   log in
  logout [-forget-guest]        end the session
  whoami                        show the identity favourites are filed under
  search CITY                   current weather for a city
  add CITY                      save a city to favourites
  list [-weather]               list favourites
  remove ID                     remove a favourite
`

// Run executes one command and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(a.errOut, usage)
		return 2
	}
	if err := a.restoreSession(); err != nil {
		fmt.Fprintln(a.errOut, "error:", err)
		return 1
	}

	cmds := map[string]func(context.Context, []string) error{
		"register": a.register,
		"login":    a.login,
		"logout":   a.logout,
		"whoami":   a.whoami,
		"search":   a.search,
		"add":      a.add,
		"list":     a.list,
		"remove":   a.remove,
	}
	cmd, ok := cmds[args[0]]
	if !ok {
		if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
			fmt.Fprint(a.out, usage)
			return 0
		}
		fmt.Fprintf(a.errOut, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
	if err := cmd(ctx, args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(a.errOut, "error:", err)
		return 1
	}
	return 0
}

func (a *App) restoreSession() error {
	tok, ok, err := a.store.Get(SessionKey)
	if err != nil {
		return err
	}
	if ok && tok != "" {
		a.api.SetSessionToken(tok)
	}
	return nil
}

// saveSession mirrors the client's cookie into storage.
func (a *App) saveSession() error {
	if tok := a.api.SessionToken(); tok != "" {
		return a.store.Set(SessionKey, tok)
	}
	return a.store.Delete(SessionKey)
}

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	name := fs.String("name", "", "display name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("register needs exactly one EMAIL")
	}
	pw, err := a.promptPassword()
	if err != nil {
		return err
	}
	u, err := a.api.Register(ctx, fs.Arg(0), pw, *name)
	if err != nil {
		return err
	}
	if err := a.saveSession(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered and logged in as %s\n", u.Email)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("login needs exactly one EMAIL")
	}
	pw, err := a.promptPassword()
	if err != nil {
		return err
	}
	u, err := a.api.Login(ctx, fs.Arg(0), pw)
	if err != nil {
		return err
	}
	if err := a.saveSession(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", u.Email)
	return nil
}

func (a *App) logout(ctx context.Context, args []string) error {
	fs := a.flags("logout")
	forget := fs.Bool("forget-guest", false, "also drop the local guest id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	msg, err := a.api.Logout(ctx)
	if err != nil {
		return err
	}
	a.api.SetSessionToken("")
	if err := a.saveSession(); err != nil {
		return err
	}
	if *forget {
		if err := a.ids.Forget(); err != nil {
			return err
		}
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *App) whoami(ctx context.Context, _ []string) error {
	id, err := a.ids.Resolve(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s\n", id.Kind, id.ID)
	return nil
}

func (a *App) search(ctx context.Context, args []string) error {
	city := strings.TrimSpace(strings.Join(args, " "))
	if city == "" {
		return errors.New("search needs a CITY")
	}
	loc, err := a.api.Geocode(ctx, city)
	if err != nil {
		return err
	}
	cond, err := a.api.Weather(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s, %s (%.4f, %.4f)\n", loc.City, loc.Country, loc.Latitude, loc.Longitude)
	fmt.Fprintf(a.out, "  %s, %.1f°C, humidity %.0f%%, cloud cover %.0f%%\n",
		cond.Condition, cond.Temperature, cond.Humidity, cond.CloudCover)
	return nil
}

func (a *App) add(ctx context.Context, args []string) error {
	city := strings.TrimSpace(strings.Join(args, " "))
	if city == "" {
		return errors.New("add needs a CITY")
	}
	owner, err := a.ids.Resolve(ctx)
	if err != nil {
		return err
	}
	loc, err := a.api.Geocode(ctx, city)
	if err != nil {
		return err
	}
	f, err := a.api.AddFavourite(ctx, client.NewFavourite{
		OwnerID:   owner.ID,
		CityName:  loc.City,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Country:   loc.Country,
	})
	var dup *client.DuplicateError
	if errors.As(err, &dup) {
		fmt.Fprintf(a.out, "%s is already a favourite (%s)\n", dup.Existing.CityName, dup.Existing.ID)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %s (%s)\n", f.CityName, f.ID)
	return nil
}

func (a *App) list(ctx context.Context, args []string) error {
	fs := a.flags("list")
	withWeather := fs.Bool("weather", false, "fetch current conditions for each favourite")
	if err := fs.Parse(args); err != nil {
		return err
	}
	owner, err := a.ids.Resolve(ctx)
	if err != nil {
		return err
	}
	favs, err := a.api.ListFavourites(ctx, owner.ID)
	if err != nil {
		return err
	}
	if len(favs) == 0 {
		fmt.Fprintln(a.out, "No favourites yet.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	header := "ID\tCITY\tCOUNTRY\tLAT\tLON"
	if *withWeather {
		header += "\tWEATHER"
	}
	fmt.Fprintln(tw, header)
	for _, f := range favs {
		line := fmt.Sprintf("%s\t%s\t%s\t%.4f\t%.4f", f.ID, f.CityName, f.Country, f.Latitude, f.Longitude)
		if *withWeather {
			cond, err := a.api.Weather(ctx, f.Latitude, f.Longitude)
			if err != nil {
				line += "\tunavailable"
			} else {
				line += fmt.Sprintf("\t%s, %.1f°C", cond.Condition, cond.Temperature)
			}
		}
		fmt.Fprintln(tw, line)
	}
	return tw.Flush()
}

func (a *App) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("remove needs exactly one ID")
	}
	owner, err := a.ids.Resolve(ctx)
	if err != nil {
		return err
	}
	if err := a.api.RemoveFavourite(ctx, args[0], owner.ID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Removed", args[0])
	return nil
}
