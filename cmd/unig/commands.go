package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/amaumene/unig/internal/config"
	"github.com/amaumene/unig/internal/controllers"
	"github.com/amaumene/unig/internal/models"
	"github.com/amaumene/unig/internal/tui"
	"github.com/amaumene/unig/internal/utils"
)

// cli holds the flags and the objects built for the running command
type cli struct {
	// Flags
	logLevel string
	inspect  string
	jsonOut  bool

	in      *bufio.Reader
	out     io.Writer
	logger  *logrus.Logger
	client  *client
	closers []func()
}

func newCLI(in io.Reader, out io.Writer) *cli {
	return &cli{in: bufio.NewReader(in), out: out}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "unig",
		Short: "Browse the game catalog and manage your library",
		Long: `unig browses the game catalog and keeps track of the games you play
and the ones on your wishlist.

Without a subcommand it opens the interactive browser.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE:              c.runBrowse,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	flags.StringVar(&c.inspect, "inspect", "", "serve the inspector on this address (overrides INSPECTOR_ADDR)")
	flags.BoolVar(&c.jsonOut, "json", false, "output as JSON")

	root.AddCommand(
		&cobra.Command{
			Use:   "browse",
			Short: "Open the interactive browser",
			Args:  cobra.NoArgs,
			RunE:  c.runBrowse,
		},
		c.gamesCmd(),
		c.showCmd(),
		c.addCmd(),
		c.removeCmd(),
		c.loginCmd(),
		c.signupCmd(),
		&cobra.Command{
			Use:   "logout",
			Short: "Forget the saved session",
			Args:  cobra.NoArgs,
			RunE:  c.runLogout,
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Show the logged in user",
			Args:  cobra.NoArgs,
			RunE:  c.runWhoami,
		},
		c.navCmd(),
	)
	return root
}

// setup builds the client for the command about to run
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	switch cmd.Name() {
	case "help", "completion":
		return nil
	}

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if c.inspect != "" {
		cfg.InspectorAddr = c.inspect
	}

	// 2. Setup logger, in a file while the browser owns the terminal
	if cmd.Name() == "browse" || !cmd.HasParent() {
		logger, closeLog, err := utils.NewFileLogger(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		c.closers = append(c.closers, func() { _ = closeLog() })
		c.logger = logger
	} else {
		c.logger = utils.NewLogger(cfg.LogLevel, nil)
	}
	c.logger.WithFields(logrus.Fields{
		"command": cmd.Name(),
		"catalog": cfg.CatalogAPIURL,
		"account": cfg.AccountAPIURL,
	}).Debug("Configuration loaded")

	// 3. Build the client
	cl, cleanup, err := initializeClient(cmd.Context(), cfg, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize client: %w", err)
	}
	c.closers = append(c.closers, cleanup)
	c.client = cl

	// 4. Start the inspector
	if cl.inspector != nil {
		ctx, cancel := context.WithCancel(cmd.Context())
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := cl.inspector.Start(ctx); err != nil {
				c.logger.WithError(err).Error("Inspector server stopped")
			}
		}()
		c.closers = append(c.closers, func() {
			cancel()
			<-done
		})
	}

	return nil
}

// close releases what setup acquired, in reverse order
func (c *cli) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func (c *cli) runBrowse(cmd *cobra.Command, _ []string) error {
	p := tea.NewProgram(tui.New(c.client.app, c.logger), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run browser: %w", err)
	}
	return nil
}

func (c *cli) gamesCmd() *cobra.Command {
	var (
		search   string
		genre    string
		platform int
		library  string
	)

	cmd := &cobra.Command{
		Use:   "games",
		Short: "List games from the catalog or your library",
		Example: `  unig games
  unig games --search "elden ring"
  unig games --genre RPG
  unig games --library wishlist`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			sel := models.NoFilter()
			switch {
			case flags.Changed("search"):
				sel = models.SearchFor(search)
			case flags.Changed("genre"):
				sel = models.InGenre(genre)
			case flags.Changed("platform"):
				sel = models.OnPlatform(platform)
			case flags.Changed("library"):
				var err error
				if sel, err = models.FromLibrary(models.LibraryKind(library)); err != nil {
					return err
				}
			}
			return c.list(cmd.Context(), c.client.app.ApplyFilter(sel))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&search, "search", "", "search the catalog")
	flags.StringVar(&genre, "genre", "", "list one genre")
	flags.IntVar(&platform, "platform", 0, "list one platform")
	flags.StringVar(&library, "library", "", "list your library: my-games or wishlist")
	cmd.MarkFlagsMutuallyExclusive("search", "genre", "platform", "library")
	return cmd
}

func (c *cli) navCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nav [label]",
		Short: "List the navigation menus, or open one of their entries",
		Example: `  unig nav
  unig nav "gta v"
  unig nav wishlist`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sections := utils.DefaultSections()
			if len(args) == 0 {
				return c.printSections(sections)
			}
			link, err := utils.ResolveLink(sections, strings.Join(args, " "))
			if err != nil {
				return err
			}
			c.logger.WithField("label", link.Label).Debug("Navigation entry resolved")
			return c.list(cmd.Context(), c.client.app.ApplyNav(link))
		},
	}
}

// list runs a filter change and prints the first page it loads
func (c *cli) list(ctx context.Context, cmd tea.Cmd) error {
	app := c.client.app
	if err := app.Run(ctx, cmd); err != nil {
		return err
	}

	snap := app.Snapshot()
	if err := notificationError(snap); err != nil {
		return err
	}
	if snap.FeedState == "failed" {
		return fmt.Errorf("failed to load games: %s", snap.Error)
	}
	return c.printGames(snap.Heading, snap.Items)
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one game and its library status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overlay, err := c.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printGame(overlay, c.client.session.Authenticated())
		},
	}
}

func (c *cli) addCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a game to your library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var libStatus models.LibraryStatus
			switch status {
			case "playing":
				libStatus = models.StatusPlaying
			case "wishlist":
				libStatus = models.StatusPlanToPlay
			default:
				return fmt.Errorf("invalid status %q, expected playing or wishlist", status)
			}
			if !c.client.session.Authenticated() {
				return errors.New("please login first")
			}

			overlay, err := c.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if overlay.Membership != nil {
				return fmt.Errorf("%s is already in %s", overlay.Item.Title, overlay.Membership.Status.Label())
			}
			return c.mutate(cmd.Context(), c.client.app.AddToLibrary(libStatus))
		},
	}

	cmd.Flags().StringVar(&status, "status", "playing", "playing or wishlist")
	return cmd
}

func (c *cli) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a game from your library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.client.session.Authenticated() {
				return errors.New("please login first")
			}

			overlay, err := c.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if overlay.Membership == nil {
				return fmt.Errorf("%s is not in your library", overlay.Item.Title)
			}
			return c.mutate(cmd.Context(), c.client.app.RemoveFromLibrary())
		},
	}
}

// open shows the game with the given id the way the browser's overlay does.
// The overlay starts from the copy found in a listing; the detail fetch only
// completes it.
func (c *cli) open(ctx context.Context, arg string) (*controllers.OverlaySnapshot, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid game id %q", arg)
	}

	if err := c.locate(ctx, id); err != nil {
		return nil, err
	}

	app := c.client.app
	if err := app.Run(ctx, app.OpenItem(id)); err != nil {
		return nil, err
	}
	overlay := app.Snapshot().Overlay
	if overlay == nil || overlay.Item == nil {
		return nil, fmt.Errorf("game %d not found", id)
	}
	return overlay, nil
}

// locate loads the default listing, then the library lists when logged in,
// until one of them holds id
func (c *cli) locate(ctx context.Context, id int) error {
	selections := []models.FilterSelection{models.NoFilter()}
	if c.client.session.Authenticated() {
		for _, kind := range []models.LibraryKind{models.LibraryOwned, models.LibraryWishlist} {
			sel, err := models.FromLibrary(kind)
			if err != nil {
				return err
			}
			selections = append(selections, sel)
		}
	}

	app := c.client.app
	for _, sel := range selections {
		if err := app.Run(ctx, app.ApplyFilter(sel)); err != nil {
			return err
		}
		for _, item := range app.Snapshot().Items {
			if item.ID == id {
				return nil
			}
		}
	}
	c.logger.WithField("game_id", id).Debug("Game not in any listing")
	return nil
}

func (c *cli) mutate(ctx context.Context, cmd tea.Cmd) error {
	if cmd == nil {
		return errors.New("this action is not available right now")
	}
	app := c.client.app
	if err := app.Run(ctx, cmd); err != nil {
		return err
	}
	return c.report(app.Snapshot())
}

func (c *cli) loginCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if username == "" {
				if username, err = c.prompt("Username: "); err != nil {
					return err
				}
			}
			password, err := c.prompt("Password: ")
			if err != nil {
				return err
			}

			app := c.client.app
			if err := app.Run(cmd.Context(), app.Login(models.Credentials{Username: username, Password: password})); err != nil {
				return err
			}
			return c.report(app.Snapshot())
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	return cmd
}

func (c *cli) signupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var reg models.Registration
			for _, field := range []struct {
				label string
				value *string
			}{
				{"Username: ", &reg.Username},
				{"Email: ", &reg.Email},
				{"Password: ", &reg.Password},
				{"Confirm password: ", &reg.ConfirmPassword},
			} {
				v, err := c.prompt(field.label)
				if err != nil {
					return err
				}
				*field.value = v
			}

			app := c.client.app
			if err := app.Run(cmd.Context(), app.Signup(reg)); err != nil {
				return err
			}
			return c.report(app.Snapshot())
		},
	}
}

func (c *cli) runLogout(cmd *cobra.Command, _ []string) error {
	if !c.client.session.Authenticated() {
		fmt.Fprintln(c.out, "Not logged in")
		return nil
	}
	app := c.client.app
	if err := app.Run(cmd.Context(), app.Logout()); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Logged out")
	return nil
}

func (c *cli) runWhoami(_ *cobra.Command, _ []string) error {
	identity, ok := c.client.session.Identity()
	if c.jsonOut {
		if !ok {
			return c.printJSON(nil)
		}
		return c.printJSON(identity.User)
	}
	if !ok {
		fmt.Fprintln(c.out, "Not logged in")
		return nil
	}
	fmt.Fprintf(c.out, "%s (id %d)\n", identity.User.Username, identity.User.ID)
	return nil
}

// report prints the latest notification, or returns it when it is a failure
func (c *cli) report(snap *controllers.Snapshot) error {
	if err := notificationError(snap); err != nil {
		return err
	}
	if n := len(snap.Notifications); n > 0 {
		fmt.Fprintln(c.out, snap.Notifications[n-1].Title)
	}
	return nil
}

func notificationError(snap *controllers.Snapshot) error {
	n := len(snap.Notifications)
	if n == 0 {
		return nil
	}
	note := snap.Notifications[n-1]
	if note.Level != controllers.LevelError && note.Level != controllers.LevelWarning {
		return nil
	}
	if note.Detail == "" {
		return errors.New(note.Title)
	}
	return fmt.Errorf("%s: %s", note.Title, note.Detail)
}

func (c *cli) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
