package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/assignment"
	"github.com/trezcool/classroom/core/dashboard"
	"github.com/trezcool/classroom/core/leaderboard"
	"github.com/trezcool/classroom/core/session"
	"github.com/trezcool/classroom/core/user"
	"github.com/trezcool/classroom/services/backend"
)

const (
	loggedInMsg  = "Logged in successfully"
	registerMsg  = "Account created successfully"
	loggedOutMsg = "Logged out successfully"

	dueLayout = "2006-01-02T15:04"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp        = errors.New("help provided")
	errNotLoggedIn = errors.New("not logged in: run `classroom login`")
	errWrongRole   = errors.New("this command is not available to your account")
)

type commandLine struct {
	out        io.Writer
	api        *backend.Client
	state      session.Storage
	notifier   core.Notifier
	logger     core.Logger
	validate   *validator.Validate
	translator ut.Translator
	now        func() time.Time

	store *session.Store
}

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, args []string) error
}

func (cli *commandLine) commands() []command {
	return []command{
		{"login", "login --email EMAIL - log in (the password is prompted)", cli.login},
		{"register", "register --name NAME --email EMAIL - create a student account", cli.register},
		{"logout", "logout - forget the session", cli.logout},
		{"whoami", "whoami - print the session user", cli.whoami},
		{"home", "home [--status S] [--column C] [--q TERM] - print your dashboard", cli.home},
		{"leaderboard", "leaderboard [--all-time] [--date YYYY-MM-DD] [--filter-by COL] [--q TERM] [--sort-by COL] [--desc] [--page N]", cli.leaderboard},
		{"submit", "submit --assignment ID --link URL - submit a GitHub repository for grading", cli.submit},
		{"create-assignment", "create-assignment --title T --description D --due YYYY-MM-DD[THH:MM] --total N", cli.createAssignment},
		{"edit-assignment", "edit-assignment --id ID --title T --description D --due YYYY-MM-DD[THH:MM] --total N", cli.editAssignment},
		{"report", "report --student ID - print a student's report", cli.report},
		{"approve", "approve --id ID - approve a teacher application", cli.approve},
		{"reject", "reject --id ID - reject a teacher application", cli.reject},
		{"delete-account", "delete-account - delete your rejected teacher account", cli.deleteAccount},
	}
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	for _, cmd := range cli.commands() {
		fmt.Fprintln(cli.out, "  classroom "+cmd.usage)
	}
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	if cli.store == nil {
		cli.store = session.NewStore()
	}
	if cli.now == nil {
		cli.now = time.Now
	}

	for _, cmd := range cli.commands() {
		if cmd.name == args[1] {
			return cmd.run(context.Background(), args[2:])
		}
	}
	cli.printUsage()
	return errHelp
}

func (cli *commandLine) flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(cli.out)
	fs.Usage = func() {
		fmt.Fprintf(cli.out, "Usage of %s:\n", name)
		fs.PrintDefaults()
	}
	return fs
}

// parse parses `args` and checks that every flag in `required` was given.
func parse(fs *pflag.FlagSet, args []string, required ...string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return errHelp
		}
		return err
	}
	for _, name := range required {
		if f := fs.Lookup(name); f == nil || !f.Changed || strings.TrimSpace(f.Value.String()) == "" {
			fs.Usage()
			return errHelp
		}
	}
	return nil
}

func (cli *commandLine) authed() *backend.Client {
	return cli.api.WithTokens(cli.state)
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}

// requireSession resolves the session gate and returns the session user.
func (cli *commandLine) requireSession(ctx context.Context) (user.User, error) {
	gate := session.NewGate(session.GateDeps{
		Store:    cli.store,
		Storage:  cli.state,
		Fetcher:  cli.authed(),
		Notifier: cli.notifier,
		Logger:   cli.logger,
	})
	decision := gate.Resolve(ctx)
	if decision.Outcome != session.Authorized {
		if decision.Err != nil {
			if backend.IsUnauthorized(decision.Err) {
				_ = session.Logout(ctx, cli.state)
			}
			return user.User{}, errors.Wrap(errNotLoggedIn, decision.Err.Error())
		}
		return user.User{}, errNotLoggedIn
	}
	return *decision.User, nil
}

func (cli *commandLine) dashboard(ctx context.Context) (dashboard.Dashboard, error) {
	usr, err := cli.requireSession(ctx)
	if err != nil {
		return nil, err
	}
	return dashboard.Home(usr, dashboard.Deps{
		API:        cli.authed(),
		Store:      cli.store,
		Storage:    cli.state,
		Notifier:   cli.notifier,
		Validate:   cli.validate,
		Translator: cli.translator,
		Now:        cli.now,
	})
}

func dashboardAs[T dashboard.Dashboard](ctx context.Context, cli *commandLine) (T, error) {
	var zero T
	d, err := cli.dashboard(ctx)
	if err != nil {
		return zero, err
	}
	typed, ok := d.(T)
	if !ok {
		return zero, errWrongRole
	}
	return typed, nil
}

// Commands

func (cli *commandLine) login(ctx context.Context, args []string) error {
	fs := cli.flagSet("login")
	email := fs.String("email", "", "your email address")
	if err := parse(fs, args, "email"); err != nil {
		return err
	}
	pwd, err := cli.promptPassword()
	if err != nil {
		return err
	}

	creds := user.Credentials{Email: *email, Password: pwd}
	if err = core.CheckValidation(creds.Validate(cli.validate), cli.translator); err != nil {
		return err
	}
	token, err := cli.api.LoginUser(ctx, creds)
	if err != nil {
		cli.notifier.Notify(core.Failure(err))
		return errors.Wrap(err, "logging in")
	}
	return cli.saveToken(ctx, token, loggedInMsg)
}

func (cli *commandLine) register(ctx context.Context, args []string) error {
	fs := cli.flagSet("register")
	name := fs.String("name", "", "your full name")
	email := fs.String("email", "", "your email address")
	if err := parse(fs, args, "name", "email"); err != nil {
		return err
	}
	pwd, err := cli.promptPassword()
	if err != nil {
		return err
	}

	reg := user.Registration{Name: *name, Email: *email, Password: pwd}
	if err = core.CheckValidation(reg.Validate(cli.validate), cli.translator); err != nil {
		return err
	}
	token, err := cli.api.RegisterUser(ctx, reg)
	if err != nil {
		cli.notifier.Notify(core.Failure(err))
		return errors.Wrap(err, "registering")
	}
	return cli.saveToken(ctx, token, registerMsg)
}

func (cli *commandLine) saveToken(ctx context.Context, token, msg string) error {
	// a new token invalidates whatever user was cached for the previous one
	if err := session.Logout(ctx, cli.state); err != nil {
		return err
	}
	if err := cli.state.SetToken(ctx, token); err != nil {
		return errors.Wrap(err, "saving token")
	}
	cli.notifier.Notify(core.Success(msg))
	return nil
}

func (cli *commandLine) logout(ctx context.Context, _ []string) error {
	cli.store.DispatchUser(user.LogoutUser{})
	if err := session.Logout(ctx, cli.state); err != nil {
		return err
	}
	cli.notifier.Notify(core.Success(loggedOutMsg))
	return nil
}

func (cli *commandLine) whoami(ctx context.Context, _ []string) error {
	usr, err := cli.requireSession(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s <%s> (%s)\n", usr.Name, usr.Email, usr.Role)
	return nil
}

func (cli *commandLine) home(ctx context.Context, args []string) error {
	fs := cli.flagSet("home")
	var f dashboard.Filter
	fs.StringVar(&f.Status, "status", "", "only rows with this status")
	fs.StringVar(&f.Column, "column", "", "column searched by --q")
	fs.StringVar(&f.Term, "q", "", "search term")
	if err := parse(fs, args); err != nil {
		return err
	}

	d, err := cli.dashboard(ctx)
	if err != nil {
		return err
	}
	if err = d.Load(ctx); err != nil {
		return errors.Wrap(err, "loading dashboard")
	}
	view, err := d.View(f)
	if err != nil {
		return err
	}
	return printView(cli.out, view)
}

func (cli *commandLine) leaderboard(ctx context.Context, args []string) error {
	fs := cli.flagSet("leaderboard")
	allTime := fs.Bool("all-time", false, "all time leaderboard instead of a daily one")
	date := fs.String("date", "", "day of the daily leaderboard (YYYY-MM-DD); defaults to today")
	filterBy := fs.String("filter-by", string(leaderboard.ColumnEmail), "column searched by --q")
	sortBy := fs.String("sort-by", "", "column to sort by")
	var q leaderboard.Query
	fs.StringVar(&q.Term, "q", "", "search term")
	fs.BoolVar(&q.Desc, "desc", false, "sort in descending order")
	fs.IntVar(&q.Page, "page", 1, "page to print")
	if err := parse(fs, args); err != nil {
		return err
	}

	var err error
	if q.FilterBy, err = leaderboard.ParseColumn(*filterBy, leaderboard.ColumnEmail); err != nil {
		return err
	}
	if *sortBy != "" {
		if q.SortBy, err = leaderboard.ParseColumn(*sortBy, leaderboard.ColumnRank); err != nil {
			return err
		}
	}

	var rows []leaderboard.Row
	if *allTime {
		entries, err := cli.api.GetAllTimeLeaderboard(ctx)
		if err != nil {
			return errors.Wrap(err, "fetching all-time leaderboard")
		}
		rows = leaderboard.FromAllTime(entries)
	} else {
		day := cli.now()
		if *date != "" {
			if day, err = time.ParseInLocation(leaderboard.DateLayout, *date, time.Local); err != nil {
				return errors.Errorf("invalid date %q: expected YYYY-MM-DD", *date)
			}
		}
		subs, err := cli.api.GetDateSpecificLeaderboard(ctx, day)
		if err != nil {
			return errors.Wrap(err, "fetching daily leaderboard")
		}
		rows = leaderboard.FromSubmissions(subs)
	}
	return printLeaderboard(cli.out, leaderboard.Apply(rows, q))
}

func (cli *commandLine) submit(ctx context.Context, args []string) error {
	fs := cli.flagSet("submit")
	id := fs.String("assignment", "", "id of the assignment")
	link := fs.String("link", "", "GitHub repository of your work")
	if err := parse(fs, args, "assignment", "link"); err != nil {
		return err
	}

	d, err := dashboardAs[*dashboard.Student](ctx, cli)
	if err != nil {
		return err
	}
	sub, err := d.Submit(ctx, *id, *link)
	if err != nil {
		return errors.Wrap(err, "submitting assignment")
	}
	if sub.Score != nil {
		fmt.Fprintf(cli.out, "Score: %s\n", core.FormatScore(*sub.Score))
	}
	return nil
}

func (cli *commandLine) assignmentFlags(name string) (*pflag.FlagSet, *assignment.Draft, *string) {
	fs := cli.flagSet(name)
	draft := new(assignment.Draft)
	due := new(string)
	fs.StringVar(&draft.Title, "title", "", "title of the assignment")
	fs.StringVar(&draft.Description, "description", "", "what students should do")
	fs.StringVar(due, "due", "", "due date (YYYY-MM-DD or YYYY-MM-DDTHH:MM, local time)")
	fs.Float64Var(&draft.TotalScore, "total", 0, "total score")
	return fs, draft, due
}

func parseDue(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil // `required` reports it
	}
	for _, layout := range []string{dueLayout, leaderboard.DateLayout} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, core.NewValidationError(nil, core.FieldError{Field: "dueDate", Error: "dueDate must be formatted as YYYY-MM-DD or YYYY-MM-DDTHH:MM"})
}

func (cli *commandLine) createAssignment(ctx context.Context, args []string) error {
	fs, draft, due := cli.assignmentFlags("create-assignment")
	if err := parse(fs, args); err != nil {
		return err
	}
	var err error
	if draft.DueDate, err = parseDue(*due); err != nil {
		return err
	}

	d, err := dashboardAs[*dashboard.Teacher](ctx, cli)
	if err != nil {
		return err
	}
	created, err := d.CreateAssignment(ctx, *draft)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	fmt.Fprintf(cli.out, "Assignment %s created\n", created.ID)
	return nil
}

func (cli *commandLine) editAssignment(ctx context.Context, args []string) error {
	fs, draft, due := cli.assignmentFlags("edit-assignment")
	id := fs.String("id", "", "id of the assignment")
	if err := parse(fs, args, "id"); err != nil {
		return err
	}
	var err error
	if draft.DueDate, err = parseDue(*due); err != nil {
		return err
	}

	d, err := dashboardAs[*dashboard.Teacher](ctx, cli)
	if err != nil {
		return err
	}
	if err = d.Load(ctx); err != nil {
		return errors.Wrap(err, "loading dashboard")
	}
	if _, err = d.EditAssignment(ctx, *id, *draft); err != nil {
		return errors.Wrap(err, "editing assignment")
	}
	return nil
}

func (cli *commandLine) report(ctx context.Context, args []string) error {
	fs := cli.flagSet("report")
	id := fs.String("student", "", "id of the student")
	if err := parse(fs, args, "student"); err != nil {
		return err
	}

	d, err := dashboardAs[*dashboard.Teacher](ctx, cli)
	if err != nil {
		return err
	}
	if err = d.Load(ctx); err != nil {
		return errors.Wrap(err, "loading dashboard")
	}
	rep, err := d.Report(*id)
	if err != nil {
		return err
	}
	return printReport(cli.out, rep)
}

func (cli *commandLine) approve(ctx context.Context, args []string) error {
	return cli.setTeacherStatus(ctx, "approve", args, (*dashboard.Admin).Approve)
}

func (cli *commandLine) reject(ctx context.Context, args []string) error {
	return cli.setTeacherStatus(ctx, "reject", args, (*dashboard.Admin).Reject)
}

func (cli *commandLine) setTeacherStatus(
	ctx context.Context,
	name string,
	args []string,
	action func(d *dashboard.Admin, ctx context.Context, id string) error,
) error {
	fs := cli.flagSet(name)
	id := fs.String("id", "", "id of the teacher application")
	if err := parse(fs, args, "id"); err != nil {
		return err
	}

	d, err := dashboardAs[*dashboard.Admin](ctx, cli)
	if err != nil {
		return err
	}
	if err = action(d, ctx, *id); err != nil {
		return errors.Wrapf(err, "%s teacher", name)
	}
	fmt.Fprintf(cli.out, "Teacher %s: %sd\n", *id, name)
	return nil
}

func (cli *commandLine) deleteAccount(ctx context.Context, _ []string) error {
	d, err := dashboardAs[*dashboard.Rejected](ctx, cli)
	if err != nil {
		return err
	}
	if _, err = d.DeleteAccount(ctx); err != nil {
		return errors.Wrap(err, "deleting account")
	}
	return nil
}
