package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/ignatzorin/report-accident/internal/account"
	"github.com/ignatzorin/report-accident/internal/api"
	"github.com/ignatzorin/report-accident/internal/config"
	"github.com/ignatzorin/report-accident/internal/directory"
	"github.com/ignatzorin/report-accident/internal/dispatch"
	"github.com/ignatzorin/report-accident/internal/logger"
	"github.com/ignatzorin/report-accident/internal/media"
	"github.com/ignatzorin/report-accident/internal/models"
	"github.com/ignatzorin/report-accident/internal/pkg/apperror"
	"github.com/ignatzorin/report-accident/internal/report"
	"github.com/ignatzorin/report-accident/internal/session"
	"github.com/ignatzorin/report-accident/internal/watch"
)

const usage = `usage: reporter [-server URL] <command> [flags]

commands:
  login        -email -password
  register     -name -email -password
  submit       -name -phone -type Car|Pedestrian|Bike -image PATH
  reports      list reports of the logged-in user
  all-reports  list every report
  solve        -id REPORT_ID
  delete       -id REPORT_ID
  companies    list insurance companies
  breakdowns   list breakdown services
  watch        follow report changes until interrupted

REPORTER_TOKEN and REPORTER_USER_ID restore a session printed by login.
`

type app struct {
	client   *api.Client
	sessions *session.Store
}

func main() {
	server := flag.String("server", "", "Override API base URL (e.g. http://127.0.0.1:8000)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	level := cfg.LogLevel
	if level == "" {
		level = "warn"
	}
	logger.Setup(cfg.Env, level)

	baseURL := cfg.APIBaseURL
	if *server != "" {
		baseURL = strings.TrimRight(*server, "/")
	}

	a := &app{
		client:   api.NewClient(baseURL, cfg.HTTPTimeout),
		sessions: session.NewStore(),
	}
	if cfg.Token != "" && cfg.UserID != 0 {
		a.sessions.Set(cfg.Token, cfg.UserID)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "register":
		return a.register(ctx, args)
	case "submit":
		return a.submit(ctx, args)
	case "reports":
		return a.reports(ctx)
	case "all-reports":
		return a.allReports(ctx)
	case "solve":
		return a.mutate(ctx, "solve", args)
	case "delete":
		return a.mutate(ctx, "delete", args)
	case "companies":
		return a.providers(ctx, directory.NewService(a.client).Companies)
	case "breakdowns":
		return a.providers(ctx, directory.NewService(a.client).Breakdowns)
	case "watch":
		return a.watch(ctx)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password")
	_ = fs.Parse(args)

	user, err := account.NewService(a.client, a.sessions).Login(ctx, *email, *password)
	if err != nil {
		return authError(err)
	}
	a.printSession(user)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "Full name")
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Password: 8+ chars with a letter and a digit")
	_ = fs.Parse(args)

	user, err := account.NewService(a.client, a.sessions).Register(ctx, *name, *email, *password)
	if err != nil {
		return authError(err)
	}
	a.printSession(user)
	return nil
}

// authError текст ошибки входа и регистрации.
func authError(err error) error {
	if apperror.IsDecodeFailure(err) {
		return errors.New("Invalid response from server")
	}
	return errors.New(report.Alert("", err))
}

func (a *app) printSession(user models.User) {
	fmt.Printf("Logged in as %s (id %d)\n", user.Name, user.ID)
	fmt.Printf("export REPORTER_USER_ID=%d\n", user.ID)
	fmt.Printf("export REPORTER_TOKEN=%s\n", a.sessions.Token())
}

// submit отправляет отчёт в фоне, результат печатается на цикле main горутины.
func (a *app) submit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	name := fs.String("name", "", "Reporter name")
	phone := fs.String("phone", "", "Reporter phone")
	kind := fs.String("type", string(models.AccidentCar), "Accident type: Car, Pedestrian or Bike")
	imagePath := fs.String("image", "", "Path to the accident photo")
	_ = fs.Parse(args)

	accidentType, ok := models.ParseAccidentType(*kind)
	if !ok {
		return fmt.Errorf("unknown accident type %q", *kind)
	}

	form := report.Form{Name: *name, Phone: *phone, AccidentType: accidentType}
	if *imagePath != "" {
		img, err := media.LoadImage(*imagePath)
		if err != nil {
			return err
		}
		form.Image = img
	}

	loop := dispatch.NewLoop(0)
	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()

	submitter := report.NewSubmitter(a.client, nil, a.sessions, dispatch.NewDispatcher(loop))

	var result error
	submitter.SubmitAsync(ctx, form).Then(func(message string, err error) {
		fmt.Println(report.Alert(message, err))
		result = err
		stopLoop()
	})
	loop.Run(loopCtx)

	if result == nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return result
}

func (a *app) reports(ctx context.Context) error {
	sync := report.NewSynchronizer(a.client, a.sessions, nil)
	if err := sync.Refresh(ctx); err != nil {
		return errors.New(report.Alert("", err))
	}
	printRows(report.BuildRows(sync.Reports(), nil))
	return nil
}

func (a *app) allReports(ctx context.Context) error {
	reports, err := a.client.ListAllReports(ctx)
	if err != nil {
		return errors.New(report.Alert("", err))
	}
	printRows(report.BuildRows(reports, nil))
	return nil
}

func (a *app) mutate(ctx context.Context, op string, args []string) error {
	fs := flag.NewFlagSet(op, flag.ExitOnError)
	id := fs.String("id", "", "Report id")
	_ = fs.Parse(args)
	if *id == "" {
		return errors.New("-id is required")
	}

	sync := report.NewSynchronizer(a.client, a.sessions, nil)
	if err := sync.Refresh(ctx); err != nil {
		return errors.New(report.Alert("", err))
	}
	mutator := report.NewMutator(a.client, sync, nil, nil)

	var err error
	if op == "solve" {
		err = mutator.MarkSolved(ctx, *id)
	} else {
		err = mutator.Delete(ctx, *id)
	}
	if err != nil {
		return errors.New(report.Alert("", err))
	}

	printRows(report.BuildRows(sync.Reports(), mutator.Pending()))
	return nil
}

func (a *app) providers(ctx context.Context, list func(context.Context) ([]models.Provider, error)) error {
	providers, err := list(ctx)
	if err != nil {
		return errors.New(report.Alert("", err))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPHONE\tDIAL\tLOGO")
	for _, p := range providers {
		dial, ok := directory.DialURL(p.Phone)
		if !ok {
			dial = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.Phone, dial, p.Logo)
	}
	return w.Flush()
}

func (a *app) watch(ctx context.Context) error {
	sync := report.NewSynchronizer(a.client, a.sessions, nil)
	if err := sync.Refresh(ctx); err != nil {
		return errors.New(report.Alert("", err))
	}
	printRows(report.BuildRows(sync.Reports(), nil))

	sync.OnChange(func(reports []models.Report) {
		fmt.Println()
		printRows(report.BuildRows(reports, nil))
	})

	watcher := watch.NewWatcher(a.client, a.sessions, sync)
	watcher.OnEvent(func(change models.ReportChange) {
		fmt.Printf("report %s %s\n", change.ReportID, change.Action)
	})

	fmt.Println("Watching for changes, press Ctrl+C to stop")
	if err := watcher.Run(ctx); err != nil {
		return errors.New(report.Alert("", err))
	}
	return nil
}

func printRows(rows []report.Row) {
	if len(rows) == 0 {
		fmt.Println("No reports")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tNAME\tPHONE\tCREATED\tACTIONS")
	for _, row := range rows {
		r := row.Report
		created := "-"
		if r.CreatedAt != nil {
			created = *r.CreatedAt
		}
		var actions []string
		if row.CanMarkSolved {
			actions = append(actions, "solve")
		}
		if row.CanDelete {
			actions = append(actions, "delete")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.AccidentType, row.StatusLabel, r.ReporterName, r.ReporterPhone, created, strings.Join(actions, ","))
	}
	_ = w.Flush()
}
