package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ilia01/ghcpi/internal/config"
	"github.com/Ilia01/ghcpi/internal/document"
	"github.com/Ilia01/ghcpi/internal/github"
	"github.com/Ilia01/ghcpi/internal/logging"
	"github.com/Ilia01/ghcpi/internal/models"
	"github.com/Ilia01/ghcpi/internal/project"
	"github.com/Ilia01/ghcpi/internal/utils"
)

const runTimeout = 2 * time.Minute

type gitHubService interface {
	project.Remote
	FindOwner(ctx context.Context, login string) (models.Owner, error)
	Viewer(ctx context.Context) (string, error)
}

var (
	gitHubFactory = func(token, apiURL string, logger *zap.Logger) gitHubService {
		return github.NewClient(token, github.WithBaseURL(apiURL), github.WithLogger(logger))
	}

	clock   = time.Now
	openURL = utils.OpenURL

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

type runOptions struct {
	File     string
	Fallback string
	Open     bool
}

// run is what create and preview share: settings, logger, client and the
// loaded request.
type run struct {
	logger  *zap.Logger
	client  gitHubService
	binder  *project.Binder
	request models.IssueRequest
	now     time.Time
}

func prepareRun(ctx context.Context, opts runOptions) (*run, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	if settings.GitHub.Token == "" {
		return nil, errors.New("GitHub token not configured. Use --token, GH_TOKEN or 'ghcpi config set github.token <token>'")
	}

	path := opts.File
	if path == "" {
		path = settings.Defaults.IssueFile
	}
	if path == "" {
		return nil, errors.New("issue file required. Pass it as an argument, with --file or GH_CPI_ISSUE_FILE")
	}

	fallback := opts.Fallback
	if fallback == "" {
		fallback = settings.Defaults.IterationFallback
	}
	policy, err := project.ParseMatchPolicy(fallback)
	if err != nil {
		return nil, err
	}

	logger, err := newRunLogger(settings)
	if err != nil {
		return nil, err
	}

	doc, err := document.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("issue file loaded", zap.String("path", path), zap.String("owner", doc.Header.Owner))

	client := gitHubFactory(settings.GitHub.Token, settings.GitHub.APIURL, logger)
	owner, err := client.FindOwner(ctx, doc.Header.Owner)
	if err != nil {
		return nil, fmt.Errorf("resolve owner %s: %w", doc.Header.Owner, err)
	}

	return &run{
		logger:  logger,
		client:  client,
		binder:  project.NewBinder(client, project.WithLogger(logger), project.WithMatchPolicy(policy)),
		request: doc.Request(owner),
		now:     clock().UTC(),
	}, nil
}

func handleCreate(opts runOptions) error {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	r, err := prepareRun(ctx, opts)
	if err != nil {
		return err
	}
	defer r.logger.Sync()

	fmt.Fprintln(stderr, utils.Cyan(utils.Bold(fmt.Sprintf("Creating issue in %s...", r.request.Repo()))))
	result, err := r.binder.Execute(ctx, r.request, r.now)
	if err != nil {
		var addErr *project.AddToProjectError
		if errors.As(err, &addErr) {
			fmt.Fprintf(stderr, "  %s %s\n", utils.Yellow("Issue created but not added to the project:"), utils.BrightWhite(addErr.IssueURL))
		}
		return &ExitError{Code: ExitFailure, Err: err}
	}

	fmt.Fprintln(stderr)
	fmt.Fprintf(stderr, "  %s %s\n", utils.Bold("Title:"), result.Title)
	fmt.Fprintf(stderr, "  %s %s\n", utils.Bold("Issue:"), utils.BrightWhite(result.Issue.HTMLURL))
	fmt.Fprintln(stderr)
	printOutcomes(stderr, result.Outcomes)
	fmt.Fprintln(stdout, result.Issue.HTMLURL)

	if opts.Open {
		if err := openURL(result.Issue.HTMLURL); err != nil {
			fmt.Fprintf(stderr, "  %s %v\n", utils.Yellow("Could not open browser:"), err)
		}
	}

	if result.Status() == project.StatusPartial {
		failed := result.Failed()
		return &ExitError{
			Code: ExitPartial,
			Err:  fmt.Errorf("issue created but %d of %d fields were not set; fix the file and set them on the board (re-running creates a new issue)", len(failed), len(result.Outcomes)),
		}
	}

	fmt.Fprintln(stderr)
	fmt.Fprintln(stderr, utils.Green(utils.Bold("✓ Issue filed")))
	return nil
}

func handlePreview(opts runOptions) error {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	r, err := prepareRun(ctx, opts)
	if err != nil {
		return err
	}
	defer r.logger.Sync()

	plan, err := r.binder.Plan(ctx, r.request, r.now)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	fmt.Fprintln(stdout, utils.Cyan(utils.Bold("Preview (nothing will be created)")))
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "  %s %s\n", utils.Bold("Repository:"), r.request.Repo())
	fmt.Fprintf(stdout, "  %s %s\n", utils.Bold("Title:"), plan.Title)
	fmt.Fprintf(stdout, "  %s %d (%s)\n", utils.Bold("Project:"), r.request.Project, plan.Schema.ProjectID)
	fmt.Fprintln(stdout)
	printOutcomes(stdout, plan.Outcomes)

	failed := 0
	for _, o := range plan.Outcomes {
		if !o.OK() {
			failed++
		}
	}
	if failed > 0 {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("%d field values do not match the project", failed)}
	}
	return nil
}

func printOutcomes(w io.Writer, outcomes []project.FieldOutcome) {
	for _, o := range outcomes {
		if o.OK() {
			fmt.Fprintf(w, "  %s %-10s %s %s\n", utils.Green("✓"), o.Field, o.Value, utils.Dim(o.Resolved.ValueID))
			continue
		}
		fmt.Fprintf(w, "  %s %-10s %s\n", utils.Red("✗"), o.Field, utils.Yellow(o.Err.Error()))
	}
}

func handleIteration(inception, at string) error {
	schedule, err := project.ParseSchedule(inception)
	if err != nil {
		return err
	}
	asOf := clock().UTC()
	if at != "" {
		asOf, err = time.Parse(project.DateLayout, at)
		if err != nil {
			return fmt.Errorf("--at must be a YYYY-MM-DD date: %w", err)
		}
	}

	fmt.Fprintln(stdout, utils.Cyan(utils.Bold(fmt.Sprintf("Iterations as of %s", asOf.Format(project.DateLayout)))))
	fmt.Fprintln(stdout)
	for _, sel := range []project.IterationSelector{project.SelectCurrent, project.SelectNext} {
		w := schedule.Window(sel, asOf)
		fmt.Fprintf(stdout, "  %-9s %s %d  %s .. %s\n",
			sel, utils.Bold("#"), w.Index, utils.BrightWhite(w.Label), w.End.AddDate(0, 0, -1).Format(project.DateLayout))
	}
	return nil
}

func handleConfigShow() error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	printConfig(settings)
	return nil
}

func handleConfigSet(key, value string) error {
	settings, err := config.Load()
	if err != nil {
		if !errors.Is(err, config.ErrConfigNotFound) {
			return err
		}
		settings = &config.Settings{}
	}
	if err := settings.Set(key, value); err != nil {
		return err
	}
	if err := settings.Save(); err != nil {
		return err
	}
	shown := value
	if key == "github.token" {
		shown = config.MaskToken(value)
	}
	fmt.Fprintln(stdout, utils.Green(utils.Bold(fmt.Sprintf("✓ Updated %s to: %s", key, shown))))
	return nil
}

func handleConfigValidate() error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, utils.Cyan(utils.Bold("Validating configuration...")))
	fmt.Fprintln(stdout)
	if settings.GitHub.Token == "" {
		return errors.New("GitHub token is empty")
	}

	logger, err := newRunLogger(settings)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Fprint(stdout, utils.Dim("  Testing GitHub connection... "))
	login, err := gitHubFactory(settings.GitHub.Token, settings.GitHub.APIURL, logger).Viewer(ctx)
	if err != nil {
		fmt.Fprintln(stdout, utils.Red("✗"))
		return fmt.Errorf("GitHub validation failed: %w", err)
	}
	fmt.Fprintln(stdout, utils.Green("✓"))
	fmt.Fprintf(stdout, "  %s %s\n", utils.Bold("Authenticated as:"), utils.BrightWhite(login))

	if _, err := project.ParseMatchPolicy(settings.Defaults.IterationFallback); err != nil {
		fmt.Fprintf(stdout, "  %s %v\n", utils.Yellow("Warning:"), err)
	}
	return nil
}

func handleConfigPath() error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, path)
	return nil
}

// loadSettings resolves file, .env and environment settings, then flags.
func loadSettings() (*config.Settings, error) {
	settings, err := config.Resolve()
	if err != nil {
		return nil, err
	}
	if token != "" {
		settings.GitHub.Token = token
	}
	if verbose {
		settings.Log.Level = "debug"
	}
	return settings, nil
}

func newRunLogger(settings *config.Settings) (*zap.Logger, error) {
	logger, err := logging.New(settings.Log.Level, stderr)
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("run", uuid.NewString())), nil
}

func printConfig(settings *config.Settings) {
	fmt.Fprintln(stdout, utils.Cyan(utils.Bold("Current Configuration")))
	fmt.Fprintln(stdout)

	apiURL := settings.GitHub.APIURL
	if apiURL == "" {
		apiURL = github.DefaultBaseURL
	}
	fmt.Fprintln(stdout, utils.Bold("[github]"))
	fmt.Fprintf(stdout, "  %s %s\n", utils.Dim("api_url:"), utils.BrightWhite(apiURL))
	fmt.Fprintf(stdout, "  %s %s\n", utils.Dim("token:"), utils.Yellow(config.MaskToken(settings.GitHub.Token)))

	fallback := settings.Defaults.IterationFallback
	if fallback == "" {
		fallback = project.MatchStrict.String()
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, utils.Bold("[defaults]"))
	fmt.Fprintf(stdout, "  %s %s\n", utils.Dim("issue_file:"), utils.BrightWhite(settings.Defaults.IssueFile))
	fmt.Fprintf(stdout, "  %s %s\n", utils.Dim("iteration_fallback:"), utils.BrightWhite(fallback))

	level := settings.Log.Level
	if level == "" {
		level = logging.DefaultLevel
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, utils.Bold("[log]"))
	fmt.Fprintf(stdout, "  %s %s\n", utils.Dim("level:"), utils.BrightWhite(level))
}
