package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/usersearch/internal/app"
	"github.com/kailas-cloud/usersearch/internal/config"
	"github.com/kailas-cloud/usersearch/internal/detect"
	domuser "github.com/kailas-cloud/usersearch/internal/domain/user"
	logpkg "github.com/kailas-cloud/usersearch/internal/logger"
	"github.com/kailas-cloud/usersearch/internal/normalize"
	"github.com/kailas-cloud/usersearch/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "usersearchctl",
		Usage:   "Admin tool for the natural-language user search service",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Config environment (config/<env>.yaml)",
				EnvVars: []string{"ENV"},
				Value:   logpkg.EnvLocal,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "normalize",
				Usage:     "Print the normalized form of a query",
				ArgsUsage: "<query>",
				Action:    normalizeCommand,
			},
			{
				Name:      "detect",
				Usage:     "Run the pattern detectors only",
				ArgsUsage: "<query>",
				Action:    detectCommand,
			},
			{
				Name:      "parse",
				Usage:     "Run the full interpretation pipeline (cache, detectors, model)",
				ArgsUsage: "<query>",
				Action:    withApp(parseCommand),
			},
			{
				Name:   "migrate",
				Usage:  "Create or update the users table",
				Action: withApp(migrateCommand),
			},
			{
				Name:   "seed",
				Usage:  "Insert users from a JSON file",
				Action: withApp(seedCommand),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSON array of {full_name, username, gender, profile_pic}",
						Required: true,
					},
				},
			},
			{
				Name:  "cache",
				Usage: "Inspect or clear the query cache",
				Subcommands: []*cli.Command{
					{
						Name:   "stats",
						Usage:  "Show per-tier cache state",
						Action: withApp(cacheStatsCommand),
					},
					{
						Name:   "clear",
						Usage:  "Remove every cached query from all tiers",
						Action: withApp(cacheClearCommand),
					},
				},
			},
		},
	}
}

func queryArg(c *cli.Context) (string, error) {
	q := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(q) == "" {
		return "", cli.Exit("query argument is required", 2)
	}
	return q, nil
}

func normalizeCommand(c *cli.Context) error {
	q, err := queryArg(c)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, normalize.Normalize(normalize.FirstLine(q)))
	return err
}

type detectOutput struct {
	Normalized string          `json:"normalized"`
	Found      bool            `json:"found"`
	Matched    []string        `json:"matched"`
	Filters    json.RawMessage `json:"filters,omitempty"`
	Warnings   []string        `json:"warnings,omitempty"`
}

func detectCommand(c *cli.Context) error {
	q, err := queryArg(c)
	if err != nil {
		return err
	}
	norm := normalize.Normalize(normalize.FirstLine(q))
	det := detect.Default().Detect(norm)

	out := detectOutput{Normalized: norm, Found: det.Found(), Matched: det.Matched, Warnings: det.Warnings}
	if det.Found() {
		raw, err := json.Marshal(det.Filters())
		if err != nil {
			return fmt.Errorf("encode filters: %w", err)
		}
		out.Filters = raw
	}
	return printJSON(c.App.Writer, out)
}

// withApp loads config, builds the components and closes them after action.
func withApp(action func(*cli.Context, *app.App) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		env := c.String("env")
		cfg, err := config.Load(env)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err := logpkg.NewLogger(env, c.String("log-level"))
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		a, err := app.New(c.Context, cfg, logger)
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		defer a.Close()
		return action(c, a)
	}
}

func parseCommand(c *cli.Context, a *app.App) error {
	q, err := queryArg(c)
	if err != nil {
		return err
	}
	out := a.Parser.Parse(c.Context, q)
	raw, err := json.Marshal(out.Filters)
	if err != nil {
		return fmt.Errorf("encode filters: %w", err)
	}
	return printJSON(c.App.Writer, map[string]any{
		"source":  out.Source,
		"filters": json.RawMessage(raw),
	})
}

func migrateCommand(c *cli.Context, a *app.App) error {
	if err := a.Users.Migrate(c.Context); err != nil {
		return err
	}
	_, err := fmt.Fprintln(c.App.Writer, "users table is up to date")
	return err
}

// seedUser is one entry of the seed file.
type seedUser struct {
	FullName   string  `json:"full_name"`
	Username   string  `json:"username"`
	Gender     string  `json:"gender"`
	ProfilePic *string `json:"profile_pic"`
}

func readSeed(r io.Reader) ([]domuser.Record, error) {
	var users []seedUser
	if err := json.NewDecoder(r).Decode(&users); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	out := make([]domuser.Record, 0, len(users))
	for i, u := range users {
		if u.FullName == "" || u.Username == "" {
			return nil, fmt.Errorf("seed entry %d: full_name and username are required", i)
		}
		switch u.Gender {
		case "Male", "Female", "Other":
		default:
			return nil, fmt.Errorf("seed entry %d: gender must be Male, Female or Other, got %q", i, u.Gender)
		}
		out = append(out, domuser.Record{
			FullName:   u.FullName,
			Username:   u.Username,
			Gender:     u.Gender,
			ProfilePic: u.ProfilePic,
		})
	}
	return out, nil
}

func seedCommand(c *cli.Context, a *app.App) error {
	f, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	records, err := readSeed(f)
	if err != nil {
		return err
	}
	if err := a.Users.Migrate(c.Context); err != nil {
		return err
	}
	created, err := a.Users.CreateBatch(c.Context, records)
	if err != nil {
		return err
	}
	a.Logger.Info("Seeded users", zap.Int("count", len(created)))
	_, err = fmt.Fprintf(c.App.Writer, "inserted %d users\n", len(created))
	return err
}

func cacheStatsCommand(c *cli.Context, a *app.App) error {
	return printJSON(c.App.Writer, a.Cache.Stats(c.Context))
}

func cacheClearCommand(c *cli.Context, a *app.App) error {
	cleared, err := a.Cache.Clear(c.Context)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, cleared)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
