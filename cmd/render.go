package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stsysd/bathtiles/api"
	"github.com/stsysd/bathtiles/config"
	"github.com/stsysd/bathtiles/heatmap"
	"github.com/stsysd/bathtiles/model"
	"github.com/stsysd/bathtiles/store"
)

// viewerLogin selects the authenticated GitHub user.
const viewerLogin = "@me"

type renderFlags struct {
	input      string
	sqlite     string
	query      string
	githubUser string
	from       string
	to         string
	format     string
	style      string
	merge      string
	color      string
	output     string
}

func newRenderCmd(deps Deps) *cobra.Command {
	var f renderFlags

	c := &cobra.Command{
		Use:   "render",
		Short: "Render one calendar to SVG, the terminal, or JSON",
		Long: `Render one calendar. The submission payload is read from --input (or stdin),
summed from a SQLite query (--sqlite), or fetched from a GitHub contribution
calendar (--github-user, "@me" for the authenticated user).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(cmd.Context(), deps, &f)
		},
	}

	c.Flags().StringVarP(&f.input, "input", "i", "", `payload file ("-" or empty for stdin)`)
	c.Flags().StringVar(&f.sqlite, "sqlite", "", "SQLite database to read submissions from")
	c.Flags().StringVar(&f.query, "query", "", "SQL returning (epoch seconds, count) rows (default: "+store.DefaultSQLiteQuery+")")
	c.Flags().StringVarP(&f.githubUser, "github-user", "u", "", `GitHub login to fetch contributions for ("@me" for yourself)`)
	c.Flags().StringVarP(&f.from, "from", "f", "", "start date for --github-user (YYYY-MM-DD)")
	c.Flags().StringVarP(&f.to, "to", "t", "", "end date for --github-user (YYYY-MM-DD)")
	c.Flags().StringVar(&f.format, "format", "svg", "output format: svg, term, or json")
	c.Flags().StringVar(&f.style, "style", "", "YAML style file")
	c.Flags().StringVar(&f.merge, "merge", "", "same-day policy: overwrite, sum, or reject")
	c.Flags().StringVar(&f.color, "color", "", "color of the most active bucket, e.g. #216e39")
	c.Flags().StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")

	c.MarkFlagsMutuallyExclusive("input", "sqlite", "github-user")
	return c
}

func render(ctx context.Context, deps Deps, f *renderFlags) error {
	format := strings.ToLower(f.format)
	switch format {
	case "svg", "term", "json":
	default:
		return fmt.Errorf("invalid --format %q (expected svg, term, or json)", f.format)
	}
	if (f.from != "" || f.to != "") && f.githubUser == "" {
		return fmt.Errorf("--from and --to require --github-user")
	}
	if f.query != "" && f.sqlite == "" {
		return fmt.Errorf("--query requires --sqlite")
	}

	opts, err := renderOptions(deps, f)
	if err != nil {
		return err
	}

	payload, err := loadPayload(ctx, deps, f)
	if err != nil {
		return err
	}

	cal, err := heatmap.NewCalendar(payload, opts)
	if err != nil {
		return err
	}
	m, err := cal.Model()
	if err != nil {
		return err
	}

	var out []byte
	switch format {
	case "svg":
		out = []byte(heatmap.GenerateCalendarSVG(m, cal.Palette(), cal.Options()))
	case "term":
		out = []byte(heatmap.GenerateTerminalHeatmap(m, cal.Palette()))
	case "json":
		assembler := cal.Assembler()
		out, err = json.MarshalIndent(&api.ModelResponse{
			Model:       m,
			MonthLabels: assembler.MonthLabels(),
			Legend:      assembler.LegendBuckets(),
			Palette:     cal.Palette(),
		}, "", "  ")
		if err != nil {
			return err
		}
		out = append(out, '\n')
	}

	if f.output == "" || f.output == "-" {
		_, err := deps.Stdout.Write(out)
		return err
	}
	return os.WriteFile(f.output, out, 0o644)
}

func renderOptions(deps Deps, f *renderFlags) (*heatmap.Options, error) {
	style, err := config.LoadStyle(f.style)
	if err != nil {
		return nil, err
	}
	if f.color != "" {
		style.Colors.MainColor = f.color
	}
	if f.merge != "" {
		style.Merge = f.merge
	}
	opts, err := style.Options()
	if err != nil {
		return nil, err
	}
	if deps.Now != nil {
		opts.Now = deps.Now
	}
	return opts, nil
}

func loadPayload(ctx context.Context, deps Deps, f *renderFlags) ([]byte, error) {
	var src store.Source
	switch {
	case f.sqlite != "":
		src = &store.SQLiteSource{Path: f.sqlite, Query: f.query}

	case f.githubUser != "":
		dr, err := model.NewDateRange(f.from, f.to, deps.now())
		if err != nil {
			return nil, err
		}
		client, err := deps.GraphQLClient()
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub client (try `gh auth login`): %w", err)
		}
		login := f.githubUser
		if login == viewerLogin {
			login = ""
		}
		src = &store.GitHubSource{Login: login, From: dr.From(), To: dr.To(), Client: client}

	case f.input != "" && f.input != "-":
		return os.ReadFile(f.input)

	default:
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, deps.Stdin); err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return buf.Bytes(), nil
	}
	return src.Load(ctx)
}
