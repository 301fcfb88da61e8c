package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/pythia/pkg/cli/config"
	"github.com/secmon-lab/pythia/pkg/domain/model"
	"github.com/secmon-lab/pythia/pkg/domain/types"
	"github.com/secmon-lab/pythia/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdResearch() *cli.Command {
	var userID string
	var depth string
	var skipFactCheck bool
	var skipCache bool
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var searchCfg config.Search

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Usage:       "User ID for local knowledge and cache scoping",
			Value:       "local",
			Sources:     cli.EnvVars("PYTHIA_USER_ID"),
			Destination: &userID,
		},
		&cli.StringFlag{
			Name:        "depth",
			Usage:       "Force depth level (quick, standard, deep)",
			Destination: &depth,
		},
		&cli.BoolFlag{
			Name:        "skip-fact-check",
			Usage:       "Skip the fact check phase",
			Destination: &skipFactCheck,
		},
		&cli.BoolFlag{
			Name:        "no-cache",
			Usage:       "Bypass the research cache",
			Destination: &skipCache,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, searchCfg.Flags()...)

	return &cli.Command{
		Name:      "research",
		Aliases:   []string{"r"},
		Usage:     "Run one research query and print the result",
		ArgsUsage: "<query>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			query := strings.Join(c.Args().Slice(), " ")
			if query == "" {
				return goerr.New("query argument is required")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer repo.Close() //nolint:errcheck // process exits after this

			llm, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Gemini client")
			}

			uc := usecase.New(repo,
				usecase.WithLLM(llm),
				usecase.WithAdapters(searchCfg.Configure(repo, llm)...),
			)

			input := &usecase.ResearchInput{
				Query:         query,
				UserID:        userID,
				SkipFactCheck: skipFactCheck,
				SkipCache:     skipCache,
			}
			if depth != "" {
				d, err := types.ParseDepthLevel(depth)
				if err != nil {
					return err
				}
				input.DepthOverride = d
			}

			result, err := uc.Research.Research(ctx, input)
			if err != nil {
				return err
			}

			printResult(result)
			return nil
		},
	}
}

func printResult(result *model.ResearchResult) {
	title := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)

	title.Printf("# %s\n", result.Query)
	if result.FromCache {
		dim.Println("(cached result)")
	}
	fmt.Println()
	fmt.Println(result.Synthesis)
	fmt.Println()

	if len(result.Sources) > 0 {
		title.Println("## Sources")
		for i, src := range result.Sources {
			fmt.Printf("[%d] %s\n", i+1, src.Title)
			dim.Printf("    %s | %s | score %.2f (%s)\n",
				src.SourceType, src.URL, src.FinalScore, src.CredibilityTier)
		}
		fmt.Println()
	}

	if fc := result.FactCheck; fc != nil {
		title.Println("## Fact check")
		fmt.Printf("reliability %.2f, %d verified, %d flagged\n",
			fc.OverallReliability, fc.VerifiedCount, fc.FlaggedCount)
		for _, check := range fc.Claims {
			marker := color.GreenString("✓")
			if check.Verdict.Flagged() {
				marker = color.RedString("✗")
			} else if check.Verdict != types.VerdictVerified {
				marker = color.YellowString("?")
			}
			fmt.Printf("%s [%s] %s\n", marker, check.Verdict, check.Text)
		}
		if fc.Summary != "" {
			dim.Println(fc.Summary)
		}
	}
}
