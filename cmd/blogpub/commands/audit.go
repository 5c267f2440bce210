package commands

import (
	"fmt"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/blogpub/internal/config"
	"git.home.luguber.info/inful/blogpub/internal/content"
)

// AuditCmd implements the 'audit' command.
type AuditCmd struct {
	Quiet  bool `short:"q" help:"Quiet mode: only show errors, suppress warnings"`
	Strict bool `help:"Exit non-zero when any finding exists, warnings included"`
	Output bool `help:"Also audit generated HTML in the output directory"`
}

func (a *AuditCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	repoDir, err := RepoRoot(root.Config)
	if err != nil {
		return fmt.Errorf("resolve repository root: %w", err)
	}

	findings, err := content.AuditContent(repoDir, cfg.Content.Dir)
	if err != nil {
		return fmt.Errorf("audit content: %w", err)
	}

	if a.Output {
		outFindings, err := content.AuditOutput(repoDir, cfg.Generator.OutputDir, cfg.Site.BaseURL)
		if err != nil {
			return fmt.Errorf("audit output: %w", err)
		}
		findings = append(findings, outFindings...)
	}

	errorCount, warningCount := reportFindings(findings, a.Quiet)

	if errorCount == 0 && warningCount == 0 {
		fmt.Println("Audit passed: no findings")
		return nil
	}
	fmt.Printf("Audit finished: %d errors, %d warnings\n", errorCount, warningCount)

	// Determine exit code based on results
	if errorCount > 0 {
		os.Exit(2) // Errors found (blocks publish)
	} else if a.Strict {
		os.Exit(1) // Warnings present and strict mode requested
	}
	return nil
}

// reportFindings logs each finding at its severity and returns the counts.
func reportFindings(findings []content.Finding, quiet bool) (errorCount, warningCount int) {
	for _, f := range findings {
		attrs := []any{
			slog.String("file", f.File),
			slog.String("rule", f.Rule),
		}
		if f.Severity == content.SeverityWarning {
			warningCount++
			if !quiet {
				slog.Warn(f.Message, attrs...)
			}
			continue
		}
		errorCount++
		slog.Error(f.Message, attrs...)
	}
	return errorCount, warningCount
}
