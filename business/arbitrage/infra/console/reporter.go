// Package console renders composition results for terminal output.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/crossarb/crossarb/business/arbitrage/app"
	"github.com/crossarb/crossarb/business/arbitrage/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(22)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	profitStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	lossStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2)
)

// Reporter renders arbitrage results to a writer.
type Reporter struct {
	w io.Writer
}

// NewReporter creates a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// RenderResult prints one round-trip composition.
func (r *Reporter) RenderResult(strategy domain.Strategy, result *domain.ArbitrageResult) {
	var b strings.Builder

	title := fmt.Sprintf("%s/%s  %s → %s",
		strategy.SourceToken, strategy.TargetToken,
		strategy.SourceChain, strategy.TargetChain)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	row("Amount in", fmt.Sprintf("%s %s", strategy.Amount, strategy.SourceToken))
	row("Leg 1 output", fmt.Sprintf("%s %s via %s", result.SourceOutputAmount, strategy.TargetToken, result.SourceProviderID))
	row("Leg 2 output", fmt.Sprintf("%s %s via %s", result.FinalOutputAmount, strategy.SourceToken, result.TargetProviderID))
	row("Gross profit", fmt.Sprintf("%s (%s%%)", result.GrossProfitAmount, result.GrossProfitPct.StringFixed(4)))
	row("Modeled fees", result.TotalFees.String())

	netStyle := profitStyle
	verdict := "PROFITABLE"
	if !result.Profitable {
		netStyle = lossStyle
		verdict = "NOT PROFITABLE"
	}
	b.WriteString(labelStyle.Render("Net profit"))
	b.WriteString(netStyle.Render(fmt.Sprintf("%s (%s%%)  %s",
		result.NetProfitAmount, result.NetProfitPct.StringFixed(4), verdict)))
	b.WriteString("\n")

	if len(result.SourceRoute) > 0 {
		row("Leg 1 route", routeLine(result))
	}

	fmt.Fprintln(r.w, boxStyle.Render(b.String()))
}

// RenderComparison prints a side-by-side provider comparison.
func (r *Reporter) RenderComparison(chain, tokenIn, tokenOut string, comparisons []app.ProviderComparison) {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s → %s on %s", tokenIn, tokenOut, chain)))
	b.WriteString("\n")

	for _, cmp := range comparisons {
		b.WriteString(labelStyle.Render(cmp.ProviderID))
		if cmp.Err != nil {
			b.WriteString(errStyle.Render(fmt.Sprintf("failed: %v", cmp.Err)))
		} else {
			b.WriteString(valueStyle.Render(fmt.Sprintf("price %s, out %s",
				cmp.Price.String(), cmp.Quote.AmountOut)))
		}
		b.WriteString("\n")
	}

	fmt.Fprintln(r.w, boxStyle.Render(b.String()))
}

func routeLine(result *domain.ArbitrageResult) string {
	names := make([]string, 0, len(result.SourceRoute))
	for _, step := range result.SourceRoute {
		names = append(names, step.DexName)
	}
	return strings.Join(names, " > ")
}
