package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/config"
	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/andresuchdata/salesperf/backend-go/internal/kpi"
	"github.com/andresuchdata/salesperf/backend-go/internal/service"
	"github.com/urfave/cli/v2"
)

const dateLayout = "2006-01-02"

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Print the KPI report for a window",
		Flags: append(dbFlags(),
			&cli.StringFlag{Name: "from", Usage: "First day of the window (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "to", Usage: "Day after the last day of the window (YYYY-MM-DD)"},
			&cli.IntFlag{Name: "month-offset", Usage: "Calendar month relative to the current one (0 or negative)"},
			&cli.StringSliceFlag{Name: "sales-exec", Usage: "Restrict the report to these salespeople"},
			&cli.StringFlag{Name: "kpi", Usage: "Print only this KPI short key"},
		),
		Before: initDB,
		After:  closeDB,
		Action: func(c *cli.Context) error {
			window, err := reportWindow(c, time.Now())
			if err != nil {
				return err
			}

			scope := domain.ScopeAll()
			if names := c.StringSlice("sales-exec"); len(names) > 0 {
				scope = domain.ScopeNames(names...)
			}

			cfg := config.Load()
			cat := catalogFrom(c)
			reports := service.NewReportService(storeFrom(c), cat, kpi.NewEngine(cfg.KPI.ShardSize, cfg.KPI.Workers), nil)

			defs, err := cat.List(c.Context)
			if err != nil {
				return err
			}
			measures := make(map[string]domain.KpiDefinition, len(defs))
			for _, d := range defs {
				measures[d.ShortKey] = d
			}

			if key := c.String("kpi"); key != "" {
				result, err := reports.RunKPI(c.Context, key, window, scope)
				if err != nil {
					return err
				}
				printResult(*result, measures[result.ShortKey])
				return nil
			}

			report, err := reports.RunReport(c.Context, window, scope)
			if err != nil {
				return err
			}
			fmt.Printf("Window %s  total %s\n\n", report.Window, service.FormatVolume(report.TotalVolume))
			for _, result := range report.Results {
				printResult(result, measures[result.ShortKey])
				fmt.Println()
			}
			return nil
		},
	}
}

func reportWindow(c *cli.Context, now time.Time) (domain.Window, error) {
	if c.String("from") == "" && c.String("to") == "" {
		offset := c.Int("month-offset")
		if offset > 0 {
			return domain.Window{}, fmt.Errorf("month-offset must be 0 or negative")
		}
		return domain.MonthWindow(now, offset), nil
	}

	var w domain.Window
	for _, f := range []struct {
		name string
		dst  *time.Time
	}{{"from", &w.From}, {"to", &w.To}} {
		raw := c.String(f.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return w, fmt.Errorf("--%s: expected YYYY-MM-DD", f.name)
		}
		*f.dst = t
	}
	return w, w.Validate()
}

func printResult(result domain.KpiResult, def domain.KpiDefinition) {
	fmt.Println(result.DisplayName)
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(result.Headers, "\t"))
	for _, row := range result.Rows {
		cells := append(append([]string{}, row.GroupKeyValues...), formatMetric(row.MetricValue, def))
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

func formatMetric(v float64, def domain.KpiDefinition) string {
	if def.Metric == domain.MetricSum {
		if def.Measure == domain.MeasureValue {
			return service.FormatINR(v)
		}
		return service.FormatVolume(v)
	}
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
