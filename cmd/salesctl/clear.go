package main

import (
	"fmt"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/andresuchdata/salesperf/backend-go/internal/repository"
	"github.com/andresuchdata/salesperf/backend-go/internal/service"
	"github.com/andresuchdata/salesperf/backend-go/pkg/logger"
	"github.com/urfave/cli/v2"
)

func clearCommand() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete invoice lines by range, or a whole replace-on-import dataset",
		Flags: append(dbFlags(),
			&cli.StringFlag{
				Name:  "invoices",
				Usage: "Invoice range to delete (all, current or historical)",
			},
			&cli.StringFlag{
				Name:  "dataset",
				Usage: "Dataset to empty (customers, stock or orders)",
			},
		),
		Before: initDB,
		After:  closeDB,
		Action: func(c *cli.Context) error {
			imports := service.NewImportService(storeFrom(c), storeFrom(c), storeFrom(c), nil, "", reportCache())

			switch {
			case c.String("invoices") != "":
				r := repository.InvoiceRange(c.String("invoices"))
				n, err := imports.ClearInvoices(c.Context, r)
				if err != nil {
					return err
				}
				logger.Log.Info().Int64("deleted", n).Str("range", string(r)).Msg("invoice lines cleared")
			case c.String("dataset") != "":
				schema, ok := domain.ParseImportSchema(c.String("dataset"))
				if !ok {
					return fmt.Errorf("unknown dataset %q", c.String("dataset"))
				}
				n, err := imports.ClearDataset(c.Context, schema)
				if err != nil {
					return err
				}
				logger.Log.Info().Int64("deleted", n).Str("dataset", string(schema)).Msg("dataset cleared")
			default:
				return fmt.Errorf("one of --invoices or --dataset is required")
			}
			return nil
		},
	}
}
