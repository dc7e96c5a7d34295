// Command reco reconciles a GSTR-2B portal workbook against books exports
// on the local filesystem and writes the report workbook.
//
//	reco -portal gstr2b.xlsx -zoho zoho.xlsx -out report.xlsx [-period-start 2024-04-01]
//	reco -portal gstr2b.xlsx -odoo-reg-cgst reg_cgst.xlsx -odoo-rcm-igst rcm_igst.csv -out report.xlsx
//
// Manual offset figures are given as IGST,CGST,SGST triples:
//
//	reco ... -liability 100,50,50 -opening 0,0,0
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"gstreco/internal/config"
	"gstreco/internal/domain"
	"gstreco/internal/ingest"
	"gstreco/internal/logger"
	"gstreco/internal/reco"
	"gstreco/internal/report"
	"gstreco/internal/service"
)

type options struct {
	portal      string
	zoho        string
	odoo        [4]string
	out         string
	periodStart string
	liability   string
	opening     string
	csvDir      string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	log := logger.New(cfg.Log)

	if err := run(context.Background(), os.Args[1:], cfg.Reco.Thresholds(), log); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logger.LogError(log, "reco", "run", err, nil)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	var o options
	fs := flag.NewFlagSet("reco", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.portal, "portal", "", "GSTR-2B portal workbook (xlsx)")
	fs.StringVar(&o.zoho, "zoho", "", "Zoho GSTR-2 export (xlsx)")
	fs.StringVar(&o.odoo[0], "odoo-reg-cgst", "", "Odoo regular CGST register")
	fs.StringVar(&o.odoo[1], "odoo-reg-igst", "", "Odoo regular IGST register")
	fs.StringVar(&o.odoo[2], "odoo-rcm-cgst", "", "Odoo reverse-charge CGST register")
	fs.StringVar(&o.odoo[3], "odoo-rcm-igst", "", "Odoo reverse-charge IGST register")
	fs.StringVar(&o.out, "out", "reco_report.xlsx", "output workbook path")
	fs.StringVar(&o.periodStart, "period-start", "", "first day of the return period (YYYY-MM-DD)")
	fs.StringVar(&o.liability, "liability", "", "output tax liability as IGST,CGST,SGST")
	fs.StringVar(&o.opening, "opening", "", "opening credit balance as IGST,CGST,SGST")
	fs.StringVar(&o.csvDir, "csv-dir", "", "also write per-side CSV files into this directory")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if o.portal == "" {
		return nil, domain.ErrMissingPortalFile
	}
	hasOdoo := o.odoo != [4]string{}
	switch {
	case o.zoho == "" && !hasOdoo:
		return nil, domain.ErrMissingBooksFile
	case o.zoho != "" && hasOdoo:
		return nil, fmt.Errorf("use either -zoho or the -odoo-* flags: %w", domain.ErrInvalidInput)
	}
	return &o, nil
}

func run(ctx context.Context, args []string, th reco.Thresholds, log logrus.FieldLogger) error {
	o, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	var periodStart *time.Time
	if o.periodStart != "" {
		t, err := time.Parse("2006-01-02", o.periodStart)
		if err != nil {
			return fmt.Errorf("-period-start: %w", domain.ErrInvalidInput)
		}
		periodStart = &t
	}
	manual, err := manualOffset(o.liability, o.opening)
	if err != nil {
		return err
	}

	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()
	open := func(path string) (*ingest.Upload, error) {
		if path == "" {
			return nil, nil
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		closers = append(closers, f)
		return &ingest.Upload{Filename: path, Body: f}, nil
	}

	portalFile, err := open(o.portal)
	if err != nil {
		return err
	}
	portal, err := ingest.ReadPortal(*portalFile)
	if err != nil {
		return err
	}

	var books []domain.RecordSet
	if o.zoho != "" {
		u, err := open(o.zoho)
		if err != nil {
			return err
		}
		if books, err = ingest.ReadZoho(*u); err != nil {
			return err
		}
	} else {
		var slots ingest.OdooSlots
		dst := []**ingest.Upload{&slots.RegularCGST, &slots.RegularIGST, &slots.RCMCGST, &slots.RCMIGST}
		for i, path := range o.odoo {
			if *dst[i], err = open(path); err != nil {
				return err
			}
		}
		if books, err = ingest.ReadOdoo(slots); err != nil {
			return err
		}
	}

	engine := reco.NewEngine(th, reco.WithLogger(log))
	outcome, err := service.Reconcile(ctx, engine, portal, books, periodStart, manual)
	if err != nil {
		return err
	}
	if outcome.CreditClamped {
		log.Warn("credit notes exceed matched credit; negative heads floored at zero")
	}

	out, err := os.Create(o.out)
	if err != nil {
		return err
	}
	if err := report.Write(out, report.Input{Portal: outcome.Portal, Books: outcome.Books, Offset: outcome.Offset}); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if o.csvDir != "" {
		if err := writeCSV(o.csvDir, o.out, outcome); err != nil {
			return err
		}
	}

	fields := logrus.Fields{"out": o.out}
	for _, r := range domain.AllRemarks {
		if n := outcome.PortalCounts[r] + outcome.BooksCounts[r]; n > 0 {
			fields[string(r)] = n
		}
	}
	log.WithFields(fields).Info("report written")
	return nil
}

// writeCSV writes <report>_portal.csv and <report>_books.csv into dir.
func writeCSV(dir, reportPath string, outcome *service.Outcome) error {
	base := report.SanitizeFilename(strings.TrimSuffix(filepath.Base(reportPath), filepath.Ext(reportPath)))
	sides := []struct {
		suffix string
		sets   []domain.AnnotatedSet
	}{
		{"portal", outcome.Portal},
		{"books", outcome.Books},
	}
	for _, side := range sides {
		path := filepath.Join(dir, base+"_"+side.suffix+".csv")
		if err := writeCSVFile(path, side.sets); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

func writeCSVFile(path string, sets []domain.AnnotatedSet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(report.BOM); err != nil {
		return err
	}
	w := report.NewCSVWriter(f)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteSets(sets); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// manualOffset returns nil when neither triple was given.
func manualOffset(liability, opening string) (*domain.OffsetInput, error) {
	if liability == "" && opening == "" {
		return nil, nil
	}
	var in domain.OffsetInput
	var err error
	if in.OutputLiability, err = parseTriple("-liability", liability); err != nil {
		return nil, err
	}
	if in.OpeningCredit, err = parseTriple("-opening", opening); err != nil {
		return nil, err
	}
	return &in, nil
}

func parseTriple(name, s string) (domain.TaxVector, error) {
	var v domain.TaxVector
	if s == "" {
		return v, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != len(domain.TaxHeads) {
		return v, fmt.Errorf("%s wants IGST,CGST,SGST: %w", name, domain.ErrInvalidInput)
	}
	for i, h := range domain.TaxHeads {
		d, err := decimal.NewFromString(strings.TrimSpace(parts[i]))
		if err != nil {
			return v, fmt.Errorf("%s %s: %w", name, h, domain.ErrInvalidInput)
		}
		v.Set(h, d)
	}
	return v, nil
}
