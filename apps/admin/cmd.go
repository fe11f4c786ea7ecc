package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shuledesk/shuledesk/core/attendance"
	"github.com/shuledesk/shuledesk/core/sheet"
	"github.com/shuledesk/shuledesk/core/student"
	"github.com/shuledesk/shuledesk/storage/snapshot"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	stdSvc *student.Service
	attSvc *attendance.Service
	store  *snapshot.Store
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  import -file FILE            - upsert student records from a .csv or .xlsx file")
	fmt.Println("  export -file FILE            - write all records to a .csv or .xlsx file")
	fmt.Println("  stats                        - print the dashboard projections")
	fmt.Println("  remind                       - email the fee-due reminder digest")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importFile := importCmd.String("file", "", "Path of the spreadsheet to import.")

	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportFile := exportCmd.String("file", "", "Path of the spreadsheet to write; the extension picks the format.")

	switch args[1] {
	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importFile(*importFile)
	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *exportFile == "" {
			exportCmd.Usage()
			return errHelp
		}
		return cli.exportFile(*exportFile)
	case "stats":
		return cli.stats()
	case "remind":
		return cli.remind()
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) importFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := sheet.ReadFile(path, f)
	if err != nil {
		return err
	}
	res := sheet.NewImporter(cli.stdSvc).ImportRows(rows)
	fmt.Printf("imported: %d added, %d updated, %d skipped\n", res.Added, res.Updated, res.Skipped)
	if res.Added > 0 || res.Updated > 0 {
		return cli.store.Save()
	}
	return nil
}

func (cli *commandLine) exportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ex := sheet.NewExporter(cli.stdSvc, cli.attSvc)
	switch filepath.Ext(path) {
	case ".csv":
		err = ex.WriteCSV(f, time.Now().UTC())
	case ".xlsx":
		err = ex.WriteXLSX(f, time.Now().UTC())
	default:
		return errors.New("the export file must end in .csv or .xlsx")
	}
	if err != nil {
		return err
	}
	fmt.Println("exported to", path)
	return nil
}

func (cli *commandLine) stats() error {
	stats, err := cli.stdSvc.Stats(time.Now().UTC())
	if err != nil {
		return err
	}
	fmt.Printf("students:        %d\n", stats.Students)
	fmt.Printf("top score:       %d\n", stats.TopScore)
	fmt.Printf("average percent: %.2f\n", stats.AveragePercent)
	fmt.Printf("fees total:      %s\n", stats.Fees.Total.StringFixed(2))
	fmt.Printf("fees paid:       %s\n", stats.Fees.Paid.StringFixed(2))
	fmt.Printf("fees due:        %s\n", stats.Fees.Due.StringFixed(2))
	fmt.Printf("late fees:       %s\n", stats.Fees.Late.StringFixed(2))
	return nil
}

func (cli *commandLine) remind() error {
	count, err := cli.stdSvc.SendFeeReminders(time.Now().UTC())
	if err != nil {
		return err
	}
	fmt.Printf("reminder digest sent for %d student(s)\n", count)
	return nil
}
