/*
Copyright (c) DataVeil, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"golang.org/x/term"

	"github.com/dataveil/dataveil/src/anonymizer"
	"github.com/dataveil/dataveil/src/datafile"
	"github.com/dataveil/dataveil/src/datastore"
	"github.com/dataveil/dataveil/src/fake"
	"github.com/dataveil/dataveil/src/pbreporter"
	"github.com/dataveil/dataveil/src/utils"
	"github.com/dataveil/dataveil/src/utils/s3"
)

var (
	nameFields           []string
	emailFields          []string
	idFields             []string
	hostFields           []string
	ipFields             []string
	coordinateFields     []string
	fileFormat           string
	dataDir              string
	delimiter            string
	deterministic        utils.BoolStr
	seedFlag             uint64
	parallelJobs         int
	cidrKeepHostBits     utils.BoolStr
	writeReport          utils.BoolStr
	disablePb            utils.BoolStr
	supportedFileFormats = []string{datafile.CSV, datafile.JSON}
)

// anonymizeFileTask is one input file with everything needed to process it.
type anonymizeFileTask struct {
	filePath string
	fileSize int64
	store    datastore.DataStore
}

var anonymizeCmd = &cobra.Command{
	Use:   "anonymize",
	Short: "This command anonymizes sensitive fields in the given data files",
	Long: `Anonymize sensitive fields in CSV tables or JSON documents. Fields are picked
by column name (CSV), a column plus a path expression into JSON payloads stored
in that column (e.g. "payload.user.email" splits at the first dot), or a bare
path expression (JSON documents). Every anonymized file is written under
--output-dir with its original name; input files are never modified.`,

	Args: cobra.ArbitraryArgs,

	PreRun: func(cmd *cobra.Command, args []string) {
		checkAnonymizeFlags(cmd, args)
	},

	Run: func(cmd *cobra.Command, args []string) {
		anonymizeDataFiles(cmd, args)
	},
}

func checkAnonymizeFlags(cmd *cobra.Command, args []string) {
	validateOutputDirFlag()
	fileFormat = strings.ToLower(fileFormat)
	checkFileFormat()
	checkInputSourceFlags(args)
	checkFieldFlags()
	setDefaultForDelimiter()
	checkDelimiterFlag()
	checkParallelJobsFlag(cmd)
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		disablePb = true
	}
}

func validateOutputDirFlag() {
	if outputDir == "" {
		utils.ErrExit(`ERROR: required flag "output-dir" not set`)
	}
	if !utils.FileOrFolderExists(outputDir) {
		utils.ErrExit("output-dir %q doesn't exists.\n", outputDir)
	}
	outputDir = strings.TrimRight(outputDir, "/")
}

func checkFileFormat() {
	supported := false
	for _, supportedFileFormat := range supportedFileFormats {
		if fileFormat == supportedFileFormat {
			supported = true
			break
		}
	}

	if !supported {
		utils.ErrExit("--file-format %q is not supported", fileFormat)
	}
}

func checkInputSourceFlags(args []string) {
	if dataDir == "" && len(args) == 0 {
		utils.ErrExit(`ERROR: no input files: set the "data-dir" flag or pass data files as arguments`)
	}
	if dataDir != "" && len(args) > 0 {
		utils.ErrExit("ERROR: --data-dir and positional file arguments are mutually exclusive")
	}
	if dataDir != "" {
		checkDataDirFlag()
	}
}

func checkDataDirFlag() {
	if strings.HasPrefix(dataDir, "s3://") {
		s3.ValidateObjectURL(dataDir)
		return
	}
	if strings.HasPrefix(dataDir, "gs://") || strings.HasPrefix(dataDir, "https://") {
		return
	}
	if !utils.FileOrFolderExists(dataDir) {
		utils.ErrExit("data-dir: %s doesn't exists!!", dataDir)
	}
	if utils.IsDirectoryEmpty(dataDir) {
		utils.ErrExit("data-dir: %s is empty, nothing to anonymize", dataDir)
	}
	dataDirAbs, err := filepath.Abs(dataDir)
	if err != nil {
		utils.ErrExit("unable to resolve absolute path for data-dir(%q): %v", dataDir, err)
	}

	outputDirAbs, err := filepath.Abs(outputDir)
	if err != nil {
		utils.ErrExit("unable to resolve absolute path for output-dir(%q): %v", outputDir, err)
	}

	if dataDirAbs == outputDirAbs {
		utils.ErrExit("ERROR: output-dir must be different from data-dir, refusing to overwrite the input files")
	}
	if dataDir == "." {
		fmt.Println("Note: Using current working directory as data directory")
	}
}

func checkFieldFlags() {
	totalFieldSpecs := len(nameFields) + len(emailFields) + len(idFields) +
		len(hostFields) + len(ipFields) + len(coordinateFields)
	if totalFieldSpecs == 0 {
		utils.ErrExit("ERROR: no fields to anonymize: set at least one of the --name-field, --email-field, " +
			"--id-field, --host-field, --ip-field, --coordinate-field flags")
	}
}

func setDefaultForDelimiter() {
	switch fileFormat {
	case datafile.CSV:
		if delimiter == "" {
			delimiter = `,`
		}
	case datafile.JSON:
		if delimiter != "" {
			utils.ErrExit("ERROR: --delimiter flag is invalid for %q format", fileFormat)
		}
	default:
		panic("unsupported file format")
	}
}

func checkDelimiterFlag() {
	if fileFormat != datafile.CSV {
		return
	}
	var ok bool
	delimiter, ok = interpreteEscapeSequences(delimiter)
	if !ok {
		utils.ErrExit("ERROR: invalid syntax of flag value in --delimiter %s. It should be a valid single-byte value.", delimiter)
	}
	log.Infof("resolved delimiter value: %q", delimiter)
}

// resolves and check the given string is a single byte character
func interpreteEscapeSequences(value string) (string, bool) {
	if len(value) == 1 {
		return value, true
	}
	resolvedValue, err := strconv.Unquote(`"` + value + `"`)
	if err != nil || len(resolvedValue) != 1 {
		return value, false
	}
	return resolvedValue, true
}

func checkParallelJobsFlag(cmd *cobra.Command) {
	if parallelJobs < 1 {
		utils.ErrExit("ERROR: --parallel-jobs must be at least 1")
	}
	if parallelJobs > 1 && isDeterministicRun(cmd) {
		// Concurrent files interleave generator calls, so substitutes would
		// differ between otherwise identical runs.
		utils.PrintAndLog("Note: resetting --parallel-jobs to 1 to keep the run reproducible")
		parallelJobs = 1
	}
}

func isDeterministicRun(cmd *cobra.Command) bool {
	return bool(deterministic) || cmd.Flags().Changed("seed")
}

// resolveSeed picks the one seed of the run: explicit --seed wins, then
// --deterministic pins seed 0, otherwise the clock decides.
func resolveSeed(cmd *cobra.Command) (uint64, string) {
	if cmd.Flags().Changed("seed") {
		return seedFlag, "explicit"
	}
	if deterministic {
		return 0, "deterministic"
	}
	return uint64(time.Now().UnixNano()), "time-derived"
}

func anonymizeDataFiles(cmd *cobra.Command, args []string) {
	tasks := prepareAnonymizeFileTasks(args)

	seed, seedMode := resolveSeed(cmd)
	utils.PrintAndLog("Using seed %d (%s) for fake data generation", seed, seedMode)

	engine, err := anonymizer.NewEngine(&anonymizer.Config{
		Mode:             lo.Ternary(fileFormat == datafile.CSV, anonymizer.TableMode, anonymizer.DocumentMode),
		NameFields:       nameFields,
		EmailFields:      emailFields,
		IDFields:         idFields,
		IPFields:         ipFields,
		CoordinateFields: coordinateFields,
		HostFields:       hostFields,
		Generator:        fake.NewGenerator(seed),
		Rand:             rand.New(rand.NewSource(int64(seed))),
		KeepCIDRHostBits: bool(cidrKeepHostBits),
	})
	if err != nil {
		utils.ErrExit("invalid anonymization configuration: %v", err)
	}

	startTime := time.Now()
	progressContainer := mpb.New()
	workerPool := pool.New().WithMaxGoroutines(parallelJobs)
	var resultsMu sync.Mutex
	results := make([]*fileAnonymizationResult, 0, len(tasks))
	for _, task := range tasks {
		task := task
		workerPool.Go(func() {
			result := anonymizeOneFile(engine, task, progressContainer)
			resultsMu.Lock()
			results = append(results, result)
			resultsMu.Unlock()
		})
	}
	workerPool.Wait()
	progressContainer.Wait()

	sortResultsByInputOrder(results, tasks)
	displayAnonymizationSummary(results, time.Since(startTime))
	if writeReport {
		reportPath := writeAnonymizationReport(engine, results, seed, seedMode)
		utils.PrintAndLog("Anonymization report written to %s", reportPath)
	}
}

func prepareAnonymizeFileTasks(args []string) []*anonymizeFileTask {
	var inputFilePaths []string
	var dirStore datastore.DataStore

	if dataDir != "" {
		dirStore = datastore.NewDataStore(dataDir)
		pattern := "*." + fileFormat
		files, err := dirStore.Glob(pattern)
		if err != nil {
			utils.ErrExit("finding data files to anonymize: %v", err)
		}
		if len(files) == 0 {
			utils.ErrExit("No %q files found to anonymize in %q", pattern, dataDir)
		}

		var fileNames []string
		for _, file := range files {
			fileNames = append(fileNames, filepath.Base(file))
		}
		utils.PrintAndLog("Data files identified to anonymize from data-dir(%q) are: [%s]\n\n", dataDir, strings.Join(fileNames, ", "))
		inputFilePaths = files
	} else {
		inputFilePaths = args
	}

	var tasks []*anonymizeFileTask
	seenBaseNames := make(map[string]string)
	for _, filePath := range inputFilePaths {
		fileStore := dirStore
		if fileStore == nil {
			if !strings.Contains(filePath, "://") && !utils.FileOrFolderExists(filePath) {
				utils.ErrExit("input file doesn't exist: %q", filePath)
			}
			fileStore = datastore.NewDataStore(filePath)
		}
		refuseOverwritingInput(filePath)

		base := filepath.Base(filePath)
		if first, taken := seenBaseNames[base]; taken {
			utils.ErrExit("ERROR: input files %q and %q would both be written to %q",
				first, filePath, filepath.Join(outputDir, base))
		}
		seenBaseNames[base] = filePath

		fileSize, err := fileStore.FileSize(filePath)
		if err != nil {
			utils.ErrExit("calculating file size of %q in bytes: %v", filePath, err)
		}
		log.Infof("file size of %q: %d", filePath, fileSize)

		tasks = append(tasks, &anonymizeFileTask{filePath: filePath, fileSize: fileSize, store: fileStore})
	}
	return tasks
}

func refuseOverwritingInput(filePath string) {
	if strings.Contains(filePath, "://") {
		return // object store inputs cannot collide with the local output dir
	}
	fileAbs, err := filepath.Abs(filePath)
	if err != nil {
		utils.ErrExit("unable to resolve absolute path for input file(%q): %v", filePath, err)
	}
	outputDirAbs, err := filepath.Abs(outputDir)
	if err != nil {
		utils.ErrExit("unable to resolve absolute path for output-dir(%q): %v", outputDir, err)
	}
	if filepath.Dir(fileAbs) == outputDirAbs {
		utils.ErrExit("ERROR: input file %q lives in the output-dir, refusing to overwrite it", filePath)
	}
}

func anonymizeOneFile(engine *anonymizer.Engine, task *anonymizeFileTask, progressContainer *mpb.Progress) *fileAnonymizationResult {
	base := filepath.Base(task.filePath)
	outPath := filepath.Join(outputDir, base)
	log.Infof("anonymizing %q -> %q", task.filePath, outPath)

	in, err := task.store.Open(task.filePath)
	if err != nil {
		utils.ErrExit("opening input file %q: %v", task.filePath, err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		utils.ErrExit("creating output file %q: %v", outPath, err)
	}

	pbr := pbreporter.NewFilePB(progressContainer, base, bool(disablePb))
	pbr.SetTotal(task.fileSize, false)

	descriptor := &datafile.Descriptor{FileFormat: fileFormat, Delimiter: delimiter}
	var stats *anonymizer.Stats
	switch fileFormat {
	case datafile.CSV:
		reader, err := datafile.NewTableReader(task.filePath, in, descriptor)
		if err != nil {
			utils.ErrExit("creating reader for %q: %v", task.filePath, err)
		}
		writer := datafile.NewTableWriter(outPath, out, descriptor)
		stats, err = engine.AnonymizeTable(reader, writer, pbr)
		if err != nil {
			utils.ErrExit("anonymizing %q: %v", task.filePath, err)
		}
		reader.Close()
		if err := writer.Close(); err != nil {
			utils.ErrExit("closing output file %q: %v", outPath, err)
		}
	case datafile.JSON:
		doc, err := datafile.ReadDocument(task.filePath, in)
		if err != nil {
			utils.ErrExit("anonymizing: %v", err)
		}
		in.Close()
		doc, stats = engine.AnonymizeDocument(doc)
		if err := datafile.WriteDocument(outPath, out, doc); err != nil {
			utils.ErrExit("anonymizing: %v", err)
		}
		if err := out.Close(); err != nil {
			utils.ErrExit("closing output file %q: %v", outPath, err)
		}
		pbr.SetCurrent(task.fileSize)
	}
	pbr.Complete()

	return &fileAnonymizationResult{
		InputPath:  task.filePath,
		OutputPath: outPath,
		FileSize:   task.fileSize,
		Stats:      stats,
	}
}

func init() {
	rootCmd.AddCommand(anonymizeCmd)

	anonymizeCmd.Flags().StringArrayVar(&nameFields, "name-field", nil,
		"field holding person names; repeat the flag for multiple fields")

	anonymizeCmd.Flags().StringArrayVar(&emailFields, "email-field", nil,
		"field holding email addresses; repeat the flag for multiple fields")

	anonymizeCmd.Flags().StringArrayVar(&idFields, "id-field", nil,
		"field holding opaque identifiers, replaced with UUIDs; repeat the flag for multiple fields")

	anonymizeCmd.Flags().StringArrayVar(&hostFields, "host-field", nil,
		"field holding host or domain names; repeat the flag for multiple fields")

	anonymizeCmd.Flags().StringArrayVar(&ipFields, "ip-field", nil,
		"field holding IP addresses or CIDR blocks; repeat the flag for multiple fields")

	anonymizeCmd.Flags().StringArrayVar(&coordinateFields, "coordinate-field", nil,
		"field holding latitude/longitude values; repeat the flag for multiple fields")

	anonymizeCmd.Flags().StringVar(&fileFormat, "file-format", "csv",
		fmt.Sprintf("format of the data file(s): %s", strings.Join(supportedFileFormats, ", ")))

	anonymizeCmd.Flags().StringVar(&dataDir, "data-dir", "",
		"directory containing the data files to anonymize (local path, s3://, gs:// or https:// azure url); "+
			"mutually exclusive with positional file arguments")

	anonymizeCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "",
		"directory where the anonymized files, the report and the logs are written")

	anonymizeCmd.Flags().StringVar(&delimiter, "delimiter", "",
		"character used as delimiter in rows of the data file(s) (default is comma for CSV)")

	BoolVar(anonymizeCmd.Flags(), &deterministic, "deterministic", false,
		"use a fixed seed so that repeated runs produce identical substitutes (default false)")

	anonymizeCmd.Flags().Uint64Var(&seedFlag, "seed", 0,
		"explicit seed for fake data generation, implies a reproducible run")
	anonymizeCmd.Flags().MarkHidden("seed")

	anonymizeCmd.Flags().IntVar(&parallelJobs, "parallel-jobs", 1,
		"number of files to anonymize in parallel")

	BoolVar(anonymizeCmd.Flags(), &cidrKeepHostBits, "cidr-keep-host-bits", false,
		"emit CIDR values with the substituted host bits kept instead of the masked network form (default false)")

	BoolVar(anonymizeCmd.Flags(), &writeReport, "report", true,
		"write anonymization-report.json into the output directory (default true)")

	BoolVar(anonymizeCmd.Flags(), &disablePb, "disable-pb", false,
		"true - to disable progress bar during data anonymization (default false)")
}
