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
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/samber/lo"
	"github.com/spf13/pflag"

	"github.com/dataveil/dataveil/src/anonymizer"
	"github.com/dataveil/dataveil/src/datafile"
	"github.com/dataveil/dataveil/src/utils"
	"github.com/dataveil/dataveil/src/utils/jsonfile"
)

// fileAnonymizationResult captures what happened to one input file.
type fileAnonymizationResult struct {
	InputPath  string
	OutputPath string
	FileSize   int64
	Stats      *anonymizer.Stats
}

// AnonymizationReport is the structure of anonymization-report.json.
type AnonymizationReport struct {
	Version     string                  `json:"version"`
	CompletedAt string                  `json:"completedAt"`
	FileFormat  string                  `json:"fileFormat"`
	Seed        uint64                  `json:"seed"`
	SeedMode    string                  `json:"seedMode"`
	CacheSizes  map[anonymizer.Kind]int `json:"distinctValuesPerKind"`
	Files       []*FileReport           `json:"files"`
}

type FileReport struct {
	Input     string                `json:"input"`
	Output    string                `json:"output"`
	SizeBytes int64                 `json:"sizeBytes"`
	Rows      int64                 `json:"rows,omitempty"`
	Values    int64                 `json:"values"`
	Warnings  []*anonymizer.Warning `json:"warnings,omitempty"`
}

// BoolVar registers a true/false flag that also accepts --flag without a value.
func BoolVar(flags *pflag.FlagSet, p *utils.BoolStr, name string, value bool, usage string) {
	*p = utils.BoolStr(value)
	flags.Var(p, name, usage)
	flags.Lookup(name).NoOptDefVal = "true"
}

func addHeader(table *uitable.Table, cols ...string) {
	headerfmt := color.New(color.FgGreen, color.Underline).SprintFunc()
	columns := lo.Map(cols, func(col string, _ int) interface{} {
		return headerfmt(col)
	})
	table.AddRow(columns...)
}

// sortResultsByInputOrder restores task order; the worker pool finishes files
// in whatever order they complete.
func sortResultsByInputOrder(results []*fileAnonymizationResult, tasks []*anonymizeFileTask) {
	order := make(map[string]int, len(tasks))
	for i, task := range tasks {
		order[task.filePath] = i
	}
	sort.Slice(results, func(i, j int) bool {
		return order[results[i].InputPath] < order[results[j].InputPath]
	})
}

func displayAnonymizationSummary(results []*fileAnonymizationResult, elapsed time.Duration) {
	color.Cyan("\nAnonymization Summary")
	table := uitable.New()
	if fileFormat == datafile.CSV {
		addHeader(table, "FILE", "SIZE", "ROWS", "VALUES CHANGED", "WARNINGS")
	} else {
		addHeader(table, "FILE", "SIZE", "VALUES CHANGED", "WARNINGS")
	}

	var totalValues, totalWarnings int64
	for _, result := range results {
		if fileFormat == datafile.CSV {
			table.AddRow(filepath.Base(result.InputPath), humanize.Bytes(uint64(result.FileSize)),
				result.Stats.Rows, result.Stats.Values, len(result.Stats.Warnings))
		} else {
			table.AddRow(filepath.Base(result.InputPath), humanize.Bytes(uint64(result.FileSize)),
				result.Stats.Values, len(result.Stats.Warnings))
		}
		totalValues += result.Stats.Values
		totalWarnings += int64(len(result.Stats.Warnings))
	}
	fmt.Print("\n")
	fmt.Println(table)
	fmt.Print("\n")

	utils.PrintAndLog("Anonymized %d file(s) in %s: %d value(s) rewritten, %d warning(s)",
		len(results), elapsed.Round(time.Millisecond), totalValues, totalWarnings)
	if totalWarnings > 0 {
		color.Yellow("Some values could not be anonymized and were left unchanged. Check the log and the report for details.")
	}
}

func writeAnonymizationReport(engine *anonymizer.Engine, results []*fileAnonymizationResult, seed uint64, seedMode string) string {
	report := &AnonymizationReport{
		Version:     utils.DATAVEIL_VERSION,
		CompletedAt: time.Now().Format(time.RFC3339),
		FileFormat:  fileFormat,
		Seed:        seed,
		SeedMode:    seedMode,
		CacheSizes:  engine.CacheSizes(),
	}
	for _, result := range results {
		report.Files = append(report.Files, &FileReport{
			Input:     result.InputPath,
			Output:    result.OutputPath,
			SizeBytes: result.FileSize,
			Rows:      result.Stats.Rows,
			Values:    result.Stats.Values,
			Warnings:  result.Stats.Warnings,
		})
	}

	reportPath := filepath.Join(outputDir, "anonymization-report.json")
	reportFile := jsonfile.NewJsonFile[AnonymizationReport](reportPath)
	if err := reportFile.Create(report); err != nil {
		utils.ErrExit("writing anonymization report: %v", err)
	}
	return reportPath
}
